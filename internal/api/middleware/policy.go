package middleware

import (
	"net/http"

	"github.com/m04kA/makerspace-reservations/internal/api/handlers"
	"github.com/m04kA/makerspace-reservations/internal/domain"
)

const msgForbidden = "недостаточно прав"

// Capability действие, на которое нужна проверка роли
type Capability string

const (
	CapReserve          Capability = "reservations:create"
	CapViewReservations Capability = "reservations:view"
	CapManageOwn        Capability = "reservations:manage_own"
	CapApprove          Capability = "reservations:approve"
	CapOperate          Capability = "reservations:operate" // activate, complete, no-show
	CapManageRules      Capability = "rules:manage"
	CapViewRules        Capability = "rules:view"
	CapEstimate         Capability = "cost:estimate"
	CapAvailability     Capability = "availability:view"
)

// Policy единая таблица прав по ролям
// Владение конкретным бронированием проверяется уже в сервисе
type Policy map[domain.Role]map[Capability]bool

// DefaultPolicy права по умолчанию
func DefaultPolicy() Policy {
	member := map[Capability]bool{
		CapReserve:          true,
		CapViewReservations: true,
		CapManageOwn:        true,
		CapViewRules:        true,
		CapEstimate:         true,
		CapAvailability:     true,
	}

	staff := make(map[Capability]bool, len(member)+3)
	for c := range member {
		staff[c] = true
	}
	staff[CapApprove] = true
	staff[CapOperate] = true

	admin := make(map[Capability]bool, len(staff)+1)
	for c := range staff {
		admin[c] = true
	}
	admin[CapManageRules] = true

	return Policy{
		domain.RoleMember: member,
		domain.RoleStaff:  staff,
		domain.RoleAdmin:  admin,
	}
}

// Allows проверяет право роли
func (p Policy) Allows(role domain.Role, capability Capability) bool {
	return p[role][capability]
}

// Require пропускает запрос, только если роль из контекста имеет право capability
// Должен стоять после Auth
func (p Policy) Require(capability Capability, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRole(r.Context())
			if !ok || !p.Allows(role, capability) {
				userID, _ := GetUserID(r.Context())
				logger.Warn("%s %s - Capability %s denied: user_id=%d, role=%s",
					r.Method, r.URL.Path, capability, userID, role)
				handlers.RespondForbidden(w, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guard оборачивает handler функцию проверкой права
func (p Policy) Guard(capability Capability, logger Logger, h http.HandlerFunc) http.Handler {
	return p.Require(capability, logger)(h)
}
