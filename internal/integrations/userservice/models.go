package userservice

import "github.com/m04kA/makerspace-reservations/internal/domain"

// User модель пользователя из UserService
type User struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	MembershipTier  string `json:"membership_tier"`
	SupervisorLevel string `json:"supervisor_level"` // пусто, если пользователь не может быть супервизором
}

// ToDomain конвертирует ответ сервиса в доменную модель
func (u *User) ToDomain() *domain.User {
	return &domain.User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            domain.Role(u.Role),
		MembershipTier:  u.MembershipTier,
		SupervisorLevel: domain.SkillLevel(u.SupervisorLevel),
	}
}
