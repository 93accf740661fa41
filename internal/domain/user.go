package domain

// Role роль пользователя в makerspace
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// SystemActorID ID, которым помечаются действия, выполненные системой (auto-approval)
const SystemActorID int64 = 0

// User пользователь из внешнего каталога
type User struct {
	ID              int64
	Name            string
	Email           string
	Role            Role
	MembershipTier  string
	SupervisorLevel SkillLevel
}

// IsAdmin returns true for staff and admins
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleStaff
}
