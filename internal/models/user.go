package models

// Role is the capability set of an actor.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
	RoleBusiness Role = "business"
)

// User represents the actor driving a session.
type User struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name   string `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email  string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Role   Role   `json:"role" gorm:"type:varchar(16)" validate:"required,oneof=admin standard business"`
	Avatar string `json:"avatar,omitempty"`
}

// IsAdmin reports whether u may moderate listings.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
