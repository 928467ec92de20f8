package domain

import "time"

// User roles within the museum platform.
const (
	RoleVisitor = "visitor"
	RoleCurator = "curator"
	RoleAdmin   = "admin"
)

// User represents an authenticated identity in the platform.
type User struct {
	ID        string            `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email,omitempty"`
	Role      string            `json:"role"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

func (u *User) CanModerate() bool {
	return u != nil && (u.Role == RoleCurator || u.Role == RoleAdmin)
}
