package domain

import "time"

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

func (r Role) Valid() bool { return r == RoleHost || r == RoleGuest }

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // stored lowercased
	PasswordHash string    `json:"-"`     // bcrypt; never leaves the server
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TokenClaims is the payload carried by a bearer token.
type TokenClaims struct {
	Sub   string
	Email string
	Name  string
	Role  Role
}
