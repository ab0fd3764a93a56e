package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the token payload issued by the external auth service.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// EffectivePermissions returns the explicit permissions, or the role defaults
// when the token carries none.
func (c *UserClaims) EffectivePermissions() []string {
	if len(c.Permissions) > 0 {
		return c.Permissions
	}
	return GetDefaultPermissions(c.Role)
}

// Details is the submitter snapshot stored with each request.
func (c *UserClaims) Details() UserDetails {
	return UserDetails{Name: c.Name, Email: c.Email}
}
