package auth

import (
	"eterno-store/internal/apperr"
	"eterno-store/internal/models"
)

// Principal is the authenticated caller of one request. Handlers pass it
// explicitly into every service call; the zero value is an anonymous caller.
type Principal struct {
	UserID   uint        `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == models.RoleAdmin
}

// RequireRole fails with Unauthorized for anonymous callers and Forbidden
// when the caller holds none of roles.
func (p Principal) RequireRole(roles ...models.Role) error {
	if !p.Authenticated() {
		return apperr.Unauthorized("Please login")
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return apperr.Forbidden("You do not have permission to access this resource")
}

func (p Principal) RequireAdmin() error {
	return p.RequireRole(models.RoleAdmin)
}

func (p Principal) RequireCustomer() error {
	return p.RequireRole(models.RoleCustomer)
}
