package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role names as stored in the users table and the JWT role claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleOwner    = "OWNER"
)

// RequireRole aborts the request with 403 unless the authenticated
// user's role is in the allowed set.  It assumes JWTAuth ran earlier
// in the chain.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
