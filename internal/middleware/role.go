package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/auth-service/internal/policy"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user holds one of the specified roles, or is acting on
// their own record when the route carries an :id parameter (self-service
// override).  It assumes JWTAuth already extracted the claims into the
// context.  Requests failing the policy are aborted with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            actor := ClaimsFrom(c)
            if !policy.Allow(roles, actor, c.Param("id")) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
