package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/auth-service/internal/utils"
)

// claimsKey is the context key the authenticated identity is stored under.
const claimsKey = "claims"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's identity claims into the request context as a
// single utils.Claims value.  Verification is fully stateless: no store
// lookup happens here.  The provided secret must match the one used when
// issuing tokens.  Handlers access the identity via ClaimsFrom(c).
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            // Store the identity for handlers and downstream middleware.
            c.Set(claimsKey, claims)
            return next(c)
        }
    }
}

// ClaimsFrom extracts the authenticated identity placed into the context by
// JWTAuth.  The zero value is returned on unauthenticated requests.
func ClaimsFrom(c echo.Context) utils.Claims {
    claims, _ := c.Get(claimsKey).(utils.Claims)
    return claims
}
