package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/auth-service/internal/handler"    // handlers implementing the endpoints
	"github.com/iliyamo/auth-service/internal/middleware" // JWT authentication and role policy middleware
	"github.com/iliyamo/auth-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, jwtSecret string) {
	// Operations that do not require an existing session: registration,
	// confirmation, login, rotation, logout, recovery and the federated
	// callback target.  Each handler generates or exchanges tokens itself.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/confirm", a.Confirm)
	g.POST("/login", a.Login)
	// Rotates the refresh token: the presented value is single-use.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/recovery/request", a.RequestRecovery)
	g.POST("/recovery", a.Recover)
	// The OAuth callback layer posts the provider-verified email here.
	g.POST("/provider", a.ProviderAuth)

	// Routes that require a valid access token.  JWTAuth validates the
	// bearer token statelessly and places the claims into the context.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", u.Me)

	// User administration.  Listing is admin-only; reading and deleting a
	// single record admit the record's owner as well (self-service
	// override evaluated against the :id route parameter).
	auth.GET("/users", u.List, middleware.RequireRole(model.RoleAdmin))
	auth.GET("/users/:id", u.Get, middleware.RequireRole(model.RoleAdmin))
	auth.DELETE("/users/:id", u.Delete, middleware.RequireRole(model.RoleAdmin))
}
