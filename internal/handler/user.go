package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/service"
)

// UserHandler bundles dependencies for the user endpoints.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(u *service.UserService) *UserHandler {
	return &UserHandler{Users: u}
}

// Me returns the identity claims of the presented access token.  No store
// lookup happens; the token itself is the source.
func (h *UserHandler) Me(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"id":         claims.ID,
		"email":      claims.Email,
		"roles":      claims.Roles,
		"first_name": claims.FirstName,
		"last_name":  claims.LastName,
	})
}

// Get returns a single user record.  Route policy admits admins and the
// record's owner.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.FindByID(ctx, c.Param("id"), false)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// List returns a page of users with the total count, for the admin console.
// Supported query parameters: search, page, per_page, sort, order.
func (h *UserHandler) List(c echo.Context) error {
	q := repository.ListQuery{
		Search: strings.TrimSpace(c.QueryParam("search")),
		Sort:   c.QueryParam("sort"),
		Order:  c.QueryParam("order"),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx, q)
	if err != nil {
		return httpError(c, err)
	}
	total, err := h.Users.Count(ctx, q.Search)
	if err != nil {
		return httpError(c, err)
	}
	nodes := make([]userPart, 0, len(users))
	for _, u := range users {
		nodes = append(nodes, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"nodes": nodes, "total": total})
}

// Delete removes a user account and every session it owns.  The service
// enforces the admin-or-self policy against the actor's claims.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id"), middleware.ClaimsFrom(c)); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
