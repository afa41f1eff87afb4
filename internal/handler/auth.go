package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
}

func NewAuthHandler(a *service.AuthService, u *service.UserService) *AuthHandler {
	return &AuthHandler{Auth: a, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
type confirmReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type recoveryRequestReq struct {
	Email string `json:"email"`
}
type recoverReq struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}
type providerReq struct {
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Roles       []string `json:"roles"`
	Provider    string   `json:"provider,omitempty"`
	IsConfirmed bool     `json:"is_confirmed"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Roles:       u.Roles,
		Provider:    u.Provider,
		IsConfirmed: u.IsConfirmed,
	}
}

func toAuthResp(u model.User, pair service.TokenPair) authResp {
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: pair.AccessToken, Expires: pair.AccessExp},
		Refresh: tokenPart{Token: pair.Refresh.Token, Expires: pair.Refresh.Exp}, // raw back to client
	}
}

// deviceID identifies the calling device.  The User-Agent string is the
// device key refresh tokens are bound to.
func deviceID(c echo.Context) string {
	agent := strings.TrimSpace(c.Request().UserAgent())
	if agent == "" {
		agent = "unknown"
	}
	return agent
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// httpError translates service sentinels into HTTP responses.  Everything
// unmapped is a 500 with a generic body.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrNotConfirmed):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please confirm your email"})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, service.ErrUserBlocked):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "user is blocked"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidCode):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, service.ErrProviderAccount):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "account uses an external provider, sign in with it instead"})
	case errors.Is(err, service.ErrProviderAuth):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provider account creation failed"})
	case errors.Is(err, service.ErrDelivery):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mail delivery failed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// Register: create an unconfirmed user and send the confirmation code.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": toUserPart(u)})
}

// Confirm: redeem the emailed code and activate the account.
func (h *AuthHandler) Confirm(c echo.Context) error {
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/code required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Confirm(ctx, req.Email, strings.TrimSpace(req.Code))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// Login: verify credentials and return a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.Login(ctx, req.Email, req.Password, deviceID(c))
	if err != nil {
		return httpError(c, err)
	}
	u, err := h.Users.FindByID(ctx, pair.Refresh.UserID, false)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(u, pair))
}

// Refresh: rotate the presented refresh token and return a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken), deviceID(c))
	if err != nil {
		return httpError(c, err)
	}
	u, err := h.Users.FindByID(ctx, pair.Refresh.UserID, false)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(u, pair))
}

// Logout: revoke the session of the presented refresh token.  Revoking an
// unknown token still answers 204; there is nothing left to revoke.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestRecovery: mail a password recovery code.
func (h *AuthHandler) RequestRecovery(c echo.Context) error {
	var req recoveryRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.RequestRecovery(ctx, req.Email, deviceID(c)); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Recover: redeem a recovery code and set a new password.
func (h *AuthHandler) Recover(c echo.Context) error {
	var req recoverReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Code == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/code/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Recover(ctx, req.Email, strings.TrimSpace(req.Code), req.Password)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// ProviderAuth: exchange a provider-verified email for a token pair.  The
// OAuth callback layer that verified the email sits in front of this
// endpoint; by the time a request lands here the email is trusted.
func (h *AuthHandler) ProviderAuth(c echo.Context) error {
	var req providerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	provider := strings.ToUpper(strings.TrimSpace(req.Provider))
	if req.Email == "" || provider == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/provider required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.ProviderAuth(ctx, req.Email, deviceID(c), provider)
	if err != nil {
		return httpError(c, err)
	}
	u, err := h.Users.FindByID(ctx, pair.Refresh.UserID, false)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(u, pair))
}
