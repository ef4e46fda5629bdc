package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/protonicfit/auth-api/internal/middleware"
	"github.com/protonicfit/auth-api/internal/model"
	"github.com/protonicfit/auth-api/internal/repository"
	"github.com/protonicfit/auth-api/internal/service"
)

// AuthHandler translates wire requests into AuthService calls and results
// back into status codes and JSON bodies. No business rules live here.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type userPart struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	IsActive      bool       `json:"is_active"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}
type profilePart struct {
	Name      string  `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}
type statsPart struct {
	TotalWorkouts int `json:"total_workouts"`
	TotalMinutes  int `json:"total_workout_minutes"`
}
type authResp struct {
	User         userPart     `json:"user"`
	Profile      *profilePart `json:"profile"`
	Stats        *statsPart   `json:"stats"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:            u.ID,
		Email:         u.Email,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLogin:     u.LastLogin,
	}
}

func toAuthResp(r *service.AuthResult) authResp {
	resp := authResp{
		User:         toUserPart(r.User),
		AccessToken:  r.Access.Raw,
		RefreshToken: r.Refresh.Raw,
	}
	if r.Profile != nil {
		resp.Profile = &profilePart{Name: r.Profile.Name, Bio: r.Profile.Bio, AvatarURL: r.Profile.AvatarURL}
	}
	if r.Stats != nil {
		resp.Stats = &statsPart{TotalWorkouts: r.Stats.TotalWorkouts, TotalMinutes: r.Stats.TotalMinutes}
	}
	return resp
}

// ----- validation -----

// fieldErrors reports per-field validation failures as a 422 body.
type fieldErrors map[string]string

func validEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// ----- handlers -----

// Register: create the user and sign them in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrors{"body": "invalid json"}})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	errs := fieldErrors{}
	if !validEmail(req.Email) {
		errs["email"] = "must be a valid email address"
	}
	if len(req.Password) < 8 {
		errs["password"] = "must be at least 8 characters"
	}
	if len(req.Name) > 255 {
		errs["name"] = "must be at most 255 characters"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, req.Email, req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already in use"})
		}
		return internalError(c)
	}
	return c.JSON(http.StatusCreated, toAuthResp(res))
}

// Login: verify credentials and return a fresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrors{"body": "invalid json"}})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	errs := fieldErrors{}
	if !validEmail(req.Email) {
		errs["email"] = "must be a valid email address"
	}
	if len(req.Password) < 8 {
		errs["password"] = "must be at least 8 characters"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, toAuthResp(res))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrAccountDisabled):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Account disabled"})
	default:
		return internalError(c)
	}
}

// Refresh: rotate the presented refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrors{"refreshToken": "required"}})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{
			"accessToken":  pair.Access.Raw,
			"refreshToken": pair.Refresh.Raw,
		})
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid refresh token"})
	default:
		return internalError(c)
	}
}

// Logout: revoke the refresh token if it exists. Always 200; revoking twice
// or revoking a token that never existed is not an error for the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)

	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		ctx, cancel := reqCtx(c)
		defer cancel()
		if err := h.Auth.Logout(ctx, raw); err != nil {
			c.Logger().Errorf("logout: revoke failed: %v", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// ForgotPassword: always 200 so the response never reveals whether the
// email is registered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrors{"body": "invalid json"}})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(req.Email) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrors{"email": "must be a valid email address"}})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.ForgotPassword(ctx, req.Email); err != nil {
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// ResetPassword: consume the reset token and store the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrors{"body": "invalid json"}})
	}

	errs := fieldErrors{}
	if strings.TrimSpace(req.Token) == "" {
		errs["token"] = "required"
	}
	if len(req.NewPassword) < 8 {
		errs["newPassword"] = "must be at least 8 characters"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Auth.ResetPassword(ctx, strings.TrimSpace(req.Token), req.NewPassword)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	case errors.Is(err, service.ErrInvalidResetToken):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired token"})
	default:
		return internalError(c)
	}
}

// Me: resolve the bearer access token to the current user.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Auth.GetCurrentUser(ctx, middleware.AccessToken(c))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(user)})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired token"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	default:
		return internalError(c)
	}
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
}
