package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/protonicfit/auth-api/internal/config"
	"github.com/protonicfit/auth-api/internal/middleware"
	"github.com/protonicfit/auth-api/internal/repository"
	"github.com/protonicfit/auth-api/internal/service"
	"github.com/protonicfit/auth-api/internal/session"
)

type nopMailer struct{}

func (nopMailer) SendPasswordReset(ctx context.Context, email, rawToken string, exp time.Time) error {
	return nil
}

func newTestServer() *echo.Echo {
	cfg := config.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		ResetSecret:   "reset-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
		ResetTTL:      15 * time.Minute,
		BcryptCost:    bcrypt.MinCost,
	}
	store := repository.NewMemoryStore()
	sessions := session.NewManager(store.RefreshTokens, cfg.RefreshSecret, cfg.RefreshTTL)
	auth := service.NewAuthService(store, sessions, nopMailer{}, cfg)
	h := NewAuthHandler(auth)

	e := echo.New()
	g := e.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)
	g.GET("/me", h.Me, middleware.RequireBearer())
	return e
}

func doJSON(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestRegister_Created(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"a@x.com","password":"password1","name":"Ann"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	user := body["user"].(map[string]any)
	require.NotEmpty(t, user["id"])
	require.Equal(t, "a@x.com", user["email"])
	require.Equal(t, false, user["email_verified"])
	require.NotContains(t, rec.Body.String(), "password_hash")

	profile := body["profile"].(map[string]any)
	require.Equal(t, "Ann", profile["name"])
	stats := body["stats"].(map[string]any)
	require.EqualValues(t, 0, stats["total_workouts"])
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"not-an-email","password":"short"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errs := decode(t, rec)["errors"].(map[string]any)
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	first := doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"b@x.com","password":"password1"}`, nil)
	require.Equal(t, http.StatusCreated, first.Code)

	second := doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"b@x.com","password":"password1"}`, nil)
	require.Equal(t, http.StatusConflict, second.Code)
}

func TestLogin_StatusMapping(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"c@x.com","password":"password1"}`, nil)

	ok := doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"c@x.com","password":"password1"}`, nil)
	require.Equal(t, http.StatusOK, ok.Code)

	wrongPass := doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"c@x.com","password":"wrongpass1"}`, nil)
	noUser := doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"nobody@x.com","password":"password1"}`, nil)
	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, noUser.Code)
	// Identical bodies: the response must not reveal which check failed.
	require.Equal(t, wrongPass.Body.String(), noUser.Body.String())
}

func TestRefresh_RotationAndReplay(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	reg := decode(t, doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"d@x.com","password":"password1"}`, nil))
	oldRefresh := reg["refresh_token"].(string)

	first := doJSON(e, http.MethodPost, "/auth/refresh",
		`{"refreshToken":"`+oldRefresh+`"}`, nil)
	require.Equal(t, http.StatusOK, first.Code)
	body := decode(t, first)
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])

	replay := doJSON(e, http.MethodPost, "/auth/refresh",
		`{"refreshToken":"`+oldRefresh+`"}`, nil)
	require.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestRefresh_MissingToken(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/auth/refresh", `{}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLogout_AlwaysOK(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	reg := decode(t, doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"e@x.com","password":"password1"}`, nil))
	refresh := reg["refresh_token"].(string)

	for i := 0; i < 2; i++ {
		rec := doJSON(e, http.MethodPost, "/auth/logout",
			`{"refreshToken":"`+refresh+`"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, true, decode(t, rec)["ok"])
	}

	// The revoked token no longer refreshes.
	rec := doJSON(e, http.MethodPost, "/auth/refresh",
		`{"refreshToken":"`+refresh+`"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPassword_AntiEnumeration(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"f@x.com","password":"password1"}`, nil)

	known := doJSON(e, http.MethodPost, "/auth/forgot-password", `{"email":"f@x.com"}`, nil)
	unknown := doJSON(e, http.MethodPost, "/auth/forgot-password", `{"email":"ghost@x.com"}`, nil)
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	require.Equal(t, known.Body.String(), unknown.Body.String())

	bad := doJSON(e, http.MethodPost, "/auth/forgot-password", `{"email":"nope"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, bad.Code)
}

func TestResetPassword_BadToken(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/auth/reset-password",
		`{"token":"not.a.jwt","newPassword":"password2"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	short := doJSON(e, http.MethodPost, "/auth/reset-password",
		`{"token":"whatever","newPassword":"short"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, short.Code)
}

func TestMe(t *testing.T) {
	t.Parallel()
	e := newTestServer()

	reg := decode(t, doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"g@x.com","password":"password1"}`, nil))
	access := reg["access_token"].(string)
	refresh := reg["refresh_token"].(string)

	ok := doJSON(e, http.MethodGet, "/auth/me", "", map[string]string{
		"Authorization": "Bearer " + access,
	})
	require.Equal(t, http.StatusOK, ok.Code)
	user := decode(t, ok)["user"].(map[string]any)
	require.Equal(t, "g@x.com", user["email"])

	noHeader := doJSON(e, http.MethodGet, "/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, noHeader.Code)

	garbage := doJSON(e, http.MethodGet, "/auth/me", "", map[string]string{
		"Authorization": "Bearer garbage",
	})
	require.Equal(t, http.StatusUnauthorized, garbage.Code)

	// A refresh token in the Authorization header must not pass.
	wrongPurpose := doJSON(e, http.MethodGet, "/auth/me", "", map[string]string{
		"Authorization": "Bearer " + refresh,
	})
	require.Equal(t, http.StatusUnauthorized, wrongPurpose.Code)
}
