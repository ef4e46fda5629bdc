package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/protonicfit/auth-api/internal/config"
	"github.com/protonicfit/auth-api/internal/model"
	"github.com/protonicfit/auth-api/internal/repository"
	"github.com/protonicfit/auth-api/internal/session"
	"github.com/protonicfit/auth-api/internal/utils"
)

type sentMail struct {
	email    string
	rawToken string
	exp      time.Time
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, email, rawToken string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{email: email, rawToken: rawToken, exp: exp})
	return nil
}

func (f *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no reset mail was sent")
	return f.sent[len(f.sent)-1]
}

func testConfig() config.Config {
	return config.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		ResetSecret:   "reset-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
		ResetTTL:      15 * time.Minute,
		BcryptCost:    bcrypt.MinCost, // keep the suite fast
	}
}

func newTestAuth(cfg config.Config) (*AuthService, *repository.Store, *fakeMailer) {
	store := repository.NewMemoryStore()
	sessions := session.NewManager(store.RefreshTokens, cfg.RefreshSecret, cfg.RefreshTTL)
	mailer := &fakeMailer{}
	return NewAuthService(store, sessions, mailer, cfg), store, mailer
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuth(testConfig())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "password1", "Ann")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", reg.User.Email)
	require.False(t, reg.User.EmailVerified)
	require.True(t, reg.User.IsActive)
	require.NotNil(t, reg.Profile)
	require.Equal(t, "Ann", reg.Profile.Name)
	require.NotNil(t, reg.Stats)
	require.Zero(t, reg.Stats.TotalWorkouts)
	require.Zero(t, reg.Stats.TotalMinutes)
	require.NotEmpty(t, reg.Access.Raw)
	require.NotEmpty(t, reg.Refresh.Raw)

	login, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegister_EmailNormalized(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuth(testConfig())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "  MiXeD@X.CoM ", "password1", "")
	require.NoError(t, err)
	require.Equal(t, "mixed@x.com", reg.User.Email)
	require.Nil(t, reg.Profile, "no profile without a name")

	_, err = svc.Login(ctx, "mixed@x.com", "password1")
	require.NoError(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuth(testConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "b@x.com", "password1", "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "b@x.com", "password1", "")
	require.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuth(testConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "c@x.com", "password1", "")
	require.NoError(t, err)

	// Wrong password and unknown email yield the identical error so a
	// caller cannot probe which emails are registered.
	_, wrongPass := svc.Login(ctx, "c@x.com", "wrongpass1")
	_, noUser := svc.Login(ctx, "nobody@x.com", "password1")
	require.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, noUser, ErrInvalidCredentials)
}

// inactiveUsers wraps a UserStore and reports every user as disabled.
type inactiveUsers struct{ repository.UserStore }

func (w inactiveUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := w.UserStore.GetByEmail(ctx, email)
	u.IsActive = false
	return u, err
}

func TestLogin_DisabledAccount(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	svc, store, _ := newTestAuth(cfg)
	ctx := context.Background()

	_, err := svc.Register(ctx, "d@x.com", "password1", "")
	require.NoError(t, err)

	store.Users = inactiveUsers{store.Users}
	_, err = svc.Login(ctx, "d@x.com", "password1")
	require.ErrorIs(t, err, ErrAccountDisabled)

	// Wrong password on a disabled account still reads as bad credentials;
	// the disabled status is only revealed once identity is confirmed.
	_, err = svc.Login(ctx, "d@x.com", "wrongpass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesAndRejectsReplay(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuth(testConfig())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "e@x.com", "password1", "")
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, reg.Refresh.Raw)
	require.NoError(t, err)
	require.NotEqual(t, reg.Refresh.Raw, pair.Refresh.Raw)

	// The rotated-out token is single-use.
	_, err = svc.Refresh(ctx, reg.Refresh.Raw)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The replacement still works.
	_, err = svc.Refresh(ctx, pair.Refresh.Raw)
	require.NoError(t, err)
}

func TestRefresh_GarbageToken(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuth(testConfig())

	_, err := svc.Refresh(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_TamperedTokenIsBurned(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	svc, store, _ := newTestAuth(cfg)
	ctx := context.Background()

	// A stored row whose token does not verify cryptographically: signed
	// under the wrong secret but planted in the store by hash.
	forged, err := utils.SignToken("some-other-secret", "user-x", "x@x.com", utils.PurposeRefresh, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.RefreshTokens.Store(ctx, "user-x", utils.HashToken(forged.Raw), forged.Exp))

	_, err = svc.Refresh(ctx, forged.Raw)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Defensive revocation: the matching record is dead afterwards.
	_, err = store.RefreshTokens.Validate(ctx, utils.HashToken(forged.Raw))
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLogout_Idempotent(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuth(testConfig())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "f@x.com", "password1", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, reg.Refresh.Raw))
	require.NoError(t, svc.Logout(ctx, reg.Refresh.Raw))
	require.NoError(t, svc.Logout(ctx, "never-issued"))

	_, err = svc.Refresh(ctx, reg.Refresh.Raw)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	t.Parallel()
	svc, _, mailer := newTestAuth(testConfig())

	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@x.com"))
	require.Empty(t, mailer.sent)
}

func TestResetPassword_FullFlow(t *testing.T) {
	t.Parallel()
	svc, _, mailer := newTestAuth(testConfig())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "g@x.com", "password1", "")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "g@x.com"))
	mail := mailer.last(t)
	require.Equal(t, "g@x.com", mail.email)

	require.NoError(t, svc.ResetPassword(ctx, mail.rawToken, "password2"))

	// Old password out, new password in.
	_, err = svc.Login(ctx, "g@x.com", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "g@x.com", "password2")
	require.NoError(t, err)

	// Every refresh token issued before the reset is dead.
	_, err = svc.Refresh(ctx, reg.Refresh.Raw)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Reset tokens are single-use.
	err = svc.ResetPassword(ctx, mail.rawToken, "password3")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.ResetTTL = -16 * time.Minute // issued already expired
	svc, _, mailer := newTestAuth(cfg)
	ctx := context.Background()

	_, err := svc.Register(ctx, "h@x.com", "password1", "")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "h@x.com"))

	err = svc.ResetPassword(ctx, mailer.last(t).rawToken, "password2")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_GarbageToken(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuth(testConfig())

	err := svc.ResetPassword(context.Background(), "not.a.jwt", "password2")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

// missingUsers wraps a UserStore and reports every ID lookup as missing.
type missingUsers struct{ repository.UserStore }

func (w missingUsers) GetByID(ctx context.Context, id string) (model.User, error) {
	return model.User{}, repository.ErrNotFound
}

func TestGetCurrentUser(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestAuth(testConfig())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "i@x.com", "password1", "")
	require.NoError(t, err)

	user, err := svc.GetCurrentUser(ctx, reg.Access.Raw)
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, user.ID)

	// A refresh token is not an access token, even though it is a valid JWT.
	_, err = svc.GetCurrentUser(ctx, reg.Refresh.Raw)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.GetCurrentUser(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)

	store.Users = missingUsers{store.Users}
	_, err = svc.GetCurrentUser(ctx, reg.Access.Raw)
	require.ErrorIs(t, err, ErrUserNotFound)
}
