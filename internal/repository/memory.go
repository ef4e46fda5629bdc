package repository

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/protonicfit/auth-api/internal/model"
)

// NewMySQLStore wires the MySQL repositories into a Store.
func NewMySQLStore(db *sql.DB) *Store {
	return &Store{
		Users:         NewUserRepo(db),
		Profiles:      NewProfileRepo(db),
		Stats:         NewStatsRepo(db),
		RefreshTokens: NewTokenRepo(db),
		ResetTokens:   NewResetTokenRepo(db),
	}
}

// NewMemoryStore returns a map-backed Store with the same observable
// behavior as the MySQL one. It backs demo mode (STORE_DRIVER=memory) and
// the test suites; no query engine is involved.
func NewMemoryStore() *Store {
	return &Store{
		Users:         &memUsers{byID: map[string]model.User{}, byEmail: map[string]string{}},
		Profiles:      &memProfiles{rows: map[string]model.Profile{}},
		Stats:         &memStats{rows: map[string]model.Stats{}},
		RefreshTokens: &memRefreshTokens{rows: map[string]*model.RefreshToken{}},
		ResetTokens:   &memResetTokens{rows: map[string]*model.PasswordResetToken{}},
	}
}

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]model.User
	byEmail map[string]string // normalized email -> user ID
}

func (m *memUsers) Create(ctx context.Context, email, passwordHash string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := m.byEmail[email]; ok {
		return model.User{}, ErrEmailExists
	}
	now := time.Now().UTC()
	u := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byID[u.ID] = u
	m.byEmail[email] = u.ID
	return u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return m.byID[id], nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *memUsers) TouchLastLogin(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		now := time.Now().UTC()
		u.LastLogin = &now
		m.byID[id] = u
	}
	return nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	m.byID[id] = u
	return nil
}

type memProfiles struct {
	mu   sync.Mutex
	rows map[string]model.Profile
}

func (m *memProfiles) Create(ctx context.Context, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[userID] = model.Profile{UserID: userID, Name: name}
	return nil
}

func (m *memProfiles) GetByUserID(ctx context.Context, userID string) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[userID]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return p, nil
}

type memStats struct {
	mu   sync.Mutex
	rows map[string]model.Stats
}

func (m *memStats) Create(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[userID] = model.Stats{UserID: userID}
	return nil
}

func (m *memStats) GetByUserID(ctx context.Context, userID string) (model.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[userID]
	if !ok {
		return model.Stats{}, ErrNotFound
	}
	return s, nil
}

type memRefreshTokens struct {
	mu   sync.Mutex
	rows map[string]*model.RefreshToken // token hash -> row
}

func (m *memRefreshTokens) Store(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tokenHash] = &model.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (m *memRefreshTokens) Validate(ctx context.Context, tokenHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[tokenHash]
	if !ok || t.RevokedAt != nil || !time.Now().UTC().Before(t.ExpiresAt) {
		return "", ErrNotFound
	}
	return t.UserID, nil
}

func (m *memRefreshTokens) Revoke(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.rows[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now().UTC()
		t.RevokedAt = &now
	}
	return nil
}

func (m *memRefreshTokens) RevokeAllForUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, t := range m.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

type memResetTokens struct {
	mu   sync.Mutex
	rows map[string]*model.PasswordResetToken
}

func (m *memResetTokens) Store(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tokenHash] = &model.PasswordResetToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (m *memResetTokens) Consume(ctx context.Context, tokenHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[tokenHash]
	if !ok || t.UsedAt != nil || !time.Now().UTC().Before(t.ExpiresAt) {
		return "", ErrNotFound
	}
	now := time.Now().UTC()
	t.UsedAt = &now
	return t.UserID, nil
}
