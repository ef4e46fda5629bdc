package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/protonicfit/auth-api/internal/model"
)

// ProfileRepo is the MySQL-backed ProfileStore.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Create inserts the display profile row created at registration.
func (r *ProfileRepo) Create(ctx context.Context, userID, name string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_profiles (user_id, name) VALUES (?,?)", userID, name)
	return err
}

// GetByUserID fetches a user's profile.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (model.Profile, error) {
	var (
		p    model.Profile
		bio  sql.NullString
		avat sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id,name,bio,avatar_url FROM user_profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.UserID, &p.Name, &bio, &avat)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	if bio.Valid {
		p.Bio = &bio.String
	}
	if avat.Valid {
		p.AvatarURL = &avat.String
	}
	return p, nil
}

// StatsRepo is the MySQL-backed StatsStore.
type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// Create inserts the zero-valued counters row at registration.
func (r *StatsRepo) Create(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_stats (user_id) VALUES (?)", userID)
	return err
}

// GetByUserID fetches a user's aggregate counters.
func (r *StatsRepo) GetByUserID(ctx context.Context, userID string) (model.Stats, error) {
	var s model.Stats
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id,total_workouts,total_workout_minutes FROM user_stats WHERE user_id=? LIMIT 1",
		userID).Scan(&s.UserID, &s.TotalWorkouts, &s.TotalMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stats{}, ErrNotFound
	}
	if err != nil {
		return model.Stats{}, err
	}
	return s, nil
}
