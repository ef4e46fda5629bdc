package model

import "time"

// User represents an application user record as stored in the `users` table.
// The json tags are omitted here because these structs are used internally by
// the repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID            – primary key, UUID string.
//  Email         – unique, lowercased email address.
//  PasswordHash  – bcrypt hashed password; never leaves the service.
//  IsActive      – whether the account may log in.
//  EmailVerified – whether the address has been confirmed.
//  LastLogin     – timestamp of the most recent successful login (nullable).
type User struct {
	ID            string     // users.id
	Email         string     // users.email
	PasswordHash  string     // users.password_hash
	IsActive      bool       // users.is_active
	EmailVerified bool       // users.email_verified
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
	LastLogin     *time.Time // users.last_login (nullable)
}

// Profile is the optional 1:1 display record created at registration when a
// name is supplied.
type Profile struct {
	UserID    string  // user_profiles.user_id
	Name      string  // user_profiles.name
	Bio       *string // user_profiles.bio (nullable)
	AvatarURL *string // user_profiles.avatar_url (nullable)
}

// Stats holds aggregate usage counters. The auth core creates the row with
// zero values at registration and only ever reads it afterwards; workout
// logging elsewhere owns the mutations.
type Stats struct {
	UserID        string // user_stats.user_id
	TotalWorkouts int    // user_stats.total_workouts
	TotalMinutes  int    // user_stats.total_workout_minutes
}
