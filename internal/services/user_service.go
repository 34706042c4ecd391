package services

import (
	"context"
	"database/sql"

	"github.com/whisperwall/whisperwall-backend/internal/database"
	"github.com/whisperwall/whisperwall-backend/internal/models"
	"github.com/whisperwall/whisperwall-backend/pkg/utils"
)

// GetUserIDByUsername resolves an active profile's username to its user id.
// Returns ErrNotFound for unknown or deactivated profiles.
func GetUserIDByUsername(ctx context.Context, username string) (string, error) {
	var userID string
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id FROM users WHERE LOWER(username) = $1 AND is_active = TRUE
	`, utils.NormalizeUsername(username)).Scan(&userID)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// GetUserByUsername returns the full user row for sign-in.
func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, is_active
		FROM users WHERE LOWER(username) = $1
	`, utils.NormalizeUsername(username)).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.IsActive)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns the user row for an authenticated caller.
func GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, is_active
		FROM users WHERE id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.IsActive)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new profile. The username's unique constraint surfaces
// as a pq unique violation the handler reports as "username taken".
func CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	u := &models.User{
		Username: utils.NormalizeUsername(username),
		IsActive: true,
	}
	err := database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, u.Username, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = passwordHash
	return u, nil
}
