package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL, the system of record for users,
// messages, blocks and reports.
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist.
func InitPostgresTables() error {
	queries := []string{
		// Users table (public profile data only; no email, no raw IPs)
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(20) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Anonymous messages. sender_identity is always the salted hash of the
		// sender's address — the raw address is never written anywhere.
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			sender_identity VARCHAR(64) NOT NULL,
			content VARCHAR(500) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			is_read BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Per-recipient block registry. The UNIQUE pair is what guarantees
		// concurrent duplicate adds collapse to one row + one conflict.
		`CREATE TABLE IF NOT EXISTS blocked_senders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			blocked_identity VARCHAR(64) NOT NULL,
			reason VARCHAR(50) NOT NULL DEFAULT 'other',
			blocked_label VARCHAR(100),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, blocked_identity)
		)`,

		// Reports. Deliberately no uniqueness constraint: repeated reports of
		// the same message by the same reporter are allowed.
		`CREATE TABLE IF NOT EXISTS reports (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			message_id UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
			reporter_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			reason VARCHAR(50) NOT NULL,
			details VARCHAR(500),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username))`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient_created ON messages(recipient_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient_sender_created ON messages(recipient_id, sender_identity, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_blocked_senders_user_id ON blocked_senders(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_blocked_senders_identity ON blocked_senders(blocked_identity)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_message_id ON reports(message_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_reporter_id ON reports(reporter_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
