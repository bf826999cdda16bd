package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/stepquiz/internal/domain"
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

const userColumns = `id, email, created_at, total_studied, total_mastered, total_errors`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.CreatedAt,
		&u.Stats.TotalStudied,
		&u.Stats.TotalMastered,
		&u.Stats.TotalErrors,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUser retrieves a user by id. It returns nil, nil when the user does not exist.
func (db *DB) FindUser(ctx context.Context, id string) (*domain.User, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return u, nil
}

// FindUserByEmail retrieves a user by email. It returns nil, nil when absent.
func (db *DB) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to find user by email %s: %w", email, err)
	}
	return u, nil
}

// EnsureUser returns the account for email, creating it with zeroed
// counters on first use.
func (db *DB) EnsureUser(ctx context.Context, email string) (*domain.User, error) {
	existing, err := db.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, created_at)
		VALUES (?, ?, ?)
	`, u.ID, u.Email, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user %s: %w", email, err)
	}
	return u, nil
}

// StudyHistory returns a snapshot of every study record of a user.
func (db *DB) StudyHistory(ctx context.Context, userID string) (domain.StudyHistory, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT question_key, last_studied, is_correct, is_error, is_mastered
		FROM study_history WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get study history for user %s: %w", userID, err)
	}
	defer rows.Close()

	history := make(domain.StudyHistory)
	for rows.Next() {
		var (
			key         string
			lastStudied sql.NullTime
			rec         domain.StudyRecord
		)
		if err := rows.Scan(&key, &lastStudied, &rec.IsCorrect, &rec.IsError, &rec.IsMastered); err != nil {
			return nil, fmt.Errorf("failed to scan study record for user %s: %w", userID, err)
		}
		if lastStudied.Valid {
			rec.LastStudied = lastStudied.Time
		}
		history[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read study history for user %s: %w", userID, err)
	}
	return history, nil
}

// RecordAnswer overwrites the study record of a question after an answer
// and bumps the user's counters: total_studied on a correct answer,
// total_errors on an incorrect one.
func (db *DB) RecordAnswer(ctx context.Context, userID, questionKey string, isCorrect bool, at time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin answer transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO study_history (user_id, question_key, last_studied, is_correct, is_error, is_mastered)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(user_id, question_key) DO UPDATE SET
			last_studied = excluded.last_studied,
			is_correct = excluded.is_correct,
			is_error = excluded.is_error,
			is_mastered = 0
	`, userID, questionKey, at.UTC(), isCorrect, !isCorrect)
	if err != nil {
		return fmt.Errorf("failed to record answer for %s: %w", questionKey, err)
	}

	counter := "total_errors"
	if isCorrect {
		counter = "total_studied"
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET `+counter+` = `+counter+` + 1 WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("failed to update %s for user %s: %w", counter, userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answer for %s: %w", questionKey, err)
	}
	return nil
}

// SetMastered sets the mastery flag of a question. Marking a question as
// mastered also clears its error flag and bumps total_mastered; unmarking
// only clears the flag. Other fields are left untouched.
func (db *DB) SetMastered(ctx context.Context, userID, questionKey string, mastered bool) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin mastery transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO study_history (user_id, question_key, is_mastered)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, question_key) DO UPDATE SET
			is_mastered = excluded.is_mastered,
			is_error = CASE WHEN excluded.is_mastered THEN 0 ELSE is_error END
	`, userID, questionKey, mastered)
	if err != nil {
		return fmt.Errorf("failed to set mastery for %s: %w", questionKey, err)
	}

	if mastered {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET total_mastered = total_mastered + 1 WHERE id = ?`, userID); err != nil {
			return fmt.Errorf("failed to update total_mastered for user %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mastery for %s: %w", questionKey, err)
	}
	return nil
}
