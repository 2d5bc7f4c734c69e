package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveLanguage persists the user's interface language so it survives
// restarts.
func (db *DB) SaveLanguage(userID int64, lang string) error {
	_, err := db.conn.Exec(`
		INSERT INTO languages (user_id, lang, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET lang = excluded.lang, updated_at = excluded.updated_at`,
		userID, lang, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save language: %w", err)
	}
	return nil
}

// Language returns the stored language for a user, "" when none is saved.
func (db *DB) Language(userID int64) (string, error) {
	var lang string
	err := db.conn.QueryRow(`SELECT lang FROM languages WHERE user_id = ?`, userID).Scan(&lang)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get language: %w", err)
	}
	return lang, nil
}

// CheckRateLimit reports whether the user may issue another AI-bound request
// and counts the attempt. The window is one minute.
func (db *DB) CheckRateLimit(userID int64) (bool, error) {
	now := time.Now().Unix()

	var windowStart, count int64
	err := db.conn.QueryRow(
		`SELECT window_start, count FROM rate_limits WHERE user_id = ?`, userID,
	).Scan(&windowStart, &count)

	switch {
	case err == sql.ErrNoRows:
		_, err = db.conn.Exec(
			`INSERT INTO rate_limits (user_id, window_start, count) VALUES (?, ?, 1)`,
			userID, now)
		if err != nil {
			return false, fmt.Errorf("init rate limit: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("read rate limit: %w", err)
	}

	if now-windowStart >= 60 {
		_, err = db.conn.Exec(
			`UPDATE rate_limits SET window_start = ?, count = 1 WHERE user_id = ?`,
			now, userID)
		if err != nil {
			return false, fmt.Errorf("reset rate limit: %w", err)
		}
		return true, nil
	}

	if count >= int64(db.limitPerMinute) {
		return false, nil
	}

	_, err = db.conn.Exec(
		`UPDATE rate_limits SET count = count + 1 WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("bump rate limit: %w", err)
	}
	return true, nil
}
