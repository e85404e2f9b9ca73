package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
)

// UpsertUser inserts or updates a user. Empty fields never overwrite
// known names.
func (db *DB) UpsertUser(ctx context.Context, u *search.User) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, username, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name != '' THEN excluded.display_name ELSE users.display_name END,
			username = CASE WHEN excluded.username != '' THEN excluded.username ELSE users.username END,
			updated_at = excluded.updated_at`,
		u.ID, u.DisplayName, u.Username, now)
	return err
}

// BulkUpsertUsers inserts or updates multiple users in one transaction.
func (db *DB) BulkUpsertUsers(ctx context.Context, users []search.User) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, u := range users {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, display_name, username, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				display_name = CASE WHEN excluded.display_name != '' THEN excluded.display_name ELSE users.display_name END,
				username = CASE WHEN excluded.username != '' THEN excluded.username ELSE users.username END,
				updated_at = excluded.updated_at`,
			u.ID, u.DisplayName, u.Username, now); err != nil {
			return fmt.Errorf("upsert user %q: %w", u.ID, err)
		}
	}
	return tx.Commit()
}

// LookupUser returns the user with the given ID, or the zero User if
// unknown. Part of search.Corpus.
func (db *DB) LookupUser(ctx context.Context, id string) (search.User, error) {
	var u search.User
	err := db.QueryRowContext(ctx,
		`SELECT id, display_name, username FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.DisplayName, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return search.User{}, nil
	}
	if err != nil {
		return search.User{}, err
	}
	return u, nil
}
