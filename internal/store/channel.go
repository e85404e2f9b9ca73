package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
)

// UpsertChannel inserts or updates a channel record.
func (db *DB) UpsertChannel(ctx context.Context, c *search.Channel) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO channels (id, name, server_name, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE channels.name END,
			server_name = CASE WHEN excluded.server_name != '' THEN excluded.server_name ELSE channels.server_name END,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.ServerName, now)
	return err
}

// LookupChannel returns the channel with the given ID, or the zero
// Channel if unknown. Part of search.Corpus.
func (db *DB) LookupChannel(ctx context.Context, id string) (search.Channel, error) {
	var c search.Channel
	err := db.QueryRowContext(ctx,
		`SELECT id, name, server_name FROM channels WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.ServerName)
	if errors.Is(err, sql.ErrNoRows) {
		return search.Channel{}, nil
	}
	if err != nil {
		return search.Channel{}, err
	}
	return c, nil
}

// ListChannels returns all channels ordered by server then name.
func (db *DB) ListChannels(ctx context.Context) ([]search.Channel, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, server_name FROM channels
		ORDER BY server_name, name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var channels []search.Channel
	for rows.Next() {
		var c search.Channel
		if err := rows.Scan(&c.ID, &c.Name, &c.ServerName); err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}
