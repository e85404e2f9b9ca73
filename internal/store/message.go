package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
)

// UpsertMessage inserts or updates a message and replaces its
// attachment rows. Idempotent on message ID.
func (db *DB) UpsertMessage(ctx context.Context, m *search.Message) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertMessageTx(ctx, tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

// BatchUpsertMessages upserts many messages in a single transaction.
func (db *DB) BatchUpsertMessages(ctx context.Context, msgs []*search.Message) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range msgs {
		if err := upsertMessageTx(ctx, tx, m); err != nil {
			return fmt.Errorf("upsert message %q: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

func upsertMessageTx(ctx context.Context, tx *sql.Tx, m *search.Message) error {
	now := time.Now().UnixMilli()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, channel_id, author_id, content, created_at, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			channel_id = excluded.channel_id,
			author_id = excluded.author_id,
			content = excluded.content,
			created_at = excluded.created_at`,
		m.ID, m.ChannelID, m.AuthorID, m.Content, m.CreatedAt, now); err != nil {
		return err
	}

	// Attachments are immutable per message; replace wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE message_id = ?`, m.ID); err != nil {
		return err
	}
	for _, a := range m.Attachments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attachments (id, message_id, filename, content_type, size)
			VALUES (?, ?, ?, ?, ?)`,
			a.ID, m.ID, a.Filename, a.ContentType, a.Size); err != nil {
			return err
		}
	}
	return nil
}

// FetchMessages returns a snapshot of the whole corpus with attachments
// populated, in no particular order. Part of search.Corpus.
func (db *DB) FetchMessages(ctx context.Context) ([]search.Message, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, channel_id, author_id, content, created_at
		FROM messages`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []search.Message
	index := make(map[string]int)
	for rows.Next() {
		var m search.Message
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.AuthorID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		index[m.ID] = len(msgs)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	atts, err := db.QueryContext(ctx, `
		SELECT id, message_id, filename, content_type, size
		FROM attachments`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = atts.Close() }()

	for atts.Next() {
		var a search.Attachment
		var msgID string
		if err := atts.Scan(&a.ID, &msgID, &a.Filename, &a.ContentType, &a.Size); err != nil {
			return nil, err
		}
		if i, ok := index[msgID]; ok {
			msgs[i].Attachments = append(msgs[i].Attachments, a)
		}
	}
	return msgs, atts.Err()
}

// MessageCount returns the total number of messages.
func (db *DB) MessageCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
