// Package ingest feeds externally supplied message records into the
// corpus store. Producers either call the engine directly (the HTTP
// API does) or publish corpus.* events on the bus.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/bus"
	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
	"github.com/ghndrx/hearth-mobile-sub001/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine handles idempotent ingestion of messages into the store.
// Start subscribes it to corpus.* events on the bus.
type Engine struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewEngine creates a new ingest engine.
func NewEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{db: db, bus: b, logger: logger}
}

// Start subscribes to inbound corpus events on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe("corpus.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(ctx, evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) handleEvent(ctx context.Context, evt bus.Event) {
	switch evt.Kind {
	case bus.KindCorpusMessage:
		msg, ok := evt.Payload.(*search.Message)
		if !ok {
			return
		}
		if err := e.IngestMessage(ctx, msg); err != nil {
			e.logger.Error("failed to ingest message", zap.Error(err), zap.String("msg_id", msg.ID))
		}
	case bus.KindCorpusBatch:
		msgs, ok := evt.Payload.([]*search.Message)
		if !ok {
			return
		}
		if err := e.IngestBatch(ctx, msgs); err != nil {
			e.logger.Error("failed to ingest batch", zap.Error(err), zap.Int("count", len(msgs)))
		} else {
			e.logger.Info("batch ingested", zap.Int("messages", len(msgs)))
		}
	}
}

// IngestMessage stores a single message (idempotent on message ID) and
// announces the corpus change. Missing message and attachment IDs are
// minted here so producers may omit them.
func (e *Engine) IngestMessage(ctx context.Context, msg *search.Message) error {
	fillIDs(msg)
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().UnixMilli()
	}

	if err := e.db.UpsertMessage(ctx, msg); err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}

	e.bus.Publish(bus.Event{
		Kind:      bus.KindMessageUpserted,
		Timestamp: time.Now(),
		Payload: map[string]string{
			"channel_id": msg.ChannelID,
			"msg_id":     msg.ID,
		},
	})
	return nil
}

// IngestBatch stores a batch of messages in one transaction and
// announces the corpus change once.
func (e *Engine) IngestBatch(ctx context.Context, msgs []*search.Message) error {
	now := time.Now().UnixMilli()
	for _, m := range msgs {
		fillIDs(m)
		if m.CreatedAt == 0 {
			m.CreatedAt = now
		}
	}

	if err := e.db.BatchUpsertMessages(ctx, msgs); err != nil {
		return fmt.Errorf("batch upsert: %w", err)
	}

	e.bus.Publish(bus.Event{
		Kind:      bus.KindMessageUpserted,
		Timestamp: time.Now(),
		Payload: map[string]string{
			"count": fmt.Sprintf("%d", len(msgs)),
		},
	})
	return nil
}

// IngestUser upserts a reference user record.
func (e *Engine) IngestUser(ctx context.Context, u *search.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return e.db.UpsertUser(ctx, u)
}

// IngestChannel upserts a reference channel record.
func (e *Engine) IngestChannel(ctx context.Context, c *search.Channel) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return e.db.UpsertChannel(ctx, c)
}

func fillIDs(m *search.Message) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	for i := range m.Attachments {
		if m.Attachments[i].ID == "" {
			m.Attachments[i].ID = uuid.New().String()
		}
	}
}
