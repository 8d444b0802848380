package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shortloop/shortloop/internal/events"
)

const createClickEventsTable = `
CREATE TABLE IF NOT EXISTS click_events (
	event_id   TEXT PRIMARY KEY,
	link_id    TEXT NOT NULL,
	code       TEXT NOT NULL,
	clicked_at TIMESTAMPTZ NOT NULL,
	referrer   TEXT,
	user_agent TEXT,
	ip_hash    TEXT,
	country    TEXT
)`

const insertClickEvent = `
INSERT INTO click_events (event_id, link_id, code, clicked_at, referrer, user_agent, ip_hash, country)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (event_id) DO NOTHING`

// ClickEventsRepository writes click events into the analytics database.
// Inserts are keyed by event_id so at-least-once delivery from the stream
// collapses into exactly-once rows.
type ClickEventsRepository struct {
	pool *pgxpool.Pool
}

func NewClickEventsRepository(ctx context.Context, pool *pgxpool.Pool) (*ClickEventsRepository, error) {
	if _, err := pool.Exec(ctx, createClickEventsTable); err != nil {
		return nil, fmt.Errorf("ensure click_events table: %w", err)
	}
	return &ClickEventsRepository{pool: pool}, nil
}

// InsertOnce stores the event and reports whether a new row was written.
// false with a nil error means the event was a duplicate.
func (r *ClickEventsRepository) InsertOnce(ctx context.Context, event events.LinkClicked) (bool, error) {
	clickedAt, err := time.Parse(time.RFC3339Nano, event.ClickedAt)
	if err != nil {
		return false, fmt.Errorf("parse clickedAt %q: %w", event.ClickedAt, err)
	}

	tag, err := r.pool.Exec(ctx, insertClickEvent,
		event.EventID,
		event.LinkID,
		event.Code,
		clickedAt,
		event.Referrer,
		event.UserAgent,
		event.IPHash,
		event.Country,
	)
	if err != nil {
		return false, fmt.Errorf("insert click event: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
