// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// invalidation_log.go records cache invalidation events in the database for
// audit and debugging purposes. Each row captures which key was touched,
// when, and why (schedule/delete/flush).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// InvalidationLogStore handles invalidation audit log operations.
type InvalidationLogStore struct {
	db *sql.DB
}

// NewInvalidationLogStore creates a new InvalidationLogStore.
func NewInvalidationLogStore(db *sql.DB) *InvalidationLogStore {
	return &InvalidationLogStore{db: db}
}

// Log records a cache invalidation event. Best-effort: failures are logged
// and swallowed, the cache itself is already consistent.
func (s *InvalidationLogStore) Log(ctx context.Context, typ string, objectID int64, action string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prerender_invalidations (type, object_id, action)
		VALUES ($1, $2, $3)
	`, typ, objectID, action)
	if err != nil {
		slog.Warn("failed to log invalidation",
			"type", typ,
			"object_id", objectID,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("invalidation logged",
		"type", typ,
		"object_id", objectID,
		"action", action,
	)
}

// Recent returns the most recent invalidation events for debugging,
// limited to the specified count.
func (s *InvalidationLogStore) Recent(ctx context.Context, limit int) ([]InvalidationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, object_id, action, invalidated_at
		FROM prerender_invalidations
		ORDER BY invalidated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invalidation log: %w", err)
	}
	defer rows.Close()

	var entries []InvalidationEntry
	for rows.Next() {
		var e InvalidationEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.ObjectID, &e.Action, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan invalidation log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InvalidationEntry represents a single invalidation event.
type InvalidationEntry struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	ObjectID      int64     `json:"object_id"`
	Action        string    `json:"action"`
	InvalidatedAt time.Time `json:"invalidated_at"`
}
