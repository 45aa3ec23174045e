// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains the durable state of the prerender service:
// cached HTML entries, one-time callback secrets, version tokens, and the
// invalidation audit log. All stores operate on the shared *sql.DB pool.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"prerenderd/internal/cache"
	"prerenderd/internal/models"
)

// EntryStore handles all prerender entry operations. An optional Valkey
// read cache fronts Get; every write invalidates the affected key.
type EntryStore struct {
	db    *sql.DB
	cache *cache.EntryCache
}

// NewEntryStore creates a new EntryStore. The cache may be nil, in which
// case every read hits PostgreSQL.
func NewEntryStore(db *sql.DB, c *cache.EntryCache) *EntryStore {
	return &EntryStore{db: db, cache: c}
}

// Get retrieves an entry by its (type, object_id) key. Returns nil if no
// row exists. Read-through: a miss populates the cache.
func (s *EntryStore) Get(ctx context.Context, typ string, objectID int64) (*models.Entry, error) {
	if s.cache != nil {
		if entry, ok := s.cache.Get(ctx, typ, objectID); ok {
			return entry, nil
		}
	}

	e := &models.Entry{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, object_id, html, version, created_at, updated_at
		FROM prerender_entries WHERE type = $1 AND object_id = $2
	`, typ, objectID).Scan(
		&e.ID, &e.Type, &e.ObjectID, &e.HTML, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, e)
	}
	return e, nil
}

// Save upserts an entry: inserts the row if absent, otherwise replaces its
// html and version and touches updated_at. The bool result reports whether
// the row was created. Atomic per key; concurrent writers race on
// last-write-wins, which is fine since the version stamp governs
// correctness, not timestamp ordering.
func (s *EntryStore) Save(ctx context.Context, html, version, typ string, objectID int64) (*models.Entry, bool, error) {
	e := &models.Entry{}
	var inserted bool
	// xmax = 0 distinguishes a fresh insert from a conflict-update.
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO prerender_entries (type, object_id, html, version)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (type, object_id) DO UPDATE
		SET html = EXCLUDED.html, version = EXCLUDED.version, updated_at = NOW()
		RETURNING id, type, object_id, html, version, created_at, updated_at, (xmax = 0)
	`, typ, objectID, html, version).Scan(
		&e.ID, &e.Type, &e.ObjectID, &e.HTML, &e.Version, &e.CreatedAt, &e.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("save entry: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, typ, objectID)
	}
	return e, inserted, nil
}

// Clear empties an entry's html and version without deleting the row.
// A cleared entry is always stale, forcing a cache miss until the next
// render callback lands.
func (s *EntryStore) Clear(ctx context.Context, typ string, objectID int64) error {
	_, _, err := s.Save(ctx, "", "", typ, objectID)
	return err
}

// Delete removes an entry. Returns whether a row existed.
func (s *EntryStore) Delete(ctx context.Context, typ string, objectID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM prerender_entries WHERE type = $1 AND object_id = $2
	`, typ, objectID)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, typ, objectID)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete entry rows: %w", err)
	}
	return n > 0, nil
}
