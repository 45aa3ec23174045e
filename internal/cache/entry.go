// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// entry.go provides a Valkey-backed read cache in front of the durable
// prerender entry table. Reads of cached HTML far outnumber writes, so a
// hit here skips the DB query entirely. Every write path through the entry
// store invalidates the affected key; the TTL is only a backstop.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"prerenderd/internal/models"
)

const (
	// entryKeyPrefix is the Valkey key prefix for cached entries.
	entryKeyPrefix = "prerender:entry:"

	// DefaultEntryTTL is the backstop expiry for cached entry rows.
	DefaultEntryTTL = 5 * time.Minute
)

// EntryCache caches prerender entry rows in Valkey.
type EntryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEntryCache creates a new entry cache backed by the given Valkey client.
func NewEntryCache(client *redis.Client, ttl time.Duration) *EntryCache {
	if ttl == 0 {
		ttl = DefaultEntryTTL
	}
	return &EntryCache{client: client, ttl: ttl}
}

// Key returns the cache key for a (type, object_id) pair.
func Key(typ string, objectID int64) string {
	return fmt.Sprintf("%s%s:%d", entryKeyPrefix, typ, objectID)
}

// Get retrieves a cached entry. Returns (nil, false) on miss or decode error.
func (ec *EntryCache) Get(ctx context.Context, typ string, objectID int64) (*models.Entry, bool) {
	val, err := ec.client.Get(ctx, Key(typ, objectID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("entry cache get error", "type", typ, "object_id", objectID, "error", err)
		return nil, false
	}

	var entry models.Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		slog.Warn("entry cache decode error", "type", typ, "object_id", objectID, "error", err)
		return nil, false
	}
	return &entry, true
}

// Set stores an entry row with the configured TTL.
func (ec *EntryCache) Set(ctx context.Context, entry *models.Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("entry cache encode error", "type", entry.Type, "object_id", entry.ObjectID, "error", err)
		return
	}
	if err := ec.client.Set(ctx, Key(entry.Type, entry.ObjectID), data, ec.ttl).Err(); err != nil {
		slog.Warn("entry cache set error", "type", entry.Type, "object_id", entry.ObjectID, "error", err)
	}
}

// Invalidate removes a single entry from the cache.
func (ec *EntryCache) Invalidate(ctx context.Context, typ string, objectID int64) {
	if err := ec.client.Del(ctx, Key(typ, objectID)).Err(); err != nil {
		slog.Warn("entry cache invalidate error", "type", typ, "object_id", objectID, "error", err)
	}
}

// InvalidateAll removes all cached entries by scanning for the prefix.
// Used on a full flush, since a version bump staleness-checks every page.
func (ec *EntryCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := ec.client.Scan(ctx, cursor, entryKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("entry cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := ec.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("entry cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("entry cache fully cleared", "deleted", deleted)
	}
}
