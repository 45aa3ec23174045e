// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the core domain types shared across the prerender
// service: cache entries, content-change events, storage keys, and the
// error taxonomy.
package models

import "time"

// GracePeriod is how long an unversioned (legacy) entry is still served
// after its last update. Entries written before version stamping existed
// carry no version token; anything newer always does, so the window never
// applies to fresh writes.
const GracePeriod = 20 * time.Minute

// Entry is one cached prerender result, keyed by (type, object_id).
// HTML is empty until the external renderer has posted a result back.
// Version records which global HTML generation the markup was rendered
// against.
type Entry struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	ObjectID  int64     `json:"object_id"`
	HTML      string    `json:"html"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// HasVersion reports whether the entry carries a version stamp.
func (e *Entry) HasVersion() bool {
	return e.Version != ""
}

// Fresh reports whether the entry may be served against the current HTML
// version token. An empty entry (cleared or never rendered) is never
// fresh. A stamped entry is fresh only on an exact token match. An
// unstamped entry falls back to the legacy grace window.
func (e *Entry) Fresh(current string, now time.Time) bool {
	if e.HTML == "" {
		return false
	}
	if e.HasVersion() {
		return e.Version == current
	}
	return !now.After(e.UpdatedAt.Add(GracePeriod))
}
