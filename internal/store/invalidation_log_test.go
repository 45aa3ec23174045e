// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
)

func TestInvalidationLog(t *testing.T) {
	db := testDB(t)
	s := NewInvalidationLogStore(db)
	typ := testType(t)
	t.Cleanup(func() {
		db.Exec("DELETE FROM prerender_invalidations WHERE type = $1", typ)
	})

	ctx := context.Background()

	// Log is best-effort and never errors.
	s.Log(ctx, typ, 42, "schedule")
	s.Log(ctx, typ, 42, "delete")

	var count int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM prerender_invalidations WHERE type = $1", typ,
	).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("logged %d rows, want 2", count)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	var mine int
	for _, e := range entries {
		if e.Type == typ {
			mine++
			if e.ObjectID != 42 {
				t.Errorf("entry object_id = %d", e.ObjectID)
			}
		}
	}
	if mine != 2 {
		t.Errorf("Recent returned %d of my rows, want 2", mine)
	}
}
