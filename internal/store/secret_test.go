// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"prerenderd/internal/models"
)

func TestSecretIssueAndCheck(t *testing.T) {
	db := testDB(t)
	s := NewSecretStore(db)
	typ := testType(t)
	t.Cleanup(func() { cleanSecrets(t, db, typ) })

	ctx := context.Background()
	secret, err := s.Issue(ctx, typ, "42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if secret == "" {
		t.Fatal("Issue returned empty secret")
	}

	if err := s.Check(ctx, typ, "42", secret); err != nil {
		t.Errorf("Check with valid secret: %v", err)
	}
	if err := s.Check(ctx, typ, "42", "wrong"); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Check with wrong secret: want ErrUnauthorized, got %v", err)
	}
	if err := s.Check(ctx, typ, "43", secret); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Check with wrong id: want ErrUnauthorized, got %v", err)
	}
}

func TestSecretReissueInvalidatesPrevious(t *testing.T) {
	db := testDB(t)
	s := NewSecretStore(db)
	typ := testType(t)
	t.Cleanup(func() { cleanSecrets(t, db, typ) })

	ctx := context.Background()
	first, err := s.Issue(ctx, typ, "42")
	if err != nil {
		t.Fatalf("Issue first: %v", err)
	}
	second, err := s.Issue(ctx, typ, "42")
	if err != nil {
		t.Fatalf("Issue second: %v", err)
	}

	if err := s.Check(ctx, typ, "42", first); !errors.Is(err, models.ErrUnauthorized) {
		t.Error("overwritten secret should no longer verify")
	}
	if err := s.Check(ctx, typ, "42", second); err != nil {
		t.Errorf("latest secret should verify: %v", err)
	}
}

func TestSecretSingleUse(t *testing.T) {
	db := testDB(t)
	s := NewSecretStore(db)
	typ := testType(t)
	t.Cleanup(func() { cleanSecrets(t, db, typ) })

	ctx := context.Background()
	secret, err := s.Issue(ctx, typ, "42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := s.Check(ctx, typ, "42", secret); err != nil {
		t.Fatalf("Check: %v", err)
	}
	existed, err := s.Delete(ctx, typ, "42")
	if err != nil || !existed {
		t.Fatalf("Delete = %v, %v", existed, err)
	}
	if err := s.Check(ctx, typ, "42", secret); !errors.Is(err, models.ErrUnauthorized) {
		t.Error("consumed secret should not verify again")
	}
}

func TestSecretExpiry(t *testing.T) {
	db := testDB(t)
	s := NewSecretStore(db)
	s.ttl = -time.Minute // issue already-expired secrets
	typ := testType(t)
	t.Cleanup(func() { cleanSecrets(t, db, typ) })

	ctx := context.Background()
	secret, err := s.Issue(ctx, typ, "42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := s.Check(ctx, typ, "42", secret); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expired secret: want ErrUnauthorized, got %v", err)
	}

	// The expired row is lazily deleted by the failed check.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM prerender_secrets WHERE type = $1", typ).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expired row not removed, count = %d", count)
	}
}

func TestSecretFlushExpired(t *testing.T) {
	db := testDB(t)
	typ := testType(t)
	t.Cleanup(func() { cleanSecrets(t, db, typ) })

	ctx := context.Background()

	expired := NewSecretStore(db)
	expired.ttl = -time.Minute
	if _, err := expired.Issue(ctx, typ, "old"); err != nil {
		t.Fatalf("Issue expired: %v", err)
	}

	live := NewSecretStore(db)
	secret, err := live.Issue(ctx, typ, "new")
	if err != nil {
		t.Fatalf("Issue live: %v", err)
	}

	if _, err := live.FlushExpired(ctx); err != nil {
		t.Fatalf("FlushExpired: %v", err)
	}

	if err := live.Check(ctx, typ, "new", secret); err != nil {
		t.Errorf("live secret should survive FlushExpired: %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM prerender_secrets WHERE type = $1 AND id = 'old'", typ).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Error("expired secret should be flushed")
	}
}
