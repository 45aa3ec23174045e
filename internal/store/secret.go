// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// secret.go manages the one-time credentials that authorize a renderer to
// post results back. Secrets are keyed by the (type, id) pair of the render
// job as dispatched; issuing a new secret for a key overwrites the previous
// one, so only the most recent in-flight render can complete. Secrets live
// only in PostgreSQL — never in Valkey — so expiry survives cache flushes
// and restarts.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"prerenderd/internal/models"
)

// SecretTTL is how long an issued secret stays valid. A renderer answering
// later is rejected and its work orphaned; only a fresh invalidation
// re-schedules it.
const SecretTTL = 20 * time.Minute

// secretBytes is the entropy of a plaintext secret before encoding.
const secretBytes = 32

// SecretStore issues, verifies, and consumes one-time render secrets.
type SecretStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSecretStore creates a SecretStore with the default TTL.
func NewSecretStore(db *sql.DB) *SecretStore {
	return &SecretStore{db: db, ttl: SecretTTL}
}

// Issue generates a fresh secret for (type, id), stores only its bcrypt
// hash with an expiry, and returns the plaintext for the outbound render
// payload. Any prior secret for the key is overwritten. On storage failure
// the caller must not dispatch the render job, since its callback could
// never authenticate.
func (s *SecretStore) Issue(ctx context.Context, typ, id string) (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prerender_secrets (type, id, hash, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (type, id) DO UPDATE
		SET hash = EXCLUDED.hash, expires_at = EXCLUDED.expires_at, created_at = NOW()
	`, typ, id, string(hash), time.Now().Add(s.ttl))
	if err != nil {
		return "", fmt.Errorf("store secret: %w", err)
	}

	return secret, nil
}

// Check verifies a plaintext secret against the stored hash for (type, id).
// A missing, expired, or mismatched secret yields ErrUnauthorized. Expired
// rows are lazily deleted on the way out.
func (s *SecretStore) Check(ctx context.Context, typ, id, secret string) error {
	var hash string
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, expires_at FROM prerender_secrets WHERE type = $1 AND id = $2
	`, typ, id).Scan(&hash, &expiresAt)
	if err == sql.ErrNoRows {
		return models.ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("load secret: %w", err)
	}

	if time.Now().After(expiresAt) {
		if _, err := s.Delete(ctx, typ, id); err != nil {
			return fmt.Errorf("expire secret: %w", err)
		}
		return models.ErrUnauthorized
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) != nil {
		return models.ErrUnauthorized
	}
	return nil
}

// Delete consumes a secret. Returns whether a row existed.
func (s *SecretStore) Delete(ctx context.Context, typ, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM prerender_secrets WHERE type = $1 AND id = $2
	`, typ, id)
	if err != nil {
		return false, fmt.Errorf("delete secret: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete secret rows: %w", err)
	}
	return n > 0, nil
}

// Flush removes all outstanding secrets. Used by a full flush, which
// orphans every in-flight render on purpose.
func (s *SecretStore) Flush(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prerender_secrets`)
	if err != nil {
		return 0, fmt.Errorf("flush secrets: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// FlushExpired removes secrets past their expiry. Run periodically so
// abandoned render cycles do not accumulate rows.
func (s *SecretStore) FlushExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prerender_secrets WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("flush expired secrets: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
