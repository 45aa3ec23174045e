// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// version.go implements the opaque generation tokens that gate cache
// validity. A token is bumped explicitly — never per write — so a single
// bump invalidates every entry at once without rewriting them. Two named
// instances exist: one for HTML freshness, one for structural/template
// generation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Option names of the two version counters.
const (
	OptionHTMLVersion   = "prerender_html_version"
	OptionSchemaVersion = "prerender_schema_version"
)

// Version is one named generation token persisted in prerender_options.
type Version struct {
	db     *sql.DB
	option string
}

// NewVersion binds a Version to its option row.
func NewVersion(db *sql.DB, option string) *Version {
	return &Version{db: db, option: option}
}

// Option returns the option name this counter is stored under.
func (v *Version) Option() string {
	return v.option
}

// Current returns the current token, or "" when none has been generated yet.
func (v *Version) Current(ctx context.Context) (string, error) {
	var value string
	err := v.db.QueryRowContext(ctx, `
		SELECT value FROM prerender_options WHERE name = $1
	`, v.option).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get version %s: %w", v.option, err)
	}
	return value, nil
}

// Bump generates a fresh unique token and persists it, invalidating every
// entry stamped with the previous one.
func (v *Version) Bump(ctx context.Context) (string, error) {
	token := Generate()
	_, err := v.db.ExecContext(ctx, `
		INSERT INTO prerender_options (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, v.option, token)
	if err != nil {
		return "", fmt.Errorf("bump version %s: %w", v.option, err)
	}
	return token, nil
}

// Init bumps once if no token exists yet.
func (v *Version) Init(ctx context.Context) error {
	current, err := v.Current(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		if _, err := v.Bump(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Generate produces a fresh opaque token. Uniqueness matters, meaning does
// not.
func Generate() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
