// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "errors"

var (
	// ErrUnauthorized rejects a render callback whose secret is missing,
	// expired, or does not match the stored hash. Never retried; a fresh
	// schedule issues a fresh secret.
	ErrUnauthorized = errors.New("prerender: unauthorized")

	// ErrValidation marks an unknown type, malformed id, or unparseable
	// date. Surfaced to the caller, never retried.
	ErrValidation = errors.New("prerender: validation")

	// ErrNotImplemented is returned when a type name matches no built-in
	// template and no custom template was registered for it.
	ErrNotImplemented = errors.New("prerender: type not implemented")

	// ErrNoLink means a template could not resolve a public URL for the
	// given id (deleted post, unknown post type). Expected steady-state:
	// the dispatch is silently dropped.
	ErrNoLink = errors.New("prerender: no link for id")
)
