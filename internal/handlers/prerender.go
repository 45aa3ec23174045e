// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"prerenderd/internal/models"
	"prerenderd/internal/templates"
)

// SecretChecker verifies and consumes one-time render secrets.
type SecretChecker interface {
	Check(ctx context.Context, typ, id, secret string) error
	Delete(ctx context.Context, typ, id string) (bool, error)
}

// EntrySaver persists a render result.
type EntrySaver interface {
	Save(ctx context.Context, html, version, typ string, objectID int64) (*models.Entry, bool, error)
}

// VersionReader reads the current HTML version token.
type VersionReader interface {
	Current(ctx context.Context) (string, error)
}

// callbackRequest is the renderer's write-back payload.
type callbackRequest struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	HTML    string `json:"html"`
	Version string `json:"version"`
	Secret  string `json:"secret"`
}

// Prerender handles the authenticated render callback.
type Prerender struct {
	secrets  SecretChecker
	entries  EntrySaver
	version  VersionReader
	registry *templates.Registry
}

// NewPrerender creates the callback handler group.
func NewPrerender(secrets SecretChecker, entries EntrySaver, version VersionReader, registry *templates.Registry) *Prerender {
	return &Prerender{secrets: secrets, entries: entries, version: version, registry: registry}
}

// Callback accepts a rendered page from the external renderer. Checks run
// in strict order: secret first (nothing else is trusted before auth), then
// type/id canonicalization, then the version gate that drops renders
// overtaken by a newer flush. The secret is consumed after the response is
// written, so each dispatch authorizes exactly one write-back.
func (h *Prerender) Callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.secrets.Check(r.Context(), req.Type, req.ID, req.Secret); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid or expired secret")
			return
		}
		slog.Error("secret check failed", "type", req.Type, "id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "secret verification failed")
		return
	}
	// Auth succeeded: the secret is spent whatever happens next.
	defer func() {
		if _, err := h.secrets.Delete(context.WithoutCancel(r.Context()), req.Type, req.ID); err != nil {
			slog.Error("secret consume failed", "type", req.Type, "id", req.ID, "error", err)
		}
	}()

	tid, err := h.registry.ConvertTypeID(req.Type, req.ID)
	if err != nil {
		if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrNotImplemented) {
			writeError(w, http.StatusBadRequest, "unresolvable type or id")
			return
		}
		slog.Error("type canonicalization failed", "type", req.Type, "id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "canonicalization failed")
		return
	}

	current, err := h.version.Current(r.Context())
	if err != nil {
		slog.Error("version read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "version read failed")
		return
	}
	if req.Version != current {
		// The render was overtaken by a newer invalidation; its output
		// describes a page generation that no longer exists.
		writeError(w, http.StatusBadRequest, "stale version token")
		return
	}

	entry, created, err := h.entries.Save(r.Context(), req.HTML, req.Version, tid.Type(), tid.ObjectID)
	if err != nil {
		slog.Error("entry save failed", "type", tid.Type(), "object_id", tid.ObjectID, "error", err)
		writeError(w, http.StatusInternalServerError, "entry save failed")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	slog.Info("render callback stored",
		"type", tid.Type(),
		"object_id", tid.ObjectID,
		"created", created,
		"bytes", len(req.HTML),
	)
	writeJSON(w, status, entry)
}
