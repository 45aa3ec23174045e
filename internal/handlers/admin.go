// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"prerenderd/internal/store"
)

// VersionBumper rotates a generation token.
type VersionBumper interface {
	Bump(ctx context.Context) (string, error)
}

// SecretFlusher bulk-deletes outstanding render secrets.
type SecretFlusher interface {
	Flush(ctx context.Context) (int64, error)
}

// CacheFlusher drops every cached entry row from the read cache.
type CacheFlusher interface {
	InvalidateAll(ctx context.Context)
}

// AuditReader reads the invalidation audit log.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]store.InvalidationEntry, error)
}

// Admin serves the operator surface: flushes and the audit log.
type Admin struct {
	htmlVersion   VersionBumper
	schemaVersion VersionBumper
	secrets       SecretFlusher
	cache         CacheFlusher // may be nil
	audit         AuditReader  // may be nil
}

// NewAdmin creates the admin handler group. cache and audit may be nil.
func NewAdmin(htmlVersion, schemaVersion VersionBumper, secrets SecretFlusher, cache CacheFlusher, audit AuditReader) *Admin {
	return &Admin{
		htmlVersion:   htmlVersion,
		schemaVersion: schemaVersion,
		secrets:       secrets,
		cache:         cache,
		audit:         audit,
	}
}

// Flush handles POST /api/v1/flush. A plain flush bumps the HTML version,
// instantly staling every stamped entry without touching a row. scope=all
// additionally rotates the schema version, deletes all outstanding secrets
// (orphaning in-flight renders on purpose), and clears the read cache.
func (h *Admin) Flush(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("scope") == "all"

	htmlToken, err := h.htmlVersion.Bump(r.Context())
	if err != nil {
		slog.Error("html version bump failed", "error", err)
		writeError(w, http.StatusInternalServerError, "flush failed")
		return
	}

	resp := map[string]any{"html_version": htmlToken}

	if all {
		schemaToken, err := h.schemaVersion.Bump(r.Context())
		if err != nil {
			slog.Error("schema version bump failed", "error", err)
			writeError(w, http.StatusInternalServerError, "flush failed")
			return
		}
		resp["schema_version"] = schemaToken

		flushed, err := h.secrets.Flush(r.Context())
		if err != nil {
			slog.Error("secret flush failed", "error", err)
			writeError(w, http.StatusInternalServerError, "flush failed")
			return
		}
		resp["secrets_flushed"] = flushed

		if h.cache != nil {
			h.cache.InvalidateAll(r.Context())
		}
	}

	slog.Info("cache flushed", "scope_all", all, "html_version", htmlToken)
	writeJSON(w, http.StatusOK, resp)
}

// Invalidations handles GET /api/v1/invalidations?limit=. Best-effort
// operator visibility into recent cascade activity.
func (h *Admin) Invalidations(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeError(w, http.StatusNotFound, "audit log not configured")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rows, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("audit log read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "audit read failed")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
