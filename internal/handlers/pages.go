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
)

// HTMLReader is the version-gated read surface of the scheduler.
type HTMLReader interface {
	GetHTML(ctx context.Context, typ, id string) (string, error)
}

// Pages serves cached prerendered HTML to the edge.
type Pages struct {
	queue HTMLReader
}

// NewPages creates the page read handler group.
func NewPages(queue HTMLReader) *Pages {
	return &Pages{queue: queue}
}

// GetHTML handles GET /api/v1/html?type=&id=. A fresh entry returns 200
// with its markup; a stale or absent one has already been rescheduled by
// the read and returns 202 with empty html, telling the edge to fall back
// to live rendering until the callback lands.
func (h *Pages) GetHTML(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	id := r.URL.Query().Get("id")
	if typ == "" {
		writeError(w, http.StatusBadRequest, "missing type parameter")
		return
	}

	html, err := h.queue.GetHTML(r.Context(), typ, id)
	if err != nil {
		if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrNotImplemented) {
			writeError(w, http.StatusBadRequest, "unresolvable type or id")
			return
		}
		slog.Error("html read failed", "type", typ, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "read failed")
		return
	}

	status := http.StatusOK
	if html == "" {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]string{"type": typ, "id": id, "html": html})
}
