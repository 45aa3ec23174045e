// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"prerenderd/internal/models"
)

// Invalidator is the scheduler surface the event intake drives.
type Invalidator interface {
	UpdatePost(ctx context.Context, evt models.PostEvent) error
	DeletePost(ctx context.Context, evt models.PostEvent) error
	UpdateTerm(ctx context.Context, evt models.TermEvent) error
	DeleteTerm(ctx context.Context, termTaxonomyID int64) error
}

// Events translates CMS change notifications into scheduler calls. The CMS
// pushes a full event payload on save; deletes carry the id in the path and
// optionally a body with the author/terms context needed for the cascade.
type Events struct {
	queue Invalidator
}

// NewEvents creates the event intake handler group.
func NewEvents(queue Invalidator) *Events {
	return &Events{queue: queue}
}

// PostSaved handles POST /api/v1/events/post.
func (h *Events) PostSaved(w http.ResponseWriter, r *http.Request) {
	var evt models.PostEvent
	if err := decodeBody(w, r, &evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if evt.ID <= 0 {
		writeError(w, http.StatusBadRequest, "missing post id")
		return
	}

	if err := h.queue.UpdatePost(r.Context(), evt); err != nil {
		h.scheduleError(w, "post update", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "id": evt.ID})
}

// PostDeleted handles DELETE /api/v1/events/post/{id}. A JSON body with the
// post's author and terms widens the cascade; without one only the entry
// and the frontpage-independent edges are touched.
func (h *Events) PostDeleted(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var evt models.PostEvent
	if r.ContentLength > 0 {
		if err := decodeBody(w, r, &evt); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	evt.ID = id

	if err := h.queue.DeletePost(r.Context(), evt); err != nil {
		h.scheduleError(w, "post delete", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "id": id})
}

// TermSaved handles POST /api/v1/events/term.
func (h *Events) TermSaved(w http.ResponseWriter, r *http.Request) {
	var evt models.TermEvent
	if err := decodeBody(w, r, &evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if evt.TermTaxonomyID <= 0 {
		writeError(w, http.StatusBadRequest, "missing term taxonomy id")
		return
	}

	if err := h.queue.UpdateTerm(r.Context(), evt); err != nil {
		h.scheduleError(w, "term update", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "id": evt.TermTaxonomyID})
}

// TermDeleted handles DELETE /api/v1/events/term/{id}.
func (h *Events) TermDeleted(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid term taxonomy id")
		return
	}

	if err := h.queue.DeleteTerm(r.Context(), id); err != nil {
		h.scheduleError(w, "term delete", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "id": id})
}

// scheduleError maps scheduler failures to a response. Validation errors in
// the event payload are the caller's fault; everything else is ours.
func (h *Events) scheduleError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrNotImplemented) {
		writeError(w, http.StatusBadRequest, "unresolvable type or id in event")
		return
	}
	slog.Error("event scheduling failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "scheduling failed")
}
