// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package queue

import (
	"sync"

	"prerenderd/internal/models"
)

// ShouldUpdateFunc decides whether a dependent page is invalidated when a
// source object changes. sourceID is the changed object, relatedID the
// dependent page's id.
type ShouldUpdateFunc func(sourceID int64, relatedID string) bool

// TypeFilterFunc rewrites a type name before canonicalization. Filters run
// in registration order, each receiving the previous result.
type TypeFilterFunc func(name string) string

// hookKey addresses one (source kind, dependent kind) cascade edge.
type hookKey struct {
	source  models.Kind
	related models.Kind
}

// Hooks is the registered-handler table for cascade suppression and type
// rewriting. All cascade edges default to "update"; integrations register
// predicates to suppress fan-out they know is unnecessary (e.g. skip date
// archives when listings show no dates).
type Hooks struct {
	mu           sync.RWMutex
	typeFilters  []TypeFilterFunc
	shouldUpdate map[hookKey]ShouldUpdateFunc
}

// NewHooks returns an empty hook table.
func NewHooks() *Hooks {
	return &Hooks{shouldUpdate: make(map[hookKey]ShouldUpdateFunc)}
}

// OnShouldUpdate registers the predicate for one cascade edge, replacing
// any previous one.
func (h *Hooks) OnShouldUpdate(source, related models.Kind, fn ShouldUpdateFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shouldUpdate[hookKey{source, related}] = fn
}

// ShouldUpdate consults the registered predicate for an edge, defaulting
// to true.
func (h *Hooks) ShouldUpdate(source, related models.Kind, sourceID int64, relatedID string) bool {
	h.mu.RLock()
	fn := h.shouldUpdate[hookKey{source, related}]
	h.mu.RUnlock()
	if fn == nil {
		return true
	}
	return fn(sourceID, relatedID)
}

// AddTypeFilter appends a type-name filter.
func (h *Hooks) AddTypeFilter(fn TypeFilterFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.typeFilters = append(h.typeFilters, fn)
}

// FilterType runs a type name through the filter chain.
func (h *Hooks) FilterType(name string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.typeFilters {
		name = fn(name)
	}
	return name
}
