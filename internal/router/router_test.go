// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"prerenderd/internal/handlers"
	"prerenderd/internal/models"
	"prerenderd/internal/site"
	"prerenderd/internal/store"
	"prerenderd/internal/templates"
)

type stubSecrets struct{}

func (stubSecrets) Check(context.Context, string, string, string) error {
	return models.ErrUnauthorized
}
func (stubSecrets) Delete(context.Context, string, string) (bool, error) { return false, nil }

type stubEntries struct{}

func (stubEntries) Save(_ context.Context, html, version, typ string, objectID int64) (*models.Entry, bool, error) {
	return &models.Entry{Type: typ, ObjectID: objectID, HTML: html, Version: version}, true, nil
}

type stubVersion struct{}

func (stubVersion) Current(context.Context) (string, error) { return "v1", nil }
func (stubVersion) Bump(context.Context) (string, error)    { return "v2", nil }

type stubQueue struct{}

func (stubQueue) UpdatePost(context.Context, models.PostEvent) error { return nil }
func (stubQueue) DeletePost(context.Context, models.PostEvent) error { return nil }
func (stubQueue) UpdateTerm(context.Context, models.TermEvent) error { return nil }
func (stubQueue) DeleteTerm(context.Context, int64) error            { return nil }
func (stubQueue) GetHTML(context.Context, string, string) (string, error) {
	return "<p>ok</p>", nil
}

type stubSecretFlusher struct{}

func (stubSecretFlusher) Flush(context.Context) (int64, error) { return 0, nil }

type stubAudit struct{}

func (stubAudit) Recent(context.Context, int) ([]store.InvalidationEntry, error) {
	return nil, nil
}

func testRouter() http.Handler {
	registry := templates.NewRegistry(site.New("https://example.com", "blog", []string{"post"}, "post"))
	return New(
		"testkey",
		handlers.NewPrerender(stubSecrets{}, stubEntries{}, stubVersion{}, registry),
		handlers.NewEvents(stubQueue{}),
		handlers.NewPages(stubQueue{}),
		handlers.NewAdmin(stubVersion{}, stubVersion{}, stubSecretFlusher{}, nil, stubAudit{}),
	)
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestPublicEndpointsNeedNoKey(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/html?type=post&id=42", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("html endpoint status = %d", rec.Code)
	}
}

func TestProtectedEndpointsRequireKey(t *testing.T) {
	r := testRouter()

	protected := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/events/post"},
		{http.MethodDelete, "/api/v1/events/post/42"},
		{http.MethodPost, "/api/v1/events/term"},
		{http.MethodDelete, "/api/v1/events/term/7"},
		{http.MethodPost, "/api/v1/flush"},
		{http.MethodGet, "/api/v1/invalidations"},
	}
	for _, tt := range protected {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without key: status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}

	// With the key, the flush goes through.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flush", nil)
	req.Header.Set("X-Api-Key", "testkey")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("flush with key: status = %d", rec.Code)
	}
}

func TestCallbackRouteIsWired(t *testing.T) {
	r := testRouter()

	// The callback authenticates with its own secret, not the API key; a
	// bogus body yields 400/401 from the handler, never 404/405.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/prerender", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code == http.StatusNotFound || rec.Code == http.StatusMethodNotAllowed {
		t.Errorf("callback route missing: status = %d", rec.Code)
	}
}
