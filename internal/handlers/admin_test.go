// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prerenderd/internal/store"
)

type fakeBumper struct {
	token string
	bumps int
}

func (f *fakeBumper) Bump(context.Context) (string, error) {
	f.bumps++
	return f.token, nil
}

type fakeSecretFlusher struct{ flushed int64 }

func (f *fakeSecretFlusher) Flush(context.Context) (int64, error) {
	f.flushed++
	return 3, nil
}

type fakeCacheFlusher struct{ calls int }

func (f *fakeCacheFlusher) InvalidateAll(context.Context) { f.calls++ }

type fakeAudit struct{ rows []store.InvalidationEntry }

func (f *fakeAudit) Recent(_ context.Context, limit int) ([]store.InvalidationEntry, error) {
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func TestFlushBumpsHTMLVersion(t *testing.T) {
	html := &fakeBumper{token: "h2"}
	schema := &fakeBumper{token: "s2"}
	secrets := &fakeSecretFlusher{}
	cache := &fakeCacheFlusher{}
	h := NewAdmin(html, schema, secrets, cache, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flush", nil)
	rec := httptest.NewRecorder()
	h.Flush(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if html.bumps != 1 {
		t.Errorf("html bumps = %d, want 1", html.bumps)
	}
	if schema.bumps != 0 || secrets.flushed != 0 || cache.calls != 0 {
		t.Error("plain flush must not touch schema, secrets, or the read cache")
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["html_version"] != "h2" {
		t.Errorf("html_version = %v", resp["html_version"])
	}
}

func TestFlushScopeAll(t *testing.T) {
	html := &fakeBumper{token: "h2"}
	schema := &fakeBumper{token: "s2"}
	secrets := &fakeSecretFlusher{}
	cache := &fakeCacheFlusher{}
	h := NewAdmin(html, schema, secrets, cache, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flush?scope=all", nil)
	rec := httptest.NewRecorder()
	h.Flush(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if html.bumps != 1 || schema.bumps != 1 {
		t.Errorf("bumps = html %d, schema %d; want 1 each", html.bumps, schema.bumps)
	}
	if secrets.flushed != 1 {
		t.Error("full flush should delete outstanding secrets")
	}
	if cache.calls != 1 {
		t.Error("full flush should clear the read cache")
	}
}

func TestInvalidations(t *testing.T) {
	audit := &fakeAudit{rows: []store.InvalidationEntry{
		{ID: 1, Type: "post", ObjectID: 42, Action: "schedule", InvalidatedAt: time.Now()},
		{ID: 2, Type: "frontpage", ObjectID: 0, Action: "schedule", InvalidatedAt: time.Now()},
	}}
	h := NewAdmin(&fakeBumper{}, &fakeBumper{}, &fakeSecretFlusher{}, nil, audit)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invalidations?limit=1", nil)
	rec := httptest.NewRecorder()
	h.Invalidations(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rows []store.InvalidationEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want limit applied", len(rows))
	}
}

func TestInvalidationsBadLimit(t *testing.T) {
	h := NewAdmin(&fakeBumper{}, &fakeBumper{}, &fakeSecretFlusher{}, nil, &fakeAudit{})

	for _, q := range []string{"limit=0", "limit=-5", "limit=abc", "limit=10000"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invalidations?"+q, nil)
		rec := httptest.NewRecorder()
		h.Invalidations(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}
