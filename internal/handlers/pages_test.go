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

	"prerenderd/internal/models"
)

// fakeHTMLReader maps "type:id" to markup.
type fakeHTMLReader struct {
	pages map[string]string
	err   error
}

func (f *fakeHTMLReader) GetHTML(_ context.Context, typ, id string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.pages[typ+":"+id], nil
}

func getHTML(t *testing.T, h *Pages, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.GetHTML(rec, req)
	return rec
}

func TestGetHTMLFresh(t *testing.T) {
	h := NewPages(&fakeHTMLReader{pages: map[string]string{"post:42": "<p>cached</p>"}})

	rec := getHTML(t, h, "/api/v1/html?type=post&id=42")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["html"] != "<p>cached</p>" {
		t.Errorf("html = %q", resp["html"])
	}
}

func TestGetHTMLPending(t *testing.T) {
	h := NewPages(&fakeHTMLReader{pages: map[string]string{}})

	rec := getHTML(t, h, "/api/v1/html?type=post&id=42")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 for pending render", rec.Code)
	}
}

func TestGetHTMLMissingType(t *testing.T) {
	h := NewPages(&fakeHTMLReader{})

	rec := getHTML(t, h, "/api/v1/html?id=42")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetHTMLErrors(t *testing.T) {
	h := NewPages(&fakeHTMLReader{err: models.ErrNotImplemented})
	if rec := getHTML(t, h, "/api/v1/html?type=gallery&id=1"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown type status = %d, want 400", rec.Code)
	}

	h = NewPages(&fakeHTMLReader{err: context.DeadlineExceeded})
	if rec := getHTML(t, h, "/api/v1/html?type=post&id=42"); rec.Code != http.StatusInternalServerError {
		t.Errorf("backend error status = %d, want 500", rec.Code)
	}
}
