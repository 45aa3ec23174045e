// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"testing"

	"prerenderd/internal/templates"
)

func TestURLs(t *testing.T) {
	u := New("https://example.com/", "blog", []string{"post", "product"}, "post")

	if got := u.Home(); got != "https://example.com/" {
		t.Errorf("Home() = %q", got)
	}

	if link, ok := u.Permalink(42); !ok || link != "https://example.com/?p=42" {
		t.Errorf("Permalink(42) = %q, %v", link, ok)
	}
	if _, ok := u.Permalink(0); ok {
		t.Error("Permalink(0) should not resolve")
	}

	if link, ok := u.AuthorURL(3); !ok || link != "https://example.com/?author=3" {
		t.Errorf("AuthorURL(3) = %q, %v", link, ok)
	}
	if link, ok := u.TermURL(7); !ok || link != "https://example.com/?term=7" {
		t.Errorf("TermURL(7) = %q, %v", link, ok)
	}
}

func TestPostTypeArchiveURL(t *testing.T) {
	u := New("https://example.com", "blog", []string{"post", "product"}, "post")

	// Chronological type lives at the blog path.
	if link, ok := u.PostTypeArchiveURL("post"); !ok || link != "https://example.com/blog/" {
		t.Errorf("post archive = %q, %v", link, ok)
	}
	// Other types use their own path.
	if link, ok := u.PostTypeArchiveURL("product"); !ok || link != "https://example.com/product/" {
		t.Errorf("product archive = %q, %v", link, ok)
	}
	// Unknown types have no archive.
	if _, ok := u.PostTypeArchiveURL("gallery"); ok {
		t.Error("unknown post type should not resolve")
	}

	// With no blog path the chronological archive coincides with the root.
	u = New("https://example.com", "", []string{"post"}, "post")
	if link, ok := u.PostTypeArchiveURL("post"); !ok || link != u.Home() {
		t.Errorf("post archive without blog path = %q, %v, want site root", link, ok)
	}
}

func TestPostExistsHook(t *testing.T) {
	u := New("https://example.com", "", []string{"post"}, "post")
	u.PostExists = func(id int64) bool { return id != 99 }

	if _, ok := u.Permalink(99); ok {
		t.Error("deleted post should not resolve")
	}
	if _, ok := u.Permalink(1); !ok {
		t.Error("live post should resolve")
	}
}

func TestDateArchiveURL(t *testing.T) {
	u := New("https://example.com", "", []string{"post"}, "post")

	tests := []struct {
		d    templates.Date
		want string
	}{
		{templates.Date{Year: 2024}, "https://example.com/2024/"},
		{templates.Date{Year: 2024, Month: 3}, "https://example.com/2024/03/"},
		{templates.Date{Year: 2024, Month: 3, Day: 15}, "https://example.com/2024/03/15/"},
	}
	for _, tt := range tests {
		if got := u.DateArchiveURL(tt.d); got != tt.want {
			t.Errorf("DateArchiveURL(%+v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
