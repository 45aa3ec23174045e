// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package templates resolves content types to cache keys and public URLs.
// Each template is polymorphic over three questions: does a described
// front-end request match me, what is the natural id of the queried object,
// and what URL does an id map back to. Built-ins cover the frontpage, post
// type archives, terms, posts, authors, and date archives; custom types
// register alongside them.
package templates

import (
	"fmt"

	"prerenderd/internal/models"
)

// Site is the link-resolution collaborator: it knows the public URL scheme
// of the site being prerendered and which post types exist. A deployment
// implements this against its CMS routing.
type Site interface {
	// Home returns the site root URL.
	Home() string
	// HasPostType reports whether the post type is known to the site.
	HasPostType(postType string) bool
	// Permalink returns the public URL of a post, or ok=false when the
	// post cannot be resolved (deleted, never existed).
	Permalink(postID int64) (string, bool)
	// AuthorURL returns the public URL of an author page.
	AuthorURL(authorID int64) (string, bool)
	// TermURL returns the public URL of a taxonomy term page.
	TermURL(termTaxonomyID int64) (string, bool)
	// PostTypeArchiveURL returns the archive URL for a post type, or
	// ok=false when the type has no archive.
	PostTypeArchiveURL(postType string) (string, bool)
	// DateArchiveURL returns the year/month/day archive URL.
	DateArchiveURL(d Date) string
}

// Lookup describes a front-end request to be matched against templates.
// Zero-valued fields mean "not queried".
type Lookup struct {
	Frontpage       bool
	QueriedPostType string // post type archive listing
	TermTaxonomyID  int64
	PostID          int64
	AuthorID        int64
	Date            string // compact YYYY[MM[DD]]
}

// Template is one resolvable content type.
type Template interface {
	// Name is the stable type name used in render payloads and callbacks.
	Name() string
	// IsQueried reports whether the described request matches this type.
	IsQueried(q Lookup) bool
	// ID returns the natural identifier of the queried object.
	ID(q Lookup) string
	// TypeID canonicalizes a raw id into the storage key.
	TypeID(id string) (models.TypeID, error)
	// Link maps an id back to its canonical public URL. Failing to
	// resolve is a hard signal that short-circuits any render dispatch.
	Link(id string) (string, error)
}

// Registry holds all templates in a fixed priority order. Match order is
// deliberate: frontpage wins over post type archive (a blog home is both),
// term over post (a term page may embed a post), and so on. First match
// wins, making IsQueried mutually exclusive by construction.
type Registry struct {
	order  []Template
	byName map[string]Template
}

// NewRegistry builds the registry of built-in templates bound to the site.
func NewRegistry(site Site) *Registry {
	r := &Registry{byName: make(map[string]Template)}
	for _, t := range []Template{
		&frontpage{site: site},
		&postTypeArchive{site: site},
		&term{site: site},
		&post{site: site},
		&author{site: site},
		&dateArchive{site: site},
	} {
		r.order = append(r.order, t)
		r.byName[t.Name()] = t
	}
	return r
}

// Register adds a custom template. It matches after the built-ins and
// replaces any previous template registered under the same name.
func (r *Registry) Register(t Template) {
	if _, exists := r.byName[t.Name()]; !exists {
		r.order = append(r.order, t)
	}
	r.byName[t.Name()] = t
}

// Template returns the template registered under name.
func (r *Registry) Template(name string) (Template, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Match returns the first template claiming the described request.
func (r *Registry) Match(q Lookup) (Template, bool) {
	for _, t := range r.order {
		if t.IsQueried(q) {
			return t, true
		}
	}
	return nil, false
}

// ConvertTypeID canonicalizes a (type name, raw id) pair into the storage
// key. Unregistered names yield ErrNotImplemented; bad ids yield the
// template's own validation error.
func (r *Registry) ConvertTypeID(name, id string) (models.TypeID, error) {
	t, ok := r.byName[name]
	if !ok {
		return models.TypeID{}, fmt.Errorf("%w: %q", models.ErrNotImplemented, name)
	}
	return t.TypeID(id)
}

// Link resolves a (type name, raw id) pair to its public URL.
func (r *Registry) Link(name, id string) (string, error) {
	t, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrNotImplemented, name)
	}
	return t.Link(id)
}
