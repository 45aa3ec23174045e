// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site implements templates.Site with a configuration-driven URL
// scheme. Object pages use stable query-arg URLs (the CMS canonicalizes
// them on fetch); archives use path-style URLs. Deployments with a richer
// router can substitute their own templates.Site implementation.
package site

import (
	"fmt"
	"strings"

	"prerenderd/internal/templates"
)

// URLs builds public URLs for the prerendered site.
type URLs struct {
	base      string
	blogPath  string
	postTypes map[string]struct{}
	chrono    string

	// PostExists, when set, is consulted before resolving a permalink so
	// renders for deleted posts are dropped instead of dispatched.
	PostExists func(postID int64) bool
}

// New creates a URL builder. base is the site root, blogPath the path of
// the chronological post archive ("" means the archive is the frontpage
// itself), postTypes the types known to the site, and chrono the post type
// whose archive lives at blogPath.
func New(base, blogPath string, postTypes []string, chrono string) *URLs {
	types := make(map[string]struct{}, len(postTypes))
	for _, pt := range postTypes {
		types[pt] = struct{}{}
	}
	return &URLs{
		base:      strings.TrimRight(base, "/"),
		blogPath:  strings.Trim(blogPath, "/"),
		postTypes: types,
		chrono:    chrono,
	}
}

// Home returns the site root URL.
func (u *URLs) Home() string {
	return u.base + "/"
}

// HasPostType reports whether the post type is known.
func (u *URLs) HasPostType(postType string) bool {
	_, ok := u.postTypes[postType]
	return ok
}

// Permalink returns the canonical short URL of a post.
func (u *URLs) Permalink(postID int64) (string, bool) {
	if postID <= 0 {
		return "", false
	}
	if u.PostExists != nil && !u.PostExists(postID) {
		return "", false
	}
	return fmt.Sprintf("%s/?p=%d", u.base, postID), true
}

// AuthorURL returns the author page URL.
func (u *URLs) AuthorURL(authorID int64) (string, bool) {
	if authorID <= 0 {
		return "", false
	}
	return fmt.Sprintf("%s/?author=%d", u.base, authorID), true
}

// TermURL returns the taxonomy term page URL.
func (u *URLs) TermURL(termTaxonomyID int64) (string, bool) {
	if termTaxonomyID <= 0 {
		return "", false
	}
	return fmt.Sprintf("%s/?term=%d", u.base, termTaxonomyID), true
}

// PostTypeArchiveURL returns the archive URL for a post type. The
// chronological type's archive lives at the configured blog path; with no
// blog path configured it coincides with the site root, which callers
// treat as "no distinct archive".
func (u *URLs) PostTypeArchiveURL(postType string) (string, bool) {
	if !u.HasPostType(postType) {
		return "", false
	}
	if postType == u.chrono {
		if u.blogPath == "" {
			return u.Home(), true
		}
		return fmt.Sprintf("%s/%s/", u.base, u.blogPath), true
	}
	return fmt.Sprintf("%s/%s/", u.base, postType), true
}

// DateArchiveURL returns the year/month/day archive URL, as deep as the
// date goes.
func (u *URLs) DateArchiveURL(d templates.Date) string {
	url := fmt.Sprintf("%s/%04d/", u.base, d.Year)
	if d.Month != 0 {
		url += fmt.Sprintf("%02d/", d.Month)
		if d.Day != 0 {
			url += fmt.Sprintf("%02d/", d.Day)
		}
	}
	return url
}
