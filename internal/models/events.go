// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// StatusPublish is the only post status that results in a scheduled render.
// Any transition to another status deletes the cached entry instead.
const StatusPublish = "publish"

// TermRef identifies one taxonomy term a post belongs to, as delivered by
// the content-change event source.
type TermRef struct {
	TermTaxonomyID int64  `json:"term_taxonomy_id"`
	Taxonomy       string `json:"taxonomy"`
	Public         bool   `json:"public"`
}

// PostEvent describes a post status transition from the host CMS. The event
// carries everything the cascade needs so no content lookup is required at
// invalidation time.
type PostEvent struct {
	ID          int64     `json:"id"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	AuthorID    int64     `json:"author_id"`
	PostType    string    `json:"post_type"`
	PublishedAt time.Time `json:"published_at"`
	Terms       []TermRef `json:"terms"`

	// Autosaves and revisions are not real content changes and must never
	// trigger scheduling.
	IsAutosave bool `json:"is_autosave"`
	IsRevision bool `json:"is_revision"`
}

// TermEvent describes a taxonomy term save from the host CMS.
type TermEvent struct {
	TermTaxonomyID int64  `json:"term_taxonomy_id"`
	Taxonomy       string `json:"taxonomy"`
	Public         bool   `json:"public"`
}
