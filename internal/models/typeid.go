// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Kind enumerates the built-in prerender template families.
type Kind string

const (
	KindFrontpage       Kind = "frontpage"
	KindPostTypeArchive Kind = "post_type_archive"
	KindTerm            Kind = "term"
	KindPost            Kind = "post"
	KindAuthor          Kind = "author"
	KindDateArchive     Kind = "date_archive"
)

// TypeID is the canonical storage key for a cached page. Parametrized
// families (date archives, post type archives) carry their discriminator in
// Subtype rather than string-concatenating it into the kind, so a subtype
// value containing the delimiter cannot produce an ambiguous key.
type TypeID struct {
	Kind    Kind
	Subtype string

	// ObjectID is the numeric object identifier. Date archives mirror the
	// raw compact date (20240315) here so two distinct dates never share a
	// key; post type archives use 0 since the post type already lives in
	// Subtype.
	ObjectID int64
}

// Type renders the storage-facing type string, e.g. "post",
// "date_archive_202403", "post_type_archive_product".
func (t TypeID) Type() string {
	if t.Subtype == "" {
		return string(t.Kind)
	}
	return string(t.Kind) + "_" + t.Subtype
}
