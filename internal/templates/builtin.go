// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"fmt"
	"strconv"

	"prerenderd/internal/models"
)

// parseObjectID parses a numeric object id. Zero is allowed (frontpage),
// negatives and garbage are not.
func parseObjectID(id string) (int64, error) {
	if id == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad object id %q", models.ErrValidation, id)
	}
	return n, nil
}

type frontpage struct {
	site Site
}

func (t *frontpage) Name() string            { return string(models.KindFrontpage) }
func (t *frontpage) IsQueried(q Lookup) bool { return q.Frontpage }
func (t *frontpage) ID(Lookup) string        { return "0" }

func (t *frontpage) TypeID(string) (models.TypeID, error) {
	// The frontpage is a singleton; whatever id arrives, the key is the same.
	return models.TypeID{Kind: models.KindFrontpage}, nil
}

func (t *frontpage) Link(string) (string, error) {
	return t.site.Home(), nil
}

type postTypeArchive struct {
	site Site
}

func (t *postTypeArchive) Name() string            { return string(models.KindPostTypeArchive) }
func (t *postTypeArchive) IsQueried(q Lookup) bool { return q.QueriedPostType != "" }
func (t *postTypeArchive) ID(q Lookup) string      { return q.QueriedPostType }

func (t *postTypeArchive) TypeID(id string) (models.TypeID, error) {
	if !t.site.HasPostType(id) {
		return models.TypeID{}, fmt.Errorf("%w: unknown post type %q", models.ErrValidation, id)
	}
	return models.TypeID{Kind: models.KindPostTypeArchive, Subtype: id}, nil
}

func (t *postTypeArchive) Link(id string) (string, error) {
	if !t.site.HasPostType(id) {
		return "", fmt.Errorf("%w: unknown post type %q", models.ErrNoLink, id)
	}
	link, ok := t.site.PostTypeArchiveURL(id)
	if !ok {
		return "", fmt.Errorf("%w: post type %q has no archive", models.ErrNoLink, id)
	}
	return link, nil
}

type term struct {
	site Site
}

func (t *term) Name() string            { return string(models.KindTerm) }
func (t *term) IsQueried(q Lookup) bool { return q.TermTaxonomyID != 0 }
func (t *term) ID(q Lookup) string      { return strconv.FormatInt(q.TermTaxonomyID, 10) }

func (t *term) TypeID(id string) (models.TypeID, error) {
	n, err := parseObjectID(id)
	if err != nil {
		return models.TypeID{}, err
	}
	return models.TypeID{Kind: models.KindTerm, ObjectID: n}, nil
}

func (t *term) Link(id string) (string, error) {
	n, err := parseObjectID(id)
	if err != nil {
		return "", err
	}
	link, ok := t.site.TermURL(n)
	if !ok {
		return "", fmt.Errorf("%w: term %d", models.ErrNoLink, n)
	}
	return link, nil
}

type post struct {
	site Site
}

func (t *post) Name() string            { return string(models.KindPost) }
func (t *post) IsQueried(q Lookup) bool { return q.PostID != 0 }
func (t *post) ID(q Lookup) string      { return strconv.FormatInt(q.PostID, 10) }

func (t *post) TypeID(id string) (models.TypeID, error) {
	n, err := parseObjectID(id)
	if err != nil {
		return models.TypeID{}, err
	}
	return models.TypeID{Kind: models.KindPost, ObjectID: n}, nil
}

func (t *post) Link(id string) (string, error) {
	n, err := parseObjectID(id)
	if err != nil {
		return "", err
	}
	link, ok := t.site.Permalink(n)
	if !ok {
		return "", fmt.Errorf("%w: post %d", models.ErrNoLink, n)
	}
	return link, nil
}

type author struct {
	site Site
}

func (t *author) Name() string            { return string(models.KindAuthor) }
func (t *author) IsQueried(q Lookup) bool { return q.AuthorID != 0 }
func (t *author) ID(q Lookup) string      { return strconv.FormatInt(q.AuthorID, 10) }

func (t *author) TypeID(id string) (models.TypeID, error) {
	n, err := parseObjectID(id)
	if err != nil {
		return models.TypeID{}, err
	}
	return models.TypeID{Kind: models.KindAuthor, ObjectID: n}, nil
}

func (t *author) Link(id string) (string, error) {
	n, err := parseObjectID(id)
	if err != nil {
		return "", err
	}
	link, ok := t.site.AuthorURL(n)
	if !ok {
		return "", fmt.Errorf("%w: author %d", models.ErrNoLink, n)
	}
	return link, nil
}

type dateArchive struct {
	site Site
}

func (t *dateArchive) Name() string            { return string(models.KindDateArchive) }
func (t *dateArchive) IsQueried(q Lookup) bool { return q.Date != "" }
func (t *dateArchive) ID(q Lookup) string      { return q.Date }

// TypeID canonicalizes a compact date into date_archive_<YYYY[MM[DD]]>.
// ObjectID mirrors the numeric raw id so distinct dates never collide on
// a shared zero.
func (t *dateArchive) TypeID(id string) (models.TypeID, error) {
	d, err := ParseYmd(id)
	if err != nil {
		return models.TypeID{}, err
	}
	n, _ := strconv.ParseInt(d.Compact(), 10, 64)
	return models.TypeID{Kind: models.KindDateArchive, Subtype: d.Compact(), ObjectID: n}, nil
}

func (t *dateArchive) Link(id string) (string, error) {
	d, err := ParseYmd(id)
	if err != nil {
		return "", err
	}
	return t.site.DateArchiveURL(d), nil
}
