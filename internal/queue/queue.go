// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package queue is the invalidation scheduler. It consumes content-change
// events, decides which dependent cached pages a change touches, clears
// their entries, and enqueues de-duplicated render jobs. Correctness does
// not rely on locks: upserts are idempotent, the one-time secret decides
// which in-flight render may complete, and task-id de-duplication stops a
// burst of related edits from producing redundant jobs for a shared
// dependent page.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"prerenderd/internal/jobs"
	"prerenderd/internal/models"
	"prerenderd/internal/templates"
)

// Entries is the slice of the entry store the scheduler needs.
type Entries interface {
	Get(ctx context.Context, typ string, objectID int64) (*models.Entry, error)
	Clear(ctx context.Context, typ string, objectID int64) error
	Delete(ctx context.Context, typ string, objectID int64) (bool, error)
}

// VersionReader reads the current HTML version token.
type VersionReader interface {
	Current(ctx context.Context) (string, error)
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Auditor records invalidation events. Optional.
type Auditor interface {
	Log(ctx context.Context, typ string, objectID int64, action string)
}

// Options bundles the scheduler's collaborators.
type Options struct {
	Entries  Entries
	Version  VersionReader
	Registry *templates.Registry
	Enqueuer Enqueuer
	Hooks    *Hooks
	Audit    Auditor // may be nil

	// ChronoPostType is the post type whose changes fan out to date
	// archives. Defaults to "post".
	ChronoPostType string
}

// Queue schedules prerenders and propagates invalidations.
type Queue struct {
	entries  Entries
	version  VersionReader
	registry *templates.Registry
	enqueuer Enqueuer
	hooks    *Hooks
	audit    Auditor
	chrono   string
	now      func() time.Time
}

// New creates a scheduler from its collaborators.
func New(opts Options) *Queue {
	hooks := opts.Hooks
	if hooks == nil {
		hooks = NewHooks()
	}
	chrono := opts.ChronoPostType
	if chrono == "" {
		chrono = "post"
	}
	return &Queue{
		entries:  opts.Entries,
		version:  opts.Version,
		registry: opts.Registry,
		enqueuer: opts.Enqueuer,
		hooks:    hooks,
		audit:    opts.Audit,
		chrono:   chrono,
		now:      time.Now,
	}
}

// Hooks exposes the hook table for integration registration.
func (q *Queue) Hooks() *Hooks {
	return q.hooks
}

// UpdatePost reacts to a post status transition. Autosaves and revisions
// are ignored; a transition away from publish deletes the cached entry
// (the page is gone, and listings referencing it changed too); a publish
// schedules the post and cascades to its dependents.
func (q *Queue) UpdatePost(ctx context.Context, evt models.PostEvent) error {
	if evt.IsAutosave || evt.IsRevision {
		return nil
	}

	if evt.NewStatus != models.StatusPublish {
		return q.DeletePost(ctx, evt)
	}

	return errors.Join(
		q.SchedulePost(ctx, evt.ID),
		q.UpdatePostRelated(ctx, evt),
	)
}

// DeletePost removes a post's entry. The cascade runs only when an entry
// actually existed, matching the event to real cache state.
func (q *Queue) DeletePost(ctx context.Context, evt models.PostEvent) error {
	existed, err := q.entries.Delete(ctx, string(models.KindPost), evt.ID)
	if err != nil {
		return err
	}
	if q.audit != nil {
		q.audit.Log(ctx, string(models.KindPost), evt.ID, "delete")
	}
	if !existed {
		return nil
	}
	return q.UpdatePostRelated(ctx, evt)
}

// UpdateTerm reacts to a taxonomy term save. Non-public taxonomies are
// ignored entirely.
func (q *Queue) UpdateTerm(ctx context.Context, evt models.TermEvent) error {
	if !evt.Public {
		return nil
	}
	return errors.Join(
		q.ScheduleTerm(ctx, evt.TermTaxonomyID),
		q.UpdateTermRelated(ctx, evt.TermTaxonomyID),
	)
}

// DeleteTerm removes a term's entry and cascades when one existed.
func (q *Queue) DeleteTerm(ctx context.Context, termTaxonomyID int64) error {
	existed, err := q.entries.Delete(ctx, string(models.KindTerm), termTaxonomyID)
	if err != nil {
		return err
	}
	if q.audit != nil {
		q.audit.Log(ctx, string(models.KindTerm), termTaxonomyID, "delete")
	}
	if !existed {
		return nil
	}
	return q.UpdateTermRelated(ctx, termTaxonomyID)
}

// UpdatePostRelated fans a post change out to every dependent page:
// frontpage, the author's page, the post type's archive (when it has one
// distinct from the site root), year/month/day archives for the
// chronological post type, and each public term the post belongs to.
// Every edge is gated by its ShouldUpdate hook. Failures on one edge do
// not stop the others.
func (q *Queue) UpdatePostRelated(ctx context.Context, evt models.PostEvent) error {
	var errs []error

	if q.hooks.ShouldUpdate(models.KindPost, models.KindFrontpage, evt.ID, "0") {
		errs = append(errs, q.ScheduleFrontpage(ctx))
	}

	if evt.AuthorID > 0 {
		authorID := strconv.FormatInt(evt.AuthorID, 10)
		if q.hooks.ShouldUpdate(models.KindPost, models.KindAuthor, evt.ID, authorID) {
			errs = append(errs, q.ScheduleAuthor(ctx, evt.AuthorID))
		}
	}

	if evt.PostType != "" {
		if link, err := q.registry.Link(string(models.KindPostTypeArchive), evt.PostType); err == nil {
			home, _ := q.registry.Link(string(models.KindFrontpage), "0")
			// An archive link equal to the site root means the post type
			// has no distinct archive page.
			if strings.TrimRight(link, "/") != strings.TrimRight(home, "/") &&
				q.hooks.ShouldUpdate(models.KindPost, models.KindPostTypeArchive, evt.ID, evt.PostType) {
				errs = append(errs, q.SchedulePostTypeArchive(ctx, evt.PostType))
			}
		}
	}

	if evt.PostType == q.chrono && !evt.PublishedAt.IsZero() {
		ymd := evt.PublishedAt.Format("20060102")
		if q.hooks.ShouldUpdate(models.KindPost, models.KindDateArchive, evt.ID, ymd) {
			errs = append(errs,
				q.ScheduleDateArchive(ctx, evt.PublishedAt.Format("2006")),
				q.ScheduleDateArchive(ctx, evt.PublishedAt.Format("200601")),
				q.ScheduleDateArchive(ctx, ymd),
			)
		}
	}

	for _, t := range evt.Terms {
		if !t.Public {
			continue
		}
		relatedID := strconv.FormatInt(t.TermTaxonomyID, 10)
		if q.hooks.ShouldUpdate(models.KindPost, models.KindTerm, evt.ID, relatedID) {
			errs = append(errs, q.ScheduleTerm(ctx, t.TermTaxonomyID))
		}
	}

	return errors.Join(errs...)
}

// UpdateTermRelated fans a term change out to its dependents: the
// frontpage only, by default.
func (q *Queue) UpdateTermRelated(ctx context.Context, termTaxonomyID int64) error {
	if q.hooks.ShouldUpdate(models.KindTerm, models.KindFrontpage, termTaxonomyID, "0") {
		return q.ScheduleFrontpage(ctx)
	}
	return nil
}

// SchedulePost schedules a post render.
func (q *Queue) SchedulePost(ctx context.Context, postID int64) error {
	return q.Schedule(ctx, string(models.KindPost), strconv.FormatInt(postID, 10))
}

// ScheduleTerm schedules a term page render.
func (q *Queue) ScheduleTerm(ctx context.Context, termTaxonomyID int64) error {
	return q.Schedule(ctx, string(models.KindTerm), strconv.FormatInt(termTaxonomyID, 10))
}

// ScheduleAuthor schedules an author page render.
func (q *Queue) ScheduleAuthor(ctx context.Context, authorID int64) error {
	return q.Schedule(ctx, string(models.KindAuthor), strconv.FormatInt(authorID, 10))
}

// ScheduleFrontpage schedules a frontpage render.
func (q *Queue) ScheduleFrontpage(ctx context.Context) error {
	return q.Schedule(ctx, string(models.KindFrontpage), "0")
}

// SchedulePostTypeArchive schedules a post type archive render.
func (q *Queue) SchedulePostTypeArchive(ctx context.Context, postType string) error {
	return q.Schedule(ctx, string(models.KindPostTypeArchive), postType)
}

// ScheduleDateArchive schedules a date archive render for a compact
// YYYY[MM[DD]] date.
func (q *Queue) ScheduleDateArchive(ctx context.Context, date string) error {
	return q.Schedule(ctx, string(models.KindDateArchive), date)
}

// Schedule canonicalizes a (type, id) pair, clears its entry so readers
// miss during the render, and enqueues the render job. A job with the same
// type, id, and args already pending makes this a no-op. Render jobs are
// fire-and-forget: the queue does not retry a failed dispatch, only a
// fresh content change or manual schedule does.
func (q *Queue) Schedule(ctx context.Context, typ, id string, args ...string) error {
	typ = q.hooks.FilterType(typ)

	tid, err := q.registry.ConvertTypeID(typ, id)
	if err != nil {
		return fmt.Errorf("schedule %s %s: %w", typ, id, err)
	}

	if err := q.entries.Clear(ctx, tid.Type(), tid.ObjectID); err != nil {
		return fmt.Errorf("schedule %s %s: %w", typ, id, err)
	}

	task, err := jobs.NewRenderTask(jobs.RenderPayload{Type: typ, ID: id, Args: args})
	if err != nil {
		return err
	}

	_, err = q.enqueuer.EnqueueContext(ctx, task,
		asynq.TaskID(jobs.RenderTaskID(typ, id, args)),
		asynq.MaxRetry(0),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		slog.Debug("render already pending", "type", typ, "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue render %s %s: %w", typ, id, err)
	}

	if q.audit != nil {
		q.audit.Log(ctx, tid.Type(), tid.ObjectID, "schedule")
	}
	slog.Info("render scheduled", "type", tid.Type(), "object_id", tid.ObjectID)
	return nil
}

// GetHTML returns the cached HTML for a (type, id) pair when it is fresh
// against the current version token. A stale, cleared, or absent entry
// triggers a reschedule and returns empty markup. Unversioned legacy
// entries inside their grace window still serve.
func (q *Queue) GetHTML(ctx context.Context, typ, id string) (string, error) {
	name := q.hooks.FilterType(typ)

	tid, err := q.registry.ConvertTypeID(name, id)
	if err != nil {
		return "", err
	}

	entry, err := q.entries.Get(ctx, tid.Type(), tid.ObjectID)
	if err != nil {
		return "", err
	}

	current, err := q.version.Current(ctx)
	if err != nil {
		return "", err
	}

	if entry != nil && entry.Fresh(current, q.now()) {
		return entry.HTML, nil
	}

	if err := q.Schedule(ctx, typ, id); err != nil {
		return "", err
	}
	return "", nil
}
