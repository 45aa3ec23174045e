// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"prerenderd/internal/models"
	"prerenderd/internal/templates"
)

// SecretIssuer issues one-time callback secrets.
type SecretIssuer interface {
	Issue(ctx context.Context, typ, id string) (string, error)
}

// VersionReader reads the current HTML version token.
type VersionReader interface {
	Current(ctx context.Context) (string, error)
}

// Payload is the wire contract of an outbound render call.
type Payload struct {
	Type      string   `json:"type"`
	ID        string   `json:"id"`
	URL       string   `json:"url"`
	Variable  string   `json:"variable"`
	Selector  string   `json:"selector"`
	ReturnURL string   `json:"return_url"`
	Secret    string   `json:"secret"`
	Version   string   `json:"version"`
	Args      []string `json:"args,omitempty"`
}

// Dispatcher composes render payloads and fires them at the renderer.
type Dispatcher struct {
	registry *templates.Registry
	secrets  SecretIssuer
	version  VersionReader
	invoker  Invoker

	returnURL string
	variable  string
	selector  string
	queryArg  string
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. queryArg is the cache-buster query
// parameter appended to every render URL so the renderer's fetch bypasses
// any front-end cache.
func NewDispatcher(registry *templates.Registry, secrets SecretIssuer, version VersionReader,
	invoker Invoker, returnURL, variable, selector, queryArg string) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		secrets:   secrets,
		version:   version,
		invoker:   invoker,
		returnURL: returnURL,
		variable:  variable,
		selector:  selector,
		queryArg:  queryArg,
		now:       time.Now,
	}
}

// Dispatch fires one asynchronous render for a (type, id) pair. A link
// that no longer resolves (content deleted between schedule and dispatch,
// unknown post type) is an expected steady-state condition: it is logged
// and dropped, never retried. A secret that cannot be persisted aborts the
// dispatch, since its callback could never authenticate.
func (d *Dispatcher) Dispatch(ctx context.Context, typ, id string, args ...string) error {
	link, err := d.registry.Link(typ, id)
	if err != nil {
		if errors.Is(err, models.ErrNoLink) || errors.Is(err, models.ErrValidation) ||
			errors.Is(err, models.ErrNotImplemented) {
			slog.Warn("render dropped, link unresolvable", "type", typ, "id", id, "error", err)
			return nil
		}
		return fmt.Errorf("dispatch %s %s: %w", typ, id, err)
	}

	secret, err := d.secrets.Issue(ctx, typ, id)
	if err != nil {
		return fmt.Errorf("dispatch %s %s: %w", typ, id, err)
	}

	version, err := d.version.Current(ctx)
	if err != nil {
		return fmt.Errorf("dispatch %s %s: %w", typ, id, err)
	}

	busted, err := d.cacheBust(link)
	if err != nil {
		return fmt.Errorf("dispatch %s %s: %w", typ, id, err)
	}

	payload, err := json.Marshal(Payload{
		Type:      typ,
		ID:        id,
		URL:       busted,
		Variable:  d.variable,
		Selector:  d.selector,
		ReturnURL: d.returnURL,
		Secret:    secret,
		Version:   version,
		Args:      args,
	})
	if err != nil {
		return fmt.Errorf("marshal render payload: %w", err)
	}

	if err := d.invoker.Invoke(ctx, payload); err != nil {
		return fmt.Errorf("dispatch %s %s: %w", typ, id, err)
	}

	slog.Info("render dispatched", "type", typ, "id", id, "url", link)
	return nil
}

// cacheBust appends the cache-buster query parameter to a URL.
func (d *Dispatcher) cacheBust(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", link, err)
	}
	q := u.Query()
	q.Set(d.queryArg, strconv.FormatInt(d.now().Unix(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
