// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package jobs defines the asynq task types exchanged between the API
// server and the render worker.
package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

// TypeRender is the task type for a single render dispatch.
const TypeRender = "prerender:render"

// RenderPayload carries one render job: the template type name, the raw
// (pre-canonicalization) object id, and any caller-supplied extra args
// forwarded to the renderer.
type RenderPayload struct {
	Type string   `json:"type"`
	ID   string   `json:"id"`
	Args []string `json:"args,omitempty"`
}

// NewRenderTask builds the asynq task for a render payload.
func NewRenderTask(p RenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal render payload: %w", err)
	}
	return asynq.NewTask(TypeRender, data), nil
}

// RenderTaskID derives the de-duplication id for a render job. Two jobs
// with the same type, id, and args collapse into one while the first is
// still pending.
func RenderTaskID(typ, id string, args []string) string {
	parts := append([]string{TypeRender, typ, id}, args...)
	return strings.Join(parts, ":")
}
