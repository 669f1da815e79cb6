// Package store persists pipeline runs so researchers can audit prompt
// and tag distributions across a corpus after the fact.
package store

import (
	"context"
	"time"

	"github.com/kozaktomas/reverse-prompt/internal/pipeline"
)

// Run is one persisted pipeline invocation.
type Run struct {
	ID              string          `json:"id"`
	ImageName       string          `json:"image_name"`
	Prompt          string          `json:"prompt"`
	Tags            pipeline.TagSet `json:"tags"`
	FaceFound       bool            `json:"face_found"`
	DemographicUsed bool            `json:"demographic_used"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RunWriter stores pipeline runs.
type RunWriter interface {
	Save(ctx context.Context, run *Run) error
}

// RunReader reads stored pipeline runs.
type RunReader interface {
	List(ctx context.Context, limit, offset int) ([]Run, error)
	Count(ctx context.Context) (int, error)
}

// RunStore combines reading and writing.
type RunStore interface {
	RunWriter
	RunReader
}
