package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kozaktomas/reverse-prompt/internal/pipeline"
	"github.com/kozaktomas/reverse-prompt/internal/store"
)

// RunRepository provides PostgreSQL-backed run storage.
type RunRepository struct {
	pool *Pool
}

// NewRunRepository creates a new PostgreSQL run repository.
func NewRunRepository(pool *Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Save stores a run. A missing ID is generated.
func (r *RunRepository) Save(ctx context.Context, run *store.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tags, err := json.Marshal(run.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	query := `
		INSERT INTO runs (id, image_name, prompt, tags, face_found, demographic_used)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.pool.Exec(ctx, query, run.ID, run.ImageName, run.Prompt, tags, run.FaceFound, run.DemographicUsed); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// List returns stored runs, newest first.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]store.Run, error) {
	query := `
		SELECT id, image_name, prompt, tags, face_found, demographic_used, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var tags []byte
		if err := rows.Scan(&run.ID, &run.ImageName, &run.Prompt, &tags, &run.FaceFound, &run.DemographicUsed, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Tags = make(pipeline.TagSet)
		if err := json.Unmarshal(tags, &run.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Count returns the number of stored runs.
func (r *RunRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}
