package storage

import (
	"context"

	"fuzzyme/internal/model"
)

// Store defines persistence operations for pipeline definitions and the
// evaluations recorded against them.
type Store interface {
	Init(ctx context.Context) error
	SavePipeline(ctx context.Context, def model.PipelineDef) error
	GetPipeline(ctx context.Context, id string) (model.PipelineDef, bool, error)
	SaveEvaluation(ctx context.Context, rec model.EvaluationRecord) error
	ListEvaluations(ctx context.Context, pipelineID string) ([]model.EvaluationRecord, error)
}
