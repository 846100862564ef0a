package storage

import (
	"context"
	"sync"

	"fuzzyme/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	pipelines   map[string]model.PipelineDef
	evaluations map[string][]model.EvaluationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.pipelines = make(map[string]model.PipelineDef)
	s.evaluations = make(map[string][]model.EvaluationRecord)
	return nil
}

func (s *MemoryStore) SavePipeline(_ context.Context, def model.PipelineDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pipelines[def.ID] = def
	return nil
}

func (s *MemoryStore) GetPipeline(_ context.Context, id string) (model.PipelineDef, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.pipelines[id]
	return def, ok, nil
}

func (s *MemoryStore) SaveEvaluation(_ context.Context, rec model.EvaluationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluations[rec.PipelineID] = append(s.evaluations[rec.PipelineID], rec)
	return nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, pipelineID string) ([]model.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.evaluations[pipelineID]
	copied := make([]model.EvaluationRecord, len(records))
	copy(copied, records)
	return copied, nil
}
