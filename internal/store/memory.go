package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

// MemoryStore keeps the history in process memory. It is used when no
// database is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	evaluations []*Evaluation
	byID        map[uuid.UUID]*Evaluation
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[uuid.UUID]*Evaluation),
		now:  time.Now,
	}
}

func (s *MemoryStore) AppendEvaluation(_ context.Context, e *Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.New()
	e.CreatedAt = s.now().UTC()
	stored := copyEvaluation(e)
	s.evaluations = append(s.evaluations, stored)
	s.byID[stored.ID] = stored
	return nil
}

func (s *MemoryStore) GetEvaluation(_ context.Context, id uuid.UUID) (*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return copyEvaluation(e), nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, filter EvaluationFilter) ([]*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Evaluation
	for i := len(s.evaluations) - 1; i >= 0; i-- {
		e := s.evaluations[i]
		if filter.Application != "" && e.Application != filter.Application {
			continue
		}
		if filter.Classification != nil && e.Classification != *filter.Classification {
			continue
		}
		matched = append(matched, e)
	}
	// Newest first; appends share timestamps at coarse clock resolution.
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*Evaluation, 0, len(matched))
	for _, e := range matched {
		out = append(out, copyEvaluation(e))
	}
	return out, nil
}

func (s *MemoryStore) GetStats(_ context.Context) (*EvaluationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &EvaluationStats{
		Total:            len(s.evaluations),
		ByClassification: make(map[scoring.Classification]int),
		ByApplication:    make(map[string]int),
	}
	var sum float64
	for _, e := range s.evaluations {
		stats.ByClassification[e.Classification]++
		stats.ByApplication[e.Application]++
		sum += e.FinalScore
	}
	if stats.Total > 0 {
		stats.AvgFinalScore = sum / float64(stats.Total)
	}
	return stats, nil
}

func (s *MemoryStore) Close() error { return nil }

func copyEvaluation(e *Evaluation) *Evaluation {
	c := *e
	c.Request.Components = append([]scoring.Component(nil), e.Request.Components...)
	if e.DetailedScores != nil {
		c.DetailedScores = make(map[string]float64, len(e.DetailedScores))
		for k, v := range e.DetailedScores {
			c.DetailedScores[k] = v
		}
	}
	return &c
}
