package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

func TestRenewableSourceValues(t *testing.T) {
	sources := []RenewableSource{RenewableFromRequest, RenewableFromLive, RenewableFromDefault}
	expected := []string{"request", "live", "default"}
	for i, s := range sources {
		if string(s) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], s)
		}
	}
}

func TestEvaluationFilterDefaults(t *testing.T) {
	f := EvaluationFilter{}
	if f.Limit != 0 {
		t.Errorf("expected 0 default limit, got %d", f.Limit)
	}
	if f.Classification != nil {
		t.Error("expected nil classification filter")
	}
}

func newEvaluation(app string, score float64) *Evaluation {
	return &Evaluation{
		Application: app,
		Request: scoring.EvaluationRequest{
			Application: app,
			Components:  []scoring.Component{{Name: "Gyroscope", Type: "sensor", Consumption: 0.5, Lifespan: 5}},
		},
		FinalScore:      score,
		Classification:  scoring.Classify(score),
		DetailedScores:  map[string]float64{scoring.ScoreWaste: 100},
		RenewableSource: RenewableFromDefault,
	}
}

func TestMemoryStoreAppendAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	e := newEvaluation("satellite", 59.22)
	require.NoError(t, s.AppendEvaluation(ctx, e))
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	got, err := s.GetEvaluation(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "satellite", got.Application)
	assert.Equal(t, scoring.ClassModerate, got.Classification)
	assert.Equal(t, scoring.EvaluationResult{
		FinalScore:     59.22,
		Classification: scoring.ClassModerate,
		DetailedScores: map[string]float64{scoring.ScoreWaste: 100},
	}, got.Result())

	missing, err := s.GetEvaluation(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	e := newEvaluation("satellite", 80)
	require.NoError(t, s.AppendEvaluation(ctx, e))
	e.DetailedScores[scoring.ScoreWaste] = 1
	e.Request.Components[0].Name = "changed"

	got, err := s.GetEvaluation(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.DetailedScores[scoring.ScoreWaste])
	assert.Equal(t, "Gyroscope", got.Request.Components[0].Name)
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	require.NoError(t, s.AppendEvaluation(ctx, newEvaluation("satellite", 80)))
	require.NoError(t, s.AppendEvaluation(ctx, newEvaluation("rehabilitation", 60)))
	require.NoError(t, s.AppendEvaluation(ctx, newEvaluation("satellite", 40)))

	all, err := s.ListEvaluations(ctx, EvaluationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 40.0, all[0].FinalScore, "newest first")

	sat, err := s.ListEvaluations(ctx, EvaluationFilter{Application: "satellite"})
	require.NoError(t, err)
	assert.Len(t, sat, 2)

	moderate := scoring.ClassModerate
	mod, err := s.ListEvaluations(ctx, EvaluationFilter{Classification: &moderate})
	require.NoError(t, err)
	require.Len(t, mod, 1)
	assert.Equal(t, "rehabilitation", mod[0].Application)

	page, err := s.ListEvaluations(ctx, EvaluationFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 60.0, page[0].FinalScore)

	empty, err := s.ListEvaluations(ctx, EvaluationFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreStats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.AvgFinalScore)

	require.NoError(t, s.AppendEvaluation(ctx, newEvaluation("satellite", 80)))
	require.NoError(t, s.AppendEvaluation(ctx, newEvaluation("satellite", 40)))

	stats, err = s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 60.0, stats.AvgFinalScore)
	assert.Equal(t, 1, stats.ByClassification[scoring.ClassEcologic])
	assert.Equal(t, 1, stats.ByClassification[scoring.ClassNotEcologic])
	assert.Equal(t, 2, stats.ByApplication["satellite"])
}
