//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE twin_evaluations")
		s.Close()
	})

	return s
}

func TestAppendAndGetEvaluation(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	e := newEvaluation("satellite", 59.22)
	e.Requester = "integration-test"

	if err := s.AppendEvaluation(ctx, e); err != nil {
		t.Fatalf("AppendEvaluation failed: %v", err)
	}
	if e.ID == uuid.Nil {
		t.Fatal("expected non-nil evaluation ID after append")
	}
	if e.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	got, err := s.GetEvaluation(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEvaluation failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected evaluation, got nil")
	}
	if got.Application != "satellite" {
		t.Errorf("expected application 'satellite', got '%s'", got.Application)
	}
	if got.Classification != scoring.ClassModerate {
		t.Errorf("expected Moderate, got '%s'", got.Classification)
	}
	if got.DetailedScores[scoring.ScoreWaste] != 100 {
		t.Errorf("expected waste 100, got %f", got.DetailedScores[scoring.ScoreWaste])
	}
	if len(got.Request.Components) != 1 || got.Request.Components[0].Name != "Gyroscope" {
		t.Errorf("unexpected request components: %+v", got.Request.Components)
	}
	if got.RenewableSource != RenewableFromDefault {
		t.Errorf("expected default renewable source, got %s", got.RenewableSource)
	}
}

func TestGetEvaluationNotFound(t *testing.T) {
	s := setupTestDB(t)

	got, err := s.GetEvaluation(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetEvaluation failed: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown evaluation")
	}
}

func TestListEvaluationsAndStats(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for _, e := range []*Evaluation{
		newEvaluation("satellite", 80),
		newEvaluation("rehabilitation", 60),
		newEvaluation("satellite", 40),
	} {
		if err := s.AppendEvaluation(ctx, e); err != nil {
			t.Fatalf("AppendEvaluation failed: %v", err)
		}
	}

	sat, err := s.ListEvaluations(ctx, EvaluationFilter{Application: "satellite"})
	if err != nil {
		t.Fatalf("ListEvaluations failed: %v", err)
	}
	if len(sat) != 2 {
		t.Errorf("expected 2 satellite evaluations, got %d", len(sat))
	}

	ecologic := scoring.ClassEcologic
	eco, err := s.ListEvaluations(ctx, EvaluationFilter{Classification: &ecologic})
	if err != nil {
		t.Fatalf("ListEvaluations failed: %v", err)
	}
	if len(eco) != 1 {
		t.Errorf("expected 1 ecologic evaluation, got %d", len(eco))
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("expected 3 total, got %d", stats.Total)
	}
	if stats.AvgFinalScore != 60 {
		t.Errorf("expected avg 60, got %f", stats.AvgFinalScore)
	}
	if stats.ByApplication["satellite"] != 2 {
		t.Errorf("expected 2 satellite, got %d", stats.ByApplication["satellite"])
	}
}
