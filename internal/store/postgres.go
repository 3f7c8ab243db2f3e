package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS twin_evaluations (
	evaluation_id    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	application      TEXT NOT NULL DEFAULT '',
	request          JSONB NOT NULL,
	final_score      DOUBLE PRECISION NOT NULL,
	classification   TEXT NOT NULL,
	detailed_scores  JSONB NOT NULL,
	renewable_source TEXT NOT NULL,
	requester        TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS twin_evaluations_created_at_idx ON twin_evaluations (created_at DESC);
CREATE INDEX IF NOT EXISTS twin_evaluations_application_idx ON twin_evaluations (application);`

// Migrate creates the history table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const evaluationColumns = `evaluation_id, application, request, final_score, classification,
	detailed_scores, renewable_source, requester, created_at`

func (s *PostgresStore) AppendEvaluation(ctx context.Context, e *Evaluation) error {
	requestJSON, err := json.Marshal(e.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	scoresJSON, err := json.Marshal(e.DetailedScores)
	if err != nil {
		return fmt.Errorf("marshal detailed scores: %w", err)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO twin_evaluations (application, request, final_score, classification,
			detailed_scores, renewable_source, requester)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING evaluation_id, created_at`,
		e.Application, requestJSON, e.FinalScore, string(e.Classification),
		scoresJSON, string(e.RenewableSource), e.Requester,
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *PostgresStore) GetEvaluation(ctx context.Context, id uuid.UUID) (*Evaluation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+evaluationColumns+`
		FROM twin_evaluations WHERE evaluation_id = $1`, id)
	e, err := scanEvaluation(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]*Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM twin_evaluations WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Application != "" {
		n++
		query += fmt.Sprintf(" AND application = $%d", n)
		args = append(args, filter.Application)
	}
	if filter.Classification != nil {
		n++
		query += fmt.Sprintf(" AND classification = $%d", n)
		args = append(args, string(*filter.Classification))
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*EvaluationStats, error) {
	stats := &EvaluationStats{
		ByClassification: make(map[scoring.Classification]int),
		ByApplication:    make(map[string]int),
	}

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(AVG(final_score), 0) FROM twin_evaluations`,
	).Scan(&stats.Total, &stats.AvgFinalScore)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT classification, COUNT(*) FROM twin_evaluations GROUP BY classification`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var class string
		var count int
		if err := rows.Scan(&class, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByClassification[scoring.Classification(class)] = count
	}
	rows.Close()

	rows, err = s.pool.Query(ctx, `
		SELECT application, COUNT(*) FROM twin_evaluations GROUP BY application`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var app string
		var count int
		if err := rows.Scan(&app, &count); err != nil {
			return nil, err
		}
		stats.ByApplication[app] = count
	}
	return stats, rows.Err()
}

func scanEvaluation(row pgx.Row) (*Evaluation, error) {
	e := &Evaluation{}
	var requestJSON, scoresJSON []byte
	var class, source string
	err := row.Scan(
		&e.ID, &e.Application, &requestJSON, &e.FinalScore, &class,
		&scoresJSON, &source, &e.Requester, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Classification = scoring.Classification(class)
	e.RenewableSource = RenewableSource(source)
	if requestJSON != nil {
		_ = json.Unmarshal(requestJSON, &e.Request)
	}
	if scoresJSON != nil {
		_ = json.Unmarshal(scoresJSON, &e.DetailedScores)
	}
	return e, nil
}
