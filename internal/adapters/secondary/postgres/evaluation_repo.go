package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

type evaluationRepo struct {
	pool *pgxpool.Pool
}

func NewEvaluationRepository(pool *pgxpool.Pool) ports.EvaluationRepository {
	return &evaluationRepo{pool: pool}
}

const evaluationColumns = `
	id, model_version_id, benchmark_name, benchmark_version,
	overall_score, task_scores, metrics, status, failure_reason,
	evaluated_at, created_at
`

// Upsert keys results on (version, benchmark). An existing row is only
// replaced by a result with an evaluatedAt that is not older, which gives
// last-writer-wins semantics under concurrent ingestion.
func (r *evaluationRepo) Upsert(ctx context.Context, result *domain.EvaluationResult) error {
	taskScoresJSON, err := json.Marshal(result.TaskScores)
	if err != nil {
		return fmt.Errorf("marshal task scores: %w", err)
	}
	metricsJSON, err := json.Marshal(result.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	query := `
		INSERT INTO evaluation_result
			(id, model_version_id, benchmark_name, benchmark_version,
			 overall_score, task_scores, metrics, status, failure_reason,
			 evaluated_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (model_version_id, benchmark_name) DO UPDATE
		SET id=EXCLUDED.id,
			benchmark_version=EXCLUDED.benchmark_version,
			overall_score=EXCLUDED.overall_score,
			task_scores=EXCLUDED.task_scores,
			metrics=EXCLUDED.metrics,
			status=EXCLUDED.status,
			failure_reason=EXCLUDED.failure_reason,
			evaluated_at=EXCLUDED.evaluated_at
		WHERE evaluation_result.evaluated_at <= EXCLUDED.evaluated_at
	`
	return withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, query,
			result.ID, result.ModelVersionID, result.BenchmarkName,
			result.BenchmarkVersion, result.OverallScore,
			taskScoresJSON, metricsJSON, string(result.Status),
			result.FailureReason, result.EvaluatedAt, result.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert evaluation result: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrStaleResult
		}
		return nil
	})
}

func (r *evaluationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationResult, error) {
	query := `SELECT` + evaluationColumns + `FROM evaluation_result WHERE id = $1`

	var result *domain.EvaluationResult
	err := withRetry(ctx, func() error {
		res, err := scanEvaluation(r.pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEvaluationNotFound
			}
			return fmt.Errorf("get evaluation result: %w", err)
		}
		result = res
		return nil
	})
	return result, err
}

func (r *evaluationRepo) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*domain.EvaluationResult, error) {
	query := `SELECT` + evaluationColumns + `
		FROM evaluation_result WHERE model_version_id = $1
		ORDER BY evaluated_at`
	return r.list(ctx, query, versionID)
}

func (r *evaluationRepo) ListCompletedByBenchmark(ctx context.Context, benchmark string, limit int) ([]*domain.EvaluationResult, error) {
	query := `SELECT` + evaluationColumns + `
		FROM evaluation_result
		WHERE benchmark_name = $1 AND status = 'COMPLETED'
		ORDER BY overall_score DESC, evaluated_at ASC
		LIMIT $2`
	return r.list(ctx, query, benchmark, limit)
}

func (r *evaluationRepo) DeleteUnfinishedByVersion(ctx context.Context, versionID uuid.UUID) (int, error) {
	query := `
		DELETE FROM evaluation_result
		WHERE model_version_id = $1 AND status IN ('PENDING','RUNNING')
	`
	var deleted int
	err := withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, query, versionID)
		if err != nil {
			return fmt.Errorf("delete unfinished results: %w", err)
		}
		deleted = int(tag.RowsAffected())
		return nil
	})
	return deleted, err
}

func (r *evaluationRepo) list(ctx context.Context, query string, args ...any) ([]*domain.EvaluationResult, error) {
	var results []*domain.EvaluationResult
	err := withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list evaluation results: %w", err)
		}
		defer rows.Close()

		results = results[:0]
		for rows.Next() {
			res, err := scanEvaluation(rows)
			if err != nil {
				return fmt.Errorf("scan evaluation result: %w", err)
			}
			results = append(results, res)
		}
		return rows.Err()
	})
	return results, err
}

func scanEvaluation(row pgx.Row) (*domain.EvaluationResult, error) {
	var (
		res            domain.EvaluationResult
		status         string
		taskScoresJSON []byte
		metricsJSON    []byte
	)
	err := row.Scan(
		&res.ID, &res.ModelVersionID, &res.BenchmarkName, &res.BenchmarkVersion,
		&res.OverallScore, &taskScoresJSON, &metricsJSON, &status,
		&res.FailureReason, &res.EvaluatedAt, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Status = domain.EvaluationStatus(status)
	if len(taskScoresJSON) > 0 {
		if err := json.Unmarshal(taskScoresJSON, &res.TaskScores); err != nil {
			return nil, fmt.Errorf("unmarshal task scores: %w", err)
		}
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &res.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}
	}
	return &res, nil
}
