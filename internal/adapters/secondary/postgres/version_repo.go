package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

type versionRepo struct {
	pool *pgxpool.Pool
}

func NewModelVersionRepository(pool *pgxpool.Pool) ports.ModelVersionRepository {
	return &versionRepo{pool: pool}
}

const versionColumns = `
	id, created_at, updated_at, model_id, version, status,
	model_path, checksum, size_bytes, format, framework,
	latency_p50_ms, throughput_rps,
	lineage_node_id, quality_score, failure_reason, created_by
`

// CreateWithLineage inserts the version row and all of its lineage nodes
// and edges in a single transaction. On any failure the transaction rolls
// back and partial lineage is never observable.
func (r *versionRepo) CreateWithLineage(ctx context.Context, version *domain.ModelVersion, nodes []*domain.LineageNode, edges []*domain.LineageEdge) error {
	return withRetry(ctx, func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("begin version transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		query := `
			INSERT INTO model_version
				(id, created_at, updated_at, model_id, version, status,
				 model_path, checksum, size_bytes, format, framework,
				 lineage_node_id, created_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`
		_, err = tx.Exec(ctx, query,
			version.ID, version.CreatedAt, version.UpdatedAt,
			version.ModelID, version.Version, string(version.Status),
			version.Artifacts.ModelPath, version.Artifacts.Checksum,
			version.Artifacts.SizeBytes, version.Artifacts.Format,
			version.Artifacts.Framework,
			version.LineageNodeID, version.CreatedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("create model version: %w", err)
		}

		for _, node := range nodes {
			if err := insertNode(ctx, tx, node); err != nil {
				return err
			}
		}
		for _, edge := range edges {
			if err := insertEdge(ctx, tx, edge); err != nil {
				return err
			}
		}
		return tx.Commit(ctx)
	})
}

func (r *versionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ModelVersion, error) {
	query := `SELECT` + versionColumns + `FROM model_version WHERE id = $1`

	var version *domain.ModelVersion
	err := withRetry(ctx, func() error {
		v, err := scanVersion(r.pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrVersionNotFound
			}
			return fmt.Errorf("get version by id: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

func (r *versionRepo) GetByModelAndVersion(ctx context.Context, modelID uuid.UUID, versionStr string) (*domain.ModelVersion, error) {
	query := `SELECT` + versionColumns + `FROM model_version WHERE model_id = $1 AND version = $2`

	var version *domain.ModelVersion
	err := withRetry(ctx, func() error {
		v, err := scanVersion(r.pool.QueryRow(ctx, query, modelID, versionStr))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrVersionNotFound
			}
			return fmt.Errorf("get version by model and version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

func (r *versionRepo) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	query := `SELECT` + versionColumns + `FROM model_version WHERE model_id = $1 ORDER BY created_at`
	return r.list(ctx, query, modelID)
}

func (r *versionRepo) ListPublished(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	query := `SELECT` + versionColumns + `
		FROM model_version
		WHERE model_id = $1 AND status IN ('PUBLISHED','DEPRECATED','ARCHIVED')
		ORDER BY created_at`
	return r.list(ctx, query, modelID)
}

func (r *versionRepo) ListStalledInEvaluation(ctx context.Context, cutoff time.Time) ([]*domain.ModelVersion, error) {
	query := `SELECT` + versionColumns + `
		FROM model_version
		WHERE status = 'EVALUATING' AND updated_at < $1
		ORDER BY updated_at`
	return r.list(ctx, query, cutoff)
}

func (r *versionRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ModelVersion, error) {
	var versions []*domain.ModelVersion
	err := withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list versions: %w", err)
		}
		defer rows.Close()

		versions = versions[:0]
		for rows.Next() {
			v, err := scanVersion(rows)
			if err != nil {
				return fmt.Errorf("scan version: %w", err)
			}
			versions = append(versions, v)
		}
		return rows.Err()
	})
	return versions, err
}

// UpdateStatus is the conditional write backing the status state machine:
// it only fires when the stored status still equals from.
func (r *versionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.VersionStatus, failureReason string) error {
	query := `
		UPDATE model_version
		SET status=$1, failure_reason=$2, updated_at=NOW()
		WHERE id=$3 AND status=$4
	`
	return withRetry(ctx, func() error {
		result, err := r.pool.Exec(ctx, query, string(to), failureReason, id, string(from))
		if err != nil {
			return fmt.Errorf("update version status: %w", err)
		}
		if result.RowsAffected() == 0 {
			// Row gone or status moved underneath us.
			return domain.ErrInvalidStatusTransition
		}
		return nil
	})
}

func (r *versionRepo) UpdateQualityScore(ctx context.Context, id uuid.UUID, score float64) error {
	query := `UPDATE model_version SET quality_score=$1, updated_at=NOW() WHERE id=$2`
	return withRetry(ctx, func() error {
		result, err := r.pool.Exec(ctx, query, score, id)
		if err != nil {
			return fmt.Errorf("update version quality score: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrVersionNotFound
		}
		return nil
	})
}

func (r *versionRepo) UpdatePerformance(ctx context.Context, id uuid.UUID, perf domain.PerformanceProfile) error {
	query := `UPDATE model_version SET latency_p50_ms=$1, throughput_rps=$2, updated_at=NOW() WHERE id=$3`
	return withRetry(ctx, func() error {
		result, err := r.pool.Exec(ctx, query, perf.LatencyP50Ms, perf.ThroughputRPS, id)
		if err != nil {
			return fmt.Errorf("update version performance: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrVersionNotFound
		}
		return nil
	})
}

func scanVersion(row pgx.Row) (*domain.ModelVersion, error) {
	var (
		v      domain.ModelVersion
		status string
	)
	err := row.Scan(
		&v.ID, &v.CreatedAt, &v.UpdatedAt, &v.ModelID, &v.Version, &status,
		&v.Artifacts.ModelPath, &v.Artifacts.Checksum, &v.Artifacts.SizeBytes,
		&v.Artifacts.Format, &v.Artifacts.Framework,
		&v.Performance.LatencyP50Ms, &v.Performance.ThroughputRPS,
		&v.LineageNodeID, &v.QualityScore, &v.FailureReason, &v.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	v.Status = domain.VersionStatus(status)
	return &v, nil
}
