package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

type provenanceRepo struct {
	pool *pgxpool.Pool
}

func NewProvenanceRepository(pool *pgxpool.Pool) ports.ProvenanceRepository {
	return &provenanceRepo{pool: pool}
}

func (r *provenanceRepo) Create(ctx context.Context, p *domain.DatasetProvenance) error {
	sourcesJSON, stepsJSON, err := marshalProvenanceBlobs(p)
	if err != nil {
		return err
	}
	flagsJSON, err := json.Marshal(p.ComplianceFlags)
	if err != nil {
		return fmt.Errorf("marshal compliance flags: %w", err)
	}
	metricsJSON, err := json.Marshal(p.QualityMetrics)
	if err != nil {
		return fmt.Errorf("marshal quality metrics: %w", err)
	}
	licensingJSON, err := json.Marshal(p.Licensing)
	if err != nil {
		return fmt.Errorf("marshal licensing: %w", err)
	}

	return withRetry(ctx, func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("begin provenance insert: %w", err)
		}
		defer tx.Rollback(ctx)

		query := `
			INSERT INTO dataset_provenance
				(id, version, name, sources, preprocessing_steps,
				 quality_metrics, licensing, compliance_flags,
				 created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`
		_, err = tx.Exec(ctx, query,
			p.ID, p.Version, p.Name, sourcesJSON, stepsJSON,
			metricsJSON, licensingJSON, flagsJSON,
			p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domain.ErrDatasetConflict
			}
			return fmt.Errorf("create dataset provenance: %w", err)
		}

		for _, entry := range p.AuditLog {
			if err := insertAuditEntry(ctx, tx, p.ID, entry); err != nil {
				return err
			}
		}
		return tx.Commit(ctx)
	})
}

func (r *provenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DatasetProvenance, error) {
	query := `
		SELECT id, version, name, sources, preprocessing_steps,
			   quality_metrics, licensing, compliance_flags,
			   created_at, updated_at
		FROM dataset_provenance WHERE id = $1
	`
	var prov *domain.DatasetProvenance
	err := withRetry(ctx, func() error {
		p, err := scanProvenance(r.pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrDatasetNotFound
			}
			return fmt.Errorf("get dataset provenance: %w", err)
		}

		rows, err := r.pool.Query(ctx, `
			SELECT at, actor, action, detail
			FROM dataset_audit_log WHERE dataset_id = $1 ORDER BY at, seq`, id)
		if err != nil {
			return fmt.Errorf("load audit log: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var entry domain.AuditEntry
			if err := rows.Scan(&entry.At, &entry.Actor, &entry.Action, &entry.Detail); err != nil {
				return fmt.Errorf("scan audit entry: %w", err)
			}
			p.AuditLog = append(p.AuditLog, entry)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		prov = p
		return nil
	})
	return prov, err
}

// Update rewrites the mutable record columns. The audit log is not touched
// here; it only ever grows through AppendAudit.
func (r *provenanceRepo) Update(ctx context.Context, p *domain.DatasetProvenance) error {
	sourcesJSON, stepsJSON, err := marshalProvenanceBlobs(p)
	if err != nil {
		return err
	}
	flagsJSON, err := json.Marshal(p.ComplianceFlags)
	if err != nil {
		return fmt.Errorf("marshal compliance flags: %w", err)
	}
	metricsJSON, err := json.Marshal(p.QualityMetrics)
	if err != nil {
		return fmt.Errorf("marshal quality metrics: %w", err)
	}
	licensingJSON, err := json.Marshal(p.Licensing)
	if err != nil {
		return fmt.Errorf("marshal licensing: %w", err)
	}

	query := `
		UPDATE dataset_provenance
		SET sources=$1, preprocessing_steps=$2, quality_metrics=$3,
			licensing=$4, compliance_flags=$5, updated_at=NOW()
		WHERE id=$6
	`
	return withRetry(ctx, func() error {
		result, err := r.pool.Exec(ctx, query,
			sourcesJSON, stepsJSON, metricsJSON, licensingJSON, flagsJSON, p.ID,
		)
		if err != nil {
			return fmt.Errorf("update dataset provenance: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrDatasetNotFound
		}
		return nil
	})
}

func (r *provenanceRepo) AppendAudit(ctx context.Context, datasetID uuid.UUID, entry domain.AuditEntry) error {
	return withRetry(ctx, func() error {
		return insertAuditEntry(ctx, r.pool, datasetID, entry)
	})
}

func insertAuditEntry(ctx context.Context, db execer, datasetID uuid.UUID, entry domain.AuditEntry) error {
	query := `
		INSERT INTO dataset_audit_log (dataset_id, at, actor, action, detail)
		VALUES ($1,$2,$3,$4,$5)
	`
	_, err := db.Exec(ctx, query, datasetID, entry.At, entry.Actor, entry.Action, entry.Detail)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrDatasetNotFound
		}
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func marshalProvenanceBlobs(p *domain.DatasetProvenance) (sources, steps []byte, err error) {
	sources, err = json.Marshal(p.Sources)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal sources: %w", err)
	}
	steps, err = json.Marshal(p.PreprocessingSteps)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal preprocessing steps: %w", err)
	}
	return sources, steps, nil
}

func scanProvenance(row pgx.Row) (*domain.DatasetProvenance, error) {
	var (
		p             domain.DatasetProvenance
		sourcesJSON   []byte
		stepsJSON     []byte
		metricsJSON   []byte
		licensingJSON []byte
		flagsJSON     []byte
	)
	err := row.Scan(
		&p.ID, &p.Version, &p.Name, &sourcesJSON, &stepsJSON,
		&metricsJSON, &licensingJSON, &flagsJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, blob := range []struct {
		data []byte
		dst  any
	}{
		{sourcesJSON, &p.Sources},
		{stepsJSON, &p.PreprocessingSteps},
		{metricsJSON, &p.QualityMetrics},
		{licensingJSON, &p.Licensing},
		{flagsJSON, &p.ComplianceFlags},
	} {
		if len(blob.data) == 0 {
			continue
		}
		if err := json.Unmarshal(blob.data, blob.dst); err != nil {
			return nil, fmt.Errorf("unmarshal provenance column: %w", err)
		}
	}
	return &p, nil
}
