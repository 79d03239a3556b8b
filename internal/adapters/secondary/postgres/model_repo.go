package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

type modelRepo struct {
	pool *pgxpool.Pool
}

func NewModelRepository(pool *pgxpool.Pool) ports.ModelRepository {
	return &modelRepo{pool: pool}
}

const modelColumns = `
	id, created_at, updated_at, name, slug, description, state,
	current_version_id, quality_score, labels
`

func (r *modelRepo) Create(ctx context.Context, model *domain.Model) error {
	labelsJSON, err := json.Marshal(model.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		INSERT INTO model
			(id, created_at, updated_at, name, slug, description, state,
			 current_version_id, quality_score, labels)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	return withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			model.ID, model.CreatedAt, model.UpdatedAt,
			model.Name, model.Slug, model.Description, string(model.State),
			model.CurrentVersionID, model.QualityScore, labelsJSON,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domain.ErrModelSlugConflict
			}
			return fmt.Errorf("create model: %w", err)
		}
		return nil
	})
}

func (r *modelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Model, error) {
	query := `SELECT` + modelColumns + `FROM model WHERE id = $1`

	var model *domain.Model
	err := withRetry(ctx, func() error {
		m, err := scanModel(r.pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrModelNotFound
			}
			return fmt.Errorf("get model by id: %w", err)
		}
		model = m
		return nil
	})
	return model, err
}

func (r *modelRepo) GetBySlug(ctx context.Context, slug string) (*domain.Model, error) {
	query := `SELECT` + modelColumns + `FROM model WHERE slug = $1`

	var model *domain.Model
	err := withRetry(ctx, func() error {
		m, err := scanModel(r.pool.QueryRow(ctx, query, slug))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrModelNotFound
			}
			return fmt.Errorf("get model by slug: %w", err)
		}
		model = m
		return nil
	})
	return model, err
}

func (r *modelRepo) Update(ctx context.Context, model *domain.Model) error {
	labelsJSON, err := json.Marshal(model.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		UPDATE model
		SET name=$1, description=$2, state=$3, current_version_id=$4,
			quality_score=$5, labels=$6, updated_at=NOW()
		WHERE id=$7
	`
	return withRetry(ctx, func() error {
		result, err := r.pool.Exec(ctx, query,
			model.Name, model.Description, string(model.State),
			model.CurrentVersionID, model.QualityScore, labelsJSON, model.ID,
		)
		if err != nil {
			return fmt.Errorf("update model: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrModelNotFound
		}
		return nil
	})
}

func (r *modelRepo) UpdateQualityScore(ctx context.Context, id uuid.UUID, score float64) error {
	query := `UPDATE model SET quality_score=$1, updated_at=NOW() WHERE id=$2`
	return withRetry(ctx, func() error {
		result, err := r.pool.Exec(ctx, query, score, id)
		if err != nil {
			return fmt.Errorf("update model quality score: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrModelNotFound
		}
		return nil
	})
}

func (r *modelRepo) List(ctx context.Context, filter ports.ModelListFilter) ([]*domain.Model, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	n := 0

	if filter.State != "" {
		n++
		conditions = append(conditions, fmt.Sprintf("state = $%d", n))
		args = append(args, filter.State)
	}
	if filter.Search != "" {
		n++
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR slug ILIKE $%d)", n, n))
		args = append(args, "%"+filter.Search+"%")
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM model WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count models: %w", err)
	}

	query := fmt.Sprintf(`SELECT%s FROM model WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		modelColumns, where, n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []*domain.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan model: %w", err)
		}
		models = append(models, m)
	}
	return models, total, rows.Err()
}

func scanModel(row pgx.Row) (*domain.Model, error) {
	var (
		m          domain.Model
		state      string
		labelsJSON []byte
	)
	err := row.Scan(
		&m.ID, &m.CreatedAt, &m.UpdatedAt, &m.Name, &m.Slug, &m.Description,
		&state, &m.CurrentVersionID, &m.QualityScore, &labelsJSON,
	)
	if err != nil {
		return nil, err
	}
	m.State = domain.ModelState(state)
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &m.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	if m.Labels == nil {
		m.Labels = make(map[string]string)
	}
	return &m, nil
}
