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

type lineageRepo struct {
	pool *pgxpool.Pool
}

func NewLineageRepository(pool *pgxpool.Pool) ports.LineageRepository {
	return &lineageRepo{pool: pool}
}

// LoadGraph reads the whole arena in one transaction so the snapshot is
// consistent: no half-written version lineage is ever visible.
func (r *lineageRepo) LoadGraph(ctx context.Context) (*domain.LineageGraph, error) {
	var graph *domain.LineageGraph
	err := withRetry(ctx, func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
		if err != nil {
			return fmt.Errorf("begin graph read: %w", err)
		}
		defer tx.Rollback(ctx)

		g := domain.NewLineageGraph()

		rows, err := tx.Query(ctx, `
			SELECT id, type, name, version, metadata, created_by, created_at
			FROM lineage_node ORDER BY created_at`)
		if err != nil {
			return fmt.Errorf("load lineage nodes: %w", err)
		}
		for rows.Next() {
			node, err := scanNode(rows)
			if err != nil {
				rows.Close()
				return err
			}
			if err := g.AddNode(node); err != nil {
				rows.Close()
				return err
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		rows, err = tx.Query(ctx, `
			SELECT id, from_id, to_id, relation, metadata, created_at
			FROM lineage_edge ORDER BY created_at`)
		if err != nil {
			return fmt.Errorf("load lineage edges: %w", err)
		}
		for rows.Next() {
			edge, err := scanEdge(rows)
			if err != nil {
				rows.Close()
				return err
			}
			if err := g.AddEdge(edge); err != nil {
				rows.Close()
				return err
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		graph = g
		return tx.Commit(ctx)
	})
	return graph, err
}

func (r *lineageRepo) AddNode(ctx context.Context, node *domain.LineageNode) error {
	return withRetry(ctx, func() error {
		return insertNode(ctx, r.pool, node)
	})
}

func (r *lineageRepo) AddEdge(ctx context.Context, edge *domain.LineageEdge) error {
	return withRetry(ctx, func() error {
		return insertEdge(ctx, r.pool, edge)
	})
}

func (r *lineageRepo) GetNode(ctx context.Context, id uuid.UUID) (*domain.LineageNode, error) {
	query := `
		SELECT id, type, name, version, metadata, created_by, created_at
		FROM lineage_node WHERE id = $1`

	var node *domain.LineageNode
	err := withRetry(ctx, func() error {
		n, err := scanNode(r.pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrLineageNodeNotFound
			}
			return fmt.Errorf("get lineage node: %w", err)
		}
		node = n
		return nil
	})
	return node, err
}

// execer lets the inserts run against a pool or an open transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertNode(ctx context.Context, db execer, node *domain.LineageNode) error {
	metaJSON, err := domain.MarshalNodeMetadata(node.Metadata)
	if err != nil {
		return fmt.Errorf("marshal node metadata: %w", err)
	}

	query := `
		INSERT INTO lineage_node (id, type, name, version, metadata, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err = db.Exec(ctx, query,
		node.ID, string(node.Type), node.Name, node.Version,
		metaJSON, node.CreatedBy, node.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateNode
		}
		return fmt.Errorf("insert lineage node: %w", err)
	}
	return nil
}

func insertEdge(ctx context.Context, db execer, edge *domain.LineageEdge) error {
	metaJSON, err := json.Marshal(edge.Metadata)
	if err != nil {
		return fmt.Errorf("marshal edge metadata: %w", err)
	}

	query := `
		INSERT INTO lineage_edge (id, from_id, to_id, relation, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	_, err = db.Exec(ctx, query,
		edge.ID, edge.FromID, edge.ToID, string(edge.Relation),
		metaJSON, edge.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrLineageNodeNotFound
		}
		return fmt.Errorf("insert lineage edge: %w", err)
	}
	return nil
}

func scanNode(row pgx.Row) (*domain.LineageNode, error) {
	var (
		n        domain.LineageNode
		nodeType string
		metaJSON []byte
	)
	if err := row.Scan(&n.ID, &nodeType, &n.Name, &n.Version, &metaJSON, &n.CreatedBy, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = domain.NodeType(nodeType)
	meta, err := domain.UnmarshalNodeMetadata(n.Type, metaJSON)
	if err != nil {
		return nil, err
	}
	n.Metadata = meta
	return &n, nil
}

func scanEdge(row pgx.Row) (*domain.LineageEdge, error) {
	var (
		e        domain.LineageEdge
		relation string
		metaJSON []byte
	)
	if err := row.Scan(&e.ID, &e.FromID, &e.ToID, &relation, &metaJSON, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Relation = domain.RelationType(relation)
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal edge metadata: %w", err)
		}
	}
	return &e, nil
}
