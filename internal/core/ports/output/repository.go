package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
)

type ModelListFilter struct {
	State  string
	Search string
	Limit  int
	Offset int
}

type ModelRepository interface {
	Create(ctx context.Context, model *domain.Model) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Model, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Model, error)
	Update(ctx context.Context, model *domain.Model) error
	UpdateQualityScore(ctx context.Context, id uuid.UUID, score float64) error
	List(ctx context.Context, filter ModelListFilter) ([]*domain.Model, int, error)
}

type ModelVersionRepository interface {
	// CreateWithLineage persists the version together with its lineage
	// nodes and edges in one transaction. Partial lineage is never
	// observable: either everything lands or nothing does.
	CreateWithLineage(ctx context.Context, version *domain.ModelVersion, nodes []*domain.LineageNode, edges []*domain.LineageEdge) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ModelVersion, error)
	GetByModelAndVersion(ctx context.Context, modelID uuid.UUID, version string) (*domain.ModelVersion, error)
	ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error)
	ListPublished(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error)
	// UpdateStatus is a conditional write: it succeeds only when the stored
	// status still equals from, otherwise domain.ErrInvalidStatusTransition.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.VersionStatus, failureReason string) error
	UpdateQualityScore(ctx context.Context, id uuid.UUID, score float64) error
	UpdatePerformance(ctx context.Context, id uuid.UUID, perf domain.PerformanceProfile) error
	// ListStalledInEvaluation returns versions still EVALUATING whose last
	// update predates cutoff, candidates for the timeout sweep.
	ListStalledInEvaluation(ctx context.Context, cutoff time.Time) ([]*domain.ModelVersion, error)
}

type LineageRepository interface {
	// LoadGraph materializes the full arena. Reads operate on the
	// last-committed snapshot and never block writers.
	LoadGraph(ctx context.Context) (*domain.LineageGraph, error)
	AddNode(ctx context.Context, node *domain.LineageNode) error
	AddEdge(ctx context.Context, edge *domain.LineageEdge) error
	GetNode(ctx context.Context, id uuid.UUID) (*domain.LineageNode, error)
}

type ProvenanceRepository interface {
	Create(ctx context.Context, p *domain.DatasetProvenance) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DatasetProvenance, error)
	Update(ctx context.Context, p *domain.DatasetProvenance) error
	// AppendAudit is append-only; no update or delete exists for entries.
	AppendAudit(ctx context.Context, datasetID uuid.UUID, entry domain.AuditEntry) error
}

type EvaluationRepository interface {
	// Upsert stores a result keyed on (version, benchmark); an existing row
	// is replaced only when the incoming evaluatedAt is not older
	// (last-writer-wins), otherwise domain.ErrStaleResult.
	Upsert(ctx context.Context, result *domain.EvaluationResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationResult, error)
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*domain.EvaluationResult, error)
	// ListCompletedByBenchmark returns COMPLETED results ordered by score
	// descending, ties broken by earliest evaluatedAt.
	ListCompletedByBenchmark(ctx context.Context, benchmark string, limit int) ([]*domain.EvaluationResult, error)
	// DeleteUnfinishedByVersion drops PENDING/RUNNING partials, used when an
	// evaluation job times out (all-or-nothing per job).
	DeleteUnfinishedByVersion(ctx context.Context, versionID uuid.UUID) (int, error)
}
