package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

// MockModelRepo is a mock of ModelRepository.
type MockModelRepo struct {
	mock.Mock
}

func (m *MockModelRepo) Create(ctx context.Context, model *domain.Model) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Model, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}

func (m *MockModelRepo) GetBySlug(ctx context.Context, slug string) (*domain.Model, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}

func (m *MockModelRepo) Update(ctx context.Context, model *domain.Model) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelRepo) UpdateQualityScore(ctx context.Context, id uuid.UUID, score float64) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

func (m *MockModelRepo) List(ctx context.Context, filter ports.ModelListFilter) ([]*domain.Model, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Model), args.Int(1), args.Error(2)
}

// MockVersionRepo is a mock of ModelVersionRepository.
type MockVersionRepo struct {
	mock.Mock
}

func (m *MockVersionRepo) CreateWithLineage(ctx context.Context, version *domain.ModelVersion, nodes []*domain.LineageNode, edges []*domain.LineageEdge) error {
	args := m.Called(ctx, version, nodes, edges)
	return args.Error(0)
}

func (m *MockVersionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ModelVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelVersion), args.Error(1)
}

func (m *MockVersionRepo) GetByModelAndVersion(ctx context.Context, modelID uuid.UUID, version string) (*domain.ModelVersion, error) {
	args := m.Called(ctx, modelID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelVersion), args.Error(1)
}

func (m *MockVersionRepo) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	args := m.Called(ctx, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ModelVersion), args.Error(1)
}

func (m *MockVersionRepo) ListPublished(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	args := m.Called(ctx, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ModelVersion), args.Error(1)
}

func (m *MockVersionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.VersionStatus, failureReason string) error {
	args := m.Called(ctx, id, from, to, failureReason)
	return args.Error(0)
}

func (m *MockVersionRepo) UpdateQualityScore(ctx context.Context, id uuid.UUID, score float64) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

func (m *MockVersionRepo) UpdatePerformance(ctx context.Context, id uuid.UUID, perf domain.PerformanceProfile) error {
	args := m.Called(ctx, id, perf)
	return args.Error(0)
}

func (m *MockVersionRepo) ListStalledInEvaluation(ctx context.Context, cutoff time.Time) ([]*domain.ModelVersion, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ModelVersion), args.Error(1)
}

// MockLineageRepo is a mock of LineageRepository.
type MockLineageRepo struct {
	mock.Mock
}

func (m *MockLineageRepo) LoadGraph(ctx context.Context) (*domain.LineageGraph, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineageGraph), args.Error(1)
}

func (m *MockLineageRepo) AddNode(ctx context.Context, node *domain.LineageNode) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockLineageRepo) AddEdge(ctx context.Context, edge *domain.LineageEdge) error {
	args := m.Called(ctx, edge)
	return args.Error(0)
}

func (m *MockLineageRepo) GetNode(ctx context.Context, id uuid.UUID) (*domain.LineageNode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineageNode), args.Error(1)
}

// MockProvenanceRepo is a mock of ProvenanceRepository.
type MockProvenanceRepo struct {
	mock.Mock
}

func (m *MockProvenanceRepo) Create(ctx context.Context, p *domain.DatasetProvenance) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProvenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DatasetProvenance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DatasetProvenance), args.Error(1)
}

func (m *MockProvenanceRepo) Update(ctx context.Context, p *domain.DatasetProvenance) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProvenanceRepo) AppendAudit(ctx context.Context, datasetID uuid.UUID, entry domain.AuditEntry) error {
	args := m.Called(ctx, datasetID, entry)
	return args.Error(0)
}

// MockEvaluationRepo is a mock of EvaluationRepository.
type MockEvaluationRepo struct {
	mock.Mock
}

func (m *MockEvaluationRepo) Upsert(ctx context.Context, result *domain.EvaluationResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockEvaluationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationResult), args.Error(1)
}

func (m *MockEvaluationRepo) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*domain.EvaluationResult, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EvaluationResult), args.Error(1)
}

func (m *MockEvaluationRepo) ListCompletedByBenchmark(ctx context.Context, benchmark string, limit int) ([]*domain.EvaluationResult, error) {
	args := m.Called(ctx, benchmark, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EvaluationResult), args.Error(1)
}

func (m *MockEvaluationRepo) DeleteUnfinishedByVersion(ctx context.Context, versionID uuid.UUID) (int, error) {
	args := m.Called(ctx, versionID)
	return args.Int(0), args.Error(1)
}

// MockPIIScanner is a mock of PIIScanner.
type MockPIIScanner struct {
	mock.Mock
}

func (m *MockPIIScanner) Scan(ctx context.Context, samples []string) (*ports.PIIScanResult, error) {
	args := m.Called(ctx, samples)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.PIIScanResult), args.Error(1)
}

// MockEvaluationCluster is a mock of EvaluationCluster.
type MockEvaluationCluster struct {
	mock.Mock
}

func (m *MockEvaluationCluster) Dispatch(ctx context.Context, versionID uuid.UUID, benchmarks []string, deadline time.Duration) (string, error) {
	args := m.Called(ctx, versionID, benchmarks, deadline)
	return args.String(0), args.Error(1)
}

// MockObjectStore is a mock of ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Stat(ctx context.Context, path string) (*ports.ObjectInfo, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ObjectInfo), args.Error(1)
}
