package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
	"model-lineage-registry/internal/testutil"
)

type versionFixture struct {
	repo           *testutil.MockVersionRepo
	modelRepo      *testutil.MockModelRepo
	provenanceRepo *testutil.MockProvenanceRepo
	lineageRepo    *testutil.MockLineageRepo
	svc            *VersionService
}

func newVersionFixture(policy VersionPublishPolicy) *versionFixture {
	f := &versionFixture{
		repo:           new(testutil.MockVersionRepo),
		modelRepo:      new(testutil.MockModelRepo),
		provenanceRepo: new(testutil.MockProvenanceRepo),
		lineageRepo:    new(testutil.MockLineageRepo),
	}
	lineageSvc := NewLineageService(f.lineageRepo)
	f.svc = NewVersionService(f.repo, f.modelRepo, f.provenanceRepo, lineageSvc, nil, policy)
	return f
}

func TestVersionService_Create(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	modelID := uuid.New()
	datasetID := uuid.New()
	model := &domain.Model{ID: modelID, Slug: "support-bot", State: domain.ModelStateLive}

	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(model, nil)
	f.repo.On("ListPublished", mock.Anything, modelID).Return([]*domain.ModelVersion{}, nil)
	f.repo.On("GetByModelAndVersion", mock.Anything, modelID, "1.0.0").Return(nil, domain.ErrVersionNotFound)
	f.provenanceRepo.On("GetByID", mock.Anything, datasetID).Return(&domain.DatasetProvenance{
		ID: datasetID, Name: "support-chats", Version: "2",
		QualityMetrics: domain.DatasetQualityMetrics{SampleCount: 10000},
	}, nil)
	f.lineageRepo.On("LoadGraph", mock.Anything).Return(domain.NewLineageGraph(), nil)

	var capturedNodes []*domain.LineageNode
	var capturedEdges []*domain.LineageEdge
	f.repo.On("CreateWithLineage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedNodes = args.Get(2).([]*domain.LineageNode)
			capturedEdges = args.Get(3).([]*domain.LineageEdge)
		}).Return(nil)
	f.repo.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(&domain.ModelVersion{ModelID: modelID, Version: "1.0.0", Status: domain.VersionStatusBuilding}, nil)

	version, err := f.svc.Create(context.Background(), modelID, VersionSpec{
		Version:    "1.0.0",
		BaseModels: []BaseModelRef{{Name: "llama-3-8b", Provider: "meta", ParameterCount: 8_000_000_000}},
		DatasetIDs: []uuid.UUID{datasetID},
		TrainingRun: &TrainingRunSpec{
			JobID:  "run-41",
			Epochs: 3,
		},
		CreatedBy: "trainer@corp.example",
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.VersionStatusBuilding, version.Status)

	// version node + base model + dataset + training run
	assert.Len(t, capturedNodes, 4)
	// every provenance edge points into the version node
	assert.Len(t, capturedEdges, 3)
	versionNode := capturedNodes[0]
	assert.Equal(t, domain.NodeTypeModelVersion, versionNode.Type)
	for _, e := range capturedEdges {
		assert.Equal(t, versionNode.ID, e.ToID)
	}
}

func TestVersionService_Create_InvalidSemver(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).
		Return(&domain.Model{ID: modelID, State: domain.ModelStateLive}, nil)

	_, err := f.svc.Create(context.Background(), modelID, VersionSpec{Version: "v1"})
	assert.ErrorIs(t, err, domain.ErrInvalidSemver)
	f.repo.AssertNotCalled(t, "CreateWithLineage")
}

func TestVersionService_Create_NotIncremented(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).
		Return(&domain.Model{ID: modelID, State: domain.ModelStateLive}, nil)
	f.repo.On("GetByModelAndVersion", mock.Anything, modelID, "1.1.9").
		Return(nil, domain.ErrVersionNotFound)
	f.repo.On("ListPublished", mock.Anything, modelID).Return([]*domain.ModelVersion{
		{ID: uuid.New(), Version: "1.2.0", Status: domain.VersionStatusPublished},
	}, nil)

	_, err := f.svc.Create(context.Background(), modelID, VersionSpec{Version: "1.1.9"})
	assert.ErrorIs(t, err, domain.ErrVersionNotIncremented)
}

func TestVersionService_Create_DuplicateVersion(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).
		Return(&domain.Model{ID: modelID, State: domain.ModelStateLive}, nil)
	f.repo.On("GetByModelAndVersion", mock.Anything, modelID, "1.0.0").
		Return(&domain.ModelVersion{ModelID: modelID, Version: "1.0.0"}, nil)

	_, err := f.svc.Create(context.Background(), modelID, VersionSpec{Version: "1.0.0"})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

// Recreating a version string that already exists, even one that is
// published and so would also fail the increment check, reports a
// conflict rather than a non-increment error.
func TestVersionService_Create_RecreatePublishedVersionConflicts(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	modelID := uuid.New()
	existing := &domain.ModelVersion{
		ID: uuid.New(), ModelID: modelID, Version: "1.0.0",
		Status: domain.VersionStatusPublished,
	}
	f.modelRepo.On("GetByID", mock.Anything, modelID).
		Return(&domain.Model{ID: modelID, State: domain.ModelStateLive}, nil)
	f.repo.On("GetByModelAndVersion", mock.Anything, modelID, "1.0.0").Return(existing, nil)
	f.repo.On("ListPublished", mock.Anything, modelID).
		Return([]*domain.ModelVersion{existing}, nil)

	_, err := f.svc.Create(context.Background(), modelID, VersionSpec{Version: "1.0.0"})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.NotErrorIs(t, err, domain.ErrVersionNotIncremented)
}

func TestVersionService_Create_ArchivedModel(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).
		Return(&domain.Model{ID: modelID, State: domain.ModelStateArchived}, nil)

	_, err := f.svc.Create(context.Background(), modelID, VersionSpec{Version: "1.0.0"})
	assert.ErrorIs(t, err, domain.ErrModelArchived)
}

func TestVersionService_Create_ChecksumMismatch(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})
	store := new(testutil.MockObjectStore)
	f.svc.objectStore = store

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).
		Return(&domain.Model{ID: modelID, State: domain.ModelStateLive}, nil)
	f.repo.On("ListPublished", mock.Anything, modelID).Return([]*domain.ModelVersion{}, nil)
	f.repo.On("GetByModelAndVersion", mock.Anything, modelID, "1.0.0").Return(nil, domain.ErrVersionNotFound)
	store.On("Stat", mock.Anything, "s3://models/support-bot/1.0.0").
		Return(&ports.ObjectInfo{Checksum: "sha256:other"}, nil)

	_, err := f.svc.Create(context.Background(), modelID, VersionSpec{
		Version: "1.0.0",
		Artifacts: domain.ModelArtifacts{
			ModelPath: "s3://models/support-bot/1.0.0",
			Checksum:  "sha256:expected",
		},
	})
	assert.ErrorIs(t, err, domain.ErrChecksumMismatch)
}

func TestVersionService_TransitionStatus_Publish(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	modelID := uuid.New()
	versionID := uuid.New()
	version := &domain.ModelVersion{
		ID: versionID, ModelID: modelID, Version: "1.1.0",
		Status: domain.VersionStatusReady,
	}

	f.repo.On("GetByID", mock.Anything, versionID).Return(version, nil)
	f.repo.On("ListPublished", mock.Anything, modelID).Return([]*domain.ModelVersion{
		{ID: uuid.New(), Version: "1.0.0", Status: domain.VersionStatusPublished},
	}, nil)
	f.repo.On("UpdateStatus", mock.Anything, versionID,
		domain.VersionStatusReady, domain.VersionStatusPublished, "").Return(nil)
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.Model{ID: modelID}, nil)
	f.modelRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Model) bool {
		return m.CurrentVersionID != nil && *m.CurrentVersionID == versionID
	})).Return(nil)

	_, err := f.svc.TransitionStatus(context.Background(), versionID, domain.VersionStatusPublished, "")
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.modelRepo.AssertExpectations(t)
}

func TestVersionService_TransitionStatus_Invalid(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	versionID := uuid.New()
	f.repo.On("GetByID", mock.Anything, versionID).Return(&domain.ModelVersion{
		ID: versionID, ModelID: uuid.New(), Status: domain.VersionStatusBuilding,
	}, nil)

	_, err := f.svc.TransitionStatus(context.Background(), versionID, domain.VersionStatusPublished, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	f.repo.AssertNotCalled(t, "UpdateStatus")
}

func TestVersionService_TransitionStatus_PublishNotIncremented(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	modelID := uuid.New()
	versionID := uuid.New()
	f.repo.On("GetByID", mock.Anything, versionID).Return(&domain.ModelVersion{
		ID: versionID, ModelID: modelID, Version: "1.0.5",
		Status: domain.VersionStatusReady,
	}, nil)
	f.repo.On("ListPublished", mock.Anything, modelID).Return([]*domain.ModelVersion{
		{ID: uuid.New(), Version: "1.1.0", Status: domain.VersionStatusPublished},
	}, nil)

	_, err := f.svc.TransitionStatus(context.Background(), versionID, domain.VersionStatusPublished, "")
	assert.ErrorIs(t, err, domain.ErrVersionNotIncremented)
}

func TestVersionService_TransitionStatus_PublishBlockedByCompliance(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{
		RequireCompliant: true,
		Standards:        []string{domain.StandardGDPR},
	})

	modelID := uuid.New()
	versionID := uuid.New()
	datasetID := uuid.New()
	now := time.Now()

	versionNode := &domain.LineageNode{
		ID: uuid.New(), Type: domain.NodeTypeModelVersion, Name: "support-bot",
		CreatedAt: now,
	}
	datasetNode := &domain.LineageNode{
		ID: uuid.New(), Type: domain.NodeTypeDataset, Name: "support-chats",
		Metadata:  domain.DatasetMeta{DatasetID: datasetID},
		CreatedAt: now.Add(-time.Hour),
	}
	graph := domain.NewLineageGraph()
	assert.NoError(t, graph.AddNode(versionNode))
	assert.NoError(t, graph.AddNode(datasetNode))
	assert.NoError(t, graph.AddEdge(&domain.LineageEdge{
		ID: uuid.New(), FromID: datasetNode.ID, ToID: versionNode.ID,
		Relation: domain.RelationTrainedOn, CreatedAt: now,
	}))

	f.repo.On("GetByID", mock.Anything, versionID).Return(&domain.ModelVersion{
		ID: versionID, ModelID: modelID, Version: "1.0.0",
		Status: domain.VersionStatusReady, LineageNodeID: versionNode.ID,
	}, nil)
	f.repo.On("ListPublished", mock.Anything, modelID).Return([]*domain.ModelVersion{}, nil)
	f.lineageRepo.On("LoadGraph", mock.Anything).Return(graph, nil)
	// Detected PII with no redaction step: GDPR violation.
	f.provenanceRepo.On("GetByID", mock.Anything, datasetID).Return(&domain.DatasetProvenance{
		ID:              datasetID,
		ComplianceFlags: domain.ComplianceFlags{PIIDetected: true, ConsentObtained: true},
	}, nil)

	_, err := f.svc.TransitionStatus(context.Background(), versionID, domain.VersionStatusPublished, "")
	assert.ErrorIs(t, err, domain.ErrComplianceViolation)
	f.repo.AssertNotCalled(t, "UpdateStatus")
}

func TestVersionService_CompareTo(t *testing.T) {
	f := newVersionFixture(VersionPublishPolicy{})

	c, err := f.svc.CompareTo("1.2.0", "1.10.0")
	assert.NoError(t, err)
	assert.Equal(t, -1, c)
}
