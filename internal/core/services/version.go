package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

type BaseModelRef struct {
	Name           string
	Provider       string
	ParameterCount int64
	License        string
}

type TrainingRunSpec struct {
	JobID           string
	Epochs          int
	Hyperparameters map[string]string
}

type VersionSpec struct {
	Version              string
	Artifacts            domain.ModelArtifacts
	BaseModels           []BaseModelRef
	DatasetIDs           []uuid.UUID
	DerivedFromVersionID *uuid.UUID
	MergedFromVersionIDs []uuid.UUID
	TrainingRun          *TrainingRunSpec
	CreatedBy            string
}

// VersionPublishPolicy gates publishing on dataset compliance when enabled.
type VersionPublishPolicy struct {
	RequireCompliant bool
	Standards        []string
}

// VersionService owns ModelVersion records and their lifecycle. Writes for
// a given model are serialized through a per-model mutex so the strictly
// increasing published-semver invariant holds under concurrency.
type VersionService struct {
	repo           ports.ModelVersionRepository
	modelRepo      ports.ModelRepository
	provenanceRepo ports.ProvenanceRepository
	lineage        *LineageService
	objectStore    ports.ObjectStore
	publishPolicy  VersionPublishPolicy

	locks sync.Map // modelID -> *sync.Mutex
}

func NewVersionService(
	repo ports.ModelVersionRepository,
	modelRepo ports.ModelRepository,
	provenanceRepo ports.ProvenanceRepository,
	lineage *LineageService,
	objectStore ports.ObjectStore,
	publishPolicy VersionPublishPolicy,
) *VersionService {
	return &VersionService{
		repo:           repo,
		modelRepo:      modelRepo,
		provenanceRepo: provenanceRepo,
		lineage:        lineage,
		objectStore:    objectStore,
		publishPolicy:  publishPolicy,
	}
}

func (s *VersionService) lockModel(modelID uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(modelID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create registers a new version and its lineage as one logical
// transaction. If any part of lineage registration fails, no version is
// created.
func (s *VersionService) Create(ctx context.Context, modelID uuid.UUID, spec VersionSpec) (*domain.ModelVersion, error) {
	unlock := s.lockModel(modelID)
	defer unlock()

	model, err := s.modelRepo.GetByID(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if model.State == domain.ModelStateArchived {
		return nil, domain.ErrModelArchived
	}

	if err := domain.ValidateVersionString(spec.Version); err != nil {
		return nil, err
	}
	// A reused version string is a conflict regardless of how it orders
	// against the published history, so the duplicate lookup runs first.
	if _, err := s.repo.GetByModelAndVersion(ctx, modelID, spec.Version); err == nil {
		return nil, domain.ErrVersionConflict
	} else if !errors.Is(err, domain.ErrVersionNotFound) {
		return nil, err
	}
	if err := s.checkVersionIncrement(ctx, modelID, spec.Version, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.verifyArtifact(ctx, spec.Artifacts); err != nil {
		return nil, err
	}

	now := time.Now()
	version := &domain.ModelVersion{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		ModelID:   modelID,
		Version:   spec.Version,
		Status:    domain.VersionStatusBuilding,
		Artifacts: spec.Artifacts,
		CreatedBy: spec.CreatedBy,
	}

	nodes, edges, err := s.buildLineage(ctx, model, version, spec)
	if err != nil {
		return nil, err
	}
	if err := s.lineage.ValidateAddition(ctx, nodes, edges); err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithLineage(ctx, version, nodes, edges); err != nil {
		return nil, err
	}
	s.lineage.Invalidate()

	log.WithFields(log.Fields{
		"model_id": modelID,
		"version":  spec.Version,
	}).Info("model version created")

	return s.repo.GetByID(ctx, version.ID)
}

// buildLineage assembles the version node and its provenance edges.
// Every edge points into the fresh version node, so the addition cannot
// close a cycle; the graph validation still runs as a safety net.
func (s *VersionService) buildLineage(ctx context.Context, model *domain.Model, version *domain.ModelVersion, spec VersionSpec) ([]*domain.LineageNode, []*domain.LineageEdge, error) {
	now := time.Now()
	versionNode := &domain.LineageNode{
		ID:      uuid.New(),
		Type:    domain.NodeTypeModelVersion,
		Name:    model.Slug,
		Version: spec.Version,
		Metadata: domain.ModelVersionMeta{
			ModelID: model.ID,
			Version: spec.Version,
		},
		CreatedBy: spec.CreatedBy,
		CreatedAt: now,
	}
	version.LineageNodeID = versionNode.ID

	nodes := []*domain.LineageNode{versionNode}
	var edges []*domain.LineageEdge

	addEdge := func(fromID uuid.UUID, relation domain.RelationType) {
		edges = append(edges, &domain.LineageEdge{
			ID:        uuid.New(),
			FromID:    fromID,
			ToID:      versionNode.ID,
			Relation:  relation,
			CreatedAt: now,
		})
	}

	for _, base := range spec.BaseModels {
		node := &domain.LineageNode{
			ID:   uuid.New(),
			Type: domain.NodeTypeBaseModel,
			Name: base.Name,
			Metadata: domain.BaseModelMeta{
				Provider:       base.Provider,
				ParameterCount: base.ParameterCount,
				License:        base.License,
			},
			CreatedBy: spec.CreatedBy,
			CreatedAt: now,
		}
		nodes = append(nodes, node)
		addEdge(node.ID, domain.RelationDerivedFrom)
	}

	for _, datasetID := range spec.DatasetIDs {
		prov, err := s.provenanceRepo.GetByID(ctx, datasetID)
		if err != nil {
			return nil, nil, err
		}
		node := &domain.LineageNode{
			ID:      uuid.New(),
			Type:    domain.NodeTypeDataset,
			Name:    prov.Name,
			Version: prov.Version,
			Metadata: domain.DatasetMeta{
				DatasetID:   prov.ID,
				Version:     prov.Version,
				SampleCount: prov.QualityMetrics.SampleCount,
			},
			CreatedBy: spec.CreatedBy,
			CreatedAt: now,
		}
		nodes = append(nodes, node)
		addEdge(node.ID, domain.RelationTrainedOn)
	}

	if spec.TrainingRun != nil {
		node := &domain.LineageNode{
			ID:   uuid.New(),
			Type: domain.NodeTypeTrainingRun,
			Name: spec.TrainingRun.JobID,
			Metadata: domain.TrainingRunMeta{
				JobID:           spec.TrainingRun.JobID,
				Epochs:          spec.TrainingRun.Epochs,
				Hyperparameters: spec.TrainingRun.Hyperparameters,
			},
			CreatedBy: spec.CreatedBy,
			CreatedAt: now,
		}
		nodes = append(nodes, node)
		addEdge(node.ID, domain.RelationDerivedFrom)
	}

	if spec.DerivedFromVersionID != nil {
		prior, err := s.versionNodeOf(ctx, model.ID, *spec.DerivedFromVersionID)
		if err != nil {
			return nil, nil, err
		}
		addEdge(prior, domain.RelationDerivedFrom)
	}
	for _, mergedID := range spec.MergedFromVersionIDs {
		prior, err := s.versionNodeOf(ctx, model.ID, mergedID)
		if err != nil {
			return nil, nil, err
		}
		addEdge(prior, domain.RelationMergedFrom)
	}

	return nodes, edges, nil
}

func (s *VersionService) versionNodeOf(ctx context.Context, modelID, versionID uuid.UUID) (uuid.UUID, error) {
	prior, err := s.repo.GetByID(ctx, versionID)
	if err != nil {
		return uuid.Nil, err
	}
	if prior.ModelID != modelID {
		return uuid.Nil, domain.ErrVersionNotFound
	}
	return prior.LineageNodeID, nil
}

func (s *VersionService) verifyArtifact(ctx context.Context, artifacts domain.ModelArtifacts) error {
	if s.objectStore == nil || artifacts.ModelPath == "" {
		return nil
	}
	info, err := s.objectStore.Stat(ctx, artifacts.ModelPath)
	if err != nil {
		return fmt.Errorf("stat artifact %s: %w", artifacts.ModelPath, err)
	}
	if artifacts.Checksum != "" && info.Checksum != "" && artifacts.Checksum != info.Checksum {
		return domain.ErrChecksumMismatch
	}
	return nil
}

func (s *VersionService) checkVersionIncrement(ctx context.Context, modelID uuid.UUID, version string, exclude uuid.UUID) error {
	published, err := s.repo.ListPublished(ctx, modelID)
	if err != nil {
		return err
	}
	for _, p := range published {
		if p.ID == exclude {
			continue
		}
		c, err := domain.CompareVersions(version, p.Version)
		if err != nil {
			return err
		}
		if c <= 0 {
			return domain.ErrVersionNotIncremented
		}
	}
	return nil
}

// TransitionStatus advances a version through its lifecycle. The write is
// conditional on the observed status, so a concurrent transition loses
// cleanly instead of corrupting the state machine.
func (s *VersionService) TransitionStatus(ctx context.Context, versionID uuid.UUID, to domain.VersionStatus, failureReason string) (*domain.ModelVersion, error) {
	peek, err := s.repo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockModel(peek.ModelID)
	defer unlock()

	version, err := s.repo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(version.Status, to) {
		return nil, domain.ErrInvalidStatusTransition
	}

	if to == domain.VersionStatusPublished {
		if err := s.checkVersionIncrement(ctx, version.ModelID, version.Version, version.ID); err != nil {
			return nil, err
		}
		if err := s.checkPublishCompliance(ctx, version); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateStatus(ctx, versionID, version.Status, to, failureReason); err != nil {
		return nil, err
	}

	if to == domain.VersionStatusPublished {
		model, err := s.modelRepo.GetByID(ctx, version.ModelID)
		if err != nil {
			return nil, err
		}
		model.CurrentVersionID = &version.ID
		model.UpdatedAt = time.Now()
		if err := s.modelRepo.Update(ctx, model); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"version_id": versionID,
		"from":       version.Status,
		"to":         to,
	}).Info("version status transitioned")

	return s.repo.GetByID(ctx, versionID)
}

// checkPublishCompliance walks the version's lineage ancestors and runs the
// configured standards against every dataset it was trained on.
func (s *VersionService) checkPublishCompliance(ctx context.Context, version *domain.ModelVersion) error {
	if !s.publishPolicy.RequireCompliant || len(s.publishPolicy.Standards) == 0 {
		return nil
	}
	ancestors, err := s.lineage.Ancestors(ctx, version.LineageNodeID)
	if err != nil {
		return err
	}
	for _, node := range ancestors {
		meta, ok := node.Metadata.(domain.DatasetMeta)
		if !ok {
			continue
		}
		prov, err := s.provenanceRepo.GetByID(ctx, meta.DatasetID)
		if err != nil {
			return err
		}
		for _, standard := range s.publishPolicy.Standards {
			violations, _ := domain.CheckStandard(prov, standard)
			if len(violations) > 0 {
				log.WithFields(log.Fields{
					"version_id": version.ID,
					"dataset_id": prov.ID,
					"standard":   standard,
				}).Warn("publish blocked by compliance violation")
				return domain.ErrComplianceViolation
			}
		}
	}
	return nil
}

func (s *VersionService) Get(ctx context.Context, id uuid.UUID) (*domain.ModelVersion, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *VersionService) GetByModelAndVersion(ctx context.Context, modelID uuid.UUID, version string) (*domain.ModelVersion, error) {
	return s.repo.GetByModelAndVersion(ctx, modelID, version)
}

func (s *VersionService) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	if _, err := s.modelRepo.GetByID(ctx, modelID); err != nil {
		return nil, err
	}
	return s.repo.ListByModel(ctx, modelID)
}

// CompareTo orders two semantic version strings; see domain.CompareVersions.
func (s *VersionService) CompareTo(v1, v2 string) (int, error) {
	return domain.CompareVersions(v1, v2)
}
