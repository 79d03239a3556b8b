package dto

import (
	"time"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
	"model-lineage-registry/internal/core/services"
)

type ArtifactsDTO struct {
	ModelPath string `json:"model_path"`
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
	Format    string `json:"format"`
	Framework string `json:"framework"`
}

type BaseModelRefDTO struct {
	Name           string `json:"name" binding:"required"`
	Provider       string `json:"provider"`
	ParameterCount int64  `json:"parameter_count"`
	License        string `json:"license"`
}

type TrainingRunDTO struct {
	JobID           string            `json:"job_id"`
	Epochs          int               `json:"epochs"`
	Hyperparameters map[string]string `json:"hyperparameters"`
}

type CreateVersionRequest struct {
	Version              string            `json:"version" binding:"required"`
	Artifacts            ArtifactsDTO      `json:"artifacts"`
	BaseModels           []BaseModelRefDTO `json:"base_models"`
	DatasetIDs           []uuid.UUID       `json:"dataset_ids"`
	DerivedFromVersionID *uuid.UUID        `json:"derived_from_version_id"`
	MergedFromVersionIDs []uuid.UUID       `json:"merged_from_version_ids"`
	TrainingRun          *TrainingRunDTO   `json:"training_run"`
	CreatedBy            string            `json:"created_by"`
}

type TransitionStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	FailureReason string `json:"failure_reason"`
}

type VersionResponse struct {
	ID            uuid.UUID    `json:"id"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
	ModelID       uuid.UUID    `json:"model_id"`
	Version       string       `json:"version"`
	Status        string       `json:"status"`
	Artifacts     ArtifactsDTO `json:"artifacts"`
	LatencyP50Ms  *float64     `json:"latency_p50_ms,omitempty"`
	ThroughputRPS *float64     `json:"throughput_rps,omitempty"`
	LineageNodeID uuid.UUID    `json:"lineage_node_id"`
	QualityScore  *float64     `json:"quality_score"`
	FailureReason string       `json:"failure_reason,omitempty"`
	CreatedBy     string       `json:"created_by"`
}

type ListVersionsResponse struct {
	Items []VersionResponse `json:"items"`
	Total int               `json:"total"`
}

func (r CreateVersionRequest) ToSpec() services.VersionSpec {
	spec := services.VersionSpec{
		Version: r.Version,
		Artifacts: domain.ModelArtifacts{
			ModelPath: r.Artifacts.ModelPath,
			Checksum:  r.Artifacts.Checksum,
			SizeBytes: r.Artifacts.SizeBytes,
			Format:    r.Artifacts.Format,
			Framework: r.Artifacts.Framework,
		},
		DatasetIDs:           r.DatasetIDs,
		DerivedFromVersionID: r.DerivedFromVersionID,
		MergedFromVersionIDs: r.MergedFromVersionIDs,
		CreatedBy:            r.CreatedBy,
	}
	for _, base := range r.BaseModels {
		spec.BaseModels = append(spec.BaseModels, services.BaseModelRef{
			Name:           base.Name,
			Provider:       base.Provider,
			ParameterCount: base.ParameterCount,
			License:        base.License,
		})
	}
	if r.TrainingRun != nil {
		spec.TrainingRun = &services.TrainingRunSpec{
			JobID:           r.TrainingRun.JobID,
			Epochs:          r.TrainingRun.Epochs,
			Hyperparameters: r.TrainingRun.Hyperparameters,
		}
	}
	return spec
}

func ToVersionResponse(v *domain.ModelVersion) VersionResponse {
	return VersionResponse{
		ID:        v.ID,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
		UpdatedAt: v.UpdatedAt.Format(time.RFC3339),
		ModelID:   v.ModelID,
		Version:   v.Version,
		Status:    string(v.Status),
		Artifacts: ArtifactsDTO{
			ModelPath: v.Artifacts.ModelPath,
			Checksum:  v.Artifacts.Checksum,
			SizeBytes: v.Artifacts.SizeBytes,
			Format:    v.Artifacts.Format,
			Framework: v.Artifacts.Framework,
		},
		LatencyP50Ms:  v.Performance.LatencyP50Ms,
		ThroughputRPS: v.Performance.ThroughputRPS,
		LineageNodeID: v.LineageNodeID,
		QualityScore:  v.QualityScore,
		FailureReason: v.FailureReason,
		CreatedBy:     v.CreatedBy,
	}
}
