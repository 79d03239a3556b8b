package domain

import (
	"time"

	"github.com/google/uuid"
)

type ModelState string

const (
	ModelStateLive     ModelState = "LIVE"
	ModelStateArchived ModelState = "ARCHIVED"
)

// Model is the registry entry a family of versions hangs off.
// Models are never deleted, only archived.
type Model struct {
	ID               uuid.UUID         `json:"id"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Description      string            `json:"description"`
	State            ModelState        `json:"state"`
	CurrentVersionID *uuid.UUID        `json:"current_version_id"`
	QualityScore     *float64          `json:"quality_score"`
	Labels           map[string]string `json:"labels"`
}

type VersionStatus string

const (
	VersionStatusBuilding   VersionStatus = "BUILDING"
	VersionStatusEvaluating VersionStatus = "EVALUATING"
	VersionStatusReady      VersionStatus = "READY"
	VersionStatusPublished  VersionStatus = "PUBLISHED"
	VersionStatusDeprecated VersionStatus = "DEPRECATED"
	VersionStatusArchived   VersionStatus = "ARCHIVED"
	VersionStatusFailed     VersionStatus = "FAILED"
)

var statusTransitions = map[VersionStatus][]VersionStatus{
	VersionStatusBuilding:   {VersionStatusEvaluating, VersionStatusFailed},
	VersionStatusEvaluating: {VersionStatusReady, VersionStatusFailed},
	VersionStatusReady:      {VersionStatusPublished},
	VersionStatusPublished:  {VersionStatusDeprecated},
	VersionStatusDeprecated: {VersionStatusArchived},
	// FAILED and ARCHIVED are terminal.
}

// CanTransition reports whether the version lifecycle permits from -> to.
func CanTransition(from, to VersionStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ModelArtifacts describes where the binary artifact lives; the registry
// stores paths and checksums, never the bytes themselves.
type ModelArtifacts struct {
	ModelPath string `json:"model_path"`
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
	Format    string `json:"format"`
	Framework string `json:"framework"`
}

// PerformanceProfile holds the measured serving characteristics attached to
// a version once its evaluation run has produced them.
type PerformanceProfile struct {
	LatencyP50Ms  *float64 `json:"latency_p50_ms"`
	ThroughputRPS *float64 `json:"throughput_rps"`
}

type ModelVersion struct {
	ID            uuid.UUID          `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	ModelID       uuid.UUID          `json:"model_id"`
	Version       string             `json:"version"`
	Status        VersionStatus      `json:"status"`
	Artifacts     ModelArtifacts     `json:"artifacts"`
	Performance   PerformanceProfile `json:"performance"`
	LineageNodeID uuid.UUID          `json:"lineage_node_id"`
	QualityScore  *float64           `json:"quality_score"`
	FailureReason string             `json:"failure_reason,omitempty"`
	CreatedBy     string             `json:"created_by"`
}

func IsPublished(v *ModelVersion) bool {
	return v.Status == VersionStatusPublished
}

// IsMutable reports whether fields other than status may still change.
// Once published a version is frozen except for deprecation.
func IsMutable(v *ModelVersion) bool {
	switch v.Status {
	case VersionStatusPublished, VersionStatusDeprecated, VersionStatusArchived, VersionStatusFailed:
		return false
	}
	return true
}
