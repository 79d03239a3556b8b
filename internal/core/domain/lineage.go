package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NodeType string

const (
	NodeTypeBaseModel    NodeType = "base_model"
	NodeTypeDataset      NodeType = "dataset"
	NodeTypeTrainingRun  NodeType = "training_run"
	NodeTypeModelVersion NodeType = "model_version"
	NodeTypeEvaluation   NodeType = "evaluation"
	NodeTypeDeployment   NodeType = "deployment"
)

func ValidateNodeType(t NodeType) error {
	switch t {
	case NodeTypeBaseModel, NodeTypeDataset, NodeTypeTrainingRun,
		NodeTypeModelVersion, NodeTypeEvaluation, NodeTypeDeployment:
		return nil
	}
	return ErrInvalidNodeType
}

type RelationType string

const (
	RelationDerivedFrom RelationType = "derived_from"
	RelationTrainedOn   RelationType = "trained_on"
	RelationEvaluatedBy RelationType = "evaluated_by"
	RelationDeployedAs  RelationType = "deployed_as"
	RelationMergedFrom  RelationType = "merged_from"
)

func ValidateRelationType(t RelationType) error {
	switch t {
	case RelationDerivedFrom, RelationTrainedOn, RelationEvaluatedBy,
		RelationDeployedAs, RelationMergedFrom:
		return nil
	}
	return ErrInvalidRelationType
}

// NodeMetadata is a closed set of per-node-type payloads, so traversal code
// can switch exhaustively instead of probing an untyped map.
type NodeMetadata interface {
	nodeMetadata()
}

type BaseModelMeta struct {
	Provider       string `json:"provider"`
	ParameterCount int64  `json:"parameter_count"`
	License        string `json:"license"`
}

// DatasetMeta is a weak reference to a provenance record: the id plus a
// cached name/version snapshot, never the record itself.
type DatasetMeta struct {
	DatasetID   uuid.UUID `json:"dataset_id"`
	Version     string    `json:"version"`
	SampleCount int64     `json:"sample_count"`
}

type TrainingRunMeta struct {
	JobID           string            `json:"job_id"`
	Epochs          int               `json:"epochs"`
	Hyperparameters map[string]string `json:"hyperparameters"`
}

type ModelVersionMeta struct {
	ModelID uuid.UUID `json:"model_id"`
	Version string    `json:"version"`
}

type EvaluationMeta struct {
	Benchmark    string  `json:"benchmark"`
	OverallScore float64 `json:"overall_score"`
}

type DeploymentMeta struct {
	Environment string `json:"environment"`
	Endpoint    string `json:"endpoint"`
}

func (BaseModelMeta) nodeMetadata()    {}
func (DatasetMeta) nodeMetadata()      {}
func (TrainingRunMeta) nodeMetadata()  {}
func (ModelVersionMeta) nodeMetadata() {}
func (EvaluationMeta) nodeMetadata()   {}
func (DeploymentMeta) nodeMetadata()   {}

// LineageNode is a vertex in the lineage DAG. Nodes are never deleted; an
// orphaned node stays around for audit.
type LineageNode struct {
	ID        uuid.UUID    `json:"id"`
	Type      NodeType     `json:"type"`
	Name      string       `json:"name"`
	Version   string       `json:"version,omitempty"`
	Metadata  NodeMetadata `json:"metadata,omitempty"`
	CreatedBy string       `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
}

type LineageEdge struct {
	ID        uuid.UUID         `json:"id"`
	FromID    uuid.UUID         `json:"from_id"`
	ToID      uuid.UUID         `json:"to_id"`
	Relation  RelationType      `json:"relation"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// MarshalNodeMetadata serializes a metadata variant for storage.
func MarshalNodeMetadata(meta NodeMetadata) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(meta)
}

// UnmarshalNodeMetadata decodes stored metadata into the variant matching
// the node type.
func UnmarshalNodeMetadata(t NodeType, data []byte) (NodeMetadata, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var (
		meta NodeMetadata
		err  error
	)
	switch t {
	case NodeTypeBaseModel:
		var m BaseModelMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case NodeTypeDataset:
		var m DatasetMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case NodeTypeTrainingRun:
		var m TrainingRunMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case NodeTypeModelVersion:
		var m ModelVersionMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case NodeTypeEvaluation:
		var m EvaluationMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case NodeTypeDeployment:
		var m DeploymentMeta
		err = json.Unmarshal(data, &m)
		meta = m
	default:
		return nil, ErrInvalidNodeType
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", t, err)
	}
	return meta, nil
}
