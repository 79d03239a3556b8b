package dto

import (
	"time"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
	"model-lineage-registry/internal/core/services"
)

type LineageNodeResponse struct {
	ID        uuid.UUID           `json:"id"`
	Type      string              `json:"type"`
	Name      string              `json:"name"`
	Version   string              `json:"version,omitempty"`
	Metadata  domain.NodeMetadata `json:"metadata,omitempty"`
	CreatedBy string              `json:"created_by"`
	CreatedAt string              `json:"created_at"`
}

type LineageEdgeResponse struct {
	ID        uuid.UUID         `json:"id"`
	FromID    uuid.UUID         `json:"from_id"`
	ToID      uuid.UUID         `json:"to_id"`
	Relation  string            `json:"relation"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt string            `json:"created_at"`
}

type VersionLineageResponse struct {
	Node      LineageNodeResponse   `json:"node"`
	Ancestors []LineageNodeResponse `json:"ancestors"`
	Edges     []LineageEdgeResponse `json:"edges"`
}

type PathResponse struct {
	Path []LineageNodeResponse `json:"path"`
}

func ToLineageNodeResponse(n *domain.LineageNode) LineageNodeResponse {
	return LineageNodeResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Name:      n.Name,
		Version:   n.Version,
		Metadata:  n.Metadata,
		CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func ToLineageNodeResponses(nodes []*domain.LineageNode) []LineageNodeResponse {
	out := make([]LineageNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ToLineageNodeResponse(n))
	}
	return out
}

func ToLineageEdgeResponses(edges []*domain.LineageEdge) []LineageEdgeResponse {
	out := make([]LineageEdgeResponse, 0, len(edges))
	for _, e := range edges {
		out = append(out, LineageEdgeResponse{
			ID:        e.ID,
			FromID:    e.FromID,
			ToID:      e.ToID,
			Relation:  string(e.Relation),
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func ToVersionLineageResponse(l *services.VersionLineage) VersionLineageResponse {
	return VersionLineageResponse{
		Node:      ToLineageNodeResponse(l.Node),
		Ancestors: ToLineageNodeResponses(l.Ancestors),
		Edges:     ToLineageEdgeResponses(l.Edges),
	}
}
