package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

// LineageService fronts the lineage DAG. It keeps an in-memory arena as a
// read cache over the repository; mutations validate against a clone first
// so a rejected insertion leaves both store and cache untouched.
type LineageService struct {
	repo ports.LineageRepository

	mu    sync.RWMutex
	graph *domain.LineageGraph
}

func NewLineageService(repo ports.LineageRepository) *LineageService {
	return &LineageService{repo: repo}
}

func (s *LineageService) snapshot(ctx context.Context) (*domain.LineageGraph, error) {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()
	if g != nil {
		return g, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		loaded, err := s.repo.LoadGraph(ctx)
		if err != nil {
			return nil, err
		}
		s.graph = loaded
	}
	return s.graph, nil
}

// Invalidate drops the cached arena; the next read reloads from storage.
// Called after writes that bypass this service, such as the transactional
// version+lineage insert.
func (s *LineageService) Invalidate() {
	s.mu.Lock()
	s.graph = nil
	s.mu.Unlock()
}

func (s *LineageService) AddNode(ctx context.Context, node *domain.LineageNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	trial := s.graph.Clone()
	if err := trial.AddNode(node); err != nil {
		return err
	}
	if err := s.repo.AddNode(ctx, node); err != nil {
		return err
	}
	s.graph = trial
	return nil
}

func (s *LineageService) AddEdge(ctx context.Context, edge *domain.LineageEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	trial := s.graph.Clone()
	if err := trial.AddEdge(edge); err != nil {
		return err
	}
	if err := s.repo.AddEdge(ctx, edge); err != nil {
		return err
	}
	s.graph = trial
	return nil
}

// ValidateAddition checks a batch of nodes and edges against the current
// arena without persisting anything. Used by version creation before its
// transactional write.
func (s *LineageService) ValidateAddition(ctx context.Context, nodes []*domain.LineageNode, edges []*domain.LineageEdge) error {
	g, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	trial := g.Clone()
	for _, node := range nodes {
		if err := trial.AddNode(node); err != nil {
			return err
		}
	}
	for _, edge := range edges {
		if err := trial.AddEdge(edge); err != nil {
			return err
		}
	}
	return nil
}

func (s *LineageService) GetNode(ctx context.Context, id uuid.UUID) (*domain.LineageNode, error) {
	g, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := g.Node(id)
	if !ok {
		return nil, domain.ErrLineageNodeNotFound
	}
	return node, nil
}

func (s *LineageService) Ancestors(ctx context.Context, id uuid.UUID) ([]*domain.LineageNode, error) {
	g, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return g.Ancestors(id)
}

func (s *LineageService) Descendants(ctx context.Context, id uuid.UUID) ([]*domain.LineageNode, error) {
	g, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return g.Descendants(id)
}

func (s *LineageService) ShortestPath(ctx context.Context, fromID, toID uuid.UUID) ([]*domain.LineageNode, error) {
	g, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return g.ShortestPath(fromID, toID)
}

func (s *LineageService) NodesByType(ctx context.Context, t domain.NodeType) ([]*domain.LineageNode, error) {
	if err := domain.ValidateNodeType(t); err != nil {
		return nil, err
	}
	g, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return g.NodesByType(t), nil
}

// VersionLineage is the subgraph returned by "get model with lineage":
// a version node, all its ancestors, and the edges among them.
type VersionLineage struct {
	Node      *domain.LineageNode   `json:"node"`
	Ancestors []*domain.LineageNode `json:"ancestors"`
	Edges     []*domain.LineageEdge `json:"edges"`
}

func (s *LineageService) VersionLineage(ctx context.Context, nodeID uuid.UUID) (*VersionLineage, error) {
	g, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := g.Node(nodeID)
	if !ok {
		return nil, domain.ErrLineageNodeNotFound
	}
	ancestors, err := g.Ancestors(nodeID)
	if err != nil {
		return nil, err
	}
	ids := map[uuid.UUID]bool{nodeID: true}
	for _, a := range ancestors {
		ids[a.ID] = true
	}
	return &VersionLineage{
		Node:      node,
		Ancestors: ancestors,
		Edges:     g.EdgesTouching(ids),
	}, nil
}

func (s *LineageService) ensureLoadedLocked(ctx context.Context) error {
	if s.graph != nil {
		return nil
	}
	loaded, err := s.repo.LoadGraph(ctx)
	if err != nil {
		return err
	}
	s.graph = loaded
	return nil
}
