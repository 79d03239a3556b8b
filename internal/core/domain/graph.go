package domain

import (
	"sort"

	"github.com/google/uuid"
)

// LineageGraph is an arena of lineage nodes and edges keyed by id, with
// forward and reverse adjacency indexes. Nodes hold no direct references to
// each other, so the graph can be serialized and cycle-checked without
// ownership hazards.
type LineageGraph struct {
	nodes map[uuid.UUID]*LineageNode
	edges []*LineageEdge
	out   map[uuid.UUID][]uuid.UUID
	in    map[uuid.UUID][]uuid.UUID
}

func NewLineageGraph() *LineageGraph {
	return &LineageGraph{
		nodes: make(map[uuid.UUID]*LineageNode),
		out:   make(map[uuid.UUID][]uuid.UUID),
		in:    make(map[uuid.UUID][]uuid.UUID),
	}
}

// AddNode inserts a node into the arena. Duplicate ids are rejected.
func (g *LineageGraph) AddNode(node *LineageNode) error {
	if err := ValidateNodeType(node.Type); err != nil {
		return err
	}
	if _, ok := g.nodes[node.ID]; ok {
		return ErrDuplicateNode
	}
	g.nodes[node.ID] = node
	return nil
}

// AddEdge inserts an edge after verifying both endpoints exist and the edge
// keeps the graph acyclic. On rejection the graph is exactly as it was.
func (g *LineageGraph) AddEdge(edge *LineageEdge) error {
	if err := ValidateRelationType(edge.Relation); err != nil {
		return err
	}
	if _, ok := g.nodes[edge.FromID]; !ok {
		return ErrLineageNodeNotFound
	}
	if _, ok := g.nodes[edge.ToID]; !ok {
		return ErrLineageNodeNotFound
	}
	if g.wouldCreateCycle(edge.FromID, edge.ToID) {
		return ErrCyclicLineage
	}
	g.edges = append(g.edges, edge)
	g.out[edge.FromID] = append(g.out[edge.FromID], edge.ToID)
	g.in[edge.ToID] = append(g.in[edge.ToID], edge.FromID)
	return nil
}

// wouldCreateCycle reports whether from is reachable from to over forward
// edges. Inserting from->to would then close a cycle.
func (g *LineageGraph) wouldCreateCycle(from, to uuid.UUID) bool {
	if from == to {
		return true
	}
	visited := make(map[uuid.UUID]bool)
	stack := []uuid.UUID{to}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == from {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, g.out[current]...)
	}
	return false
}

// Node looks up a node by id.
func (g *LineageGraph) Node(id uuid.UUID) (*LineageNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Ancestors returns every node reachable from id over reverse edges.
// The visited set keeps the walk terminating even if acyclicity were ever
// violated in stored data.
func (g *LineageGraph) Ancestors(id uuid.UUID) ([]*LineageNode, error) {
	return g.traverse(id, g.in)
}

// Descendants returns every node reachable from id over forward edges.
func (g *LineageGraph) Descendants(id uuid.UUID) ([]*LineageNode, error) {
	return g.traverse(id, g.out)
}

func (g *LineageGraph) traverse(start uuid.UUID, adj map[uuid.UUID][]uuid.UUID) ([]*LineageNode, error) {
	if _, ok := g.nodes[start]; !ok {
		return nil, ErrLineageNodeNotFound
	}
	visited := map[uuid.UUID]bool{start: true}
	stack := append([]uuid.UUID(nil), adj[start]...)
	var result []*LineageNode
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		if node, ok := g.nodes[current]; ok {
			result = append(result, node)
		}
		stack = append(stack, adj[current]...)
	}
	sortNodes(result)
	return result, nil
}

// ShortestPath returns the node sequence of a shortest forward path from
// fromID to toID, inclusive of both endpoints. An empty result means the
// nodes are unrelated; that is an answer, not an error.
func (g *LineageGraph) ShortestPath(fromID, toID uuid.UUID) ([]*LineageNode, error) {
	if _, ok := g.nodes[fromID]; !ok {
		return nil, ErrLineageNodeNotFound
	}
	if _, ok := g.nodes[toID]; !ok {
		return nil, ErrLineageNodeNotFound
	}
	if fromID == toID {
		return []*LineageNode{g.nodes[fromID]}, nil
	}

	// BFS: first arrival is shortest in edge count.
	parent := map[uuid.UUID]uuid.UUID{fromID: fromID}
	queue := []uuid.UUID{fromID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.out[current] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == toID {
				return g.buildPath(parent, fromID, toID), nil
			}
			queue = append(queue, next)
		}
	}
	return nil, nil
}

func (g *LineageGraph) buildPath(parent map[uuid.UUID]uuid.UUID, fromID, toID uuid.UUID) []*LineageNode {
	var ids []uuid.UUID
	for current := toID; ; current = parent[current] {
		ids = append(ids, current)
		if current == fromID {
			break
		}
	}
	path := make([]*LineageNode, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		path = append(path, g.nodes[ids[i]])
	}
	return path
}

// NodesByType filters the arena linearly. Lineage graphs stay small
// (hundreds of nodes per model), so no secondary index is kept.
func (g *LineageGraph) NodesByType(t NodeType) []*LineageNode {
	var result []*LineageNode
	for _, node := range g.nodes {
		if node.Type == t {
			result = append(result, node)
		}
	}
	sortNodes(result)
	return result
}

// Edges returns the edge list in insertion order.
func (g *LineageGraph) Edges() []*LineageEdge {
	return append([]*LineageEdge(nil), g.edges...)
}

// EdgesTouching returns edges with either endpoint in the given id set.
func (g *LineageGraph) EdgesTouching(ids map[uuid.UUID]bool) []*LineageEdge {
	var result []*LineageEdge
	for _, edge := range g.edges {
		if ids[edge.FromID] || ids[edge.ToID] {
			result = append(result, edge)
		}
	}
	return result
}

// Clone copies the arena and indexes. Node and edge records are shared;
// they are treated as immutable once inserted.
func (g *LineageGraph) Clone() *LineageGraph {
	c := NewLineageGraph()
	for id, node := range g.nodes {
		c.nodes[id] = node
	}
	c.edges = append(c.edges, g.edges...)
	for id, next := range g.out {
		c.out[id] = append([]uuid.UUID(nil), next...)
	}
	for id, prev := range g.in {
		c.in[id] = append([]uuid.UUID(nil), prev...)
	}
	return c
}

func sortNodes(nodes []*LineageNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID.String() < nodes[j].ID.String()
	})
}
