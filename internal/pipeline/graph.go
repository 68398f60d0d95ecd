// Package pipeline is the variable→render node graph of the canvas. Edges are
// typed by port and the graph is kept acyclic.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/models"
)

// PortType is the type of value flowing along an edge.
type PortType string

const (
	PortNone  PortType = ""
	PortField PortType = "field"
	PortImage PortType = "image"
)

// Ports returns the input and output port types of a node kind.
func Ports(kind models.NodeKind) (in, out PortType) {
	switch kind {
	case models.NodeVariable:
		return PortNone, PortField
	case models.NodeRender:
		return PortField, PortImage
	default:
		return PortNone, PortNone
	}
}

// Graph is a typed, acyclic node graph. It is safe for concurrent use.
type Graph struct {
	mu     sync.Mutex
	g      *simple.DirectedGraph
	ids    map[string]int64
	nodes  map[int64]models.Node
	edges  []models.Edge
	nextID int64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		g:     simple.NewDirectedGraph(),
		ids:   map[string]int64{},
		nodes: map[int64]models.Node{},
	}
}

// AddNode adds n, assigning an id when n.ID is empty, and returns the stored
// node. The payload must match the kind.
func (gr *Graph) AddNode(n models.Node) (models.Node, error) {
	if err := validateNode(n); err != nil {
		return models.Node{}, err
	}
	gr.mu.Lock()
	defer gr.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if _, dup := gr.ids[n.ID]; dup {
		return models.Node{}, fmt.Errorf("pipeline: node %s: %w", n.ID, apperr.ErrAlreadyExists)
	}
	gr.nextID++
	id := gr.nextID
	gr.ids[n.ID] = id
	gr.nodes[id] = n.Clone()
	gr.g.AddNode(simple.Node(id))
	return n.Clone(), nil
}

func validateNode(n models.Node) error {
	switch n.Type {
	case models.NodeVariable:
		if n.Variable == nil || n.Variable.Variable == "" || n.Render != nil {
			return fmt.Errorf("pipeline: variable node needs variable data: %w", apperr.ErrInvalidRequest)
		}
	case models.NodeRender:
		if n.Render == nil || n.Render.Dataset == "" || n.Variable != nil {
			return fmt.Errorf("pipeline: render node needs render data: %w", apperr.ErrInvalidRequest)
		}
		if n.Render.DepthIndex < 0 || n.Render.TimeIndex < 0 {
			return fmt.Errorf("pipeline: render node indices must be >= 0: %w", apperr.ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("pipeline: node kind %q: %w", n.Type, apperr.ErrInvalidRequest)
	}
	return nil
}

// RemoveNode deletes a node and every edge touching it.
func (gr *Graph) RemoveNode(id string) error {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	gid, ok := gr.ids[id]
	if !ok {
		return fmt.Errorf("pipeline: node %s: %w", id, apperr.ErrNotFound)
	}
	gr.g.RemoveNode(gid)
	delete(gr.ids, id)
	delete(gr.nodes, gid)

	kept := gr.edges[:0]
	for _, e := range gr.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	gr.edges = kept
	return nil
}

// Connect adds an edge from the output of source to the input of target.
// Unknown nodes, self-loops, mismatched port types, duplicate edges, an
// occupied input and edges closing a cycle are rejected.
func (gr *Graph) Connect(source, target string) (models.Edge, error) {
	gr.mu.Lock()
	defer gr.mu.Unlock()

	sid, ok := gr.ids[source]
	if !ok {
		return models.Edge{}, fmt.Errorf("pipeline: source %s: %w", source, apperr.ErrNotFound)
	}
	tid, ok := gr.ids[target]
	if !ok {
		return models.Edge{}, fmt.Errorf("pipeline: target %s: %w", target, apperr.ErrNotFound)
	}
	if sid == tid {
		return models.Edge{}, fmt.Errorf("pipeline: self-loop on %s: %w", source, apperr.ErrCycle)
	}

	_, out := Ports(gr.nodes[sid].Type)
	in, _ := Ports(gr.nodes[tid].Type)
	if out == PortNone || in == PortNone || out != in {
		return models.Edge{}, fmt.Errorf("pipeline: cannot connect %s output to %s input: %w",
			gr.nodes[sid].Type, gr.nodes[tid].Type, apperr.ErrInvalidRequest)
	}
	if gr.g.HasEdgeFromTo(sid, tid) {
		return models.Edge{}, fmt.Errorf("pipeline: edge %s->%s: %w", source, target, apperr.ErrAlreadyExists)
	}
	if gr.g.To(tid).Len() > 0 {
		return models.Edge{}, fmt.Errorf("pipeline: input of %s already connected: %w", target, apperr.ErrConflict)
	}
	if topo.PathExistsIn(gr.g, simple.Node(tid), simple.Node(sid)) {
		return models.Edge{}, fmt.Errorf("pipeline: edge %s->%s closes a cycle: %w", source, target, apperr.ErrCycle)
	}

	gr.g.SetEdge(gr.g.NewEdge(simple.Node(sid), simple.Node(tid)))
	e := models.Edge{ID: uuid.NewString(), Source: source, Target: target}
	gr.edges = append(gr.edges, e)
	return e, nil
}

// Disconnect removes an edge by id.
func (gr *Graph) Disconnect(edgeID string) error {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	for i, e := range gr.edges {
		if e.ID != edgeID {
			continue
		}
		gr.g.RemoveEdge(gr.ids[e.Source], gr.ids[e.Target])
		gr.edges = append(gr.edges[:i], gr.edges[i+1:]...)
		return nil
	}
	return fmt.Errorf("pipeline: edge %s: %w", edgeID, apperr.ErrNotFound)
}

// Order returns the nodes in topological order. Ties keep insertion order.
func (gr *Graph) Order() ([]models.Node, error) {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	return gr.order()
}

func (gr *Graph) order() ([]models.Node, error) {
	sorted, err := topo.SortStabilized(gr.g, nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline: order: %w: %w", apperr.ErrCycle, err)
	}
	out := make([]models.Node, len(sorted))
	for i, n := range sorted {
		out[i] = gr.nodes[n.ID()].Clone()
	}
	return out, nil
}

// Nodes returns every node in insertion order.
func (gr *Graph) Nodes() []models.Node {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	return gr.nodeList()
}

func (gr *Graph) nodeList() []models.Node {
	out := make([]models.Node, 0, len(gr.nodes))
	for id := int64(1); id <= gr.nextID; id++ {
		if n, ok := gr.nodes[id]; ok {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Edges returns every edge in insertion order.
func (gr *Graph) Edges() []models.Edge {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	return append([]models.Edge{}, gr.edges...)
}

// upstream returns the node feeding target's input.
func (gr *Graph) upstream(target string) (models.Node, bool) {
	for _, e := range gr.edges {
		if e.Target == target {
			return gr.nodes[gr.ids[e.Source]], true
		}
	}
	return models.Node{}, false
}
