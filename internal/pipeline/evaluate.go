package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/dashboard"
	"github.com/starford/ncdash/internal/models"
	"github.com/starford/ncdash/internal/store"
)

// Renderer produces plot images.
type Renderer interface {
	GeneratePlot(ctx context.Context, p dashboard.PlotParams) (*dashboard.PlotResult, error)
}

// Evaluate renders every render node in topological order, feeding it the
// variable of its upstream node. It returns image references keyed by render
// node id. A failing node does not stop the others; their errors are joined.
func (gr *Graph) Evaluate(ctx context.Context, r Renderer) (map[string]string, error) {
	gr.mu.Lock()
	order, err := gr.order()
	if err != nil {
		gr.mu.Unlock()
		return nil, err
	}
	type job struct {
		node   models.Node
		params dashboard.PlotParams
		err    error
	}
	var jobs []job
	for _, n := range order {
		if n.Type != models.NodeRender {
			continue
		}
		j := job{node: n}
		up, ok := gr.upstream(n.ID)
		switch {
		case !ok:
			j.err = fmt.Errorf("pipeline: render node %s has no input: %w", n.ID, apperr.ErrInvalidRequest)
		case up.Type != models.NodeVariable || up.Variable == nil:
			j.err = fmt.Errorf("pipeline: render node %s input is not a variable: %w", n.ID, apperr.ErrInvalidRequest)
		default:
			j.params = dashboard.PlotParams{
				Dataset:    n.Render.Dataset,
				Variable:   up.Variable.Variable,
				Dimension:  n.Render.Dimension,
				DepthIndex: n.Render.DepthIndex,
				TimeIndex:  n.Render.TimeIndex,
			}
		}
		jobs = append(jobs, j)
	}
	gr.mu.Unlock()

	out := make(map[string]string, len(jobs))
	var errs []error
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if j.err != nil {
			errs = append(errs, j.err)
			continue
		}
		res, err := r.GeneratePlot(ctx, j.params)
		if err != nil {
			errs = append(errs, fmt.Errorf("pipeline: render node %s: %w", j.node.ID, err))
			continue
		}
		out[j.node.ID] = res.Ref
	}
	return out, errors.Join(errs...)
}

// Sync writes the graph into the canvas slice.
func (gr *Graph) Sync(st *store.Store) error {
	gr.mu.Lock()
	nodes := gr.nodeList()
	edges := append([]models.Edge{}, gr.edges...)
	gr.mu.Unlock()

	if err := st.Dispatch(store.SetCanvasNodes{Nodes: nodes}); err != nil {
		return err
	}
	return st.Dispatch(store.SetCanvasEdges{Edges: edges})
}

// FromCanvas rebuilds a graph from the canvas slice, re-validating every
// node and edge.
func FromCanvas(c store.CanvasState) (*Graph, error) {
	gr := New()
	for _, n := range c.Nodes {
		if _, err := gr.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range c.Edges {
		if _, err := gr.Connect(e.Source, e.Target); err != nil {
			return nil, err
		}
		if e.ID != "" {
			gr.mu.Lock()
			gr.edges[len(gr.edges)-1].ID = e.ID
			gr.mu.Unlock()
		}
	}
	return gr, nil
}
