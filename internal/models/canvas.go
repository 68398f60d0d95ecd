package models

// NodeKind tags the payload carried by a canvas node.
type NodeKind string

const (
	NodeVariable NodeKind = "variable"
	NodeRender   NodeKind = "render"
)

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VariableData is the payload of a variable node.
type VariableData struct {
	Variable string   `json:"variable"`
	Dims     []string `json:"dims"`
}

// RenderData is the payload of a render node.
type RenderData struct {
	Dataset    string    `json:"dataset"`
	Dimension  Dimension `json:"dimension,omitempty"`
	DepthIndex int       `json:"depth_index"`
	TimeIndex  int       `json:"time_index"`
}

// Node is a canvas graph node. Exactly one of Variable or Render is set,
// matching Type.
type Node struct {
	ID       string        `json:"id"`
	Type     NodeKind      `json:"type"`
	Position Position      `json:"position"`
	Variable *VariableData `json:"variable,omitempty"`
	Render   *RenderData   `json:"render,omitempty"`
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	if n.Variable != nil {
		v := *n.Variable
		v.Dims = append([]string(nil), v.Dims...)
		n.Variable = &v
	}
	if n.Render != nil {
		r := *n.Render
		n.Render = &r
	}
	return n
}

// Edge connects the output of Source to the input of Target.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}
