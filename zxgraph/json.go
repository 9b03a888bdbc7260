package zxgraph

import (
	"encoding/json"
	"fmt"
)

// graphJSON is the wire form of a diagram. Parallel edges are written as
// repeated entries so the multigraph round-trips exactly.
type graphJSON struct {
	Version       int             `json:"version"`
	VariableTypes map[string]bool `json:"variable_types,omitempty"`
	Inputs        []int           `json:"inputs"`
	Outputs       []int           `json:"outputs"`
	Vertices      []vertexJSON    `json:"vertices"`
	Edges         []edgeJSON      `json:"edges"`
}

type vertexJSON struct {
	ID    int     `json:"id"`
	Type  string  `json:"type"`
	Phase string  `json:"phase,omitempty"`
	Row   float64 `json:"row"`
	Qubit float64 `json:"qubit"`
}

type edgeJSON struct {
	Src  int    `json:"src"`
	Tgt  int    `json:"tgt"`
	Type string `json:"type"`
}

// MarshalJSON serializes the diagram.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := graphJSON{
		Version: 1,
		Inputs:  g.Inputs(),
		Outputs: g.Outputs(),
	}
	if len(g.varTypes) > 0 {
		doc.VariableTypes = g.varTypes
	}
	if doc.Inputs == nil {
		doc.Inputs = []int{}
	}
	if doc.Outputs == nil {
		doc.Outputs = []int{}
	}
	doc.Vertices = []vertexJSON{}
	for _, v := range g.Vertices() {
		vj := vertexJSON{ID: v, Type: g.Type(v).String(), Row: g.Row(v), Qubit: g.Qubit(v)}
		if !g.Phase(v).IsZero() {
			vj.Phase = g.Phase(v).String()
		}
		doc.Vertices = append(doc.Vertices, vj)
	}
	doc.Edges = []edgeJSON{}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, edgeJSON{Src: e.S, Tgt: e.T, Type: e.Type.String()})
	}
	return json.Marshal(doc)
}

// UnmarshalJSON deserializes a diagram. Automatic simplification is left
// disabled so loading cannot eagerly alter historical structure.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc graphJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing graph: %w", err)
	}
	fresh := NewGraph()
	for name, b := range doc.VariableTypes {
		fresh.varTypes[name] = b
	}
	for _, vj := range doc.Vertices {
		ty, err := ParseVertexType(vj.Type)
		if err != nil {
			return fmt.Errorf("vertex %d: %w", vj.ID, err)
		}
		if _, dup := fresh.vdata[vj.ID]; dup {
			return fmt.Errorf("duplicate vertex id %d", vj.ID)
		}
		d := &vertexData{Type: ty, Row: vj.Row, Qubit: vj.Qubit}
		if vj.Phase != "" {
			ph, err := ParsePhase(vj.Phase, fresh.varTypes)
			if err != nil {
				return fmt.Errorf("vertex %d phase: %w", vj.ID, err)
			}
			d.Phase = ph
		}
		fresh.vdata[vj.ID] = d
		if vj.ID >= fresh.nextID {
			fresh.nextID = vj.ID + 1
		}
	}
	for _, ej := range doc.Edges {
		ty, err := ParseEdgeType(ej.Type)
		if err != nil {
			return fmt.Errorf("edge %d-%d: %w", ej.Src, ej.Tgt, err)
		}
		if !fresh.HasVertex(ej.Src) || !fresh.HasVertex(ej.Tgt) {
			return fmt.Errorf("edge %d-%d references missing vertex", ej.Src, ej.Tgt)
		}
		fresh.AddEdge(ej.Src, ej.Tgt, ty)
	}
	for _, v := range doc.Inputs {
		if !fresh.HasVertex(v) {
			return fmt.Errorf("input %d references missing vertex", v)
		}
	}
	for _, v := range doc.Outputs {
		if !fresh.HasVertex(v) {
			return fmt.Errorf("output %d references missing vertex", v)
		}
	}
	fresh.inputs = doc.Inputs
	fresh.outputs = doc.Outputs
	*g = *fresh
	return nil
}

// FromJSON parses a diagram from its wire form.
func FromJSON(data []byte) (*Graph, error) {
	g := NewGraph()
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return g, nil
}
