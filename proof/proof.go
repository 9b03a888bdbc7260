// Package proof models a proof as a sequence of diagram snapshots: the
// initial graph in row 0 followed by one row per rewrite step. Steps can be
// renamed, grouped into a single step and ungrouped again.
package proof

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"zxd/zxgraph"
)

// GroupedStepJoiner separates the original step names inside the display
// name of a grouped step.
const GroupedStepJoiner = " 🡒 "

// GroupedRuleName is the rule name recorded on grouped steps.
const GroupedRuleName = "Grouped"

// ErrNotGrouped is returned when ungrouping a step that holds no group.
var ErrNotGrouped = errors.New("step is not grouped")

// Rewrite is one proof step: the rule that was applied and the full graph
// that resulted. A grouped step additionally keeps the steps it replaced.
type Rewrite struct {
	DisplayName     string
	Rule            string
	Graph           *zxgraph.Graph
	GroupedRewrites []Rewrite
}

// Listener observes row changes of a model. Rows count the initial graph as
// row 0; step i occupies row i+1.
type Listener interface {
	RowsInserted(first, last int)
	RowsRemoved(first, last int)
	RowChanged(first, last int)
}

// Model is the proof history: the initial graph plus the applied steps.
type Model struct {
	initial   *zxgraph.Graph
	steps     []Rewrite
	listeners []Listener
}

// NewModel starts a proof from a graph. The snapshot is frozen: later
// variable reclassification cannot alter it, and auto-simplify stays off.
func NewModel(start *zxgraph.Graph) *Model {
	return &Model{initial: snapshot(start)}
}

func snapshot(g *zxgraph.Graph) *zxgraph.Graph {
	c := g.Copy()
	c.SetAutoSimplify(false)
	c.FreezeVars()
	return c
}

// AddListener registers a row observer.
func (m *Model) AddListener(l Listener) { m.listeners = append(m.listeners, l) }

func (m *Model) notifyInserted(first, last int) {
	for _, l := range m.listeners {
		l.RowsInserted(first, last)
	}
}

func (m *Model) notifyRemoved(first, last int) {
	for _, l := range m.listeners {
		l.RowsRemoved(first, last)
	}
}

func (m *Model) notifyChanged(first, last int) {
	for _, l := range m.listeners {
		l.RowChanged(first, last)
	}
}

// RowCount is the number of rows: the steps plus the initial graph.
func (m *Model) RowCount() int { return len(m.steps) + 1 }

// NumSteps is the number of rewrite steps.
func (m *Model) NumSteps() int { return len(m.steps) }

// Step returns the rewrite at a step position.
func (m *Model) Step(index int) (Rewrite, error) {
	if index < 0 || index >= len(m.steps) {
		return Rewrite{}, fmt.Errorf("step %d out of range", index)
	}
	return m.steps[index], nil
}

// DisplayName returns the text for a row; row 0 is the start marker.
func (m *Model) DisplayName(row int) string {
	if row == 0 {
		return "START"
	}
	if row < 0 || row > len(m.steps) {
		return ""
	}
	return m.steps[row-1].DisplayName
}

// Graphs returns every graph in proof order, uncopied.
func (m *Model) Graphs() []*zxgraph.Graph {
	out := make([]*zxgraph.Graph, 0, len(m.steps)+1)
	out = append(out, m.initial)
	for i := range m.steps {
		out = append(out, m.steps[i].Graph)
	}
	return out
}

// GetGraph returns a working copy of the graph at a row.
func (m *Model) GetGraph(row int) (*zxgraph.Graph, error) {
	if row < 0 || row > len(m.steps) {
		return nil, fmt.Errorf("row %d out of range", row)
	}
	if row == 0 {
		return m.initial.Copy(), nil
	}
	return m.steps[row-1].Graph.Copy(), nil
}

// SetGraph replaces the graph at a row. Replacing a grouped step's graph
// discards its group.
func (m *Model) SetGraph(row int, g *zxgraph.Graph) error {
	if row < 0 || row > len(m.steps) {
		return fmt.Errorf("row %d out of range", row)
	}
	if row == 0 {
		m.initial = snapshot(g)
		return nil
	}
	old := m.steps[row-1]
	m.steps[row-1] = Rewrite{DisplayName: old.DisplayName, Rule: old.Rule, Graph: snapshot(g)}
	return nil
}

// AddRewrite appends a rewrite step, or inserts it at the given step
// position when position >= 0.
func (m *Model) AddRewrite(rw Rewrite, position int) {
	if position < 0 || position > len(m.steps) {
		position = len(m.steps)
	}
	rw.Graph = snapshot(rw.Graph)
	m.steps = append(m.steps, Rewrite{})
	copy(m.steps[position+1:], m.steps[position:])
	m.steps[position] = rw
	m.notifyInserted(position+1, position+1)
}

// PopRewrite removes the step at the given position, or the last one when
// position < 0, returning the removed rewrite.
func (m *Model) PopRewrite(position int) (Rewrite, error) {
	if len(m.steps) == 0 {
		return Rewrite{}, errors.New("proof has no steps")
	}
	if position < 0 {
		position = len(m.steps) - 1
	}
	if position >= len(m.steps) {
		return Rewrite{}, fmt.Errorf("step %d out of range", position)
	}
	rw := m.steps[position]
	m.steps = append(m.steps[:position], m.steps[position+1:]...)
	m.notifyRemoved(position+1, position+1)
	return rw, nil
}

// RenameStep changes the display name of the step at a step position.
func (m *Model) RenameStep(index int, name string) error {
	if index < 0 || index >= len(m.steps) {
		return fmt.Errorf("step %d out of range", index)
	}
	m.steps[index].DisplayName = name
	m.notifyChanged(index+1, index+1)
	return nil
}

// GroupSteps replaces steps start..end (inclusive step positions) with one
// grouped step carrying the final graph and the replaced steps.
func (m *Model) GroupSteps(start, end int) error {
	if start < 0 || end >= len(m.steps) || start >= end {
		return fmt.Errorf("cannot group steps %d..%d", start, end)
	}
	names := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		names = append(names, m.steps[i].DisplayName)
	}
	grouped := append([]Rewrite{}, m.steps[start:end+1]...)
	rw := Rewrite{
		DisplayName:     "Grouped Steps: " + strings.Join(names, GroupedStepJoiner),
		Rule:            GroupedRuleName,
		Graph:           m.steps[end].Graph,
		GroupedRewrites: grouped,
	}
	for i := start; i <= end; i++ {
		if _, err := m.PopRewrite(start); err != nil {
			return err
		}
	}
	m.AddRewrite(rw, start)
	m.notifyChanged(start+1, start+1)
	return nil
}

// UngroupSteps replaces the grouped step at a step position with the steps
// it was built from.
func (m *Model) UngroupSteps(index int) error {
	if index < 0 || index >= len(m.steps) {
		return fmt.Errorf("step %d out of range", index)
	}
	individual := m.steps[index].GroupedRewrites
	if individual == nil {
		return ErrNotGrouped
	}
	if _, err := m.PopRewrite(index); err != nil {
		return err
	}
	for i, step := range individual {
		m.AddRewrite(step, index+i)
	}
	m.notifyChanged(index+1, index+len(individual))
	return nil
}

type rewriteJSON struct {
	DisplayName     string            `json:"display_name"`
	Rule            string            `json:"rule"`
	Graph           json.RawMessage   `json:"graph"`
	GroupedRewrites []json.RawMessage `json:"grouped_rewrites"`
}

func marshalRewrite(rw Rewrite) (json.RawMessage, error) {
	g, err := json.Marshal(rw.Graph)
	if err != nil {
		return nil, fmt.Errorf("encoding step graph: %w", err)
	}
	d := rewriteJSON{DisplayName: rw.DisplayName, Rule: rw.Rule, Graph: g}
	for _, sub := range rw.GroupedRewrites {
		enc, err := marshalRewrite(sub)
		if err != nil {
			return nil, err
		}
		d.GroupedRewrites = append(d.GroupedRewrites, enc)
	}
	return json.Marshal(d)
}

func unmarshalRewrite(data json.RawMessage) (Rewrite, error) {
	var d rewriteJSON
	if err := json.Unmarshal(data, &d); err != nil {
		return Rewrite{}, fmt.Errorf("decoding step: %w", err)
	}
	g, err := zxgraph.FromJSON(d.Graph)
	if err != nil {
		return Rewrite{}, fmt.Errorf("decoding step graph: %w", err)
	}
	name := d.DisplayName
	if name == "" {
		// Older proofs carry only the rule name.
		name = d.Rule
	}
	rw := Rewrite{DisplayName: name, Rule: d.Rule, Graph: g}
	for _, sub := range d.GroupedRewrites {
		srw, err := unmarshalRewrite(sub)
		if err != nil {
			return Rewrite{}, err
		}
		rw.GroupedRewrites = append(rw.GroupedRewrites, srw)
	}
	return rw, nil
}

type modelJSON struct {
	InitialGraph json.RawMessage   `json:"initial_graph"`
	ProofSteps   []json.RawMessage `json:"proof_steps"`
}

// MarshalJSON encodes the whole proof with embedded graph documents.
func (m *Model) MarshalJSON() ([]byte, error) {
	g, err := json.Marshal(m.initial)
	if err != nil {
		return nil, fmt.Errorf("encoding initial graph: %w", err)
	}
	d := modelJSON{InitialGraph: g}
	for _, step := range m.steps {
		enc, err := marshalRewrite(step)
		if err != nil {
			return nil, err
		}
		d.ProofSteps = append(d.ProofSteps, enc)
	}
	return json.Marshal(d)
}

// FromJSON decodes a proof document.
func FromJSON(data []byte) (*Model, error) {
	var d modelJSON
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding proof: %w", err)
	}
	initial, err := zxgraph.FromJSON(d.InitialGraph)
	if err != nil {
		return nil, fmt.Errorf("decoding initial graph: %w", err)
	}
	m := NewModel(initial)
	for _, step := range d.ProofSteps {
		rw, err := unmarshalRewrite(step)
		if err != nil {
			return nil, err
		}
		m.AddRewrite(rw, -1)
	}
	return m, nil
}
