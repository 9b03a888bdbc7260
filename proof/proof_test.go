package proof

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"zxd/zxgraph"
)

func stepGraph(n int) *zxgraph.Graph {
	g := zxgraph.NewGraph()
	for i := 0; i <= n; i++ {
		g.AddVertex(zxgraph.Z, float64(i), 0)
	}
	return g
}

func modelWithSteps(t *testing.T, n int) *Model {
	t.Helper()
	m := NewModel(stepGraph(0))
	for i := 1; i <= n; i++ {
		m.AddRewrite(Rewrite{
			DisplayName: fmt.Sprintf("step %d", i),
			Rule:        "fuse",
			Graph:       stepGraph(i),
		}, -1)
	}
	return m
}

func TestRowCountAndDisplayNames(t *testing.T) {
	m := modelWithSteps(t, 3)
	if m.RowCount() != 4 {
		t.Fatalf("RowCount = %d, want 4", m.RowCount())
	}
	if m.DisplayName(0) != "START" {
		t.Errorf("row 0 = %q, want START", m.DisplayName(0))
	}
	if m.DisplayName(2) != "step 2" {
		t.Errorf("row 2 = %q", m.DisplayName(2))
	}
}

func TestGetGraphReturnsCopies(t *testing.T) {
	m := modelWithSteps(t, 1)
	g, err := m.GetGraph(1)
	if err != nil {
		t.Fatalf("GetGraph: %v", err)
	}
	g.AddVertex(zxgraph.X, 5, 5)
	again, _ := m.GetGraph(1)
	if again.NumVertices() != 2 {
		t.Error("mutating a working copy must not change the stored snapshot")
	}
}

func TestSnapshotsAreFrozenAndUnsimplified(t *testing.T) {
	g := stepGraph(0)
	ph, err := zxgraph.ParsePhase("a", g.VarTypes())
	if err != nil {
		t.Fatalf("parsing phase: %v", err)
	}
	g.SetPhase(0, ph)
	g.SetAutoSimplify(true)

	m := NewModel(g)
	// Reclassifying the live variable must not reach into the snapshot.
	g.VarTypes()["a"] = true
	snap, _ := m.GetGraph(0)
	if snap.Phase(0).IsPauli() {
		t.Error("snapshot phase should be detached from the live classification")
	}
	if snap.AutoSimplify() {
		t.Error("snapshots must have auto-simplify off")
	}
}

func TestGroupAndUngroupSteps(t *testing.T) {
	m := modelWithSteps(t, 5)
	// Group steps 2..4 (rows 2..4, step positions 1..3).
	if err := m.GroupSteps(1, 3); err != nil {
		t.Fatalf("GroupSteps: %v", err)
	}
	if m.RowCount() != 4 {
		t.Fatalf("RowCount after grouping = %d, want 4", m.RowCount())
	}
	step, err := m.Step(1)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	want := "Grouped Steps: step 2" + GroupedStepJoiner + "step 3" + GroupedStepJoiner + "step 4"
	if step.DisplayName != want {
		t.Errorf("grouped name = %q, want %q", step.DisplayName, want)
	}
	if step.Rule != GroupedRuleName || len(step.GroupedRewrites) != 3 {
		t.Errorf("grouped step = %+v", step)
	}
	// The grouped step carries the graph of the last replaced step.
	if step.Graph.NumVertices() != 5 {
		t.Errorf("grouped graph has %d vertices, want 5", step.Graph.NumVertices())
	}

	if err := m.UngroupSteps(1); err != nil {
		t.Fatalf("UngroupSteps: %v", err)
	}
	if m.RowCount() != 6 {
		t.Fatalf("RowCount after ungrouping = %d, want 6", m.RowCount())
	}
	for i, want := range []string{"step 1", "step 2", "step 3", "step 4", "step 5"} {
		if got := m.DisplayName(i + 1); got != want {
			t.Errorf("row %d = %q, want %q", i+1, got, want)
		}
	}

	if err := m.UngroupSteps(0); err != ErrNotGrouped {
		t.Errorf("ungrouping a plain step = %v, want ErrNotGrouped", err)
	}
}

func TestRenameStep(t *testing.T) {
	m := modelWithSteps(t, 2)
	if err := m.RenameStep(0, "my step"); err != nil {
		t.Fatalf("RenameStep: %v", err)
	}
	if m.DisplayName(1) != "my step" {
		t.Errorf("row 1 = %q", m.DisplayName(1))
	}
	if err := m.RenameStep(5, "x"); err == nil {
		t.Error("renaming out of range should fail")
	}
}

type recordingListener struct {
	events []string
}

func (r *recordingListener) RowsInserted(first, last int) {
	r.events = append(r.events, fmt.Sprintf("ins %d-%d", first, last))
}

func (r *recordingListener) RowsRemoved(first, last int) {
	r.events = append(r.events, fmt.Sprintf("rm %d-%d", first, last))
}

func (r *recordingListener) RowChanged(first, last int) {
	r.events = append(r.events, fmt.Sprintf("chg %d-%d", first, last))
}

func TestListenerNotifications(t *testing.T) {
	m := modelWithSteps(t, 2)
	l := &recordingListener{}
	m.AddListener(l)

	m.AddRewrite(Rewrite{DisplayName: "step 3", Rule: "fuse", Graph: stepGraph(3)}, -1)
	if _, err := m.PopRewrite(-1); err != nil {
		t.Fatalf("PopRewrite: %v", err)
	}
	m.RenameStep(0, "renamed")

	want := []string{"ins 3-3", "rm 3-3", "chg 1-1"}
	if strings.Join(l.events, ";") != strings.Join(want, ";") {
		t.Errorf("events = %v, want %v", l.events, want)
	}
}

func TestProofJSONRoundTrip(t *testing.T) {
	m := modelWithSteps(t, 3)
	if err := m.GroupSteps(0, 1); err != nil {
		t.Fatalf("GroupSteps: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.RowCount() != m.RowCount() {
		t.Fatalf("RowCount = %d, want %d", back.RowCount(), m.RowCount())
	}
	for row := 0; row < m.RowCount(); row++ {
		if back.DisplayName(row) != m.DisplayName(row) {
			t.Errorf("row %d name = %q, want %q", row, back.DisplayName(row), m.DisplayName(row))
		}
		a, _ := m.GetGraph(row)
		b, _ := back.GetGraph(row)
		if !a.Equal(b) {
			t.Errorf("row %d graph changed in round trip", row)
		}
	}
	step, _ := back.Step(0)
	if len(step.GroupedRewrites) != 2 {
		t.Errorf("grouped steps lost in round trip: %+v", step)
	}
}
