package zxgraph

import "sort"

// EdgePair keys the edge table of an Edit. The pair is unordered; callers
// should normalize with NewEdgePair.
type EdgePair [2]int

// NewEdgePair returns the normalized key for an unordered vertex pair.
func NewEdgePair(s, t int) EdgePair {
	if s > t {
		s, t = t, s
	}
	return EdgePair{s, t}
}

// Edit describes the delta a rewrite applies to a host graph: edges to add
// (counted per pair as [plain, hadamard]), vertices to delete, and edge
// instances to delete.
type Edit struct {
	EdgeTable   map[EdgePair][2]int
	RemoveVerts []int
	RemoveEdges []Edge
}

// NewEdit returns an empty edit.
func NewEdit() *Edit {
	return &Edit{EdgeTable: make(map[EdgePair][2]int)}
}

// AddToTable accumulates one edge of the given type into the table.
func (e *Edit) AddToTable(s, t int, ty EdgeType) {
	p := NewEdgePair(s, t)
	counts := e.EdgeTable[p]
	if ty == EdgeHadamard {
		counts[1]++
	} else {
		counts[0]++
	}
	e.EdgeTable[p] = counts
}

// Apply performs the edit on g: removed edges first, then removed vertices,
// then the accumulated edge table.
func (g *Graph) Apply(e *Edit) error {
	if err := g.RemoveEdges(e.RemoveEdges); err != nil {
		return err
	}
	g.RemoveVertices(e.RemoveVerts)
	pairs := make([]EdgePair, 0, len(e.EdgeTable))
	for p := range e.EdgeTable {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	for _, p := range pairs {
		counts := e.EdgeTable[p]
		for i := 0; i < counts[0]; i++ {
			g.AddEdge(p[0], p[1], EdgeSimple)
		}
		for i := 0; i < counts[1]; i++ {
			g.AddEdge(p[0], p[1], EdgeHadamard)
		}
	}
	return nil
}
