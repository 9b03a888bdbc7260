package rules

import (
	"fmt"

	"zxd/zxgraph"
)

// isRewriteUnfusable decides whether matches of lhs may be prepared by
// unfusing host spiders first. This needs every non-boundary vertex of the
// pattern to touch at most one boundary, and no boundary edge to be a
// Hadamard edge.
func isRewriteUnfusable(lhs *zxgraph.Graph) bool {
	for _, v := range lhs.Vertices() {
		if lhs.Type(v) != zxgraph.Boundary {
			continue
		}
		for _, n := range lhs.Neighbors(v) {
			if _, h, _ := lhs.EdgeCount(v, n); h != 0 {
				return false
			}
		}
	}
	for _, v := range lhs.Vertices() {
		if lhs.Type(v) == zxgraph.Boundary {
			continue
		}
		if len(boundaryNeighborsOf(lhs, v)) > 1 {
			return false
		}
	}
	return true
}

func boundaryNeighborsOf(g *zxgraph.Graph, v int) []int {
	var out []int
	for _, n := range g.Neighbors(v) {
		if g.Type(n) == zxgraph.Boundary {
			out = append(out, n)
		}
	}
	return out
}

// unfuseSubgraphForRewrite splits off the outside connections of the
// selected vertices so the selection becomes an exact copy of the pattern.
// For every pattern vertex adjacent to exactly one pattern boundary, if the
// matched host vertex has extra or non-plain outside connections, a fresh
// vertex of the same kind takes them over and reconnects through a plain
// edge (or the appropriate W pair / H-box chain).
func (r *CustomRule) unfuseSubgraphForRewrite(g *zxgraph.Graph, vertices []int) error {
	subNoBound := inducedSubgraph(g, vertices)
	var matching map[string]string
	enumerateIsomorphisms(r.lhsPatNoBound, subNoBound, false, func(m map[string]string) bool {
		matching = m
		return false
	})
	if matching == nil {
		return ErrNoMatch
	}

	sub, _ := extractSubgraph(g, vertices)
	for _, l := range r.lhsPatNoBound.nodeIDs() {
		m, ok := matching[l]
		if !ok {
			continue
		}
		if len(r.lhsPat.boundaryNeighbors(l)) != 1 {
			continue
		}
		vtype := r.lhsPat.nodes[l].Type
		outside := sub.boundaryNeighbors(m)
		if len(outside) == 1 && sub.adj[m][outside[0]] == zxgraph.EdgeSimple && vtype != zxgraph.WInput {
			continue
		}
		v := hostVertexOf(m)
		switch vtype {
		case zxgraph.Z, zxgraph.X, zxgraph.ZBox:
			unfuseZXVertex(g, sub, v, vtype)
		case zxgraph.HBox:
			unfuseHBoxVertex(g, sub, v)
		case zxgraph.WInput, zxgraph.WOutput:
			if err := unfuseWVertex(g, sub, v, vtype); err != nil {
				return err
			}
		}
	}
	return nil
}

// unfuseUpdateEdges moves every edge from oldV to a neighbor outside the
// selection over to newV, keeping edge types and multiplicities.
func unfuseUpdateEdges(g *zxgraph.Graph, sub *matchGraph, oldV, newV int) {
	for _, n := range g.Neighbors(oldV) {
		if _, inside := sub.nodes[hostNodeID(n)]; inside {
			continue
		}
		for _, e := range g.IncidentEdges(oldV) {
			if e.S != n && e.T != n {
				continue
			}
			g.AddEdge(newV, n, e.Type)
			g.RemoveEdge(oldV, n, e.Type)
		}
	}
}

func unfuseZXVertex(g *zxgraph.Graph, sub *matchGraph, v int, vtype zxgraph.VertexType) {
	newV := g.AddVertex(vtype, g.Row(v), g.Qubit(v))
	unfuseUpdateEdges(g, sub, v, newV)
	g.AddEdge(newV, v, zxgraph.EdgeSimple)
}

func unfuseHBoxVertex(g *zxgraph.Graph, sub *matchGraph, v int) {
	newH := g.AddVertex(zxgraph.HBox, g.Row(v)+0.3, g.Qubit(v)+0.3)
	newMidH := g.AddVertex(zxgraph.HBox, g.Row(v), g.Qubit(v))
	unfuseUpdateEdges(g, sub, v, newH)
	g.AddEdge(newMidH, v, zxgraph.EdgeSimple)
	g.AddEdge(newH, newMidH, zxgraph.EdgeSimple)
}

func unfuseWVertex(g *zxgraph.Graph, sub *matchGraph, v int, vtype zxgraph.VertexType) error {
	partner, err := g.WPartner(v)
	if err != nil {
		return fmt.Errorf("unfusing W vertex: %w", err)
	}
	wIn, wOut := v, partner
	if vtype == zxgraph.WOutput {
		wIn, wOut = partner, v
	}
	newWIn := g.AddVertex(zxgraph.WInput, g.Row(wIn), g.Qubit(wIn))
	newWOut := g.AddVertex(zxgraph.WOutput, g.Row(wOut), g.Qubit(wOut))
	unfuseUpdateEdges(g, sub, wIn, newWIn)
	unfuseUpdateEdges(g, sub, wOut, newWOut)
	if vtype == zxgraph.WOutput {
		g.AddEdge(newWIn, wOut, zxgraph.EdgeSimple)
	} else {
		g.AddEdge(wIn, newWOut, zxgraph.EdgeSimple)
	}
	g.AddEdge(newWIn, newWOut, zxgraph.EdgeWIO)
	return nil
}
