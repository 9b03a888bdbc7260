package rules

import (
	"math"
	"sort"

	"zxd/zxgraph"
)

// vertexPositions lays out the replacement pattern inside the hole left by
// the removed vertices. Matched boundary positions are fixed; the remaining
// vertices relax with a force-directed iteration whose spring constant is
// sqrt(area)/n, where area is taken from the polygon spanned by the fixed
// positions. W-input vertices are pinned next to their W-output partner
// afterwards.
func vertexPositions(g *zxgraph.Graph, rhs *matchGraph, boundaryVertexMap map[string]int) map[string][2]float64 {
	pos := make(map[string][2]float64, rhs.size())
	fixed := make(map[string]bool, len(boundaryVertexMap))
	var cx, cy float64
	for id, hv := range boundaryVertexMap {
		p := [2]float64{g.Row(hv), g.Qubit(hv)}
		pos[id] = p
		fixed[id] = true
		cx += p[0]
		cy += p[1]
	}
	if len(boundaryVertexMap) > 0 {
		cx /= float64(len(boundaryVertexMap))
		cy /= float64(len(boundaryVertexMap))
	}

	k := math.Sqrt(fixedPolygonArea(pos, cx, cy)) / float64(rhs.size())
	if k <= 0 {
		k = 1
	}

	// Deterministic jitter around the centroid seeds the free vertices.
	ids := rhs.nodeIDs()
	j := 0
	for _, id := range ids {
		if fixed[id] {
			continue
		}
		angle := float64(j) * 2.3999632297286533 // golden angle
		r := 0.1 + 0.05*float64(j)
		pos[id] = [2]float64{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
		j++
	}

	springIterate(rhs, pos, fixed, k)

	for _, id := range ids {
		if rhs.nodes[id].Type != zxgraph.WInput {
			continue
		}
		for n, ty := range rhs.adj[id] {
			if ty == zxgraph.EdgeWIO && rhs.nodes[n].Type == zxgraph.WOutput {
				pos[id] = [2]float64{pos[n][0] - 0.3, pos[n][1]}
				break
			}
		}
	}
	return pos
}

// fixedPolygonArea computes the shoelace area of the fixed positions sorted
// by angle around their centroid. Degenerate inputs yield a unit area.
func fixedPolygonArea(fixedPos map[string][2]float64, cx, cy float64) float64 {
	coords := make([][2]float64, 0, len(fixedPos))
	for _, p := range fixedPos {
		coords = append(coords, p)
	}
	if len(coords) < 3 {
		return 1
	}
	sort.Slice(coords, func(i, j int) bool {
		ai := math.Atan2(coords[i][1]-cy, coords[i][0]-cx)
		aj := math.Atan2(coords[j][1]-cy, coords[j][0]-cx)
		return ai > aj
	})
	area := 0.0
	for i := range coords {
		p, q := coords[i], coords[(i+1)%len(coords)]
		area += p[0]*q[1] - q[0]*p[1]
	}
	area = math.Abs(area) / 2
	if area == 0 {
		return 1
	}
	return area
}

// springIterate runs Fruchterman-Reingold style relaxation: repulsion k^2/d
// between all pairs, attraction d^2/k along edges, with a cooling step cap.
func springIterate(rhs *matchGraph, pos map[string][2]float64, fixed map[string]bool, k float64) {
	ids := rhs.nodeIDs()
	const iterations = 50
	temp := 0.1 * math.Max(1, k*float64(len(ids)))
	cool := temp / (iterations + 1)
	for it := 0; it < iterations; it++ {
		disp := make(map[string][2]float64, len(ids))
		for i, a := range ids {
			for _, b := range ids[i+1:] {
				dx := pos[a][0] - pos[b][0]
				dy := pos[a][1] - pos[b][1]
				d := math.Hypot(dx, dy)
				if d < 1e-9 {
					dx, dy, d = 1e-3, 1e-3, math.Sqrt2*1e-3
				}
				f := k * k / d
				ux, uy := dx/d*f, dy/d*f
				da, db := disp[a], disp[b]
				da[0] += ux
				da[1] += uy
				db[0] -= ux
				db[1] -= uy
				disp[a], disp[b] = da, db
			}
		}
		for _, a := range ids {
			for b := range rhs.adj[a] {
				if b <= a {
					continue
				}
				dx := pos[a][0] - pos[b][0]
				dy := pos[a][1] - pos[b][1]
				d := math.Hypot(dx, dy)
				if d < 1e-9 {
					continue
				}
				f := d * d / k
				ux, uy := dx/d*f, dy/d*f
				da, db := disp[a], disp[b]
				da[0] -= ux
				da[1] -= uy
				db[0] += ux
				db[1] += uy
				disp[a], disp[b] = da, db
			}
		}
		for _, a := range ids {
			if fixed[a] {
				continue
			}
			d := disp[a]
			n := math.Hypot(d[0], d[1])
			if n < 1e-12 {
				continue
			}
			step := math.Min(n, temp)
			pos[a] = [2]float64{pos[a][0] + d[0]/n*step, pos[a][1] + d[1]/n*step}
		}
		temp -= cool
		if temp < 1e-3 {
			temp = 1e-3
		}
	}
}
