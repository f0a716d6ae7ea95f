package binning

import (
	"fmt"
	"math"
	"sort"

	"driftbin/domain/core"
	"driftbin/ports"
)

// roundTol is the distance from 1 within which a solved variable counts as
// selected. Backend values are numerically close to 0 or 1, never exact.
const roundTol = 1e-4

// Segment is one selected boundary pair (i, j), i < j, in support positions.
type Segment struct {
	I int
	J int
}

// SelectedSegments rounds the solved assignment and collects the segments
// whose variables are set.
func SelectedSegments(vars map[Segment]ports.VarID, values []float64) []Segment {
	var selected []Segment
	for seg, id := range vars {
		if math.Abs(values[id]-1) <= roundTol {
			selected = append(selected, seg)
		}
	}
	sort.Slice(selected, func(a, b int) bool { return selected[a].I < selected[b].I })
	return selected
}

// ExtractEdges converts an ordered chain of segments into the strictly
// increasing edge sequence over [minEdge, maxEdge]. The terminal edge is
// appended only when the chain does not already end at the final support
// position, so a complete chain never yields a duplicate.
func ExtractEdges(segments []Segment, minEdge, maxEdge int) ([]int, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no segments selected", core.ErrBrokenChain)
	}
	if segments[0].I != 0 {
		return nil, fmt.Errorf("%w: chain starts at position %d, want 0", core.ErrBrokenChain, segments[0].I)
	}

	edges := make([]int, 0, len(segments)+2)
	edges = append(edges, minEdge)
	prev := 0
	for _, seg := range segments {
		if seg.I != prev {
			return nil, fmt.Errorf("%w: segment (%d,%d) does not continue from %d", core.ErrBrokenChain, seg.I, seg.J, prev)
		}
		edges = append(edges, seg.J+minEdge)
		prev = seg.J
	}
	if edges[len(edges)-1] != maxEdge {
		edges = append(edges, maxEdge)
	}
	return edges, nil
}
