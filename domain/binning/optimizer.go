// Package binning formulates and solves the bin edge selection program: a
// 0/1 integer program whose selected (i,j) pairs form a single chain of
// contiguous segments partitioning the support, chosen to concentrate
// drift-transition PSI mass and avoid stable-transition PSI mass.
package binning

import (
	"context"
	"fmt"
	"time"

	"driftbin/domain/core"
	"driftbin/domain/psi"
	"driftbin/ports"
)

// Bounds is the allowed bin cardinality range.
type Bounds struct {
	Min int
	Max int
}

// Optimizer builds the edge-selection model and delegates to an opaque MILP
// backend.
type Optimizer struct {
	solver ports.SolverPort
	bounds Bounds
}

// NewOptimizer creates an optimizer over the given solver backend.
func NewOptimizer(solver ports.SolverPort, bounds Bounds) *Optimizer {
	return &Optimizer{solver: solver, bounds: bounds}
}

// Result is a successful solve: the extracted edges and the objective value
// achieved by the selected segments.
type Result struct {
	Edges     []int
	Segments  []Segment
	TotalCost float64
	Status    ports.Status
	BuildTime time.Duration
	SolveTime time.Duration
}

// NumBins returns the number of bins the edges induce.
func (r *Result) NumBins() int {
	return len(r.Edges) - 1
}

// Solve formulates the program over the class PSI matrices and solves it.
// Infeasibility and timeout surface as typed errors, never as empty edges.
func (o *Optimizer) Solve(ctx context.Context, cm *psi.ClassMatrices, alpha float64, minEdge, maxEdge int) (*Result, error) {
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %v outside [0,1]", alpha)
	}
	b := cm.B
	if o.bounds.Min < 1 || o.bounds.Max < o.bounds.Min {
		return nil, fmt.Errorf("invalid cardinality bounds [%d, %d]", o.bounds.Min, o.bounds.Max)
	}

	buildStart := time.Now()
	m := o.solver.NewModel("bin-edges")

	// Sparse upper-triangular variable arena: only pairs with i < j exist.
	vars := make(map[Segment]ports.VarID, b*(b-1)/2)
	var objective []ports.Term
	for i := 0; i < b; i++ {
		for j := i + 1; j < b; j++ {
			seg := Segment{I: i, J: j}
			id := m.AddBinary(fmt.Sprintf("x_%d_%d", i, j))
			vars[seg] = id
			coef := alpha*cm.Drifted[i][j] - (1-alpha)*cm.Stable[i][j]
			objective = append(objective, ports.Term{Var: id, Coef: coef})
		}
	}

	// Flow conservation at every interior position: at most one segment in,
	// at most one out, and in == out. Selected segments then form a single
	// simple path from 0 to B-1.
	for p := 1; p <= b-2; p++ {
		var inbound, outbound, balance []ports.Term
		for i := 0; i < p; i++ {
			inbound = append(inbound, ports.Term{Var: vars[Segment{I: i, J: p}], Coef: 1})
			balance = append(balance, ports.Term{Var: vars[Segment{I: i, J: p}], Coef: 1})
		}
		for j := p + 1; j < b; j++ {
			outbound = append(outbound, ports.Term{Var: vars[Segment{I: p, J: j}], Coef: 1})
			balance = append(balance, ports.Term{Var: vars[Segment{I: p, J: j}], Coef: -1})
		}
		m.AddConstraint(inbound, ports.SenseLE, 1)
		m.AddConstraint(outbound, ports.SenseLE, 1)
		m.AddConstraint(balance, ports.SenseEQ, 0)
	}

	// Boundary: exactly one segment leaves the left edge, exactly one
	// reaches the right edge.
	var left, right []ports.Term
	for j := 1; j < b; j++ {
		left = append(left, ports.Term{Var: vars[Segment{I: 0, J: j}], Coef: 1})
	}
	for i := 0; i < b-1; i++ {
		right = append(right, ports.Term{Var: vars[Segment{I: i, J: b - 1}], Coef: 1})
	}
	m.AddConstraint(left, ports.SenseEQ, 1)
	m.AddConstraint(right, ports.SenseEQ, 1)

	// Cardinality: total selected segments bounded by the bin budget.
	all := make([]ports.Term, 0, len(vars))
	for _, id := range vars {
		all = append(all, ports.Term{Var: id, Coef: 1})
	}
	m.AddConstraint(all, ports.SenseGE, float64(o.bounds.Min))
	m.AddConstraint(all, ports.SenseLE, float64(o.bounds.Max))

	m.SetObjective(objective, true)
	buildTime := time.Since(buildStart)

	solveStart := time.Now()
	sol, err := m.Solve(ctx)
	if err != nil {
		return nil, err
	}
	solveTime := time.Since(solveStart)
	switch sol.Status {
	case ports.StatusInfeasible:
		return nil, fmt.Errorf("%w: bins in [%d, %d] over %d positions", core.ErrInfeasible, o.bounds.Min, o.bounds.Max, b)
	case ports.StatusTimedOut:
		return nil, core.ErrTimedOut
	}

	segments := SelectedSegments(vars, sol.Values)
	edges, err := ExtractEdges(segments, minEdge, maxEdge)
	if err != nil {
		return nil, err
	}
	return &Result{
		Edges:     edges,
		Segments:  segments,
		TotalCost: sol.Objective,
		Status:    sol.Status,
		BuildTime: buildTime,
		SolveTime: solveTime,
	}, nil
}
