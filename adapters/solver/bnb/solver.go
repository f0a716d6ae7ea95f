// Package bnb implements the solver port with a branch-and-bound engine over
// LP relaxations. Each node relaxes the binary variables to [0,1], solves the
// relaxation with gonum's simplex method, and branches on the most fractional
// variable until the incumbent is proven optimal, the node budget runs out,
// or the context deadline fires.
package bnb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"driftbin/domain/core"
	"driftbin/ports"
)

const (
	// intTol decides when a relaxed value counts as integral.
	intTol = 1e-6
	// boundTol guards incumbent pruning against LP round-off.
	boundTol = 1e-9
	// rankTol decides when an eliminated equality row counts as zero.
	rankTol = 1e-9
	// defaultNodeLimit bounds the search when no deadline is set.
	defaultNodeLimit = 1 << 20
)

// Solver is a branch-and-bound MILP backend. The zero value is not usable;
// construct with New.
type Solver struct {
	nodeLimit int
}

// Option configures the solver.
type Option func(*Solver)

// WithNodeLimit overrides the maximum number of explored branch nodes.
func WithNodeLimit(n int) Option {
	return func(s *Solver) { s.nodeLimit = n }
}

// New creates a branch-and-bound solver.
func New(opts ...Option) *Solver {
	s := &Solver{nodeLimit: defaultNodeLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewModel starts an empty model owned by a single solve.
func (s *Solver) NewModel(name string) ports.Model {
	return &model{name: name, nodeLimit: s.nodeLimit}
}

type row struct {
	terms []ports.Term
	sense ports.Sense
	rhs   float64
}

type model struct {
	name      string
	nodeLimit int
	varNames  []string
	rows      []row
	objective []ports.Term
	maximize  bool
}

func (m *model) AddBinary(name string) ports.VarID {
	m.varNames = append(m.varNames, name)
	return ports.VarID(len(m.varNames) - 1)
}

func (m *model) AddConstraint(terms []ports.Term, sense ports.Sense, rhs float64) {
	m.rows = append(m.rows, row{terms: terms, sense: sense, rhs: rhs})
}

func (m *model) SetObjective(terms []ports.Term, maximize bool) {
	m.objective = terms
	m.maximize = maximize
}

// node is one open subproblem: the set of variables already fixed by
// branching decisions.
type node struct {
	fixes map[int]float64
}

func (n node) branch(v int, val float64) node {
	child := node{fixes: make(map[int]float64, len(n.fixes)+1)}
	for k, x := range n.fixes {
		child.fixes[k] = x
	}
	child.fixes[v] = val
	return child
}

// Solve runs depth-first branch-and-bound. Infeasibility and budget
// exhaustion are reported through the solution status; the error return is
// reserved for numerical failures in the LP backend.
func (m *model) Solve(ctx context.Context) (*ports.Solution, error) {
	n := len(m.varNames)
	if n == 0 {
		return nil, core.NewSolverError(m.name, fmt.Errorf("model has no variables"))
	}

	// Objective in minimization form.
	c := make([]float64, n)
	for _, t := range m.objective {
		c[t.Var] += t.Coef
	}
	if m.maximize {
		for i := range c {
			c[i] = -c[i]
		}
	}

	base := m.splitRows()

	var (
		incumbent    []float64
		incumbentObj = math.Inf(1)
		nodes        = 0
		exhausted    = true
	)

	stack := []node{{fixes: map[int]float64{}}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			exhausted = false
			break
		}
		if nodes >= m.nodeLimit {
			exhausted = false
			break
		}
		nodes++

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		obj, x, err := m.solveRelaxation(c, base, cur.fixes)
		if err != nil {
			if errors.Is(err, lp.ErrInfeasible) {
				continue
			}
			return nil, core.NewSolverError(m.name, err)
		}
		if !math.IsInf(incumbentObj, 1) && obj >= incumbentObj-boundTol {
			continue // cannot improve on the incumbent
		}

		frac := mostFractional(x)
		if frac < 0 {
			// Integral relaxation: new incumbent.
			incumbent = x
			incumbentObj = obj
			continue
		}

		// Explore the 1-branch first: in edge-selection models it reaches
		// incumbents faster.
		stack = append(stack, cur.branch(frac, 0), cur.branch(frac, 1))
	}

	status := classify(incumbent != nil, exhausted)
	sol := &ports.Solution{Status: status}
	if incumbent != nil {
		sol.Values = incumbent
		sol.Objective = incumbentObj
		if m.maximize {
			sol.Objective = -incumbentObj
		}
	}
	return sol, nil
}

func classify(hasIncumbent, exhausted bool) ports.Status {
	switch {
	case hasIncumbent && exhausted:
		return ports.StatusOptimal
	case hasIncumbent:
		return ports.StatusFeasible
	case exhausted:
		return ports.StatusInfeasible
	default:
		return ports.StatusTimedOut
	}
}

// splitRows separates the model constraints into <= rows (g, h) and == rows
// (a, b), flipping >= rows into <= form. Unit bounds x <= 1 are appended so
// the relaxation stays boxed; x >= 0 comes free with the standard form.
type standardRows struct {
	g [][]float64
	h []float64
	a [][]float64
	b []float64
}

func (m *model) splitRows() standardRows {
	n := len(m.varNames)
	var sr standardRows
	for _, r := range m.rows {
		dense := make([]float64, n)
		for _, t := range r.terms {
			dense[t.Var] += t.Coef
		}
		switch r.sense {
		case ports.SenseLE:
			sr.g = append(sr.g, dense)
			sr.h = append(sr.h, r.rhs)
		case ports.SenseGE:
			for i := range dense {
				dense[i] = -dense[i]
			}
			sr.g = append(sr.g, dense)
			sr.h = append(sr.h, -r.rhs)
		case ports.SenseEQ:
			sr.a = append(sr.a, dense)
			sr.b = append(sr.b, r.rhs)
		}
	}
	for i := 0; i < n; i++ {
		bound := make([]float64, n)
		bound[i] = 1
		sr.g = append(sr.g, bound)
		sr.h = append(sr.h, 1)
	}
	return sr
}

// solveRelaxation solves the LP relaxation of the node in standard form:
// minimize c'x subject to [G I](x;s) = h, A x = b, x,s >= 0, with branching
// fixes appended as equality rows. The equality system is reduced to
// independent rows first: flow-style models carry redundant equalities (the
// balance rows telescope into the boundary rows) and lp.Simplex rejects a
// rank-deficient A outright.
func (m *model) solveRelaxation(c []float64, sr standardRows, fixes map[int]float64) (float64, []float64, error) {
	n := len(m.varNames)

	eq := make([][]float64, 0, len(sr.a)+len(fixes))
	eqRHS := make([]float64, 0, len(sr.a)+len(fixes))
	for k, row := range sr.a {
		eq = append(eq, row)
		eqRHS = append(eqRHS, sr.b[k])
	}
	fixVars := make([]int, 0, len(fixes))
	for v := range fixes {
		fixVars = append(fixVars, v)
	}
	sort.Ints(fixVars)
	for _, v := range fixVars {
		row := make([]float64, n)
		row[v] = 1
		eq = append(eq, row)
		eqRHS = append(eqRHS, fixes[v])
	}
	eq, eqRHS, err := reduceEqualities(eq, eqRHS, n)
	if err != nil {
		return 0, nil, err
	}

	nIneq := len(sr.g)
	nTot := n + nIneq

	cExt := make([]float64, nTot)
	copy(cExt, c)

	rows := nIneq + len(eq)
	a := mat.NewDense(rows, nTot, nil)
	b := make([]float64, rows)
	for k, g := range sr.g {
		for i, v := range g {
			a.Set(k, i, v)
		}
		a.Set(k, n+k, 1) // slack
		b[k] = sr.h[k]
	}
	for k, row := range eq {
		for i, v := range row {
			a.Set(nIneq+k, i, v)
		}
		b[nIneq+k] = eqRHS[k]
	}

	obj, xs, err := lp.Simplex(cExt, a, b, 0, nil)
	if err != nil {
		return 0, nil, err
	}
	x := make([]float64, n)
	copy(x, xs[:n])
	return obj, x, nil
}

// reduceEqualities runs Gaussian elimination with partial pivoting over the
// equality system and keeps only the independent rows. A dependent row whose
// right-hand side does not cancel makes the node infeasible. Row operations
// preserve the solution set, so the echelon rows stand in for the originals.
func reduceEqualities(eq [][]float64, rhs []float64, n int) ([][]float64, []float64, error) {
	rows := make([][]float64, len(eq))
	b := make([]float64, len(eq))
	for i := range eq {
		rows[i] = append([]float64(nil), eq[i]...)
		b[i] = rhs[i]
	}

	rank := 0
	for col := 0; col < n && rank < len(rows); col++ {
		pivot, best := -1, rankTol
		for r := rank; r < len(rows); r++ {
			if v := math.Abs(rows[r][col]); v > best {
				pivot, best = r, v
			}
		}
		if pivot < 0 {
			continue
		}
		rows[rank], rows[pivot] = rows[pivot], rows[rank]
		b[rank], b[pivot] = b[pivot], b[rank]

		pv := rows[rank][col]
		for r := rank + 1; r < len(rows); r++ {
			f := rows[r][col] / pv
			if f == 0 {
				continue
			}
			for cc := col; cc < n; cc++ {
				rows[r][cc] -= f * rows[rank][cc]
			}
			b[r] -= f * b[rank]
		}
		rank++
	}

	for r := rank; r < len(rows); r++ {
		if math.Abs(b[r]) > rankTol {
			return nil, nil, lp.ErrInfeasible
		}
	}
	return rows[:rank], b[:rank], nil
}

// mostFractional returns the index of the variable farthest from integrality,
// or -1 when the assignment is integral within tolerance.
func mostFractional(x []float64) int {
	best, bestDist := -1, intTol
	for i, v := range x {
		dist := math.Abs(v - math.Round(v))
		if dist > bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}
