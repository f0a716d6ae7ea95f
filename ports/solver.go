package ports

import "context"

// VarID is the handle a solver model returns for a declared variable.
type VarID int

// Sense is the direction of a linear constraint.
type Sense int

const (
	SenseLE Sense = iota // terms <= rhs
	SenseGE              // terms >= rhs
	SenseEQ              // terms == rhs
)

// Status is the outcome of a solve. Only Optimal and Feasible carry a usable
// variable assignment; Infeasible and TimedOut must be handled explicitly by
// the caller, never treated as an empty solution.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Success reports whether the status carries a valid assignment.
func (s Status) Success() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Term is one coefficient*variable entry of a linear expression.
type Term struct {
	Var  VarID
	Coef float64
}

// Solution is the result of one solve call. Values is indexed by VarID and
// only meaningful when Status.Success() is true.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Model is an integer program under construction. Implementations are not
// safe for concurrent use; each solve owns its model exclusively.
type Model interface {
	// AddBinary declares a 0/1 decision variable and returns its handle.
	AddBinary(name string) VarID
	// AddConstraint adds a linear constraint over previously declared variables.
	AddConstraint(terms []Term, sense Sense, rhs float64)
	// SetObjective sets the linear objective; maximize selects the direction.
	SetObjective(terms []Term, maximize bool)
	// Solve runs the backend. Infeasibility and timeout are reported through
	// Solution.Status; the error return is for backend failures only.
	Solve(ctx context.Context) (*Solution, error)
}

// SolverPort abstracts the MILP backend so model construction stays
// independent of the concrete branch-and-bound engine.
type SolverPort interface {
	NewModel(name string) Model
}
