package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrDataShape       = errors.New("malformed input matrix")
	ErrEmptyDataset    = fmt.Errorf("%w: dataset has no rows", ErrDataShape)
	ErrRaggedRows      = fmt.Errorf("%w: rows have inconsistent widths", ErrDataShape)
	ErrNegativeMass    = fmt.Errorf("%w: negative density value", ErrDataShape)
	ErrBadDatasetName  = errors.New("dataset name does not match expected pattern")
	ErrDegenerateClass = errors.New("label class has zero transitions")

	// Solver errors
	ErrSolverFailure = errors.New("solver backend failure")
	ErrInfeasible    = fmt.Errorf("%w: no feasible edge set under the cardinality bounds", ErrSolverFailure)
	ErrTimedOut      = errors.New("solve exceeded the configured time budget")

	// Extraction errors
	ErrBrokenChain = errors.New("selected segments do not form a single chain")
)

// Error constructors with context
func NewDataShapeError(detail string) error {
	return fmt.Errorf("%w: %s", ErrDataShape, detail)
}

func NewDegenerateClassError(class int) error {
	return fmt.Errorf("%w: class %d", ErrDegenerateClass, class)
}

func NewSolverError(backend string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSolverFailure, backend, err)
}

// Error checking helpers
func IsDataShapeError(err error) bool {
	return errors.Is(err, ErrDataShape)
}

func IsDegenerateClassError(err error) bool {
	return errors.Is(err, ErrDegenerateClass)
}

func IsSolverError(err error) bool {
	return errors.Is(err, ErrSolverFailure)
}

func IsTimedOut(err error) bool {
	return errors.Is(err, ErrTimedOut)
}
