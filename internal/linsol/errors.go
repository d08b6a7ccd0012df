package linsol

import "errors"

// Constructor- and boundary-level errors. The solver operations themselves
// report through Status; these cover the Go-native edges (construction,
// dimension checks on stored matrices).
var (
	// ErrBadDimension indicates a non-positive or mismatched dimension.
	ErrBadDimension = errors.New("linsol: dimension must be positive and consistent")

	// ErrDimensionMismatch indicates operand lengths disagree with the operator.
	ErrDimensionMismatch = errors.New("linsol: operand dimension mismatch")

	// ErrNilVector indicates a required vector argument was nil.
	ErrNilVector = errors.New("linsol: nil vector")
)
