package linsol

// Category classifies a solver backend and is fixed at construction.
// It is the authoritative capability signal: callers consult Type() to
// decide which optional bindings are worth attempting, rather than probing
// the Set* calls.
type Category int

const (
	// Direct solvers factor an explicit matrix; operator, preconditioner
	// and scaling bindings are rejected with IllInput.
	Direct Category = iota
	// Iterative solvers are matrix-free: the operator is a bound ATimesFn.
	Iterative
	// MatrixIterative solvers iterate but read the operator from an
	// explicit matrix passed to Setup/Solve.
	MatrixIterative
)

func (c Category) String() string {
	switch c {
	case Direct:
		return "direct"
	case Iterative:
		return "iterative"
	case MatrixIterative:
		return "matrix-iterative"
	}
	return "unknown"
}

// Solver is the contract every pluggable backend satisfies. A handle moves
// through Constructed → Initialized → Ready → Solved; Initialize is called
// exactly once before the first Setup/Solve (calling it again must
// free-then-reallocate, never leak), Setup may be repeated once per
// integration step, and Solve may be repeated per nonlinear iteration.
// Free is terminal.
//
// Handles are not safe for concurrent use; a caller drives at most one
// operation at a time per handle. Distinct handles share no state.
//
// Every binding (operator context, preconditioner context, scaling
// vectors, matrices, right-hand sides) remains caller-owned: Free releases
// only solver-owned workspace.
type Solver interface {
	// Type returns the fixed category. Pure; stable for the handle's life.
	Type() Category

	// SetOperator binds a matrix-vector product for matrix-free operation.
	// Returns IllInput for categories that take their operator from an
	// explicit matrix instead.
	SetOperator(ctx any, fn ATimesFn) Status

	// SetPreconditioner binds preconditioner callbacks. setup may be nil;
	// solve must not be nil if a preconditioner is attached at all.
	SetPreconditioner(ctx any, setup PSetupFn, solve PSolveFn) Status

	// SetScalingVectors binds row (s1) and column (s2) scaling. Either may
	// be nil, meaning identity.
	SetScalingVectors(s1, s2 Vector) Status

	// Initialize allocates workspace sized from the bindings attached so
	// far. Required once before Setup/Solve.
	Initialize() Status

	// Setup refreshes factorization or preconditioner state for a possibly
	// new operator. A is nil for matrix-free categories.
	Setup(A Matrix) Status

	// Solve computes x ≈ A⁻¹b. tol is meaningful only to iterative
	// categories. On recoverable failures x holds the best available
	// approximation; on unrecoverable failures x is unspecified.
	Solve(A Matrix, x, b Vector, tol float64) Status

	// NumIters reports iterations used by the last Solve; 0 for direct
	// solvers (advisory sentinel, not an error).
	NumIters() int

	// ResNorm reports the final residual norm of the last Solve, in the
	// scaled space if scaling vectors are bound; 0 for direct solvers.
	ResNorm() float64

	// Resid returns a read-only view of the last residual vector, or nil
	// when the backend does not retain one. Valid only until the next
	// Solve.
	Resid() Vector

	// LastFlag returns the backend's most recent internal status, useful
	// when a generic code needs refinement (e.g. the failing pivot column).
	LastFlag() int64

	// Space reports handle-owned workspace in real and integer words.
	Space() (lenrw, leniw int64)

	// Free releases all solver-owned workspace. A second Free is a no-op.
	Free() Status
}
