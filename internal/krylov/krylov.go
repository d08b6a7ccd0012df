package krylov

import "github.com/san-kum/linsolve/internal/linsol"

// Options configures an iterative solver backend at construction.
type Options struct {
	// MaxKrylov is the Krylov subspace dimension for GMRES (basis size per
	// restart cycle). Defaults to 5.
	MaxKrylov int

	// MaxRestarts is the number of GMRES restart cycles after the first.
	// Defaults to 0 (no restarts).
	MaxRestarts int

	// MaxIters bounds PCG iterations. Defaults to 100.
	MaxIters int

	// MatrixBacked selects the MatrixIterative category: the operator is
	// read from the matrix passed to Setup instead of a bound ATimesFn.
	MatrixBacked bool
}

func (o Options) withDefaults() Options {
	if o.MaxKrylov <= 0 {
		o.MaxKrylov = 5
	}
	if o.MaxRestarts < 0 {
		o.MaxRestarts = 0
	}
	if o.MaxIters <= 0 {
		o.MaxIters = 100
	}
	return o
}

// Callback returns preserve the recoverable/unrecoverable distinction the
// callback itself reported; the core refines the sign into the
// stage-specific code without collapsing the partition.

func mapATimes(st linsol.Status) linsol.Status {
	if st.Unrecoverable() {
		return linsol.ATimesFailUnrec
	}
	return linsol.ATimesFailRec
}

func mapPSetup(st linsol.Status) linsol.Status {
	if st.Unrecoverable() {
		return linsol.PSetupFailUnrec
	}
	return linsol.PSetupFailRec
}

func mapPSolve(st linsol.Status) linsol.Status {
	if st.Unrecoverable() {
		return linsol.PSolveFailUnrec
	}
	return linsol.PSolveFailRec
}
