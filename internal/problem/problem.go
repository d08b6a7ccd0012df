package problem

import (
	"github.com/san-kum/linsolve/internal/linsol"
)

// Problem is a linear system generator: it supplies the operator in every
// form a solver category can consume (explicit matrix, matrix-free product,
// diagonal for preconditioning) together with a known solution so solve
// quality is checkable.
type Problem interface {
	Name() string
	Dim() int

	// Matrix returns an explicit operator for Direct/MatrixIterative
	// solvers, or nil for matrix-free-only problems.
	Matrix() linsol.Matrix

	// ATimes returns the matrix-free operator binding (context + product).
	ATimes() (any, linsol.ATimesFn)

	// Diagonal returns the operator diagonal (for Jacobi preconditioning).
	Diagonal() linsol.Vector

	// Solution returns the reference solution x*.
	Solution() linsol.Vector

	// RHS returns b = A·x*.
	RHS() linsol.Vector
}

// matVecATimes adapts a stored matrix into the matrix-free binding form.
func matVecATimes(m linsol.Matrix) (any, linsol.ATimesFn) {
	return m, func(ctx any, v, z linsol.Vector) linsol.Status {
		if err := ctx.(linsol.Matrix).MatVec(v, z); err != nil {
			return linsol.ATimesFailUnrec
		}
		return linsol.Success
	}
}

// ramp returns the reference solution [1, 2, ..., n].
func ramp(n int) linsol.Vector {
	x := linsol.NewVector(n)
	for i := range x {
		x[i] = float64(i + 1)
	}
	return x
}

func mustRHS(m linsol.Matrix, x linsol.Vector) linsol.Vector {
	b := linsol.NewVector(len(x))
	if err := m.MatVec(x, b); err != nil {
		panic(err)
	}
	return b
}
