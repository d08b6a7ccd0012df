package precond

import (
	"math"

	"github.com/san-kum/linsolve/internal/linsol"
)

// Jacobi is a diagonal (Jacobi) preconditioner: Solve applies z = r ./ d.
// It is bound to a solver through SetPreconditioner with the Jacobi value
// itself as the callback context; the solver core never owns or frees it.
type Jacobi struct {
	diag    linsol.Vector // caller-supplied operator diagonal
	inv     linsol.Vector // reciprocal, refreshed by Setup
	current bool
}

// NewJacobi returns a Jacobi preconditioner over the given operator
// diagonal. The diagonal slice remains caller-owned and may be updated
// between Setup calls.
func NewJacobi(diag linsol.Vector) (*Jacobi, error) {
	if len(diag) == 0 {
		return nil, linsol.ErrNilVector
	}
	return &Jacobi{
		diag: diag,
		inv:  linsol.NewVector(len(diag)),
	}, nil
}

// Setup recomputes the reciprocal diagonal. A zero diagonal entry is
// recoverable: the caller can rescale the operator and retry.
func Setup(ctx any) linsol.Status {
	j, ok := ctx.(*Jacobi)
	if !ok {
		return linsol.PSetupFailUnrec
	}
	for i, d := range j.diag {
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			j.current = false
			return linsol.PSetupFailRec
		}
		j.inv[i] = 1 / d
	}
	j.current = true
	return linsol.Success
}

// Solve applies the preconditioner: z = D⁻¹ r.
func Solve(ctx any, r, z linsol.Vector, tol float64, side int) linsol.Status {
	j, ok := ctx.(*Jacobi)
	if !ok {
		return linsol.PSolveFailUnrec
	}
	if !j.current {
		return linsol.PSolveFailRec
	}
	if len(r) != len(j.inv) || len(z) != len(j.inv) {
		return linsol.PSolveFailUnrec
	}
	for i := range r {
		z[i] = r[i] * j.inv[i]
	}
	return linsol.Success
}

// Bind attaches j to s through the standard binding call.
func (j *Jacobi) Bind(s linsol.Solver) linsol.Status {
	return s.SetPreconditioner(j, Setup, Solve)
}
