package direct

import (
	"math"

	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/matrix"
)

// Dense is a Direct-category solver: LU factorization with partial
// pivoting over matrix.Dense operators. Setup factors a handle-owned copy
// of the operator; Solve runs forward/back substitution, so one Setup can
// serve many Solve calls.
type Dense struct {
	n        int
	lu       *matrix.Dense // handle-owned factor workspace
	piv      []int
	factored bool
	lastFlag int64
}

// NewDense returns an unfactored dense LU solver for n×n systems.
func NewDense(n int) (*Dense, error) {
	if n < 1 {
		return nil, linsol.ErrBadDimension
	}
	return &Dense{n: n}, nil
}

func (s *Dense) Type() linsol.Category { return linsol.Direct }

// SetOperator is meaningless for a direct solver; the operator arrives as
// an explicit matrix in Setup.
func (s *Dense) SetOperator(ctx any, fn linsol.ATimesFn) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	return linsol.IllInput
}

func (s *Dense) SetPreconditioner(ctx any, setup linsol.PSetupFn, solve linsol.PSolveFn) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	return linsol.IllInput
}

func (s *Dense) SetScalingVectors(s1, s2 linsol.Vector) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	return linsol.IllInput
}

// Initialize allocates the factor workspace. Re-initialization drops the
// previous workspace first so repeated calls cannot leak.
func (s *Dense) Initialize() linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	s.lu, _ = matrix.NewDense(s.n, s.n)
	s.piv = make([]int, s.n)
	s.factored = false
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

// Setup copies A into the workspace and factors it in place (PA = LU,
// unit lower triangle stored below the diagonal). A singular pivot column
// is recoverable: the caller may rebuild the operator and retry.
func (s *Dense) Setup(A linsol.Matrix) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if s.lu == nil {
		return linsol.MemFail
	}
	d, ok := A.(*matrix.Dense)
	if !ok || !d.IsSquare() || d.Rows() != s.n {
		s.lastFlag = int64(linsol.IllInput)
		return linsol.IllInput
	}
	for i := 0; i < s.n; i++ {
		copy(s.lu.Row(i), d.Row(i))
	}
	s.factored = false

	for k := 0; k < s.n; k++ {
		// Partial pivot: largest magnitude in column k at or below row k.
		maxRow, maxAbs := k, math.Abs(s.lu.Get(k, k))
		for i := k + 1; i < s.n; i++ {
			if v := math.Abs(s.lu.Get(i, k)); v > maxAbs {
				maxAbs, maxRow = v, i
			}
		}
		if maxAbs == 0 {
			s.lastFlag = int64(k + 1)
			return linsol.LUFactFail
		}
		s.piv[k] = maxRow
		s.lu.SwapRows(k, maxRow)

		pivot := s.lu.Get(k, k)
		for i := k + 1; i < s.n; i++ {
			m := s.lu.Get(i, k) / pivot
			s.lu.Set(i, k, m)
			if m == 0 {
				continue
			}
			rowI, rowK := s.lu.Row(i), s.lu.Row(k)
			for j := k + 1; j < s.n; j++ {
				rowI[j] -= m * rowK[j]
			}
		}
	}
	s.factored = true
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

// Solve computes x = A⁻¹b from the current factorization. tol is ignored.
func (s *Dense) Solve(A linsol.Matrix, x, b linsol.Vector, tol float64) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if s.lu == nil || !s.factored {
		return linsol.MemFail
	}
	if len(x) != s.n || len(b) != s.n {
		s.lastFlag = int64(linsol.IllInput)
		return linsol.IllInput
	}
	x.CopyFrom(b)

	// Forward: apply row swaps and solve Ly = Pb.
	for k := 0; k < s.n; k++ {
		if p := s.piv[k]; p != k {
			x[k], x[p] = x[p], x[k]
		}
		for i := k + 1; i < s.n; i++ {
			x[i] -= s.lu.Get(i, k) * x[k]
		}
	}
	// Back: solve Ux = y.
	for k := s.n - 1; k >= 0; k-- {
		diag := s.lu.Get(k, k)
		if diag == 0 {
			s.lastFlag = int64(k + 1)
			return linsol.QRSolFail
		}
		x[k] /= diag
		for i := 0; i < k; i++ {
			x[i] -= s.lu.Get(i, k) * x[k]
		}
	}
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

// Iteration diagnostics do not apply to a direct solve; sentinels only.
func (s *Dense) NumIters() int        { return 0 }
func (s *Dense) ResNorm() float64     { return 0 }
func (s *Dense) Resid() linsol.Vector { return nil }

func (s *Dense) LastFlag() int64 { return s.lastFlag }

func (s *Dense) Space() (int64, int64) {
	if s.lu == nil {
		return 0, 0
	}
	return int64(s.n * s.n), int64(s.n)
}

func (s *Dense) Free() linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	s.lu = nil
	s.piv = nil
	s.factored = false
	return linsol.Success
}
