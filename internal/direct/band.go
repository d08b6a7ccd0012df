package direct

import (
	"math"

	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/matrix"
)

// Band is a Direct-category solver for banded operators. The factor
// workspace carries mu+ml super-diagonals so partial-pivot row swaps have
// room for fill-in.
type Band struct {
	n        int
	ml, mu   int
	lu       *matrix.Band
	piv      []int
	factored bool
	lastFlag int64
}

// NewBand returns a banded LU solver for n×n systems with ml
// sub-diagonals and mu super-diagonals.
func NewBand(n, ml, mu int) (*Band, error) {
	if n < 1 || ml < 0 || mu < 0 || ml >= n || mu >= n {
		return nil, linsol.ErrBadDimension
	}
	return &Band{n: n, ml: ml, mu: mu}, nil
}

func (s *Band) Type() linsol.Category { return linsol.Direct }

func (s *Band) SetOperator(ctx any, fn linsol.ATimesFn) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	return linsol.IllInput
}

func (s *Band) SetPreconditioner(ctx any, setup linsol.PSetupFn, solve linsol.PSolveFn) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	return linsol.IllInput
}

func (s *Band) SetScalingVectors(s1, s2 linsol.Vector) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	return linsol.IllInput
}

func (s *Band) Initialize() linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	lu, err := matrix.NewBand(s.n, s.ml, s.mu)
	if err != nil {
		return linsol.MemFail
	}
	s.lu = lu
	s.piv = make([]int, s.n)
	s.factored = false
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

// Setup copies the band of A into the workspace and factors it in place
// with partial pivoting.
func (s *Band) Setup(A linsol.Matrix) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if s.lu == nil {
		return linsol.MemFail
	}
	b, ok := A.(*matrix.Band)
	if !ok || b.Rows() != s.n {
		s.lastFlag = int64(linsol.IllInput)
		return linsol.IllInput
	}
	if ml, mu := b.Bandwidths(); ml != s.ml || mu != s.mu {
		s.lastFlag = int64(linsol.IllInput)
		return linsol.IllInput
	}

	s.lu.Zero()
	for j := 0; j < s.n; j++ {
		lo, hi := j-s.mu, j+s.ml
		if lo < 0 {
			lo = 0
		}
		if hi > s.n-1 {
			hi = s.n - 1
		}
		for i := lo; i <= hi; i++ {
			s.lu.Set(i, j, b.Get(i, j))
		}
	}
	s.factored = false

	smu := s.mu + s.ml
	if smu > s.n-1 {
		smu = s.n - 1
	}
	for k := 0; k < s.n; k++ {
		lastRow := k + s.ml
		if lastRow > s.n-1 {
			lastRow = s.n - 1
		}
		lastCol := k + smu
		if lastCol > s.n-1 {
			lastCol = s.n - 1
		}

		maxRow, maxAbs := k, math.Abs(s.lu.Get(k, k))
		for i := k + 1; i <= lastRow; i++ {
			if v := math.Abs(s.lu.Get(i, k)); v > maxAbs {
				maxAbs, maxRow = v, i
			}
		}
		if maxAbs == 0 {
			s.lastFlag = int64(k + 1)
			return linsol.LUFactFail
		}
		s.piv[k] = maxRow
		if maxRow != k {
			for j := k; j <= lastCol; j++ {
				vk, vm := s.lu.Get(k, j), s.lu.Get(maxRow, j)
				s.lu.Set(k, j, vm)
				s.lu.Set(maxRow, j, vk)
			}
		}

		pivot := s.lu.Get(k, k)
		for i := k + 1; i <= lastRow; i++ {
			m := s.lu.Get(i, k) / pivot
			s.lu.Set(i, k, m)
			if m == 0 {
				continue
			}
			for j := k + 1; j <= lastCol; j++ {
				s.lu.Set(i, j, s.lu.Get(i, j)-m*s.lu.Get(k, j))
			}
		}
	}
	s.factored = true
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

func (s *Band) Solve(A linsol.Matrix, x, b linsol.Vector, tol float64) linsol.Status {
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

	smu := s.mu + s.ml
	if smu > s.n-1 {
		smu = s.n - 1
	}
	for k := 0; k < s.n; k++ {
		if p := s.piv[k]; p != k {
			x[k], x[p] = x[p], x[k]
		}
		lastRow := k + s.ml
		if lastRow > s.n-1 {
			lastRow = s.n - 1
		}
		for i := k + 1; i <= lastRow; i++ {
			x[i] -= s.lu.Get(i, k) * x[k]
		}
	}
	for k := s.n - 1; k >= 0; k-- {
		diag := s.lu.Get(k, k)
		if diag == 0 {
			s.lastFlag = int64(k + 1)
			return linsol.QRSolFail
		}
		x[k] /= diag
		firstRow := k - smu
		if firstRow < 0 {
			firstRow = 0
		}
		for i := firstRow; i < k; i++ {
			x[i] -= s.lu.Get(i, k) * x[k]
		}
	}
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

func (s *Band) NumIters() int        { return 0 }
func (s *Band) ResNorm() float64     { return 0 }
func (s *Band) Resid() linsol.Vector { return nil }

func (s *Band) LastFlag() int64 { return s.lastFlag }

func (s *Band) Space() (int64, int64) {
	if s.lu == nil {
		return 0, 0
	}
	smu := s.mu + s.ml
	if smu > s.n-1 {
		smu = s.n - 1
	}
	return int64(s.n * (smu + s.ml + 1)), int64(s.n)
}

func (s *Band) Free() linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	s.lu = nil
	s.piv = nil
	s.factored = false
	return linsol.Success
}
