package linsol

import "math"

// Vector is a dense real vector, the operand type shared by every solver
// backend. All arithmetic helpers allocate only when documented to.
type Vector []float64

// NewVector returns a zero vector of length n.
func NewVector(n int) Vector { return make(Vector, n) }

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) Zero() {
	for i := range v {
		v[i] = 0
	}
}

// CopyFrom overwrites v with the contents of other. Lengths must match.
func (v Vector) CopyFrom(other Vector) {
	copy(v, other)
}

func (v Vector) Dot(other Vector) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum
}

func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vector) Scale(factor float64) {
	for i := range v {
		v[i] *= factor
	}
}

// AXPY sets v = v + a*x in place.
func (v Vector) AXPY(a float64, x Vector) {
	for i := range v {
		v[i] += a * x[i]
	}
}

// ScaleBy multiplies v elementwise by s. A nil s is identity scaling.
func (v Vector) ScaleBy(s Vector) {
	if s == nil {
		return
	}
	for i := range v {
		v[i] *= s[i]
	}
}

// WL2Norm returns the weighted 2-norm sqrt(Σ (w_i·v_i)²). A nil weight
// vector gives the plain 2-norm.
func (v Vector) WL2Norm(w Vector) float64 {
	if w == nil {
		return v.Norm()
	}
	sum := 0.0
	for i := range v {
		wv := w[i] * v[i]
		sum += wv * wv
	}
	return math.Sqrt(sum)
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Matrix is the minimal operator surface the solver contract needs from a
// stored matrix. Concrete storage formats live in internal/matrix; direct
// solvers type-assert for the richer access they require.
type Matrix interface {
	Rows() int
	Cols() int
	// MatVec computes z = A*v. v and z must not alias.
	MatVec(v, z Vector) error
}

// ATimesFn applies the bound operator: z = A*v. The ctx value is the
// caller-owned context supplied to SetOperator; the core never inspects,
// copies, or releases it. A nonzero return propagates verbatim through
// Solve, so implementations signal recoverable vs unrecoverable themselves.
type ATimesFn func(ctx any, v, z Vector) Status

// PSetupFn refreshes preconditioner internals before a sequence of
// PSolveFn calls. May be nil when no setup phase exists.
type PSetupFn func(ctx any) Status

// PSolveFn solves the preconditioner system Pz = r to tolerance tol.
// side is PrecLeft or PrecRight.
type PSolveFn func(ctx any, r, z Vector, tol float64, side int) Status

// Preconditioner application sides.
const (
	PrecLeft  = 1
	PrecRight = 2
)
