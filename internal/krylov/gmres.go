package krylov

import (
	"math"

	"github.com/san-kum/linsolve/internal/linsol"
)

// GMRES is a restarted GMRES solver with modified Gram-Schmidt
// orthogonalization, optional left preconditioning and optional row/column
// scaling. It is matrix-free (Iterative) by default; with
// Options.MatrixBacked it reads the operator from the matrix given to
// Setup (MatrixIterative).
type GMRES struct {
	n    int
	opts Options
	cat  linsol.Category

	// caller-owned bindings; never released here
	aCtx   any
	atimes linsol.ATimesFn
	pCtx   any
	psetup linsol.PSetupFn
	psolve linsol.PSolveFn
	s1, s2 linsol.Vector
	mat    linsol.Matrix

	// handle-owned workspace, allocated by Initialize
	basis    []linsol.Vector // maxl+1 Krylov vectors
	hes      [][]float64     // (maxl+1)×maxl Hessenberg
	cs, sn   []float64       // Givens rotations
	g        []float64       // least-squares right-hand side
	y        []float64
	xcor     linsol.Vector
	vtemp    linsol.Vector
	residual linsol.Vector

	numIters int
	resNorm  float64
	lastFlag int64
}

// NewGMRES returns a GMRES solver for n-dimensional systems.
func NewGMRES(n int, opts Options) (*GMRES, error) {
	if n < 1 {
		return nil, linsol.ErrBadDimension
	}
	cat := linsol.Iterative
	if opts.MatrixBacked {
		cat = linsol.MatrixIterative
	}
	return &GMRES{n: n, opts: opts.withDefaults(), cat: cat}, nil
}

func (s *GMRES) Type() linsol.Category { return s.cat }

// SetOperator binds the matrix-vector product used by matrix-free
// operation. A matrix-backed handle still accepts the binding; it is used
// until Setup supplies a matrix.
func (s *GMRES) SetOperator(ctx any, fn linsol.ATimesFn) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if fn == nil {
		return linsol.IllInput
	}
	s.aCtx, s.atimes = ctx, fn
	return linsol.Success
}

func (s *GMRES) SetPreconditioner(ctx any, setup linsol.PSetupFn, solve linsol.PSolveFn) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if solve == nil && setup != nil {
		return linsol.IllInput
	}
	s.pCtx, s.psetup, s.psolve = ctx, setup, solve
	return linsol.Success
}

func (s *GMRES) SetScalingVectors(s1, s2 linsol.Vector) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if (s1 != nil && len(s1) != s.n) || (s2 != nil && len(s2) != s.n) {
		return linsol.IllInput
	}
	s.s1, s.s2 = s1, s2
	return linsol.Success
}

// Initialize allocates the Krylov basis and least-squares workspace.
// Calling it again frees the old workspace by reallocation.
func (s *GMRES) Initialize() linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	maxl := s.opts.MaxKrylov
	s.basis = make([]linsol.Vector, maxl+1)
	for i := range s.basis {
		s.basis[i] = linsol.NewVector(s.n)
	}
	s.hes = make([][]float64, maxl+1)
	for i := range s.hes {
		s.hes[i] = make([]float64, maxl)
	}
	s.cs = make([]float64, maxl)
	s.sn = make([]float64, maxl)
	s.g = make([]float64, maxl+1)
	s.y = make([]float64, maxl)
	s.xcor = linsol.NewVector(s.n)
	s.vtemp = linsol.NewVector(s.n)
	s.residual = linsol.NewVector(s.n)
	s.numIters = 0
	s.resNorm = 0
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

// Setup binds a matrix operator (matrix-backed handles) and refreshes the
// preconditioner. A is ignored by matrix-free handles.
func (s *GMRES) Setup(A linsol.Matrix) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if s.cat == linsol.MatrixIterative && A != nil {
		if A.Rows() != s.n || A.Cols() != s.n {
			s.lastFlag = int64(linsol.IllInput)
			return linsol.IllInput
		}
		s.mat = A
	}
	if s.psetup != nil {
		if st := s.psetup(s.pCtx); !st.OK() {
			mapped := mapPSetup(st)
			s.lastFlag = int64(mapped)
			return mapped
		}
	}
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

// applyATimes computes z = A*v through whichever operator is bound.
func (s *GMRES) applyATimes(v, z linsol.Vector) linsol.Status {
	if s.cat == linsol.MatrixIterative && s.mat != nil {
		if err := s.mat.MatVec(v, z); err != nil {
			return linsol.ATimesFailUnrec
		}
		return linsol.Success
	}
	if s.atimes == nil {
		return linsol.IllInput
	}
	if st := s.atimes(s.aCtx, v, z); !st.OK() {
		return mapATimes(st)
	}
	return linsol.Success
}

// applyOp computes z = S1·P⁻¹·A·S2⁻¹·v, the operator of the transformed
// system GMRES actually iterates on.
func (s *GMRES) applyOp(v, z linsol.Vector) linsol.Status {
	in := v
	if s.s2 != nil {
		for i := range v {
			s.vtemp[i] = v[i] / s.s2[i]
		}
		in = s.vtemp
	}
	if st := s.applyATimes(in, z); !st.OK() {
		return st
	}
	if s.psolve != nil {
		s.vtemp.CopyFrom(z)
		if st := s.psolve(s.pCtx, s.vtemp, z, 0, linsol.PrecLeft); !st.OK() {
			return mapPSolve(st)
		}
	}
	z.ScaleBy(s.s1)
	return linsol.Success
}

// scaledResidual fills r with S1·P⁻¹·(b − A·x) and returns its norm.
func (s *GMRES) scaledResidual(x, b, r linsol.Vector) (float64, linsol.Status) {
	if st := s.applyATimes(x, r); !st.OK() {
		return 0, st
	}
	for i := range r {
		r[i] = b[i] - r[i]
	}
	if s.psolve != nil {
		s.vtemp.CopyFrom(r)
		if st := s.psolve(s.pCtx, s.vtemp, r, 0, linsol.PrecLeft); !st.OK() {
			return 0, mapPSolve(st)
		}
	}
	r.ScaleBy(s.s1)
	return r.Norm(), linsol.Success
}

// Solve runs restarted GMRES on the transformed system. x is both the
// initial guess and the result; on recoverable failures it holds the best
// correction found so far.
func (s *GMRES) Solve(A linsol.Matrix, x, b linsol.Vector, tol float64) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if s.basis == nil {
		return linsol.MemFail
	}
	if len(x) != s.n || len(b) != s.n {
		s.lastFlag = int64(linsol.IllInput)
		return linsol.IllInput
	}
	if s.cat == linsol.MatrixIterative && A != nil {
		s.mat = A
	}
	if s.cat != linsol.MatrixIterative && s.atimes == nil {
		s.lastFlag = int64(linsol.IllInput)
		return linsol.IllInput
	}

	maxl := s.opts.MaxKrylov
	s.numIters = 0

	beta0 := 0.0
	rho := math.Inf(1)
	improved := false

	for cycle := 0; cycle <= s.opts.MaxRestarts; cycle++ {
		r := s.basis[0]
		norm, st := s.scaledResidual(x, b, r)
		if !st.OK() {
			s.lastFlag = int64(st)
			return st
		}
		s.residual.CopyFrom(r)
		s.resNorm = norm
		if cycle == 0 {
			beta0 = norm
		}
		if norm <= tol {
			s.lastFlag = int64(linsol.Success)
			return linsol.Success
		}
		r.Scale(1 / norm)
		s.g[0] = norm
		for i := 1; i < len(s.g); i++ {
			s.g[i] = 0
		}

		k := 0
		for i := 0; i < maxl; i++ {
			if st := s.applyOp(s.basis[i], s.basis[i+1]); !st.OK() {
				s.lastFlag = int64(st)
				return st
			}
			// Modified Gram-Schmidt against the existing basis.
			w := s.basis[i+1]
			for j := 0; j <= i; j++ {
				h := w.Dot(s.basis[j])
				s.hes[j][i] = h
				w.AXPY(-h, s.basis[j])
			}
			hN := w.Norm()
			s.hes[i+1][i] = hN

			// Fold the new column into the QR of the Hessenberg system.
			for j := 0; j < i; j++ {
				t := s.cs[j]*s.hes[j][i] + s.sn[j]*s.hes[j+1][i]
				s.hes[j+1][i] = -s.sn[j]*s.hes[j][i] + s.cs[j]*s.hes[j+1][i]
				s.hes[j][i] = t
			}
			denom := math.Hypot(s.hes[i][i], s.hes[i+1][i])
			if denom == 0 {
				s.lastFlag = int64(linsol.QRFactFail)
				return linsol.QRFactFail
			}
			s.cs[i] = s.hes[i][i] / denom
			s.sn[i] = s.hes[i+1][i] / denom
			s.hes[i][i] = denom
			s.hes[i+1][i] = 0
			s.g[i+1] = -s.sn[i] * s.g[i]
			s.g[i] *= s.cs[i]

			s.numIters++
			k = i + 1
			rho = math.Abs(s.g[i+1])
			s.resNorm = rho
			if rho < beta0 {
				improved = true
			}
			if rho <= tol {
				break
			}
			if hN == 0 {
				// Exact breakdown without convergence: the subspace is
				// exhausted, restart from the true residual.
				break
			}
			w.Scale(1 / hN)
		}

		// Back-substitute the triangular least-squares system and apply
		// the correction in the unscaled solution space.
		if st := s.applyCorrection(x, k); !st.OK() {
			s.lastFlag = int64(st)
			return st
		}
		if rho <= tol {
			s.lastFlag = int64(linsol.Success)
			return linsol.Success
		}
	}

	if improved {
		s.lastFlag = int64(linsol.ResReduced)
		return linsol.ResReduced
	}
	s.lastFlag = int64(linsol.ConvFail)
	return linsol.ConvFail
}

func (s *GMRES) applyCorrection(x linsol.Vector, k int) linsol.Status {
	if k == 0 {
		return linsol.Success
	}
	for i := k - 1; i >= 0; i-- {
		sum := s.g[i]
		for j := i + 1; j < k; j++ {
			sum -= s.hes[i][j] * s.y[j]
		}
		diag := s.hes[i][i]
		if diag == 0 {
			return linsol.QRSolFail
		}
		s.y[i] = sum / diag
	}
	s.xcor.Zero()
	for j := 0; j < k; j++ {
		s.xcor.AXPY(s.y[j], s.basis[j])
	}
	if s.s2 != nil {
		for i := range s.xcor {
			s.xcor[i] /= s.s2[i]
		}
	}
	x.AXPY(1, s.xcor)
	if !x.IsValid() {
		return linsol.VectorOpErr
	}
	return linsol.Success
}

func (s *GMRES) NumIters() int    { return s.numIters }
func (s *GMRES) ResNorm() float64 { return s.resNorm }

// Resid returns the scaled preconditioned residual captured at the start
// of the last restart cycle.
func (s *GMRES) Resid() linsol.Vector { return s.residual }

func (s *GMRES) LastFlag() int64 { return s.lastFlag }

func (s *GMRES) Space() (int64, int64) {
	if s.basis == nil {
		return 0, 0
	}
	maxl := int64(s.opts.MaxKrylov)
	lrw := (maxl+1)*int64(s.n) + // basis
		(maxl+1)*maxl + // Hessenberg
		4*maxl + 1 + // rotations, rhs, y
		3*int64(s.n) // xcor, vtemp, residual
	return lrw, 0
}

func (s *GMRES) Free() linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	s.basis = nil
	s.hes = nil
	s.cs, s.sn, s.g, s.y = nil, nil, nil, nil
	s.xcor, s.vtemp, s.residual = nil, nil, nil
	return linsol.Success
}
