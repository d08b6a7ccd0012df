package krylov

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/matrix"
	"github.com/san-kum/linsolve/internal/precond"
	"github.com/san-kum/linsolve/internal/problem"
)

func identityATimes(ctx any, v, z linsol.Vector) linsol.Status {
	z.CopyFrom(v)
	return linsol.Success
}

func TestGMRESIdentity(t *testing.T) {
	g := NewWithT(t)

	s, err := NewGMRES(3, Options{MaxKrylov: 5})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Type()).To(Equal(linsol.Iterative))

	g.Expect(s.SetOperator(nil, identityATimes).OK()).To(BeTrue())
	g.Expect(s.Initialize().OK()).To(BeTrue())
	g.Expect(s.Setup(nil).OK()).To(BeTrue())

	b := linsol.Vector{1, 2, 3}
	x := linsol.NewVector(3)
	st := s.Solve(nil, x, b, 1e-10)

	g.Expect(st).To(Equal(linsol.Success))
	g.Expect(x[0]).To(BeNumerically("~", 1, 1e-9))
	g.Expect(x[1]).To(BeNumerically("~", 2, 1e-9))
	g.Expect(x[2]).To(BeNumerically("~", 3, 1e-9))
	g.Expect(s.NumIters()).To(BeNumerically("<=", 5))
	g.Expect(s.ResNorm()).To(BeNumerically("<", 1e-10))
}

func TestGMRESLaplace(t *testing.T) {
	g := NewWithT(t)

	p := problem.NewLaplace1D(40)
	s, err := NewGMRES(p.Dim(), Options{MaxKrylov: 40, MaxRestarts: 5})
	g.Expect(err).NotTo(HaveOccurred())

	ctx, fn := p.ATimes()
	s.SetOperator(ctx, fn)
	s.Initialize()
	s.Setup(nil)

	x := linsol.NewVector(p.Dim())
	st := s.Solve(nil, x, p.RHS(), 1e-9)
	g.Expect(st).To(Equal(linsol.Success))

	want := p.Solution()
	for i := range x {
		g.Expect(x[i]).To(BeNumerically("~", want[i], 1e-5))
	}
}

func TestGMRESPreconditioned(t *testing.T) {
	g := NewWithT(t)

	p := problem.NewConvDiff1D(60, 1.5)
	s, _ := NewGMRES(p.Dim(), Options{MaxKrylov: 60, MaxRestarts: 5})

	ctx, fn := p.ATimes()
	s.SetOperator(ctx, fn)
	j, err := precond.NewJacobi(p.Diagonal())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(j.Bind(s)).To(Equal(linsol.Success))

	s.Initialize()
	g.Expect(s.Setup(nil)).To(Equal(linsol.Success))

	x := linsol.NewVector(p.Dim())
	st := s.Solve(nil, x, p.RHS(), 1e-9)
	g.Expect(st).To(Equal(linsol.Success))

	want := p.Solution()
	for i := range x {
		g.Expect(x[i]).To(BeNumerically("~", want[i], 1e-4))
	}
}

func TestGMRESScaled(t *testing.T) {
	g := NewWithT(t)

	p := problem.NewLaplace1D(30)
	s, _ := NewGMRES(p.Dim(), Options{MaxKrylov: 30, MaxRestarts: 5})

	ctx, fn := p.ATimes()
	s.SetOperator(ctx, fn)
	s1 := linsol.NewVector(p.Dim())
	s2 := linsol.NewVector(p.Dim())
	for i := range s1 {
		s1[i] = 0.5
		s2[i] = 2.0
	}
	g.Expect(s.SetScalingVectors(s1, s2)).To(Equal(linsol.Success))

	s.Initialize()
	s.Setup(nil)

	x := linsol.NewVector(p.Dim())
	st := s.Solve(nil, x, p.RHS(), 1e-10)
	g.Expect(st).To(Equal(linsol.Success))

	want := p.Solution()
	for i := range x {
		g.Expect(x[i]).To(BeNumerically("~", want[i], 1e-5))
	}
}

func TestGMRESOperatorFailureUnrecoverable(t *testing.T) {
	g := NewWithT(t)

	p := problem.NewFlaky(problem.NewLaplace1D(10), 0, linsol.Status(-1))
	s, _ := NewGMRES(p.Dim(), Options{MaxKrylov: 10})
	ctx, fn := p.ATimes()
	s.SetOperator(ctx, fn)
	s.Initialize()
	s.Setup(nil)

	x := linsol.NewVector(p.Dim())
	st := s.Solve(nil, x, p.RHS(), 1e-8)
	// The specific operator code, never a generic illegal-input.
	g.Expect(st).To(Equal(linsol.ATimesFailUnrec))
	g.Expect(s.LastFlag()).To(Equal(int64(linsol.ATimesFailUnrec)))
}

func TestGMRESOperatorFailureRecoverable(t *testing.T) {
	g := NewWithT(t)

	p := problem.NewFlaky(problem.NewLaplace1D(10), 3, linsol.Status(1))
	s, _ := NewGMRES(p.Dim(), Options{MaxKrylov: 10})
	ctx, fn := p.ATimes()
	s.SetOperator(ctx, fn)
	s.Initialize()
	s.Setup(nil)

	x := linsol.NewVector(p.Dim())
	st := s.Solve(nil, x, p.RHS(), 1e-8)
	g.Expect(st).To(Equal(linsol.ATimesFailRec))
	g.Expect(st.Recoverable()).To(BeTrue())
}

func TestGMRESNonConvergence(t *testing.T) {
	g := NewWithT(t)

	p := problem.NewLaplace1D(80)
	s, _ := NewGMRES(p.Dim(), Options{MaxKrylov: 3, MaxRestarts: 0})
	ctx, fn := p.ATimes()
	s.SetOperator(ctx, fn)
	s.Initialize()
	s.Setup(nil)

	x := linsol.NewVector(p.Dim())
	st := s.Solve(nil, x, p.RHS(), 1e-14)
	g.Expect(st.Recoverable()).To(BeTrue(), "truncated solve must be recoverable, got %s", st)
	// Best-effort solution must still be usable.
	g.Expect(x.IsValid()).To(BeTrue())
	g.Expect(s.NumIters()).To(Equal(3))
}

func TestGMRESMatrixBacked(t *testing.T) {
	g := NewWithT(t)

	p := problem.NewLaplace1D(25)
	s, _ := NewGMRES(p.Dim(), Options{MaxKrylov: 25, MaxRestarts: 5, MatrixBacked: true})
	g.Expect(s.Type()).To(Equal(linsol.MatrixIterative))

	s.Initialize()
	g.Expect(s.Setup(p.Matrix())).To(Equal(linsol.Success))

	x := linsol.NewVector(p.Dim())
	st := s.Solve(p.Matrix(), x, p.RHS(), 1e-9)
	g.Expect(st).To(Equal(linsol.Success))

	want := p.Solution()
	for i := range x {
		g.Expect(x[i]).To(BeNumerically("~", want[i], 1e-5))
	}
	g.Expect(s.Type()).To(Equal(linsol.MatrixIterative))
}

func TestGMRESMissingOperator(t *testing.T) {
	g := NewWithT(t)

	s, _ := NewGMRES(4, Options{})
	s.Initialize()
	x, b := linsol.NewVector(4), linsol.NewVector(4)
	g.Expect(s.Solve(nil, x, b, 1e-8)).To(Equal(linsol.IllInput))
}

func TestGMRESSolveBeforeInitialize(t *testing.T) {
	g := NewWithT(t)

	s, _ := NewGMRES(4, Options{})
	s.SetOperator(nil, identityATimes)
	x, b := linsol.NewVector(4), linsol.NewVector(4)
	g.Expect(s.Solve(nil, x, b, 1e-8)).To(Equal(linsol.MemFail))
}

func TestGMRESWorkspaceStable(t *testing.T) {
	g := NewWithT(t)

	p := problem.NewLaplace1D(20)
	s, _ := NewGMRES(p.Dim(), Options{MaxKrylov: 20, MaxRestarts: 2})
	ctx, fn := p.ATimes()
	s.SetOperator(ctx, fn)
	s.Initialize()

	x := linsol.NewVector(p.Dim())
	s.Setup(nil)
	s.Solve(nil, x, p.RHS(), 1e-9)
	rw0, iw0 := s.Space()

	for i := 0; i < 20; i++ {
		x.Zero()
		g.Expect(s.Setup(nil).OK()).To(BeTrue())
		g.Expect(s.Solve(nil, x, p.RHS(), 1e-9).OK()).To(BeTrue())
	}
	rw, iw := s.Space()
	g.Expect(rw).To(Equal(rw0))
	g.Expect(iw).To(Equal(iw0))
}

func TestGMRESFree(t *testing.T) {
	g := NewWithT(t)

	s, _ := NewGMRES(6, Options{})
	s.Initialize()
	g.Expect(s.Free()).To(Equal(linsol.Success))
	rw, iw := s.Space()
	g.Expect(rw).To(BeZero())
	g.Expect(iw).To(BeZero())
	g.Expect(s.Free()).To(Equal(linsol.Success))
}

func TestGMRESSetupMatrixDimensionMismatch(t *testing.T) {
	g := NewWithT(t)

	s, _ := NewGMRES(5, Options{MatrixBacked: true})
	s.Initialize()
	wrong, err := matrix.Identity(4)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Setup(wrong)).To(Equal(linsol.IllInput))
}
