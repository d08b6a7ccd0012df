package direct

import (
	"math"
	"testing"

	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/matrix"
)

func laplaceDense(t *testing.T, n int) *matrix.Dense {
	t.Helper()
	band, err := matrix.Tridiagonal(n, -1, 2, -1)
	if err != nil {
		t.Fatal(err)
	}
	d, err := matrix.Densify(band)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func rampRHS(t *testing.T, A linsol.Matrix, n int) (linsol.Vector, linsol.Vector) {
	t.Helper()
	want := linsol.NewVector(n)
	for i := range want {
		want[i] = float64(i + 1)
	}
	b := linsol.NewVector(n)
	if err := A.MatVec(want, b); err != nil {
		t.Fatal(err)
	}
	return want, b
}

func TestDenseSolve(t *testing.T) {
	n := 10
	A := laplaceDense(t, n)
	want, b := rampRHS(t, A, n)

	s, err := NewDense(n)
	if err != nil {
		t.Fatal(err)
	}
	if st := s.Initialize(); !st.OK() {
		t.Fatalf("initialize: %s", st)
	}
	if st := s.Setup(A); !st.OK() {
		t.Fatalf("setup: %s", st)
	}
	x := linsol.NewVector(n)
	if st := s.Solve(A, x, b, 0); !st.OK() {
		t.Fatalf("solve: %s", st)
	}
	for i := range x {
		if math.Abs(x[i]-want[i]) > 1e-9 {
			t.Fatalf("x[%d] = %f, want %f", i, x[i], want[i])
		}
	}
}

func TestBandSolve(t *testing.T) {
	n := 30
	A, err := matrix.Tridiagonal(n, -1, 2, -1)
	if err != nil {
		t.Fatal(err)
	}
	want, b := rampRHS(t, A, n)

	s, err := NewBand(n, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.Initialize()
	if st := s.Setup(A); !st.OK() {
		t.Fatalf("setup: %s", st)
	}
	x := linsol.NewVector(n)
	if st := s.Solve(A, x, b, 0); !st.OK() {
		t.Fatalf("solve: %s", st)
	}
	for i := range x {
		if math.Abs(x[i]-want[i]) > 1e-8 {
			t.Fatalf("x[%d] = %f, want %f", i, x[i], want[i])
		}
	}
}

func TestBandSolveNeedsPivoting(t *testing.T) {
	// Zero leading diagonal entry forces a row swap at the first column.
	A, err := matrix.NewBand(3, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	A.Set(0, 0, 0)
	A.Set(0, 1, 1)
	A.Set(1, 0, 2)
	A.Set(1, 1, 1)
	A.Set(1, 2, 1)
	A.Set(2, 1, 1)
	A.Set(2, 2, 3)
	want, b := rampRHS(t, A, 3)

	s, _ := NewBand(3, 1, 1)
	s.Initialize()
	if st := s.Setup(A); !st.OK() {
		t.Fatalf("setup: %s", st)
	}
	x := linsol.NewVector(3)
	if st := s.Solve(A, x, b, 0); !st.OK() {
		t.Fatalf("solve: %s", st)
	}
	for i := range x {
		if math.Abs(x[i]-want[i]) > 1e-10 {
			t.Fatalf("x[%d] = %f, want %f", i, x[i], want[i])
		}
	}
}

func TestCategoryImmutable(t *testing.T) {
	s, _ := NewDense(4)
	if s.Type() != linsol.Direct {
		t.Fatal("dense solver must be direct category")
	}
	s.SetOperator(nil, func(any, linsol.Vector, linsol.Vector) linsol.Status { return linsol.Success })
	s.Initialize()
	s.Setup(laplaceDense(t, 4))
	x, b := linsol.NewVector(4), linsol.NewVector(4)
	b[0] = 1
	s.Solve(nil, x, b, 0)
	if s.Type() != linsol.Direct {
		t.Error("category changed during lifecycle")
	}
}

func TestDirectRejectsBindings(t *testing.T) {
	s, _ := NewDense(4)
	if st := s.SetOperator(nil, func(any, linsol.Vector, linsol.Vector) linsol.Status { return linsol.Success }); st != linsol.IllInput {
		t.Errorf("SetOperator: got %s, want illegal input", st)
	}
	if st := s.SetPreconditioner(nil, nil, func(any, linsol.Vector, linsol.Vector, float64, int) linsol.Status { return linsol.Success }); st != linsol.IllInput {
		t.Errorf("SetPreconditioner: got %s, want illegal input", st)
	}
	if st := s.SetScalingVectors(linsol.NewVector(4), nil); st != linsol.IllInput {
		t.Errorf("SetScalingVectors: got %s, want illegal input", st)
	}

	// Rejected bindings must leave the handle fully usable.
	A := laplaceDense(t, 4)
	want, b := rampRHS(t, A, 4)
	s.Initialize()
	if st := s.Setup(A); !st.OK() {
		t.Fatalf("setup after rejected bindings: %s", st)
	}
	x := linsol.NewVector(4)
	if st := s.Solve(A, x, b, 0); !st.OK() {
		t.Fatalf("solve after rejected bindings: %s", st)
	}
	if math.Abs(x[3]-want[3]) > 1e-10 {
		t.Error("solution corrupted by rejected bindings")
	}
}

func TestSolveBeforeInitialize(t *testing.T) {
	s, _ := NewDense(4)
	x, b := linsol.NewVector(4), linsol.NewVector(4)
	if st := s.Solve(nil, x, b, 0); st != linsol.MemFail {
		t.Errorf("got %s, want memory failure", st)
	}
	s.Initialize()
	// Initialized but never factored is the same documented failure.
	if st := s.Solve(nil, x, b, 0); st != linsol.MemFail {
		t.Errorf("got %s, want memory failure", st)
	}
}

func TestSingularMatrix(t *testing.T) {
	n := 3
	A, err := matrix.FromRows([][]float64{
		{1, 2, 3},
		{2, 4, 6}, // dependent row
		{1, 0, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, _ := NewDense(n)
	s.Initialize()
	st := s.Setup(A)
	if st != linsol.LUFactFail {
		t.Fatalf("got %s, want singular factorization", st)
	}
	if !st.Recoverable() {
		t.Error("singular factorization must be recoverable")
	}
	if s.LastFlag() <= 0 {
		t.Error("last flag should identify the failing column")
	}
}

func TestDiagnosticSentinels(t *testing.T) {
	n := 5
	A := laplaceDense(t, n)
	_, b := rampRHS(t, A, n)
	s, _ := NewDense(n)
	s.Initialize()
	s.Setup(A)
	x := linsol.NewVector(n)
	if st := s.Solve(A, x, b, 0); !st.OK() {
		t.Fatalf("solve: %s", st)
	}
	if s.NumIters() != 0 {
		t.Errorf("NumIters on direct solver: got %d, want sentinel 0", s.NumIters())
	}
	if s.ResNorm() != 0 {
		t.Errorf("ResNorm on direct solver: got %f, want sentinel 0", s.ResNorm())
	}
	if s.Resid() != nil {
		t.Error("Resid on direct solver should be nil")
	}
}

func TestWorkspaceStableAcrossCycles(t *testing.T) {
	n := 12
	A := laplaceDense(t, n)
	_, b := rampRHS(t, A, n)
	s, _ := NewDense(n)
	s.Initialize()

	s.Setup(A)
	x := linsol.NewVector(n)
	s.Solve(A, x, b, 0)
	rw0, iw0 := s.Space()

	for i := 0; i < 50; i++ {
		if st := s.Setup(A); !st.OK() {
			t.Fatalf("cycle %d setup: %s", i, st)
		}
		if st := s.Solve(A, x, b, 0); !st.OK() {
			t.Fatalf("cycle %d solve: %s", i, st)
		}
	}
	rw, iw := s.Space()
	if rw != rw0 || iw != iw0 {
		t.Errorf("workspace grew across cycles: (%d,%d) -> (%d,%d)", rw0, iw0, rw, iw)
	}
}

func TestFreeIdempotent(t *testing.T) {
	s, _ := NewDense(6)
	s.Initialize()
	if st := s.Free(); !st.OK() {
		t.Fatalf("free: %s", st)
	}
	if rw, iw := s.Space(); rw != 0 || iw != 0 {
		t.Error("workspace reported after free")
	}
	if st := s.Free(); !st.OK() {
		t.Errorf("second free: %s", st)
	}
}

func TestReinitializeDoesNotLeakState(t *testing.T) {
	n := 6
	A := laplaceDense(t, n)
	_, b := rampRHS(t, A, n)
	s, _ := NewDense(n)
	s.Initialize()
	s.Setup(A)

	// Re-initialization drops the factorization; Solve must refuse until
	// the next Setup rather than read stale workspace.
	s.Initialize()
	x := linsol.NewVector(n)
	if st := s.Solve(A, x, b, 0); st != linsol.MemFail {
		t.Errorf("got %s, want memory failure after re-initialize", st)
	}
}
