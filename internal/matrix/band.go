package matrix

import "github.com/san-kum/linsolve/internal/linsol"

// Band is an n×n banded matrix with ml sub-diagonals and mu
// super-diagonals. Columns are stored contiguously with smu ≥ mu rows of
// headroom above the main diagonal so an in-place banded LU has room for
// fill-in from partial pivoting.
type Band struct {
	n      int
	ml, mu int
	smu    int // storage upper bandwidth: min(n-1, mu+ml)
	ldim   int // column leading dimension: smu + ml + 1
	data   []float64
}

// NewBand returns a zero banded matrix of dimension n with the given
// bandwidths.
func NewBand(n, ml, mu int) (*Band, error) {
	if n < 1 || ml < 0 || mu < 0 || ml >= n || mu >= n {
		return nil, linsol.ErrBadDimension
	}
	smu := mu + ml
	if smu > n-1 {
		smu = n - 1
	}
	b := &Band{n: n, ml: ml, mu: mu, smu: smu, ldim: smu + ml + 1}
	b.data = make([]float64, n*b.ldim)
	return b, nil
}

func (b *Band) Rows() int { return b.n }
func (b *Band) Cols() int { return b.n }

// Bandwidths returns (ml, mu).
func (b *Band) Bandwidths() (int, int) { return b.ml, b.mu }

// index maps (i, j) into column-major band storage; caller guarantees the
// entry is inside the stored band.
func (b *Band) index(i, j int) int { return j*b.ldim + b.smu + i - j }

// InBand reports whether (i, j) lies inside the stored band, which
// includes the fill-in headroom above the logical super-diagonals.
func (b *Band) InBand(i, j int) bool {
	return i-j <= b.ml && j-i <= b.smu
}

func (b *Band) Get(i, j int) float64 {
	if !b.InBand(i, j) {
		return 0
	}
	return b.data[b.index(i, j)]
}

func (b *Band) Set(i, j int, v float64) {
	if b.InBand(i, j) {
		b.data[b.index(i, j)] = v
	}
}

// Col returns the stored column j as a slice of length ldim; entry (i, j)
// lives at offset smu+i-j.
func (b *Band) Col(j int) []float64 {
	return b.data[j*b.ldim : (j+1)*b.ldim]
}

func (b *Band) Clone() *Band {
	c := &Band{n: b.n, ml: b.ml, mu: b.mu, smu: b.smu, ldim: b.ldim}
	c.data = make([]float64, len(b.data))
	copy(c.data, b.data)
	return c
}

func (b *Band) Zero() {
	for i := range b.data {
		b.data[i] = 0
	}
}

// MatVec computes z = A*v over the stored band only.
func (b *Band) MatVec(v, z linsol.Vector) error {
	if len(v) != b.n || len(z) != b.n {
		return linsol.ErrDimensionMismatch
	}
	z.Zero()
	for j := 0; j < b.n; j++ {
		lo := j - b.mu
		if lo < 0 {
			lo = 0
		}
		hi := j + b.ml
		if hi > b.n-1 {
			hi = b.n - 1
		}
		for i := lo; i <= hi; i++ {
			z[i] += b.data[b.index(i, j)] * v[j]
		}
	}
	return nil
}

// Tridiagonal builds a Band with constant sub/main/super diagonals, the
// classic 1-D finite-difference stencil shape.
func Tridiagonal(n int, sub, diag, sup float64) (*Band, error) {
	b, err := NewBand(n, 1, 1)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		b.Set(i, i, diag)
		if i > 0 {
			b.Set(i, i-1, sub)
		}
		if i < n-1 {
			b.Set(i, i+1, sup)
		}
	}
	return b, nil
}
