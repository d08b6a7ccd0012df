package matrix

import (
	"fmt"
	"strings"

	"github.com/san-kum/linsolve/internal/linsol"
)

// Dense is a row-major dense matrix implementing linsol.Matrix.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense returns a zero rows×cols matrix.
func NewDense(rows, cols int) (*Dense, error) {
	if rows < 1 || cols < 1 {
		return nil, linsol.ErrBadDimension
	}
	return &Dense{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}, nil
}

// FromRows builds a Dense from row slices. All rows must share a length.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, linsol.ErrBadDimension
	}
	m, err := NewDense(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if len(r) != m.cols {
			return nil, linsol.ErrBadDimension
		}
		copy(m.data[i*m.cols:(i+1)*m.cols], r)
	}
	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.Set(i, i, 1.0)
	}
	return m, nil
}

func (m *Dense) Rows() int { return m.rows }
func (m *Dense) Cols() int { return m.cols }

func (m *Dense) Get(i, j int) float64 { return m.data[i*m.cols+j] }

func (m *Dense) Set(i, j int, v float64) { m.data[i*m.cols+j] = v }

func (m *Dense) Add(i, j int, v float64) { m.data[i*m.cols+j] += v }

// Row returns a mutable view of row i.
func (m *Dense) Row(i int) []float64 { return m.data[i*m.cols : (i+1)*m.cols] }

func (m *Dense) IsSquare() bool { return m.rows == m.cols }

func (m *Dense) Clone() *Dense {
	c := &Dense{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	copy(c.data, m.data)
	return c
}

func (m *Dense) Zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// SwapRows exchanges rows i and j in place.
func (m *Dense) SwapRows(i, j int) {
	if i == j {
		return
	}
	ri, rj := m.Row(i), m.Row(j)
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// MatVec computes z = A*v.
func (m *Dense) MatVec(v, z linsol.Vector) error {
	if len(v) != m.cols || len(z) != m.rows {
		return linsol.ErrDimensionMismatch
	}
	for i := 0; i < m.rows; i++ {
		row := m.Row(i)
		sum := 0.0
		for j, a := range row {
			sum += a * v[j]
		}
		z[i] = sum
	}
	return nil
}

func (m *Dense) String() string {
	var b strings.Builder
	for i := 0; i < m.rows; i++ {
		fmt.Fprintf(&b, "%v\n", m.Row(i))
	}
	return b.String()
}
