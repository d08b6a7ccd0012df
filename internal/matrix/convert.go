package matrix

import "github.com/san-kum/linsolve/internal/linsol"

// Densify returns a dense copy of a stored matrix, so operators built in
// banded form can feed the dense direct backend.
func Densify(m linsol.Matrix) (*Dense, error) {
	switch t := m.(type) {
	case *Dense:
		return t.Clone(), nil
	case *Band:
		d, err := NewDense(t.Rows(), t.Cols())
		if err != nil {
			return nil, err
		}
		ml, mu := t.Bandwidths()
		for j := 0; j < t.Cols(); j++ {
			lo, hi := j-mu, j+ml
			if lo < 0 {
				lo = 0
			}
			if hi > t.Rows()-1 {
				hi = t.Rows() - 1
			}
			for i := lo; i <= hi; i++ {
				d.Set(i, j, t.Get(i, j))
			}
		}
		return d, nil
	}
	return nil, linsol.ErrBadDimension
}
