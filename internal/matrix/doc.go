// Package matrix provides the concrete operator storage formats consumed
// by the direct and matrix-backed iterative solvers:
//
//   - [Dense]: row-major dense storage with row views and swaps
//   - [Band]: column-major banded storage with pivot headroom for LU
//
// Both implement linsol.Matrix; direct solver backends type-assert to the
// concrete type for the element access factorization needs.
package matrix
