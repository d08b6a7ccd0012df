// Package direct implements the Direct-category solver backends: LU
// factorization with partial pivoting over dense and banded operators.
//
// Direct handles reject operator, preconditioner and scaling bindings
// (illegal input for the category) and ignore the solve tolerance; the
// factorization computed in Setup serves every subsequent Solve until the
// next Setup.
package direct
