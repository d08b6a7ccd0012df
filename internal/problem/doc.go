// Package problem provides the linear system generators the driver, CLI
// and tests run solvers against:
//
//   - [Identity]: trivial smoke-test operator
//   - [Laplace1D]: SPD tridiagonal Poisson stencil
//   - [ConvDiff1D]: nonsymmetric convection-diffusion stencil
//   - [Flaky]: operator wrapper that fails on demand, for exercising the
//     callback-failure status paths
//
// Each problem carries a known reference solution; b is built as A·x* so
// solve error is directly measurable.
package problem
