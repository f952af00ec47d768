// Package matrix provides the dense numeric substrate for the ann package,
// built on gonum's mat types.
//
// The ann package stores every layer as a *mat.Dense whose rows cover the
// layer's input dimension plus one trailing bias row and whose columns cover
// the output dimension. The helpers here are the handful of operations the
// training core needs on top of gonum: matrix-vector products in both
// orientations with plain-slice results, and in-place accumulation with
// strict shape checking.
package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MulVec computes m @ v and returns the result as a plain slice.
//
// The vector length must equal the matrix column count; anything else is a
// contract violation and panics.
func MulVec(m *mat.Dense, v []float64) []float64 {
	r, c := m.Dims()
	if len(v) != c {
		panic(fmt.Sprintf("matrix: MulVec shape mismatch: matrix is %dx%d, vector has length %d", r, c, len(v)))
	}

	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(len(v), v))
	return out.RawVector().Data
}

// TransposeMulVec computes m.T @ v and returns the result as a plain slice.
//
// The vector length must equal the matrix row count; anything else is a
// contract violation and panics.
func TransposeMulVec(m *mat.Dense, v []float64) []float64 {
	r, c := m.Dims()
	if len(v) != r {
		panic(fmt.Sprintf("matrix: TransposeMulVec shape mismatch: matrix is %dx%d, vector has length %d", r, c, len(v)))
	}

	var out mat.VecDense
	out.MulVec(m.T(), mat.NewVecDense(len(v), v))
	return out.RawVector().Data
}

// AddInPlace adds src into dst entrywise.
//
// Both matrices must have identical dimensions; a mismatch panics rather
// than truncating or padding.
func AddInPlace(dst, src *mat.Dense) {
	if !SameDims(dst, src) {
		dr, dc := dst.Dims()
		sr, sc := src.Dims()
		panic(fmt.Sprintf("matrix: AddInPlace shape mismatch: %dx%d vs %dx%d", dr, dc, sr, sc))
	}
	dst.Add(dst, src)
}

// SameDims reports whether a and b have identical dimensions.
func SameDims(a, b *mat.Dense) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}
