// Package dft provides radix-2 number-theoretic transforms over the two-adic
// fields, plus coset low-degree extensions of trace matrices. Mersenne31 has
// no useful two-adic subgroup and goes through the circle commitment layer
// instead.
package dft

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// TwoAdicDFT is a transform kernel bound to a two-adic field. All transforms
// map evaluations over the order-n subgroup, in natural order, to coefficients
// and back.
type TwoAdicDFT interface {
	// Name returns the kernel name as selected on the command line.
	Name() string

	// DFT maps coefficients to evaluations over the subgroup of matching
	// size. The input length must be a power of two.
	DFT(values []uint64) ([]uint64, error)

	// IDFT maps evaluations back to coefficients.
	IDFT(values []uint64) ([]uint64, error)

	// CosetLDEBatch extends every column of a matrix from the size-n
	// subgroup onto the coset shift*K of the subgroup K of size
	// n << logBlowup, in natural order.
	CosetLDEBatch(m *core.Matrix, logBlowup int, shift uint64) (*core.Matrix, error)
}

// ByName resolves a kernel for the field. Recognized names are "parallel" and
// "recursive".
func ByName(name string, f core.Field) (TwoAdicDFT, error) {
	if !core.IsTwoAdic(f) {
		return nil, fmt.Errorf("field %s has no two-adic subgroup to transform over", f.Name())
	}
	switch name {
	case "parallel":
		return NewParallel(f), nil
	case "recursive":
		return NewRecursive(f), nil
	default:
		return nil, fmt.Errorf("unknown dft kernel %q", name)
	}
}

func bitReverse(x, bits int) int {
	out := 0
	for i := 0; i < bits; i++ {
		out = (out << 1) | (x & 1)
		x >>= 1
	}
	return out
}

// fftInPlace runs an iterative Cooley-Tukey butterfly over data with the
// given order-n root. Input in natural order, output in natural order.
func fftInPlace(f core.Field, data []uint64, root uint64) {
	n := len(data)
	if n <= 1 {
		return
	}
	logN := 0
	for (1 << logN) < n {
		logN++
	}
	for i := 0; i < n; i++ {
		j := bitReverse(i, logN)
		if i < j {
			data[i], data[j] = data[j], data[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		// Root of the size-subgroup.
		w := f.Exp(root, uint64(n/size))
		for start := 0; start < n; start += size {
			tw := uint64(1)
			for k := 0; k < half; k++ {
				u := data[start+k]
				v := f.Mul(data[start+k+half], tw)
				data[start+k] = f.Add(u, v)
				data[start+k+half] = f.Sub(u, v)
				tw = f.Mul(tw, w)
			}
		}
	}
}

// cosetLDEColumn lifts one column: interpolate, scale coefficients by powers
// of the shift, zero-pad and evaluate over the larger subgroup. The result is
// the evaluation over shift*K in natural order.
func cosetLDEColumn(d TwoAdicDFT, f core.Field, col []uint64, logBlowup int, shift uint64) ([]uint64, error) {
	coeffs, err := d.IDFT(col)
	if err != nil {
		return nil, err
	}
	extended := make([]uint64, len(col)<<uint(logBlowup))
	pow := uint64(1)
	for i, c := range coeffs {
		extended[i] = f.Mul(c, pow)
		pow = f.Mul(pow, shift)
	}
	return d.DFT(extended)
}
