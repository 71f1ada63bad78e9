package core

import "fmt"

// Field represents a prime field with canonical uint64 residues.
//
// All values passed to and returned from the arithmetic methods are
// canonical, i.e. in the range [0, Modulus()). The concrete fields are the
// four primes used by the proving pipeline: BabyBear, KoalaBear, Mersenne31
// and Goldilocks.
type Field interface {
	// Name returns the canonical field name.
	Name() string

	// Modulus returns the prime p.
	Modulus() uint64

	// Add performs field addition.
	Add(a, b uint64) uint64

	// Sub performs field subtraction.
	Sub(a, b uint64) uint64

	// Mul performs field multiplication.
	Mul(a, b uint64) uint64

	// Neg returns the additive inverse.
	Neg(a uint64) uint64

	// Inv returns the multiplicative inverse. Inv(0) is defined as 0.
	Inv(a uint64) uint64

	// Exp raises base to the given power.
	Exp(base, exp uint64) uint64

	// FromUint64 reduces an arbitrary uint64 into the field.
	FromUint64(v uint64) uint64

	// TwoAdicity returns the largest k such that 2^k divides p-1.
	TwoAdicity() int

	// Generator returns a generator of the multiplicative group.
	Generator() uint64

	// ExtensionDegree returns the degree of the associated binomial
	// extension used as the challenge field.
	ExtensionDegree() int

	// ExtensionNonResidue returns w such that x^d - w is irreducible,
	// where d is the extension degree.
	ExtensionNonResidue() uint64
}

// IsTwoAdic reports whether the field supports radix-2 FFTs of useful size.
// Mersenne31 has two-adicity 1 and is handled by the circle PCS instead.
func IsTwoAdic(f Field) bool {
	return f.TwoAdicity() >= 2
}

// RootOfUnity returns a generator of the order 2^logN subgroup of the
// multiplicative group.
func RootOfUnity(f Field, logN int) (uint64, error) {
	if logN < 0 || logN > f.TwoAdicity() {
		return 0, fmt.Errorf("field %s has two-adicity %d, cannot build a 2^%d subgroup",
			f.Name(), f.TwoAdicity(), logN)
	}
	exp := (f.Modulus() - 1) >> uint(logN)
	return f.Exp(f.Generator(), exp), nil
}

// BatchInv inverts a slice of field elements using Montgomery's trick.
// Zero entries are passed through as zero.
func BatchInv(f Field, values []uint64) []uint64 {
	n := len(values)
	out := make([]uint64, n)
	prefix := make([]uint64, n)
	acc := uint64(1)
	for i, v := range values {
		prefix[i] = acc
		if v != 0 {
			acc = f.Mul(acc, v)
		}
	}
	inv := f.Inv(acc)
	for i := n - 1; i >= 0; i-- {
		if values[i] == 0 {
			continue
		}
		out[i] = f.Mul(inv, prefix[i])
		inv = f.Mul(inv, values[i])
	}
	return out
}

// FieldByName resolves a field from its canonical name.
func FieldByName(name string) (Field, error) {
	switch name {
	case "baby-bear":
		return NewBabyBear(), nil
	case "koala-bear":
		return NewKoalaBear(), nil
	case "mersenne-31":
		return NewMersenne31(), nil
	case "goldilocks":
		return NewGoldilocks(), nil
	default:
		return nil, fmt.Errorf("unknown field %q", name)
	}
}
