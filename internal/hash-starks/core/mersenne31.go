package core

// Mersenne31P is the Mersenne prime 2^31 - 1.
const Mersenne31P uint64 = (1 << 31) - 1

// mersenne31 implements Field for p = 2^31 - 1. The multiplicative group has
// order 2 * (2^30 - 1), so the field has two-adicity 1 and is served by the
// circle PCS rather than a radix-2 DFT. The challenge field is the cubic
// extension x^3 - 5.
type mersenne31 struct{}

// NewMersenne31 returns the Mersenne31 field.
func NewMersenne31() Field { return mersenne31{} }

func (mersenne31) Name() string    { return "mersenne-31" }
func (mersenne31) Modulus() uint64 { return Mersenne31P }

func (mersenne31) Add(a, b uint64) uint64 {
	s := a + b
	if s >= Mersenne31P {
		s -= Mersenne31P
	}
	return s
}

func (mersenne31) Sub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + Mersenne31P - b
}

func (mersenne31) Mul(a, b uint64) uint64 {
	// 62-bit product; fold the high bits back using 2^31 = 1 (mod p).
	t := a * b
	t = (t >> 31) + (t & Mersenne31P)
	if t >= Mersenne31P {
		t -= Mersenne31P
	}
	return t
}

func (f mersenne31) Neg(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return Mersenne31P - a
}

func (f mersenne31) Exp(base, exp uint64) uint64 {
	result := uint64(1)
	b := base % Mersenne31P
	for exp > 0 {
		if exp&1 == 1 {
			result = f.Mul(result, b)
		}
		b = f.Mul(b, b)
		exp >>= 1
	}
	return result
}

func (f mersenne31) Inv(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return f.Exp(a, Mersenne31P-2)
}

func (mersenne31) FromUint64(v uint64) uint64 { return v % Mersenne31P }

func (mersenne31) TwoAdicity() int { return 1 }

// Generator returns 7, a primitive root modulo 2^31 - 1.
func (mersenne31) Generator() uint64 { return 7 }

func (mersenne31) ExtensionDegree() int        { return 3 }
func (mersenne31) ExtensionNonResidue() uint64 { return 5 }
