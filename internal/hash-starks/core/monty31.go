package core

// monty31 carries the shared arithmetic for the two 31-bit Montgomery-style
// primes. Products of two canonical residues fit comfortably in a uint64, so
// reduction is a single modulo; no limb arithmetic is required.
type monty31 struct {
	name       string
	p          uint64
	generator  uint64
	twoAdicity int
	extDegree  int
	extResidue uint64
}

func (f *monty31) Name() string    { return f.name }
func (f *monty31) Modulus() uint64 { return f.p }

func (f *monty31) Add(a, b uint64) uint64 {
	s := a + b
	if s >= f.p {
		s -= f.p
	}
	return s
}

func (f *monty31) Sub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + f.p - b
}

func (f *monty31) Mul(a, b uint64) uint64 {
	return (a * b) % f.p
}

func (f *monty31) Neg(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return f.p - a
}

func (f *monty31) Exp(base, exp uint64) uint64 {
	result := uint64(1)
	b := base % f.p
	for exp > 0 {
		if exp&1 == 1 {
			result = f.Mul(result, b)
		}
		b = f.Mul(b, b)
		exp >>= 1
	}
	return result
}

func (f *monty31) Inv(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return f.Exp(a, f.p-2)
}

func (f *monty31) FromUint64(v uint64) uint64 { return v % f.p }

func (f *monty31) TwoAdicity() int             { return f.twoAdicity }
func (f *monty31) Generator() uint64           { return f.generator }
func (f *monty31) ExtensionDegree() int        { return f.extDegree }
func (f *monty31) ExtensionNonResidue() uint64 { return f.extResidue }

// NewBabyBear returns the BabyBear field, p = 2^31 - 2^27 + 1 = 15 * 2^27 + 1.
// The challenge field is the quartic extension x^4 - 11.
func NewBabyBear() Field {
	return &monty31{
		name:       "baby-bear",
		p:          2013265921,
		generator:  31,
		twoAdicity: 27,
		extDegree:  4,
		extResidue: 11,
	}
}

// NewKoalaBear returns the KoalaBear field, p = 2^31 - 2^24 + 1 = 127 * 2^24 + 1.
// The challenge field is the quartic extension x^4 - 3.
func NewKoalaBear() Field {
	return &monty31{
		name:       "koala-bear",
		p:          2130706433,
		generator:  3,
		twoAdicity: 24,
		extDegree:  4,
		extResidue: 3,
	}
}
