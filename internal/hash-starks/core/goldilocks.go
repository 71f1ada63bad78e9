package core

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/field/goldilocks"
)

// GoldilocksP is the Goldilocks prime 2^64 - 2^32 + 1.
const GoldilocksP uint64 = 0xFFFFFFFF00000001

// goldilocksField implements Field on top of the gnark-crypto goldilocks
// element, which carries the Montgomery-form arithmetic. Canonical residues
// cross the boundary through SetUint64 / Bytes.
type goldilocksField struct{}

// NewGoldilocks returns the Goldilocks field, p = 2^64 - 2^32 + 1. The
// multiplicative group has two-adicity 32; the challenge field is the
// quadratic extension x^2 - 7.
func NewGoldilocks() Field { return goldilocksField{} }

func (goldilocksField) Name() string    { return "goldilocks" }
func (goldilocksField) Modulus() uint64 { return GoldilocksP }

func glElem(v uint64) goldilocks.Element {
	var e goldilocks.Element
	e.SetUint64(v)
	return e
}

func glUint64(e goldilocks.Element) uint64 {
	b := e.Bytes()
	return binary.BigEndian.Uint64(b[:])
}

func (goldilocksField) Add(a, b uint64) uint64 {
	ea, eb := glElem(a), glElem(b)
	ea.Add(&ea, &eb)
	return glUint64(ea)
}

func (goldilocksField) Sub(a, b uint64) uint64 {
	ea, eb := glElem(a), glElem(b)
	ea.Sub(&ea, &eb)
	return glUint64(ea)
}

func (goldilocksField) Mul(a, b uint64) uint64 {
	ea, eb := glElem(a), glElem(b)
	ea.Mul(&ea, &eb)
	return glUint64(ea)
}

func (goldilocksField) Neg(a uint64) uint64 {
	ea := glElem(a)
	ea.Neg(&ea)
	return glUint64(ea)
}

func (goldilocksField) Inv(a uint64) uint64 {
	if a%GoldilocksP == 0 {
		return 0
	}
	ea := glElem(a)
	ea.Inverse(&ea)
	return glUint64(ea)
}

func (f goldilocksField) Exp(base, exp uint64) uint64 {
	result := glElem(1)
	b := glElem(base)
	for exp > 0 {
		if exp&1 == 1 {
			result.Mul(&result, &b)
		}
		b.Mul(&b, &b)
		exp >>= 1
	}
	return glUint64(result)
}

func (goldilocksField) FromUint64(v uint64) uint64 {
	return glUint64(glElem(v))
}

func (goldilocksField) TwoAdicity() int { return 32 }

// Generator returns 7, a primitive root modulo 2^64 - 2^32 + 1.
func (goldilocksField) Generator() uint64 { return 7 }

func (goldilocksField) ExtensionDegree() int        { return 2 }
func (goldilocksField) ExtensionNonResidue() uint64 { return 7 }
