package airs

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// Blake3AIR proves the Blake3 7-round permutation, one permutation per row.
// Words are 32-bit and fully bit-decomposed: xors and rotations are inline
// expressions over bit columns, and each modular addition witnesses its
// output bits plus two half-word carries so every addition constraint stays
// an exact integer identity below the field modulus.
const (
	blakeWords         = 16
	blakeWordBits      = 32
	blakeHalfBits      = 16
	blakeRounds        = 7
	blakeCallsPerRound = 8

	// Per-G block: eight 32-bit output words plus eight carry columns.
	blakeGBlock = 264
)

var blakeGOffsets = struct {
	a1, d1, c1, b1, a2, d2, c2, b2     int
	carryA1, carryC1, carryA2, carryC2 int
}{
	a1: 0, carryA1: 32,
	d1: 34,
	c1: 66, carryC1: 98,
	b1: 100,
	a2: 132, carryA2: 164,
	d2: 166,
	c2: 198, carryC2: 230,
	b2: 232,
}

const (
	blakeMsgBase   = 0
	blakeStateBase = blakeWords * blakeWordBits
	blakeGBase     = 2 * blakeWords * blakeWordBits
	blakeAIRWidth  = blakeGBase + blakeRounds*blakeCallsPerRound*blakeGBlock
)

// blakeQuads lists the state indices of the eight G calls of a round: four
// column mixes then four diagonal mixes.
var blakeQuads = [8][4]int{
	{0, 4, 8, 12}, {1, 5, 9, 13}, {2, 6, 10, 14}, {3, 7, 11, 15},
	{0, 5, 10, 15}, {1, 6, 11, 12}, {2, 7, 8, 13}, {3, 4, 9, 14},
}

var blakeSigma = [16]int{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}

// blakeMsgSchedule[r][j] is the original message word feeding slot j in
// round r.
var blakeMsgSchedule = func() [blakeRounds][16]int {
	var s [blakeRounds][16]int
	for j := range s[0] {
		s[0][j] = j
	}
	for r := 1; r < blakeRounds; r++ {
		for j := 0; j < 16; j++ {
			s[r][j] = s[r-1][blakeSigma[j]]
		}
	}
	return s
}()

type Blake3AIR struct {
	field core.Field
}

// NewBlake3AIR returns the Blake3 permutation constraint system.
func NewBlake3AIR(f core.Field) *Blake3AIR {
	return &Blake3AIR{field: f}
}

func (a *Blake3AIR) Name() string          { return "blake3" }
func (a *Blake3AIR) Width() int            { return blakeAIRWidth }
func (a *Blake3AIR) PublicValueCount() int { return 0 }

func blakeBlockBase(round, call int) int {
	return blakeGBase + (round*blakeCallsPerRound+call)*blakeGBlock
}

// bitWord is a 32-bit word as column references.
type bitWord []core.ExtElem

func (a *Blake3AIR) Eval(b *Builder) {
	e := b.E
	one := e.One()

	colWord := func(base int) bitWord {
		return bitWord(b.Local[base : base+blakeWordBits])
	}

	// Message and initial state bits are boolean witnesses.
	msg := make([]bitWord, blakeWords)
	state := make([]bitWord, blakeWords)
	for w := 0; w < blakeWords; w++ {
		msg[w] = colWord(blakeMsgBase + w*blakeWordBits)
		state[w] = colWord(blakeStateBase + w*blakeWordBits)
		for i := 0; i < blakeWordBits; i++ {
			b.AssertBool(msg[w][i])
			b.AssertBool(state[w][i])
		}
	}

	half := func(w bitWord, high bool) core.ExtElem {
		acc := e.Zero()
		off := 0
		if high {
			off = blakeHalfBits
		}
		for i := 0; i < blakeHalfBits; i++ {
			acc = e.Add(acc, e.MulBase(w[off+i], uint64(1)<<uint(i)))
		}
		return acc
	}
	carryRange := func(c core.ExtElem) {
		b.AssertZero(e.Mul(e.Mul(c, e.Sub(c, one)), e.Sub(c, e.FromUint64(2))))
	}
	// addMod asserts out = x + y (+ z) mod 2^32 through two half-word
	// carries; every term stays far below the modulus so the identities
	// hold over the integers.
	addMod := func(out bitWord, cLow, cHigh core.ExtElem, terms ...bitWord) {
		for i := 0; i < blakeWordBits; i++ {
			b.AssertBool(out[i])
		}
		carryRange(cLow)
		carryRange(cHigh)
		low := e.Zero()
		high := e.Zero()
		for _, t := range terms {
			low = e.Add(low, half(t, false))
			high = e.Add(high, half(t, true))
		}
		shift := e.FromUint64(1 << blakeHalfBits)
		b.AssertZero(e.Sub(e.Add(half(out, false), e.Mul(cLow, shift)), low))
		b.AssertZero(e.Sub(e.Add(half(out, true), e.Mul(cHigh, shift)), e.Add(high, cLow)))
	}
	// xorRot asserts out = (x xor y) >>> rot, bitwise.
	xorRot := func(out bitWord, x, y bitWord, rot int) {
		for z := 0; z < blakeWordBits; z++ {
			src := (z + rot) % blakeWordBits
			b.AssertBool(out[z])
			b.AssertZero(e.Sub(out[z], xorExpr(e, x[src], y[src])))
		}
	}

	for r := 0; r < blakeRounds; r++ {
		for g := 0; g < blakeCallsPerRound; g++ {
			blk := blakeBlockBase(r, g)
			q := blakeQuads[g]
			av, bv, cv, dv := state[q[0]], state[q[1]], state[q[2]], state[q[3]]
			mx := msg[blakeMsgSchedule[r][2*g]]
			my := msg[blakeMsgSchedule[r][2*g+1]]

			a1 := colWord(blk + blakeGOffsets.a1)
			d1 := colWord(blk + blakeGOffsets.d1)
			c1 := colWord(blk + blakeGOffsets.c1)
			b1 := colWord(blk + blakeGOffsets.b1)
			a2 := colWord(blk + blakeGOffsets.a2)
			d2 := colWord(blk + blakeGOffsets.d2)
			c2 := colWord(blk + blakeGOffsets.c2)
			b2 := colWord(blk + blakeGOffsets.b2)

			addMod(a1, b.Local[blk+blakeGOffsets.carryA1], b.Local[blk+blakeGOffsets.carryA1+1], av, bv, mx)
			xorRot(d1, dv, a1, 16)
			addMod(c1, b.Local[blk+blakeGOffsets.carryC1], b.Local[blk+blakeGOffsets.carryC1+1], cv, d1)
			xorRot(b1, bv, c1, 12)
			addMod(a2, b.Local[blk+blakeGOffsets.carryA2], b.Local[blk+blakeGOffsets.carryA2+1], a1, b1, my)
			xorRot(d2, d1, a2, 8)
			addMod(c2, b.Local[blk+blakeGOffsets.carryC2], b.Local[blk+blakeGOffsets.carryC2+1], c1, d2)
			xorRot(b2, b1, c2, 7)

			state[q[0]], state[q[1]], state[q[2]], state[q[3]] = a2, b2, c2, d2
		}
	}
}

// GenerateTrace fills height rows, each a full 7-round permutation of a
// deterministic message and state.
func (a *Blake3AIR) GenerateTrace(seed uint64, height int) (*core.Matrix, error) {
	if !core.IsPowerOfTwo(height) {
		return nil, fmt.Errorf("trace height %d is not a power of two", height)
	}
	m := core.NewMatrix(blakeAIRWidth, height)
	rng := newTraceRNG(seed)
	for row := 0; row < height; row++ {
		out := m.Row(row)
		var msg, state [blakeWords]uint32
		for w := 0; w < blakeWords; w++ {
			msg[w] = uint32(rng.next())
			state[w] = uint32(rng.next())
			writeBits(out, blakeMsgBase+w*blakeWordBits, msg[w])
			writeBits(out, blakeStateBase+w*blakeWordBits, state[w])
		}
		for r := 0; r < blakeRounds; r++ {
			for g := 0; g < blakeCallsPerRound; g++ {
				blk := blakeBlockBase(r, g)
				q := blakeQuads[g]
				av, bv, cv, dv := state[q[0]], state[q[1]], state[q[2]], state[q[3]]
				mx := msg[blakeMsgSchedule[r][2*g]]
				my := msg[blakeMsgSchedule[r][2*g+1]]

				a1 := addModTrace(out, blk+blakeGOffsets.a1, blk+blakeGOffsets.carryA1, av, bv, mx)
				d1 := rotr32(dv^a1, 16)
				writeBits(out, blk+blakeGOffsets.d1, d1)
				c1 := addModTrace(out, blk+blakeGOffsets.c1, blk+blakeGOffsets.carryC1, cv, d1, 0)
				b1 := rotr32(bv^c1, 12)
				writeBits(out, blk+blakeGOffsets.b1, b1)
				a2 := addModTrace(out, blk+blakeGOffsets.a2, blk+blakeGOffsets.carryA2, a1, b1, my)
				d2 := rotr32(d1^a2, 8)
				writeBits(out, blk+blakeGOffsets.d2, d2)
				c2 := addModTrace(out, blk+blakeGOffsets.c2, blk+blakeGOffsets.carryC2, c1, d2, 0)
				b2 := rotr32(b1^c2, 7)
				writeBits(out, blk+blakeGOffsets.b2, b2)

				state[q[0]], state[q[1]], state[q[2]], state[q[3]] = a2, b2, c2, d2
			}
		}
	}
	return m, nil
}

func rotr32(v uint32, n uint) uint32 {
	return v>>n | v<<(32-n)
}

func writeBits(row []uint64, base int, v uint32) {
	for i := 0; i < blakeWordBits; i++ {
		row[base+i] = uint64(v >> uint(i) & 1)
	}
}

// addModTrace performs the witnessed addition: output bits at outBase and
// the two half-word carries at carryBase.
func addModTrace(row []uint64, outBase, carryBase int, terms ...uint32) uint32 {
	var low, high uint64
	for _, t := range terms {
		low += uint64(t & 0xFFFF)
		high += uint64(t >> 16)
	}
	cLow := low >> blakeHalfBits
	high += cLow
	cHigh := high >> blakeHalfBits
	out := uint32(low&0xFFFF) | uint32(high&0xFFFF)<<16
	writeBits(row, outBase, out)
	row[carryBase] = cLow
	row[carryBase+1] = cHigh
	return out
}
