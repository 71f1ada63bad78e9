package airs

import (
	"fmt"
	"math/bits"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

// Column layout of one Keccak-f row. A permutation spans 24 consecutive rows,
// one round per row; the round is identified by a one-hot flag block that
// rotates on every transition. State lanes are bit-decomposed so theta and
// chi become low-degree constraints, with the column parities and the
// post-theta state carried as witness columns.
const (
	keccakFlagCols  = 24
	keccakLaneBits  = 64
	keccakStateCols = 25 * keccakLaneBits
	keccakParityCol = keccakFlagCols + keccakStateCols
	keccakThetaCol  = keccakParityCol + 5*keccakLaneBits
	keccakAIRWidth  = keccakThetaCol + keccakStateCols
)

// KeccakFAIR proves Keccak-f[1600] permutations, 24 rows per permutation.
type KeccakFAIR struct {
	field core.Field
}

// NewKeccakFAIR returns the Keccak-f constraint system.
func NewKeccakFAIR(f core.Field) *KeccakFAIR {
	return &KeccakFAIR{field: f}
}

func (a *KeccakFAIR) Name() string          { return "keccak-f" }
func (a *KeccakFAIR) Width() int            { return keccakAIRWidth }
func (a *KeccakFAIR) PublicValueCount() int { return 0 }

func flagCol(r int) int           { return r }
func stateBitCol(lane, z int) int { return keccakFlagCols + lane*keccakLaneBits + z }
func parityBitCol(x, z int) int   { return keccakParityCol + x*keccakLaneBits + z }
func thetaBitCol(lane, z int) int { return keccakThetaCol + lane*keccakLaneBits + z }

// piSource[x2 + 5*y2] is the lane whose rotated post-theta bits land at
// (x2, y2) under the pi permutation.
var piSource = func() [25]int {
	var src [25]int
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			src[y+5*((2*x+3*y)%5)] = x + 5*y
		}
	}
	return src
}()

func xorExpr(e *core.ExtField, a, b core.ExtElem) core.ExtElem {
	return e.Sub(e.Add(a, b), e.MulBase(e.Mul(a, b), 2))
}

func (a *KeccakFAIR) Eval(b *Builder) {
	e := b.E
	one := e.One()

	// Round flags: boolean, one-hot, starting at round 0 and rotating.
	sum := e.Zero()
	for r := 0; r < keccakFlagCols; r++ {
		b.AssertBool(b.Local[flagCol(r)])
		sum = e.Add(sum, b.Local[flagCol(r)])
	}
	b.AssertZero(e.Sub(sum, one))
	b.AssertZeroFirstRow(e.Sub(b.Local[flagCol(0)], one))
	for r := 0; r < keccakFlagCols; r++ {
		b.AssertEqTransition(b.Next[flagCol((r+1)%keccakFlagCols)], b.Local[flagCol(r)])
	}

	// State bits are boolean.
	for lane := 0; lane < 25; lane++ {
		for z := 0; z < keccakLaneBits; z++ {
			b.AssertBool(b.Local[stateBitCol(lane, z)])
		}
	}

	// Column parities: each parity bit is boolean and differs from the
	// five-bit column sum by an even amount.
	for x := 0; x < 5; x++ {
		for z := 0; z < keccakLaneBits; z++ {
			s := e.Zero()
			for y := 0; y < 5; y++ {
				s = e.Add(s, b.Local[stateBitCol(x+5*y, z)])
			}
			c := b.Local[parityBitCol(x, z)]
			b.AssertBool(c)
			diff := e.Sub(s, c)
			b.AssertZero(e.Mul(e.Mul(diff, e.Sub(diff, e.FromUint64(2))), e.Sub(diff, e.FromUint64(4))))
		}
	}

	// Post-theta state: a'[x,y,z] = a[x,y,z] xor c[x-1][z] xor c[x+1][z-1].
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			lane := x + 5*y
			for z := 0; z < keccakLaneBits; z++ {
				d := xorExpr(e,
					b.Local[parityBitCol((x+4)%5, z)],
					b.Local[parityBitCol((x+1)%5, (z+keccakLaneBits-1)%keccakLaneBits)])
				want := xorExpr(e, b.Local[stateBitCol(lane, z)], d)
				b.AssertZero(e.Sub(b.Local[thetaBitCol(lane, z)], want))
			}
		}
	}

	// Rho and pi reindex the post-theta bits into chi's input.
	chiBit := func(x2, y2, z int) core.ExtElem {
		lane := piSource[x2+5*y2]
		rot := symmetric.KeccakRhoOffsets[lane]
		return b.Local[thetaBitCol(lane, (z-rot+keccakLaneBits)%keccakLaneBits)]
	}

	// Chi, iota and the transition to the next round's state, gated off on
	// the final round of each permutation.
	notFinalRound := e.Sub(one, b.Local[flagCol(keccakFlagCols-1)])
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			for z := 0; z < keccakLaneBits; z++ {
				bb := chiBit(x, y, z)
				b1 := chiBit((x+1)%5, y, z)
				b2 := chiBit((x+2)%5, y, z)
				out := xorExpr(e, bb, e.Mul(e.Sub(one, b1), b2))
				if x == 0 && y == 0 {
					rc := e.Zero()
					for r := 0; r < keccakFlagCols; r++ {
						if symmetric.KeccakRoundConstants[r]>>uint(z)&1 == 1 {
							rc = e.Add(rc, b.Local[flagCol(r)])
						}
					}
					out = xorExpr(e, out, rc)
				}
				diff := e.Sub(b.Next[stateBitCol(x+5*y, z)], out)
				b.AssertZeroTransition(e.Mul(notFinalRound, diff))
			}
		}
	}
}

// GenerateTrace tiles permutations over the trace, 24 rows each, on
// deterministic inputs. A trailing partial permutation is fine: its missing
// rows fall past the last row, where no transition is enforced.
func (a *KeccakFAIR) GenerateTrace(seed uint64, height int) (*core.Matrix, error) {
	if !core.IsPowerOfTwo(height) {
		return nil, fmt.Errorf("trace height %d is not a power of two", height)
	}
	m := core.NewMatrix(keccakAIRWidth, height)
	rng := newTraceRNG(seed)
	var state [25]uint64
	for row := 0; row < height; row++ {
		round := row % keccakFlagCols
		if round == 0 {
			for i := range state {
				state[i] = rng.next()
			}
		}
		out := m.Row(row)
		out[flagCol(round)] = 1
		for lane := 0; lane < 25; lane++ {
			for z := 0; z < keccakLaneBits; z++ {
				out[stateBitCol(lane, z)] = state[lane] >> uint(z) & 1
			}
		}
		var c, d [5]uint64
		for x := 0; x < 5; x++ {
			c[x] = state[x] ^ state[x+5] ^ state[x+10] ^ state[x+15] ^ state[x+20]
		}
		for x := 0; x < 5; x++ {
			d[x] = c[(x+4)%5] ^ bits.RotateLeft64(c[(x+1)%5], 1)
		}
		for x := 0; x < 5; x++ {
			for z := 0; z < keccakLaneBits; z++ {
				out[parityBitCol(x, z)] = c[x] >> uint(z) & 1
			}
		}
		for lane := 0; lane < 25; lane++ {
			after := state[lane] ^ d[lane%5]
			for z := 0; z < keccakLaneBits; z++ {
				out[thetaBitCol(lane, z)] = after >> uint(z) & 1
			}
		}
		symmetric.KeccakRound(&state, round)
	}
	return m, nil
}
