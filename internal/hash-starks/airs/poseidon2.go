package airs

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

const (
	poseidon2AIRWidth = 16
	poseidon2Lanes    = 8
)

// Poseidon2AIR proves width-16 Poseidon2 permutations, eight per trace row.
// Each lane stores the input state followed by the full state after every
// round, so the only constraint shape is "this round group is the round
// function of the previous group"; the round helpers are shared with trace
// generation, which keeps the two in lockstep.
type Poseidon2AIR struct {
	field  core.Field
	params *symmetric.Poseidon2Params
}

// NewPoseidon2AIR builds the vectorized Poseidon2 constraint system for a
// field. The sbox degree, register count and partial round count are fixed
// per field.
func NewPoseidon2AIR(f core.Field) (*Poseidon2AIR, error) {
	var sboxDegree, sboxRegisters, partialRounds int
	switch f.Name() {
	case "baby-bear":
		sboxDegree, sboxRegisters, partialRounds = 7, 1, 13
	case "koala-bear":
		sboxDegree, sboxRegisters, partialRounds = 3, 0, 20
	case "mersenne-31":
		sboxDegree, sboxRegisters, partialRounds = 5, 1, 14
	default:
		return nil, fmt.Errorf("no poseidon2 air parameters for field %s", f.Name())
	}
	params, err := symmetric.DerivePoseidon2Params(f, poseidon2AIRWidth, sboxDegree, sboxRegisters, 8, partialRounds)
	if err != nil {
		return nil, err
	}
	return &Poseidon2AIR{field: f, params: params}, nil
}

// laneWidth is the column count of one permutation lane: the input group plus
// one group per round.
func (a *Poseidon2AIR) laneWidth() int {
	return poseidon2AIRWidth * (a.params.TotalRounds() + 1)
}

func (a *Poseidon2AIR) Name() string          { return "poseidon2" }
func (a *Poseidon2AIR) Width() int            { return a.laneWidth() * poseidon2Lanes }
func (a *Poseidon2AIR) PublicValueCount() int { return 0 }

// roundOutput applies round j of the schedule: the first half of the full
// rounds, then the partial rounds, then the remaining full rounds.
func roundOutput[T any](ops symmetric.RingOps[T], p *symmetric.Poseidon2Params, in []T, j int) []T {
	half := p.FullRounds / 2
	switch {
	case j < half:
		return symmetric.Poseidon2ExternalRound(ops, p, in, j)
	case j < half+p.PartialRounds:
		return symmetric.Poseidon2InternalRound(ops, p, in, j-half)
	default:
		return symmetric.Poseidon2ExternalRound(ops, p, in, j-p.PartialRounds)
	}
}

func (a *Poseidon2AIR) Eval(b *Builder) {
	e := b.E
	for lane := 0; lane < poseidon2Lanes; lane++ {
		off := lane * a.laneWidth()
		group := func(g int) []core.ExtElem {
			start := off + g*poseidon2AIRWidth
			return b.Local[start : start+poseidon2AIRWidth]
		}
		// The initial external matrix is linear and folds into the first
		// round's constraint.
		in := symmetric.Poseidon2ExternalMatrix[core.ExtElem](e, group(0))
		for j := 0; j < a.params.TotalRounds(); j++ {
			expect := roundOutput[core.ExtElem](e, a.params, in, j)
			actual := group(j + 1)
			for i := range expect {
				b.AssertZero(e.Sub(actual[i], expect[i]))
			}
			in = actual
		}
	}
}

// GenerateTrace produces height rows of eight permutations each, on
// deterministic pseudo-random inputs derived from the seed.
func (a *Poseidon2AIR) GenerateTrace(seed uint64, height int) (*core.Matrix, error) {
	if !core.IsPowerOfTwo(height) {
		return nil, fmt.Errorf("trace height %d is not a power of two", height)
	}
	f := a.field
	ops := symmetric.FieldOps(f)
	m := core.NewMatrix(a.Width(), height)
	rng := newTraceRNG(seed)
	for row := 0; row < height; row++ {
		out := m.Row(row)
		for lane := 0; lane < poseidon2Lanes; lane++ {
			off := lane * a.laneWidth()
			state := make([]uint64, poseidon2AIRWidth)
			for i := range state {
				state[i] = f.FromUint64(rng.next())
			}
			copy(out[off:off+poseidon2AIRWidth], state)
			in := symmetric.Poseidon2ExternalMatrix[uint64](ops, state)
			for j := 0; j < a.params.TotalRounds(); j++ {
				in = roundOutput[uint64](ops, a.params, in, j)
				start := off + (j+1)*poseidon2AIRWidth
				copy(out[start:start+poseidon2AIRWidth], in)
			}
		}
	}
	return m, nil
}
