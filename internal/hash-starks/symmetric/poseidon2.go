package symmetric

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/field/babybear"
	bbposeidon2 "github.com/consensys/gnark-crypto/field/babybear/poseidon2"
	"github.com/consensys/gnark-crypto/field/koalabear"
	kbposeidon2 "github.com/consensys/gnark-crypto/field/koalabear/poseidon2"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// Permutation is a fixed-width permutation over canonical field elements.
type Permutation interface {
	Width() int
	Permute(state []uint64) error
}

// RingOps abstracts the ring arithmetic of the Poseidon2 round function so
// the same round code runs over concrete field elements and over symbolic
// constraint expressions.
type RingOps[T any] interface {
	Add(a, b T) T
	Mul(a, b T) T
	FromUint64(v uint64) T
}

// Poseidon2Params carries the round structure and derived constants of a
// Poseidon2 instance.
type Poseidon2Params struct {
	Field         core.Field
	Width         int
	SBoxDegree    int
	SBoxRegisters int
	FullRounds    int
	PartialRounds int

	ExternalRC   [][]uint64 // FullRounds rows of Width constants
	InternalRC   []uint64   // one constant per partial round
	InternalDiag []uint64   // diagonal of the internal linear layer
}

type splitmix64 struct{ state uint64 }

func (s *splitmix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}

// DerivePoseidon2Params builds an instance with constants derived from the
// field name and width through a fixed splitmix64 stream, so every run of the
// pipeline sees the same permutation.
func DerivePoseidon2Params(f core.Field, width, sboxDegree, sboxRegisters, fullRounds, partialRounds int) (*Poseidon2Params, error) {
	if width%4 != 0 {
		return nil, fmt.Errorf("poseidon2 width must be a multiple of 4, got %d", width)
	}
	switch sboxDegree {
	case 3, 5, 7:
	default:
		return nil, fmt.Errorf("unsupported sbox degree %d", sboxDegree)
	}
	seed := uint64(0xcbf29ce484222325)
	for _, b := range []byte(fmt.Sprintf("poseidon2/%s/%d", f.Name(), width)) {
		seed ^= uint64(b)
		seed *= 0x100000001b3
	}
	rng := &splitmix64{state: seed}
	draw := func() uint64 { return f.FromUint64(rng.next()) }
	drawNonZero := func() uint64 {
		for {
			if v := draw(); v != 0 {
				return v
			}
		}
	}

	p := &Poseidon2Params{
		Field:         f,
		Width:         width,
		SBoxDegree:    sboxDegree,
		SBoxRegisters: sboxRegisters,
		FullRounds:    fullRounds,
		PartialRounds: partialRounds,
	}
	p.ExternalRC = make([][]uint64, fullRounds)
	for r := range p.ExternalRC {
		row := make([]uint64, width)
		for i := range row {
			row[i] = draw()
		}
		p.ExternalRC[r] = row
	}
	p.InternalRC = make([]uint64, partialRounds)
	for i := range p.InternalRC {
		p.InternalRC[i] = draw()
	}
	p.InternalDiag = make([]uint64, width)
	for i := range p.InternalDiag {
		p.InternalDiag[i] = drawNonZero()
	}
	return p, nil
}

// TotalRounds returns the number of rounds, external plus internal.
func (p *Poseidon2Params) TotalRounds() int { return p.FullRounds + p.PartialRounds }

// m4 is the 4x4 block of the external linear layer.
var m4 = [4][4]uint64{
	{5, 7, 1, 3},
	{4, 6, 1, 1},
	{1, 3, 5, 7},
	{1, 1, 4, 6},
}

func sboxPow[T any](ops RingOps[T], x T, degree int) T {
	x2 := ops.Mul(x, x)
	switch degree {
	case 3:
		return ops.Mul(x2, x)
	case 5:
		return ops.Mul(ops.Mul(x2, x2), x)
	default: // 7
		x4 := ops.Mul(x2, x2)
		return ops.Mul(ops.Mul(x4, x2), x)
	}
}

// Poseidon2ExternalMatrix applies the circulant external layer: M4 on each
// 4-lane block, then every block accumulates the block sums lane-wise.
func Poseidon2ExternalMatrix[T any](ops RingOps[T], state []T) []T {
	n := len(state)
	t := make([]T, n)
	for b := 0; b < n/4; b++ {
		for i := 0; i < 4; i++ {
			acc := ops.Mul(ops.FromUint64(m4[i][0]), state[b*4])
			for j := 1; j < 4; j++ {
				acc = ops.Add(acc, ops.Mul(ops.FromUint64(m4[i][j]), state[b*4+j]))
			}
			t[b*4+i] = acc
		}
	}
	var sums [4]T
	for i := 0; i < 4; i++ {
		sums[i] = t[i]
		for b := 1; b < n/4; b++ {
			sums[i] = ops.Add(sums[i], t[b*4+i])
		}
	}
	out := make([]T, n)
	for b := 0; b < n/4; b++ {
		for i := 0; i < 4; i++ {
			out[b*4+i] = ops.Add(t[b*4+i], sums[i])
		}
	}
	return out
}

// Poseidon2ExternalRound applies one full round: constants, sbox on every
// lane, external matrix.
func Poseidon2ExternalRound[T any](ops RingOps[T], p *Poseidon2Params, state []T, round int) []T {
	out := make([]T, len(state))
	for i := range state {
		x := ops.Add(state[i], ops.FromUint64(p.ExternalRC[round][i]))
		out[i] = sboxPow(ops, x, p.SBoxDegree)
	}
	return Poseidon2ExternalMatrix(ops, out)
}

// Poseidon2InternalRound applies one partial round: constant and sbox on lane
// 0, then the diagonal-plus-all-ones internal matrix.
func Poseidon2InternalRound[T any](ops RingOps[T], p *Poseidon2Params, state []T, round int) []T {
	cur := make([]T, len(state))
	copy(cur, state)
	cur[0] = sboxPow(ops, ops.Add(cur[0], ops.FromUint64(p.InternalRC[round])), p.SBoxDegree)
	sum := cur[0]
	for i := 1; i < len(cur); i++ {
		sum = ops.Add(sum, cur[i])
	}
	out := make([]T, len(cur))
	for i := range cur {
		out[i] = ops.Add(ops.Mul(ops.FromUint64(p.InternalDiag[i]), cur[i]), sum)
	}
	return out
}

// Poseidon2Permute runs the full permutation: an initial external matrix,
// the first half of the full rounds, the partial rounds, then the second
// half of the full rounds.
func Poseidon2Permute[T any](ops RingOps[T], p *Poseidon2Params, state []T) []T {
	cur := Poseidon2ExternalMatrix(ops, state)
	half := p.FullRounds / 2
	for r := 0; r < half; r++ {
		cur = Poseidon2ExternalRound(ops, p, cur, r)
	}
	for r := 0; r < p.PartialRounds; r++ {
		cur = Poseidon2InternalRound(ops, p, cur, r)
	}
	for r := half; r < p.FullRounds; r++ {
		cur = Poseidon2ExternalRound(ops, p, cur, r)
	}
	return cur
}

// fieldOps adapts a Field to RingOps over canonical residues.
type fieldOps struct{ f core.Field }

func (o fieldOps) Add(a, b uint64) uint64     { return o.f.Add(a, b) }
func (o fieldOps) Mul(a, b uint64) uint64     { return o.f.Mul(a, b) }
func (o fieldOps) FromUint64(v uint64) uint64 { return o.f.FromUint64(v) }

// FieldOps returns the RingOps view of a field.
func FieldOps(f core.Field) RingOps[uint64] { return fieldOps{f: f} }

// genericPoseidon2 runs the derived-constant permutation for the fields
// gnark-crypto has no Poseidon2 package for.
type genericPoseidon2 struct {
	params *Poseidon2Params
}

func (g *genericPoseidon2) Width() int { return g.params.Width }

func (g *genericPoseidon2) Permute(state []uint64) error {
	if len(state) != g.params.Width {
		return fmt.Errorf("state width %d, permutation expects %d", len(state), g.params.Width)
	}
	out := Poseidon2Permute[uint64](FieldOps(g.params.Field), g.params, state)
	copy(state, out)
	return nil
}

type gnarkBabyBearPerm struct {
	perm  *bbposeidon2.Permutation
	width int
}

func (g *gnarkBabyBearPerm) Width() int { return g.width }

func (g *gnarkBabyBearPerm) Permute(state []uint64) error {
	if len(state) != g.width {
		return fmt.Errorf("state width %d, permutation expects %d", len(state), g.width)
	}
	elems := make([]babybear.Element, len(state))
	for i, v := range state {
		elems[i].SetUint64(v)
	}
	if err := g.perm.Permutation(elems); err != nil {
		return fmt.Errorf("babybear poseidon2: %w", err)
	}
	for i := range state {
		b := elems[i].Bytes()
		state[i] = uint64(binary.BigEndian.Uint32(b[:]))
	}
	return nil
}

type gnarkKoalaBearPerm struct {
	perm  *kbposeidon2.Permutation
	width int
}

func (g *gnarkKoalaBearPerm) Width() int { return g.width }

func (g *gnarkKoalaBearPerm) Permute(state []uint64) error {
	if len(state) != g.width {
		return fmt.Errorf("state width %d, permutation expects %d", len(state), g.width)
	}
	elems := make([]koalabear.Element, len(state))
	for i, v := range state {
		elems[i].SetUint64(v)
	}
	if err := g.perm.Permutation(elems); err != nil {
		return fmt.Errorf("koalabear poseidon2: %w", err)
	}
	for i := range state {
		b := elems[i].Bytes()
		state[i] = uint64(binary.BigEndian.Uint32(b[:]))
	}
	return nil
}

// NewPoseidon2Permutation builds the width-16 or width-24 permutation for a
// field. BabyBear and KoalaBear ride the gnark-crypto implementations;
// Mersenne31 and Goldilocks use the derived-constant permutation.
func NewPoseidon2Permutation(f core.Field, width int) (Permutation, error) {
	if width != 16 && width != 24 {
		return nil, fmt.Errorf("poseidon2 permutation width must be 16 or 24, got %d", width)
	}
	switch f.Name() {
	case "baby-bear":
		if width == 16 {
			return &gnarkBabyBearPerm{perm: bbposeidon2.NewPermutation(16, 8, 13), width: 16}, nil
		}
		return &gnarkBabyBearPerm{perm: bbposeidon2.NewPermutation(24, 8, 21), width: 24}, nil
	case "koala-bear":
		if width == 16 {
			return &gnarkKoalaBearPerm{perm: kbposeidon2.NewPermutation(16, 8, 20), width: 16}, nil
		}
		return &gnarkKoalaBearPerm{perm: kbposeidon2.NewPermutation(24, 8, 23), width: 24}, nil
	case "mersenne-31":
		partial := 14
		if width == 24 {
			partial = 22
		}
		params, err := DerivePoseidon2Params(f, width, 5, 1, 8, partial)
		if err != nil {
			return nil, err
		}
		return &genericPoseidon2{params: params}, nil
	case "goldilocks":
		partial := 22
		if width == 24 {
			partial = 26
		}
		params, err := DerivePoseidon2Params(f, width, 7, 1, 8, partial)
		if err != nil {
			return nil, err
		}
		return &genericPoseidon2{params: params}, nil
	default:
		return nil, fmt.Errorf("no poseidon2 permutation for field %s", f.Name())
	}
}

const (
	poseidon2SpongeWidth = 24
	poseidon2Rate        = 16
	poseidon2DigestLen   = 8
)

// Poseidon2Hasher is the field-native Merkle hasher: a width-24 sponge with
// rate 16 for rows, and a width-16 truncated permutation compressing two
// 8-element digests.
type Poseidon2Hasher struct {
	field    core.Field
	sponge   Permutation // width 24
	compress Permutation // width 16
}

// NewPoseidon2Hasher builds the Poseidon2 Merkle scheme for a field.
func NewPoseidon2Hasher(f core.Field) (*Poseidon2Hasher, error) {
	sponge, err := NewPoseidon2Permutation(f, poseidon2SpongeWidth)
	if err != nil {
		return nil, err
	}
	comp, err := NewPoseidon2Permutation(f, 2*poseidon2DigestLen)
	if err != nil {
		return nil, err
	}
	return &Poseidon2Hasher{field: f, sponge: sponge, compress: comp}, nil
}

func (h *Poseidon2Hasher) Name() string   { return "poseidon2" }
func (h *Poseidon2Hasher) DigestLen() int { return poseidon2DigestLen }

func (h *Poseidon2Hasher) HashRow(row []uint64) Digest {
	state := make([]uint64, poseidon2SpongeWidth)
	for len(row) > 0 {
		n := poseidon2Rate
		if len(row) < n {
			n = len(row)
		}
		for i := 0; i < n; i++ {
			state[i] = h.field.Add(state[i], row[i])
		}
		// Width and inputs are well-formed by construction.
		if err := h.sponge.Permute(state); err != nil {
			panic(err)
		}
		row = row[n:]
	}
	out := make(Digest, poseidon2DigestLen)
	copy(out, state[:poseidon2DigestLen])
	return out
}

func (h *Poseidon2Hasher) Compress(a, b Digest) Digest {
	state := make([]uint64, 2*poseidon2DigestLen)
	copy(state[:poseidon2DigestLen], a)
	copy(state[poseidon2DigestLen:], b)
	if err := h.compress.Permute(state); err != nil {
		panic(err)
	}
	out := make(Digest, poseidon2DigestLen)
	copy(out, state[:poseidon2DigestLen])
	return out
}
