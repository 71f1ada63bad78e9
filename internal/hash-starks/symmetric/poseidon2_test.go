package symmetric

import (
	"testing"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

func TestPoseidon2PermutationAllFields(t *testing.T) {
	for _, f := range []core.Field{
		core.NewBabyBear(), core.NewKoalaBear(), core.NewMersenne31(), core.NewGoldilocks(),
	} {
		t.Run(f.Name(), func(t *testing.T) {
			for _, width := range []int{16, 24} {
				perm, err := NewPoseidon2Permutation(f, width)
				if err != nil {
					t.Fatalf("width %d: %v", width, err)
				}
				if perm.Width() != width {
					t.Fatalf("Width() = %d, want %d", perm.Width(), width)
				}
				state := make([]uint64, width)
				for i := range state {
					state[i] = f.FromUint64(uint64(i))
				}
				before := make([]uint64, width)
				copy(before, state)
				if err := perm.Permute(state); err != nil {
					t.Fatal(err)
				}
				same := true
				for i := range state {
					if state[i] >= f.Modulus() {
						t.Fatalf("lane %d = %d out of range", i, state[i])
					}
					if state[i] != before[i] {
						same = false
					}
				}
				if same {
					t.Errorf("width %d: permutation is the identity", width)
				}
				// Determinism.
				again := make([]uint64, width)
				copy(again, before)
				if err := perm.Permute(again); err != nil {
					t.Fatal(err)
				}
				for i := range state {
					if state[i] != again[i] {
						t.Fatalf("width %d: nondeterministic at lane %d", width, i)
					}
				}
			}
		})
	}
}

func TestPoseidon2PermutationRejectsBadWidth(t *testing.T) {
	if _, err := NewPoseidon2Permutation(core.NewBabyBear(), 12); err == nil {
		t.Errorf("expected error for width 12")
	}
	perm, err := NewPoseidon2Permutation(core.NewMersenne31(), 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := perm.Permute(make([]uint64, 8)); err == nil {
		t.Errorf("expected error for mismatched state width")
	}
}

func TestDerivedParamsStable(t *testing.T) {
	f := core.NewMersenne31()
	a, err := DerivePoseidon2Params(f, 16, 5, 1, 8, 14)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DerivePoseidon2Params(f, 16, 5, 1, 8, 14)
	if err != nil {
		t.Fatal(err)
	}
	for r := range a.ExternalRC {
		for i := range a.ExternalRC[r] {
			if a.ExternalRC[r][i] != b.ExternalRC[r][i] {
				t.Fatalf("external constant (%d,%d) differs between derivations", r, i)
			}
		}
	}
	for i := range a.InternalDiag {
		if a.InternalDiag[i] == 0 {
			t.Errorf("internal diagonal %d is zero", i)
		}
	}
}

func TestGenericPermuteMatchesRoundComposition(t *testing.T) {
	f := core.NewMersenne31()
	p, err := DerivePoseidon2Params(f, 16, 5, 1, 8, 14)
	if err != nil {
		t.Fatal(err)
	}
	ops := FieldOps(f)
	state := make([]uint64, 16)
	for i := range state {
		state[i] = f.FromUint64(uint64(i * i))
	}
	want := Poseidon2Permute[uint64](ops, p, state)

	cur := Poseidon2ExternalMatrix[uint64](ops, state)
	for r := 0; r < p.FullRounds/2; r++ {
		cur = Poseidon2ExternalRound[uint64](ops, p, cur, r)
	}
	for r := 0; r < p.PartialRounds; r++ {
		cur = Poseidon2InternalRound[uint64](ops, p, cur, r)
	}
	for r := p.FullRounds / 2; r < p.FullRounds; r++ {
		cur = Poseidon2ExternalRound[uint64](ops, p, cur, r)
	}
	for i := range want {
		if cur[i] != want[i] {
			t.Fatalf("lane %d: composed rounds %d, permutation %d", i, cur[i], want[i])
		}
	}
}

func TestPoseidon2Hasher(t *testing.T) {
	for _, f := range []core.Field{core.NewBabyBear(), core.NewKoalaBear(), core.NewMersenne31()} {
		t.Run(f.Name(), func(t *testing.T) {
			h, err := NewPoseidon2Hasher(f)
			if err != nil {
				t.Fatal(err)
			}
			row := []uint64{10, 20, 30}
			d := h.HashRow(row)
			if len(d) != h.DigestLen() {
				t.Fatalf("digest length %d, want %d", len(d), h.DigestLen())
			}
			row[1] = 21
			if EqualDigests(d, h.HashRow(row)) {
				t.Errorf("distinct rows collided")
			}
			other := h.HashRow([]uint64{7, 7, 7})
			if EqualDigests(h.Compress(d, other), h.Compress(other, d)) {
				t.Errorf("compression should order its children")
			}
		})
	}
}

// Hashing more than the sponge rate must fold in a second permutation call.
func TestPoseidon2HasherLongRow(t *testing.T) {
	h, err := NewPoseidon2Hasher(core.NewBabyBear())
	if err != nil {
		t.Fatal(err)
	}
	long := make([]uint64, 40)
	for i := range long {
		long[i] = uint64(i + 1)
	}
	a := h.HashRow(long)
	long[39]++
	if EqualDigests(a, h.HashRow(long)) {
		t.Errorf("change past the first rate block did not affect the digest")
	}
}
