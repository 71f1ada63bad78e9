package airs

import (
	"testing"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

func TestFibonacciTraceSatisfiesConstraints(t *testing.T) {
	f := core.NewBabyBear()
	air := NewFibonacciAIR(f)
	trace, public, err := air.GenerateTrace(1, 1, 8)
	if err != nil {
		t.Fatal(err)
	}
	// The classic sequence: last right entry after 8 rows from (1,1) is 34.
	if public[2] != 34 {
		t.Fatalf("public result = %d, want 34", public[2])
	}
	if err := CheckConstraints(air, f, trace, public); err != nil {
		t.Fatal(err)
	}
}

func TestFibonacciWrongPublicValueCaught(t *testing.T) {
	f := core.NewBabyBear()
	air := NewFibonacciAIR(f)
	trace, public, err := air.GenerateTrace(1, 1, 8)
	if err != nil {
		t.Fatal(err)
	}
	public[2] = 99
	err = CheckConstraints(air, f, trace, public)
	if err == nil {
		t.Fatal("wrong final public value passed the check")
	}
	v, ok := err.(*Violation)
	if !ok {
		t.Fatalf("got %T, want *Violation", err)
	}
	if v.Row != 7 {
		t.Errorf("violation at row %d, want the last row", v.Row)
	}
}

func TestFibonacciTamperedRowCaught(t *testing.T) {
	f := core.NewBabyBear()
	air := NewFibonacciAIR(f)
	trace, public, err := air.GenerateTrace(1, 1, 16)
	if err != nil {
		t.Fatal(err)
	}
	trace.Set(5, 1, trace.At(5, 1)+1)
	if CheckConstraints(air, f, trace, public) == nil {
		t.Fatal("tampered trace passed the check")
	}
}

func TestIncrementTrace(t *testing.T) {
	f := core.NewGoldilocks()
	air, err := NewIncrementAIR(f, 4)
	if err != nil {
		t.Fatal(err)
	}
	trace, err := air.GenerateTrace(0, 64)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckConstraints(air, f, trace, nil); err != nil {
		t.Fatal(err)
	}
	// Perturbing the constrained column fails; perturbing payload does not.
	trace.Set(10, 0, trace.At(10, 0)+5)
	if CheckConstraints(air, f, trace, nil) == nil {
		t.Fatal("perturbed increment column passed")
	}
	trace.Set(10, 0, trace.At(10, 0)-5)
	trace.Set(10, 3, 123456)
	if err := CheckConstraints(air, f, trace, nil); err != nil {
		t.Fatalf("payload column should be unconstrained: %v", err)
	}
}

func TestIncrementPadTrace(t *testing.T) {
	f := core.NewGoldilocks()
	air, err := NewIncrementAIR(f, 3)
	if err != nil {
		t.Fatal(err)
	}
	rows := [][]uint64{
		{5, 10, 20},
		{6, 11, 21},
		{7, 12, 22},
	}
	trace, err := air.PadTrace(rows)
	if err != nil {
		t.Fatal(err)
	}
	if trace.Height != 4 {
		t.Fatalf("padded height %d, want 4", trace.Height)
	}
	if got := trace.At(3, 0); got != 8 {
		t.Errorf("padding should continue the increment, got %d", got)
	}
	if got := trace.At(3, 2); got != 22 {
		t.Errorf("padding should copy payload columns, got %d", got)
	}
	if err := CheckConstraints(air, f, trace, nil); err != nil {
		t.Fatal(err)
	}
}

func TestPoseidon2TraceSatisfiesConstraints(t *testing.T) {
	for _, f := range []core.Field{core.NewBabyBear(), core.NewKoalaBear(), core.NewMersenne31()} {
		t.Run(f.Name(), func(t *testing.T) {
			air, err := NewPoseidon2AIR(f)
			if err != nil {
				t.Fatal(err)
			}
			trace, err := air.GenerateTrace(7, 2)
			if err != nil {
				t.Fatal(err)
			}
			if trace.Width != air.Width() {
				t.Fatalf("trace width %d, air width %d", trace.Width, air.Width())
			}
			if err := CheckConstraints(air, f, trace, nil); err != nil {
				t.Fatal(err)
			}
			// Breaking one round output must be caught.
			trace.Set(1, air.Width()/2, trace.At(1, air.Width()/2)+1)
			if CheckConstraints(air, f, trace, nil) == nil {
				t.Fatal("tampered round state passed")
			}
		})
	}
}

func TestPoseidon2AIRRejectsGoldilocks(t *testing.T) {
	if _, err := NewPoseidon2AIR(core.NewGoldilocks()); err == nil {
		t.Fatal("expected no poseidon2 air for goldilocks")
	}
}

func TestKeccakFTraceSatisfiesConstraints(t *testing.T) {
	f := core.NewKoalaBear()
	air := NewKeccakFAIR(f)
	trace, err := air.GenerateTrace(3, 32)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckConstraints(air, f, trace, nil); err != nil {
		t.Fatal(err)
	}
	// Flipping a state bit inside a permutation must be caught.
	trace.Set(12, stateBitCol(7, 13), 1-trace.At(12, stateBitCol(7, 13)))
	if CheckConstraints(air, f, trace, nil) == nil {
		t.Fatal("flipped state bit passed")
	}
}

func TestKeccakFPartialFinalPermutation(t *testing.T) {
	// Height 32 ends 8 rows into the second permutation; the truncated
	// block must still satisfy every enforced constraint.
	f := core.NewMersenne31()
	air := NewKeccakFAIR(f)
	trace, err := air.GenerateTrace(9, 32)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckConstraints(air, f, trace, nil); err != nil {
		t.Fatal(err)
	}
}

func TestBlake3TraceSatisfiesConstraints(t *testing.T) {
	f := core.NewKoalaBear()
	air := NewBlake3AIR(f)
	trace, err := air.GenerateTrace(5, 2)
	if err != nil {
		t.Fatal(err)
	}
	if trace.Width != air.Width() {
		t.Fatalf("trace width %d, air width %d", trace.Width, air.Width())
	}
	if err := CheckConstraints(air, f, trace, nil); err != nil {
		t.Fatal(err)
	}
	// Corrupting an addition carry must be caught.
	carry := blakeBlockBase(3, 2) + blakeGOffsets.carryA1
	trace.Set(1, carry, trace.At(1, carry)+1)
	if CheckConstraints(air, f, trace, nil) == nil {
		t.Fatal("corrupted carry passed")
	}
}

func TestObjectiveByName(t *testing.T) {
	for _, name := range []string{"blake3", "keccak-f", "poseidon2"} {
		o, err := ObjectiveByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if o.Name() != name {
			t.Errorf("got %q, want %q", o.Name(), name)
		}
	}
	if _, err := ObjectiveByName("sha256"); err == nil {
		t.Error("expected error for unknown objective")
	}
}

func TestBuilderSelectorScoping(t *testing.T) {
	f := core.NewBabyBear()
	e := core.NewExtField(f)
	// With the first-row selector zeroed, a failing first-row assertion
	// must not contribute.
	b := NewBuilder(e, []core.ExtElem{e.FromBase(5)}, []core.ExtElem{e.FromBase(6)}, nil,
		e.Zero(), e.One(), e.Zero(), e.FromBase(2))
	b.AssertZeroFirstRow(e.FromBase(123))
	if !e.IsZero(b.Accumulated()) {
		t.Error("scoped-out constraint leaked into the accumulator")
	}
	b.AssertZeroLastRow(e.FromBase(7))
	if e.IsZero(b.Accumulated()) {
		t.Error("active constraint did not accumulate")
	}
	if b.ConstraintCount() != 2 {
		t.Errorf("constraint count %d, want 2", b.ConstraintCount())
	}
}
