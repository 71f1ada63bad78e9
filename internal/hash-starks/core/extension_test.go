package core

import "testing"

func TestExtFieldInverse(t *testing.T) {
	for _, f := range allFields() {
		t.Run(f.Name(), func(t *testing.T) {
			e := NewExtField(f)
			a := e.FromCoeffs([]uint64{3, 141, 592, 653})
			inv := e.Inv(a)
			if got := e.Mul(a, inv); !e.Equal(got, e.One()) {
				t.Errorf("a * a^-1 = %v, want 1", got)
			}
			if !e.IsZero(e.Inv(e.Zero())) {
				t.Errorf("Inv(0) should be 0")
			}
		})
	}
}

func TestExtFieldMulCommutesWithBase(t *testing.T) {
	for _, f := range allFields() {
		t.Run(f.Name(), func(t *testing.T) {
			e := NewExtField(f)
			a, b := f.FromUint64(987654), f.FromUint64(321098)
			got := e.Mul(e.FromBase(a), e.FromBase(b))
			want := e.FromBase(f.Mul(a, b))
			if !e.Equal(got, want) {
				t.Errorf("embedded product %v, want %v", got, want)
			}
		})
	}
}

func TestExtFieldNonResidueReduction(t *testing.T) {
	for _, f := range allFields() {
		t.Run(f.Name(), func(t *testing.T) {
			e := NewExtField(f)
			// x^d must reduce to the nonresidue w.
			var x ExtElem
			x[1] = 1
			got := e.Exp(x, uint64(e.Degree))
			want := e.FromBase(f.ExtensionNonResidue())
			if !e.Equal(got, want) {
				t.Errorf("x^%d = %v, want %v", e.Degree, got, want)
			}
		})
	}
}

func TestExtFieldFrobeniusFixesBase(t *testing.T) {
	for _, f := range allFields() {
		t.Run(f.Name(), func(t *testing.T) {
			e := NewExtField(f)
			a := e.FromBase(f.FromUint64(424242))
			if got := e.frobenius(a); !e.Equal(got, a) {
				t.Errorf("frobenius moved a base element: %v -> %v", a, got)
			}
			// Applying it d times must be the identity.
			b := e.FromCoeffs([]uint64{1, 2, 3, 4})
			got := b
			for i := 0; i < e.Degree; i++ {
				got = e.frobenius(got)
			}
			if !e.Equal(got, b) {
				t.Errorf("frobenius^%d != id: %v -> %v", e.Degree, b, got)
			}
		})
	}
}
