package dft

import (
	"testing"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

func kernels(t *testing.T, f core.Field) []TwoAdicDFT {
	t.Helper()
	return []TwoAdicDFT{NewParallel(f), NewRecursive(f)}
}

// naiveDFT evaluates the coefficient polynomial at every power of the root.
func naiveDFT(f core.Field, coeffs []uint64) []uint64 {
	n := len(coeffs)
	logN, _ := core.Log2Exact(n)
	root, _ := core.RootOfUnity(f, logN)
	out := make([]uint64, n)
	for k := 0; k < n; k++ {
		x := f.Exp(root, uint64(k))
		acc := uint64(0)
		for i := n - 1; i >= 0; i-- {
			acc = f.Add(f.Mul(acc, x), coeffs[i])
		}
		out[k] = acc
	}
	return out
}

func TestDFTMatchesNaive(t *testing.T) {
	for _, f := range []core.Field{core.NewBabyBear(), core.NewKoalaBear(), core.NewGoldilocks()} {
		t.Run(f.Name(), func(t *testing.T) {
			coeffs := make([]uint64, 16)
			for i := range coeffs {
				coeffs[i] = f.FromUint64(uint64(i*i*7 + 3))
			}
			want := naiveDFT(f, coeffs)
			for _, d := range kernels(t, f) {
				got, err := d.DFT(coeffs)
				if err != nil {
					t.Fatalf("%s: %v", d.Name(), err)
				}
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("%s: index %d: got %d, want %d", d.Name(), i, got[i], want[i])
					}
				}
			}
		})
	}
}

func TestDFTRoundTrip(t *testing.T) {
	f := core.NewBabyBear()
	for _, d := range kernels(t, f) {
		t.Run(d.Name(), func(t *testing.T) {
			values := make([]uint64, 64)
			for i := range values {
				values[i] = f.FromUint64(uint64(i)*0x9E3779B9 + 1)
			}
			evals, err := d.DFT(values)
			if err != nil {
				t.Fatal(err)
			}
			back, err := d.IDFT(evals)
			if err != nil {
				t.Fatal(err)
			}
			for i := range values {
				if back[i] != values[i] {
					t.Fatalf("index %d: round trip %d, want %d", i, back[i], values[i])
				}
			}
		})
	}
}

func TestDFTRejectsNonPowerOfTwo(t *testing.T) {
	f := core.NewKoalaBear()
	for _, d := range kernels(t, f) {
		if _, err := d.DFT(make([]uint64, 12)); err == nil {
			t.Errorf("%s: expected error for length 12", d.Name())
		}
	}
}

func TestCosetLDEBatch(t *testing.T) {
	f := core.NewBabyBear()
	shift := f.Generator()
	m, err := core.NewMatrixFromRows([][]uint64{
		{1, 9}, {2, 8}, {3, 7}, {4, 6},
		{5, 5}, {6, 4}, {7, 3}, {8, 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	var reference *core.Matrix
	for _, d := range kernels(t, f) {
		t.Run(d.Name(), func(t *testing.T) {
			lde, err := d.CosetLDEBatch(m, 2, shift)
			if err != nil {
				t.Fatal(err)
			}
			if lde.Height != 32 || lde.Width != 2 {
				t.Fatalf("got %dx%d, want 2x32", lde.Width, lde.Height)
			}
			// Point check: position k of the LDE must equal the column
			// polynomial at shift * W^k, where W generates the big subgroup.
			coeffs, err := d.IDFT(m.Column(0))
			if err != nil {
				t.Fatal(err)
			}
			bigRoot, _ := core.RootOfUnity(f, 5)
			for _, k := range []int{0, 1, 13, 31} {
				x := f.Mul(shift, f.Exp(bigRoot, uint64(k)))
				want := uint64(0)
				for i := len(coeffs) - 1; i >= 0; i-- {
					want = f.Add(f.Mul(want, x), coeffs[i])
				}
				if got := lde.At(k, 0); got != want {
					t.Errorf("position %d: got %d, want %d", k, got, want)
				}
			}
			if reference == nil {
				reference = lde
			} else {
				for i := range reference.Values {
					if reference.Values[i] != lde.Values[i] {
						t.Fatalf("kernels disagree at flat index %d", i)
					}
				}
			}
		})
	}
}
