package merkle

import (
	"testing"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

func testMatrix(t *testing.T, width, height int) *core.Matrix {
	t.Helper()
	m := core.NewMatrix(width, height)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			m.Set(i, j, uint64(i*31+j*17+1))
		}
	}
	return m
}

func schemes(t *testing.T) []*MMCS {
	t.Helper()
	p, err := symmetric.NewPoseidon2Hasher(core.NewBabyBear())
	if err != nil {
		t.Fatal(err)
	}
	return []*MMCS{NewMMCS(symmetric.NewKeccakHasher()), NewMMCS(p)}
}

func TestCommitOpenVerify(t *testing.T) {
	for _, scheme := range schemes(t) {
		t.Run(scheme.Hasher().Name(), func(t *testing.T) {
			mat := testMatrix(t, 5, 16)
			tree, err := scheme.Commit(mat)
			if err != nil {
				t.Fatal(err)
			}
			root := tree.Root()
			for _, idx := range []int{0, 1, 7, 15} {
				row, path := tree.Open(idx)
				if len(path) != 4 {
					t.Fatalf("path length %d, want 4", len(path))
				}
				if err := scheme.Verify(root, idx, row, path); err != nil {
					t.Errorf("index %d: %v", idx, err)
				}
			}
		})
	}
}

func TestVerifyRejectsTamperedRow(t *testing.T) {
	scheme := NewMMCS(symmetric.NewKeccakHasher())
	tree, err := scheme.Commit(testMatrix(t, 3, 8))
	if err != nil {
		t.Fatal(err)
	}
	row, path := tree.Open(5)
	row[0]++
	if err := scheme.Verify(tree.Root(), 5, row, path); err == nil {
		t.Errorf("tampered row verified")
	}
}

func TestVerifyRejectsWrongIndex(t *testing.T) {
	scheme := NewMMCS(symmetric.NewKeccakHasher())
	tree, err := scheme.Commit(testMatrix(t, 3, 8))
	if err != nil {
		t.Fatal(err)
	}
	row, path := tree.Open(5)
	if err := scheme.Verify(tree.Root(), 4, row, path); err == nil {
		t.Errorf("row accepted at the wrong index")
	}
	if err := scheme.Verify(tree.Root(), 9, row, path); err == nil {
		t.Errorf("out-of-range index accepted")
	}
}

func TestCommitRejectsOddHeight(t *testing.T) {
	scheme := NewMMCS(symmetric.NewKeccakHasher())
	if _, err := scheme.Commit(testMatrix(t, 2, 12)); err == nil {
		t.Errorf("expected error for non power-of-two height")
	}
}

func TestSingleRowTree(t *testing.T) {
	scheme := NewMMCS(symmetric.NewKeccakHasher())
	tree, err := scheme.Commit(testMatrix(t, 4, 1))
	if err != nil {
		t.Fatal(err)
	}
	row, path := tree.Open(0)
	if len(path) != 0 {
		t.Fatalf("single-row tree should have an empty path")
	}
	if err := scheme.Verify(tree.Root(), 0, row, path); err != nil {
		t.Errorf("single-row opening rejected: %v", err)
	}
}

func TestFlattenExtRoundTrip(t *testing.T) {
	e := core.NewExtField(core.NewBabyBear())
	values := []core.ExtElem{
		e.FromCoeffs([]uint64{1, 2, 3, 4}),
		e.FromCoeffs([]uint64{5, 6, 7, 8}),
	}
	m := FlattenExt(e, values)
	if m.Width != e.Degree || m.Height != 2 {
		t.Fatalf("got %dx%d, want %dx2", m.Width, m.Height, e.Degree)
	}
	for i, v := range values {
		if got := UnflattenExtRow(e, m.Row(i)); !e.Equal(got, v) {
			t.Errorf("row %d: got %v, want %v", i, got, v)
		}
	}
}
