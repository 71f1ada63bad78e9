package core

import "testing"

func TestMatrixRowsAndColumns(t *testing.T) {
	m, err := NewMatrixFromRows([][]uint64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
		{10, 11, 12},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 3 || m.Height != 4 {
		t.Fatalf("got %dx%d, want 3x4", m.Width, m.Height)
	}
	if got := m.At(2, 1); got != 8 {
		t.Errorf("At(2,1) = %d, want 8", got)
	}
	col := m.Column(2)
	want := []uint64{3, 6, 9, 12}
	for i := range want {
		if col[i] != want[i] {
			t.Errorf("column[%d] = %d, want %d", i, col[i], want[i])
		}
	}
	clone := m.Clone()
	clone.Set(0, 0, 99)
	if m.At(0, 0) == 99 {
		t.Errorf("clone aliases the original")
	}
}

func TestMatrixRaggedRows(t *testing.T) {
	if _, err := NewMatrixFromRows([][]uint64{{1, 2}, {3}}); err == nil {
		t.Errorf("expected error for ragged rows")
	}
}

func TestLog2Helpers(t *testing.T) {
	if !IsPowerOfTwo(64) || IsPowerOfTwo(0) || IsPowerOfTwo(12) {
		t.Errorf("IsPowerOfTwo misbehaves")
	}
	if got := Log2Ceil(1); got != 0 {
		t.Errorf("Log2Ceil(1) = %d, want 0", got)
	}
	if got := Log2Ceil(33); got != 6 {
		t.Errorf("Log2Ceil(33) = %d, want 6", got)
	}
	if k, err := Log2Exact(128); err != nil || k != 7 {
		t.Errorf("Log2Exact(128) = %d, %v", k, err)
	}
	if _, err := Log2Exact(96); err == nil {
		t.Errorf("expected error for non power of two")
	}
}
