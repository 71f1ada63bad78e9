package core

import "fmt"

// Matrix is a dense row-major matrix of field elements. Trace matrices,
// low-degree extensions and committed quotient columns all use this shape.
type Matrix struct {
	Values []uint64
	Width  int
	Height int
}

// NewMatrix allocates a zeroed matrix.
func NewMatrix(width, height int) *Matrix {
	return &Matrix{
		Values: make([]uint64, width*height),
		Width:  width,
		Height: height,
	}
}

// NewMatrixFromRows builds a matrix from equal-length rows.
func NewMatrixFromRows(rows [][]uint64) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("matrix requires at least one row")
	}
	width := len(rows[0])
	m := NewMatrix(width, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has width %d, expected %d", i, len(row), width)
		}
		copy(m.Row(i), row)
	}
	return m, nil
}

// Row returns a mutable view of row i.
func (m *Matrix) Row(i int) []uint64 {
	return m.Values[i*m.Width : (i+1)*m.Width]
}

// At returns the element at (row, col).
func (m *Matrix) At(row, col int) uint64 {
	return m.Values[row*m.Width+col]
}

// Set writes the element at (row, col).
func (m *Matrix) Set(row, col int, v uint64) {
	m.Values[row*m.Width+col] = v
}

// Column copies column j into a fresh slice.
func (m *Matrix) Column(j int) []uint64 {
	out := make([]uint64, m.Height)
	for i := 0; i < m.Height; i++ {
		out[i] = m.Values[i*m.Width+j]
	}
	return out
}

// SetColumn writes a full column.
func (m *Matrix) SetColumn(j int, values []uint64) {
	for i := 0; i < m.Height; i++ {
		m.Values[i*m.Width+j] = values[i]
	}
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := NewMatrix(m.Width, m.Height)
	copy(out.Values, m.Values)
	return out
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2Ceil returns the smallest k with 2^k >= n, for n >= 1.
func Log2Ceil(n int) int {
	k := 0
	for (1 << k) < n {
		k++
	}
	return k
}

// Log2Exact returns k with 2^k == n, or an error when n is not a power of two.
func Log2Exact(n int) (int, error) {
	if !IsPowerOfTwo(n) {
		return 0, fmt.Errorf("%d is not a power of two", n)
	}
	k := 0
	for (1 << k) < n {
		k++
	}
	return k, nil
}
