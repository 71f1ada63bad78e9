// Package merkle implements the Merkle matrix commitment scheme: matrices
// commit row-wise through an injected hasher, openings reveal a row plus its
// authentication path, and verification replays the path against the root.
package merkle

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

// MMCS is a matrix commitment scheme bound to a hash scheme.
type MMCS struct {
	hasher symmetric.Hasher
}

// NewMMCS builds a commitment scheme over the given hasher.
func NewMMCS(h symmetric.Hasher) *MMCS {
	return &MMCS{hasher: h}
}

// Hasher exposes the underlying hash scheme.
func (m *MMCS) Hasher() symmetric.Hasher { return m.hasher }

// Tree is a committed matrix: the matrix itself plus every tree layer, leaves
// first.
type Tree struct {
	Matrix *core.Matrix
	layers [][]symmetric.Digest
}

// Commit hashes every row of the matrix and folds the digests into a binary
// tree. The height must be a power of two.
func (m *MMCS) Commit(mat *core.Matrix) (*Tree, error) {
	if !core.IsPowerOfTwo(mat.Height) {
		return nil, fmt.Errorf("matrix height %d is not a power of two", mat.Height)
	}
	leaves := make([]symmetric.Digest, mat.Height)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	chunk := (mat.Height + runtime.GOMAXPROCS(0) - 1) / runtime.GOMAXPROCS(0)
	if chunk == 0 {
		chunk = 1
	}
	for start := 0; start < mat.Height; start += chunk {
		start := start
		end := start + chunk
		if end > mat.Height {
			end = mat.Height
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				leaves[i] = m.hasher.HashRow(mat.Row(i))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	layers := [][]symmetric.Digest{leaves}
	for len(layers[len(layers)-1]) > 1 {
		prev := layers[len(layers)-1]
		next := make([]symmetric.Digest, len(prev)/2)
		for i := range next {
			next[i] = m.hasher.Compress(prev[2*i], prev[2*i+1])
		}
		layers = append(layers, next)
	}
	return &Tree{Matrix: mat, layers: layers}, nil
}

// Root returns the tree root.
func (t *Tree) Root() symmetric.Digest {
	return t.layers[len(t.layers)-1][0]
}

// Open returns the row at index together with its authentication path, one
// sibling digest per tree level.
func (t *Tree) Open(index int) ([]uint64, []symmetric.Digest) {
	row := make([]uint64, t.Matrix.Width)
	copy(row, t.Matrix.Row(index))
	path := make([]symmetric.Digest, 0, len(t.layers)-1)
	for level := 0; level < len(t.layers)-1; level++ {
		sibling := (index >> uint(level)) ^ 1
		path = append(path, t.layers[level][sibling])
	}
	return row, path
}

// Verify replays an opened row against a root. The tree height is implied by
// the path length.
func (m *MMCS) Verify(root symmetric.Digest, index int, row []uint64, path []symmetric.Digest) error {
	height := 1 << uint(len(path))
	if index < 0 || index >= height {
		return fmt.Errorf("index %d out of range for tree of height %d", index, height)
	}
	node := m.hasher.HashRow(row)
	for level, sibling := range path {
		if (index>>uint(level))&1 == 0 {
			node = m.hasher.Compress(node, sibling)
		} else {
			node = m.hasher.Compress(sibling, node)
		}
	}
	if !symmetric.EqualDigests(node, root) {
		return fmt.Errorf("merkle path does not reach the committed root")
	}
	return nil
}

// FlattenExt lays out challenge-field values as a base-field matrix, one
// coefficient per column. Committing extension columns goes through this, so
// the tree itself only ever sees base elements.
func FlattenExt(e *core.ExtField, values []core.ExtElem) *core.Matrix {
	m := core.NewMatrix(e.Degree, len(values))
	for i, v := range values {
		copy(m.Row(i), v[:e.Degree])
	}
	return m
}

// UnflattenExtRow reads one flattened row back as a challenge-field element.
func UnflattenExtRow(e *core.ExtField, row []uint64) core.ExtElem {
	return e.FromCoeffs(row)
}
