package dft

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// Parallel is the iterative radix-2 kernel. Batch extensions fan columns out
// over a worker pool sized to GOMAXPROCS.
type Parallel struct {
	field core.Field
}

// NewParallel returns the parallel kernel for a two-adic field.
func NewParallel(f core.Field) *Parallel {
	return &Parallel{field: f}
}

func (d *Parallel) Name() string { return "parallel" }

func (d *Parallel) DFT(values []uint64) ([]uint64, error) {
	return d.transform(values, false)
}

func (d *Parallel) IDFT(values []uint64) ([]uint64, error) {
	return d.transform(values, true)
}

func (d *Parallel) transform(values []uint64, inverse bool) ([]uint64, error) {
	logN, err := core.Log2Exact(len(values))
	if err != nil {
		return nil, fmt.Errorf("dft size: %w", err)
	}
	root, err := core.RootOfUnity(d.field, logN)
	if err != nil {
		return nil, err
	}
	if inverse {
		root = d.field.Inv(root)
	}
	out := make([]uint64, len(values))
	copy(out, values)
	fftInPlace(d.field, out, root)
	if inverse {
		nInv := d.field.Inv(d.field.FromUint64(uint64(len(values))))
		for i := range out {
			out[i] = d.field.Mul(out[i], nInv)
		}
	}
	return out, nil
}

func (d *Parallel) CosetLDEBatch(m *core.Matrix, logBlowup int, shift uint64) (*core.Matrix, error) {
	out := core.NewMatrix(m.Width, m.Height<<uint(logBlowup))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for j := 0; j < m.Width; j++ {
		j := j
		g.Go(func() error {
			lifted, err := cosetLDEColumn(d, d.field, m.Column(j), logBlowup, shift)
			if err != nil {
				return fmt.Errorf("column %d: %w", j, err)
			}
			out.SetColumn(j, lifted)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
