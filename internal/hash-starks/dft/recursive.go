package dft

import (
	"fmt"
	"sync"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// Recursive is the split-radix kernel. It recurses over even and odd
// coefficients and memoizes one twiddle table per transform size, which pays
// off when the same trace height is proven repeatedly.
type Recursive struct {
	field core.Field

	mu       sync.Mutex
	twiddles map[int][]uint64 // logN -> powers of the order-2^logN root
}

// NewRecursive returns the recursive kernel for a two-adic field.
func NewRecursive(f core.Field) *Recursive {
	return &Recursive{field: f, twiddles: make(map[int][]uint64)}
}

func (d *Recursive) Name() string { return "recursive" }

func (d *Recursive) twiddleTable(logN int) ([]uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if tw, ok := d.twiddles[logN]; ok {
		return tw, nil
	}
	root, err := core.RootOfUnity(d.field, logN)
	if err != nil {
		return nil, err
	}
	half := 1 << uint(logN-1)
	tw := make([]uint64, half)
	pow := uint64(1)
	for i := 0; i < half; i++ {
		tw[i] = pow
		pow = d.field.Mul(pow, root)
	}
	d.twiddles[logN] = tw
	return tw, nil
}

// recurse assumes len(values) is a power of two matching logN. stride picks
// every stride-th twiddle so sub-transforms reuse the top-level table.
func (d *Recursive) recurse(values []uint64, tw []uint64, stride int) []uint64 {
	n := len(values)
	if n == 1 {
		return []uint64{values[0]}
	}
	f := d.field
	even := make([]uint64, n/2)
	odd := make([]uint64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = values[2*i]
		odd[i] = values[2*i+1]
	}
	e := d.recurse(even, tw, stride*2)
	o := d.recurse(odd, tw, stride*2)
	out := make([]uint64, n)
	for k := 0; k < n/2; k++ {
		t := f.Mul(tw[k*stride], o[k])
		out[k] = f.Add(e[k], t)
		out[k+n/2] = f.Sub(e[k], t)
	}
	return out
}

func (d *Recursive) DFT(values []uint64) ([]uint64, error) {
	return d.transform(values, false)
}

func (d *Recursive) IDFT(values []uint64) ([]uint64, error) {
	return d.transform(values, true)
}

func (d *Recursive) transform(values []uint64, inverse bool) ([]uint64, error) {
	logN, err := core.Log2Exact(len(values))
	if err != nil {
		return nil, fmt.Errorf("dft size: %w", err)
	}
	if logN == 0 {
		return []uint64{values[0]}, nil
	}
	tw, err := d.twiddleTable(logN)
	if err != nil {
		return nil, err
	}
	if inverse {
		f := d.field
		inv := make([]uint64, len(tw))
		inv[0] = 1
		for i := 1; i < len(tw); i++ {
			inv[i] = f.Inv(tw[i])
		}
		tw = inv
	}
	out := d.recurse(values, tw, 1)
	if inverse {
		f := d.field
		nInv := f.Inv(f.FromUint64(uint64(len(values))))
		for i := range out {
			out[i] = f.Mul(out[i], nInv)
		}
	}
	return out, nil
}

func (d *Recursive) CosetLDEBatch(m *core.Matrix, logBlowup int, shift uint64) (*core.Matrix, error) {
	out := core.NewMatrix(m.Width, m.Height<<uint(logBlowup))
	for j := 0; j < m.Width; j++ {
		lifted, err := cosetLDEColumn(d, d.field, m.Column(j), logBlowup, shift)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", j, err)
		}
		out.SetColumn(j, lifted)
	}
	return out, nil
}
