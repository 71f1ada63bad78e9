package challenger

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

const (
	duplexWidth = 24
	duplexRate  = 16
)

// Duplex is the field-native transcript: a width-24 Poseidon2 state absorbing
// and squeezing 16 elements per permutation call.
type Duplex struct {
	field core.Field
	ext   *core.ExtField
	perm  symmetric.Permutation

	state  []uint64
	inputs []uint64 // pending observations, less than one rate block
	output []uint64 // unclaimed squeezed elements
}

// NewDuplex builds a duplex challenger over the field's Poseidon2
// permutation.
func NewDuplex(f core.Field) (*Duplex, error) {
	perm, err := symmetric.NewPoseidon2Permutation(f, duplexWidth)
	if err != nil {
		return nil, fmt.Errorf("duplex challenger: %w", err)
	}
	return &Duplex{
		field: f,
		ext:   core.NewExtField(f),
		perm:  perm,
		state: make([]uint64, duplexWidth),
	}, nil
}

func (c *Duplex) duplexing() {
	for i, v := range c.inputs {
		c.state[i] = v
	}
	c.inputs = c.inputs[:0]
	if err := c.perm.Permute(c.state); err != nil {
		panic(err)
	}
	c.output = append(c.output[:0], c.state[:duplexRate]...)
}

func (c *Duplex) ObserveBase(v uint64) {
	// Any pending output is stale once new data arrives.
	c.output = c.output[:0]
	c.inputs = append(c.inputs, v)
	if len(c.inputs) == duplexRate {
		c.duplexing()
	}
}

func (c *Duplex) ObserveExt(v core.ExtElem) {
	observeExtCoeffs(c, c.ext, v)
}

func (c *Duplex) ObserveDigest(d symmetric.Digest) {
	// Poseidon2 digests are field elements already.
	for _, w := range d {
		c.ObserveBase(w)
	}
}

func (c *Duplex) SampleBase() uint64 {
	if len(c.inputs) > 0 || len(c.output) == 0 {
		c.duplexing()
	}
	v := c.output[len(c.output)-1]
	c.output = c.output[:len(c.output)-1]
	return v
}

func (c *Duplex) SampleExt() core.ExtElem {
	return sampleExtCoeffs(c, c.ext)
}

func (c *Duplex) SampleBits(bits int) int {
	return int(c.SampleBase() & ((1 << uint(bits)) - 1))
}

func (c *Duplex) Grind(bits int) uint64 {
	return grind(c, bits)
}

func (c *Duplex) CheckWitness(bits int, witness uint64) bool {
	c.ObserveBase(c.field.FromUint64(witness))
	return c.SampleBits(bits) == 0
}

func (c *Duplex) Fork() Challenger {
	out := &Duplex{
		field:  c.field,
		ext:    c.ext,
		perm:   c.perm,
		state:  append([]uint64(nil), c.state...),
		inputs: append([]uint64(nil), c.inputs...),
		output: append([]uint64(nil), c.output...),
	}
	return out
}
