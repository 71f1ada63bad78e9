package challenger

import (
	"encoding/binary"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

// Serializing is the byte-oriented transcript: observations append to a
// little-endian buffer, and each sample ratchets the running Keccak-256 state
// over the buffered bytes.
type Serializing struct {
	field core.Field
	ext   *core.ExtField

	state   [32]byte
	pending []byte
	output  []byte
}

// NewSerializing builds a Keccak-256 challenger over the field.
func NewSerializing(f core.Field) *Serializing {
	return &Serializing{field: f, ext: core.NewExtField(f)}
}

func (c *Serializing) ratchet() {
	buf := make([]byte, 0, 32+len(c.pending))
	buf = append(buf, c.state[:]...)
	buf = append(buf, c.pending...)
	c.state = symmetric.Keccak256(buf)
	c.pending = c.pending[:0]
	c.output = append(c.output[:0], c.state[:]...)
}

func (c *Serializing) ObserveBase(v uint64) {
	c.output = c.output[:0]
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	c.pending = append(c.pending, b[:]...)
}

func (c *Serializing) ObserveExt(v core.ExtElem) {
	observeExtCoeffs(c, c.ext, v)
}

func (c *Serializing) ObserveDigest(d symmetric.Digest) {
	for _, w := range d {
		c.ObserveBase(w)
	}
}

func (c *Serializing) sampleBytes(n int) []byte {
	if len(c.pending) > 0 || len(c.output) == 0 {
		c.ratchet()
	}
	out := make([]byte, 0, n)
	for len(out) < n {
		if len(c.output) == 0 {
			c.pending = c.pending[:0]
			c.ratchet()
		}
		take := n - len(out)
		if take > len(c.output) {
			take = len(c.output)
		}
		out = append(out, c.output[:take]...)
		c.output = c.output[take:]
	}
	return out
}

func (c *Serializing) SampleBase() uint64 {
	raw := binary.LittleEndian.Uint64(c.sampleBytes(8))
	return c.field.FromUint64(raw)
}

func (c *Serializing) SampleExt() core.ExtElem {
	return sampleExtCoeffs(c, c.ext)
}

func (c *Serializing) SampleBits(bits int) int {
	raw := binary.LittleEndian.Uint64(c.sampleBytes(8))
	return int(raw & ((1 << uint(bits)) - 1))
}

func (c *Serializing) Grind(bits int) uint64 {
	return grind(c, bits)
}

func (c *Serializing) CheckWitness(bits int, witness uint64) bool {
	c.ObserveBase(witness)
	return c.SampleBits(bits) == 0
}

func (c *Serializing) Fork() Challenger {
	out := &Serializing{
		field:   c.field,
		ext:     c.ext,
		state:   c.state,
		pending: append([]byte(nil), c.pending...),
		output:  append([]byte(nil), c.output...),
	}
	return out
}
