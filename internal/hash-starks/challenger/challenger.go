// Package challenger implements the Fiat-Shamir transcripts. The duplex
// challenger runs a Poseidon2 sponge over field elements and pairs with the
// Poseidon2 Merkle scheme; the serializing challenger feeds a byte transcript
// through Keccak-256 and pairs with the Keccak Merkle scheme.
package challenger

import (
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

// Challenger is a deterministic transcript. Prover and verifier drive
// identical observation sequences and therefore draw identical challenges.
type Challenger interface {
	// ObserveBase absorbs one canonical base-field element.
	ObserveBase(v uint64)

	// ObserveExt absorbs a challenge-field element coefficient-wise.
	ObserveExt(v core.ExtElem)

	// ObserveDigest absorbs a commitment root.
	ObserveDigest(d symmetric.Digest)

	// SampleBase draws a base-field challenge.
	SampleBase() uint64

	// SampleExt draws a challenge-field challenge.
	SampleExt() core.ExtElem

	// SampleBits draws an integer in [0, 2^bits).
	SampleBits(bits int) int

	// Grind searches for a witness whose observation makes the next
	// SampleBits(bits) draw zero, then absorbs it.
	Grind(bits int) uint64

	// CheckWitness absorbs a claimed witness and checks the grind
	// condition.
	CheckWitness(bits int, witness uint64) bool

	// Fork returns an independent deep copy of the transcript state.
	Fork() Challenger
}

func observeExtCoeffs(c Challenger, e *core.ExtField, v core.ExtElem) {
	for i := 0; i < e.Degree; i++ {
		c.ObserveBase(v[i])
	}
}

func sampleExtCoeffs(c Challenger, e *core.ExtField) core.ExtElem {
	var out core.ExtElem
	for i := 0; i < e.Degree; i++ {
		out[i] = c.SampleBase()
	}
	return out
}

// grind runs the generic proof-of-work search: fork the transcript per
// candidate until the sampled window is zero, then commit the winner to the
// real transcript.
func grind(c Challenger, bits int) uint64 {
	for witness := uint64(0); ; witness++ {
		probe := c.Fork()
		if probe.CheckWitness(bits, witness) {
			if !c.CheckWitness(bits, witness) {
				// Fork must mirror the parent exactly.
				panic("grind witness failed on the parent transcript")
			}
			return witness
		}
	}
}
