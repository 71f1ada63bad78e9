package symmetric

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

const (
	keccakRate      = 17 // absorbed lanes per permutation call
	keccakDigestLen = 4  // 32 bytes
)

// KeccakHasher is the Keccak-f[1600] lane sponge used by the Keccak Merkle
// scheme. Inputs are fixed-width rows, so the sponge runs padding-free: field
// elements are absorbed as little-endian lanes, 17 per block.
type KeccakHasher struct{}

// NewKeccakHasher returns the Keccak row hasher and digest compressor.
func NewKeccakHasher() *KeccakHasher { return &KeccakHasher{} }

func (h *KeccakHasher) Name() string   { return "keccak" }
func (h *KeccakHasher) DigestLen() int { return keccakDigestLen }

func (h *KeccakHasher) HashRow(row []uint64) Digest {
	var state [25]uint64
	for len(row) > 0 {
		n := keccakRate
		if len(row) < n {
			n = len(row)
		}
		for i := 0; i < n; i++ {
			state[i] ^= row[i]
		}
		KeccakF(&state)
		row = row[n:]
	}
	out := make(Digest, keccakDigestLen)
	copy(out, state[:keccakDigestLen])
	return out
}

func (h *KeccakHasher) Compress(a, b Digest) Digest {
	var state [25]uint64
	copy(state[:keccakDigestLen], a)
	copy(state[keccakDigestLen:2*keccakDigestLen], b)
	KeccakF(&state)
	out := make(Digest, keccakDigestLen)
	copy(out, state[:keccakDigestLen])
	return out
}

// Keccak256 hashes arbitrary bytes with the legacy (pre-SHA3 padding)
// Keccak-256. The serializing challenger runs its transcript through this.
func Keccak256(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// DigestBytes serializes a digest as little-endian words.
func DigestBytes(d Digest) []byte {
	out := make([]byte, 8*len(d))
	for i, w := range d {
		binary.LittleEndian.PutUint64(out[8*i:], w)
	}
	return out
}
