// Package symmetric provides the hash permutations and sponges backing the
// Merkle commitment layer and the Fiat-Shamir transcripts: Keccak-f[1600]
// with a padding-free lane sponge, and Poseidon2 over each base field.
package symmetric

// Digest is a hash output as machine words. Keccak digests are 4 lanes
// (32 bytes); Poseidon2 digests are 8 field elements.
type Digest []uint64

// Hasher hashes rows of field elements and compresses pairs of digests. One
// Hasher instance parameterizes a full Merkle commitment scheme.
type Hasher interface {
	// Name returns the scheme name as selected on the command line.
	Name() string

	// DigestLen returns the digest length in words.
	DigestLen() int

	// HashRow hashes a row of canonical field elements.
	HashRow(row []uint64) Digest

	// Compress combines two child digests into a parent digest.
	Compress(a, b Digest) Digest
}

// EqualDigests reports word-wise equality.
func EqualDigests(a, b Digest) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
