// Package hashstarks is the public API for proving hash permutations with
// hash-based STARKs.
//
// Features:
//   - Proof objectives: Blake3, Keccak-f[1600] and Poseidon2 permutation
//     traces, plus the Fibonacci and increment demonstration statements
//   - Fields: BabyBear, KoalaBear, Mersenne31 and Goldilocks, each with its
//     packed extension field for out-of-domain sampling
//   - Commitments: Merkle trees over Keccak or a Poseidon2 sponge, opened
//     through a low-degree folding argument with proof-of-work grinding
//   - Self-contained proofs with a deterministic little-endian wire format
//
// Quick Start:
//
//	res, err := hashstarks.ProveKeccakF(hashstarks.Options{
//		Field:          hashstarks.FieldBabyBear,
//		LogTraceLength: 8,
//		DFT:            hashstarks.DFTParallel,
//		MerkleHash:     hashstarks.MerkleHashPoseidon2,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	hashstarks.ReportResult(os.Stdout, res)
//
// Architecture:
//
// The package is a thin facade over the internal pipeline. An Options value
// selects the field, the interpolation backend and the Merkle hash; the
// proving entry points instantiate the statement, generate its trace, prove
// it, verify the proof and hand back the serialized bytes. Two-adic fields
// interpolate with a discrete Fourier transform over a multiplicative coset;
// Mersenne31 has no two-adic subgroup and interpolates over the circle group
// instead, selected with DFTNone.
package hashstarks
