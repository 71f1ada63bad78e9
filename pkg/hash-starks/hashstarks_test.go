package hashstarks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProveFibonacciRoundTrip(t *testing.T) {
	res, err := ProveFibonacci(Options{
		Field:          FieldBabyBear,
		LogTraceLength: 3,
		DFT:            DFTParallel,
		MerkleHash:     MerkleHashKeccakF,
	}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.LogTraceLength)
	assert.Zero(t, res.NumHashes)
	assert.NotZero(t, res.ProofSize())
	assert.Equal(t, len(res.Proof), res.ProofSize())

	var out bytes.Buffer
	ReportResult(&out, res)
	assert.Contains(t, out.String(), "Proof Verified Successfully")
}

func TestProveKeccakFAndVerifySerialized(t *testing.T) {
	if testing.Short() {
		t.Skip("keccak-f trace generation is slow")
	}
	opts := Options{
		Field:          FieldKoalaBear,
		LogTraceLength: 5,
		DFT:            DFTRecursive,
		MerkleHash:     MerkleHashPoseidon2,
	}
	res, err := ProveKeccakF(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumHashes, "32 rows hold one keccak permutation")

	require.NoError(t, VerifySerialized("keccak-f", opts, res.Proof))

	tampered := append([]byte(nil), res.Proof...)
	tampered[len(tampered)/2] ^= 1
	assert.Error(t, VerifySerialized("keccak-f", opts, tampered))
}

func TestProveBlake3Mersenne31(t *testing.T) {
	res, err := ProveBlake3(Options{
		Field:          FieldMersenne31,
		LogTraceLength: 2,
		DFT:            DFTNone,
		MerkleHash:     MerkleHashPoseidon2,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.NumHashes, "one blake3 permutation per row")
}

func TestBranchEntryPoints(t *testing.T) {
	res, err := ProveMersenne31Keccak("blake3", 1)
	require.NoError(t, err)
	assert.Equal(t, FieldMersenne31, res.Field)

	res, err = ProveTwoAdicPoseidon2("blake3", FieldBabyBear, DFTParallel, 1)
	require.NoError(t, err)
	assert.Equal(t, FieldBabyBear, res.Field)
}

func TestProveIncrementRowsDropsTrailingRow(t *testing.T) {
	opts := Options{
		Field:          FieldBabyBear,
		LogTraceLength: 2,
		DFT:            DFTParallel,
		MerkleHash:     MerkleHashKeccakF,
	}
	rows := [][]uint64{
		{0, 10, 11},
		{1, 12, 13},
		{2, 14, 15},
		{3, 16, 17},
		{9, 0, 0}, // breaks the count, must be dropped
	}
	res, err := ProveIncrementRows(opts, rows)
	require.NoError(t, err)
	assert.Equal(t, "increment", res.Objective)

	_, err = ProveIncrementRows(opts, nil)
	assert.Error(t, err, "empty row set")
}

func TestOptionsValidation(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"log length too small", Options{Field: FieldBabyBear, LogTraceLength: 0, DFT: DFTParallel, MerkleHash: MerkleHashKeccakF}},
		{"log length too large", Options{Field: FieldBabyBear, LogTraceLength: MaxLogTraceLength + 1, DFT: DFTParallel, MerkleHash: MerkleHashKeccakF}},
		{"unknown field", Options{Field: "pallas", LogTraceLength: 3, DFT: DFTParallel, MerkleHash: MerkleHashKeccakF}},
		{"unknown dft", Options{Field: FieldBabyBear, LogTraceLength: 3, DFT: "simd", MerkleHash: MerkleHashKeccakF}},
		{"two-adic field without dft", Options{Field: FieldKoalaBear, LogTraceLength: 3, DFT: DFTNone, MerkleHash: MerkleHashKeccakF}},
		{"mersenne-31 with dft", Options{Field: FieldMersenne31, LogTraceLength: 3, DFT: DFTParallel, MerkleHash: MerkleHashKeccakF}},
		{"unknown merkle hash", Options{Field: FieldBabyBear, LogTraceLength: 3, DFT: DFTParallel, MerkleHash: "sha256"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ProveBlake3(tc.opts)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}

	_, err := ProveObjective("md5", Options{Field: FieldBabyBear, LogTraceLength: 3, DFT: DFTParallel, MerkleHash: MerkleHashKeccakF})
	assert.Error(t, err, "unknown objective")
}
