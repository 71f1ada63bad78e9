package hashstarks

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/dft"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/protocols"
)

// Field names accepted by Options.Field.
const (
	FieldBabyBear   = "baby-bear"
	FieldKoalaBear  = "koala-bear"
	FieldMersenne31 = "mersenne-31"
	FieldGoldilocks = "goldilocks"
)

// Interpolation backends accepted by Options.DFT. DFTNone selects circle
// interpolation and is valid only with Mersenne31; the two-adic fields must
// pick one of the transform kernels.
const (
	DFTParallel  = "parallel"
	DFTRecursive = "recursive"
	DFTNone      = "none"
)

// Merkle hashes accepted by Options.MerkleHash.
const (
	MerkleHashKeccakF   = "keccak-f"
	MerkleHashPoseidon2 = "poseidon2"
)

// MaxLogTraceLength bounds the trace height selectable through Options.
const MaxLogTraceLength = 24

// Options selects the proving stack. The zero value is not usable; every
// field must be set explicitly except DFT, where the empty string means
// DFTNone.
type Options struct {
	// Field names the base field.
	Field string

	// LogTraceLength is the base-2 logarithm of the trace height.
	LogTraceLength int

	// DFT names the interpolation backend.
	DFT string

	// MerkleHash names the hash compressing the Merkle trees.
	MerkleHash string
}

// config validates the options and assembles the internal configuration.
func (o Options) config() (*protocols.Config, core.Field, error) {
	if o.LogTraceLength < 1 || o.LogTraceLength > MaxLogTraceLength {
		return nil, nil, &ConfigurationError{
			Msg: fmt.Sprintf("log trace length %d out of range [1, %d]", o.LogTraceLength, MaxLogTraceLength),
		}
	}
	f, err := core.FieldByName(o.Field)
	if err != nil {
		return nil, nil, &ConfigurationError{Msg: err.Error()}
	}
	var kernel dft.TwoAdicDFT
	switch o.DFT {
	case DFTNone, "":
	default:
		kernel, err = dft.ByName(o.DFT, f)
		if err != nil {
			return nil, nil, &ConfigurationError{Msg: err.Error()}
		}
	}
	cfg, err := protocols.NewConfig(f, kernel, o.MerkleHash, protocols.DefaultFRIParams())
	if err != nil {
		return nil, nil, err
	}
	return cfg, f, nil
}

// Result is a proven and locally verified statement.
type Result struct {
	// Proof is the serialized proof.
	Proof []byte

	// Field and Objective echo what was proved.
	Field     string
	Objective string

	// LogTraceLength is the base-2 logarithm of the trace height.
	LogTraceLength int

	// NumHashes counts the permutations the trace covers. Zero for the
	// demonstration statements.
	NumHashes int
}

// ProofSize returns the serialized proof length in bytes.
func (r *Result) ProofSize() int { return len(r.Proof) }

// numHashes converts a trace height into a permutation count: Blake3 packs
// one permutation per row, Keccak-f spreads one over 24 rows and Poseidon2
// packs eight per row.
func numHashes(objective string, height int) int {
	switch objective {
	case "blake3":
		return height
	case "keccak-f":
		return height / 24
	case "poseidon2":
		return height * 8
	default:
		return 0
	}
}
