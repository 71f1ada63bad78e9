package hashstarks

import (
	"fmt"
	"io"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/airs"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/logger"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/protocols"
)

// ProveBlake3 proves a trace of Blake3 permutations, one permutation per row.
func ProveBlake3(opts Options) (*Result, error) {
	return proveObjective(opts, airs.NewBlake3Objective())
}

// ProveKeccakF proves a trace of Keccak-f[1600] permutations, each spread
// over 24 rows.
func ProveKeccakF(opts Options) (*Result, error) {
	return proveObjective(opts, airs.NewKeccakFObjective())
}

// ProvePoseidon2 proves a trace of width-16 Poseidon2 permutations, eight
// per row.
func ProvePoseidon2(opts Options) (*Result, error) {
	return proveObjective(opts, airs.NewPoseidon2Objective())
}

// ProveObjective proves the named hash objective.
func ProveObjective(objective string, opts Options) (*Result, error) {
	obj, err := airs.ObjectiveByName(objective)
	if err != nil {
		return nil, &ConfigurationError{Msg: err.Error()}
	}
	return proveObjective(opts, obj)
}

// ProveMersenne31Keccak proves the named hash objective over Mersenne31 with
// circle interpolation and Keccak Merkle trees.
func ProveMersenne31Keccak(objective string, logTraceLength int) (*Result, error) {
	return ProveObjective(objective, Options{
		Field:          FieldMersenne31,
		LogTraceLength: logTraceLength,
		DFT:            DFTNone,
		MerkleHash:     MerkleHashKeccakF,
	})
}

// ProveMersenne31Poseidon2 proves the named hash objective over Mersenne31
// with circle interpolation and Poseidon2 Merkle trees.
func ProveMersenne31Poseidon2(objective string, logTraceLength int) (*Result, error) {
	return ProveObjective(objective, Options{
		Field:          FieldMersenne31,
		LogTraceLength: logTraceLength,
		DFT:            DFTNone,
		MerkleHash:     MerkleHashPoseidon2,
	})
}

// ProveTwoAdicKeccak proves the named hash objective over a two-adic field
// with the given transform kernel and Keccak Merkle trees.
func ProveTwoAdicKeccak(objective, field, dftName string, logTraceLength int) (*Result, error) {
	return ProveObjective(objective, Options{
		Field:          field,
		LogTraceLength: logTraceLength,
		DFT:            dftName,
		MerkleHash:     MerkleHashKeccakF,
	})
}

// ProveTwoAdicPoseidon2 proves the named hash objective over a two-adic
// field with the given transform kernel and Poseidon2 Merkle trees.
func ProveTwoAdicPoseidon2(objective, field, dftName string, logTraceLength int) (*Result, error) {
	return ProveObjective(objective, Options{
		Field:          field,
		LogTraceLength: logTraceLength,
		DFT:            dftName,
		MerkleHash:     MerkleHashPoseidon2,
	})
}

// ProveFibonacci proves the Fibonacci recurrence starting from (start0,
// start1). The public values are the two starting terms and the last term
// reached.
func ProveFibonacci(opts Options, start0, start1 uint64) (*Result, error) {
	return proveObjective(opts, airs.NewFibonacciObjective(start0, start1))
}

// ProveIncrement proves a width-column trace whose first column counts up
// from start while the remaining columns carry free payload.
func ProveIncrement(opts Options, width int, start uint64) (*Result, error) {
	return proveObjective(opts, airs.NewIncrementObjective(width, start))
}

// ProveIncrementRows proves externally supplied increment rows. A trailing
// row that breaks the count is dropped; the rest is padded up to a power of
// two by continuing the count.
func ProveIncrementRows(opts Options, rows [][]uint64) (*Result, error) {
	if len(rows) == 0 {
		return nil, &TraceShapeError{Msg: "no rows supplied"}
	}
	if n := len(rows); n >= 2 && rows[n-1][0] != rows[n-2][0]+1 {
		log := logger.Logger()
		log.Warn().Int("row", n-1).Msg("dropping trailing row that breaks the count")
		rows = rows[:n-1]
	}
	// The height comes from the rows, not from the options.
	if opts.LogTraceLength == 0 {
		opts.LogTraceLength = 1
	}
	cfg, f, err := opts.config()
	if err != nil {
		return nil, err
	}
	air, err := airs.NewIncrementAIR(f, len(rows[0]))
	if err != nil {
		return nil, err
	}
	trace, err := air.PadTrace(rows)
	if err != nil {
		return nil, err
	}
	return finish(opts, cfg, air, trace, nil, "increment")
}

func proveObjective(opts Options, obj airs.ProofObjective) (*Result, error) {
	cfg, f, err := opts.config()
	if err != nil {
		return nil, err
	}
	air, trace, public, err := obj.Instantiate(f, 1<<uint(opts.LogTraceLength))
	if err != nil {
		return nil, err
	}
	return finish(opts, cfg, air, trace, public, obj.Name())
}

// finish runs prove, verify and serialize, the full round trip every entry
// point performs.
func finish(opts Options, cfg *protocols.Config, air airs.AIR, trace *core.Matrix, public []uint64, objective string) (*Result, error) {
	proof, err := protocols.Prove(cfg, air, trace, public)
	if err != nil {
		return nil, err
	}
	if err := protocols.Verify(cfg, air, proof, public); err != nil {
		return nil, err
	}
	data, err := proof.Serialize()
	if err != nil {
		return nil, err
	}
	logN, err := core.Log2Exact(trace.Height)
	if err != nil {
		return nil, &TraceShapeError{Msg: err.Error()}
	}
	return &Result{
		Proof:          data,
		Field:          opts.Field,
		Objective:      objective,
		LogTraceLength: logN,
		NumHashes:      numHashes(objective, trace.Height),
	}, nil
}

// VerifySerialized decodes a serialized hash-objective proof and verifies it
// under the given options. The objective must be one of the hash statements,
// which carry no public values.
func VerifySerialized(objective string, opts Options, data []byte) error {
	cfg, f, err := opts.config()
	if err != nil {
		return err
	}
	var air airs.AIR
	switch objective {
	case "blake3":
		air = airs.NewBlake3AIR(f)
	case "keccak-f":
		air = airs.NewKeccakFAIR(f)
	case "poseidon2":
		air, err = airs.NewPoseidon2AIR(f)
		if err != nil {
			return err
		}
	default:
		return &ConfigurationError{Msg: fmt.Sprintf("unknown proof objective %q", objective)}
	}
	proof, err := protocols.DeserializeProof(data)
	if err != nil {
		return err
	}
	return protocols.Verify(cfg, air, proof, nil)
}

// ReportResult writes the human-readable outcome of a proving run.
func ReportResult(w io.Writer, res *Result) {
	if res.NumHashes > 0 {
		fmt.Fprintf(w, "Proved %d %s permutations over %s (trace height 2^%d)\n",
			res.NumHashes, res.Objective, res.Field, res.LogTraceLength)
	} else {
		fmt.Fprintf(w, "Proved %s over %s (trace height 2^%d)\n",
			res.Objective, res.Field, res.LogTraceLength)
	}
	fmt.Fprintln(w, "Proof Verified Successfully")
	fmt.Fprintf(w, "Proof size: %d bytes\n", res.ProofSize())
}
