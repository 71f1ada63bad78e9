// vybium-hash-prover proves and verifies hash permutation traces from the
// command line. It exits 0 when the proof verifies and nonzero otherwise.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/logger"
	hashstarks "github.com/vybium/vybium-hash-starks/pkg/hash-starks"
)

var (
	fField          string
	fObjective      string
	fLogTraceLength int
	fDFT            string
	fMerkleHash     string
	fProofPath      string
)

var rootCmd = &cobra.Command{
	Use:   "vybium-hash-prover",
	Short: "prove hash permutation traces with hash-based STARKs",
	Long: `vybium-hash-prover generates a trace of hash permutations, proves it with a
hash-based STARK and verifies the proof locally.

Mersenne31 has no two-adic subgroup: select it with --dft none to use circle
interpolation. The other fields require --dft parallel or --dft recursive.`,
	Run: prove,
}

func init() {
	rootCmd.Flags().StringVar(&fField, "field", hashstarks.FieldBabyBear,
		"base field: baby-bear, koala-bear or mersenne-31")
	rootCmd.Flags().StringVar(&fObjective, "objective", "blake3",
		"permutation to prove: blake3, keccak-f or poseidon2")
	rootCmd.Flags().IntVar(&fLogTraceLength, "log-trace-length", 10,
		fmt.Sprintf("log2 of the trace height, between 1 and %d", hashstarks.MaxLogTraceLength))
	rootCmd.Flags().StringVar(&fDFT, "dft", hashstarks.DFTParallel,
		"interpolation backend: parallel, recursive or none")
	rootCmd.Flags().StringVar(&fMerkleHash, "merkle-hash", hashstarks.MerkleHashPoseidon2,
		"merkle tree hash: keccak-f or poseidon2")
	rootCmd.Flags().StringVar(&fProofPath, "proof", "",
		"optional path to write the serialized proof to")
}

func prove(cmd *cobra.Command, args []string) {
	log := logger.Logger()
	opts := hashstarks.Options{
		Field:          fField,
		LogTraceLength: fLogTraceLength,
		DFT:            fDFT,
		MerkleHash:     fMerkleHash,
	}
	log.Info().
		Str("field", fField).
		Str("objective", fObjective).
		Int("logTraceLength", fLogTraceLength).
		Str("dft", fDFT).
		Str("merkleHash", fMerkleHash).
		Msg("proving")

	res, err := hashstarks.ProveObjective(fObjective, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	hashstarks.ReportResult(os.Stdout, res)

	if fProofPath != "" {
		if err := os.WriteFile(fProofPath, res.Proof, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		log.Info().Str("path", fProofPath).Int("bytes", res.ProofSize()).Msg("proof written")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(-1)
	}
}
