package protocols

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/challenger"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/dft"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/merkle"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

// FRIParams fixes the commitment-layer soundness knobs.
type FRIParams struct {
	// LogBlowup is the log2 rate of the low-degree extension.
	LogBlowup int
	// NumQueries is the number of query rounds.
	NumQueries int
	// PowBits is the proof-of-work grinding difficulty in bits.
	PowBits int
}

// DefaultFRIParams returns the production parameters: rate 1/8, 32 queries,
// 8 grinding bits.
func DefaultFRIParams() FRIParams {
	return FRIParams{LogBlowup: 3, NumQueries: 32, PowBits: 8}
}

func (p FRIParams) validate() error {
	if p.LogBlowup < 1 {
		return &ConfigurationError{Msg: fmt.Sprintf("log blowup %d must be at least 1", p.LogBlowup)}
	}
	if p.NumQueries < 1 {
		return &ConfigurationError{Msg: fmt.Sprintf("query count %d must be positive", p.NumQueries)}
	}
	if p.PowBits < 0 || p.PowBits > 32 {
		return &ConfigurationError{Msg: fmt.Sprintf("pow bits %d out of range", p.PowBits)}
	}
	return nil
}

// Config is one fully assembled proving stack: a field, its challenge field,
// the commitment strategy, the Merkle scheme and the matching transcript.
type Config struct {
	Field core.Field
	Ext   *core.ExtField
	// DFT is the transform kernel for two-adic fields, nil under the circle
	// commitment.
	DFT  dft.TwoAdicDFT
	MMCS *merkle.MMCS
	FRI  FRIParams

	merkleHashName string
	newChallenger  func() (challenger.Challenger, error)
	pcs            pcs
}

// MerkleHashName returns the configured Merkle hash, "keccak-f" or
// "poseidon2".
func (c *Config) MerkleHashName() string { return c.merkleHashName }

// NewChallenger returns a fresh transcript of the configured flavor.
func (c *Config) NewChallenger() (challenger.Challenger, error) {
	return c.newChallenger()
}

// NewConfig assembles a proving stack and rejects incompatible combinations.
// Two-adic fields require a DFT kernel; Mersenne31 uses the circle commitment
// and must be given a nil kernel. The Keccak Merkle scheme pairs with the
// serializing transcript, the Poseidon2 scheme with the duplex transcript.
func NewConfig(f core.Field, kernel dft.TwoAdicDFT, merkleHash string, fri FRIParams) (*Config, error) {
	if err := fri.validate(); err != nil {
		return nil, err
	}
	e := core.NewExtField(f)
	cfg := &Config{
		Field:          f,
		Ext:            e,
		DFT:            kernel,
		FRI:            fri,
		merkleHashName: merkleHash,
	}

	if core.IsTwoAdic(f) {
		if kernel == nil {
			return nil, &ConfigurationError{
				Msg: fmt.Sprintf("field %s needs a dft kernel", f.Name()),
			}
		}
		cfg.pcs = newTwoAdicPCS(f, e, kernel, fri.LogBlowup)
	} else {
		if kernel == nil {
			cfg.pcs = newCirclePCS(f, e, fri.LogBlowup)
		} else {
			return nil, &ConfigurationError{
				Msg: fmt.Sprintf("field %s has no two-adic subgroup, dft kernel %q does not apply",
					f.Name(), kernel.Name()),
			}
		}
	}

	switch merkleHash {
	case "keccak-f":
		cfg.MMCS = merkle.NewMMCS(symmetric.NewKeccakHasher())
		cfg.newChallenger = func() (challenger.Challenger, error) {
			return challenger.NewSerializing(f), nil
		}
	case "poseidon2":
		hasher, err := symmetric.NewPoseidon2Hasher(f)
		if err != nil {
			return nil, &ConfigurationError{
				Msg: fmt.Sprintf("poseidon2 merkle hash over %s: %v", f.Name(), err),
			}
		}
		cfg.MMCS = merkle.NewMMCS(hasher)
		cfg.newChallenger = func() (challenger.Challenger, error) {
			return challenger.NewDuplex(f)
		}
	default:
		return nil, &ConfigurationError{Msg: fmt.Sprintf("unknown merkle hash %q", merkleHash)}
	}

	return cfg, nil
}
