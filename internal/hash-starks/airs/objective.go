package airs

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// ProofObjective is the closed set of provable statements. Each variant binds
// an AIR to its trace generator for a concrete field, so callers dispatch
// once and the rest of the pipeline stays objective-agnostic.
type ProofObjective interface {
	// Name returns the objective name as selected on the command line.
	Name() string

	// Instantiate builds the AIR, the trace and the public values for a
	// field and power-of-two trace height.
	Instantiate(f core.Field, height int) (AIR, *core.Matrix, []uint64, error)
}

// traceSeed fixes the synthetic inputs of the hash objectives.
const traceSeed = 0x68617368

type blake3Objective struct{}

func (blake3Objective) Name() string { return "blake3" }

func (blake3Objective) Instantiate(f core.Field, height int) (AIR, *core.Matrix, []uint64, error) {
	air := NewBlake3AIR(f)
	trace, err := air.GenerateTrace(traceSeed, height)
	if err != nil {
		return nil, nil, nil, err
	}
	return air, trace, nil, nil
}

type keccakFObjective struct{}

func (keccakFObjective) Name() string { return "keccak-f" }

func (keccakFObjective) Instantiate(f core.Field, height int) (AIR, *core.Matrix, []uint64, error) {
	air := NewKeccakFAIR(f)
	trace, err := air.GenerateTrace(traceSeed, height)
	if err != nil {
		return nil, nil, nil, err
	}
	return air, trace, nil, nil
}

type poseidon2Objective struct{}

func (poseidon2Objective) Name() string { return "poseidon2" }

func (poseidon2Objective) Instantiate(f core.Field, height int) (AIR, *core.Matrix, []uint64, error) {
	air, err := NewPoseidon2AIR(f)
	if err != nil {
		return nil, nil, nil, err
	}
	trace, err := air.GenerateTrace(traceSeed, height)
	if err != nil {
		return nil, nil, nil, err
	}
	return air, trace, nil, nil
}

type fibonacciObjective struct {
	start0, start1 uint64
}

func (fibonacciObjective) Name() string { return "fibonacci" }

func (o fibonacciObjective) Instantiate(f core.Field, height int) (AIR, *core.Matrix, []uint64, error) {
	air := NewFibonacciAIR(f)
	trace, public, err := air.GenerateTrace(o.start0, o.start1, height)
	if err != nil {
		return nil, nil, nil, err
	}
	return air, trace, public, nil
}

type incrementObjective struct {
	width int
	start uint64
}

func (incrementObjective) Name() string { return "increment" }

func (o incrementObjective) Instantiate(f core.Field, height int) (AIR, *core.Matrix, []uint64, error) {
	air, err := NewIncrementAIR(f, o.width)
	if err != nil {
		return nil, nil, nil, err
	}
	trace, err := air.GenerateTrace(o.start, height)
	if err != nil {
		return nil, nil, nil, err
	}
	return air, trace, nil, nil
}

// NewBlake3Objective proves Blake3 permutations, one per row.
func NewBlake3Objective() ProofObjective { return blake3Objective{} }

// NewKeccakFObjective proves Keccak-f[1600] permutations, 24 rows each.
func NewKeccakFObjective() ProofObjective { return keccakFObjective{} }

// NewPoseidon2Objective proves width-16 Poseidon2 permutations, eight per row.
func NewPoseidon2Objective() ProofObjective { return poseidon2Objective{} }

// NewFibonacciObjective proves the Fibonacci recurrence from (start0, start1).
func NewFibonacciObjective(start0, start1 uint64) ProofObjective {
	return fibonacciObjective{start0: start0, start1: start1}
}

// NewIncrementObjective proves the increment column over a width-column trace.
func NewIncrementObjective(width int, start uint64) ProofObjective {
	return incrementObjective{width: width, start: start}
}

// ObjectiveByName resolves a hash objective as named on the command line.
func ObjectiveByName(name string) (ProofObjective, error) {
	switch name {
	case "blake3":
		return NewBlake3Objective(), nil
	case "keccak-f":
		return NewKeccakFObjective(), nil
	case "poseidon2":
		return NewPoseidon2Objective(), nil
	default:
		return nil, fmt.Errorf("unknown proof objective %q", name)
	}
}
