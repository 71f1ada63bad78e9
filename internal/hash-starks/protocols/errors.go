// Package protocols assembles the proving pipeline: configuration, the
// polynomial commitment strategies (two-adic FRI and circle), the prover, the
// verifier and proof serialization.
package protocols

import "fmt"

// ConfigurationError marks an incompatible field / DFT / commitment
// combination. It is raised during assembly, before any proving starts.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Msg
}

// TraceShapeError marks a trace whose dimensions do not fit the AIR.
type TraceShapeError struct {
	Msg string
}

func (e *TraceShapeError) Error() string {
	return "trace shape: " + e.Msg
}

// ConstraintViolationError reports the first constraint the trace fails,
// found by the row-wise check before committing.
type ConstraintViolationError struct {
	Row        int
	Constraint int
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation: constraint %d at row %d", e.Constraint, e.Row)
}

// VerificationKind classifies why a proof was rejected.
type VerificationKind int

const (
	// KindProofShape: the proof container does not match the configuration.
	KindProofShape VerificationKind = iota
	// KindMerkle: a Merkle opening failed against a committed root.
	KindMerkle
	// KindOodMismatch: the constraint identity fails at the out-of-domain
	// point, which includes wrong public values.
	KindOodMismatch
	// KindFoldMismatch: a folding layer is inconsistent at a query.
	KindFoldMismatch
	// KindFinalValue: the fully folded value differs from the claimed one.
	KindFinalValue
	// KindTranscript: the proof-of-work witness fails the transcript.
	KindTranscript
)

func (k VerificationKind) String() string {
	switch k {
	case KindProofShape:
		return "proof-shape"
	case KindMerkle:
		return "merkle"
	case KindOodMismatch:
		return "ood-mismatch"
	case KindFoldMismatch:
		return "fold-mismatch"
	case KindFinalValue:
		return "final-value"
	case KindTranscript:
		return "transcript"
	default:
		return "unknown"
	}
}

// VerificationError is a machine-readable proof rejection.
type VerificationError struct {
	Kind VerificationKind
	Msg  string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed (%s): %s", e.Kind, e.Msg)
}

func verifyErrf(kind VerificationKind, format string, args ...any) error {
	return &VerificationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// SerializationError marks a proof that could not be encoded or decoded.
type SerializationError struct {
	Msg string
}

func (e *SerializationError) Error() string {
	return "serialization: " + e.Msg
}
