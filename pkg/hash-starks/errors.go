package hashstarks

import "github.com/vybium/vybium-hash-starks/internal/hash-starks/protocols"

// The pipeline's error types are re-exported so callers can dispatch with
// errors.As without importing internal packages.
type (
	// ConfigurationError reports an invalid or inconsistent configuration.
	ConfigurationError = protocols.ConfigurationError

	// TraceShapeError reports a trace whose dimensions do not fit the
	// statement being proved.
	TraceShapeError = protocols.TraceShapeError

	// ConstraintViolationError reports the first trace row that breaks a
	// constraint, caught before any commitment work starts.
	ConstraintViolationError = protocols.ConstraintViolationError

	// VerificationError reports a rejected proof together with the check
	// that failed.
	VerificationError = protocols.VerificationError

	// VerificationKind classifies verification failures.
	VerificationKind = protocols.VerificationKind

	// SerializationError reports malformed proof bytes.
	SerializationError = protocols.SerializationError
)

const (
	KindProofShape   = protocols.KindProofShape
	KindMerkle       = protocols.KindMerkle
	KindOodMismatch  = protocols.KindOodMismatch
	KindFoldMismatch = protocols.KindFoldMismatch
	KindFinalValue   = protocols.KindFinalValue
	KindTranscript   = protocols.KindTranscript
)
