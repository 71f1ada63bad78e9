package protocols

import (
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/challenger"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// oodPoint is the out-of-domain evaluation point. Two-adic proofs use only X;
// circle proofs carry both coordinates.
type oodPoint struct {
	X, Y core.ExtElem
}

// selectorTable holds the constraint selectors evaluated over the whole
// extended domain, plus the inverse of the vanishing polynomial.
type selectorTable struct {
	First      []uint64
	Last       []uint64
	Transition []uint64
	ZInv       []uint64
}

// pcs is the commitment strategy behind a proof: the two-adic coset FRI for
// BabyBear, KoalaBear and Goldilocks, and the circle-group variant for
// Mersenne31. The prover and verifier are written against this interface and
// stay branch-agnostic.
type pcs interface {
	// extendTrace lifts a height-2^logN trace onto the extended domain of
	// height 2^(logN+logBlowup), in natural order.
	extendTrace(trace *core.Matrix, logN int) (*core.Matrix, error)

	// ldeSelectors evaluates the row selectors over the extended domain.
	ldeSelectors(logN int) (*selectorTable, error)

	// samplePoint draws the out-of-domain point from the transcript.
	samplePoint(ch challenger.Challenger) (oodPoint, error)

	// nextPoint advances the point by one trace row.
	nextPoint(pt oodPoint, logN int) (oodPoint, error)

	// selectorsAt evaluates the selectors and the vanishing polynomial at
	// the out-of-domain point.
	selectorsAt(pt oodPoint, logN int) (first, last, transition, vanishing core.ExtElem, err error)

	// openMatrix evaluates every column of a committed matrix at the
	// point. logSize is the log height of the matrix's domain; shifted
	// marks the extended evaluation domain. The circle strategy returns
	// the odd interpolation parts in aux; the two-adic strategy returns a
	// nil aux.
	openMatrix(m *core.Matrix, logSize int, shifted bool, pt oodPoint) (main, aux []core.ExtElem, err error)

	// hasAux reports whether openings carry odd parts.
	hasAux() bool

	// pointValue recombines one opening into the function value at the
	// point.
	pointValue(pt oodPoint, main, aux core.ExtElem) core.ExtElem

	// deepNumerator computes the numerator of one deep quotient term at
	// extended-domain index k, for a committed value v opened as
	// (main, aux).
	deepNumerator(k, logM int, v uint64, main, aux core.ExtElem) (core.ExtElem, error)

	// deepInvDenominators inverts the deep quotient denominators for every
	// extended-domain index at once.
	deepInvDenominators(pt oodPoint, logM int) ([]core.ExtElem, error)

	// deepInvDenominatorAt inverts a single deep quotient denominator.
	deepInvDenominatorAt(pt oodPoint, logM, k int) (core.ExtElem, error)

	// pairIndex returns the index folded together with k at a layer of the
	// given size.
	pairIndex(layer, k, size int) int

	// foldIndex returns the index the folded value lands on in the next
	// layer.
	foldIndex(layer, k, size int) int

	// foldPair folds the values at k and its pair with challenge beta.
	foldPair(layer, k, size int, atK, atPair, beta core.ExtElem) (core.ExtElem, error)
}

// foldHalves combines the even and odd halves of a pair: the even part
// (u+v)/2 plus beta times the odd part (u-v)/(2c), where c is the domain
// coordinate the pair is symmetric over.
func foldHalves(f core.Field, e *core.ExtField, u, v, beta core.ExtElem, c uint64) core.ExtElem {
	even := e.MulBase(e.Add(u, v), f.Inv(2))
	odd := e.MulBase(e.Sub(u, v), f.Inv(f.Mul(2, c)))
	return e.Add(even, e.Mul(beta, odd))
}

// extBatchInv is Montgomery's trick over the challenge field. Zero entries
// pass through as zero.
func extBatchInv(e *core.ExtField, values []core.ExtElem) []core.ExtElem {
	n := len(values)
	out := make([]core.ExtElem, n)
	prefix := make([]core.ExtElem, n)
	acc := e.One()
	for i, v := range values {
		prefix[i] = acc
		if !e.IsZero(v) {
			acc = e.Mul(acc, v)
		}
	}
	inv := e.Inv(acc)
	for i := n - 1; i >= 0; i-- {
		if e.IsZero(values[i]) {
			continue
		}
		out[i] = e.Mul(inv, prefix[i])
		inv = e.Mul(inv, values[i])
	}
	return out
}
