package protocols

import (
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/airs"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/merkle"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

// Verify replays the transcript against the proof, checks the constraint
// identity at the out-of-domain point and spot-checks the folding at every
// query index. A nil return means the proof is accepted.
func Verify(cfg *Config, air airs.AIR, proof *Proof, public []uint64) error {
	e := cfg.Ext
	extDeg := cfg.Field.ExtensionDegree()

	if err := checkProofShape(cfg, air, proof, public); err != nil {
		return err
	}
	logN := proof.LogN
	logM := logN + cfg.FRI.LogBlowup
	m := 1 << uint(logM)

	ch, err := cfg.NewChallenger()
	if err != nil {
		return err
	}
	ch.ObserveBase(uint64(logN))
	ch.ObserveBase(uint64(proof.Width))
	for _, pv := range public {
		ch.ObserveBase(pv)
	}
	ch.ObserveDigest(proof.TraceRoot)
	alpha := ch.SampleExt()
	ch.ObserveDigest(proof.QuotientRoot)

	pt, err := cfg.pcs.samplePoint(ch)
	if err != nil {
		return err
	}
	ptNext, err := cfg.pcs.nextPoint(pt, logN)
	if err != nil {
		return err
	}
	observeOpenings(ch, &proof.Openings)
	deepAlpha := ch.SampleExt()

	betas := make([]core.ExtElem, logM)
	for j := 0; j < logM; j++ {
		betas[j] = ch.SampleExt()
		if j < logM-1 {
			ch.ObserveDigest(proof.FRI.CommitRoots[j])
		} else {
			ch.ObserveExt(proof.FRI.FinalValue)
		}
	}
	if !ch.CheckWitness(cfg.FRI.PowBits, proof.FRI.PowWitness) {
		return verifyErrf(KindTranscript, "proof-of-work witness %d fails the transcript", proof.FRI.PowWitness)
	}
	indices := make([]int, cfg.FRI.NumQueries)
	for q := range indices {
		indices[q] = ch.SampleBits(logM)
	}

	// Constraint identity at the out-of-domain point.
	op := &proof.Openings
	local := make([]core.ExtElem, proof.Width)
	next := make([]core.ExtElem, proof.Width)
	for j := 0; j < proof.Width; j++ {
		local[j] = cfg.pcs.pointValue(pt, op.TraceLocal[j], deepAuxAt(op.TraceLocalAux, j))
		next[j] = cfg.pcs.pointValue(ptNext, op.TraceNext[j], deepAuxAt(op.TraceNextAux, j))
	}
	first, last, transition, vanishing, err := cfg.pcs.selectorsAt(pt, logN)
	if err != nil {
		return err
	}
	b := airs.NewBuilder(e, local, next, public, first, last, transition, alpha)
	air.Eval(b)

	quotientAt := e.Zero()
	for i := 0; i < extDeg; i++ {
		var basis core.ExtElem
		basis[i] = 1
		qi := cfg.pcs.pointValue(pt, op.Quotient[i], deepAuxAt(op.QuotientAux, i))
		quotientAt = e.Add(quotientAt, e.Mul(qi, basis))
	}
	if !e.Equal(b.Accumulated(), e.Mul(vanishing, quotientAt)) {
		return verifyErrf(KindOodMismatch, "constraint identity fails at the out-of-domain point")
	}

	for q, idx := range indices {
		if err := verifyQuery(cfg, proof, &proof.FRI.Queries[q], idx, m, logM, pt, ptNext, deepAlpha, betas); err != nil {
			return err
		}
	}
	return nil
}

func checkProofShape(cfg *Config, air airs.AIR, proof *Proof, public []uint64) error {
	if proof.FieldName != cfg.Field.Name() {
		return verifyErrf(KindProofShape, "proof field %q, configuration field %q", proof.FieldName, cfg.Field.Name())
	}
	if proof.MerkleHash != cfg.MerkleHashName() {
		return verifyErrf(KindProofShape, "proof merkle hash %q, configuration %q", proof.MerkleHash, cfg.MerkleHashName())
	}
	if proof.Width != air.Width() {
		return verifyErrf(KindProofShape, "proof width %d, air wants %d", proof.Width, air.Width())
	}
	if len(public) != air.PublicValueCount() {
		return verifyErrf(KindProofShape, "%d public values, air wants %d", len(public), air.PublicValueCount())
	}
	if proof.LogN < 1 || proof.LogN+cfg.FRI.LogBlowup > 30 {
		return verifyErrf(KindProofShape, "log trace height %d out of range", proof.LogN)
	}
	logM := proof.LogN + cfg.FRI.LogBlowup

	op := &proof.Openings
	extDeg := cfg.Field.ExtensionDegree()
	if len(op.TraceLocal) != proof.Width || len(op.TraceNext) != proof.Width || len(op.Quotient) != extDeg {
		return verifyErrf(KindProofShape, "opening counts do not match the trace and quotient widths")
	}
	if cfg.pcs.hasAux() {
		if len(op.TraceLocalAux) != proof.Width || len(op.TraceNextAux) != proof.Width || len(op.QuotientAux) != extDeg {
			return verifyErrf(KindProofShape, "odd-part opening counts do not match")
		}
	} else if len(op.TraceLocalAux) != 0 || len(op.TraceNextAux) != 0 || len(op.QuotientAux) != 0 {
		return verifyErrf(KindProofShape, "unexpected odd-part openings")
	}
	if len(proof.FRI.CommitRoots) != logM-1 {
		return verifyErrf(KindProofShape, "%d fold roots, expected %d", len(proof.FRI.CommitRoots), logM-1)
	}
	if len(proof.FRI.Queries) != cfg.FRI.NumQueries {
		return verifyErrf(KindProofShape, "%d queries, expected %d", len(proof.FRI.Queries), cfg.FRI.NumQueries)
	}
	for q := range proof.FRI.Queries {
		if len(proof.FRI.Queries[q].Layers) != logM-1 {
			return verifyErrf(KindProofShape, "query %d has %d fold layers, expected %d", q, len(proof.FRI.Queries[q].Layers), logM-1)
		}
	}
	return nil
}

// checkOpening validates one Merkle opening's shape and path.
func checkOpening(cfg *Config, root symmetric.Digest, index int, o BatchOpening, logSize, wantWidth int) error {
	if len(o.Row) != wantWidth {
		return verifyErrf(KindProofShape, "opened row has %d columns, expected %d", len(o.Row), wantWidth)
	}
	if len(o.Path) != logSize {
		return verifyErrf(KindProofShape, "opening path has %d levels, expected %d", len(o.Path), logSize)
	}
	if err := cfg.MMCS.Verify(root, index, o.Row, o.Path); err != nil {
		return verifyErrf(KindMerkle, "index %d: %v", index, err)
	}
	return nil
}

// deepAt recomputes the deep quotient at one extended-domain index from the
// opened trace and quotient rows, in the exact term order the prover used.
func deepAt(cfg *Config, op *Openings, pt, ptNext oodPoint, deepAlpha core.ExtElem, logM, k int, traceRow, quotRow []uint64) (core.ExtElem, error) {
	e := cfg.Ext
	invAt, err := cfg.pcs.deepInvDenominatorAt(pt, logM, k)
	if err != nil {
		return core.ExtElem{}, err
	}
	invNext, err := cfg.pcs.deepInvDenominatorAt(ptNext, logM, k)
	if err != nil {
		return core.ExtElem{}, err
	}
	acc := e.Zero()
	weight := e.One()
	term := func(v uint64, main, aux, invDen core.ExtElem) error {
		num, err := cfg.pcs.deepNumerator(k, logM, v, main, aux)
		if err != nil {
			return err
		}
		acc = e.Add(acc, e.Mul(weight, e.Mul(num, invDen)))
		weight = e.Mul(weight, deepAlpha)
		return nil
	}
	for j := range traceRow {
		if err := term(traceRow[j], op.TraceLocal[j], deepAuxAt(op.TraceLocalAux, j), invAt); err != nil {
			return core.ExtElem{}, err
		}
	}
	for j := range traceRow {
		if err := term(traceRow[j], op.TraceNext[j], deepAuxAt(op.TraceNextAux, j), invNext); err != nil {
			return core.ExtElem{}, err
		}
	}
	for j := range quotRow {
		if err := term(quotRow[j], op.Quotient[j], deepAuxAt(op.QuotientAux, j), invAt); err != nil {
			return core.ExtElem{}, err
		}
	}
	return acc, nil
}

func verifyQuery(cfg *Config, proof *Proof, qp *QueryProof, idx, m, logM int, pt, ptNext oodPoint, deepAlpha core.ExtElem, betas []core.ExtElem) error {
	e := cfg.Ext
	extDeg := cfg.Field.ExtensionDegree()
	pair0 := cfg.pcs.pairIndex(0, idx, m)

	if err := checkOpening(cfg, proof.TraceRoot, idx, qp.TraceAt, logM, proof.Width); err != nil {
		return err
	}
	if err := checkOpening(cfg, proof.TraceRoot, pair0, qp.TracePair, logM, proof.Width); err != nil {
		return err
	}
	if err := checkOpening(cfg, proof.QuotientRoot, idx, qp.QuotientAt, logM, extDeg); err != nil {
		return err
	}
	if err := checkOpening(cfg, proof.QuotientRoot, pair0, qp.QuotientPair, logM, extDeg); err != nil {
		return err
	}

	gAt, err := deepAt(cfg, &proof.Openings, pt, ptNext, deepAlpha, logM, idx, qp.TraceAt.Row, qp.QuotientAt.Row)
	if err != nil {
		return err
	}
	gPair, err := deepAt(cfg, &proof.Openings, pt, ptNext, deepAlpha, logM, pair0, qp.TracePair.Row, qp.QuotientPair.Row)
	if err != nil {
		return err
	}

	v, err := cfg.pcs.foldPair(0, idx, m, gAt, gPair, betas[0])
	if err != nil {
		return err
	}
	i := cfg.pcs.foldIndex(0, idx, m)
	size := m / 2
	for layer := 1; size > 1; layer++ {
		lo := &qp.Layers[layer-1]
		pairI := cfg.pcs.pairIndex(layer, i, size)
		logSize := logM - layer
		root := proof.FRI.CommitRoots[layer-1]
		if err := checkOpening(cfg, root, i, lo.At, logSize, extDeg); err != nil {
			return err
		}
		if err := checkOpening(cfg, root, pairI, lo.Pair, logSize, extDeg); err != nil {
			return err
		}
		vAt := merkle.UnflattenExtRow(e, lo.At.Row)
		if !e.Equal(vAt, v) {
			return verifyErrf(KindFoldMismatch, "fold layer %d disagrees at index %d", layer, i)
		}
		vPair := merkle.UnflattenExtRow(e, lo.Pair.Row)
		v, err = cfg.pcs.foldPair(layer, i, size, vAt, vPair, betas[layer])
		if err != nil {
			return err
		}
		i = cfg.pcs.foldIndex(layer, i, size)
		size /= 2
	}
	if !e.Equal(v, proof.FRI.FinalValue) {
		return verifyErrf(KindFinalValue, "folded value disagrees with the claimed final value")
	}
	return nil
}
