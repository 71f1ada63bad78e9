package protocols

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/airs"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/challenger"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/logger"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/merkle"
)

// Prove runs the full pipeline over a satisfied trace: commit the extended
// trace, draw the constraint challenge, commit the quotient, open everything
// at the out-of-domain point and fold the deep quotient down to a single
// value, with Merkle openings at every sampled query index.
func Prove(cfg *Config, air airs.AIR, trace *core.Matrix, public []uint64) (*Proof, error) {
	log := logger.Logger().With().Str("air", air.Name()).Logger()

	if trace.Width != air.Width() {
		return nil, &TraceShapeError{Msg: fmt.Sprintf("trace width %d, air wants %d", trace.Width, air.Width())}
	}
	if len(public) != air.PublicValueCount() {
		return nil, &TraceShapeError{Msg: fmt.Sprintf("%d public values, air wants %d", len(public), air.PublicValueCount())}
	}
	logN, err := core.Log2Exact(trace.Height)
	if err != nil || logN < 1 {
		return nil, &TraceShapeError{Msg: fmt.Sprintf("trace height %d is not a power of two of at least 2", trace.Height)}
	}

	if err := airs.CheckConstraints(air, cfg.Field, trace, public); err != nil {
		var v *airs.Violation
		if errors.As(err, &v) {
			return nil, &ConstraintViolationError{Row: v.Row, Constraint: v.Constraint}
		}
		return nil, err
	}

	e := cfg.Ext
	logM := logN + cfg.FRI.LogBlowup
	m := 1 << uint(logM)

	ch, err := cfg.NewChallenger()
	if err != nil {
		return nil, err
	}
	ch.ObserveBase(uint64(logN))
	ch.ObserveBase(uint64(trace.Width))
	for _, pv := range public {
		ch.ObserveBase(pv)
	}

	log.Debug().Int("log_height", logN).Int("width", trace.Width).Msg("committing trace")
	traceLDE, err := cfg.pcs.extendTrace(trace, logN)
	if err != nil {
		return nil, err
	}
	traceTree, err := cfg.MMCS.Commit(traceLDE)
	if err != nil {
		return nil, err
	}
	ch.ObserveDigest(traceTree.Root())
	alpha := ch.SampleExt()

	quotient, err := computeQuotient(cfg, air, traceLDE, public, logN, alpha)
	if err != nil {
		return nil, err
	}
	quotFlat := merkle.FlattenExt(e, quotient)
	quotTree, err := cfg.MMCS.Commit(quotFlat)
	if err != nil {
		return nil, err
	}
	ch.ObserveDigest(quotTree.Root())

	pt, err := cfg.pcs.samplePoint(ch)
	if err != nil {
		return nil, err
	}
	ptNext, err := cfg.pcs.nextPoint(pt, logN)
	if err != nil {
		return nil, err
	}

	var op Openings
	op.TraceLocal, op.TraceLocalAux, err = cfg.pcs.openMatrix(trace, logN, false, pt)
	if err != nil {
		return nil, err
	}
	op.TraceNext, op.TraceNextAux, err = cfg.pcs.openMatrix(trace, logN, false, ptNext)
	if err != nil {
		return nil, err
	}
	op.Quotient, op.QuotientAux, err = cfg.pcs.openMatrix(quotFlat, logM, true, pt)
	if err != nil {
		return nil, err
	}
	if !cfg.pcs.hasAux() {
		op.TraceLocalAux, op.TraceNextAux, op.QuotientAux = nil, nil, nil
	}
	observeOpenings(ch, &op)
	deepAlpha := ch.SampleExt()

	deep, err := computeDeep(cfg, traceLDE, quotFlat, &op, pt, ptNext, deepAlpha, logM)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("log_extended", logM).Msg("folding deep quotient")
	fri, layerTrees, err := foldCommit(cfg, ch, deep)
	if err != nil {
		return nil, err
	}
	fri.PowWitness = ch.Grind(cfg.FRI.PowBits)

	fri.Queries = make([]QueryProof, cfg.FRI.NumQueries)
	for q := range fri.Queries {
		idx := ch.SampleBits(logM)
		fri.Queries[q] = openQuery(cfg, traceTree, quotTree, layerTrees, idx, m)
	}

	return &Proof{
		FieldName:    cfg.Field.Name(),
		MerkleHash:   cfg.MerkleHashName(),
		LogN:         logN,
		Width:        trace.Width,
		TraceRoot:    traceTree.Root(),
		QuotientRoot: quotTree.Root(),
		Openings:     op,
		FRI:          *fri,
	}, nil
}

// observeOpenings binds every out-of-domain value into the transcript, in the
// fixed order traceLocal, traceNext, quotient, odd parts after each group.
func observeOpenings(ch challenger.Challenger, op *Openings) {
	groups := [][]core.ExtElem{
		op.TraceLocal, op.TraceLocalAux,
		op.TraceNext, op.TraceNextAux,
		op.Quotient, op.QuotientAux,
	}
	for _, g := range groups {
		for _, v := range g {
			ch.ObserveExt(v)
		}
	}
}

// computeQuotient evaluates the constraint composition over the extended
// domain and divides out the vanishing polynomial pointwise.
func computeQuotient(cfg *Config, air airs.AIR, traceLDE *core.Matrix, public []uint64, logN int, alpha core.ExtElem) ([]core.ExtElem, error) {
	e := cfg.Ext
	sel, err := cfg.pcs.ldeSelectors(logN)
	if err != nil {
		return nil, err
	}
	m := traceLDE.Height
	step := 1 << uint(cfg.FRI.LogBlowup)
	out := make([]core.ExtElem, m)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	chunk := (m + runtime.GOMAXPROCS(0) - 1) / runtime.GOMAXPROCS(0)
	if chunk == 0 {
		chunk = 1
	}
	for start := 0; start < m; start += chunk {
		start := start
		end := start + chunk
		if end > m {
			end = m
		}
		g.Go(func() error {
			local := make([]core.ExtElem, traceLDE.Width)
			next := make([]core.ExtElem, traceLDE.Width)
			for k := start; k < end; k++ {
				row := traceLDE.Row(k)
				nextRow := traceLDE.Row((k + step) % m)
				for j := range local {
					local[j] = e.FromBase(row[j])
					next[j] = e.FromBase(nextRow[j])
				}
				b := airs.NewBuilder(e, local, next, public,
					e.FromBase(sel.First[k]), e.FromBase(sel.Last[k]), e.FromBase(sel.Transition[k]), alpha)
				air.Eval(b)
				out[k] = e.MulBase(b.Accumulated(), sel.ZInv[k])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// deepAuxAt reads an odd part, tolerating the nil aux of the two-adic branch.
func deepAuxAt(aux []core.ExtElem, j int) core.ExtElem {
	if aux == nil {
		return core.ExtElem{}
	}
	return aux[j]
}

// computeDeep batches every opened column into one deep quotient over the
// extended domain: trace columns at the point, trace columns at the shifted
// point, then the quotient's base columns, each weighted by a power of the
// batching challenge.
func computeDeep(cfg *Config, traceLDE, quotFlat *core.Matrix, op *Openings, pt, ptNext oodPoint, deepAlpha core.ExtElem, logM int) ([]core.ExtElem, error) {
	e := cfg.Ext
	m := traceLDE.Height
	invDenAt, err := cfg.pcs.deepInvDenominators(pt, logM)
	if err != nil {
		return nil, err
	}
	invDenNext, err := cfg.pcs.deepInvDenominators(ptNext, logM)
	if err != nil {
		return nil, err
	}

	out := make([]core.ExtElem, m)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	chunk := (m + runtime.GOMAXPROCS(0) - 1) / runtime.GOMAXPROCS(0)
	if chunk == 0 {
		chunk = 1
	}
	for start := 0; start < m; start += chunk {
		start := start
		end := start + chunk
		if end > m {
			end = m
		}
		g.Go(func() error {
			for k := start; k < end; k++ {
				acc := e.Zero()
				weight := e.One()
				term := func(v uint64, main, aux core.ExtElem, invDen core.ExtElem) error {
					num, err := cfg.pcs.deepNumerator(k, logM, v, main, aux)
					if err != nil {
						return err
					}
					acc = e.Add(acc, e.Mul(weight, e.Mul(num, invDen)))
					weight = e.Mul(weight, deepAlpha)
					return nil
				}
				row := traceLDE.Row(k)
				for j := 0; j < traceLDE.Width; j++ {
					if err := term(row[j], op.TraceLocal[j], deepAuxAt(op.TraceLocalAux, j), invDenAt[k]); err != nil {
						return err
					}
				}
				for j := 0; j < traceLDE.Width; j++ {
					if err := term(row[j], op.TraceNext[j], deepAuxAt(op.TraceNextAux, j), invDenNext[k]); err != nil {
						return err
					}
				}
				quotRow := quotFlat.Row(k)
				for j := 0; j < quotFlat.Width; j++ {
					if err := term(quotRow[j], op.Quotient[j], deepAuxAt(op.QuotientAux, j), invDenAt[k]); err != nil {
						return err
					}
				}
				out[k] = acc
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// foldCommit folds the deep quotient down to a single value, committing every
// intermediate layer of height above one and binding each root into the
// transcript.
func foldCommit(cfg *Config, ch challenger.Challenger, values []core.ExtElem) (*FRIProof, []*merkle.Tree, error) {
	e := cfg.Ext
	fri := &FRIProof{}
	var layerTrees []*merkle.Tree

	cur := values
	layer := 0
	for size := len(values); size > 1; size >>= 1 {
		beta := ch.SampleExt()
		next := make([]core.ExtElem, size/2)
		for k := 0; k < size/2; k++ {
			pair := cfg.pcs.pairIndex(layer, k, size)
			folded, err := cfg.pcs.foldPair(layer, k, size, cur[k], cur[pair], beta)
			if err != nil {
				return nil, nil, err
			}
			next[cfg.pcs.foldIndex(layer, k, size)] = folded
		}
		if len(next) > 1 {
			tree, err := cfg.MMCS.Commit(merkle.FlattenExt(e, next))
			if err != nil {
				return nil, nil, err
			}
			layerTrees = append(layerTrees, tree)
			fri.CommitRoots = append(fri.CommitRoots, tree.Root())
			ch.ObserveDigest(tree.Root())
		} else {
			fri.FinalValue = next[0]
			ch.ObserveExt(next[0])
		}
		cur = next
		layer++
	}
	return fri, layerTrees, nil
}

// openQuery opens every committed matrix along one query's fold path.
func openQuery(cfg *Config, traceTree, quotTree *merkle.Tree, layerTrees []*merkle.Tree, idx, m int) QueryProof {
	open := func(t *merkle.Tree, i int) BatchOpening {
		row, path := t.Open(i)
		return BatchOpening{Row: row, Path: path}
	}
	pair0 := cfg.pcs.pairIndex(0, idx, m)
	qp := QueryProof{
		TraceAt:      open(traceTree, idx),
		TracePair:    open(traceTree, pair0),
		QuotientAt:   open(quotTree, idx),
		QuotientPair: open(quotTree, pair0),
	}
	i := cfg.pcs.foldIndex(0, idx, m)
	size := m / 2
	for layer := 1; size > 1; layer++ {
		tree := layerTrees[layer-1]
		qp.Layers = append(qp.Layers, LayerOpening{
			At:   open(tree, i),
			Pair: open(tree, cfg.pcs.pairIndex(layer, i, size)),
		})
		i = cfg.pcs.foldIndex(layer, i, size)
		size /= 2
	}
	return qp
}
