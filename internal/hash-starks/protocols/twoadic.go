package protocols

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/challenger"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/dft"
)

// twoAdicPCS commits over the multiplicative coset g*K, where K is the
// two-adic subgroup of size 2^(logN+logBlowup) and g the multiplicative
// generator. Since the order of g has an odd factor, the coset never meets
// the trace subgroup and the vanishing polynomial x^N - 1 is invertible on
// the whole extended domain.
type twoAdicPCS struct {
	f         core.Field
	e         *core.ExtField
	kernel    dft.TwoAdicDFT
	logBlowup int
	shift     uint64
	shiftInv  uint64
}

func newTwoAdicPCS(f core.Field, e *core.ExtField, kernel dft.TwoAdicDFT, logBlowup int) *twoAdicPCS {
	shift := f.Generator()
	return &twoAdicPCS{
		f:         f,
		e:         e,
		kernel:    kernel,
		logBlowup: logBlowup,
		shift:     shift,
		shiftInv:  f.Inv(shift),
	}
}

func (p *twoAdicPCS) extendTrace(trace *core.Matrix, logN int) (*core.Matrix, error) {
	if trace.Height != 1<<uint(logN) {
		return nil, fmt.Errorf("trace height %d does not match log size %d", trace.Height, logN)
	}
	if _, err := core.RootOfUnity(p.f, logN+p.logBlowup); err != nil {
		return nil, err
	}
	return p.kernel.CosetLDEBatch(trace, p.logBlowup, p.shift)
}

// domainPoints returns the extended domain shift*K in natural order.
func (p *twoAdicPCS) domainPoints(logM int) ([]uint64, error) {
	w, err := core.RootOfUnity(p.f, logM)
	if err != nil {
		return nil, err
	}
	xs := make([]uint64, 1<<uint(logM))
	x := p.shift
	for k := range xs {
		xs[k] = x
		x = p.f.Mul(x, w)
	}
	return xs, nil
}

func (p *twoAdicPCS) lastRowPoint(logN int) (uint64, error) {
	w, err := core.RootOfUnity(p.f, logN)
	if err != nil {
		return 0, err
	}
	// w^(N-1) = w^-1.
	return p.f.Inv(w), nil
}

func (p *twoAdicPCS) ldeSelectors(logN int) (*selectorTable, error) {
	f := p.f
	logM := logN + p.logBlowup
	xs, err := p.domainPoints(logM)
	if err != nil {
		return nil, err
	}
	wLast, err := p.lastRowPoint(logN)
	if err != nil {
		return nil, err
	}
	n := uint64(1) << uint(logN)
	m := len(xs)

	z := make([]uint64, m)
	dFirst := make([]uint64, m)
	dLast := make([]uint64, m)
	for k, x := range xs {
		z[k] = f.Sub(f.Exp(x, n), 1)
		dFirst[k] = f.Sub(x, 1)
		dLast[k] = f.Sub(x, wLast)
	}
	zInv := core.BatchInv(f, z)
	invFirst := core.BatchInv(f, dFirst)
	invLast := core.BatchInv(f, dLast)

	t := &selectorTable{
		First:      make([]uint64, m),
		Last:       make([]uint64, m),
		Transition: dLast,
		ZInv:       zInv,
	}
	for k := range xs {
		t.First[k] = f.Mul(z[k], invFirst[k])
		t.Last[k] = f.Mul(z[k], invLast[k])
	}
	return t, nil
}

func (p *twoAdicPCS) samplePoint(ch challenger.Challenger) (oodPoint, error) {
	return oodPoint{X: ch.SampleExt()}, nil
}

func (p *twoAdicPCS) nextPoint(pt oodPoint, logN int) (oodPoint, error) {
	w, err := core.RootOfUnity(p.f, logN)
	if err != nil {
		return oodPoint{}, err
	}
	return oodPoint{X: p.e.MulBase(pt.X, w)}, nil
}

func (p *twoAdicPCS) selectorsAt(pt oodPoint, logN int) (first, last, transition, vanishing core.ExtElem, err error) {
	e := p.e
	wLast, err := p.lastRowPoint(logN)
	if err != nil {
		return
	}
	vanishing = e.Sub(e.Exp(pt.X, uint64(1)<<uint(logN)), e.One())
	first = e.Mul(vanishing, e.Inv(e.Sub(pt.X, e.One())))
	transition = e.Sub(pt.X, e.FromBase(wLast))
	last = e.Mul(vanishing, e.Inv(transition))
	return
}

// openMatrix interpolates each column and evaluates the polynomial at the
// point by Horner. For matrices over the extended domain the coefficients are
// unshifted first.
func (p *twoAdicPCS) openMatrix(m *core.Matrix, logSize int, shifted bool, pt oodPoint) ([]core.ExtElem, []core.ExtElem, error) {
	if m.Height != 1<<uint(logSize) {
		return nil, nil, fmt.Errorf("matrix height %d does not match log size %d", m.Height, logSize)
	}
	e := p.e
	out := make([]core.ExtElem, m.Width)
	for j := 0; j < m.Width; j++ {
		coeffs, err := p.kernel.IDFT(m.Column(j))
		if err != nil {
			return nil, nil, err
		}
		if shifted {
			pow := uint64(1)
			for i := range coeffs {
				coeffs[i] = p.f.Mul(coeffs[i], pow)
				pow = p.f.Mul(pow, p.shiftInv)
			}
		}
		acc := e.Zero()
		for i := len(coeffs) - 1; i >= 0; i-- {
			acc = e.Add(e.Mul(acc, pt.X), e.FromBase(coeffs[i]))
		}
		out[j] = acc
	}
	return out, nil, nil
}

func (p *twoAdicPCS) hasAux() bool { return false }

func (p *twoAdicPCS) pointValue(pt oodPoint, main, aux core.ExtElem) core.ExtElem {
	return main
}

func (p *twoAdicPCS) deepNumerator(k, logM int, v uint64, main, aux core.ExtElem) (core.ExtElem, error) {
	return p.e.Sub(p.e.FromBase(v), main), nil
}

func (p *twoAdicPCS) deepInvDenominators(pt oodPoint, logM int) ([]core.ExtElem, error) {
	xs, err := p.domainPoints(logM)
	if err != nil {
		return nil, err
	}
	dens := make([]core.ExtElem, len(xs))
	for k, x := range xs {
		dens[k] = p.e.Sub(p.e.FromBase(x), pt.X)
	}
	return extBatchInv(p.e, dens), nil
}

func (p *twoAdicPCS) deepInvDenominatorAt(pt oodPoint, logM, k int) (core.ExtElem, error) {
	w, err := core.RootOfUnity(p.f, logM)
	if err != nil {
		return core.ExtElem{}, err
	}
	x := p.f.Mul(p.shift, p.f.Exp(w, uint64(k)))
	return p.e.Inv(p.e.Sub(p.e.FromBase(x), pt.X)), nil
}

// pairIndex: the point at k+size/2 is the negation of the point at k.
func (p *twoAdicPCS) pairIndex(layer, k, size int) int {
	return (k + size/2) % size
}

func (p *twoAdicPCS) foldIndex(layer, k, size int) int {
	return k % (size / 2)
}

// foldPair halves the domain by squaring: the value at x and -x combine into
// the even part plus beta times the odd part. Layer j lives on the coset
// shift^(2^j) * K_j.
func (p *twoAdicPCS) foldPair(layer, k, size int, atK, atPair, beta core.ExtElem) (core.ExtElem, error) {
	logSize, err := core.Log2Exact(size)
	if err != nil {
		return core.ExtElem{}, err
	}
	w, err := core.RootOfUnity(p.f, logSize)
	if err != nil {
		return core.ExtElem{}, err
	}
	i := k % (size / 2)
	u, v := atK, atPair
	if k >= size/2 {
		u, v = atPair, atK
	}
	layerShift := p.f.Exp(p.shift, uint64(1)<<uint(layer))
	x := p.f.Mul(layerShift, p.f.Exp(w, uint64(i)))
	return foldHalves(p.f, p.e, u, v, beta, x), nil
}
