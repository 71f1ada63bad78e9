package protocols

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/challenger"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// circlePCS commits Mersenne31 traces over the circle group x^2 + y^2 = 1,
// which is cyclic of order 2^31. A size-2^k domain is the standard-position
// coset: the odd multiples of a generator of the order-2^(k+1) subgroup.
// Conjugation maps the domain to itself, index k to size-1-k, and folding
// pairs ride on that symmetry: the first fold splits a column into even and
// odd parts in y, every later fold halves the x-domain through the doubling
// map 2x^2 - 1.
//
// Functions on a size-N domain are interpolated through their even/odd
// decomposition, two polynomials of degree below N/2 over the half x-domain.
// Trace and quotient cosets are disjoint and share no x-coordinates, so the
// extension and the deep denominators never hit a domain point.
type circlePCS struct {
	f         core.Field
	e         *core.ExtField
	logBlowup int

	mu      sync.Mutex
	domains map[int][]core.CirclePoint
	weights map[int][]uint64
	folds   map[[2]int][]uint64
}

func newCirclePCS(f core.Field, e *core.ExtField, logBlowup int) *circlePCS {
	return &circlePCS{
		f:         f,
		e:         e,
		logBlowup: logBlowup,
		domains:   make(map[int][]core.CirclePoint),
		weights:   make(map[int][]uint64),
		folds:     make(map[[2]int][]uint64),
	}
}

func (p *circlePCS) domain(logSize int) ([]core.CirclePoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.domainLocked(logSize)
}

func (p *circlePCS) domainLocked(logSize int) ([]core.CirclePoint, error) {
	if pts, ok := p.domains[logSize]; ok {
		return pts, nil
	}
	if logSize < 1 || logSize > 30 {
		return nil, fmt.Errorf("circle domains exist for sizes 2^1..2^30, got 2^%d", logSize)
	}
	q, err := core.CircleSubgroupGenerator(logSize + 1)
	if err != nil {
		return nil, err
	}
	g := core.CircleDouble(q)
	pts := make([]core.CirclePoint, 1<<uint(logSize))
	cur := q
	for k := range pts {
		pts[k] = cur
		cur = core.CircleAdd(cur, g)
	}
	p.domains[logSize] = pts
	return pts, nil
}

// halfWeights returns the barycentric weights over the x-coordinates of the
// first half of the size-2^logSize domain.
func (p *circlePCS) halfWeights(logSize int) ([]core.CirclePoint, []uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pts, err := p.domainLocked(logSize)
	if err != nil {
		return nil, nil, err
	}
	if w, ok := p.weights[logSize]; ok {
		return pts, w, nil
	}
	half := len(pts) / 2
	prods := make([]uint64, half)
	for k := 0; k < half; k++ {
		acc := uint64(1)
		for j := 0; j < half; j++ {
			if j == k {
				continue
			}
			acc = p.f.Mul(acc, p.f.Sub(pts[k].X, pts[j].X))
		}
		prods[k] = acc
	}
	w := core.BatchInv(p.f, prods)
	p.weights[logSize] = w
	return pts, w, nil
}

// foldCoord returns the divisor coordinate for pair i at a fold layer. Layer
// zero divides by the y-coordinate; layer j >= 1 divides by the x-domain of
// the j-th halving, the original x-coordinates pushed through the doubling
// map j-1 times.
func (p *circlePCS) foldCoord(layer, size, i int) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := [2]int{layer, size}
	if c, ok := p.folds[key]; ok {
		return c[i], nil
	}
	logSize, err := core.Log2Exact(size)
	if err != nil {
		return 0, err
	}
	var coords []uint64
	if layer == 0 {
		pts, err := p.domainLocked(logSize)
		if err != nil {
			return 0, err
		}
		coords = make([]uint64, size/2)
		for k := range coords {
			coords[k] = pts[k].Y
		}
	} else {
		logM := logSize + layer
		pts, err := p.domainLocked(logM)
		if err != nil {
			return 0, err
		}
		coords = make([]uint64, size/2)
		for k := range coords {
			x := pts[k].X
			for j := 1; j < layer; j++ {
				x = core.DoublingMapX(x)
			}
			coords[k] = x
		}
	}
	p.folds[key] = coords
	return coords[i], nil
}

// evenOddColumn splits a column over the size-n domain into its even and odd
// parts over the half x-domain. inv2Ys holds 1/(2*y_k) for the first half.
func evenOddColumn(f core.Field, col []uint64, inv2Ys []uint64) (fe, fo []uint64) {
	half := len(col) / 2
	fe = make([]uint64, half)
	fo = make([]uint64, half)
	inv2 := f.Inv(2)
	for k := 0; k < half; k++ {
		a, b := col[k], col[len(col)-1-k]
		fe[k] = f.Mul(f.Add(a, b), inv2)
		fo[k] = f.Mul(f.Sub(a, b), inv2Ys[k])
	}
	return fe, fo
}

func (p *circlePCS) inv2Ys(pts []core.CirclePoint) []uint64 {
	half := len(pts) / 2
	dens := make([]uint64, half)
	for k := 0; k < half; k++ {
		dens[k] = p.f.Mul(2, pts[k].Y)
	}
	return core.BatchInv(p.f, dens)
}

// lagrangeBasisBase evaluates every Lagrange basis polynomial of the half
// x-domain at a base point, by prefix/suffix products.
func lagrangeBasisBase(f core.Field, halfXs, weights []uint64, x uint64) []uint64 {
	n := len(halfXs)
	prefix := make([]uint64, n+1)
	prefix[0] = 1
	for j := 0; j < n; j++ {
		prefix[j+1] = f.Mul(prefix[j], f.Sub(x, halfXs[j]))
	}
	out := make([]uint64, n)
	suffix := uint64(1)
	for j := n - 1; j >= 0; j-- {
		out[j] = f.Mul(weights[j], f.Mul(prefix[j], suffix))
		suffix = f.Mul(suffix, f.Sub(x, halfXs[j]))
	}
	return out
}

func lagrangeBasisExt(e *core.ExtField, halfXs, weights []uint64, x core.ExtElem) []core.ExtElem {
	n := len(halfXs)
	prefix := make([]core.ExtElem, n+1)
	prefix[0] = e.One()
	for j := 0; j < n; j++ {
		prefix[j+1] = e.Mul(prefix[j], e.Sub(x, e.FromBase(halfXs[j])))
	}
	out := make([]core.ExtElem, n)
	suffix := e.One()
	for j := n - 1; j >= 0; j-- {
		out[j] = e.MulBase(e.Mul(prefix[j], suffix), weights[j])
		suffix = e.Mul(suffix, e.Sub(x, e.FromBase(halfXs[j])))
	}
	return out
}

func (p *circlePCS) extendTrace(trace *core.Matrix, logN int) (*core.Matrix, error) {
	if trace.Height != 1<<uint(logN) {
		return nil, fmt.Errorf("trace height %d does not match log size %d", trace.Height, logN)
	}
	f := p.f
	src, weights, err := p.halfWeights(logN)
	if err != nil {
		return nil, err
	}
	dst, err := p.domain(logN + p.logBlowup)
	if err != nil {
		return nil, err
	}
	half := len(src) / 2
	halfXs := make([]uint64, half)
	for k := range halfXs {
		halfXs[k] = src[k].X
	}
	inv2Ys := p.inv2Ys(src)

	// Even and odd parts of every column, row k holding the pair (k, n-1-k).
	feM := core.NewMatrix(trace.Width, half)
	foM := core.NewMatrix(trace.Width, half)
	inv2 := f.Inv(2)
	for k := 0; k < half; k++ {
		top := trace.Row(k)
		bot := trace.Row(trace.Height - 1 - k)
		fe := feM.Row(k)
		fo := foM.Row(k)
		for j := 0; j < trace.Width; j++ {
			fe[j] = f.Mul(f.Add(top[j], bot[j]), inv2)
			fo[j] = f.Mul(f.Sub(top[j], bot[j]), inv2Ys[k])
		}
	}

	out := core.NewMatrix(trace.Width, len(dst))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	chunk := (len(dst) + runtime.GOMAXPROCS(0) - 1) / runtime.GOMAXPROCS(0)
	if chunk == 0 {
		chunk = 1
	}
	for start := 0; start < len(dst); start += chunk {
		start := start
		end := start + chunk
		if end > len(dst) {
			end = len(dst)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				basis := lagrangeBasisBase(f, halfXs, weights, dst[i].X)
				row := out.Row(i)
				for j := 0; j < trace.Width; j++ {
					var sumE, sumO uint64
					for k := 0; k < half; k++ {
						sumE = f.Add(sumE, f.Mul(basis[k], feM.At(k, j)))
						sumO = f.Add(sumO, f.Mul(basis[k], foM.At(k, j)))
					}
					row[j] = f.Add(sumE, f.Mul(dst[i].Y, sumO))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// vanishingX iterates the doubling map: the vanishing polynomial of the
// size-2^logN domain is pi^(logN-1)(x).
func vanishingX(f core.Field, x uint64, logN int) uint64 {
	for i := 1; i < logN; i++ {
		x = core.DoublingMapX(x)
	}
	return x
}

// The boundary selectors divide by the chord x - x0 through the first and
// last rows, which keeps the quotient inside the interpolation space: the
// y-factor cancels the chord's second zero at the opposite row.
//
//	first(z) = Z(z) * (y + y0) / (x - x0)
//	last(z)  = Z(z) * (y0 - y) / (x - x0)
//
// The transition selector is the tangent at the last row, whose only zero on
// the domain is the last row itself.
func (p *circlePCS) ldeSelectors(logN int) (*selectorTable, error) {
	f := p.f
	src, err := p.domain(logN)
	if err != nil {
		return nil, err
	}
	pts, err := p.domain(logN + p.logBlowup)
	if err != nil {
		return nil, err
	}
	x0, y0 := src[0].X, src[0].Y
	m := len(pts)

	z := make([]uint64, m)
	d := make([]uint64, m)
	for k, pt := range pts {
		z[k] = vanishingX(f, pt.X, logN)
		d[k] = f.Sub(pt.X, x0)
	}
	zInv := core.BatchInv(f, z)
	invD := core.BatchInv(f, d)

	t := &selectorTable{
		First:      make([]uint64, m),
		Last:       make([]uint64, m),
		Transition: make([]uint64, m),
		ZInv:       zInv,
	}
	for k, pt := range pts {
		t.First[k] = f.Mul(z[k], f.Mul(f.Add(pt.Y, y0), invD[k]))
		t.Last[k] = f.Mul(z[k], f.Mul(f.Sub(y0, pt.Y), invD[k]))
		t.Transition[k] = f.Add(f.Sub(1, f.Mul(pt.X, x0)), f.Mul(pt.Y, y0))
	}
	return t, nil
}

func (p *circlePCS) samplePoint(ch challenger.Challenger) (oodPoint, error) {
	for {
		t := ch.SampleExt()
		pt, err := core.ExtCirclePointFromParam(p.e, t)
		if err != nil {
			// t^2 = -1 misses the parametrization; redraw.
			continue
		}
		return oodPoint{X: pt.X, Y: pt.Y}, nil
	}
}

func (p *circlePCS) nextPoint(pt oodPoint, logN int) (oodPoint, error) {
	g, err := core.CircleSubgroupGenerator(logN)
	if err != nil {
		return oodPoint{}, err
	}
	e := p.e
	return oodPoint{
		X: e.Sub(e.MulBase(pt.X, g.X), e.MulBase(pt.Y, g.Y)),
		Y: e.Add(e.MulBase(pt.X, g.Y), e.MulBase(pt.Y, g.X)),
	}, nil
}

func (p *circlePCS) selectorsAt(pt oodPoint, logN int) (first, last, transition, vanishing core.ExtElem, err error) {
	e := p.e
	src, err := p.domain(logN)
	if err != nil {
		return
	}
	x0, y0 := src[0].X, src[0].Y
	vanishing = pt.X
	for i := 1; i < logN; i++ {
		vanishing = core.ExtDoublingMapX(e, vanishing)
	}
	invD := e.Inv(e.Sub(pt.X, e.FromBase(x0)))
	first = e.Mul(e.Mul(vanishing, e.Add(pt.Y, e.FromBase(y0))), invD)
	last = e.Mul(e.Mul(vanishing, e.Sub(e.FromBase(y0), pt.Y)), invD)
	transition = e.Add(e.Sub(e.One(), e.MulBase(pt.X, x0)), e.MulBase(pt.Y, y0))
	return
}

func (p *circlePCS) openMatrix(m *core.Matrix, logSize int, shifted bool, pt oodPoint) ([]core.ExtElem, []core.ExtElem, error) {
	e := p.e
	if m.Height != 1<<uint(logSize) {
		return nil, nil, fmt.Errorf("matrix height %d does not match log size %d", m.Height, logSize)
	}
	src, weights, err := p.halfWeights(logSize)
	if err != nil {
		return nil, nil, err
	}
	half := len(src) / 2
	halfXs := make([]uint64, half)
	for k := range halfXs {
		halfXs[k] = src[k].X
	}
	inv2Ys := p.inv2Ys(src)
	basis := lagrangeBasisExt(e, halfXs, weights, pt.X)

	main := make([]core.ExtElem, m.Width)
	aux := make([]core.ExtElem, m.Width)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for j := 0; j < m.Width; j++ {
		j := j
		g.Go(func() error {
			fe, fo := evenOddColumn(p.f, m.Column(j), inv2Ys)
			sumE, sumO := e.Zero(), e.Zero()
			for k := 0; k < half; k++ {
				sumE = e.Add(sumE, e.MulBase(basis[k], fe[k]))
				sumO = e.Add(sumO, e.MulBase(basis[k], fo[k]))
			}
			main[j] = sumE
			aux[j] = sumO
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return main, aux, nil
}

func (p *circlePCS) hasAux() bool { return true }

func (p *circlePCS) pointValue(pt oodPoint, main, aux core.ExtElem) core.ExtElem {
	return p.e.Add(main, p.e.Mul(pt.Y, aux))
}

func (p *circlePCS) deepNumerator(k, logM int, v uint64, main, aux core.ExtElem) (core.ExtElem, error) {
	pts, err := p.domain(logM)
	if err != nil {
		return core.ExtElem{}, err
	}
	e := p.e
	return e.Sub(e.Sub(e.FromBase(v), main), e.MulBase(aux, pts[k].Y)), nil
}

func (p *circlePCS) deepInvDenominators(pt oodPoint, logM int) ([]core.ExtElem, error) {
	pts, err := p.domain(logM)
	if err != nil {
		return nil, err
	}
	dens := make([]core.ExtElem, len(pts))
	for k := range pts {
		dens[k] = p.e.Sub(p.e.FromBase(pts[k].X), pt.X)
	}
	return extBatchInv(p.e, dens), nil
}

func (p *circlePCS) deepInvDenominatorAt(pt oodPoint, logM, k int) (core.ExtElem, error) {
	pts, err := p.domain(logM)
	if err != nil {
		return core.ExtElem{}, err
	}
	return p.e.Inv(p.e.Sub(p.e.FromBase(pts[k].X), pt.X)), nil
}

// pairIndex: conjugation reflects the domain, at every layer.
func (p *circlePCS) pairIndex(layer, k, size int) int {
	return size - 1 - k
}

func (p *circlePCS) foldIndex(layer, k, size int) int {
	if k < size/2 {
		return k
	}
	return size - 1 - k
}

func (p *circlePCS) foldPair(layer, k, size int, atK, atPair, beta core.ExtElem) (core.ExtElem, error) {
	i := p.foldIndex(layer, k, size)
	u, v := atK, atPair
	if k >= size/2 {
		u, v = atPair, atK
	}
	c, err := p.foldCoord(layer, size, i)
	if err != nil {
		return core.ExtElem{}, err
	}
	return foldHalves(p.f, p.e, u, v, beta, c), nil
}
