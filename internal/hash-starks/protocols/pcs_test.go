package protocols

import (
	"testing"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/dft"
)

// Opening a committed matrix at a point of the extended domain must reproduce
// the extended value: the interpolation behind openMatrix and the extension
// behind extendTrace are the same function.
func TestTwoAdicExtendOpenConsistency(t *testing.T) {
	f := core.NewBabyBear()
	e := core.NewExtField(f)
	kernel, err := dft.ByName("recursive", f)
	if err != nil {
		t.Fatal(err)
	}
	p := newTwoAdicPCS(f, e, kernel, 3)

	logN := 3
	trace := core.NewMatrix(2, 1<<uint(logN))
	for i := 0; i < trace.Height; i++ {
		trace.Set(i, 0, uint64(i*i+5))
		trace.Set(i, 1, uint64(3*i+1))
	}
	lde, err := p.extendTrace(trace, logN)
	if err != nil {
		t.Fatal(err)
	}
	xs, err := p.domainPoints(logN + 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{0, 1, 17, 63} {
		pt := oodPoint{X: e.FromBase(xs[k])}
		main, _, err := p.openMatrix(trace, logN, false, pt)
		if err != nil {
			t.Fatal(err)
		}
		for j := 0; j < trace.Width; j++ {
			got := p.pointValue(pt, main[j], core.ExtElem{})
			want := e.FromBase(lde.At(k, j))
			if !e.Equal(got, want) {
				t.Fatalf("column %d at index %d: opened %v, extended %v", j, k, got, want)
			}
		}
	}
}

func TestTwoAdicSelectorsTableMatchesFormula(t *testing.T) {
	f := core.NewKoalaBear()
	e := core.NewExtField(f)
	kernel, _ := dft.ByName("parallel", f)
	p := newTwoAdicPCS(f, e, kernel, 3)

	logN := 2
	table, err := p.ldeSelectors(logN)
	if err != nil {
		t.Fatal(err)
	}
	xs, err := p.domainPoints(logN + 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{0, 3, 9, 31} {
		pt := oodPoint{X: e.FromBase(xs[k])}
		first, last, transition, vanishing, err := p.selectorsAt(pt, logN)
		if err != nil {
			t.Fatal(err)
		}
		if !e.Equal(first, e.FromBase(table.First[k])) {
			t.Errorf("first selector mismatch at %d", k)
		}
		if !e.Equal(last, e.FromBase(table.Last[k])) {
			t.Errorf("last selector mismatch at %d", k)
		}
		if !e.Equal(transition, e.FromBase(table.Transition[k])) {
			t.Errorf("transition selector mismatch at %d", k)
		}
		if !e.Equal(e.Mul(vanishing, e.FromBase(table.ZInv[k])), e.One()) {
			t.Errorf("vanishing inverse mismatch at %d", k)
		}
	}
}

func TestCircleExtendOpenConsistency(t *testing.T) {
	f := core.NewMersenne31()
	e := core.NewExtField(f)
	p := newCirclePCS(f, e, 3)

	logN := 3
	trace := core.NewMatrix(2, 1<<uint(logN))
	for i := 0; i < trace.Height; i++ {
		trace.Set(i, 0, uint64(7*i+2))
		trace.Set(i, 1, uint64(i*i*i+1))
	}
	lde, err := p.extendTrace(trace, logN)
	if err != nil {
		t.Fatal(err)
	}
	pts, err := p.domain(logN + 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{0, 5, 33, 63} {
		pt := oodPoint{X: e.FromBase(pts[k].X), Y: e.FromBase(pts[k].Y)}
		main, aux, err := p.openMatrix(trace, logN, false, pt)
		if err != nil {
			t.Fatal(err)
		}
		for j := 0; j < trace.Width; j++ {
			got := p.pointValue(pt, main[j], aux[j])
			want := e.FromBase(lde.At(k, j))
			if !e.Equal(got, want) {
				t.Fatalf("column %d at index %d: opened %v, extended %v", j, k, got, want)
			}
		}
	}
}

func TestCircleSelectorsTableMatchesFormula(t *testing.T) {
	f := core.NewMersenne31()
	e := core.NewExtField(f)
	p := newCirclePCS(f, e, 3)

	logN := 2
	table, err := p.ldeSelectors(logN)
	if err != nil {
		t.Fatal(err)
	}
	pts, err := p.domain(logN + 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{0, 7, 12, 31} {
		pt := oodPoint{X: e.FromBase(pts[k].X), Y: e.FromBase(pts[k].Y)}
		first, last, transition, vanishing, err := p.selectorsAt(pt, logN)
		if err != nil {
			t.Fatal(err)
		}
		if !e.Equal(first, e.FromBase(table.First[k])) {
			t.Errorf("first selector mismatch at %d", k)
		}
		if !e.Equal(last, e.FromBase(table.Last[k])) {
			t.Errorf("last selector mismatch at %d", k)
		}
		if !e.Equal(transition, e.FromBase(table.Transition[k])) {
			t.Errorf("transition selector mismatch at %d", k)
		}
		if !e.Equal(e.Mul(vanishing, e.FromBase(table.ZInv[k])), e.One()) {
			t.Errorf("vanishing inverse mismatch at %d", k)
		}
	}
}

// The circle boundary selectors must pick out exactly one row each, and the
// transition selector must vanish only on the last row.
func TestCircleSelectorsOnTraceDomain(t *testing.T) {
	f := core.NewMersenne31()
	e := core.NewExtField(f)
	p := newCirclePCS(f, e, 3)

	logN := 3
	pts, err := p.domain(logN)
	if err != nil {
		t.Fatal(err)
	}
	n := len(pts)
	x0, y0 := pts[0].X, pts[0].Y
	for k, pt := range pts {
		// The chord x - x0 carries the boundary selectors; it must vanish
		// exactly at the first and last rows, where the y-factors then
		// split the two.
		chord := f.Sub(pt.X, x0)
		onBoundary := k == 0 || k == n-1
		if (chord == 0) != onBoundary {
			t.Errorf("row %d: chord zero = %v, on boundary = %v", k, chord == 0, onBoundary)
		}
		yFirst := f.Add(pt.Y, y0)
		if k == n-1 && yFirst != 0 {
			t.Errorf("first-selector y-factor must cancel the last row")
		}
		if k == 0 && yFirst == 0 {
			t.Errorf("first-selector y-factor vanishes on the first row")
		}
		transition := f.Add(f.Sub(1, f.Mul(pt.X, x0)), f.Mul(pt.Y, y0))
		if k == n-1 && transition != 0 {
			t.Errorf("transition selector nonzero on the last row")
		}
		if k != n-1 && transition == 0 {
			t.Errorf("transition selector vanishes on row %d", k)
		}
	}
}

// Folding a deep quotient built from an extended column must reach a single
// consistent value along every index, whichever of the two strategies runs.
func TestFoldPairSymmetry(t *testing.T) {
	f := core.NewBabyBear()
	e := core.NewExtField(f)
	kernel, _ := dft.ByName("recursive", f)
	p := newTwoAdicPCS(f, e, kernel, 3)

	size := 16
	beta := e.FromCoeffs([]uint64{3, 1, 4, 1})
	values := make([]core.ExtElem, size)
	for k := range values {
		values[k] = e.FromBase(uint64(k*k + 3))
	}
	for k := 0; k < size; k++ {
		pair := p.pairIndex(0, k, size)
		a, err := p.foldPair(0, k, size, values[k], values[pair], beta)
		if err != nil {
			t.Fatal(err)
		}
		b, err := p.foldPair(0, pair, size, values[pair], values[k], beta)
		if err != nil {
			t.Fatal(err)
		}
		if !e.Equal(a, b) {
			t.Fatalf("fold of %d and its pair disagree", k)
		}
		if p.foldIndex(0, k, size) != p.foldIndex(0, pair, size) {
			t.Fatalf("fold indices of %d and its pair disagree", k)
		}
	}

	cp := newCirclePCS(core.NewMersenne31(), core.NewExtField(core.NewMersenne31()), 3)
	ce := cp.e
	cvalues := make([]core.ExtElem, size)
	for k := range cvalues {
		cvalues[k] = ce.FromBase(uint64(2*k + 1))
	}
	cbeta := ce.FromCoeffs([]uint64{9, 2, 6})
	for k := 0; k < size; k++ {
		pair := cp.pairIndex(0, k, size)
		a, err := cp.foldPair(0, k, size, cvalues[k], cvalues[pair], cbeta)
		if err != nil {
			t.Fatal(err)
		}
		b, err := cp.foldPair(0, pair, size, cvalues[pair], cvalues[k], cbeta)
		if err != nil {
			t.Fatal(err)
		}
		if !ce.Equal(a, b) {
			t.Fatalf("circle fold of %d and its pair disagree", k)
		}
	}
}
