package core

import (
	"fmt"
	"sync"
)

// CirclePoint is a point on the unit circle x^2 + y^2 = 1 over Mersenne31.
// Since p = 3 (mod 4), -1 is a nonresidue and the circle group is cyclic of
// order p + 1 = 2^31, which is what gives Mersenne31 a usable FFT despite its
// two-adicity of 1.
type CirclePoint struct {
	X, Y uint64
}

// CircleIdentity returns the group identity (1, 0).
func CircleIdentity() CirclePoint { return CirclePoint{X: 1, Y: 0} }

// CircleAdd applies the group law
// (x1,y1) + (x2,y2) = (x1*x2 - y1*y2, x1*y2 + y1*x2).
func CircleAdd(a, b CirclePoint) CirclePoint {
	f := mersenne31{}
	return CirclePoint{
		X: f.Sub(f.Mul(a.X, b.X), f.Mul(a.Y, b.Y)),
		Y: f.Add(f.Mul(a.X, b.Y), f.Mul(a.Y, b.X)),
	}
}

// CircleDouble doubles a point: (2x^2 - 1, 2xy).
func CircleDouble(a CirclePoint) CirclePoint {
	f := mersenne31{}
	two := uint64(2)
	return CirclePoint{
		X: f.Sub(f.Mul(two, f.Mul(a.X, a.X)), 1),
		Y: f.Mul(two, f.Mul(a.X, a.Y)),
	}
}

// CircleConjugate returns the inverse (x, -y).
func CircleConjugate(a CirclePoint) CirclePoint {
	return CirclePoint{X: a.X, Y: mersenne31{}.Neg(a.Y)}
}

// CircleMulScalar computes k * a by double-and-add.
func CircleMulScalar(a CirclePoint, k uint64) CirclePoint {
	result := CircleIdentity()
	b := a
	for k > 0 {
		if k&1 == 1 {
			result = CircleAdd(result, b)
		}
		b = CircleDouble(b)
		k >>= 1
	}
	return result
}

// DoublingMapX is the x-coordinate of the doubling map, pi(x) = 2x^2 - 1.
// Folding a circle-domain column halves the domain through this map.
func DoublingMapX(x uint64) uint64 {
	f := mersenne31{}
	return f.Sub(f.Mul(2, f.Mul(x, x)), 1)
}

// Mersenne31Sqrt returns a square root of a, if one exists. With p = 3
// (mod 4) the candidate is a^((p+1)/4).
func Mersenne31Sqrt(a uint64) (uint64, bool) {
	f := mersenne31{}
	r := f.Exp(a, (Mersenne31P+1)/4)
	if f.Mul(r, r) != a {
		return 0, false
	}
	return r, true
}

var (
	circleGenOnce sync.Once
	circleGen     CirclePoint
)

// circleGroupGenerator finds a generator of the full order-2^31 circle group.
// A point generates iff 30 doublings do not reach the identity; candidates
// are taken from small x with y = sqrt(1 - x^2).
func circleGroupGenerator() CirclePoint {
	circleGenOnce.Do(func() {
		f := mersenne31{}
		for x := uint64(2); ; x++ {
			y2 := f.Sub(1, f.Mul(x, x))
			y, ok := Mersenne31Sqrt(y2)
			if !ok {
				continue
			}
			p := CirclePoint{X: x, Y: y}
			q := p
			for i := 0; i < 30; i++ {
				q = CircleDouble(q)
			}
			// q must be the unique order-2 element (-1, 0).
			if q.X == Mersenne31P-1 && q.Y == 0 {
				circleGen = p
				return
			}
		}
	})
	return circleGen
}

// CircleSubgroupGenerator returns a generator of the order-2^logN subgroup of
// the circle group, 0 <= logN <= 31.
func CircleSubgroupGenerator(logN int) (CirclePoint, error) {
	if logN < 0 || logN > 31 {
		return CirclePoint{}, fmt.Errorf("circle subgroups exist for sizes 2^0..2^31, got 2^%d", logN)
	}
	g := circleGroupGenerator()
	for i := 0; i < 31-logN; i++ {
		g = CircleDouble(g)
	}
	return g, nil
}

// ExtCirclePoint is a circle point with challenge-field coordinates. The
// out-of-domain evaluation point lives here.
type ExtCirclePoint struct {
	X, Y ExtElem
}

// ExtCirclePointFromParam maps a challenge t onto the circle through the
// rational parametrization ((1 - t^2) / (1 + t^2), 2t / (1 + t^2)).
func ExtCirclePointFromParam(e *ExtField, t ExtElem) (ExtCirclePoint, error) {
	t2 := e.Mul(t, t)
	den := e.Add(e.One(), t2)
	if e.IsZero(den) {
		return ExtCirclePoint{}, fmt.Errorf("parametrization undefined at t^2 = -1")
	}
	invDen := e.Inv(den)
	return ExtCirclePoint{
		X: e.Mul(e.Sub(e.One(), t2), invDen),
		Y: e.Mul(e.MulBase(t, 2), invDen),
	}, nil
}

// ExtDoublingMapX applies pi(x) = 2x^2 - 1 over the challenge field.
func ExtDoublingMapX(e *ExtField, x ExtElem) ExtElem {
	return e.Sub(e.MulBase(e.Mul(x, x), 2), e.One())
}
