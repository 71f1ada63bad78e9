package airs

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// Violation pinpoints a failed constraint during the row-wise check.
type Violation struct {
	Row        int
	Constraint int
}

func (v *Violation) Error() string {
	return fmt.Sprintf("constraint %d violated at row %d", v.Constraint, v.Row)
}

// CheckConstraints walks the trace row by row and evaluates every constraint
// with literal 0/1 selectors. The prover runs this before committing to
// anything, so a bad trace fails fast with a row and constraint index
// instead of an opaque verification failure later.
func CheckConstraints(air AIR, f core.Field, trace *core.Matrix, public []uint64) error {
	e := core.NewExtField(f)
	if trace.Width != air.Width() {
		return fmt.Errorf("trace width %d does not match air width %d", trace.Width, air.Width())
	}
	if len(public) != air.PublicValueCount() {
		return fmt.Errorf("got %d public values, air expects %d", len(public), air.PublicValueCount())
	}
	height := trace.Height
	local := make([]core.ExtElem, trace.Width)
	next := make([]core.ExtElem, trace.Width)
	for row := 0; row < height; row++ {
		for j := 0; j < trace.Width; j++ {
			local[j] = e.FromBase(trace.At(row, j))
			next[j] = e.FromBase(trace.At((row+1)%height, j))
		}
		sel := func(cond bool) core.ExtElem {
			if cond {
				return e.One()
			}
			return e.Zero()
		}
		b := NewBuilder(e, local, next, public,
			sel(row == 0), sel(row == height-1), sel(row < height-1), e.One())
		var firstBad *Violation
		b.onConstraint = func(index int, value core.ExtElem) {
			if firstBad == nil && !e.IsZero(value) {
				firstBad = &Violation{Row: row, Constraint: index}
			}
		}
		air.Eval(b)
		if firstBad != nil {
			return firstBad
		}
	}
	return nil
}
