package airs

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// FibonacciAIR constrains a width-2 trace to the Fibonacci recurrence. Row k
// holds (F_{s+k}, F_{s+k+1}) for a starting index s fixed by the first two
// public values; the third public value pins the right entry of the last row.
type FibonacciAIR struct {
	field core.Field
}

// NewFibonacciAIR returns the Fibonacci constraint system.
func NewFibonacciAIR(f core.Field) *FibonacciAIR {
	return &FibonacciAIR{field: f}
}

func (a *FibonacciAIR) Name() string          { return "fibonacci" }
func (a *FibonacciAIR) Width() int            { return 2 }
func (a *FibonacciAIR) PublicValueCount() int { return 3 }

func (a *FibonacciAIR) Eval(b *Builder) {
	e := b.E
	left, right := b.Local[0], b.Local[1]

	b.AssertZeroFirstRow(e.Sub(left, b.PublicValue(0)))
	b.AssertZeroFirstRow(e.Sub(right, b.PublicValue(1)))

	b.AssertEqTransition(b.Next[0], right)
	b.AssertEqTransition(b.Next[1], e.Add(left, right))

	b.AssertZeroLastRow(e.Sub(right, b.PublicValue(2)))
}

// GenerateTrace builds a height-row trace starting from (a, b) and returns it
// with the matching public values.
func (a *FibonacciAIR) GenerateTrace(start0, start1 uint64, height int) (*core.Matrix, []uint64, error) {
	if !core.IsPowerOfTwo(height) {
		return nil, nil, fmt.Errorf("trace height %d is not a power of two", height)
	}
	f := a.field
	m := core.NewMatrix(2, height)
	left, right := f.FromUint64(start0), f.FromUint64(start1)
	for k := 0; k < height; k++ {
		m.Set(k, 0, left)
		m.Set(k, 1, right)
		left, right = right, f.Add(left, right)
	}
	public := []uint64{f.FromUint64(start0), f.FromUint64(start1), m.At(height-1, 1)}
	return m, public, nil
}
