package airs

import (
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// IncrementAIR constrains column 0 of a W-column trace to increase by one on
// every transition. The remaining columns carry free payload data and are
// deliberately unconstrained.
type IncrementAIR struct {
	field core.Field
	width int
}

// NewIncrementAIR returns the increment constraint system over W columns.
func NewIncrementAIR(f core.Field, width int) (*IncrementAIR, error) {
	if width < 1 {
		return nil, fmt.Errorf("increment air needs at least one column, got %d", width)
	}
	return &IncrementAIR{field: f, width: width}, nil
}

func (a *IncrementAIR) Name() string          { return "increment" }
func (a *IncrementAIR) Width() int            { return a.width }
func (a *IncrementAIR) PublicValueCount() int { return 0 }

func (a *IncrementAIR) Eval(b *Builder) {
	e := b.E
	b.AssertZeroTransition(e.Sub(e.Sub(b.Next[0], b.Local[0]), e.One()))
}

// GenerateTrace fills column 0 with start, start+1, ... and the payload
// columns with deterministic filler.
func (a *IncrementAIR) GenerateTrace(start uint64, height int) (*core.Matrix, error) {
	if !core.IsPowerOfTwo(height) {
		return nil, fmt.Errorf("trace height %d is not a power of two", height)
	}
	f := a.field
	m := core.NewMatrix(a.width, height)
	for k := 0; k < height; k++ {
		m.Set(k, 0, f.FromUint64(start+uint64(k)))
		for j := 1; j < a.width; j++ {
			m.Set(k, j, f.FromUint64(uint64(j)*1000+uint64(k)))
		}
	}
	return m, nil
}

// PadTrace extends parsed rows to the next power of two: column 0 continues
// the increment, the payload columns copy the last row.
func (a *IncrementAIR) PadTrace(rows [][]uint64) (*core.Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no trace rows to pad")
	}
	f := a.field
	height := 1 << uint(core.Log2Ceil(len(rows)))
	m := core.NewMatrix(a.width, height)
	for k, row := range rows {
		if len(row) != a.width {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", k, len(row), a.width)
		}
		for j, v := range row {
			m.Set(k, j, f.FromUint64(v))
		}
	}
	last := rows[len(rows)-1]
	for k := len(rows); k < height; k++ {
		m.Set(k, 0, f.Add(m.At(k-1, 0), 1))
		for j := 1; j < a.width; j++ {
			m.Set(k, j, f.FromUint64(last[j]))
		}
	}
	return m, nil
}
