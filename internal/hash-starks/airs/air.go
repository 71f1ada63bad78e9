// Package airs defines the constraint systems the pipeline can prove: a
// Fibonacci recurrence, an increment column, and the Blake3, Keccak-f[1600]
// and Poseidon2 permutations. Each AIR evaluates its constraints through a
// Builder, which the prover drives once per evaluation point and the
// verifier drives once at the out-of-domain point.
package airs

import (
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
)

// AIR is a constraint system over trace rows.
type AIR interface {
	// Name returns the objective name.
	Name() string

	// Width returns the number of trace columns.
	Width() int

	// PublicValueCount returns how many public values Eval expects.
	PublicValueCount() int

	// Eval emits every constraint into the builder. The same sequence of
	// assertions must be produced on every call.
	Eval(b *Builder)
}

// Builder accumulates constraint values at a single evaluation point. Each
// asserted constraint is scoped by a row selector and folded into a running
// alpha-combination.
type Builder struct {
	E      *core.ExtField
	Local  []core.ExtElem
	Next   []core.ExtElem
	Public []uint64

	first      core.ExtElem
	last       core.ExtElem
	transition core.ExtElem
	alpha      core.ExtElem
	acc        core.ExtElem
	count      int

	// onConstraint, when set, sees every scoped constraint value. The
	// row-wise checker uses it to locate violations.
	onConstraint func(index int, value core.ExtElem)
}

// NewBuilder prepares a builder for one evaluation point. The selector values
// are the first-row, last-row and transition selectors evaluated at that
// point.
func NewBuilder(e *core.ExtField, local, next []core.ExtElem, public []uint64, first, last, transition, alpha core.ExtElem) *Builder {
	return &Builder{
		E:          e,
		Local:      local,
		Next:       next,
		Public:     public,
		first:      first,
		last:       last,
		transition: transition,
		alpha:      alpha,
		acc:        e.Zero(),
	}
}

func (b *Builder) assertScoped(sel, x core.ExtElem) {
	term := b.E.Mul(sel, x)
	if b.onConstraint != nil {
		b.onConstraint(b.count, term)
	}
	b.acc = b.E.Add(b.E.Mul(b.acc, b.alpha), term)
	b.count++
}

// AssertZero asserts a constraint on every row.
func (b *Builder) AssertZero(x core.ExtElem) {
	b.assertScoped(b.E.One(), x)
}

// AssertZeroFirstRow asserts a constraint on the first row only.
func (b *Builder) AssertZeroFirstRow(x core.ExtElem) {
	b.assertScoped(b.first, x)
}

// AssertZeroLastRow asserts a constraint on the last row only.
func (b *Builder) AssertZeroLastRow(x core.ExtElem) {
	b.assertScoped(b.last, x)
}

// AssertZeroTransition asserts a constraint on every row but the last.
func (b *Builder) AssertZeroTransition(x core.ExtElem) {
	b.assertScoped(b.transition, x)
}

// AssertEqTransition asserts a = b on every row but the last.
func (b *Builder) AssertEqTransition(a, x core.ExtElem) {
	b.AssertZeroTransition(b.E.Sub(a, x))
}

// AssertBool asserts v is 0 or 1 on every row.
func (b *Builder) AssertBool(v core.ExtElem) {
	b.AssertZero(b.E.Mul(v, b.E.Sub(v, b.E.One())))
}

// PublicValue embeds the i-th public value.
func (b *Builder) PublicValue(i int) core.ExtElem {
	return b.E.FromBase(b.Public[i])
}

// Accumulated returns the alpha-folded combination of all scoped constraints.
func (b *Builder) Accumulated() core.ExtElem {
	return b.acc
}

// ConstraintCount returns the number of constraints asserted so far.
func (b *Builder) ConstraintCount() int {
	return b.count
}
