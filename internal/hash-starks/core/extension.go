package core

// ExtElem holds the coefficients of a challenge-field element in the basis
// 1, x, ..., x^(d-1). Coefficients above the extension degree stay zero.
type ExtElem [4]uint64

// ExtField represents the binomial extension F[x] / (x^d - w) attached to a
// base field. The degree and nonresidue come from the base field itself, so
// every base field has exactly one challenge field.
type ExtField struct {
	Base   Field
	Degree int
	w      uint64
}

// NewExtField builds the challenge field of the given base field.
func NewExtField(f Field) *ExtField {
	return &ExtField{Base: f, Degree: f.ExtensionDegree(), w: f.ExtensionNonResidue()}
}

// Zero returns the additive identity.
func (e *ExtField) Zero() ExtElem { return ExtElem{} }

// One returns the multiplicative identity.
func (e *ExtField) One() ExtElem { return ExtElem{1} }

// FromBase embeds a base-field element as the constant coefficient.
func (e *ExtField) FromBase(v uint64) ExtElem { return ExtElem{v} }

// FromUint64 reduces an arbitrary uint64 and embeds it.
func (e *ExtField) FromUint64(v uint64) ExtElem {
	return ExtElem{e.Base.FromUint64(v)}
}

// IsZero reports whether the element is the additive identity.
func (e *ExtField) IsZero(a ExtElem) bool {
	for i := 0; i < e.Degree; i++ {
		if a[i] != 0 {
			return false
		}
	}
	return true
}

// Equal reports coefficient-wise equality.
func (e *ExtField) Equal(a, b ExtElem) bool {
	for i := 0; i < e.Degree; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Add performs coefficient-wise addition.
func (e *ExtField) Add(a, b ExtElem) ExtElem {
	var out ExtElem
	for i := 0; i < e.Degree; i++ {
		out[i] = e.Base.Add(a[i], b[i])
	}
	return out
}

// Sub performs coefficient-wise subtraction.
func (e *ExtField) Sub(a, b ExtElem) ExtElem {
	var out ExtElem
	for i := 0; i < e.Degree; i++ {
		out[i] = e.Base.Sub(a[i], b[i])
	}
	return out
}

// Neg returns the additive inverse.
func (e *ExtField) Neg(a ExtElem) ExtElem {
	var out ExtElem
	for i := 0; i < e.Degree; i++ {
		out[i] = e.Base.Neg(a[i])
	}
	return out
}

// MulBase scales every coefficient by a base-field element.
func (e *ExtField) MulBase(a ExtElem, s uint64) ExtElem {
	var out ExtElem
	for i := 0; i < e.Degree; i++ {
		out[i] = e.Base.Mul(a[i], s)
	}
	return out
}

// Mul multiplies two elements, reducing x^d to the nonresidue w.
func (e *ExtField) Mul(a, b ExtElem) ExtElem {
	var out ExtElem
	f := e.Base
	for i := 0; i < e.Degree; i++ {
		if a[i] == 0 {
			continue
		}
		for j := 0; j < e.Degree; j++ {
			if b[j] == 0 {
				continue
			}
			t := f.Mul(a[i], b[j])
			k := i + j
			if k >= e.Degree {
				k -= e.Degree
				t = f.Mul(t, e.w)
			}
			out[k] = f.Add(out[k], t)
		}
	}
	return out
}

// frobenius applies the p-power map. With x^d = w it scales the i-th
// coefficient by c^i where c = w^((p-1)/d).
func (e *ExtField) frobenius(a ExtElem) ExtElem {
	f := e.Base
	c := f.Exp(e.w, (f.Modulus()-1)/uint64(e.Degree))
	var out ExtElem
	scale := uint64(1)
	for i := 0; i < e.Degree; i++ {
		out[i] = f.Mul(a[i], scale)
		scale = f.Mul(scale, c)
	}
	return out
}

// Inv returns the multiplicative inverse via the norm: the product of all
// Frobenius conjugates lands in the base field. Inv(0) is defined as 0.
func (e *ExtField) Inv(a ExtElem) ExtElem {
	if e.IsZero(a) {
		return ExtElem{}
	}
	// b = prod of the d-1 nontrivial conjugates; a*b = Norm(a) is scalar.
	conj := e.frobenius(a)
	b := conj
	for i := 2; i < e.Degree; i++ {
		conj = e.frobenius(conj)
		b = e.Mul(b, conj)
	}
	norm := e.Mul(a, b)
	return e.MulBase(b, e.Base.Inv(norm[0]))
}

// Div returns a / b. Division by zero yields zero.
func (e *ExtField) Div(a, b ExtElem) ExtElem {
	return e.Mul(a, e.Inv(b))
}

// Exp raises an element to the given power.
func (e *ExtField) Exp(a ExtElem, exp uint64) ExtElem {
	result := e.One()
	b := a
	for exp > 0 {
		if exp&1 == 1 {
			result = e.Mul(result, b)
		}
		b = e.Mul(b, b)
		exp >>= 1
	}
	return result
}

// Coeffs returns the active coefficients as a slice of length Degree.
func (e *ExtField) Coeffs(a ExtElem) []uint64 {
	out := make([]uint64, e.Degree)
	copy(out, a[:e.Degree])
	return out
}

// FromCoeffs assembles an element from up to Degree coefficients.
func (e *ExtField) FromCoeffs(coeffs []uint64) ExtElem {
	var out ExtElem
	for i := 0; i < e.Degree && i < len(coeffs); i++ {
		out[i] = e.Base.FromUint64(coeffs[i])
	}
	return out
}
