package airs

// traceRNG is a splitmix64 stream seeding the synthetic hash preimages, so
// identical seeds reproduce identical traces and proofs.
type traceRNG struct{ state uint64 }

func newTraceRNG(seed uint64) *traceRNG {
	return &traceRNG{state: seed ^ 0x5851F42D4C957F2D}
}

func (r *traceRNG) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}
