package protocols

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vybium/vybium-hash-starks/internal/hash-starks/core"
	"github.com/vybium/vybium-hash-starks/internal/hash-starks/symmetric"
)

// Proof is a complete argument for one trace. Everything the verifier needs
// beyond the configuration and the public values lives here.
type Proof struct {
	FieldName  string
	MerkleHash string
	LogN       int
	Width      int

	TraceRoot    symmetric.Digest
	QuotientRoot symmetric.Digest
	Openings     Openings
	FRI          FRIProof
}

// Openings are the out-of-domain values: every trace column at the point and
// its row shift, plus the quotient's base columns at the point. The circle
// branch additionally carries the odd interpolation parts.
type Openings struct {
	TraceLocal []core.ExtElem
	TraceNext  []core.ExtElem
	Quotient   []core.ExtElem

	TraceLocalAux []core.ExtElem
	TraceNextAux  []core.ExtElem
	QuotientAux   []core.ExtElem
}

// FRIProof is the folding argument: one commitment per intermediate layer,
// the fully folded value, the grinding witness and the query openings.
type FRIProof struct {
	CommitRoots []symmetric.Digest
	FinalValue  core.ExtElem
	PowWitness  uint64
	Queries     []QueryProof
}

// QueryProof opens every committed matrix along one query's fold path: the
// trace and quotient at the index and its fold pair, then both sides of every
// intermediate layer.
type QueryProof struct {
	TraceAt      BatchOpening
	TracePair    BatchOpening
	QuotientAt   BatchOpening
	QuotientPair BatchOpening
	Layers       []LayerOpening
}

// LayerOpening opens one committed fold layer at the running index and its
// pair.
type LayerOpening struct {
	At   BatchOpening
	Pair BatchOpening
}

// BatchOpening is one Merkle opening: the revealed row and its sibling path.
type BatchOpening struct {
	Row  []uint64
	Path []symmetric.Digest
}

// Wire format: little-endian fixed-width integers throughout. The header
// pins a magic, a version and the element widths; every slice is
// count-prefixed.
const (
	proofMagic   uint32 = 0x46505348 // "HSPF"
	proofVersion uint32 = 1

	// maxWireCount caps any single count read off the wire.
	maxWireCount = 1 << 24
)

type proofWriter struct {
	buf bytes.Buffer
}

func (w *proofWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *proofWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *proofWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *proofWriter) u64s(vs []uint64) {
	w.u32(uint32(len(vs)))
	for _, v := range vs {
		w.u64(v)
	}
}

func (w *proofWriter) digest(d symmetric.Digest, digestLen int) {
	for i := 0; i < digestLen; i++ {
		w.u64(d[i])
	}
}

func (w *proofWriter) ext(v core.ExtElem, extDeg int) {
	for i := 0; i < extDeg; i++ {
		w.u64(v[i])
	}
}

func (w *proofWriter) exts(vs []core.ExtElem, extDeg int) {
	w.u32(uint32(len(vs)))
	for _, v := range vs {
		w.ext(v, extDeg)
	}
}

func (w *proofWriter) batch(o BatchOpening, digestLen int) {
	w.u64s(o.Row)
	w.u32(uint32(len(o.Path)))
	for _, d := range o.Path {
		w.digest(d, digestLen)
	}
}

// Serialize encodes the proof. The encoding is deterministic: the same proof
// always yields the same bytes.
func (p *Proof) Serialize() ([]byte, error) {
	if len(p.TraceRoot) != len(p.QuotientRoot) {
		return nil, &SerializationError{Msg: "trace and quotient roots disagree on digest length"}
	}
	f, err := core.FieldByName(p.FieldName)
	if err != nil {
		return nil, &SerializationError{Msg: err.Error()}
	}
	extDeg := f.ExtensionDegree()
	digestLen := len(p.TraceRoot)

	var w proofWriter
	w.u32(proofMagic)
	w.u32(proofVersion)
	w.str(p.FieldName)
	w.str(p.MerkleHash)
	w.u32(uint32(p.LogN))
	w.u32(uint32(p.Width))
	w.u32(uint32(extDeg))
	w.u32(uint32(digestLen))
	w.digest(p.TraceRoot, digestLen)
	w.digest(p.QuotientRoot, digestLen)

	w.exts(p.Openings.TraceLocal, extDeg)
	w.exts(p.Openings.TraceNext, extDeg)
	w.exts(p.Openings.Quotient, extDeg)
	w.exts(p.Openings.TraceLocalAux, extDeg)
	w.exts(p.Openings.TraceNextAux, extDeg)
	w.exts(p.Openings.QuotientAux, extDeg)

	w.u32(uint32(len(p.FRI.CommitRoots)))
	for _, d := range p.FRI.CommitRoots {
		if len(d) != digestLen {
			return nil, &SerializationError{Msg: "fold root digest length mismatch"}
		}
		w.digest(d, digestLen)
	}
	w.ext(p.FRI.FinalValue, extDeg)
	w.u64(p.FRI.PowWitness)
	w.u32(uint32(len(p.FRI.Queries)))
	for _, q := range p.FRI.Queries {
		w.batch(q.TraceAt, digestLen)
		w.batch(q.TracePair, digestLen)
		w.batch(q.QuotientAt, digestLen)
		w.batch(q.QuotientPair, digestLen)
		w.u32(uint32(len(q.Layers)))
		for _, l := range q.Layers {
			w.batch(l.At, digestLen)
			w.batch(l.Pair, digestLen)
		}
	}
	return w.buf.Bytes(), nil
}

type proofReader struct {
	data []byte
	off  int
	err  error
}

func (r *proofReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = &SerializationError{Msg: fmt.Sprintf(format, args...)}
	}
}

func (r *proofReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	if r.off+4 > len(r.data) {
		r.fail("truncated at offset %d", r.off)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *proofReader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	if r.off+8 > len(r.data) {
		r.fail("truncated at offset %d", r.off)
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *proofReader) count() int {
	n := r.u32()
	if n > maxWireCount {
		r.fail("count %d exceeds the wire limit", n)
		return 0
	}
	return int(n)
}

func (r *proofReader) str() string {
	n := r.count()
	if r.err != nil {
		return ""
	}
	if r.off+n > len(r.data) {
		r.fail("truncated string at offset %d", r.off)
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

func (r *proofReader) u64s() []uint64 {
	n := r.count()
	if r.err != nil {
		return nil
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = r.u64()
	}
	return out
}

func (r *proofReader) digest(digestLen int) symmetric.Digest {
	d := make(symmetric.Digest, digestLen)
	for i := range d {
		d[i] = r.u64()
	}
	return d
}

func (r *proofReader) ext(extDeg int) core.ExtElem {
	var v core.ExtElem
	for i := 0; i < extDeg; i++ {
		v[i] = r.u64()
	}
	return v
}

func (r *proofReader) exts(extDeg int) []core.ExtElem {
	n := r.count()
	if r.err != nil {
		return nil
	}
	out := make([]core.ExtElem, n)
	for i := range out {
		out[i] = r.ext(extDeg)
	}
	return out
}

func (r *proofReader) batch(digestLen int) BatchOpening {
	row := r.u64s()
	n := r.count()
	if r.err != nil {
		return BatchOpening{}
	}
	path := make([]symmetric.Digest, n)
	for i := range path {
		path[i] = r.digest(digestLen)
	}
	return BatchOpening{Row: row, Path: path}
}

// DeserializeProof decodes a proof produced by Serialize.
func DeserializeProof(data []byte) (*Proof, error) {
	r := &proofReader{data: data}
	if magic := r.u32(); r.err == nil && magic != proofMagic {
		return nil, &SerializationError{Msg: fmt.Sprintf("bad magic 0x%08x", magic)}
	}
	if version := r.u32(); r.err == nil && version != proofVersion {
		return nil, &SerializationError{Msg: fmt.Sprintf("unsupported proof version %d", version)}
	}

	p := &Proof{}
	p.FieldName = r.str()
	p.MerkleHash = r.str()
	p.LogN = int(r.u32())
	p.Width = int(r.u32())
	extDeg := int(r.u32())
	digestLen := int(r.u32())
	if r.err == nil && (extDeg < 1 || extDeg > 4) {
		return nil, &SerializationError{Msg: fmt.Sprintf("extension degree %d out of range", extDeg)}
	}
	if r.err == nil && (digestLen < 1 || digestLen > 16) {
		return nil, &SerializationError{Msg: fmt.Sprintf("digest length %d out of range", digestLen)}
	}
	if r.err != nil {
		return nil, r.err
	}
	if f, err := core.FieldByName(p.FieldName); err != nil {
		return nil, &SerializationError{Msg: err.Error()}
	} else if f.ExtensionDegree() != extDeg {
		return nil, &SerializationError{Msg: fmt.Sprintf("extension degree %d does not match field %s", extDeg, p.FieldName)}
	}

	p.TraceRoot = r.digest(digestLen)
	p.QuotientRoot = r.digest(digestLen)

	p.Openings.TraceLocal = r.exts(extDeg)
	p.Openings.TraceNext = r.exts(extDeg)
	p.Openings.Quotient = r.exts(extDeg)
	p.Openings.TraceLocalAux = r.exts(extDeg)
	p.Openings.TraceNextAux = r.exts(extDeg)
	p.Openings.QuotientAux = r.exts(extDeg)

	nRoots := r.count()
	if r.err == nil {
		p.FRI.CommitRoots = make([]symmetric.Digest, nRoots)
		for i := range p.FRI.CommitRoots {
			p.FRI.CommitRoots[i] = r.digest(digestLen)
		}
	}
	p.FRI.FinalValue = r.ext(extDeg)
	p.FRI.PowWitness = r.u64()
	nQueries := r.count()
	if r.err == nil {
		p.FRI.Queries = make([]QueryProof, nQueries)
		for i := range p.FRI.Queries {
			q := &p.FRI.Queries[i]
			q.TraceAt = r.batch(digestLen)
			q.TracePair = r.batch(digestLen)
			q.QuotientAt = r.batch(digestLen)
			q.QuotientPair = r.batch(digestLen)
			nLayers := r.count()
			if r.err != nil {
				break
			}
			q.Layers = make([]LayerOpening, nLayers)
			for l := range q.Layers {
				q.Layers[l].At = r.batch(digestLen)
				q.Layers[l].Pair = r.batch(digestLen)
			}
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(data) {
		return nil, &SerializationError{Msg: fmt.Sprintf("%d trailing bytes", len(data)-r.off)}
	}
	return p, nil
}
