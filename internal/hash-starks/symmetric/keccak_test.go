package symmetric

import (
	"testing"
)

// The all-zero state after one Keccak-f[1600] permutation is a published
// known-answer vector; checking the first lanes pins the whole permutation.
func TestKeccakFKnownAnswer(t *testing.T) {
	var state [25]uint64
	KeccakF(&state)
	want := [4]uint64{
		0xF1258F7940E1DDE7, 0x84D5CCF933C0478A,
		0xD598261EA65AA9EE, 0xBD1547306F80494D,
	}
	for i, w := range want {
		if state[i] != w {
			t.Errorf("lane %d = %#x, want %#x", i, state[i], w)
		}
	}
}

func TestKeccakHasherDeterministic(t *testing.T) {
	h := NewKeccakHasher()
	row := []uint64{1, 2, 3, 4, 5}
	a := h.HashRow(row)
	b := h.HashRow(row)
	if !EqualDigests(a, b) {
		t.Errorf("same row hashed to different digests")
	}
	if len(a) != h.DigestLen() {
		t.Errorf("digest length %d, want %d", len(a), h.DigestLen())
	}
	row[0] = 9
	if EqualDigests(a, h.HashRow(row)) {
		t.Errorf("distinct rows collided")
	}
}

func TestKeccakHasherMultiBlock(t *testing.T) {
	h := NewKeccakHasher()
	// 40 lanes spans three rate-17 blocks.
	long := make([]uint64, 40)
	for i := range long {
		long[i] = uint64(i + 1)
	}
	a := h.HashRow(long)
	long[39] = 0
	if EqualDigests(a, h.HashRow(long)) {
		t.Errorf("change in the final block did not affect the digest")
	}
}

func TestKeccakCompress(t *testing.T) {
	h := NewKeccakHasher()
	a := h.HashRow([]uint64{1})
	b := h.HashRow([]uint64{2})
	ab := h.Compress(a, b)
	ba := h.Compress(b, a)
	if EqualDigests(ab, ba) {
		t.Errorf("compression should order its children")
	}
	if !EqualDigests(ab, h.Compress(a, b)) {
		t.Errorf("compression is not deterministic")
	}
}

func TestKeccak256(t *testing.T) {
	// Keccak-256 of the empty input, the classic pre-SHA3 vector.
	got := Keccak256(nil)
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	hexDigits := "0123456789abcdef"
	var buf []byte
	for _, b := range got {
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0xF])
	}
	if string(buf) != want {
		t.Errorf("Keccak256(\"\") = %s, want %s", buf, want)
	}
}
