package symmetric

import "math/bits"

// KeccakRounds is the number of rounds of Keccak-f[1600].
const KeccakRounds = 24

// KeccakRoundConstants are the iota constants, one per round.
var KeccakRoundConstants = [KeccakRounds]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088, 0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// KeccakRhoOffsets are the rho rotation amounts, indexed by lane x + 5y.
var KeccakRhoOffsets = [25]int{
	0, 1, 62, 28, 27,
	36, 44, 6, 55, 20,
	3, 10, 43, 25, 39,
	41, 45, 15, 21, 8,
	18, 2, 61, 56, 14,
}

// KeccakRound applies a single round (theta, rho, pi, chi, iota) in place.
func KeccakRound(a *[25]uint64, round int) {
	// theta
	var c, d [5]uint64
	for x := 0; x < 5; x++ {
		c[x] = a[x] ^ a[x+5] ^ a[x+10] ^ a[x+15] ^ a[x+20]
	}
	for x := 0; x < 5; x++ {
		d[x] = c[(x+4)%5] ^ bits.RotateLeft64(c[(x+1)%5], 1)
	}
	for i := 0; i < 25; i++ {
		a[i] ^= d[i%5]
	}
	// rho and pi
	var b [25]uint64
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			b[y+5*((2*x+3*y)%5)] = bits.RotateLeft64(a[x+5*y], KeccakRhoOffsets[x+5*y])
		}
	}
	// chi
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			a[x+5*y] = b[x+5*y] ^ (^b[(x+1)%5+5*y] & b[(x+2)%5+5*y])
		}
	}
	a[0] ^= KeccakRoundConstants[round]
}

// KeccakF applies the full Keccak-f[1600] permutation in place.
func KeccakF(a *[25]uint64) {
	for round := 0; round < KeccakRounds; round++ {
		KeccakRound(a, round)
	}
}
