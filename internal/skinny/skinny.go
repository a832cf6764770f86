// Package skinny implements the Skinny-128-384+ tweakable block cipher
// (the 40-round variant used by the Romulus family), with and without a
// first-order Boolean masking countermeasure.
//
// The tweakey schedule is precomputed and split the way the protected
// reference splits it: the first share carries LFSR2(TK2) XOR
// LFSR3(TK3), the second share carries the schedule of the TK3 mask.
// Both LFSRs and the tweakey permutation are linear, so the XOR of the
// two shared schedules equals the schedule of the unmasked tweakey.
package skinny

import (
	"encoding/binary"
	"math/bits"
)

const (
	// BlockSize is the cipher's block size in bytes.
	BlockSize = 16

	// Rounds is the number of rounds in Skinny-128-384+.
	Rounds = 40
)

// permTK is the tweakey cell permutation P_T.
var permTK = [16]byte{9, 15, 8, 13, 10, 14, 12, 11, 0, 1, 2, 3, 4, 5, 6, 7}

// Schedule holds precomputed round tweakey material for the TK2 and TK3
// tweakey words. It is valid only for the inputs that produced it and
// must be re-derived whenever either changes.
type Schedule struct {
	rtk  [Rounds][8]byte // LFSR2(TK2) ^ LFSR3(TK3)
	rtkm [Rounds][8]byte // LFSR3(TK3 mask), or LFSR2(TK2 mask) ^ LFSR3(TK3 mask)
}

// Derive fills the schedule from a public TK2 and a two-share TK3.
func (s *Schedule) Derive(tk2, tk3, tk3m []byte) {
	deriveRows(&s.rtk, tk2, tk3)
	deriveMaskRows(&s.rtkm, tk3m)
}

// DeriveMasked fills the schedule from a two-share TK2 and a two-share
// TK3. Used when the tweak itself is a secret, e.g. the masked nonce in
// the re-keying mode's derivation call.
func (s *Schedule) DeriveMasked(tk2, tk2m, tk3, tk3m []byte) {
	deriveRows(&s.rtk, tk2, tk3)
	deriveRows(&s.rtkm, tk2m, tk3m)
}

// Wipe clears the key-dependent schedule material.
func (s *Schedule) Wipe() {
	for r := range s.rtk {
		for i := range s.rtk[r] {
			s.rtk[r][i] = 0
			s.rtkm[r][i] = 0
		}
	}
}

// TK1Schedule holds the round tweakey material derived from TK1 alone.
// TK1 is public (counter and domain), so it is never shared.
type TK1Schedule [Rounds][8]byte

// Derive fills the schedule from the current TK1 block.
func (d *TK1Schedule) Derive(tk1 *[16]byte) {
	a := *tk1

	for r := 0; r < Rounds; r++ {
		copy(d[r][:], a[:8])
		permuteTK(&a)
	}
}

func deriveRows(dst *[Rounds][8]byte, tk2, tk3 []byte) {
	var a, b [16]byte

	copy(a[:], tk2)
	copy(b[:], tk3)

	for r := 0; r < Rounds; r++ {
		for i := 0; i < 8; i++ {
			dst[r][i] = a[i] ^ b[i]
		}

		permuteTK(&a)
		permuteTK(&b)
		lfsr2(&a)
		lfsr3(&b)
	}
}

func deriveMaskRows(dst *[Rounds][8]byte, tk3m []byte) {
	var b [16]byte

	copy(b[:], tk3m)

	for r := 0; r < Rounds; r++ {
		copy(dst[r][:], b[:8])
		permuteTK(&b)
		lfsr3(&b)
	}
}

func permuteTK(tk *[16]byte) {
	var t [16]byte

	for i, p := range permTK {
		t[i] = tk[p]
	}

	*tk = t
}

// lfsr2 clocks the TK2 byte LFSR over the two rows that feed the next
// round tweakey.
func lfsr2(tk *[16]byte) {
	for i := 0; i < 8; i++ {
		b := tk[i]
		tk[i] = b<<1 | (b>>7^b>>5)&1
	}
}

// lfsr3 clocks the TK3 byte LFSR over the two rows that feed the next
// round tweakey.
func lfsr3(tk *[16]byte) {
	for i := 0; i < 8; i++ {
		b := tk[i]
		tk[i] = b>>1 | (b<<7^b<<1)&0x80
	}
}

// nextRC clocks the 6-bit round-constant LFSR.
func nextRC(rc byte) byte {
	return (rc<<1 | (rc>>5^rc>>4^1)&1) & 0x3f
}

// Encrypt applies Skinny-128-384+ to a single unshared block in place.
// Both schedule shares are folded in, so it accepts the same material
// as EncryptMasked and computes the same permutation. It exists for the
// unmask-and-compare test harness and must not be fed secrets in
// production.
func Encrypt(state *[16]byte, tk1 *TK1Schedule, ks *Schedule) {
	var w [4]uint32

	loadWords(&w, state)

	rc := byte(0)
	for r := 0; r < Rounds; r++ {
		subCells(&w)

		rc = nextRC(rc)
		w[0] ^= uint32(rc & 0xf)
		w[1] ^= uint32(rc >> 4)
		w[2] ^= 0x02

		w[0] ^= leU32(ks.rtk[r][0:]) ^ leU32(ks.rtkm[r][0:]) ^ leU32(tk1[r][0:])
		w[1] ^= leU32(ks.rtk[r][4:]) ^ leU32(ks.rtkm[r][4:]) ^ leU32(tk1[r][4:])

		shiftRows(&w)
		mixColumns(&w)
	}

	storeWords(state, &w)
}

// subCells evaluates the 8-bit S-box on all sixteen cells, four cells
// per word. The S-box is the iterated XOR-NOR construction from the
// Skinny specification; all four NOR taps land on bits 4 and 0, so one
// masked word constant covers the whole iteration.
func subCells(w *[4]uint32) {
	for i := range w {
		x := w[i]

		for it := 0; it < 4; it++ {
			x ^= ^(x>>3 | x>>2) & 0x11111111

			if it < 3 {
				x = sboxShuffle(x)
			} else {
				x = sboxSwap(x)
			}
		}

		w[i] = x
	}
}

// sboxShuffle applies the intra-byte bit permutation between S-box
// iterations: (x7..x0) <- (x2, x1, x7, x6, x4, x0, x3, x5).
func sboxShuffle(x uint32) uint32 {
	return (x&0x06060606)<<5 | (x&0xc0c0c0c0)>>2 | (x&0x10101010)>>1 |
		(x&0x01010101)<<2 | (x&0x08080808)>>2 | (x&0x20202020)>>5
}

// sboxSwap applies the final iteration's permutation, which only swaps
// bits 1 and 2.
func sboxSwap(x uint32) uint32 {
	return x&0xf9f9f9f9 | (x&0x04040404)>>1 | (x&0x02020202)<<1
}

func shiftRows(w *[4]uint32) {
	w[1] = bits.RotateLeft32(w[1], 8)
	w[2] = bits.RotateLeft32(w[2], 16)
	w[3] = bits.RotateLeft32(w[3], 24)
}

func mixColumns(w *[4]uint32) {
	w[1] ^= w[2]
	w[2] ^= w[0]
	w[3] ^= w[2]
	w[0], w[1], w[2], w[3] = w[3], w[0], w[1], w[2]
}

func loadWords(w *[4]uint32, b *[16]byte) {
	w[0] = binary.LittleEndian.Uint32(b[0:4])
	w[1] = binary.LittleEndian.Uint32(b[4:8])
	w[2] = binary.LittleEndian.Uint32(b[8:12])
	w[3] = binary.LittleEndian.Uint32(b[12:16])
}

func storeWords(b *[16]byte, w *[4]uint32) {
	binary.LittleEndian.PutUint32(b[0:4], w[0])
	binary.LittleEndian.PutUint32(b[4:8], w[1])
	binary.LittleEndian.PutUint32(b[8:12], w[2])
	binary.LittleEndian.PutUint32(b[12:16], w[3])
}

func leU32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
