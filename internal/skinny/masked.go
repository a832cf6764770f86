package skinny

import (
	"github.com/lwcrypt/romulus/internal/maskrand"
)

// EncryptMasked applies Skinny-128-384+ to a two-share state in place.
//
// The linear layers operate on each share independently. The S-box
// layer is the only nonlinear step and is evaluated across shares with
// ISW AND gates, consuming one fresh random word per word per
// iteration. Round constants and the TK1 material ride on the first
// share only; the second share accumulates the mask schedule. At no
// point is the combined state materialized.
func EncryptMasked(state, mask *[16]byte, tk1 *TK1Schedule, ks *Schedule, rng *maskrand.Source) {
	var w, wm [4]uint32

	loadWords(&w, state)
	loadWords(&wm, mask)

	rc := byte(0)
	for r := 0; r < Rounds; r++ {
		subCellsMasked(&w, &wm, rng)

		rc = nextRC(rc)
		w[0] ^= uint32(rc & 0xf)
		w[1] ^= uint32(rc >> 4)
		w[2] ^= 0x02

		w[0] ^= leU32(ks.rtk[r][0:]) ^ leU32(tk1[r][0:])
		w[1] ^= leU32(ks.rtk[r][4:]) ^ leU32(tk1[r][4:])
		wm[0] ^= leU32(ks.rtkm[r][0:])
		wm[1] ^= leU32(ks.rtkm[r][4:])

		shiftRows(&w)
		shiftRows(&wm)
		mixColumns(&w)
		mixColumns(&wm)
	}

	storeWords(state, &w)
	storeWords(mask, &wm)
}

// subCellsMasked evaluates the S-box layer on shares. Each iteration
// computes t = NOR(x>>3, x>>2) & 0x11..11 without ever combining the
// shares: NOR(a, b) = NOT(a) AND NOT(b), the NOT folds into the first
// share, and the AND is a two-share ISW gate refreshed with r.
func subCellsMasked(w, wm *[4]uint32, rng *maskrand.Source) {
	for i := range w {
		x0, x1 := w[i], wm[i]

		for it := 0; it < 4; it++ {
			a0, a1 := ^(x0 >> 3), x1>>3
			b0, b1 := ^(x0 >> 2), x1>>2

			r := rng.Uint32()
			t0 := r ^ a0&b0
			t1 := ((r ^ a0&b1) ^ a1&b0) ^ a1&b1

			x0 ^= t0 & 0x11111111
			x1 ^= t1 & 0x11111111

			if it < 3 {
				x0 = sboxShuffle(x0)
				x1 = sboxShuffle(x1)
			} else {
				x0 = sboxSwap(x0)
				x1 = sboxSwap(x1)
			}
		}

		w[i], wm[i] = x0, x1
	}
}
