package romulus

import (
	"io"

	"github.com/lwcrypt/romulus/internal/maskrand"
	"github.com/lwcrypt/romulus/internal/skinny"
)

const blockSize = skinny.BlockSize

type block = [blockSize]byte

// session owns the state of a single encryption or decryption call:
// the two duplex state shares, the TK1 counter, the current round
// tweakey material, and the masked key. Nothing in it survives the
// call; wipe runs on every exit path.
type session struct {
	state  block // duplex state, first share
	statem block // duplex state, second share
	tk1    tweakBlock
	ks     skinny.Schedule
	key    block // long-term key, first share
	keym   block // long-term key, second share
	rng    *maskrand.Source
}

// newSession splits the key into two fresh shares and initializes the
// duplex state. The key value itself is never stored.
func newSession(rand io.Reader, key []byte) (*session, error) {
	rng, err := maskrand.NewSource(rand)
	if err != nil {
		return nil, err
	}

	s := &session{rng: rng}

	// Fill the mask share first, then derive the value share in a
	// separate pass, so the unmasked key never sits next to a share.
	s.rng.Fill(s.keym[:])
	for i := range s.key {
		s.key[i] = key[i] ^ s.keym[i]
	}

	s.init()

	return s, nil
}

// init resets the duplex state and the TK1 counter to their mandatory
// start values. The misuse-resistant mode re-initializes mid-call.
func (s *session) init() {
	s.state = block{}
	s.statem = block{}
	s.tk1.reset()
}

// deriveBlockKey computes fresh round tweakey material for the given
// public tweak word (an AD block, a message block, or the nonce), with
// the masked key as TK3.
func (s *session) deriveBlockKey(tk2 []byte) {
	s.ks.Derive(tk2, s.key[:], s.keym[:])
}

// transform runs the masked block cipher over the duplex state under
// the current TK1 and round tweakey material.
func (s *session) transform() {
	var tk1 skinny.TK1Schedule

	tk1.Derive((*[blockSize]byte)(&s.tk1))
	skinny.EncryptMasked(&s.state, &s.statem, &tk1, &s.ks, s.rng)
}

// absorbBlock XORs a full public input block into the first state
// share. Public data touches one share only.
func (s *session) absorbBlock(in []byte) {
	for i := 0; i < blockSize; i++ {
		s.state[i] ^= in[i]
	}
}

// absorbPartial XORs a short input block into the first state share
// and folds the consumed byte count into the last state byte.
func (s *session) absorbPartial(in []byte) {
	for i := range in {
		s.state[i] ^= in[i]
	}

	s.state[blockSize-1] ^= byte(len(in))
}

// wipe clears everything key- or state-derived.
func (s *session) wipe() {
	s.state = block{}
	s.statem = block{}
	s.key = block{}
	s.keym = block{}
	s.tk1 = tweakBlock{}
	s.ks.Wipe()
	s.rng.Wipe()
}

// padBlock zero-pads a short input to a full block and writes the
// consumed byte count into the last byte. Lengths are always below the
// block size, so a single byte frames them injectively.
func padBlock(dst *block, in []byte) {
	*dst = block{}
	copy(dst[:], in)
	dst[blockSize-1] = byte(len(in))
}

func wipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
