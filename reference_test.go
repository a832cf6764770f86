package romulus

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	mrand "math/rand"
	"testing"

	"github.com/codahale/gubbins/assert"
	"github.com/lwcrypt/romulus/internal/skinny"
)

// The reference implementation below computes all three modes on a
// single unshared state with the unmasked block cipher. The production
// path computes them on two shares with fresh random masks; since the
// masking is value-preserving, both must produce identical output for
// every input shape.

func TestMaskedSealMatchesReference(t *testing.T) {
	t.Parallel()

	lengths := []int{0, 1, 15, 16, 17, 31, 32, 33, 47, 48, 64, 65}

	variants := []struct {
		name string
		new  func([]byte) (cipher.AEAD, error)
		ref  func(key, nonce, plaintext, ad []byte) []byte
	}{
		{"N", NewN, refSealN},
		{"M", NewM, refSealM},
		{"T", NewT, refSealT},
	}

	prng := mrand.New(mrand.NewSource(0x524f4d))

	for _, v := range variants {
		v := v

		t.Run(v.name, func(t *testing.T) {
			t.Parallel()

			key := make([]byte, KeySize)
			nonce := make([]byte, NonceSize)

			for _, ptLen := range lengths {
				for _, adLen := range lengths {
					prngFill(prng, key)
					prngFill(prng, nonce)

					plaintext := make([]byte, ptLen)
					ad := make([]byte, adLen)

					prngFill(prng, plaintext)
					prngFill(prng, ad)

					aead, err := v.new(key)
					if err != nil {
						t.Fatal(err)
					}

					actual := aead.Seal(nil, nonce, plaintext, ad)
					expected := v.ref(key, nonce, plaintext, ad)

					assert.Equal(t, fmt.Sprintf("pt=%d ad=%d", ptLen, adLen), expected, actual)
				}
			}
		})
	}
}

// Ciphertexts and tags must not depend on the mask randomness.
func TestSealIndependentOfMaskRandomness(t *testing.T) {
	t.Parallel()

	key := make([]byte, KeySize)
	nonce := make([]byte, NonceSize)
	plaintext := []byte("attack at dawn, unless it rains")
	ad := []byte("routine traffic")

	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}

	if _, err := rand.Read(nonce); err != nil {
		t.Fatal(err)
	}

	for _, newAEAD := range []func([]byte) (cipher.AEAD, error){NewN, NewM, NewT} {
		aead, err := newAEAD(key)
		if err != nil {
			t.Fatal(err)
		}

		first := aead.Seal(nil, nonce, plaintext, ad)
		second := aead.Seal(nil, nonce, plaintext, ad)

		assert.Equal(t, "repeated seal", first, second)
	}
}

func prngFill(prng *mrand.Rand, p []byte) {
	for i := range p {
		p[i] = byte(prng.Intn(256))
	}
}

// refSession is the unshared reference: one state block, the unmasked
// cipher, the same counter and domain schedule as the production path.
type refSession struct {
	state block
	tk1   tweakBlock
	key   block
	ks    skinny.Schedule
}

var zeroShare [blockSize]byte

func newRefSession(key []byte) *refSession {
	s := &refSession{}
	copy(s.key[:], key)
	s.tk1.reset()

	return s
}

func (s *refSession) transform() {
	var tk1 skinny.TK1Schedule

	tk1.Derive((*[blockSize]byte)(&s.tk1))
	skinny.Encrypt(&s.state, &tk1, &s.ks)
}

func (s *refSession) deriveBlockKey(tk2 []byte) {
	s.ks.Derive(tk2, s.key[:], zeroShare[:])
}

func (s *refSession) absorbBlock(in []byte) {
	for i := 0; i < blockSize; i++ {
		s.state[i] ^= in[i]
	}
}

func (s *refSession) absorbPartial(in []byte) {
	for i := range in {
		s.state[i] ^= in[i]
	}

	s.state[blockSize-1] ^= byte(len(in))
}

func (s *refSession) rho(out, in []byte) {
	for i := 0; i < blockSize; i++ {
		out[i] = in[i] ^ gByte(s.state[i])
		s.state[i] ^= in[i]
	}
}

func (s *refSession) rhoShort(out, in []byte) {
	for i := range in {
		out[i] = in[i] ^ gByte(s.state[i])
		s.state[i] ^= in[i]
	}

	s.state[blockSize-1] ^= byte(len(in))
}

func (s *refSession) tag(dst []byte) {
	gBlock(&s.state)
	copy(dst, s.state[:])
}

func (s *refSession) absorbAD(ad, nonce []byte) {
	if len(ad) == 0 {
		s.tk1.advance()
		s.tk1.setDomain(domainNADPartial)
		s.deriveBlockKey(nonce)
		s.transform()

		return
	}

	s.tk1.setDomain(domainNAD)

	for len(ad) > 2*blockSize {
		s.tk1.advance()
		s.absorbBlock(ad[:blockSize])
		s.deriveBlockKey(ad[blockSize : 2*blockSize])
		s.transform()
		s.tk1.advance()

		ad = ad[2*blockSize:]
	}

	s.tk1.advance()

	switch {
	case len(ad) == 2*blockSize:
		s.absorbBlock(ad[:blockSize])
		s.deriveBlockKey(ad[blockSize:])
		s.transform()
		s.tk1.advance()
		s.tk1.setDomain(domainNADFull)
	case len(ad) > blockSize:
		var pad block

		s.absorbBlock(ad[:blockSize])
		padBlock(&pad, ad[blockSize:])
		s.deriveBlockKey(pad[:])
		s.transform()
		s.tk1.advance()
		s.tk1.setDomain(domainNADPartial)
	case len(ad) == blockSize:
		s.absorbBlock(ad)
		s.tk1.setDomain(domainNADFull)
	default:
		s.absorbPartial(ad)
		s.tk1.setDomain(domainNADPartial)
	}

	s.deriveBlockKey(nonce)
	s.transform()
}

func (s *refSession) absorbJoint(ad, msg, nonce []byte, dBlocks, dSingle, dFinalBase byte) {
	finalDomain := dFinalBase ^ finalADDomain(len(ad), len(msg))

	s.tk1.setDomain(dBlocks)

	for len(ad) > 2*blockSize {
		s.tk1.advance()
		s.absorbBlock(ad[:blockSize])
		s.deriveBlockKey(ad[blockSize : 2*blockSize])
		s.transform()
		s.tk1.advance()

		ad = ad[2*blockSize:]
	}

	switch {
	case len(ad) == 2*blockSize:
		s.tk1.advance()
		s.absorbBlock(ad[:blockSize])
		s.deriveBlockKey(ad[blockSize:])
		s.transform()
		s.tk1.advance()
	case len(ad) > blockSize:
		var pad block

		s.tk1.advance()
		s.absorbBlock(ad[:blockSize])
		padBlock(&pad, ad[blockSize:])
		s.deriveBlockKey(pad[:])
		s.transform()
		s.tk1.advance()
	default:
		s.tk1.setDomain(dSingle)
		s.tk1.advance()

		if len(ad) == blockSize {
			s.absorbBlock(ad)
		} else {
			s.absorbPartial(ad)
		}

		if len(msg) >= blockSize {
			s.deriveBlockKey(msg[:blockSize])
			s.transform()

			if len(msg) > blockSize {
				s.tk1.advance()
			}

			msg = msg[blockSize:]
		} else {
			var pad block

			padBlock(&pad, msg)
			s.deriveBlockKey(pad[:])
			s.transform()

			msg = nil
		}
	}

	s.tk1.setDomain(dSingle)

	for len(msg) > 2*blockSize {
		s.tk1.advance()
		s.absorbBlock(msg[:blockSize])
		s.deriveBlockKey(msg[blockSize : 2*blockSize])
		s.transform()
		s.tk1.advance()

		msg = msg[2*blockSize:]
	}

	switch {
	case len(msg) == 2*blockSize:
		s.tk1.advance()
		s.absorbBlock(msg[:blockSize])
		s.deriveBlockKey(msg[blockSize:])
		s.transform()
	case len(msg) > blockSize:
		var pad block

		s.tk1.advance()
		s.absorbBlock(msg[:blockSize])
		padBlock(&pad, msg[blockSize:])
		s.deriveBlockKey(pad[:])
		s.transform()
	case len(msg) == blockSize:
		s.absorbBlock(msg)
	case len(msg) > 0:
		s.absorbPartial(msg)
	}

	s.tk1.setDomain(finalDomain)
	s.tk1.advance()
	s.deriveBlockKey(nonce)
	s.transform()
}

func (s *refSession) duplexMsg(out, in []byte, dBlocks, dFull, dPartial byte) {
	s.tk1.reset()

	if len(in) == 0 {
		s.tk1.advance()
		s.tk1.setDomain(dPartial)
		s.transform()

		return
	}

	s.tk1.setDomain(dBlocks)

	for len(in) > blockSize {
		s.rho(out, in)
		s.tk1.advance()
		s.transform()

		in, out = in[blockSize:], out[blockSize:]
	}

	s.tk1.advance()

	if len(in) < blockSize {
		s.rhoShort(out, in)
		s.tk1.setDomain(dPartial)
	} else {
		s.rho(out, in)
		s.tk1.setDomain(dFull)
	}

	s.transform()
}

func (s *refSession) duplexMsgSIV(out, in []byte) {
	s.tk1.reset()

	if len(in) == 0 {
		return
	}

	s.tk1.setDomain(domainMStream)

	for len(in) > blockSize {
		s.transform()
		s.rho(out, in)
		s.tk1.advance()

		in, out = in[blockSize:], out[blockSize:]
	}

	s.transform()
	s.rhoShort(out, in)
}

func refSealN(key, nonce, plaintext, ad []byte) []byte {
	s := newRefSession(key)
	out := make([]byte, len(plaintext)+TagSize)

	s.absorbAD(ad, nonce)
	s.duplexMsg(out[:len(plaintext)], plaintext, domainNMsg, domainNMsgFull, domainNMsgPart)
	s.tag(out[len(plaintext):])

	return out
}

func refSealM(key, nonce, plaintext, ad []byte) []byte {
	s := newRefSession(key)
	out := make([]byte, len(plaintext)+TagSize)

	s.absorbJoint(ad, plaintext, nonce, domainMAD, domainMADSingle, domainMFinal)
	s.tag(out[len(plaintext):])
	s.duplexMsgSIV(out[:len(plaintext)], plaintext)

	return out
}

func refSealT(key, nonce, plaintext, ad []byte) []byte {
	s := newRefSession(key)
	out := make([]byte, len(plaintext)+TagSize)

	// Session-key derivation call over a cleared counter.
	s.state = block{}
	s.tk1.clear()
	s.tk1.setDomain(domainTDerive)
	s.ks.Derive(nonce, s.key[:], zeroShare[:])
	s.transform()

	d := s.state

	s.ks.Derive(nonce, d[:], zeroShare[:])
	s.duplexMsg(out[:len(plaintext)], plaintext, domainTMsg, domainTMsgFull, domainTMsgPart)

	s.state = block{}
	s.tk1.reset()
	s.absorbJoint(ad, out[:len(plaintext)], nonce, domainTTag, domainTTagOdd, domainTFinal)
	s.tag(out[len(plaintext):])

	return out
}
