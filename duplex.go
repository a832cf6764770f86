package romulus

import "encoding/binary"

// gBlock applies the state compression function G to one share in
// place, word-wise: every byte b becomes (b >> 1) ^ ((b ^ b << 7) & 0x80),
// i.e. a right rotation of the byte with the two top bits mixed.
func gBlock(b *block) {
	for i := 0; i < blockSize; i += 4 {
		x := binary.LittleEndian.Uint32(b[i:])
		binary.LittleEndian.PutUint32(b[i:], x>>1&0x7f7f7f7f^(x^x<<7)&0x80808080)
	}
}

// gByte is the byte-wise G for irregular trailing blocks.
func gByte(b byte) byte {
	return b>>1 ^ b&0x80 ^ b<<7
}

// rho emits one ciphertext block and absorbs the plaintext block into
// the first state share. The G contributions of both shares are
// combined before a single write to out, and the input block is read
// up front so in and out may alias.
func (s *session) rho(out, in []byte) {
	var t, g, gm block

	copy(t[:], in)

	g = s.state
	gBlock(&g)
	gm = s.statem
	gBlock(&gm)

	for i := 0; i < blockSize; i++ {
		out[i] = t[i] ^ g[i] ^ gm[i]
	}

	for i := 0; i < blockSize; i++ {
		s.state[i] ^= t[i]
	}
}

// rhoInv recovers one plaintext block from a ciphertext block and
// absorbs the recovered plaintext into the first state share.
func (s *session) rhoInv(out, in []byte) {
	var t, g, gm block

	copy(t[:], in)

	g = s.state
	gBlock(&g)
	gm = s.statem
	gBlock(&gm)

	for i := 0; i < blockSize; i++ {
		out[i] = t[i] ^ g[i] ^ gm[i]
		s.state[i] ^= out[i]
	}
}

// rhoShort processes a trailing block of up to blockSize bytes
// byte-wise and folds the consumed byte count into the last state
// byte. The plaintext is what gets absorbed in both directions: the
// input when encrypting, the output when decrypting. Inputs are read
// before outputs are written in case the buffers alias.
func (s *session) rhoShort(out, in []byte, decrypt bool) {
	for i := range in {
		t := in[i]
		o := t ^ gByte(s.state[i]) ^ gByte(s.statem[i])
		out[i] = o

		if decrypt {
			s.state[i] ^= o
		} else {
			s.state[i] ^= t
		}
	}

	s.state[blockSize-1] ^= byte(len(in))
}

// duplexMsg runs the nonce-based duplex over the message stream: rho,
// then counter advance, then one cipher call per block, with the final
// (possibly short, possibly empty) block classified into its own
// domain. A zero-length message still issues exactly one cipher call
// to finalize the domain. The round tweakey material set by the
// caller stays in effect for the whole stream; only TK1 changes.
func (s *session) duplexMsg(out, in []byte, decrypt bool, dBlocks, dFull, dPartial byte) {
	s.tk1.reset()

	if len(in) == 0 {
		s.tk1.advance()
		s.tk1.setDomain(dPartial)
		s.transform()

		return
	}

	s.tk1.setDomain(dBlocks)

	for len(in) > blockSize {
		if decrypt {
			s.rhoInv(out, in)
		} else {
			s.rho(out, in)
		}

		s.tk1.advance()
		s.transform()

		in, out = in[blockSize:], out[blockSize:]
	}

	s.tk1.advance()

	if len(in) < blockSize {
		s.rhoShort(out, in, decrypt)
		s.tk1.setDomain(dPartial)
	} else {
		if decrypt {
			s.rhoInv(out, in)
		} else {
			s.rho(out, in)
		}

		s.tk1.setDomain(dFull)
	}

	s.transform()
}

// duplexMsgSIV runs the misuse-resistant keystream: the cipher call
// precedes rho, the state is seeded from the already-computed tag (for
// encryption the caller left the tag-valued shares in place; for
// decryption the received tag is loaded against the mask share), and
// the trailing block always folds its length in. A zero-length message
// issues no cipher call at all.
func (s *session) duplexMsgSIV(out, in []byte, decrypt bool, tag []byte) {
	if decrypt {
		for i := range s.state {
			s.state[i] = tag[i] ^ s.statem[i]
		}
	} else {
		s.tk1.reset()
	}

	if len(in) == 0 {
		return
	}

	s.tk1.setDomain(domainMStream)

	for len(in) > blockSize {
		s.transform()

		if decrypt {
			s.rhoInv(out, in)
		} else {
			s.rho(out, in)
		}

		s.tk1.advance()
		in, out = in[blockSize:], out[blockSize:]
	}

	s.transform()
	s.rhoShort(out, in, decrypt)
}
