package romulus

// The three mode policies below differ only in the order in which
// absorption, duplexing, key derivation, and the tag step run; every
// building block is shared. out is always len(plaintext)+TagSize for
// seal and len(ciphertext)-TagSize for open.

// sealN implements nonce-based encryption: absorb AD (closed by a
// nonce-keyed call), duplex the message, squeeze the tag.
func (s *session) sealN(out, nonce, plaintext, ad []byte) {
	s.absorbAD(ad, nonce)
	s.duplexMsg(out[:len(plaintext)], plaintext, false, domainNMsg, domainNMsgFull, domainNMsgPart)
	s.generateTag(out[len(plaintext):])
}

// openN recovers the plaintext and only then verifies the tag; the
// caller discards the buffer if verification fails.
func (s *session) openN(out, nonce, ciphertext, ad []byte) bool {
	body := ciphertext[:len(ciphertext)-TagSize]

	s.absorbAD(ad, nonce)
	s.duplexMsg(out, body, true, domainNMsg, domainNMsgFull, domainNMsgPart)

	return s.verifyTag(ciphertext[len(body):])
}

// sealM implements misuse-resistant encryption: AD and message are
// absorbed in a single pass, the tag is squeezed first, and the
// message is then encrypted as a keystream seeded by the tag-valued
// state shares generateTag leaves behind.
func (s *session) sealM(out, nonce, plaintext, ad []byte) {
	s.absorbJoint(ad, plaintext, nonce, domainMAD, domainMADSingle, domainMFinal)
	s.generateTag(out[len(plaintext):])
	s.duplexMsgSIV(out[:len(plaintext)], plaintext, false, nil)
}

// openM runs the mode backwards: the received tag seeds the keystream
// that recovers the plaintext, then the whole absorption pass is rerun
// over AD and recovered plaintext to recompute and check the tag.
func (s *session) openM(out, nonce, ciphertext, ad []byte) bool {
	body := ciphertext[:len(ciphertext)-TagSize]
	tag := ciphertext[len(body):]

	s.deriveBlockKey(nonce)
	s.duplexMsgSIV(out, body, true, tag)

	s.init()
	s.absorbJoint(ad, out, nonce, domainMAD, domainMADSingle, domainMFinal)

	return s.verifyTag(tag)
}

// sealT implements leakage-resilient encryption. A single masked
// derivation call, keyed by the long-term key and tweaked by the
// masked nonce over a zeroed counter, produces session-bound key
// shares. The message stream is keyed by those shares and never by
// the long-term key; the long-term key is touched once more for the
// tag pass over AD and ciphertext.
func (s *session) sealT(out, nonce, plaintext, ad []byte) {
	d, dm := s.deriveSessionKey(nonce)

	s.ks.Derive(nonce, d[:], dm[:])
	s.duplexMsg(out[:len(plaintext)], plaintext, false, domainTMsg, domainTMsgFull, domainTMsgPart)

	wipeBytes(d[:])
	wipeBytes(dm[:])

	s.init()
	s.absorbJoint(ad, out[:len(plaintext)], nonce, domainTTag, domainTTagOdd, domainTFinal)
	s.generateTag(out[len(plaintext):])
}

// openT verifies the tag over AD and ciphertext before a single byte
// of plaintext exists, then re-derives the session key and reverses
// the stream.
func (s *session) openT(out, nonce, ciphertext, ad []byte) bool {
	body := ciphertext[:len(ciphertext)-TagSize]

	s.absorbJoint(ad, body, nonce, domainTTag, domainTTagOdd, domainTFinal)
	if !s.verifyTag(ciphertext[len(body):]) {
		return false
	}

	s.state = block{}
	s.statem = block{}

	d, dm := s.deriveSessionKey(nonce)

	s.ks.Derive(nonce, d[:], dm[:])
	s.duplexMsg(out, body, true, domainTMsg, domainTMsgFull, domainTMsgPart)

	wipeBytes(d[:])
	wipeBytes(dm[:])

	return true
}

// deriveSessionKey runs the masked re-keying call: the nonce is split
// into fresh shares, both tweakey words ride masked (TK2 the nonce,
// TK3 the key), and the cipher output shares are the session key
// shares. The nonce value is public, so only the key-derived output
// stays split.
func (s *session) deriveSessionKey(nonce []byte) (block, block) {
	var n, nm block

	s.rng.Fill(nm[:])
	for i := range n {
		n[i] = nonce[i] ^ nm[i]
	}

	s.state = block{}
	s.statem = block{}
	s.tk1.clear()
	s.tk1.setDomain(domainTDerive)

	s.ks.DeriveMasked(n[:], nm[:], s.key[:], s.keym[:])
	s.transform()

	wipeBytes(n[:])
	wipeBytes(nm[:])

	return s.state, s.statem
}
