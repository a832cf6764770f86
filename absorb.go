package romulus

// absorbAD runs the nonce-based associated-data absorption: double
// blocks are consumed two at a time (the first half XORed into the
// state, the second half used as the block tweak), the irregular tail
// is classified into complete/padded single/double block cases, and a
// final cipher call keyed by the nonce closes the phase. Empty AD
// still issues that placeholder call so the domain sequence stays
// aligned across lengths.
func (s *session) absorbAD(ad, nonce []byte) {
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

// absorbJoint runs the single-pass absorption of associated data and
// message used by the misuse-resistant tag computation, parametrized
// by domain constants so the re-keying mode can absorb AD and
// ciphertext through the same path. The AD/message boundary is subject
// to the same five-way classification as the tails, and the final
// cipher call is keyed by the nonce under the parity-combined domain.
func (s *session) absorbJoint(ad, msg, nonce []byte, dBlocks, dSingle, dFinalBase byte) {
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
		// The AD ends inside a single block, so the first message
		// block (padded if short) completes the double block.
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
