package romulus

// generateTag squeezes the tag out of the duplex state: G is applied
// to each share independently and the shares are combined only into
// the output buffer. The shares are transformed in place, which the
// misuse-resistant mode relies on: after this call the combined state
// equals the tag, ready to key the keystream pass.
func (s *session) generateTag(dst []byte) {
	gBlock(&s.state)
	gBlock(&s.statem)

	for i := 0; i < TagSize; i++ {
		dst[i] = s.state[i] ^ s.statem[i]
	}
}

// verifyTag recomputes the tag from the duplex state and compares it
// against the received tag, unmasking on the fly into an accumulator.
// Every byte is inspected regardless of where the first mismatch
// occurs.
func (s *session) verifyTag(tag []byte) bool {
	gBlock(&s.state)
	gBlock(&s.statem)

	var diff byte
	for i := 0; i < TagSize; i++ {
		diff |= s.state[i] ^ s.statem[i] ^ tag[i]
	}

	return diff == 0
}
