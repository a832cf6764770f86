package romulus

import "encoding/binary"

// Domain constants written into byte 7 of TK1. The low nibbles encode
// the absorption phase and the length parity of the final block; the
// high bits separate the three modes.
const (
	// Romulus-N.
	domainNAD        = 0x08 // associated data double blocks
	domainNADFull    = 0x18 // final AD block complete
	domainNADPartial = 0x1a // final AD block padded (or AD empty)
	domainNMsg       = 0x04 // message blocks
	domainNMsgFull   = 0x14 // final message block complete
	domainNMsgPart   = 0x15 // final message block padded (or message empty)

	// Romulus-M.
	domainMAD       = 0x28 // AD double blocks
	domainMADSingle = 0x2c // single-block AD boundary and message absorption
	domainMFinal    = 0x30 // base of the parity-combined final domain
	domainMStream   = 0x24 // tag-keyed keystream blocks

	// Romulus-T. The protected reference for this mode ships only its
	// driver, so the constants follow the N/M pattern in a disjoint
	// range.
	domainTDerive  = 0x40 // session-key derivation call
	domainTMsg     = 0x44 // message blocks
	domainTMsgFull = 0x54 // final message block complete
	domainTMsgPart = 0x55 // final message block padded (or message empty)
	domainTTag     = 0x68 // AD/ciphertext double blocks in the tag pass
	domainTTagOdd  = 0x6c // single-block boundary in the tag pass
	domainTFinal   = 0x70 // base of the parity-combined final domain
)

// tweakBlock is the TK1 tweak: a 56-bit LFSR block counter in bytes
// 0..6 and the domain byte at offset 7. Bytes 8..15 are reserved.
type tweakBlock [16]byte

// reset initializes the counter to its mandatory start value. This
// happens at session start and again before message processing; it is
// part of the mode, not an optimization.
func (t *tweakBlock) reset() {
	*t = tweakBlock{}
	t[0] = 0x01
}

// clear zeroes the whole block, including the counter. Only the
// re-keying mode's derivation call runs with a zero counter.
func (t *tweakBlock) clear() {
	*t = tweakBlock{}
}

// setDomain overwrites the domain byte.
func (t *tweakBlock) setDomain(d byte) {
	t[7] = d
}

// advance doubles the 56-bit counter over GF(2^56), folding in the
// feedback constant 0x95 when the top bit was set. Word-wise to match
// the reference exactly; the domain byte is preserved.
func (t *tweakBlock) advance() {
	lo := binary.LittleEndian.Uint32(t[0:4])
	hi := binary.LittleEndian.Uint32(t[4:8])

	next := hi<<1&0x00ffffff | lo>>31 | hi&0xff000000

	lo <<= 1
	if hi>>23&1 == 1 {
		lo ^= 0x95
	}

	binary.LittleEndian.PutUint32(t[0:4], lo)
	binary.LittleEndian.PutUint32(t[4:8], next)
}

// finalADDomain computes the parity half of the final domain for the
// single-pass AD+message absorption: one lookup for the AD length, one
// for the message length, XORed together. Each input is classified by
// its remainder modulo a double block.
func finalADDomain(adLen, msgLen int) byte {
	var domain byte

	if adLen == 0 {
		domain ^= 0x02 // only the padded placeholder block
	} else {
		switch leftover := adLen % (2 * blockSize); {
		case leftover == 0:
			domain ^= 0x08 // complete double block at the end
		case leftover < blockSize:
			domain ^= 0x02 // padded single block at the end
		case leftover > blockSize:
			domain ^= 0x0a // padded double block at the end
		}
	}

	if msgLen == 0 {
		domain ^= 0x01
	} else {
		switch leftover := msgLen % (2 * blockSize); {
		case leftover == 0:
			domain ^= 0x04
		case leftover < blockSize:
			domain ^= 0x01
		case leftover > blockSize:
			domain ^= 0x05
		}
	}

	return domain
}
