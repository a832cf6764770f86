// Package maskrand generates the fresh randomness consumed by the
// first-order masking countermeasure.
//
// A single encryption or decryption needs a few kilobytes of mask
// randomness (one word per masked AND gate), far more than it is
// reasonable to pull from the system entropy pool. Each call therefore
// seeds a ChaCha20 stream from the caller's reader once and expands it
// locally.
package maskrand

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/chacha20"
)

// Source is a buffered stream of mask randomness. It is valid for a
// single encryption or decryption call and must not be shared.
type Source struct {
	stream *chacha20.Cipher
	buf    [512]byte
	off    int
}

// NewSource reads a seed from r and returns a source ready for use.
func NewSource(r io.Reader) (*Source, error) {
	var seed [chacha20.KeySize]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, err
	}

	var nonce [chacha20.NonceSize]byte

	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}

	// The seed is no longer needed once the stream is keyed.
	for i := range seed {
		seed[i] = 0
	}

	s := &Source{stream: stream}
	s.off = len(s.buf)

	return s, nil
}

// Uint32 returns the next 32 bits of mask randomness.
func (s *Source) Uint32() uint32 {
	if s.off+4 > len(s.buf) {
		s.refill()
	}

	v := binary.LittleEndian.Uint32(s.buf[s.off:])
	s.off += 4

	return v
}

// Fill overwrites p with mask randomness.
func (s *Source) Fill(p []byte) {
	for len(p) > 0 {
		if s.off == len(s.buf) {
			s.refill()
		}

		n := copy(p, s.buf[s.off:])
		s.off += n
		p = p[n:]
	}
}

// Wipe clears the buffered randomness.
func (s *Source) Wipe() {
	for i := range s.buf {
		s.buf[i] = 0
	}

	s.off = len(s.buf)
}

func (s *Source) refill() {
	// XORKeyStream XORs into the buffer, so clear out the previously
	// buffered words to get the raw keystream.
	for i := range s.buf {
		s.buf[i] = 0
	}

	s.stream.XORKeyStream(s.buf[:], s.buf[:])
	s.off = 0
}
