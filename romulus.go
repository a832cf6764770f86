// Package romulus implements the Romulus family of authenticated
// encryption modes over the Skinny-128-384+ tweakable block cipher,
// hardened against first-order power and EM side-channel analysis with
// two-share Boolean masking.
//
// Three sibling modes are provided, all exposed as a crypto/cipher.AEAD:
//
//   - Romulus-N, the nonce-based duplex mode.
//   - Romulus-M, the nonce-misuse-resistant (synthetic tag) mode.
//   - Romulus-T, the leakage-resilient re-keying mode.
//
// Every intermediate value that depends on the key or the plaintext is
// kept split across two shares for the whole call; the shares are
// recombined only into the tag and the output bytes. The masking is
// value-preserving: ciphertexts and tags do not depend on the mask
// randomness, so outputs are interoperable with unprotected
// implementations of the same modes.
//
// This protects against passive side-channel observation of a single
// execution; it is not a substitute for keeping keys out of hostile
// hands.
package romulus

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const (
	// KeySize is the size of a Romulus key in bytes.
	KeySize = 16

	// NonceSize is the size of a Romulus nonce in bytes.
	NonceSize = 16

	// TagSize is the size of the authentication tag appended to the
	// ciphertext, in bytes.
	TagSize = 16
)

// ErrInvalidCiphertext is returned when a ciphertext cannot be
// authenticated, either because it is too short or because it or the
// associated data was tampered with. No further detail is exposed;
// which byte failed is itself a side channel.
var ErrInvalidCiphertext = errors.New("romulus: invalid ciphertext")

// ErrInvalidKeySize is returned when a key is not exactly KeySize
// bytes.
var ErrInvalidKeySize = errors.New("romulus: invalid key size")

type variant int

const (
	variantN variant = iota
	variantM
	variantT
)

// NewN returns a cipher.AEAD implementing the nonce-based Romulus-N
// mode with the given key. Nonces must never repeat under one key.
func NewN(key []byte) (cipher.AEAD, error) {
	return newAEAD(key, variantN)
}

// NewM returns a cipher.AEAD implementing the misuse-resistant
// Romulus-M mode with the given key. A repeated nonce leaks only
// message equality, never plaintext.
func NewM(key []byte) (cipher.AEAD, error) {
	return newAEAD(key, variantM)
}

// NewT returns a cipher.AEAD implementing the leakage-resilient
// Romulus-T mode with the given key. The long-term key enters exactly
// two cipher calls per invocation regardless of message length.
func NewT(key []byte) (cipher.AEAD, error) {
	return newAEAD(key, variantT)
}

type aead struct {
	key     [KeySize]byte
	variant variant
	rand    io.Reader
}

func newAEAD(key []byte, v variant) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	a := &aead{variant: v, rand: defaultRand}
	copy(a.key[:], key)

	return a, nil
}

// defaultRand is the source of mask-share seed material. It is a
// variable so the deterministic-output tests can substitute a fixed
// source; ciphertexts and tags never depend on it.
var defaultRand io.Reader = rand.Reader

func (a *aead) NonceSize() int {
	return NonceSize
}

func (a *aead) Overhead() int {
	return TagSize
}

// Seal encrypts and authenticates plaintext along with additionalData
// and appends nonce-bound ciphertext and tag to dst.
func (a *aead) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != NonceSize {
		panic("romulus: invalid nonce length")
	}

	s, err := newSession(a.rand, a.key[:])
	if err != nil {
		// Seal has no error return; a dead randomness source is not
		// recoverable at this layer.
		panic(err)
	}
	defer s.wipe()

	out := make([]byte, len(plaintext)+TagSize)

	switch a.variant {
	case variantM:
		s.sealM(out, nonce, plaintext, additionalData)
	case variantT:
		s.sealT(out, nonce, plaintext, additionalData)
	default:
		s.sealN(out, nonce, plaintext, additionalData)
	}

	return append(dst, out...)
}

// Open authenticates ciphertext and additionalData and, on success,
// appends the decrypted plaintext to dst. On failure it returns
// ErrInvalidCiphertext and releases nothing: any plaintext recovered
// along the way is zeroed before returning.
func (a *aead) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		panic("romulus: invalid nonce length")
	}

	if len(ciphertext) < TagSize {
		return nil, ErrInvalidCiphertext
	}

	s, err := newSession(a.rand, a.key[:])
	if err != nil {
		// The only failures callers can see are too-short and
		// authentication failure; a dead randomness source is neither
		// and is not recoverable at this layer.
		panic(err)
	}
	defer s.wipe()

	out := make([]byte, len(ciphertext)-TagSize)

	var ok bool

	switch a.variant {
	case variantM:
		ok = s.openM(out, nonce, ciphertext, additionalData)
	case variantT:
		ok = s.openT(out, nonce, ciphertext, additionalData)
	default:
		ok = s.openN(out, nonce, ciphertext, additionalData)
	}

	if !ok {
		wipeBytes(out)
		return nil, ErrInvalidCiphertext
	}

	return append(dst, out...), nil
}

var _ cipher.AEAD = &aead{}
