package main

import (
	"github.com/lwcrypt/romulus"
	"golang.org/x/crypto/argon2"
)

const saltSize = 16

// passphraseKey derives a cipher key from a passphrase and salt with
// Argon2id, using the parameters recommended in
// https://tools.ietf.org/html/draft-irtf-cfrg-argon2-12#section-7.4
// scaled down to interactive use.
func passphraseKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 256*1024, 4, romulus.KeySize)
}
