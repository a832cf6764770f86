package main

import (
	"crypto/rand"
	"io"

	"github.com/alecthomas/kong"
	"github.com/lwcrypt/romulus"
)

type encryptCmd struct {
	Plaintext  string `arg:"" type:"path" help:"The path to the plaintext file, or - for stdin."`
	Ciphertext string `arg:"" type:"path" help:"The path to the ciphertext file, or - for stdout."`

	Mode  string `enum:"n,m,t" default:"n" help:"The mode of operation: n (nonce-based), m (misuse-resistant), or t (leakage-resilient)."`
	Key   string `help:"The base58-encoded key, or a path to one. Prompts for a passphrase if omitted."`
	AD    string `help:"Additional data to authenticate but not encrypt."`
	Armor bool   `help:"Encode the ciphertext as base64."`
}

func (cmd *encryptCmd) Run(_ *kong.Context) error {
	// Resolve the key, deriving it from a passphrase and a fresh salt
	// if none was given. The salt is prepended to the output so the
	// decryptor can re-derive the same key.
	var salt []byte

	key, err := resolveKey(cmd.Key, "Enter passphrase: ")
	if err != nil {
		return err
	}

	if cmd.Key == "" {
		pwd := key

		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return err
		}

		key = passphraseKey(pwd, salt)
	}

	aead, err := newAEAD(cmd.Mode, key)
	if err != nil {
		return err
	}

	r, err := openInput(cmd.Plaintext, false)
	if err != nil {
		return err
	}

	defer func() { _ = r.Close() }()

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	nonce := make([]byte, romulus.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	w, err := openOutput(cmd.Ciphertext, cmd.Armor)
	if err != nil {
		return err
	}

	defer func() { _ = w.Close() }()

	// salt (if passphrase-keyed) || nonce || ciphertext || tag
	out := append(salt, nonce...)
	out = aead.Seal(out, nonce, plaintext, []byte(cmd.AD))

	_, err = w.Write(out)

	return err
}

// resolveKey returns the decoded key, or the raw passphrase when no
// key was given. The caller decides what to do with a passphrase.
func resolveKey(key, prompt string) ([]byte, error) {
	if key != "" {
		return decodeKey(key)
	}

	return askPassphrase(prompt)
}
