package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lwcrypt/romulus"
)

type decryptCmd struct {
	Ciphertext string `arg:"" type:"path" help:"The path to the ciphertext file, or - for stdin."`
	Plaintext  string `arg:"" type:"path" help:"The path to the plaintext file, or - for stdout."`

	Mode  string `enum:"n,m,t" default:"n" help:"The mode of operation: n (nonce-based), m (misuse-resistant), or t (leakage-resilient)."`
	Key   string `help:"The base58-encoded key, or a path to one. Prompts for a passphrase if omitted."`
	AD    string `help:"Additional data to authenticate but not encrypt."`
	Armor bool   `help:"Decode the ciphertext from base64."`
}

func (cmd *decryptCmd) Run(_ *kong.Context) error {
	r, err := openInput(cmd.Ciphertext, cmd.Armor)
	if err != nil {
		return err
	}

	defer func() { _ = r.Close() }()

	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	key, err := resolveKey(cmd.Key, "Enter passphrase: ")
	if err != nil {
		return err
	}

	// Passphrase-keyed files carry their salt up front.
	if cmd.Key == "" {
		if len(body) < saltSize {
			return romulus.ErrInvalidCiphertext
		}

		key = passphraseKey(key, body[:saltSize])
		body = body[saltSize:]
	}

	if len(body) < romulus.NonceSize+romulus.TagSize {
		return romulus.ErrInvalidCiphertext
	}

	aead, err := newAEAD(cmd.Mode, key)
	if err != nil {
		return err
	}

	plaintext, err := aead.Open(nil, body[:romulus.NonceSize], body[romulus.NonceSize:], []byte(cmd.AD))
	if err != nil {
		return err
	}

	w, err := openOutput(cmd.Plaintext, false)
	if err != nil {
		return err
	}

	if _, err := w.Write(plaintext); err != nil {
		_ = w.Close()

		if cmd.Plaintext != "-" {
			_ = os.Remove(cmd.Plaintext)
		}

		return err
	}

	return w.Close()
}
