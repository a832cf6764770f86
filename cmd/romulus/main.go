package main

import (
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lwcrypt/romulus"
	"github.com/mr-tron/base58"
	"golang.org/x/term"
)

type cli struct {
	Keygen  keygenCmd  `cmd:"" help:"Generate a new random key."`
	Encrypt encryptCmd `cmd:"" help:"Encrypt and authenticate a file."`
	Decrypt decryptCmd `cmd:"" help:"Decrypt and verify a file."`
}

func main() {
	var cli cli

	ctx := kong.Parse(&cli)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// newAEAD constructs the selected mode over the given key.
func newAEAD(mode string, key []byte) (cipher.AEAD, error) {
	switch mode {
	case "m":
		return romulus.NewM(key)
	case "t":
		return romulus.NewT(key)
	default:
		return romulus.NewN(key)
	}
}

func decodeKey(pathOrKey string) ([]byte, error) {
	// Try decoding the key directly.
	if key, err := base58.Decode(pathOrKey); err == nil && len(key) == romulus.KeySize {
		return key, nil
	}

	// Otherwise, try reading the contents of it as a file.
	b, err := os.ReadFile(pathOrKey)
	if err != nil {
		return nil, err
	}

	key, err := base58.Decode(string(trimNewline(b)))
	if err != nil {
		return nil, err
	}

	if len(key) != romulus.KeySize {
		return nil, romulus.ErrInvalidKeySize
	}

	return key, nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}

	return b
}

func askPassphrase(prompt string) ([]byte, error) {
	defer func() { _, _ = fmt.Fprintln(os.Stderr) }()

	_, _ = fmt.Fprint(os.Stderr, prompt)

	return term.ReadPassword(int(os.Stdin.Fd()))
}

func openOutput(path string, armor bool) (io.WriteCloser, error) {
	dst := os.Stdout

	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}

		dst = f
	}

	if armor {
		return &base64Encoder{dst: dst, enc: base64.NewEncoder(base64.StdEncoding, dst)}, nil
	}

	return dst, nil
}

func openInput(path string, armor bool) (io.ReadCloser, error) {
	src := os.Stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		src = f
	}

	if armor {
		return &base64Decoder{src: src, dec: base64.NewDecoder(base64.StdEncoding, src)}, nil
	}

	return src, nil
}

type base64Encoder struct {
	dst io.WriteCloser
	enc io.WriteCloser
}

func (b *base64Encoder) Write(p []byte) (n int, err error) {
	return b.enc.Write(p)
}

func (b *base64Encoder) Close() error {
	if err := b.enc.Close(); err != nil {
		return err
	}

	return b.dst.Close()
}

var _ io.WriteCloser = &base64Encoder{}

type base64Decoder struct {
	src io.ReadCloser
	dec io.Reader
}

func (b *base64Decoder) Read(p []byte) (n int, err error) {
	return b.dec.Read(p)
}

func (b *base64Decoder) Close() error {
	return b.src.Close()
}

var _ io.ReadCloser = &base64Decoder{}
