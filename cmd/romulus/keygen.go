package main

import (
	"crypto/rand"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/lwcrypt/romulus"
	"github.com/mr-tron/base58"
)

type keygenCmd struct {
	Output string `arg:"" optional:"" default:"-" type:"path" help:"The output path for the key."`
}

func (cmd *keygenCmd) Run(_ *kong.Context) error {
	key := make([]byte, romulus.KeySize)
	if _, err := rand.Read(key); err != nil {
		return err
	}

	w, err := openOutput(cmd.Output, false)
	if err != nil {
		return err
	}

	defer func() { _ = w.Close() }()

	_, err = fmt.Fprintln(w, base58.Encode(key))

	return err
}
