// Package id generates record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each record kind.
const (
	PrefixUser   = "usr"
	PrefixItem   = "itm"
	PrefixBorrow = "brw"
)

// Generate creates a prefixed unique ID using NanoID,
// e.g. "itm-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Short returns a short random token drawn from a lowercase alphanumeric
// alphabet, suitable for embedding in file names.
func Short(n int) (string, error) {
	s, err := gonanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", n)
	if err != nil {
		return "", fmt.Errorf("generate short id: %w", err)
	}
	return s, nil
}
