// Package id generates compact, URL-safe identifiers.
//
// Identifiers are UUIDv4 values re-encoded as unpadded lowercase base32,
// yielding 26-character strings that sort and copy cleanly.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new 26-character lowercase base32 identifier.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}

// Parse decodes an identifier back into its 16 raw bytes.
func Parse(id string) ([]byte, error) {
	decoded, err := encoding.DecodeString(strings.ToUpper(id))
	if err != nil {
		return nil, fmt.Errorf("decode id: %w", err)
	}
	if len(decoded) != 16 {
		return nil, fmt.Errorf("decode id: expected 16 bytes, got %d", len(decoded))
	}
	return decoded, nil
}
