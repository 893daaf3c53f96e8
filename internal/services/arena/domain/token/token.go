// Package token models the wrapped token identifier used for game assets.
//
// A wrapped identifier carries game-specific fields alongside the base asset
// class: the equipment slot the token occupies, its strength tier, and a
// generation nonce distinguishing tokens of the same class. The engine never
// inspects an identifier beyond these documented fields.
package token

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
)

// Slot identifies the equipment slot a token occupies.
type Slot uint8

const (
	// SlotNone marks fungible tokens that cannot be equipped.
	SlotNone Slot = 0
	// SlotWeapon marks weapon tokens.
	SlotWeapon Slot = 1
	// SlotHat marks hat tokens.
	SlotHat Slot = 2
)

// Valid reports whether the slot is a known value.
func (s Slot) Valid() bool {
	return s <= SlotHat
}

// String returns the human-readable slot name.
func (s Slot) String() string {
	switch s {
	case SlotNone:
		return "none"
	case SlotWeapon:
		return "weapon"
	case SlotHat:
		return "hat"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

// encodingVersion is the first byte of every encoded identifier.
const encodingVersion = 0x01

// EncodedLen is the exact byte length of an encoded identifier.
const EncodedLen = 22

// ID is a wrapped token identifier.
//
// Fungible currency uses a Class with SlotNone, zero tier, and zero nonce;
// non-fungible equipment tokens carry a unique nonce per minted token.
type ID struct {
	// Class is the base token class identifier.
	Class uint64
	// Slot is the equipment slot this token occupies, if any.
	Slot Slot
	// StrengthTier is the strength tier embedded at mint time.
	StrengthTier uint32
	// Nonce is the generation nonce distinguishing tokens within a class.
	Nonce uint64
}

// Currency returns the fungible identifier for the given class.
func Currency(class uint64) ID {
	return ID{Class: class}
}

// Encode serializes the identifier into its fixed-width binary form.
// Encode and Decode round-trip exactly for every valid identifier.
func (id ID) Encode() []byte {
	buf := make([]byte, EncodedLen)
	buf[0] = encodingVersion
	binary.LittleEndian.PutUint64(buf[1:9], id.Class)
	buf[9] = byte(id.Slot)
	binary.LittleEndian.PutUint32(buf[10:14], id.StrengthTier)
	binary.LittleEndian.PutUint64(buf[14:22], id.Nonce)
	return buf
}

// String returns the hex form of the encoded identifier.
func (id ID) String() string {
	return hex.EncodeToString(id.Encode())
}

// Decode parses an encoded identifier. It is total: malformed input yields a
// TOKEN_DECODE_FAILED error and never panics.
func Decode(data []byte) (ID, error) {
	if len(data) != EncodedLen {
		return ID{}, apperrors.WithMetadata(apperrors.CodeTokenDecodeFailed,
			fmt.Sprintf("token id must be %d bytes, got %d", EncodedLen, len(data)),
			map[string]string{"length": fmt.Sprintf("%d", len(data))})
	}
	if data[0] != encodingVersion {
		return ID{}, apperrors.WithMetadata(apperrors.CodeTokenDecodeFailed,
			fmt.Sprintf("unsupported token id version %d", data[0]),
			map[string]string{"version": fmt.Sprintf("%d", data[0])})
	}

	id := ID{
		Class:        binary.LittleEndian.Uint64(data[1:9]),
		Slot:         Slot(data[9]),
		StrengthTier: binary.LittleEndian.Uint32(data[10:14]),
		Nonce:        binary.LittleEndian.Uint64(data[14:22]),
	}
	if !id.Slot.Valid() {
		return ID{}, apperrors.WithMetadata(apperrors.CodeTokenDecodeFailed,
			fmt.Sprintf("unknown equipment slot %d", data[9]),
			map[string]string{"slot": fmt.Sprintf("%d", data[9])})
	}
	return id, nil
}

// DecodeString parses the hex form produced by String.
func DecodeString(s string) (ID, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, apperrors.Wrap(apperrors.CodeTokenDecodeFailed, "token id is not valid hex", err)
	}
	return Decode(data)
}
