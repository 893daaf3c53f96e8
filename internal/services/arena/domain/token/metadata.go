package token

import (
	"encoding/json"
	"fmt"
)

// AttributeKey is the ledger metadata key holding equipment attributes.
const AttributeKey = "equipment"

// Metadata is the equipment attribute stored in token metadata.
type Metadata struct {
	Slot     Slot   `json:"slot"`
	Strength uint32 `json:"strength"`
}

// EncodeMetadata serializes metadata for ledger storage.
func EncodeMetadata(m Metadata) string {
	data, _ := json.Marshal(m)
	return string(data)
}

// DecodeMetadata parses metadata read from the ledger.
func DecodeMetadata(value string) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal([]byte(value), &m); err != nil {
		return Metadata{}, fmt.Errorf("decode token metadata: %w", err)
	}
	if !m.Slot.Valid() {
		return Metadata{}, fmt.Errorf("decode token metadata: unknown slot %d", m.Slot)
	}
	return m, nil
}
