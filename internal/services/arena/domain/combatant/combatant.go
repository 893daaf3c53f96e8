// Package combatant models a participant in an encounter and its derived
// combat stats.
package combatant

import (
	"strings"

	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
)

// EquippedItem is a non-fungible token reference plus the strength attribute
// cached from its metadata at equip time. Combat never re-reads the ledger
// for strength once cached, so metadata writes cannot race a turn in
// progress.
type EquippedItem struct {
	Token    token.ID `json:"token"`
	Strength uint32   `json:"strength"`
}

// Combatant is one side of an encounter.
type Combatant struct {
	// AccountID is the owning account. Generated adversaries use a
	// house account.
	AccountID string `json:"account_id"`
	// Health is the current health; zero means defeated.
	Health    uint32 `json:"health"`
	MaxHealth uint32 `json:"max_health"`

	// Base stats.
	BaseDamage   uint32 `json:"base_damage"`
	BaseStrength uint32 `json:"base_strength"`
	Defense      uint32 `json:"defense"`
	Initiative   uint32 `json:"initiative"`

	PotionCount uint32 `json:"potion_count"`
	Defeated    bool   `json:"defeated"`

	// Equipment holds the equipped token references, bounded by the
	// configured slot limit.
	Equipment []EquippedItem `json:"equipment"`
}

// New creates a combatant at full health.
func New(accountID string, maxHealth, baseDamage, baseStrength, defense, initiative uint32) (Combatant, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return Combatant{}, apperrors.New(apperrors.CodeCombatantEmptyAccountID, "account id is required")
	}
	if maxHealth == 0 {
		return Combatant{}, apperrors.New(apperrors.CodeCombatantInvalidStats, "max health must be positive")
	}
	return Combatant{
		AccountID:    accountID,
		Health:       maxHealth,
		MaxHealth:    maxHealth,
		BaseDamage:   baseDamage,
		BaseStrength: baseStrength,
		Defense:      defense,
		Initiative:   initiative,
	}, nil
}

// Alive reports whether the combatant can still act.
func (c Combatant) Alive() bool {
	return c.Health > 0 && !c.Defeated
}

// EffectiveStrength is the base strength plus every equipped item's cached
// strength.
func (c Combatant) EffectiveStrength() uint32 {
	total := c.BaseStrength
	for _, item := range c.Equipment {
		total += item.Strength
	}
	return total
}

// Equipped returns the equipped item for the given token, if present.
func (c Combatant) Equipped(tok token.ID) (EquippedItem, bool) {
	for _, item := range c.Equipment {
		if item.Token == tok {
			return item, true
		}
	}
	return EquippedItem{}, false
}

// WithEquipped returns a copy with the item appended.
func (c Combatant) WithEquipped(item EquippedItem) Combatant {
	next := c
	next.Equipment = append(append([]EquippedItem(nil), c.Equipment...), item)
	return next
}

// WithoutEquipped returns a copy with the token's item removed.
func (c Combatant) WithoutEquipped(tok token.ID) Combatant {
	next := c
	next.Equipment = nil
	for _, item := range c.Equipment {
		if item.Token != tok {
			next.Equipment = append(next.Equipment, item)
		}
	}
	return next
}

// ApplyDamage returns a copy with health reduced by damage, floored at zero,
// marking defeat when health reaches zero.
func (c Combatant) ApplyDamage(damage uint32) Combatant {
	next := c
	if damage >= next.Health {
		next.Health = 0
		next.Defeated = true
	} else {
		next.Health -= damage
	}
	return next
}
