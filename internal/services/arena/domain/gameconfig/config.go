// Package gameconfig holds the versioned mutable ruleset consumed by the
// combat engine and the shop.
package gameconfig

import (
	"fmt"

	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
)

// Range is an inclusive value range.
type Range struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Contains reports whether value falls inside the range.
func (r Range) Contains(value uint32) bool {
	return value >= r.Start && value <= r.End
}

// Config is the full game ruleset. Version increases on every applied
// mutation so observers can correlate encounters with the ruleset they
// pinned.
type Config struct {
	Version uint64 `json:"version"`

	// Token classes for the assets the game mints.
	GoldClass   uint64 `json:"gold_class"`
	WeaponClass uint64 `json:"weapon_class"`
	HatClass    uint64 `json:"hat_class"`

	// Combat rules, pinned per encounter.
	MaxHealth          uint32 `json:"max_health"`
	EquipmentSlotLimit uint32 `json:"equipment_slot_limit"`
	MaxTurns           uint32 `json:"max_turns"`
	VarianceMinPct     uint32 `json:"variance_min_pct"`
	VarianceMaxPct     uint32 `json:"variance_max_pct"`

	// Generation rules.
	StartingWeaponStrength  Range  `json:"starting_weapon_strength"`
	PurchasedWeaponStrength Range  `json:"purchased_weapon_strength"`
	AdversaryHealth         Range  `json:"adversary_health"`
	AdversaryStrength       Range  `json:"adversary_strength"`
	AdversaryLootChance     uint32 `json:"adversary_loot_chance"`
	VictoryGoldDrop         Range  `json:"victory_gold_drop"`

	// Shop prices, read live (never pinned).
	WeaponCost uint64 `json:"weapon_cost"`
	PotionCost uint64 `json:"potion_cost"`
	RestCost   uint64 `json:"rest_cost"`
}

// Default returns the starting ruleset.
func Default() Config {
	return Config{
		Version:                 1,
		GoldClass:               1,
		WeaponClass:             2,
		HatClass:                3,
		MaxHealth:               100,
		EquipmentSlotLimit:      2,
		MaxTurns:                30,
		VarianceMinPct:          90,
		VarianceMaxPct:          110,
		StartingWeaponStrength:  Range{Start: 1, End: 6},
		PurchasedWeaponStrength: Range{Start: 5, End: 15},
		AdversaryHealth:         Range{Start: 60, End: 120},
		AdversaryStrength:       Range{Start: 0, End: 10},
		AdversaryLootChance:     40,
		VictoryGoldDrop:         Range{Start: 10, End: 30},
		WeaponCost:              200,
		PotionCost:              50,
		RestCost:                10,
	}
}

// Validate checks internal consistency of the ruleset.
func (c Config) Validate() error {
	if c.MaxHealth == 0 {
		return apperrors.New(apperrors.CodeConfigInvalidValue, "max health must be positive")
	}
	if c.MaxTurns == 0 {
		return apperrors.New(apperrors.CodeConfigInvalidValue, "max turns must be positive")
	}
	if c.VarianceMinPct > c.VarianceMaxPct {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalidValue,
			"variance band is inverted", map[string]string{
				"min": fmt.Sprintf("%d", c.VarianceMinPct),
				"max": fmt.Sprintf("%d", c.VarianceMaxPct),
			})
	}
	if c.AdversaryLootChance > 100 {
		return apperrors.New(apperrors.CodeConfigInvalidValue, "loot chance must be a percentage")
	}
	for _, r := range []Range{
		c.StartingWeaponStrength,
		c.PurchasedWeaponStrength,
		c.AdversaryHealth,
		c.AdversaryStrength,
		c.VictoryGoldDrop,
	} {
		if r.Start > r.End {
			return apperrors.WithMetadata(apperrors.CodeConfigInvalidValue,
				"range start exceeds end", map[string]string{
					"start": fmt.Sprintf("%d", r.Start),
					"end":   fmt.Sprintf("%d", r.End),
				})
		}
	}
	return nil
}

// Snapshot captures the configuration keys an encounter consumes. It is
// taken at encounter creation; later config mutations never change an
// already-pinned snapshot. Shop prices are intentionally absent: purchases
// happen outside active encounters and read the live config.
type Snapshot struct {
	ConfigVersion       uint64 `json:"config_version"`
	GoldClass           uint64 `json:"gold_class"`
	MaxHealth           uint32 `json:"max_health"`
	EquipmentSlotLimit  uint32 `json:"equipment_slot_limit"`
	MaxTurns            uint32 `json:"max_turns"`
	VarianceMinPct      uint32 `json:"variance_min_pct"`
	VarianceMaxPct      uint32 `json:"variance_max_pct"`
	AdversaryHealth     Range  `json:"adversary_health"`
	AdversaryStrength   Range  `json:"adversary_strength"`
	AdversaryLootChance uint32 `json:"adversary_loot_chance"`
	VictoryGoldDrop     Range  `json:"victory_gold_drop"`
}

// Pin returns the snapshot of the keys an encounter consumes.
func (c Config) Pin() Snapshot {
	return Snapshot{
		ConfigVersion:       c.Version,
		GoldClass:           c.GoldClass,
		MaxHealth:           c.MaxHealth,
		EquipmentSlotLimit:  c.EquipmentSlotLimit,
		MaxTurns:            c.MaxTurns,
		VarianceMinPct:      c.VarianceMinPct,
		VarianceMaxPct:      c.VarianceMaxPct,
		AdversaryHealth:     c.AdversaryHealth,
		AdversaryStrength:   c.AdversaryStrength,
		AdversaryLootChance: c.AdversaryLootChance,
		VictoryGoldDrop:     c.VictoryGoldDrop,
	}
}
