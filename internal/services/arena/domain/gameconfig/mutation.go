package gameconfig

// Mutation describes a partial update to the ruleset. Only non-nil fields
// are applied.
type Mutation struct {
	MaxHealth               *uint32 `json:"max_health,omitempty"`
	EquipmentSlotLimit      *uint32 `json:"equipment_slot_limit,omitempty"`
	MaxTurns                *uint32 `json:"max_turns,omitempty"`
	VarianceMinPct          *uint32 `json:"variance_min_pct,omitempty"`
	VarianceMaxPct          *uint32 `json:"variance_max_pct,omitempty"`
	StartingWeaponStrength  *Range  `json:"starting_weapon_strength,omitempty"`
	PurchasedWeaponStrength *Range  `json:"purchased_weapon_strength,omitempty"`
	AdversaryHealth         *Range  `json:"adversary_health,omitempty"`
	AdversaryStrength       *Range  `json:"adversary_strength,omitempty"`
	AdversaryLootChance     *uint32 `json:"adversary_loot_chance,omitempty"`
	VictoryGoldDrop         *Range  `json:"victory_gold_drop,omitempty"`
	WeaponCost              *uint64 `json:"weapon_cost,omitempty"`
	PotionCost              *uint64 `json:"potion_cost,omitempty"`
	RestCost                *uint64 `json:"rest_cost,omitempty"`
}

// Apply returns a copy of config with the mutation's set fields applied and
// the version bumped. The result is validated before being returned; an
// invalid mutation leaves the input untouched.
func (m Mutation) Apply(config Config) (Config, error) {
	next := config

	setU32 := func(dst *uint32, src *uint32) {
		if src != nil {
			*dst = *src
		}
	}
	setU64 := func(dst *uint64, src *uint64) {
		if src != nil {
			*dst = *src
		}
	}
	setRange := func(dst *Range, src *Range) {
		if src != nil {
			*dst = *src
		}
	}

	setU32(&next.MaxHealth, m.MaxHealth)
	setU32(&next.EquipmentSlotLimit, m.EquipmentSlotLimit)
	setU32(&next.MaxTurns, m.MaxTurns)
	setU32(&next.VarianceMinPct, m.VarianceMinPct)
	setU32(&next.VarianceMaxPct, m.VarianceMaxPct)
	setRange(&next.StartingWeaponStrength, m.StartingWeaponStrength)
	setRange(&next.PurchasedWeaponStrength, m.PurchasedWeaponStrength)
	setRange(&next.AdversaryHealth, m.AdversaryHealth)
	setRange(&next.AdversaryStrength, m.AdversaryStrength)
	setU32(&next.AdversaryLootChance, m.AdversaryLootChance)
	setRange(&next.VictoryGoldDrop, m.VictoryGoldDrop)
	setU64(&next.WeaponCost, m.WeaponCost)
	setU64(&next.PotionCost, m.PotionCost)
	setU64(&next.RestCost, m.RestCost)

	next.Version = config.Version + 1

	if err := next.Validate(); err != nil {
		return Config{}, err
	}
	return next, nil
}
