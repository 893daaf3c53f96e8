package event

// EncounterCreatedPayload describes a newly created encounter.
type EncounterCreatedPayload struct {
	EncounterID   string `json:"encounter_id"`
	CombatantA    string `json:"combatant_a"`
	CombatantB    string `json:"combatant_b"`
	ConfigVersion uint64 `json:"config_version"`
}

// TurnResolvedPayload describes one resolved turn.
type TurnResolvedPayload struct {
	Turn           uint32 `json:"turn"`
	ActorAccount   string `json:"actor_account"`
	Action         string `json:"action"`
	Damage         uint32 `json:"damage"`
	DefenderHealth uint32 `json:"defender_health"`
	CursorBefore   uint64 `json:"cursor_before"`
	CursorAfter    uint64 `json:"cursor_after"`
}

// CombatantDefeatedPayload describes a combatant reaching zero health.
type CombatantDefeatedPayload struct {
	AccountID string `json:"account_id"`
	Turn      uint32 `json:"turn"`
}

// EncounterResolvedPayload describes the terminal outcome of an encounter.
type EncounterResolvedPayload struct {
	Outcome string `json:"outcome"`
	Winner  string `json:"winner,omitempty"`
	Turns   uint32 `json:"turns"`
}

// CombatantRegisteredPayload describes a roster registration.
type CombatantRegisteredPayload struct {
	AccountID      string `json:"account_id"`
	WeaponToken    string `json:"weapon_token"`
	WeaponStrength uint32 `json:"weapon_strength"`
}

// EquipmentPayload describes an equip or unequip action.
type EquipmentPayload struct {
	AccountID string `json:"account_id"`
	Token     string `json:"token"`
	Strength  uint32 `json:"strength,omitempty"`
}

// TokenMintedPayload describes a minted non-fungible token.
type TokenMintedPayload struct {
	AccountID string `json:"account_id"`
	Token     string `json:"token"`
	Strength  uint32 `json:"strength"`
}

// CurrencyPayload describes a fungible currency movement.
type CurrencyPayload struct {
	AccountID string `json:"account_id"`
	To        string `json:"to,omitempty"`
	Amount    uint64 `json:"amount"`
	Reason    string `json:"reason,omitempty"`
}

// ConfigChangedPayload describes an applied ruleset mutation.
type ConfigChangedPayload struct {
	Version uint64 `json:"version"`
}
