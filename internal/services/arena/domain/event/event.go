// Package event defines the append-only event journal for game actions.
//
// Events are facts that have occurred, not commands. They carry enough
// structured data for external observers to reconstruct state transitions
// without replaying randomness. Past events are never mutated or deleted.
package event

import "time"

// Type identifies the kind of an event.
type Type string

// Encounter lifecycle events.
const (
	// TypeEncounterCreated records the creation of an encounter.
	TypeEncounterCreated Type = "encounter.created"
	// TypeTurnResolved records one resolved combat turn.
	TypeTurnResolved Type = "encounter.turn_resolved"
	// TypeEncounterResolved records the terminal outcome of an encounter.
	TypeEncounterResolved Type = "encounter.resolved"
	// TypeCombatantDefeated records a combatant reaching zero health.
	TypeCombatantDefeated Type = "combatant.defeated"
)

// Roster events.
const (
	// TypeCombatantRegistered records a new combatant joining the roster.
	TypeCombatantRegistered Type = "combatant.registered"
)

// Equipment events.
const (
	// TypeItemEquipped records equipping (and freezing) a token.
	TypeItemEquipped Type = "equipment.equipped"
	// TypeItemUnequipped records unequipping (and unfreezing) a token.
	TypeItemUnequipped Type = "equipment.unequipped"
)

// Asset events.
const (
	// TypeTokenMinted records minting a non-fungible token.
	TypeTokenMinted Type = "token.minted"
	// TypeCurrencyMinted records minting fungible currency.
	TypeCurrencyMinted Type = "currency.minted"
	// TypeCurrencyBurned records burning fungible currency.
	TypeCurrencyBurned Type = "currency.burned"
	// TypeCurrencyTransferred records moving fungible currency.
	TypeCurrencyTransferred Type = "currency.transferred"
)

// Config events.
const (
	// TypeConfigChanged records an applied ruleset mutation.
	TypeConfigChanged Type = "config.changed"
)

// ActorType identifies who or what triggered an event.
type ActorType string

const (
	// ActorTypeSystem indicates the event was triggered by the engine.
	ActorTypeSystem ActorType = "system"
	// ActorTypePlayer indicates the event was triggered by a player account.
	ActorTypePlayer ActorType = "player"
	// ActorTypeAdmin indicates the event was triggered by an admin account.
	ActorTypeAdmin ActorType = "admin"
)

// Event is one immutable entry in the journal.
type Event struct {
	// EncounterID scopes the event to an encounter. Roster, shop, and
	// config events use the empty stream.
	EncounterID string
	// Seq is the sequence number within the stream (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// ActorType identifies who triggered the event.
	ActorType ActorType
	// ActorID is the account ID for player and admin actors.
	ActorID string
	// EntityType is the type of entity affected (encounter, combatant,
	// token, config).
	EntityType string
	// EntityID is the ID of the entity affected.
	EntityID string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}
