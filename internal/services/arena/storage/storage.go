// Package storage defines the persistence interfaces for the arena service.
//
// Asset state is not persisted here; the ledger port owns it. Storage holds
// the encounter records, the combatant roster, the versioned ruleset, and the
// append-only event journal.
package storage

import (
	"context"

	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/encounter"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/gameconfig"
)

// ErrNotFound indicates a requested persistence record is missing. Callers
// use this to differentiate legitimate "no such entity" states from transport
// or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// GlobalStream is the event stream for events not scoped to an encounter.
const GlobalStream = ""

// CombatantStore owns the roster of registered combatants.
type CombatantStore interface {
	PutCombatant(ctx context.Context, c combatant.Combatant) error
	GetCombatant(ctx context.Context, accountID string) (combatant.Combatant, error)
	ListCombatants(ctx context.Context) ([]combatant.Combatant, error)
}

// EncounterStore owns encounter state and history.
type EncounterStore interface {
	PutEncounter(ctx context.Context, enc encounter.Encounter) error
	GetEncounter(ctx context.Context, id string) (encounter.Encounter, error)
	// GetActiveEncounterByAccount returns the unresolved encounter the
	// account participates in, or ErrNotFound.
	GetActiveEncounterByAccount(ctx context.Context, accountID string) (encounter.Encounter, error)
	// ListEncountersByAccount returns the account's encounters, most
	// recent first.
	ListEncountersByAccount(ctx context.Context, accountID string, limit int) ([]encounter.Encounter, error)
}

// EventStore owns the append-only event journal. Streams are keyed by
// encounter ID; GlobalStream holds roster, shop, and config events.
type EventStore interface {
	// AppendEvent assigns the next sequence number within the event's
	// stream and persists the event. The returned copy carries the
	// assigned Seq.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns events in a stream with Seq greater than
	// afterSeq, in order, up to limit.
	ListEvents(ctx context.Context, stream string, afterSeq uint64, limit int) ([]event.Event, error)
}

// ConfigStore owns the live ruleset. GetConfig returns ErrNotFound until a
// ruleset has been stored.
type ConfigStore interface {
	PutConfig(ctx context.Context, cfg gameconfig.Config) error
	GetConfig(ctx context.Context) (gameconfig.Config, error)
}

// Store aggregates every persistence interface the arena service consumes.
type Store interface {
	CombatantStore
	EncounterStore
	EventStore
	ConfigStore
	Close() error
}
