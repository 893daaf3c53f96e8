// Package memory provides an in-memory storage implementation for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/encounter"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/gameconfig"
	"github.com/louisbranch/emberarena/internal/services/arena/storage"
)

// Store keeps all records in process memory.
type Store struct {
	mu sync.RWMutex

	combatants map[string]combatant.Combatant
	encounters map[string]encounter.Encounter
	events     map[string][]event.Event
	config     *gameconfig.Config
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		combatants: make(map[string]combatant.Combatant),
		encounters: make(map[string]encounter.Encounter),
		events:     make(map[string][]event.Event),
	}
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// PutCombatant stores a combatant keyed by account.
func (s *Store) PutCombatant(_ context.Context, c combatant.Combatant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combatants[c.AccountID] = cloneCombatant(c)
	return nil
}

// GetCombatant returns the combatant for the account.
func (s *Store) GetCombatant(_ context.Context, accountID string) (combatant.Combatant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.combatants[accountID]
	if !ok {
		return combatant.Combatant{}, storage.ErrNotFound
	}
	return cloneCombatant(c), nil
}

// ListCombatants returns all combatants ordered by account.
func (s *Store) ListCombatants(_ context.Context) ([]combatant.Combatant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]combatant.Combatant, 0, len(s.combatants))
	for _, c := range s.combatants {
		out = append(out, cloneCombatant(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

// PutEncounter stores an encounter keyed by ID.
func (s *Store) PutEncounter(_ context.Context, enc encounter.Encounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encounters[enc.ID] = cloneEncounter(enc)
	return nil
}

// GetEncounter returns the encounter with the given ID.
func (s *Store) GetEncounter(_ context.Context, id string) (encounter.Encounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enc, ok := s.encounters[id]
	if !ok {
		return encounter.Encounter{}, storage.ErrNotFound
	}
	return cloneEncounter(enc), nil
}

// GetActiveEncounterByAccount returns the unresolved encounter the account
// participates in.
func (s *Store) GetActiveEncounterByAccount(_ context.Context, accountID string) (encounter.Encounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, enc := range s.encounters {
		if !enc.Active() {
			continue
		}
		if enc.A.AccountID == accountID || enc.B.AccountID == accountID {
			return cloneEncounter(enc), nil
		}
	}
	return encounter.Encounter{}, storage.ErrNotFound
}

// ListEncountersByAccount returns the account's encounters, most recent
// first.
func (s *Store) ListEncountersByAccount(_ context.Context, accountID string, limit int) ([]encounter.Encounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []encounter.Encounter
	for _, enc := range s.encounters {
		if enc.A.AccountID == accountID || enc.B.AccountID == accountID {
			out = append(out, cloneEncounter(enc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AppendEvent assigns the next sequence number in the event's stream and
// stores the event.
func (s *Store) AppendEvent(_ context.Context, evt event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stream := evt.EncounterID
	evt.Seq = uint64(len(s.events[stream]) + 1)
	s.events[stream] = append(s.events[stream], evt)
	return evt, nil
}

// ListEvents returns a stream's events after the given sequence number.
func (s *Store) ListEvents(_ context.Context, stream string, afterSeq uint64, limit int) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []event.Event
	for _, evt := range s.events[stream] {
		if evt.Seq <= afterSeq {
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// PutConfig stores the live ruleset.
func (s *Store) PutConfig(_ context.Context, cfg gameconfig.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = &cfg
	return nil
}

// GetConfig returns the live ruleset.
func (s *Store) GetConfig(_ context.Context) (gameconfig.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return gameconfig.Config{}, storage.ErrNotFound
	}
	return *s.config, nil
}

func cloneCombatant(c combatant.Combatant) combatant.Combatant {
	out := c
	out.Equipment = append([]combatant.EquippedItem(nil), c.Equipment...)
	return out
}

func cloneEncounter(enc encounter.Encounter) encounter.Encounter {
	out := enc
	out.Seed = append([]byte(nil), enc.Seed...)
	out.History = append([]encounter.TurnRecord(nil), enc.History...)
	out.A = cloneCombatant(enc.A)
	out.B = cloneCombatant(enc.B)
	if enc.LootToken != nil {
		loot := *enc.LootToken
		out.LootToken = &loot
	}
	return out
}
