package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/encounter"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/gameconfig"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
	"github.com/louisbranch/emberarena/internal/services/arena/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func testEncounter(t *testing.T, id, a, b string, created time.Time) encounter.Encounter {
	t.Helper()
	ca, err := combatant.New(a, 100, 10, 0, 0, 5)
	if err != nil {
		t.Fatalf("combatant a: %v", err)
	}
	cb, err := combatant.New(b, 100, 10, 0, 0, 5)
	if err != nil {
		t.Fatalf("combatant b: %v", err)
	}
	enc, err := encounter.New(id, ca, cb, gameconfig.Default().Pin(), []byte("seed"), created)
	if err != nil {
		t.Fatalf("encounter: %v", err)
	}
	return enc
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected open of blank path to fail")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCombatantRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetCombatant(ctx, "alice"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	c, err := combatant.New("alice", 100, 10, 2, 1, 5)
	if err != nil {
		t.Fatalf("new combatant: %v", err)
	}
	c = c.WithEquipped(combatant.EquippedItem{
		Token:    token.ID{Class: 2, Slot: token.SlotWeapon, StrengthTier: 7, Nonce: 1},
		Strength: 7,
	})
	if err := store.PutCombatant(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.GetCombatant(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EffectiveStrength() != c.EffectiveStrength() {
		t.Fatalf("expected strength %d, got %d", c.EffectiveStrength(), got.EffectiveStrength())
	}
	if len(got.Equipment) != 1 || got.Equipment[0].Token.Nonce != 1 {
		t.Fatalf("expected equipment to survive round trip, got %+v", got.Equipment)
	}

	// Put is an upsert.
	c.Health = 42
	if err := store.PutCombatant(ctx, c); err != nil {
		t.Fatalf("put update: %v", err)
	}
	got, err = store.GetCombatant(ctx, "alice")
	if err != nil {
		t.Fatalf("get update: %v", err)
	}
	if got.Health != 42 {
		t.Fatalf("expected updated health 42, got %d", got.Health)
	}
}

func TestEncounterRoundTripAndActiveLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	enc := testEncounter(t, "enc-1", "alice", "bob", now)
	loot := token.ID{Class: 2, Slot: token.SlotWeapon, StrengthTier: 11, Nonce: 9}
	enc.LootToken = &loot
	enc.LootHolder = "house"
	enc.History = []encounter.TurnRecord{{
		Turn:            1,
		ActorAccount:    "alice",
		Action:          encounter.ActionAttack,
		CursorAfter:     2,
		VariancePct:     95,
		Damage:          9,
		DefenderAccount: "bob",
		DefenderHealth:  91,
		Timestamp:       now,
	}}
	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.GetEncounter(ctx, "enc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.History) != 1 || got.History[0].Damage != 9 {
		t.Fatalf("expected history to survive round trip, got %+v", got.History)
	}
	if got.LootToken == nil || *got.LootToken != loot {
		t.Fatalf("expected loot token to survive round trip, got %v", got.LootToken)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %v, got %v", now, got.CreatedAt)
	}

	active, err := store.GetActiveEncounterByAccount(ctx, "bob")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != "enc-1" {
		t.Fatalf("expected enc-1 active, got %s", active.ID)
	}

	got.State = encounter.StateResolved
	got.Outcome = encounter.OutcomeAWon
	if err := store.PutEncounter(ctx, got); err != nil {
		t.Fatalf("put resolved: %v", err)
	}
	if _, err := store.GetActiveEncounterByAccount(ctx, "alice"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no active encounter after resolution, got %v", err)
	}
}

func TestListEncountersByAccount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"enc-1", "enc-2", "enc-3"} {
		enc := testEncounter(t, id, "alice", "bob", base.Add(time.Duration(i)*time.Hour))
		if err := store.PutEncounter(ctx, enc); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	other := testEncounter(t, "enc-4", "carol", "dave", base)
	if err := store.PutEncounter(ctx, other); err != nil {
		t.Fatalf("put enc-4: %v", err)
	}

	out, err := store.ListEncountersByAccount(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 encounters, got %d", len(out))
	}
	if out[0].ID != "enc-3" || out[1].ID != "enc-2" {
		t.Fatalf("expected most recent first, got %s, %s", out[0].ID, out[1].ID)
	}
}

func TestAppendEventAssignsPerStreamSequence(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	streams := []string{"enc-1", "enc-1", storage.GlobalStream, "enc-2", "enc-1"}
	for i, stream := range streams {
		evt := event.Event{
			EncounterID: stream,
			Timestamp:   now.Add(time.Duration(i) * time.Second),
			Type:        event.TypeTurnResolved,
			ActorType:   event.ActorTypePlayer,
			ActorID:     "alice",
			EntityType:  "encounter",
			EntityID:    stream,
			PayloadJSON: []byte(`{"turn":1}`),
		}
		if _, err := store.AppendEvent(ctx, evt); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	enc1, err := store.ListEvents(ctx, "enc-1", 0, 0)
	if err != nil {
		t.Fatalf("list enc-1: %v", err)
	}
	if len(enc1) != 3 {
		t.Fatalf("expected 3 events in enc-1, got %d", len(enc1))
	}
	for i, evt := range enc1 {
		if evt.Seq != uint64(i+1) {
			t.Fatalf("expected contiguous seqs, got %d at %d", evt.Seq, i)
		}
	}
	if string(enc1[0].PayloadJSON) != `{"turn":1}` {
		t.Fatalf("expected payload to survive round trip, got %s", enc1[0].PayloadJSON)
	}
	if enc1[0].ActorType != event.ActorTypePlayer || enc1[0].ActorID != "alice" {
		t.Fatalf("expected actor fields to survive, got %+v", enc1[0])
	}

	global, err := store.ListEvents(ctx, storage.GlobalStream, 0, 0)
	if err != nil {
		t.Fatalf("list global: %v", err)
	}
	if len(global) != 1 || global[0].Seq != 1 {
		t.Fatalf("expected single global event at seq 1, got %+v", global)
	}

	after, err := store.ListEvents(ctx, "enc-1", 2, 0)
	if err != nil {
		t.Fatalf("list after seq 2: %v", err)
	}
	if len(after) != 1 || after[0].Seq != 3 {
		t.Fatalf("expected only seq 3, got %+v", after)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetConfig(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	cfg := gameconfig.Default()
	cfg.Version = 3
	cfg.AdversaryLootChance = 75
	if err := store.PutConfig(ctx, cfg); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.GetConfig(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != 3 || got.AdversaryLootChance != 75 {
		t.Fatalf("expected stored ruleset back, got %+v", got)
	}
}
