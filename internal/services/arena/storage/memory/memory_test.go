package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/encounter"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/gameconfig"
	"github.com/louisbranch/emberarena/internal/services/arena/storage"
)

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

func TestCombatantRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetCombatant(ctx, "alice"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	c, err := combatant.New("alice", 100, 10, 2, 1, 5)
	if err != nil {
		t.Fatalf("new combatant: %v", err)
	}
	if err := store.PutCombatant(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.GetCombatant(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccountID != "alice" || got.Health != 100 {
		t.Fatalf("unexpected combatant %+v", got)
	}

	all, err := store.ListCombatants(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 combatant, got %d", len(all))
	}
}

func TestActiveEncounterLookup(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	enc := testEncounter(t, "enc-1", "alice", "bob", now)
	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("put: %v", err)
	}

	active, err := store.GetActiveEncounterByAccount(ctx, "bob")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != "enc-1" {
		t.Fatalf("expected enc-1, got %s", active.ID)
	}

	if _, err := store.GetActiveEncounterByAccount(ctx, "carol"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for carol, got %v", err)
	}

	enc.State = encounter.StateResolved
	enc.Outcome = encounter.OutcomeDraw
	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("put resolved: %v", err)
	}
	if _, err := store.GetActiveEncounterByAccount(ctx, "alice"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no active encounter after resolution, got %v", err)
	}
}

func TestListEncountersMostRecentFirst(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"enc-1", "enc-2", "enc-3"} {
		enc := testEncounter(t, id, "alice", "bob", base.Add(time.Duration(i)*time.Hour))
		if err := store.PutEncounter(ctx, enc); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
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

func TestEventSequencesArePerStream(t *testing.T) {
	store := New()
	ctx := context.Background()

	streams := []string{"enc-1", "enc-1", storage.GlobalStream, "enc-2", "enc-1"}
	for _, stream := range streams {
		evt := event.Event{
			EncounterID: stream,
			Timestamp:   time.Now().UTC(),
			Type:        event.TypeTurnResolved,
			PayloadJSON: []byte(`{}`),
		}
		if _, err := store.AppendEvent(ctx, evt); err != nil {
			t.Fatalf("append: %v", err)
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

	global, err := store.ListEvents(ctx, storage.GlobalStream, 0, 0)
	if err != nil {
		t.Fatalf("list global: %v", err)
	}
	if len(global) != 1 || global[0].Seq != 1 {
		t.Fatalf("expected single global event at seq 1, got %+v", global)
	}

	after, err := store.ListEvents(ctx, "enc-1", 1, 0)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(after) != 2 || after[0].Seq != 2 {
		t.Fatalf("expected events after seq 1, got %+v", after)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetConfig(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	cfg := gameconfig.Default()
	cfg.WeaponCost = 500
	if err := store.PutConfig(ctx, cfg); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.GetConfig(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.WeaponCost != 500 {
		t.Fatalf("expected weapon cost 500, got %d", got.WeaponCost)
	}
}

func TestStoredEncounterIsIsolatedFromCaller(t *testing.T) {
	store := New()
	ctx := context.Background()

	enc := testEncounter(t, "enc-1", "alice", "bob", time.Now().UTC())
	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("put: %v", err)
	}

	enc.Seed[0] = 'X'
	enc.A.Health = 1

	got, err := store.GetEncounter(ctx, "enc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Seed[0] == 'X' {
		t.Fatal("expected stored seed to be isolated from caller mutation")
	}
	if got.A.Health != 100 {
		t.Fatalf("expected stored combatant untouched, got %d", got.A.Health)
	}
}
