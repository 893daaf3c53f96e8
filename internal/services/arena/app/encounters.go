package app

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/emberarena/internal/core/entropy"
	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/platform/id"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/encounter"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
	"github.com/louisbranch/emberarena/internal/services/arena/ledger"
)

// CreateEncounter starts a duel between two registered combatants. Both
// enter at the pinned ruleset's full health.
func (e *Engine) CreateEncounter(ctx context.Context, accountA, accountB string) (encounter.Encounter, error) {
	ctx, span := e.tracer.Start(ctx, "arena.CreateEncounter")
	defer span.End()

	cfg, err := e.Config(ctx)
	if err != nil {
		return encounter.Encounter{}, err
	}

	a, err := e.loadReadyCombatant(ctx, accountA, cfg.MaxHealth)
	if err != nil {
		return encounter.Encounter{}, err
	}
	b, err := e.loadReadyCombatant(ctx, accountB, cfg.MaxHealth)
	if err != nil {
		return encounter.Encounter{}, err
	}

	encID, err := id.NewID()
	if err != nil {
		return encounter.Encounter{}, fmt.Errorf("generate encounter id: %w", err)
	}
	enc, err := encounter.New(encID, a, b, cfg.Pin(), e.newSeed(), e.now().UTC())
	if err != nil {
		return encounter.Encounter{}, err
	}
	span.SetAttributes(attribute.String("encounter_id", enc.ID))

	if err := e.store.PutEncounter(ctx, enc); err != nil {
		return encounter.Encounter{}, fmt.Errorf("persist encounter: %w", err)
	}
	if err := e.journalCreated(ctx, enc); err != nil {
		return encounter.Encounter{}, err
	}
	return enc, nil
}

// CreateAdversaryEncounter starts a duel between the account and a generated
// adversary. The adversary's stats and optional loot are drawn from the
// encounter's own entropy schedule; the encounter cursor starts after the
// generation draws so turn resolution continues the same schedule.
func (e *Engine) CreateAdversaryEncounter(ctx context.Context, accountID string) (encounter.Encounter, error) {
	ctx, span := e.tracer.Start(ctx, "arena.CreateAdversaryEncounter")
	defer span.End()

	cfg, err := e.Config(ctx)
	if err != nil {
		return encounter.Encounter{}, err
	}

	player, err := e.loadReadyCombatant(ctx, accountID, cfg.MaxHealth)
	if err != nil {
		return encounter.Encounter{}, err
	}

	encID, err := id.NewID()
	if err != nil {
		return encounter.Encounter{}, fmt.Errorf("generate encounter id: %w", err)
	}
	seed := e.newSeed()
	adapter := entropy.New(seed)

	health, err := adapter.InRange(cfg.AdversaryHealth.Start, cfg.AdversaryHealth.End)
	if err != nil {
		return encounter.Encounter{}, apperrors.Wrap(apperrors.CodeEntropyExhausted, "adversary health draw", err)
	}
	strength, err := adapter.InRange(cfg.AdversaryStrength.Start, cfg.AdversaryStrength.End)
	if err != nil {
		return encounter.Encounter{}, apperrors.Wrap(apperrors.CodeEntropyExhausted, "adversary strength draw", err)
	}
	hasLoot, err := adapter.Chance(cfg.AdversaryLootChance)
	if err != nil {
		return encounter.Encounter{}, apperrors.Wrap(apperrors.CodeEntropyExhausted, "adversary loot draw", err)
	}

	adversary, err := combatant.New("adversary-"+encID, health, baseDamage, strength, baseDefense, baseInitiative)
	if err != nil {
		return encounter.Encounter{}, err
	}

	enc, err := encounter.New(encID, player, adversary, cfg.Pin(), seed, e.now().UTC())
	if err != nil {
		return encounter.Encounter{}, err
	}
	span.SetAttributes(attribute.String("encounter_id", enc.ID))

	var lootOps []ledger.Op
	if hasLoot {
		lootStrength, err := adapter.InRange(cfg.PurchasedWeaponStrength.Start, cfg.PurchasedWeaponStrength.End)
		if err != nil {
			return encounter.Encounter{}, apperrors.Wrap(apperrors.CodeEntropyExhausted, "loot strength draw", err)
		}
		loot := token.ID{
			Class:        cfg.HatClass,
			Slot:         token.SlotHat,
			StrengthTier: lootStrength,
			Nonce:        e.newNonce(),
		}
		metadata := token.EncodeMetadata(token.Metadata{Slot: token.SlotHat, Strength: lootStrength})
		lootOps = []ledger.Op{
			ledger.Mint(ledger.AccountID(e.houseAccount), loot, 1),
			ledger.SetMetadata(loot, token.AttributeKey, metadata),
		}
		enc.LootToken = &loot
		enc.LootHolder = e.houseAccount
	}
	enc.Cursor = adapter.Cursor()

	if len(lootOps) > 0 {
		if err := e.ledger.Apply(ctx, lootOps); err != nil {
			return encounter.Encounter{}, apperrors.Wrap(apperrors.CodeAssetCommitFailed, "commit adversary loot", err)
		}
	}

	if err := e.store.PutEncounter(ctx, enc); err != nil {
		return encounter.Encounter{}, fmt.Errorf("persist encounter: %w", err)
	}
	if err := e.journalCreated(ctx, enc); err != nil {
		return encounter.Encounter{}, err
	}
	if enc.LootToken != nil {
		if _, err := e.emitter.EmitTokenMinted(ctx, e.houseAccount, event.TokenMintedPayload{
			AccountID: e.houseAccount,
			Token:     enc.LootToken.String(),
			Strength:  enc.LootToken.StrengthTier,
		}); err != nil {
			return encounter.Encounter{}, fmt.Errorf("journal loot mint: %w", err)
		}
	}
	return enc, nil
}

// ResolveTurn advances the encounter by one turn. The pure decision runs
// first; its asset operations commit to the ledger as one batch; only then
// are the encounter state and the turn's events persisted. When the ledger
// commit fails, nothing is persisted and the same call can be retried.
func (e *Engine) ResolveTurn(ctx context.Context, encounterID string) (encounter.TurnDecision, error) {
	ctx, span := e.tracer.Start(ctx, "arena.ResolveTurn")
	defer span.End()
	span.SetAttributes(attribute.String("encounter_id", encounterID))

	enc, err := e.store.GetEncounter(ctx, encounterID)
	if err != nil {
		return encounter.TurnDecision{}, err
	}

	decision, err := encounter.ResolveTurn(enc, e.now().UTC())
	if err != nil {
		return encounter.TurnDecision{}, err
	}

	if len(decision.Ops) > 0 {
		if err := e.ledger.Apply(ctx, decision.Ops); err != nil {
			return encounter.TurnDecision{}, apperrors.Wrap(apperrors.CodeAssetCommitFailed, "commit turn assets", err)
		}
	}

	if err := e.store.PutEncounter(ctx, decision.Encounter); err != nil {
		return encounter.TurnDecision{}, fmt.Errorf("persist encounter: %w", err)
	}
	events, err := e.emitter.EmitAll(ctx, decision.Events)
	if err != nil {
		return encounter.TurnDecision{}, fmt.Errorf("journal turn: %w", err)
	}
	decision.Events = events

	return decision, nil
}

// GetEncounter returns the encounter with the given ID.
func (e *Engine) GetEncounter(ctx context.Context, encounterID string) (encounter.Encounter, error) {
	return e.store.GetEncounter(ctx, encounterID)
}

// ListEncounters returns the account's encounters, most recent first.
func (e *Engine) ListEncounters(ctx context.Context, accountID string, limit int) ([]encounter.Encounter, error) {
	return e.store.ListEncountersByAccount(ctx, accountID, limit)
}

// loadReadyCombatant loads a roster entry and prepares it to enter an
// encounter at the ruleset's full health.
func (e *Engine) loadReadyCombatant(ctx context.Context, accountID string, maxHealth uint32) (combatant.Combatant, error) {
	c, err := e.store.GetCombatant(ctx, accountID)
	if err != nil {
		return combatant.Combatant{}, err
	}
	if err := e.requireNoActiveEncounter(ctx, accountID); err != nil {
		return combatant.Combatant{}, err
	}
	c.MaxHealth = maxHealth
	c.Health = maxHealth
	c.Defeated = false
	return c, nil
}

func (e *Engine) journalCreated(ctx context.Context, enc encounter.Encounter) error {
	payload, err := json.Marshal(event.EncounterCreatedPayload{
		EncounterID:   enc.ID,
		CombatantA:    enc.A.AccountID,
		CombatantB:    enc.B.AccountID,
		ConfigVersion: enc.Config.ConfigVersion,
	})
	if err != nil {
		return fmt.Errorf("marshal created payload: %w", err)
	}
	_, err = e.emitter.EmitAll(ctx, []event.Event{{
		EncounterID: enc.ID,
		Timestamp:   enc.CreatedAt,
		Type:        event.TypeEncounterCreated,
		ActorType:   event.ActorTypePlayer,
		ActorID:     enc.A.AccountID,
		EntityType:  "encounter",
		EntityID:    enc.ID,
		PayloadJSON: payload,
	}})
	if err != nil {
		return fmt.Errorf("journal encounter created: %w", err)
	}
	return nil
}
