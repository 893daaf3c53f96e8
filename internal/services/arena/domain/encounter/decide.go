package encounter

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/louisbranch/emberarena/internal/core/entropy"
	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
	"github.com/louisbranch/emberarena/internal/services/arena/ledger"
)

// TurnDecision is the outcome of resolving one turn in isolation. The engine
// applies Ops to the ledger first; only after that commit succeeds does the
// Encounter value and the Events become durable.
type TurnDecision struct {
	Encounter Encounter
	Record    TurnRecord
	Events    []event.Event
	Ops       []ledger.Op
}

// ResolveTurn computes the next turn of the encounter without touching any
// external state.
//
// The entropy schedule per turn is fixed: one initiative draw, one variance
// draw, and one gold draw on defeat. The initiative draw is consumed every
// turn even when the initiative stats differ, so the cursor schedule depends
// only on turn outcomes, never on combatant stats.
func ResolveTurn(enc Encounter, now time.Time) (TurnDecision, error) {
	if !enc.Active() {
		return TurnDecision{}, apperrors.WithMetadata(apperrors.CodeEncounterFinished,
			"encounter already resolved",
			map[string]string{"encounter_id": enc.ID, "outcome": string(enc.Outcome)})
	}

	adapter := entropy.New(enc.Seed)
	adapter.Advance(enc.Cursor)
	cursorBefore := adapter.Cursor()

	tieBreak, err := adapter.NextBounded(2)
	if err != nil {
		return TurnDecision{}, wrapEntropy(err, "initiative draw")
	}
	actorIsA := enc.A.Initiative > enc.B.Initiative ||
		(enc.A.Initiative == enc.B.Initiative && tieBreak == 0)

	actor, defender := enc.A, enc.B
	if !actorIsA {
		actor, defender = enc.B, enc.A
	}

	variancePct, err := adapter.InRange(enc.Config.VarianceMinPct, enc.Config.VarianceMaxPct)
	if err != nil {
		return TurnDecision{}, wrapEntropy(err, "variance draw")
	}

	raw := actor.BaseDamage + actor.EffectiveStrength()
	if raw > defender.Defense {
		raw -= defender.Defense
	} else {
		raw = 0
	}
	damage := uint32(uint64(raw) * uint64(variancePct) / 100)

	defender = defender.ApplyDamage(damage)

	next := enc
	next.Turn++
	next.State = StateTurnInProgress
	next.UpdatedAt = now
	if actorIsA {
		next.B = defender
	} else {
		next.A = defender
	}

	record := TurnRecord{
		Turn:            next.Turn,
		ActorAccount:    actor.AccountID,
		Action:          ActionAttack,
		CursorBefore:    cursorBefore,
		VariancePct:     variancePct,
		Damage:          damage,
		DefenderAccount: defender.AccountID,
		DefenderHealth:  defender.Health,
		Timestamp:       now,
	}

	events := make([]event.Event, 0, 5)
	var ops []ledger.Op
	var goldWon uint64
	lootWon := false

	switch {
	case defender.Defeated:
		if actorIsA {
			next.Outcome = OutcomeAWon
		} else {
			next.Outcome = OutcomeBWon
		}
		next.State = StateResolved

		gold, err := adapter.InRange(enc.Config.VictoryGoldDrop.Start, enc.Config.VictoryGoldDrop.End)
		if err != nil {
			return TurnDecision{}, wrapEntropy(err, "gold draw")
		}
		goldWon = uint64(gold)
		ops = append(ops, ledger.Mint(
			ledger.AccountID(actor.AccountID),
			token.Currency(enc.Config.GoldClass),
			goldWon,
		))
		if enc.LootToken != nil && enc.LootHolder != actor.AccountID {
			ops = append(ops, ledger.Transfer(
				ledger.AccountID(enc.LootHolder),
				ledger.AccountID(actor.AccountID),
				*enc.LootToken,
				1,
			))
			next.LootHolder = actor.AccountID
			lootWon = true
		}

	case next.Turn >= enc.Config.MaxTurns:
		next.Outcome = OutcomeDraw
		next.State = StateResolved
	}

	next.Cursor = adapter.Cursor()
	record.CursorAfter = next.Cursor
	next.History = append(append([]TurnRecord(nil), enc.History...), record)

	events = append(events, buildEvent(enc.ID, event.TypeTurnResolved,
		event.ActorTypePlayer, actor.AccountID, "encounter", enc.ID, now,
		event.TurnResolvedPayload{
			Turn:           record.Turn,
			ActorAccount:   record.ActorAccount,
			Action:         record.Action,
			Damage:         record.Damage,
			DefenderHealth: record.DefenderHealth,
			CursorBefore:   record.CursorBefore,
			CursorAfter:    record.CursorAfter,
		}))

	if defender.Defeated {
		events = append(events, buildEvent(enc.ID, event.TypeCombatantDefeated,
			event.ActorTypeSystem, "", "combatant", defender.AccountID, now,
			event.CombatantDefeatedPayload{AccountID: defender.AccountID, Turn: record.Turn}))
		events = append(events, buildEvent(enc.ID, event.TypeCurrencyMinted,
			event.ActorTypeSystem, "", "currency", actor.AccountID, now,
			event.CurrencyPayload{AccountID: actor.AccountID, Amount: goldWon, Reason: "victory"}))
		if lootWon {
			events = append(events, buildEvent(enc.ID, event.TypeCurrencyTransferred,
				event.ActorTypeSystem, "", "token", enc.LootToken.String(), now,
				event.CurrencyPayload{AccountID: enc.LootHolder, To: actor.AccountID, Amount: 1, Reason: "loot"}))
		}
	}
	if next.State == StateResolved {
		events = append(events, buildEvent(enc.ID, event.TypeEncounterResolved,
			event.ActorTypeSystem, "", "encounter", enc.ID, now,
			event.EncounterResolvedPayload{
				Outcome: string(next.Outcome),
				Winner:  next.Winner(),
				Turns:   next.Turn,
			}))
	}

	return TurnDecision{
		Encounter: next,
		Record:    record,
		Events:    events,
		Ops:       ops,
	}, nil
}

func wrapEntropy(err error, stage string) error {
	if errors.Is(err, entropy.ErrExhausted) {
		return apperrors.Wrap(apperrors.CodeEntropyExhausted, stage+": entropy budget exhausted", err)
	}
	return apperrors.Wrap(apperrors.CodeUnknown, stage, err)
}

func buildEvent(encounterID string, eventType event.Type, actorType event.ActorType, actorID, entityType, entityID string, now time.Time, payload any) event.Event {
	payloadJSON, _ := json.Marshal(payload)
	return event.Event{
		EncounterID: encounterID,
		Timestamp:   now,
		Type:        eventType,
		ActorType:   actorType,
		ActorID:     actorID,
		EntityType:  entityType,
		EntityID:    entityID,
		PayloadJSON: payloadJSON,
	}
}
