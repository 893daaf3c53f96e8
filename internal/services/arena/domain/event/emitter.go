package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store defines the interface for persisting events.
type Store interface {
	AppendEvent(ctx context.Context, evt Event) (Event, error)
}

// Emitter provides event emission capabilities for state mutations.
type Emitter struct {
	store Store
	now   func() time.Time
}

// NewEmitter creates a new event emitter.
func NewEmitter(store Store) *Emitter {
	return &Emitter{
		store: store,
		now:   time.Now,
	}
}

// EmitInput describes the input for emitting an event.
type EmitInput struct {
	EncounterID string
	Type        Type
	ActorType   ActorType
	ActorID     string
	EntityType  string
	EntityID    string
	Payload     any
}

// Emit appends an event to the journal.
func (e *Emitter) Emit(ctx context.Context, input EmitInput) (Event, error) {
	if e.store == nil {
		return Event{}, fmt.Errorf("event store is not configured")
	}

	payloadJSON, err := json.Marshal(input.Payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal event payload: %w", err)
	}

	evt := Event{
		EncounterID: input.EncounterID,
		Timestamp:   e.now().UTC(),
		Type:        input.Type,
		ActorType:   input.ActorType,
		ActorID:     input.ActorID,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		PayloadJSON: payloadJSON,
	}

	return e.store.AppendEvent(ctx, evt)
}

// EmitAll appends pre-built events in order, preserving their payloads.
// It stops at the first failure.
func (e *Emitter) EmitAll(ctx context.Context, events []Event) ([]Event, error) {
	if e.store == nil {
		return nil, fmt.Errorf("event store is not configured")
	}

	appended := make([]Event, 0, len(events))
	for _, evt := range events {
		if evt.Timestamp.IsZero() {
			evt.Timestamp = e.now().UTC()
		}
		stored, err := e.store.AppendEvent(ctx, evt)
		if err != nil {
			return appended, fmt.Errorf("append %s event: %w", evt.Type, err)
		}
		appended = append(appended, stored)
	}
	return appended, nil
}

// EmitCombatantRegistered emits a combatant.registered event.
func (e *Emitter) EmitCombatantRegistered(ctx context.Context, accountID string, payload CombatantRegisteredPayload) (Event, error) {
	return e.Emit(ctx, EmitInput{
		Type:       TypeCombatantRegistered,
		ActorType:  ActorTypePlayer,
		ActorID:    accountID,
		EntityType: "combatant",
		EntityID:   accountID,
		Payload:    payload,
	})
}

// EmitItemEquipped emits an equipment.equipped event.
func (e *Emitter) EmitItemEquipped(ctx context.Context, accountID string, payload EquipmentPayload) (Event, error) {
	return e.Emit(ctx, EmitInput{
		Type:       TypeItemEquipped,
		ActorType:  ActorTypePlayer,
		ActorID:    accountID,
		EntityType: "token",
		EntityID:   payload.Token,
		Payload:    payload,
	})
}

// EmitItemUnequipped emits an equipment.unequipped event.
func (e *Emitter) EmitItemUnequipped(ctx context.Context, accountID string, payload EquipmentPayload) (Event, error) {
	return e.Emit(ctx, EmitInput{
		Type:       TypeItemUnequipped,
		ActorType:  ActorTypePlayer,
		ActorID:    accountID,
		EntityType: "token",
		EntityID:   payload.Token,
		Payload:    payload,
	})
}

// EmitCurrency emits a currency mint, burn, or transfer event.
func (e *Emitter) EmitCurrency(ctx context.Context, eventType Type, accountID string, payload CurrencyPayload) (Event, error) {
	return e.Emit(ctx, EmitInput{
		Type:       eventType,
		ActorType:  ActorTypeSystem,
		EntityType: "currency",
		EntityID:   accountID,
		Payload:    payload,
	})
}

// EmitTokenMinted emits a token.minted event.
func (e *Emitter) EmitTokenMinted(ctx context.Context, accountID string, payload TokenMintedPayload) (Event, error) {
	return e.Emit(ctx, EmitInput{
		Type:       TypeTokenMinted,
		ActorType:  ActorTypeSystem,
		EntityType: "token",
		EntityID:   payload.Token,
		Payload:    payload,
	})
}

// EmitConfigChanged emits a config.changed event.
func (e *Emitter) EmitConfigChanged(ctx context.Context, actorID string, payload ConfigChangedPayload) (Event, error) {
	return e.Emit(ctx, EmitInput{
		Type:       TypeConfigChanged,
		ActorType:  ActorTypeAdmin,
		ActorID:    actorID,
		EntityType: "config",
		EntityID:   "config",
		Payload:    payload,
	})
}
