package app

import (
	"context"
	"fmt"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
)

// Equip freezes a held token and records it in the account's equipment.
// Equipment changes are rejected mid-encounter; the encounter fights with
// the stats it captured at creation.
func (e *Engine) Equip(ctx context.Context, accountID string, tok token.ID) (combatant.Combatant, error) {
	ctx, span := e.tracer.Start(ctx, "arena.Equip")
	defer span.End()

	c, err := e.store.GetCombatant(ctx, accountID)
	if err != nil {
		return combatant.Combatant{}, err
	}
	if err := e.requireNoActiveEncounter(ctx, accountID); err != nil {
		return combatant.Combatant{}, err
	}

	cfg, err := e.Config(ctx)
	if err != nil {
		return combatant.Combatant{}, err
	}

	c, err = e.binding.Equip(ctx, c, tok, cfg.EquipmentSlotLimit)
	if err != nil {
		return combatant.Combatant{}, err
	}
	if err := e.store.PutCombatant(ctx, c); err != nil {
		return combatant.Combatant{}, fmt.Errorf("persist combatant: %w", err)
	}

	item, _ := c.Equipped(tok)
	if _, err := e.emitter.EmitItemEquipped(ctx, accountID, event.EquipmentPayload{
		AccountID: accountID,
		Token:     tok.String(),
		Strength:  item.Strength,
	}); err != nil {
		return combatant.Combatant{}, fmt.Errorf("journal equip: %w", err)
	}
	return c, nil
}

// Unequip removes a token from the account's equipment and unfreezes it.
func (e *Engine) Unequip(ctx context.Context, accountID string, tok token.ID) (combatant.Combatant, error) {
	ctx, span := e.tracer.Start(ctx, "arena.Unequip")
	defer span.End()

	c, err := e.store.GetCombatant(ctx, accountID)
	if err != nil {
		return combatant.Combatant{}, err
	}
	if err := e.requireNoActiveEncounter(ctx, accountID); err != nil {
		return combatant.Combatant{}, err
	}

	c, err = e.binding.Unequip(ctx, c, tok)
	if err != nil {
		return combatant.Combatant{}, err
	}
	if err := e.store.PutCombatant(ctx, c); err != nil {
		return combatant.Combatant{}, fmt.Errorf("persist combatant: %w", err)
	}

	if _, err := e.emitter.EmitItemUnequipped(ctx, accountID, event.EquipmentPayload{
		AccountID: accountID,
		Token:     tok.String(),
	}); err != nil {
		return combatant.Combatant{}, fmt.Errorf("journal unequip: %w", err)
	}
	return c, nil
}
