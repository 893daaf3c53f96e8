package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/emberarena/internal/core/entropy"
	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
	"github.com/louisbranch/emberarena/internal/services/arena/ledger"
)

// RegisterCombatant creates a roster entry for the account and mints its
// starting weapon, already equipped. The mint, metadata write, and freeze
// commit as one ledger batch before the roster record is persisted.
func (e *Engine) RegisterCombatant(ctx context.Context, accountID string) (combatant.Combatant, token.ID, error) {
	ctx, span := e.tracer.Start(ctx, "arena.RegisterCombatant")
	defer span.End()
	span.SetAttributes(attribute.String("account_id", accountID))

	_, err := e.store.GetCombatant(ctx, accountID)
	if err == nil {
		return combatant.Combatant{}, token.ID{}, apperrors.WithMetadata(
			apperrors.CodeCombatantAlreadyRegistered,
			"account already has a combatant",
			map[string]string{"account_id": accountID})
	}
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return combatant.Combatant{}, token.ID{}, fmt.Errorf("load combatant: %w", err)
	}

	cfg, err := e.Config(ctx)
	if err != nil {
		return combatant.Combatant{}, token.ID{}, err
	}

	c, err := combatant.New(accountID, cfg.MaxHealth, baseDamage, baseStrength, baseDefense, baseInitiative)
	if err != nil {
		return combatant.Combatant{}, token.ID{}, err
	}

	adapter := entropy.New(e.newSeed())
	strength, err := adapter.InRange(cfg.StartingWeaponStrength.Start, cfg.StartingWeaponStrength.End)
	if err != nil {
		return combatant.Combatant{}, token.ID{}, apperrors.Wrap(apperrors.CodeEntropyExhausted, "starting weapon draw", err)
	}

	weapon := token.ID{
		Class:        cfg.WeaponClass,
		Slot:         token.SlotWeapon,
		StrengthTier: strength,
		Nonce:        e.newNonce(),
	}
	metadata := token.EncodeMetadata(token.Metadata{Slot: token.SlotWeapon, Strength: strength})

	ops := []ledger.Op{
		ledger.Mint(ledger.AccountID(accountID), weapon, 1),
		ledger.SetMetadata(weapon, token.AttributeKey, metadata),
		ledger.Freeze(weapon),
	}
	if err := e.ledger.Apply(ctx, ops); err != nil {
		return combatant.Combatant{}, token.ID{}, apperrors.Wrap(apperrors.CodeAssetCommitFailed, "commit starting weapon", err)
	}

	c = c.WithEquipped(combatant.EquippedItem{Token: weapon, Strength: strength})
	if err := e.store.PutCombatant(ctx, c); err != nil {
		return combatant.Combatant{}, token.ID{}, fmt.Errorf("persist combatant: %w", err)
	}

	if _, err := e.emitter.EmitTokenMinted(ctx, accountID, event.TokenMintedPayload{
		AccountID: accountID,
		Token:     weapon.String(),
		Strength:  strength,
	}); err != nil {
		return combatant.Combatant{}, token.ID{}, fmt.Errorf("journal token mint: %w", err)
	}
	if _, err := e.emitter.EmitCombatantRegistered(ctx, accountID, event.CombatantRegisteredPayload{
		AccountID:      accountID,
		WeaponToken:    weapon.String(),
		WeaponStrength: strength,
	}); err != nil {
		return combatant.Combatant{}, token.ID{}, fmt.Errorf("journal registration: %w", err)
	}

	return c, weapon, nil
}

// GetCombatant returns the roster entry for the account.
func (e *Engine) GetCombatant(ctx context.Context, accountID string) (combatant.Combatant, error) {
	return e.store.GetCombatant(ctx, accountID)
}

// ListCombatants returns every roster entry.
func (e *Engine) ListCombatants(ctx context.Context) ([]combatant.Combatant, error) {
	return e.store.ListCombatants(ctx)
}

// ListEvents returns journal events for an encounter stream, or the global
// stream when encounterID is empty.
func (e *Engine) ListEvents(ctx context.Context, encounterID string, afterSeq uint64, limit int) ([]event.Event, error) {
	return e.store.ListEvents(ctx, encounterID, afterSeq, limit)
}

// GoldBalance returns the account's fungible gold balance.
func (e *Engine) GoldBalance(ctx context.Context, accountID string) (uint64, error) {
	cfg, err := e.Config(ctx)
	if err != nil {
		return 0, err
	}
	return e.ledger.BalanceOf(ctx, ledger.AccountID(accountID), token.Currency(cfg.GoldClass))
}
