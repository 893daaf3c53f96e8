package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/louisbranch/emberarena/internal/core/entropy"
	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
	"github.com/louisbranch/emberarena/internal/services/arena/ledger"
)

// Shop prices always read the live ruleset, never an encounter snapshot.
// Every purchase burns gold and commits in one ledger batch.

// BuyWeapon burns the weapon price and mints a new weapon token with a
// randomly drawn strength.
func (e *Engine) BuyWeapon(ctx context.Context, accountID string) (token.ID, error) {
	ctx, span := e.tracer.Start(ctx, "arena.BuyWeapon")
	defer span.End()

	if _, err := e.store.GetCombatant(ctx, accountID); err != nil {
		return token.ID{}, err
	}
	if err := e.requireNoActiveEncounter(ctx, accountID); err != nil {
		return token.ID{}, err
	}

	cfg, err := e.Config(ctx)
	if err != nil {
		return token.ID{}, err
	}
	if err := e.requireGold(ctx, accountID, cfg.GoldClass, cfg.WeaponCost); err != nil {
		return token.ID{}, err
	}

	adapter := entropy.New(e.newSeed())
	strength, err := adapter.InRange(cfg.PurchasedWeaponStrength.Start, cfg.PurchasedWeaponStrength.End)
	if err != nil {
		return token.ID{}, apperrors.Wrap(apperrors.CodeEntropyExhausted, "weapon strength draw", err)
	}

	weapon := token.ID{
		Class:        cfg.WeaponClass,
		Slot:         token.SlotWeapon,
		StrengthTier: strength,
		Nonce:        e.newNonce(),
	}
	metadata := token.EncodeMetadata(token.Metadata{Slot: token.SlotWeapon, Strength: strength})

	ops := []ledger.Op{
		ledger.Burn(ledger.AccountID(accountID), token.Currency(cfg.GoldClass), cfg.WeaponCost),
		ledger.Mint(ledger.AccountID(accountID), weapon, 1),
		ledger.SetMetadata(weapon, token.AttributeKey, metadata),
	}
	if err := e.ledger.Apply(ctx, ops); err != nil {
		return token.ID{}, apperrors.Wrap(apperrors.CodeAssetCommitFailed, "commit weapon purchase", err)
	}

	if err := e.journalPurchase(ctx, accountID, cfg.WeaponCost, "weapon"); err != nil {
		return token.ID{}, err
	}
	if _, err := e.emitter.EmitTokenMinted(ctx, accountID, event.TokenMintedPayload{
		AccountID: accountID,
		Token:     weapon.String(),
		Strength:  strength,
	}); err != nil {
		return token.ID{}, fmt.Errorf("journal weapon mint: %w", err)
	}
	return weapon, nil
}

// BuyPotion burns the potion price and adds a potion to the combatant.
func (e *Engine) BuyPotion(ctx context.Context, accountID string) (combatant.Combatant, error) {
	ctx, span := e.tracer.Start(ctx, "arena.BuyPotion")
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
	if err := e.requireGold(ctx, accountID, cfg.GoldClass, cfg.PotionCost); err != nil {
		return combatant.Combatant{}, err
	}

	ops := []ledger.Op{
		ledger.Burn(ledger.AccountID(accountID), token.Currency(cfg.GoldClass), cfg.PotionCost),
	}
	if err := e.ledger.Apply(ctx, ops); err != nil {
		return combatant.Combatant{}, apperrors.Wrap(apperrors.CodeAssetCommitFailed, "commit potion purchase", err)
	}

	c.PotionCount++
	if err := e.store.PutCombatant(ctx, c); err != nil {
		return combatant.Combatant{}, fmt.Errorf("persist combatant: %w", err)
	}
	if err := e.journalPurchase(ctx, accountID, cfg.PotionCost, "potion"); err != nil {
		return combatant.Combatant{}, err
	}
	return c, nil
}

// Rest burns the rest price and restores the combatant to full health.
func (e *Engine) Rest(ctx context.Context, accountID string) (combatant.Combatant, error) {
	ctx, span := e.tracer.Start(ctx, "arena.Rest")
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
	if err := e.requireGold(ctx, accountID, cfg.GoldClass, cfg.RestCost); err != nil {
		return combatant.Combatant{}, err
	}

	ops := []ledger.Op{
		ledger.Burn(ledger.AccountID(accountID), token.Currency(cfg.GoldClass), cfg.RestCost),
	}
	if err := e.ledger.Apply(ctx, ops); err != nil {
		return combatant.Combatant{}, apperrors.Wrap(apperrors.CodeAssetCommitFailed, "commit rest", err)
	}

	c.Health = c.MaxHealth
	c.Defeated = false
	if err := e.store.PutCombatant(ctx, c); err != nil {
		return combatant.Combatant{}, fmt.Errorf("persist combatant: %w", err)
	}
	if err := e.journalPurchase(ctx, accountID, cfg.RestCost, "rest"); err != nil {
		return combatant.Combatant{}, err
	}
	return c, nil
}

// UsePotion consumes one potion and restores the combatant to full health.
func (e *Engine) UsePotion(ctx context.Context, accountID string) (combatant.Combatant, error) {
	ctx, span := e.tracer.Start(ctx, "arena.UsePotion")
	defer span.End()

	c, err := e.store.GetCombatant(ctx, accountID)
	if err != nil {
		return combatant.Combatant{}, err
	}
	if err := e.requireNoActiveEncounter(ctx, accountID); err != nil {
		return combatant.Combatant{}, err
	}
	if c.PotionCount == 0 {
		return combatant.Combatant{}, apperrors.New(apperrors.CodeCurrencyInsufficient, "no potions held")
	}

	c.PotionCount--
	c.Health = c.MaxHealth
	c.Defeated = false
	if err := e.store.PutCombatant(ctx, c); err != nil {
		return combatant.Combatant{}, fmt.Errorf("persist combatant: %w", err)
	}
	return c, nil
}

// requireGold fails fast with a precise error before staging a burn that the
// ledger would reject anyway.
func (e *Engine) requireGold(ctx context.Context, accountID string, goldClass, cost uint64) error {
	balance, err := e.ledger.BalanceOf(ctx, ledger.AccountID(accountID), token.Currency(goldClass))
	if err != nil {
		return fmt.Errorf("read gold balance: %w", err)
	}
	if balance < cost {
		return apperrors.WithMetadata(apperrors.CodeCurrencyInsufficient,
			"not enough gold", map[string]string{
				"balance": strconv.FormatUint(balance, 10),
				"cost":    strconv.FormatUint(cost, 10),
			})
	}
	return nil
}

func (e *Engine) journalPurchase(ctx context.Context, accountID string, amount uint64, reason string) error {
	if _, err := e.emitter.EmitCurrency(ctx, event.TypeCurrencyBurned, accountID, event.CurrencyPayload{
		AccountID: accountID,
		Amount:    amount,
		Reason:    reason,
	}); err != nil {
		return fmt.Errorf("journal %s purchase: %w", reason, err)
	}
	return nil
}
