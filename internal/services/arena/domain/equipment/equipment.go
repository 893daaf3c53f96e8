// Package equipment binds ledger-held tokens to combatant equipment slots.
//
// Freezing a token and recording its equipment reference are two views of
// one fact: a token is frozen exactly while some combatant references it.
// Both sides of the fact change together or not at all.
package equipment

import (
	"context"
	"strconv"

	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
	"github.com/louisbranch/emberarena/internal/services/arena/ledger"
)

// Binding couples equipment slot changes to ledger freeze state.
type Binding struct {
	ledger ledger.Port
}

// NewBinding creates a binding over the given ledger port.
func NewBinding(port ledger.Port) *Binding {
	return &Binding{ledger: port}
}

// Equip validates ownership, freeze state, slot capacity, and metadata, then
// freezes the token and returns the combatant with the reference recorded.
// On any failure the combatant is returned unchanged and the token stays
// unfrozen.
func (b *Binding) Equip(ctx context.Context, c combatant.Combatant, tok token.ID, slotLimit uint32) (combatant.Combatant, error) {
	balance, err := b.ledger.BalanceOf(ctx, ledger.AccountID(c.AccountID), tok)
	if err != nil {
		return c, apperrors.Wrap(apperrors.CodeUnknown, "read token balance", err)
	}
	if balance == 0 {
		return c, apperrors.WithMetadata(apperrors.CodeEquipmentNotOwned,
			"token is not held by this account",
			map[string]string{"token": tok.String()})
	}

	frozen, err := b.ledger.IsFrozen(ctx, tok)
	if err != nil {
		return c, apperrors.Wrap(apperrors.CodeUnknown, "read token freeze state", err)
	}
	if frozen {
		return c, apperrors.WithMetadata(apperrors.CodeEquipmentAlreadyFrozen,
			"token is already frozen",
			map[string]string{"token": tok.String()})
	}

	if uint32(len(c.Equipment)) >= slotLimit {
		return c, apperrors.WithMetadata(apperrors.CodeEquipmentSlotFull,
			"equipment slots are full",
			map[string]string{"limit": strconv.FormatUint(uint64(slotLimit), 10)})
	}

	value, ok, err := b.ledger.GetMetadata(ctx, tok, token.AttributeKey)
	if err != nil {
		return c, apperrors.Wrap(apperrors.CodeUnknown, "read token metadata", err)
	}
	if !ok {
		return c, apperrors.WithMetadata(apperrors.CodeEquipmentNoMetadata,
			"token has no equipment attribute",
			map[string]string{"token": tok.String()})
	}
	meta, err := token.DecodeMetadata(value)
	if err != nil {
		return c, apperrors.Wrap(apperrors.CodeEquipmentNoMetadata, "token equipment attribute is malformed", err)
	}

	if err := b.ledger.Apply(ctx, []ledger.Op{ledger.Freeze(tok)}); err != nil {
		return c, apperrors.Wrap(apperrors.CodeAssetCommitFailed, "freeze token", err)
	}
	return c.WithEquipped(combatant.EquippedItem{Token: tok, Strength: meta.Strength}), nil
}

// Unequip unfreezes the token and returns the combatant with the reference
// removed. On any failure the combatant is returned unchanged and the token
// stays frozen.
func (b *Binding) Unequip(ctx context.Context, c combatant.Combatant, tok token.ID) (combatant.Combatant, error) {
	if _, ok := c.Equipped(tok); !ok {
		return c, apperrors.WithMetadata(apperrors.CodeEquipmentNotEquipped,
			"token is not equipped",
			map[string]string{"token": tok.String()})
	}

	if err := b.ledger.Apply(ctx, []ledger.Op{ledger.Unfreeze(tok)}); err != nil {
		return c, apperrors.Wrap(apperrors.CodeAssetCommitFailed, "unfreeze token", err)
	}
	return c.WithoutEquipped(tok), nil
}
