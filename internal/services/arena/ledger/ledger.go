// Package ledger defines the contract-facing port for asset operations.
//
// The engine computes every turn in isolated local state and hands the
// resulting asset mutations to the port as a single batch. Apply is
// all-or-nothing: either every operation in the batch takes effect or none
// does. Any re-entrant call arriving before Apply commits observes the
// pre-turn asset state.
package ledger

import (
	"context"
	"fmt"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
)

// AccountID identifies an asset-holding account.
type AccountID string

// OpKind enumerates the asset mutations the engine can stage.
type OpKind string

const (
	OpMint        OpKind = "mint"
	OpBurn        OpKind = "burn"
	OpTransfer    OpKind = "transfer"
	OpFreeze      OpKind = "freeze"
	OpUnfreeze    OpKind = "unfreeze"
	OpSetMetadata OpKind = "set_metadata"
)

// Op is one staged asset mutation.
type Op struct {
	Kind    OpKind
	Account AccountID
	To      AccountID
	Asset   token.ID
	Amount  uint64
	Key     string
	Value   string
}

// Mint stages minting amount of asset to account.
func Mint(account AccountID, asset token.ID, amount uint64) Op {
	return Op{Kind: OpMint, Account: account, Asset: asset, Amount: amount}
}

// Burn stages burning amount of asset held by account.
func Burn(account AccountID, asset token.ID, amount uint64) Op {
	return Op{Kind: OpBurn, Account: account, Asset: asset, Amount: amount}
}

// Transfer stages moving amount of asset between accounts.
func Transfer(from, to AccountID, asset token.ID, amount uint64) Op {
	return Op{Kind: OpTransfer, Account: from, To: to, Asset: asset, Amount: amount}
}

// Freeze stages locking a token against transfer and burn.
func Freeze(asset token.ID) Op {
	return Op{Kind: OpFreeze, Asset: asset}
}

// Unfreeze stages releasing a frozen token back to free circulation.
func Unfreeze(asset token.ID) Op {
	return Op{Kind: OpUnfreeze, Asset: asset}
}

// SetMetadata stages writing a metadata attribute on a token.
func SetMetadata(asset token.ID, key, value string) Op {
	return Op{Kind: OpSetMetadata, Asset: asset, Key: key, Value: value}
}

// String describes the op for logs and error metadata.
func (o Op) String() string {
	switch o.Kind {
	case OpTransfer:
		return fmt.Sprintf("%s %d of %s from %s to %s", o.Kind, o.Amount, o.Asset, o.Account, o.To)
	case OpFreeze, OpUnfreeze:
		return fmt.Sprintf("%s %s", o.Kind, o.Asset)
	case OpSetMetadata:
		return fmt.Sprintf("%s %s %s", o.Kind, o.Asset, o.Key)
	default:
		return fmt.Sprintf("%s %d of %s for %s", o.Kind, o.Amount, o.Asset, o.Account)
	}
}

// Port is the transactional capability the engine invokes for asset state.
//
// Reads are point-in-time lookups; Apply commits a batch of mutations
// atomically. A failed Apply leaves asset state untouched and the caller
// must roll back its own in-progress work.
type Port interface {
	// BalanceOf returns the amount of asset held by account.
	BalanceOf(ctx context.Context, account AccountID, asset token.ID) (uint64, error)
	// IsFrozen reports whether the token is locked for combat.
	IsFrozen(ctx context.Context, asset token.ID) (bool, error)
	// GetMetadata reads a metadata attribute; ok is false when absent.
	GetMetadata(ctx context.Context, asset token.ID, key string) (value string, ok bool, err error)
	// Apply commits the batch all-or-nothing.
	Apply(ctx context.Context, ops []Op) error
}
