// Package memory provides an in-memory asset ledger for tests and local
// simulation. It enforces the same invariants a host chain would: balances
// never go negative and frozen tokens cannot be transferred or burned.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
	"github.com/louisbranch/emberarena/internal/services/arena/ledger"
)

type state struct {
	balances map[ledger.AccountID]map[token.ID]uint64
	frozen   map[token.ID]bool
	metadata map[token.ID]map[string]string
}

func newState() *state {
	return &state{
		balances: make(map[ledger.AccountID]map[token.ID]uint64),
		frozen:   make(map[token.ID]bool),
		metadata: make(map[token.ID]map[string]string),
	}
}

func (s *state) clone() *state {
	next := newState()
	for account, assets := range s.balances {
		held := make(map[token.ID]uint64, len(assets))
		for asset, amount := range assets {
			held[asset] = amount
		}
		next.balances[account] = held
	}
	for asset, frozen := range s.frozen {
		next.frozen[asset] = frozen
	}
	for asset, attrs := range s.metadata {
		copied := make(map[string]string, len(attrs))
		for key, value := range attrs {
			copied[key] = value
		}
		next.metadata[asset] = copied
	}
	return next
}

// Ledger is an in-memory ledger.Port implementation.
type Ledger struct {
	mu       sync.Mutex
	state    *state
	applyErr error
	applied  int
}

// New creates an empty in-memory ledger.
func New() *Ledger {
	return &Ledger{state: newState()}
}

// FailNextApply makes the next Apply call fail with err without mutating
// state, simulating a host ledger rejection.
func (l *Ledger) FailNextApply(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applyErr = err
}

// AppliedBatches returns the number of successfully committed batches.
func (l *Ledger) AppliedBatches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applied
}

// BalanceOf implements ledger.Port.
func (l *Ledger) BalanceOf(ctx context.Context, account ledger.AccountID, asset token.ID) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.balances[account][asset], nil
}

// IsFrozen implements ledger.Port.
func (l *Ledger) IsFrozen(ctx context.Context, asset token.ID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.frozen[asset], nil
}

// GetMetadata implements ledger.Port.
func (l *Ledger) GetMetadata(ctx context.Context, asset token.ID, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	value, ok := l.state.metadata[asset][key]
	return value, ok, nil
}

// Apply implements ledger.Port. The batch is applied to a copy of the
// ledger state; the copy replaces the live state only if every operation
// succeeds, so a failed batch has no observable effect.
func (l *Ledger) Apply(ctx context.Context, ops []ledger.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.applyErr != nil {
		err := l.applyErr
		l.applyErr = nil
		return err
	}

	next := l.state.clone()
	for _, op := range ops {
		if err := next.apply(op); err != nil {
			return fmt.Errorf("apply %s: %w", op, err)
		}
	}

	l.state = next
	l.applied++
	return nil
}

func (s *state) apply(op ledger.Op) error {
	switch op.Kind {
	case ledger.OpMint:
		if op.Amount == 0 {
			return fmt.Errorf("mint amount must be positive")
		}
		s.credit(op.Account, op.Asset, op.Amount)
		return nil

	case ledger.OpBurn:
		if s.frozen[op.Asset] {
			return fmt.Errorf("token is frozen")
		}
		return s.debit(op.Account, op.Asset, op.Amount)

	case ledger.OpTransfer:
		if s.frozen[op.Asset] {
			return fmt.Errorf("token is frozen")
		}
		if err := s.debit(op.Account, op.Asset, op.Amount); err != nil {
			return err
		}
		s.credit(op.To, op.Asset, op.Amount)
		return nil

	case ledger.OpFreeze:
		if s.frozen[op.Asset] {
			return fmt.Errorf("token already frozen")
		}
		s.frozen[op.Asset] = true
		return nil

	case ledger.OpUnfreeze:
		if !s.frozen[op.Asset] {
			return fmt.Errorf("token is not frozen")
		}
		delete(s.frozen, op.Asset)
		return nil

	case ledger.OpSetMetadata:
		attrs, ok := s.metadata[op.Asset]
		if !ok {
			attrs = make(map[string]string)
			s.metadata[op.Asset] = attrs
		}
		attrs[op.Key] = op.Value
		return nil

	default:
		return fmt.Errorf("unknown op kind %q", op.Kind)
	}
}

func (s *state) credit(account ledger.AccountID, asset token.ID, amount uint64) {
	held, ok := s.balances[account]
	if !ok {
		held = make(map[token.ID]uint64)
		s.balances[account] = held
	}
	held[asset] += amount
}

func (s *state) debit(account ledger.AccountID, asset token.ID, amount uint64) error {
	held := s.balances[account]
	if held[asset] < amount {
		return fmt.Errorf("insufficient balance: have %d, need %d", held[asset], amount)
	}
	held[asset] -= amount
	if held[asset] == 0 {
		delete(held, asset)
	}
	return nil
}
