// Package entropy provides deterministic bounded randomness over a
// host-supplied seed.
//
// # Determinism
//
// An Adapter derives every value by hashing the seed together with a
// monotonically increasing cursor. Given the same seed and the same sequence
// of calls (including Advance), an Adapter produces bit-exact identical
// output across runs. This is required so a turn can be re-executed during
// audit or dispute resolution.
//
// # Cursor schedule
//
// The cursor increments on every draw, including draws discarded by
// rejection sampling. Advance moves the cursor without consuming the draw
// budget, which supports commit-reveal style replay where a prefix of the
// schedule is skipped.
//
// # Exhaustion
//
// Each Adapter carries a draw budget modelling the amount of entropy the
// host supplies for a single execution. When the budget is spent,
// ErrExhausted is returned before any value is produced, so a caller can
// abort its in-progress work without partial state.
package entropy

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// DefaultDrawBudget is the number of hash draws an Adapter permits per
// execution unless configured otherwise.
const DefaultDrawBudget = 512

// ErrExhausted indicates the adapter's draw budget for this execution is
// spent. The call that received it produced no value and changed no state.
var ErrExhausted = errors.New("entropy budget exhausted")

// Adapter yields deterministic bounded pseudo-random values from a seed.
type Adapter struct {
	seed   []byte
	cursor uint64
	budget uint64
	drawn  uint64
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithDrawBudget overrides the default per-execution draw budget.
func WithDrawBudget(budget uint64) Option {
	return func(a *Adapter) {
		a.budget = budget
	}
}

// New creates an Adapter over the provided seed bytes.
func New(seed []byte, opts ...Option) *Adapter {
	a := &Adapter{
		seed:   append([]byte(nil), seed...),
		budget: DefaultDrawBudget,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cursor returns the current cursor position. The pair (seed, cursor) fully
// identifies the next draw.
func (a *Adapter) Cursor() uint64 {
	return a.cursor
}

// Advance moves the cursor forward by n positions without consuming values.
func (a *Adapter) Advance(n uint64) {
	a.cursor += n
}

// NextBounded returns a uniform value in [0, upperExclusive).
//
// Uniformity uses rejection sampling: raw draws above the largest multiple
// of upperExclusive are discarded and redrawn. Discarded draws still advance
// the cursor and spend budget, keeping the schedule deterministic.
func (a *Adapter) NextBounded(upperExclusive uint32) (uint32, error) {
	if upperExclusive == 0 {
		return 0, fmt.Errorf("upper bound must be positive")
	}

	bound := uint64(upperExclusive)
	limit := ((math.MaxUint32 + 1) / bound) * bound

	for {
		raw, err := a.draw()
		if err != nil {
			return 0, err
		}
		if uint64(raw) < limit {
			return uint32(uint64(raw) % bound), nil
		}
	}
}

// InRange returns a uniform value in the inclusive range [min, max].
func (a *Adapter) InRange(min, max uint32) (uint32, error) {
	if min > max {
		return 0, fmt.Errorf("range start %d exceeds end %d", min, max)
	}
	value, err := a.NextBounded(max - min + 1)
	if err != nil {
		return 0, err
	}
	return min + value, nil
}

// Chance draws once and reports success with the given probability expressed
// as a percentage between 0 and 100. The draw is always consumed.
func (a *Adapter) Chance(percent uint32) (bool, error) {
	value, err := a.NextBounded(100)
	if err != nil {
		return false, err
	}
	return value < percent, nil
}

// draw hashes (seed ‖ cursor) into a raw 32-bit value, advancing the cursor.
func (a *Adapter) draw() (uint32, error) {
	if a.drawn >= a.budget {
		return 0, ErrExhausted
	}

	var cursorBytes [8]byte
	binary.LittleEndian.PutUint64(cursorBytes[:], a.cursor)

	h := sha256.New()
	h.Write(a.seed)
	h.Write(cursorBytes[:])
	digest := h.Sum(nil)

	a.cursor++
	a.drawn++

	return binary.LittleEndian.Uint32(digest[:4]), nil
}
