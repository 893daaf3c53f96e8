// Package encounter models a turn-based duel between two combatants.
//
// Turn resolution is a pure decision: given an encounter and a timestamp it
// returns the next encounter value, the turn record, the journal events, and
// the asset operations the turn implies. Nothing is persisted here; the
// engine commits the asset operations first and the encounter after.
package encounter

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/gameconfig"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/token"
)

// State is the lifecycle state of an encounter.
type State string

const (
	// StateCreated means no turn has resolved yet.
	StateCreated State = "created"
	// StateTurnInProgress means at least one turn has resolved and more
	// are accepted.
	StateTurnInProgress State = "turn_in_progress"
	// StateResolved means the encounter reached a terminal outcome.
	StateResolved State = "resolved"
)

// Outcome is the terminal result of an encounter.
type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeAWon       Outcome = "a_won"
	OutcomeBWon       Outcome = "b_won"
	OutcomeDraw       Outcome = "draw"
)

// ActionAttack is the only turn action. One attack resolves per turn.
const ActionAttack = "attack"

// TurnRecord is the immutable record of one resolved turn. Together with the
// pinned seed it is sufficient to re-execute the turn bit-exactly.
type TurnRecord struct {
	Turn            uint32    `json:"turn"`
	ActorAccount    string    `json:"actor_account"`
	Action          string    `json:"action"`
	CursorBefore    uint64    `json:"cursor_before"`
	CursorAfter     uint64    `json:"cursor_after"`
	VariancePct     uint32    `json:"variance_pct"`
	Damage          uint32    `json:"damage"`
	DefenderAccount string    `json:"defender_account"`
	DefenderHealth  uint32    `json:"defender_health"`
	Timestamp       time.Time `json:"timestamp"`
}

// Encounter is a duel between combatants A and B under a pinned ruleset.
type Encounter struct {
	ID string `json:"id"`

	A combatant.Combatant `json:"a"`
	B combatant.Combatant `json:"b"`

	// Turn counts completed turns. The next resolution is turn Turn+1.
	Turn    uint32  `json:"turn"`
	State   State   `json:"state"`
	Outcome Outcome `json:"outcome"`

	// Config is the ruleset snapshot pinned at creation.
	Config gameconfig.Snapshot `json:"config"`

	// Seed and Cursor identify the entropy schedule position. Seed never
	// changes after creation; Cursor advances with every resolved turn.
	Seed   []byte `json:"seed"`
	Cursor uint64 `json:"cursor"`

	History []TurnRecord `json:"history"`

	// LootToken, when set, is transferred to the victor. LootHolder is the
	// account holding it during the encounter.
	LootToken  *token.ID `json:"loot_token,omitempty"`
	LootHolder string    `json:"loot_holder,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an encounter between a and b under the pinned snapshot.
func New(id string, a, b combatant.Combatant, cfg gameconfig.Snapshot, seed []byte, now time.Time) (Encounter, error) {
	if strings.TrimSpace(id) == "" {
		return Encounter{}, apperrors.New(apperrors.CodeEncounterEmptyID, "encounter id is required")
	}
	if a.AccountID == b.AccountID {
		return Encounter{}, apperrors.WithMetadata(apperrors.CodeEncounterSameCombatant,
			"a combatant cannot fight itself",
			map[string]string{"account_id": a.AccountID})
	}
	if cfg.MaxTurns == 0 {
		return Encounter{}, apperrors.New(apperrors.CodeEncounterInvalidTurns, "max turns must be positive")
	}
	return Encounter{
		ID:        id,
		A:         a,
		B:         b,
		State:     StateCreated,
		Outcome:   OutcomeInProgress,
		Config:    cfg,
		Seed:      append([]byte(nil), seed...),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Active reports whether the encounter still accepts turns.
func (e Encounter) Active() bool {
	return e.State != StateResolved
}

// Combatant returns the combatant for the given account.
func (e Encounter) Combatant(accountID string) (combatant.Combatant, bool) {
	switch accountID {
	case e.A.AccountID:
		return e.A, true
	case e.B.AccountID:
		return e.B, true
	}
	return combatant.Combatant{}, false
}

// Winner returns the winning account for terminal outcomes, or empty.
func (e Encounter) Winner() string {
	switch e.Outcome {
	case OutcomeAWon:
		return e.A.AccountID
	case OutcomeBWon:
		return e.B.AccountID
	}
	return ""
}
