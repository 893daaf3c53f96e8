// Package app orchestrates the arena service: roster registration, encounter
// lifecycle, the shop, and ruleset administration.
//
// Every operation follows compute-then-commit: domain decisions run against
// local copies of state, the implied asset operations go to the ledger port
// as one atomic batch, and only after that commit succeeds is anything
// persisted or journaled. A ledger failure therefore leaves no partial
// state; the caller can retry the same call.
package app

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/authz"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/equipment"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/gameconfig"
	"github.com/louisbranch/emberarena/internal/services/arena/ledger"
	"github.com/louisbranch/emberarena/internal/services/arena/storage"
)

// DefaultHouseAccount holds adversary loot until it is won.
const DefaultHouseAccount = "house"

// Base stats for registered combatants. Equipment and the ruleset drive
// everything else.
const (
	baseDamage     = 10
	baseStrength   = 0
	baseDefense    = 0
	baseInitiative = 5
)

// Engine coordinates storage, the asset ledger, and the event journal.
type Engine struct {
	store   storage.Store
	ledger  ledger.Port
	emitter *event.Emitter
	binding *equipment.Binding
	authz   authz.Authorizer
	tracer  trace.Tracer

	houseAccount string
	now          func() time.Time
	newSeed      func() []byte
	newNonce     func() uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuthorizer sets the admin authorizer. Without one, every ruleset
// mutation is rejected.
func WithAuthorizer(a authz.Authorizer) Option {
	return func(e *Engine) { e.authz = a }
}

// WithHouseAccount overrides the account holding adversary loot.
func WithHouseAccount(account string) Option {
	return func(e *Engine) { e.houseAccount = account }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSeedSource overrides the encounter seed source, for tests.
func WithSeedSource(source func() []byte) Option {
	return func(e *Engine) { e.newSeed = source }
}

// WithNonceSource overrides the token nonce source, for tests.
func WithNonceSource(source func() uint64) Option {
	return func(e *Engine) { e.newNonce = source }
}

// New creates an engine over the given store and ledger port.
func New(store storage.Store, port ledger.Port, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		ledger:       port,
		emitter:      event.NewEmitter(store),
		binding:      equipment.NewBinding(port),
		authz:        authz.NewAllowlist(),
		tracer:       otel.Tracer("arena.engine"),
		houseAccount: DefaultHouseAccount,
		now:          time.Now,
		newSeed:      randomSeed,
		newNonce:     randomNonce,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the live ruleset, seeding the default on first use.
func (e *Engine) Config(ctx context.Context) (gameconfig.Config, error) {
	cfg, err := e.store.GetConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return gameconfig.Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg = gameconfig.Default()
	if err := e.store.PutConfig(ctx, cfg); err != nil {
		return gameconfig.Config{}, fmt.Errorf("seed default config: %w", err)
	}
	return cfg, nil
}

// requireNoActiveEncounter rejects roster and shop mutations while the
// account is mid-encounter, so the encounter's local state cannot diverge
// from the roster.
func (e *Engine) requireNoActiveEncounter(ctx context.Context, accountID string) error {
	enc, err := e.store.GetActiveEncounterByAccount(ctx, accountID)
	if err == nil {
		return apperrors.WithMetadata(apperrors.CodeCombatantInActiveEncounter,
			"account is in an active encounter",
			map[string]string{"encounter_id": enc.ID})
	}
	if apperrors.CodeOf(err) == apperrors.CodeNotFound {
		return nil
	}
	return fmt.Errorf("check active encounter: %w", err)
}

func randomSeed() []byte {
	seed := make([]byte, 32)
	_, _ = rand.Read(seed)
	return seed
}

func randomNonce() uint64 {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}
