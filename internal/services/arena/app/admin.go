package app

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/emberarena/internal/platform/errors"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/gameconfig"
)

// SetConfig applies a partial ruleset mutation. Encounters created before
// the change keep their pinned snapshot; only new encounters and live shop
// reads observe the mutated ruleset.
func (e *Engine) SetConfig(ctx context.Context, actorID string, mutation gameconfig.Mutation) (gameconfig.Config, error) {
	ctx, span := e.tracer.Start(ctx, "arena.SetConfig")
	defer span.End()

	allowed, err := e.authz.CanAdminister(ctx, actorID)
	if err != nil {
		return gameconfig.Config{}, fmt.Errorf("authorize: %w", err)
	}
	if !allowed {
		return gameconfig.Config{}, apperrors.WithMetadata(apperrors.CodeConfigNoPermission,
			"account may not administer the ruleset",
			map[string]string{"account_id": actorID})
	}

	cfg, err := e.Config(ctx)
	if err != nil {
		return gameconfig.Config{}, err
	}

	next, err := mutation.Apply(cfg)
	if err != nil {
		return gameconfig.Config{}, err
	}
	if err := e.store.PutConfig(ctx, next); err != nil {
		return gameconfig.Config{}, fmt.Errorf("persist config: %w", err)
	}

	if _, err := e.emitter.EmitConfigChanged(ctx, actorID, event.ConfigChangedPayload{
		Version: next.Version,
	}); err != nil {
		return gameconfig.Config{}, fmt.Errorf("journal config change: %w", err)
	}
	return next, nil
}
