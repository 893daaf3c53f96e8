// Package arena parses arena command flags and runs an exhibition match
// against the local engine.
package arena

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	entrypoint "github.com/louisbranch/emberarena/internal/platform/cmd"
	"github.com/louisbranch/emberarena/internal/platform/id"
	"github.com/louisbranch/emberarena/internal/services/arena/app"
	"github.com/louisbranch/emberarena/internal/services/arena/domain/authz"
	ledgermem "github.com/louisbranch/emberarena/internal/services/arena/ledger/memory"
	"github.com/louisbranch/emberarena/internal/services/arena/storage/sqlite"
)

// Config holds arena command configuration.
type Config struct {
	DBPath string `env:"EMBERARENA_ARENA_DB" envDefault:"arena.db"`
	Seed   string `env:"EMBERARENA_ARENA_SEED"`
	Admins string `env:"EMBERARENA_ARENA_ADMINS"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the arena SQLite database")
	fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "Fixed entropy seed for reproducible matches")
	fs.StringVar(&cfg.Admins, "admins", cfg.Admins, "Comma-separated admin account IDs")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens storage, builds the engine, and plays one adversary match to
// completion.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArena, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close storage: %v", err)
			}
		}()

		opts := []app.Option{
			app.WithAuthorizer(authz.NewAllowlist(splitAdmins(cfg.Admins)...)),
		}
		if cfg.Seed != "" {
			seed := []byte(cfg.Seed)
			opts = append(opts, app.WithSeedSource(func() []byte { return seed }))
		}

		engine := app.New(store, ledgermem.New(), opts...)
		return runExhibition(ctx, engine)
	})
}

// runExhibition registers a fresh duelist and fights a generated adversary.
func runExhibition(ctx context.Context, engine *app.Engine) error {
	duelistID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate duelist id: %w", err)
	}
	duelist, weapon, err := engine.RegisterCombatant(ctx, "duelist-"+duelistID)
	if err != nil {
		return fmt.Errorf("register duelist: %w", err)
	}
	log.Printf("registered %s with weapon %s (strength %d)",
		duelist.AccountID, weapon, duelist.Equipment[0].Strength)

	enc, err := engine.CreateAdversaryEncounter(ctx, duelist.AccountID)
	if err != nil {
		return fmt.Errorf("create encounter: %w", err)
	}
	log.Printf("encounter %s: %s (%d hp) vs %s (%d hp)",
		enc.ID, enc.A.AccountID, enc.A.Health, enc.B.AccountID, enc.B.Health)

	for enc.Active() {
		if err := ctx.Err(); err != nil {
			return err
		}
		decision, err := engine.ResolveTurn(ctx, enc.ID)
		if err != nil {
			return fmt.Errorf("resolve turn: %w", err)
		}
		record := decision.Record
		log.Printf("turn %d: %s hits %s for %d (variance %d%%, defender at %d hp)",
			record.Turn, record.ActorAccount, record.DefenderAccount,
			record.Damage, record.VariancePct, record.DefenderHealth)
		enc = decision.Encounter
	}

	log.Printf("encounter %s resolved: %s after %d turns", enc.ID, enc.Outcome, enc.Turn)
	if winner := enc.Winner(); winner != "" {
		gold, err := engine.GoldBalance(ctx, winner)
		if err != nil {
			return fmt.Errorf("read winner gold: %w", err)
		}
		log.Printf("%s won %d gold", winner, gold)
		if enc.LootToken != nil && enc.LootHolder == winner {
			log.Printf("%s claimed loot token %s", winner, enc.LootToken)
		}
	}
	return nil
}

func splitAdmins(admins string) []string {
	var out []string
	for _, admin := range strings.Split(admins, ",") {
		if admin = strings.TrimSpace(admin); admin != "" {
			out = append(out, admin)
		}
	}
	return out
}
