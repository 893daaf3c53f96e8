package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/gameconfig"
	"github.com/louisbranch/emberarena/internal/services/arena/storage"
)

// PutConfig stores the live ruleset. A single row holds the current version;
// history lives in the event journal.
func (s *Store) PutConfig(ctx context.Context, cfg gameconfig.Config) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	const query = `
INSERT INTO config (id, doc, updated_at)
VALUES (1, ?1, ?2)
ON CONFLICT (id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at;
`
	if _, err := s.sqlDB.ExecContext(ctx, query, string(doc), toMillis(time.Now())); err != nil {
		return fmt.Errorf("put config: %w", err)
	}
	return nil
}

// GetConfig returns the live ruleset.
func (s *Store) GetConfig(ctx context.Context) (gameconfig.Config, error) {
	const query = `SELECT doc FROM config WHERE id = 1;`

	var doc string
	err := s.sqlDB.QueryRowContext(ctx, query).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return gameconfig.Config{}, storage.ErrNotFound
	}
	if err != nil {
		return gameconfig.Config{}, fmt.Errorf("get config: %w", err)
	}

	var cfg gameconfig.Config
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		return gameconfig.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
