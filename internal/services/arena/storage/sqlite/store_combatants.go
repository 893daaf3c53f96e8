package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/combatant"
	"github.com/louisbranch/emberarena/internal/services/arena/storage"
)

// PutCombatant upserts a combatant record keyed by account.
func (s *Store) PutCombatant(ctx context.Context, c combatant.Combatant) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal combatant: %w", err)
	}

	const query = `
INSERT INTO combatants (account_id, doc)
VALUES (?1, ?2)
ON CONFLICT (account_id) DO UPDATE SET doc = excluded.doc;
`
	if _, err := s.sqlDB.ExecContext(ctx, query, c.AccountID, string(doc)); err != nil {
		return fmt.Errorf("put combatant: %w", err)
	}
	return nil
}

// GetCombatant returns the combatant for the account.
func (s *Store) GetCombatant(ctx context.Context, accountID string) (combatant.Combatant, error) {
	const query = `SELECT doc FROM combatants WHERE account_id = ?1;`

	var doc string
	err := s.sqlDB.QueryRowContext(ctx, query, accountID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return combatant.Combatant{}, storage.ErrNotFound
	}
	if err != nil {
		return combatant.Combatant{}, fmt.Errorf("get combatant: %w", err)
	}

	var c combatant.Combatant
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return combatant.Combatant{}, fmt.Errorf("unmarshal combatant: %w", err)
	}
	return c, nil
}

// ListCombatants returns all combatants ordered by account.
func (s *Store) ListCombatants(ctx context.Context) ([]combatant.Combatant, error) {
	const query = `SELECT doc FROM combatants ORDER BY account_id;`

	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list combatants: %w", err)
	}
	defer rows.Close()

	var out []combatant.Combatant
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan combatant: %w", err)
		}
		var c combatant.Combatant
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("unmarshal combatant: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate combatants: %w", err)
	}
	return out, nil
}
