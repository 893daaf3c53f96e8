// Package authz decides who may administer the game ruleset.
package authz

import "context"

// Authorizer answers administrative permission checks.
type Authorizer interface {
	// CanAdminister reports whether the account may mutate the ruleset.
	CanAdminister(ctx context.Context, accountID string) (bool, error)
}

// Allowlist authorizes a fixed set of admin accounts.
type Allowlist struct {
	accounts map[string]struct{}
}

// NewAllowlist creates an allowlist over the given accounts.
func NewAllowlist(accounts ...string) *Allowlist {
	set := make(map[string]struct{}, len(accounts))
	for _, account := range accounts {
		if account != "" {
			set[account] = struct{}{}
		}
	}
	return &Allowlist{accounts: set}
}

// CanAdminister reports whether the account is on the allowlist.
func (a *Allowlist) CanAdminister(_ context.Context, accountID string) (bool, error) {
	_, ok := a.accounts[accountID]
	return ok, nil
}
