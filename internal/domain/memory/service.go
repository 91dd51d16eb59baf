package memory

import (
	"context"
	"strings"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Bank holds the five per-role stores.
type Bank struct {
	stores map[Role]Store
	log    *logger.Logger
}

// NewBank builds one store per role with factory.
func NewBank(factory StoreFactory) (*Bank, error) {
	b := &Bank{stores: make(map[Role]Store, len(Roles())), log: logger.Get().With("component", "memory_bank")}
	for _, role := range Roles() {
		store, err := factory(role)
		if err != nil {
			return nil, errors.Wrapf(err, "create %s", role.StoreName())
		}
		b.stores[role] = store
	}
	return b, nil
}

// Store returns the store of role.
func (b *Bank) Store(role Role) (Store, error) {
	store, ok := b.stores[role]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no memory store for role %q", role)
	}
	return store, nil
}

// Recall renders the top k recommendations for situation as one block separated by blank lines.
// Lookup failures and empty stores both yield fallback, so callers can always prompt with the result.
func (b *Bank) Recall(ctx context.Context, role Role, situation string, k int, fallback string) string {
	if b == nil || k <= 0 || strings.TrimSpace(situation) == "" {
		return fallback
	}
	store, err := b.Store(role)
	if err != nil {
		b.log.Warnw("Memory recall skipped", "role", role, "error", err)
		return fallback
	}

	recs, err := store.Query(ctx, situation, k)
	if err != nil {
		b.log.Warnw("Memory query failed", "role", role, "error", err)
		return fallback
	}
	if len(recs) == 0 {
		return fallback
	}
	return strings.Join(recs, "\n\n")
}

// Remember appends a single pair to role's store.
func (b *Bank) Remember(ctx context.Context, role Role, situation, recommendation string) error {
	store, err := b.Store(role)
	if err != nil {
		return err
	}
	if err := store.Add(ctx, []Pair{{Situation: situation, Recommendation: recommendation}}); err != nil {
		return errors.Wrapf(err, "add to %s", role.StoreName())
	}
	return nil
}
