// Package app wires the configured repositories into the services shared by
// the api and tui binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/syndic/internal/config"
	"github.com/MrJamesThe3rd/syndic/internal/database"
	"github.com/MrJamesThe3rd/syndic/internal/matching"
	matchingMemstore "github.com/MrJamesThe3rd/syndic/internal/matching/memstore"
	matchingStore "github.com/MrJamesThe3rd/syndic/internal/matching/store"
	"github.com/MrJamesThe3rd/syndic/internal/seed"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
	"github.com/MrJamesThe3rd/syndic/internal/tracker/memstore"
	"github.com/MrJamesThe3rd/syndic/internal/tracker/store"
)

type Services struct {
	Tracker *tracker.Service
	Aliases *matching.Service

	// Close releases the database, if any.
	Close func() error
}

// Open builds the services over the store cfg selects.
func Open(ctx context.Context, cfg *config.Config) (*Services, error) {
	dialect, dsn, ok := cfg.Database()
	if !ok {
		slog.Info("using in-memory store")

		return wire(memstore.New(), matchingMemstore.New(), func() error { return nil }), nil
	}

	db, err := database.New(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", dialect, err)
	}

	if err := database.Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", dialect, err)
	}

	slog.Info("using sql store", "dialect", dialect)

	return wire(store.New(db, dialect), matchingStore.New(db), db.Close), nil
}

func wire(deals tracker.Repository, aliases matching.Repository, closeFn func() error) *Services {
	svc := &Services{
		Tracker: tracker.NewService(deals),
		Aliases: matching.NewService(aliases),
		Close:   closeFn,
	}

	svc.Tracker.OnDealDeleted(svc.Aliases.Forget)

	return svc
}

// Seed applies SEED_FILE, or the embedded demo book when SEED_DEMO is set.
// Without either it does nothing.
func Seed(ctx context.Context, cfg *config.Config, svc *tracker.Service) error {
	var (
		f   *seed.Fixture
		err error
	)

	switch {
	case cfg.Seed.File != "":
		f, err = seed.LoadFile(cfg.Seed.File)
	case cfg.Seed.Demo:
		f, err = seed.Demo()
	default:
		return nil
	}

	if err != nil {
		return fmt.Errorf("loading seed: %w", err)
	}

	if _, err := seed.Apply(ctx, svc, f, time.Now()); err != nil {
		return fmt.Errorf("applying seed: %w", err)
	}

	return nil
}
