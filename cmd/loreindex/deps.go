package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ersonp/lore-index/internal/application/handlers"
	"github.com/ersonp/lore-index/internal/domain/services"
	"github.com/ersonp/lore-index/internal/infrastructure/config"
	"github.com/ersonp/lore-index/internal/infrastructure/logger"
	sqlitestore "github.com/ersonp/lore-index/internal/infrastructure/snapshot/sqlite"
)

// Deps holds high-level dependencies for commands.
type Deps struct {
	Config  *config.Config
	Log     zerolog.Logger
	Engine  *services.Engine
	Handler *handlers.SearchHandler
	Store   *sqlitestore.Store
}

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(logger.Config{Level: globalLogLevel, Pretty: globalPretty})

	store, err := sqlitestore.NewStore(cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer store.Close()

	tokenizer := services.NewUnicodeTokenizer()
	scorer := services.NewScorer(cfg.Params(), cfg.FieldWeights)
	engine := services.NewEngine(tokenizer, scorer)

	deps := &Deps{
		Config:  cfg,
		Log:     log,
		Engine:  engine,
		Handler: handlers.NewSearchHandler(engine, cfg.Search.DefaultTopK, cfg.Search.Stopwords),
		Store:   store,
	}

	return fn(deps)
}

// loadSnapshot installs the persisted snapshot into the engine.
func loadSnapshot(ctx context.Context, d *Deps) error {
	snap, err := d.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot (run 'loreindex build' first): %w", err)
	}
	if err := d.Engine.Install(snap); err != nil {
		return fmt.Errorf("installing snapshot: %w", err)
	}
	d.Log.Info().Int("documents", snap.DocCount).Msg("snapshot loaded")
	return nil
}
