// Package server parses HTTP API command flags and runs the backend.
package server

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/api/httpapi"
	combatservice "github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/config"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/otel"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog"
	catalogsqlite "github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog/sqlite"
)

// Config holds HTTP API command configuration.
type Config struct {
	Addr        string `env:"DM_COMMAND_CENTER_ADDR"         envDefault:":8000"`
	CatalogPath string `env:"DM_COMMAND_CENTER_CATALOG_PATH" envDefault:""`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "path to the monster catalog database (empty disables the catalog)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the HTTP API and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "server")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	monsters, closeCatalog, err := openCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	defer closeCatalog()

	combat := combatservice.New(monsters)
	return httpapi.NewServer(combat, monsters, log.Default()).Run(ctx, cfg.Addr)
}

// openCatalog opens the SQLite monster catalog. An empty path disables the
// catalog; combatant lookups then degrade to no prefill.
func openCatalog(path string) (catalog.MonsterStore, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}

	store, err := catalogsqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("close catalog: %v", err)
		}
	}, nil
}
