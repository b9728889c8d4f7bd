// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"log"
	"time"

	combatservice "github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
	mcpservice "github.com/moderncanvas/dmsecretweapon-backend/internal/mcp/service"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/config"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/otel"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog"
	catalogsqlite "github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr    string `env:"DM_COMMAND_CENTER_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport   string `env:"DM_COMMAND_CENTER_MCP_TRANSPORT" envDefault:"stdio"`
	CatalogPath string `env:"DM_COMMAND_CENTER_CATALOG_PATH"  envDefault:""`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "path to the monster catalog database (empty disables the catalog)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server over the configured transport.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "mcp")
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

	var monsters catalog.MonsterStore
	if cfg.CatalogPath != "" {
		store, err := catalogsqlite.Open(cfg.CatalogPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close catalog: %v", err)
			}
		}()
		monsters = store
	}

	combat := combatservice.New(monsters)
	server := mcpservice.NewServer(combat, monsters, log.Default())
	return server.Run(ctx, mcpservice.Transport(cfg.Transport), cfg.HTTPAddr)
}
