package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/djorgens2/blofin-data/internal/infra"
	"github.com/djorgens2/blofin-data/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Journal *storage.Journal
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, configures logging and opens the run
// journal.
func (b *Bootstrap) Initialize() error {
	cfg, err := infra.LoadConfig(resolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "journal.db")
	journal, err := storage.NewJournal(dbPath)
	if err != nil {
		return err
	}
	b.Journal = journal
	slog.Info("journal initialized", "path", dbPath)

	infra.PrintBanner(cfg)
	return nil
}

// Shutdown releases bootstrap-owned resources.
func (b *Bootstrap) Shutdown() {
	if b.Journal != nil {
		if err := b.Journal.Close(); err != nil {
			slog.Warn("journal close failed", "err", err)
		}
	}
}

// resolveConfigPath honors BLOFIN_CONFIG, falling back to ./config.yaml.
func resolveConfigPath() string {
	if path := os.Getenv("BLOFIN_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
