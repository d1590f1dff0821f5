package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/pedalhub/pedalhub/internal/auth"
	"github.com/pedalhub/pedalhub/internal/console"
	"github.com/pedalhub/pedalhub/internal/export"
	"github.com/pedalhub/pedalhub/internal/ports"
	"github.com/pedalhub/pedalhub/internal/repository"
	"github.com/pedalhub/pedalhub/internal/service"
	"github.com/pedalhub/pedalhub/internal/validator"
	"github.com/pedalhub/pedalhub/pkg/config"
)

type App struct {
	config  *config.Config
	logger  *slog.Logger
	ledger  ports.LedgerService
	console *console.Console

	saveOnce sync.Once
}

func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

func (a *App) Initialize(ctx context.Context, in io.Reader, out io.Writer) error {
	storage := a.config.Storage
	if storage.DataDir == "" {
		return fmt.Errorf("data directory is not configured")
	}

	repo := repository.NewJSONRepository(storage.DataDir, repository.Files{
		Bikes:    storage.BikesFile,
		Bookings: storage.BookingsFile,
		History:  storage.HistoryFile,
	}, a.logger)

	v := validator.NewCustomValidator()
	a.ledger = service.NewLedgerService(ctx, repo, v, a.logger)

	exportPath := storage.ExportFile
	if !filepath.IsAbs(exportPath) {
		exportPath = filepath.Join(storage.DataDir, exportPath)
	}

	a.console = console.New(in, out, a.ledger,
		auth.NewAdminAuthenticator(a.config.Admin),
		export.FileExporter{Path: exportPath},
		v)
	return nil
}

// Run blocks until the console exits or the process is interrupted. Either
// way the ledger gets a final save.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consoleDone := make(chan error, 1)
	go func() {
		consoleDone <- a.console.Run(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-consoleDone:
		a.Shutdown(context.Background())
		if err != nil {
			return fmt.Errorf("console error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		fmt.Fprintln(os.Stdout, "\nProgram terminated by user.")
		a.logger.Info("received signal, shutting down", "signal", sig.String())
		a.Shutdown(context.Background())
		return nil
	}
}

func (a *App) Shutdown(ctx context.Context) {
	a.saveOnce.Do(func() {
		if a.ledger != nil {
			a.ledger.Save(ctx)
		}
		a.logger.Info("ledger saved")
	})
}

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	app := NewApp(cfg, logger)
	if err := app.Initialize(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("failed to initialize application", "err", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("application error", "err", err)
		os.Exit(1)
	}
}
