package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by all commands.
type app struct {
	configPath string
	verbose    bool
	cfg        *Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "crossword",
		Short:        "Crossword builds interlocking word grids from news clues",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))

			cfg, err := LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(a.serveCommand())
	root.AddCommand(a.generateCommand())
	root.AddCommand(a.previewCommand())
	return root
}

// newGenerator wires the Gemini client when a project is configured. The
// returned cleanup func is always non-nil.
func (a *app) newGenerator(ctx context.Context) (*Generator, func(), error) {
	logger := loggerFromContext(ctx)

	var extractor WordExtractor
	cleanup := func() {}
	if a.cfg.Gemini.Project != "" {
		gemini, err := NewGeminiClient(ctx, a.cfg.Gemini)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Gemini client ready", "project", a.cfg.Gemini.Project, "model", gemini.modelName)
		extractor = gemini
		cleanup = func() { gemini.Close() }
	} else {
		logger.Warn("GCP_PROJECT_ID not set, clue extraction from text disabled")
	}
	return NewGenerator(a.cfg.Generator, extractor, logger), cleanup, nil
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the puzzle and game HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := loggerFromContext(ctx)

			gen, cleanup, err := a.newGenerator(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()
			logger.Info("Puzzle store ready", "backend", a.cfg.Store.Backend)

			srv := &http.Server{
				Addr:              ":" + a.cfg.Server.Port,
				Handler:           NewServer(a.cfg.Server, store, gen, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Info("Server listening", "addr", "http://localhost:"+a.cfg.Server.Port)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
