// Package cli implements the nxt-albums command line.
//
// The root command loads the configuration, applies flag overrides and
// serves the album tree over HTTP until interrupted.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/banux/nxt-albums/internal/album"
	"github.com/banux/nxt-albums/internal/config"
	"github.com/banux/nxt-albums/internal/library"
	"github.com/banux/nxt-albums/internal/server"
)

// version is reported by --version; release builds set it with -ldflags.
var version = "dev"

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 10 * time.Second

// flags holds the command-line overrides of the root command.
type flags struct {
	configPath string
	listen     string
	verbose    bool
}

// Execute runs the nxt-albums CLI and returns an error if serving fails.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:          "nxt-albums [albums-dir]",
		Short:        "Browse and read image albums and .cbz comics in the browser",
		Long:         `nxt-albums serves a directory tree of image folders and .cbz archives as browsable albums, with a paged reading view and an OPDS feed for comic readers.`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f, args)
			if err != nil {
				return err
			}
			level, err := parseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			if f.verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			ctx := withLogger(cmd.Context(), logger)
			return serve(ctx, cfg)
		},
	}

	root.Flags().StringVarP(&f.configPath, "config", "c", "", "config file (default: search NXT_ALBUMS_CONFIG, ./nxt-albums.yaml, ~/.config/nxt-albums/config.yaml)")
	root.Flags().StringVarP(&f.listen, "listen", "l", "", "listen address, overrides listen_addr")
	root.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")

	return root
}

// loadConfig merges defaults, the config file, the environment and the
// command line, then validates the result. A positional argument replaces
// the albums directory only when it names a directory.
func loadConfig(f flags, args []string) (config.Config, error) {
	path := f.configPath
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if f.listen != "" {
		cfg.ListenAddr = f.listen
	}
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			cfg.AlbumsDir = args[0]
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// serve runs the HTTP server until ctx is cancelled or a termination signal
// arrives, then shuts it down gracefully.
func serve(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	root, err := album.NewRoot(cfg.AlbumsDir)
	if err != nil {
		return err
	}
	lib := library.New(root, library.Options{ListingWorkers: cfg.ListingWorkers})
	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: server.New(lib, server.Options{
			Logger:      logger,
			ResizeWidth: cfg.ResizeWidth,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving albums", "root", lib.Root().Dir(), "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
