package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fileboxhq/filebox-go/internal/api"
	"github.com/fileboxhq/filebox-go/internal/config"
	"github.com/fileboxhq/filebox-go/internal/session"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagAPIURL     string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// httpClientTimeout is the default timeout for HTTP requests.
// Prevents hung connections from blocking CLI commands indefinitely.
const httpClientTimeout = 30 * time.Second

// appEnv bundles the wired-up application pieces every command needs:
// resolved config, logger, session store, API client, and the session
// controller on top of them.
type appEnv struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *session.Store
	client     *api.Client
	controller *session.Controller
}

// newAppEnv resolves configuration and wires the application graph. The
// store is injected into both the client (credential attachment, 401
// invalidation) and the controller rather than reached for implicitly,
// so each piece is substitutable in tests.
func newAppEnv() (*appEnv, error) {
	config.LoadDotEnv(nil)

	cfg, err := config.Resolve(config.ReadEnvOverrides(), config.CLIOverrides{
		ConfigPath: flagConfigPath,
		APIURL:     flagAPIURL,
	})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := buildLogger(cfg)
	store := session.Open(cfg.SessionPath, logger)
	client := api.NewClient(cfg.APIURL, &http.Client{Timeout: httpClientTimeout}, store, logger)
	controller := session.NewController(store, client, logger)

	return &appEnv{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		client:     client,
		controller: controller,
	}, nil
}

// requireLogin is the route guard for feature commands: fail fast with a
// pointer to `filebox login` instead of issuing a request doomed to 401.
// The 401 path in the API client remains the authoritative backstop.
func (env *appEnv) requireLogin() error {
	if !env.controller.IsAuthenticated() {
		return errNotLoggedIn
	}

	return nil
}

var errNotLoggedIn = errors.New("not logged in — run 'filebox login' first")

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "filebox",
		Short:   "Filebox CLI client",
		Long:    "A command-line client for the Filebox file-storage service: upload, download, list and version files.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Filebox API origin (overrides config)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	// Register subcommands.
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newVersionsCmd())
	cmd.AddCommand(newRmCmd())

	return cmd
}

// buildLogger creates an slog.Logger configured by the resolved config
// and CLI flags. Config-file log level provides the baseline; --verbose
// and --quiet override it because CLI flags always win.
func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo

	if cfg != nil {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	if errors.Is(err, api.ErrUnauthenticated) {
		fmt.Fprintln(os.Stderr, "Error: session expired — run 'filebox login' to sign in again")
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
