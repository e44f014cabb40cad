package main

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jask/agentwallet/internal/backend"
	"github.com/jask/agentwallet/internal/config"
	"github.com/jask/agentwallet/internal/database"
	"github.com/jask/agentwallet/internal/database/repository"
	"github.com/jask/agentwallet/internal/logging"
	"github.com/jask/agentwallet/internal/metrics"
	"github.com/jask/agentwallet/internal/prefs"
	"github.com/jask/agentwallet/internal/secrets"
	"github.com/jask/agentwallet/internal/service"
	"github.com/jask/agentwallet/internal/store"
	"github.com/jask/agentwallet/internal/testdata"
	"github.com/jask/agentwallet/internal/tui"
)

const demoToken = "demo-token"

var (
	rootCmd = &cobra.Command{
		Use:           "agentwallet",
		Short:         "Review pending agent wallet payment requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runUI,
	}

	loginCmd = &cobra.Command{
		Use:   "login [--url <backend>] <token>",
		Short: "Store the API token for the configured backend, optionally switching backends",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogin,
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token for the configured backend",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
)

func init() {
	rootCmd.Flags().BoolP("demo", "d", false, "run against a built-in sample backend")
	loginCmd.Flags().String("url", "", "backend base URL to save in the config file")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		l.Error().Err(err).Msg("agentwallet")
		os.Exit(1)
	}
}

func runUI(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, logFile, err := logging.Setup(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(logging.WithLogger(cmd.Context(), logger))
	defer cancel()

	serverURL, token := cfg.Backend.URL, resolveToken(cfg)
	if demo, _ := cmd.Flags().GetBool("demo"); demo {
		be := testdata.NewBackend(testdata.Generate(24, time.Now().UnixNano()), demoToken)
		be.SetDelay(300 * time.Millisecond)
		srv := httptest.NewServer(be.Handler())
		defer srv.Close()
		serverURL, token = srv.URL, demoToken
		logger.Info().Str("url", srv.URL).Msg("demo backend started")
	} else if token == "" {
		logger.Warn().Str("backend", serverURL).Msg("no API token configured")
	}

	client, err := backend.New(serverURL, token, cfg.Backend.Timeout)
	if err != nil {
		return err
	}
	client.Debug = logger.GetLevel() <= zerolog.DebugLevel

	// The journal is optional: the review screen works without it.
	var (
		journal service.Journal
		history tui.History
	)
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Warn().Err(err).Msg("review journal unavailable")
	} else if db, err := database.OpenAndMigrate(cfg.Database.Path); err != nil {
		logger.Warn().Err(err).Msg("review journal unavailable")
	} else {
		defer db.Close()
		maint := &service.MaintenanceService{DB: db}
		if _, err := maint.PruneJournal(ctx, cfg.Database.Retention); err != nil {
			logger.Warn().Err(err).Msg("prune review journal")
		}
		repo := repository.NewReviewEventRepo(db)
		journal, history = repo, repo
	}

	st := store.New(ctx, client, store.Options{
		Timeout:      cfg.Backend.Timeout,
		ReferenceTTL: cfg.Cache.ReferenceTTL,
	})
	defer st.Close()

	if addr := strings.TrimSpace(cfg.Metrics.Addr); addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				logger.Error().Err(err).Str("addr", addr).Msg("metrics server")
			}
		}()
	}

	loc, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", cfg.UI.Timezone).Msg("using local timezone")
		loc = time.Local
	}
	pickerDir := cfg.UI.PickerDir
	if saved, err := prefs.Load(); err != nil {
		logger.Warn().Err(err).Msg("load ui state")
	} else if saved.PickerDir != "" {
		pickerDir = saved.PickerDir
	}
	opts := tui.Options{
		DateFormat:     cfg.UI.DateFormat,
		CurrencySymbol: cfg.UI.CurrencySymbol,
		Location:       loc,
		PickerDir:      pickerDir,
		RememberDir: func(dir string) error {
			return prefs.Save(prefs.State{PickerDir: dir})
		},
	}

	review := tui.NewReviewScreen(ctx, st,
		&service.ReviewService{Backend: client, Journal: journal},
		&service.AttachmentService{Journal: journal},
		opts)
	app := tui.New(review, map[string]tui.Route{
		tui.RoutePreview: tui.PreviewRoute(opts),
		tui.RouteHistory: tui.HistoryRoute(ctx, history, opts),
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	if err := app.Err(); err != nil {
		logger.Error().Err(err).Msg("ui stopped")
		return err
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	url, _ := cmd.Flags().GetString("url")
	if url = strings.TrimRight(strings.TrimSpace(url), "/"); url != "" && url != cfg.Backend.URL {
		cfg.Backend.URL = url
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backend set to %s in %s\n", url, config.Path())
	}
	if err := secrets.StoreToken(cfg.Backend.URL, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token saved for %s\n", cfg.Backend.URL)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := secrets.DeleteToken(cfg.Backend.URL); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token removed for %s\n", cfg.Backend.URL)
	return nil
}

// resolveToken prefers the configured env var, then the secrets store, then the config file.
func resolveToken(cfg config.Config) string {
	if env := strings.TrimSpace(cfg.Backend.TokenEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if t, err := secrets.FetchToken(cfg.Backend.URL); err == nil {
		return t
	}
	return strings.TrimSpace(cfg.Backend.Token)
}
