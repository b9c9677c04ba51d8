package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kilowatt-backend/internal/app"
	"kilowatt-backend/internal/catalog"
	"kilowatt-backend/internal/config"
	"kilowatt-backend/internal/handlers"
	"kilowatt-backend/internal/logging"
)

const shutdownTimeout = 15 * time.Second

func rootCmd() *cobra.Command {
	var noDB bool

	root := &cobra.Command{
		Use:          "kilowatt",
		Short:        "Kilowatt storefront backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), noDB)
		},
	}
	root.Flags().BoolVar(&noDB, "no-db", false, "serve the embedded catalog without PostgreSQL")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), noDB)
		},
	}
	serveCmd.Flags().BoolVar(&noDB, "no-db", false, "serve the embedded catalog without PostgreSQL")

	root.AddCommand(serveCmd, seedCmd(), hashAdminKeyCmd(), telegramCmd())
	return root
}

// setup loads the configuration and the logger every command shares.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func serve(ctx context.Context, noDB bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var db *sql.DB
	if noDB || cfg.DatabaseURL == "" {
		log.Info("serving embedded catalog without DB")
	} else {
		db, err = app.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("open db", zap.Error(err))
			return err
		}
		defer db.Close()
		log.Info("DB connected")
	}

	a, err := app.New(ctx, cfg, db, log)
	if err != nil {
		log.Error("init app", zap.Error(err))
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close app", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func seedCmd() *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and upsert the catalog from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			f, err := catalog.LoadFixture(fixturePath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := app.OpenDB(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := app.EnsureSchema(ctx, db); err != nil {
				return err
			}
			if err := app.SeedCatalog(ctx, db, f); err != nil {
				return err
			}
			log.Info("catalog seeded",
				zap.Int("products", len(f.Products)),
				zap.Int("services", len(f.Services)),
				zap.Int("packages", len(f.Packages)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "fixture file (default: embedded catalog)")
	return cmd
}

func hashAdminKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-admin-key [key]",
		Short: "Print the bcrypt hash to use as ADMIN_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := handlers.HashAdminKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func telegramCmd() *cobra.Command {
	var token, chatID string

	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Store the Telegram bot token and staff chat in the settings table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := app.OpenDB(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := app.EnsureSchema(ctx, db); err != nil {
				return err
			}
			current, err := app.LoadSettings(ctx, db)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("token") {
				current.TelegramBotToken = token
			}
			if cmd.Flags().Changed("chat") {
				current.TelegramChatID = chatID
			}
			if err := app.SaveSettings(ctx, db, current); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "telegram settings saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bot token")
	cmd.Flags().StringVar(&chatID, "chat", "", "staff chat id")
	return cmd
}
