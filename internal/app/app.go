// Package app wires configuration, storage and handlers into one HTTP
// handler.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"kilowatt-backend/internal/catalog"
	"kilowatt-backend/internal/config"
	"kilowatt-backend/internal/configurator"
	"kilowatt-backend/internal/handlers"
	"kilowatt-backend/internal/identity"
	"kilowatt-backend/internal/quotestore"
)

type App struct {
	mux     *http.ServeMux
	handler http.Handler
	Env     *handlers.Env

	backend quotestore.Backend
	log     *zap.Logger
}

// New builds the application. With a nil db the catalog is served from the
// embedded fixture and quotes are kept in memory.
func New(ctx context.Context, cfg *config.Config, db *sql.DB, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()

	fixture, err := catalog.DefaultFixture()
	if err != nil {
		return nil, err
	}

	notifier := &handlers.TelegramNotifier{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		APIURL:   cfg.TelegramAPIURL,
		Log:      log.With(zap.String("component", "telegram")),
	}

	var store interface {
		handlers.CatalogReader
		handlers.QuoteRepository
	}
	if db != nil {
		// 1. schema
		if err := EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		// 2. seed the catalog when the database is new
		seeded, err := seedCatalogIfEmpty(ctx, db, fixture)
		if err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		if seeded {
			log.Info("catalog seeded from the embedded fixture")
		}
		// 3. settings stored in the database win over the environment
		settings, err := LoadSettings(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		if settings.TelegramBotToken != "" {
			notifier.BotToken = settings.TelegramBotToken
		}
		if settings.TelegramChatID != "" {
			notifier.ChatID = settings.TelegramChatID
		}
		store = catalog.NewPostgresStore(db)
	} else {
		log.Warn("no database configured, serving the embedded catalog")
		store = catalog.NewMemoryStore(fixture)
	}

	backend, err := quotestore.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open quote store: %w", err)
	}

	wizardLog := log.With(zap.String("component", "sessions"))
	env := &handlers.Env{
		Catalog:      store,
		Quotes:       store,
		Notifier:     notifier,
		AdminKeyHash: cfg.AdminKeyHash,
		Log:          log.With(zap.String("component", "handlers")),
	}
	env.Sessions = handlers.NewSessions(cfg.SessionTTL, func(sessionID string) *configurator.Wizard {
		return configurator.New(configurator.Deps{
			Catalog:  store,
			Quotes:   store,
			Identity: identity.Resolver{},
			Store:    quotestore.ForSession(backend, sessionID),
			Logger:   wizardLog.With(zap.String("session", sessionID)),
		})
	})

	registerRoutes(mux, env, newIPLimiter(cfg.SubmitRPS, cfg.SubmitBurst), cfg.FrontendDir, cfg.CORSOrigins)

	verifier := identity.NewVerifier(cfg.JWTSecret)
	if verifier == nil {
		log.Warn("SUPABASE_JWT_SECRET is empty, every request is anonymous")
	}
	authLog := log.With(zap.String("component", "identity"))
	authed := identity.Middleware(verifier, func(r *http.Request, err error) {
		authLog.Debug("invalid access token", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	})(mux)

	return &App{
		mux:     mux,
		handler: withRequestID(withAccessLog(log.With(zap.String("component", "http")), authed)),
		Env:     env,
		backend: backend,
		log:     log,
	}, nil
}

// Router is the root handler with every middleware applied.
func (a *App) Router() http.Handler {
	return a.handler
}

// Close waits for pending notifications and releases the quote store.
func (a *App) Close() error {
	a.Env.Notifier.Wait()
	if a.backend == nil {
		return nil
	}
	if err := a.backend.Close(); err != nil {
		return fmt.Errorf("close quote store: %w", err)
	}
	return nil
}
