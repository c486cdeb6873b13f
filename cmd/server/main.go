// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/vidshare/internal/api"
	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/authz"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/database"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/notify"
	"github.com/tomtom215/vidshare/internal/storage"
	"github.com/tomtom215/vidshare/internal/supervisor"
	"github.com/tomtom215/vidshare/internal/supervisor/services"
	"github.com/tomtom215/vidshare/internal/videos"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const appName = "Vidshare"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Strs("storage_order", cfg.Storage.Order).
		Str("email_provider", cfg.Email.Provider).
		Msg("Starting Vidshare with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === DATA LAYER ===

	store, err := docstore.Open(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	db := database.New(store)
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("driver", cfg.Database.Driver).Msg("Document store initialized")

	assets, err := storage.NewRouterFromConfig(ctx, cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize media storage")
	}
	logging.Info().Interface("providers", assets.Providers()).Msg("Media storage initialized")

	// === EMAIL ===

	sender, err := notify.NewSender(cfg.Email)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize email sender")
	}
	queue := notify.NewQueue(sender, notify.QueueConfig{
		SendRate:  cfg.Email.SendRate,
		SendBurst: cfg.Email.SendBurst,
	})
	defer func() {
		if err := queue.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing email queue")
		}
	}()
	templates, err := notify.NewTemplates(appName)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to parse email templates")
	}
	mailer := notify.NewMailer(sender, queue, templates, notify.MailerConfig{
		App:             appName,
		PublicURL:       cfg.Server.PublicURL,
		FrontendURL:     cfg.Server.FrontendURL,
		VerificationTTL: cfg.Security.VerificationTTL,
		ResetTTL:        cfg.Security.PasswordResetTTL,
	})

	// === AUTHENTICATION ===

	issuer, err := auth.NewTokenIssuer(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token issuer")
	}
	authService := auth.NewService(auth.ServiceConfig{
		Users:     db,
		Assets:    assets,
		Mailer:    mailer,
		Tokens:    issuer,
		Passwords: auth.NewPasswordHasher(0),
		Security:  cfg.Security,
	})
	cookies := auth.NewCookieJar(issuer, cfg.IsProduction(), cfg.Security.CookieDomain)

	if err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		logging.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}

	var oauthFlow *auth.OAuthFlow
	if cfg.OAuth.Enabled {
		oauthFlow, err = auth.NewOAuthFlow(ctx, cfg.OAuth, cfg.Server.FrontendURL, authService, cookies)
		if err != nil {
			// Discovery failures leave password login working
			logging.Warn().Err(err).Str("issuer", cfg.OAuth.Issuer).Msg("OAuth sign-in disabled")
			oauthFlow = nil
		} else {
			logging.Info().Str("issuer", cfg.OAuth.Issuer).Msg("OAuth sign-in enabled")
		}
	}

	writeErr := api.ErrorWriter(!cfg.IsProduction())
	enforcer, err := authz.NewEnforcer(cfg.Authz)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()

	// === HTTP ===

	handler := api.NewHandler(api.HandlerDeps{
		DB:      db,
		Auth:    authService,
		Videos:  videos.NewService(db, assets, videos.WithViewDedup(cfg.API.ViewDedupWindow)),
		Assets:  assets,
		Cookies: cookies,
		OAuth:   oauthFlow,
		Config:  cfg,
		Version: version,
	})
	router := api.NewRouter(
		handler,
		api.NewChiMiddlewareFromConfig(cfg.Security),
		auth.NewMiddleware(authService, writeErr),
		authz.NewMiddleware(enforcer, writeErr),
	)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if bs, ok := store.(*docstore.BadgerStore); ok && !cfg.Database.InMemory {
		tree.AddDataService(services.NewStoreGCService(bs, cfg.Database.GCInterval, 0))
		logging.Info().Dur("interval", cfg.Database.GCInterval).Msg("Value log GC added to supervisor tree")
	}

	tree.AddMessagingService(services.NewRunnerService("email-queue", queue))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Supervisor.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
		cancel()
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
