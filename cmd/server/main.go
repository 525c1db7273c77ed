package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	apphandler "github.com/bluenumberfoundation/humanid-core/internal/app/handler"
	appmetrics "github.com/bluenumberfoundation/humanid-core/internal/app/metrics"
	"github.com/bluenumberfoundation/humanid-core/internal/app/phone"
	appservice "github.com/bluenumberfoundation/humanid-core/internal/app/service"
	appstore "github.com/bluenumberfoundation/humanid-core/internal/app/store/app"
	credentialstore "github.com/bluenumberfoundation/humanid-core/internal/app/store/credential"
	devuserstore "github.com/bluenumberfoundation/humanid-core/internal/app/store/devuser"
	"github.com/bluenumberfoundation/humanid-core/internal/console"
	consolehandler "github.com/bluenumberfoundation/humanid-core/internal/console/handler"
	"github.com/bluenumberfoundation/humanid-core/internal/platform/config"
	"github.com/bluenumberfoundation/humanid-core/internal/platform/httpserver"
	"github.com/bluenumberfoundation/humanid-core/internal/platform/logger"
	"github.com/bluenumberfoundation/humanid-core/internal/signer"
	httptransport "github.com/bluenumberfoundation/humanid-core/internal/transport/http"
	webloginhandler "github.com/bluenumberfoundation/humanid-core/internal/weblogin/handler"
	webloginservice "github.com/bluenumberfoundation/humanid-core/internal/weblogin/service"
	"github.com/bluenumberfoundation/humanid-core/internal/weblogin/token"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var (
		apps        appservice.AppStore
		credentials appservice.CredentialStore
		devUsers    appservice.DevUserStore

		wlApps  webloginservice.AppStore
		wlCreds webloginservice.CredentialStore
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("failed to reach postgres", "error", err)
			os.Exit(1)
		}
		appStore := appstore.NewPostgres(db)
		credStore := credentialstore.NewPostgres(db)
		apps, credentials, devUsers = appStore, credStore, devuserstore.NewPostgres(db)
		wlApps, wlCreds = appStore, credStore
		log.Info("using postgres storage")
	} else {
		appStore := appstore.NewInMemory()
		credStore := credentialstore.NewInMemory()
		apps, credentials, devUsers = appStore, credStore, devuserstore.NewInMemory()
		wlApps, wlCreds = appStore, credStore
		log.Warn("no postgres dsn configured, using in-memory storage")
	}

	sig := signer.New(cfg.SignatureSalt)
	codec := token.New(cfg.TokenSigningKey, "humanid-core", cfg.SessionLifetime, sig)
	phoneHasher := appservice.NewPhoneHasher(cfg.HashIDSalt1, cfg.HashIDSalt2, cfg.HashIDSecret)

	appSvc := appservice.New(apps, credentials,
		appservice.WithLogger(log),
		appservice.WithMetrics(appmetrics.New()),
		appservice.WithDevUsers(devUsers, phoneHasher),
	)
	webloginSvc := webloginservice.New(wlApps, wlCreds,
		codec, sig, cfg.WebLoginBaseURL, cfg.AssetBaseURL,
		webloginservice.WithLogger(log),
	)

	var operators []console.Operator
	if cfg.ConsoleEmail != "" && cfg.ConsolePasswordHash != "" {
		operators = append(operators, console.Operator{
			Email:        cfg.ConsoleEmail,
			PasswordHash: cfg.ConsolePasswordHash,
		})
	}
	consoleSvc := console.New(operators, codec, cfg.ConsoleTokenLifetime, console.WithLogger(log))

	router := httptransport.NewRouter(httptransport.Deps{
		Console:          consolehandler.New(consoleSvc, log),
		Apps:             apphandler.New(appSvc, phone.NewParser(), log),
		WebLogin:         webloginhandler.New(webloginSvc, log),
		AdminToken:       cfg.AdminToken,
		AuthorizeConsole: consoleSvc.Authorize,
		Logger:           log,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting humanid-core", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
