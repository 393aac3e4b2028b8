// Command api serves the ventilatory-threshold scoring core behind an HTTP boundary:
// passkey authentication, health-profile storage, and workout scoring/reporting.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/summitpulse/ventiscore/internal/coach"
	"github.com/summitpulse/ventiscore/internal/envstruct"
	"github.com/summitpulse/ventiscore/internal/errors"
	"github.com/summitpulse/ventiscore/internal/logging"
	"github.com/summitpulse/ventiscore/internal/sqlite"
	"github.com/summitpulse/ventiscore/internal/webauthnhandler"
)

type application struct {
	logger          *slog.Logger
	webAuthnHandler *webauthnhandler.Handler
	sessionManager  *scs.SessionManager
	profiles        *sqlite.ProfileRepository
	coach           *coach.Client
	db              *sqlite.Database
}

type config struct {
	// Addr is the address to listen on. Use localhost:0 to choose a port dynamically.
	Addr string `env:"VENTISCORE_ADDR" envDefault:"localhost:8081"`
	// FQDN is the fully qualified domain name used for the WebAuthn Relying Party config.
	FQDN string `env:"VENTISCORE_FQDN" envDefault:"localhost"`
	// SqliteURL is the URL to the SQLite database. Use ":memory:" for an ethereal database.
	SqliteURL string `env:"VENTISCORE_SQLITE_URL" envDefault:"./ventiscore.sqlite3"`
	// OpenAIAPIKey enables coach narratives when set; scoring works without it.
	OpenAIAPIKey string `env:"VENTISCORE_OPENAI_API_KEY" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cancel context.CancelFunc
	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db)

	webAuthnHandler, err := webauthnhandler.New(cfg.Addr, cfg.FQDN, logger, sessionManager, db)
	if err != nil {
		return errors.Wrap(err, "new webauthn handler")
	}

	var coachClient *coach.Client
	if cfg.OpenAIAPIKey != "" {
		coachClient = coach.New(cfg.OpenAIAPIKey, logger)
	}

	app := application{
		logger:          logger,
		webAuthnHandler: webAuthnHandler,
		sessionManager:  sessionManager,
		profiles:        sqlite.NewProfileRepository(db),
		coach:           coachClient,
		db:              db,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(db *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.ReadWrite, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
