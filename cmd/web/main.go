// cmd/web/main.go
//
// Folio – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (YAML + FOLIO_ env overlay + vault: secret resolution).
//
//  4. Open the submission archive DB when a DSN is configured, and pick
//     the mail delivery backend (SMTP relay, or log sink for dev).
//
//  5. Build the router:
//
//     • security headers           – middleware.Security
//     • request enrichment         – requestinfo.Enrich (UA + geo)
//     • visitor session            – sessions.Middleware (cookie + store)
//     • /api/contact               – token issuance + submission
//     • /metrics                   – Prometheus
//     • /                          – static portfolio assets
//
//  6. Run the server and the session sweeper on one errgroup; SIGINT or
//     SIGTERM drains in-flight requests before exit.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/foliohq/folio/internal/config"
	"github.com/foliohq/folio/internal/contact"
	"github.com/foliohq/folio/internal/database"
	"github.com/foliohq/folio/internal/logger"
	"github.com/foliohq/folio/internal/message"
	"github.com/foliohq/folio/internal/middleware"
	"github.com/foliohq/folio/internal/requestinfo"
	"github.com/foliohq/folio/internal/server"
	"github.com/foliohq/folio/internal/session"
)

const serverEnvPath = "/usr/local/etc/folio/global.env"

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		logOut.Fatalf("open GeoLite2 DB: %v", err)
	}

	//
	// ── 2.  Submission archive (optional) ───────────────────────────────
	//
	var store *contact.Store
	if cfg.Database.DSN != "" {
		logOut.Infow("connecting to archive DB")
		db, err := database.Open(cfg.MySQLDSN())
		if err != nil {
			logOut.Fatalf("connect archive DB: %v", err)
		}
		defer db.Close()

		store = contact.NewStore(db)
		if err := store.EnsureSchema(context.Background()); err != nil {
			logOut.Fatalf("ensure archive schema: %v", err)
		}

		// Read back the newest rows as an early sanity check.
		if recent, err := store.Recent(context.Background(), 5); err != nil {
			logOut.Warnw("archive read-back failed", "err", err)
		} else {
			logOut.Infow("archive DB online", "recent_submissions", len(recent))
		}
	} else {
		logOut.Warnw("no database DSN configured – submissions will not be archived")
	}

	//
	// ── 3.  Mail delivery backend ───────────────────────────────────────
	//
	var mailer message.Mailer = message.Log{}
	if cfg.Mail.Host != "" {
		mailer = &message.SMTP{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			From:     cfg.Mail.From,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
		}
		logOut.Infow("mail backend", "kind", "smtp", "host", cfg.Mail.Host)
	} else {
		logOut.Warnw("no mail host configured – using log sink")
	}

	//
	// ── 4.  Sessions ────────────────────────────────────────────────────
	//
	sessions := session.NewMemory()
	manager := session.NewManager(sessions, cfg.Session.CookieName, cfg.Session.TTL)

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich)

	r.Route("/api/contact", func(api chi.Router) {
		api.Use(manager.Middleware)
		api.Mount("/", contact.NewHandler(mailer, store, cfg.Mail.To).Routes())
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Static portfolio assets (index.html, app.js, styles).
	staticDir := filepath.Join(cfg.Paths.Root, "web", "static")
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	//
	// ── 6.  Serve until signalled ───────────────────────────────────────
	//
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.HTTP.ListenAddr, handler)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := sessions.Sweep(ctx, time.Minute)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalf("server exit: %v", err)
	}
	logOut.Infow("shutdown complete")
}
