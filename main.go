package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollvault/cliparse"
	"github.com/danielhkuo/pollvault/db"
	"github.com/danielhkuo/pollvault/engine"
	"github.com/danielhkuo/pollvault/ledger"
	"github.com/danielhkuo/pollvault/router"
	"github.com/danielhkuo/pollvault/store"
)

func main() {
	var err error

	// Load .env if present; real env vars take precedence
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Connect to the token ledger
	ledgerClient := ledger.Dial(cfg.LedgerURL, cfg.LedgerTimeout)
	if err := ledgerClient.Ping(context.Background()); err != nil {
		slog.Error("ledger ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Ledger reachable", "url", cfg.LedgerURL)

	// Wire the engine and router
	eng := engine.New(store.New(dbConn), ledgerClient, cfg)
	mux := router.NewRouter(eng)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
