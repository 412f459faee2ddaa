// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/electsim/cliparse"
	"github.com/danielhkuo/electsim/db"
	"github.com/danielhkuo/electsim/middleware"
	"github.com/danielhkuo/electsim/router"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "electsim",
		Short:        "Electoral system calculator and simulator",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newCalcCmd(), newGenerateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [flags]",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. Flags fall back to environment variables:
PORT, DATABASE_URL, DATABASE_TYPE, ADMIN_KEY_SALT, SLUG_SALT,
MAX_VOTERS, MAX_CANDIDATES, LOG_LEVEL, LOG_FORMAT.`,
		// cliparse owns the server flags
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliparse.ParseFlags(args)
			if err != nil {
				slog.Error("Error parsing flags", "error", err)
				return err
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
			return serve(cfg)
		},
	}
}

// newLogger builds the process logger. Unknown levels fall back to info.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openDB connects to the configured store and creates the schema.
func openDB(cfg cliparse.Config) (*sql.DB, error) {
	conn, err := sql.Open(cfg.Driver(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if cfg.Driver() == "sqlite" {
		// SQLite allows one writer at a time
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func serve(cfg cliparse.Config) error {
	dbConn, err := openDB(cfg)
	if err != nil {
		slog.Error("database setup failed", "error", err)
		return err
	}
	defer dbConn.Close()
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	mux := router.NewRouter(dbConn, cfg)

	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}
