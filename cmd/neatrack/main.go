package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/neatrack/internal/backup"
	"github.com/pavelanni/neatrack/internal/handler"
	"github.com/pavelanni/neatrack/internal/model"
	"github.com/pavelanni/neatrack/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "neatrack",
		Short: "Offline coursework progress tracker for teachers",
	}

	serve := serveCmd()
	root.AddCommand(serve, backupCmd(), restoreCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `neatrack --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local tracker API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", "127.0.0.1:8080", "HTTP listen address")
	f.String("db", "neatrack.db", "SQLite data file path")
	f.String("backup-dir", "backups", "Directory for snapshot files")
	f.Duration("autosave-interval", backup.DefaultAutosaveInterval, "Autosave period")
	f.String("passcode", "", "Initial passcode (or set NEATRACK_PASSCODE)")
	f.Bool("secure-cookies", false, "Set Secure flag on session cookies")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full snapshot to the backup directory",
		RunE:  runBackup,
	}
	f := cmd.Flags()
	f.String("db", "neatrack.db", "SQLite data file path")
	f.String("backup-dir", "backups", "Directory for snapshot files")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func restoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Load a backup file (full snapshot or app-data export)",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}
	f := cmd.Flags()
	f.String("db", "neatrack.db", "SQLite data file path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the structured app-data export as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "neatrack.db", "SQLite data file path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("NEATRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("neatrack")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/neatrack")
	v.AddConfigPath("/etc/neatrack")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func openStore(v *viper.Viper) (*store.KV, *store.Tracker, *backup.Manager, error) {
	kv, err := store.New(v.GetString("db"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	tracker := store.NewTracker(kv)
	return kv, tracker, backup.NewManager(kv, tracker), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	kv, tracker, backups, err := openStore(v)
	if err != nil {
		return err
	}
	defer kv.Close()

	auth := store.NewAuth(kv, model.KeyPasscode, model.KeyAuthSessions)
	if err := seedPasscode(auth, v.GetString("passcode")); err != nil {
		return err
	}

	h := handler.New(kv, tracker, auth, backups, handler.Config{
		SecureCookies: v.GetBool("secure-cookies"),
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go backups.Autosave(ctx, v.GetDuration("autosave-interval"), auth.Authenticated)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"autosave_interval", v.GetDuration("autosave-interval"),
	)
	return http.ListenAndServe(addr, r)
}

func seedPasscode(auth *store.Auth, passcode string) error {
	if auth.HasPasscode() {
		return nil
	}
	if passcode == "" {
		return fmt.Errorf("a passcode is required on first run: set --passcode or NEATRACK_PASSCODE")
	}
	if err := auth.SetPasscode(passcode); err != nil {
		return err
	}
	slog.Info("set initial passcode")
	return nil
}

func runBackup(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	kv, _, backups, err := openStore(v)
	if err != nil {
		return err
	}
	defer kv.Close()

	path, err := backups.CreateFile(v.GetString("backup-dir"))
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	slog.Info("wrote backup", "path", path)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	kv, _, backups, err := openStore(v)
	if err != nil {
		return err
	}
	defer kv.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	if err := backups.Restore(f); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	slog.Info("restored backup", "path", args[0])
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	kv, _, backups, err := openStore(v)
	if err != nil {
		return err
	}
	defer kv.Close()

	data, err := json.MarshalIndent(backups.AppData(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	if outPath == "" || outPath == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
