package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/bodega/internal/annotations"
	"github.com/erazemk/bodega/internal/api"
	"github.com/erazemk/bodega/internal/bot"
	"github.com/erazemk/bodega/internal/db"
	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/media"
	"github.com/erazemk/bodega/internal/recon"
	"github.com/erazemk/bodega/internal/returns"
	"github.com/erazemk/bodega/internal/saleslog"
	"github.com/erazemk/bodega/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// envGroupID parses a Telegram chat ID from an environment variable;
// a missing variable yields zero.
func envGroupID(name string) (int64, error) {
	v := os.Getenv(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return id, nil
}

func main() {
	fs := flag.NewFlagSet("bodega", flag.ContinueOnError)

	var dataDir string
	fs.StringVar(&dataDir, "data", "sistema_bodega", "")
	fs.StringVar(&dataDir, "D", "sistema_bodega", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "bodega.sqlite3", "")
	fs.StringVar(&dbPath, "d", "bodega.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var adminUser string
	fs.StringVar(&adminUser, "user", "Admin", "")
	fs.StringVar(&adminUser, "u", "Admin", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var confirmGroup string
	fs.StringVar(&confirmGroup, "confirm-group", "Entra-sale-bodega", "")

	var saleGroup string
	fs.StringVar(&saleGroup, "sale-group", "Ventas", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: bodega [flags]

Flags:
  -D, -data <dir>           data directory for photos, logs and the index (default: sistema_bodega)
  -d, -db <path>            SQLite database path (default: bodega.sqlite3)
  -a, -addr <host:port>     listen address (default: :8080)
  -u, -user <name>          admin username on first run (default: Admin)
  -l, -log <path>           log file path (default: no file, stdout/stderr only)
  -confirm-group <name>     directory name for the confirmation group (default: Entra-sale-bodega)
  -sale-group <name>        directory name for the sales group (default: Ventas)
  -h, -help                 show this help and exit

Environment:
  TELEGRAM_BOT_TOKEN        bot token (required to start the bot)
  GRUPO_CONFIRMACION_ID     confirmation group chat ID
  GRUPO_VENTAS_ID           sales group chat ID
  GRUPO_DEVOLUCIONES_ID     returns group chat ID
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		database, password, err := initDatabase(dbPath, adminUser)
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		database.Close()

		printInitResult(dbPath, adminUser, password)
		fmt.Println()
	}

	// Open database.
	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", dbPath)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		os.Exit(1)
	}

	// Filesystem stores.
	ix := index.New(filepath.Join(dataDir, "fotos_index.json"))
	sales := saleslog.New(filepath.Join(dataDir, "logs"))
	photos := media.New(filepath.Join(dataDir, "fotos"))
	notes := annotations.New(filepath.Join(dataDir, "anotaciones"))

	confirmGroupID, err := envGroupID("GRUPO_CONFIRMACION_ID")
	if err != nil {
		slog.Error("invalid group configuration", "error", err)
		os.Exit(1)
	}
	saleGroupID, err := envGroupID("GRUPO_VENTAS_ID")
	if err != nil {
		slog.Error("invalid group configuration", "error", err)
		os.Exit(1)
	}
	returnsGroupID, err := envGroupID("GRUPO_DEVOLUCIONES_ID")
	if err != nil {
		slog.Error("invalid group configuration", "error", err)
		os.Exit(1)
	}

	engine := recon.New(ix, confirmGroupID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the Telegram bot when a token is configured. The HTTP dashboard
	// works without it.
	var notifier returns.Notifier
	var tgBot *bot.Bot
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		tg, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			slog.Error("failed to connect to Telegram", "error", err)
			os.Exit(1)
		}
		tgBot = bot.New(tg, bot.Config{
			ConfirmGroupID:   confirmGroupID,
			ConfirmGroupName: confirmGroup,
			SaleGroupID:      saleGroupID,
			SaleGroupName:    saleGroup,
			ReturnsGroupID:   returnsGroupID,
		}, engine, nil, ix, sales, photos)
		notifier = tgBot
	} else {
		slog.Warn("TELEGRAM_BOT_TOKEN not set, running dashboard only")
	}

	proc := returns.New(ix, notifier)
	if tgBot != nil {
		tgBot.SetReturns(proc)
		go func() {
			if err := tgBot.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("bot stopped", "error", err)
			}
		}()
	}

	router := api.NewRouter(api.Deps{
		DB:          database,
		JWTSecret:   jwtSecret,
		Index:       ix,
		Returns:     proc,
		Sales:       sales,
		Media:       photos,
		Annotations: notes,
		SaleGroup:   saleGroup,
	})
	handler := api.LoggingMiddleware(router)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// initDatabase creates a new database, ensures the schema, and creates the admin user.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("ensuring schema: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	ctx := context.Background()
	_, err = store.CreateUser(ctx, database, adminUsername, string(hash), "admin")
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("creating admin user: %w", err)
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password — it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
