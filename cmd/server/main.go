package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/kiliankoe/rpsdash/internal/config"
	"github.com/kiliankoe/rpsdash/internal/game"
	"github.com/kiliankoe/rpsdash/internal/httpapi"
	"github.com/kiliankoe/rpsdash/internal/storage"
	"github.com/kiliankoe/rpsdash/internal/storage/backends"
	"github.com/kiliankoe/rpsdash/internal/ws"
	staticserver "github.com/kiliankoe/rpsdash/static"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
)

var version = "dev" // Set at build time via -ldflags

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`rpsdash - Rock Paper Scissors against the computer

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                Port to listen on (default: 8080)
  STORE_BACKEND       "file", "sqlite", "postgres" or "memory" (default: file)
  STORE_PATH          Directory for file/sqlite storage (default: ./rps-state)
  DATABASE_URL        Postgres connection string (postgres backend)
  STORAGE_KEY         Base key for saved games (default: rockPaperScissorsGame)
  SHARED_GAME         Everyone plays the same game (default: false)
  SOCKETIO_ENABLED    Serve the Socket.IO API (default: true)
  EXPORT_ENABLED      Append every round to a results file (default: false)
  EXPORT_FILE         Path of the results file (default: ./rps-results.txt)
  LOG_LEVEL           zerolog level (default: info)
  MAX_ENGINES         Games kept in memory at once (default: 1024)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("rpsdash %s\n", version)
		return
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	cfg, err := config.FromEnv()
	if err != nil {
		zerologlog.Error().Err(err).Msg("config")
		os.Exit(1)
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, port)
	stop()
	if err != nil {
		zerologlog.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. The store and socket server are closed
// before it returns, so os.Exit in main never skips them.
func run(ctx context.Context, cfg config.Config, port string) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{Addr: ":" + port, Handler: a.router}
	errc := make(chan error, 1)
	go func() {
		zerologlog.Info().Str("port", port).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	zerologlog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type app struct {
	router *gin.Engine
	store  storage.Store
	io     *socketio.Server
}

// newApp opens the store and wires the game routes, socket.io and the page onto one router.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	store, err := backends.Open(ctx, cfg.StoreBackend, cfg.StorePath, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	zerologlog.Info().Str("backend", cfg.StoreBackend).Msg("store ready")

	mcfg := game.ManagerConfig{
		BaseKey:    cfg.StorageKey,
		MaxEngines: cfg.MaxEngines,
		Reload:     backends.Shared(cfg.StoreBackend),
	}
	if cfg.ExportEnabled {
		mcfg.Exporter = game.NewExporter(cfg.ExportFile)
	}
	manager := game.NewManager(store, mcfg)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	api := &httpapi.Handler{Manager: manager, Shared: cfg.SharedGame}
	api.Mount(r)

	a := &app{router: r, store: store}
	if cfg.SocketIOEnabled {
		a.io = ws.New(manager, cfg.SharedGame).Mount(r)
	}

	// Serve frontend for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})
	return a, nil
}

// Close stops socket.io and then closes the store.
func (a *app) Close() error {
	if a.io != nil {
		if err := a.io.Close(); err != nil {
			zerologlog.Warn().Err(err).Msg("close socket.io")
		}
	}
	if err := a.store.Close(); err != nil {
		zerologlog.Warn().Err(err).Msg("close store")
		return err
	}
	return nil
}
