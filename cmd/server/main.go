// Package main is the entry point of the application
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/lobby-server/pkg/config"
	"github.com/tecu23/lobby-server/pkg/events"
	"github.com/tecu23/lobby-server/pkg/game"
	"github.com/tecu23/lobby-server/pkg/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	CheckOrigin: func(r *http.Request) bool {
		path := os.Getenv("FRONTEND_PATH")
		return path == "" || path == r.Header.Get("Origin")
	},
}

// application encapsulates global dependencies
type application struct {
	Logger    *zap.Logger
	Config    *config.Config
	Publisher *events.Publisher
	Registry  *game.Registry
	Handler   *server.Handler
	TCP       *server.Server
	Web       *http.Server

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	addr := flag.String("addr", "", "tcp listen address (overrides LISTEN_ADDR)")
	httpAddr := flag.String("http-addr", "", "http listen address (overrides HTTP_ADDR)")
	flag.Parse()

	// A missing .env file is fine; anything else is not.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic("loading env error: " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		panic("loading config error: " + err.Error())
	}
	if *debug {
		cfg.Debug = true
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	// Initialize logger
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	// Initialize event publisher
	publisher := events.NewPublisher()
	publisher.SubscribeAll(func(e events.Event) {
		logger.Debug("event",
			zap.String("type", string(e.Type)),
			zap.String("session_id", e.SessionID))
	})

	// Initialize session registry and connection handler
	broadcaster := game.NewBroadcaster(logger)
	registry := game.NewRegistry(cfg.MaxSpectators, broadcaster, publisher, logger)
	handler := server.NewHandler(registry, cfg, publisher, logger)

	app := &application{
		Logger:    logger,
		Config:    cfg,
		Publisher: publisher,
		Registry:  registry,
		Handler:   handler,
		TCP:       server.NewServer(cfg.ListenAddr, handler, cfg.SendTimeout, logger),
		StartTime: time.Now(),
	}

	if err := app.serve(); err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}
