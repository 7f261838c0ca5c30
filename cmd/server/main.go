package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"postboard/pkg/api"
	"postboard/pkg/auth"
	"postboard/pkg/pubsub"
	"postboard/pkg/storage"
	"postboard/pkg/storage/memdb"
	"postboard/pkg/storage/postgres"
)

const signingKeyEnv = "POSTBOARD_SIGNING_KEY"

type Config struct {
	HTTPAddr string `toml:"httpAddr"`
	LogLevel string `toml:"logLevel"`
	TokenTTL string `toml:"tokenTTL"`
}

func main() {
	var (
		configPath string
		httpAddr   string
		logLevel   string
		dev        bool
	)

	flag.StringVar(&configPath, "config", "cmd/server/config.toml", "Path to TOML config file")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.BoolVar(&dev, "dev", false, "Run the server in development mode with in-memory DB.")
	flag.Parse()

	// Secrets may live in a .env file next to the binary.
	_ = godotenv.Load()

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
	}

	// Override config with flags if set
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if !strings.Contains(cfg.HTTPAddr, ":") {
		log.Warn("[server] use ':' before port number, e.g. ':8080'")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}

	signingKey := os.Getenv(signingKeyEnv)
	if signingKey == "" {
		log.Fatalf("[server] %s must be set", signingKeyEnv)
	}

	ttl := auth.DefaultTokenTTL
	if cfg.TokenTTL != "" {
		d, err := time.ParseDuration(cfg.TokenTTL)
		if err != nil {
			log.Fatalf("[server] invalid tokenTTL %q: %v", cfg.TokenTTL, err)
		}
		ttl = d
	}

	var db storage.Storage
	switch dev {
	case true:
		log.Info("[server] running with in-memory DB")
		db = memdb.New()

	case false:
		conf := postgres.Config{
			User:     "postgres",
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			DBName:   "postboard",
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
		}
		if !conf.IsValid() {
			log.Fatal(fmt.Errorf("invalid postgres config: %+v", conf))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pg, err := postgres.New(ctx, conf.ConString())
		if err != nil {
			log.Fatalf("[server] failed to initialize storage, DB connection not established: %v", err)
		}
		if err := pg.Ping(ctx); err != nil {
			log.Fatal(fmt.Errorf("%w: %v", storage.ErrDBNotResponding, err))
		}
		log.Infof("[server] connected to postgres: %s", conf)
		db = pg
	}
	defer db.Close()

	authSvc, err := auth.New(db, []byte(signingKey), ttl)
	if err != nil {
		log.Fatalf("[server] failed to create auth service: %v", err)
	}

	api := api.New(db, authSvc, pubsub.New())
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Infof("[server] starting on %v", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}
}
