package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	fuelcell "Polarcell/internal/calc/fuelcell"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config is the server configuration, read from the environment after an
// optional .env file.
type Config struct {
	Addr        string
	TLSCert     string
	TLSKey      string
	DatabaseURL string
	TokenKey    []byte

	RateLimit rate.Limit
	RateBurst int

	BatchWorkers int
	Constants    fuelcell.Constants
	Solver       fuelcell.SolverOptions

	LogLevel  log.Level
	LogFormat string
}

// Load reads files (default ".env") and then the process environment.
// A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: loading env file: %w", err)
	}

	cfg := Config{
		Addr:        getenv("ADDR", ":443"),
		TLSCert:     getenv("TLS_CERT", "server.crt"),
		TLSKey:      getenv("TLS_KEY", "server.key"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		TokenKey:    []byte(os.Getenv("TOKEN_KEY")),
		LogFormat:   getenv("LOG_FORMAT", "text"),
		Constants:   fuelcell.DefaultConstants(),
		Solver:      fuelcell.DefaultSolverOptions(),
	}
	if len(cfg.TokenKey) == 0 {
		return Config{}, fmt.Errorf("config: TOKEN_KEY environment variable is not set")
	}

	limit, err := getFloat("RATE_LIMIT", 5)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimit = rate.Limit(limit)
	if cfg.RateBurst, err = getInt("RATE_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.BatchWorkers, err = getInt("BATCH_WORKERS", runtime.NumCPU()); err != nil {
		return Config{}, err
	}
	if cfg.Solver.Tolerance, err = getFloat("SOLVER_TOLERANCE", cfg.Solver.Tolerance); err != nil {
		return Config{}, err
	}
	if cfg.Solver.MaxIter, err = getInt("SOLVER_MAX_ITER", cfg.Solver.MaxIter); err != nil {
		return Config{}, err
	}
	if path := os.Getenv("CONSTANTS_FILE"); path != "" {
		if cfg.Constants, err = fuelcell.LoadConstants(path); err != nil {
			return Config{}, err
		}
	}
	if cfg.LogLevel, err = log.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// Model returns the calculator configured by cfg.
func (cfg Config) Model() fuelcell.Calculator {
	c := cfg.Constants
	return fuelcell.Calculator{Constants: &c, Solver: cfg.Solver}
}

// SetupLogging applies the log level and format to the standard logger.
func (cfg Config) SetupLogging() {
	log.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return x, nil
}
