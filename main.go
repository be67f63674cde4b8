package main

import (
	auth "Polarcell/internal/auth"
	batch "Polarcell/internal/calc/batch"
	fuelcell "Polarcell/internal/calc/fuelcell"
	importer "Polarcell/internal/calc/importer"
	report "Polarcell/internal/calc/report"
	config "Polarcell/internal/config"
	repo "Polarcell/internal/repo"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

// HandleList registers every route on mux.
func HandleList(ctx context.Context, mux *mux.Router, cfg config.Config, users repo.Repository) {
	authEnv := &auth.Authenv{JWTkey: cfg.TokenKey, Repo: users}
	limiter := auth.NewIPRateLimiter(cfg.RateLimit, cfg.RateBurst)
	go limiter.Cleanup(ctx, time.Minute)

	model := cfg.Model()
	runner := batch.Runner{Model: model, Workers: cfg.BatchWorkers}

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	fuelcellH := &fuelcell.Handler{Model: model}
	batchH := &batch.Handler{Runner: runner}
	importerH := &importer.Handler{Runner: runner}
	reportH := &report.Handler{Model: model}

	tools := secureApi.PathPrefix("/tools/fuelcell").Subrouter()
	tools.HandleFunc("/calc", fuelcellH.Calc).Methods("POST")
	tools.HandleFunc("/batch", batchH.Calc).Methods("POST")
	tools.HandleFunc("/import", importerH.Import).Methods("POST")
	tools.HandleFunc("/export", importerH.Export).Methods("POST")
	tools.HandleFunc("/report", reportH.Generate).Methods("POST")

	mux.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/main")))
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.SetupLogging()

	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	users := repo.NewPostgresUserDB(db)
	if err := users.Migrate(ctx); err != nil {
		log.Fatalf("migrating users table: %v", err)
	}

	mux := mux.NewRouter()
	HandleList(ctx, mux, cfg, users)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithField("addr", cfg.Addr).Info("starting server")
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("stopping server: %v", err)
	}
	log.Info("server stopped")

	wg.Wait()
}
