package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/fin-ledger/internal/auth/http"
	authservice "github.com/AlibekovAA/fin-ledger/internal/auth/service"
	"github.com/AlibekovAA/fin-ledger/internal/common/clock"
	"github.com/AlibekovAA/fin-ledger/internal/common/config"
	commoncrypto "github.com/AlibekovAA/fin-ledger/internal/common/crypto"
	"github.com/AlibekovAA/fin-ledger/internal/common/db"
	commonhttp "github.com/AlibekovAA/fin-ledger/internal/common/http"
	"github.com/AlibekovAA/fin-ledger/internal/common/jwtverify"
	"github.com/AlibekovAA/fin-ledger/internal/common/logger"
	"github.com/AlibekovAA/fin-ledger/internal/common/server"
	"github.com/AlibekovAA/fin-ledger/internal/events"
	kafkaevents "github.com/AlibekovAA/fin-ledger/internal/events/kafka"
	statementhttp "github.com/AlibekovAA/fin-ledger/internal/statement/http"
	statementrepo "github.com/AlibekovAA/fin-ledger/internal/statement/repository"
	statementservice "github.com/AlibekovAA/fin-ledger/internal/statement/service"
	userrepo "github.com/AlibekovAA/fin-ledger/internal/user/repository"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	users := userrepo.NewPgRepository(pool)
	ledger := statementrepo.NewPgRepository(pool)

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafkaevents.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Infof("kafka publisher enabled: topic=%s", cfg.KafkaTopic)
	}

	realClock := clock.NewRealClock()
	idGenerator := commoncrypto.NewUUIDGenerator()

	authSvc := authservice.NewAuthService(
		authservice.AuthServiceDeps{
			Repo:        users,
			Hasher:      &commoncrypto.BcryptHasher{},
			IDGenerator: idGenerator,
			Clock:       realClock,
			Log:         log,
		},
		authservice.AuthServiceConfig{
			JWTSecret:      cfg.JWTSecret,
			AccessTokenTTL: cfg.AccessTokenTTL,
		},
	)

	statementSvc := statementservice.NewStatementService(statementservice.StatementServiceDeps{
		Users:       users,
		Ledger:      ledger,
		IDGenerator: idGenerator,
		Clock:       realClock,
		Publisher:   publisher,
		Log:         log,
	})

	authMiddleware := jwtverify.Middleware(cfg.JWTSecret, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())
	authhttp.NewRouter(authSvc, cfg.RequestTimeout, log).RegisterRoutes(mux, authMiddleware)
	statementhttp.NewRouter(statementSvc, cfg.RequestTimeout, log).RegisterRoutes(mux, authMiddleware)

	rateLimiter := commonhttp.NewPathRateLimiter()
	handler := commonhttp.BuildBaseHandler(log, rateLimiter.Middleware(mux))

	srv := server.NewServer(server.DefaultServerConfig(cfg.HTTPPort), handler)

	server.StartWithGracefulShutdownAndHooks(srv, log, "api", []server.ShutdownHook{
		func(ctx context.Context) error {
			return publisher.Close()
		},
	})
}
