package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"gatehouse/internal/audit"
	"gatehouse/internal/identity"
	"gatehouse/internal/platform/config"
	"gatehouse/internal/platform/httpserver"
	"gatehouse/internal/platform/logger"
	platformmetrics "gatehouse/internal/platform/metrics"
	"gatehouse/internal/platform/middleware"
	"gatehouse/internal/platform/ratelimit"
	platformredis "gatehouse/internal/platform/redis"
	"gatehouse/internal/redirect"
	"gatehouse/internal/session"
	"gatehouse/internal/signup"
	signupmetrics "gatehouse/internal/signup/metrics"
	"gatehouse/internal/token"
	httptransport "gatehouse/internal/transport/http"
	"gatehouse/pkg/domain"
)

// main wires dependencies and keeps the process lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.DevMode)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("gatehouse exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session storage: Redis when configured, in-memory otherwise.
	var sessionStore session.Store
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	var limiterStore ratelimit.Store
	if redisClient != nil {
		defer redisClient.Close()
		sessionStore = session.NewRedisStore(redisClient.Client)
		limiterStore = ratelimit.NewRedisStore(redisClient.Client)
		log.Info("session store: redis")
	} else {
		sessionStore = session.NewInMemoryStore()
		limiterStore = ratelimit.NewInMemoryStore()
		log.Info("session store: in-memory")
	}

	// Audit storage: Postgres when configured, in-memory otherwise.
	var auditStore audit.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		pgStore := audit.NewPostgresStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
		auditStore = pgStore
		log.Info("audit store: postgres")
	} else {
		auditStore = audit.NewInMemoryStore()
		log.Info("audit store: in-memory")
	}

	// Audit fan-out: Kafka when configured.
	var publisher audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer kafka.Close()
		if err := kafka.EnsureTopic(ctx, 3, 1); err != nil {
			return err
		}
		publisher = kafka
		log.Info("audit publisher: kafka", "topic", cfg.Kafka.Topic)
	}

	recorder := audit.NewRecorder(cfg.AuditBuffer, log)
	worker := audit.NewWorker(auditStore, publisher, recorder.Inbox(), log)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, "gatehouse")
	activator := session.NewActivator(sessionStore, tokens, log, cfg.SessionTTL)

	newClient := func(attemptID domain.AttemptID) signup.ResourceClient {
		if cfg.IdentityBaseURL == "" {
			return identity.NewFakeClient(attemptID)
		}
		return identity.NewClient(identity.ClientConfig{
			BaseURL:      cfg.IdentityBaseURL,
			PollInterval: cfg.PollInterval,
			Logger:       log,
		}, attemptID)
	}
	if cfg.IdentityBaseURL == "" {
		log.Warn("IDENTITY_BASE_URL unset, using in-memory fake identity service")
	}

	signups := signup.NewService(signup.ServiceConfig{
		NewClient:   newClient,
		Sessions:    activator,
		Audit:       recorder,
		Logger:      log,
		Metrics:     signupmetrics.New(),
		Providers:   cfg.Providers,
		PollTimeout: cfg.PollTimeout,
		Paths: signup.Paths{
			SignUp:      cfg.SignUpPath,
			SignIn:      cfg.SignInPath,
			AfterSignUp: cfg.AfterSignUpPath,
			SSOCallback: cfg.SSOCallbackPath,
		},
	})

	engine := redirect.NewEngine(log, cfg.DevMode)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:  log,
		Metrics: platformmetrics.NewHTTP(),
		SignUps: httptransport.NewSignUpHandler(signups, log),
		Redirect: httptransport.NewRedirectHandler(httptransport.RedirectHandlerConfig{
			Engine:            engine,
			Logger:            log,
			SignIn:            redirect.FlowPaths{Base: cfg.SignInPath, AfterDefault: cfg.AfterSignUpPath},
			SignUp:            redirect.FlowPaths{Base: cfg.SignUpPath, AfterDefault: cfg.AfterSignUpPath},
			SingleSessionMode: cfg.SingleSessionMode,
			Debug:             cfg.DevMode,
		}),
		Sessions:  httptransport.NewSessionHandler(sessionStore, log),
		Tokens:    tokens,
		RateLimit: limiterStore,
		RateCfg: middleware.RateLimitConfig{
			Limit:  cfg.RateLimit,
			Window: cfg.RateLimitWindow,
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("gatehouse listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return httpserver.Shutdown(srv, 10*time.Second)
	})

	return g.Wait()
}
