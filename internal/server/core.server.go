package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ledger-service/internal/config"
	hrest "ledger-service/internal/handler/rest"
	hws "ledger-service/internal/handler/ws"
	"ledger-service/internal/pub"
	"ledger-service/internal/repository"
	"ledger-service/internal/router"
	"ledger-service/internal/usecase"
	"ledger-service/pkg/auth/jwtutil"
	"ledger-service/pkg/auth/middleware"
	notifier "ledger-service/pkg/notifier/ws"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type stores struct {
	parties      repository.PartyRepository
	types        repository.TransactionTypeRepository
	transactions repository.TransactionRepository
	admins       repository.AdminRepository
}

type eventSink interface {
	usecase.EventPublisher
	Close() error
}

// Server owns every long-lived component of the ledger service.
type Server struct {
	cfg    config.AppConfig
	logger *zap.Logger

	dbpool  *pgxpool.Pool
	rdb     *redis.Client
	events  eventSink
	manager *notifier.Manager
	relay   *pub.RedisRelay

	httpServer *http.Server
}

func NewServer(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	s := &Server{cfg: cfg, logger: logger}

	// --- Store ---
	st, err := s.openStores(ctx)
	if err != nil {
		return nil, err
	}

	// --- Redis (relay + rate limiting) ---
	if cfg.RedisAddr != "" {
		s.rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPass,
			DB:           0,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := s.rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("⚠️ Redis unreachable at startup, relay will keep retrying",
				zap.String("addr", cfg.RedisAddr),
				zap.Error(err))
		} else {
			logger.Info("✅ Redis connected", zap.String("addr", cfg.RedisAddr))
		}
	}

	// --- Event log ---
	if len(cfg.KafkaBrokers) > 0 {
		s.events = pub.NewKafkaEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	} else {
		s.events = pub.NoopEventPublisher{}
		logger.Info("no KAFKA_BROKERS configured, ledger events are not exported")
	}

	// --- Usecases ---
	ledgerUC := usecase.NewLedgerUsecase(st.transactions, logger)

	s.manager = notifier.NewManager(ledgerUC, logger).WithSendTimeout(cfg.WSSendTimeout)
	var changeNotifier usecase.ChangeNotifier = s.manager
	if s.rdb != nil {
		s.relay = pub.NewRedisRelay(s.rdb, cfg.RedisChannel, s.manager, logger)
		changeNotifier = s.relay
	}

	changes := usecase.NewChangePublisher(changeNotifier, s.events, ledgerUC, logger)
	sequencer := usecase.NewSerialSequencer(st.transactions, cfg.SerialMaxAttempts, logger)

	signer := jwtutil.NewSigner(jwtutil.JWTConfig{
		Secret:      cfg.JWTSecret,
		Issuer:      cfg.JWTIssuer,
		ExpireHours: cfg.JWTExpireHours,
	})
	verifier := jwtutil.NewVerifier(jwtutil.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
	})

	authUC := usecase.NewAuthUsecase(st.admins, signer, logger)
	if err := authUC.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		s.close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	partyUC := usecase.NewPartyUsecase(st.parties, changes, logger)
	typeUC := usecase.NewTransactionTypeUsecase(st.types, changes, logger)
	txUC := usecase.NewTransactionUsecase(st.transactions, st.parties, st.types, sequencer, changes, logger)

	// --- HTTP ---
	ledgerHandler := hrest.NewLedgerHandler(authUC, partyUC, typeUC, txUC, ledgerUC, logger)
	socketHandler := hws.NewSocketHandler(s.manager, cfg.CORSOrigins, logger)
	auth := middleware.NewAuthMiddleware(verifier, authUC, logger)

	var limiterClient redis.UniversalClient
	if s.rdb != nil {
		limiterClient = s.rdb
	}
	r := router.SetupRoutes(chi.NewRouter(), ledgerHandler, socketHandler, auth, limiterClient, router.Options{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBlock:     cfg.RateLimitBlock,
	})

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("✅ ledger service initialized",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("store", cfg.StoreDriver),
		zap.Bool("relay", s.relay != nil),
		zap.Bool("kafka", len(cfg.KafkaBrokers) > 0))

	return s, nil
}

func (s *Server) openStores(ctx context.Context) (*stores, error) {
	switch s.cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := repository.NewMemoryStore()
		s.logger.Warn("using in-memory store, data is lost on restart")
		return &stores{
			parties:      mem.Parties(),
			types:        mem.TransactionTypes(),
			transactions: mem.Transactions(),
			admins:       mem.Admins(),
		}, nil

	case config.StoreDriverPostgres:
		dbpool, err := config.ConnectDB(s.logger)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureSchema(ctx, dbpool); err != nil {
			dbpool.Close()
			return nil, err
		}
		s.dbpool = dbpool
		s.logger.Info("✅ Database connected",
			zap.Int32("max_conns", dbpool.Config().MaxConns),
			zap.Int32("min_conns", dbpool.Config().MinConns))
		return &stores{
			parties:      repository.NewPartyRepo(dbpool, s.logger),
			types:        repository.NewTransactionTypeRepo(dbpool, s.logger),
			transactions: repository.NewTransactionRepo(dbpool, s.logger),
			admins:       repository.NewAdminRepo(dbpool),
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", s.cfg.StoreDriver)
	}
}

// Handler exposes the HTTP routes.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves HTTP and the redis relay until ctx is cancelled, then shuts
// down gracefully and drains the subscriber registry.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("🚀 HTTP server listening", zap.String("addr", s.cfg.HTTPAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.relay != nil {
		g.Go(func() error {
			return s.runRelay(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("🛑 shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.manager.Close()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.close()
	return err
}

// runRelay resubscribes with backoff when the redis subscription drops.
func (s *Server) runRelay(ctx context.Context) error {
	delay := time.Second
	for {
		started := time.Now()
		err := s.relay.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(started) > time.Minute {
			delay = time.Second
		}
		s.logger.Warn("relay subscription lost, retrying",
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
}

func (s *Server) close() {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			s.logger.Warn("failed to flush event publisher", zap.Error(err))
		}
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.dbpool != nil {
		s.dbpool.Close()
	}
}
