package router

import (
	"net/http"
	"time"

	hrest "ledger-service/internal/handler/rest"
	hws "ledger-service/internal/handler/ws"
	"ledger-service/pkg/auth/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	RateLimitBlock     time.Duration
}

func SetupRoutes(
	r chi.Router,
	h *hrest.LedgerHandler,
	sock *hws.SocketHandler,
	auth *middleware.AuthMiddleware,
	rdb redis.UniversalClient,
	opts Options,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	allowCredentials := true
	for _, o := range opts.CORSOrigins {
		if o == "*" {
			allowCredentials = false
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	// Unauthenticated callers are limited per IP, admins per admin id.
	limit := func(prefix string) func(http.Handler) http.Handler {
		if rdb == nil || opts.RateLimitPerMinute <= 0 {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimiter(rdb, opts.RateLimitPerMinute, time.Minute, opts.RateLimitBlock, prefix)
	}

	r.Get("/health", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(limit("ledger:login")).Post("/auth/login", h.HandleLogin)

		// ============================================================
		// Protected Endpoints (require auth)
		// ============================================================
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Require)
			pr.Use(limit("ledger"))

			pr.Get("/ws", sock.HandleWS)

			pr.Route("/parties", func(r chi.Router) {
				r.Get("/", h.HandleListParties)
				r.Post("/", h.HandleCreateParty)
				r.Get("/search/{term}", h.HandleSearchParties)
				r.Get("/{id}", h.HandleGetParty)
				r.Put("/{id}", h.HandleUpdateParty)
				r.Delete("/{id}", h.HandleDeleteParty)
			})

			pr.Route("/transaction-types", func(r chi.Router) {
				r.Get("/", h.HandleListTransactionTypes)
				r.Post("/", h.HandleCreateTransactionType)
				r.Get("/{id}", h.HandleGetTransactionType)
				r.Put("/{id}", h.HandleUpdateTransactionType)
				r.Delete("/{id}", h.HandleDeleteTransactionType)
			})

			pr.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.HandleListTransactions)
				r.Post("/", h.HandleCreateTransaction)
				r.Get("/outstanding/total", h.HandleOutstandingTotal)
				r.Get("/{id}", h.HandleGetTransaction)
				r.Put("/{id}", h.HandleUpdateTransaction)
				r.Delete("/{id}", h.HandleDeleteTransaction)
			})
		})
	})

	return r
}
