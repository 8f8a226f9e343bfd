package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/fantasy-draft/internal/config"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/account/static"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/account/supabase"
	gatewaycache "github.com/riskibarqy/fantasy-draft/internal/infrastructure/gateway/cache"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/gateway/memory"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/gateway/postgres"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/gateway/postgrest"
	"github.com/riskibarqy/fantasy-draft/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-draft/internal/platform/cache"
	"github.com/riskibarqy/fantasy-draft/internal/platform/dburl"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const dbPingTimeout = 5 * time.Second

// NewHTTPServer wires the configured gateway, verifier and services into a
// server. The returned cleanup releases whatever the gateway opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	supabaseBreaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.SupabaseCircuitEnabled,
		FailureThreshold: cfg.SupabaseCircuitFailures,
		OpenTimeout:      cfg.SupabaseCircuitOpenFor,
		HalfOpenMaxReq:   cfg.SupabaseCircuitHalfOpen,
	}

	next, cleanup, err := newGateway(cfg, supabaseBreaker, logger)
	if err != nil {
		return nil, nil, err
	}
	gateway := gatewaycache.NewGateway(next, cache.NewStore(cfg.ContestantCacheTTL))

	verifier := newVerifier(cfg, supabaseBreaker, logger)

	activeLeagues := usecase.NewActiveLeagueResolver(
		gateway,
		cache.NewBoundedStore(cfg.ActiveLeagueCacheTTL, cfg.ActiveLeagueCacheMaxItems),
		logger.With("component", "active_league"),
	)
	draftService := usecase.NewDraftService(gateway, activeLeagues, logger.With("component", "draft_service"))

	handler := httpapi.NewHandler(draftService, activeLeagues, logger)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handler:            handler,
		Verifier:           verifier,
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("app wired",
		"gateway_driver", cfg.GatewayDriver,
		"auth_driver", cfg.AuthDriver,
	)

	return server, cleanup, nil
}

func newGateway(cfg config.Config, breaker resilience.CircuitBreakerConfig, logger *logging.Logger) (draft.Gateway, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.GatewayDriver {
	case config.GatewayPostgREST:
		gw := postgrest.NewGateway(postgrest.Config{
			BaseURL:        cfg.SupabaseURL,
			AnonKey:        cfg.SupabaseAnonKey,
			Timeout:        cfg.SupabaseTimeout,
			Logger:         logger.With("component", "postgrest"),
			CircuitBreaker: breaker,
		})
		return gw, noop, nil
	case config.GatewayPostgres:
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewGateway(db), func(context.Context) error { return db.Close() }, nil
	case config.GatewayMemory:
		logger.Warn("using in-memory draft gateway with demo seed", "league_id", memory.DemoLeagueID)
		return memory.NewGateway(memory.DemoSeed(cfg.DemoCommissionerID)), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported gateway driver %q", cfg.GatewayDriver)
	}
}

func newVerifier(cfg config.Config, breaker resilience.CircuitBreakerConfig, logger *logging.Logger) httpapi.TokenVerifier {
	if cfg.AuthDriver == config.AuthStatic {
		logger.Warn("using static access tokens", "tokens", len(cfg.StaticAuthTokens))
		return static.NewVerifier(cfg.StaticAuthTokens)
	}

	return supabase.NewClient(supabase.Config{
		BaseURL:         cfg.SupabaseURL,
		AnonKey:         cfg.SupabaseAnonKey,
		Timeout:         cfg.SupabaseTimeout,
		CacheTTL:        cfg.AuthCacheTTL,
		CacheMaxEntries: cfg.AuthCacheMaxEntries,
		CircuitBreaker:  breaker,
		Logger:          logger.With("component", "supabase_auth"),
	})
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := dburl.Apply(cfg.DBURL, dburl.Options{
		DisablePreparedBinary: cfg.DBDisablePreparedBinary,
		ApplicationName:       cfg.ServiceName,
	})
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dburl.DatabaseName(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
