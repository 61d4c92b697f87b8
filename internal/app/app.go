package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/moviegraph/internal/catalog"
	"github.com/yungbote/moviegraph/internal/data/db"
	"github.com/yungbote/moviegraph/internal/data/graph"
	"github.com/yungbote/moviegraph/internal/data/repos"
	httpserver "github.com/yungbote/moviegraph/internal/http"
	httpH "github.com/yungbote/moviegraph/internal/http/handlers"
	"github.com/yungbote/moviegraph/internal/observability"
	"github.com/yungbote/moviegraph/internal/platform/logger"
	"github.com/yungbote/moviegraph/internal/platform/neo4jdb"
	"github.com/yungbote/moviegraph/internal/platform/redisdb"
	"github.com/yungbote/moviegraph/internal/services"
)

type Services struct {
	Ingest services.IngestService
}

// App owns every process-wide handle. Build it once with New and release it with
// Close.
type App struct {
	Log      *logger.Logger
	Cfg      Config
	Metrics  *observability.Metrics
	Catalog  *catalog.Catalog
	Ledger   *db.Service
	Services Services

	rdb          *goredis.Client
	shutdownOtel func(context.Context) error
	cancel       context.CancelFunc
}

type Option func(*options)

type options struct {
	store graph.Store
}

// WithStore replaces the Neo4j-backed store, skipping the graph connection.
func WithStore(store graph.Store) Option {
	return func(o *options) { o.store = store }
}

func New(ctx context.Context, cfg Config, log *logger.Logger, opts ...Option) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("app: logger required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{Log: log, Cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close(context.WithoutCancel(ctx))
		}
	}()

	a.shutdownOtel = observability.InitOTel(ctx, log, cfg.Otel)
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
	}

	store := o.store
	if store == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		log.Info("Connecting to neo4j...")
		client, err := neo4jdb.New(ctx, cfg.Neo4j, log)
		if err != nil {
			return nil, fmt.Errorf("init neo4j: %w", err)
		}
		neo, err := graph.NewNeo4jStore(client, log)
		if err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		store = neo
	}

	if cfg.Cache.RedisAddr != "" {
		rdb, err := redisdb.New(ctx, cfg.Cache.RedisAddr, log)
		if err != nil {
			// The cache is optional; queries go straight to the graph.
			log.Warn("query cache disabled", "error", err)
		} else {
			a.rdb = rdb
			store = graph.NewCachedStore(store, rdb, log, cfg.Cache.Prefix, cfg.Cache.TTL)
		}
	}

	cat, err := catalog.New(store, log, catalog.WithMetrics(a.Metrics))
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	a.Catalog = cat

	var runs repos.IngestRunRepo
	if cfg.LedgerDSN != "" {
		ledger, err := db.Open(cfg.LedgerDSN, log)
		if err != nil {
			return nil, fmt.Errorf("init ledger: %w", err)
		}
		a.Ledger = ledger
		runs = repos.NewIngestRunRepo(ledger.DB(), log)
	} else {
		log.Info("ingest ledger disabled")
	}

	log.Info("Wiring services...")
	a.Services = Services{
		Ingest: services.NewIngestService(cat, runs, log),
	}
	ok = true
	return a, nil
}

// Start launches background collectors. They stop on Close.
func (a *App) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if a.Metrics != nil && a.rdb != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.rdb, 0)
	}
}

// Router builds the HTTP API over the app's catalog and ledger.
func (a *App) Router() *gin.Engine {
	return httpserver.NewRouter(a.routerConfig())
}

func (a *App) routerConfig() httpserver.RouterConfig {
	return httpserver.RouterConfig{
		Log:           a.Log,
		Metrics:       a.Metrics,
		ServiceName:   a.Cfg.Otel.ServiceName,
		HealthHandler: httpH.NewHealthHandler(a.Catalog),
		MovieHandler:  httpH.NewMovieHandler(a.Log, a.Catalog),
		IngestHandler: httpH.NewIngestHandler(a.Services.Ingest),
	}
}

// Serve runs the HTTP API on Cfg.HTTPAddr until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.Catalog == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Start(ctx)
	return httpserver.NewServer(a.routerConfig()).Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Catalog != nil {
		if err := a.Catalog.Close(ctx); err != nil {
			a.Log.Warn("close graph store", "error", err)
		}
		a.Catalog = nil
	} else if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.Ledger != nil {
		if err := a.Ledger.Close(); err != nil {
			a.Log.Warn("close ledger", "error", err)
		}
		a.Ledger = nil
	}
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
		a.shutdownOtel = nil
	}
	a.Log.Sync()
}
