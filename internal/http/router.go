package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/moviegraph/internal/http/handlers"
	httpMW "github.com/yungbote/moviegraph/internal/http/middleware"
	"github.com/yungbote/moviegraph/internal/observability"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler *httpH.HealthHandler
	MovieHandler  *httpH.MovieHandler
	IngestHandler *httpH.IngestHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "moviegraph"
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("/api")
	{
		// Movies
		if cfg.MovieHandler != nil {
			api.GET("/movies/by-director", cfg.MovieHandler.ByDirector)
			api.GET("/movies/by-actors", cfg.MovieHandler.ByActors)
			api.GET("/movies/by-genre", cfg.MovieHandler.ByGenre)
			api.GET("/movies/by-country", cfg.MovieHandler.ByCountry)
			api.POST("/movies/:id/cast", cfg.MovieHandler.LinkActor)
			api.DELETE("/movies/:id/cast/:person", cfg.MovieHandler.UnlinkActor)

			api.GET("/stats/counts", cfg.MovieHandler.Counts)
			api.GET("/stats/top-genres", cfg.MovieHandler.TopGenres)
			api.GET("/stats/top-collaborators", cfg.MovieHandler.TopCollaborators)
			api.GET("/stats/director-cameos", cfg.MovieHandler.DirectorCameos)
		}

		// Ingestion ledger
		if cfg.IngestHandler != nil {
			api.GET("/ingest/runs", cfg.IngestHandler.ListRuns)
		}
	}

	return r
}
