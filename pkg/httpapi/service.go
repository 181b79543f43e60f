// Package httpapi serves index searches over HTTP for hosts that cannot
// spawn the IPC server.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/bastiangx/mentionserve/internal/metrics"
	"github.com/bastiangx/mentionserve/pkg/config"
	"github.com/bastiangx/mentionserve/pkg/server"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	PingURL    = "/ping"
	SearchURL  = "/search"
	StatsURL   = "/stats"
	MetricsURL = "/metrics"
)

type Service struct {
	config  *config.Config
	index   server.Index
	metrics *metrics.Metrics
	limiter *rate.Limiter
	server  *http.Server
}

// NewService returns a service listening on config.Server.HTTPAddr.
func NewService(cfg *config.Config, index server.Index, m *metrics.Metrics) *Service {
	service := &Service{
		config:  cfg,
		index:   index,
		metrics: m,
		limiter: server.NewLimiter(cfg.Server.RateLimit, cfg.Server.Burst),
	}

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	service.SetupRouter(srv)
	service.server = srv
	return service
}

// SetupRouter establishes the HTTP router.
func (service *Service) SetupRouter(srv *http.Server) {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(PingURL, func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})
	router.GET(SearchURL, service.search)
	router.GET(StatsURL, service.stats)
	if service.metrics != nil {
		router.GET(MetricsURL, gin.WrapH(service.metrics.Handler()))
	}

	srv.Handler = router
}

// Handler exposes the router, mainly for tests.
func (service *Service) Handler() http.Handler {
	return service.server.Handler
}

// Start runs the HTTP server
func (service *Service) Start() error {
	return service.server.ListenAndServe()
}

func (service *Service) Shutdown(ctx context.Context) error {
	return service.server.Shutdown(ctx)
}
