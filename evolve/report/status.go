package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// StatusServer exposes /health, /best and /metrics for a running evolution. It
// is also a Reporter, which is how it learns about generations and new bests.
type StatusServer struct {
	Addr string

	service  string
	started  time.Time
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	mu         sync.RWMutex
	runID      string
	generation int
	last       *evolve.GenerationReport
	best       evolve.BestRecord
}

var _ evolve.Reporter = (*StatusServer)(nil)

// NewStatusServer creates a status server listening on addr. Metrics are served
// from gatherer, or the default registry when it is nil.
func NewStatusServer(service, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) *StatusServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusServer{
		Addr:     addr,
		service:  service,
		started:  time.Now(),
		gatherer: gatherer,
		logger:   logger,
		best:     evolve.NewBestRecord(),
	}
}

// StartGeneration records the run and generation shown by /health.
func (s *StatusServer) StartGeneration(runID string, generation int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.generation = generation
}

// EndGeneration keeps the latest generation report for /health.
func (s *StatusServer) EndGeneration(rep evolve.GenerationReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &rep
}

// NewBest replaces the record served by /best.
func (s *StatusServer) NewBest(runID string, record evolve.BestRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.best = record.Clone()
}

// Handler builds the HTTP routes.
func (s *StatusServer) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		resp := gin.H{
			"status":         "healthy",
			"service":        s.service,
			"uptime_seconds": time.Since(s.started).Seconds(),
			"run_id":         s.runID,
			"generation":     s.generation,
			"best_fitness":   s.best.Fitness,
		}
		if s.last != nil {
			resp["last_generation"] = s.last
		}
		c.JSON(http.StatusOK, resp)
	})

	r.GET("/best", func(c *gin.Context) {
		s.mu.RLock()
		best := s.best.Clone()
		runID := s.runID
		s.mu.RUnlock()

		if !best.HasGenome() {
			c.JSON(http.StatusNotFound, gin.H{"error": evolve.ErrNoBestGenome.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"run_id":     runID,
			"generation": best.Generation,
			"fitness":    best.Fitness,
			"lap_time":   best.LapTime,
			"genome":     best.Genome,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	return r
}

// Start launches the HTTP server and returns immediately. The server shuts down
// when ctx is cancelled.
func (s *StatusServer) Start(ctx context.Context) {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		s.logger.Info("status server started", "service", s.service, "addr", s.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()
}
