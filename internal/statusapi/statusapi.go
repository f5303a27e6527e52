// Package statusapi exposes a minimal read-only HTTP surface over the
// pipeline's ledger: a health check and a backlog/ETA status endpoint.
package statusapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chico-council/meeting-pipeline/internal/database"
	"github.com/chico-council/meeting-pipeline/internal/orchestrator"
	"github.com/chico-council/meeting-pipeline/internal/version"
)

// Server wraps a gin router exposing /health and /status.
type Server struct {
	DB           *sql.DB
	Orchestrator *orchestrator.Orchestrator
	router       *gin.Engine
}

// NewServer builds the router, registering routes.
func NewServer(db *sql.DB, o *orchestrator.Orchestrator) *Server {
	s := &Server{DB: db, Orchestrator: o, router: gin.Default()}
	s.router.GET("/health", s.health)
	s.router.GET("/status", s.status)
	return s
}

// ServeHTTP lets Server be driven directly by httptest without binding a
// port, and satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the HTTP server on addr, blocking until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) health(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := database.Health(reqCtx, s.DB)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": dbHealth,
			"version":  version.Full(),
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealth,
		"version":  version.Full(),
	})
}

func (s *Server) status(c *gin.Context) {
	st, err := s.Orchestrator.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_meetings":  st.Stats.TotalMeetings,
		"by_status":       st.Stats.ByStatus,
		"recent_failures": st.Stats.RecentFailures,
		"eta_remaining":   st.ETARemaining.String(),
	})
}
