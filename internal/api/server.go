package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docmask/internal/cms"
	"github.com/dgallion1/docmask/internal/config"
	"github.com/dgallion1/docmask/internal/masker"
	"github.com/dgallion1/docmask/internal/pipeline"
	"github.com/dgallion1/docmask/internal/wordfreq"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docmask.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        pipeline.Store
	cmsStats     *cms.Stats
	oracle       masker.NounOracle
	hist         *wordfreq.Aggregator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. cmsStats may be nil
// when the store is not backed by the CMS client.
func NewServer(orch *pipeline.Orchestrator, store pipeline.Store, cmsStats *cms.Stats, oracle masker.NounOracle,
	hist *wordfreq.Aggregator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        store,
		cmsStats:     cmsStats,
		oracle:       oracle,
		hist:         hist,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocmaskAPIKey, s.log))

		r.Post("/api/mask", s.handleMask)
		r.Post("/api/publish", s.handlePublish)
		r.Get("/api/publish/{jobID}/status", s.handlePublishStatus)

		r.Get("/api/proposals", s.handleListProposals)
		r.Delete("/api/proposals/{proposalID}", s.handleDeleteProposal)

		r.Get("/api/stats/cms", s.handleCMSStats)
		r.Get("/api/stats/words", s.handleWordStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
