package api

import (
	"field-sales-bot/internal/metrics"
	"field-sales-bot/internal/service"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	Ping() error
}

type Server struct {
	users     *service.UserService
	leads     *service.LeadService
	visits    *service.VisitService
	db        Pinger
	logger    *logrus.Logger
	startTime time.Time
}

func NewServer(
	users *service.UserService,
	leads *service.LeadService,
	visits *service.VisitService,
	db Pinger,
	logger *logrus.Logger,
) *Server {
	return &Server{
		users:     users,
		leads:     leads,
		visits:    visits,
		db:        db,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Router builds the HTTP routes. corsOrigins lists the allowed browser origins.
func (s *Server) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", staffHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/leads/{leadID}/distance", s.handleDistance)
		r.Get("/staff/{staffID}/availability", s.handleAvailability)
		r.Get("/staff/{staffID}/slots", s.handleSlots)
		r.Get("/visits", s.handleListVisits)
		r.Post("/visits", s.handleCreateVisit)
		r.Post("/visits/{visitID}/done", s.handleVisitDone)
		r.Post("/visits/{visitID}/cancel", s.handleVisitCancel)
		r.Post("/visits/{visitID}/outcome", s.handleVisitOutcome)
		r.Get("/clients", s.handleClients)
	})

	return r
}
