package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/KirkDiggler/taleforge/internal/services/game"
)

// RouterError is returned when the router cannot be built
type RouterError string

// Error implements the error interface
func (e RouterError) Error() string {
	return string(e)
}

const (
	ErrNilConfig         RouterError = "config cannot be nil"
	ErrNilService        RouterError = "game service cannot be nil"
	ErrNilTokenValidator RouterError = "token validator cannot be nil"
)

const defaultRequestTimeout = 30 * time.Second

// Config holds configuration for the HTTP API
type Config struct {
	Service        game.Service
	TokenValidator TokenValidator

	// AllowedOrigins defaults to every origin
	AllowedOrigins []string

	// RequestTimeout bounds each request; 0 picks a default
	RequestTimeout time.Duration
}

// Handler serves the session API
type Handler struct {
	service game.Service
}

// NewRouter builds the HTTP handler tree
func NewRouter(cfg *Config) (http.Handler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Service == nil {
		return nil, ErrNilService
	}
	if cfg.TokenValidator == nil {
		return nil, ErrNilTokenValidator
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	h := &Handler{service: cfg.Service}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(cfg.TokenValidator))

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", h.createSession)
				r.Post("/join", h.joinSession)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", h.getGameState)
					r.Delete("/", h.deleteSession)
					r.Post("/join", h.joinSession)
					r.Post("/leave", h.leaveSession)
					r.Post("/characters/open", h.transitionToCreatingCharacters)
					r.Put("/character", h.bindCharacter)
					r.Get("/start", h.canStartSession)
					r.Post("/start", h.startSession)
					r.Get("/timeline", h.getTimelineHistory)
					r.Get("/updates", h.checkGameUpdates)
					r.Post("/heartbeat", h.updatePlayerStatus)

					r.Get("/votes", h.getVoteStatus)
					r.Post("/votes", h.vote)
					r.Post("/tie", h.resolveTie)

					r.Route("/combat", func(r chi.Router) {
						r.Get("/", h.getCombatState)
						r.Post("/", h.initiateCombat)
						r.Post("/initiative", h.rollInitiative)
						r.Get("/turn", h.getCurrentTurn)
						r.Post("/attack", h.performAttack)
						r.Post("/skip", h.skipTurn)
						r.Post("/revive", h.attemptRevive)
					})
				})
			})
		})
	})

	return r, nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	ok(w, map[string]string{"status": "ok"})
}
