package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/book-reviews/internal/auth"
	"github.com/Clark-Hu/book-reviews/internal/config"
	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/service"
	"github.com/Clark-Hu/book-reviews/internal/store"
)

// AuthService registers, authenticates and verifies callers.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (domain.User, string, error)
	Authenticate(ctx context.Context, email, password string) (domain.User, string, error)
	VerifyToken(token string) (auth.Identity, error)
}

// CatalogService serves the book catalog.
type CatalogService interface {
	AddBook(ctx context.Context, in domain.NewBook, creatorID uuid.UUID) (domain.Book, error)
	ListBooks(ctx context.Context, page domain.Page, filters domain.BookFilters) (service.BookPage, error)
	GetBook(ctx context.Context, id uuid.UUID, page domain.Page) (service.BookDetail, error)
	SearchBooks(ctx context.Context, query string, page domain.Page) (service.SearchResult, error)
}

// ReviewService changes reviews on behalf of their authors.
type ReviewService interface {
	SubmitReview(ctx context.Context, bookID, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error)
	UpdateReview(ctx context.Context, reviewID, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error)
	DeleteReview(ctx context.Context, reviewID, userID uuid.UUID) error
}

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Health  HealthChecker
	Auth    AuthService
	Catalog CatalogService
	Reviews ReviewService
	Logger  zerolog.Logger
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	health  HealthChecker
	auth    AuthService
	catalog CatalogService
	reviews ReviewService
	logger  zerolog.Logger
	limiter *rateLimiter
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		health:  deps.Health,
		auth:    deps.Auth,
		catalog: deps.Catalog,
		reviews: deps.Reviews,
		logger:  deps.Logger,
		limiter: newRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(cors.Handler(corsOptions(cfg.CORSOrigins)))
	s.router = r
	s.registerRoutes()
	return s
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}
}

func (s *Server) registerRoutes() {
	s.router.NotFound(s.handleNotFound)
	s.router.MethodNotAllowed(s.handleMethodNotAllowed)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.middleware(s.handleRateLimited))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
		})
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.With(s.requireAuth).Post("/", s.handleCreateBook)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBook)
				r.With(s.requireAuth).Post("/reviews", s.handleSubmitReview)
			})
		})
		r.Route("/reviews/{id}", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Put("/", s.handleUpdateReview)
			r.Delete("/", s.handleDeleteReview)
		})
		r.Get("/search", s.handleSearch)
	})
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is done or serving fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("http: listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

type healthResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Pool    *poolResponse `json:"pool,omitempty"`
}

type poolResponse struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// poolReporter is implemented by health checkers backed by a connection pool.
type poolReporter interface {
	Stats() store.PoolStats
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, healthResponse{Status: "OK", Message: "Server is running"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		s.respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("http: readiness check failed")
		s.respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	resp := healthResponse{Status: "ok"}
	if pr, ok := s.health.(poolReporter); ok {
		st := pr.Stats()
		resp.Pool = &poolResponse{
			TotalConns:    st.Total,
			IdleConns:     st.Idle,
			AcquiredConns: st.Acquired,
			MaxConns:      st.Max,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusNotFound, "Route not found", nil)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.", nil)
}
