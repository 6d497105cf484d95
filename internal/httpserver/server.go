package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"todolist/backend/internal/config"
	authdomain "todolist/backend/internal/domain/auth"
	tododomain "todolist/backend/internal/domain/todo"
	"todolist/backend/internal/metrics"
	authusecase "todolist/backend/internal/usecase/auth"
	todousecase "todolist/backend/internal/usecase/todo"
	userusecase "todolist/backend/internal/usecase/user"
	"todolist/backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

// AuthService is the subset of the auth use cases the handlers call.
type AuthService interface {
	Register(ctx context.Context, input authusecase.RegisterInput) (string, *authdomain.User, error)
	Login(ctx context.Context, creds authdomain.Credentials) (string, *authdomain.User, error)
	VerifyToken(ctx context.Context, token string) (*authdomain.User, error)
	RenewToken(ctx context.Context, token string) (string, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// UserService is the subset of the user use cases the handlers call.
type UserService interface {
	List(ctx context.Context) ([]*authdomain.User, error)
	Get(ctx context.Context, id string) (*authdomain.User, error)
	IDByEmail(ctx context.Context, email string) (string, error)
	Update(ctx context.Context, callerID, id string, input userusecase.UpdateInput) (*authdomain.User, error)
	Delete(ctx context.Context, callerID, id string) error
}

// TodoService is the subset of the todo use cases the handlers call.
type TodoService interface {
	List(ctx context.Context) ([]*tododomain.Todo, error)
	ListByOwner(ctx context.Context, userID string) ([]*tododomain.Todo, error)
	Get(ctx context.Context, id string) (*tododomain.Todo, error)
	Create(ctx context.Context, ownerID string, input todousecase.CreateInput) (*tododomain.Todo, error)
	Update(ctx context.Context, callerID, id string, input todousecase.UpdateInput) (*tododomain.Todo, error)
	Delete(ctx context.Context, callerID, id string) error
}

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups the collaborators the server wires into its routes.
type Deps struct {
	Auth           AuthService
	Users          UserService
	Todos          TodoService
	DB             Pinger
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer     *http.Server
	router         chi.Router
	authService    AuthService
	userService    UserService
	todoService    TodoService
	db             Pinger
	metrics        metrics.Recorder
	metricsHandler http.Handler
	logger         *slog.Logger
	validator      *validation.Validator
	authLimiter    *ipRateLimiter
	allowedOrigins []string
	trustedProxies []netip.Prefix
	addr           string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, deps Deps) *Server {
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	srv := &Server{
		router:         chi.NewRouter(),
		authService:    deps.Auth,
		userService:    deps.Users,
		todoService:    deps.Todos,
		db:             deps.DB,
		metrics:        deps.Metrics,
		metricsHandler: deps.MetricsHandler,
		logger:         deps.Logger,
		validator:      validation.New(),
		authLimiter:    newIPRateLimiter(cfg.AuthRateLimitPerMinute, 10*time.Minute),
		allowedOrigins: cfg.AllowedOrigins,
		trustedProxies: cfg.TrustedProxies,
		addr:           addr,
	}
	srv.registerRoutes()

	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
	}
	return srv
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the fully wrapped router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
