package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	authdomain "todolist/backend/internal/domain/auth"
	tododomain "todolist/backend/internal/domain/todo"
	"todolist/backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(chimw.RequestID)
	r.Use(withTrustedRealIP(s.trustedProxies))
	r.Use(s.withLogging)
	r.Use(s.withRecovery)
	r.Use(withCORS(s.allowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authLimiter.middleware)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/auth/renew", s.handleRenewToken)
		r.Get("/check_token", s.handleCheckToken)

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", s.handleListTodos)
			r.Post("/", s.handleCreateTodo)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTodo)
				r.Put("/", s.handleUpdateTodo)
				r.Patch("/", s.handleUpdateTodo)
				r.Delete("/", s.handleDeleteTodo)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/id", s.handleUserID)
			r.Get("/todos", s.handleUserTodos)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/change-password", s.handleChangePassword)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetUser)
				r.Put("/", s.handleUpdateUser)
				r.Patch("/", s.handleUpdateUser)
				r.Delete("/", s.handleDeleteUser)
			})
		})
	})
}

// writeServiceError maps use case errors onto HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case authdomain.IsAuthenticationError(err):
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, authdomain.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, authdomain.ErrUserNotFound), errors.Is(err, tododomain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, authdomain.ErrForbidden), errors.Is(err, tododomain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, tododomain.ErrInvalidID),
		errors.Is(err, tododomain.ErrInvalidStatus),
		errors.Is(err, tododomain.ErrEmptyTitle),
		errors.Is(err, authdomain.ErrEmailRequired),
		errors.Is(err, authdomain.ErrPasswordTooShort),
		errors.Is(err, authdomain.ErrPasswordTooLong),
		errors.Is(err, authdomain.ErrPasswordMismatch),
		errors.Is(err, authdomain.ErrPasswordUnchanged),
		errors.Is(err, errEmptyBody),
		errors.Is(err, errInvalidJSON),
		errors.Is(err, errInvalidDueTime),
		errors.Is(err, errInvalidUserID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeInternalError(w)
	}
}

// bind decodes and validates a JSON request body.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return s.validator.Struct(dst)
}
