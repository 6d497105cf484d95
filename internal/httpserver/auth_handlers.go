package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	authdomain "todolist/backend/internal/domain/auth"
	authusecase "todolist/backend/internal/usecase/auth"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	Name      string `json:"name" validate:"max=100"`
	Firstname string `json:"firstname" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to your todo list."})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Error("health check failed", slog.String("error", err.Error()))
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := s.bind(w, r, &payload); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	token, user, err := s.authService.Register(r.Context(), authusecase.RegisterInput{
		Email:     payload.Email,
		Password:  payload.Password,
		Name:      payload.Name,
		Firstname: payload.Firstname,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.metrics.RecordTokenIssued()

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	token, user, err := s.authService.Login(r.Context(), authdomain.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			s.metrics.RecordAuthFailure("bad_credentials")
		}
		s.writeServiceError(w, r, err)
		return
	}
	s.metrics.RecordTokenIssued()

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (s *Server) handleRenewToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.authService.RenewToken(r.Context(), tokenFromRequest(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.metrics.RecordTokenIssued()

	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (s *Server) handleCheckToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Token is valid"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload changePasswordRequest
	if err := s.bind(w, r, &payload); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.authService.ChangePassword(r.Context(), user.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
