package handlers

import (
	"net/http"

	"github.com/nkiryanov/blogapi/internal/handlers/middleware"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/service/auth"
)

// Response for every session operation. User is null when there is no session
type sessionResponse struct {
	User *models.PublicUser `json:"user"`
	Auth bool               `json:"auth"`
}

func newSessionResponse(u models.User) sessionResponse {
	public := u.Public()
	return sessionResponse{User: &public, Auth: true}
}

// Render service error, log it if it was not client's fault
func writeError(w http.ResponseWriter, r *http.Request, l logger.Logger, err error) {
	code := render.Error(w, err)
	if code >= http.StatusInternalServerError {
		l.Error("request failed",
			"uri", r.RequestURI,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
}

func handleRegister(s authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := render.Bind[auth.RegisterParams](w, r)
		if err != nil {
			return
		}

		session, err := s.Register(r.Context(), params)
		if err != nil {
			writeError(w, r, l, err)
			return
		}

		s.SetTokens(w, session.Tokens)
		render.JSONWithStatus(w, newSessionResponse(session.User), http.StatusCreated)
	})
}

func handleLogin(s authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := render.Bind[auth.LoginParams](w, r)
		if err != nil {
			return
		}

		session, err := s.Login(r.Context(), params)
		if err != nil {
			writeError(w, r, l, err)
			return
		}

		s.SetTokens(w, session.Tokens)
		render.JSON(w, newSessionResponse(session.User))
	})
}

func handleTokenRefresh(s authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := s.GetRefreshString(r)
		if err != nil {
			writeError(w, r, l, err)
			return
		}

		session, err := s.Refresh(r.Context(), refresh)
		if err != nil {
			writeError(w, r, l, err)
			return
		}

		s.SetTokens(w, session.Tokens)
		render.JSON(w, newSessionResponse(session.User))
	})
}

// Cookies are cleared even if there was no session for the token
func handleLogout(s authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, _ := s.GetRefreshString(r)

		err := s.Logout(r.Context(), refresh)
		s.ClearTokens(w)
		if err != nil {
			writeError(w, r, l, err)
			return
		}

		render.JSON(w, sessionResponse{User: nil, Auth: false})
	})
}
