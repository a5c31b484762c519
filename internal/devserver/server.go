// Package devserver is an in-memory reference implementation of the journal
// backend API. It exists so the client can be developed and integration
// tested without the real backend; nothing is persisted across restarts.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/journal/internal/client/models"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/logging"
)

type ctxKey int

const userIDKey ctxKey = 0

// Server serves the journal HTTP API from a Store.
type Server struct {
	cfg   *Config
	store *Store
	log   logging.Logger
	mux   *http.ServeMux
}

func NewServer(cfg *Config, store *Store, log logging.Logger) *Server {
	s := &Server{cfg: cfg, store: store, log: log, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /api/v1/ping", s.handlePing)

	s.mux.Handle("GET /api/v1/entries", s.withAuth(s.handleListEntries))
	s.mux.Handle("GET /api/v1/entries/calendar", s.withAuth(s.handleCalendar))
	s.mux.Handle("POST /api/v1/entries", s.withAuth(s.handleCreateEntry))
	s.mux.Handle("PATCH /api/v1/entries/{id}", s.withAuth(s.handleUpdateEntry))
	s.mux.Handle("DELETE /api/v1/entries/{id}", s.withAuth(s.handleDeleteEntry))

	s.mux.Handle("GET /api/v1/metrics", s.withAuth(s.handleGetMetrics))
	s.mux.Handle("PUT /api/v1/metrics/{date}", s.withAuth(s.handleUpsertMetrics))
}

// Handler exposes the routed handler so tests can mount it in httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves HTTP traffic until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "reference server listening", "addr", s.cfg.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeData(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}

// withAuth verifies the bearer token and stores the user id in the request
// context.
func (s *Server) withAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		userID, err := GetUserIDFromToken(auth[len(prefix):], []byte(s.cfg.SecretKey))
		if err != nil {
			code := "invalid_token"
			if errors.Is(err, common.ErrTokenExpired) {
				code = "token_expired"
			}
			writeError(w, http.StatusUnauthorized, code, err.Error())
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func requestUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (s *Server) mintTokenPair(w http.ResponseWriter, r *http.Request, userID string) {
	access, err := GenerateToken(userID, []byte(s.cfg.SecretKey), s.cfg.AccessTokenValidityDuration)
	if err == nil {
		var refresh string
		refresh, err = s.store.IssueRefreshToken(userID, s.cfg.RefreshTokenValidityDuration)
		if err == nil {
			writeData(w, http.StatusOK, map[string]string{
				"access_token":  access,
				"refresh_token": refresh,
			})
			return
		}
	}
	s.log.Error(r.Context(), "minting token pair", "err", err)
	writeError(w, http.StatusInternalServerError, "internal", "could not issue tokens")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	userID, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "wrong username or password")
		return
	}
	s.mintTokenPair(w, r, userID)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	userID, err := s.store.ConsumeRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "refresh_expired", "refresh token invalid or expired")
		return
	}
	s.mintTokenPair(w, r, userID)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "date parameter required as YYYY-MM-DD")
		return
	}

	entries := s.store.ListEntries(requestUserID(r), date)
	if entries == nil {
		entries = []models.Entry{}
	}
	writeData(w, http.StatusOK, entries)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "year parameter required")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "bad_request", "month parameter must be 1..12")
		return
	}

	writeData(w, http.StatusOK, s.store.EntryDates(requestUserID(r), year, time.Month(month)))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date    string `json:"date"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation", "date must be YYYY-MM-DD")
		return
	}
	if models.NormalizeContent(req.Content) == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation", "content must not be empty")
		return
	}

	writeData(w, http.StatusOK, s.store.CreateEntry(requestUserID(r), date, req.Content))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var patch models.EntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if patch.Content != nil && models.NormalizeContent(*patch.Content) == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation", "content must not be empty")
		return
	}

	e, err := s.store.UpdateEntry(requestUserID(r), r.PathValue("id"), patch)
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no such entry")
		return
	}
	writeData(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteEntry(requestUserID(r), r.PathValue("id"))
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no such entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetMetrics serves both shapes of GET /metrics: a single set when the
// date parameter is present, a range listing with from and to.
func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("date") != "" {
		date, err := models.ParseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
			return
		}
		m, err := s.store.GetMetrics(requestUserID(r), date)
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no metrics for date")
			return
		}
		writeData(w, http.StatusOK, m)
		return
	}

	from, errFrom := models.ParseDate(q.Get("from"))
	to, errTo := models.ParseDate(q.Get("to"))
	if errFrom != nil || errTo != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "date or from/to parameters required")
		return
	}

	sets := s.store.ListMetrics(requestUserID(r), from, to)
	if sets == nil {
		sets = []models.MetricSet{}
	}
	writeData(w, http.StatusOK, sets)
}

func (s *Server) handleUpsertMetrics(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
		return
	}

	var m models.MetricSet
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	m.Date = date

	if !m.ValidateRatings() {
		writeError(w, http.StatusUnprocessableEntity, "validation", "rating fields must be between 1 and 7")
		return
	}

	writeData(w, http.StatusOK, s.store.UpsertMetrics(requestUserID(r), m))
}
