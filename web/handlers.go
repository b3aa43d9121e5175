/* handlers.go
 * Contains the HTTP handlers mapping the facade operations onto routes. The caller
 * identity arrives as an opaque user id in the X-User-ID header, placed there by the
 * authenticating proxy in front of this service
 * Authors: Zachary Bower
 */

package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"typerace-api/api/shared"
)

// routes binds handler methods that have access to s.api
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /matches", s.handleCreateMatch)
	mux.HandleFunc("POST /matches/join", s.handleJoinMatch)
	mux.HandleFunc("POST /matches/{id}/results", s.handleSubmitResult)
	mux.HandleFunc("POST /matches/{id}/cancel", s.handleCancelMatch)
	mux.HandleFunc("GET /matches/{id}", s.handleGetMatch)
	mux.HandleFunc("GET /matches", s.handleMyMatches)
	mux.HandleFunc("GET /matches/history", s.handleMatchHistory)
	mux.HandleFunc("POST /attempts", s.handleSoloAttempt)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /leaderboard/me", s.handleUserRank)
	mux.HandleFunc("GET /leaderboard/nearby", s.handleNearbyRanks)
	mux.HandleFunc("GET /leaderboard/top", s.handleTopPerformers)
	mux.HandleFunc("GET /leaderboard/global", s.handleGlobalStats)
	mux.HandleFunc("GET /leaderboard/search", s.handleFindUserRank)
	return mux
}

// callerID extracts the authenticated user id from the request
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrInvalidState), errors.Is(err, shared.ErrAlreadySubmitted),
		errors.Is(err, shared.ErrSelfJoin), errors.Is(err, shared.ErrAlreadyFull):
		return http.StatusConflict
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("failed to encode response:", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Println("internal error:", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := s.api.CreateMatch(callerID(r), req.PassageText, req.PassageSource)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleJoinMatch(w http.ResponseWriter, r *http.Request) {
	var req joinMatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := s.api.JoinMatch(callerID(r), req.InviteCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req submitResultRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := s.api.SubmitMatchResult(callerID(r), r.PathValue("id"), req.Wpm, req.Accuracy, req.Errors)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancelMatch(w http.ResponseWriter, r *http.Request) {
	if err := s.api.CancelMatch(callerID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	view, err := s.api.GetMatch(callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMyMatches(w http.ResponseWriter, r *http.Request) {
	views, err := s.api.GetMyMatches(callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleMatchHistory(w http.ResponseWriter, r *http.Request) {
	views, err := s.api.GetMatchHistory(callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSoloAttempt(w http.ResponseWriter, r *http.Request) {
	var req soloAttemptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.api.RecordSoloAttempt(callerID(r), req.Wpm, req.Accuracy, req.Errors, req.PassageSource); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = "composite"
	}
	limit := 25
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := s.api.GetLeaderboard(sortBy, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUserRank(w http.ResponseWriter, r *http.Request) {
	summary, err := s.api.GetUserRank(callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleNearbyRanks(w http.ResponseWriter, r *http.Request) {
	radius := 2
	if raw := r.URL.Query().Get("radius"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "radius must be a non-negative integer"})
			return
		}
		radius = n
	}

	entries, err := s.api.GetNearbyRanks(callerID(r), radius)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleTopPerformers(w http.ResponseWriter, r *http.Request) {
	top, err := s.api.GetTopPerformers()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.api.GetGlobalStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleFindUserRank(w http.ResponseWriter, r *http.Request) {
	entry, err := s.api.FindUserRank(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
