package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/guarzo/cardsnipe/internal/roster"
	"github.com/guarzo/cardsnipe/internal/scanner"
)

const maxRequestBytes = 64 << 10

type scanRequest struct {
	Players []string `json:"players"`
}

type parseRequest struct {
	Title string `json:"title"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"configured": s.configured,
		"scanning":   s.scanner != nil && s.scanner.Running(),
	})
}

// handlePlayers lists the tracked roster in scan order.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.players)
}

// handleDeals returns the latest completed scan.
func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request) {
	latest := s.results.Latest()
	if latest == nil {
		s.writeError(w, http.StatusNotFound, "no completed scan yet")
		return
	}
	s.writeJSON(w, http.StatusOK, latest)
}

// handleParse returns the fingerprint of a title.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	s.writeJSON(w, http.StatusOK, s.parser.Parse(req.Title))
}

// handleScan runs a scan synchronously, over the whole roster or the
// players named in the body.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !s.configured {
		s.writeError(w, http.StatusServiceUnavailable, "marketplace credentials not configured")
		return
	}

	var req scanRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	players, err := roster.Select(s.players, req.Players)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.scanTimeout)
	defer cancel()

	result, err := s.scanner.Scan(ctx, players)
	switch {
	case errors.Is(err, scanner.ErrScanInProgress):
		s.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.log.Error().Err(err).Msg("scan failed")
		s.writeError(w, http.StatusServiceUnavailable, "scan did not complete: "+err.Error())
		return
	}

	s.results.Store(result)
	s.writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
