package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/server/middleware"
	"github.com/jonathan/raveliquar/internal/types"
)

// handleHealth reports liveness and database reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, types.Envelope{
			Success: false,
			Message: "database unavailable",
			Data:    types.HealthResponse{Status: "degraded", Database: "unreachable"},
		})
		return
	}
	s.ok(w, http.StatusOK, types.HealthResponse{Status: "ok", Database: "ok"})
}

// handleRedeemCode exchanges an access code for a new profile and a session token
func (s *Server) handleRedeemCode(w http.ResponseWriter, r *http.Request) {
	var req types.RedeemCodeRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.failErr(w, r, err)
		return
	}

	profile, err := s.store.RedeemAccessCode(r.Context(), strings.TrimSpace(req.Code), strings.TrimSpace(req.DisplayName))
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	token, err := s.jwt.GenerateToken(profile.ID)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	s.logger.Info("access code redeemed", zap.String("profile_id", profile.ID.String()))
	s.ok(w, http.StatusCreated, types.SessionResponse{
		Token:     token,
		ExpiresIn: int64(s.jwt.config.Expiration().Seconds()),
		Profile:   profile,
	})
}

// handleConsent records consent for the session's profile
func (s *Server) handleConsent(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetProfileID(r)
	if err != nil {
		s.fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req types.ConsentRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.failErr(w, r, err)
		return
	}
	if !req.Accepted {
		s.failErr(w, r, &ErrValidation{Field: "accepted", Message: "consent must be accepted"})
		return
	}

	profile, err := s.store.RecordConsent(r.Context(), profileID, req.Version)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	if profile == nil {
		s.failErr(w, r, &ErrNotFound{Resource: "profile", ID: profileID.String()})
		return
	}
	s.okMessage(w, http.StatusOK, "consent recorded", profile)
}
