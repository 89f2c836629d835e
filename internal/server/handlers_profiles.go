package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/raveliquar/internal/db"
	"github.com/jonathan/raveliquar/internal/server/middleware"
	"github.com/jonathan/raveliquar/internal/types"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultPageSize, maxPageSize)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0, 1<<31-1)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	profiles, err := s.store.ListProfiles(r.Context(), limit, offset)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, types.ProfileListResponse{Profiles: profiles, Limit: limit, Offset: offset})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.CreateProfileRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.failErr(w, r, err)
		return
	}

	profile, err := s.store.CreateProfile(r.Context(), db.ProfileInput{
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       req.Email,
	})
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.ok(w, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	if err := authorizeProfile(r, id); err != nil {
		s.failErr(w, r, err)
		return
	}

	profile, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	if profile == nil {
		s.failErr(w, r, &ErrNotFound{Resource: "profile", ID: id.String()})
		return
	}
	s.ok(w, http.StatusOK, profile)
}

// handleUpdateProfile lets a session edit its own profile only
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	caller, err := middleware.GetProfileID(r)
	if err != nil || caller != id {
		s.failErr(w, r, &ErrForbidden{Reason: "not your profile"})
		return
	}

	var req types.UpdateProfileRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.failErr(w, r, err)
		return
	}

	profile, err := s.store.UpdateProfile(r.Context(), id, db.ProfileUpdate{
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	if profile == nil {
		s.failErr(w, r, &ErrNotFound{Resource: "profile", ID: id.String()})
		return
	}
	s.ok(w, http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	deleted, err := s.store.DeleteProfile(r.Context(), id)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	if !deleted {
		s.failErr(w, r, &ErrNotFound{Resource: "profile", ID: id.String()})
		return
	}
	s.okMessage(w, http.StatusOK, "profile deleted", nil)
}
