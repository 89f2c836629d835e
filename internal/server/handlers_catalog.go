package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/raveliquar/internal/catalog"
	"github.com/jonathan/raveliquar/internal/constellation"
	"github.com/jonathan/raveliquar/internal/quiz"
)

// handleListArchetypes lists archetypes, optionally filtered by ?family=
func (s *Server) handleListArchetypes(w http.ResponseWriter, r *http.Request) {
	entries := s.catalog.List(catalog.KindArchetype)

	if family := strings.TrimSpace(r.URL.Query().Get("family")); family != "" {
		filtered := make([]catalog.Entry, 0, len(entries))
		for _, e := range entries {
			if strings.EqualFold(e.Family, family) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	s.ok(w, http.StatusOK, entries)
}

func (s *Server) handleGetArchetype(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, ok := s.catalog.Get(id)
	if !ok || entry.Kind != catalog.KindArchetype {
		s.failErr(w, r, &ErrNotFound{Resource: "archetype", ID: id})
		return
	}
	s.ok(w, http.StatusOK, entry)
}

func (s *Server) handleListLuminaries(w http.ResponseWriter, _ *http.Request) {
	s.ok(w, http.StatusOK, s.catalog.List(catalog.KindLuminary))
}

func (s *Server) handleListShadows(w http.ResponseWriter, _ *http.Request) {
	s.ok(w, http.StatusOK, s.catalog.List(catalog.KindShadow))
}

// handleConstellation lays the whole catalog out on rings. ?size= sets the canvas.
func (s *Server) handleConstellation(w http.ResponseWriter, r *http.Request) {
	size := constellation.DefaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 100 || v > 4000 {
			s.failErr(w, r, &ErrValidation{Field: "size", Message: "must be between 100 and 4000"})
			return
		}
		size = v
	}
	s.ok(w, http.StatusOK, s.layouts.Layout(size))
}

func (s *Server) handleListMiniTests(w http.ResponseWriter, _ *http.Request) {
	banks := s.catalog.Banks()
	summaries := make([]quiz.Summary, 0, len(banks))
	for i := range banks {
		summaries = append(summaries, banks[i].Summarize())
	}
	s.ok(w, http.StatusOK, summaries)
}

func (s *Server) handleGetMiniTest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	bank, ok := s.catalog.Bank(id)
	if !ok {
		s.failErr(w, r, &ErrNotFound{Resource: "mini-test", ID: id})
		return
	}
	s.ok(w, http.StatusOK, bank)
}

// bankIDs is the ordered list of every mini-test, used to advance progress.
func (s *Server) bankIDs() []string {
	banks := s.catalog.Banks()
	ids := make([]string, len(banks))
	for i := range banks {
		ids[i] = banks[i].ID
	}
	return ids
}

func (s *Server) archetypes() []catalog.Entry {
	return s.catalog.List(catalog.KindArchetype)
}
