package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/db"
	"github.com/jonathan/raveliquar/internal/observability"
	"github.com/jonathan/raveliquar/internal/server/middleware"
	"github.com/jonathan/raveliquar/internal/types"
)

// requireProfile resolves the session's profile, which must still exist.
func (s *Server) requireProfile(r *http.Request) (*db.Profile, error) {
	profileID, err := middleware.GetProfileID(r)
	if err != nil {
		return nil, &ErrForbidden{Reason: "session required"}
	}
	profile, err := s.store.GetProfile(r.Context(), profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &ErrNotFound{Resource: "profile", ID: profileID.String()}
	}
	return profile, nil
}

// ensureRunOpen rejects work on a run that already has a stored result.
func (s *Server) ensureRunOpen(ctx context.Context, runID string) error {
	existing, err := s.store.GetResultByRun(ctx, runID)
	if err != nil {
		return err
	}
	if existing != nil {
		return &ErrConflict{Message: "run " + runID + " is already completed"}
	}
	return nil
}

// handleSubmit scores one mini-test, stores the outcome and advances progress
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testID := r.PathValue("id")

	bank, ok := s.catalog.Bank(testID)
	if !ok {
		s.failErr(w, r, &ErrNotFound{Resource: "mini-test", ID: testID})
		return
	}

	profile, err := s.requireProfile(r)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	var req types.SubmitRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.failErr(w, r, err)
		return
	}

	runID := strings.TrimSpace(req.RunID)
	if runID == "" {
		runID = uuid.NewString()
	} else if err := s.ensureRunOpen(ctx, runID); err != nil {
		s.failErr(w, r, err)
		return
	}

	eval := s.evaluator.Evaluate(&bank, req.Answers, s.archetypes())
	s.metrics.SubmissionsScored.WithLabelValues(bank.ID).Inc()
	if eval.Skipped > 0 {
		s.metrics.AnswersSkipped.Add(float64(eval.Skipped))
		s.logger.Debug("skipped answers for unknown questions",
			zap.String("test_id", bank.ID),
			zap.Int("skipped", eval.Skipped),
		)
	}

	if _, err := s.store.SaveMiniSuiteResult(ctx, db.MiniSuiteResultInput{
		ProfileID:  profile.ID,
		RunID:      runID,
		TestID:     bank.ID,
		RawTotals:  eval.Raw,
		Normalized: eval.Normalized,
		TopMatches: eval.Ranked,
	}); err != nil {
		s.failErr(w, r, err)
		return
	}

	progress, err := s.store.AdvanceProgress(ctx, profile.ID, runID, bank.ID, s.bankIDs())
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, types.SubmitResponse{
		RunID:      runID,
		TestID:     bank.ID,
		RawTotals:  eval.Raw,
		Normalized: eval.Normalized,
		TopMatches: eval.Ranked,
		Skipped:    eval.Skipped,
		Progress:   progress,
	})
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathUUID(r, "profileId")
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	if err := authorizeProfile(r, profileID); err != nil {
		s.failErr(w, r, err)
		return
	}

	progress, err := s.store.ListProgress(r.Context(), profileID)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	resp := types.ProgressResponse{Progress: progress}

	if runID := r.URL.Query().Get("runId"); runID != "" {
		resp.Submissions, err = s.store.ListMiniSuiteResults(r.Context(), profileID, runID)
		if err != nil {
			s.failErr(w, r, err)
			return
		}
	}
	s.ok(w, http.StatusOK, resp)
}

// handleCompleteRun assembles and stores the run's result exactly once.
// Later calls return the stored document rather than recomputing it.
func (s *Server) handleCompleteRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runID := strings.TrimSpace(r.PathValue("runId"))
	if runID == "" {
		s.failErr(w, r, &ErrValidation{Field: "runId", Message: "required"})
		return
	}

	profile, err := s.requireProfile(r)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	var req types.CompleteRunRequest
	if err := s.decode(w, r, &req, true); err != nil {
		s.failErr(w, r, err)
		return
	}

	existing, err := s.store.GetResultByRun(ctx, runID)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	if existing != nil {
		s.replyStoredResult(w, r, profile.ID, existing)
		return
	}

	result, err := s.assembler.Assemble(profile.ID.String(), runID, req.CompletedAt)
	if err != nil {
		s.metrics.ResultsAssembled.WithLabelValues(observability.OutcomeFailed).Inc()
		s.failErr(w, r, err)
		return
	}

	record, created, err := s.store.SaveResult(ctx, profile.ID, runID, result)
	if err != nil {
		s.metrics.ResultsAssembled.WithLabelValues(observability.OutcomeFailed).Inc()
		s.failErr(w, r, err)
		return
	}
	if !created {
		// lost a race with a concurrent completion
		s.replyStoredResult(w, r, profile.ID, record)
		return
	}

	s.metrics.ResultsAssembled.WithLabelValues(observability.OutcomeCreated).Inc()
	s.logger.Info("run completed",
		zap.String("run_id", runID),
		zap.String("profile_id", profile.ID.String()),
		zap.String("seed", result.Provenance.Seed),
	)
	s.ok(w, http.StatusCreated, types.CompleteRunResponse{Created: true, Result: record})
}

func (s *Server) replyStoredResult(w http.ResponseWriter, r *http.Request, profileID uuid.UUID, record *db.ResultRecord) {
	if record.ProfileID != profileID {
		s.failErr(w, r, &ErrConflict{Message: "run " + record.RunID + " belongs to another profile"})
		return
	}
	s.metrics.ResultsAssembled.WithLabelValues(observability.OutcomeExisting).Inc()
	s.okMessage(w, http.StatusOK, "run already completed", types.CompleteRunResponse{Created: false, Result: record})
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathUUID(r, "profileId")
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	if err := authorizeProfile(r, profileID); err != nil {
		s.failErr(w, r, err)
		return
	}

	results, err := s.store.ListResults(r.Context(), profileID)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, results)
}
