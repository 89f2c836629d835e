package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/db"
	"github.com/jonathan/raveliquar/internal/types"
)

// generatedCodeLength is the length of server-minted access codes.
const generatedCodeLength = 10

func generateCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:generatedCodeLength]
}

// handleCreateAccessCode mints an access code
func (s *Server) handleCreateAccessCode(w http.ResponseWriter, r *http.Request) {
	var req types.CreateAccessCodeRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.failErr(w, r, err)
		return
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		s.failErr(w, r, &ErrValidation{Field: "expiresAt", Message: "must be in the future"})
		return
	}

	code := req.Code
	if code == "" {
		code = generateCode()
	}

	created, err := s.store.CreateAccessCode(r.Context(), db.AccessCodeInput{
		Code:      code,
		Label:     req.Label,
		MaxUses:   req.MaxUses,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	s.logger.Info("access code minted",
		zap.String("label", created.Label),
		zap.Int("max_uses", created.MaxUses),
	)
	s.ok(w, http.StatusCreated, created)
}
