package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/server/middleware"
	"github.com/jonathan/raveliquar/internal/types"
)

// maxBodyBytes caps request bodies; answer sets are small.
const maxBodyBytes = 1 << 20

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// ok writes a success envelope.
func (s *Server) ok(w http.ResponseWriter, status int, data any) {
	s.jsonResponse(w, status, types.Envelope{Success: true, Data: data})
}

// okMessage writes a success envelope with a message.
func (s *Server) okMessage(w http.ResponseWriter, status int, message string, data any) {
	s.jsonResponse(w, status, types.Envelope{Success: true, Message: message, Data: data})
}

// fail writes a failure envelope.
func (s *Server) fail(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, types.Envelope{Success: false, Message: message})
}

// failErr maps err to a status. Unexpected errors are logged and their text
// is not sent to the client.
func (s *Server) failErr(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.fail(w, status, "internal server error")
		return
	}
	s.fail(w, status, err.Error())
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted when allowEmpty is set.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return &ErrValidation{Field: "body", Message: "invalid JSON request body"}
		}
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError reports the first failed field of a validator error.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fe.Tag()
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		return &ErrValidation{Field: fe.Field(), Message: msg}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

// queryInt reads a non-negative integer query parameter, clamped to max.
func queryInt(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return min(n, max), nil
}

// authorizeProfile allows admins and the profile's own session.
func authorizeProfile(r *http.Request, profileID uuid.UUID) error {
	if middleware.IsAdmin(r) {
		return nil
	}
	caller, err := middleware.GetProfileID(r)
	if err != nil || caller != profileID {
		return &ErrForbidden{Reason: "not your profile"}
	}
	return nil
}
