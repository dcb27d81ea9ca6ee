package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/hirematch/hirematch-api/internal/auth"
	"github.com/hirematch/hirematch-api/internal/matching"
	"github.com/hirematch/hirematch-api/internal/store"
)

// decodeJSON decodes the request body into dst and validates it.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrBadRequest{Message: "invalid JSON body: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// callerID returns the resolved identity and its user id as a UUID. The
// synthetic local-dev identity parses cleanly, so a failure here means a
// token with a malformed subject.
func (s *Server) callerID(r *http.Request) (auth.Identity, uuid.UUID, error) {
	identity, err := auth.FromContext(r.Context())
	if err != nil {
		return auth.Identity{}, uuid.Nil, err
	}
	id, err := uuid.Parse(identity.UserID)
	if err != nil {
		return identity, uuid.Nil, &ErrBadRequest{Message: "user id is not a UUID"}
	}
	return identity, id, nil
}

// pathUUID parses a path parameter as a UUID.
func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(key))
	if err != nil {
		return uuid.Nil, &ErrBadRequest{Message: "invalid " + key}
	}
	return id, nil
}

// parseQueryInt parses an integer query parameter with default and max.
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// asNotFound unwraps a store not-found error.
func asNotFound(err error) (*store.ErrNotFound, bool) {
	var notFound *store.ErrNotFound
	if errors.As(err, &notFound) {
		return notFound, true
	}
	return nil, false
}

// matcherOrErr returns the matching service or the disabled sentinel.
func (s *Server) matcherOrErr() (*matching.Service, error) {
	if s.matcher == nil {
		return nil, &ErrMatchingDisabled{}
	}
	return s.matcher, nil
}

// skipOwnerCheck reports whether job ownership gates are bypassed: local
// env with a synthetic identity only.
func (s *Server) skipOwnerCheck(identity auth.Identity) bool {
	return s.settings.IsLocal() && !identity.CredentialPresent
}

// excerpt bounds stored résumé excerpts.
func excerpt(text string, limit int) *string {
	if text == "" {
		return nil
	}
	if len(text) > limit {
		text = text[:limit]
	}
	return &text
}
