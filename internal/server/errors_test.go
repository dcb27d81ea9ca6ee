package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/hirematch/hirematch-api/internal/auth"
	"github.com/hirematch/hirematch-api/internal/store"
)

func TestHTTPStatus(t *testing.T) {
	validate := validator.New()
	var improveReq improveJobRequest
	validationErr := validate.Struct(improveReq)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", &ErrBadRequest{Message: "nope"}, http.StatusBadRequest},
		{"validation", validationErr, http.StatusBadRequest},
		{"not found", &store.ErrNotFound{Kind: "job", ID: "x"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", &store.ErrNotFound{Kind: "job", ID: "x"}), http.StatusNotFound},
		{"upstream", &ErrUpstream{Err: errors.New("model down")}, http.StatusBadGateway},
		{"matching disabled", &ErrMatchingDisabled{}, http.StatusServiceUnavailable},
		{"missing credential", &auth.ErrMissingCredential{}, http.StatusUnauthorized},
		{"forbidden", &auth.ErrForbidden{Role: auth.RoleCandidate}, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatus(tt.err))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Nil(t, excerpt("", 800))

	short := excerpt("brief resume", 800)
	assert.Equal(t, "brief resume", *short)

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	bounded := excerpt(string(long), resumeExcerptLimit)
	assert.Len(t, *bounded, resumeExcerptLimit)
}

func TestParseQueryInt(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/candidate/match-checks?limit=30", nil)
	assert.Equal(t, 30, parseQueryInt(req, "limit", 50, 200))

	req, _ = http.NewRequest(http.MethodGet, "/candidate/match-checks?limit=999", nil)
	assert.Equal(t, 200, parseQueryInt(req, "limit", 50, 200))

	req, _ = http.NewRequest(http.MethodGet, "/candidate/match-checks?limit=junk", nil)
	assert.Equal(t, 50, parseQueryInt(req, "limit", 50, 200))

	req, _ = http.NewRequest(http.MethodGet, "/candidate/match-checks", nil)
	assert.Equal(t, 50, parseQueryInt(req, "limit", 50, 200))
}
