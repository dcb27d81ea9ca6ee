package matching

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDraftJobUsesOracleOutput(t *testing.T) {
	oracle := &fakeOracle{responses: []map[string]any{{
		"description":  "Cleaned up posting",
		"must_have":    []any{"Go", "Postgres"},
		"nice_to_have": []any{"Kubernetes"},
	}}}
	svc := NewService(oracle, newFakeRepo(), zap.NewNop())

	draft, err := svc.DraftJob(context.Background(), "Senior Backend Engineer\nWe build APIs in Go.")
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", draft.Title)
	assert.Equal(t, "Cleaned up posting", draft.Description)
	assert.Equal(t, []string{"Go", "Postgres"}, draft.MustSkills)
	assert.Equal(t, []string{"Kubernetes"}, draft.NiceSkills)
}

func TestDraftJobDegradedOracleFallsBackToHeuristics(t *testing.T) {
	oracle := &fakeOracle{}
	svc := NewService(oracle, newFakeRepo(), zap.NewNop())

	text := "Platform Engineer\nKubernetes Kubernetes Kubernetes Terraform Terraform helps with infra"
	draft, err := svc.DraftJob(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", draft.Title)
	assert.Equal(t, text, draft.Description)
	assert.Equal(t, []string{"Kubernetes", "Terraform", "Platform", "Engineer"}, draft.MustSkills)
	assert.Empty(t, draft.NiceSkills)
}

func TestDraftJobOracleError(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("model down")}
	svc := NewService(oracle, newFakeRepo(), zap.NewNop())

	_, err := svc.DraftJob(context.Background(), "Engineer")
	require.Error(t, err)
}

func TestGuessTitleAndSkills(t *testing.T) {
	title, skills := guessTitleAndSkills("")
	assert.Equal(t, "Job Title", title)
	assert.Empty(t, skills)

	title, _ = guessTitleAndSkills("\n   " + strings.Repeat("x", 120) + "\nbody")
	assert.Len(t, title, 80)

	// Lowercase and short tokens never surface as skills.
	_, skills = guessTitleAndSkills("Go go go an API API design")
	assert.Equal(t, []string{"API"}, skills)
}
