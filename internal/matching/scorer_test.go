package matching

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hirematch/hirematch-api/internal/store"
)

// fakeOracle replays scripted responses in order and captures prompts.
type fakeOracle struct {
	responses []map[string]any
	err       error
	prompts   []string
	calls     int
}

func (f *fakeOracle) GenerateStructured(_ context.Context, prompt string) (map[string]any, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	resp := map[string]any{}
	if f.calls < len(f.responses) {
		resp = f.responses[f.calls]
	}
	f.calls++
	return resp, nil
}

// fakeRepo keeps applications in memory and records best-fit writes in
// order, so tests can assert the clear-then-set sequence.
type fakeRepo struct {
	profiles map[uuid.UUID]*store.CandidateProfile
	resumes  map[uuid.UUID]string
	apps     []store.Application
	events   []store.MatchEvent
	writes   []string
}

func newFakeRepo(apps ...store.Application) *fakeRepo {
	return &fakeRepo{
		profiles: map[uuid.UUID]*store.CandidateProfile{},
		resumes:  map[uuid.UUID]string{},
		apps:     apps,
	}
}

func (f *fakeRepo) GetCandidateProfile(_ context.Context, id uuid.UUID) (*store.CandidateProfile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, &store.ErrNotFound{Kind: "candidate", ID: id.String()}
}

func (f *fakeRepo) GetResumeText(_ context.Context, resumeID uuid.UUID) (string, error) {
	return f.resumes[resumeID], nil
}

func (f *fakeRepo) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]store.Application, error) {
	var out []store.Application
	for _, app := range f.apps {
		if app.JobID == jobID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateApplicationScore(_ context.Context, appID uuid.UUID, u store.ScoreUpdate) error {
	for i := range f.apps {
		if f.apps[i].ID == appID {
			score := u.Score
			f.apps[i].MatchScore = &score
			f.apps[i].MatchLevel = u.Level
			f.apps[i].MatchedSkills = u.MatchedSkills
			f.apps[i].MissingSkills = u.MissingSkills
			f.apps[i].Rationale = u.Rationale
			return nil
		}
	}
	return &store.ErrNotFound{Kind: "application", ID: appID.String()}
}

func (f *fakeRepo) InsertMatchEvent(_ context.Context, e store.MatchEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRepo) ClearBestFit(_ context.Context, jobID uuid.UUID) error {
	f.writes = append(f.writes, "clear")
	for i := range f.apps {
		if f.apps[i].JobID == jobID {
			f.apps[i].BestFit = false
		}
	}
	return nil
}

func (f *fakeRepo) SetBestFit(_ context.Context, appID uuid.UUID) error {
	f.writes = append(f.writes, "set:"+appID.String())
	for i := range f.apps {
		if f.apps[i].ID == appID {
			f.apps[i].BestFit = true
		}
	}
	return nil
}

func newTestService(oracle *fakeOracle, repo *fakeRepo) *Service {
	return NewService(oracle, repo, zap.NewNop())
}

func scoreResponse(score any, band string) map[string]any {
	return map[string]any{
		"score":          score,
		"band":           band,
		"matched_skills": []any{"go"},
		"missing_skills": []any{"k8s"},
		"rationale":      "solid overlap",
	}
}

func testApp(jobID uuid.UUID) store.Application {
	return store.Application{ID: uuid.New(), JobID: jobID, CandidateID: uuid.New(), Status: "applied"}
}

func TestScoreCandidateClamping(t *testing.T) {
	job := &store.Job{ID: uuid.New(), Title: "Backend Engineer", Description: "Build APIs"}

	tests := []struct {
		name  string
		score any
		want  float64
	}{
		{"in range", 87.5, 87.5},
		{"above range", 150.0, 100},
		{"below range", -10.0, 0},
		{"missing", nil, 0},
		{"non-numeric", "excellent", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &fakeOracle{responses: []map[string]any{scoreResponse(tt.score, "strong")}}
			svc := newTestService(oracle, newFakeRepo())

			update, err := svc.ScoreCandidate(context.Background(), job, CandidatePayload{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, update.Score)
		})
	}
}

func TestScoreCandidateFields(t *testing.T) {
	job := &store.Job{ID: uuid.New(), Title: "Backend Engineer"}
	oracle := &fakeOracle{responses: []map[string]any{scoreResponse(72.0, "strong")}}
	svc := newTestService(oracle, newFakeRepo())

	update, err := svc.ScoreCandidate(context.Background(), job, CandidatePayload{Headline: "Go dev"})
	require.NoError(t, err)
	require.NotNil(t, update.Level)
	assert.Equal(t, "strong", *update.Level)
	assert.Equal(t, []string{"go"}, update.MatchedSkills)
	assert.Equal(t, []string{"k8s"}, update.MissingSkills)
	assert.Equal(t, "solid overlap", update.Rationale)
	assert.Contains(t, oracle.prompts[0], "Go dev")
}

func TestScoreCandidateEmptyOracleOutput(t *testing.T) {
	// A degraded oracle yields zeroed fields, never an error.
	job := &store.Job{ID: uuid.New(), Title: "Backend Engineer"}
	oracle := &fakeOracle{responses: []map[string]any{{}}}
	svc := newTestService(oracle, newFakeRepo())

	update, err := svc.ScoreCandidate(context.Background(), job, CandidatePayload{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, update.Score)
	assert.Nil(t, update.Level)
	assert.Empty(t, update.MatchedSkills)
}

func TestScoreApplicationPersistsAndFlagsBestFit(t *testing.T) {
	job := &store.Job{ID: uuid.New(), Title: "Backend Engineer"}
	app := testApp(job.ID)
	repo := newFakeRepo(app)
	oracle := &fakeOracle{responses: []map[string]any{scoreResponse(91.0, "excellent")}}
	svc := newTestService(oracle, repo)

	scored, err := svc.ScoreApplication(context.Background(), job, app)
	require.NoError(t, err)
	require.NotNil(t, scored.MatchScore)
	assert.Equal(t, 91.0, *scored.MatchScore)
	assert.True(t, scored.BestFit)
	assert.NotNil(t, scored.LastScoredAt)

	require.Len(t, repo.events, 1)
	assert.Equal(t, "single", repo.events[0].Source)
	assert.Equal(t, 91.0, repo.events[0].Score)
	assert.Equal(t, app.CandidateID, repo.events[0].CandidateID)

	assert.Equal(t, []string{"clear", "set:" + app.ID.String()}, repo.writes)
}

func TestScoreApplicationWithoutProfile(t *testing.T) {
	// Candidates with no profile row still get scored on résumé text.
	job := &store.Job{ID: uuid.New(), Title: "Backend Engineer"}
	app := testApp(job.ID)
	resumeID := uuid.New()
	app.ResumeID = &resumeID

	repo := newFakeRepo(app)
	repo.resumes[resumeID] = "ten years of Go"
	oracle := &fakeOracle{responses: []map[string]any{scoreResponse(60.0, "ok")}}
	svc := newTestService(oracle, repo)

	scored, err := svc.ScoreApplication(context.Background(), job, app)
	require.NoError(t, err)
	assert.Equal(t, 60.0, *scored.MatchScore)
	assert.Contains(t, oracle.prompts[0], "ten years of Go")
}

func TestScoreJobApplicationsPicksHighest(t *testing.T) {
	job := &store.Job{ID: uuid.New(), Title: "Backend Engineer"}
	first, second, third := testApp(job.ID), testApp(job.ID), testApp(job.ID)
	repo := newFakeRepo(first, second, third)
	oracle := &fakeOracle{responses: []map[string]any{
		scoreResponse(40.0, "ok"),
		scoreResponse(95.0, "excellent"),
		scoreResponse(70.0, "strong"),
	}}
	svc := newTestService(oracle, repo)

	scored, bestID, err := svc.ScoreJobApplications(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 3, scored)
	require.NotNil(t, bestID)
	assert.Equal(t, second.ID, *bestID)
	assert.Equal(t, []string{"clear", "set:" + second.ID.String()}, repo.writes)
	require.Len(t, repo.events, 3)
	for _, e := range repo.events {
		assert.Equal(t, "batch", e.Source)
	}
}

func TestScoreJobApplicationsTieKeepsFirst(t *testing.T) {
	// Applications arrive in applied_at order; an exact tie keeps the
	// earlier application as best fit.
	job := &store.Job{ID: uuid.New(), Title: "Backend Engineer"}
	first, second := testApp(job.ID), testApp(job.ID)
	repo := newFakeRepo(first, second)
	oracle := &fakeOracle{responses: []map[string]any{
		scoreResponse(80.0, "strong"),
		scoreResponse(80.0, "strong"),
	}}
	svc := newTestService(oracle, repo)

	_, bestID, err := svc.ScoreJobApplications(context.Background(), job)
	require.NoError(t, err)
	require.NotNil(t, bestID)
	assert.Equal(t, first.ID, *bestID)
}

func TestScoreJobApplicationsEmpty(t *testing.T) {
	job := &store.Job{ID: uuid.New(), Title: "Backend Engineer"}
	repo := newFakeRepo()
	svc := newTestService(&fakeOracle{}, repo)

	scored, bestID, err := svc.ScoreJobApplications(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 0, scored)
	assert.Nil(t, bestID)
	assert.Empty(t, repo.writes)
}

func TestRecomputeBestFitTreatsUnscoredAsZero(t *testing.T) {
	jobID := uuid.New()
	unscored, scored := testApp(jobID), testApp(jobID)
	score := 12.0
	scored.MatchScore = &score
	repo := newFakeRepo(unscored, scored)
	svc := newTestService(&fakeOracle{}, repo)

	bestID, err := svc.RecomputeBestFit(context.Background(), jobID)
	require.NoError(t, err)
	require.NotNil(t, bestID)
	assert.Equal(t, scored.ID, *bestID)
}

func TestRankApplicationsScoredFirst(t *testing.T) {
	jobID := uuid.New()
	low, high, unscoredA, unscoredB := testApp(jobID), testApp(jobID), testApp(jobID), testApp(jobID)
	lowScore, highScore := 30.0, 90.0
	low.MatchScore = &lowScore
	high.MatchScore = &highScore

	ranked := RankApplications([]store.Application{unscoredA, low, unscoredB, high})
	require.Len(t, ranked, 4)
	assert.Equal(t, high.ID, ranked[0].ID)
	assert.Equal(t, low.ID, ranked[1].ID)
	// Unscored rows trail in their original relative order.
	assert.Equal(t, unscoredA.ID, ranked[2].ID)
	assert.Equal(t, unscoredB.ID, ranked[3].ID)
}

func TestImproveJobDescriptionFallback(t *testing.T) {
	oracle := &fakeOracle{responses: []map[string]any{{}}}
	svc := newTestService(oracle, newFakeRepo())

	out, err := svc.ImproveJobDescription(context.Background(), "raw JD text")
	require.NoError(t, err)
	assert.Equal(t, "raw JD text", out.Description)
	assert.Empty(t, out.MustHave)
	assert.Empty(t, out.NiceToHave)
}

func TestImproveJobDescription(t *testing.T) {
	oracle := &fakeOracle{responses: []map[string]any{{
		"description":  "Polished description",
		"must_have":    []any{"go", "postgres"},
		"nice_to_have": []any{"grpc"},
	}}}
	svc := newTestService(oracle, newFakeRepo())

	out, err := svc.ImproveJobDescription(context.Background(), "raw JD text")
	require.NoError(t, err)
	assert.Equal(t, "Polished description", out.Description)
	assert.Equal(t, []string{"go", "postgres"}, out.MustHave)
	assert.Equal(t, []string{"grpc"}, out.NiceToHave)
}

func TestSuggestProfile(t *testing.T) {
	oracle := &fakeOracle{responses: []map[string]any{{
		"headline": "Senior Go Engineer",
		"summary":  "A decade of backend work.",
		"skills":   []any{"go", "sql"},
		"links":    []any{"https://example.com"},
	}}}
	svc := newTestService(oracle, newFakeRepo())

	out, err := svc.SuggestProfile(context.Background(), "resume text")
	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", out.Headline)
	assert.Equal(t, []string{"go", "sql"}, out.Skills)
}

func TestScoreMatchCheckUsesJDText(t *testing.T) {
	oracle := &fakeOracle{responses: []map[string]any{scoreResponse(55.0, "ok")}}
	svc := newTestService(oracle, newFakeRepo())

	update, err := svc.ScoreMatchCheck(context.Background(), "We need a Go engineer", CandidatePayload{Headline: "Go dev"})
	require.NoError(t, err)
	assert.Equal(t, 55.0, update.Score)
	assert.Contains(t, oracle.prompts[0], "We need a Go engineer")
}
