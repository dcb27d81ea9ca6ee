package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hirematch/hirematch-api/internal/store"
)

// Repository is the persistence surface the scorer needs.
type Repository interface {
	GetCandidateProfile(ctx context.Context, id uuid.UUID) (*store.CandidateProfile, error)
	GetResumeText(ctx context.Context, resumeID uuid.UUID) (string, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]store.Application, error)
	UpdateApplicationScore(ctx context.Context, appID uuid.UUID, u store.ScoreUpdate) error
	InsertMatchEvent(ctx context.Context, e store.MatchEvent) error
	ClearBestFit(ctx context.Context, jobID uuid.UUID) error
	SetBestFit(ctx context.Context, appID uuid.UUID) error
}

// Service orchestrates oracle calls and score persistence.
type Service struct {
	oracle Oracle
	repo   Repository
	logger *zap.Logger
}

// NewService creates a scoring service.
func NewService(oracle Oracle, repo Repository, logger *zap.Logger) *Service {
	return &Service{oracle: oracle, repo: repo, logger: logger}
}

// JobImprovement is the cleaned-up description plus extracted skills.
type JobImprovement struct {
	Description string   `json:"description"`
	MustHave    []string `json:"must_have"`
	NiceToHave  []string `json:"nice_to_have"`
}

// ImproveJobDescription rewrites a raw job description and extracts its
// skill requirements. When the oracle degrades to empty output the raw
// text is kept as the description.
func (s *Service) ImproveJobDescription(ctx context.Context, jdText string) (*JobImprovement, error) {
	data, err := s.oracle.GenerateStructured(ctx, improveJobPrompt(jdText))
	if err != nil {
		return nil, fmt.Errorf("failed to improve job description: %w", err)
	}
	out := &JobImprovement{
		Description: asString(data["description"]),
		MustHave:    asStringSlice(data["must_have"]),
		NiceToHave:  asStringSlice(data["nice_to_have"]),
	}
	if out.Description == "" {
		out.Description = jdText
	}
	return out, nil
}

// ProfileSuggestion is an autofill draft generated from résumé text.
type ProfileSuggestion struct {
	Headline string   `json:"headline"`
	Summary  string   `json:"summary"`
	Skills   []string `json:"skills"`
	Links    []string `json:"links"`
}

// SuggestProfile drafts profile fields from résumé text.
func (s *Service) SuggestProfile(ctx context.Context, resumeText string) (*ProfileSuggestion, error) {
	data, err := s.oracle.GenerateStructured(ctx, suggestProfilePrompt(resumeText))
	if err != nil {
		return nil, fmt.Errorf("failed to suggest profile: %w", err)
	}
	return &ProfileSuggestion{
		Headline: asString(data["headline"]),
		Summary:  asString(data["summary"]),
		Skills:   asStringSlice(data["skills"]),
		Links:    asStringSlice(data["links"]),
	}, nil
}

// ScoreCandidate evaluates one candidate payload against a job. The score
// is clamped to [0, 100]; a missing or non-numeric score comes back as 0.
func (s *Service) ScoreCandidate(ctx context.Context, job *store.Job, candidate CandidatePayload) (store.ScoreUpdate, error) {
	data, err := s.oracle.GenerateStructured(ctx, scorePrompt(job, candidate))
	if err != nil {
		return store.ScoreUpdate{}, fmt.Errorf("failed to score candidate: %w", err)
	}
	update := store.ScoreUpdate{
		Score:         clamp(asFloat(data["score"]), 0, 100),
		MatchedSkills: asStringSlice(data["matched_skills"]),
		MissingSkills: asStringSlice(data["missing_skills"]),
		Rationale:     asString(data["rationale"]),
	}
	if band := asString(data["band"]); band != "" {
		update.Level = &band
	}
	return update, nil
}

// scoreApplication scores one application and persists the result: the
// mutable score fields on the application row plus an immutable match
// event. The returned copy carries the new fields.
func (s *Service) scoreApplication(ctx context.Context, job *store.Job, app store.Application, source string) (store.Application, error) {
	profile, err := s.repo.GetCandidateProfile(ctx, app.CandidateID)
	if err != nil {
		if _, ok := missingRecord(err); !ok {
			return app, err
		}
		profile = nil
	}
	resumeText := ""
	if app.ResumeID != nil {
		resumeText, err = s.repo.GetResumeText(ctx, *app.ResumeID)
		if err != nil {
			return app, err
		}
	}

	update, err := s.ScoreCandidate(ctx, job, BuildCandidatePayload(profile, resumeText))
	if err != nil {
		return app, err
	}
	if err := s.repo.UpdateApplicationScore(ctx, app.ID, update); err != nil {
		return app, err
	}
	if err := s.repo.InsertMatchEvent(ctx, store.MatchEvent{
		JobID:         job.ID,
		CandidateID:   app.CandidateID,
		Score:         update.Score,
		MatchedSkills: update.MatchedSkills,
		MissingSkills: update.MissingSkills,
		Rationale:     update.Rationale,
		Source:        source,
	}); err != nil {
		return app, err
	}

	now := time.Now().UTC()
	app.MatchScore = &update.Score
	app.MatchLevel = update.Level
	app.MatchedSkills = update.MatchedSkills
	app.MissingSkills = update.MissingSkills
	app.Rationale = update.Rationale
	app.LastScoredAt = &now

	s.logger.Info("scored application",
		zap.String("job_id", job.ID.String()),
		zap.String("candidate_id", app.CandidateID.String()),
		zap.Float64("score", update.Score),
		zap.String("source", source))
	return app, nil
}

// ScoreApplication scores a single application and refreshes the job's
// best-fit flag across all of its applications.
func (s *Service) ScoreApplication(ctx context.Context, job *store.Job, app store.Application) (store.Application, error) {
	scored, err := s.scoreApplication(ctx, job, app, "single")
	if err != nil {
		return scored, err
	}
	bestID, err := s.RecomputeBestFit(ctx, job.ID)
	if err != nil {
		return scored, err
	}
	scored.BestFit = bestID != nil && *bestID == scored.ID
	return scored, nil
}

// ScoreJobApplications scores every application on a job sequentially,
// then marks the highest-scoring one as best fit. It reports the number
// scored and the best-fit application id, nil when nothing was scored.
func (s *Service) ScoreJobApplications(ctx context.Context, job *store.Job) (int, *uuid.UUID, error) {
	apps, err := s.repo.ListApplicationsByJob(ctx, job.ID)
	if err != nil {
		return 0, nil, err
	}
	if len(apps) == 0 {
		return 0, nil, nil
	}

	scored := make([]store.Application, 0, len(apps))
	for _, app := range apps {
		result, err := s.scoreApplication(ctx, job, app, "batch")
		if err != nil {
			return len(scored), nil, err
		}
		scored = append(scored, result)
	}

	// Clear-then-set runs as two statements. Concurrent scoring passes
	// over the same job can interleave here and the later writer wins.
	if err := s.repo.ClearBestFit(ctx, job.ID); err != nil {
		return len(scored), nil, err
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scoreOf(scored[i]) > scoreOf(scored[j])
	})
	bestID := scored[0].ID
	if err := s.repo.SetBestFit(ctx, bestID); err != nil {
		return len(scored), nil, err
	}
	return len(scored), &bestID, nil
}

// RecomputeBestFit re-derives a job's best-fit flag from the stored
// scores of all its applications, treating unscored rows as 0. It
// returns the chosen application id, nil when the job has none.
func (s *Service) RecomputeBestFit(ctx context.Context, jobID uuid.UUID) (*uuid.UUID, error) {
	apps, err := s.repo.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	if err := s.repo.ClearBestFit(ctx, jobID); err != nil {
		return nil, err
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return scoreOf(apps[i]) > scoreOf(apps[j])
	})
	bestID := apps[0].ID
	if err := s.repo.SetBestFit(ctx, bestID); err != nil {
		return nil, err
	}
	return &bestID, nil
}

// ScoreMatchCheck evaluates a candidate's own profile against pasted job
// description text.
func (s *Service) ScoreMatchCheck(ctx context.Context, jdText string, candidate CandidatePayload) (store.ScoreUpdate, error) {
	job := &store.Job{Title: "Ad-hoc JD", Description: truncate(jdText, maxPromptText)}
	return s.ScoreCandidate(ctx, job, candidate)
}

// RankApplications orders applications best first: scored rows before
// unscored ones, higher scores first, ties keeping their incoming order.
func RankApplications(apps []store.Application) []store.Application {
	ranked := make([]store.Application, len(apps))
	copy(ranked, apps)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].MatchScore != nil, ranked[j].MatchScore != nil
		if si != sj {
			return si
		}
		return scoreOf(ranked[i]) > scoreOf(ranked[j])
	})
	return ranked
}

func scoreOf(app store.Application) float64 {
	if app.MatchScore == nil {
		return 0
	}
	return *app.MatchScore
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func missingRecord(err error) (*store.ErrNotFound, bool) {
	var notFound *store.ErrNotFound
	if errors.As(err, &notFound) {
		return notFound, true
	}
	return nil, false
}
