package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const applicationColumns = `id, job_id, candidate_id, resume_id, resume_excerpt,
	COALESCE(status, 'applied'), applied_at, match_score, match_level,
	COALESCE(matched_skills, '{}'), COALESCE(missing_skills, '{}'),
	COALESCE(rationale, ''), COALESCE(best_fit, false), last_scored_at`

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.ResumeID, &a.ResumeExcerpt,
		&a.Status, &a.AppliedAt, &a.MatchScore, &a.MatchLevel,
		&a.MatchedSkills, &a.MissingSkills, &a.Rationale, &a.BestFit, &a.LastScoredAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) queryApplications(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// ListApplicationsByJob retrieves a job's applicant pool in applied order.
// The stable retrieval order matters: the best-fit tie-break preserves it.
func (s *Store) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]Application, error) {
	apps, err := s.queryApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY applied_at, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ListApplicationsByJobs retrieves applications across several jobs.
func (s *Store) ListApplicationsByJobs(ctx context.Context, jobIDs []uuid.UUID) ([]Application, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}
	apps, err := s.queryApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = ANY($1) ORDER BY applied_at, id`, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ListApplicationsByCandidate retrieves a candidate's applications. Missing
// table degrades to empty for the dashboard path.
func (s *Store) ListApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Application, error) {
	apps, err := s.queryApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE candidate_id = $1 ORDER BY applied_at DESC`, candidateID)
	return tolerateMissingTable(apps, err)
}

// GetApplication retrieves one application scoped to its job.
func (s *Store) GetApplication(ctx context.Context, jobID, appID uuid.UUID) (*Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND id = $2 LIMIT 1`, jobID, appID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{Kind: "application", ID: appID.String()}
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// FindApplication retrieves the application for (job, candidate), or nil.
func (s *Store) FindApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE job_id = $1 AND candidate_id = $2 LIMIT 1`, jobID, candidateID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return app, nil
}

// ApplicationInput is the writable fields for a new application.
type ApplicationInput struct {
	JobID         uuid.UUID
	CandidateID   uuid.UUID
	ResumeID      *uuid.UUID
	ResumeExcerpt *string
}

// InsertApplication creates an application in status "applied".
func (s *Store) InsertApplication(ctx context.Context, input ApplicationInput) (*Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, candidate_id, resume_id, resume_excerpt, status, applied_at)
		 VALUES ($1, $2, $3, $4, 'applied', NOW())
		 RETURNING `+applicationColumns,
		input.JobID, input.CandidateID, input.ResumeID, input.ResumeExcerpt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert application: %w", err)
	}
	return app, nil
}

// UpsertApplication attaches a candidate to a job, keeping the existing row
// when one is already present.
func (s *Store) UpsertApplication(ctx context.Context, input ApplicationInput) (*Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, candidate_id, resume_id, resume_excerpt, status, applied_at)
		 VALUES ($1, $2, $3, $4, 'applied', NOW())
		 ON CONFLICT (job_id, candidate_id) DO UPDATE SET resume_id = COALESCE($3, applications.resume_id)
		 RETURNING `+applicationColumns,
		input.JobID, input.CandidateID, input.ResumeID, input.ResumeExcerpt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert application: %w", err)
	}
	return app, nil
}

// UpdateApplicationScore overwrites the score fields from the latest pass.
// Deterministic overwrite: no averaging with prior scores.
func (s *Store) UpdateApplicationScore(ctx context.Context, appID uuid.UUID, u ScoreUpdate) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE applications
		 SET match_score = $2, match_level = $3, matched_skills = $4,
		     missing_skills = $5, rationale = $6, last_scored_at = NOW()
		 WHERE id = $1`,
		appID, u.Score, u.Level, u.MatchedSkills, u.MissingSkills, u.Rationale,
	)
	if err != nil {
		return fmt.Errorf("failed to update application score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &ErrNotFound{Kind: "application", ID: appID.String()}
	}
	return nil
}

// ClearBestFit resets the best-fit flag across a job's applications. First
// half of the clear-then-set best-fit pass.
func (s *Store) ClearBestFit(ctx context.Context, jobID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE applications SET best_fit = false WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to clear best fit: %w", err)
	}
	return nil
}

// SetBestFit marks one application as the job's best fit.
func (s *Store) SetBestFit(ctx context.Context, appID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE applications SET best_fit = true WHERE id = $1`, appID); err != nil {
		return fmt.Errorf("failed to set best fit: %w", err)
	}
	return nil
}

// CountApplications returns the total pipeline size. Missing table degrades
// to zero for dashboard use.
func (s *Store) CountApplications(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n); err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}

// InsertMatchEvent appends one immutable scoring-event record.
func (s *Store) InsertMatchEvent(ctx context.Context, e MatchEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO matches (job_id, candidate_id, score, matched_skills, missing_skills, rationale, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.JobID, e.CandidateID, e.Score, e.MatchedSkills, e.MissingSkills, e.Rationale, e.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match event: %w", err)
	}
	return nil
}

// CountMatchEvents returns the number of scoring events ever recorded.
// Missing table degrades to zero for dashboard use.
func (s *Store) CountMatchEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count match events: %w", err)
	}
	return n, nil
}

// CountMatchEventsThisMonth counts scoring events in the current month.
func (s *Store) CountMatchEventsThisMonth(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM matches WHERE created_at >= date_trunc('month', NOW())`).Scan(&n)
	if err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count match events: %w", err)
	}
	return n, nil
}

// InsertMatchCheck records a candidate's ad-hoc match check.
func (s *Store) InsertMatchCheck(ctx context.Context, c MatchCheck) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_checks (candidate_id, jd_text, resume_id, match_score, explanation, matched_skills, missing_skills)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.CandidateID, c.JDText, c.ResumeID, c.Score, c.Explanation, c.MatchedSkills, c.MissingSkills,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match check: %w", err)
	}
	return nil
}

// ListMatchChecksByCandidate retrieves a candidate's match checks. Missing
// table degrades to empty.
func (s *Store) ListMatchChecksByCandidate(ctx context.Context, candidateID uuid.UUID, limit int) ([]MatchCheck, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, candidate_id, jd_text, resume_id, COALESCE(match_score, 0),
		        COALESCE(explanation, ''), COALESCE(matched_skills, '{}'),
		        COALESCE(missing_skills, '{}'), created_at
		 FROM match_checks WHERE candidate_id = $1 ORDER BY created_at DESC LIMIT $2`,
		candidateID, limit)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list match checks: %w", err)
	}
	defer rows.Close()

	var checks []MatchCheck
	for rows.Next() {
		var c MatchCheck
		if err := rows.Scan(&c.ID, &c.CandidateID, &c.JDText, &c.ResumeID, &c.Score,
			&c.Explanation, &c.MatchedSkills, &c.MissingSkills, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match check: %w", err)
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}
