package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetCandidateProfile retrieves a candidate's profile.
func (s *Store) GetCandidateProfile(ctx context.Context, id uuid.UUID) (*CandidateProfile, error) {
	var p CandidateProfile
	err := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(headline, ''), COALESCE(location, ''), COALESCE(remote_pref, ''),
		        COALESCE(summary, ''), COALESCE(skills, '{}'), COALESCE(links, '{}')
		 FROM candidates WHERE id = $1 LIMIT 1`, id,
	).Scan(&p.ID, &p.Headline, &p.Location, &p.RemotePref, &p.Summary, &p.Skills, &p.Links)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{Kind: "candidate", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}
	return &p, nil
}

// UpsertCandidateProfile overwrites a candidate's profile fields.
func (s *Store) UpsertCandidateProfile(ctx context.Context, p CandidateProfile) (*CandidateProfile, error) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Links == nil {
		p.Links = []string{}
	}
	var out CandidateProfile
	err := s.pool.QueryRow(ctx,
		`INSERT INTO candidates (id, headline, location, remote_pref, summary, skills, links)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET headline = $2, location = $3, remote_pref = $4,
		                                summary = $5, skills = $6, links = $7
		 RETURNING id, COALESCE(headline, ''), COALESCE(location, ''), COALESCE(remote_pref, ''),
		           COALESCE(summary, ''), COALESCE(skills, '{}'), COALESCE(links, '{}')`,
		p.ID, p.Headline, p.Location, p.RemotePref, p.Summary, p.Skills, p.Links,
	).Scan(&out.ID, &out.Headline, &out.Location, &out.RemotePref, &out.Summary, &out.Skills, &out.Links)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert candidate profile: %w", err)
	}
	return &out, nil
}

// ListCandidatesByIDs retrieves profiles for the given candidate ids.
func (s *Store) ListCandidatesByIDs(ctx context.Context, ids []uuid.UUID) ([]CandidateProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(headline, ''), COALESCE(location, ''), COALESCE(remote_pref, ''),
		        COALESCE(summary, ''), COALESCE(skills, '{}'), COALESCE(links, '{}')
		 FROM candidates WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var profiles []CandidateProfile
	for rows.Next() {
		var p CandidateProfile
		if err := rows.Scan(&p.ID, &p.Headline, &p.Location, &p.RemotePref, &p.Summary, &p.Skills, &p.Links); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// GetRecruiterProfile retrieves a recruiter's profile, or an empty profile
// when none exists yet (upserted lazily by the auth flow).
func (s *Store) GetRecruiterProfile(ctx context.Context, id uuid.UUID) (*RecruiterProfile, error) {
	var p RecruiterProfile
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_id, COALESCE(title, ''), COALESCE(linkedin_url, ''), COALESCE(about, '')
		 FROM recruiters WHERE id = $1 LIMIT 1`, id,
	).Scan(&p.ID, &p.CompanyID, &p.Title, &p.LinkedInURL, &p.About)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &RecruiterProfile{ID: id}, nil
		}
		return nil, fmt.Errorf("failed to get recruiter profile: %w", err)
	}
	return &p, nil
}

// UpsertRecruiterProfile overwrites a recruiter's profile fields.
func (s *Store) UpsertRecruiterProfile(ctx context.Context, p RecruiterProfile) (*RecruiterProfile, error) {
	var out RecruiterProfile
	err := s.pool.QueryRow(ctx,
		`INSERT INTO recruiters (id, company_id, title, linkedin_url, about)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET company_id = $2, title = $3, linkedin_url = $4, about = $5
		 RETURNING id, company_id, COALESCE(title, ''), COALESCE(linkedin_url, ''), COALESCE(about, '')`,
		p.ID, p.CompanyID, p.Title, p.LinkedInURL, p.About,
	).Scan(&out.ID, &out.CompanyID, &out.Title, &out.LinkedInURL, &out.About)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert recruiter profile: %w", err)
	}
	return &out, nil
}

// InsertResume stores an uploaded résumé with its extracted text.
func (s *Store) InsertResume(ctx context.Context, r Resume) (*Resume, error) {
	var out Resume
	err := s.pool.QueryRow(ctx,
		`INSERT INTO resumes (candidate_id, file_url, parsed_text)
		 VALUES ($1, $2, $3)
		 RETURNING id, candidate_id, file_url, COALESCE(parsed_text, ''), created_at`,
		r.CandidateID, r.FileURL, r.Text,
	).Scan(&out.ID, &out.CandidateID, &out.FileURL, &out.Text, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert resume: %w", err)
	}
	return &out, nil
}

// ListResumesByCandidate retrieves a candidate's résumés, newest first,
// without the text payloads.
func (s *Store) ListResumesByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Resume, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, candidate_id, file_url, created_at
		 FROM resumes WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	var resumes []Resume
	for rows.Next() {
		var r Resume
		if err := rows.Scan(&r.ID, &r.CandidateID, &r.FileURL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, r)
	}
	return resumes, rows.Err()
}

// GetResumeText retrieves the extracted text of one résumé. An unknown id
// yields empty text, matching the tolerant scoring path.
func (s *Store) GetResumeText(ctx context.Context, resumeID uuid.UUID) (string, error) {
	var text string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(parsed_text, '') FROM resumes WHERE id = $1`, resumeID).Scan(&text)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get resume text: %w", err)
	}
	return text, nil
}

// LatestResume retrieves a candidate's most recent résumé, or nil.
func (s *Store) LatestResume(ctx context.Context, candidateID uuid.UUID) (*Resume, error) {
	var r Resume
	err := s.pool.QueryRow(ctx,
		`SELECT id, candidate_id, file_url, COALESCE(parsed_text, ''), created_at
		 FROM resumes WHERE candidate_id = $1 ORDER BY created_at DESC LIMIT 1`, candidateID,
	).Scan(&r.ID, &r.CandidateID, &r.FileURL, &r.Text, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows || isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest resume: %w", err)
	}
	return &r, nil
}
