package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, recruiter_id, COALESCE(slug, id::text), title, location, remote,
	employment_type, seniority, salary_min, salary_max, COALESCE(description, ''),
	COALESCE(skills, '[]'::jsonb), status, created_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.RecruiterID, &j.Slug, &j.Title, &j.Location, &j.Remote,
		&j.EmploymentType, &j.Seniority, &j.SalaryMin, &j.SalaryMax, &j.Description,
		&j.Skills, &j.Status, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]Job, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// JobWithCompany pairs a job with the employer behind it, resolved through
// the posting recruiter. Company is nil when the job has no recruiter or the
// recruiter has no company on record.
type JobWithCompany struct {
	Job
	Company *Company
}

const publicJobColumns = `j.id, j.recruiter_id, COALESCE(j.slug, j.id::text), j.title, j.location, j.remote,
	j.employment_type, j.seniority, j.salary_min, j.salary_max, COALESCE(j.description, ''),
	COALESCE(j.skills, '[]'::jsonb), j.status, j.created_at,
	c.id, c.name, c.website, c.industry, c.location, c.plan`

const publicJobJoins = ` FROM jobs j
	LEFT JOIN recruiters rec ON rec.id = j.recruiter_id
	LEFT JOIN companies c ON c.id = rec.company_id`

func scanJobWithCompany(row pgx.Row) (*JobWithCompany, error) {
	var jc JobWithCompany
	var companyID *uuid.UUID
	var companyName, companyPlan *string
	var website, industry, location *string
	err := row.Scan(&jc.ID, &jc.RecruiterID, &jc.Slug, &jc.Title, &jc.Location, &jc.Remote,
		&jc.EmploymentType, &jc.Seniority, &jc.SalaryMin, &jc.SalaryMax, &jc.Description,
		&jc.Skills, &jc.Status, &jc.CreatedAt,
		&companyID, &companyName, &website, &industry, &location, &companyPlan)
	if err != nil {
		return nil, err
	}
	if companyID != nil {
		c := Company{ID: *companyID, Website: website, Industry: industry, Location: location, Plan: "free"}
		if companyName != nil {
			c.Name = *companyName
		}
		if companyPlan != nil {
			c.Plan = *companyPlan
		}
		jc.Company = &c
	}
	return &jc, nil
}

// ListOpenJobs retrieves every open job with its employer for the public
// listing.
func (s *Store) ListOpenJobs(ctx context.Context) ([]JobWithCompany, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+publicJobColumns+publicJobJoins+` WHERE j.status = 'open' ORDER BY j.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list open jobs: %w", err)
	}
	defer rows.Close()

	var jobs []JobWithCompany
	for rows.Next() {
		jc, err := scanJobWithCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *jc)
	}
	return jobs, rows.Err()
}

// GetJobWithCompanyBySlugOrID is the public-detail variant of
// GetJobBySlugOrID.
func (s *Store) GetJobWithCompanyBySlugOrID(ctx context.Context, slugOrID string) (*JobWithCompany, error) {
	jc, err := scanJobWithCompany(s.pool.QueryRow(ctx,
		`SELECT `+publicJobColumns+publicJobJoins+` WHERE j.slug = $1 OR j.id::text = $1 LIMIT 1`, slugOrID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{Kind: "job", ID: slugOrID}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return jc, nil
}

// GetJobBySlugOrID retrieves a job addressed by slug, falling back to id.
func (s *Store) GetJobBySlugOrID(ctx context.Context, slugOrID string) (*Job, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE slug = $1 OR id::text = $1 LIMIT 1`, slugOrID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{Kind: "job", ID: slugOrID}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// JobInput is the writable job fields.
type JobInput struct {
	Title          string     `json:"title" validate:"required"`
	Location       *string    `json:"location"`
	Remote         bool       `json:"remote"`
	EmploymentType *string    `json:"employment_type"`
	Seniority      *string    `json:"seniority"`
	SalaryMin      *int       `json:"salary_min"`
	SalaryMax      *int       `json:"salary_max"`
	Description    string     `json:"description"`
	Skills         []JobSkill `json:"skills"`
	Status         string     `json:"status" validate:"omitempty,oneof=draft open closed"`
}

// CreateJob inserts a job. recruiterID is nil for local-dev rows.
func (s *Store) CreateJob(ctx context.Context, recruiterID *uuid.UUID, input JobInput) (*Job, error) {
	if input.Status == "" {
		input.Status = "open"
	}
	if input.Skills == nil {
		input.Skills = []JobSkill{}
	}
	job, err := scanJob(s.pool.QueryRow(ctx,
		`INSERT INTO jobs (recruiter_id, title, location, remote, employment_type,
		                   seniority, salary_min, salary_max, description, skills, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+jobColumns,
		recruiterID, input.Title, input.Location, input.Remote, input.EmploymentType,
		input.Seniority, input.SalaryMin, input.SalaryMax, input.Description,
		input.Skills, input.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// UpdateJob overwrites a job's writable fields.
func (s *Store) UpdateJob(ctx context.Context, id uuid.UUID, input JobInput) (*Job, error) {
	if input.Skills == nil {
		input.Skills = []JobSkill{}
	}
	job, err := scanJob(s.pool.QueryRow(ctx,
		`UPDATE jobs SET title = $2, location = $3, remote = $4, employment_type = $5,
		                 seniority = $6, salary_min = $7, salary_max = $8,
		                 description = $9, skills = $10, status = $11
		 WHERE id = $1
		 RETURNING `+jobColumns,
		id, input.Title, input.Location, input.Remote, input.EmploymentType,
		input.Seniority, input.SalaryMin, input.SalaryMax, input.Description,
		input.Skills, input.Status,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{Kind: "job", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// ListJobsByRecruiter retrieves jobs owned by one recruiter.
func (s *Store) ListJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]Job, error) {
	jobs, err := s.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE recruiter_id = $1 ORDER BY created_at DESC`, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recruiter jobs: %w", err)
	}
	return jobs, nil
}

// ListAllJobs retrieves every job, for admin views and the local dev bypass.
func (s *Store) ListAllJobs(ctx context.Context) ([]Job, error) {
	jobs, err := s.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// GetJobOwned fetches a job enforcing recruiter ownership unless skipOwner
// is set (local dev identities own nothing).
func (s *Store) GetJobOwned(ctx context.Context, jobID, recruiterID uuid.UUID, skipOwner bool) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	args := []any{jobID}
	if !skipOwner {
		query += ` AND recruiter_id = $2`
		args = append(args, recruiterID)
	}
	job, err := scanJob(s.pool.QueryRow(ctx, query+` LIMIT 1`, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{Kind: "job", ID: jobID.String()}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// CountOpenJobs returns the number of open jobs. Missing table degrades to
// zero for dashboard use.
func (s *Store) CountOpenJobs(ctx context.Context, recruiterID *uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM jobs WHERE status = 'open'`
	args := []any{}
	if recruiterID != nil {
		query += ` AND recruiter_id = $1`
		args = append(args, *recruiterID)
	}
	var n int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}
