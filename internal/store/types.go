package store

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account common to all roles.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     *string   `json:"email,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CandidateProfile is the candidate-owned profile row.
type CandidateProfile struct {
	ID         uuid.UUID `json:"id"`
	Headline   string    `json:"headline"`
	Location   string    `json:"location"`
	RemotePref string    `json:"remote_pref"`
	Summary    string    `json:"summary"`
	Skills     []string  `json:"skills"`
	Links      []string  `json:"links"`
}

// RecruiterProfile is the recruiter-owned profile row.
type RecruiterProfile struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	Title       string     `json:"title"`
	LinkedInURL string     `json:"linkedin_url"`
	About       string     `json:"about"`
}

// JobSkill is one explicit skill requirement on a job.
type JobSkill struct {
	Skill      string `json:"skill"`
	Importance string `json:"importance"` // "must" or "nice"
}

// Job is a posting owned by a recruiter. RecruiterID is null for rows
// created through the local dev bypass.
type Job struct {
	ID             uuid.UUID  `json:"id"`
	RecruiterID    *uuid.UUID `json:"recruiter_id,omitempty"`
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Location       *string    `json:"location,omitempty"`
	Remote         bool       `json:"remote"`
	EmploymentType *string    `json:"employment_type,omitempty"`
	Seniority      *string    `json:"seniority,omitempty"`
	SalaryMin      *int       `json:"salary_min,omitempty"`
	SalaryMax      *int       `json:"salary_max,omitempty"`
	Description    string     `json:"description"`
	Skills         []JobSkill `json:"skills"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Application links a candidate to a job, carrying the most recent score.
type Application struct {
	ID            uuid.UUID  `json:"id"`
	JobID         uuid.UUID  `json:"job_id"`
	CandidateID   uuid.UUID  `json:"candidate_id"`
	ResumeID      *uuid.UUID `json:"resume_id,omitempty"`
	ResumeExcerpt *string    `json:"resume_excerpt,omitempty"`
	Status        string     `json:"status"`
	AppliedAt     time.Time  `json:"applied_at"`

	MatchScore    *float64   `json:"match_score,omitempty"`
	MatchLevel    *string    `json:"match_level,omitempty"`
	MatchedSkills []string   `json:"matched_skills"`
	MissingSkills []string   `json:"missing_skills"`
	Rationale     string     `json:"rationale"`
	BestFit       bool       `json:"best_fit"`
	LastScoredAt  *time.Time `json:"last_scored_at,omitempty"`
}

// ScoreUpdate is the set of mutable score fields written by a scoring pass.
type ScoreUpdate struct {
	Score         float64
	Level         *string
	MatchedSkills []string
	MissingSkills []string
	Rationale     string
}

// MatchEvent is one immutable scoring-event record, kept independently of
// the mutable Application row for audit.
type MatchEvent struct {
	ID            uuid.UUID `json:"id"`
	JobID         uuid.UUID `json:"job_id"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	Score         float64   `json:"score"`
	MatchedSkills []string  `json:"matched_skills"`
	MissingSkills []string  `json:"missing_skills"`
	Rationale     string    `json:"rationale"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchCheck is a candidate's ad-hoc score of their own profile against a
// pasted job description.
type MatchCheck struct {
	ID            uuid.UUID  `json:"id"`
	CandidateID   uuid.UUID  `json:"candidate_id"`
	JDText        string     `json:"jd_text"`
	ResumeID      *uuid.UUID `json:"resume_id,omitempty"`
	Score         float64    `json:"match_score"`
	Explanation   string     `json:"explanation"`
	MatchedSkills []string   `json:"matched_skills"`
	MissingSkills []string   `json:"missing_skills"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Resume is an uploaded résumé with its extracted text.
type Resume struct {
	ID          uuid.UUID `json:"id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	FileURL     string    `json:"file_url"`
	Text        string    `json:"parsed_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post is a candidate-authored feed post.
type Post struct {
	ID          uuid.UUID `json:"id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Body        string    `json:"body"`
	Visibility  string    `json:"visibility"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification is a per-user event record.
type Notification struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// Bookmark marks a candidate as interesting to a recruiter.
type Bookmark struct {
	ID          uuid.UUID `json:"id"`
	RecruiterID uuid.UUID `json:"recruiter_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// Note is a recruiter's note on a candidate.
type Note struct {
	ID          uuid.UUID `json:"id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// Company is an employer record shown on public job listings.
type Company struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Website  *string   `json:"website,omitempty"`
	Industry *string   `json:"industry,omitempty"`
	Location *string   `json:"location,omitempty"`
	Plan     string    `json:"plan"`
}
