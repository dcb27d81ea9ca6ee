package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/hirematch/hirematch-api/internal/auth"
	"github.com/hirematch/hirematch-api/internal/matching"
	"github.com/hirematch/hirematch-api/internal/store"
)

func (s *Server) handleRecruiterDashboard(w http.ResponseWriter, r *http.Request) {
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	var recruiterID *uuid.UUID
	if !s.skipOwnerCheck(identity) {
		recruiterID = &userID
	}
	openJobs, err := s.store.CountOpenJobs(r.Context(), recruiterID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	pipeline, err := s.store.CountApplications(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	matches, err := s.store.CountMatchEvents(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, []dashboardStat{
		{Label: "Open Jobs", Value: strconv.Itoa(openJobs)},
		{Label: "Candidates in Pipeline", Value: strconv.Itoa(pipeline)},
		{Label: "Matches Run", Value: strconv.Itoa(matches)},
	})
}

func (s *Server) handleGetRecruiterProfile(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	profile, err := s.store.GetRecruiterProfile(r.Context(), userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

type recruiterProfileInput struct {
	CompanyID   *uuid.UUID `json:"company_id"`
	Title       string     `json:"title"`
	LinkedInURL string     `json:"linkedin_url" validate:"omitempty,url"`
	About       string     `json:"about"`
}

func (s *Server) handlePutRecruiterProfile(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input recruiterProfileInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	profile, err := s.store.UpsertRecruiterProfile(r.Context(), store.RecruiterProfile{
		ID:          userID,
		CompanyID:   input.CompanyID,
		Title:       input.Title,
		LinkedInURL: input.LinkedInURL,
		About:       input.About,
	})
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

type improveJobRequest struct {
	JDText string `json:"jd_text" validate:"required"`
}

// handleImproveJob rewrites a raw job description and extracts skills.
func (s *Server) handleImproveJob(w http.ResponseWriter, r *http.Request) {
	matcher, err := s.matcherOrErr()
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input improveJobRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	improved, err := matcher.ImproveJobDescription(r.Context(), input.JDText)
	if err != nil {
		s.errorStatus(w, &ErrUpstream{Err: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, improved)
}

type ingestJobRequest struct {
	FileName string `json:"file_name"`
	Text     string `json:"text" validate:"required"`
}

// handleIngestJob bootstraps a posting form from an uploaded job
// description. Binary extraction happens client-side; the endpoint takes
// the extracted text.
func (s *Server) handleIngestJob(w http.ResponseWriter, r *http.Request) {
	matcher, err := s.matcherOrErr()
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input ingestJobRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	draft, err := matcher.DraftJob(r.Context(), input.Text)
	if err != nil {
		s.errorStatus(w, &ErrUpstream{Err: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, draft)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input store.JobInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	var recruiterID *uuid.UUID
	if !s.skipOwnerCheck(identity) {
		recruiterID = &userID
	}
	job, err := s.store.CreateJob(r.Context(), recruiterID, input)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleListMyJobs(w http.ResponseWriter, r *http.Request) {
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var jobs []store.Job
	if s.skipOwnerCheck(identity) {
		jobs, err = s.store.ListAllJobs(r.Context())
	} else {
		jobs, err = s.store.ListJobsByRecruiter(r.Context(), userID)
	}
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

// ownedJob loads a job enforcing ownership, honoring the local-dev bypass.
func (s *Server) ownedJob(r *http.Request, identity auth.Identity, userID uuid.UUID) (*store.Job, error) {
	jobID, err := pathUUID(r, "id")
	if err != nil {
		return nil, err
	}
	return s.store.GetJobOwned(r.Context(), jobID, userID, s.skipOwnerCheck(identity))
}

func (s *Server) handleGetMyJob(w http.ResponseWriter, r *http.Request) {
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	job, err := s.ownedJob(r, identity, userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateMyJob(w http.ResponseWriter, r *http.Request) {
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	job, err := s.ownedJob(r, identity, userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input store.JobInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	updated, err := s.store.UpdateJob(r.Context(), job.ID, input)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

type attachCandidateRequest struct {
	CandidateID uuid.UUID  `json:"candidate_id" validate:"required"`
	ResumeID    *uuid.UUID `json:"resume_id"`
}

// handleAttachCandidate places a candidate into a job's pipeline without
// scoring, upserting on the (job, candidate) pair.
func (s *Server) handleAttachCandidate(w http.ResponseWriter, r *http.Request) {
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	job, err := s.ownedJob(r, identity, userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input attachCandidateRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	application, err := s.store.UpsertApplication(r.Context(), store.ApplicationInput{
		JobID:       job.ID,
		CandidateID: input.CandidateID,
		ResumeID:    input.ResumeID,
	})
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, application)
}

type matchRequest struct {
	CandidateID uuid.UUID  `json:"candidate_id" validate:"required"`
	ResumeID    *uuid.UUID `json:"resume_id"`
}

type matchResult struct {
	JobID         uuid.UUID `json:"job_id"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	Score         float64   `json:"score"`
	MatchLevel    *string   `json:"match_level"`
	MatchedSkills []string  `json:"matched_skills"`
	MissingSkills []string  `json:"missing_skills"`
	Rationale     string    `json:"rationale"`
	BestFit       bool      `json:"best_fit"`
}

// handleMatchCandidate scores one candidate against a job, creating the
// application row when it does not exist yet.
func (s *Server) handleMatchCandidate(w http.ResponseWriter, r *http.Request) {
	matcher, err := s.matcherOrErr()
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	job, err := s.ownedJob(r, identity, userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input matchRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}

	application, err := s.store.FindApplication(r.Context(), job.ID, input.CandidateID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	if application == nil {
		application, err = s.store.InsertApplication(r.Context(), store.ApplicationInput{
			JobID:       job.ID,
			CandidateID: input.CandidateID,
			ResumeID:    input.ResumeID,
		})
		if err != nil {
			s.errorStatus(w, err)
			return
		}
	}
	if input.ResumeID != nil {
		application.ResumeID = input.ResumeID
	}

	scored, err := matcher.ScoreApplication(r.Context(), job, *application)
	if err != nil {
		s.errorStatus(w, &ErrUpstream{Err: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, matchResultFrom(scored))
}

func matchResultFrom(app store.Application) matchResult {
	result := matchResult{
		JobID:         app.JobID,
		CandidateID:   app.CandidateID,
		MatchLevel:    app.MatchLevel,
		MatchedSkills: app.MatchedSkills,
		MissingSkills: app.MissingSkills,
		Rationale:     app.Rationale,
		BestFit:       app.BestFit,
	}
	if app.MatchScore != nil {
		result.Score = *app.MatchScore
	}
	return result
}

// rankedApplication is an application enriched with its candidate block.
type rankedApplication struct {
	store.Application
	Candidate *store.CandidateProfile `json:"candidate,omitempty"`
	Email     *string                 `json:"email,omitempty"`
}

// handleListJobApplications returns the ranked applicant pool: scored
// rows before unscored ones, higher scores first. With include_best=true
// the best-fit flag is recomputed before answering.
func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	job, err := s.ownedJob(r, identity, userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	includeBest := r.URL.Query().Get("include_best") == "true"
	if includeBest && s.matcher != nil {
		if _, err := s.matcher.RecomputeBestFit(r.Context(), job.ID); err != nil {
			s.errorStatus(w, err)
			return
		}
	}

	apps, err := s.store.ListApplicationsByJob(r.Context(), job.ID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	ranked, err := s.enrichApplications(r, matching.RankApplications(apps))
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ranked)
}

func (s *Server) enrichApplications(r *http.Request, apps []store.Application) ([]rankedApplication, error) {
	ids := make([]uuid.UUID, 0, len(apps))
	seen := make(map[uuid.UUID]bool, len(apps))
	for _, app := range apps {
		if !seen[app.CandidateID] {
			seen[app.CandidateID] = true
			ids = append(ids, app.CandidateID)
		}
	}

	profiles, err := s.store.ListCandidatesByIDs(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsersByIDs(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	profileByID := make(map[uuid.UUID]*store.CandidateProfile, len(profiles))
	for i := range profiles {
		profileByID[profiles[i].ID] = &profiles[i]
	}
	emailByID := emailsByUser(users)

	ranked := make([]rankedApplication, 0, len(apps))
	for _, app := range apps {
		entry := rankedApplication{Application: app, Candidate: profileByID[app.CandidateID]}
		if email, ok := emailByID[app.CandidateID]; ok {
			entry.Email = &email
		}
		ranked = append(ranked, entry)
	}
	return ranked, nil
}

// emailsByUser indexes user emails by id, skipping users with no email on
// record.
func emailsByUser(users []store.User) map[uuid.UUID]string {
	byID := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		if u.Email != nil {
			byID[u.ID] = *u.Email
		}
	}
	return byID
}

// handleScoreAllApplications runs the batch scoring pass over a job.
func (s *Server) handleScoreAllApplications(w http.ResponseWriter, r *http.Request) {
	matcher, err := s.matcherOrErr()
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	job, err := s.ownedJob(r, identity, userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	scored, bestFitID, err := matcher.ScoreJobApplications(r.Context(), job)
	if err != nil {
		s.errorStatus(w, &ErrUpstream{Err: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"scored":      scored,
		"best_fit_id": bestFitID,
	})
}

// handleScoreApplication scores one existing application.
func (s *Server) handleScoreApplication(w http.ResponseWriter, r *http.Request) {
	matcher, err := s.matcherOrErr()
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	job, err := s.ownedJob(r, identity, userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	appID, err := pathUUID(r, "app_id")
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	application, err := s.store.GetApplication(r.Context(), job.ID, appID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	scored, err := matcher.ScoreApplication(r.Context(), job, *application)
	if err != nil {
		s.errorStatus(w, &ErrUpstream{Err: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, matchResultFrom(scored))
}

// candidateSummary is one entry in the recruiter's candidate pool.
type candidateSummary struct {
	ID           uuid.UUID               `json:"id"`
	Candidate    *store.CandidateProfile `json:"candidate,omitempty"`
	Email        *string                 `json:"email,omitempty"`
	Applications []store.Application     `json:"applications"`
}

// handleListCandidates lists candidates who applied to the recruiter's
// jobs, with their applications attached.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	identity, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var jobs []store.Job
	if s.skipOwnerCheck(identity) {
		jobs, err = s.store.ListAllJobs(r.Context())
	} else {
		jobs, err = s.store.ListJobsByRecruiter(r.Context(), userID)
	}
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	jobIDs := make([]uuid.UUID, 0, len(jobs))
	for _, job := range jobs {
		jobIDs = append(jobIDs, job.ID)
	}
	apps, err := s.store.ListApplicationsByJobs(r.Context(), jobIDs)
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	byCandidate := make(map[uuid.UUID][]store.Application)
	order := make([]uuid.UUID, 0)
	for _, app := range apps {
		if _, ok := byCandidate[app.CandidateID]; !ok {
			order = append(order, app.CandidateID)
		}
		byCandidate[app.CandidateID] = append(byCandidate[app.CandidateID], app)
	}

	profiles, err := s.store.ListCandidatesByIDs(r.Context(), order)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	users, err := s.store.ListUsersByIDs(r.Context(), order)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	profileByID := make(map[uuid.UUID]*store.CandidateProfile, len(profiles))
	for i := range profiles {
		profileByID[profiles[i].ID] = &profiles[i]
	}
	emailByID := emailsByUser(users)

	summaries := make([]candidateSummary, 0, len(order))
	for _, cid := range order {
		entry := candidateSummary{ID: cid, Candidate: profileByID[cid], Applications: byCandidate[cid]}
		if email, ok := emailByID[cid]; ok {
			entry.Email = &email
		}
		summaries = append(summaries, entry)
	}
	s.jsonResponse(w, http.StatusOK, summaries)
}

// handleGetCandidate returns a candidate's profile with posts and
// application history.
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, err := pathUUID(r, "id")
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	profile, err := s.store.GetCandidateProfile(r.Context(), candidateID)
	if err != nil {
		if _, ok := asNotFound(err); !ok {
			s.errorStatus(w, err)
			return
		}
		profile = nil
	}
	posts, err := s.store.ListPostsByCandidate(r.Context(), candidateID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	apps, err := s.store.ListApplicationsByCandidate(r.Context(), candidateID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	notes, err := s.store.ListNotesByCandidate(r.Context(), candidateID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"profile":      profile,
		"posts":        posts,
		"applications": apps,
		"notes":        notes,
	})
}

type bookmarkRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleBookmarkCandidate(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	candidateID, err := pathUUID(r, "id")
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input bookmarkRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	bookmark, err := s.store.InsertBookmark(r.Context(), userID, candidateID, input.Note)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, bookmark)
}

// handleListBookmarks returns the caller's bookmarked candidates.
func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	bookmarks, err := s.store.ListBookmarks(r.Context(), userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, bookmarks)
}

type noteRequest struct {
	Note string `json:"note" validate:"required"`
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	candidateID, err := pathUUID(r, "id")
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input noteRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	note, err := s.store.InsertNote(r.Context(), candidateID, userID, input.Note)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, note)
}
