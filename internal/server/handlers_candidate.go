package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hirematch/hirematch-api/internal/matching"
	"github.com/hirematch/hirematch-api/internal/store"
)

const resumeExcerptLimit = 800

// dashboardStat is one card on a dashboard.
type dashboardStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// handleCandidateDashboard returns the candidate's stat cards. Missing
// tables degrade to zero counts so fresh local setups render.
func (s *Server) handleCandidateDashboard(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	checks, err := s.store.ListMatchChecksByCandidate(r.Context(), userID, 5)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	apps, err := s.store.ListApplicationsByCandidate(r.Context(), userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, []dashboardStat{
		{Label: "Profile", Value: "Complete soon"},
		{Label: "Recent Match Checks", Value: strconv.Itoa(len(checks))},
		{Label: "Applications", Value: strconv.Itoa(len(apps))},
	})
}

func (s *Server) handleGetCandidateProfile(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	profile, err := s.store.GetCandidateProfile(r.Context(), userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

type candidateProfileInput struct {
	Headline   string   `json:"headline"`
	Location   string   `json:"location"`
	RemotePref string   `json:"remote_pref" validate:"omitempty,oneof=remote hybrid onsite"`
	Summary    string   `json:"summary"`
	Skills     []string `json:"skills"`
	Links      []string `json:"links" validate:"omitempty,dive,url"`
}

func (s *Server) handlePutCandidateProfile(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input candidateProfileInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	profile, err := s.store.UpsertCandidateProfile(r.Context(), store.CandidateProfile{
		ID:         userID,
		Headline:   input.Headline,
		Location:   input.Location,
		RemotePref: input.RemotePref,
		Summary:    input.Summary,
		Skills:     input.Skills,
		Links:      input.Links,
	})
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

type resumeUpload struct {
	FileName string `json:"file_name"`
	Text     string `json:"text" validate:"required"`
}

// handleUploadResume stores résumé text. File parsing happens client-side;
// the API takes extracted text only.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input resumeUpload
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	if input.FileName == "" {
		input.FileName = "resume.txt"
	}
	resume, err := s.store.InsertResume(r.Context(), store.Resume{
		CandidateID: userID,
		FileURL:     userID.String() + "/" + input.FileName,
		Text:        input.Text,
	})
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	resumes, err := s.store.ListResumesByCandidate(r.Context(), userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resumes)
}

type autofillRequest struct {
	ResumeID *uuid.UUID `json:"resume_id"`
}

// handleProfileAutofill drafts profile fields from the named résumé, or
// the latest one when none is named.
func (s *Server) handleProfileAutofill(w http.ResponseWriter, r *http.Request) {
	matcher, err := s.matcherOrErr()
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input autofillRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}

	text := ""
	if input.ResumeID != nil {
		text, err = s.store.GetResumeText(r.Context(), *input.ResumeID)
		if err != nil {
			s.errorStatus(w, err)
			return
		}
	}
	if text == "" {
		latest, err := s.store.LatestResume(r.Context(), userID)
		if err != nil {
			s.errorStatus(w, err)
			return
		}
		if latest != nil {
			text = latest.Text
		}
	}
	if text == "" {
		s.errorStatus(w, &ErrBadRequest{Message: "no resume text found, upload a resume first"})
		return
	}

	suggestion, err := matcher.SuggestProfile(r.Context(), text)
	if err != nil {
		s.errorStatus(w, &ErrUpstream{Err: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, suggestion)
}

type matchCheckRequest struct {
	JDText   string     `json:"jd_text" validate:"required"`
	ResumeID *uuid.UUID `json:"resume_id"`
}

type matchCheckResponse struct {
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Suggestions   string   `json:"suggestions"`
}

// handleMatchCheck scores the caller's own profile against pasted job
// description text and records the check.
func (s *Server) handleMatchCheck(w http.ResponseWriter, r *http.Request) {
	matcher, err := s.matcherOrErr()
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input matchCheckRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}

	profile, err := s.store.GetCandidateProfile(r.Context(), userID)
	if err != nil {
		if _, ok := asNotFound(err); !ok {
			s.errorStatus(w, err)
			return
		}
		profile = nil
	}
	text := ""
	if input.ResumeID != nil {
		text, err = s.store.GetResumeText(r.Context(), *input.ResumeID)
		if err != nil {
			s.errorStatus(w, err)
			return
		}
	}

	update, err := matcher.ScoreMatchCheck(r.Context(), input.JDText, matching.BuildCandidatePayload(profile, text))
	if err != nil {
		s.errorStatus(w, &ErrUpstream{Err: err})
		return
	}

	if err := s.store.InsertMatchCheck(r.Context(), store.MatchCheck{
		CandidateID:   userID,
		JDText:        input.JDText,
		ResumeID:      input.ResumeID,
		Score:         update.Score,
		Explanation:   update.Rationale,
		MatchedSkills: update.MatchedSkills,
		MissingSkills: update.MissingSkills,
	}); err != nil {
		s.errorStatus(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, matchCheckResponse{
		Score:         update.Score,
		MatchedSkills: update.MatchedSkills,
		MissingSkills: update.MissingSkills,
		Suggestions:   update.Rationale,
	})
}

func (s *Server) handleListMatchChecks(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	checks, err := s.store.ListMatchChecksByCandidate(r.Context(), userID, parseQueryInt(r, "limit", 50, 200))
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, checks)
}

func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	apps, err := s.store.ListApplicationsByCandidate(r.Context(), userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

type applyRequest struct {
	ResumeID *uuid.UUID `json:"resume_id"`
}

// handleApply creates an application, attaching résumé context when
// available. Résumé lookup and recruiter notification are best effort
// and never block the apply flow.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	jobID, err := pathUUID(r, "job_id")
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input applyRequest
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}

	appInput := store.ApplicationInput{JobID: jobID, CandidateID: userID, ResumeID: input.ResumeID}
	resume, err := s.resolveResume(r, userID, input.ResumeID)
	if err != nil {
		s.logger.Warn("resume lookup failed during apply", zap.Error(err))
	} else if resume != nil {
		appInput.ResumeID = &resume.ID
		appInput.ResumeExcerpt = excerpt(resume.Text, resumeExcerptLimit)
	}

	application, err := s.store.InsertApplication(r.Context(), appInput)
	if err != nil {
		s.errorStatus(w, &ErrBadRequest{Message: err.Error()})
		return
	}

	s.notifyRecruiter(r, jobID, application)
	s.jsonResponse(w, http.StatusCreated, application)
}

func (s *Server) resolveResume(r *http.Request, userID uuid.UUID, resumeID *uuid.UUID) (*store.Resume, error) {
	if resumeID == nil {
		return s.store.LatestResume(r.Context(), userID)
	}
	text, err := s.store.GetResumeText(r.Context(), *resumeID)
	if err != nil {
		return nil, err
	}
	return &store.Resume{ID: *resumeID, CandidateID: userID, Text: text}, nil
}

func (s *Server) notifyRecruiter(r *http.Request, jobID uuid.UUID, application *store.Application) {
	job, err := s.store.GetJobBySlugOrID(r.Context(), jobID.String())
	if err != nil || job.RecruiterID == nil {
		return
	}
	err = s.store.InsertNotification(r.Context(), *job.RecruiterID, "new_application", map[string]any{
		"job_id":         jobID.String(),
		"job_title":      job.Title,
		"candidate_id":   application.CandidateID.String(),
		"application_id": application.ID.String(),
	})
	if err != nil {
		s.logger.Warn("failed to notify recruiter", zap.Error(err), zap.String("job_id", jobID.String()))
	}
}

type postCreate struct {
	Body       string `json:"body" validate:"required"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public private"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input postCreate
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	if input.Visibility == "" {
		input.Visibility = "public"
	}
	post, err := s.store.InsertPost(r.Context(), userID, input.Body, input.Visibility)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, post)
}

func (s *Server) handleListMyPosts(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	posts, err := s.store.ListPostsByCandidate(r.Context(), userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, posts)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPublicFeed(r.Context(), parseQueryInt(r, "limit", 20, 100))
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, posts)
}
