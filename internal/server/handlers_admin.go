package server

import (
	"net/http"
	"strconv"

	"github.com/hirematch/hirematch-api/internal/store"
)

// handleAdminOverview returns platform-wide stat cards. Counts degrade
// to zeros when the backing tables are missing.
func (s *Server) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	byRole, err := s.store.CountUsersByRole(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	openJobs, err := s.store.CountOpenJobs(r.Context(), nil)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	matches, err := s.store.CountMatchEventsThisMonth(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, []dashboardStat{
		{Label: "Admins", Value: strconv.Itoa(byRole["admin"])},
		{Label: "Recruiters", Value: strconv.Itoa(byRole["recruiter"])},
		{Label: "Candidates", Value: strconv.Itoa(byRole["candidate"])},
		{Label: "Open Jobs", Value: strconv.Itoa(openJobs)},
		{Label: "Matches This Month", Value: strconv.Itoa(matches)},
	})
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, users)
}

type userStatusInput struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input userStatusInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	user, err := s.store.UpdateUserStatus(r.Context(), id, input.Status)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleAdminListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.ListCompanies(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, companies)
}

func (s *Server) handleAdminListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListAllJobs(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

func (s *Server) handleAdminListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListAllPosts(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, posts)
}

type moderateInput struct {
	Status string `json:"status" validate:"omitempty,oneof=visible hidden"`
}

func (s *Server) handleAdminModeratePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	var input moderateInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.errorStatus(w, err)
		return
	}
	if input.Status == "" {
		input.Status = "hidden"
	}
	var post *store.Post
	post, err = s.store.ModeratePost(r.Context(), id, input.Status)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, post)
}
