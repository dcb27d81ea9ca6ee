package server

import (
	"net/http"

	"github.com/hirematch/hirematch-api/internal/store"
)

// publicCompany is the employer block embedded in every public job view.
type publicCompany struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Website  *string `json:"website,omitempty"`
	Industry *string `json:"industry,omitempty"`
	Location *string `json:"location,omitempty"`
	Plan     string  `json:"plan"`
}

type publicJob struct {
	store.Job
	Company publicCompany `json:"company"`
}

// publicJobView shapes a job for the public board. Jobs without a linked
// employer still render a company block with placeholder name and free plan,
// falling back to the job's own location.
func publicJobView(jc store.JobWithCompany) publicJob {
	company := publicCompany{Name: "Company", Location: jc.Location, Plan: "free"}
	if jc.Company != nil {
		company.ID = jc.Company.ID.String()
		if jc.Company.Name != "" {
			company.Name = jc.Company.Name
		}
		company.Website = jc.Company.Website
		company.Industry = jc.Company.Industry
		if jc.Company.Location != nil {
			company.Location = jc.Company.Location
		}
		if jc.Company.Plan != "" {
			company.Plan = jc.Company.Plan
		}
	}
	return publicJob{Job: jc.Job, Company: company}
}

// handleListOpenJobs returns open jobs for the public board.
func (s *Server) handleListOpenJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListOpenJobs(r.Context())
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	views := make([]publicJob, 0, len(jobs))
	for _, jc := range jobs {
		views = append(views, publicJobView(jc))
	}
	s.jsonResponse(w, http.StatusOK, views)
}

// handleGetJob returns job detail, addressed by slug or id.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jc, err := s.store.GetJobWithCompanyBySlugOrID(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, publicJobView(*jc))
}
