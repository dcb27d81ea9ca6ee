package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hirematch/hirematch-api/internal/store"
)

func TestPublicJobViewWithoutCompany(t *testing.T) {
	loc := "Berlin"
	jc := store.JobWithCompany{Job: store.Job{Title: "Go Engineer", Location: &loc}}

	view := publicJobView(jc)

	assert.Equal(t, "", view.Company.ID)
	assert.Equal(t, "Company", view.Company.Name)
	assert.Equal(t, "free", view.Company.Plan)
	assert.Equal(t, &loc, view.Company.Location, "falls back to the job location")
	assert.Nil(t, view.Company.Website)
}

func TestPublicJobViewWithCompany(t *testing.T) {
	jobLoc := "Remote"
	companyLoc := "Amsterdam"
	website := "https://acme.example"
	id := uuid.New()
	jc := store.JobWithCompany{
		Job: store.Job{Title: "Go Engineer", Location: &jobLoc},
		Company: &store.Company{
			ID:       id,
			Name:     "Acme",
			Website:  &website,
			Location: &companyLoc,
			Plan:     "pro",
		},
	}

	view := publicJobView(jc)

	assert.Equal(t, id.String(), view.Company.ID)
	assert.Equal(t, "Acme", view.Company.Name)
	assert.Equal(t, "pro", view.Company.Plan)
	assert.Equal(t, &companyLoc, view.Company.Location)
	assert.Equal(t, &website, view.Company.Website)
}

func TestPublicJobViewBlankCompanyFields(t *testing.T) {
	jobLoc := "Oslo"
	jc := store.JobWithCompany{
		Job:     store.Job{Location: &jobLoc},
		Company: &store.Company{ID: uuid.New()},
	}

	view := publicJobView(jc)

	assert.Equal(t, "Company", view.Company.Name)
	assert.Equal(t, "free", view.Company.Plan)
	assert.Equal(t, &jobLoc, view.Company.Location)
}
