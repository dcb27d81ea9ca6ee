// Package matching scores candidates against jobs with Gemini and keeps
// per-job best-fit flags current.
package matching

import "github.com/hirematch/hirematch-api/internal/store"

// CandidatePayload is the simplified candidate view embedded in scoring
// prompts.
type CandidatePayload struct {
	Headline   string   `json:"headline"`
	Location   string   `json:"location"`
	RemotePref string   `json:"remote_pref"`
	Summary    string   `json:"summary"`
	Skills     []string `json:"skills"`
	Links      []string `json:"links"`
	ResumeText string   `json:"cv_text"`
}

// BuildCandidatePayload flattens a profile and résumé text into the shape
// the scoring prompt expects. A nil profile yields an empty payload so
// scoring can proceed on résumé text alone.
func BuildCandidatePayload(profile *store.CandidateProfile, resumeText string) CandidatePayload {
	p := CandidatePayload{ResumeText: resumeText}
	if profile != nil {
		p.Headline = profile.Headline
		p.Location = profile.Location
		p.RemotePref = profile.RemotePref
		p.Summary = profile.Summary
		p.Skills = profile.Skills
		p.Links = profile.Links
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Links == nil {
		p.Links = []string{}
	}
	return p
}
