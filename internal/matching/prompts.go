package matching

import (
	"encoding/json"
	"fmt"

	"github.com/hirematch/hirematch-api/internal/store"
)

// maxPromptText bounds free-form text embedded in prompts so a long
// résumé or job description cannot blow the context window.
const maxPromptText = 6000

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

// jsonList renders a string slice for prompt embedding. Marshal of a
// plain []string cannot fail.
func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func improveJobPrompt(jdText string) string {
	return fmt.Sprintf(`You are an expert technical recruiter.

You will receive a raw job description. Your job is to:
1. Clean and improve the description for clarity, structure, and attractiveness.
2. Extract MUST-HAVE skills (core requirements).
3. Extract NICE-TO-HAVE skills (bonuses, optional).

Return ONLY valid JSON with this exact structure:

{
  "description": "Improved job description as a single long string...",
  "must_have": ["skill1", "skill2", "..."],
  "nice_to_have": ["skillA", "skillB", "..."]
}

Do not include any explanatory text outside the JSON.
Here is the raw job description:

"""%s"""`, truncate(jdText, maxPromptText))
}

func suggestProfilePrompt(resumeText string) string {
	return fmt.Sprintf(`You are a career coach helping a candidate set up a concise profile from their CV.

Return ONLY valid JSON:
{
  "headline": "Short role/title headline",
  "summary": "2-4 sentence summary highlighting strengths",
  "skills": ["skill1","skill2", "..."],
  "links": ["https://example.com/portfolio", "..."]
}

CV TEXT:
"""%s"""`, truncate(resumeText, maxPromptText))
}

func scorePrompt(job *store.Job, candidate CandidatePayload) string {
	title := job.Title
	if title == "" {
		title = "Role"
	}
	skills := make([]string, 0, len(job.Skills))
	for _, s := range job.Skills {
		skills = append(skills, fmt.Sprintf("%s (%s)", s.Skill, s.Importance))
	}

	return fmt.Sprintf(`You are an AI assistant helping a recruiter decide how well a candidate fits a job.

You will receive a job and a candidate profile (including parsed CV text).
You must evaluate the match and respond ONLY with valid JSON in this structure:

{
  "score": 0-100 as a number,
  "band": "poor" | "ok" | "strong" | "excellent",
  "matched_skills": ["..."],
  "missing_skills": ["..."],
  "rationale": "Short explanation in 3-6 sentences."
}

Give higher scores when the candidate clearly matches most of the core skills and responsibilities.

JOB:
- Title: %s
- Description:
%s

- Explicit job skills (may be empty): %s

CANDIDATE:
- Headline: %s
- Location: %s
- Remote preference: %s
- Summary:
%s

- Declared skills: %s
- Links: %s

- CV Text:
"""%s"""`,
		title,
		job.Description,
		jsonList(skills),
		candidate.Headline,
		candidate.Location,
		candidate.RemotePref,
		candidate.Summary,
		jsonList(candidate.Skills),
		jsonList(candidate.Links),
		truncate(candidate.ResumeText, maxPromptText),
	)
}
