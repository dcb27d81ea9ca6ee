package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

const (
	draftTitleLimit       = 80
	draftDescriptionLimit = 4000
	draftSkillLimit       = 10
)

// JobDraft is a bootstrap job form extracted from an uploaded description.
type JobDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	MustSkills  []string `json:"must_skills"`
	NiceSkills  []string `json:"nice_skills"`
}

// DraftJob turns raw job-description text into a pre-filled posting form.
// The oracle supplies the cleaned description and skill lists; heuristics
// over the raw text back-fill the title and, when the oracle degrades to
// empty output, the must-have skills and description.
func (s *Service) DraftJob(ctx context.Context, text string) (*JobDraft, error) {
	data, err := s.oracle.GenerateStructured(ctx, improveJobPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("failed to draft job: %w", err)
	}
	title, guessed := guessTitleAndSkills(text)
	draft := &JobDraft{
		Title:       title,
		Description: asString(data["description"]),
		MustSkills:  asStringSlice(data["must_have"]),
		NiceSkills:  asStringSlice(data["nice_to_have"]),
	}
	if draft.Description == "" {
		draft.Description = truncate(text, draftDescriptionLimit)
	}
	if len(draft.MustSkills) == 0 {
		draft.MustSkills = guessed
	}
	return draft, nil
}

// guessTitleAndSkills extracts a title and skill guesses from raw text: the
// first non-blank line becomes the title, and the most frequent capitalized
// terms become the skills.
func guessTitleAndSkills(text string) (string, []string) {
	title := "Job Title"
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			title = truncate(line, draftTitleLimit)
			break
		}
	}

	counts := make(map[string]int)
	var order []string
	for _, w := range strings.Fields(text) {
		r := []rune(w)
		if len(r) > 2 && len(r) <= 25 && unicode.IsLetter(r[0]) {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	var skills []string
	for _, w := range order {
		if !unicode.IsUpper([]rune(w)[0]) {
			continue
		}
		skills = append(skills, w)
		if len(skills) == draftSkillLimit {
			break
		}
	}
	return title, skills
}
