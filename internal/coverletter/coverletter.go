// Package coverletter drafts a fixed-template cover letter from a parsed
// resume and a job description. It is the offline counterpart of the AI
// cover-letter operation.
package coverletter

import (
	"strings"
	"unicode/utf8"

	"atsmatch/internal/types"
)

// SourceTemplate marks output produced by Generate.
const SourceTemplate = "template"

const (
	fallbackSkills = "full-stack development"
	fallbackFocus  = "driving product impact"
	topSkillCount  = 4
	minFocusRunes  = 20
)

// Generate renders the cover letter. Output is fully determined by input.
func Generate(input types.CoverLetterInput) types.CoverLetterOutput {
	resume := input.Resume

	letter := []string{
		"Dear Hiring Team at " + input.CompanyName + ",",
		"",
		"I am excited to apply for the " + input.RoleTitle + " position. As a " + resume.Headline +
			", I bring hands-on experience delivering user-focused solutions with strong execution discipline.",
		"",
		resume.Summary,
		"",
		"My core strengths include " + TopSkills(resume.Skills) +
			". I am particularly aligned with your focus on " + FocusLine(input.JobDescription) + ".",
		"",
		"I would value the opportunity to contribute quickly, collaborate across product and engineering, and help your team ship meaningful outcomes.",
		"",
		"Thank you for your time and consideration.",
		"",
		"Sincerely,",
		resume.Name,
	}

	return types.CoverLetterOutput{
		CoverLetterText: strings.Join(letter, "\n"),
		Source:          SourceTemplate,
	}
}

// TopSkills joins the first four skills, or names a generic strength.
func TopSkills(skills []string) string {
	if len(skills) > topSkillCount {
		skills = skills[:topSkillCount]
	}
	if joined := strings.Join(skills, ", "); joined != "" {
		return joined
	}
	return fallbackSkills
}

// FocusLine returns the first job-description line with more than twenty
// characters once trimmed.
func FocusLine(jobDescription string) string {
	for _, line := range strings.Split(jobDescription, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > minFocusRunes {
			return line
		}
	}
	return fallbackFocus
}
