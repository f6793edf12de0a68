package ai

import (
	"fmt"
	"strings"

	"atsmatch/internal/config"
	"atsmatch/internal/types"
)

// Prompts holds the system instruction and user template of one operation.
//
// User templates are fmt formats with indexed verbs, so a custom template may
// use any subset of the arguments in any order.
//
// rewrite, interview:
//
//	%[1]s resume text  %[2]s job description  %[3]s matched keywords
//	%[4]s missing keywords  %[5]d ATS score
//
// coverLetter:
//
//	%[1]s name  %[2]s headline  %[3]s summary  %[4]s skills
//	%[5]s job description  %[6]s company  %[7]s role
type Prompts struct {
	System string
	User   string
}

const noJobDescription = "(no job description provided)"

// DefaultPrompts are used when an operation has no configured prompt.
var DefaultPrompts = map[string]Prompts{
	config.OperationRewrite: {
		System: `You are an experienced resume editor. You only rephrase and reorder what the candidate already wrote.

- NEVER invent employers, titles, metrics, dates or skills
- Prefer concrete, active phrasing over adjectives
- Work missing job keywords in only where the resume already supports them`,
		User: `Rewrite the professional summary and up to five experience bullets of the resume below so it reads well for the target role.

Current keyword match score: %[5]d/100
Keywords already matched: %[3]s
Keywords missing from the resume: %[4]s

Return a short summary paragraph, the rewritten bullets, and one or two sentences of notes explaining what changed.

**Resume:**
-----
%[1]s
-----

**Job Description:**
-----
%[2]s
-----`,
	},
	config.OperationInterview: {
		System: `You are a hiring manager preparing an interview loop. You ask questions that probe real experience and expose gaps against the role.`,
		User: `Write at most six interview questions this candidate is likely to face for the role below. Give each question a short focus label such as "system design", "gap: kubernetes" or "behavioral".

Lean on the missing keywords to find gaps: %[4]s
Strengths to verify: %[3]s

**Resume:**
-----
%[1]s
-----

**Job Description:**
-----
%[2]s
-----`,
	},
	config.OperationCoverLetter: {
		System: `You are a career coach who writes concise, specific cover letters. You use only facts present in the candidate profile.`,
		User: `Write a cover letter of three to four short paragraphs for %[1]s applying as %[7]s at %[6]s. Address it to the hiring team at %[6]s and sign it with the candidate's name.

Candidate headline: %[2]s
Candidate summary: %[3]s
Top skills: %[4]s

**Job Description:**
-----
%[5]s
-----`,
	},
}

// resolvePrompts picks the configured prompt for operation, falling back to
// the default one field at a time.
func resolvePrompts(operation string, cfg *config.OperationAIConfig) Prompts {
	p := DefaultPrompts[operation]
	if cfg == nil {
		return p
	}
	if cfg.SystemPrompt != "" {
		p.System = cfg.SystemPrompt
	}
	if cfg.UserPrompt != "" {
		p.User = cfg.UserPrompt
	}
	return p
}

func rewritePrompt(template string, in types.RewriteInput) string {
	return render(template, []any{
		in.ResumeText,
		orNone(in.JobDescription),
		keywordList(in.Ats.MatchedKeywords),
		keywordList(in.Ats.MissingKeywords),
		in.Ats.Score,
	})
}

func interviewPrompt(template string, in types.InterviewInput) string {
	return render(template, []any{
		in.ResumeText,
		orNone(in.JobDescription),
		keywordList(in.Ats.MatchedKeywords),
		keywordList(in.Ats.MissingKeywords),
		in.Ats.Score,
	})
}

func coverLetterPrompt(template string, in types.CoverLetterInput) string {
	return render(template, []any{
		in.Resume.Name,
		in.Resume.Headline,
		in.Resume.Summary,
		keywordList(in.Resume.Skills),
		orNone(in.JobDescription),
		in.CompanyName,
		in.RoleTitle,
	})
}

// render fills template with positional args. A template without verbs is
// returned as is so fmt does not append the unused arguments.
func render(template string, args []any) string {
	if !strings.Contains(template, "%") {
		return template
	}
	return fmt.Sprintf(template, args...)
}

func keywordList(words []string) string {
	if len(words) == 0 {
		return "none"
	}
	return strings.Join(words, ", ")
}

func orNone(jd string) string {
	if strings.TrimSpace(jd) == "" {
		return noJobDescription
	}
	return jd
}
