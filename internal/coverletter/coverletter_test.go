package coverletter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsmatch/internal/analysis"
	"atsmatch/internal/types"
)

func TestGenerate(t *testing.T) {
	out := Generate(types.CoverLetterInput{
		Resume: types.ParsedResume{
			Name:     "Jane Doe",
			Headline: "Senior Backend Engineer",
			Summary:  "Backend engineer with 8 years building APIs.",
			Skills:   []string{"Go", "Kubernetes", "Docker", "PostgreSQL", "gRPC"},
		},
		JobDescription: "Platform Engineer\nOwn the ingestion pipeline end to end\n",
		CompanyName:    "Acme",
		RoleTitle:      "Platform Engineer",
	})

	want := strings.Join([]string{
		"Dear Hiring Team at Acme,",
		"",
		"I am excited to apply for the Platform Engineer position. As a Senior Backend Engineer, I bring hands-on experience delivering user-focused solutions with strong execution discipline.",
		"",
		"Backend engineer with 8 years building APIs.",
		"",
		"My core strengths include Go, Kubernetes, Docker, PostgreSQL. I am particularly aligned with your focus on Own the ingestion pipeline end to end.",
		"",
		"I would value the opportunity to contribute quickly, collaborate across product and engineering, and help your team ship meaningful outcomes.",
		"",
		"Thank you for your time and consideration.",
		"",
		"Sincerely,",
		"Jane Doe",
	}, "\n")

	assert.Equal(t, want, out.CoverLetterText)
	assert.Equal(t, SourceTemplate, out.Source)
}

func TestGenerateFallbacks(t *testing.T) {
	out := Generate(types.CoverLetterInput{
		Resume:         types.ParsedResume{Name: "Candidate", Headline: "Professional"},
		JobDescription: "short\n   tiny line   ",
		CompanyName:    "Globex",
		RoleTitle:      "Analyst",
	})

	assert.Contains(t, out.CoverLetterText, "My core strengths include full-stack development.")
	assert.Contains(t, out.CoverLetterText, "your focus on driving product impact.")
}

func TestFocusLineTrims(t *testing.T) {
	assert.Equal(t, "- Build scalable web experiences and internal tools",
		FocusLine("Responsibilities:\n   - Build scalable web experiences and internal tools   \n"))
}

func TestGenerateFromDemoPair(t *testing.T) {
	resume := analysis.ParseResumeText(analysis.DemoResumeText)
	out := Generate(types.CoverLetterInput{
		Resume:         resume,
		JobDescription: analysis.DemoJobDescription,
		CompanyName:    "Google",
		RoleTitle:      "Software Engineer",
	})

	lines := strings.Split(out.CoverLetterText, "\n")
	require.Len(t, lines, 14)
	assert.Equal(t, "Akash Mohanraj", lines[13])
	assert.Equal(t, resume.Summary, lines[4])
	// "Software Engineer, Google" is the first line longer than 20 characters.
	assert.Equal(t, "My core strengths include full-stack development. I am particularly aligned with your focus on Software Engineer, Google.", lines[6])
}
