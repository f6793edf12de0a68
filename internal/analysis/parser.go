package analysis

import (
	"regexp"
	"strings"

	"atsmatch/internal/types"
)

const (
	defaultName     = "Candidate"
	defaultHeadline = "Professional"
	defaultSummary  = "Motivated professional seeking impactful opportunities."

	nameScanLines      = 8
	summaryLines       = 3
	summaryFallbackLns = 5
	summaryFallbackLen = 380
	maxSkills          = 20
	maxExperience      = 8
	maxEducation       = 5
)

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t]+`)
	emailRe           = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	skillSeparatorRe  = regexp.MustCompile(`[,|/]`)

	// Matched against asciiLower(line).
	nameRejectRe    = regexp.MustCompile(`\d|@|https?://`)
	headlineRe      = regexp.MustCompile(`engineer|developer|designer|manager|analyst|architect|lead`)
	sectionHeaderRe = regexp.MustCompile(`^(experience|education|projects|skills|certifications|summary|profile)\b`)
)

var (
	summaryKeys    = []string{"summary", "profile", "about"}
	skillsKeys     = []string{"skills", "technical skills", "core skills"}
	experienceKeys = []string{"experience", "work experience"}
	educationKeys  = []string{"education"}
)

// ParseResumeText pulls a best-effort structure out of free-form resume text.
// It never fails; every field has a fallback.
func ParseResumeText(raw string) types.ParsedResume {
	text := normalize(raw)
	lines := linesOf(raw)

	summary := strings.Join(headN(collectSection(lines, summaryKeys), summaryLines), " ")
	if summary == "" {
		summary = truncateText(strings.Join(headN(lines, summaryFallbackLns), " "), summaryFallbackLen)
	}
	if summary == "" {
		summary = defaultSummary
	}

	return types.ParsedResume{
		Name:       guessName(lines),
		Email:      emailRe.FindString(text),
		Headline:   guessHeadline(lines),
		Summary:    summary,
		Skills:     splitSkills(collectSection(lines, skillsKeys)),
		Experience: headN(collectSection(lines, experienceKeys), maxExperience),
		Education:  headN(collectSection(lines, educationKeys), maxEducation),
	}
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return trimSpace(horizontalSpaceRe.ReplaceAllString(s, " "))
}

func linesOf(raw string) []string {
	var lines []string
	for _, line := range strings.Split(normalize(raw), "\n") {
		if line = trimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// guessName picks the first short, person-like line near the top.
func guessName(lines []string) string {
	for _, line := range headN(lines, nameScanLines) {
		n := textLen(line)
		if n < 3 || n > 60 {
			continue
		}
		if nameRejectRe.MatchString(asciiLower(line)) {
			continue
		}
		if len(strings.Split(line, " ")) > 4 {
			continue
		}
		// all-caps lines are usually section headers
		if line == strings.ToUpper(line) {
			continue
		}
		return line
	}
	return defaultName
}

func guessHeadline(lines []string) string {
	for _, line := range lines {
		if headlineRe.MatchString(asciiLower(line)) {
			return line
		}
	}
	return defaultHeadline
}

// collectSection returns the lines after the first line mentioning any key,
// up to the next recognised section header. The matching line itself is
// treated as the header and never included.
func collectSection(lines []string, keys []string) []string {
	start := -1
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, key := range keys {
			if strings.Contains(lower, key) {
				start = i
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return nil
	}

	var rows []string
	for _, line := range lines[start+1:] {
		if sectionHeaderRe.MatchString(asciiLower(line)) {
			break
		}
		rows = append(rows, line)
	}
	return rows
}

func splitSkills(rows []string) []string {
	skills := []string{}
	if len(rows) == 0 {
		return skills
	}
	for _, part := range skillSeparatorRe.Split(strings.Join(rows, " | "), -1) {
		part = trimSpace(part)
		if textLen(part) <= 1 {
			continue
		}
		skills = append(skills, part)
		if len(skills) == maxSkills {
			break
		}
	}
	return skills
}

// headN returns at most n leading items, never nil.
func headN(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
