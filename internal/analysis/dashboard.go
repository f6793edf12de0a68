package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"atsmatch/internal/types"
)

const (
	dashboardResumeKeywords = 28
	dashboardJDKeywords     = 18
	chartPoints             = 7

	coverageWithoutJD    = 62
	missingCountFallback = 5

	chartNeutral = 66
	chartHit     = 96
	chartMiss    = 26

	shortResumeChars = 700
	longResumeChars  = 5000

	roleFitWithJD    = "Good baseline alignment with clear opportunities on missing role-specific keywords."
	roleFitWithoutJD = "Resume baseline analysis is ready. Add a job description to get exact role-fit insights."
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]`)
	titleSplitRe    = regexp.MustCompile(`[\s_-]+`)
)

// ComputeDashboardMetrics derives the dashboard's heuristic KPIs. The job
// description is optional; pass "" when there is none.
func ComputeDashboardMetrics(resumeText, jobDescriptionText string) types.DashboardMetrics {
	resumeKeywords := ExtractKeywords(resumeText, dashboardResumeKeywords)
	jdKeywords := ExtractKeywords(jobDescriptionText, dashboardJDKeywords)
	resumeSet := newWordSet(resumeKeywords...)

	matched := []string{}
	missing := []string{}
	for _, k := range jdKeywords {
		if resumeSet.has(k) {
			matched = append(matched, k)
		} else {
			missing = append(missing, k)
		}
	}

	coverage := coverageWithoutJD
	if len(jdKeywords) > 0 {
		coverage = int(roundHalfUp(float64(len(matched)) / float64(len(jdKeywords)) * 100))
	}

	resumeLen := textLen(resumeText)
	warnings := 1
	if len(missing) > 8 {
		warnings = 2
	}
	if resumeLen < shortResumeChars {
		warnings++
	}
	if resumeLen > longResumeChars {
		warnings++
	}

	atsScore := int(roundHalfUp(clamp(54+float64(coverage)*0.36-float64(warnings)*3, 38, 96)))

	missingCount := len(missing)
	if missingCount == 0 {
		missingCount = missingCountFallback
	}

	roleFit := roleFitWithoutJD
	if len(jdKeywords) > 0 {
		roleFit = roleFitWithJD
	}

	return types.DashboardMetrics{
		AtsScore:        atsScore,
		CoveragePct:     coverage,
		MissingCount:    missingCount,
		WarningCount:    warnings,
		Readability:     readability(resumeText),
		MatchedKeywords: matched,
		MissingKeywords: missing,
		ChartData:       chartData(resumeKeywords, jdKeywords, resumeSet),
		RoleFitSummary:  roleFit,
	}
}

// readability maps average words per sentence onto [48, 95].
func readability(text string) int {
	sentences := 0
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if trimSpace(s) != "" {
			sentences++
		}
	}
	sentences = max(sentences, 1)
	words := max(len(fields(text)), 1)

	avg := float64(words) / float64(sentences)
	return int(roundHalfUp(clamp(100-(avg-14)*3.2, 48, 95)))
}

func chartData(resumeKeywords, jdKeywords []string, resumeSet wordSet) []types.ChartPoint {
	source := jdKeywords
	if len(source) == 0 {
		source = resumeKeywords
	}
	source = headN(source, chartPoints)
	if len(source) == 0 {
		for i := 1; i <= chartPoints; i++ {
			source = append(source, fmt.Sprintf("keyword-%d", i))
		}
	}

	points := make([]types.ChartPoint, 0, len(source))
	for _, k := range source {
		value := chartNeutral
		if len(jdKeywords) > 0 {
			value = chartMiss
			if resumeSet.has(k) {
				value = chartHit
			}
		}
		points = append(points, types.ChartPoint{Keyword: TitleCase(k), Value: value})
	}
	return points
}

// TitleCase splits on whitespace, underscores and hyphens and upper-cases
// the first letter of each part: "ai-assisted" becomes "Ai Assisted".
func TitleCase(s string) string {
	parts := titleSplitRe.Split(s, -1)
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		if size == 0 {
			continue
		}
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}
