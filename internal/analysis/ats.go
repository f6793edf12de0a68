package analysis

import (
	"fmt"
	"math"
	"strings"

	"atsmatch/internal/types"
)

const (
	atsTopTokens       = 45
	atsMaxMatched      = 14
	atsMaxMissing      = 12
	atsMissingInAdvice = 5
	atsMinScore        = 12
	atsMaxScore        = 98
)

var baseRecommendations = []string{
	"Mirror critical job-description keywords in your summary and experience bullets.",
	"Add measurable impact metrics (%, $, time saved) for each role.",
	"Move top 6 required skills near the top of your resume.",
}

// CalculateATSScore scores a resume by the share of the job description's
// leading distinct tokens it also contains. The score is clamped to
// [12, 98] so that neither an empty nor a perfect overlap reads as absolute.
func CalculateATSScore(resumeText, jobDescriptionText string) types.AtsScoreResult {
	resumeTokens := newWordSet(unique(Tokenize(resumeText))...)
	jdTop := unique(Tokenize(jobDescriptionText))
	if len(jdTop) > atsTopTokens {
		jdTop = jdTop[:atsTopTokens]
	}

	matched := []string{}
	missing := []string{}
	for _, token := range jdTop {
		if resumeTokens.has(token) {
			matched = append(matched, token)
		} else {
			missing = append(missing, token)
		}
	}

	var ratio float64
	if len(jdTop) > 0 {
		ratio = float64(len(matched)) / float64(len(jdTop))
	}
	score := int(clamp(roundHalfUp(ratio*100), atsMinScore, atsMaxScore))

	missing = headN(missing, atsMaxMissing)

	recommendations := make([]string, 0, len(baseRecommendations)+1)
	if len(missing) > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Address missing keywords: %s.", strings.Join(headN(missing, atsMissingInAdvice), ", ")))
	}
	recommendations = append(recommendations, baseRecommendations...)

	return types.AtsScoreResult{
		Score:           score,
		MatchedKeywords: headN(matched, atsMaxMatched),
		MissingKeywords: missing,
		Recommendations: recommendations,
	}
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func clamp(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}
