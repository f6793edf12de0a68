package analysis

import (
	"atsmatch/internal/types"
)

// Analyze runs every deterministic computation over one resume/JD pair.
// The ATS score against an empty job description is still computed and
// comes out at the floor score.
func Analyze(resumeText, jobDescriptionText string) types.AnalysisReport {
	return types.AnalysisReport{
		Resume:         ParseResumeText(resumeText),
		ResumeKeywords: ExtractKeywords(resumeText, dashboardResumeKeywords),
		JobKeywords:    ExtractKeywords(jobDescriptionText, dashboardJDKeywords),
		Ats:            CalculateATSScore(resumeText, jobDescriptionText),
		Dashboard:      ComputeDashboardMetrics(resumeText, jobDescriptionText),
		HasJD:          trimSpace(jobDescriptionText) != "",
	}
}
