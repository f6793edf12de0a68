package types

import "time"

// ParsedResume is the structured view of free-form resume text.
type ParsedResume struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Headline   string   `json:"headline"`
	Summary    string   `json:"summary"`
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
}

// AtsScoreResult is the keyword-overlap score of a resume against a job description.
type AtsScoreResult struct {
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	Recommendations []string `json:"recommendations"`
}

// ChartPoint is one bar of the keyword coverage chart.
type ChartPoint struct {
	Keyword string `json:"keyword"`
	Value   int    `json:"value"`
}

// DashboardMetrics is the heuristic dashboard summary.
type DashboardMetrics struct {
	AtsScore        int          `json:"atsScore"`
	CoveragePct     int          `json:"coveragePct"`
	MissingCount    int          `json:"missingCount"`
	WarningCount    int          `json:"warningCount"`
	Readability     int          `json:"readability"`
	MatchedKeywords []string     `json:"matchedKeywords"`
	MissingKeywords []string     `json:"missingKeywords"`
	ChartData       []ChartPoint `json:"chartData"`
	RoleFitSummary  string       `json:"roleFitSummary"`
}

// KeywordsResult lists the top keywords of one text.
type KeywordsResult struct {
	Profile  string   `json:"profile"`
	Limit    int      `json:"limit"`
	Keywords []string `json:"keywords"`
}

// AnalysisReport bundles every deterministic computation for one resume/JD pair.
type AnalysisReport struct {
	Resume         ParsedResume     `json:"resume"`
	ResumeKeywords []string         `json:"resumeKeywords"`
	JobKeywords    []string         `json:"jobKeywords"`
	Ats            AtsScoreResult   `json:"ats"`
	Dashboard      DashboardMetrics `json:"dashboard"`
	HasJD          bool             `json:"hasJobDescription"`
}

// CoverLetterInput carries everything needed to draft a cover letter.
type CoverLetterInput struct {
	Resume         ParsedResume `json:"resume"`
	JobDescription string       `json:"jobDescription"`
	CompanyName    string       `json:"companyName"`
	RoleTitle      string       `json:"roleTitle"`
}

// CoverLetterOutput is a drafted cover letter.
type CoverLetterOutput struct {
	CoverLetterText string `json:"coverLetterText"`
	Source          string `json:"source"` // "template" or "ai"
}

// RewriteInput is the context for an AI resume rewrite.
type RewriteInput struct {
	ResumeText     string         `json:"resumeText"`
	JobDescription string         `json:"jobDescription"`
	Resume         ParsedResume   `json:"resume"`
	Ats            AtsScoreResult `json:"ats"`
}

// RewriteOutput is the AI rewrite suggestion.
type RewriteOutput struct {
	Summary string   `json:"summary"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes"`
}

// InterviewInput is the context for AI interview preparation.
type InterviewInput struct {
	ResumeText     string         `json:"resumeText"`
	JobDescription string         `json:"jobDescription"`
	Resume         ParsedResume   `json:"resume"`
	Ats            AtsScoreResult `json:"ats"`
}

// InterviewQuestion is one likely interview question.
type InterviewQuestion struct {
	Question string `json:"question"`
	Focus    string `json:"focus"`
}

// InterviewOutput holds up to six interview questions.
type InterviewOutput struct {
	Questions []InterviewQuestion `json:"questions"`
}

// SessionSource records how a session's texts were provided.
type SessionSource string

const (
	SessionSourceUpload SessionSource = "upload"
	SessionSourceDemo   SessionSource = "demo"
	SessionSourceManual SessionSource = "manual"
)

// Valid reports whether s is one of the known sources.
func (s SessionSource) Valid() bool {
	switch s {
	case SessionSourceUpload, SessionSourceDemo, SessionSourceManual:
		return true
	}
	return false
}

// AnalysisSession is the persisted resume/JD pair.
type AnalysisSession struct {
	ResumeText         string        `json:"resumeText"`
	JobDescriptionText string        `json:"jobDescriptionText,omitempty"`
	Source             SessionSource `json:"source"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// ExtractedDocument is the plain text pulled out of an uploaded document.
type ExtractedDocument struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Text        string `json:"text"`
	Pages       int    `json:"pages,omitempty"`
}
