package formatters

import (
	"fmt"
	"strings"
	"time"

	"atsmatch/internal/types"
)

// style is how one output format spells headings, fields and lists.
type style struct {
	format  string
	title   func(string) string
	section func(string) string
	field   func(label, value string) string
	bullet  string
}

var textStyle = style{
	format:  "text",
	title:   func(s string) string { return "=== " + strings.ToUpper(s) + " ===" },
	section: func(s string) string { return strings.ToUpper(s) + ":" },
	field:   func(l, v string) string { return l + ": " + v },
	bullet:  "  - ",
}

var markdownStyle = style{
	format:  "markdown",
	title:   func(s string) string { return "# " + s },
	section: func(s string) string { return "## " + s },
	field:   func(l, v string) string { return "**" + l + ":** " + v },
	bullet:  "- ",
}

// document accumulates one rendered result.
type document struct {
	style style
	sb    strings.Builder
}

func (d *document) line(s string) {
	d.sb.WriteString(s)
	d.sb.WriteByte('\n')
}

func (d *document) blank() { d.sb.WriteByte('\n') }

func (d *document) title(s string) {
	d.line(d.style.title(s))
	d.blank()
}

func (d *document) section(s string) {
	d.blank()
	d.line(d.style.section(s))
}

func (d *document) field(label string, value any) {
	d.line(d.style.field(label, fmt.Sprint(value)))
}

// list writes items, or "(none)" when there are none.
func (d *document) list(items []string) {
	if len(items) == 0 {
		d.line(d.style.bullet + "(none)")
		return
	}
	for _, item := range items {
		d.line(d.style.bullet + item)
	}
}

func (d *document) para(s string) {
	for l := range strings.SplitSeq(strings.TrimSpace(s), "\n") {
		d.line(l)
	}
}

func (d *document) String() string { return d.sb.String() }

func registerDocuments(fr *FormatterRegistry) {
	register(fr, renderKeywords)
	register(fr, renderParsedResume)
	register(fr, renderAtsScore)
	register(fr, renderDashboard)
	register(fr, renderReport)
	register(fr, renderCoverLetter)
	register(fr, renderRewrite)
	register(fr, renderInterview)
	register(fr, renderSession)
	register(fr, renderExtracted)
}

func renderKeywords(d *document, k types.KeywordsResult) {
	d.title("Keywords")
	d.field("Profile", k.Profile)
	d.field("Limit", k.Limit)
	d.section("Keywords")
	d.list(k.Keywords)
}

func renderParsedResume(d *document, r types.ParsedResume) {
	d.title("Parsed Resume")
	writeResume(d, r)
}

func writeResume(d *document, r types.ParsedResume) {
	d.field("Name", r.Name)
	if r.Email != "" {
		d.field("Email", r.Email)
	}
	d.field("Headline", r.Headline)
	d.section("Summary")
	d.para(r.Summary)
	d.section("Skills")
	d.list(r.Skills)
	d.section("Experience")
	d.list(r.Experience)
	d.section("Education")
	d.list(r.Education)
}

func renderAtsScore(d *document, a types.AtsScoreResult) {
	d.title("ATS Score")
	writeAts(d, a)
}

func writeAts(d *document, a types.AtsScoreResult) {
	d.field("Score", fmt.Sprintf("%d/100", a.Score))
	d.section("Matched Keywords")
	d.list(a.MatchedKeywords)
	d.section("Missing Keywords")
	d.list(a.MissingKeywords)
	d.section("Recommendations")
	d.list(a.Recommendations)
}

func renderDashboard(d *document, m types.DashboardMetrics) {
	d.title("Dashboard")
	writeDashboard(d, m)
}

func writeDashboard(d *document, m types.DashboardMetrics) {
	d.field("ATS Score", m.AtsScore)
	d.field("Keyword Coverage", fmt.Sprintf("%d%%", m.CoveragePct))
	d.field("Missing Keywords", m.MissingCount)
	d.field("Warnings", m.WarningCount)
	d.field("Readability", m.Readability)
	d.field("Role Fit", m.RoleFitSummary)
	d.section("Keyword Chart")
	chart := make([]string, 0, len(m.ChartData))
	for _, p := range m.ChartData {
		chart = append(chart, fmt.Sprintf("%s %s %d", p.Keyword, bar(p.Value), p.Value))
	}
	d.list(chart)
}

// bar draws value (0-100) as a ten-cell gauge.
func bar(value int) string {
	filled := max(0, min(10, (value+5)/10))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 10-filled) + "]"
}

func renderReport(d *document, r types.AnalysisReport) {
	d.title("Analysis Report")
	writeResume(d, r.Resume)
	d.section("Resume Keywords")
	d.list(r.ResumeKeywords)
	if r.HasJD {
		d.section("Job Keywords")
		d.list(r.JobKeywords)
		d.section("ATS Score")
		writeAts(d, r.Ats)
	}
	d.section("Dashboard")
	writeDashboard(d, r.Dashboard)
}

func renderCoverLetter(d *document, c types.CoverLetterOutput) {
	d.title("Cover Letter")
	d.field("Source", c.Source)
	d.blank()
	d.para(c.CoverLetterText)
}

func renderRewrite(d *document, r types.RewriteOutput) {
	d.title("Resume Rewrite")
	d.section("Summary")
	d.para(r.Summary)
	d.section("Bullets")
	d.list(r.Bullets)
	if r.Notes != "" {
		d.section("Notes")
		d.para(r.Notes)
	}
}

func renderInterview(d *document, o types.InterviewOutput) {
	d.title("Interview Preparation")
	if len(o.Questions) == 0 {
		d.line("No questions generated.")
		return
	}
	for i, q := range o.Questions {
		d.line(fmt.Sprintf("%d. %s", i+1, q.Question))
		if q.Focus != "" {
			d.line(d.style.bullet + "Focus: " + q.Focus)
		}
	}
}

func renderSession(d *document, s types.AnalysisSession) {
	d.title("Session")
	d.field("Source", s.Source)
	if !s.UpdatedAt.IsZero() {
		d.field("Updated", s.UpdatedAt.Format(time.RFC3339))
	}
	d.section("Resume")
	d.para(s.ResumeText)
	d.section("Job Description")
	if s.JobDescriptionText == "" {
		d.line("(none)")
	} else {
		d.para(s.JobDescriptionText)
	}
}

func renderExtracted(d *document, e types.ExtractedDocument) {
	d.title("Extracted Document")
	d.field("Name", e.Name)
	d.field("Content Type", e.ContentType)
	if e.Pages > 0 {
		d.field("Pages", e.Pages)
	}
	d.blank()
	d.para(e.Text)
}
