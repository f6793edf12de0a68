package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsmatch/internal/types"
)

func TestComputeDashboardMetricsWithJobDescription(t *testing.T) {
	got := ComputeDashboardMetrics(DemoResumeText, DemoJobDescription)

	// 4 of 18 JD keywords matched, 14 missing, resume shorter than 700 chars.
	assert.Equal(t, 22, got.CoveragePct)
	assert.Equal(t, 3, got.WarningCount)
	assert.Equal(t, 53, got.AtsScore)
	assert.Equal(t, 95, got.Readability)
	assert.Equal(t, 14, got.MissingCount)
	assert.Equal(t, []string{"software", "engineer", "product", "teams"}, got.MatchedKeywords)
	assert.Equal(t, "design", got.MissingKeywords[0])
	assert.Equal(t, roleFitWithJD, got.RoleFitSummary)

	assert.Equal(t, []types.ChartPoint{
		{Keyword: "Design", Value: 26},
		{Keyword: "Software", Value: 96},
		{Keyword: "Engineer", Value: 96},
		{Keyword: "Google", Value: 26},
		{Keyword: "Responsibilities", Value: 26},
		{Keyword: "Scalable", Value: 26},
		{Keyword: "Web", Value: 26},
	}, got.ChartData)
}

func TestComputeDashboardMetricsWithoutJobDescription(t *testing.T) {
	got := ComputeDashboardMetrics(DemoResumeText, "")

	assert.Equal(t, 62, got.CoveragePct)
	assert.Equal(t, 2, got.WarningCount)
	assert.Equal(t, 70, got.AtsScore)
	assert.Equal(t, 95, got.Readability)
	assert.Equal(t, missingCountFallback, got.MissingCount)
	assert.Empty(t, got.MatchedKeywords)
	assert.Empty(t, got.MissingKeywords)
	assert.Equal(t, roleFitWithoutJD, got.RoleFitSummary)

	require.Len(t, got.ChartData, chartPoints)
	labels := make([]string, 0, len(got.ChartData))
	for _, p := range got.ChartData {
		assert.Equal(t, chartNeutral, p.Value)
		labels = append(labels, p.Keyword)
	}
	assert.Equal(t, []string{"Akash", "Built", "React", "Next.js", "Improved", "Mohanraj", "Email"}, labels)
}

func TestComputeDashboardMetricsEmptyInputs(t *testing.T) {
	got := ComputeDashboardMetrics("", "")

	assert.Equal(t, 62, got.CoveragePct)
	assert.Equal(t, 2, got.WarningCount)
	assert.Equal(t, 70, got.AtsScore)
	assert.Equal(t, 95, got.Readability)

	require.Len(t, got.ChartData, chartPoints)
	assert.Equal(t, types.ChartPoint{Keyword: "Keyword 1", Value: chartNeutral}, got.ChartData[0])
	assert.Equal(t, types.ChartPoint{Keyword: "Keyword 7", Value: chartNeutral}, got.ChartData[6])
}

func TestComputeDashboardMetricsLongResume(t *testing.T) {
	resume := strings.TrimSpace(strings.Repeat("word ", 1100))
	got := ComputeDashboardMetrics(resume, "")

	assert.Equal(t, 2, got.WarningCount)
	assert.Equal(t, 70, got.AtsScore)
	assert.Equal(t, 48, got.Readability)
}

func TestComputeDashboardMetricsLengthWarningBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		resume string
		want   int
	}{
		{"699 chars is short", strings.Repeat("a", 699), 2},
		{"700 chars", strings.Repeat("a", 700), 1},
		{"701 chars", strings.Repeat("a", 701), 1},
		{"4999 chars", strings.Repeat("a", 4999), 1},
		{"5000 chars", strings.Repeat("a", 5000), 1},
		{"5001 chars is long", strings.Repeat("a", 5001), 2},
		{"350 astral chars count as 700", strings.Repeat("\U0001F600", 350), 1},
		{"349 astral chars count as 698", strings.Repeat("\U0001F600", 349), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDashboardMetrics(tt.resume, "").WarningCount)
		})
	}
}

func TestReadabilityIgnoresByteOrderMark(t *testing.T) {
	assert.Equal(t, readability("Go. Run."), readability("\ufeffGo. \ufeffRun.\ufeff"))
}

func TestReadability(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty text clamps high", "", 95},
		{"thirty word sentence", strings.TrimSpace(strings.Repeat("lorem ", 30)) + ".", 49},
		{"very long sentence clamps low", strings.Repeat("lorem ", 200), 48},
		{"short sentences clamp high", "Go. Run. Ship.", 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readability(tt.text))
		})
	}
}

func TestComputeDashboardMetricsBounds(t *testing.T) {
	inputs := [][2]string{
		{DemoResumeText, DemoJobDescription},
		{DemoResumeText, ""},
		{"", DemoJobDescription},
		{DemoJobDescription, DemoJobDescription},
	}
	for _, in := range inputs {
		got := ComputeDashboardMetrics(in[0], in[1])
		assert.GreaterOrEqual(t, got.AtsScore, 38)
		assert.LessOrEqual(t, got.AtsScore, 96)
		assert.GreaterOrEqual(t, got.Readability, 48)
		assert.LessOrEqual(t, got.Readability, 95)
		assert.GreaterOrEqual(t, got.CoveragePct, 0)
		assert.LessOrEqual(t, got.CoveragePct, 100)
		assert.LessOrEqual(t, len(got.ChartData), chartPoints)
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"ai-assisted":      "Ai Assisted",
		"customer_facing":  "Customer Facing",
		"next.js":          "Next.js",
		"keyword-3":        "Keyword 3",
		"c++":              "C++",
		"already Upper-ok": "Already Upper Ok",
	}
	for in, want := range tests {
		assert.Equal(t, want, TitleCase(in), in)
	}
}

func TestAnalyzeCombinesComputations(t *testing.T) {
	report := Analyze(DemoResumeText, DemoJobDescription)

	assert.True(t, report.HasJD)
	assert.Equal(t, "Akash Mohanraj", report.Resume.Name)
	assert.Equal(t, 24, report.Ats.Score)
	assert.Equal(t, 53, report.Dashboard.AtsScore)
	assert.Len(t, report.ResumeKeywords, dashboardResumeKeywords)
	assert.Len(t, report.JobKeywords, dashboardJDKeywords)

	noJD := Analyze(DemoResumeText, "  ")
	assert.False(t, noJD.HasJD)
	assert.Equal(t, 12, noJD.Ats.Score)
}
