package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{
			name:  "frequency order with first-seen tie break",
			text:  "beta alpha beta alpha gamma",
			limit: 10,
			want:  []string{"beta", "alpha", "gamma"},
		},
		{
			name:  "stopwords and short words dropped",
			text:  "The skills and experience of Go golang golang",
			limit: 10,
			want:  []string{"golang"},
		},
		{
			name:  "limit truncates",
			text:  "one two three four five six",
			limit: 2,
			want:  []string{"one", "two"},
		},
		{
			name:  "zero limit",
			text:  "kubernetes docker",
			limit: 0,
			want:  []string{},
		},
		{
			name:  "empty text",
			text:  "",
			limit: 5,
			want:  []string{},
		},
		{
			name:  "punctuated tech tokens kept whole",
			text:  "C++ and C# with Node.js",
			limit: 5,
			want:  []string{"c++", "node.js"},
		},
		{
			name:  "demo resume",
			text:  DemoResumeText,
			limit: 10,
			want: []string{
				"akash", "built", "react", "next.js", "improved",
				"mohanraj", "email", "example.com", "headline", "software",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.text, tt.limit))
		})
	}
}

func TestExtractKeywordsKeepsTrailingDot(t *testing.T) {
	got := ExtractKeywords(DemoResumeText, dashboardResumeKeywords)
	assert.Len(t, got, dashboardResumeKeywords)
	assert.Equal(t, "quickly.", got[len(got)-1])
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "punctuation becomes separators",
			text: "C++ and C# developers, Go/Rust (Node.js)!",
			want: []string{"c++", "developers", "rust", "node.js"},
		},
		{
			name: "duplicates kept in order",
			text: "api API api",
			want: []string{"api", "api", "api"},
		},
		{
			name: "scoring stopwords differ from extraction stopwords",
			text: "our job about skills experience",
			want: []string{"skills", "experience"},
		},
		{
			name: "empty",
			text: "   ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestKeywordsProfiles(t *testing.T) {
	text := "Kafka kafka Kafka streaming streaming our platform"

	assert.Equal(t, []string{"kafka", "streaming", "our"}, Keywords(text, ProfileExtraction, 3))
	assert.Equal(t, []string{"kafka", "streaming", "platform"}, Keywords(text, ProfileScoring, 3))
	assert.Equal(t, []string{}, Keywords(text, ProfileScoring, 0))
}

func TestParseProfile(t *testing.T) {
	p, ok := ParseProfile("Scoring")
	assert.True(t, ok)
	assert.Equal(t, ProfileScoring, p)

	p, ok = ParseProfile("")
	assert.True(t, ok)
	assert.Equal(t, ProfileExtraction, p)

	_, ok = ParseProfile("bm25")
	assert.False(t, ok)
}

func BenchmarkExtractKeywords(b *testing.B) {
	for b.Loop() {
		ExtractKeywords(DemoResumeText, dashboardResumeKeywords)
	}
}
