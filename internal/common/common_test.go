package common

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsmatch/internal/ai"
	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{MaxFileSize: 1 << 20},
		Extraction: config.ExtractionConfig{
			AllowedTypes: []string{"text/plain", "application/pdf"},
			MaxBytes:     1 << 20,
		},
	}
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newTestRunner(stdout *bytes.Buffer) (*Runner, *FileProcessor) {
	logger := errors.NewNopLogger()
	fp := NewFileProcessor(testConfig(), nil, logger)
	return &Runner{Output: NewOutputHandler(fp, stdout, logger), Logger: logger}, fp
}

func TestReadDocumentsLocalText(t *testing.T) {
	resume := writeFixture(t, "resume.md", "  Ana Lopez\nGo engineer\n\n")
	jd := writeFixture(t, "jd.txt", "Backend role")
	fp := NewFileProcessor(testConfig(), nil, errors.NewNopLogger())

	got, err := fp.ReadDocuments(context.Background(), resume, jd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana Lopez\nGo engineer", "Backend role"}, got)
}

func TestReadDocumentMissingFile(t *testing.T) {
	fp := NewFileProcessor(testConfig(), nil, errors.NewNopLogger())

	_, err := fp.ReadDocument(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestReadDocumentRejectsDisallowedType(t *testing.T) {
	cfg := testConfig()
	cfg.Extraction.AllowedTypes = []string{"application/pdf"}
	fp := NewFileProcessor(cfg, nil, errors.NewNopLogger())

	_, err := fp.ReadDocument(context.Background(), writeFixture(t, "resume.txt", "hello"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedFileType))
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	fp := NewFileProcessor(testConfig(), nil, errors.NewNopLogger())
	path := filepath.Join(t.TempDir(), "out", "nested", "report.json")

	require.NoError(t, fp.WriteFile(path, "{}"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestRunCommandWritesFormattedResult(t *testing.T) {
	var stdout bytes.Buffer
	runner, fp := newTestRunner(&stdout)
	resume := writeFixture(t, "resume.txt", "go kubernetes go")

	var logged bool
	err := RunCommand(context.Background(), runner,
		CommandConfig{OutputFormat: "text"},
		FilesLoader(fp, resume),
		func(contents []string) (string, error) { return contents[0], nil },
		func(_ context.Context, text string) (types.KeywordsResult, error) {
			return types.KeywordsResult{Profile: "extraction", Limit: 2, Keywords: strings.Fields(text)[:2]}, nil
		},
		func(string, CommandConfig) { logged = true },
	)
	require.NoError(t, err)
	assert.True(t, logged)
	assert.Contains(t, stdout.String(), "=== KEYWORDS ===")
	assert.Contains(t, stdout.String(), "  - kubernetes\n")
}

func TestRunCommandToFile(t *testing.T) {
	var stdout bytes.Buffer
	runner, _ := newTestRunner(&stdout)
	out := filepath.Join(t.TempDir(), "ats.json")

	err := RunCommand(context.Background(), runner,
		CommandConfig{OutputFormat: "json", OutputFile: out},
		func(context.Context) ([]string, error) { return []string{"a", "b"}, nil },
		func(contents []string) ([]string, error) { return contents, nil },
		func(context.Context, []string) (types.AtsScoreResult, error) {
			return types.AtsScoreResult{Score: 24}, nil
		},
		nil,
	)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"score": 24`)
}

func TestRunCommandStopsOnLoadError(t *testing.T) {
	var stdout bytes.Buffer
	runner, _ := newTestRunner(&stdout)
	loadErr := stderrors.New("boom")

	called := false
	err := RunCommand(context.Background(), runner, CommandConfig{OutputFormat: "json"},
		func(context.Context) ([]string, error) { return nil, loadErr },
		func([]string) (int, error) { return 0, nil },
		func(context.Context, int) (int, error) { called = true; return 0, nil },
		nil,
	)
	require.ErrorIs(t, err, loadErr)
	assert.False(t, called)
}

func TestRunAICommand(t *testing.T) {
	var stdout bytes.Buffer
	runner, _ := newTestRunner(&stdout)

	err := RunAICommand(context.Background(), runner, config.OperationRewrite,
		CommandConfig{OutputFormat: "markdown"},
		func(context.Context) ([]string, error) { return []string{"resume", "jd"}, nil },
		func(contents []string) (types.RewriteInput, error) {
			return types.RewriteInput{ResumeText: contents[0], JobDescription: contents[1]}, nil
		},
		func(_ context.Context, in types.RewriteInput) (types.RewriteOutput, *ai.TokenUsage, error) {
			return types.RewriteOutput{Summary: "Rewritten " + in.ResumeText}, &ai.TokenUsage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}, nil
		},
		nil,
	)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "# Resume Rewrite")
	assert.Contains(t, stdout.String(), "Rewritten resume")
}

func TestRunAICommandReturnsProviderError(t *testing.T) {
	var stdout bytes.Buffer
	runner, _ := newTestRunner(&stdout)
	aiErr := errors.NewAIError(errors.ErrCodeAIServiceFailed, "down", nil)

	err := RunAICommand(context.Background(), runner, config.OperationInterview,
		CommandConfig{OutputFormat: "json"},
		func(context.Context) ([]string, error) { return []string{"r"}, nil },
		func([]string) (types.InterviewInput, error) { return types.InterviewInput{}, nil },
		func(context.Context, types.InterviewInput) (types.InterviewOutput, *ai.TokenUsage, error) {
			return types.InterviewOutput{}, nil, aiErr
		},
		nil,
	)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAIServiceFailed))
	assert.Empty(t, stdout.String())
}
