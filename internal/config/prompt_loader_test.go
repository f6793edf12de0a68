package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePrompt(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create prompt file %s: %v", name, err)
	}
	return path
}

func TestLoadPromptsFromFiles(t *testing.T) {
	dir := t.TempDir()
	systemFile := writePrompt(t, dir, "system.rewrite.md", "  Rewrite the summary.\n")
	userFile := writePrompt(t, dir, "user.interview.md", "Resume: {{resume}}")

	cfg := &Config{
		AI: AIConfig{
			Rewrite:     OperationAIConfig{SystemPromptFile: systemFile, SystemPrompt: "inline"},
			Interview:   OperationAIConfig{UserPromptFile: userFile},
			CoverLetter: OperationAIConfig{SystemPrompt: "kept"},
		},
	}

	if err := cfg.loadPromptsFromFiles(); err != nil {
		t.Fatalf("loadPromptsFromFiles() error = %v", err)
	}

	if cfg.AI.Rewrite.SystemPrompt != "Rewrite the summary." {
		t.Errorf("rewrite system prompt = %q, want trimmed file content", cfg.AI.Rewrite.SystemPrompt)
	}
	if cfg.AI.Interview.UserPrompt != "Resume: {{resume}}" {
		t.Errorf("interview user prompt = %q", cfg.AI.Interview.UserPrompt)
	}
	if cfg.AI.CoverLetter.SystemPrompt != "kept" {
		t.Errorf("cover letter system prompt = %q, want inline value untouched", cfg.AI.CoverLetter.SystemPrompt)
	}
	if cfg.AI.Rewrite.SystemPromptFile != systemFile {
		t.Error("Expected prompt file path to be preserved")
	}
}

func TestLoadPromptsFromFilesErrors(t *testing.T) {
	dir := t.TempDir()
	empty := writePrompt(t, dir, "empty.md", "  \n\t")

	tests := []struct {
		name    string
		opCfg   OperationAIConfig
		wantErr string
	}{
		{
			name:    "missing file",
			opCfg:   OperationAIConfig{SystemPromptFile: filepath.Join(dir, "nope.md")},
			wantErr: "system coverLetter prompt file not found",
		},
		{
			name:    "empty file",
			opCfg:   OperationAIConfig{UserPromptFile: empty},
			wantErr: "is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AI: AIConfig{CoverLetter: tt.opCfg}}
			err := cfg.loadPromptsFromFiles()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePromptFiles(t *testing.T) {
	dir := t.TempDir()
	existing := writePrompt(t, dir, "ok.md", "prompt")

	cfg := &Config{AI: AIConfig{
		Rewrite:   OperationAIConfig{SystemPromptFile: existing},
		Interview: OperationAIConfig{UserPromptFile: filepath.Join(dir, "missing-a.md")},
		CoverLetter: OperationAIConfig{
			SystemPromptFile: filepath.Join(dir, "missing-b.md"),
		},
	}}

	err := cfg.validatePromptFiles()
	if err == nil {
		t.Fatal("expected validation error for missing files")
	}
	for _, want := range []string{"user interview prompt file not found", "system coverLetter prompt file not found"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}

	cfg.AI.Interview.UserPromptFile = ""
	cfg.AI.CoverLetter.SystemPromptFile = ""
	if err := cfg.validatePromptFiles(); err != nil {
		t.Errorf("validatePromptFiles() unexpected error = %v", err)
	}
}
