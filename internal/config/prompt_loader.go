package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles replaces SystemPrompt/UserPrompt with the contents of
// SystemPromptFile/UserPromptFile for every operation that names one.
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	loaded := 0
	for _, op := range Operations {
		slot, err := c.operationSlot(op)
		if err != nil {
			return err
		}
		n, err := loadOperationPrompts(op, slot)
		if err != nil {
			return err
		}
		loaded += n
	}

	if loaded == 0 {
		log.Println("[CONFIG] No custom prompt files loaded - using config or built-in prompts")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded from files: %d", loaded)
	}
	return nil
}

func loadOperationPrompts(operation string, opCfg *OperationAIConfig) (int, error) {
	loaded := 0
	if opCfg.SystemPromptFile != "" {
		content, err := loadPromptFromFile(opCfg.SystemPromptFile, "system", operation)
		if err != nil {
			return loaded, err
		}
		opCfg.SystemPrompt = content
		loaded++
	}
	if opCfg.UserPromptFile != "" {
		content, err := loadPromptFromFile(opCfg.UserPromptFile, "user", operation)
		if err != nil {
			return loaded, err
		}
		opCfg.UserPrompt = content
		loaded++
	}
	return loaded, nil
}

func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmed))
	return trimmed, nil
}

// validatePromptFiles reports every configured prompt file that does not exist.
func (c *Config) validatePromptFiles() error {
	var problems []string
	check := func(path, promptType, operation string) {
		if path == "" {
			return
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, path))
			return
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	for _, op := range Operations {
		slot, _ := c.operationSlot(op)
		check(slot.SystemPromptFile, "system", op)
		check(slot.UserPromptFile, "user", op)
	}

	if len(problems) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
