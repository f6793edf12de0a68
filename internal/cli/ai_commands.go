package cli

import (
	"atsmatch/internal/ai"
	"atsmatch/internal/analysis"
	"atsmatch/internal/types"
)

// newAIServices builds the AI registry for a command run.
var newAIServices = ai.NewServices

func rewriteInput(contents []string) (types.RewriteInput, error) {
	pair, err := pairInput(contents)
	if err != nil {
		return types.RewriteInput{}, err
	}
	return types.RewriteInput{
		ResumeText:     pair.Resume,
		JobDescription: pair.JobDescription,
		Resume:         analysis.ParseResumeText(pair.Resume),
		Ats:            analysis.CalculateATSScore(pair.Resume, pair.JobDescription),
	}, nil
}

func interviewInput(contents []string) (types.InterviewInput, error) {
	in, err := rewriteInput(contents)
	if err != nil {
		return types.InterviewInput{}, err
	}
	return types.InterviewInput(in), nil
}
