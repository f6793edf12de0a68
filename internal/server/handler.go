package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"atsmatch/internal/analysis"
	"atsmatch/internal/config"
	"atsmatch/internal/coverletter"
	atsErrors "atsmatch/internal/errors"
	"atsmatch/internal/observability"
	"atsmatch/internal/session"
	"atsmatch/internal/types"
)

const tracerName = "atsmatch.api"

// jsonEndpoint decodes and validates a Req body, runs fn inside an
// api.<name> span and writes its result as JSON.
func jsonEndpoint[Req any](s *Server, name string, fn func(ctx context.Context, w http.ResponseWriter, req *Req) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api."+name)
		defer span.End()
		span.SetAttributes(attribute.String("request.id", requestIDFromContext(ctx)))

		var req Req
		if err := s.decodeRequest(r, &req); err != nil {
			failSpan(span, err)
			s.writeAppError(w, r, err)
			return
		}

		result, err := fn(ctx, w, &req)
		if err != nil {
			failSpan(span, err)
			s.writeAppError(w, r, err)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))
		s.writeJSON(w, http.StatusOK, result)
	}
}

func failSpan(span trace.Span, err error) {
	errType := "internal"
	if appErr, ok := atsErrors.AsAppError(err); ok {
		errType = string(appErr.Type)
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", errType))
	span.SetStatus(codes.Error, err.Error())
}

// resolveDocuments returns the request texts, or the saved session's
// texts when FromSession is set.
func (s *Server) resolveDocuments(ctx context.Context, req DocumentsRequest) (string, string, error) {
	if !req.FromSession {
		return req.ResumeText, req.JobDescription, nil
	}

	sess, err := s.Sessions.Load(ctx)
	if stderrors.Is(err, session.ErrNotFound) {
		return "", "", session.NotFoundError()
	}
	if err != nil {
		return "", "", err
	}
	return sess.ResumeText, sess.JobDescriptionText, nil
}

func documentSpanAttrs(ctx context.Context, resume, jd string) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("request.resume_length", len(resume)),
		attribute.Int("request.job_length", len(jd)),
	)
}

func (s *Server) keywordsHandler() http.HandlerFunc {
	return jsonEndpoint(s, "keywords", func(ctx context.Context, w http.ResponseWriter, req *KeywordsRequest) (any, error) {
		limit := s.AppConfig.Analysis.KeywordLimit
		if req.Limit != nil {
			limit = *req.Limit
		}
		profileName := req.Profile
		if profileName == "" {
			profileName = s.AppConfig.Analysis.KeywordProfile
		}
		profile, _ := analysis.ParseProfile(profileName)

		return memo(ctx, s, w, "keywords", func() types.KeywordsResult {
			return types.KeywordsResult{
				Profile:  string(profile),
				Limit:    limit,
				Keywords: analysis.Keywords(req.Text, profile, limit),
			}
		}, req.Text, string(profile), strconv.Itoa(limit))
	})
}

func (s *Server) parseHandler() http.HandlerFunc {
	return jsonEndpoint(s, "parse", func(ctx context.Context, w http.ResponseWriter, req *DocumentsRequest) (any, error) {
		resume, _, err := s.resolveDocuments(ctx, *req)
		if err != nil {
			return nil, err
		}
		documentSpanAttrs(ctx, resume, "")
		s.metrics().RecordAnalysis(ctx, "parse", -1, len(resume), 0)

		return memo(ctx, s, w, "parse", func() types.ParsedResume {
			return analysis.ParseResumeText(resume)
		}, resume)
	})
}

func (s *Server) scoreHandler() http.HandlerFunc {
	return jsonEndpoint(s, "score", func(ctx context.Context, w http.ResponseWriter, req *DocumentsRequest) (any, error) {
		resume, jd, err := s.resolveDocuments(ctx, *req)
		if err != nil {
			return nil, err
		}
		documentSpanAttrs(ctx, resume, jd)

		result, err := memo(ctx, s, w, "score", func() types.AtsScoreResult {
			return analysis.CalculateATSScore(resume, jd)
		}, resume, jd)
		if err != nil {
			return nil, err
		}
		s.metrics().RecordAnalysis(ctx, "score", result.Score, len(resume), len(jd))
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("ats.score", result.Score))
		return result, nil
	})
}

func (s *Server) dashboardHandler() http.HandlerFunc {
	return jsonEndpoint(s, "dashboard", func(ctx context.Context, w http.ResponseWriter, req *DocumentsRequest) (any, error) {
		resume, jd, err := s.resolveDocuments(ctx, *req)
		if err != nil {
			return nil, err
		}
		documentSpanAttrs(ctx, resume, jd)

		result, err := memo(ctx, s, w, "dashboard", func() types.DashboardMetrics {
			return analysis.ComputeDashboardMetrics(resume, jd)
		}, resume, jd)
		if err != nil {
			return nil, err
		}
		s.metrics().RecordAnalysis(ctx, "dashboard", result.AtsScore, len(resume), len(jd))
		return result, nil
	})
}

func (s *Server) analyzeHandler() http.HandlerFunc {
	return jsonEndpoint(s, "analyze", func(ctx context.Context, w http.ResponseWriter, req *DocumentsRequest) (any, error) {
		resume, jd, err := s.resolveDocuments(ctx, *req)
		if err != nil {
			return nil, err
		}
		documentSpanAttrs(ctx, resume, jd)

		report, err := memo(ctx, s, w, "analyze", func() types.AnalysisReport {
			return analysis.Analyze(resume, jd)
		}, resume, jd)
		if err != nil {
			return nil, err
		}
		s.metrics().RecordAnalysis(ctx, "analyze", report.Ats.Score, len(resume), len(jd))
		return report, nil
	})
}

func (s *Server) coverLetterHandler() http.HandlerFunc {
	return jsonEndpoint(s, "cover_letter", func(ctx context.Context, w http.ResponseWriter, req *CoverLetterRequest) (any, error) {
		resume, jd, err := s.resolveDocuments(ctx, req.DocumentsRequest)
		if err != nil {
			return nil, err
		}
		documentSpanAttrs(ctx, resume, jd)

		input := types.CoverLetterInput{
			Resume:         analysis.ParseResumeText(resume),
			JobDescription: jd,
			CompanyName:    strings.TrimSpace(req.CompanyName),
			RoleTitle:      strings.TrimSpace(req.RoleTitle),
		}
		if !req.UseAI {
			return coverletter.Generate(input), nil
		}

		var out types.CoverLetterOutput
		err = s.metrics().TrackAIOperation(ctx, config.OperationCoverLetter, func(ctx context.Context) *observability.AIOperationResult {
			var usage *observability.TokenUsage
			var aiErr error
			out, usage, aiErr = s.AI.CoverLetter(ctx, input)
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: usage}
		})
		return out, err
	})
}

// aiInputs resolves and checks the texts an AI operation needs.
func (s *Server) aiInputs(ctx context.Context, req DocumentsRequest) (types.RewriteInput, error) {
	resume, jd, err := s.resolveDocuments(ctx, req)
	if err != nil {
		return types.RewriteInput{}, err
	}
	if strings.TrimSpace(resume) == "" {
		return types.RewriteInput{}, atsErrors.NewValidationError(atsErrors.ErrCodeInvalidRequest, "resumeText is required", nil)
	}
	if strings.TrimSpace(jd) == "" {
		return types.RewriteInput{}, atsErrors.NewValidationError(atsErrors.ErrCodeInvalidRequest, "jobDescription is required", nil)
	}
	documentSpanAttrs(ctx, resume, jd)

	return types.RewriteInput{
		ResumeText:     resume,
		JobDescription: jd,
		Resume:         analysis.ParseResumeText(resume),
		Ats:            analysis.CalculateATSScore(resume, jd),
	}, nil
}

func (s *Server) rewriteHandler() http.HandlerFunc {
	return jsonEndpoint(s, "rewrite", func(ctx context.Context, w http.ResponseWriter, req *DocumentsRequest) (any, error) {
		input, err := s.aiInputs(ctx, *req)
		if err != nil {
			return nil, err
		}

		var out types.RewriteOutput
		err = s.metrics().TrackAIOperation(ctx, config.OperationRewrite, func(ctx context.Context) *observability.AIOperationResult {
			var usage *observability.TokenUsage
			var aiErr error
			out, usage, aiErr = s.AI.RewriteSummary(ctx, input)
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: usage}
		})
		return out, err
	})
}

func (s *Server) interviewHandler() http.HandlerFunc {
	return jsonEndpoint(s, "interview", func(ctx context.Context, w http.ResponseWriter, req *DocumentsRequest) (any, error) {
		input, err := s.aiInputs(ctx, *req)
		if err != nil {
			return nil, err
		}

		var out types.InterviewOutput
		err = s.metrics().TrackAIOperation(ctx, config.OperationInterview, func(ctx context.Context) *observability.AIOperationResult {
			var usage *observability.TokenUsage
			var aiErr error
			out, usage, aiErr = s.AI.InterviewQuestions(ctx, types.InterviewInput(input))
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: usage}
		})
		return out, err
	})
}
