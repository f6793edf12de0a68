package server

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"atsmatch/internal/analysis"
	atsErrors "atsmatch/internal/errors"
	"atsmatch/internal/extract"
	"atsmatch/internal/session"
	"atsmatch/internal/types"
)

const uploadField = "file"

// multipart parts beyond this are spilled to temp files by net/http.
const uploadMemory = 4 << 20

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context())
	if stderrors.Is(err, session.ErrNotFound) {
		s.writeAppError(w, r, session.NotFoundError())
		return
	}
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) putSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}

	source := types.SessionSource(req.Source)
	if source == "" {
		source = types.SessionSourceUpload
	}
	s.saveSession(w, r, types.AnalysisSession{
		ResumeText:         req.ResumeText,
		JobDescriptionText: req.JobDescriptionText,
		Source:             source,
		UpdatedAt:          time.Now().UTC(),
	})
}

func (s *Server) demoSessionHandler(w http.ResponseWriter, r *http.Request) {
	s.saveSession(w, r, session.Demo(analysis.DemoResumeText, analysis.DemoJobDescription, time.Now()))
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess types.AnalysisSession) {
	if err := s.Sessions.Save(r.Context(), sess); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.Logger.Info("Session saved",
		"request_id", requestIDFromContext(r.Context()),
		"source", sess.Source,
		"resume_chars", len(sess.ResumeText),
		"has_job_description", sess.JobDescriptionText != "")
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Clear(r.Context()); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// extractHandler converts an uploaded document (multipart field "file")
// into plain text.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.extract")
	defer span.End()

	doc, err := s.readUpload(w, r)
	if err != nil {
		failSpan(span, err)
		s.writeAppError(w, r, err)
		return
	}
	span.SetAttributes(
		attribute.String("upload.name", doc.Name),
		attribute.Int("upload.bytes", len(doc.Data)),
	)

	result, err := s.Extractor.Extract(ctx, doc)
	contentType := doc.ContentType
	if result != nil {
		contentType = result.ContentType
	}
	s.metrics().RecordExtraction(ctx, contentType, len(doc.Data), err)
	if err != nil {
		failSpan(span, err)
		s.writeAppError(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("upload.content_type", result.ContentType))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (extract.Document, error) {
	if s.MaxUploadBytes > 0 {
		if r.ContentLength > s.MaxUploadBytes {
			return extract.Document{}, atsErrors.NewValidationError(atsErrors.ErrCodeFileTooLarge,
				fmt.Sprintf("upload too large (limit is %d bytes)", s.MaxUploadBytes), nil)
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return extract.Document{}, atsErrors.NewValidationError(atsErrors.ErrCodeFileTooLarge,
				fmt.Sprintf("upload too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return extract.Document{}, atsErrors.NewValidationError(atsErrors.ErrCodeInvalidRequest,
			"expected a multipart/form-data body", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return extract.Document{}, atsErrors.NewValidationError(atsErrors.ErrCodeInvalidRequest,
			fmt.Sprintf("missing %q form field", uploadField), err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return extract.Document{}, atsErrors.NewIOError(atsErrors.ErrCodeFileNotReadable, "failed to read upload", err)
	}

	return extract.Document{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
