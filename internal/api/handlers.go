package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/domain"
	"github.com/lucianareynaud/biogpt/internal/ingest"
)

type uploadResponse struct {
	UploadID      string                  `json:"upload_id"`
	Filename      string                  `json:"filename"`
	FileSize      int64                   `json:"file_size"`
	Status        domain.ProcessingStatus `json:"status"`
	Message       string                  `json:"message"`
	ProcessingURL string                  `json:"processing_url"`
}

type statusResponse struct {
	UploadID          string                      `json:"upload_id"`
	Filename          string                      `json:"filename"`
	Status            domain.ProcessingStatus     `json:"status"`
	Progress          float64                     `json:"progress"`
	Message           string                      `json:"message"`
	VariantsProcessed int                         `json:"variants_processed"`
	TotalVariants     int                         `json:"total_variants"`
	Errors            []string                    `json:"errors"`
	Summary           *domain.ClassificationTally `json:"summary,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	CompletedAt       *time.Time                  `json:"completed_at,omitempty"`
}

type resultsResponse struct {
	UploadID         string                 `json:"upload_id"`
	TotalVariants    int                    `json:"total_variants"`
	AnalyzedVariants int                    `json:"analyzed_variants"`
	Analyses         []domain.VariantResult `json:"analyses"`
	Summary          map[string]int         `json:"summary"`
}

type reportRequest struct {
	UploadID string `json:"upload_id" binding:"required"`
	Language string `json:"language"`
}

type reportResponse struct {
	ReportID    string         `json:"report_id"`
	UploadID    string         `json:"upload_id"`
	Language    string         `json:"language"`
	Markdown    string         `json:"markdown"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summary     map[string]int `json:"summary"`
}

type chatRequest struct {
	UploadID  string `json:"upload_id" binding:"required"`
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

type chatResponse struct {
	SessionID          string   `json:"session_id"`
	MessageID          string   `json:"message_id"`
	Content            string   `json:"content"`
	Sources            []string `json:"sources"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	filename := filepath.Base(file.Filename)
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No filename provided"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".txt") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .txt files are supported (23andMe format)"})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadsDir, 0o755); err != nil {
		s.log.WithField("error", err.Error()).Error("Creating uploads directory failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file"})
		return
	}
	path := filepath.Join(s.cfg.UploadsDir, uuid.New().String()+"_"+filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		s.log.WithField("error", err.Error()).Error("Saving uploaded file failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file"})
		return
	}

	validation := ingest.ValidateFile(path)
	if !validation.Valid {
		os.Remove(path)
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid file format: %s", validation.Error)})
		return
	}

	run, err := s.orchestrator.StartRun(c.Request.Context(), filename, path, validation.FileSize)
	if err != nil {
		s.log.WithField("error", err.Error()).Error("Creating processing run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start processing"})
		return
	}

	// Processing outlives the request; it must not inherit its context.
	go s.orchestrator.Process(context.Background(), run.ID)

	s.log.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"filename": filename,
		"size":     validation.FileSize,
	}).Info("Genome file uploaded")

	c.JSON(http.StatusOK, uploadResponse{
		UploadID:      run.ID,
		Filename:      filename,
		FileSize:      validation.FileSize,
		Status:        run.Status,
		Message:       "File uploaded successfully. Processing started.",
		ProcessingURL: fmt.Sprintf("/api/v1/genome-upload/%s/status", run.ID),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	run, ok := s.loadRun(c)
	if !ok {
		return
	}

	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	c.JSON(http.StatusOK, statusResponse{
		UploadID:          run.ID,
		Filename:          run.Filename,
		Status:            run.Status,
		Progress:          run.Progress,
		Message:           run.Message,
		VariantsProcessed: run.ProcessedVariants,
		TotalVariants:     run.TotalVariants,
		Errors:            errs,
		Summary:           run.Summary,
		CreatedAt:         run.CreatedAt,
		CompletedAt:       run.CompletedAt,
	})
}

func (s *Server) handleResults(c *gin.Context) {
	run, ok := s.loadRun(c)
	if !ok {
		return
	}
	if run.Status != domain.StatusCompleted {
		c.JSON(http.StatusAccepted, gin.H{"error": fmt.Sprintf("Analysis not completed. Current status: %s", run.Status)})
		return
	}

	results, err := s.orchestrator.Results(c.Request.Context(), run.ID)
	if err != nil {
		s.log.WithFields(logrus.Fields{"run_id": run.ID, "error": err.Error()}).Error("Loading results failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analysis results"})
		return
	}
	if results == nil {
		results = []domain.VariantResult{}
	}

	c.JSON(http.StatusOK, resultsResponse{
		UploadID:         run.ID,
		TotalVariants:    run.TotalVariants,
		AnalyzedVariants: len(results),
		Analyses:         results,
		Summary:          summaryMap(run.Summary),
	})
}

func (s *Server) handleReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upload_id is required"})
		return
	}

	run, ok := s.loadRunByID(c, req.UploadID)
	if !ok {
		return
	}
	if run.Status != domain.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Analysis not completed. Status: %s", run.Status)})
		return
	}

	results, err := s.orchestrator.Results(c.Request.Context(), run.ID)
	if err != nil {
		s.log.WithFields(logrus.Fields{"run_id": run.ID, "error": err.Error()}).Error("Loading results failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analysis results"})
		return
	}

	lang := classify.Language(req.Language)
	reporter, ok := s.reporters[lang]
	if !ok {
		lang = classify.LanguagePTBR
		reporter = s.reporters[lang]
	}

	markdown, err := reporter.Markdown(run, results)
	if err != nil {
		s.log.WithFields(logrus.Fields{"run_id": run.ID, "error": err.Error()}).Error("Report rendering failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, reportResponse{
		ReportID:    uuid.New().String(),
		UploadID:    run.ID,
		Language:    string(lang),
		Markdown:    markdown,
		GeneratedAt: time.Now().UTC(),
		Summary:     summaryMap(run.Summary),
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upload_id and message are required"})
		return
	}

	run, ok := s.loadRunByID(c, req.UploadID)
	if !ok {
		return
	}
	if run.Status != domain.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Analysis not completed. Status: %s", run.Status)})
		return
	}

	var session *chatSession
	if req.SessionID == "" {
		session = s.sessions.Create(run.ID)
	} else {
		session, ok = s.sessions.Get(req.SessionID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat session not found"})
			return
		}
		if session.UploadID != run.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session does not belong to this upload"})
			return
		}
	}
	s.sessions.Append(session.SessionID, messageTypeUser, req.Message, nil)

	answer, err := s.chat.Answer(c.Request.Context(), req.Message, run)
	if err != nil {
		s.log.WithFields(logrus.Fields{"run_id": run.ID, "error": err.Error()}).Error("Chat turn failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat processing failed"})
		return
	}
	msg, _ := s.sessions.Append(session.SessionID, messageTypeAssistant, answer.Content, answer.Sources)

	c.JSON(http.StatusOK, chatResponse{
		SessionID:          session.SessionID,
		MessageID:          msg.MessageID,
		Content:            answer.Content,
		Sources:            msg.Sources,
		SuggestedQuestions: answer.SuggestedQuestions,
	})
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions := s.sessions.List(c.Query("upload_id"))
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func (s *Server) handleSessionMessages(c *gin.Context) {
	sessionID := c.Param("id")
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat session not found"})
		return
	}
	messages, _ := s.sessions.Messages(sessionID)
	if messages == nil {
		messages = []chatMessage{}
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":    session.SessionID,
		"upload_id":     session.UploadID,
		"created_at":    session.CreatedAt,
		"messages":      messages,
		"message_count": len(messages),
	})
}

func (s *Server) loadRun(c *gin.Context) (*domain.ProcessingRun, bool) {
	return s.loadRunByID(c, c.Param("id"))
}

func (s *Server) loadRunByID(c *gin.Context, runID string) (*domain.ProcessingRun, bool) {
	run, err := s.orchestrator.Run(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
			return nil, false
		}
		s.log.WithFields(logrus.Fields{"run_id": runID, "error": err.Error()}).Error("Run lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run state"})
		return nil, false
	}
	return run, true
}

func summaryMap(summary *domain.ClassificationTally) map[string]int {
	m := map[string]int{
		domain.Pathogenic.String():            0,
		domain.LikelyPathogenic.String():      0,
		domain.UncertainSignificance.String(): 0,
		domain.LikelyBenign.String():          0,
		domain.Benign.String():                0,
	}
	if summary != nil {
		m[domain.Pathogenic.String()] = summary.Pathogenic
		m[domain.LikelyPathogenic.String()] = summary.LikelyPathogenic
		m[domain.UncertainSignificance.String()] = summary.VUS
		m[domain.LikelyBenign.String()] = summary.LikelyBenign
		m[domain.Benign.String()] = summary.Benign
	}
	return m
}
