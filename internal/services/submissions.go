package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Killo023/assignment-sub000/internal/extractor"
	"github.com/Killo023/assignment-sub000/internal/generator"
	"github.com/Killo023/assignment-sub000/internal/models"
	"github.com/Killo023/assignment-sub000/internal/quota"
	"github.com/Killo023/assignment-sub000/internal/repository"
	"github.com/Killo023/assignment-sub000/internal/sanitizer"
	"github.com/Killo023/assignment-sub000/internal/storage"
	"github.com/Killo023/assignment-sub000/internal/utils"
)

// SubmissionService is the ingestion orchestrator: it gates a submission on
// entitlement and quota, extracts and sanitizes the document, persists the
// record, and hands the generation step to a detached tail the caller never
// waits on.
type SubmissionService interface {
	Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResponse, error)
	Get(ctx context.Context, accountID, id string) (*models.Submission, error)
	List(ctx context.Context, accountID string) ([]*models.Submission, error)
	DownloadOriginal(ctx context.Context, accountID, id string) ([]byte, string, error)
}

type submissionService struct {
	submissions repository.Submissions
	ledger      quota.Ledger
	extractor   *extractor.Extractor
	generator   generator.Generator
	storage     storage.Storage
	logger      *utils.Logger

	generationTimeout time.Duration

	// tailDone is signalled once per finished generation tail. Nil outside
	// tests.
	tailDone chan string
}

func NewSubmissionService(
	submissions repository.Submissions,
	ledger quota.Ledger,
	ext *extractor.Extractor,
	gen generator.Generator,
	store storage.Storage,
	generationTimeout time.Duration,
	logger *utils.Logger,
) SubmissionService {
	return &submissionService{
		submissions:       submissions,
		ledger:            ledger,
		extractor:         ext,
		generator:         gen,
		storage:           store,
		generationTimeout: generationTimeout,
		logger:            logger,
	}
}

func (s *submissionService) Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResponse, error) {
	// Entitlement and ceiling first: nothing below runs for an account
	// that may not submit, and no quota is touched on any rejection.
	if err := s.ledger.Authorize(ctx, req.AccountID); err != nil {
		return nil, err
	}

	if len(req.File) == 0 {
		return nil, utils.NewBadRequestError("No file provided")
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, utils.NewBadRequestError("Category is required")
	}

	if !extractor.IsSupportedContentType(req.ContentType) {
		s.logger.Warn("Unsupported content type", "content_type", req.ContentType, "filename", req.Filename)
		return nil, utils.NewBadRequestError(fmt.Sprintf("Unsupported file type %q. Only PDF, DOCX and plain text are allowed", req.ContentType))
	}

	rawText, err := s.extractor.Extract(ctx, req.File, req.ContentType)
	if err != nil {
		s.logger.Error("Failed to extract text", "error", err, "content_type", req.ContentType, "filename", req.Filename)
		return nil, utils.NewInternalError(fmt.Sprintf("Failed to extract text from document: %v", err))
	}

	if strings.TrimSpace(rawText) == "" {
		s.logger.Warn("No text extracted from document", "filename", req.Filename)
		return nil, utils.NewBadRequestError("No text could be extracted from the document. The file may be empty or corrupted")
	}

	cleanText := sanitizer.Sanitize(rawText)
	if strings.TrimSpace(cleanText) == "" {
		s.logger.Warn("No content left after sanitization", "filename", req.Filename)
		return nil, utils.NewBadRequestError("The document contains no usable content after sanitization")
	}

	outputFormat := req.OutputFormat
	if outputFormat == "" {
		outputFormat = "txt"
	}

	subID := utils.GenerateID()
	now := time.Now()

	storageKey := fmt.Sprintf("submissions/%s/%s", subID, req.Filename)
	if err := s.storage.Upload(ctx, storageKey, req.File, req.ContentType); err != nil {
		s.logger.Error("Failed to archive original file", "error", err, "storage_key", storageKey)
		return nil, utils.NewInternalError("Failed to store document")
	}

	sub := &models.Submission{
		ID:              subID,
		AccountID:       req.AccountID,
		Title:           titleFromFilename(req.Filename),
		Category:        req.Category,
		OriginalContent: cleanText,
		OutputFormat:    outputFormat,
		Metadata:        req.Metadata,
		StorageKey:      storageKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		s.logger.Error("Failed to create submission record", "error", err, "submission_id", subID)
		_ = s.storage.Delete(ctx, storageKey)
		return nil, utils.NewInternalError("Failed to save submission")
	}

	// Quota is consumed after the record exists. If this write fails the
	// record stays processing with quota unconsumed; there is no
	// compensating delete.
	if err := s.ledger.Consume(ctx, req.AccountID); err != nil {
		s.logger.Error("Failed to consume quota", "error", err, "account_id", req.AccountID, "submission_id", subID)
		return nil, utils.NewInternalError("Failed to record usage")
	}

	s.logger.Info("Submission accepted",
		"submission_id", subID,
		"account_id", req.AccountID,
		"filename", req.Filename,
		"content_type", req.ContentType,
		"text_length", len(cleanText))

	// The caller only ever observes "accepted, processing". The tail runs
	// on its own context: the request context dies with the response.
	go s.runGeneration(subID, cleanText, req.Category)

	return &models.SubmitResponse{
		SubmissionID: subID,
		Title:        sub.Title,
		Status:       models.StatusProcessing,
		CreatedAt:    now,
		Message:      "Submission accepted and queued for generation",
	}, nil
}

// runGeneration is the detached tail. It has no caller to report to; its one
// obligation is that the record always leaves processing.
func (s *submissionService) runGeneration(subID, text, category string) {
	defer func() {
		if s.tailDone != nil {
			s.tailDone <- subID
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.generationTimeout)
	defer cancel()

	// Finalization writes get their own deadline: when generation itself
	// times out, ctx is already expired and would reject the very write
	// that records the failure, stranding the record in processing.
	writeCtx, writeCancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer writeCancel()

	generated, err := s.generator.Generate(ctx, text, category)
	if err != nil {
		s.logger.Error("Generation failed", "error", err, "submission_id", subID)
		reason := fmt.Sprintf("Generation failed: %v", err)
		if ferr := s.submissions.FinalizeFailed(writeCtx, subID, reason); ferr != nil {
			s.logger.Error("Failed to record generation failure", "error", ferr, "submission_id", subID)
		}
		return
	}

	shareToken := utils.GenerateShareToken()
	if err := s.submissions.FinalizeCompleted(writeCtx, subID, generated, shareToken); err != nil {
		// The generated text is lost, but the record must not sit in
		// processing forever.
		s.logger.Error("Failed to save generated result", "error", err, "submission_id", subID)
		if ferr := s.submissions.FinalizeFailed(writeCtx, subID, "Generation succeeded but the result could not be saved"); ferr != nil {
			s.logger.Error("Failed to downgrade submission after save failure", "error", ferr, "submission_id", subID)
		}
		return
	}

	s.logger.Info("Submission completed",
		"submission_id", subID,
		"generated_length", len(generated))
}

func (s *submissionService) Get(ctx context.Context, accountID, id string) (*models.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get submission", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve submission")
	}
	if sub == nil || sub.AccountID != accountID {
		return nil, utils.NewNotFoundError("Submission not found")
	}

	return sub, nil
}

// DownloadOriginal returns the archived upload bytes and the original
// filename for an owned submission.
func (s *submissionService) DownloadOriginal(ctx context.Context, accountID, id string) ([]byte, string, error) {
	sub, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, "", err
	}
	if sub.StorageKey == "" {
		return nil, "", utils.NewNotFoundError("Original file not available")
	}

	data, err := s.storage.Download(ctx, sub.StorageKey)
	if err != nil {
		s.logger.Error("Failed to download archived file", "error", err, "storage_key", sub.StorageKey)
		return nil, "", utils.NewInternalError("Failed to retrieve original file")
	}

	return data, filepath.Base(sub.StorageKey), nil
}

func (s *submissionService) List(ctx context.Context, accountID string) ([]*models.Submission, error) {
	subs, err := s.submissions.ListByAccount(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to list submissions", "error", err, "account_id", accountID)
		return nil, utils.NewInternalError("Failed to list submissions")
	}

	return subs, nil
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}
