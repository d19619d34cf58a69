package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Killo023/assignment-sub000/internal/extractor"
	"github.com/Killo023/assignment-sub000/internal/models"
	"github.com/Killo023/assignment-sub000/internal/services"
	"github.com/Killo023/assignment-sub000/internal/utils"
	"github.com/gorilla/mux"
)

// AccountIDHeader carries the authenticated account identity, set by the
// auth layer in front of this service.
const AccountIDHeader = "X-Account-ID"

type SubmissionHandler struct {
	service     services.SubmissionService
	maxFileSize int64
	logger      *utils.Logger
}

func NewSubmissionHandler(service services.SubmissionService, maxFileSize int64, logger *utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID := r.Header.Get(AccountIDHeader)
	if accountID == "" {
		h.respondError(w, utils.NewForbiddenError("Missing account identity"))
		return
	}

	if r.ContentLength > h.maxFileSize {
		h.respondError(w, utils.NewBadRequestError("File size exceeds the upload limit"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			h.respondError(w, utils.NewBadRequestError("File size exceeds the upload limit"))
			return
		}
		h.respondError(w, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	contentType := extractor.DetermineContentType(header.Filename, header.Header.Get("Content-Type"))

	h.logger.Info("Submission attempt",
		"account_id", accountID,
		"filename", header.Filename,
		"reported_content_type", header.Header.Get("Content-Type"),
		"determined_content_type", contentType)

	if !extractor.IsSupportedContentType(contentType) {
		h.respondError(w, utils.NewBadRequestError("Only PDF, DOCX and plain text files are allowed"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.respondError(w, utils.NewInternalError("Failed to read file"))
		return
	}

	if int64(len(data)) > h.maxFileSize {
		h.respondError(w, utils.NewBadRequestError("File size exceeds the upload limit"))
		return
	}

	if len(data) == 0 {
		h.respondError(w, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	var metadata map[string]interface{}
	if blob := r.FormValue("metadata"); blob != "" {
		// Free-form submitter info; stored as supplied, not validated
		// against a schema.
		if err := json.Unmarshal([]byte(blob), &metadata); err != nil {
			h.respondError(w, utils.NewBadRequestError("Metadata must be a JSON object"))
			return
		}
	}

	req := &models.SubmitRequest{
		AccountID:    accountID,
		File:         data,
		Filename:     header.Filename,
		ContentType:  contentType,
		Category:     r.FormValue("category"),
		OutputFormat: r.FormValue("output_format"),
		Metadata:     metadata,
	}

	resp, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, resp)
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := r.Header.Get(AccountIDHeader)
	if accountID == "" {
		h.respondError(w, utils.NewForbiddenError("Missing account identity"))
		return
	}

	subs, err := h.service.List(r.Context(), accountID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if subs == nil {
		subs = []*models.Submission{}
	}

	h.respondJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := r.Header.Get(AccountIDHeader)
	if accountID == "" {
		h.respondError(w, utils.NewForbiddenError("Missing account identity"))
		return
	}

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Submission ID is required"))
		return
	}

	sub, err := h.service.Get(r.Context(), accountID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, sub)
}

// DownloadFile streams the archived original upload back to its owner.
func (h *SubmissionHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	accountID := r.Header.Get(AccountIDHeader)
	if accountID == "" {
		h.respondError(w, utils.NewForbiddenError("Missing account identity"))
		return
	}

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Submission ID is required"))
		return
	}

	data, filename, err := h.service.DownloadOriginal(r.Context(), accountID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write file response", "error", err)
	}
}

func (h *SubmissionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *SubmissionHandler) respondError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	h.logger.Error("Request error", "status", status, "error", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
