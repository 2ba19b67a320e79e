package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/rankengine-api/internal/access"
	"github.com/gravadigital/rankengine-api/internal/config"
	"github.com/gravadigital/rankengine-api/internal/domain/submission"
	"github.com/gravadigital/rankengine-api/internal/logger"
	"github.com/gravadigital/rankengine-api/internal/middleware/auth"
	"github.com/gravadigital/rankengine-api/internal/response"
	"github.com/gravadigital/rankengine-api/internal/storage/postgres"
	"github.com/gravadigital/rankengine-api/internal/validation"
)

var submissionValidation = validation.SubmissionValidation{}

// SubmissionHandler manages the work items ranked inside a venue.
type SubmissionHandler struct {
	submissionRepo postgres.SubmissionRepository
	userRepo       postgres.UserRepository
	config         *config.Config
	log            *log.Logger
}

func NewSubmissionHandler(submissionRepo postgres.SubmissionRepository, userRepo postgres.UserRepository, cfg *config.Config) *SubmissionHandler {
	return &SubmissionHandler{
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		config:         cfg,
		log:            logger.Handler("submission_handler"),
	}
}

// viewerPolicy resolves the calling reviewer's access policy, treating a
// missing or unresolvable identity as an anonymous viewer.
func (h *SubmissionHandler) viewerPolicy(c *gin.Context) access.Policy {
	userID, ok := auth.UserID(c)
	if !ok {
		return access.NewPolicy(nil)
	}
	viewer, err := h.userRepo.GetByID(userID.String())
	if err != nil {
		return access.NewPolicy(nil)
	}
	return access.NewPolicy(viewer)
}

// allowedSubmissionTypes mirrors the content types a venue will accept as
// a submission's backing file.
var allowedSubmissionTypes = map[string]string{
	"application/pdf": "PDF Document",
	"application/zip": "ZIP Archive",
	"text/plain":      "Text Document",
	"application/msword": "Word Document",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "Word Document (DOCX)",
}

type createSubmissionRequest struct {
	Title    string `json:"title" binding:"required"`
	FilePath string `json:"file_path" binding:"required"`
}

// CreateSubmission registers a new submission to a venue, authored by the caller.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	venueID := c.Param("id")

	userID, ok := auth.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "missing identity")
		return
	}

	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body")
		return
	}

	if err := submissionValidation.ValidateSubmissionTitle(req.Title); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		response.BadRequestError(c, "invalid venue id")
		return
	}

	s := submission.NewSubmission(venueUUID, userID, req.Title, req.FilePath)

	if err := h.submissionRepo.Create(s); err != nil {
		h.log.Error("failed to create submission", "error", err)
		response.InternalServerError(c, "failed to create submission")
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "submission created", s)
}

// GetVenueSubmissions lists every submission in a venue. Browsing the full
// pool outside of being handed one as a task is an admin-only view.
func (h *SubmissionHandler) GetVenueSubmissions(c *gin.Context) {
	if !h.viewerPolicy(c).CanViewSubmissions() {
		response.ForbiddenError(c, "only admins may browse a venue's submission pool")
		return
	}

	submissions, err := h.submissionRepo.GetByVenue(c.Param("id"))
	if err != nil {
		h.log.Error("failed to list submissions", "venue_id", c.Param("id"), "error", err)
		response.InternalServerError(c, "failed to list submissions")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "submissions retrieved", submissions)
}

// UploadFile stores the backing file for a submission on local disk and
// records its path, enforcing the venue's content-type allowlist and
// configured size ceiling.
func (h *SubmissionHandler) UploadFile(c *gin.Context) {
	submissionID := c.Param("submissionID")

	s, err := h.submissionRepo.GetByID(submissionID)
	if err != nil {
		response.NotFoundError(c, "submission not found")
		return
	}

	userID, ok := auth.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "missing identity")
		return
	}
	if s.AuthorID != userID {
		response.ForbiddenError(c, "only the submission's author may upload its file")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequestError(c, "missing file")
		return
	}
	defer file.Close()

	if header.Size > h.config.Upload.MaxFileSize {
		h.log.Warn("file too large", "submission_id", submissionID, "size", header.Size)
		response.BadRequestError(c, "file exceeds maximum allowed size")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedSubmissionTypes[contentType]; !ok {
		h.log.Warn("file type not allowed", "submission_id", submissionID, "content_type", contentType)
		response.BadRequestError(c, "file type not allowed")
		return
	}

	cleanFilename := filepath.Base(header.Filename)
	if cleanFilename != header.Filename || strings.Contains(cleanFilename, "..") {
		h.log.Warn("suspicious filename detected", "original", header.Filename)
		response.BadRequestError(c, "invalid filename")
		return
	}

	uploadsDir := h.config.Upload.Dir
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		h.log.Error("failed to create uploads directory", "dir", uploadsDir, "error", err)
		response.InternalServerError(c, "failed to prepare upload storage")
		return
	}

	ext := filepath.Ext(cleanFilename)
	secureFilename := fmt.Sprintf("%s_%d%s", submissionID, time.Now().UnixNano(), ext)
	filePath := filepath.Join(uploadsDir, secureFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		h.log.Error("failed to create file", "path", filePath, "error", err)
		response.InternalServerError(c, "failed to save file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.log.Error("failed to save file", "path", filePath, "error", err)
		os.Remove(filePath)
		response.InternalServerError(c, "failed to save file")
		return
	}

	if err := h.submissionRepo.UpdateFilePath(submissionID, filePath); err != nil {
		os.Remove(filePath)
		h.log.Error("failed to record file path", "submission_id", submissionID, "error", err)
		response.InternalServerError(c, "failed to record file path")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "file uploaded", gin.H{"file_path": filePath})
}

// GetSubmission retrieves a single submission by id, visible only to its
// author or a venue admin.
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	s, err := h.submissionRepo.GetByID(c.Param("submissionID"))
	if err != nil {
		response.NotFoundError(c, "submission not found")
		return
	}

	if !h.viewerPolicy(c).CanViewRatings(s.AuthorID) {
		response.ForbiddenError(c, "only the author or an admin may view this submission")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "submission retrieved", s)
}
