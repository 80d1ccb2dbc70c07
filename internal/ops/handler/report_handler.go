package handler

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/akzente/fieldops/internal/ops/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the report surface: provisioning, the transition
// endpoint, the favorite overlay, the message thread and photos.
type ReportHandler struct {
	reportSvc       *service.ReportService
	favoriteSvc     *service.FavoriteService
	conversationSvc *service.ConversationService
	photoSvc        *service.PhotoService
}

func NewReportHandler(reportSvc *service.ReportService, favoriteSvc *service.FavoriteService, conversationSvc *service.ConversationService, photoSvc *service.PhotoService) *ReportHandler {
	return &ReportHandler{
		reportSvc:       reportSvc,
		favoriteSvc:     favoriteSvc,
		conversationSvc: conversationSvc,
		photoSvc:        photoSvc,
	}
}

// Create provisions a report in the initial status.
func (h *ReportHandler) Create(c *gin.Context) {
	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	report, err := h.reportSvc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Created(c, report)
}

// Get returns one report with the caller's favorite flag.
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reportSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "report not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	// The overlay must not break report reads; a failed lookup renders as
	// not-favorite but is never silent.
	isFavorite, err := h.favoriteSvc.IsFavorite(c.Request.Context(), report.ID, GetActorRole(c), GetUserID(c))
	if err != nil {
		log.Printf("[ReportHandler] favorite lookup failed (report=%s): %v", report.ID, err)
	}

	Success(c, gin.H{
		"report":      report,
		"is_favorite": isFavorite,
	})
}

// List returns reports with pagination and filters.
func (h *ReportHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]string{}
	for _, key := range []string{"project_id", "branch_id", "merchandiser_id", "status", "status_group"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	reports, total, err := h.reportSvc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, ListResponse{
		Items: reports,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	})
}

// TransitionRequest names the lifecycle action to run.
type TransitionRequest struct {
	Action string `json:"action" binding:"required"`
}

// Transition runs one lifecycle action as the authenticated role.
func (h *ReportHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	report, err := h.reportSvc.Transition(c.Request.Context(), c.Param("id"), GetActorRole(c), req.Action)
	if err != nil {
		TransitionError(c, err)
		return
	}

	Success(c, report)
}

// Actions returns the lifecycle actions the caller may take right now.
func (h *ReportHandler) Actions(c *gin.Context) {
	actions, err := h.reportSvc.AllowedActions(c.Request.Context(), c.Param("id"), GetActorRole(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "report not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"actions": actions})
}

// AssignRequest names the merchandiser to put on the report.
type AssignRequest struct {
	MerchandiserID string `json:"merchandiser_id" binding:"required"`
}

// Assign sets the merchandiser and moves the report to assigned.
func (h *ReportHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	report, err := h.reportSvc.Assign(c.Request.Context(), c.Param("id"), req.MerchandiserID, GetActorRole(c))
	if err != nil {
		TransitionError(c, err)
		return
	}

	Success(c, report)
}

// SubmitOutcome updates the visit outcome fields.
func (h *ReportHandler) SubmitOutcome(c *gin.Context) {
	var req service.OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	report, err := h.reportSvc.SubmitOutcome(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "report not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, report)
}

// ToggleFavorite flips the caller's favorite flag on the report.
func (h *ReportHandler) ToggleFavorite(c *gin.Context) {
	isFavorite, err := h.favoriteSvc.Toggle(c.Request.Context(), c.Param("id"), GetActorRole(c), GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "report not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"is_favorite": isFavorite})
}

// ListMessages returns the message thread subset visible to the caller.
func (h *ReportHandler) ListMessages(c *gin.Context) {
	messages, err := h.conversationSvc.VisibleMessages(c.Request.Context(), c.Param("id"), GetActorRole(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "report not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"messages": messages})
}

// PostMessageRequest carries a new thread message.
type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// PostMessage appends a message to the report thread.
func (h *ReportHandler) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.conversationSvc.PostMessage(c.Request.Context(), c.Param("id"), GetUserID(c), GetActorRole(c), req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessagingNotAllowed):
			Forbidden(c, "messaging not permitted for this role")
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "report not found")
		default:
			InternalError(c, err.Error())
		}
		return
	}

	Created(c, msg)
}

// UploadPhoto stores one visit photo against the report.
func (h *ReportHandler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, fmt.Sprintf("open upload: %v", err))
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	photo, err := h.photoSvc.Upload(c.Request.Context(), c.Param("id"), GetUserID(c), file.Filename, contentType, src, file.Size)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "report not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Created(c, photo)
}

// ListPhotos returns a report's photos.
func (h *ReportHandler) ListPhotos(c *gin.Context) {
	photos, err := h.photoSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"photos": photos})
}
