package handler

import (
	"errors"
	"strconv"

	"github.com/akzente/fieldops/internal/ops/lifecycle"
	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/akzente/fieldops/internal/ops/service"
	"github.com/gin-gonic/gin"
)

// Handlers is the handler aggregate, wired once in main.
type Handlers struct {
	Report       *ReportHandler
	Dashboard    *DashboardHandler
	Project      *ProjectHandler
	Notification *NotificationHandler
}

// NewHandlers creates the handler aggregate.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Report:       NewReportHandler(svc.Report, svc.Favorite, svc.Conversation, svc.Photo),
		Dashboard:    NewDashboardHandler(svc.Dashboard),
		Project:      NewProjectHandler(svc.Dashboard, svc.Report),
		Notification: NewNotificationHandler(svc.Notify),
	}
}

// Response is the common response envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated lists.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination carries paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope; the HTTP status is code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a parameter error.
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Forbidden writes a permission error.
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound writes a missing-resource error.
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict writes a conflict error.
func Conflict(c *gin.Context, code int, message string) {
	Error(c, code, message)
}

// InternalError writes a server error.
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// TransitionError maps workflow errors onto the envelope. The code space
// under 409 distinguishes the recoverable conflicts so clients can react:
// 40900 invalid transition, 40901 already closed, 40902 retryable stale
// write.
func TransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		Conflict(c, 40900, "action not allowed for current status")
	case errors.Is(err, lifecycle.ErrAlreadyClosed):
		Conflict(c, 40901, "report is already closed")
	case errors.Is(err, service.ErrStaleWrite):
		Conflict(c, 40902, "report was modified concurrently, retry")
	case errors.Is(err, lifecycle.ErrUnauthorized):
		Forbidden(c, "role not allowed for this action")
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "report not found")
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID reads the authenticated user ID from the context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetActorRole reads the platform role from the context.
func GetActorRole(c *gin.Context) string {
	return c.GetString("role")
}

// GetPagination reads page/page_size query params.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
