// Package api implements the HTTP surface for the notice crawler.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusnotify/noticecrawl/internal/database"
	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/logger"
	"github.com/campusnotify/noticecrawl/internal/pipeline"
)

// Handler holds the services the HTTP endpoints delegate to.
type Handler struct {
	pipeline      *pipeline.Pipeline
	service       *pipeline.Service
	notifications database.NotificationRepositoryInterface
	log           logger.Interface
}

// NewHandler creates the endpoint handler.
func NewHandler(
	p *pipeline.Pipeline,
	service *pipeline.Service,
	notifications database.NotificationRepositoryInterface,
	log logger.Interface,
) *Handler {
	return &Handler{
		pipeline:      p,
		service:       service,
		notifications: notifications,
		log:           log.WithComponent("api"),
	}
}

// errorResponse is the uniform failure body. Handlers never leak a panic;
// every failure becomes this shape.
func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  pipeline.StatusError,
		"message": message,
	})
}

// CrawlRequest handles POST /crawl/request: one crawl cycle for the profile
// and target URLs carried in the body.
func (h *Handler) CrawlRequest(c *gin.Context) {
	var req pipeline.CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	report, err := h.pipeline.Run(c.Request.Context(), req)
	if err != nil {
		h.log.Error("crawl request failed", "user_id", req.UserID, "error", err)
		errorResponse(c, http.StatusInternalServerError, "crawl failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

// saveRequest is the body for POST /callback/save.
type saveRequest struct {
	UserID int64                       `json:"userId"`
	Data   []domain.NotificationRecord `json:"data"`
}

// CallbackSave handles POST /callback/save: idempotent insert of externally
// produced records. Replays are absorbed by the store's conflict handling.
func (h *Handler) CallbackSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.UserID == 0 || len(req.Data) == 0 {
		errorResponse(c, http.StatusBadRequest, "userId and data are required")
		return
	}

	for i := range req.Data {
		req.Data[i].UserID = req.UserID
	}
	count, err := h.notifications.InsertBatch(c.Request.Context(), req.Data)
	if err != nil {
		h.log.Error("callback save failed", "user_id", req.UserID, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to save records")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": pipeline.StatusSuccess,
		"count":  count,
	})
}

// DispatchCrawl handles POST /scheduler/dispatch-crawl: a crawl sweep over
// every user that has target URLs. Per-user failures are logged and skipped.
func (h *Handler) DispatchCrawl(c *gin.Context) {
	report, err := h.service.CrawlAll(c.Request.Context())
	if err != nil {
		h.log.Error("crawl sweep failed", "error", err)
		errorResponse(c, http.StatusInternalServerError, "crawl sweep failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    pipeline.StatusSuccess,
		"users":     report.Users,
		"persisted": report.Persisted,
		"failed":    report.Failed,
	})
}

// SendNotifications handles POST /scheduler/send-notifications: dispatch to
// every user whose alarm time matches the current time-of-day.
func (h *Handler) SendNotifications(c *gin.Context) {
	report, err := h.service.DispatchDue(c.Request.Context(), time.Now())
	if err != nil {
		h.log.Error("dispatch tick failed", "error", err)
		errorResponse(c, http.StatusInternalServerError, "dispatch failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": pipeline.StatusSuccess,
		"users":  report.Users,
		"sent":   report.Sent,
	})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
