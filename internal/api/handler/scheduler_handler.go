package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/topic-scheduler/internal/repository"
	"github.com/d60-Lab/topic-scheduler/internal/service"
	"github.com/d60-Lab/topic-scheduler/pkg/response"
)

type rescheduleRequest struct {
	CID       string `json:"cid" binding:"required"`
	UID       string `json:"uid"`
	Timestamp int64  `json:"timestamp" binding:"required,epochms"`
}

type scheduledEntry struct {
	TID string `json:"tid"`
	Due int64  `json:"due"`
}

// ListScheduled returns the pending queue in due order.
// @Summary List pending scheduled topics
// @Tags scheduler
// @Produce json
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/scheduled [get]
func (h *Handler) ListScheduled(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	start := int64((page - 1) * pageSize)
	stop := start + int64(pageSize) - 1

	entries, err := h.sets.RangeWithScores(c.Request.Context(), repository.ScheduledKey, start, stop)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	list := make([]scheduledEntry, 0, len(entries))
	for _, z := range entries {
		tid, _ := z.Member.(string)
		list = append(list, scheduledEntry{TID: tid, Due: int64(z.Score)})
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// Reschedule moves a pending topic to a new due time.
// @Summary Reschedule a pending topic
// @Tags scheduler
// @Accept json
// @Produce json
// @Param tid path string true "topic id"
// @Param request body rescheduleRequest true "new due time"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/scheduled/{tid}/reschedule [post]
func (h *Handler) Reschedule(c *gin.Context) {
	tid := c.Param("tid")
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	_, pending, err := h.sets.Score(c.Request.Context(), repository.ScheduledKey, tid)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !pending {
		response.NotFound(c, "topic is not scheduled")
		return
	}

	err = h.engine.Reschedule(c.Request.Context(), service.ReschedulePayload{
		CID:       req.CID,
		TID:       tid,
		UID:       req.UID,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// Sweep runs one promotion sweep outside the schedule.
// @Summary Trigger a manual sweep
// @Tags scheduler
// @Produce json
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/sweep [post]
func (h *Handler) Sweep(c *gin.Context) {
	if err := h.trigger.RunOnce(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrSweepInProgress) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListPromotions returns recent journal rows.
// @Summary List recent promotions
// @Tags scheduler
// @Produce json
// @Param limit query int false "limit" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/promotions [get]
func (h *Handler) ListPromotions(c *gin.Context) {
	if h.journal == nil {
		response.NotFound(c, "journal disabled")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": rows})
}

// TopicPromotions returns the journal rows for one topic.
// @Summary List promotions of a topic
// @Tags scheduler
// @Param tid path string true "topic id"
// @Success 200 {object} response.Response
// @Router /api/v1/promotions/{tid} [get]
func (h *Handler) TopicPromotions(c *gin.Context) {
	if h.journal == nil {
		response.NotFound(c, "journal disabled")
		return
	}
	rows, err := h.journal.ForTopic(c.Request.Context(), c.Param("tid"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": rows})
}

// Healthz reports liveness and store reachability.
// @Summary Health check
// @Tags ops
// @Success 200 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.rdb.Ping(c.Request.Context()).Err(); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}
