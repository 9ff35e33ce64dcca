package recipe

import (
	"net/http"

	"fridge-chef/internal/api/handlers"
	"fridge-chef/internal/api/middleware"
	"fridge-chef/internal/core/job"

	"github.com/gin-gonic/gin"
)

// JobAccepted 建立任務的響應
type JobAccepted struct {
	JobID     string     `json:"job_id"`
	Status    job.Status `json:"status"`
	StatusURL string     `json:"status_url"`
	EventsURL string     `json:"events_url"`
}

// SSE 事件名稱
const (
	eventProgress = "progress"
	eventDone     = "done"
	eventFailed   = "failed"
)

// HandleCreateJob 建立非同步任務
func (h *Handler) HandleCreateJob(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}

	j, err := h.jobs.Enqueue(req)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.Set(middleware.ContextJobID, j.ID)

	base := c.Request.URL.Path + "/" + j.ID
	c.JSON(http.StatusAccepted, JobAccepted{
		JobID:     j.ID,
		Status:    j.Status,
		StatusURL: base,
		EventsURL: base + "/events",
	})
}

// HandleGetJob 查詢任務狀態
func (h *Handler) HandleGetJob(c *gin.Context) {
	c.Set(middleware.ContextJobID, c.Param("id"))
	j, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, j)
}

// HandleJobEvents 以 Server-Sent Events 推送任務進度，任務結束後關閉
func (h *Handler) HandleJobEvents(c *gin.Context) {
	c.Set(middleware.ContextJobID, c.Param("id"))
	events, cancel, err := h.jobs.Subscribe(c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(eventName(ev.Status), ev)
			c.Writer.Flush()
			if ev.Status.Done() {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func eventName(s job.Status) string {
	switch s {
	case job.StatusSucceeded:
		return eventDone
	case job.StatusFailed:
		return eventFailed
	default:
		return eventProgress
	}
}
