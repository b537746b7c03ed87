package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/config"
	"github.com/arnavshah/labour-scheduler/pkg/labour"
	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/gin-gonic/gin"
)

func userID(c *gin.Context) string {
	return c.GetString("userID")
}

// queryTime accepts RFC 3339 timestamps or plain dates
func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s: expected RFC 3339 time or YYYY-MM-DD, got %q", key, raw)
}

func (h *Handler) CreateWorker(c *gin.Context) {
	var req labour.WorkerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	w, err := h.Svc.CreateWorker(c.Request.Context(), userID(c), req)
	if err != nil {
		h.fail(c, err, "Failed to create worker")
		return
	}
	c.JSON(http.StatusCreated, w)
}

// GetWorkers supports ?skills=a,b (any of) and ?status=ACTIVE|INACTIVE
func (h *Handler) GetWorkers(c *gin.Context) {
	var f labour.WorkerFilter
	f.Skills = config.SplitCSV(c.Query("skills"))
	if st := c.Query("status"); st != "" {
		status := models.WorkerStatus(st)
		f.Status = &status
	}

	workers, err := h.Svc.GetWorkers(c.Request.Context(), userID(c), f)
	if err != nil {
		h.fail(c, err, "Failed to fetch workers")
		return
	}
	if workers == nil {
		workers = []models.Worker{}
	}
	c.JSON(http.StatusOK, gin.H{"data": workers, "total": len(workers)})
}

func (h *Handler) GetWorker(c *gin.Context) {
	w, err := h.Svc.GetWorker(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch worker")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) UpdateWorker(c *gin.Context) {
	var req labour.WorkerUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	w, err := h.Svc.UpdateWorker(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "Failed to update worker")
		return
	}
	c.JSON(http.StatusOK, w)
}

// CreateTask persists a task and auto-schedules it. The response status is
// 201 either way; the task status tells whether it was staffed.
func (h *Handler) CreateTask(c *gin.Context) {
	var req labour.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.Svc.CreateTask(c.Request.Context(), userID(c), req)
	if err != nil && task == nil {
		h.fail(c, err, "Failed to create task")
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusCreated, gin.H{"task": task, "scheduled": false, "error": toAPIError(err, "Auto-scheduling failed")})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task, "scheduled": task.Status == models.TaskScheduled})
}

// GetTasks supports ?status, ?priority, ?start_from and ?start_to
func (h *Handler) GetTasks(c *gin.Context) {
	var f labour.TaskFilter
	if st := c.Query("status"); st != "" {
		status := models.TaskStatus(st)
		f.Status = &status
	}
	if p := c.Query("priority"); p != "" {
		priority := models.TaskPriority(p)
		f.Priority = &priority
	}
	var err error
	if f.StartFrom, err = queryTime(c, "start_from"); err != nil {
		badRequest(c, err)
		return
	}
	if f.StartTo, err = queryTime(c, "start_to"); err != nil {
		badRequest(c, err)
		return
	}

	tasks, err := h.Svc.GetTasks(c.Request.Context(), userID(c), f)
	if err != nil {
		h.fail(c, err, "Failed to fetch tasks")
		return
	}
	if tasks == nil {
		tasks = []models.LabourTask{}
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks, "total": len(tasks)})
}

func (h *Handler) CreateShift(c *gin.Context) {
	var req labour.ShiftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	shift, err := h.Svc.CreateShift(c.Request.Context(), userID(c), req)
	if err != nil {
		h.fail(c, err, "Failed to create shift")
		return
	}
	c.JSON(http.StatusCreated, shift)
}

type shiftStatusRequest struct {
	Status      models.ShiftStatus `json:"status" binding:"required"`
	ActualStart *time.Time         `json:"actual_start"`
	ActualEnd   *time.Time         `json:"actual_end"`
}

func (h *Handler) UpdateShiftStatus(c *gin.Context) {
	var req shiftStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var actual *labour.ActualTimes
	if req.ActualStart != nil || req.ActualEnd != nil {
		actual = &labour.ActualTimes{ActualStart: req.ActualStart, ActualEnd: req.ActualEnd}
	}

	shift, err := h.Svc.UpdateShiftStatus(c.Request.Context(), userID(c), c.Param("id"), req.Status, actual)
	if err != nil {
		h.fail(c, err, "Failed to update shift")
		return
	}
	c.JSON(http.StatusOK, shift)
}

// GetAlerts supports ?is_read, ?severity and ?limit
func (h *Handler) GetAlerts(c *gin.Context) {
	var f labour.AlertFilter
	if raw := c.Query("is_read"); raw != "" {
		isRead, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, fmt.Errorf("is_read: %w", err))
			return
		}
		f.IsRead = &isRead
	}
	if sev := c.Query("severity"); sev != "" {
		severity := models.Severity(sev)
		f.Severity = &severity
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			badRequest(c, fmt.Errorf("limit must be a positive integer"))
			return
		}
		f.Limit = limit
	}

	alerts, err := h.Svc.GetAlerts(c.Request.Context(), userID(c), f)
	if err != nil {
		h.fail(c, err, "Failed to fetch alerts")
		return
	}
	if alerts == nil {
		alerts = []models.ScheduleAlert{}
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts, "total": len(alerts)})
}

func (h *Handler) MarkAlertRead(c *gin.Context) {
	alert, err := h.Svc.MarkAlertRead(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to mark alert read")
		return
	}
	c.JSON(http.StatusOK, alert)
}

// GetDashboardAnalytics supports ?start and ?end; both or neither
func (h *Handler) GetDashboardAnalytics(c *gin.Context) {
	start, err := queryTime(c, "start")
	if err != nil {
		badRequest(c, err)
		return
	}
	end, err := queryTime(c, "end")
	if err != nil {
		badRequest(c, err)
		return
	}
	var rng *labour.DateRange
	switch {
	case start != nil && end != nil:
		rng = &labour.DateRange{Start: *start, End: *end}
	case start != nil || end != nil:
		badRequest(c, fmt.Errorf("start and end must be given together"))
		return
	}

	d, err := h.Svc.GetDashboardAnalytics(c.Request.Context(), userID(c), rng)
	if err != nil {
		h.fail(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) GetOptimizationRecommendations(c *gin.Context) {
	recs, err := h.Svc.GetOptimizationRecommendations(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "Failed to build recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recs})
}

func (h *Handler) AnalyzeLaborTrends(c *gin.Context) {
	p, err := h.Svc.AnalyzeLaborTrends(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "Failed to analyze labour trends")
		return
	}
	c.JSON(http.StatusOK, p)
}
