// Package httpapi is the thin HTTP transport over the waitlist service.
// Handlers translate requests and map the service error taxonomy onto
// status codes; no queue or schedule logic lives here.
package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/anish-yen/barber-app/internal/models"
	"github.com/anish-yen/barber-app/internal/queue"
	"github.com/anish-yen/barber-app/internal/report"
	"github.com/anish-yen/barber-app/internal/service"
)

// Handler wires the waitlist service into echo routes.
type Handler struct {
	waitlist *service.Waitlist
	logger   *zerolog.Logger
}

func NewHandler(waitlist *service.Waitlist, logger *zerolog.Logger) *Handler {
	return &Handler{waitlist: waitlist, logger: logger}
}

// Register mounts all routes on e.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")

	wl := api.Group("/waitlist")
	wl.POST("/join", h.Join)
	wl.POST("/leave", h.Leave)
	wl.POST("/serve-next", h.ServeNext)
	wl.POST("/promote", h.Promote)
	wl.GET("/status", h.Status)
	wl.GET("/queue", h.Queue)

	sched := api.Group("/schedule")
	sched.GET("/status", h.ScheduleStatus)
	sched.GET("/hours", h.Hours)
	sched.POST("/hours", h.SetHours)
	sched.POST("/closures", h.SetClosure)

	api.GET("/reports/served.xlsx", h.ServedReport)
}

type joinRequest struct {
	CustomerID string `json:"customer_id"`
	Contact    string `json:"contact"`
	GuestCount int    `json:"guest_count"`
}

func (h *Handler) Join(c echo.Context) error {
	var req joinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid request body"))
	}
	if req.CustomerID == "" {
		return c.JSON(http.StatusBadRequest, errBody("customer_id is required"))
	}
	if req.GuestCount == 0 {
		req.GuestCount = 1
	}

	entry, err := h.waitlist.Join(c.Request().Context(), req.CustomerID, req.Contact, req.GuestCount)
	if err != nil {
		if aq, ok := service.IsAlreadyQueued(err); ok {
			return c.JSON(http.StatusConflict, map[string]any{
				"error": aq.Error(),
				"entry": aq.Entry,
			})
		}
		if sc, ok := service.IsShopClosed(err); ok {
			return c.JSON(http.StatusConflict, map[string]any{
				"error":  sc.Error(),
				"status": sc.Status,
			})
		}
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"entry": entry})
}

type leaveRequest struct {
	CustomerID string `json:"customer_id"`
}

func (h *Handler) Leave(c echo.Context) error {
	var req leaveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid request body"))
	}
	if req.CustomerID == "" {
		return c.JSON(http.StatusBadRequest, errBody("customer_id is required"))
	}

	entry, err := h.waitlist.Leave(c.Request().Context(), req.CustomerID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entry": entry})
}

func (h *Handler) ServeNext(c echo.Context) error {
	entry, err := h.waitlist.ServeNext(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entry": entry})
}

type promoteRequest struct {
	EntryID       string `json:"entry_id"`
	PriorityLevel *int   `json:"priority_level"`
}

func (h *Handler) Promote(c echo.Context) error {
	var req promoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid request body"))
	}
	if req.EntryID == "" {
		return c.JSON(http.StatusBadRequest, errBody("entry_id is required"))
	}
	if req.PriorityLevel == nil {
		return c.JSON(http.StatusBadRequest, errBody("priority_level is required"))
	}

	entry, err := h.waitlist.SetPriority(c.Request().Context(), req.EntryID, *req.PriorityLevel)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entry": entry})
}

// statusResponse mirrors the queue view; position is null when the customer
// is not queued.
type statusResponse struct {
	Entry                    *models.WaitlistEntry `json:"entry"`
	Position                 *int                  `json:"position"`
	PeopleAhead              int                   `json:"people_ahead"`
	TotalEntries             int                   `json:"total_entries"`
	TotalPeople              int                   `json:"total_people"`
	EstimatedWaitLowMinutes  int                   `json:"estimated_wait_low_minutes"`
	EstimatedWaitHighMinutes int                   `json:"estimated_wait_high_minutes"`
}

func (h *Handler) Status(c echo.Context) error {
	customerID := c.QueryParam("customer_id")
	if customerID == "" {
		return c.JSON(http.StatusBadRequest, errBody("customer_id is required"))
	}

	view, err := h.waitlist.StatusForCustomer(c.Request().Context(), customerID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, toStatusResponse(view))
}

func toStatusResponse(view queue.View) statusResponse {
	resp := statusResponse{
		Entry:                    view.Subject,
		PeopleAhead:              view.PeopleAhead,
		TotalEntries:             view.TotalEntries,
		TotalPeople:              view.TotalPeople,
		EstimatedWaitLowMinutes:  view.EstimatedWaitLowMinutes,
		EstimatedWaitHighMinutes: view.EstimatedWaitHighMinutes,
	}
	if view.Position > 0 {
		pos := view.Position
		resp.Position = &pos
	}
	return resp
}

func (h *Handler) Queue(c echo.Context) error {
	view, err := h.waitlist.QueueView(c.Request().Context(), "")
	if err != nil {
		return h.fail(c, err)
	}
	entries := view.Entries
	if entries == nil {
		entries = []models.WaitlistEntry{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"entries":       entries,
		"total_entries": view.TotalEntries,
		"total_people":  view.TotalPeople,
	})
}

func (h *Handler) ScheduleStatus(c echo.Context) error {
	status, err := h.waitlist.ScheduleStatus(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *Handler) Hours(c echo.Context) error {
	hours, closures, err := h.waitlist.Hours(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if hours == nil {
		hours = []models.HourRule{}
	}
	if closures == nil {
		closures = []models.Closure{}
	}
	return c.JSON(http.StatusOK, map[string]any{"hours": hours, "closures": closures})
}

type setHoursRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	IsOpen    bool   `json:"is_open"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *Handler) SetHours(c echo.Context) error {
	var req setHoursRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid request body"))
	}

	rule := &models.HourRule{
		DayOfWeek: req.DayOfWeek,
		IsOpen:    req.IsOpen,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := h.waitlist.SetHours(c.Request().Context(), rule); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"hour": rule})
}

type setClosureRequest struct {
	Date     string `json:"date"`
	IsClosed *bool  `json:"is_closed"`
	Reason   string `json:"reason"`
}

func (h *Handler) SetClosure(c echo.Context) error {
	var req setClosureRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid request body"))
	}
	if req.Date == "" {
		return c.JSON(http.StatusBadRequest, errBody("date is required"))
	}
	closed := true
	if req.IsClosed != nil {
		closed = *req.IsClosed
	}

	if err := h.waitlist.SetClosure(c.Request().Context(), req.Date, closed, req.Reason); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) ServedReport(c echo.Context) error {
	from, to, err := reportRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err.Error()))
	}

	entries, err := h.waitlist.ServedHistory(c.Request().Context(), from, to)
	if err != nil {
		return h.fail(c, err)
	}

	var buf bytes.Buffer
	if err := report.WriteServedHistory(entries, &buf); err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="served.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// reportRange parses from/to dates; defaults to the last 7 days.
func reportRange(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7)
	to := now
	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, models.ErrInvalidDate
		}
		from = t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, models.ErrInvalidDate
		}
		// Inclusive end date.
		to = t.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// fail maps the service error taxonomy onto HTTP status codes.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotQueued),
		errors.Is(err, service.ErrQueueEmpty),
		errors.Is(err, service.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, errBody(err.Error()))
	case service.IsValidation(err):
		return c.JSON(http.StatusBadRequest, errBody(err.Error()))
	default:
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, errBody("an unexpected error occurred"))
	}
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
