package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/repository"
)

// AuditHandler exposes the read-only audit trail to administrators.
type AuditHandler struct {
	Audit *repository.AuditRepo
}

func NewAuditHandler(audit *repository.AuditRepo) *AuditHandler {
	return &AuditHandler{Audit: audit}
}

// auditResp is the wire shape of one audit entry.
type auditResp struct {
	ID         uint64         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     *uint64        `json:"user_id"`
	UserEmail  *string        `json:"user_email"`
	Action     string         `json:"action"`
	TargetType *string        `json:"target_type"`
	TargetID   *uint64        `json:"target_id"`
	Details    map[string]any `json:"details"`
	Summary    string         `json:"summary"`
}

func toAuditResp(e repository.AuditEntry) auditResp {
	return auditResp{
		ID: e.ID, Timestamp: e.Timestamp, UserID: e.UserID, UserEmail: e.UserEmail,
		Action: e.Action, TargetType: e.TargetType, TargetID: e.TargetID,
		Details: e.Details, Summary: e.EventSummary(),
	}
}

// List returns a filtered page of audit entries, newest first.
func (h *AuditHandler) List(c echo.Context) error {
	f := repository.AuditFilter{
		Action:     c.QueryParam("action"),
		TargetType: c.QueryParam("target_type"),
	}
	f.Offset, f.Limit = pageParams(c)

	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		f.UserID = &id
	}
	var err error
	if f.Start, err = parseDate(c.QueryParam("start_date")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	if f.End, err = parseDate(c.QueryParam("end_date")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}

	entries, total, err := h.Audit.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, err)
	}
	items := make([]auditResp, 0, len(entries))
	for _, e := range entries {
		items = append(items, toAuditResp(e))
	}
	return c.JSON(http.StatusOK, pageResp{Items: items, Total: total})
}

// Get returns a single audit entry.
func (h *AuditHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.Audit.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toAuditResp(entry))
}

// Actions lists the distinct action names recorded so far.
func (h *AuditHandler) Actions(c echo.Context) error {
	actions, err := h.Audit.DistinctActions(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	if actions == nil {
		actions = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"actions": actions})
}

// Stats returns aggregate counts, optionally bounded by a date range.
func (h *AuditHandler) Stats(c echo.Context) error {
	start, err := parseDate(c.QueryParam("start_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := parseDate(c.QueryParam("end_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}

	stats, err := h.Audit.Stats(c.Request().Context(), start, end)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_events":     stats.TotalEvents,
		"auth_events":      stats.AuthEvents,
		"admin_operations": stats.AdminOperations,
		"failed_logins":    stats.FailedLogins,
		"unique_users":     stats.UniqueUsers,
	})
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
