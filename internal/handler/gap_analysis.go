package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/middleware"
	"github.com/talenthub/competency-api/internal/service"
)

// GapHandler exposes the competency gap analysis.
type GapHandler struct {
	Gap  *service.GapService
	Auth *service.AuthService
}

func NewGapHandler(gap *service.GapService, auth *service.AuthService) *GapHandler {
	return &GapHandler{Gap: gap, Auth: auth}
}

// Analyze compares an employee's competencies against a career path. Access
// follows the read policy enforced by the service: admins see anyone,
// managers their reports, employees themselves.
func (h *GapHandler) Analyze(c echo.Context) error {
	employeeID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	careerPathID, err := pathID(c, "career_path_id")
	if err != nil {
		return err
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	actor, err := h.Auth.User(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}

	report, err := h.Gap.Analyze(c.Request().Context(), actor, employeeID, careerPathID, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
