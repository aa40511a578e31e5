package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/middleware"
	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/service"
)

// EmployeeHandler exposes employee profiles and their competency links.
type EmployeeHandler struct {
	Employees *service.EmployeeService
}

func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{Employees: employees}
}

type employeeReq struct {
	UserID     uint64  `json:"user_id" validate:"required"`
	Department *string `json:"department" validate:"omitempty,max=255"`
	JobTitle   *string `json:"job_title" validate:"omitempty,max=255"`
	ManagerID  *uint64 `json:"manager_id"`
}

type employeeResp struct {
	ID         uint64  `json:"id"`
	UserID     uint64  `json:"user_id"`
	Department *string `json:"department"`
	JobTitle   *string `json:"job_title"`
	ManagerID  *uint64 `json:"manager_id"`
}

func toEmployeeResp(e model.Employee) employeeResp {
	return employeeResp{ID: e.ID, UserID: e.UserID, Department: e.Department,
		JobTitle: e.JobTitle, ManagerID: e.ManagerID}
}

type competencyLinkReq struct {
	CompetencyID     uint64 `json:"competency_id" validate:"required"`
	ProficiencyLevel int    `json:"proficiency_level" validate:"required,min=1,max=5"`
}

type competencyLinkResp struct {
	CompetencyID     uint64 `json:"competency_id"`
	ProficiencyLevel int    `json:"proficiency_level"`
}

func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	emp, err := h.Employees.Create(c.Request().Context(), actorID, model.Employee{
		UserID: req.UserID, Department: req.Department, JobTitle: req.JobTitle, ManagerID: req.ManagerID,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toEmployeeResp(emp))
}

func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	actorID, _ := middleware.UserID(c)

	emp, err := h.Employees.Update(c.Request().Context(), actorID, model.Employee{
		ID: id, Department: req.Department, JobTitle: req.JobTitle, ManagerID: req.ManagerID,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toEmployeeResp(emp))
}

func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actorID, _ := middleware.UserID(c)
	if err := h.Employees.Delete(c.Request().Context(), actorID, id, metaFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	emp, err := h.Employees.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toEmployeeResp(emp))
}

// Me returns the employee profile owned by the authenticated account.
func (h *EmployeeHandler) Me(c echo.Context) error {
	userID, _ := middleware.UserID(c)
	emp, err := h.Employees.GetByUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toEmployeeResp(emp))
}

func (h *EmployeeHandler) List(c echo.Context) error {
	offset, limit := pageParams(c)
	emps, total, err := h.Employees.List(c.Request().Context(), offset, limit)
	if err != nil {
		return fail(c, err)
	}
	items := make([]employeeResp, 0, len(emps))
	for _, e := range emps {
		items = append(items, toEmployeeResp(e))
	}
	return c.JSON(http.StatusOK, pageResp{Items: items, Total: total})
}

// SetCompetency attaches or re-levels a competency on an employee.
func (h *EmployeeHandler) SetCompetency(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req competencyLinkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	err = h.Employees.SetCompetency(c.Request().Context(), actorID, model.EmployeeCompetency{
		EmployeeID: id, CompetencyID: req.CompetencyID, ProficiencyLevel: req.ProficiencyLevel,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, competencyLinkResp{
		CompetencyID: req.CompetencyID, ProficiencyLevel: req.ProficiencyLevel,
	})
}

// RemoveCompetency detaches a competency from an employee.
func (h *EmployeeHandler) RemoveCompetency(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	compID, err := pathID(c, "competency_id")
	if err != nil {
		return err
	}
	actorID, _ := middleware.UserID(c)
	if err := h.Employees.RemoveCompetency(c.Request().Context(), actorID, id, compID, metaFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Competencies lists an employee's competency links.
func (h *EmployeeHandler) Competencies(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	links, err := h.Employees.Competencies(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	items := make([]competencyLinkResp, 0, len(links))
	for _, l := range links {
		items = append(items, competencyLinkResp{CompetencyID: l.CompetencyID, ProficiencyLevel: l.ProficiencyLevel})
	}
	return c.JSON(http.StatusOK, items)
}
