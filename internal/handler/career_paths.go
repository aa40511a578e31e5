package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/middleware"
	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/service"
)

// CareerPathHandler exposes career paths and their requirements.
type CareerPathHandler struct {
	Paths *service.CareerPathService
}

func NewCareerPathHandler(paths *service.CareerPathService) *CareerPathHandler {
	return &CareerPathHandler{Paths: paths}
}

type careerPathReq struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
}

type careerPathResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCareerPathResp(p model.CareerPath) careerPathResp {
	return careerPathResp{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt}
}

type requirementReq struct {
	CompetencyID  uint64 `json:"competency_id" validate:"required"`
	RequiredLevel int    `json:"required_level" validate:"required,min=1,max=5"`
}

type requirementResp struct {
	CompetencyID  uint64 `json:"competency_id"`
	RequiredLevel int    `json:"required_level"`
}

func (h *CareerPathHandler) Create(c echo.Context) error {
	var req careerPathReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	path, err := h.Paths.Create(c.Request().Context(), actorID, model.CareerPath{
		Name: req.Name, Description: req.Description,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toCareerPathResp(path))
}

func (h *CareerPathHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req careerPathReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	path, err := h.Paths.Update(c.Request().Context(), actorID, model.CareerPath{
		ID: id, Name: req.Name, Description: req.Description,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toCareerPathResp(path))
}

func (h *CareerPathHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actorID, _ := middleware.UserID(c)
	if err := h.Paths.Delete(c.Request().Context(), actorID, id, metaFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CareerPathHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	path, err := h.Paths.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toCareerPathResp(path))
}

func (h *CareerPathHandler) List(c echo.Context) error {
	offset, limit := pageParams(c)
	paths, total, err := h.Paths.List(c.Request().Context(), offset, limit)
	if err != nil {
		return fail(c, err)
	}
	items := make([]careerPathResp, 0, len(paths))
	for _, p := range paths {
		items = append(items, toCareerPathResp(p))
	}
	return c.JSON(http.StatusOK, pageResp{Items: items, Total: total})
}

// SetRequirement attaches or re-levels a required competency on the path.
func (h *CareerPathHandler) SetRequirement(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req requirementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	err = h.Paths.SetRequirement(c.Request().Context(), actorID, model.CareerPathCompetency{
		CareerPathID: id, CompetencyID: req.CompetencyID, RequiredLevel: req.RequiredLevel,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, requirementResp{CompetencyID: req.CompetencyID, RequiredLevel: req.RequiredLevel})
}

// RemoveRequirement detaches a required competency from the path.
func (h *CareerPathHandler) RemoveRequirement(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	compID, err := pathID(c, "competency_id")
	if err != nil {
		return err
	}
	actorID, _ := middleware.UserID(c)
	if err := h.Paths.RemoveRequirement(c.Request().Context(), actorID, id, compID, metaFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Requirements lists the path's required competencies.
func (h *CareerPathHandler) Requirements(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	links, err := h.Paths.Requirements(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	items := make([]requirementResp, 0, len(links))
	for _, l := range links {
		items = append(items, requirementResp{CompetencyID: l.CompetencyID, RequiredLevel: l.RequiredLevel})
	}
	return c.JSON(http.StatusOK, items)
}
