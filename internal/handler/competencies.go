package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/middleware"
	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/service"
)

// CompetencyHandler exposes the competency catalog.
type CompetencyHandler struct {
	Competencies *service.CompetencyService
}

func NewCompetencyHandler(competencies *service.CompetencyService) *CompetencyHandler {
	return &CompetencyHandler{Competencies: competencies}
}

type competencyReq struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Category    *string `json:"category" validate:"omitempty,oneof=CORE LEAD FUNC"`
	Description *string `json:"description"`
}

type competencyResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCompetencyResp(m model.Competency) competencyResp {
	return competencyResp{ID: m.ID, Name: m.Name, Category: m.Category,
		Description: m.Description, CreatedAt: m.CreatedAt}
}

func (h *CompetencyHandler) Create(c echo.Context) error {
	var req competencyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	comp, err := h.Competencies.Create(c.Request().Context(), actorID, model.Competency{
		Name: req.Name, Category: req.Category, Description: req.Description,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toCompetencyResp(comp))
}

func (h *CompetencyHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req competencyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	comp, err := h.Competencies.Update(c.Request().Context(), actorID, model.Competency{
		ID: id, Name: req.Name, Category: req.Category, Description: req.Description,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toCompetencyResp(comp))
}

func (h *CompetencyHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actorID, _ := middleware.UserID(c)
	if err := h.Competencies.Delete(c.Request().Context(), actorID, id, metaFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CompetencyHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	comp, err := h.Competencies.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toCompetencyResp(comp))
}

func (h *CompetencyHandler) List(c echo.Context) error {
	offset, limit := pageParams(c)
	comps, total, err := h.Competencies.List(c.Request().Context(), c.QueryParam("category"), offset, limit)
	if err != nil {
		return fail(c, err)
	}
	items := make([]competencyResp, 0, len(comps))
	for _, m := range comps {
		items = append(items, toCompetencyResp(m))
	}
	return c.JSON(http.StatusOK, pageResp{Items: items, Total: total})
}
