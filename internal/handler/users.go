package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/middleware"
	"github.com/talenthub/competency-api/internal/repository"
	"github.com/talenthub/competency-api/internal/service"
)

// UserHandler exposes the admin-side account management endpoints.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

type createUserReq struct {
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	FullName   string  `json:"full_name" validate:"required,min=1,max=255"`
	Role       string  `json:"role" validate:"required,oneof=admin manager employee"`
	IsActive   *bool   `json:"is_active"`
	Department *string `json:"department" validate:"omitempty,max=255"`
	JobTitle   *string `json:"job_title" validate:"omitempty,max=255"`
	ManagerID  *uint64 `json:"manager_id"`
}

type updateUserReq struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin manager employee"`
	IsActive *bool   `json:"is_active"`
}

// Create provisions an account with an explicit role.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	user, err := h.Users.Create(c.Request().Context(), actorID, service.CreateInput{
		Email: req.Email, Password: req.Password, FullName: req.FullName,
		Role: req.Role, IsActive: req.IsActive,
		Department: req.Department, JobTitle: req.JobTitle, ManagerID: req.ManagerID,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResp(user))
}

// Update applies a partial account change.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actorID, _ := middleware.UserID(c)

	user, err := h.Users.Update(c.Request().Context(), actorID, id, service.UpdateInput{
		Email: req.Email, Password: req.Password, FullName: req.FullName,
		Role: req.Role, IsActive: req.IsActive,
	}, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(user))
}

// Delete removes an account.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actorID, _ := middleware.UserID(c)
	if err := h.Users.Delete(c.Request().Context(), actorID, id, metaFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get returns a single account.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.Users.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(user))
}

// List pages through accounts with optional role/active/search filters.
func (h *UserHandler) List(c echo.Context) error {
	f := repository.UserFilter{
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
	}
	f.Offset, f.Limit = pageParams(c)
	switch c.QueryParam("is_active") {
	case "true":
		v := true
		f.IsActive = &v
	case "false":
		v := false
		f.IsActive = &v
	}

	users, total, err := h.Users.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, err)
	}
	items := make([]userResp, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResp(u))
	}
	return c.JSON(http.StatusOK, pageResp{Items: items, Total: total})
}
