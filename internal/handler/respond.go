// Package handler contains the HTTP endpoints. Handlers bind and validate
// requests, call services and translate domain errors to HTTP statuses.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/middleware"
	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
	"github.com/talenthub/competency-api/internal/service"
)

// userResp is the account shape returned to clients. The password hash never
// leaves the server.
type userResp struct {
	ID          uint64     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsVerified  bool       `json:"is_verified"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role,
		IsActive: u.IsActive, IsVerified: u.IsVerified,
		LastLoginAt: u.LastLoginAt, CreatedAt: u.CreatedAt,
	}
}

// pageResp wraps list responses with the total count for pagination.
type pageResp struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

// pageParams reads offset/limit query parameters with sane bounds.
func pageParams(c echo.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// metaFrom builds the audit meta for the current request.
func metaFrom(c echo.Context) service.Meta {
	return service.MetaFromRequest(c.Request(), middleware.GetRequestID(c))
}

// fail maps a service or repository error onto an HTTP response. Unmatched
// errors become opaque 500s; the detail goes to the log, not the client.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, repository.ErrNameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInactiveAccount):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRefresh):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrVerificationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrVerificationConsumed),
		errors.Is(err, service.ErrVerificationExpired),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrLevelRange),
		errors.Is(err, service.ErrSelfDelete),
		errors.Is(err, service.ErrSelfManager),
		errors.Is(err, service.ErrManagerNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return err
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
