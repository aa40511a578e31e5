// Package router wires handlers, middleware and route groups onto the Echo
// instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talenthub/competency-api/internal/config"
	"github.com/talenthub/competency-api/internal/handler"
	"github.com/talenthub/competency-api/internal/middleware"
	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/ratelimit"
)

// Deps bundles everything the routes need.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Limiter   *ratelimit.Limiter
	Rates     config.RateLimitConfig

	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Employees    *handler.EmployeeHandler
	Competencies *handler.CompetencyHandler
	CareerPaths  *handler.CareerPathHandler
	Gap          *handler.GapHandler
	Audit        *handler.AuditHandler
}

// Register mounts all routes. The API lives under /api/v1; health and
// metrics sit at the root for infrastructure scrapers.
func Register(e *echo.Echo, d Deps) {
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog())

	e.GET("/healthz", handler.Health(d.DB))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	// Unauthenticated auth endpoints. Login carries the strictest rate rule.
	pub := api.Group("/auth")
	pub.POST("/register", d.Auth.Register)
	pub.POST("/login", d.Auth.Login,
		middleware.RateLimit(d.Limiter, "login", d.Rates.Login, d.Rates.Enabled))
	pub.POST("/refresh", d.Auth.Refresh)
	pub.GET("/verify", d.Auth.Verify)

	// Authenticated auth endpoints, any role.
	me := api.Group("/auth", middleware.JWTAuth(d.JWTSecret))
	me.GET("/me", d.Auth.Me)
	me.PUT("/me", d.Auth.UpdateMe)
	me.POST("/logout", d.Auth.Logout)
	me.POST("/verify/request", d.Auth.RequestVerification,
		middleware.RateLimit(d.Limiter, "verify_request", d.Rates.VerifyRequest, d.Rates.Enabled))

	authed := api.Group("", middleware.JWTAuth(d.JWTSecret))
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	managerUp := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	// Account management: admin only. Creation has its own rate rule.
	users := authed.Group("/users", adminOnly)
	users.POST("", d.Users.Create,
		middleware.RateLimit(d.Limiter, "user_create", d.Rates.UserCreate, d.Rates.Enabled))
	users.GET("", d.Users.List)
	users.GET("/:id", d.Users.Get)
	users.PUT("/:id", d.Users.Update)
	users.DELETE("/:id", d.Users.Delete)

	// Employee profiles: reads for all roles, writes for managers and admins.
	emps := authed.Group("/employees")
	emps.GET("", d.Employees.List)
	emps.GET("/me", d.Employees.Me)
	emps.GET("/:id", d.Employees.Get)
	emps.GET("/:id/competencies", d.Employees.Competencies)
	emps.POST("", d.Employees.Create, managerUp)
	emps.PUT("/:id", d.Employees.Update, managerUp)
	emps.DELETE("/:id", d.Employees.Delete, adminOnly)
	emps.POST("/:id/competencies", d.Employees.SetCompetency, managerUp)
	emps.DELETE("/:id/competencies/:competency_id", d.Employees.RemoveCompetency, managerUp)
	// Gap analysis reads are authorized inside the service: the actor must
	// be an admin, the employee, or the employee's direct manager.
	authed.GET("/gap-analysis/employee/:id/career-path/:career_path_id", d.Gap.Analyze)

	// Competency catalog: reads for all roles, writes for managers and admins.
	comps := authed.Group("/competencies")
	comps.GET("", d.Competencies.List)
	comps.GET("/:id", d.Competencies.Get)
	comps.POST("", d.Competencies.Create, managerUp)
	comps.PUT("/:id", d.Competencies.Update, managerUp)
	comps.DELETE("/:id", d.Competencies.Delete, adminOnly)

	// Career paths: same split.
	paths := authed.Group("/career-paths")
	paths.GET("", d.CareerPaths.List)
	paths.GET("/:id", d.CareerPaths.Get)
	paths.GET("/:id/competencies", d.CareerPaths.Requirements)
	paths.POST("", d.CareerPaths.Create, managerUp)
	paths.PUT("/:id", d.CareerPaths.Update, managerUp)
	paths.DELETE("/:id", d.CareerPaths.Delete, adminOnly)
	paths.POST("/:id/competencies", d.CareerPaths.SetRequirement, managerUp)
	paths.DELETE("/:id/competencies/:competency_id", d.CareerPaths.RemoveRequirement, managerUp)

	// Audit trail: admin only, read only.
	audit := authed.Group("/audit-logs", adminOnly)
	audit.GET("", d.Audit.List)
	audit.GET("/actions/list", d.Audit.Actions)
	audit.GET("/stats/summary", d.Audit.Stats)
	audit.GET("/:id", d.Audit.Get)
}
