package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/middleware"
	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/service"
)

// refreshCookieName is the HTTP-only cookie carrying the refresh token.
const refreshCookieName = "refresh_token"

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Auth         *service.AuthService
	CookieSecure bool
}

func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, CookieSecure: cookieSecure}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
}

type updateMeReq struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account with the lowest-privilege role. The caller
// logs in separately; registration returns no tokens.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	user, err := h.Auth.Register(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResp(user))
}

// Login verifies form-encoded credentials, sets the refresh cookie and
// returns the access token. The username field carries the email.
func (h *AuthHandler) Login(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("username")))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	}
	password := c.FormValue("password")
	if email == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	sess, err := h.Auth.Login(c.Request().Context(), email, password, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	h.setRefreshCookie(c, sess.Refresh.Raw, sess.RefreshTTL)
	return c.JSON(http.StatusOK, tokenResp{AccessToken: sess.Access.Token, TokenType: "bearer"})
}

// Refresh rotates the refresh cookie and mints a new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := h.refreshCookieValue(c)
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing refresh token"})
	}

	sess, err := h.Auth.Refresh(c.Request().Context(), raw, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	h.setRefreshCookie(c, sess.Refresh.Raw, sess.RefreshTTL)
	return c.JSON(http.StatusOK, tokenResp{AccessToken: sess.Access.Token, TokenType: "bearer"})
}

// Logout revokes the presented refresh token and clears the cookie. It
// succeeds even when the cookie is absent.
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Auth.Logout(c.Request().Context(), user, h.refreshCookieValue(c), metaFrom(c)); err != nil {
		return fail(c, err)
	}
	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(user))
}

// UpdateMe applies a self-service profile change.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	var req updateMeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	userID, _ := middleware.UserID(c)

	user, err := h.Auth.UpdateProfile(c.Request().Context(), userID, req.FullName, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(user))
}

// RequestVerification issues a fresh verification token for the caller and
// triggers the email send.
func (h *AuthHandler) RequestVerification(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	exp, err := h.Auth.RequestVerification(c.Request().Context(), user, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "verification email sent", "expires_at": exp})
}

// Verify consumes a verification token passed as a query parameter.
func (h *AuthHandler) Verify(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}
	user, err := h.Auth.ConsumeVerification(c.Request().Context(), token, metaFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified", "email": user.Email})
}

// currentUser loads the account behind the bearer token.
func (h *AuthHandler) currentUser(c echo.Context) (model.User, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return model.User{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return h.Auth.User(c.Request().Context(), userID)
}

func (h *AuthHandler) refreshCookieValue(c echo.Context) string {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, raw string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    raw,
		Path:     "/api/v1/auth",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
