package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/speakerhub/frontend/internal/session"
)

// RequireLogin redirects anonymous visitors to the sign-in page.
func RequireLogin(sess *session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sess.CurrentUser() == nil {
				return c.Redirect(http.StatusSeeOther, "/auth")
			}
			return next(c)
		}
	}
}

// AdminOnly rejects non-admin users. Anonymous visitors are sent to sign in
// first, everyone else gets a 403.
func AdminOnly(sess *session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := sess.CurrentUser()
			if user == nil {
				return c.Redirect(http.StatusSeeOther, "/auth")
			}
			if !user.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}
