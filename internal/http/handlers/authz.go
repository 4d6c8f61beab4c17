package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/session"
)

// RequireUser gates a route on an authenticated session; otherwise redirect
// to login.
func RequireUser(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := currentSession(c, m)
		if !sess.Authenticated() {
			return c.Redirect("/login")
		}
		c.Locals("user", sess.User())
		return c.Next()
	}
}

// RequireAdmin additionally checks the admin role.
func RequireAdmin(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := currentSession(c, m)
		u := sess.User()
		if u == nil || !sess.Authenticated() {
			return c.Redirect("/login")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}
