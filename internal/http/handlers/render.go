package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storefront/internal/session"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	}
	if raw := c.Cookies("notice"); raw != "" {
		if notice, err := url.QueryUnescape(raw); err == nil && notice != "" {
			data["Notice"] = notice
		}
		clearNotice(c)
	}
	return c.Render(tmpl, data)
}

// EnsureSID returns the browser's session id cookie, minting one on first
// contact.
func EnsureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // set true behind HTTPS
		})
	}
	return sid
}

func currentSession(c *fiber.Ctx, m *session.Manager) *session.Session {
	return m.Get(EnsureSID(c))
}

// setNotice stores a one-shot banner message shown on the next render.
// The value is query-escaped: notice text carries spaces and punctuation
// that are not legal in a raw cookie-value.
func setNotice(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     "notice",
		Value:    url.QueryEscape(msg),
		Path:     "/",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearNotice(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:    "notice",
		Value:   "",
		Path:    "/",
		Expires: time.Now().Add(-1 * time.Hour),
	})
}
