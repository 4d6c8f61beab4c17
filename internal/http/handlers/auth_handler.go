package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Sessions *session.Manager
	Cart     *cart.Service
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := EnsureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok || !validate.Password(pass) {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password"})
	}

	u, err := h.Sessions.Login(c.UserContext(), sid, email, pass)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "error": api.Message(err)})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Login failed: " + api.Message(err)})
	}

	// Guest lines are dropped in favor of the account cart; sync failures
	// are logged only, the login itself stands.
	if _, err := h.Cart.Reconcile(c.UserContext(), h.Sessions.Get(sid)); err != nil {
		applog.Error(c, "cart.sync.fail", err, nil)
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	if u.Role == domain.RoleAdmin {
		return c.Redirect("/admin")
	}
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := EnsureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	name, okName := validate.Name(c.FormValue("name"))
	if _, ok := validate.Email(email); !ok || !okName || !validate.Password(pass) {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Check the form: valid email, name and a password of 8+ characters required"})
	}

	_, err := h.Sessions.Register(c.UserContext(), sid, email, pass, name, "")
	if err != nil {
		applog.Security(c, "auth.register.fail", map[string]any{"email": email, "error": api.Message(err)})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Registration failed: " + api.Message(err)})
	}

	if _, err := h.Cart.Reconcile(c.UserContext(), h.Sessions.Get(sid)); err != nil {
		applog.Error(c, "cart.sync.fail", err, nil)
	}

	applog.Audit(c, "auth.register.success", map[string]any{"email": email})
	return c.Redirect("/")
}

// Logout clears the local session even when the upstream invalidation
// fails; the failure is logged because it leaves the refresh cookie live.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := EnsureSID(c)
	if err := h.Sessions.Logout(c.UserContext(), sid); err != nil {
		applog.Error(c, "auth.logout.upstream_fail", err, map[string]any{"sid": sid})
	}
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	setNotice(c, "Logged out")
	return c.Redirect("/login")
}
