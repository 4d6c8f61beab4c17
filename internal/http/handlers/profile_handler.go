package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type ProfileHandler struct {
	API      *api.Client
	Sessions *session.Manager
}

func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	u := sess.User()
	if u == nil {
		// The sweeper can clear the session between the auth check and
		// here when a refresh fails.
		return c.Redirect("/login")
	}
	p, err := h.API.GetCustomer(c.UserContext(), sess, u.ID)
	if err != nil {
		applog.Error(c, "profile.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your profile"})
	}
	return render(c, "profile", fiber.Map{"Profile": p})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	u := sess.User()
	if u == nil {
		return c.Redirect("/login")
	}

	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": "Name must be 1-50 characters"})
	}
	p := domain.Profile{
		ID:    u.ID,
		Name:  name,
		Email: u.Email,
		Phone: strings.TrimSpace(c.FormValue("phone")),
		Address: domain.Address{
			Street:     strings.TrimSpace(c.FormValue("street")),
			City:       strings.TrimSpace(c.FormValue("city")),
			State:      strings.TrimSpace(c.FormValue("state")),
			PostalCode: strings.TrimSpace(c.FormValue("postalCode")),
			Country:    strings.TrimSpace(c.FormValue("country")),
		},
	}

	if _, err := h.API.UpdateCustomer(c.UserContext(), sess, p); err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		setNotice(c, "Could not save profile: "+api.Message(err))
	} else {
		applog.Audit(c, "profile.update", map[string]any{"user_id": u.ID})
		setNotice(c, "Profile saved")
	}
	return c.Redirect("/profile")
}
