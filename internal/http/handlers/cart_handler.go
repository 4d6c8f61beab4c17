package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	"storefront/internal/cart"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart     *cart.Service
	API      *api.Client
	Sessions *session.Manager
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	cv, err := h.Cart.View(c.UserContext(), sess)
	if err != nil {
		applog.Error(c, "cart.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))

	// The guest path snapshots the product into the local store, so the
	// product is resolved up front either way.
	p, err := h.API.GetProduct(c.UserContext(), productID)
	if err != nil || p.ID == "" {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}

	if _, err := h.Cart.Add(c.UserContext(), sess, p, qty); err != nil {
		// Display stays on the last consistent cart.
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": productID})
		setNotice(c, "Could not add to cart: "+api.Message(err))
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))
	if _, err := h.Cart.SetQuantity(c.UserContext(), sess, productID, qty); err != nil {
		applog.Error(c, "cart.update.fail", err, map[string]any{"product": productID})
		setNotice(c, "Could not update quantity: "+api.Message(err))
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if _, err := h.Cart.Remove(c.UserContext(), sess, productID); err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product": productID})
		setNotice(c, "Could not remove item: "+api.Message(err))
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	if err := h.Cart.Clear(c.UserContext(), sess); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		setNotice(c, "Could not clear the cart: "+api.Message(err))
	}
	return c.Redirect("/cart")
}
