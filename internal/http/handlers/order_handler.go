package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Cart     *cart.Service
	API      *api.Client
	Sessions *session.Manager
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	cv, err := h.Cart.View(c.UserContext(), sess)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	if len(cv.Items) == 0 {
		setNotice(c, "Your cart is empty")
		return c.Redirect("/cart")
	}
	return render(c, "checkout", fiber.Map{"Cart": cv})
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	ctx := c.UserContext()

	addr := domain.Address{
		Street:     strings.TrimSpace(c.FormValue("street")),
		City:       strings.TrimSpace(c.FormValue("city")),
		State:      strings.TrimSpace(c.FormValue("state")),
		PostalCode: strings.TrimSpace(c.FormValue("postalCode")),
		Country:    strings.TrimSpace(c.FormValue("country")),
	}
	if addr.Street == "" || addr.City == "" || addr.State == "" || addr.PostalCode == "" || addr.Country == "" {
		applog.Security(c, "validation.fail", map[string]any{"field": "shippingAddress"})
		return c.Status(fiber.StatusBadRequest).SendString("all shipping address fields are required")
	}

	cv, err := h.Cart.View(ctx, sess)
	if err != nil {
		applog.Error(c, "checkout.cart", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	if len(cv.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).SendString("cart is empty")
	}

	req := api.PlaceOrderRequest{ShippingAddress: addr}
	for _, it := range cv.Items {
		req.Items = append(req.Items, api.OrderItem{ProductID: it.Product.ID, Quantity: it.Quantity})
	}

	res, err := h.API.PlaceOrder(ctx, sess, req)
	if err != nil {
		applog.Error(c, "order.place.fail", err, nil)
		setNotice(c, "Checkout failed: "+api.Message(err))
		return c.Redirect("/checkout")
	}
	if !res.Payment.Success {
		applog.Security(c, "order.payment.fail", map[string]any{"error": res.Payment.Error})
		setNotice(c, "Payment failed: "+res.Payment.Error)
		return c.Redirect("/checkout")
	}

	if err := h.Cart.Clear(ctx, sess); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": res.Order.ID, "total": res.Order.Total})
	setNotice(c, "Order placed successfully")
	return c.Redirect("/orders")
}

// History lists the current user's orders.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	page := validate.Page(c.Query("page"))
	orders, pages, err := h.API.OrderHistory(c.UserContext(), sess, page, 10)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "orders", fiber.Map{"Orders": orders, "Page": page, "Pages": pages})
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	if err := h.API.DeleteOrder(c.UserContext(), sess, id); err != nil {
		applog.Error(c, "orders.delete.fail", err, map[string]any{"order_id": id})
		setNotice(c, "Could not delete order: "+api.Message(err))
	} else {
		applog.Audit(c, "orders.delete", map[string]any{"order_id": id})
	}
	return c.Redirect("/orders")
}

// Payments lists the current user's payment history.
func (h *OrderHandler) Payments(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	page := validate.Page(c.Query("page"))
	payments, pages, err := h.API.ListPayments(c.UserContext(), sess, page, 10)
	if err != nil {
		applog.Error(c, "payments.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load payments"})
	}
	return render(c, "payments", fiber.Map{"Payments": payments, "Page": page, "Pages": pages})
}
