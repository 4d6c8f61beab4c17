package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type AdminHandler struct {
	API      *api.Client
	Sessions *session.Manager
}

// Dashboard renders the analytics rollup plus the managed collections.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	ctx := c.UserContext()

	preset, ok := validate.Preset(c.Query("preset"))
	if !ok {
		preset = "today"
	}
	analytics, err := h.API.Analytics(ctx, sess, preset)
	if err != nil {
		applog.Error(c, "admin.analytics.fail", err, nil)
	}
	categories, _, err := h.API.ListCategories(ctx, sess, 0, 0)
	if err != nil {
		applog.Error(c, "admin.categories.fail", err, nil)
	}
	suppliers, _, err := h.API.ListSuppliers(ctx, sess, 0, 0)
	if err != nil {
		applog.Error(c, "admin.suppliers.fail", err, nil)
	}
	products, pages, err := h.API.ListProducts(ctx, sess, api.ProductFilter{Page: validate.Page(c.Query("page")), Limit: 10})
	if err != nil {
		applog.Error(c, "admin.products.fail", err, nil)
	}

	return render(c, "admin_dashboard", fiber.Map{
		"Preset":     preset,
		"Analytics":  analytics,
		"Categories": categories,
		"Suppliers":  suppliers,
		"Products":   products,
		"Pages":      pages,
	})
}

// ---------- Categories ----------

func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid name")
	}
	f := api.CategoryForm{Name: name, Description: strings.TrimSpace(c.FormValue("description"))}
	if _, err := h.API.CreateCategory(c.UserContext(), sess, f); err != nil {
		applog.Error(c, "admin.category.create.fail", err, nil)
		setNotice(c, "Could not create category: "+api.Message(err))
	} else {
		applog.Audit(c, "admin.category.create", map[string]any{"name": name})
	}
	return c.Redirect("/admin")
}

func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid name")
	}
	f := api.CategoryForm{Name: name, Description: strings.TrimSpace(c.FormValue("description"))}
	if _, err := h.API.UpdateCategory(c.UserContext(), sess, id, f); err != nil {
		applog.Error(c, "admin.category.update.fail", err, map[string]any{"category_id": id})
		setNotice(c, "Could not update category: "+api.Message(err))
	} else {
		applog.Audit(c, "admin.category.update", map[string]any{"category_id": id})
	}
	return c.Redirect("/admin")
}

func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	return h.deleteResource(c, "category", h.API.DeleteCategory)
}

// ---------- Suppliers ----------

func supplierFormFrom(c *fiber.Ctx) api.SupplierForm {
	return api.SupplierForm{
		Name:         strings.TrimSpace(c.FormValue("name")),
		ContactEmail: strings.TrimSpace(c.FormValue("contactEmail")),
		ContactPhone: strings.TrimSpace(c.FormValue("contactPhone")),
		Address: domain.Address{
			Street:     strings.TrimSpace(c.FormValue("street")),
			City:       strings.TrimSpace(c.FormValue("city")),
			State:      strings.TrimSpace(c.FormValue("state")),
			PostalCode: strings.TrimSpace(c.FormValue("postalCode")),
			Country:    strings.TrimSpace(c.FormValue("country")),
		},
	}
}

func (h *AdminHandler) CreateSupplier(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	f := supplierFormFrom(c)
	if _, ok := validate.Name(f.Name); !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid name")
	}
	if _, ok := validate.Email(f.ContactEmail); !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid contact email")
	}
	if _, err := h.API.CreateSupplier(c.UserContext(), sess, f); err != nil {
		applog.Error(c, "admin.supplier.create.fail", err, nil)
		setNotice(c, "Could not create supplier: "+api.Message(err))
	} else {
		applog.Audit(c, "admin.supplier.create", map[string]any{"name": f.Name})
	}
	return c.Redirect("/admin")
}

func (h *AdminHandler) UpdateSupplier(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	f := supplierFormFrom(c)
	if _, ok := validate.Name(f.Name); !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid name")
	}
	if _, err := h.API.UpdateSupplier(c.UserContext(), sess, id, f); err != nil {
		applog.Error(c, "admin.supplier.update.fail", err, map[string]any{"supplier_id": id})
		setNotice(c, "Could not update supplier: "+api.Message(err))
	} else {
		applog.Audit(c, "admin.supplier.update", map[string]any{"supplier_id": id})
	}
	return c.Redirect("/admin")
}

func (h *AdminHandler) DeleteSupplier(c *fiber.Ctx) error {
	return h.deleteResource(c, "supplier", h.API.DeleteSupplier)
}

// ---------- Products ----------

func (h *AdminHandler) productFormFrom(c *fiber.Ctx) (api.ProductForm, bool) {
	name, okName := validate.Name(c.FormValue("name"))
	price, errPrice := strconv.ParseFloat(strings.TrimSpace(c.FormValue("price")), 64)
	stock, errStock := strconv.Atoi(strings.TrimSpace(c.FormValue("stock")))
	catID, okCat := validate.ID(c.FormValue("category"))
	supID, okSup := validate.ID(c.FormValue("supplier"))
	if !okName || !okCat || !okSup || errPrice != nil || price < 0 || errStock != nil || stock < 0 {
		return api.ProductForm{}, false
	}

	f := api.ProductForm{Name: name, Price: price, Stock: stock, CategoryID: catID, SupplierID: supID}
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		if file, err := fh.Open(); err == nil {
			f.Image = file
			f.ImageName = fh.Filename
		}
	}
	return f, true
}

func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	f, ok := h.productFormFrom(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid product form")
	}
	if _, err := h.API.CreateProduct(c.UserContext(), sess, f); err != nil {
		applog.Error(c, "admin.product.create.fail", err, nil)
		setNotice(c, "Could not create product: "+api.Message(err))
	} else {
		applog.Audit(c, "admin.product.create", map[string]any{"name": f.Name})
	}
	return c.Redirect("/admin")
}

func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	f, ok := h.productFormFrom(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid product form")
	}
	if _, err := h.API.UpdateProduct(c.UserContext(), sess, id, f); err != nil {
		applog.Error(c, "admin.product.update.fail", err, map[string]any{"product_id": id})
		setNotice(c, "Could not update product: "+api.Message(err))
	} else {
		applog.Audit(c, "admin.product.update", map[string]any{"product_id": id})
	}
	return c.Redirect("/admin")
}

func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	return h.deleteResource(c, "product", h.API.DeleteProduct)
}

// ---------- Orders ----------

func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	page := validate.Page(c.Query("page"))
	orders, pages, err := h.API.ListOrders(c.UserContext(), sess, page, 10)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "admin_orders", fiber.Map{"Orders": orders, "Page": page, "Pages": pages})
}

func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	status, ok := validate.Status(c.FormValue("status"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid status")
	}
	if _, err := h.API.UpdateOrderStatus(c.UserContext(), sess, id, status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		setNotice(c, "Could not update status: "+api.Message(err))
	} else {
		applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	}
	return c.Redirect("/admin/orders")
}

func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	sess := currentSession(c, h.Sessions)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	if err := h.API.DeleteOrder(c.UserContext(), sess, id); err != nil {
		applog.Error(c, "admin.orders.delete.fail", err, map[string]any{"order_id": id})
		setNotice(c, "Could not delete order: "+api.Message(err))
	} else {
		applog.Audit(c, "admin.orders.delete", map[string]any{"order_id": id})
	}
	return c.Redirect("/admin/orders")
}

func (h *AdminHandler) deleteResource(c *fiber.Ctx, kind string, del func(ctx context.Context, ts api.TokenSource, id string) error) error {
	sess := currentSession(c, h.Sessions)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	if err := del(c.UserContext(), sess, id); err != nil {
		applog.Error(c, "admin."+kind+".delete.fail", err, map[string]any{"id": id})
		setNotice(c, "Could not delete "+kind+": "+api.Message(err))
	} else {
		applog.Audit(c, "admin."+kind+".delete", map[string]any{"id": id})
	}
	return c.Redirect("/admin")
}
