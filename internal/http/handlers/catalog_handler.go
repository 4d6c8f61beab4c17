package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

type CatalogHandler struct {
	API *api.Client
}

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	products, _, err := h.API.ListProducts(c.UserContext(), nil, api.ProductFilter{Limit: 8})
	if err != nil {
		applog.Error(c, "home.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the store. Please retry."})
	}
	return render(c, "home", fiber.Map{"Products": products})
}

// List renders the product catalog with search/category/supplier/price
// filters and page-driven pagination.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	filter := api.ProductFilter{
		Search: c.Query("search"),
		Page:   validate.Page(c.Query("page")),
		Limit:  10,
	}
	if cat := c.Query("category"); cat != "" {
		if id, ok := validate.ID(cat); ok {
			filter.Category = id
		}
	}
	if sup := c.Query("supplier"); sup != "" {
		if id, ok := validate.ID(sup); ok {
			filter.Supplier = id
		}
	}
	if p, ok := validate.Price(c.Query("minPrice")); ok {
		filter.MinPrice = p
	}
	if p, ok := validate.Price(c.Query("maxPrice")); ok {
		filter.MaxPrice = p
	}

	ctx := c.UserContext()
	products, pages, err := h.API.ListProducts(ctx, nil, filter)
	if err != nil {
		applog.Error(c, "products.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products. Please retry."})
	}
	categories, _, err := h.API.ListCategories(ctx, nil, 0, 0)
	if err != nil {
		applog.Error(c, "categories.load", err, nil)
		categories = nil
	}
	suppliers, _, err := h.API.ListSuppliers(ctx, nil, 0, 0)
	if err != nil {
		applog.Error(c, "suppliers.load", err, nil)
		suppliers = nil
	}

	return render(c, "products", fiber.Map{
		"Products":   products,
		"Categories": categories,
		"Suppliers":  suppliers,
		"Filter":     filter,
		"Page":       filter.Page,
		"Pages":      pages,
	})
}

func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	p, err := h.API.GetProduct(c.UserContext(), id)
	if err != nil || p.ID == "" {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	return render(c, "product", fiber.Map{"P": p})
}
