package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

// ProductFilter mirrors the query params of GET /api/products. Zero values
// are omitted.
type ProductFilter struct {
	Search   string
	Category string
	Supplier string
	MinPrice string
	MaxPrice string
	Page     int
	Limit    int
}

func (f ProductFilter) values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("search", f.Search)
	set("category", f.Category)
	set("supplier", f.Supplier)
	set("minPrice", f.MinPrice)
	set("maxPrice", f.MaxPrice)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

type productPage struct {
	Docs  []domain.Product `json:"docs"`
	Pages int              `json:"pages"`
}

func (c *Client) ListProducts(ctx context.Context, ts TokenSource, f ProductFilter) ([]domain.Product, int, error) {
	var page productPage
	if err := c.Get(ctx, ts, "/api/products", f.values(), &page); err != nil {
		return nil, 0, err
	}
	return page.Docs, page.Pages, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := c.Get(ctx, nil, "/api/products/"+url.PathEscape(id), nil, &p)
	return p, err
}

// ProductForm is the multipart payload for product create/update. Image is
// optional; when nil only the scalar fields are sent.
type ProductForm struct {
	Name       string
	Price      float64
	Stock      int
	CategoryID string
	SupplierID string
	Image      io.Reader
	ImageName  string

	// Image is drained on the first encode, so the bytes are kept here and
	// replayed when doMultipart rebuilds the form for a 401 retry.
	imageData []byte
}

func (f *ProductForm) write(w *multipart.Writer) error {
	_ = w.WriteField("name", f.Name)
	_ = w.WriteField("price", strconv.FormatFloat(f.Price, 'f', -1, 64))
	_ = w.WriteField("stock", strconv.Itoa(f.Stock))
	_ = w.WriteField("category", f.CategoryID)
	_ = w.WriteField("supplier", f.SupplierID)
	if f.Image != nil {
		if f.imageData == nil {
			b, err := io.ReadAll(f.Image)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			f.imageData = b
		}
		part, err := w.CreateFormFile("image", f.ImageName)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.imageData); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) CreateProduct(ctx context.Context, ts TokenSource, f ProductForm) (domain.Product, error) {
	var p domain.Product
	err := c.doMultipart(ctx, ts, http.MethodPost, "/api/products", f.write, &p)
	return p, err
}

func (c *Client) UpdateProduct(ctx context.Context, ts TokenSource, id string, f ProductForm) (domain.Product, error) {
	var p domain.Product
	err := c.doMultipart(ctx, ts, http.MethodPut, "/api/products/"+url.PathEscape(id), f.write, &p)
	return p, err
}

func (c *Client) DeleteProduct(ctx context.Context, ts TokenSource, id string) error {
	return c.Delete(ctx, ts, "/api/products/"+url.PathEscape(id), nil)
}

type categoryPage struct {
	Docs  []domain.Category `json:"docs"`
	Pages int               `json:"pages"`
}

func (c *Client) ListCategories(ctx context.Context, ts TokenSource, page, limit int) ([]domain.Category, int, error) {
	var out categoryPage
	if err := c.Get(ctx, ts, "/api/categories", pageValues(page, limit), &out); err != nil {
		return nil, 0, err
	}
	return out.Docs, out.Pages, nil
}

type CategoryForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *Client) CreateCategory(ctx context.Context, ts TokenSource, f CategoryForm) (domain.Category, error) {
	var cat domain.Category
	err := c.Post(ctx, ts, "/api/categories", f, &cat)
	return cat, err
}

func (c *Client) UpdateCategory(ctx context.Context, ts TokenSource, id string, f CategoryForm) (domain.Category, error) {
	var cat domain.Category
	err := c.Put(ctx, ts, "/api/categories/"+url.PathEscape(id), f, &cat)
	return cat, err
}

func (c *Client) DeleteCategory(ctx context.Context, ts TokenSource, id string) error {
	return c.Delete(ctx, ts, "/api/categories/"+url.PathEscape(id), nil)
}

type supplierPage struct {
	Docs  []domain.Supplier `json:"docs"`
	Pages int               `json:"pages"`
}

func (c *Client) ListSuppliers(ctx context.Context, ts TokenSource, page, limit int) ([]domain.Supplier, int, error) {
	var out supplierPage
	if err := c.Get(ctx, ts, "/api/suppliers", pageValues(page, limit), &out); err != nil {
		return nil, 0, err
	}
	return out.Docs, out.Pages, nil
}

type SupplierForm struct {
	Name         string         `json:"name"`
	ContactEmail string         `json:"contactEmail"`
	ContactPhone string         `json:"contactPhone"`
	Address      domain.Address `json:"address"`
}

func (c *Client) CreateSupplier(ctx context.Context, ts TokenSource, f SupplierForm) (domain.Supplier, error) {
	var s domain.Supplier
	err := c.Post(ctx, ts, "/api/suppliers", f, &s)
	return s, err
}

func (c *Client) UpdateSupplier(ctx context.Context, ts TokenSource, id string, f SupplierForm) (domain.Supplier, error) {
	var s domain.Supplier
	err := c.Put(ctx, ts, "/api/suppliers/"+url.PathEscape(id), f, &s)
	return s, err
}

func (c *Client) DeleteSupplier(ctx context.Context, ts TokenSource, id string) error {
	return c.Delete(ctx, ts, "/api/suppliers/"+url.PathEscape(id), nil)
}

func pageValues(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
