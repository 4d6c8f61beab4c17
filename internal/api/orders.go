package api

import (
	"context"
	"net/url"

	"storefront/internal/domain"
)

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderRequest struct {
	Items           []OrderItem    `json:"items"`
	ShippingAddress domain.Address `json:"shippingAddress"`
}

// PaymentOutcome reports the gateway-side payment result of a placed order.
type PaymentOutcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type PlaceOrderResult struct {
	Order   domain.Order   `json:"order"`
	Payment PaymentOutcome `json:"payment"`
}

func (c *Client) PlaceOrder(ctx context.Context, ts TokenSource, req PlaceOrderRequest) (PlaceOrderResult, error) {
	var res PlaceOrderResult
	err := c.Post(ctx, ts, "/api/orders", req, &res)
	return res, err
}

type orderPage struct {
	Docs  []domain.Order `json:"docs"`
	Pages int            `json:"pages"`
}

// OrderHistory lists the calling customer's own orders.
func (c *Client) OrderHistory(ctx context.Context, ts TokenSource, page, limit int) ([]domain.Order, int, error) {
	var out orderPage
	if err := c.Get(ctx, ts, "/api/orders/history", pageValues(page, limit), &out); err != nil {
		return nil, 0, err
	}
	return out.Docs, out.Pages, nil
}

// ListOrders lists all orders (admin).
func (c *Client) ListOrders(ctx context.Context, ts TokenSource, page, limit int) ([]domain.Order, int, error) {
	var out orderPage
	if err := c.Get(ctx, ts, "/api/orders", pageValues(page, limit), &out); err != nil {
		return nil, 0, err
	}
	return out.Docs, out.Pages, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, ts TokenSource, id, status string) (domain.Order, error) {
	var o domain.Order
	err := c.Put(ctx, ts, "/api/orders/"+url.PathEscape(id)+"/status", map[string]string{"status": status}, &o)
	return o, err
}

func (c *Client) DeleteOrder(ctx context.Context, ts TokenSource, id string) error {
	return c.Delete(ctx, ts, "/api/orders/"+url.PathEscape(id), nil)
}

type paymentPage struct {
	Docs  []domain.Payment `json:"docs"`
	Pages int              `json:"pages"`
}

func (c *Client) ListPayments(ctx context.Context, ts TokenSource, page, limit int) ([]domain.Payment, int, error) {
	var out paymentPage
	if err := c.Get(ctx, ts, "/api/payments", pageValues(page, limit), &out); err != nil {
		return nil, 0, err
	}
	return out.Docs, out.Pages, nil
}

func (c *Client) GetCustomer(ctx context.Context, ts TokenSource, id string) (domain.Profile, error) {
	var p domain.Profile
	err := c.Get(ctx, ts, "/api/customers/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (c *Client) UpdateCustomer(ctx context.Context, ts TokenSource, p domain.Profile) (domain.Profile, error) {
	var out domain.Profile
	err := c.Put(ctx, ts, "/api/customers", p, &out)
	return out, err
}

// Analytics fetches the admin sales rollup for a preset window:
// today, thisWeek, thisMonth or thisYear.
func (c *Client) Analytics(ctx context.Context, ts TokenSource, preset string) (domain.Analytics, error) {
	q := url.Values{}
	if preset != "" {
		q.Set("preset", preset)
	}
	var a domain.Analytics
	err := c.Get(ctx, ts, "/api/admin/analytics", q, &a)
	return a, err
}
