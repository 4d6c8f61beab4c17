package api

import (
	"context"
	"net/url"

	"storefront/internal/domain"
)

type cartResponse struct {
	Items []domain.CartItem `json:"items"`
}

// FetchCart returns the authoritative server-side cart.
func (c *Client) FetchCart(ctx context.Context, ts TokenSource) ([]domain.CartItem, error) {
	var res cartResponse
	if err := c.Get(ctx, ts, "/api/cart", nil, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Client) AddCartItem(ctx context.Context, ts TokenSource, productID string, quantity int) ([]domain.CartItem, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}
	var res cartResponse
	if err := c.Post(ctx, ts, "/api/cart", body, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, ts TokenSource, productID string, quantity int) ([]domain.CartItem, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}
	var res cartResponse
	if err := c.Put(ctx, ts, "/api/cart/item", body, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, ts TokenSource, productID string) ([]domain.CartItem, error) {
	var res cartResponse
	if err := c.Delete(ctx, ts, "/api/cart/item/"+url.PathEscape(productID), &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Client) ClearCart(ctx context.Context, ts TokenSource) error {
	return c.Delete(ctx, ts, "/api/cart/clear", nil)
}
