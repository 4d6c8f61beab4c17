package api

import (
	"context"
	"net/http"

	"storefront/internal/domain"
)

// LoginResult is the payload of /api/users/login and /register. The
// refresh cookie rides alongside it into the session's jar.
type LoginResult struct {
	User        domain.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

func (c *Client) Login(ctx context.Context, jar http.CookieJar, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res LoginResult
	err := c.doWithJar(ctx, jar, http.MethodPost, "/api/users/login", body, &res)
	return res, err
}

func (c *Client) Register(ctx context.Context, jar http.CookieJar, email, password, name, role string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	if role != "" {
		body["role"] = role
	}
	var res LoginResult
	err := c.doWithJar(ctx, jar, http.MethodPost, "/api/users/register", body, &res)
	return res, err
}

// RefreshToken exchanges the session's refresh cookie for a new access
// token. Callers go through session.Session.Refresh, which single-flights
// this call.
func (c *Client) RefreshToken(ctx context.Context, jar http.CookieJar) (string, error) {
	var res struct {
		AccessToken string `json:"accessToken"`
	}
	err := c.doWithJar(ctx, jar, http.MethodPost, "/api/users/refresh-token", map[string]string{}, &res)
	return res.AccessToken, err
}

// Logout invalidates the refresh cookie upstream.
func (c *Client) Logout(ctx context.Context, jar http.CookieJar) error {
	return c.doWithJar(ctx, jar, http.MethodPost, "/api/users/logout", map[string]string{}, nil)
}

func (c *Client) Me(ctx context.Context, ts TokenSource) (domain.User, error) {
	var u domain.User
	err := c.Get(ctx, ts, "/api/users/me", nil, &u)
	return u, err
}

// doWithJar sends a cookie-authenticated request. No bearer token and no
// 401 retry: these are the refresh path itself.
func (c *Client) doWithJar(ctx context.Context, jar http.CookieJar, method, path string, body, out any) error {
	cl := &Client{BaseURL: c.BaseURL, HTTP: c.withJar(jar)}
	return cl.do(ctx, nil, method, path, nil, body, out)
}
