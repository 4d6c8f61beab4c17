// Package api is the upstream REST client. Every outbound call in the
// gateway goes through Client: it attaches bearer tokens, decodes the
// server's {message} error payloads and, for authenticated requests that
// come back 401, performs exactly one refresh-and-retry cycle through the
// caller's TokenSource before giving up.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// TokenSource supplies the bearer token for authenticated calls and mints
// a replacement after a 401. Refresh is expected to be single-flight:
// concurrent callers share one underlying refresh call.
type TokenSource interface {
	Token() string
	Refresh(ctx context.Context) (string, error)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
	}
}

// do issues one request and decodes the JSON response into out (if non-nil).
// A 401 on an authenticated request triggers one refresh via ts and one
// retry with the new token; a second 401 propagates. Requests with ts == nil
// or an empty token are sent anonymously and never refreshed.
func (c *Client) do(ctx context.Context, ts TokenSource, method, path string, q url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}

	token := ""
	if ts != nil {
		token = ts.Token()
	}

	status, data, err := c.send(ctx, method, path, q, payload, "application/json", token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && ts != nil && token != "" {
		newTok, rerr := ts.Refresh(ctx)
		if rerr != nil {
			return rerr
		}
		status, data, err = c.send(ctx, method, path, q, payload, "application/json", newTok)
		if err != nil {
			return err
		}
	}
	if status >= 400 {
		return decodeError(status, data)
	}
	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, payload []byte, contentType, token string) (int, []byte, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

// doMultipart behaves like do for multipart/form-data bodies. The form is
// rebuilt for the retry since the reader is consumed by the first attempt.
func (c *Client) doMultipart(ctx context.Context, ts TokenSource, method, path string, build func(w *multipart.Writer) error, out any) error {
	encode := func() ([]byte, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := build(w); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), w.FormDataContentType(), nil
	}

	payload, contentType, err := encode()
	if err != nil {
		return err
	}
	token := ""
	if ts != nil {
		token = ts.Token()
	}
	status, data, err := c.send(ctx, method, path, nil, payload, contentType, token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && ts != nil && token != "" {
		newTok, rerr := ts.Refresh(ctx)
		if rerr != nil {
			return rerr
		}
		payload, contentType, err = encode()
		if err != nil {
			return err
		}
		status, data, err = c.send(ctx, method, path, nil, payload, contentType, newTok)
		if err != nil {
			return err
		}
	}
	if status >= 400 {
		return decodeError(status, data)
	}
	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

// withJar clones the transport with a per-session cookie jar. The auth
// endpoints are cookie-based: the refresh cookie is set and read by the
// upstream only, the gateway just carries the jar.
func (c *Client) withJar(jar http.CookieJar) *http.Client {
	cl := *c.HTTP
	cl.Jar = jar
	return &cl
}

func (c *Client) Get(ctx context.Context, ts TokenSource, path string, q url.Values, out any) error {
	return c.do(ctx, ts, http.MethodGet, path, q, nil, out)
}

func (c *Client) Post(ctx context.Context, ts TokenSource, path string, body, out any) error {
	return c.do(ctx, ts, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, ts TokenSource, path string, body, out any) error {
	return c.do(ctx, ts, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, ts TokenSource, path string, out any) error {
	return c.do(ctx, ts, http.MethodDelete, path, nil, nil, out)
}

// Error is a non-2xx upstream response. Message carries the server's
// {message} field when present, else the HTTP status text.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
}

func decodeError(status int, data []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	msg := ""
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err == nil {
			msg = body.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}

// Message extracts a user-facing text from any error returned by this
// package.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if ae, ok := err.(*Error); ok {
		return ae.Message
	}
	return err.Error()
}

// IsStatus reports whether err is an upstream error with the given code.
func IsStatus(err error, status int) bool {
	ae, ok := err.(*Error)
	return ok && ae.Status == status
}
