package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	html "github.com/gofiber/template/html/v2"
	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/api"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
	"storefront/internal/session"
)

func testToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// fake upstream with one known user whose role is configurable.
func upstream(t *testing.T, role string) *httptest.Server {
	t.Helper()
	token := testToken(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "Passw0rd!" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user":        map[string]any{"id": "u1", "email": body.Email, "name": "Tester", "role": role},
			"accessToken": token,
		})
	})
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	})
	return httptest.NewServer(mux)
}

func newApp(t *testing.T, upstreamURL string) (*fiber.App, *session.Manager) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	client := api.NewClient(upstreamURL)
	sessions := session.NewManager(client)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	deps := handlers.NewDeps(db, client, sessions)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)
	app.Get("/orders", handlers.RequireUser(sessions), func(c *fiber.Ctx) error { return c.SendString("orders") })
	app.Get("/profile", deps.ProfileHandler.Show)
	app.Get("/admin", handlers.RequireAdmin(sessions), func(c *fiber.Ctx) error { return c.SendString("admin") })
	return app, sessions
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func doLogin(t *testing.T, app *fiber.App, password string) *http.Response {
	t.Helper()
	respForm, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	csrfTok := cookieValue(respForm, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}

	form := strings.NewReader("csrf=" + csrfTok + "&email=alice@shop.test&password=" + password)
	req := httptest.NewRequest("POST", "/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestLoginRedirectsByRole(t *testing.T) {
	cases := []struct {
		role string
		want string
	}{
		{"admin", "/admin"},
		{"customer", "/"},
	}
	for _, tc := range cases {
		srv := upstream(t, tc.role)
		app, _ := newApp(t, srv.URL)

		resp := doLogin(t, app, "Passw0rd!")
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("role %s: expected redirect, got %d", tc.role, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != tc.want {
			t.Fatalf("role %s: want redirect to %s, got %s", tc.role, tc.want, loc)
		}
		srv.Close()
	}
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	srv := upstream(t, "customer")
	defer srv.Close()
	app, sessions := newApp(t, srv.URL)

	resp := doLogin(t, app, "WrongPass1!")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", resp.StatusCode)
	}
	sid := cookieValue(resp, "sid")
	if sid != "" && sessions.Get(sid).Authenticated() {
		t.Fatal("failed login must leave the session untouched")
	}
}

func TestRequireUserRedirectsGuests(t *testing.T) {
	srv := upstream(t, "customer")
	defer srv.Close()
	app, _ := newApp(t, srv.URL)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect for guest, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("want /login, got %s", loc)
	}
}

func TestRequireAdminForbidsNonAdmin(t *testing.T) {
	srv := upstream(t, "customer")
	defer srv.Close()
	app, _ := newApp(t, srv.URL)

	resp := doLogin(t, app, "Passw0rd!")
	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("sid cookie missing after login")
	}

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp2, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp2.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", resp2.StatusCode)
	}
}

// A refresh failure can clear a session between the auth middleware and
// the handler; the handler must fall back to the login page, not panic.
func TestProfileWithClearedSessionRedirects(t *testing.T) {
	srv := upstream(t, "customer")
	defer srv.Close()
	app, _ := newApp(t, srv.URL)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-cleared"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect for a cleared session, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("want /login, got %s", loc)
	}
}

func TestLogoutClearsSessionAndRedirects(t *testing.T) {
	srv := upstream(t, "customer")
	defer srv.Close()
	app, sessions := newApp(t, srv.URL)

	resp := doLogin(t, app, "Passw0rd!")
	sid := cookieValue(resp, "sid")
	csrfTok := cookieValue(resp, "csrf_")

	respForm, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	if csrfTok == "" {
		csrfTok = cookieValue(respForm, "csrf_")
	}

	form := strings.NewReader("csrf=" + csrfTok)
	req := httptest.NewRequest("POST", "/logout", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp2, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp2.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect after logout, got %d", resp2.StatusCode)
	}
	if sessions.Peek(sid) != nil {
		t.Fatal("logout should drop the session from the manager")
	}
	if sessions.Get(sid).Authenticated() {
		t.Fatal("session should be cleared after logout")
	}

	// The banner text has a space, so the cookie value must be escaped to
	// stay a valid cookie-value, and the next render must decode it.
	notice := cookieValue(resp2, "notice")
	if notice != url.QueryEscape("Logged out") {
		t.Fatalf("notice cookie not escaped: %q", notice)
	}

	req2 := httptest.NewRequest("GET", "/login", nil)
	req2.AddCookie(&http.Cookie{Name: "notice", Value: notice})
	resp3, err := app.Test(req2)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(resp3.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "Logged out") {
		t.Fatalf("banner missing from rendered page: %s", body)
	}
}
