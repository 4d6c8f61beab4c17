package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/session"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func product(id string, price float64) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Price: price, Stock: 10}
}

// upstream that serves login plus a fixed server-side cart.
func fakeUpstream(t *testing.T, serverCart []domain.CartItem) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"user":        map[string]any{"id": "u1", "email": "a@b.test", "name": "A", "role": "customer"},
			"accessToken": "tok-1",
		})
	})
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": serverCart})
	})
	return httptest.NewServer(mux)
}

func TestGuestCartMergesQuantitiesPerProduct(t *testing.T) {
	db := memdb(t)
	srv := fakeUpstream(t, nil)
	defer srv.Close()

	client := api.NewClient(srv.URL)
	svc := cart.NewService(repos.NewGuestCartRepo(db), client)
	sess := session.NewManager(client).Get("sid-guest")

	ctx := context.Background()
	p := product("p1", 9.99)
	if _, err := svc.Add(ctx, sess, p, 2); err != nil {
		t.Fatal(err)
	}
	cv, err := svc.Add(ctx, sess, p, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 1 {
		t.Fatalf("want one line per product, got %d", len(cv.Items))
	}
	if cv.Items[0].Quantity != 5 {
		t.Fatalf("want merged qty 5, got %d", cv.Items[0].Quantity)
	}
	if cv.Total < 49.94 || cv.Total > 49.96 {
		t.Fatalf("bad total: %v", cv.Total)
	}
}

func TestGuestCartRemoveAbsentIsNoop(t *testing.T) {
	db := memdb(t)
	srv := fakeUpstream(t, nil)
	defer srv.Close()

	client := api.NewClient(srv.URL)
	svc := cart.NewService(repos.NewGuestCartRepo(db), client)
	sess := session.NewManager(client).Get("sid-guest")

	ctx := context.Background()
	if _, err := svc.Add(ctx, sess, product("p1", 5), 1); err != nil {
		t.Fatal(err)
	}
	cv, err := svc.Remove(ctx, sess, "not-in-cart")
	if err != nil {
		t.Fatalf("removing an absent product must not error: %v", err)
	}
	if len(cv.Items) != 1 || cv.Items[0].Product.ID != "p1" {
		t.Fatalf("cart changed unexpectedly: %+v", cv.Items)
	}
}

func TestGuestCartQuantityFloor(t *testing.T) {
	db := memdb(t)
	srv := fakeUpstream(t, nil)
	defer srv.Close()

	client := api.NewClient(srv.URL)
	svc := cart.NewService(repos.NewGuestCartRepo(db), client)
	sess := session.NewManager(client).Get("sid-guest")

	ctx := context.Background()
	if _, err := svc.Add(ctx, sess, product("p1", 5), 4); err != nil {
		t.Fatal(err)
	}
	cv, err := svc.SetQuantity(ctx, sess, "p1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if cv.Items[0].Quantity != 1 {
		t.Fatalf("quantity must clamp to 1, got %d", cv.Items[0].Quantity)
	}
}

func TestGuestCartClear(t *testing.T) {
	db := memdb(t)
	srv := fakeUpstream(t, nil)
	defer srv.Close()

	client := api.NewClient(srv.URL)
	svc := cart.NewService(repos.NewGuestCartRepo(db), client)
	sess := session.NewManager(client).Get("sid-guest")

	ctx := context.Background()
	if _, err := svc.Add(ctx, sess, product("p1", 5), 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(ctx, sess, product("p2", 7), 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(ctx, sess); err != nil {
		t.Fatal(err)
	}
	cv, err := svc.View(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 0 {
		t.Fatalf("cart should be empty, got %+v", cv.Items)
	}
}

// On login the guest cart is discarded in favor of the account's server
// cart; local items are not merged.
func TestReconcileDiscardsGuestCart(t *testing.T) {
	db := memdb(t)
	serverCart := []domain.CartItem{{Product: product("item-b", 20), Quantity: 1}}
	srv := fakeUpstream(t, serverCart)
	defer srv.Close()

	client := api.NewClient(srv.URL)
	guestRepo := repos.NewGuestCartRepo(db)
	svc := cart.NewService(guestRepo, client)
	sessions := session.NewManager(client)
	sess := sessions.Get("sid-1")

	ctx := context.Background()
	// Guest adds item A before logging in.
	if _, err := svc.Add(ctx, sess, product("item-a", 10), 1); err != nil {
		t.Fatal(err)
	}

	if _, err := sessions.Login(ctx, "sid-1", "a@b.test", "pw"); err != nil {
		t.Fatal(err)
	}
	cv, err := svc.Reconcile(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}

	if len(cv.Items) != 1 || cv.Items[0].Product.ID != "item-b" {
		t.Fatalf("displayed cart must be exactly the server cart, got %+v", cv.Items)
	}
	left, err := guestRepo.Items("sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Fatalf("guest rows should be dropped, got %+v", left)
	}
}
