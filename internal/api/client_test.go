package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokenSource hands out a fixed token and swaps to next on Refresh.
type stubTokenSource struct {
	current    atomic.Value
	next       string
	refreshErr error
	refreshes  atomic.Int64
}

func newStubTS(current, next string) *stubTokenSource {
	s := &stubTokenSource{next: next}
	s.current.Store(current)
	return s
}

func (s *stubTokenSource) Token() string { return s.current.Load().(string) }

func (s *stubTokenSource) Refresh(ctx context.Context) (string, error) {
	s.refreshes.Add(1)
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	s.current.Store(s.next)
	return s.next, nil
}

func TestDoRefreshesOnceOn401(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	ts := newStubTS("tok-old", "tok-new")
	c := NewClient(srv.URL)

	var out map[string]string
	err := c.Get(context.Background(), ts, "/api/anything", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "yes", out["ok"])
	assert.EqualValues(t, 1, ts.refreshes.Load())
	assert.EqualValues(t, 2, calls.Load(), "original request plus exactly one retry")
}

// A request that fails again after its one retry propagates the 401 and
// never triggers a second refresh cycle.
func TestDoRetriedRequestPropagates401(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "still unauthorized"})
	}))
	defer srv.Close()

	ts := newStubTS("tok-old", "tok-new")
	c := NewClient(srv.URL)

	err := c.Get(context.Background(), ts, "/api/anything", nil, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.EqualValues(t, 1, ts.refreshes.Load(), "no second refresh for an already-retried request")
	assert.EqualValues(t, 2, calls.Load())
}

// The retried multipart request must carry the same image bytes as the
// first attempt even though the caller's reader was drained encoding it.
func TestMultipartRetryResendsImage(t *testing.T) {
	img := []byte("fake png bytes here")
	var calls atomic.Int64
	var retriedImage []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
			return
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, _, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		retriedImage, err = io.ReadAll(f)
		require.NoError(t, err)
		json.NewEncoder(w).Encode(map[string]string{"id": "p1", "name": r.FormValue("name")})
	}))
	defer srv.Close()

	ts := newStubTS("tok-old", "tok-new")
	c := NewClient(srv.URL)

	form := ProductForm{
		Name:      "Lamp",
		Price:     19.99,
		Stock:     3,
		Image:     bytes.NewReader(img),
		ImageName: "lamp.png",
	}
	p, err := c.CreateProduct(context.Background(), ts, form)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)
	assert.EqualValues(t, 2, calls.Load(), "original request plus exactly one retry")
	assert.Equal(t, img, retriedImage, "retry must re-send the full image")
}

func TestDoAnonymousRequestNeverRefreshes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Get(context.Background(), nil, "/api/anything", nil, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "duplicate category name"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Post(context.Background(), nil, "/api/categories", map[string]string{"name": "x"}, nil)
	require.Error(t, err)
	assert.Equal(t, "duplicate category name", Message(err))
	assert.True(t, IsStatus(err, http.StatusConflict))
}

func TestErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Get(context.Background(), nil, "/api/products", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), Message(err))
}
