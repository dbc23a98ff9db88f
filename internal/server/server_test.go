package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/metrics"
	"github.com/roach88/bitshub/internal/testutil"
)

var (
	laptop = domain.Product{ID: "p1", Name: "Ultrabook 14", Price: 100, Category: domain.CategoryLaptops, InStock: true, Description: "Thin and light"}
	cans   = domain.Product{ID: "p3", Name: "Studio Headphones", Price: 75, Category: domain.CategoryHeadphones}
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	collector := metrics.NewCollector()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	e := engine.New(
		engine.WithClock(testutil.NewManualClock(testutil.Epoch)),
		engine.WithIDGenerator(testutil.NewSequentialIDs("id")),
		engine.WithCatalog([]domain.Product{laptop, cans}),
		engine.WithLogger(logger),
		engine.WithObserver(collector),
	)
	return New(e, collector.Registry(), logger), e
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"bitshub"}`, rec.Body.String())
}

func TestPostAction_Applied(t *testing.T) {
	s, e := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/actions/add_to_cart", `{"productId":"p1"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "add_to_cart", resp["action"])
	assert.Equal(t, 1.0, resp["seq"])
	assert.NotContains(t, resp, "error")
	assert.Equal(t, 1, e.Snapshot().CartQuantity("p1"))
}

func TestPostAction_Rejected(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/actions/login", `{"email":"ghost@b.com","password":"x"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{
		"seq": 1,
		"action": "login",
		"error": {"code": "account_not_found", "message": "Account not found. Please sign up first."}
	}`, rec.Body.String())
}

func TestPostAction_RedirectAndCreatedID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/actions/register",
		`{"fullName":"A","email":"a@b.com","password":"pw","confirmPassword":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"seq":1,"action":"register","redirect":"login","createdId":"id-1"}`, rec.Body.String())
}

func TestPostAction_BadRequests(t *testing.T) {
	s, e := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/actions/launch_rocket", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown_action")

	rec = do(t, s, http.MethodPost, "/actions/add_to_cart", `{"sku":"p1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_payload")

	assert.Equal(t, int64(0), e.Seq(), "nothing dispatched")

	rec = do(t, s, http.MethodGet, "/actions/add_to_cart", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPostAction_RestoreActionsNotExposed(t *testing.T) {
	s, e := newTestServer(t)

	for _, path := range []string{"/actions/restore_session", "/actions/restore_users", "/actions/restore_order"} {
		rec := do(t, s, http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "unknown_action", path)
	}
	assert.Equal(t, int64(0), e.Seq())
	assert.Nil(t, e.Snapshot().SessionUser())
}

// failingWriter accepts headers but fails every body write.
type failingWriter struct {
	header http.Header
	status int
}

func (w *failingWriter) Header() http.Header {
	if w.header == nil {
		w.header = http.Header{}
	}
	return w.header
}

func (w *failingWriter) WriteHeader(status int) { w.status = status }

func (w *failingWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	e := engine.New(
		engine.WithClock(testutil.NewManualClock(testutil.Epoch)),
		engine.WithCatalog([]domain.Product{laptop}),
	)
	s := New(e, nil, slog.New(slog.NewTextHandler(&logs, nil)))

	w := &failingWriter{}
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.status)
	assert.Contains(t, logs.String(), "write response failed")
	assert.Contains(t, logs.String(), "connection reset")
}

func TestGetState(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/actions/add_to_cart", `{"productId":"p1"}`)
	do(t, s, http.MethodPost, "/actions/add_to_cart", `{"productId":"p1"}`)

	rec := do(t, s, http.MethodGet, "/state", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var view StateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, int64(2), view.Seq)
	assert.Equal(t, domain.Money(200), view.CartTotal)
	assert.Equal(t, 2, view.CartCount)
	assert.True(t, view.AddedToCartVisible)
	assert.Nil(t, view.User)
	assert.Len(t, view.Products, 2)
}

func TestGetSlice(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/state/current_user", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/state/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/state/wishlist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchCatalog(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/catalog/search?q=THIN", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products []domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)

	rec = do(t, s, http.MethodGet, "/catalog/search?category=headphones", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "p3", products[0].ID)
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/actions/add_to_cart", `{"productId":"p1"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bitshub_actions_total{action="add_to_cart",outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "bitshub_cart_total_rupees 100")
}
