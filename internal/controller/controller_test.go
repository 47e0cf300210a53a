package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"orders-service/internal/model"
	"orders-service/internal/service"
)

type memRepo struct {
	orders map[string]model.Order
}

func (r *memRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx service.OrderStore) error) error {
	return fn(ctx, r)
}

func (r *memRepo) Insert(ctx context.Context, o *model.Order) error {
	r.orders[o.ID] = *o
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *memRepo) FindAll(ctx context.Context) ([]model.Order, error) {
	out := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *memRepo) Update(ctx context.Context, o *model.Order) error {
	r.orders[o.ID] = *o
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	delete(r.orders, id)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Emit(ctx context.Context, topic string, payload any) error { return nil }

type memIndex struct {
	mu   sync.Mutex
	docs map[string]model.OrderDocument
	fail bool
}

func (m *memIndex) Index(ctx context.Context, doc model.OrderDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *memIndex) Upsert(ctx context.Context, doc model.OrderDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *memIndex) Search(ctx context.Context, q model.SearchQuery) ([]model.OrderDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("index unavailable")
	}
	// contract under test is routing and error mapping, not matching
	out := make([]model.OrderDocument, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, nil
}

func newTestRouter() (*gin.Engine, *service.OrderService, *memIndex) {
	gin.SetMode(gin.TestMode)

	repo := &memRepo{orders: make(map[string]model.Order)}
	idx := &memIndex{docs: make(map[string]model.OrderDocument)}
	svc := service.NewOrderService(repo, nopPublisher{}, idx)
	ctrl := NewOrderController(svc, service.NewOrderQueryService(idx))

	r := gin.New()
	r.POST("/orders", ctrl.Create)
	r.GET("/orders", ctrl.FindAll)
	r.GET("/orders/:id", ctrl.FindOne)
	r.PATCH("/orders/:id", ctrl.Update)
	r.DELETE("/orders/:id", ctrl.Remove)
	r.GET("/orders/searchId/:id", ctrl.SearchByID)
	r.GET("/orders/searchStatus/:status", ctrl.SearchByStatus)
	r.GET("/orders/searchDateRange/:start/:end", ctrl.SearchByDateRange)
	r.GET("/orders/searchByItems", ctrl.SearchByItems)
	return r, svc, idx
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateEndpoint(t *testing.T) {
	r, svc, _ := newTestRouter()

	w := do(r, http.MethodPost, "/orders", `{"items":[{"productId":"p1","quantity":2,"unitPrice":9.99}]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	require.Equal(t, model.StatusPending, got.Status)
	require.Len(t, got.Items, 1)
	require.Equal(t, "p1", got.Items[0].ProductID)
	svc.Wait()
}

func TestCreateEndpoint_InvalidBody(t *testing.T) {
	r, _, _ := newTestRouter()

	for _, body := range []string{
		`{"items":[]}`,
		`{"items":[{"productId":"p1","quantity":0,"unitPrice":1}]}`,
		`not json`,
		`{}`,
	} {
		w := do(r, http.MethodPost, "/orders", body)
		require.Equalf(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestFindOneEndpoint_AbsentIsNull(t *testing.T) {
	r, _, _ := newTestRouter()

	w := do(r, http.MethodGet, "/orders/nope", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "null", strings.TrimSpace(w.Body.String()))
}

func TestUpdateEndpoint(t *testing.T) {
	r, svc, _ := newTestRouter()

	w := do(r, http.MethodPost, "/orders", `{"items":[{"productId":"p1","quantity":2,"unitPrice":9.99}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(r, http.MethodPatch, "/orders/"+created.ID, `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/orders/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, model.StatusShipped, got.Status)
	require.Equal(t, created.Items, got.Items)
	svc.Wait()
}

func TestUpdateEndpoint_NotFound(t *testing.T) {
	r, _, _ := newTestRouter()

	w := do(r, http.MethodPatch, "/orders/ghost", `{"status":"shipped"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "ghost")
}

func TestRemoveEndpoint(t *testing.T) {
	r, svc, _ := newTestRouter()

	w := do(r, http.MethodDelete, "/orders/ghost", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/orders", `{"items":[{"productId":"p1","quantity":1,"unitPrice":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(r, http.MethodDelete, "/orders/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), created.ID)

	w = do(r, http.MethodGet, "/orders/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "null", strings.TrimSpace(w.Body.String()))
	svc.Wait()
}

func TestSearchEndpoints(t *testing.T) {
	r, svc, _ := newTestRouter()

	w := do(r, http.MethodPost, "/orders", `{"items":[{"productId":"p1","quantity":1,"unitPrice":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	svc.Wait()

	for _, path := range []string{
		"/orders/searchId/some-id",
		"/orders/searchStatus/pending",
		"/orders/searchDateRange/2025-08-01T00:00:00Z/2025-08-10T00:00:00Z",
		"/orders/searchByItems?productId=p1&quantity=1",
	} {
		w := do(r, http.MethodGet, path, "")
		require.Equalf(t, http.StatusOK, w.Code, "path %s (body %s)", path, w.Body.String())
	}
}

func TestSearchEndpoints_Failures(t *testing.T) {
	r, _, idx := newTestRouter()

	// malformed date bounds are a caller-visible error
	w := do(r, http.MethodGet, "/orders/searchDateRange/yesterday/tomorrow", "")
	require.Equal(t, http.StatusBadGateway, w.Code)

	// unparsable numeric filter is the caller's fault
	w = do(r, http.MethodGet, "/orders/searchByItems?quantity=lots", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	// read-path index failures always escalate
	idx.fail = true
	w = do(r, http.MethodGet, "/orders/searchStatus/pending", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
}
