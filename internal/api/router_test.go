package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/printshop/internal/auth"
	"github.com/example/printshop/internal/command"
	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/inventory"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/printservice"
	"github.com/example/printshop/internal/domain/review"
	"github.com/example/printshop/internal/domain/shop"
	"github.com/example/printshop/internal/domain/user"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/example/printshop/internal/pickup"
	"github.com/example/printshop/internal/projection"
	"github.com/example/printshop/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectingEventStore projects every appended event into the read
// store immediately, standing in for the async event bus
type projectingEventStore struct {
	*mocks.MockEventStore
	projector *projection.Projector
}

func (s *projectingEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	event, err := s.MockEventStore.Append(ctx, aggregateID, aggregateType, eventType, data)
	if err != nil {
		return nil, err
	}
	if err := s.projector.Project(*event); err != nil {
		return nil, err
	}
	return event, nil
}

type apiFixture struct {
	server *httptest.Server
	client *http.Client
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	readStore := mocks.NewMockReadStore()
	eventStore := &projectingEventStore{
		MockEventStore: mocks.NewMockEventStore(),
		projector:      projection.NewProjector(readStore),
	}

	orderSvc := order.NewService(eventStore)
	queryHandler := query.NewHandler(readStore)
	cmdHandler := command.NewHandler(
		shop.NewService(eventStore),
		printservice.NewService(eventStore),
		cart.NewService(eventStore),
		orderSvc,
		inventory.NewService(eventStore),
		review.NewService(eventStore),
		design.NewService(eventStore, nil),
		pickup.NewFlow(orderSvc),
		readStore,
	)

	jwtService := auth.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	router := NewRouter(RouterConfig{
		Handlers:     NewHandlers(cmdHandler, queryHandler),
		AuthHandlers: NewAuthHandlers(user.NewService(eventStore), jwtService, queryHandler, readStore),
		JWTService:   jwtService,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &apiFixture{server: server, client: newCookieClient()}
}

func newCookieClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) register(t *testing.T, email, name, role string) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email": email, "password": "password123", "name": name, "role": role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	f := newAPIFixture(t)

	f.register(t, "c@example.com", "Casey", "")

	// Duplicate email is rejected
	resp := f.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email": "c@example.com", "password": "password123", "name": "Casey",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong password
	resp = f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "c@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Registration set cookies, so /auth/me works
	resp = f.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[UserResponse](t, resp)
	assert.Equal(t, "c@example.com", me.Email)
	assert.Equal(t, "customer", me.Role)
}

func TestAPI_CartRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CreateServiceRequiresOwner(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "c@example.com", "Casey", "")

	resp := f.do(t, http.MethodPost, "/services", map[string]any{
		"shop_id": "shop-1", "name": "Flyers", "product_type": "poster", "price": 500,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_OrderLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	// Owner sets up a shop with a service
	f.register(t, "o@example.com", "Ola", "owner")
	resp := f.do(t, http.MethodPost, "/shops", map[string]string{
		"name": "Print Corner", "description": "same-day printing",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	shopModel := decodeBody[shop.Shop](t, resp)

	resp = f.do(t, http.MethodPost, "/services", map[string]any{
		"shop_id": shopModel.ID, "name": "Flyers", "product_type": "poster",
		"price": 500, "stock": 10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	svcModel := decodeBody[printservice.PrintService](t, resp)

	resp = f.do(t, http.MethodPut, "/shops/"+shopModel.ID+"/estimates", map[string]any{
		"estimates": map[string]float64{"pending": 24, "processing": 6},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Customer shops and places an order with their own cookie jar
	customer := &apiFixture{server: f.server, client: newCookieClient()}
	customer.register(t, "c@example.com", "Casey", "")

	resp = customer.do(t, http.MethodPost, "/cart/items", map[string]any{
		"service_id": svcModel.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = customer.do(t, http.MethodPost, "/orders", map[string]string{"shop_id": shopModel.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	placed := decodeBody[order.Order](t, resp)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, 1000, placed.Total)
	assert.Equal(t, 24.0, placed.TimeEstimates[order.StatusPending])

	// Customer may not drive the production status
	resp = customer.do(t, http.MethodPatch, "/orders/"+placed.ID+"/status", map[string]string{"status": "processing"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Owner advances one step at a time; skipping is rejected
	resp = f.do(t, http.MethodPatch, "/orders/"+placed.ID+"/status", map[string]string{"status": "ready"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, "/orders/"+placed.ID+"/status", map[string]string{"status": "processing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, "/orders/"+placed.ID+"/status", map[string]string{"status": "ready"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decodeBody[order.Order](t, resp)
	require.NotEmpty(t, ready.PickupToken)

	// Pickup confirmation completes the order
	resp = customer.do(t, http.MethodGet, "/orders/pickup/"+ready.PickupToken+"/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	done := decodeBody[order.Order](t, resp)
	assert.Equal(t, order.StatusCompleted, done.Status)
	assert.Equal(t, order.PaymentPaid, done.PaymentStatus)

	// A second scan of the same token conflicts
	resp = customer.do(t, http.MethodGet, "/orders/pickup/"+ready.PickupToken+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_ConfirmPickup_UnknownToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/orders/pickup/unknown-token/confirm", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
