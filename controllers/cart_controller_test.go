package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cart-service/backend"
	"cart-service/cart"
	"cart-service/checkout"
	"cart-service/config"
	"cart-service/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = 7

type fakeLookup struct {
	err error
}

func (f *fakeLookup) GetProvinces(ctx context.Context) ([]backend.AddressItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []backend.AddressItem{{ID: "1", Name: "Ha Noi", Code: "HN"}}, nil
}

func (f *fakeLookup) GetDistricts(ctx context.Context, provinceID string) ([]backend.AddressItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []backend.AddressItem{{ID: "10", Name: "Hoan Kiem", Code: "HK"}}, nil
}

func (f *fakeLookup) GetWards(ctx context.Context, districtID string) ([]backend.AddressItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []backend.AddressItem{{ID: "100", Name: "Hang Bac", Code: "HB"}}, nil
}

type fakeSubmitter struct {
	err      error
	received []models.OrderData
}

func (f *fakeSubmitter) CreateOrder(ctx context.Context, data models.OrderData) error {
	if f.err != nil {
		return f.err
	}
	f.received = append(f.received, data)
	return nil
}

func newTestRouter(t *testing.T, submitter *fakeSubmitter) (*gin.Engine, *cart.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := cart.NewStore()
	c := config.LoadConfig()
	Setup(c, s, checkout.NewAssembler(c), &fakeLookup{}, submitter)
	SetRabbitMQ(nil)

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
	})
	{
		api.GET("/cart", GetCart)
		api.POST("/cart/items", AddItem)
		api.DELETE("/cart/items/:id", RemoveItem)
		api.PUT("/cart/items/:id", UpdateQuantity)
		api.POST("/checkout", Checkout)
	}
	return r, s
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validCheckoutForm() map[string]any {
	return map[string]any{
		"full_name":   "Nguyen Van A",
		"phone":       "0901234567",
		"address":     "12 Hang Bac",
		"province_id": "1",
		"district_id": "10",
		"ward_id":     "100",
	}
}

func TestCartFlow(t *testing.T) {
	r, _ := newTestRouter(t, &fakeSubmitter{})

	w := doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "A", "name": "Tour A", "price": 1200000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "B", "name": "Tour B", "price": 450000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var state models.CartState
	w = doJSON(t, r, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Len(t, state.Items, 2)
	assert.Equal(t, int64(1650000), state.Total)

	w = doJSON(t, r, http.MethodPut, "/api/cart/items/A", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, int64(4050000), state.Total)

	w = doJSON(t, r, http.MethodDelete, "/api/cart/items/A", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Len(t, state.Items, 1)
	assert.Equal(t, int64(450000), state.Total)
}

func TestAddItem_MissingFields(t *testing.T) {
	r, s := newTestRouter(t, &fakeSubmitter{})

	w := doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{"id": "A"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.Snapshot(testUserID).Items)
}

func TestUpdateQuantity_BelowOneRejected(t *testing.T) {
	r, s := newTestRouter(t, &fakeSubmitter{})

	doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "A", "name": "Tour A", "price": 100000,
	})

	w := doJSON(t, r, http.MethodPut, "/api/cart/items/A", map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	state := s.Snapshot(testUserID)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, int64(100000), state.Total)
}

func TestRemoveItem_UnknownIDIsNoop(t *testing.T) {
	r, s := newTestRouter(t, &fakeSubmitter{})

	doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "A", "name": "Tour A", "price": 100000,
	})

	w := doJSON(t, r, http.MethodDelete, "/api/cart/items/missing", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.Snapshot(testUserID).Items, 1)
}

func TestCheckout_Success(t *testing.T) {
	submitter := &fakeSubmitter{}
	r, s := newTestRouter(t, submitter)

	doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "A", "name": "Tour A", "price": 1200000,
	})
	doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "B", "name": "Tour B", "price": 450000,
	})

	w := doJSON(t, r, http.MethodPost, "/api/checkout", validCheckoutForm())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Subtotal    int64 `json:"subtotal"`
		ShippingFee int64 `json:"shipping_fee"`
		Total       int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1650000), resp.Subtotal)
	assert.Equal(t, int64(30000), resp.ShippingFee)
	assert.Equal(t, int64(1680000), resp.Total)

	require.Len(t, submitter.received, 1)
	data := submitter.received[0]
	assert.Equal(t, "12 Hang Bac, Hang Bac, Hoan Kiem, Ha Noi", data.ShippingAddress)
	assert.Equal(t, "guest@example.com", data.Email)
	require.Len(t, data.Goods, 2)

	// confirmed submission empties the cart
	assert.Empty(t, s.Snapshot(testUserID).Items)
	assert.Equal(t, int64(0), s.Snapshot(testUserID).Total)
}

func TestCheckout_BackendFailureKeepsCart(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("backend down")}
	r, s := newTestRouter(t, submitter)

	doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "A", "name": "Tour A", "price": 1200000,
	})

	w := doJSON(t, r, http.MethodPost, "/api/checkout", validCheckoutForm())
	assert.Equal(t, http.StatusBadGateway, w.Code)

	state := s.Snapshot(testUserID)
	assert.Len(t, state.Items, 1)
	assert.Equal(t, int64(1200000), state.Total)
}

func TestCheckout_EmptyCart(t *testing.T) {
	submitter := &fakeSubmitter{}
	r, _ := newTestRouter(t, submitter)

	w := doJSON(t, r, http.MethodPost, "/api/checkout", validCheckoutForm())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, submitter.received)
}

func TestCheckout_MissingFormFields(t *testing.T) {
	submitter := &fakeSubmitter{}
	r, s := newTestRouter(t, submitter)

	doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "A", "name": "Tour A", "price": 1200000,
	})

	form := validCheckoutForm()
	delete(form, "phone")
	w := doJSON(t, r, http.MethodPost, "/api/checkout", form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, submitter.received)
	assert.Len(t, s.Snapshot(testUserID).Items, 1)
}

func TestCheckout_FreeShippingOverThreshold(t *testing.T) {
	submitter := &fakeSubmitter{}
	r, _ := newTestRouter(t, submitter)

	doJSON(t, r, http.MethodPost, "/api/cart/items", map[string]any{
		"id": "9", "name": "Tour 9", "price": 2500000,
	})

	w := doJSON(t, r, http.MethodPost, "/api/checkout", validCheckoutForm())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ShippingFee int64 `json:"shipping_fee"`
		Total       int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.ShippingFee)
	assert.Equal(t, int64(2500000), resp.Total)
}
