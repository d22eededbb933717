package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cart-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProvinces_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/WebAddress/getProvince", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"1","name":"Ha Noi","code":"HN"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	provinces, err := client.GetProvinces(context.Background())
	require.NoError(t, err)
	require.Len(t, provinces, 1)
	assert.Equal(t, AddressItem{ID: "1", Name: "Ha Noi", Code: "HN"}, provinces[0])
}

func TestGetDistricts_PathIncludesProvince(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/WebAddress/getDistrict/1", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	districts, err := client.GetDistricts(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, districts)
}

func TestCreateOrder_PostsWirePayload(t *testing.T) {
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/WebOrder/createOrder", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.CreateOrder(context.Background(), models.OrderData{
		TotalPrice:     130000,
		TotalPricePaid: 130000,
		FullName:       "Nguyen Van A",
		PhoneNumber:    "0901234567",
		Goods:          []models.OrderGood{{GoodID: "15", Quantity: 1, Price: 100000}},
	})
	require.NoError(t, err)

	assert.Contains(t, got, "TotalPrice")
	assert.Contains(t, got, "Goods")
	assert.Equal(t, "null", string(got["Broker"]))
}

func TestCreateOrder_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad order", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.CreateOrder(context.Background(), models.OrderData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestFindName(t *testing.T) {
	items := []AddressItem{{ID: "1", Name: "Ha Noi"}, {ID: "2", Name: "Da Nang"}}
	assert.Equal(t, "Da Nang", FindName(items, "2"))
	assert.Equal(t, "", FindName(items, "9"))
}
