package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:            srv.URL + "/",
		Timeout:            2 * time.Second,
		BreakerMaxFailures: 2,
		BreakerOpenTimeout: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	return c, srv
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, zap.NewNop())
	require.Error(t, err)
}

func TestGetCart_SendsTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		assert.Equal(t, "/cart", r.URL.Path)
		w.Write([]byte(`{"items":[{"productId":{"_id":"p1","name":"Mug","price":10.5,"stock":3},"quantity":2}]}`))
	})

	ctx := WithRequestID(WithToken(context.Background(), "tok-1"), "req-42")
	items, err := c.GetCart(ctx)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "req-42", gotRequestID)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Product.Price.Decimal.Equal(decimal.RequireFromString("10.5")))
}

func TestGetCart_GeneratesRequestIDWhenAbsent(t *testing.T) {
	var gotRequestID string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"items":[]}`))
	})

	_, err := c.GetCart(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, gotRequestID)
}

func TestGetCart_MalformedItems(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing items", `{"total":3}`},
		{"null items", `{"items":null}`},
		{"object items", `{"items":{"p1":1}}`},
		{"not an object", `[1,2,3]`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := c.GetCart(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestDo_NonSuccessStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	err := c.RemoveFromCart(context.Background(), "p1")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "nope", se.Body)
	assert.True(t, IsClientError(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestRemoveFromCart_EscapesProductID(t *testing.T) {
	var gotPath, gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.RemoveFromCart(context.Background(), "a/b"))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/cart/a%2Fb", gotPath)
}

func TestBreaker_OpensAfterServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 2; i++ {
		_, err := c.GetCart(context.Background())
		require.Error(t, err)
	}
	_, err := c.GetCart(context.Background())

	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	for i := 0; i < 4; i++ {
		_, err := c.GetCart(context.Background())
		assert.True(t, IsClientError(err))
	}
	assert.Equal(t, int32(4), calls.Load())
}

func TestCreateCheckoutSession_PostsNormalizedItems(t *testing.T) {
	var got domain.CheckoutRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"url":"https://pay.example/s/1"}`))
	})

	session, err := c.CreateCheckoutSession(context.Background(), domain.CheckoutRequest{
		UserID: "u1",
		Items: []domain.NormalizedLineItem{
			{ProductID: "p1", Name: "Mug", Price: decimal.RequireFromString("10"), Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/s/1", session.URL)
	assert.Equal(t, "u1", got.UserID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
}

func TestConfirmPayment_DecodesOutcome(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cs_1", body["sessionId"])
		w.Write([]byte(`{"success":true,"order":{"_id":"o1","status":"Paid","totalAmount":20}}`))
	})

	outcome, err := c.ConfirmPayment(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	require.NotNil(t, outcome.Order)
	assert.Equal(t, "o1", outcome.Order.ID)
	assert.Equal(t, domain.OrderStatusPaid, outcome.Order.Status)
}

func TestListOrders_EmptyArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	orders, err := c.ListOrders(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestUpdateOrderStatus_SendsStatus(t *testing.T) {
	var got map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/o9", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.UpdateOrderStatus(context.Background(), "o9", domain.OrderStatusShipped))
	assert.Equal(t, "Shipped", got["status"])
}
