package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/inventory"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewClient(srv.URL, time.Second, WithMetrics(metrics)), metrics
}

func TestListDecodesPage(t *testing.T) {
	client, metrics := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":7,"name":"Widget","type":"tool","sku":"W-1","image_url":null,"description":"d","quantity":3,"price":2.5,"created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z"}],"total":11,"page":2,"per_page":10}`))
	}))

	page, err := client.Products("tok").List(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 11, page.Total)
	assert.Equal(t, 2, page.Number)
	item := page.Items[0]
	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, "W-1", item.SKU)
	assert.Equal(t, "", item.ImageURL)
	assert.Equal(t, "d", item.Description)
	assert.True(t, decimal.RequireFromString("2.5").Equal(item.Price))
	assert.Equal(t, 2024, item.CreatedAt.Year())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues("list", "ok")))
}

func TestListCallsKeepTheirOwnContext(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte(`{"products":[],"total":0,"page":1,"per_page":10}`))
	}))
	products := client.Products("tok")

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := products.List(ctxA, 1, 10)
		errA <- err
	}()
	time.Sleep(20 * time.Millisecond)

	errB := make(chan error, 1)
	go func() {
		_, err := products.List(context.Background(), 1, 10)
		errB <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancelA()

	require.ErrorIs(t, <-errA, context.Canceled)
	require.NoError(t, <-errB)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListAfterWriteSeesTheWrite(t *testing.T) {
	var mu sync.Mutex
	quantity := 1
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			var body struct {
				Quantity int `json:"quantity"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			mu.Lock()
			quantity = body.Quantity
			mu.Unlock()
			_, _ = w.Write([]byte(`{"message":"Quantity updated successfully"}`))
			return
		}
		mu.Lock()
		seen := quantity
		mu.Unlock()
		time.Sleep(100 * time.Millisecond)
		_, _ = fmt.Fprintf(w, `{"products":[{"id":1,"name":"Widget","type":"tool","sku":"W-1","quantity":%d,"price":1}],"total":1,"page":1,"per_page":10}`, seen)
	}))
	products := client.Products("tok")
	ctx := context.Background()

	stale := make(chan inventory.Page, 1)
	go func() {
		page, err := products.List(ctx, 1, 10)
		assert.NoError(t, err)
		stale <- page
	}()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, products.UpdateQuantity(ctx, 1, 7))
	page, err := products.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 7, page.Items[0].Quantity)
	assert.Equal(t, 1, (<-stale).Items[0].Quantity)
}

func TestCreateSendsDraftAndAssemblesRecord(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Widget", body["name"])
		assert.Equal(t, 12.5, body["price"])
		assert.Equal(t, float64(4), body["quantity"])
		_, hasImage := body["image_url"]
		assert.False(t, hasImage)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"product_id":42,"message":"Product created successfully"}`))
	}))

	draft := inventory.Draft{Name: "Widget", Type: "tool", SKU: "W-1", Quantity: 4, Price: decimal.RequireFromString("12.5")}
	created, err := client.Products("tok").Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, 4, created.Quantity)
}

func TestGetProduct(t *testing.T) {
	client, metrics := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if r.URL.Path != "/products/7" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Product not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"name":"Widget","type":"tool","sku":"W-1","image_url":"http://img/w.png","description":null,"quantity":3,"price":2.5}`))
	}))
	products := client.Products("tok")

	product, err := products.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, "http://img/w.png", product.ImageURL)
	assert.Equal(t, "", product.Description)

	_, err = products.Get(context.Background(), 8)
	require.ErrorIs(t, err, inventory.ErrNotFound)
	assert.Equal(t, "Product not found", inventory.GatewayMessage(err, ""))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues("get", "client_error")))
}

func TestPricesStayExactOnTheWire(t *testing.T) {
	const exact = "12345678901234567.89"
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"price":`+exact)
			_, _ = w.Write([]byte(`{"product_id":9,"message":"Product created successfully"}`))
			return
		}
		_, _ = w.Write([]byte(`{"products":[{"id":9,"name":"Bulk","type":"lot","sku":"B-1","quantity":1,"price":` + exact + `}],"total":1,"page":1,"per_page":10}`))
	}))
	products := client.Products("tok")

	draft := inventory.Draft{Name: "Bulk", Type: "lot", SKU: "B-1", Quantity: 1, Price: decimal.RequireFromString(exact)}
	_, err := products.Create(context.Background(), draft)
	require.NoError(t, err)

	page, err := products.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, exact, page.Items[0].Price.String())
}

func TestErrorDetailMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"conflict", http.StatusConflict, `{"detail":"Product with this SKU already exists"}`, inventory.ErrConflict, "Product with this SKU already exists"},
		{"not found", http.StatusNotFound, `{"detail":"Product not found"}`, inventory.ErrNotFound, "Product not found"},
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`, inventory.ErrUnauthorized, "Could not validate credentials"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"},{"msg":"value is not a valid integer"}]}`, nil, "field required; value is not a valid integer"},
		{"no body", http.StatusInternalServerError, ``, nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			err := client.Products("tok").UpdateQuantity(context.Background(), 1, 5)
			require.Error(t, err)
			var gwErr *inventory.GatewayError
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tc.status, gwErr.Status)
			assert.Equal(t, tc.message, gwErr.Message)
			if tc.sentinel != nil {
				assert.ErrorIs(t, err, tc.sentinel)
			}
			assert.Equal(t, orFallback(tc.message), inventory.GatewayMessage(err, "fallback"))
		})
	}
}

func orFallback(msg string) string {
	if msg == "" {
		return "fallback"
	}
	return msg
}

func TestUpdateQuantityPath(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/9/quantity", r.URL.Path)
		var body quantityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 15, body.Quantity)
		_, _ = w.Write([]byte(`{"id":9,"name":"x","quantity":15,"message":"Quantity updated successfully"}`))
	}))
	require.NoError(t, client.Products("tok").UpdateQuantity(context.Background(), 9, 15))
}

func TestLoginInspectsToken(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice", "exp": exp.Unix()}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"` + signed + `","token_type":"bearer"}`))
	}))

	tok, err := client.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, signed, tok.Value)
	assert.Equal(t, "alice", tok.Subject)
	assert.True(t, exp.Equal(tok.ExpiresAt))

	_, err = client.Login(context.Background(), "alice", "nope")
	require.ErrorIs(t, err, inventory.ErrUnauthorized)
	assert.Equal(t, "Incorrect username or password", inventory.GatewayMessage(err, ""))
}

func TestOpaqueTokenStillLogsIn(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"opaque","token_type":"Bearer"}`))
	}))
	tok, err := client.Login(context.Background(), "bob", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "opaque", tok.Value)
	assert.Equal(t, "bearer", tok.Type)
	assert.Equal(t, "bob", tok.Subject)
	assert.True(t, tok.ExpiresAt.IsZero())
}

func TestTransportErrorIsGatewayError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.Products("tok").List(context.Background(), 1, 10)
	var gwErr *inventory.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, 0, gwErr.Status)
	assert.True(t, strings.HasPrefix(err.Error(), "inventory: gateway list"))
}
