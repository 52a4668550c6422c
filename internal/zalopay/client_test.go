package zalopay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) Config {
	return Config{
		AppID:       "2553",
		Key1:        "PcY4iZIKFCIdgZvA6ueMcMHHUbRLYjPL",
		Key2:        "kLtgPl8HHhfvMuDHPwKfgfsY4Ydm9eIz",
		Endpoint:    endpoint,
		CallbackURL: "https://example.com/api/zalopay/callback",
		RedirectURL: "https://example.com/orders",
	}
}

func TestSignDeterministic(t *testing.T) {
	mac := Sign("2553|250314_000042|user|50000", "key")

	assert.Equal(t, mac, Sign("2553|250314_000042|user|50000", "key"))
	assert.NotEqual(t, mac, Sign("2553|250314_000042|user|50001", "key"))
	assert.NotEqual(t, mac, Sign("2553|250314_000042|user|50000", "other"))
	assert.Regexp(t, "^[0-9a-f]{64}$", mac)
}

func TestNewAppTransID(t *testing.T) {
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	id := NewAppTransID(at)

	assert.Regexp(t, regexp.MustCompile(`^250314_[0-9]{6}$`), id)
}

func TestVerifyCallback(t *testing.T) {
	c := New(testConfig("http://unused"))
	data := `{"app_trans_id":"250314_000042","amount":128000}`

	mac := Sign(data, c.cfg.Key2)
	assert.True(t, c.VerifyCallback(data, mac))

	// Donnée altérée ou MAC altéré : rejet
	assert.False(t, c.VerifyCallback(data+" ", mac))
	assert.False(t, c.VerifyCallback(data, mac[:63]+"1"))
	assert.False(t, c.VerifyCallback(data, Sign(data, c.cfg.Key1)))
}

func TestCreateOrderSignsRequest(t *testing.T) {
	var received map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/create", r.URL.Path)
		require.NoError(t, r.ParseForm())

		received = map[string]string{}
		for k := range r.PostForm {
			received[k] = r.PostForm.Get(k)
		}

		json.NewEncoder(w).Encode(CreateOrderResponse{
			ReturnCode:    1,
			ReturnMessage: "success",
			OrderURL:      "https://qcgateway.zalopay.vn/openinapp?order=abc",
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	resp, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		AppTransID:  "250314_000042",
		AppUser:     "user-1",
		Amount:      128000,
		Items:       []string{},
		Description: "Thanh toán cho đơn hàng #A20250314150926",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ReturnCode)
	assert.NotEmpty(t, resp.OrderURL)

	assert.Equal(t, "2553", received["app_id"])
	assert.Equal(t, "250314_000042", received["app_trans_id"])
	assert.Equal(t, "user-1", received["app_user"])
	assert.Equal(t, "128000", received["amount"])
	assert.Equal(t, c.cfg.CallbackURL, received["callback_url"])

	// Le MAC couvre app_id|app_trans_id|app_user|amount|app_time|embed_data|item
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		received["app_id"], received["app_trans_id"], received["app_user"],
		received["amount"], received["app_time"], received["embed_data"], received["item"])
	assert.Equal(t, Sign(data, c.cfg.Key1), received["mac"])
}

func TestQueryStatusSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		require.NoError(t, r.ParseForm())

		appID := r.PostForm.Get("app_id")
		appTransID := r.PostForm.Get("app_trans_id")
		assert.Equal(t, "250314_000042", appTransID)

		expected := Sign(fmt.Sprintf("%s|%s|%s", appID, appTransID, "PcY4iZIKFCIdgZvA6ueMcMHHUbRLYjPL"), "PcY4iZIKFCIdgZvA6ueMcMHHUbRLYjPL")
		assert.Equal(t, expected, r.PostForm.Get("mac"))

		json.NewEncoder(w).Encode(QueryResponse{
			ReturnCode:    QueryCancelled,
			ReturnMessage: "cancelled",
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	resp, err := c.QueryStatus(context.Background(), "250314_000042")
	require.NoError(t, err)
	assert.Equal(t, QueryCancelled, resp.ReturnCode)
}

func TestGatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // serveur fermé : échec de transport

	c := New(testConfig(srv.URL))
	_, err := c.QueryStatus(context.Background(), "250314_000042")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestGatewayHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.QueryStatus(context.Background(), "250314_000042")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
