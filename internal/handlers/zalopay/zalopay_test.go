package zalopayhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foodbooking_back_end/internal/zalopay"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callbackRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	Init(zalopay.New(zalopay.Config{
		AppID: "2553",
		Key1:  "key1-test",
		Key2:  "key2-test",
	}))

	r := gin.New()
	r.POST("/api/zalopay/callback", Callback)
	return r
}

func postCallback(t *testing.T, r *gin.Engine, body string) (int, map[string]interface{}) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/zalopay/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

// Un MAC invalide est rejeté avec return_code -1, toujours en HTTP 200 :
// ZaloPay ne doit pas retenter un callback forgé.
func TestCallbackRejectsBadMac(t *testing.T) {
	r := callbackRouter(t)

	data := `{"app_trans_id":"250314_000042","amount":128000}`
	body, _ := json.Marshal(gin.H{"data": data, "mac": zalopay.Sign(data, "wrong-key")})

	code, resp := postCallback(t, r, string(body))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(zalopay.CallbackRejected), resp["return_code"])
	assert.Equal(t, "mac not equal", resp["return_message"])
}

func TestCallbackRejectsMissingFields(t *testing.T) {
	r := callbackRouter(t)

	code, resp := postCallback(t, r, `{"data":"x"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(zalopay.CallbackRejected), resp["return_code"])
}

func TestCallbackUnreadableData(t *testing.T) {
	r := callbackRouter(t)

	// MAC correct mais data non-JSON : ZaloPay peut retenter
	data := "not-json"
	body, _ := json.Marshal(gin.H{"data": data, "mac": zalopay.Sign(data, "key2-test")})

	code, resp := postCallback(t, r, string(body))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(zalopay.CallbackRetry), resp["return_code"])
}
