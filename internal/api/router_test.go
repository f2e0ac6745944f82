package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ocerny17-lgtm/kavarna/config"
	"github.com/ocerny17-lgtm/kavarna/internal/api/handler"
	"github.com/ocerny17-lgtm/kavarna/internal/repository"
	"github.com/ocerny17-lgtm/kavarna/internal/service"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Auth.SessionCookie = "kavarna_session"
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	repo := repository.NewGormOrderRepository(db)
	require.NoError(t, repo.(*repository.GormOrderRepository).InitSchema())
	t.Cleanup(func() { _ = repo.Close() })

	orders := service.NewOrderService(repo, nil, nil)
	require.NoError(t, orders.Restore(context.Background()))

	auth, err := service.NewAuthService(map[string]string{"Ondrej": "1711", "Anet": "Sunny"}, "test-secret", time.Hour)
	require.NoError(t, err)

	legacy, err := repository.NewFileStore(filepath.Join(t.TempDir(), "orders.json"))
	require.NoError(t, err)

	h := handler.NewHandler(orders, auth, legacy, cfg.Auth.SessionCookie)
	return NewRouter(cfg, h, auth, nil)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginCookie(t *testing.T, r *gin.Engine, username, password string) *http.Cookie {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login",
		`{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := w.Result()
	require.NotEmpty(t, res.Cookies())
	return res.Cookies()[0]
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Code int            `json:"code"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCreateAndListOrders(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/orders",
		`{"customerName":"Marie","coffeeType":"latte","sugarSpoons":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeData(t, w)
	assert.Equal(t, "new", created["status"])
	assert.Equal(t, true, created["withMilk"], "milk defaults to true when omitted")

	w = doJSON(t, r, http.MethodGet, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	list, ok := data["orders"].([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestCreateOrder_Validation(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/orders", `{"coffeeType":"latte"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing name is rejected")

	w = doJSON(t, r, http.MethodPost, "/api/v1/orders",
		`{"customerName":"Petr","coffeeType":"latte","sugarSpoons":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "negative sugar is rejected at the binding")
}

func TestBaristaCannotCreateOrders(t *testing.T) {
	r := setupRouter(t)
	cookie := loginCookie(t, r, "Ondrej", "1711")

	w := doJSON(t, r, http.MethodPost, "/api/v1/orders",
		`{"customerName":"Marie","coffeeType":"latte"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/orders", "")
	list := decodeData(t, w)["orders"].([]any)
	assert.Empty(t, list, "refused create appends nothing")
}

func TestClaimAndDeliverFlow(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/orders",
		`{"customerName":"Marie","coffeeType":"latte"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := strconv.FormatInt(int64(decodeData(t, w)["id"].(float64)), 10)

	// anonymous claim is rejected
	w = doJSON(t, r, http.MethodPost, "/api/v1/orders/"+id+"/claim", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ondrej := loginCookie(t, r, "Ondrej", "1711")
	anet := loginCookie(t, r, "Anet", "Sunny")

	w = doJSON(t, r, http.MethodPost, "/api/v1/orders/"+id+"/claim", "", ondrej)
	require.Equal(t, http.StatusOK, w.Code)
	claimed := decodeData(t, w)
	assert.Equal(t, "claimed", claimed["status"])
	assert.Equal(t, "Ondrej", claimed["barista"])

	// stale claim by the other barista: 200, state unchanged
	w = doJSON(t, r, http.MethodPost, "/api/v1/orders/"+id+"/claim", "", anet)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ondrej", decodeData(t, w)["barista"])

	// ownership check on deliver
	w = doJSON(t, r, http.MethodPost, "/api/v1/orders/"+id+"/deliver", "", anet)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "claimed", decodeData(t, w)["status"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/orders/"+id+"/deliver", "", ondrej)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "delivering", decodeData(t, w)["status"])
}

func TestLogin_BadCredentials(t *testing.T) {
	r := setupRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login",
		`{"username":"Ondrej","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeData(t, w)["barista"])

	cookie := loginCookie(t, r, "Anet", "Sunny")
	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", "", cookie)
	assert.Equal(t, "Anet", decodeData(t, w)["barista"])
}

func TestLegacyEndpoint(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/legacy/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"orders":[]}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/legacy/orders", `{"orders":[{"id":1}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/legacy/orders", "")
	assert.JSONEq(t, `{"orders":[{"id":1}]}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/legacy/orders", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "payload without orders array is rejected")

	w = doJSON(t, r, http.MethodPut, "/api/legacy/orders", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
