// internal/api/api_test.go
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EAS-COD-System/eas-tracker/internal/config"
	"github.com/EAS-COD-System/eas-tracker/internal/repository/jsonfile"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
	"github.com/EAS-COD-System/eas-tracker/internal/snapshot"
)

func newTestRouter(t *testing.T, password string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	store, err := jsonfile.Open(filepath.Join(dir, "db.json"))
	require.NoError(t, err)
	snapStore, err := snapshot.Open(filepath.Join(dir, "snapshots"), store, nil)
	require.NoError(t, err)
	policy := snapshot.Policy{KeepCount: 5, KeepDays: 7}

	services := &Services{
		Products:    service.NewProductService(store, nil),
		Countries:   service.NewCountryService(store),
		AdSpend:     service.NewAdSpendService(store, nil),
		Remittances: service.NewRemittanceService(store, nil),
		Influencers: service.NewInfluencerService(store, nil),
		Shipments:   service.NewShipmentService(store, nil),
		Stock:       service.NewStockService(store),
		Finance:     service.NewFinanceService(store),
		Analytics:   service.NewAnalyticsService(store, nil),
		Snapshots:   service.NewSnapshotService(snapStore, policy),
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			Password:   password,
			CookieName: "eas_auth",
			CookieTTL:  1,
		},
	}
	return NewRouter(services, cfg)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "eas_auth", Value: cookie})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(t, router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t, "s3cret")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products", nil, "s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginSetsCookie(t *testing.T) {
	router := newTestRouter(t, "s3cret")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth", gin.H{"password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth", gin.H{"password": "s3cret"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestProductCRUDOverHTTP(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{
		"name": "Blender", "sku": "BL-1", "cost_china": 2.0, "shipping_to_market": 1.0,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Product.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/"+created.Product.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationMapsTo422(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{"name": ""}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyticsInvalidRange(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodGet,
		"/api/v1/analytics?start=2026-05-10&end=2026-05-01", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSnapshotLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{
		"name": "Blender", "cost_china": 2.0,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/snapshots", gin.H{"label": "before wipe"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		OK         bool   `json:"ok"`
		SnapshotID string `json:"snapshotId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.OK)
	require.NotEmpty(t, created.SnapshotID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/snapshots", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/snapshots/restore",
		gin.H{"snapshotId": created.SnapshotID}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var restored struct {
		OK           bool   `json:"ok"`
		RestoredFrom string `json:"restoredFrom"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &restored))
	assert.Equal(t, created.SnapshotID, restored.RestoredFrom)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/snapshots/restore",
		gin.H{"snapshotId": "missing"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
