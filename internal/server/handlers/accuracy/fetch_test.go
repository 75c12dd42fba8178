package accuracy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/internal/predictapi"
	"github.com/pryimakv14/StockOutPredict/pkg/config"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

type memBackend struct {
	blob string
}

func (m *memBackend) Get(ctx context.Context, path string) (string, error)      { return m.blob, nil }
func (m *memBackend) Save(ctx context.Context, path string, value string) error { return nil }

func setupAccuracy(t *testing.T, blob string, upstream http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	store := params.NewStore(&memBackend{blob: blob}, logger.NewNop())
	client := predictapi.NewClient(&config.PredictConfig{BaseURL: server.URL}, logger.NewNop())
	handler := NewAccuracyHandler(store, client)

	r := gin.New()
	r.GET("/api/v1/accuracy/:sku", handler.Fetch)
	return r
}

func TestFetchAccuracyChart(t *testing.T) {
	var gotBody map[string]interface{}
	r := setupAccuracy(t,
		`[{"sku":"SKU-A","test_period_days":"14","changepoint_prior_scale":"0.5","yearly_seasonality":"1"}]`,
		func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "/validate-period-accuracy/SKU-A", req.URL.Path)
			json.NewDecoder(req.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"predicted":[12,8.5,6],"actual":[11,9,5],"metrics":{"mape":8.2}}`))
		})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accuracy/SKU-A", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// 请求体只带字段表中标记参与精度校验的非空字段
	assert.Equal(t, float64(14), gotBody["test_period_days"])
	assert.Equal(t, 0.5, gotBody["changepoint_prior_scale"])
	assert.NotContains(t, gotBody, "yearly_seasonality")
	assert.NotContains(t, gotBody, "seasonality_prior_scale")

	var resp struct {
		Data ChartPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, []string{"Day 1", "Day 2", "Day 3"}, resp.Data.Labels)
	require.Len(t, resp.Data.Datasets, 2)
	assert.Equal(t, "Predicted", resp.Data.Datasets[0].Label)
	assert.Equal(t, predictedColor, resp.Data.Datasets[0].BorderColor)
	assert.Equal(t, "Actual", resp.Data.Datasets[1].Label)
	assert.Equal(t, actualColor, resp.Data.Datasets[1].BorderColor)
	// y 轴边距：floor(5)-5=0，ceil(12)+5=17
	assert.Equal(t, 0.0, resp.Data.YMin)
	assert.Equal(t, 17.0, resp.Data.YMax)
	assert.Equal(t, 8.2, resp.Data.Metrics["mape"])
}

func TestFetchAccuracyYMinClampedAtZero(t *testing.T) {
	r := setupAccuracy(t, `[{"sku":"SKU-A"}]`, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predicted":[2,3],"actual":[1,4]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accuracy/SKU-A", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ChartPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.Data.YMin)
	assert.Equal(t, 9.0, resp.Data.YMax)
}

func TestFetchAccuracyUnknownSku(t *testing.T) {
	r := setupAccuracy(t, `[]`, func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("upstream should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accuracy/NOPE", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFetchAccuracyEmptySeries(t *testing.T) {
	r := setupAccuracy(t, `[{"sku":"SKU-A"}]`, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predicted":[],"actual":[]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accuracy/SKU-A", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFetchAccuracyUpstreamError(t *testing.T) {
	r := setupAccuracy(t, `[{"sku":"SKU-A"}]`, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "no model", http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accuracy/SKU-A", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
