package predictapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimakv14/StockOutPredict/pkg/config"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&config.PredictConfig{BaseURL: server.URL}, logger.NewNop())
	return client, server
}

func TestUploadSendsMultipartFile(t *testing.T) {
	var gotPath string
	var gotContent string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		buf := make([]byte, header.Size)
		file.Read(buf)
		gotContent = string(buf)

		w.WriteHeader(http.StatusOK)
	}))

	csvPath := filepath.Join(t.TempDir(), "sales_history.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("sku,qty_ordered,created_at\n"), 0o644))

	err := client.Upload(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Equal(t, "/upload-data", gotPath)
	assert.Equal(t, "sku,qty_ordered,created_at\n", gotContent)
}

func TestUploadServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "disk full", http.StatusInternalServerError)
	}))

	csvPath := filepath.Join(t.TempDir(), "sales_history.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("x"), 0o644))

	err := client.Upload(context.Background(), csvPath)
	assert.Error(t, err)
}

func TestTrainWithBody(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// SKU 中的特殊字符必须转义后上线
		gotPath = r.URL.EscapedPath()
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"trained","training_info":{"best_parameters":{"changepoint_prior_scale":0.05}}}`))
	}))

	resp, err := client.Train(context.Background(), "SKU/1", map[string]interface{}{
		"changepoint_prior_scale": 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "/train/SKU%2F1", gotPath)
	assert.Equal(t, 0.5, gotBody["changepoint_prior_scale"])
	assert.Equal(t, "trained", resp["status"])
}

func TestTrainWithoutBody(t *testing.T) {
	var gotLength int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"trained"}`))
	}))

	_, err := client.Train(context.Background(), "SKU-A", nil)
	require.NoError(t, err)
	// 自调参模式不发送请求体
	assert.LessOrEqual(t, gotLength, int64(0))
}

func TestTrainServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no data", http.StatusBadRequest)
	}))

	_, err := client.Train(context.Background(), "SKU-A", nil)
	assert.Error(t, err)
}

func TestForecastParsesDays(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"days_of_stock_remaining": 4.2}`))
	}))

	result, err := client.Forecast(context.Background(), "SKU-A", 17)
	require.NoError(t, err)
	assert.Equal(t, "current_stock=17", gotQuery)
	require.NotNil(t, result.DaysOfStockRemaining)
	assert.InDelta(t, 4.2, *result.DaysOfStockRemaining, 0.001)
}

func TestForecastMissingDaysField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"no model"}`))
	}))

	result, err := client.Forecast(context.Background(), "SKU-A", 5)
	require.NoError(t, err)
	assert.Nil(t, result.DaysOfStockRemaining)
}

func TestValidateAccuracy(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/validate-period-accuracy/SKU-A", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predicted":[10,9.5],"actual":[11,9],"metrics":{"mape":7.5}}`))
	}))

	result, err := client.ValidateAccuracy(context.Background(), "SKU-A", map[string]interface{}{
		"test_period_days": 14,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 9.5}, result.Predicted)
	assert.Equal(t, []float64{11, 9}, result.Actual)
	assert.Equal(t, 7.5, result.Metrics["mape"])
}
