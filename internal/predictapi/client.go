package predictapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pryimakv14/StockOutPredict/pkg/config"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

// ForecastResult 预测接口响应
type ForecastResult struct {
	DaysOfStockRemaining *float64 `json:"days_of_stock_remaining"`
}

// AccuracyResult 精度校验接口响应
type AccuracyResult struct {
	Predicted []float64              `json:"predicted"`
	Actual    []float64              `json:"actual"`
	Metrics   map[string]interface{} `json:"metrics"`
}

// Client 预测服务 HTTP 客户端
// 超时按调用类型区分；不做自动重试，失败单元由
// 下一次调度/下一笔订单自然重试
type Client struct {
	http *resty.Client
	cfg  *config.PredictConfig
	log  logger.Logger
}

// 各类调用的超时缺省值
const (
	defaultUploadTimeout   = 5 * time.Minute
	defaultTrainTimeout    = 30 * time.Minute
	defaultForecastTimeout = 30 * time.Second
)

// NewClient 创建预测服务客户端
func NewClient(cfg *config.PredictConfig, log logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")

	return &Client{
		http: httpClient,
		cfg:  cfg,
		log:  log,
	}
}

// Upload 上传销售历史 CSV（multipart 表单，字段名 file）
func (c *Client) Upload(ctx context.Context, filePath string) error {
	tctx, cancel := context.WithTimeout(ctx, orDefault(c.cfg.UploadTimeout, defaultUploadTimeout))
	defer cancel()

	resp, err := c.http.R().
		SetContext(tctx).
		SetFile("file", filePath).
		Post("/upload-data")
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}

	if resp.IsError() {
		c.log.Errorf(ctx, "[PredictAPI] upload failed: url=%s, status=%d, body=%s",
			resp.Request.URL, resp.StatusCode(), resp.String())
		return fmt.Errorf("upload returned status %d", resp.StatusCode())
	}

	return nil
}

// Train 触发单个 SKU 训练
// body 为超参锁定时的请求体，nil 表示自调参（无请求体）
func (c *Client) Train(ctx context.Context, sku string, body map[string]interface{}) (map[string]interface{}, error) {
	tctx, cancel := context.WithTimeout(ctx, orDefault(c.cfg.TrainTimeout, defaultTrainTimeout))
	defer cancel()

	req := c.http.R().SetContext(tctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Post("/train/" + url.PathEscape(sku))
	if err != nil {
		return nil, fmt.Errorf("train request failed: %w", err)
	}

	if resp.IsError() {
		c.log.Errorf(ctx, "[PredictAPI] train failed: url=%s, status=%d, body=%s",
			resp.Request.URL, resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("train returned status %d", resp.StatusCode())
	}

	var result map[string]interface{}
	if err := unmarshalBody(resp, &result); err != nil {
		return nil, fmt.Errorf("unmarshal train response failed: %w", err)
	}
	return result, nil
}

// Forecast 查询 SKU 预测（下单链路，短超时）
func (c *Client) Forecast(ctx context.Context, sku string, currentStock int) (*ForecastResult, error) {
	tctx, cancel := context.WithTimeout(ctx, orDefault(c.cfg.ForecastTimeout, defaultForecastTimeout))
	defer cancel()

	var result ForecastResult
	resp, err := c.http.R().
		SetContext(tctx).
		SetQueryParam("current_stock", fmt.Sprintf("%d", currentStock)).
		SetResult(&result).
		Get("/predict/" + url.PathEscape(sku))
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}

	if resp.IsError() {
		c.log.Errorf(ctx, "[PredictAPI] forecast failed: url=%s, status=%d, body=%s",
			resp.Request.URL, resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("forecast returned status %d", resp.StatusCode())
	}

	return &result, nil
}

// ValidateAccuracy 校验指定 SKU 的历史区间预测精度
func (c *Client) ValidateAccuracy(ctx context.Context, sku string, body map[string]interface{}) (*AccuracyResult, error) {
	tctx, cancel := context.WithTimeout(ctx, orDefault(c.cfg.TrainTimeout, defaultTrainTimeout))
	defer cancel()

	var result AccuracyResult
	resp, err := c.http.R().
		SetContext(tctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post("/validate-period-accuracy/" + url.PathEscape(sku))
	if err != nil {
		return nil, fmt.Errorf("accuracy request failed: %w", err)
	}

	if resp.IsError() {
		c.log.Errorf(ctx, "[PredictAPI] accuracy validation failed: url=%s, status=%d, body=%s",
			resp.Request.URL, resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("accuracy validation returned status %d", resp.StatusCode())
	}

	return &result, nil
}

// unmarshalBody 解析响应体（空响应体按空结果处理）
func unmarshalBody(resp *resty.Response, v interface{}) error {
	if len(resp.Body()) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Body(), v)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
