package domains

import (
	"context"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimakv14/StockOutPredict/internal/business/predict"
	"github.com/pryimakv14/StockOutPredict/internal/domains/common/job"
	"github.com/pryimakv14/StockOutPredict/internal/domains/common/response"
	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/internal/predictapi"
	"github.com/pryimakv14/StockOutPredict/pkg/errorutil"
	"github.com/pryimakv14/StockOutPredict/pkg/lmstfyx"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

type stubParams struct{}

func (stubParams) Get(ctx context.Context, sku string) (params.SkuParams, bool) {
	return params.SkuParams{}, false
}

func (stubParams) Refresh() {}

type stubForecaster struct{}

func (stubForecaster) Forecast(ctx context.Context, sku string, currentStock int) (*predictapi.ForecastResult, error) {
	return &predictapi.ForecastResult{}, nil
}

type stubFlags struct{}

func (stubFlags) LastRequest(ctx context.Context, sku string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (stubFlags) MarkRequested(ctx context.Context, sku string, ttl time.Duration) error {
	return nil
}

type stubInbox struct{}

func (stubInbox) HasUnread(ctx context.Context, title string) (bool, error) { return false, nil }
func (stubInbox) Create(ctx context.Context, severity int, title, description string) error {
	return nil
}

type stubStock struct{}

func (stubStock) GetQtyBySku(ctx context.Context, sku string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func testGate() *predict.Gate {
	return predict.NewGate(stubParams{}, stubForecaster{}, stubFlags{}, stubInbox{}, stubStock{},
		nil, time.Hour, logger.NewNop())
}

func jobWithData(data string) *client.Job {
	return &client.Job{ID: "job-1", Queue: "stockout", Data: []byte(data)}
}

func TestGetProcessMalformedJobBuried(t *testing.T) {
	proc := GetProcess(logger.NewNop(), testGate())

	resp := proc(context.Background(), jobWithData(`{broken`))
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)

	resp = proc(context.Background(), jobWithData(`{"payload":{}}`))
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}

func TestGetProcessUnknownActionBuried(t *testing.T) {
	proc := GetProcess(logger.NewNop(), testGate())

	resp := proc(context.Background(), jobWithData(`{
		"payload": {"data": {"action_type": "order_cancel", "id": "1", "data": {}}}
	}`))
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}

func TestGetProcessInvalidPayloadBuried(t *testing.T) {
	proc := GetProcess(logger.NewNop(), testGate())

	// order_predict 但缺少 order_id，Handler 构造失败
	resp := proc(context.Background(), jobWithData(`{
		"payload": {"data": {"action_type": "order_predict", "id": "1", "data": {"items": [{"sku": "SKU-A"}]}}}
	}`))
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}

func TestDoJobReportActions(t *testing.T) {
	makeResp := func(err error) *response.Response {
		resp := &response.Response{}
		resp.WrapResponse(response.NewPredictResult(), &job.Meta{ID: "1"}, err)
		return resp
	}

	// 可重试错误 Release，等待重新投递
	jr := doJobReport(context.Background(), makeResp(errorutil.Retriable("redis down")), logger.NewNop())
	assert.Equal(t, lmstfyx.JobRespStatusRelease, jr.Action)

	// 不可重试错误照常 ACK，结果里带错误标记
	jr = doJobReport(context.Background(), makeResp(errorutil.NonRetriable("bad payload")), logger.NewNop())
	assert.Equal(t, lmstfyx.JobRespStatusSuccess, jr.Action)
	assert.Contains(t, string(jr.Data), `"FAILED"`)

	jr = doJobReport(context.Background(), makeResp(nil), logger.NewNop())
	assert.Equal(t, lmstfyx.JobRespStatusSuccess, jr.Action)
}

func TestGetProcessOrderPredictSuccess(t *testing.T) {
	proc := GetProcess(logger.NewNop(), testGate())

	resp := proc(context.Background(), jobWithData(`{
		"payload": {"data": {
			"request_id": "req-1",
			"action_type": "order_predict",
			"store_id": "1",
			"id": "ORD-1",
			"data": {"order_id": "ORD-1", "items": [{"sku": "SKU-A"}]}
		}}
	}`))

	require.Equal(t, lmstfyx.JobRespStatusSuccess, resp.Action)
	assert.Contains(t, string(resp.Data), `"processed":true`)
	assert.Contains(t, string(resp.Data), `"SUCCESS"`)
}
