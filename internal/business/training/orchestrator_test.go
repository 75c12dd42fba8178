package training

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

// fakeParamStore 内存参数存储
type fakeParamStore struct {
	rows     []params.SkuParams
	merges   map[string]params.Patch
	mergeErr error
}

func newFakeParamStore(rows ...params.SkuParams) *fakeParamStore {
	return &fakeParamStore{rows: rows, merges: make(map[string]params.Patch)}
}

func (f *fakeParamStore) List(ctx context.Context, forceRefresh bool) []params.SkuParams {
	return f.rows
}

func (f *fakeParamStore) Merge(ctx context.Context, sku string, patch params.Patch) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.merges[sku] = patch
	return nil
}

// fakeTrainer 记录请求体的训练客户端
type fakeTrainer struct {
	bodies map[string]map[string]interface{}
	resp   map[string]interface{}
	err    error
}

func newFakeTrainer(resp map[string]interface{}) *fakeTrainer {
	return &fakeTrainer{bodies: make(map[string]map[string]interface{}), resp: resp}
}

func (f *fakeTrainer) Train(ctx context.Context, sku string, body map[string]interface{}) (map[string]interface{}, error) {
	f.bodies[sku] = body
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestTrainAllLockedParamsBody(t *testing.T) {
	store := newFakeParamStore(params.SkuParams{
		Sku:                   "SKU-A",
		AlertThreshold:        "7",
		ChangepointPriorScale: "0.5",
		YearlySeasonality:     "1",
		LockParams:            params.LockModeParams,
	})
	trainer := newFakeTrainer(nil)

	report := NewOrchestrator(store, trainer, logger.NewNop()).TrainAll(context.Background())

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)

	body := trainer.bodies["SKU-A"]
	require.NotNil(t, body)
	assert.Equal(t, 0.5, body["changepoint_prior_scale"])
	assert.Equal(t, true, body["yearly_seasonality"])
	// 告警阈值是本地配置，从不发给训练服务
	assert.NotContains(t, body, "alert_threshold")
	// 锁定模式不回写
	assert.Empty(t, store.merges)
}

func TestTrainAllLockedWithoutTunablesFallsBackToSelfTune(t *testing.T) {
	store := newFakeParamStore(params.SkuParams{
		Sku:            "SKU-A",
		AlertThreshold: "7",
		LockParams:     params.LockModeParams,
	})
	trainer := newFakeTrainer(map[string]interface{}{
		"best_parameters": map[string]interface{}{
			"seasonality_mode": "multiplicative",
		},
	})

	report := NewOrchestrator(store, trainer, logger.NewNop()).TrainAll(context.Background())

	assert.Equal(t, 1, report.Succeeded)
	assert.Nil(t, trainer.bodies["SKU-A"])
	// 空锁定体降级为自调参，结果回写
	assert.Equal(t, "multiplicative", store.merges["SKU-A"]["seasonality_mode"])
}

func TestTrainAllLockModelSkipsWriteBack(t *testing.T) {
	store := newFakeParamStore(params.SkuParams{
		Sku:        "SKU-A",
		LockParams: params.LockModeModel,
	})
	trainer := newFakeTrainer(map[string]interface{}{
		"best_parameters": map[string]interface{}{
			"changepoint_prior_scale": 0.9,
		},
	})

	report := NewOrchestrator(store, trainer, logger.NewNop()).TrainAll(context.Background())

	assert.Equal(t, 1, report.Succeeded)
	assert.Nil(t, trainer.bodies["SKU-A"])
	assert.Empty(t, store.merges)
}

func TestTrainAllSelfTuneWriteBack(t *testing.T) {
	store := newFakeParamStore(params.SkuParams{Sku: "SKU-A"})
	trainer := newFakeTrainer(map[string]interface{}{
		"status": "ok",
		"training_info": map[string]interface{}{
			"best_parameters": map[string]interface{}{
				"changepoint_prior_scale": 0.05,
				"seasonality_mode":        "multiplicative",
				"yearly_seasonality":      true,
				"alert_threshold":         3, // 非可调字段，忽略
			},
		},
	})

	report := NewOrchestrator(store, trainer, logger.NewNop()).TrainAll(context.Background())

	assert.Equal(t, 1, report.Succeeded)
	patch := store.merges["SKU-A"]
	require.NotNil(t, patch)
	assert.Equal(t, "0.05", patch["changepoint_prior_scale"])
	assert.Equal(t, "multiplicative", patch["seasonality_mode"])
	assert.Equal(t, params.BoolTrue, patch["yearly_seasonality"])
	assert.NotContains(t, patch, "alert_threshold")
}

func TestTrainAllFailureIsolation(t *testing.T) {
	store := newFakeParamStore(
		params.SkuParams{Sku: "SKU-A", LockParams: params.LockModeModel},
		params.SkuParams{Sku: ""},
		params.SkuParams{Sku: "SKU-B", LockParams: params.LockModeModel},
	)
	trainer := newFakeTrainer(nil)
	trainer.err = errors.New("service unavailable")

	report := NewOrchestrator(store, trainer, logger.NewNop()).TrainAll(context.Background())

	// 空 SKU 行跳过，两个失败互不影响
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Contains(t, report.Message(), "SKU-A")
	assert.Contains(t, report.Message(), "SKU-B")
}

func TestTrainAllWriteBackFailureCountsAsFailed(t *testing.T) {
	store := newFakeParamStore(params.SkuParams{Sku: "SKU-A"})
	store.mergeErr = errors.New("save failed")
	trainer := newFakeTrainer(map[string]interface{}{
		"best_parameters": map[string]interface{}{
			"changepoint_prior_scale": 0.2,
		},
	})

	report := NewOrchestrator(store, trainer, logger.NewNop()).TrainAll(context.Background())

	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
}

func TestExtractTunedParamsSearchOrder(t *testing.T) {
	// training_info.best_parameters 优先于顶层 parameters_used
	resp := map[string]interface{}{
		"parameters_used": map[string]interface{}{
			"changepoint_prior_scale": 0.9,
		},
		"training_info": map[string]interface{}{
			"best_parameters": map[string]interface{}{
				"changepoint_prior_scale": 0.1,
			},
		},
	}
	patch := ExtractTunedParams(resp)
	assert.Equal(t, "0.1", patch["changepoint_prior_scale"])

	// training_info 下只有 parameters_used 也生效
	resp = map[string]interface{}{
		"training_info": map[string]interface{}{
			"parameters_used": map[string]interface{}{
				"seasonality_mode": "additive",
			},
		},
	}
	patch = ExtractTunedParams(resp)
	assert.Equal(t, "additive", patch["seasonality_mode"])

	assert.Nil(t, ExtractTunedParams(map[string]interface{}{"status": "ok"}))
	assert.Nil(t, ExtractTunedParams(nil))
}
