package response

import (
	"github.com/pryimakv14/StockOutPredict/internal/domains/common/job"
	"github.com/pryimakv14/StockOutPredict/pkg/errorutil"
)

// PredictResult 预测检查结果（实现 ResultI 接口）
type PredictResult struct {
	ID     string           `json:"id"`
	Status string           `json:"status"`
	Data   interface{}      `json:"data"`
	Error  *errorutil.Error `json:"error,omitempty"`
}

const (
	PredictStatusSuccess = "SUCCESS"
	PredictStatusFailed  = "FAILED"
)

// NewPredictResult 创建预测检查结果
func NewPredictResult() *PredictResult {
	return &PredictResult{}
}

// Set 实现 ResultI 接口
func (r *PredictResult) Set(meta *job.Meta, err error) {
	r.ID = meta.ID
	if err != nil {
		r.Status = PredictStatusFailed
		r.Error = errorutil.Wrap(err)
	} else {
		r.Status = PredictStatusSuccess
	}
}

// GetStatus 实现 ResultI 接口
func (r *PredictResult) GetStatus() string {
	return r.Status
}
