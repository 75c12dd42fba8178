package accuracy

import (
	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/internal/predictapi"
)

// AccuracyHandler 模型精度校验 HTTP 处理器
type AccuracyHandler struct {
	store  *params.Store
	client *predictapi.Client
}

// NewAccuracyHandler 创建精度校验处理器实例
func NewAccuracyHandler(store *params.Store, client *predictapi.Client) *AccuracyHandler {
	return &AccuracyHandler{
		store:  store,
		client: client,
	}
}
