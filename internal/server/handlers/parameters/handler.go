package parameters

import "github.com/pryimakv14/StockOutPredict/internal/params"

// ParametersHandler SKU 参数管理 HTTP 处理器
type ParametersHandler struct {
	store *params.Store
}

// NewParametersHandler 创建参数处理器实例
func NewParametersHandler(store *params.Store) *ParametersHandler {
	return &ParametersHandler{
		store: store,
	}
}
