package domains

import (
	"github.com/pryimakv14/StockOutPredict/internal/domains/common"
	orderpredict "github.com/pryimakv14/StockOutPredict/internal/domains/handlers/order/predict"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	"order_predict": orderpredict.NewPredictHandler,
}
