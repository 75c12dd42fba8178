package orders

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pryimakv14/StockOutPredict/internal/domains/common/job"
	"github.com/pryimakv14/StockOutPredict/pkg/ginx"
)

// 投递任务的 TTL（一天内没被消费掉就没有预测价值了）
const jobTTLSeconds = 86400

// OrderLineRequest 订单行
type OrderLineRequest struct {
	Sku          string   `json:"sku" binding:"required"`
	CurrentStock *float64 `json:"current_stock"`
}

// CreateOrderEventRequest 下单事件请求体
type CreateOrderEventRequest struct {
	OrderID string             `json:"order_id" binding:"required"`
	StoreID string             `json:"store_id"`
	Items   []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// Create 接收下单事件并投递预测任务
// POST /api/v1/orders
func (h *OrdersHandler) Create(c *gin.Context) {
	var req CreateOrderEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	requestID := uuid.New().String()

	items := make([]map[string]interface{}, 0, len(req.Items))
	for _, item := range req.Items {
		line := map[string]interface{}{"sku": item.Sku}
		if item.CurrentStock != nil {
			line["current_stock"] = *item.CurrentStock
		}
		items = append(items, line)
	}

	payload := &job.Job{
		Payload: &job.JobPayload{
			Data: &job.JobPayloadData{
				RequestID:  requestID,
				StoreID:    req.StoreID,
				ActionType: "order_predict",
				ID:         req.OrderID,
				Data: map[string]interface{}{
					"order_id": req.OrderID,
					"store_id": req.StoreID,
					"items":    items,
				},
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	if err := h.publisher.Publish(h.queue, data, jobTTLSeconds, 0); err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, gin.H{
		"request_id": requestID,
		"order_id":   req.OrderID,
		"queued":     true,
	})
}
