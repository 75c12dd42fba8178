package predict

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pryimakv14/StockOutPredict/internal/business/predict"
	"github.com/pryimakv14/StockOutPredict/internal/domains/common"
	"github.com/pryimakv14/StockOutPredict/internal/domains/common/job"
	"github.com/pryimakv14/StockOutPredict/internal/domains/common/response"
	"github.com/pryimakv14/StockOutPredict/internal/framework"
	"github.com/pryimakv14/StockOutPredict/pkg/errorutil"
)

// PredictHandler 下单预测 Handler
type PredictHandler struct {
	ctx     context.Context
	meta    *job.Meta
	event   *predict.OrderPlacedEvent
	gate    *predict.Gate
	summary *predict.Summary
}

// NewPredictHandler 创建下单预测 Handler
// 解析标准化 Job 消息
func NewPredictHandler(ctx context.Context, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	// 解析 payload（业务数据）
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	var event predict.OrderPlacedEvent
	if err := json.Unmarshal(payloadBytes, &event); err != nil {
		return nil, fmt.Errorf("unmarshal order event failed: %w", err)
	}

	// 校验必填字段
	if event.OrderID == "" {
		return nil, fmt.Errorf("order_id is required")
	}
	if len(event.Items) == 0 {
		return nil, fmt.Errorf("items is required")
	}
	if event.StoreID == "" {
		event.StoreID = meta.StoreID
	}

	return &PredictHandler{
		ctx:   ctx,
		meta:  meta,
		event: &event,
	}, nil
}

// GetProcess 处理下单预测请求
func (h *PredictHandler) GetProcess() *response.Response {
	result := response.NewPredictResult()

	// 步骤链：取依赖、过闸门、组装结果
	chain := framework.NewPreProcessor(
		h.resolveGate,
		h.runGate,
		func(ctx context.Context) error {
			result.Data = map[string]interface{}{
				"order_id":  h.event.OrderID,
				"lines":     h.summary.LinesSeen,
				"forecasts": h.summary.Forecasts,
				"alerts":    h.summary.Alerts,
			}
			return nil
		},
	)

	err := chain.Run(h.ctx)

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	return resp
}

// resolveGate 从 Context 取出预测闸门
func (h *PredictHandler) resolveGate(ctx context.Context) error {
	gate, ok := ctx.Value("predict_gate").(*predict.Gate)
	if !ok || gate == nil {
		return errorutil.NonRetriable("predict gate not found in context")
	}
	h.gate = gate
	return nil
}

// runGate 逐订单行执行预测判定
// 处理超时视为基础设施故障，消息可重投
func (h *PredictHandler) runGate(ctx context.Context) error {
	h.summary = h.gate.HandleOrder(ctx, h.event)
	if err := ctx.Err(); err != nil {
		return errorutil.Retriable(fmt.Sprintf("processing interrupted: %v", err))
	}
	return nil
}
