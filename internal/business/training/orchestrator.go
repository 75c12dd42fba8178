package training

import (
	"context"
	"fmt"
	"strings"

	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

// Trainer 训练调用接口
type Trainer interface {
	Train(ctx context.Context, sku string, body map[string]interface{}) (map[string]interface{}, error)
}

// ParamStore 参数存储接口（读 + 回写）
type ParamStore interface {
	List(ctx context.Context, forceRefresh bool) []params.SkuParams
	Merge(ctx context.Context, sku string, patch params.Patch) error
}

// Report 批次训练汇总
type Report struct {
	Succeeded int
	Failed    int
	messages  []string
}

// Message 失败明细的拼接消息
func (r *Report) Message() string {
	return strings.Join(r.messages, "; ")
}

func (r *Report) addFailure(sku string, err error) {
	r.Failed++
	r.messages = append(r.messages, fmt.Sprintf("%s: %v", sku, err))
}

// Orchestrator 训练编排器
// 逐 SKU 决定锁定/自调参模式并触发训练，自调参结果回写
// 参数存储；单个 SKU 失败只计数，不中断批次
type Orchestrator struct {
	store  ParamStore
	client Trainer
	log    logger.Logger
}

// NewOrchestrator 创建训练编排器
func NewOrchestrator(store ParamStore, client Trainer, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		client: client,
		log:    log,
	}
}

// TrainAll 对全部受跟踪 SKU 执行训练
// 强制刷新后读取参数集合，保证训练基于最新的锁定配置
func (o *Orchestrator) TrainAll(ctx context.Context) *Report {
	report := &Report{}

	rows := o.store.List(ctx, true)
	for _, row := range rows {
		if row.Sku == "" {
			continue
		}

		body, selfTune := buildTrainRequest(&row)

		resp, err := o.client.Train(ctx, row.Sku, body)
		if err != nil {
			o.log.Errorf(ctx, "[Training] train failed for sku=%s: %v", row.Sku, err)
			report.addFailure(row.Sku, err)
			continue
		}

		// 自调参模式下回写训练服务选定的超参
		if selfTune {
			if patch := ExtractTunedParams(resp); len(patch) > 0 {
				if err := o.store.Merge(ctx, row.Sku, patch); err != nil {
					o.log.Errorf(ctx, "[Training] write-back failed for sku=%s: %v", row.Sku, err)
					report.addFailure(row.Sku, err)
					continue
				}
				o.log.Infof(ctx, "[Training] tuned parameters written back for sku=%s: %d fields",
					row.Sku, len(patch))
			}
		}

		report.Succeeded++
	}

	o.log.Infof(ctx, "[Training] batch complete: succeeded=%d, failed=%d",
		report.Succeeded, report.Failed)
	return report
}

// buildTrainRequest 根据锁定模式构造训练请求
// 返回请求体（nil 表示无请求体）和是否接受回写
func buildTrainRequest(row *params.SkuParams) (map[string]interface{}, bool) {
	switch row.LockParams {
	case params.LockModeParams:
		body := lockedBody(row)
		if len(body) == 0 {
			// 锁定但没有可发送的超参，降级为自调参
			return nil, true
		}
		return body, false
	case params.LockModeModel:
		// 模型锁定：无请求体触发训练，忽略返回的超参
		return nil, false
	default:
		return nil, true
	}
}

// lockedBody 构造超参锁定请求体
// 仅包含非空的可调字段，告警阈值是本地告警配置，从不发送
func lockedBody(row *params.SkuParams) map[string]interface{} {
	body := make(map[string]interface{})
	for i := range params.Fields {
		f := &params.Fields[i]
		if !f.Tunable {
			continue
		}
		if v, ok := f.Encode(f.Get(row)); ok {
			body[f.Name] = v
		}
	}
	return body
}

// ExtractTunedParams 从训练响应提取可调超参
// 按优先级 best_parameters → parameters_used 查找超参对象，
// 先查 training_info 节点，再查顶层
func ExtractTunedParams(resp map[string]interface{}) params.Patch {
	obj := findTunedObject(resp)
	if obj == nil {
		return nil
	}

	patch := make(params.Patch)
	for i := range params.Fields {
		f := &params.Fields[i]
		if !f.Tunable {
			continue
		}
		v, exists := obj[f.Name]
		if !exists || v == nil {
			continue
		}
		if s, ok := f.DecodeValue(v); ok {
			patch[f.Name] = s
		}
	}
	return patch
}

func findTunedObject(resp map[string]interface{}) map[string]interface{} {
	if resp == nil {
		return nil
	}
	scopes := []map[string]interface{}{resp}
	if info, ok := resp["training_info"].(map[string]interface{}); ok {
		scopes = []map[string]interface{}{info, resp}
	}
	for _, scope := range scopes {
		for _, key := range []string{"best_parameters", "parameters_used"} {
			if obj, ok := scope[key].(map[string]interface{}); ok {
				return obj
			}
		}
	}
	return nil
}
