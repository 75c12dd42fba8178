package framework

import (
	"context"
	"fmt"
)

// PreProcessor 业务处理步骤链
// 下单预测 handler 把处理过程拆成取依赖、执行判定、
// 组装结果等顺序步骤，链上任一步骤失败即短路
type PreProcessor struct {
	steps []ProcessorFunc
}

// NewPreProcessor 创建步骤链
func NewPreProcessor(steps ...ProcessorFunc) *PreProcessor {
	return &PreProcessor{
		steps: steps,
	}
}

// Run 顺序执行步骤链
// 用 %w 包装保留原始错误链，重试语义可穿透包装
func (p *PreProcessor) Run(ctx context.Context) error {
	for i, step := range p.steps {
		if err := step(ctx); err != nil {
			return fmt.Errorf("step[%d] failed: %w", i, err)
		}
	}
	return nil
}
