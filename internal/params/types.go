package params

import "strconv"

// 锁定模式取值
const (
	LockModeNone   = ""       // 由训练服务自调参，回写结果
	LockModeParams = "params" // 超参锁定，按行内值训练
	LockModeModel  = "model"  // 模型锁定，训练服务保持现有模型
)

// 季节性模式取值
const (
	SeasonalityAdditive       = "additive"
	SeasonalityMultiplicative = "multiplicative"
)

// 布尔字段存储约定（沿用后台配置的 yes/no 表示）
const (
	BoolTrue  = "1"
	BoolFalse = "0"
)

// SkuParams 单个 SKU 的预测参数行
// 所有非键字段均为外部表示（字符串），空串等价于"未设置"；
// 数值性校验只在出边界（训练请求、告警阈值判断）时进行
type SkuParams struct {
	Sku                   string `json:"sku"`
	AlertThreshold        string `json:"alert_threshold,omitempty"`
	TestPeriodDays        string `json:"test_period_days,omitempty"` // 历史字段，精度校验接口仍在使用
	ChangepointPriorScale string `json:"changepoint_prior_scale,omitempty"`
	SeasonalityPriorScale string `json:"seasonality_prior_scale,omitempty"`
	HolidaysPriorScale    string `json:"holidays_prior_scale,omitempty"`
	SeasonalityMode       string `json:"seasonality_mode,omitempty"`
	YearlySeasonality     string `json:"yearly_seasonality,omitempty"`
	WeeklySeasonality     string `json:"weekly_seasonality,omitempty"`
	DailySeasonality      string `json:"daily_seasonality,omitempty"`
	LockParams            string `json:"lock_params,omitempty"`
}

// AlertThresholdDays 解析告警阈值
// 非数值或未设置返回 ok=false，调用方应跳过该 SKU
func (p *SkuParams) AlertThresholdDays() (int, bool) {
	if p.AlertThreshold == "" {
		return 0, false
	}
	n, err := strconv.Atoi(p.AlertThreshold)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Patch 部分更新，键为外部字段名
// 仅出现的键会覆盖行内对应字段，未知键被忽略
type Patch map[string]string
