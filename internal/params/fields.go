package params

import "strconv"

// Kind 字段值类型（出边界序列化用）
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

// Field 字段映射表条目
// 外部字段名到行内字段的唯一翻译点：合并、训练请求、
// 训练结果回写、精度校验请求都查这张表
type Field struct {
	Name       string // 外部字段名（配置 blob / API 共用）
	Kind       Kind
	Tunable    bool // 训练服务可调的超参（训练请求 / 回写范围）
	InAccuracy bool // 精度校验请求包含的字段
	Get        func(*SkuParams) string
	Set        func(*SkuParams, string)
}

// Fields 全量字段表（sku 本身不在表内）
var Fields = []Field{
	{
		Name: "alert_threshold", Kind: KindInt,
		Get: func(p *SkuParams) string { return p.AlertThreshold },
		Set: func(p *SkuParams, v string) { p.AlertThreshold = v },
	},
	{
		Name: "test_period_days", Kind: KindInt, InAccuracy: true,
		Get: func(p *SkuParams) string { return p.TestPeriodDays },
		Set: func(p *SkuParams, v string) { p.TestPeriodDays = v },
	},
	{
		Name: "changepoint_prior_scale", Kind: KindFloat, Tunable: true, InAccuracy: true,
		Get: func(p *SkuParams) string { return p.ChangepointPriorScale },
		Set: func(p *SkuParams, v string) { p.ChangepointPriorScale = v },
	},
	{
		Name: "seasonality_prior_scale", Kind: KindFloat, Tunable: true, InAccuracy: true,
		Get: func(p *SkuParams) string { return p.SeasonalityPriorScale },
		Set: func(p *SkuParams, v string) { p.SeasonalityPriorScale = v },
	},
	{
		Name: "holidays_prior_scale", Kind: KindFloat, Tunable: true, InAccuracy: true,
		Get: func(p *SkuParams) string { return p.HolidaysPriorScale },
		Set: func(p *SkuParams, v string) { p.HolidaysPriorScale = v },
	},
	{
		Name: "seasonality_mode", Kind: KindString, Tunable: true, InAccuracy: true,
		Get: func(p *SkuParams) string { return p.SeasonalityMode },
		Set: func(p *SkuParams, v string) { p.SeasonalityMode = v },
	},
	{
		Name: "yearly_seasonality", Kind: KindBool, Tunable: true,
		Get: func(p *SkuParams) string { return p.YearlySeasonality },
		Set: func(p *SkuParams, v string) { p.YearlySeasonality = v },
	},
	{
		Name: "weekly_seasonality", Kind: KindBool, Tunable: true,
		Get: func(p *SkuParams) string { return p.WeeklySeasonality },
		Set: func(p *SkuParams, v string) { p.WeeklySeasonality = v },
	},
	{
		Name: "daily_seasonality", Kind: KindBool, Tunable: true,
		Get: func(p *SkuParams) string { return p.DailySeasonality },
		Set: func(p *SkuParams, v string) { p.DailySeasonality = v },
	},
	{
		Name: "lock_params", Kind: KindString,
		Get: func(p *SkuParams) string { return p.LockParams },
		Set: func(p *SkuParams, v string) { p.LockParams = v },
	},
}

// FieldByName 按外部字段名查表
func FieldByName(name string) (*Field, bool) {
	for i := range Fields {
		if Fields[i].Name == name {
			return &Fields[i], true
		}
	}
	return nil, false
}

// Encode 将存储字符串转为请求体 JSON 值
// 空串或解析失败返回 ok=false（字段不进请求体）
func (f *Field) Encode(raw string) (interface{}, bool) {
	if raw == "" {
		return nil, false
	}
	switch f.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, false
		}
		return n, true
	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		return v, true
	case KindBool:
		b, ok := parseBool(raw)
		if !ok {
			return nil, false
		}
		return b, true
	default:
		return raw, true
	}
}

// DecodeValue 将训练服务返回的 JSON 值转为存储字符串
// 不识别的类型返回 ok=false
func (f *Field) DecodeValue(v interface{}) (string, bool) {
	switch f.Kind {
	case KindBool:
		switch b := v.(type) {
		case bool:
			if b {
				return BoolTrue, true
			}
			return BoolFalse, true
		case string:
			parsed, ok := parseBool(b)
			if !ok {
				return "", false
			}
			if parsed {
				return BoolTrue, true
			}
			return BoolFalse, true
		}
		return "", false
	case KindFloat, KindInt:
		switch n := v.(type) {
		case float64:
			return strconv.FormatFloat(n, 'g', -1, 64), true
		case string:
			if _, err := strconv.ParseFloat(n, 64); err != nil {
				return "", false
			}
			return n, true
		}
		return "", false
	default:
		s, ok := v.(string)
		return s, ok
	}
}

// parseBool 解析存储布尔表示（"1"/"0"、true/false）
func parseBool(raw string) (bool, bool) {
	switch raw {
	case BoolTrue, "true", "yes":
		return true, true
	case BoolFalse, "false", "no":
		return false, true
	default:
		return false, false
	}
}
