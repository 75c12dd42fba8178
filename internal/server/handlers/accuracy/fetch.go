package accuracy

import (
	"fmt"
	"math"

	"github.com/gin-gonic/gin"

	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/internal/predictapi"
	"github.com/pryimakv14/StockOutPredict/pkg/ginx"
)

// 图表数据集固定配色
const (
	predictedColor = "rgb(75, 192, 192)"
	actualColor    = "rgb(255, 99, 132)"
)

// ChartPayload 前端图表数据
type ChartPayload struct {
	Labels   []string               `json:"labels"`
	Datasets []Dataset              `json:"datasets"`
	YMin     float64                `json:"y_min"`
	YMax     float64                `json:"y_max"`
	Metrics  map[string]interface{} `json:"metrics,omitempty"`
}

// Dataset 单条曲线
type Dataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
}

// Fetch 运行精度校验并返回图表数据
// GET /api/v1/accuracy/:sku
func (h *AccuracyHandler) Fetch(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		ginx.BadRequest(c, "sku required")
		return
	}

	h.store.List(c.Request.Context(), true)
	row, ok := h.store.Get(c.Request.Context(), sku)
	if !ok {
		ginx.NotFound(c, "sku not found")
		return
	}

	body := accuracyBody(&row)

	result, err := h.client.ValidateAccuracy(c.Request.Context(), sku, body)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	if len(result.Predicted) == 0 && len(result.Actual) == 0 {
		ginx.InternalError(c, "accuracy validation returned no data points")
		return
	}

	ginx.Success(c, buildChart(result))
}

// accuracyBody 从字段表收集精度校验请求体（只带非空字段）
func accuracyBody(row *params.SkuParams) map[string]interface{} {
	body := make(map[string]interface{})
	for i := range params.Fields {
		f := &params.Fields[i]
		if !f.InAccuracy {
			continue
		}
		raw := f.Get(row)
		if raw == "" {
			continue
		}
		if v, ok := f.Encode(raw); ok {
			body[f.Name] = v
		}
	}
	return body
}

// buildChart 把预测/实际序列转换为图表数据
func buildChart(result *predictapi.AccuracyResult) *ChartPayload {
	n := len(result.Predicted)
	if len(result.Actual) > n {
		n = len(result.Actual)
	}

	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = fmt.Sprintf("Day %d", i+1)
	}

	min, max := seriesRange(result.Predicted, result.Actual)

	// y 轴上下各留 5 的边距，下限不低于 0
	yMin := math.Floor(min) - 5
	if yMin < 0 {
		yMin = 0
	}
	yMax := math.Ceil(max) + 5

	return &ChartPayload{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Predicted", Data: result.Predicted, BorderColor: predictedColor},
			{Label: "Actual", Data: result.Actual, BorderColor: actualColor},
		},
		YMin:    yMin,
		YMax:    yMax,
		Metrics: result.Metrics,
	}
}

// seriesRange 两条序列的总体最小/最大值
func seriesRange(series ...[]float64) (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if math.IsInf(min, 1) {
		return 0, 0
	}
	return min, max
}
