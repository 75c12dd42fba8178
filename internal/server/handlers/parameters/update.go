package parameters

import (
	"github.com/gin-gonic/gin"

	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/pkg/ginx"
)

// Update 部分更新单个 SKU 参数
// PUT /api/v1/parameters/:sku
// 请求体为外部字段名到字符串值的映射，只覆盖出现的键
func (h *ParametersHandler) Update(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		ginx.BadRequest(c, "sku required")
		return
	}

	var patch map[string]string
	if err := c.ShouldBindJSON(&patch); err != nil {
		ginx.BadRequest(c, err.Error())
		return
	}
	if len(patch) == 0 {
		ginx.BadRequest(c, "empty patch")
		return
	}

	if details := validatePatch(patch); len(details) > 0 {
		ginx.ErrorWithDetails(c, 400, "Validation failed", details)
		return
	}

	if err := h.store.Merge(c.Request.Context(), sku, params.Patch(patch)); err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	row, _ := h.store.Get(c.Request.Context(), sku)
	ginx.Success(c, row)
}

// validatePatch 按字段表校验补丁
// 空串合法（等价于清除该字段）
func validatePatch(patch map[string]string) []ginx.ErrorDetail {
	var details []ginx.ErrorDetail

	for name, value := range patch {
		field, ok := params.FieldByName(name)
		if !ok {
			details = append(details, ginx.ErrorDetail{
				Path: name,
				Info: "unknown field",
			})
			continue
		}

		if value == "" {
			continue
		}

		switch name {
		case "seasonality_mode":
			if value != params.SeasonalityAdditive && value != params.SeasonalityMultiplicative {
				details = append(details, ginx.ErrorDetail{
					Path: name,
					Info: "must be additive or multiplicative",
				})
			}
			continue
		case "lock_params":
			if value != params.LockModeParams && value != params.LockModeModel {
				details = append(details, ginx.ErrorDetail{
					Path: name,
					Info: "must be params or model",
				})
			}
			continue
		}

		if _, ok := field.Encode(value); !ok {
			details = append(details, ginx.ErrorDetail{
				Path: name,
				Info: "invalid value for field type",
			})
		}
	}

	return details
}
