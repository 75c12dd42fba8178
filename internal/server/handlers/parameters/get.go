package parameters

import (
	"github.com/gin-gonic/gin"

	"github.com/pryimakv14/StockOutPredict/pkg/ginx"
)

// Get 获取单个 SKU 参数
// GET /api/v1/parameters/:sku
func (h *ParametersHandler) Get(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		ginx.BadRequest(c, "sku required")
		return
	}

	// 强制读库，管理接口不吃缓存
	h.store.List(c.Request.Context(), true)

	row, ok := h.store.Get(c.Request.Context(), sku)
	if !ok {
		ginx.NotFound(c, "sku not found")
		return
	}

	ginx.Success(c, row)
}
