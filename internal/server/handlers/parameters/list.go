package parameters

import (
	"github.com/gin-gonic/gin"

	"github.com/pryimakv14/StockOutPredict/pkg/ginx"
)

// List 获取全部 SKU 参数
// GET /api/v1/parameters
func (h *ParametersHandler) List(c *gin.Context) {
	rows := h.store.List(c.Request.Context(), true)
	ginx.Success(c, rows)
}
