package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesOrderItem 历史销售明细（商城订单行表）
type SalesOrderItem struct {
	ID         int64           `gorm:"primaryKey"`
	OrderID    int64           `gorm:"column:order_id"`
	Sku        string          `gorm:"column:sku"`
	QtyOrdered decimal.Decimal `gorm:"column:qty_ordered"`
	CreatedAt  string          `gorm:"column:created_at"` // 原样透传时间串
}

// TableName 表名
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// SalesDAO 销售历史数据访问对象
type SalesDAO struct {
	db *gorm.DB
}

// NewSalesDAO 创建 SalesDAO 实例
func NewSalesDAO(db *gorm.DB) *SalesDAO {
	return &SalesDAO{db: db}
}

// ListBySkusBefore 分页读取指定 SKU 集合在 before 之前的销售明细
// 按订单 ID 升序，limit/offset 控制批次大小以限制内存
func (dao *SalesDAO) ListBySkusBefore(
	ctx context.Context,
	skus []string,
	before string,
	limit int,
	offset int,
) ([]SalesOrderItem, error) {
	var items []SalesOrderItem
	result := dao.db.WithContext(ctx).
		Where("sku IN ?", skus).
		Where("created_at < ?", before).
		Order("order_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&items)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list sales history: %w", result.Error)
	}
	return items, nil
}
