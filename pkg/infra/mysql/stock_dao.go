package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockItem 库存记录
type StockItem struct {
	ID  int64           `gorm:"primaryKey"`
	Sku string          `gorm:"column:sku"`
	Qty decimal.Decimal `gorm:"column:qty"`
}

// TableName 表名
func (StockItem) TableName() string {
	return "stock_items"
}

// StockDAO 库存数据访问对象
type StockDAO struct {
	db *gorm.DB
}

// NewStockDAO 创建 StockDAO 实例
func NewStockDAO(db *gorm.DB) *StockDAO {
	return &StockDAO{db: db}
}

// GetQtyBySku 按 SKU 查询当前库存量
func (dao *StockDAO) GetQtyBySku(ctx context.Context, sku string) (decimal.Decimal, error) {
	var item StockItem
	result := dao.db.WithContext(ctx).Where("sku = ?", sku).First(&item)
	if result.Error != nil {
		return decimal.Zero, fmt.Errorf("failed to get stock for %s: %w", sku, result.Error)
	}
	return item.Qty, nil
}
