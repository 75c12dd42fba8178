package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pryimakv14/StockOutPredict/pkg/infra/mysql"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

// 导出文件名与分页批次
const (
	exportFileName = "sales_history.csv"
	batchSize      = 1000
)

// SalesReader 销售历史读取接口
type SalesReader interface {
	ListBySkusBefore(ctx context.Context, skus []string, before string, limit, offset int) ([]mysql.SalesOrderItem, error)
}

// SkuSource 受跟踪 SKU 来源
type SkuSource interface {
	ListSkus(ctx context.Context) []string
}

// Exporter 销售历史 CSV 导出器
type Exporter struct {
	sales SalesReader
	store SkuSource
	dir   string
	log   logger.Logger
}

// NewExporter 创建导出器
func NewExporter(sales SalesReader, store SkuSource, dir string, log logger.Logger) *Exporter {
	return &Exporter{
		sales: sales,
		store: store,
		dir:   dir,
		log:   log,
	}
}

// ExportSalesHistory 导出全部受跟踪 SKU 的历史销售明细
// 仅导出今天之前的记录（当天数据仍在累积）；写入期间持有
// 排他文件锁，任何退出路径都释放；无 SKU 时仍产出表头文件。
// 返回产物绝对路径
func (e *Exporter) ExportSalesHistory(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir failed: %w", err)
	}

	path, err := filepath.Abs(filepath.Join(e.dir, exportFileName))
	if err != nil {
		return "", fmt.Errorf("resolve export path failed: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open export file failed: %w", err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return "", fmt.Errorf("lock export file failed: %w", err)
	}
	defer unlockFile(f)

	w := csv.NewWriter(f)
	if err := w.Write([]string{"sku", "qty_ordered", "created_at"}); err != nil {
		return "", fmt.Errorf("write csv header failed: %w", err)
	}

	skus := e.store.ListSkus(ctx)
	if len(skus) == 0 {
		e.log.Infof(ctx, "[Exporter] no tracked SKUs, writing header-only file")
		w.Flush()
		if err := w.Error(); err != nil {
			return "", fmt.Errorf("flush csv failed: %w", err)
		}
		return path, nil
	}

	before := time.Now().Format("2006-01-02")
	total := 0
	offset := 0
	for {
		items, err := e.sales.ListBySkusBefore(ctx, skus, before, batchSize, offset)
		if err != nil {
			return "", fmt.Errorf("read sales batch failed: %w", err)
		}

		for _, item := range items {
			if item.Sku == "" {
				continue
			}
			row := []string{item.Sku, item.QtyOrdered.String(), item.CreatedAt}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("write csv row failed: %w", err)
			}
			total++
		}

		if len(items) < batchSize {
			break
		}
		offset += batchSize
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv failed: %w", err)
	}

	e.log.Infof(ctx, "[Exporter] exported %d rows for %d SKUs to %s", total, len(skus), path)
	return path, nil
}
