package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/internal/predictapi"
	redisinfra "github.com/pryimakv14/StockOutPredict/pkg/infra/redis"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

// 通知标题/描述模板
const (
	notificationTitleFmt = "Low Stock Warning: %s"
	notificationDescFmt  = "Product SKU %s is predicted to run out of stock in %d days."
)

// ParamReader 参数读取接口
type ParamReader interface {
	Get(ctx context.Context, sku string) (params.SkuParams, bool)
	// Refresh 失效本地缓存，下次读取强制回源
	Refresh()
}

// Forecaster 预测调用接口
type Forecaster interface {
	Forecast(ctx context.Context, sku string, currentStock int) (*predictapi.ForecastResult, error)
}

// CooldownFlags 冷却标记存储接口
type CooldownFlags interface {
	LastRequest(ctx context.Context, sku string) (time.Time, bool, error)
	MarkRequested(ctx context.Context, sku string, ttl time.Duration) error
}

// NotificationSink 通知收件箱接口
type NotificationSink interface {
	HasUnread(ctx context.Context, title string) (bool, error)
	Create(ctx context.Context, severity int, title, description string) error
}

// StockReader 库存查询接口
type StockReader interface {
	GetQtyBySku(ctx context.Context, sku string) (decimal.Decimal, error)
}

// AlertPublisher 告警广播接口（可选）
type AlertPublisher interface {
	PublishLowStock(ctx context.Context, alert *redisinfra.LowStockAlert) error
}

// 通知严重级别（major）
const severityMajor = 2

// OrderLine 订单行
type OrderLine struct {
	Sku string `json:"sku"`
	// CurrentStock 下单时已知的库存量（事件携带则免查库）
	CurrentStock *float64 `json:"current_stock,omitempty"`
}

// OrderPlacedEvent 下单事件
type OrderPlacedEvent struct {
	OrderID string      `json:"order_id"`
	StoreID string      `json:"store_id,omitempty"`
	Items   []OrderLine `json:"items"`
}

// Summary 单次事件处理汇总
type Summary struct {
	LinesSeen int // 事件内订单行数
	Forecasts int // 实际发起的预测调用数
	Alerts    int // 触发的低库存告警数
}

// Gate 预测闸门
// 逐订单行判断是否需要发起预测（通知去重 + 冷却窗口），
// 命中阈值时产生低库存通知；任何失败只影响当前行，
// 下单流程永不因预测失败而失败
type Gate struct {
	store    ParamReader
	client   Forecaster
	flags    CooldownFlags
	inbox    NotificationSink
	stock    StockReader
	alerts   AlertPublisher // 可为 nil
	cooldown time.Duration
	log      logger.Logger
}

// NewGate 创建预测闸门
func NewGate(
	store ParamReader,
	client Forecaster,
	flags CooldownFlags,
	inbox NotificationSink,
	stock StockReader,
	alerts AlertPublisher,
	cooldown time.Duration,
	log logger.Logger,
) *Gate {
	return &Gate{
		store:    store,
		client:   client,
		flags:    flags,
		inbox:    inbox,
		stock:    stock,
		alerts:   alerts,
		cooldown: cooldown,
		log:      log,
	}
}

// HandleOrder 处理一笔下单事件
// 捕获处理过程中的一切 panic，只记日志
func (g *Gate) HandleOrder(ctx context.Context, event *OrderPlacedEvent) (summary *Summary) {
	summary = &Summary{}

	defer func() {
		if r := recover(); r != nil {
			g.log.Errorf(ctx, "[PredictGate] panic while processing order %s: %v", event.OrderID, r)
		}
	}()

	if event == nil || event.OrderID == "" {
		return summary
	}

	// 每笔事件回源一次参数集合，保证其他进程
	// （管理端编辑、训练回写）的修改即时生效
	g.store.Refresh()

	for _, line := range event.Items {
		summary.LinesSeen++
		g.processLine(ctx, event.OrderID, line, summary)
	}
	return summary
}

// processLine 处理单个订单行，所有失败就地记日志后放弃该行
func (g *Gate) processLine(ctx context.Context, orderID string, line OrderLine, summary *Summary) {
	sku := line.Sku
	if sku == "" {
		return
	}

	// 1. 未配置跟踪或阈值非数值的 SKU 直接跳过
	row, ok := g.store.Get(ctx, sku)
	if !ok {
		return
	}
	threshold, ok := row.AlertThresholdDays()
	if !ok {
		return
	}

	// 2. 去重：已有未读通知，或冷却窗口内已发起过预测
	if g.hasExistingNotification(ctx, sku) || g.wasRequestedRecently(ctx, sku) {
		return
	}

	// 3. 解析当前库存并发起预测
	stockQty := g.resolveStock(ctx, line)
	result, err := g.client.Forecast(ctx, sku, stockQty)
	if err != nil {
		// 调用失败不写冷却标记：失败不等于"已预测"
		g.log.Errorf(ctx, "[PredictGate] forecast failed: order=%s, sku=%s: %v", orderID, sku, err)
		return
	}
	// 调用成功即计数，响应完整性另行校验
	summary.Forecasts++
	if result.DaysOfStockRemaining == nil {
		g.log.Warnf(ctx, "[PredictGate] forecast response missing days_of_stock_remaining: sku=%s", sku)
		return
	}

	// 4. 标记"已发起预测"，与是否触发告警无关
	if err := g.flags.MarkRequested(ctx, sku, g.cooldown); err != nil {
		g.log.Errorf(ctx, "[PredictGate] set cooldown flag failed: sku=%s: %v", sku, err)
	}

	// 5. 低于阈值则产生通知
	days := int(*result.DaysOfStockRemaining)
	if days < threshold {
		g.notify(ctx, sku, days)
		summary.Alerts++
	}
}

func (g *Gate) hasExistingNotification(ctx context.Context, sku string) bool {
	title := fmt.Sprintf(notificationTitleFmt, sku)
	exists, err := g.inbox.HasUnread(ctx, title)
	if err != nil {
		g.log.Errorf(ctx, "[PredictGate] check notification failed: sku=%s: %v", sku, err)
		return false
	}
	return exists
}

func (g *Gate) wasRequestedRecently(ctx context.Context, sku string) bool {
	if g.cooldown <= 0 {
		return false
	}
	last, found, err := g.flags.LastRequest(ctx, sku)
	if err != nil {
		g.log.Errorf(ctx, "[PredictGate] read cooldown flag failed: sku=%s: %v", sku, err)
		return false
	}
	return found && time.Since(last) < g.cooldown
}

// resolveStock 解析订单行当前库存
// 优先使用事件携带的库存量，缺失时查库；查库失败按 0 处理
func (g *Gate) resolveStock(ctx context.Context, line OrderLine) int {
	if line.CurrentStock != nil {
		return int(*line.CurrentStock)
	}

	qty, err := g.stock.GetQtyBySku(ctx, line.Sku)
	if err != nil {
		g.log.Warnf(ctx, "[PredictGate] stock lookup failed: sku=%s: %v", line.Sku, err)
		return 0
	}
	return int(qty.IntPart())
}

// notify 写入低库存通知并广播告警，失败只记日志
func (g *Gate) notify(ctx context.Context, sku string, days int) {
	title := fmt.Sprintf(notificationTitleFmt, sku)
	description := fmt.Sprintf(notificationDescFmt, sku, days)

	if err := g.inbox.Create(ctx, severityMajor, title, description); err != nil {
		g.log.Errorf(ctx, "[PredictGate] create notification failed: sku=%s: %v", sku, err)
		return
	}

	if g.alerts != nil {
		alert := &redisinfra.LowStockAlert{
			Sku:           sku,
			DaysRemaining: days,
			Timestamp:     time.Now().Unix(),
		}
		if err := g.alerts.PublishLowStock(ctx, alert); err != nil {
			g.log.Errorf(ctx, "[PredictGate] publish alert failed: sku=%s: %v", sku, err)
		}
	}

	g.log.Infof(ctx, "[PredictGate] low stock notification created: sku=%s, days_remaining=%d", sku, days)
}
