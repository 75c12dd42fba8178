package orders

// JobPublisher 任务投递接口
type JobPublisher interface {
	Publish(queue string, data []byte, ttl, delay uint32) error
}

// OrdersHandler 下单事件接入 HTTP 处理器
// 把商城侧的下单 webhook 转成队列任务，预测判定由 Worker 异步执行
type OrdersHandler struct {
	publisher JobPublisher
	queue     string
}

// NewOrdersHandler 创建下单事件处理器实例
func NewOrdersHandler(publisher JobPublisher, queue string) *OrdersHandler {
	return &OrdersHandler{
		publisher: publisher,
		queue:     queue,
	}
}
