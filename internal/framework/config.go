package framework

import "time"

// SubscriberConfig 订单事件拉取配置
type SubscriberConfig struct {
	QueueName    string        // 队列名称
	Concurrency  int           // 并发拉取数
	Timeout      time.Duration // 拉取超时
	TTR          time.Duration // Time-To-Run，超时未 ACK 即重投
	Rate         time.Duration // 速率限制（拉取间隔）
	ErrorBackoff time.Duration // 错误退避时间
}

// Workers 并发拉取数，未配置时单线程
func (c *SubscriberConfig) Workers() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

// ProcessorConfig 预测处理配置
type ProcessorConfig struct {
	Concurrency int           // 并发处理数
	BufferSize  int           // inputChan 缓冲区大小
	Timeout     time.Duration // 单个消息处理超时
}

// Workers 并发处理数，未配置时单线程
func (c *ProcessorConfig) Workers() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

// Buffer inputChan 缓冲区大小，未配置时无缓冲
func (c *ProcessorConfig) Buffer() int {
	if c.BufferSize < 0 {
		return 0
	}
	return c.BufferSize
}
