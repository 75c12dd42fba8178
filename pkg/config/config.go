package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	MySQL   MySQLConfig    `mapstructure:"mysql"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Lmstfy  LmstfyConfig   `mapstructure:"lmstfy"`
	Predict PredictConfig  `mapstructure:"predict"`
	Server  ServerConfig   `mapstructure:"server"`
	Workers []WorkerConfig `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// MySQLConfig MySQL 配置（商城数据库）
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
	Queue     string `mapstructure:"queue"` // 生产侧投递队列（apiserver 用）
}

// PredictConfig 预测服务配置
type PredictConfig struct {
	BaseURL         string        `mapstructure:"base_url"`         // 预测服务地址
	CooldownHours   int           `mapstructure:"cooldown_hours"`   // 预测冷却时间（小时），缺省 3
	ExportDir       string        `mapstructure:"export_dir"`       // CSV 导出目录
	AlertChannel    string        `mapstructure:"alert_channel"`    // 低库存告警 Redis 频道（可为空）
	UploadTimeout   time.Duration `mapstructure:"upload_timeout"`   // 上传超时（大文件，分钟级）
	TrainTimeout    time.Duration `mapstructure:"train_timeout"`    // 训练超时（计算密集，十分钟级）
	ForecastTimeout time.Duration `mapstructure:"forecast_timeout"` // 预测超时（下单链路，秒级）
}

// DefaultCooldownHours 冷却时间缺省值（小时）
const DefaultCooldownHours = 3

// Cooldown 返回冷却时间窗口
func (c *PredictConfig) Cooldown() time.Duration {
	hours := c.CooldownHours
	if hours <= 0 {
		hours = DefaultCooldownHours
	}
	return time.Duration(hours) * time.Hour
}

// ServerConfig HTTP Server 配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证公共配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Predict.BaseURL == "" {
		return fmt.Errorf("predict.base_url is required")
	}
	return nil
}

// ValidateWorkers 验证 Worker 进程所需配置
func (c *Config) ValidateWorkers() error {
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}
