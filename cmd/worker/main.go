package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pryimakv14/StockOutPredict/internal/business/predict"
	"github.com/pryimakv14/StockOutPredict/internal/domains"
	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/internal/predictapi"
	"github.com/pryimakv14/StockOutPredict/internal/worker"
	"github.com/pryimakv14/StockOutPredict/pkg/config"
	"github.com/pryimakv14/StockOutPredict/pkg/infra/mysql"
	redisinfra "github.com/pryimakv14/StockOutPredict/pkg/infra/redis"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/worker.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	log.Println("========================================")
	log.Println("  StockOutPredict Worker Starting...")
	log.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	if err := cfg.ValidateWorkers(); err != nil {
		log.Fatalf("Worker config validation failed: %v", err)
	}

	log.Printf("Config loaded: %s, env: %s, log_level: %s\n", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化依赖（MySQL / Redis / 预测服务）
	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to open mysql: %v", err)
	}
	defer mysql.Close(db)

	redisClient, err := redisinfra.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer redisClient.Close()

	paramStore := params.NewStore(mysql.NewConfigDAO(db), zapLogger)
	predictClient := predictapi.NewClient(&cfg.Predict, zapLogger)

	var alerts predict.AlertPublisher
	if cfg.Predict.AlertChannel != "" {
		alerts = redisinfra.NewAlertPublisher(redisClient, cfg.Predict.AlertChannel)
	}

	gate := predict.NewGate(
		paramStore,
		predictClient,
		redisinfra.NewCooldownStore(redisClient),
		mysql.NewNotificationDAO(db),
		mysql.NewStockDAO(db),
		alerts,
		cfg.Predict.Cooldown(),
		zapLogger,
	)

	// 4. 创建 Manager（注入业务处理函数）
	proc := domains.GetProcess(zapLogger, gate)
	mgr, err := worker.NewManagerInstance(cfg, proc, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 5. 启动 Manager（goroutine）
	go func() {
		if err := mgr.Start(); err != nil {
			log.Fatalf("Manager start failed: %v", err)
		}
	}()

	log.Println("Worker started. Press Ctrl+C to shutdown.")

	// 6. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Println("========================================")
	log.Printf("  Received signal: %v\n", sig)
	log.Println("  Shutting down Worker...")
	log.Println("========================================")

	// 7. 优雅关闭 Manager
	mgr.Shutdown()

	fmt.Println("========================================")
	fmt.Println("  Worker exited gracefully")
	fmt.Println("========================================")
}
