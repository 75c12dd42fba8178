package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/internal/predictapi"
	"github.com/pryimakv14/StockOutPredict/internal/server/handlers/accuracy"
	"github.com/pryimakv14/StockOutPredict/internal/server/handlers/orders"
	"github.com/pryimakv14/StockOutPredict/internal/server/handlers/parameters"
	"github.com/pryimakv14/StockOutPredict/internal/server/routers"
	"github.com/pryimakv14/StockOutPredict/pkg/config"
	"github.com/pryimakv14/StockOutPredict/pkg/infra/mysql"
	"github.com/pryimakv14/StockOutPredict/pkg/lmstfy"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	if cfg.Server.Port == "" {
		log.Fatalf("server.port is required")
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化依赖
	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to open mysql: %v", err)
	}
	defer mysql.Close(db)

	paramStore := params.NewStore(mysql.NewConfigDAO(db), zapLogger)
	predictClient := predictapi.NewClient(&cfg.Predict, zapLogger)

	// 下单接入端点可选，取决于是否配置了队列
	var ordersHandler *orders.OrdersHandler
	if cfg.Lmstfy.Host != "" && cfg.Lmstfy.Queue != "" {
		lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
		if err != nil {
			log.Fatalf("Failed to create lmstfy client: %v", err)
		}
		ordersHandler = orders.NewOrdersHandler(lmstfyClient, cfg.Lmstfy.Queue)
	}

	// 4. 创建路由和 HTTP Server
	engine := routers.SetupRoutes(
		parameters.NewParametersHandler(paramStore),
		accuracy.NewAccuracyHandler(paramStore, predictClient),
		ordersHandler,
		zapLogger,
	)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	// 5. 启动 HTTP Server（后台 goroutine）
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 6. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
		gracefulShutdown(server)
	case err := <-serverErrChan:
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Println("Application stopped")
}

// gracefulShutdown 优雅停机
func gracefulShutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}
}
