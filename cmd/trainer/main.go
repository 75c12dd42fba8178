package main

import (
	"context"
	"flag"
	"log"

	"github.com/pryimakv14/StockOutPredict/internal/business/exporter"
	"github.com/pryimakv14/StockOutPredict/internal/business/training"
	"github.com/pryimakv14/StockOutPredict/internal/params"
	"github.com/pryimakv14/StockOutPredict/internal/predictapi"
	"github.com/pryimakv14/StockOutPredict/pkg/config"
	"github.com/pryimakv14/StockOutPredict/pkg/infra/mysql"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/trainer.yaml", "配置文件路径")
)

// 训练批处理：导出销售历史 → 上传 → 逐 SKU 训练 → 回写调参结果
// 由 cron 每日调度，单个 SKU 失败不中断整批
func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to open mysql: %v", err)
	}
	defer mysql.Close(db)

	ctx := context.Background()

	paramStore := params.NewStore(mysql.NewConfigDAO(db), zapLogger)
	predictClient := predictapi.NewClient(&cfg.Predict, zapLogger)

	// 1. 导出销售历史 CSV
	exp := exporter.NewExporter(mysql.NewSalesDAO(db), paramStore, cfg.Predict.ExportDir, zapLogger)
	csvPath, err := exp.ExportSalesHistory(ctx)
	if err != nil {
		log.Fatalf("Export sales history failed: %v", err)
	}
	zapLogger.Infof(ctx, "[Trainer] Sales history exported: %s", csvPath)

	// 2. 上传到预测服务
	if err := predictClient.Upload(ctx, csvPath); err != nil {
		log.Fatalf("Upload sales history failed: %v", err)
	}
	zapLogger.Infof(ctx, "[Trainer] Sales history uploaded")

	// 3. 逐 SKU 训练
	orchestrator := training.NewOrchestrator(paramStore, predictClient, zapLogger)
	report := orchestrator.TrainAll(ctx)

	zapLogger.Infof(ctx, "[Trainer] Training complete: %d succeeded, %d failed",
		report.Succeeded, report.Failed)
	if report.Failed > 0 {
		zapLogger.Warnf(ctx, "[Trainer] Failures: %s", report.Message())
	}
}
