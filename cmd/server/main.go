package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/compliance"
	"github.com/hrflow/compliance-engine/internal/config"
	larknotify "github.com/hrflow/compliance-engine/internal/infrastructure/external/lark"
	aiopenai "github.com/hrflow/compliance-engine/internal/infrastructure/external/openai"
	"github.com/hrflow/compliance-engine/internal/infrastructure/persistence/repository"
	httpserver "github.com/hrflow/compliance-engine/internal/interfaces/http"
	"github.com/hrflow/compliance-engine/internal/report"
	"github.com/hrflow/compliance-engine/pkg/database"
	"github.com/hrflow/compliance-engine/pkg/utils"
)

func main() {
	// Local .env, if present, feeds the env binds in config.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting labor compliance engine",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	balanceRepo := repository.NewBalanceRepository(db.DB, logger)
	overtimeRepo := repository.NewOvertimeRepository(db.DB, logger)
	knowledgeRepo := repository.NewKnowledgeRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)

	analyzer := aiopenai.NewAnalyzer(aiopenai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		Model:          cfg.OpenAI.Model,
		Temperature:    cfg.OpenAI.Temperature,
		RetrievalLimit: cfg.Compliance.KnowledgeRetrievalLimit,
		Timeout:        cfg.OpenAI.Timeout,
	}, knowledgeRepo, logger)

	var notifier port.Notifier
	if cfg.Lark.AppID != "" {
		notifier = larknotify.NewNotifier(larknotify.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
		}, logger)
	}

	engine := compliance.NewEngine(
		compliance.NewLeaveEvaluator(balanceRepo, logger),
		compliance.NewOvertimeEvaluator(overtimeRepo, knowledgeRepo, logger),
		analyzer,
		auditRepo,
		notifier,
		logger,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine, auditRepo, report.NewExporter(logger), cfg.Compliance.HistoryLimit, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
