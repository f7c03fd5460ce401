package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/application/dispatcher"
	"github.com/rivohq/opsflow/internal/application/service"
	"github.com/rivohq/opsflow/internal/config"
	"github.com/rivohq/opsflow/internal/domain/event"
	"github.com/rivohq/opsflow/internal/infrastructure/external/lark"
	"github.com/rivohq/opsflow/internal/infrastructure/notification"
	"github.com/rivohq/opsflow/internal/infrastructure/persistence/repository"
	httpserver "github.com/rivohq/opsflow/internal/interfaces/http"
	"github.com/rivohq/opsflow/pkg/database"
	"github.com/rivohq/opsflow/pkg/utils"
)

func main() {
	// Local .env overrides for development; absent file is fine
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
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

	logger.Info("Starting workflow service",
		zap.String("version", "1.0.0"),
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

	// Repositories
	claimRepo := repository.NewClaimRepository(db.DB, logger)
	leaveRepo := repository.NewLeaveRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)
	rewardRepo := repository.NewRewardRepository(db.DB, logger)

	// Approval collaborator
	sdkClient := lark.NewSDKClient(lark.Config{
		AppID:        cfg.Lark.AppID,
		AppSecret:    cfg.Lark.AppSecret,
		ApprovalCode: cfg.Lark.ApprovalCode,
	}, logger)
	approvalClient := lark.NewApprovalClient(sdkClient, logger)

	// Notification fan-out (log-only delivery until a gateway is wired)
	notifier := notification.NewNotifier(notificationRepo, nil, logger)

	kv := &kvLogger{s: logger.Sugar()}

	settings := service.Settings{
		DefaultCurrency:      cfg.Workflow.DefaultCurrency,
		DefaultPriority:      cfg.Workflow.DefaultPriority,
		ApprovalFlowType:     cfg.Workflow.ApprovalFlowType,
		RewardPointsPerClaim: cfg.Workflow.RewardPointsPerClaim,
		DefaultPageSize:      cfg.Workflow.DefaultPageSize,
		MaxPageSize:          cfg.Workflow.MaxPageSize,
		ApprovalDeadlines:    service.DefaultSettings().ApprovalDeadlines,
	}

	engine := service.NewTransitionEngine(nil, kv)
	claimService := service.NewClaimService(claimRepo, userRepo, approvalClient, notifier, notificationRepo, rewardRepo, engine, settings, kv)
	leaveService := service.NewLeaveService(leaveRepo, userRepo, approvalClient, notifier, notificationRepo, engine, settings, kv)

	// Shared approval event stream; each orchestrator filters on entity type
	events := dispatcher.NewDispatcher(dispatcher.WithLogger(kv))
	events.SubscribeNamed(event.TypeApprovalActionPerformed, "claim-workflow", claimService.HandleApprovalAction)
	events.SubscribeNamed(event.TypeApprovalActionPerformed, "leave-workflow", leaveService.HandleApprovalAction)
	defer events.Close()

	processor := lark.NewEventProcessor(cfg.Lark.ApprovalCode, events, logger)
	verifier := lark.NewWebhookVerifier(cfg.Lark.VerifyToken, cfg.Lark.EncryptKey, logger)
	webhook := httpserver.NewWebhookHandler(processor, verifier, kv)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, claimService, leaveService, webhook, kv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// kvLogger adapts zap's sugared logger onto the key-value Logger interfaces
// used by the application layer.
type kvLogger struct {
	s *zap.SugaredLogger
}

func (l *kvLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *kvLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}

func (l *kvLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
