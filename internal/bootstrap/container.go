package bootstrap

import (
	"context"
	"log"

	"far-compliance-be/internal/config"
	"far-compliance-be/internal/controller"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/pkg/metrics"
	"far-compliance-be/internal/repository/contract"
	"far-compliance-be/internal/repository/implementation"
	"far-compliance-be/internal/repository/memory"
	"far-compliance-be/internal/repository/unitofwork"
	"far-compliance-be/internal/service"
	"far-compliance-be/pkg/analysis"
	"far-compliance-be/pkg/audit"
	pktNats "far-compliance-be/pkg/nats"
	"far-compliance-be/pkg/storage"
	"far-compliance-be/pkg/upload"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	UsageController    controller.IUsageController
	DocumentController controller.IDocumentController
	AnalysisController controller.IAnalysisController
	TeamController     controller.ITeamController
	AdminController    controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Metrics *metrics.Collector

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	securityLogger := logger.NewIsolatedLogger(cfg.App.SecurityLogPath)
	collector := metrics.NewCollector()

	c := &Container{Metrics: collector}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS is optional; audit events are dropped when it is unreachable.
	var sink audit.Sink
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		sink = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	eventPublisher := audit.NewEventPublisher(sink, sysLogger)

	// 3. Infrastructure
	usageCache := newUsageCache(ctx, cfg, c)
	docStorage := newStorage(ctx, cfg)
	pipeline := upload.NewPipeline(UploadRules(cfg.Upload), upload.NewPendingSet())
	analyzer := analysis.NewHTTPAnalyzer(cfg.Analysis.FunctionURL)

	// 4. Services
	usageService := service.NewUsageService(uowFactory, usageCache, eventPublisher, collector, sysLogger, cfg.Usage.WarningThreshold)
	uploadService := service.NewUploadService(uowFactory, usageService, pipeline, docStorage, eventPublisher, collector, sysLogger, securityLogger)
	analysisService := service.NewAnalysisService(uowFactory, usageService, pubSub, cfg.Analysis.Topic, sysLogger)
	teamService := service.NewTeamService(uowFactory, usageService, sysLogger)
	adminService := service.NewAdminService(uowFactory, usageService, securityLogger)

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Analysis.Topic,
		uowFactory,
		analyzer,
		usageService,
		eventPublisher,
		collector,
		sysLogger,
	)

	// 5. Controllers
	c.UsageController = controller.NewUsageController(usageService)
	c.DocumentController = controller.NewDocumentController(uploadService)
	c.AnalysisController = controller.NewAnalysisController(analysisService)
	c.TeamController = controller.NewTeamController(teamService)
	c.AdminController = controller.NewAdminController(adminService)

	return c
}

// Close releases broker and cache connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newUsageCache(ctx context.Context, cfg *config.Config, c *Container) contract.UsageCache {
	if cfg.Usage.CacheDriver != "redis" {
		return memory.NewUsageCache()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return implementation.NewRedisUsageCache(rdb)
}

func newStorage(ctx context.Context, cfg *config.Config) storage.Storage {
	if cfg.Storage.Driver == "s3" {
		s3Storage, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:   cfg.Storage.S3Bucket,
			Region:   cfg.Storage.S3Region,
			Endpoint: cfg.Storage.S3Endpoint,
		})
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize S3 storage: %v", err)
		}
		return s3Storage
	}
	return storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.App.BaseURL+"/uploads")
}

// UploadRules applies configured overrides on top of the built-in tables.
func UploadRules(cfg config.UploadConfig) upload.Rules {
	rules := upload.DefaultRules()
	if cfg.MaxFileSizeBytes > 0 {
		rules.MaxFileSizeBytes = cfg.MaxFileSizeBytes
	}
	if cfg.MaxFiles > 0 {
		rules.MaxFiles = cfg.MaxFiles
	}
	if len(cfg.AllowedMimeTypes) > 0 {
		rules.AllowedMimeTypes = cfg.AllowedMimeTypes
	}
	if len(cfg.DangerousExtensions) > 0 {
		rules.DangerousExtensions = cfg.DangerousExtensions
	}
	return rules
}
