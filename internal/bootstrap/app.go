package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tutordesk/internal/ai"
	"tutordesk/internal/app"
	"tutordesk/internal/cache"
	"tutordesk/internal/config"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/platform/database"
	"tutordesk/internal/platform/objectstore"
	rabbitmqClient "tutordesk/internal/platform/rabbitmq"
	redisClient "tutordesk/internal/platform/redis"
	"tutordesk/internal/repository"
	"tutordesk/internal/worker"
)

type App struct {
	Config *config.Config
	// ConfigErr is set when the data platform is not configured. The server
	// then answers API calls with a configuration banner instead of failing.
	ConfigErr error
	Log       *logger.Logger

	DB            *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	LocalFiles    *objectstore.LocalStore
	Hub           *app.SessionHub
	SessionWorker *worker.SessionEventWorker

	Auth      *app.AuthService
	Workspace *app.WorkspaceService
	Voice     *app.VoiceService

	closers   []func() error
	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}
	return NewWithConfig(ctx, cfg, log)
}

// NewWithConfig wires every component from cfg. Redis and RabbitMQ are
// optional; without them state and events stay in process.
func NewWithConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Log:       log,
		Hub:       app.NewSessionHub(),
		StartedAt: time.Now(),
	}

	if err := cfg.Validate(); err != nil {
		if !errors.Is(err, config.ErrPlatformConfigMissing) {
			return nil, err
		}
		log.Error("running without data platform", "error", err)
		a.ConfigErr = err
		return a, nil
	}

	db, err := database.New(ctx, cfg.Database.Driver, cfg.DatabaseDSN(), log)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	if err := database.Migrate(db); err != nil {
		_ = a.Close()
		return nil, err
	}

	if err := a.wirePlatform(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wirePlatform(ctx context.Context) error {
	cfg := a.Config

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var (
		states      app.StateStore
		revocations app.RevocationStore
	)
	if redisCli != nil {
		a.Redis = redisCli
		a.closers = append(a.closers, redisCli.Close)
		states = cache.NewViewStateCache(redisCli, time.Duration(cfg.Redis.ViewStateTTLHours)*time.Hour)
		revocations = cache.NewRevocationCache(redisCli)
	} else {
		a.Log.Info("redis not configured, keeping view state in memory")
		states = cache.NewMemoryStateStore()
		revocations = cache.NewMemoryRevocations()
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ)
	if err != nil {
		return err
	}
	var events app.SessionEventPublisher = a.Hub
	if mqConn != nil {
		a.MQConn = mqConn
		a.closers = append(a.closers, mqConn.Close)
		a.SessionWorker = worker.NewSessionEventWorker(mqConn, cfg.RabbitMQ.SessionEventExchange, a.Hub, a.Log)
		if err := a.SessionWorker.Start(ctx); err != nil {
			return fmt.Errorf("start session event worker failed: %w", err)
		}
		events = rabbitmqClient.NewSessionEventPublisher(mqConn, cfg.RabbitMQ.SessionEventExchange)
	} else {
		a.Log.Info("rabbitmq not configured, delivering session events in process")
	}

	store, err := a.objectStore(ctx)
	if err != nil {
		return err
	}

	generator := ai.NewReformatter(
		ai.NewOpenAICompatibleClient(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		ai.ChatConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		},
		a.Log,
	)

	a.Auth = app.NewAuthService(
		repository.NewAccountRepository(a.DB),
		revocations,
		states,
		events,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		a.Log,
	)
	a.Workspace = app.NewWorkspaceService(app.WorkspaceDeps{
		Profiles:   repository.NewProfileRepository(a.DB),
		Subjects:   repository.NewSubjectRepository(a.DB),
		Tasks:      repository.NewTaskRepository(a.DB),
		Reports:    repository.NewReportRepository(a.DB),
		Loader:     app.NewLoader(repository.NewStudentRecords(a.DB), a.Log),
		Documents:  app.NewDocumentService(store, repository.NewDocumentRepository(a.DB), cfg.Storage.MaxUploadBytes, a.Log),
		States:     states,
		Events:     events,
		AdminEmail: cfg.Auth.AdminEmail,
	}, a.Log)
	a.Voice = app.NewVoiceService(a.Workspace, generator, a.Log)
	return nil
}

func (a *App) objectStore(ctx context.Context) (app.ObjectStore, error) {
	switch a.Config.Storage.Driver {
	case "gcs":
		store, err := objectstore.NewGCSStore(ctx, a.Config.Storage.Bucket)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case "local", "":
		store, err := objectstore.NewLocalStore(a.Config.Storage.LocalDir, a.Config.Storage.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		a.LocalFiles = store
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", a.Config.Storage.Driver)
	}
}

// Close stops the worker first, then releases connections in reverse order.
func (a *App) Close() error {
	if a.SessionWorker != nil {
		a.SessionWorker.Close()
	}
	var closeErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			closeErr = err
		}
	}
	a.closers = nil
	return closeErr
}
