package scrum

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/scrum-bot/app/eventbus"
	scrumservice "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/application"
	scrumhandlers "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/handlers"
	scrumqueue "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/queue"
	scrumdb "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/repositories"
	scrumrouter "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/router"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Dependencies are the collaborators the scrum module borrows from other modules.
type Dependencies struct {
	Participants scrumservice.Participants
	Ledger       scrumservice.Ledger
	Gateway      channel.Gateway
}

// QueueConfig configures the River scheduler.
type QueueConfig struct {
	DSN          string
	TickInterval time.Duration
}

// Module represents the scrum module.
type Module struct {
	ScrumService scrumservice.Service
	ScrumRouter  *scrumrouter.ScrumRouter
	QueueService scrumqueue.QueueService
	cancelFunc   context.CancelFunc
	obs          observability.Observability
}

// NewScrumModule creates and initializes a new scrum module.
func NewScrumModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	deps Dependencies,
	cfg scrumservice.Config,
	queueCfg QueueConfig,
	routerCtx context.Context,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "scrum.NewScrumModule initializing")

	// 1. Initialize Repository
	repo := scrumdb.NewRepository(db)

	// 2. Initialize Metrics
	metrics := observability.NewPrometheusMetrics(obs.Registry, "scrum")

	// 3. Initialize Service
	service := scrumservice.NewScrumService(repo, deps.Participants, deps.Ledger, deps.Gateway, cfg, logger, metrics, tracer, db)

	// 4. Initialize Handlers
	handlers := scrumhandlers.NewScrumHandlers(service, cfg.Markers, logger, tracer)

	// 5. Initialize Router
	scrumRouter := scrumrouter.NewScrumRouter(logger, router, eventBus, eventBus, tracer, obs.Registry)
	if err := scrumRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure scrum router: %w", err)
	}

	// 6. Initialize Scheduler
	queue, err := scrumqueue.NewService(ctx, logger, queueCfg.DSN, queueCfg.TickInterval, metrics, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrum queue service: %w", err)
	}

	return &Module{
		ScrumService: service,
		ScrumRouter:  scrumRouter,
		QueueService: queue,
		obs:          obs,
	}, nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.obs.Logger
	logger.InfoContext(ctx, "Starting scrum module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start scrum scheduler", "error", err)
			return
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Scrum module goroutine stopped")
}

// Close shuts down the scheduler and the router.
func (m *Module) Close() error {
	logger := m.obs.Logger
	logger.Info("Stopping scrum module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var errs []error
	if m.QueueService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.QueueService.Stop(ctx); err != nil {
			logger.Error("Error stopping scrum scheduler", "error", err)
			errs = append(errs, fmt.Errorf("error stopping scrum scheduler: %w", err))
		}
	}

	if m.ScrumRouter != nil {
		if err := m.ScrumRouter.Close(); err != nil {
			logger.Error("Error closing ScrumRouter from module", "error", err)
			errs = append(errs, fmt.Errorf("error closing ScrumRouter: %w", err))
		}
	}

	logger.Info("Scrum module stopped")
	return errors.Join(errs...)
}
