package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/scrum-bot/app/eventbus"
	commandservice "github.com/Black-And-White-Club/scrum-bot/app/modules/command/application"
	commanddomain "github.com/Black-And-White-Club/scrum-bot/app/modules/command/domain"
	commandhandlers "github.com/Black-And-White-Club/scrum-bot/app/modules/command/infrastructure/handlers"
	commandrouter "github.com/Black-And-White-Club/scrum-bot/app/modules/command/infrastructure/router"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Module represents the command module.
type Module struct {
	CommandService commandservice.Service
	CommandRouter  *commandrouter.CommandRouter
	cancelFunc     context.CancelFunc
	obs            observability.Observability
}

// NewCommandModule creates and initializes a new command module.
func NewCommandModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	participants commandservice.Participants,
	ledger commandservice.Ledger,
	routerCtx context.Context,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "command.NewCommandModule initializing")

	metrics := observability.NewPrometheusMetrics(obs.Registry, "command")
	service := commandservice.NewCommandService(commanddomain.NewDispatcher(), participants, ledger, logger, metrics, tracer)
	handlers := commandhandlers.NewCommandHandlers(service, logger, tracer)

	commandRouter := commandrouter.NewCommandRouter(logger, router, eventBus, eventBus, tracer)
	if err := commandRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure command router: %w", err)
	}

	return &Module{
		CommandService: service,
		CommandRouter:  commandRouter,
		obs:            obs,
	}, nil
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.obs.Logger.InfoContext(ctx, "Starting command module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.obs.Logger.InfoContext(ctx, "Command module goroutine stopped")
}

// Close shuts down the command module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.CommandRouter != nil {
		if err := m.CommandRouter.Close(); err != nil {
			return fmt.Errorf("error closing CommandRouter: %w", err)
		}
	}
	m.obs.Logger.Info("Command module stopped")
	return nil
}
