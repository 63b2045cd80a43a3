package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/scrum-bot/app/adminhttp"
	"github.com/Black-And-White-Club/scrum-bot/app/eventbus"
	"github.com/Black-And-White-Club/scrum-bot/app/modules/command"
	"github.com/Black-And-White-Club/scrum-bot/app/modules/ledger"
	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	"github.com/Black-And-White-Club/scrum-bot/app/modules/participant"
	"github.com/Black-And-White-Club/scrum-bot/app/modules/scrum"
	scrumservice "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/application"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel/natschannel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/Black-And-White-Club/scrum-bot/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/time/rate"
)

// Modules groups the application modules.
type Modules struct {
	Participant *participant.Module
	Ledger      *ledger.Module
	Scrum       *scrum.Module
	Command     *command.Module
}

// App wires configuration, infrastructure and modules into one process.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	Modules       *Modules
	Router        *message.Router
	EventBus      eventbus.EventBus
	DB            *bun.DB
	admin         *adminhttp.Server
}

// NewApp connects to Postgres and NATS and builds every module.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.Init(observability.Config{
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	})
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}

	// Window, location and precedence were checked by LoadConfig.
	window, err := cfg.Scrum.Window()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Scrum.Location()
	if err != nil {
		return nil, err
	}
	precedence, err := cfg.Scrum.Precedence()
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Connecting to Postgres")
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	app.DB = bun.NewDB(sqldb, pgdialect.New())
	if err := app.DB.PingContext(ctx); err != nil {
		_ = app.DB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, eventbus.Options{
		URL:        cfg.NATS.URL,
		Name:       cfg.Observability.ServiceName,
		QueueGroup: cfg.NATS.QueueGroup,
		NKeySeed:   cfg.NATS.NKeySeed,
	}, logger)
	if err != nil {
		_ = app.DB.Close()
		return nil, err
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)
	app.Router = router

	gateway := natschannel.NewGateway(bus.Conn(), natschannel.Options{
		ChannelID:      cfg.Channel.ID,
		Markers:        cfg.Channel.Markers,
		RequestTimeout: cfg.NATS.RequestTimeout,
		RatePerSecond:  cfg.Channel.RatePerSecond,
		Burst:          cfg.Channel.Burst,
	}, logger, obs.Tracer)

	participantModule := participant.NewParticipantModule(ctx, obs, app.DB)
	ledgerModule, err := ledger.NewLedgerModule(ctx, obs, app.DB, ledgerdomain.FromWhole(cfg.Ledger.CentralSupply))
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize ledger module: %w", err)
	}

	scrumModule, err := scrum.NewScrumModule(
		ctx,
		obs,
		bus,
		router,
		scrum.Dependencies{
			Participants: participantModule.ParticipantService,
			Ledger:       ledgerModule.LedgerService,
			Gateway:      gateway,
		},
		scrumservice.Config{
			Window:     window,
			Precedence: precedence,
			Markers:    cfg.Channel.Markers,
			Location:   loc,
		},
		scrum.QueueConfig{
			DSN:          cfg.Postgres.DSN,
			TickInterval: cfg.Scrum.TickInterval,
		},
		ctx,
		app.DB,
	)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize scrum module: %w", err)
	}

	commandModule, err := command.NewCommandModule(
		ctx,
		obs,
		bus,
		router,
		participantModule.ParticipantService,
		ledgerModule.LedgerService,
		ctx,
	)
	if err != nil {
		_ = scrumModule.Close()
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize command module: %w", err)
	}

	app.Modules = &Modules{
		Participant: participantModule,
		Ledger:      ledgerModule,
		Scrum:       scrumModule,
		Command:     commandModule,
	}

	adminRouter := adminhttp.NewRouter(
		logger,
		obs.Registry,
		adminhttp.NewRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.Burst),
		adminhttp.Check{Name: "postgres", Fn: app.DB.PingContext},
		adminhttp.Check{Name: "queue", Fn: scrumModule.QueueService.HealthCheck},
	)
	app.admin = adminhttp.NewServer(cfg.HTTP.Address, adminRouter, logger)

	logger.InfoContext(ctx, "Application initialized",
		attr.Int("notify_hour", window.NotifyHour),
		attr.Int("close_hour", window.CloseHour),
		attr.String("timezone", loc.String()),
	)
	return app, nil
}

// Run starts every module and blocks on the message router until ctx ends.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	var wg sync.WaitGroup
	wg.Add(3)
	go app.Modules.Scrum.Run(ctx, &wg)
	go app.Modules.Command.Run(ctx, &wg)
	go app.admin.Run(ctx, &wg)

	logger.InfoContext(ctx, "Starting message router")
	err := app.Router.Run(ctx)

	wg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("message router stopped: %w", err)
	}
	return nil
}

// Close releases modules and infrastructure in reverse order of creation.
func (app *App) Close() error {
	var errs []error
	if app.Modules != nil {
		if app.Modules.Command != nil {
			errs = append(errs, app.Modules.Command.Close())
		}
		if app.Modules.Scrum != nil {
			errs = append(errs, app.Modules.Scrum.Close())
		}
	}
	if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}
	return errors.Join(errs...)
}
