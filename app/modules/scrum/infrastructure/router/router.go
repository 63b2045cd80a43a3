package scrumrouter

import (
	"context"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/scrum-bot/app/eventbus"
	scrumevents "github.com/Black-And-White-Club/scrum-bot/app/events/scrum"
	scrumhandlers "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/handlers"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// ScrumRouter handles Watermill handler registration for reaction events.
type ScrumRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewScrumRouter creates a new ScrumRouter. Router metrics are registered on
// registry unless running under APP_ENV=test.
func NewScrumRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *ScrumRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "scrumbot", "router")
		metricsBuilder = &b
	}

	return &ScrumRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the router with handlers. The message router is shared
// by every module; its metrics are attached here once.
func (r *ScrumRouter) Configure(_ context.Context, handlers scrumhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}
	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

func (r *ScrumRouter) registerHandlers(handlers scrumhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering scrum module handlers",
		slog.String("reaction_added_subject", scrumevents.ReactionAddedV1),
		slog.String("reaction_removed_subject", scrumevents.ReactionRemovedV1),
	)

	registerHandler(deps, scrumevents.ReactionAddedV1, handlers.HandleReactionAdded)
	registerHandler(deps, scrumevents.ReactionRemovedV1, handlers.HandleReactionRemoved)

	r.logger.Info("Scrum module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "scrum." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *ScrumRouter) Close() error {
	return r.Router.Close()
}
