package ledger

import (
	"context"
	"fmt"

	ledgerservice "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/application"
	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/uptrace/bun"
)

// Module represents the ledger module.
type Module struct {
	LedgerService ledgerservice.Service
}

// NewLedgerModule creates the ledger module and makes sure the central
// account holds the configured issuance supply.
func NewLedgerModule(ctx context.Context, obs observability.Observability, db *bun.DB, centralSupply ledgerdomain.Amount) (*Module, error) {
	obs.Logger.InfoContext(ctx, "ledger.NewLedgerModule initializing")

	repo := ledgerdb.NewRepository(db)
	metrics := observability.NewPrometheusMetrics(obs.Registry, "ledger")
	service := ledgerservice.NewLedgerService(repo, obs.Logger, metrics, obs.Tracer, db)

	if _, err := service.ProvisionCentralSupply(ctx, centralSupply); err != nil {
		return nil, fmt.Errorf("failed to provision central supply: %w", err)
	}

	return &Module{LedgerService: service}, nil
}
