package ledgerservice

import (
	"context"
	"fmt"

	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
	"github.com/uptrace/bun"
)

// ProvisionCentralSupply raises the central balance until every account
// together holds supply, and returns the amount added. Transfers keep that
// total constant, so provisioning again with the same supply writes nothing.
// A supply below what is already in circulation is never clawed back.
func (s *LedgerService) ProvisionCentralSupply(ctx context.Context, supply ledgerdomain.Amount) (ledgerdomain.Amount, error) {
	result, err := withTelemetry(s, ctx, "ProvisionCentralSupply", supply.String(), func(ctx context.Context) (results.OperationResult[ledgerdomain.Amount, error], error) {
		if supply < 0 {
			return results.FailureResult[ledgerdomain.Amount, error](ErrNegativeAmount), nil
		}
		return runInTx(s, ctx, nil, func(ctx context.Context, tx bun.IDB) (results.OperationResult[ledgerdomain.Amount, error], error) {
			central, err := s.repo.GetCentralAccount(ctx, tx)
			if err != nil {
				return results.OperationResult[ledgerdomain.Amount, error]{}, fmt.Errorf("failed to get central account: %w", err)
			}
			// Credits lock the central row too, so the total cannot move under us.
			if _, err := s.repo.LockAccounts(ctx, tx, central.ID); err != nil {
				return results.OperationResult[ledgerdomain.Amount, error]{}, fmt.Errorf("failed to lock central account: %w", err)
			}
			accounts, err := s.repo.ListAccounts(ctx, tx)
			if err != nil {
				return results.OperationResult[ledgerdomain.Amount, error]{}, fmt.Errorf("failed to list accounts: %w", err)
			}
			var total int64
			for _, a := range accounts {
				total += a.Balance
			}

			topUp := int64(supply) - total
			if topUp <= 0 {
				if topUp < 0 {
					s.logger.WarnContext(ctx, "Configured central supply is below the amount in circulation",
						attr.String("supply", supply.String()),
						attr.String("circulating", amountOf(total).String()),
					)
				}
				return results.SuccessResult[ledgerdomain.Amount, error](0), nil
			}
			if err := s.repo.AdjustBalance(ctx, tx, central.ID, topUp); err != nil {
				return results.OperationResult[ledgerdomain.Amount, error]{}, fmt.Errorf("failed to fund central account: %w", err)
			}
			s.logger.InfoContext(ctx, "Central supply provisioned",
				attr.String("added", amountOf(topUp).String()),
				attr.String("supply", supply.String()),
			)
			return results.SuccessResult[ledgerdomain.Amount, error](amountOf(topUp)), nil
		})
	})
	if err != nil {
		return 0, err
	}
	if result.IsFailure() {
		return 0, *result.Failure
	}
	return *result.Success, nil
}
