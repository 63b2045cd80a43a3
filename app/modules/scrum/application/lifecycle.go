package scrumservice

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	scrumdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/domain"
	scrumdb "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
	"github.com/uptrace/bun"
)

type (
	tickResult  = results.OperationResult[struct{}, error]
	openResult  = results.OperationResult[*scrumdomain.Scrum, error]
	closeResult = results.OperationResult[*CloseReport, error]
)

// Tick loads today's scrum once and runs whichever of open and force-close
// the window authorizes for that snapshot. Errors from both are joined.
func (s *ScrumService) Tick(ctx context.Context) error {
	now := s.now()
	_, err := withTelemetry(s, ctx, "Tick", string(scrumdomain.DateOf(now)), func(ctx context.Context) (tickResult, error) {
		today, err := s.today(ctx, now)
		if err != nil {
			return tickResult{}, err
		}

		var errs []error
		if s.window.ShouldOpen(now, today) {
			if _, err := s.OpenScrum(ctx, now); err != nil {
				errs = append(errs, err)
			}
		}
		if due := s.window.ShouldForceClose(now, today); due != nil {
			if _, err := s.CloseScrum(ctx, *due); err != nil {
				errs = append(errs, err)
			}
		}
		return results.SuccessResult[struct{}, error](struct{}{}), errors.Join(errs...)
	})
	return err
}

// OpenScrum posts the poll for now's date, attaches both markers and persists
// the scrum. A failure after posting deletes the message before reporting.
func (s *ScrumService) OpenScrum(ctx context.Context, now time.Time) (openResult, error) {
	date := scrumdomain.DateOf(now.In(s.loc))
	return withTelemetry(s, ctx, "OpenScrum", string(date), func(ctx context.Context) (openResult, error) {
		ref, err := s.gateway.PostMessage(ctx, pollMessage(date, s.markers))
		if err != nil {
			return openResult{}, fmt.Errorf("failed to post poll message: %w", err)
		}

		for _, marker := range channel.Markers {
			if err := s.gateway.AttachMarker(ctx, ref, marker); err != nil {
				return openResult{}, s.compensateOpen(ctx, ref, fmt.Errorf("failed to attach %s marker: %w", marker, err))
			}
		}

		row := &scrumdb.Scrum{
			ScrumDate: string(date),
			ChannelID: ref.ChannelID,
			MessageID: ref.MessageID,
		}
		if err := s.repo.Create(ctx, nil, row); err != nil {
			if errors.Is(err, scrumdb.ErrDuplicateScrum) {
				if err := s.compensateOpen(ctx, ref, nil); err != nil {
					return openResult{}, errors.Join(ErrScrumAlreadyOpened, err)
				}
				return results.FailureResult[*scrumdomain.Scrum, error](ErrScrumAlreadyOpened), nil
			}
			return openResult{}, s.compensateOpen(ctx, ref, fmt.Errorf("failed to persist scrum: %w", err))
		}

		scrum := toDomain(row)
		s.logger.InfoContext(ctx, "Scrum opened",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("scrum_id", scrum.ID),
			attr.String("scrum_date", string(scrum.Date)),
			attr.String("message_id", ref.MessageID),
		)
		return results.SuccessResult[*scrumdomain.Scrum, error](&scrum), nil
	})
}

// compensateOpen deletes an orphaned poll message. The deletion failure, if
// any, is joined onto cause and never retried.
func (s *ScrumService) compensateOpen(ctx context.Context, ref channel.MessageRef, cause error) error {
	if err := s.gateway.DeleteMessage(ctx, ref); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete orphaned poll message",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", ref.MessageID),
			attr.Error(err),
		)
		return errors.Join(cause, fmt.Errorf("failed to delete poll message: %w", err))
	}
	return cause
}

// CloseScrum tallies the poll, marks the scrum closed, settles every
// participant's streak and reward, then edits the poll and posts the summary.
//
// Everything runs in one transaction: any failure rolls back the close so the
// scrum stays open for the next force-close attempt. Channel writes happen
// last, so a storage failure never leaves a summary behind. Those writes run
// while the transaction holds the scrum row and the central account locks, so
// gateway latency is bounded by Config.CloseWriteTimeout; a timeout rolls the
// close back like any other failure.
func (s *ScrumService) CloseScrum(ctx context.Context, scrum scrumdomain.Scrum) (closeResult, error) {
	return withTelemetry(s, ctx, "CloseScrum", string(scrum.Date), func(ctx context.Context) (closeResult, error) {
		if !scrum.IsOpen {
			return results.FailureResult[*CloseReport, error](ErrScrumAlreadyClosed), nil
		}

		signals, err := s.collectSignals(ctx, scrum.Poll)
		if err != nil {
			return closeResult{}, err
		}

		return runInTx(s, ctx, func(ctx context.Context, tx bun.IDB) (closeResult, error) {
			if err := s.repo.MarkClosed(ctx, tx, scrum.ID, s.now()); err != nil {
				if errors.Is(err, scrumdb.ErrAlreadyClosed) {
					return results.FailureResult[*CloseReport, error](ErrScrumAlreadyClosed), nil
				}
				return closeResult{}, fmt.Errorf("failed to mark scrum closed: %w", err)
			}

			roster, err := s.roster(ctx, tx)
			if err != nil {
				return closeResult{}, err
			}
			tally := scrumdomain.ComputeTally(roster, signals, s.precedence)

			closed := scrum
			closed.IsOpen = false
			report := &CloseReport{
				Scrum:        closed,
				Outcome:      tally.Outcome(),
				Tally:        tally,
				NotAvailable: tally.NotAvailable(roster),
			}

			if err := s.settle(ctx, tx, scrum.Date, roster, tally, report); err != nil {
				return closeResult{}, err
			}

			writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
			defer cancel()
			if err := s.gateway.EditMessage(writeCtx, scrum.Poll, closedNotice(scrum.Date)); err != nil {
				return closeResult{}, fmt.Errorf("failed to edit poll message: %w", err)
			}
			report.Summary = summaryMessage(scrum.Date, report.Outcome, report.NotAvailable)
			if _, err := s.gateway.PostMessage(writeCtx, report.Summary); err != nil {
				return closeResult{}, fmt.Errorf("failed to post summary: %w", err)
			}

			s.logger.InfoContext(ctx, "Scrum closed",
				attr.ExtractCorrelationID(ctx),
				attr.Int64("scrum_id", scrum.ID),
				attr.String("outcome", report.Outcome.String()),
				attr.Int("num_available", tally.Available),
				attr.Int("num_unavailable", tally.Unavailable),
				attr.Int("num_unknown", tally.Unknown),
			)
			return results.SuccessResult[*CloseReport, error](report), nil
		})
	})
}

// settle walks the roster by id. Responders gain a streak and the reward for
// their new streak; silent members lose their streak. The first failure
// aborts the walk.
func (s *ScrumService) settle(
	ctx context.Context,
	tx bun.IDB,
	date scrumdomain.Date,
	roster []scrumdomain.Participant,
	tally scrumdomain.Tally,
	report *CloseReport,
) error {
	byID := slices.Clone(roster)
	slices.SortFunc(byID, func(a, b scrumdomain.Participant) int { return cmp.Compare(a.ID, b.ID) })

	memo := rewardMemo(date)
	for _, p := range byID {
		class := tally.Of(p.ID)
		if class == scrumdomain.Unknown {
			if err := s.participants.ResetStreak(ctx, tx, p.ID); err != nil {
				return err
			}
			report.Reset = append(report.Reset, p.ID)
			continue
		}

		streak, err := s.participants.RecordParticipation(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		amount := ledgerdomain.Reward(streak)
		if _, err := s.ledger.Credit(ctx, tx, p.ID, amount, memo); err != nil {
			return fmt.Errorf("failed to credit participant %d: %w", p.ID, err)
		}
		report.Rewards = append(report.Rewards, RewardEntry{
			ParticipantID:  p.ID,
			Classification: class,
			Streak:         streak,
			Amount:         amount,
		})
	}
	return nil
}
