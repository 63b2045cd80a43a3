package scrumservice

import (
	"context"
	"errors"
	"fmt"

	scrumdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/domain"
	scrumdb "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
)

type responseResult = results.OperationResult[ResponseResult, error]

// ApplyResponse records a participant's vote and closes the scrum early when
// the tally becomes decisive.
func (s *ScrumService) ApplyResponse(ctx context.Context, event ResponseEvent) (ResponseResult, error) {
	return s.handleResponse(ctx, "ApplyResponse", event, true)
}

// RetractResponse removes the vote matching the retracted marker. A retraction
// that matches no standing vote changes nothing.
func (s *ScrumService) RetractResponse(ctx context.Context, event ResponseEvent) (ResponseResult, error) {
	return s.handleResponse(ctx, "RetractResponse", event, false)
}

func (s *ScrumService) handleResponse(ctx context.Context, operation string, event ResponseEvent, apply bool) (ResponseResult, error) {
	result, err := withTelemetry(s, ctx, operation, event.Poll.String(), func(ctx context.Context) (responseResult, error) {
		rr, err := s.recordResponse(ctx, event, apply)
		if err != nil {
			return responseResult{}, err
		}
		if rr.Ignored != "" {
			s.logger.DebugContext(ctx, "Response ignored",
				attr.ExtractCorrelationID(ctx),
				attr.String("reason", string(rr.Ignored)),
				attr.String("message_id", event.Poll.MessageID),
				attr.String("actor_id", string(event.Actor)),
			)
		}
		return results.SuccessResult[ResponseResult, error](rr), nil
	})
	if err != nil {
		return ResponseResult{}, err
	}
	return *result.Success, nil
}

func (s *ScrumService) recordResponse(ctx context.Context, event ResponseEvent, apply bool) (ResponseResult, error) {
	if !event.Marker.Valid() {
		return ResponseResult{Ignored: IgnoredInvalidMarker}, nil
	}

	row, err := s.repo.GetByMessage(ctx, nil, event.Poll.MessageID)
	if err != nil {
		if errors.Is(err, scrumdb.ErrNotFound) {
			return ResponseResult{Ignored: IgnoredNotScrum}, nil
		}
		return ResponseResult{}, fmt.Errorf("failed to load scrum for message: %w", err)
	}
	scrum := toDomain(row)
	rr := ResponseResult{Scrum: &scrum}

	if !scrum.IsOpen {
		rr.Ignored = IgnoredClosed
		return rr, nil
	}
	now := s.now()
	if scrum.Date != scrumdomain.DateOf(now) {
		rr.Ignored = IgnoredStale
		return rr, nil
	}

	p, ok, err := s.resolveActor(ctx, event.Actor)
	if err != nil {
		return ResponseResult{}, fmt.Errorf("failed to resolve actor %s: %w", event.Actor, err)
	}
	if !ok {
		rr.Ignored = IgnoredUnknownActor
		return rr, nil
	}

	if apply {
		err := s.repo.UpsertResponse(ctx, nil, &scrumdb.Response{
			ScrumID:       scrum.ID,
			ParticipantID: p.ID,
			Available:     event.Marker.Available(),
			RespondedAt:   now,
		})
		if err != nil {
			return ResponseResult{}, fmt.Errorf("failed to record response: %w", err)
		}
	} else {
		removed, err := s.repo.DeleteResponse(ctx, nil, scrum.ID, p.ID, event.Marker.Available())
		if err != nil {
			return ResponseResult{}, fmt.Errorf("failed to retract response: %w", err)
		}
		if !removed {
			rr.Ignored = IgnoredNoVote
			return rr, nil
		}
	}

	signals, err := s.collectSignals(ctx, scrum.Poll)
	if err != nil {
		return ResponseResult{}, err
	}
	roster, err := s.roster(ctx, nil)
	if err != nil {
		return ResponseResult{}, err
	}
	tally := scrumdomain.ComputeTally(roster, signals, s.precedence)
	rr.Tally = &tally

	if !tally.Outcome().Decisive() {
		return rr, nil
	}

	closed, err := s.CloseScrum(ctx, scrum)
	switch {
	case err != nil:
		// Early closes are not retried; the scheduler force-closes later.
		rr.CloseErr = err
		s.logger.WarnContext(ctx, "Early close failed",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("scrum_id", scrum.ID),
			attr.Error(err),
		)
	case closed.IsSuccess():
		rr.Closed = *closed.Success
	}
	return rr, nil
}
