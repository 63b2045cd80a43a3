package scrumhandlers

import (
	"context"
	"time"

	scrumservice "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/application"
	scrumdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/domain"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
)

// ------------------------
// Fake Scrum Service
// ------------------------

type FakeScrumService struct {
	trace  []string
	events []scrumservice.ResponseEvent

	ApplyResponseFunc   func(ctx context.Context, event scrumservice.ResponseEvent) (scrumservice.ResponseResult, error)
	RetractResponseFunc func(ctx context.Context, event scrumservice.ResponseEvent) (scrumservice.ResponseResult, error)
}

var _ scrumservice.Service = (*FakeScrumService)(nil)

func NewFakeScrumService() *FakeScrumService {
	return &FakeScrumService{trace: []string{}}
}

func (f *FakeScrumService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScrumService) Trace() []string {
	return f.trace
}

func (f *FakeScrumService) Tick(ctx context.Context) error {
	f.record("Tick")
	return nil
}

func (f *FakeScrumService) OpenScrum(ctx context.Context, now time.Time) (results.OperationResult[*scrumdomain.Scrum, error], error) {
	f.record("OpenScrum")
	return results.OperationResult[*scrumdomain.Scrum, error]{}, nil
}

func (f *FakeScrumService) CloseScrum(ctx context.Context, scrum scrumdomain.Scrum) (results.OperationResult[*scrumservice.CloseReport, error], error) {
	f.record("CloseScrum")
	return results.OperationResult[*scrumservice.CloseReport, error]{}, nil
}

func (f *FakeScrumService) ApplyResponse(ctx context.Context, event scrumservice.ResponseEvent) (scrumservice.ResponseResult, error) {
	f.record("ApplyResponse")
	f.events = append(f.events, event)
	if f.ApplyResponseFunc != nil {
		return f.ApplyResponseFunc(ctx, event)
	}
	return scrumservice.ResponseResult{}, nil
}

func (f *FakeScrumService) RetractResponse(ctx context.Context, event scrumservice.ResponseEvent) (scrumservice.ResponseResult, error) {
	f.record("RetractResponse")
	f.events = append(f.events, event)
	if f.RetractResponseFunc != nil {
		return f.RetractResponseFunc(ctx, event)
	}
	return scrumservice.ResponseResult{}, nil
}
