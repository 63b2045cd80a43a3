package scrumqueue

import (
	"time"

	"github.com/riverqueue/river"
)

// QueueName is the River queue dedicated to scrum jobs.
const QueueName = "scrum"

// TickJob runs one scheduler cycle.
type TickJob struct{}

// Kind returns the job type identifier for River
func (TickJob) Kind() string { return "scrum_tick" }

// InsertOpts pins ticks to the scrum queue. A failed tick is not retried;
// the next period is the retry.
func (TickJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 1,
	}
}

// periodicTick builds the periodic job that enqueues a tick every interval.
func periodicTick(interval time.Duration) *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(interval),
		func() (river.JobArgs, *river.InsertOpts) {
			opts := TickJob{}.InsertOpts()
			opts.UniqueOpts = river.UniqueOpts{ByPeriod: interval}
			return TickJob{}, &opts
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}
