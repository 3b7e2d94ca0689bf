package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic work.
type Job interface {
	Run(ctx context.Context)
}

// FuncJob adapts a plain function to Job.
type FuncJob func(ctx context.Context)

func (f FuncJob) Run(ctx context.Context) { f(ctx) }

// Cron drives the periodic safe-exit tick and the alert expiry sweep.
// Panics in jobs are recovered so a single bad tick cannot kill the
// scheduler.
type Cron struct {
	c *cron.Cron
}

func New(loc *time.Location) *Cron {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	return &Cron{c: c}
}

func (cr *Cron) Start() { cr.c.Start() }

// Stop halts scheduling and waits for running jobs to finish.
func (cr *Cron) Stop() {
	ctx := cr.c.Stop()
	<-ctx.Done()
}

// Every schedules job at a fixed interval.
func (cr *Cron) Every(d time.Duration, job Job) (cron.EntryID, error) {
	return cr.c.AddFunc(fmt.Sprintf("@every %s", d), func() {
		job.Run(context.Background())
	})
}
