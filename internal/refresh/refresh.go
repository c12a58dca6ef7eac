// Package refresh turns a cron expression into the calendar's background
// refresh cadence.
package refresh

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule is a parsed five-field cron expression.
type Schedule struct {
	spec  string
	sched cron.Schedule
}

// Parse parses a standard cron expression such as "*/5 * * * *" or a
// descriptor such as "@every 10m".
func Parse(spec string) (*Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return &Schedule{spec: spec, sched: sched}, nil
}

func (s *Schedule) String() string {
	return s.spec
}

// Next returns the first activation after now.
func (s *Schedule) Next(now time.Time) time.Time {
	return s.sched.Next(now)
}

// Delay returns how long to wait from now until the next activation.
func (s *Schedule) Delay(now time.Time) time.Duration {
	d := s.Next(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Runner runs a job on a schedule in the background.
type Runner struct {
	c *cron.Cron
}

// Start runs job on spec until Stop is called. Overlapping runs are skipped.
func Start(spec string, job func()) (*Runner, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()
	return &Runner{c: c}, nil
}

// Stop halts the schedule and waits for a running job to finish.
func (r *Runner) Stop() {
	<-r.c.Stop().Done()
}
