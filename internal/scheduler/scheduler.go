package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// TimeOfDay is a wall-clock moment with minute precision, like 12:00.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "15:04" style times.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// next returns the first occurrence of t strictly after the given instant.
func (t TimeOfDay) next(after time.Time) time.Time {
	candidate := time.Date(after.Year(), after.Month(), after.Day(), t.Hour, t.Minute, 0, 0, after.Location())
	if !candidate.After(after) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// Job is a named task fired at fixed wall-clock times every day.
type Job struct {
	Name  string
	Times []TimeOfDay
	Run   func(ctx context.Context) error
}

// Scheduler owns the main loop: it sleeps until the next due job and runs it.
// Jobs sharing a fire time run sequentially in registration order, so a sweep
// scheduled before a scrape finishes before the scrape starts.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
}

// NewScheduler creates a scheduler over the given jobs.
func NewScheduler(jobs []Job, logger *slog.Logger) *Scheduler {
	return &Scheduler{jobs: jobs, logger: logger}
}

// Run blocks, firing jobs at their configured times. It returns nil when ctx
// is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "jobs", len(s.jobs))
	for _, j := range s.jobs {
		times := make([]string, len(j.Times))
		for i, t := range j.Times {
			times[i] = t.String()
		}
		s.logger.Info("scheduled job", "job", j.Name, "times", times)
	}

	after := time.Now()
	for {
		fireAt, due := s.nextFire(after)
		if len(due) == 0 {
			<-ctx.Done()
			s.logger.Info("shutting down scheduler")
			return nil
		}

		timer := time.NewTimer(time.Until(fireAt))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("shutting down scheduler")
			return nil
		case <-timer.C:
		}

		for _, j := range due {
			if ctx.Err() != nil {
				s.logger.Info("shutting down scheduler")
				return nil
			}
			s.logger.Info("running job", "job", j.Name)
			if err := j.Run(ctx); err != nil {
				s.logger.Error("job failed", "job", j.Name, "error", err)
			}
		}
		after = fireAt
	}
}

// nextFire returns the earliest upcoming fire time strictly after the given
// instant, with every job due at that moment.
func (s *Scheduler) nextFire(after time.Time) (time.Time, []Job) {
	var fireAt time.Time
	var due []Job
	for _, j := range s.jobs {
		for _, t := range j.Times {
			at := t.next(after)
			switch {
			case fireAt.IsZero() || at.Before(fireAt):
				fireAt = at
				due = []Job{j}
			case at.Equal(fireAt):
				due = append(due, j)
			}
		}
	}
	return fireAt, due
}
