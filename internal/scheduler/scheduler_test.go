package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("12:00")
	if err != nil {
		t.Fatalf("ParseTimeOfDay: %v", err)
	}
	if tod.Hour != 12 || tod.Minute != 0 {
		t.Errorf("parsed = %+v, want 12:00", tod)
	}

	for _, invalid := range []string{"25:00", "12:61", "noon", "", "12"} {
		if _, err := ParseTimeOfDay(invalid); err == nil {
			t.Errorf("ParseTimeOfDay(%q): expected error", invalid)
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	base := time.Date(2025, 3, 10, 11, 30, 0, 0, time.Local)

	// Later the same day.
	at := TimeOfDay{Hour: 12, Minute: 0}.next(base)
	if want := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local); !at.Equal(want) {
		t.Errorf("next = %v, want %v", at, want)
	}

	// Already passed today, rolls over to tomorrow.
	at = TimeOfDay{Hour: 11, Minute: 0}.next(base)
	if want := time.Date(2025, 3, 11, 11, 0, 0, 0, time.Local); !at.Equal(want) {
		t.Errorf("next = %v, want %v", at, want)
	}

	// Exactly now counts as passed.
	at = TimeOfDay{Hour: 11, Minute: 30}.next(base)
	if want := time.Date(2025, 3, 11, 11, 30, 0, 0, time.Local); !at.Equal(want) {
		t.Errorf("next = %v, want %v", at, want)
	}
}

func TestNextFirePicksSoonestJob(t *testing.T) {
	s := NewScheduler([]Job{
		{Name: "scrape", Times: []TimeOfDay{{12, 0}, {18, 0}}},
		{Name: "sweep", Times: []TimeOfDay{{11, 30}, {17, 30}}},
	}, discardLogger())

	base := time.Date(2025, 3, 10, 13, 0, 0, 0, time.Local)
	fireAt, due := s.nextFire(base)

	if want := time.Date(2025, 3, 10, 17, 30, 0, 0, time.Local); !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
	if len(due) != 1 || due[0].Name != "sweep" {
		t.Errorf("due = %v, want [sweep]", jobNames(due))
	}
}

func TestNextFireGroupsSharedTime(t *testing.T) {
	// Registration order decides who runs first within a shared slot.
	s := NewScheduler([]Job{
		{Name: "sweep", Times: []TimeOfDay{{12, 0}}},
		{Name: "scrape", Times: []TimeOfDay{{12, 0}}},
	}, discardLogger())

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	fireAt, due := s.nextFire(base)

	if want := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local); !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
	if len(due) != 2 || due[0].Name != "sweep" || due[1].Name != "scrape" {
		t.Errorf("due = %v, want [sweep scrape]", jobNames(due))
	}
}

func TestRunCancelReturnsPromptly(t *testing.T) {
	s := NewScheduler([]Job{
		{
			Name:  "scrape",
			Times: []TimeOfDay{{12, 0}},
			Run:   func(context.Context) error { return nil },
		},
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

func TestRunNoJobsWaitsForCancel(t *testing.T) {
	s := NewScheduler(nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return after cancel")
	}
}

func jobNames(jobs []Job) []string {
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	return names
}
