// Package schedule decides which polls fire on a given day and runs the
// daily dispatch loop.
package schedule

import (
	"context"
	"time"

	"github.com/shortrest/tavernbot/internal/logger"
	"github.com/shortrest/tavernbot/internal/models"
	"github.com/shortrest/tavernbot/internal/store"
)

// Dispatcher delivers a due poll to its origin chat.
type Dispatcher interface {
	SendPoll(p models.Poll) error
}

// DueOn reports whether a poll with the given recurrence fires on the day of
// now. Weekly polls match on the 1..7 weekday number (Sunday=1). Monthly
// polls match on the day of the month, except on the last day of a month
// that is shorter than a configured day, where the poll rolls down and fires
// on that last day instead. A mid-month target never fires early.
func DueOn(freq models.Frequency, days []int, now time.Time) bool {
	switch freq {
	case models.FrequencyWeekly:
		return containsDay(days, int(now.Weekday())+1)
	case models.FrequencyMonthly:
		last := lastDayOfMonth(now)
		if now.Day() == last {
			for _, d := range days {
				if d > last {
					return true
				}
			}
		}
		return containsDay(days, now.Day())
	}
	return false
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func lastDayOfMonth(now time.Time) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

// Scheduler fires due polls once per day at a fixed wall-clock time.
type Scheduler struct {
	polls    *store.PollStore
	dispatch Dispatcher
	hour     int
	minute   int
}

func New(polls *store.PollStore, dispatch Dispatcher, hour, minute int) *Scheduler {
	return &Scheduler{polls: polls, dispatch: dispatch, hour: hour, minute: minute}
}

// Run blocks until ctx is cancelled. It polls the wall clock and sweeps the
// store when the trigger time comes around, then sleeps past the trigger
// minute so a day fires at most once.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()
		if now.Hour() != s.hour || now.Minute() != s.minute {
			continue
		}
		s.Sweep(now)

		select {
		case <-ctx.Done():
			return
		case <-time.After(61 * time.Second):
		}
	}
}

// Sweep dispatches every poll due on the day of now. The store mutex is held
// across the whole read-and-dispatch pass, so a concurrent create or delete
// waits for the sweep. A failed dispatch is logged and the sweep moves on to
// the remaining polls.
func (s *Scheduler) Sweep(now time.Time) {
	s.polls.ForEach(func(p models.Poll) {
		if !DueOn(p.Frequency, p.Days, now) {
			return
		}
		if err := s.dispatch.SendPoll(p); err != nil {
			logger.Err().Printf("Failed to send poll %q to chat %d: %v", p.Name, p.ChatID, err)
			return
		}
		logger.Out().Printf("Sent poll %q to chat %d", p.Name, p.ChatID)
	})
}
