package schedule

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shortrest/tavernbot/internal/models"
	"github.com/shortrest/tavernbot/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 7, 0, 0, 0, time.UTC)
}

func TestDueOnWeekly(t *testing.T) {
	// 2024-01-01 was a Monday, day number 2 in the Sunday=1 convention
	tests := []struct {
		name string
		days []int
		now  time.Time
		want bool
	}{
		{"monday poll on a monday", []int{2}, date(2024, time.January, 1), true},
		{"monday poll on a tuesday", []int{2}, date(2024, time.January, 2), false},
		{"sunday poll on a sunday", []int{1}, date(2024, time.January, 7), true},
		{"saturday poll on a saturday", []int{7}, date(2024, time.January, 6), true},
		{"multi-day poll misses wednesday", []int{2, 6}, date(2024, time.January, 3), false},
		{"multi-day poll hits friday", []int{2, 6}, date(2024, time.January, 5), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DueOn(models.FrequencyWeekly, tc.days, tc.now); got != tc.want {
				t.Errorf("DueOn(weekly, %v, %s) = %v, want %v", tc.days, tc.now.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestDueOnMonthly(t *testing.T) {
	tests := []struct {
		name string
		days []int
		now  time.Time
		want bool
	}{
		{"exact mid-month match", []int{15}, date(2024, time.January, 15), true},
		{"mid-month target not due on other days", []int{15}, date(2024, time.January, 14), false},
		{"day 15 does not roll down to the 31st", []int{15}, date(2024, time.January, 31), false},
		{"day 31 fires on the 31st", []int{31}, date(2024, time.January, 31), true},
		{"day 30 rolls down in a 28-day february", []int{30}, date(2023, time.February, 28), true},
		{"day 15 does not fire on feb 28", []int{15}, date(2023, time.February, 28), false},
		{"day 30 rolls down in a leap february", []int{30}, date(2024, time.February, 29), true},
		{"day 30 does not fire on feb 28 of a leap year", []int{30}, date(2024, time.February, 28), false},
		{"day 31 rolls down in a 30-day month", []int{31}, date(2024, time.April, 30), true},
		{"day 30 fires on the last day of april", []int{30}, date(2024, time.April, 30), true},
		{"day 1 fires on the first", []int{1}, date(2024, time.March, 1), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DueOn(models.FrequencyMonthly, tc.days, tc.now); got != tc.want {
				t.Errorf("DueOn(monthly, %v, %s) = %v, want %v", tc.days, tc.now.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestDueOnUnknownFrequency(t *testing.T) {
	if DueOn(models.Frequency("hourly"), []int{1, 2, 3}, date(2024, time.January, 1)) {
		t.Error("unknown frequency should never be due")
	}
}

type mockDispatcher struct {
	sent    []string
	failFor string
}

func (m *mockDispatcher) SendPoll(p models.Poll) error {
	m.sent = append(m.sent, p.Name)
	if p.Name == m.failFor {
		return errors.New("telegram unavailable")
	}
	return nil
}

func newTestStore(t *testing.T) *store.PollStore {
	t.Helper()
	polls, err := store.NewPollStore(filepath.Join(t.TempDir(), "polls.json"))
	if err != nil {
		t.Fatalf("NewPollStore: %v", err)
	}
	return polls
}

func weeklyPoll(name string, days ...int) models.Poll {
	return models.Poll{
		Name:      name,
		ChatID:    -100,
		Question:  "q",
		Options:   []string{"a", "b"},
		Frequency: models.FrequencyWeekly,
		Days:      days,
	}
}

func TestSweepDispatchesDuePolls(t *testing.T) {
	polls := newTestStore(t)
	for _, p := range []models.Poll{weeklyPoll("due1", 2), weeklyPoll("due2", 2, 5), weeklyPoll("skip", 3)} {
		if err := polls.Create(p); err != nil {
			t.Fatalf("Create(%q): %v", p.Name, err)
		}
	}

	dispatch := &mockDispatcher{}
	s := New(polls, dispatch, 7, 0)
	s.Sweep(date(2024, time.January, 1)) // a Monday

	if len(dispatch.sent) != 2 {
		t.Fatalf("dispatched %v, want exactly the two due polls", dispatch.sent)
	}
	for _, name := range dispatch.sent {
		if name == "skip" {
			t.Errorf("poll %q dispatched but was not due", name)
		}
	}
}

func TestSweepContinuesPastDispatchFailure(t *testing.T) {
	polls := newTestStore(t)
	for _, p := range []models.Poll{weeklyPoll("due1", 2), weeklyPoll("due2", 2)} {
		if err := polls.Create(p); err != nil {
			t.Fatalf("Create(%q): %v", p.Name, err)
		}
	}

	dispatch := &mockDispatcher{failFor: "due1"}
	s := New(polls, dispatch, 7, 0)
	s.Sweep(date(2024, time.January, 1))

	if len(dispatch.sent) != 2 {
		t.Fatalf("dispatched %v, want the sweep to reach both polls despite the failure", dispatch.sent)
	}
}
