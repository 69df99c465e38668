package models

import (
	"fmt"
	"strings"
)

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Poll is a recurring poll definition. A poll stored on disk is always fully
// populated; partially built polls only exist inside a wizard session.
type Poll struct {
	Name          string    `json:"name"`
	ChatID        int64     `json:"chat_id"` // origin group chat, set once at creation
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	Frequency     Frequency `json:"frequency"`
	Days          []int     `json:"days"` // weekly: 1..7 with Sunday=1; monthly: 1..31
	Anonymous     bool      `json:"anonymous"`
	AllowMultiple bool      `json:"allow_multiple"`
}

// WeekdayNames is ordered Sunday first to match the 1..7 day numbering.
var WeekdayNames = []string{
	"sunday",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}

// WeekdayNumber maps a weekday name (any case) to its 1..7 number.
func WeekdayNumber(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, day := range WeekdayNames {
		if day == name {
			return i + 1, true
		}
	}
	return 0, false
}

// WeekdayName maps a 1..7 day number back to its name.
func WeekdayName(n int) string {
	if n < 1 || n > len(WeekdayNames) {
		return ""
	}
	return WeekdayNames[n-1]
}

// DayList renders the poll's days for display: weekday names for weekly
// polls, plain numbers for monthly ones.
func (p Poll) DayList() string {
	parts := make([]string, 0, len(p.Days))
	for _, d := range p.Days {
		if p.Frequency == FrequencyWeekly {
			parts = append(parts, WeekdayName(d))
		} else {
			parts = append(parts, fmt.Sprintf("%d", d))
		}
	}
	return strings.Join(parts, ", ")
}

// Printable renders the full definition as an HTML-formatted block for chat.
func (p Poll) Printable() string {
	answers := "- " + strings.Join(p.Options, "\n       - ")
	anon := "no"
	if p.Anonymous {
		anon = "yes"
	}
	multi := "no"
	if p.AllowMultiple {
		multi = "yes"
	}
	return fmt.Sprintf(
		"<b>Poll name:</b> %s\n"+
			"<b>Question</b>: %s\n"+
			"<b>Answers</b>: %s\n"+
			"<b>Weekly or Monthly</b>: %s\n"+
			"<b>Days to post</b>: %s\n"+
			"<b>Anonymous?</b>: %s\n"+
			"<b>Multiple responses?</b>: %s",
		p.Name, p.Question, answers, p.Frequency, p.DayList(), anon, multi,
	)
}
