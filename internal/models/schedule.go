package models

import (
	"fmt"
	"strings"
	"time"
)

// DayLabel is the coarse name of a crawl day ("tuesday", "thursday").
type DayLabel string

const (
	DayTuesday  DayLabel = "tuesday"
	DayThursday DayLabel = "thursday"
	DayUnknown  DayLabel = "unknown"
)

const isoDate = "2006-01-02"

// ScheduledDay binds an event date to its day label.
type ScheduledDay struct {
	Date  string
	Label DayLabel
}

// Schedule is the ordered list of crawl days. Order is the display order.
type Schedule struct {
	days []ScheduledDay
}

// DefaultSchedule is the two-event fall schedule.
func DefaultSchedule() Schedule {
	return Schedule{days: []ScheduledDay{
		{Date: "2024-10-28", Label: DayTuesday},
		{Date: "2024-10-30", Label: DayThursday},
	}}
}

// ParseSchedule reads "2024-10-28=tuesday,2024-10-30=thursday".
func ParseSchedule(s string) (Schedule, error) {
	var sched Schedule
	seen := make(map[DayLabel]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		date, label, ok := strings.Cut(part, "=")
		if !ok {
			return Schedule{}, fmt.Errorf("schedule entry %q: want DATE=LABEL", part)
		}
		date = strings.TrimSpace(date)
		if _, err := time.Parse(isoDate, date); err != nil {
			return Schedule{}, fmt.Errorf("schedule entry %q: %w", part, err)
		}
		l := DayLabel(strings.ToLower(strings.TrimSpace(label)))
		if l == "" || l == DayUnknown {
			return Schedule{}, fmt.Errorf("schedule entry %q: invalid label", part)
		}
		if seen[l] {
			return Schedule{}, fmt.Errorf("schedule entry %q: duplicate label", part)
		}
		seen[l] = true
		sched.days = append(sched.days, ScheduledDay{Date: date, Label: l})
	}
	if len(sched.days) == 0 {
		return Schedule{}, fmt.Errorf("schedule is empty")
	}
	return sched, nil
}

func (s Schedule) Days() []ScheduledDay {
	out := make([]ScheduledDay, len(s.days))
	copy(out, s.days)
	return out
}

func (s Schedule) Labels() []DayLabel {
	out := make([]DayLabel, 0, len(s.days))
	for _, d := range s.days {
		out = append(out, d.Label)
	}
	return out
}

// LabelFor maps an event date to its label, DayUnknown when unscheduled.
func (s Schedule) LabelFor(date string) DayLabel {
	for _, d := range s.days {
		if d.Date == date {
			return d.Label
		}
	}
	return DayUnknown
}

// DateFor returns the event date scheduled under label.
func (s Schedule) DateFor(label DayLabel) (string, bool) {
	for _, d := range s.days {
		if d.Label == label {
			return d.Date, true
		}
	}
	return "", false
}

func (s Schedule) Known(label DayLabel) bool {
	_, ok := s.DateFor(label)
	return ok
}

// Rank orders labels by schedule position; unknown labels sort last.
func (s Schedule) Rank(label DayLabel) int {
	for i, d := range s.days {
		if d.Label == label {
			return i
		}
	}
	return len(s.days)
}

// Display renders a label as "Tuesday, October 28, 2024".
func (s Schedule) Display(label DayLabel) string {
	return s.format(label, "January 2, 2006")
}

// DayDisplay renders a label as "Tuesday, October 28".
func (s Schedule) DayDisplay(label DayLabel) string {
	return s.format(label, "January 2")
}

// ShortDisplay renders a label as "Tuesday, Oct 28".
func (s Schedule) ShortDisplay(label DayLabel) string {
	return s.format(label, "Jan 2")
}

func (s Schedule) format(label DayLabel, layout string) string {
	name := label.Title()
	date, ok := s.DateFor(label)
	if !ok {
		return name
	}
	t, err := time.Parse(isoDate, date)
	if err != nil {
		return name
	}
	return name + ", " + t.Format(layout)
}

// Title capitalises the label: "tuesday" becomes "Tuesday".
func (l DayLabel) Title() string {
	if l == "" {
		return ""
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}
