package scheduler

import (
	"fmt"
	"time"
)

// Trigger computes when a job should fire next.
type Trigger interface {
	// Next returns the first firing time strictly after the given instant.
	Next(after time.Time) time.Time
	String() string
}

type dailyTrigger struct {
	hour, minute int
}

// DailyAt fires once per day at the given wall-clock time.
func DailyAt(hour, minute int) Trigger {
	return dailyTrigger{hour: hour, minute: minute}
}

func (t dailyTrigger) Next(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), t.hour, t.minute, 0, 0, after.Location())
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (t dailyTrigger) String() string {
	return fmt.Sprintf("daily at %02d:%02d", t.hour, t.minute)
}

type weeklyTrigger struct {
	weekday      time.Weekday
	hour, minute int
}

// WeeklyAt fires once per week on the given weekday.
func WeeklyAt(weekday time.Weekday, hour, minute int) Trigger {
	return weeklyTrigger{weekday: weekday, hour: hour, minute: minute}
}

func (t weeklyTrigger) Next(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), t.hour, t.minute, 0, 0, after.Location())
	days := (int(t.weekday) - int(next.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(after) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (t weeklyTrigger) String() string {
	return fmt.Sprintf("weekly on %s at %02d:%02d", t.weekday, t.hour, t.minute)
}

type monthlyTrigger struct {
	day          int
	hour, minute int
}

// MonthlyAt fires once per month on the given day. Months too short for the
// day are skipped.
func MonthlyAt(day, hour, minute int) Trigger {
	return monthlyTrigger{day: day, hour: hour, minute: minute}
}

func (t monthlyTrigger) Next(after time.Time) time.Time {
	candidate := time.Date(after.Year(), after.Month(), 1, t.hour, t.minute, 0, 0, after.Location())
	for i := 0; i < 48; i++ {
		next := candidate.AddDate(0, 0, t.day-1)
		if next.Month() == candidate.Month() && next.After(after) {
			return next
		}
		candidate = candidate.AddDate(0, 1, 0)
	}
	return time.Time{}
}

func (t monthlyTrigger) String() string {
	return fmt.Sprintf("monthly on day %d at %02d:%02d", t.day, t.hour, t.minute)
}

// ParseDailySlot turns an "HH:MM" string into a daily trigger.
func ParseDailySlot(slot string) (Trigger, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(slot, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("invalid schedule slot %q: %w", slot, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("schedule slot %q out of range", slot)
	}
	return DailyAt(hour, minute), nil
}
