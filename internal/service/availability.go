package service

import (
	"fmt"
	"time"

	"slotpay/config"
	"slotpay/internal/domain"
	"slotpay/internal/models"
)

// BookingRules holds the fixed scheduling parameters of the single provider.
type BookingRules struct {
	Location       *time.Location
	OpenHour       int
	CloseHour      int
	OpenWeekdays   map[time.Weekday]bool
	SlotDuration   time.Duration
	Stride         time.Duration
	MinLeadTime    time.Duration
	MaxSlotsPerDay int
}

func RulesFromConfig(cfg *config.BookingConfig) (BookingRules, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return BookingRules{}, fmt.Errorf("booking timezone: %w", err)
	}
	days := make(map[time.Weekday]bool, len(cfg.OpenWeekdays))
	byName := map[string]time.Weekday{
		"Sunday": time.Sunday, "Monday": time.Monday, "Tuesday": time.Tuesday,
		"Wednesday": time.Wednesday, "Thursday": time.Thursday,
		"Friday": time.Friday, "Saturday": time.Saturday,
	}
	for _, name := range cfg.OpenWeekdays {
		d, ok := byName[name]
		if !ok {
			return BookingRules{}, fmt.Errorf("booking weekday: unknown day %q", name)
		}
		days[d] = true
	}
	return BookingRules{
		Location:       loc,
		OpenHour:       cfg.OpenHour,
		CloseHour:      cfg.CloseHour,
		OpenWeekdays:   days,
		SlotDuration:   time.Duration(cfg.SlotMinutes) * time.Minute,
		Stride:         time.Duration(cfg.StrideMinutes) * time.Minute,
		MinLeadTime:    cfg.MinLeadTime,
		MaxSlotsPerDay: cfg.MaxSlotsPerDay,
	}, nil
}

// DayBounds returns the [midnight, next midnight) window of date's day in
// the operating time zone.
func (r BookingRules) DayBounds(date time.Time) (time.Time, time.Time) {
	d := date.In(r.Location)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.Location)
	return start, start.AddDate(0, 0, 1)
}

// BusinessHours returns the open and close instants of date's day. Built
// from clock fields, not midnight offsets, so a DST transition earlier in
// the day cannot shift the business window.
func (r BookingRules) BusinessHours(date time.Time) (time.Time, time.Time) {
	d := date.In(r.Location)
	open := time.Date(d.Year(), d.Month(), d.Day(), r.OpenHour, 0, 0, 0, r.Location)
	closeAt := time.Date(d.Year(), d.Month(), d.Day(), r.CloseHour, 0, 0, 0, r.Location)
	return open, closeAt
}

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type DayAvailability struct {
	Date        string `json:"date"`
	Status      string `json:"status"`
	BookedCount int    `json:"booked_count"`
	Slots       []Slot `json:"slots"`
}

// ComputeDayAvailability generates the bookable start times of a day and its
// day-level status. Pure: no clock access, no I/O — now is passed in and
// existing must hold the day's non-cancelled appointments.
//
// The status is derived from the booked count alone, independently of the
// candidate list: the day cap is a business ceiling, not a geometric one.
func ComputeDayAvailability(rules BookingRules, date, now time.Time, existing []models.Appointment) DayAvailability {
	dayStart, _ := rules.DayBounds(date)
	now = now.In(rules.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, rules.Location)

	out := DayAvailability{
		Date:        dayStart.Format("2006-01-02"),
		BookedCount: len(existing),
		Slots:       []Slot{},
	}

	switch {
	case !rules.OpenWeekdays[dayStart.Weekday()] || dayStart.Before(today):
		out.Status = domain.DayClosed
	case len(existing) >= rules.MaxSlotsPerDay:
		out.Status = domain.DayFull
	case len(existing) == rules.MaxSlotsPerDay-1:
		out.Status = domain.DayLimited
	default:
		out.Status = domain.DayAvailable
	}

	if !rules.OpenWeekdays[dayStart.Weekday()] {
		return out
	}

	open, closeAt := rules.BusinessHours(dayStart)
	earliest := now.Add(rules.MinLeadTime)

	for start := open; !start.Add(rules.SlotDuration).After(closeAt); start = start.Add(rules.Stride) {
		if start.Before(earliest) {
			continue
		}
		end := start.Add(rules.SlotDuration)
		if overlapsAny(existing, start, end) {
			continue
		}
		out.Slots = append(out.Slots, Slot{Start: start, End: end})
	}
	return out
}

func overlapsAny(existing []models.Appointment, start, end time.Time) bool {
	for i := range existing {
		if existing[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}
