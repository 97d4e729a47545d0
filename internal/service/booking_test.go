package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"slotpay/internal/domain"
	"slotpay/internal/repository"

	"go.uber.org/zap"
)

func newBookingService(t *testing.T) (*BookingService, *repository.AppointmentRepository) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewAppointmentRepository(db)
	svc := NewBookingService(repo, testRules(), "default", zap.NewNop())
	// Pin the clock a week before the test day so lead time never interferes.
	svc.now = func() time.Time { return testDay.AddDate(0, 0, -7).Add(9 * time.Hour) }
	return svc, repo
}

func TestBook_Succeeds(t *testing.T) {
	svc, _ := newBookingService(t)
	ctx := context.Background()

	appt, unavailable, err := svc.Book(ctx, "client-1", "standard", testDay.Add(11*time.Hour))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if unavailable != nil {
		t.Fatalf("unexpected SlotUnavailable: %s", unavailable.Reason)
	}
	if appt.Status != domain.AppointmentScheduled {
		t.Errorf("status = %s, want %s", appt.Status, domain.AppointmentScheduled)
	}
	if appt.Reference == "" {
		t.Error("appointment should carry an external reference")
	}
	if appt.DurationMinutes != 90 {
		t.Errorf("duration = %d, want 90", appt.DurationMinutes)
	}
}

func TestBook_RejectsOverlap(t *testing.T) {
	svc, _ := newBookingService(t)
	ctx := context.Background()

	if _, _, err := svc.Book(ctx, "client-1", "standard", testDay.Add(11*time.Hour)); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// 11:00, 11:30 and 12:00 all intersect [11:00, 12:30).
	for _, offset := range []time.Duration{11 * time.Hour, 11*time.Hour + 30*time.Minute, 12 * time.Hour} {
		_, unavailable, err := svc.Book(ctx, "client-2", "standard", testDay.Add(offset))
		if err != nil {
			t.Fatalf("Book at %v: %v", offset, err)
		}
		if unavailable == nil || unavailable.Reason != domain.UnavailableOverlap {
			t.Errorf("booking at %v should fail with OVERLAP, got %+v", offset, unavailable)
		}
	}

	// 12:30 starts exactly where the first window ends.
	_, unavailable, err := svc.Book(ctx, "client-2", "standard", testDay.Add(12*time.Hour+30*time.Minute))
	if err != nil {
		t.Fatalf("Book at 12:30: %v", err)
	}
	if unavailable != nil {
		t.Errorf("12:30 should be bookable next to an 11:00–12:30 appointment, got %s", unavailable.Reason)
	}
}

func TestBook_RejectsWhenDayFull(t *testing.T) {
	svc, _ := newBookingService(t)
	ctx := context.Background()

	starts := []time.Duration{
		11 * time.Hour, 12*time.Hour + 30*time.Minute, 14 * time.Hour,
		15*time.Hour + 30*time.Minute, 17 * time.Hour,
	}
	for _, offset := range starts {
		if _, unavailable, err := svc.Book(ctx, "client-1", "standard", testDay.Add(offset)); err != nil || unavailable != nil {
			t.Fatalf("seed booking at %v failed: err=%v unavailable=%+v", offset, err, unavailable)
		}
	}

	// 18:30–20:00 is geometrically free but the day cap is a hard ceiling.
	_, unavailable, err := svc.Book(ctx, "client-2", "standard", testDay.Add(18*time.Hour+30*time.Minute))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if unavailable == nil || unavailable.Reason != domain.UnavailableDayFull {
		t.Errorf("want DAY_FULL, got %+v", unavailable)
	}
}

func TestBook_RejectsOutsideBusinessWindow(t *testing.T) {
	svc, _ := newBookingService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		start time.Time
	}{
		{"before open", testDay.Add(9 * time.Hour)},
		{"window runs past close", testDay.Add(19 * time.Hour)},
		{"closed weekday", time.Date(2030, 6, 3, 11, 0, 0, 0, time.UTC)}, // Monday
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, unavailable, err := svc.Book(ctx, "client-1", "standard", tc.start)
			if err != nil {
				t.Fatalf("Book: %v", err)
			}
			if unavailable == nil || unavailable.Reason != domain.UnavailableOutsideHours {
				t.Errorf("want OUTSIDE_HOURS, got %+v", unavailable)
			}
		})
	}
}

func TestBook_RejectsInsideLeadTime(t *testing.T) {
	svc, _ := newBookingService(t)

	// 10:00 on the test day: 12:00 is inside business hours but under the
	// three-hour lead time.
	svc.now = func() time.Time { return testDay.Add(10 * time.Hour) }

	_, unavailable, err := svc.Book(context.Background(), "client-1", "standard", testDay.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if unavailable == nil || unavailable.Reason != domain.UnavailableTooSoon {
		t.Errorf("want TOO_SOON, got %+v", unavailable)
	}

	// 14:00 the same day clears the lead time.
	_, unavailable, err = svc.Book(context.Background(), "client-1", "standard", testDay.Add(14*time.Hour))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if unavailable != nil {
		t.Errorf("14:00 should clear the lead time, got %s", unavailable.Reason)
	}
}

func TestBook_RejectsOffStrideStart(t *testing.T) {
	svc, _ := newBookingService(t)
	ctx := context.Background()

	// 11:17 is inside business hours but on no candidate the availability
	// list ever offered.
	_, unavailable, err := svc.Book(ctx, "client-1", "standard", testDay.Add(11*time.Hour+17*time.Minute))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if unavailable == nil || unavailable.Reason != domain.UnavailableOutsideHours {
		t.Errorf("want OUTSIDE_HOURS for an off-stride start, got %+v", unavailable)
	}
}

func TestBook_KeepsHoursOnDSTTransitionDay(t *testing.T) {
	db := newTestDB(t)
	rules := torontoRules(t)
	svc := NewBookingService(repository.NewAppointmentRepository(db), rules, "default", zap.NewNop())

	// 2030-03-10 is the spring-forward Sunday in America/Toronto.
	dstDay := time.Date(2030, 3, 10, 0, 0, 0, 0, rules.Location)
	svc.now = func() time.Time { return dstDay.AddDate(0, 0, -7) }

	// The 11:00 opening slot must stay bookable despite the skipped hour.
	_, unavailable, err := svc.Book(context.Background(), "client-1", "standard",
		time.Date(2030, 3, 10, 11, 0, 0, 0, rules.Location))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if unavailable != nil {
		t.Errorf("11:00 on the transition day should be bookable, got %s", unavailable.Reason)
	}

	// And 20:00 wall clock still does not fit a 90-minute window.
	_, unavailable, err = svc.Book(context.Background(), "client-2", "standard",
		time.Date(2030, 3, 10, 19, 0, 0, 0, rules.Location))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if unavailable == nil || unavailable.Reason != domain.UnavailableOutsideHours {
		t.Errorf("19:00 runs past close on the transition day too, got %+v", unavailable)
	}
}

func TestGetByReference(t *testing.T) {
	svc, _ := newBookingService(t)
	ctx := context.Background()

	booked, _, err := svc.Book(ctx, "client-1", "standard", testDay.Add(11*time.Hour))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	got, err := svc.GetByReference(ctx, booked.Reference)
	if err != nil {
		t.Fatalf("GetByReference: %v", err)
	}
	if got.ID != booked.ID {
		t.Errorf("id = %d, want %d", got.ID, booked.ID)
	}

	_, err = svc.GetByReference(ctx, "no-such-reference")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("unknown reference: want NotFoundError, got %v", err)
	}
}

func TestGetByReference_InfrastructureFailureIsNotNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(repository.NewAppointmentRepository(db), testRules(), "default", zap.NewNop())

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.Close()

	_, err = svc.GetByReference(context.Background(), "any")
	if err == nil {
		t.Fatal("want an error from a closed database")
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		t.Error("a database failure must not be reported as not-found")
	}
}

func TestDayAvailability_ReflectsBookings(t *testing.T) {
	svc, repo := newBookingService(t)
	ctx := context.Background()

	if _, _, err := svc.Book(ctx, "client-1", "standard", testDay.Add(11*time.Hour)); err != nil {
		t.Fatalf("Book: %v", err)
	}
	day, err := svc.DayAvailability(ctx, testDay)
	if err != nil {
		t.Fatalf("DayAvailability: %v", err)
	}
	if day.BookedCount != 1 {
		t.Errorf("bookedCount = %d, want 1", day.BookedCount)
	}
	for _, s := range day.Slots {
		if s.Start.Before(testDay.Add(12*time.Hour+30*time.Minute)) && s.End.After(testDay.Add(11*time.Hour)) {
			t.Errorf("slot %v–%v overlaps the booked window", s.Start, s.End)
		}
	}
	if _, err := repo.ListActiveDay(ctx, "default", testDay, testDay.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("ListActiveDay: %v", err)
	}
}

func TestBookingInvariant_NoOverlappingActivePair(t *testing.T) {
	svc, repo := newBookingService(t)
	ctx := context.Background()

	// Try every candidate twice; the second attempt must always lose.
	for offset := 11 * time.Hour; offset <= 18*time.Hour+30*time.Minute; offset += 30 * time.Minute {
		svc.Book(ctx, "a", "standard", testDay.Add(offset))
		svc.Book(ctx, "b", "standard", testDay.Add(offset))
	}

	active, err := repo.ListActiveDay(ctx, "default", testDay, testDay.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListActiveDay: %v", err)
	}
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			if active[i].Overlaps(active[j].StartAt, active[j].EndAt()) {
				t.Errorf("appointments %d and %d overlap: %v and %v",
					active[i].ID, active[j].ID, active[i].StartAt, active[j].StartAt)
			}
		}
	}
}
