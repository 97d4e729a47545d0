package service

import (
	"context"
	"errors"
	"time"

	"slotpay/internal/domain"
	"slotpay/internal/models"
	"slotpay/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingService validates and commits appointments against the provider's
// calendar. The overlap and daily-cap rules are re-checked at write time
// inside the repository transaction, not just when availability was rendered.
type BookingService struct {
	appts      *repository.AppointmentRepository
	rules      BookingRules
	providerID string
	now        func() time.Time
	log        *zap.Logger
}

func NewBookingService(appts *repository.AppointmentRepository, rules BookingRules, providerID string, log *zap.Logger) *BookingService {
	return &BookingService{appts: appts, rules: rules, providerID: providerID, now: time.Now, log: log}
}

func (s *BookingService) Rules() BookingRules { return s.rules }

// DayAvailability loads the day's non-cancelled appointments and computes
// the candidate list and day status for the chat-interface collaborator.
func (s *BookingService) DayAvailability(ctx context.Context, date time.Time) (DayAvailability, error) {
	dayStart, dayEnd := s.rules.DayBounds(date)
	existing, err := s.appts.ListActiveDay(ctx, s.providerID, dayStart, dayEnd)
	if err != nil {
		return DayAvailability{}, err
	}
	return ComputeDayAvailability(s.rules, date, s.now(), existing), nil
}

// Book commits a new SCHEDULED appointment at requestedStart. A lost race or
// rule violation comes back as a SlotUnavailable value, not an error; the
// error return is reserved for infrastructure failures.
func (s *BookingService) Book(ctx context.Context, clientID, serviceID string, requestedStart time.Time) (*models.Appointment, *domain.SlotUnavailable, error) {
	start := requestedStart.In(s.rules.Location)

	if reason := s.checkWindow(start); reason != "" {
		return nil, &domain.SlotUnavailable{Reason: reason}, nil
	}

	appt := &models.Appointment{
		Reference:       uuid.NewString(),
		ClientID:        clientID,
		ProviderID:      s.providerID,
		ServiceID:       serviceID,
		StartAt:         start,
		DurationMinutes: int(s.rules.SlotDuration / time.Minute),
		Status:          domain.AppointmentScheduled,
	}
	dayStart, dayEnd := s.rules.DayBounds(start)
	end := start.Add(s.rules.SlotDuration)

	check := func(existing []models.Appointment) error {
		if len(existing) >= s.rules.MaxSlotsPerDay {
			return domain.ErrDayFull
		}
		if overlapsAny(existing, start, end) {
			return domain.ErrSlotTaken
		}
		return nil
	}

	// One retry on transaction conflicts (deadlock, serialization); business
	// rejections return immediately.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.appts.CreateGuarded(ctx, appt, dayStart, dayEnd, check)
		switch {
		case err == nil:
			s.log.Info("appointment booked",
				zap.String("reference", appt.Reference),
				zap.Time("start", appt.StartAt))
			return appt, nil, nil
		case errors.Is(err, domain.ErrSlotTaken):
			return nil, &domain.SlotUnavailable{Reason: domain.UnavailableOverlap}, nil
		case errors.Is(err, domain.ErrDayFull):
			return nil, &domain.SlotUnavailable{Reason: domain.UnavailableDayFull}, nil
		}
		s.log.Warn("booking transaction failed, retrying once", zap.Error(err))
	}
	return nil, nil, err
}

// checkWindow enforces the business-day, closing-time and lead-time rules
// that candidate generation applies, so a stale or hand-crafted start time
// cannot slip past them.
func (s *BookingService) checkWindow(start time.Time) string {
	if !s.rules.OpenWeekdays[start.Weekday()] {
		return domain.UnavailableOutsideHours
	}
	open, closeAt := s.rules.BusinessHours(start)
	if start.Before(open) || start.Add(s.rules.SlotDuration).After(closeAt) {
		return domain.UnavailableOutsideHours
	}
	// Only starts the candidate generator would have offered are accepted.
	if start.Sub(open)%s.rules.Stride != 0 {
		return domain.UnavailableOutsideHours
	}
	if start.Before(s.now().In(s.rules.Location).Add(s.rules.MinLeadTime)) {
		return domain.UnavailableTooSoon
	}
	return ""
}

// GetByReference looks up an appointment by its stable external reference.
func (s *BookingService) GetByReference(ctx context.Context, ref string) (*models.Appointment, error) {
	appt, err := s.appts.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{What: "appointment"}
		}
		return nil, err
	}
	return appt, nil
}
