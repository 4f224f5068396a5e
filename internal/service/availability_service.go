package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

// SlotLabelLayout formats slot start times, e.g. "09:00 AM".
const SlotLabelLayout = "03:04 PM"

// Slot policies. SlotPolicyFit enforces SlotsFitWithinWindow: a slot is only emitted when
// start+duration <= end. SlotPolicyOverhang emits every start strictly before end.
const (
	SlotPolicyFit      = "fit"
	SlotPolicyOverhang = "overhang"
)

// AvailabilityService turns weekly schedules into bookable slot labels.
type AvailabilityService struct {
	policy string
	logger *zap.Logger
}

// NewAvailabilityService constructs the resolver. Unknown policies fall back to fit.
func NewAvailabilityService(policy string, logger *zap.Logger) *AvailabilityService {
	if policy != SlotPolicyOverhang {
		policy = SlotPolicyFit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{policy: policy, logger: logger}
}

// Policy returns the active slot policy.
func (s *AvailabilityService) Policy() string {
	return s.policy
}

// ComputeSlotsForDay returns every slot label the mechanic's schedule yields on date (YYYY-MM-DD).
// Booked slots are not removed. Time off, unavailable weekdays and malformed input yield no slots.
func (s *AvailabilityService) ComputeSlotsForDay(mechanic models.Mechanic, settings models.Settings, date string) []string {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		s.logger.Warn("invalid availability date", zap.String("mechanic_id", mechanic.ID), zap.String("date", date))
		return []string{}
	}
	if mechanic.UnavailableOn(date) {
		return []string{}
	}

	entry := mechanic.WeeklyAvailability.For(day.Weekday())
	if !entry.IsAvailable {
		return []string{}
	}

	start, startErr := parseClock(entry.StartTime)
	end, endErr := parseClock(entry.EndTime)
	duration := settings.BookingSlotDuration
	if startErr != nil || endErr != nil || start >= end || duration <= 0 {
		s.logger.Warn("malformed availability window",
			zap.String("mechanic_id", mechanic.ID),
			zap.String("weekday", day.Weekday().String()),
			zap.String("start", entry.StartTime),
			zap.String("end", entry.EndTime),
			zap.Int("slot_duration", duration),
		)
		return []string{}
	}

	labels := make([]string, 0, (end-start)/duration+1)
	for current := start; current < end; current += duration {
		if s.policy == SlotPolicyFit && current+duration > end {
			break
		}
		labels = append(labels, formatSlot(current))
	}
	return labels
}

// DaySlots pairs each generated label with whether an occupying booking holds it.
func (s *AvailabilityService) DaySlots(mechanic models.Mechanic, settings models.Settings, bookings []models.Booking, date string) []models.TimeSlot {
	labels := s.ComputeSlotsForDay(mechanic, settings, date)
	booked := BookedSlotLabels(bookings, mechanic.ID, date)
	slots := make([]models.TimeSlot, 0, len(labels))
	for _, label := range labels {
		_, taken := booked[label]
		slots = append(slots, models.TimeSlot{Label: label, Booked: taken})
	}
	return slots
}

// IsSlotOpen reports whether label is generated for the mechanic on date and not already held.
func (s *AvailabilityService) IsSlotOpen(mechanic models.Mechanic, settings models.Settings, bookings []models.Booking, date, label string) bool {
	for _, slot := range s.DaySlots(mechanic, settings, bookings, date) {
		if slot.Label == label {
			return !slot.Booked
		}
	}
	return false
}

// BookedSlotLabels collects time labels of bookings that occupy the mechanic's slots on date.
func BookedSlotLabels(bookings []models.Booking, mechanicID, date string) map[string]struct{} {
	booked := make(map[string]struct{})
	for _, b := range bookings {
		if b.MechanicID == mechanicID && b.Date == date && b.Status.OccupiesSlot() {
			booked[b.Time] = struct{}{}
		}
	}
	return booked
}

// ValidateWeeklyAvailability rejects schedules that could never produce slots.
func ValidateWeeklyAvailability(week models.WeeklyAvailability) error {
	for name, entry := range week {
		if !isWeekdayName(name) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", name))
		}
		if !entry.IsAvailable {
			continue
		}
		start, err := parseClock(entry.StartTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: invalid start time %q", name, entry.StartTime))
		}
		end, err := parseClock(entry.EndTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: invalid end time %q", name, entry.EndTime))
		}
		if start >= end {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: start time must be before end time", name))
		}
	}
	return nil
}

func isWeekdayName(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return true
		}
	}
	return false
}

// parseClock converts HH:MM to minutes since midnight.
func parseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	return hours*60 + minutes, nil
}

func formatSlot(minutes int) string {
	return time.Date(2000, time.January, 1, 0, minutes, 0, 0, time.UTC).Format(SlotLabelLayout)
}
