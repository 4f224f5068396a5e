package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

type bookingNotifier interface {
	BookingChanged(ctx context.Context, event BookingEvent)
}

// CreateBookingRequest captures the customer's booking form.
type CreateBookingRequest struct {
	CustomerID string         `json:"customerId" validate:"required"`
	ServiceID  string         `json:"serviceId" validate:"required"`
	Vehicle    models.Vehicle `json:"vehicle" validate:"-"`
	MechanicID string         `json:"mechanicId"`
	Date       string         `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string         `json:"time" validate:"required"`
	Location   string         `json:"location" validate:"max=500"`
	Notes      string         `json:"notes" validate:"max=2000"`
}

// UpdateBookingStatusRequest moves a booking through its lifecycle.
type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required"`
	Reason string               `json:"reason" validate:"max=500"`
}

// AssignMechanicRequest attaches a mechanic to an existing booking.
type AssignMechanicRequest struct {
	MechanicID string `json:"mechanicId" validate:"required"`
}

// BookingService creates bookings and drives status transitions.
type BookingService struct {
	store        databaseStore
	availability *AvailabilityService
	notifier     bookingNotifier
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	location     *time.Location
	now          func() time.Time
}

// NewBookingService constructs the booking service. notifier and metrics may be nil.
func NewBookingService(store databaseStore, availability *AvailabilityService, notifier bookingNotifier, metrics *MetricsService, validate *validator.Validate, location *time.Location, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if availability == nil {
		availability = NewAvailabilityService(SlotPolicyFit, logger)
	}
	if location == nil {
		location = time.Local
	}
	return &BookingService{
		store:        store,
		availability: availability,
		notifier:     notifier,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		location:     location,
		now:          time.Now,
	}
}

// Create books a slot. When a mechanic is chosen the slot is checked and reserved in the same store mutation.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	req.Time = strings.TrimSpace(req.Time)
	slotStart, err := time.Parse(SlotLabelLayout, req.Time)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time must be a slot label such as 09:00 AM")
	}
	now := s.now().In(s.location)
	today := now.Format(dateLayout)
	if req.Date < today {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking date is in the past")
	}
	if req.Date == today && slotStart.Hour()*60+slotStart.Minute() < now.Hour()*60+now.Minute() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking time has already passed")
	}

	var created models.Booking
	err = s.store.Update(ctx, func(db *models.Database) error {
		customer := db.FindCustomer(req.CustomerID)
		if customer == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		service := db.FindService(req.ServiceID)
		if service == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		vehicle, err := s.resolveVehicle(customer, req.Vehicle)
		if err != nil {
			return err
		}

		booking := models.Booking{
			ID:            uuid.NewString(),
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			ServiceID:     service.ID,
			ServiceName:   service.Name,
			ServicePrice:  service.Price,
			Vehicle:       vehicle,
			Date:          req.Date,
			Time:          req.Time,
			Location:      strings.TrimSpace(req.Location),
			Notes:         strings.TrimSpace(req.Notes),
			Status:        models.BookingStatusUpcoming,
			StatusHistory: []models.StatusEntry{},
			BeforeImages:  []string{},
			AfterImages:   []string{},
			CreatedAt:     s.now().UTC(),
		}

		if req.MechanicID != "" {
			mechanic, err := s.reserve(db, req.MechanicID, req.Date, req.Time, "")
			if err != nil {
				return err
			}
			booking.MechanicID = mechanic.ID
			booking.MechanicName = mechanic.Name
		}

		db.Bookings = append(db.Bookings, booking)
		created = booking
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to save booking")
	}

	s.metrics.RecordBookingCreated()
	s.logger.Info("booking created",
		zap.String("booking_id", created.ID),
		zap.String("mechanic_id", created.MechanicID),
		zap.String("date", created.Date),
		zap.String("time", created.Time),
	)
	s.notify(ctx, BookingEventCreated, created)
	return &created, nil
}

// SetStatus transitions a booking. Repeating the current status is a no-op.
// actor nil means a trusted internal caller.
func (s *BookingService) SetStatus(ctx context.Context, id string, req UpdateBookingStatusRequest, actor *models.UserInfo) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}

	var (
		updated models.Booking
		changed bool
	)
	err := s.store.Update(ctx, func(db *models.Database) error {
		changed = false
		booking := db.FindBooking(id)
		if booking == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		if err := authorizeStatusChange(booking, req.Status, actor); err != nil {
			return err
		}
		if booking.Status == req.Status {
			updated = *booking
			return nil
		}
		if booking.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "booking is already "+strings.ToLower(string(booking.Status)))
		}

		reason := strings.TrimSpace(req.Reason)
		if req.Status == models.BookingStatusCancelled {
			if reason == "" {
				return appErrors.Clone(appErrors.ErrValidation, "cancellation reason is required")
			}
			booking.CancellationReason = reason
		}
		if req.Status.OccupiesSlot() && !booking.Status.OccupiesSlot() && booking.MechanicID != "" {
			if otherHolds(db.Bookings, booking) {
				return appErrors.Clone(appErrors.ErrSlotUnavailable, "time slot is held by another booking")
			}
		}

		booking.Status = req.Status
		booking.StatusHistory = append(booking.StatusHistory, models.StatusEntry{Status: req.Status, Timestamp: s.now().UTC()})
		updated = *booking
		changed = true
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to update booking status")
	}

	if changed {
		s.metrics.RecordBookingTransition(string(updated.Status))
		s.logger.Info("booking status changed", zap.String("booking_id", updated.ID), zap.String("status", string(updated.Status)))
		s.notify(ctx, BookingEventStatus, updated)
	}
	return &updated, nil
}

// AssignMechanic attaches an active mechanic whose schedule has the booking's slot open.
func (s *BookingService) AssignMechanic(ctx context.Context, id string, req AssignMechanicRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	var updated models.Booking
	err := s.store.Update(ctx, func(db *models.Database) error {
		booking := db.FindBooking(id)
		if booking == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		if booking.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "cannot assign a mechanic to a closed booking")
		}
		if booking.MechanicID == req.MechanicID {
			updated = *booking
			return nil
		}
		mechanic, err := s.reserve(db, req.MechanicID, booking.Date, booking.Time, booking.ID)
		if err != nil {
			return err
		}
		booking.MechanicID = mechanic.ID
		booking.MechanicName = mechanic.Name
		updated = *booking
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to assign mechanic")
	}

	s.logger.Info("mechanic assigned", zap.String("booking_id", updated.ID), zap.String("mechanic_id", updated.MechanicID))
	s.notify(ctx, BookingEventAssigned, updated)
	return &updated, nil
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	var found *models.Booking
	_ = s.store.Read(func(db *models.Database) error {
		if b := db.FindBooking(id); b != nil {
			cp := *b
			found = &cp
		}
		return nil
	})
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}
	return found, nil
}

// List returns bookings matching filter, newest first.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}
	page, size := normalisePage(filter.Page, filter.PageSize)

	var matched []models.Booking
	_ = s.store.Read(func(db *models.Database) error {
		for _, b := range db.Bookings {
			if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
				continue
			}
			if filter.MechanicID != "" && b.MechanicID != filter.MechanicID {
				continue
			}
			if filter.Status != "" && b.Status != filter.Status {
				continue
			}
			if filter.Date != "" && b.Date != filter.Date {
				continue
			}
			matched = append(matched, b)
		}
		return nil
	})

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	start, end := pageBounds(len(matched), page, size)
	items := make([]models.Booking, end-start)
	copy(items, matched[start:end])
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: len(matched)}, nil
}

// reserve checks that mechanicID is active and its slot at date/label is generated and free.
// excludeID ignores the booking being reassigned.
func (s *BookingService) reserve(db *models.Database, mechanicID, date, label, excludeID string) (*models.Mechanic, error) {
	mechanic := db.FindMechanic(mechanicID)
	if mechanic == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "mechanic not found")
	}
	if mechanic.Status != models.MechanicStatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mechanic is not available for bookings")
	}

	others := db.Bookings
	if excludeID != "" {
		others = make([]models.Booking, 0, len(db.Bookings))
		for _, b := range db.Bookings {
			if b.ID != excludeID {
				others = append(others, b)
			}
		}
	}

	if !s.availability.IsSlotOpen(*mechanic, db.Settings, others, date, label) {
		s.metrics.RecordSlotConflict()
		s.logger.Warn("slot unavailable",
			zap.String("mechanic_id", mechanicID),
			zap.String("date", date),
			zap.String("time", label),
		)
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "")
	}
	return mechanic, nil
}

func (s *BookingService) resolveVehicle(customer *models.Customer, vehicle models.Vehicle) (models.Vehicle, error) {
	if vehicle.ID != "" && vehicle.Make == "" && vehicle.Model == "" {
		for _, v := range customer.Vehicles {
			if v.ID == vehicle.ID {
				return v, nil
			}
		}
		return models.Vehicle{}, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
	}
	if err := s.validator.Struct(vehicle); err != nil {
		return models.Vehicle{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "vehicle make and model are required")
	}
	return vehicle, nil
}

func (s *BookingService) notify(ctx context.Context, kind string, booking models.Booking) {
	if s.notifier == nil {
		return
	}
	s.notifier.BookingChanged(ctx, BookingEvent{
		Type:        kind,
		BookingID:   booking.ID,
		CustomerID:  booking.CustomerID,
		MechanicID:  booking.MechanicID,
		Status:      booking.Status,
		Date:        booking.Date,
		Time:        booking.Time,
		ServiceName: booking.ServiceName,
		OccurredAt:  s.now().UTC(),
	})
}

// otherHolds reports whether a different booking already occupies booking's slot.
func otherHolds(bookings []models.Booking, booking *models.Booking) bool {
	for _, b := range bookings {
		if b.ID != booking.ID && b.Occupies(booking.MechanicID, booking.Date, booking.Time) {
			return true
		}
	}
	return false
}

func authorizeStatusChange(booking *models.Booking, status models.BookingStatus, actor *models.UserInfo) error {
	if actor == nil {
		return nil
	}
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleMechanic:
		if booking.MechanicID == actor.ID {
			return nil
		}
	case models.RoleCustomer:
		if booking.CustomerID == actor.ID && status == models.BookingStatusCancelled {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to change this booking")
}
