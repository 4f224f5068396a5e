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

// RegisterMechanicRequest is the mechanic sign-up form.
type RegisterMechanicRequest struct {
	Name            string   `json:"name" validate:"required,max=120"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"omitempty,max=30"`
	Password        string   `json:"password" validate:"required,min=6"`
	Bio             string   `json:"bio" validate:"max=2000"`
	Specializations []string `json:"specializations" validate:"dive,required,max=60"`
	YearsExperience int      `json:"yearsExperience" validate:"min=0,max=80"`
}

// UpdateMechanicStatusRequest is the admin approval/deactivation payload.
type UpdateMechanicStatusRequest struct {
	Status models.MechanicStatus `json:"status" validate:"required"`
}

// UpdateSpecializationsRequest replaces a mechanic's tags.
type UpdateSpecializationsRequest struct {
	Specializations []string `json:"specializations" validate:"required,dive,required,max=60"`
}

// MechanicService manages mechanic profiles, schedules and time off.
type MechanicService struct {
	store     databaseStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMechanicService creates a new mechanic service.
func NewMechanicService(store databaseStore, validate *validator.Validate, logger *zap.Logger) *MechanicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MechanicService{store: store, validator: validate, logger: logger, now: time.Now}
}

// Register creates a Pending mechanic awaiting admin approval. The default schedule is empty.
func (s *MechanicService) Register(ctx context.Context, req RegisterMechanicRequest) (*models.Mechanic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mechanic payload")
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	mechanic := models.Mechanic{
		ID:                    uuid.NewString(),
		Name:                  strings.TrimSpace(req.Name),
		Email:                 strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:                 strings.TrimSpace(req.Phone),
		PasswordHash:          hash,
		Bio:                   strings.TrimSpace(req.Bio),
		Specializations:       normaliseTags(req.Specializations),
		YearsExperience:       req.YearsExperience,
		Status:                models.MechanicStatusPending,
		WeeklyAvailability:    models.WeeklyAvailability{},
		UnavailableDateRanges: []models.DateRange{},
		CreatedAt:             s.now().UTC(),
	}

	err = s.store.Update(ctx, func(db *models.Database) error {
		if db.EmailTaken(mechanic.Email) {
			return appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		db.Mechanics = append(db.Mechanics, mechanic)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to register mechanic")
	}

	s.logger.Info("mechanic registered", zap.String("mechanic_id", mechanic.ID))
	public := mechanic.Public()
	return &public, nil
}

// Get returns a mechanic by id.
func (s *MechanicService) Get(ctx context.Context, id string) (*models.Mechanic, error) {
	var found *models.Mechanic
	_ = s.store.Read(func(db *models.Database) error {
		if m := db.FindMechanic(id); m != nil {
			public := m.Public()
			found = &public
		}
		return nil
	})
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "mechanic not found")
	}
	return found, nil
}

// List returns mechanics ordered by name.
func (s *MechanicService) List(ctx context.Context, filter models.MechanicFilter) ([]models.Mechanic, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown mechanic status")
	}
	items := []models.Mechanic{}
	_ = s.store.Read(func(db *models.Database) error {
		for _, m := range db.Mechanics {
			if filter.Status != nil && m.Status != *filter.Status {
				continue
			}
			if filter.Search != "" && !m.NameContains(filter.Search) {
				continue
			}
			items = append(items, m.Public())
		}
		return nil
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// SetStatus approves, deactivates or reactivates a mechanic.
func (s *MechanicService) SetStatus(ctx context.Context, id string, req UpdateMechanicStatusRequest) (*models.Mechanic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown mechanic status")
	}
	return s.mutate(ctx, id, "failed to update mechanic status", func(m *models.Mechanic) error {
		m.Status = req.Status
		return nil
	})
}

// UpdateAvailability replaces the weekly schedule after validating every day.
func (s *MechanicService) UpdateAvailability(ctx context.Context, id string, week models.WeeklyAvailability) (*models.Mechanic, error) {
	if err := ValidateWeeklyAvailability(week); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "failed to update availability", func(m *models.Mechanic) error {
		m.WeeklyAvailability = week
		return nil
	})
}

// AddTimeOff appends an inclusive date range during which the mechanic takes no bookings.
func (s *MechanicService) AddTimeOff(ctx context.Context, id string, r models.DateRange) (*models.Mechanic, error) {
	if err := s.validator.Struct(r); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dates must be YYYY-MM-DD")
	}
	if r.StartDate > r.EndDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must not be after end date")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return s.mutate(ctx, id, "failed to add time off", func(m *models.Mechanic) error {
		m.UnavailableDateRanges = append(m.UnavailableDateRanges, r)
		sort.SliceStable(m.UnavailableDateRanges, func(i, j int) bool {
			return m.UnavailableDateRanges[i].StartDate < m.UnavailableDateRanges[j].StartDate
		})
		return nil
	})
}

// RemoveTimeOff deletes the range starting on startDate.
func (s *MechanicService) RemoveTimeOff(ctx context.Context, id, startDate string) (*models.Mechanic, error) {
	return s.mutate(ctx, id, "failed to remove time off", func(m *models.Mechanic) error {
		kept := make([]models.DateRange, 0, len(m.UnavailableDateRanges))
		for _, r := range m.UnavailableDateRanges {
			if r.StartDate != startDate {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(m.UnavailableDateRanges) {
			return appErrors.Clone(appErrors.ErrNotFound, "time off range not found")
		}
		m.UnavailableDateRanges = kept
		return nil
	})
}

// UpdateSpecializations replaces the mechanic's free-text tags.
func (s *MechanicService) UpdateSpecializations(ctx context.Context, id string, req UpdateSpecializationsRequest) (*models.Mechanic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid specializations")
	}
	tags := normaliseTags(req.Specializations)
	return s.mutate(ctx, id, "failed to update specializations", func(m *models.Mechanic) error {
		m.Specializations = tags
		return nil
	})
}

func (s *MechanicService) mutate(ctx context.Context, id, failure string, fn func(m *models.Mechanic) error) (*models.Mechanic, error) {
	var updated models.Mechanic
	err := s.store.Update(ctx, func(db *models.Database) error {
		m := db.FindMechanic(id)
		if m == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "mechanic not found")
		}
		if err := fn(m); err != nil {
			return err
		}
		updated = m.Public()
		return nil
	})
	if err != nil {
		return nil, storeError(err, failure)
	}
	return &updated, nil
}

// normaliseTags trims tags and drops blanks and exact duplicates, keeping order.
func normaliseTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
