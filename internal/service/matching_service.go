package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

const availabilityCachePrefix = "availability:"

// AvailabilityQuery captures the customer's search for a mechanic.
type AvailabilityQuery struct {
	ServiceID      string `form:"serviceId" json:"serviceId" validate:"required"`
	Date           string `form:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Specialization string `form:"specialization" json:"specialization"`
	Search         string `form:"search" json:"search"`
	AvailableNow   bool   `form:"availableNow" json:"availableNow"`
	SortBy         string `form:"sortBy" json:"sortBy" validate:"omitempty,oneof=rating reviews name"`
}

// MechanicAvailability is one ranked candidate with its slots for the day.
type MechanicAvailability struct {
	Mechanic  models.Mechanic   `json:"mechanic"`
	Slots     []models.TimeSlot `json:"slots"`
	OpenSlots int               `json:"openSlots"`
}

// AvailabilityResult is the ranked candidate list for a query.
type AvailabilityResult struct {
	ServiceID string                 `json:"serviceId"`
	Date      string                 `json:"date"`
	Version   int64                  `json:"version"`
	Mechanics []MechanicAvailability `json:"mechanics"`
}

// MatchingService answers availability searches against the current store snapshot.
type MatchingService struct {
	store        databaseStore
	availability *AvailabilityService
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
	location     *time.Location
	now          func() time.Time
}

// NewMatchingService constructs the matching service. cache may be nil.
func NewMatchingService(store databaseStore, availability *AvailabilityService, cache *CacheService, validate *validator.Validate, location *time.Location, logger *zap.Logger) *MatchingService {
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
	return &MatchingService{
		store:        store,
		availability: availability,
		cache:        cache,
		validator:    validate,
		logger:       logger,
		location:     location,
		now:          time.Now,
	}
}

// FindAvailable ranks mechanics for the query and keeps only those with at least one open slot.
func (s *MatchingService) FindAvailable(ctx context.Context, query AvailabilityQuery) (*AvailabilityResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}

	version := s.store.Version()
	cacheKey := ""
	if s.cache.Enabled() && !query.AvailableNow {
		cacheKey = availabilityCacheKey(version, query)
		var cached AvailabilityResult
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	var result *AvailabilityResult
	err := s.store.Read(func(db *models.Database) error {
		service := db.FindService(query.ServiceID)
		if service == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}

		ranked := RankMechanics(db.Mechanics, db.Bookings, service, query.Date, MatchFilters{
			Specialization: query.Specialization,
			Search:         query.Search,
			AvailableNow:   query.AvailableNow,
			SortBy:         query.SortBy,
		}, s.now().In(s.location))

		result = &AvailabilityResult{
			ServiceID: query.ServiceID,
			Date:      query.Date,
			Version:   version,
			Mechanics: make([]MechanicAvailability, 0, len(ranked)),
		}
		for _, m := range ranked {
			slots := s.availability.DaySlots(m, db.Settings, db.Bookings, query.Date)
			open := 0
			for _, slot := range slots {
				if !slot.Booked {
					open++
				}
			}
			if open == 0 {
				continue
			}
			result.Mechanics = append(result.Mechanics, MechanicAvailability{Mechanic: m.Public(), Slots: slots, OpenSlots: open})
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to read availability")
	}

	if cacheKey != "" {
		_ = s.cache.Set(ctx, cacheKey, result, 0)
	}
	return result, nil
}

// MechanicSlots returns the generated slots for one mechanic with booked ones flagged.
func (s *MatchingService) MechanicSlots(ctx context.Context, mechanicID, date string) ([]models.TimeSlot, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	var slots []models.TimeSlot
	err := s.store.Read(func(db *models.Database) error {
		mechanic := db.FindMechanic(mechanicID)
		if mechanic == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "mechanic not found")
		}
		slots = s.availability.DaySlots(*mechanic, db.Settings, db.Bookings, date)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to read mechanic slots")
	}
	return slots, nil
}

// InvalidateCache drops cached availability, called after every store change.
func (s *MatchingService) InvalidateCache(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, availabilityCachePrefix+"*"); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}

func availabilityCacheKey(version int64, q AvailabilityQuery) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s", q.ServiceID, q.Date, q.Specialization, q.Search, q.SortBy)
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%sv%d:%s", availabilityCachePrefix, version, hex.EncodeToString(sum[:8]))
}
