package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
)

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL          time.Duration
	LowStockThreshold int
}

// DashboardSummary is the admin landing page payload.
type DashboardSummary struct {
	Version          int64          `json:"version"`
	Date             string         `json:"date"`
	BookingsByStatus map[string]int `json:"bookingsByStatus"`
	BookingsToday    int            `json:"bookingsToday"`
	Unassigned       int            `json:"unassignedBookings"`
	ActiveMechanics  int            `json:"activeMechanics"`
	PendingMechanics int            `json:"pendingMechanics"`
	Customers        int            `json:"customers"`
	OrderRevenue     float64        `json:"orderRevenue"`
	OpenTasks        int            `json:"openTasks"`
	LowStockParts    []models.Part  `json:"lowStockParts"`
}

// DashboardService composes the admin summary from the current snapshot.
type DashboardService struct {
	store    databaseStore
	cache    *CacheService
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(store databaseStore, cache *CacheService, location *time.Location, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &DashboardService{store: store, cache: cache, logger: logger, location: location, now: time.Now, cfg: cfg}
}

// Admin returns the summary and whether it came from cache.
func (s *DashboardService) Admin(ctx context.Context) (*DashboardSummary, bool) {
	today := s.now().In(s.location).Format(dateLayout)
	cacheKey := fmt.Sprintf("dashboard:v%d:%s", s.store.Version(), today)
	if s.cache.Enabled() {
		var cached DashboardSummary
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, true
		}
	}

	var summary *DashboardSummary
	_ = s.store.Read(func(db *models.Database) error {
		summary = s.compose(db, today)
		return nil
	})
	summary.Version = s.store.Version()

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return summary, false
}

func (s *DashboardService) compose(db *models.Database, today string) *DashboardSummary {
	summary := &DashboardSummary{
		Date:             today,
		BookingsByStatus: make(map[string]int),
		LowStockParts:    []models.Part{},
		Customers:        len(db.Customers),
	}

	for _, b := range db.Bookings {
		summary.BookingsByStatus[string(b.Status)]++
		if b.Date == today {
			summary.BookingsToday++
		}
		if b.MechanicID == "" && !b.Status.Terminal() {
			summary.Unassigned++
		}
	}
	for _, m := range db.Mechanics {
		switch m.Status {
		case models.MechanicStatusActive:
			summary.ActiveMechanics++
		case models.MechanicStatusPending:
			summary.PendingMechanics++
		}
	}
	revenue := 0.0
	for _, o := range db.Orders {
		if o.Status != models.OrderStatusCancelled {
			revenue += o.Total
		}
	}
	summary.OrderRevenue = math.Round(revenue*100) / 100
	for _, t := range db.Tasks {
		if t.Status != models.TaskStatusCompleted {
			summary.OpenTasks++
		}
	}
	for _, p := range db.Parts {
		if p.Stock <= s.cfg.LowStockThreshold {
			summary.LowStockParts = append(summary.LowStockParts, p)
		}
	}
	sort.SliceStable(summary.LowStockParts, func(i, j int) bool {
		return summary.LowStockParts[i].Stock < summary.LowStockParts[j].Stock
	})
	return summary
}
