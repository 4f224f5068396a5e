package service

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
)

// Sort orders accepted by RankMechanics.
const (
	SortByRating  = "rating"
	SortByReviews = "reviews"
	SortByName    = "name"
)

// MatchFilters are the user-selected narrowing options for the mechanic roster.
type MatchFilters struct {
	Specialization string
	Search         string
	AvailableNow   bool
	SortBy         string
}

// RankMechanics narrows mechanics to those able to take service on date and orders them.
// It never mutates its inputs. A nil service skips the specialization heuristic.
func RankMechanics(mechanics []models.Mechanic, bookings []models.Booking, service *models.Service, date string, filters MatchFilters, now time.Time) []models.Mechanic {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return []models.Mechanic{}
	}
	checkNow := filters.AvailableNow && now.Format(dateLayout) == date
	busy := busyMechanics(bookings)

	result := make([]models.Mechanic, 0, len(mechanics))
	for _, m := range mechanics {
		if m.Status != models.MechanicStatusActive {
			continue
		}
		if m.UnavailableOn(date) {
			continue
		}
		entry := m.WeeklyAvailability.For(day.Weekday())
		if !entry.IsAvailable {
			continue
		}
		if service != nil && !matchesService(m, *service) {
			continue
		}
		if filters.Specialization != "" && !m.HasSpecialization(filters.Specialization) {
			continue
		}
		if checkNow {
			if _, out := busy[m.ID]; out || !withinWindow(entry, now) {
				continue
			}
		}
		if filters.Search != "" && !m.NameContains(filters.Search) {
			continue
		}
		result = append(result, m)
	}

	sortMechanics(result, filters.SortBy)
	return result
}

// matchesService is the loose tag heuristic: a specialization matches when it contains, case-insensitively,
// any word of the service name longer than two characters or the service category.
func matchesService(m models.Mechanic, service models.Service) bool {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(service.Name)) {
		if utf8.RuneCountInString(w) > 2 {
			words = append(words, w)
		}
	}
	category := strings.ToLower(service.Category)

	for _, tag := range m.Specializations {
		t := strings.ToLower(tag)
		for _, w := range words {
			if strings.Contains(t, w) {
				return true
			}
		}
		if strings.Contains(t, category) {
			return true
		}
	}
	return false
}

func busyMechanics(bookings []models.Booking) map[string]struct{} {
	busy := make(map[string]struct{})
	for _, b := range bookings {
		if b.MechanicID != "" && b.Status.Busy() {
			busy[b.MechanicID] = struct{}{}
		}
	}
	return busy
}

func withinWindow(entry models.DayAvailability, now time.Time) bool {
	start, err := parseClock(entry.StartTime)
	if err != nil {
		return false
	}
	end, err := parseClock(entry.EndTime)
	if err != nil {
		return false
	}
	current := now.Hour()*60 + now.Minute()
	return start <= current && current < end
}

func sortMechanics(items []models.Mechanic, sortBy string) {
	switch sortBy {
	case SortByReviews:
		sort.SliceStable(items, func(i, j int) bool { return items[i].ReviewCount > items[j].ReviewCount })
	case SortByName:
		c := collate.New(language.English, collate.Loose)
		sort.SliceStable(items, func(i, j int) bool { return c.CompareString(items[i].Name, items[j].Name) < 0 })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Rating > items[j].Rating })
	}
}
