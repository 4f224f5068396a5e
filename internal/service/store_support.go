package service

import (
	"context"
	"errors"
	"time"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

const dateLayout = "2006-01-02"

// databaseStore is the subset of store.Store the services depend on.
type databaseStore interface {
	Snapshot() *models.Database
	Read(fn func(db *models.Database) error) error
	Update(ctx context.Context, fn func(db *models.Database) error) error
	Version() int64
}

// storeError keeps domain errors raised inside a mutation and maps anything else to a storage failure.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, message)
}

func normalisePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// pageBounds returns the slice bounds for page. Pages past the end yield an empty range.
func pageBounds(total, page, size int) (int, int) {
	if page < 1 || size <= 0 || page-1 > total/size {
		return total, total
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateLayout, raw, loc)
}
