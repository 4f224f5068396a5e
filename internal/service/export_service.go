package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/export"
	"github.com/sasetin42/RidersBUD-sub003/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string       `json:"-"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	Format       ExportFormat `json:"format"`
	Rows         int          `json:"rows"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

// ExportService renders booking reports and persists them for signed download.
type ExportService struct {
	store   databaseStore
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(store databaseStore, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		store:   store,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ExportBookings renders bookings matching filter and stores the file. Pagination fields are ignored.
func (s *ExportService) ExportBookings(ctx context.Context, format ExportFormat, filter models.BookingFilter) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}

	var dataset export.Dataset
	_ = s.store.Read(func(db *models.Database) error {
		dataset = bookingDataset(db.Bookings, filter)
		return nil
	})

	var (
		payload []byte
		err     error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, bookingReportTitle(filter))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("bookings_%s.%s", s.now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate("export", relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}

	s.logger.Info("bookings exported", zap.String("path", relPath), zap.Int("rows", len(dataset.Rows)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", apiBase(s.cfg.APIPrefix), token),
		Format:       format,
		Rows:         len(dataset.Rows),
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and returns the stored file with its content type.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	obj, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	f, err := s.storage.Open(obj.Path)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	contentType := "text/csv; charset=utf-8"
	if strings.HasSuffix(obj.Path, ".pdf") {
		contentType = "application/pdf"
	}
	return f, contentType, nil
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func bookingDataset(bookings []models.Booking, filter models.BookingFilter) export.Dataset {
	headers := []string{"Booking ID", "Date", "Time", "Customer", "Service", "Vehicle", "Mechanic", "Status", "Price"}
	rows := make([]map[string]string, 0, len(bookings))
	for _, b := range bookings {
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
		price := "Quote"
		if b.ServicePrice > 0 {
			price = fmt.Sprintf("%.2f", b.ServicePrice)
		}
		mechanic := b.MechanicName
		if mechanic == "" {
			mechanic = "Unassigned"
		}
		rows = append(rows, map[string]string{
			"Booking ID": b.ID,
			"Date":       b.Date,
			"Time":       b.Time,
			"Customer":   b.CustomerName,
			"Service":    b.ServiceName,
			"Vehicle":    strings.TrimSpace(b.Vehicle.Make + " " + b.Vehicle.Model),
			"Mechanic":   mechanic,
			"Status":     string(b.Status),
			"Price":      price,
		})
	}
	return export.Dataset{
		Headers: headers,
		Rows:    rows,
		Widths:  []float64{2.2, 1.2, 1, 1.6, 1.6, 1.6, 1.6, 1.3, 1},
	}
}

func bookingReportTitle(filter models.BookingFilter) string {
	if filter.Date != "" {
		return "Bookings " + filter.Date
	}
	return "Bookings"
}

func apiBase(prefix string) string {
	base := strings.TrimRight(prefix, "/")
	if base == "" {
		base = "/api/v1"
	}
	return base
}
