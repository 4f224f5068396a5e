package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/storage"
)

// ImageKind distinguishes photos taken before and after the job.
type ImageKind string

const (
	ImageKindBefore ImageKind = "before"
	ImageKindAfter  ImageKind = "after"
)

var allowedImageExt = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}}

type uploadStorage interface {
	SaveStream(filename string, r io.Reader, limit int64) (int64, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// SignedImage is a stored photo with a time-limited download URL.
type SignedImage struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// BookingImages lists both photo sets of a booking.
type BookingImages struct {
	Before []SignedImage `json:"before"`
	After  []SignedImage `json:"after"`
}

// BookingImageService stores before/after photos for bookings and signs download links.
type BookingImageService struct {
	store     databaseStore
	files     uploadStorage
	signer    *storage.SignedURLSigner
	maxSize   int64
	apiPrefix string
	logger    *zap.Logger
}

// NewBookingImageService constructs the service. maxSize <= 0 defaults to 5 MiB.
func NewBookingImageService(store databaseStore, files uploadStorage, signer *storage.SignedURLSigner, maxSize int64, apiPrefix string, logger *zap.Logger) *BookingImageService {
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingImageService{store: store, files: files, signer: signer, maxSize: maxSize, apiPrefix: apiBase(apiPrefix), logger: logger}
}

// Upload stores a photo and records it on the booking. actor nil means a trusted caller.
func (s *BookingImageService) Upload(ctx context.Context, bookingID string, kind ImageKind, filename string, r io.Reader, actor *models.UserInfo) (*SignedImage, error) {
	if kind != ImageKindBefore && kind != ImageKindAfter {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be before or after")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExt[ext]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only jpg, png or webp images are accepted")
	}

	var booking *models.Booking
	_ = s.store.Read(func(db *models.Database) error {
		if b := db.FindBooking(bookingID); b != nil {
			cp := *b
			booking = &cp
		}
		return nil
	})
	if booking == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}
	if actor != nil && actor.Role != models.RoleAdmin && actor.ID != booking.MechanicID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned mechanic may upload photos")
	}

	relPath := fmt.Sprintf("%s/%s-%s%s", bookingID, kind, uuid.NewString(), ext)
	if _, err := s.files.SaveStream(relPath, r, s.maxSize); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("image exceeds %d bytes", s.maxSize))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store image")
	}

	err := s.store.Update(ctx, func(db *models.Database) error {
		b := db.FindBooking(bookingID)
		if b == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		if kind == ImageKindBefore {
			b.BeforeImages = append(b.BeforeImages, relPath)
		} else {
			b.AfterImages = append(b.AfterImages, relPath)
		}
		return nil
	})
	if err != nil {
		if delErr := s.files.Delete(relPath); delErr != nil {
			s.logger.Warn("orphaned booking image", zap.String("path", relPath), zap.Error(delErr))
		}
		return nil, storeError(err, "failed to record image")
	}

	s.logger.Info("booking image stored", zap.String("booking_id", bookingID), zap.String("kind", string(kind)))
	return s.sign(bookingID, relPath)
}

// List returns signed URLs for every photo of the booking.
func (s *BookingImageService) List(ctx context.Context, bookingID string) (*BookingImages, error) {
	var booking *models.Booking
	_ = s.store.Read(func(db *models.Database) error {
		if b := db.FindBooking(bookingID); b != nil {
			cp := *b
			booking = &cp
		}
		return nil
	})
	if booking == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}

	out := &BookingImages{Before: []SignedImage{}, After: []SignedImage{}}
	for _, p := range booking.BeforeImages {
		img, err := s.sign(bookingID, p)
		if err != nil {
			return nil, err
		}
		out.Before = append(out.Before, *img)
	}
	for _, p := range booking.AfterImages {
		img, err := s.sign(bookingID, p)
		if err != nil {
			return nil, err
		}
		out.After = append(out.After, *img)
	}
	return out, nil
}

// Open resolves a signed token to the stored file.
func (s *BookingImageService) Open(token string) (*os.File, error) {
	obj, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "image link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid image link")
	}
	f, err := s.files.Open(obj.Path)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "image not found")
	}
	return f, nil
}

func (s *BookingImageService) sign(bookingID, relPath string) (*SignedImage, error) {
	token, expiresAt, err := s.signer.Generate(bookingID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign image url")
	}
	return &SignedImage{Path: relPath, URL: fmt.Sprintf("%s/images/%s", s.apiPrefix, token), ExpiresAt: expiresAt}, nil
}
