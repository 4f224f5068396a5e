package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

// ServiceRequest captures fields for creating or updating a bookable service.
type ServiceRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Category    string  `json:"category" validate:"required,max=60"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"min=0"`
	Duration    string  `json:"duration" validate:"max=30"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
}

// PartRequest captures fields for creating or updating an auto part.
type PartRequest struct {
	Name          string   `json:"name" validate:"required,max=120"`
	Category      string   `json:"category" validate:"required,max=60"`
	Brand         string   `json:"brand" validate:"max=60"`
	Description   string   `json:"description" validate:"max=2000"`
	Price         float64  `json:"price" validate:"gt=0"`
	Stock         int      `json:"stock" validate:"min=0"`
	ImageURL      string   `json:"imageUrl" validate:"omitempty,url"`
	Compatibility []string `json:"compatibility" validate:"dive,required"`
}

// CatalogFilter narrows service and part listings.
type CatalogFilter struct {
	Category string `form:"category"`
	Search   string `form:"search"`
}

// CatalogService handles services and parts.
type CatalogService struct {
	store     databaseStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store databaseStore, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{store: store, validator: validate, logger: logger}
}

// ListServices returns services in catalogue order.
func (s *CatalogService) ListServices(ctx context.Context, filter CatalogFilter) []models.Service {
	items := []models.Service{}
	_ = s.store.Read(func(db *models.Database) error {
		for _, svc := range db.Services {
			if catalogMatch(filter, svc.Category, svc.Name) {
				items = append(items, svc)
			}
		}
		return nil
	})
	return items
}

// GetService returns a service by id.
func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	var found *models.Service
	_ = s.store.Read(func(db *models.Database) error {
		if svc := db.FindService(id); svc != nil {
			cp := *svc
			found = &cp
		}
		return nil
	})
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
	}
	return found, nil
}

// CreateService adds a service. A zero price marks it as quote-only.
func (s *CatalogService) CreateService(ctx context.Context, req ServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	svc := models.Service{ID: uuid.NewString()}
	applyServiceRequest(&svc, req)

	err := s.store.Update(ctx, func(db *models.Database) error {
		db.Services = append(db.Services, svc)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to create service")
	}
	return &svc, nil
}

// UpdateService replaces the editable fields of a service.
func (s *CatalogService) UpdateService(ctx context.Context, id string, req ServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	var updated models.Service
	err := s.store.Update(ctx, func(db *models.Database) error {
		svc := db.FindService(id)
		if svc == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		applyServiceRequest(svc, req)
		updated = *svc
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to update service")
	}
	return &updated, nil
}

// ListParts returns parts in catalogue order.
func (s *CatalogService) ListParts(ctx context.Context, filter CatalogFilter) []models.Part {
	items := []models.Part{}
	_ = s.store.Read(func(db *models.Database) error {
		for _, p := range db.Parts {
			if catalogMatch(filter, p.Category, p.Name) {
				items = append(items, p)
			}
		}
		return nil
	})
	return items
}

// GetPart returns a part by id.
func (s *CatalogService) GetPart(ctx context.Context, id string) (*models.Part, error) {
	var found *models.Part
	_ = s.store.Read(func(db *models.Database) error {
		if p := db.FindPart(id); p != nil {
			cp := *p
			found = &cp
		}
		return nil
	})
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "part not found")
	}
	return found, nil
}

// CreatePart adds a part to the shop.
func (s *CatalogService) CreatePart(ctx context.Context, req PartRequest) (*models.Part, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid part payload")
	}
	part := models.Part{ID: uuid.NewString()}
	applyPartRequest(&part, req)

	err := s.store.Update(ctx, func(db *models.Database) error {
		db.Parts = append(db.Parts, part)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to create part")
	}
	return &part, nil
}

// UpdatePart replaces the editable fields of a part, stock included.
func (s *CatalogService) UpdatePart(ctx context.Context, id string, req PartRequest) (*models.Part, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid part payload")
	}
	var updated models.Part
	err := s.store.Update(ctx, func(db *models.Database) error {
		part := db.FindPart(id)
		if part == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "part not found")
		}
		applyPartRequest(part, req)
		updated = *part
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to update part")
	}
	return &updated, nil
}

func applyServiceRequest(svc *models.Service, req ServiceRequest) {
	svc.Name = strings.TrimSpace(req.Name)
	svc.Category = strings.TrimSpace(req.Category)
	svc.Description = strings.TrimSpace(req.Description)
	svc.Price = req.Price
	svc.Duration = strings.TrimSpace(req.Duration)
	svc.ImageURL = req.ImageURL
}

func applyPartRequest(part *models.Part, req PartRequest) {
	part.Name = strings.TrimSpace(req.Name)
	part.Category = strings.TrimSpace(req.Category)
	part.Brand = strings.TrimSpace(req.Brand)
	part.Description = strings.TrimSpace(req.Description)
	part.Price = req.Price
	part.Stock = req.Stock
	part.ImageURL = req.ImageURL
	part.Compatibility = req.Compatibility
}

func catalogMatch(filter CatalogFilter, category, name string) bool {
	if filter.Category != "" && !strings.EqualFold(filter.Category, category) {
		return false
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(filter.Search)) {
		return false
	}
	return true
}
