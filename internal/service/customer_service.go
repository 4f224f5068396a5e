package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

// RegisterCustomerRequest is the customer sign-up form.
type RegisterCustomerRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Password string `json:"password" validate:"required,min=6"`
}

// CustomerService handles customer accounts and their garage.
type CustomerService struct {
	store     databaseStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCustomerService creates a new customer service.
func NewCustomerService(store databaseStore, validate *validator.Validate, logger *zap.Logger) *CustomerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{store: store, validator: validate, logger: logger, now: time.Now}
}

// Register creates a customer account.
func (s *CustomerService) Register(ctx context.Context, req RegisterCustomerRequest) (*models.Customer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid customer payload")
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	customer := models.Customer{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Vehicles:     []models.Vehicle{},
		CreatedAt:    s.now().UTC(),
	}
	err = s.store.Update(ctx, func(db *models.Database) error {
		if db.EmailTaken(customer.Email) {
			return appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		db.Customers = append(db.Customers, customer)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to register customer")
	}

	s.logger.Info("customer registered", zap.String("customer_id", customer.ID))
	public := customer.Public()
	return &public, nil
}

// Get returns a customer by id.
func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	var found *models.Customer
	_ = s.store.Read(func(db *models.Database) error {
		if c := db.FindCustomer(id); c != nil {
			public := c.Public()
			found = &public
		}
		return nil
	})
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "customer not found")
	}
	return found, nil
}

// AddVehicle registers a vehicle in the customer's garage.
func (s *CustomerService) AddVehicle(ctx context.Context, customerID string, vehicle models.Vehicle) (*models.Vehicle, error) {
	if err := s.validator.Struct(vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}
	vehicle.ID = uuid.NewString()
	vehicle.Make = strings.TrimSpace(vehicle.Make)
	vehicle.Model = strings.TrimSpace(vehicle.Model)
	vehicle.PlateNumber = strings.ToUpper(strings.TrimSpace(vehicle.PlateNumber))

	err := s.store.Update(ctx, func(db *models.Database) error {
		c := db.FindCustomer(customerID)
		if c == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		c.Vehicles = append(c.Vehicles, vehicle)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to add vehicle")
	}
	return &vehicle, nil
}

// RemoveVehicle deletes a vehicle. Existing bookings keep their copy of it.
func (s *CustomerService) RemoveVehicle(ctx context.Context, customerID, vehicleID string) error {
	err := s.store.Update(ctx, func(db *models.Database) error {
		c := db.FindCustomer(customerID)
		if c == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		for i, v := range c.Vehicles {
			if v.ID == vehicleID {
				c.Vehicles = append(c.Vehicles[:i], c.Vehicles[i+1:]...)
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
	})
	return storeError(err, "failed to remove vehicle")
}
