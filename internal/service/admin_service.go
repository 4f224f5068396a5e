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

// CreateRoleRequest defines a new admin role.
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,max=60"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

// CreateAdminUserRequest adds a back-office account.
type CreateAdminUserRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   string `json:"roleId" validate:"required"`
}

// CreateTaskRequest adds a back-office task.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

// AdminService handles back-office configuration: roles, staff, settings, content and tasks.
type AdminService struct {
	store     databaseStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdminService creates a new admin service.
func NewAdminService(store databaseStore, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{store: store, validator: validate, logger: logger, now: time.Now}
}

// ListRoles returns every role.
func (s *AdminService) ListRoles(ctx context.Context) []models.Role {
	var roles []models.Role
	_ = s.store.Read(func(db *models.Database) error {
		roles = append([]models.Role{}, db.Roles...)
		return nil
	})
	return roles
}

// CreateRole adds a role with a unique name.
func (s *AdminService) CreateRole(ctx context.Context, req CreateRoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}
	role := models.Role{ID: uuid.NewString(), Name: strings.TrimSpace(req.Name), Permissions: normaliseTags(req.Permissions)}

	err := s.store.Update(ctx, func(db *models.Database) error {
		for _, r := range db.Roles {
			if strings.EqualFold(r.Name, role.Name) {
				return appErrors.Clone(appErrors.ErrConflict, "role name already exists")
			}
		}
		db.Roles = append(db.Roles, role)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to create role")
	}
	return &role, nil
}

// DeleteRole removes a role that no admin user holds.
func (s *AdminService) DeleteRole(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(db *models.Database) error {
		idx := -1
		for i, r := range db.Roles {
			if r.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		for _, u := range db.AdminUsers {
			if u.RoleID == id {
				return appErrors.Clone(appErrors.ErrConflict, "role is assigned to admin users")
			}
		}
		db.Roles = append(db.Roles[:idx], db.Roles[idx+1:]...)
		return nil
	})
	if err != nil {
		return storeError(err, "failed to delete role")
	}
	s.logger.Info("role deleted", zap.String("role_id", id))
	return nil
}

// ListAdminUsers returns back-office accounts without password hashes.
func (s *AdminService) ListAdminUsers(ctx context.Context) []models.AdminUser {
	users := []models.AdminUser{}
	_ = s.store.Read(func(db *models.Database) error {
		for _, u := range db.AdminUsers {
			users = append(users, u.Public())
		}
		return nil
	})
	return users
}

// CreateAdminUser adds an active back-office account bound to an existing role.
func (s *AdminService) CreateAdminUser(ctx context.Context, req CreateAdminUserRequest) (*models.AdminUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin user payload")
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.AdminUser{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		RoleID:       req.RoleID,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	}

	err = s.store.Update(ctx, func(db *models.Database) error {
		if db.FindRole(req.RoleID) == nil {
			return appErrors.Clone(appErrors.ErrValidation, "role does not exist")
		}
		if db.EmailTaken(user.Email) {
			return appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		db.AdminUsers = append(db.AdminUsers, user)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to create admin user")
	}
	public := user.Public()
	return &public, nil
}

// Settings returns the current settings record.
func (s *AdminService) Settings(ctx context.Context) models.Settings {
	var settings models.Settings
	_ = s.store.Read(func(db *models.Database) error {
		settings = db.Settings
		return nil
	})
	return settings
}

// UpdateSettings validates and replaces the settings record.
func (s *AdminService) UpdateSettings(ctx context.Context, settings models.Settings) (*models.Settings, error) {
	if err := s.validator.Struct(settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings")
	}
	start, errStart := parseClock(settings.BusinessHours.Start)
	end, errEnd := parseClock(settings.BusinessHours.End)
	if errStart != nil || errEnd != nil || start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "business hours must be HH:MM with start before end")
	}

	err := s.store.Update(ctx, func(db *models.Database) error {
		db.Settings = settings
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to update settings")
	}
	s.logger.Info("settings updated", zap.Int("slot_duration", settings.BookingSlotDuration))
	return &settings, nil
}

// Banners returns the promotional banners.
func (s *AdminService) Banners(ctx context.Context, activeOnly bool) []models.Banner {
	banners := []models.Banner{}
	_ = s.store.Read(func(db *models.Database) error {
		for _, b := range db.Banners {
			if !activeOnly || b.Active {
				banners = append(banners, b)
			}
		}
		return nil
	})
	return banners
}

// ReplaceBanners swaps the whole banner list. Missing ids are generated.
func (s *AdminService) ReplaceBanners(ctx context.Context, banners []models.Banner) ([]models.Banner, error) {
	next := make([]models.Banner, len(banners))
	for i, b := range banners {
		if err := s.validator.Struct(b); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid banners")
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		next[i] = b
	}
	err := s.store.Update(ctx, func(db *models.Database) error {
		db.Banners = next
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to save banners")
	}
	return next, nil
}

// FAQs returns the help-centre entries.
func (s *AdminService) FAQs(ctx context.Context) []models.FAQ {
	var faqs []models.FAQ
	_ = s.store.Read(func(db *models.Database) error {
		faqs = append([]models.FAQ{}, db.FAQs...)
		return nil
	})
	return faqs
}

// ReplaceFAQs swaps the whole FAQ list. Missing ids are generated.
func (s *AdminService) ReplaceFAQs(ctx context.Context, faqs []models.FAQ) ([]models.FAQ, error) {
	next := make([]models.FAQ, len(faqs))
	for i, f := range faqs {
		if err := s.validator.Struct(f); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faqs")
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		next[i] = f
	}
	err := s.store.Update(ctx, func(db *models.Database) error {
		db.FAQs = next
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to save faqs")
	}
	return next, nil
}

// ListTasks returns tasks, pending ones first.
func (s *AdminService) ListTasks(ctx context.Context) []models.Task {
	pending := []models.Task{}
	var done []models.Task
	_ = s.store.Read(func(db *models.Database) error {
		for _, t := range db.Tasks {
			if t.Status == models.TaskStatusCompleted {
				done = append(done, t)
			} else {
				pending = append(pending, t)
			}
		}
		return nil
	})
	return append(pending, done...)
}

// CreateTask adds a pending task.
func (s *AdminService) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Status:      models.TaskStatusPending,
		CreatedAt:   s.now().UTC(),
	}
	err := s.store.Update(ctx, func(db *models.Database) error {
		db.Tasks = append(db.Tasks, task)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to create task")
	}
	return &task, nil
}

// CompleteTask marks a task done. Completing it twice is a no-op.
func (s *AdminService) CompleteTask(ctx context.Context, id string) (*models.Task, error) {
	var updated models.Task
	err := s.store.Update(ctx, func(db *models.Database) error {
		t := db.FindTask(id)
		if t == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		t.Status = models.TaskStatusCompleted
		updated = *t
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to complete task")
	}
	return &updated, nil
}
