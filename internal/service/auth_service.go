package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService authenticates admin users, mechanics and customers against the store.
type AuthService struct {
	store     databaseStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// account is the login-relevant view shared by every account kind.
type account struct {
	info   models.UserInfo
	hash   string
	active bool
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(store databaseStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{store: store, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login authenticates an account of the requested role and issues an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	var acct *account
	_ = s.store.Read(func(db *models.Database) error {
		acct = findAccount(db, req.Role, req.Email)
		return nil
	})
	if acct == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.hash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if !acct.active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(acct.info, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("login succeeded", zap.String("user_id", acct.info.ID), zap.String("role", string(acct.info.Role)))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        acct.info,
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// HashPassword hashes a plain password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return string(hash), nil
}

func (s *AuthService) generateAccessToken(user models.UserInfo, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func findAccount(db *models.Database, role models.UserRole, email string) *account {
	email = strings.TrimSpace(email)
	switch role {
	case models.RoleAdmin:
		for _, u := range db.AdminUsers {
			if strings.EqualFold(u.Email, email) {
				return &account{info: models.UserInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: role}, hash: u.PasswordHash, active: u.Active}
			}
		}
	case models.RoleMechanic:
		for _, m := range db.Mechanics {
			if strings.EqualFold(m.Email, email) {
				return &account{info: models.UserInfo{ID: m.ID, Email: m.Email, Name: m.Name, Role: role}, hash: m.PasswordHash, active: m.Status != models.MechanicStatusInactive}
			}
		}
	case models.RoleCustomer:
		for _, c := range db.Customers {
			if strings.EqualFold(c.Email, email) {
				return &account{info: models.UserInfo{ID: c.ID, Email: c.Email, Name: c.Name, Role: role}, hash: c.PasswordHash, active: true}
			}
		}
	}
	return nil
}
