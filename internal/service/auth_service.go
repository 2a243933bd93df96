package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/dto"
	"github.com/jirapat-s/ticketline/internal/repository"
	"github.com/jirapat-s/ticketline/pkg/telemetry"
)

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// The admin account lives in config, not in the users table
	AdminUsername     string
	AdminPasswordHash string
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates a new user account
	Register(ctx context.Context, req *dto.RegisterRequest) error
	// Login authenticates a user and issues a signed token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// ValidateToken verifies a token and returns its claims
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
}

// authService implements AuthService
type authService struct {
	userRepo repository.UserRepository
	config   *AuthServiceConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, config *AuthServiceConfig) AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = time.Hour
	}
	return &authService{
		userRepo: userRepo,
		config:   config,
	}
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	span.SetAttributes(attribute.String("username", req.Username))

	// The admin username is reserved
	if req.Username == s.config.AdminUsername {
		span.SetStatus(codes.Error, "user already exists")
		return domain.ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Login authenticates a user and issues a signed token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	span.SetAttributes(attribute.String("username", req.Username))

	role := domain.RoleUser
	var passwordHash string

	if req.Username == s.config.AdminUsername {
		role = domain.RoleAdmin
		passwordHash = s.config.AdminPasswordHash
	} else {
		user, err := s.userRepo.GetByUsername(ctx, req.Username)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				span.SetStatus(codes.Error, "invalid credentials")
				return nil, domain.ErrInvalidCredentials
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		passwordHash = user.PasswordHash
		role = user.Role
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(req.Username, role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("role", string(role)))
	span.SetStatus(codes.Ok, "")

	return &dto.LoginResponse{
		Token:    token,
		Role:     string(role),
		Username: req.Username,
	}, nil
}

// ValidateToken verifies a token and returns its claims
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	_, span := telemetry.StartSpan(ctx, "service.auth.validate_token")
	defer span.End()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			span.SetStatus(codes.Error, "token expired")
			return nil, domain.ErrTokenExpired
		}
		span.SetStatus(codes.Error, "invalid token")
		return nil, domain.ErrInvalidToken
	}

	if !token.Valid {
		span.SetStatus(codes.Error, "invalid token")
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		span.SetStatus(codes.Error, "invalid claims")
		return nil, domain.ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		span.SetStatus(codes.Error, "invalid claims")
		return nil, domain.ErrInvalidToken
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		span.SetStatus(codes.Error, "invalid claims")
		return nil, domain.ErrInvalidToken
	}

	span.SetAttributes(attribute.String("username", sub))
	span.SetStatus(codes.Ok, "")

	return &domain.Claims{
		Username: sub,
		Role:     domain.Role(roleStr),
	}, nil
}

// generateToken signs a token for the given identity. Every token
// carries an expiry; there is no non-expiring variant.
func (s *authService) generateToken(username string, role domain.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.config.TokenTTL).Unix(),
	})

	return token.SignedString([]byte(s.config.JWTSecret))
}
