package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/repository"
	"github.com/anchorfit/storefront/pkg/errors"
)

// Claims carried by the bearer token
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type authService struct {
	repos     *repository.Repositories
	jwtSecret []byte
	jwtTTL    time.Duration
	logger    *zap.Logger
	compare   func(hash, password []byte) error
}

// dummyHash is compared against when no account matches the email, keeping
// the unknown-email path as slow as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-unknown-account"), bcrypt.DefaultCost)

// NewAuthService creates a new auth service
func NewAuthService(repos *repository.Repositories, jwtSecret []byte, jwtTTL time.Duration, logger *zap.Logger) *authService {
	return &authService{
		repos:     repos,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

var errInvalidCreds = &errors.ErrUnauthorized{Message: "Invalid email or password"}

// SignIn checks credentials and issues a bearer token
func (s *authService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.repos.User.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			_ = s.compare(dummyHash, []byte(password))
			return "", nil, errInvalidCreds
		}
		return "", nil, err
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errInvalidCreds
	}
	if !user.EmailVerified {
		return "", nil, &errors.ErrUnauthorized{Message: "Please verify your email before signing in"}
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// AdminSignIn is SignIn restricted to administrators
func (s *authService) AdminSignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	token, user, err := s.SignIn(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if !user.IsAdmin {
		s.logger.Warn("Non-admin attempted admin login", zap.String("user_id", user.ID.String()))
		return "", nil, &errors.ErrForbidden{Message: "Admin access required"}
	}
	return token, user, nil
}

// ParseToken validates a bearer token and returns its claims
func (s *authService) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, stderrors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, &errors.ErrUnauthorized{Message: "unauthorized"}
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, &errors.ErrUnauthorized{Message: "unauthorized"}
	}
	return claims, nil
}

// CurrentUser loads the user and, if present, the profile behind a token subject
func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.Profile, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.repos.Profile.GetByEmail(ctx, user.Email)
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			return user, nil, nil
		}
		return nil, nil, err
	}
	return user, profile, nil
}

// HashPassword returns a bcrypt hash for storing a new credential
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", &errors.ErrValidation{Message: "password must be at least 8 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) issue(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
