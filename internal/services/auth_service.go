package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hardwarestore/internal/caching"
	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/repositories"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

// AuthService handles password login and the HS256 tokens it issues.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, username, password string, role models.Role) (*models.User, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	Logout(ctx context.Context, claims *TokenClaims) error
	Me(ctx context.Context, userID int64) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// AuthConfig carries token and login throttling settings.
type AuthConfig struct {
	Secret      string
	TTL         time.Duration
	Issuer      string
	LoginLimit  int
	LoginWindow time.Duration
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	store  database.Store
	cache  caching.CacheService
	config AuthConfig
	now    Clock
	log    *logger.Logger
}

func NewAuthService(store database.Store, cache caching.CacheService, cfg AuthConfig, log *logger.Logger) AuthService {
	return newAuthService(store, cache, cfg, time.Now, log)
}

func newAuthService(store database.Store, cache caching.CacheService, cfg AuthConfig, now Clock, log *logger.Logger) *authService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.LoginLimit <= 0 {
		cfg.LoginLimit = 5
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = time.Minute
	}
	return &authService{store: store, cache: cache, config: cfg, now: now, log: log}
}

func loginKey(username string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(username))
}

func invalidCredentials() error {
	return common.NewError(common.CodeUnauthorized, "invalid username or password")
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ValidationError("credentials", "username and password are required")
	}

	limited, err := s.cache.IsRateLimited(ctx, loginKey(username), s.config.LoginLimit, s.config.LoginWindow)
	if err != nil {
		// counters unavailable; do not lock everyone out
		s.log.Warn(s.log.WithField(ctx, "error", err.Error()), "login rate limit check failed")
	} else if limited {
		return nil, common.NewError(common.CodeRateLimit, "too many login attempts, try again later")
	}

	user, err := repositories.NewUserRepo(s.store).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info(s.log.WithField(ctx, "username", username), "login rejected")
		return nil, invalidCredentials()
	}

	if err := s.cache.ResetRateLimit(ctx, loginKey(username)); err != nil {
		s.log.Warn(ctx, "failed to reset login attempts")
	}

	token, expires, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	s.log.Info(s.log.WithUserID(ctx, user.ID), "user logged in")
	return &models.LoginResponse{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *authService) issueToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.config.TTL)
	claims := TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, expires, nil
}

func (s *authService) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return nil, common.ValidationError("username", "username must be at least 3 characters")
	}
	if len(password) < 6 {
		return nil, common.ValidationError("password", "password must be at least 6 characters")
	}
	if role == "" {
		role = models.RoleStaff
	}
	if !role.Valid() {
		return nil, common.ValidationError("role", "role must be admin or staff")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	repo := repositories.NewUserRepo(s.store)
	user := &models.User{Username: username, PasswordHash: string(hash), Role: role}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info(s.log.WithField(ctx, "username", username), "user registered")
	return repo.GetByID(ctx, user.ID)
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, common.NewError(common.CodeUnauthorized, "invalid or expired token")
	}

	revoked, err := s.cache.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		s.log.Warn(s.log.WithField(ctx, "error", err.Error()), "token revocation check failed")
	} else if revoked {
		return nil, common.NewError(common.CodeUnauthorized, "token has been revoked")
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, claims *TokenClaims) error {
	if claims == nil || claims.ID == "" {
		return common.NewError(common.CodeUnauthorized, "missing token")
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	return s.cache.RevokeToken(ctx, claims.ID, ttl)
}

func (s *authService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return repositories.NewUserRepo(s.store).GetByID(ctx, userID)
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < 6 {
		return common.ValidationError("new_password", "password must be at least 6 characters")
	}
	repo := repositories.NewUserRepo(s.store)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return common.NewError(common.CodeUnauthorized, "current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return repo.UpdatePassword(ctx, userID, string(hash))
}

func (s *authService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return repositories.NewUserRepo(s.store).List(ctx)
}
