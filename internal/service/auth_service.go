package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")
)

// Claims extends JWT standard claims with the faculty identity.
type Claims struct {
	jwt.RegisteredClaims
	FacultyID int    `json:"faculty_id"`
	Email     string `json:"email"`
}

// FacultyStore is the faculty data access used by AuthService.
type FacultyStore interface {
	GetByID(ctx context.Context, id int) (*model.Faculty, error)
	GetByEmail(ctx context.Context, email string) (*model.Faculty, error)
	Create(ctx context.Context, f *model.Faculty) error
}

// AuthService handles faculty registration, login, JWT and session management.
type AuthService struct {
	cfg       *config.Config
	rdb       *redis.Client
	faculties FacultyStore
	log       zerolog.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, faculties FacultyStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:       cfg,
		rdb:       rdb,
		faculties: faculties,
		log:       log.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates a faculty account and signs them in.
// Returns repository.ErrDuplicateEmail when the email is taken.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	f := &model.Faculty{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	if err := s.faculties.Create(ctx, f); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(ctx, f)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("faculty_id", f.ID).Msg("Faculty registered")
	return &model.AuthResponse{Token: token, Faculty: *f}, nil
}

// Login verifies credentials and issues a new token. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	f, err := s.faculties.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.CheckPassword(f.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(ctx, f)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, Faculty: *f}, nil
}

// Me returns the profile of the authenticated faculty.
func (s *AuthService) Me(ctx context.Context, facultyID int) (*model.Faculty, error) {
	return s.faculties.GetByID(ctx, facultyID)
}

// IssueToken signs a JWT for the faculty and registers its session in Redis
// with the same expiry.
func (s *AuthService) IssueToken(ctx context.Context, f *model.Faculty) (string, error) {
	jti := uuid.New().String()

	signed, err := s.signToken(f, jti)
	if err != nil {
		return "", err
	}

	sessionKey := config.CacheKey.FacultySessionKey(f.ID, jti)
	if err := s.rdb.Set(ctx, sessionKey, "1", s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return signed, nil
}

func (s *AuthService) signToken(f *model.Faculty, jti string) (string, error) {
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(f.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		FacultyID: f.ID,
		Email:     f.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.FacultyID == 0 || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateSession checks that the token's session has not been revoked.
func (s *AuthService) ValidateSession(ctx context.Context, facultyID int, jti string) error {
	n, err := s.rdb.Exists(ctx, config.CacheKey.FacultySessionKey(facultyID, jti)).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if n == 0 {
		return ErrSessionRevoked
	}
	return nil
}

// Logout revokes one session.
func (s *AuthService) Logout(ctx context.Context, facultyID int, jti string) error {
	return s.rdb.Del(ctx, config.CacheKey.FacultySessionKey(facultyID, jti)).Err()
}
