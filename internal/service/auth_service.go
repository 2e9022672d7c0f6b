package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/draftlog/internal/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
)

// DefaultTokenTTL 是未配置时 Bearer 凭证的有效期。
const DefaultTokenTTL = 24 * time.Hour

// AuthService issues and verifies opaque bearer tokens.
type AuthService struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewAuthService creates an AuthService with the given token lifetime.
func NewAuthService(gdb *gorm.DB, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{db: gdb, ttl: ttl}
}

// IssueToken verifies the password and mints a fresh bearer token.
func (s *AuthService) IssueToken(username, password string) (string, time.Time, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(s.ttl)
	record := db.APIToken{Token: token, UserID: user.ID, ExpiresAt: expiresAt}
	if err := s.db.Create(&record).Error; err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(token string) (*db.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	var record db.APIToken
	if err := s.db.Preload("User").Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return &record.User, nil
}

// VerifyPassword 供会话登录复用口令校验逻辑。
func (s *AuthService) VerifyPassword(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
