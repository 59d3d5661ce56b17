package service

import (
	"errors"
	"strings"
	"time"

	"github.com/sampleloop/internal/config"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// StoreAuthService 门店鉴权服务（API Key 换取 JWT）
type StoreAuthService struct {
	cfg       *config.Config
	storeRepo repository.StoreRepository
}

// NewStoreAuthService 创建门店鉴权服务
func NewStoreAuthService(cfg *config.Config, storeRepo repository.StoreRepository) *StoreAuthService {
	return &StoreAuthService{
		cfg:       cfg,
		storeRepo: storeRepo,
	}
}

// HashAPIKey 使用 bcrypt 加密 API Key
func (s *StoreAuthService) HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey 校验 API Key
func (s *StoreAuthService) VerifyAPIKey(hashed, apiKey string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(apiKey))
}

// StoreClaims 门店 JWT 声明
type StoreClaims struct {
	StoreID   uint   `json:"store_id"`
	StoreCode string `json:"store_code"`
	jwt.RegisteredClaims
}

// GenerateJWT 为门店签发 JWT Token
func (s *StoreAuthService) GenerateJWT(store *models.Store) (string, time.Time, error) {
	expireHours := 24
	if s.cfg != nil && s.cfg.StoreAPI.ExpireHours > 0 {
		expireHours = s.cfg.StoreAPI.ExpireHours
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)

	claims := StoreClaims{
		StoreID:   store.ID,
		StoreCode: store.Code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.StoreAPI.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析门店 JWT Token
func (s *StoreAuthService) ParseJWT(tokenString string) (*StoreClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &StoreClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.StoreAPI.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*StoreClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的 token")
}

// IssueToken 门店登录：API Key 验证通过后签发 JWT
func (s *StoreAuthService) IssueToken(code, apiKey string) (*models.Store, string, time.Time, error) {
	code = strings.TrimSpace(code)
	if code == "" || apiKey == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	store, err := s.storeRepo.GetByCode(code)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if store == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := s.VerifyAPIKey(store.APIKeyHash, apiKey); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(store)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return store, token, expiresAt, nil
}
