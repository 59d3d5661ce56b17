package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sampleloop/internal/config"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStoreAuthServiceTest(t *testing.T) (*StoreAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:store_auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Store{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.StoreAPI.JWTSecret = "store-auth-test-secret"
	cfg.StoreAPI.ExpireHours = 2
	return NewStoreAuthService(cfg, repository.NewStoreRepository(db)), db
}

func createAuthTestStore(t *testing.T, svc *StoreAuthService, db *gorm.DB, code, apiKey string) *models.Store {
	t.Helper()
	hash, err := svc.HashAPIKey(apiKey)
	if err != nil {
		t.Fatalf("hash api key failed: %v", err)
	}
	store := models.Store{Name: "Downtown Wellness", Code: code, APIKeyHash: hash}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	return &store
}

func TestStoreAuthIssueToken(t *testing.T) {
	svc, db := setupStoreAuthServiceTest(t)
	created := createAuthTestStore(t, svc, db, "S001", "api-key-s001")

	store, token, expiresAt, err := svc.IssueToken("S001", "api-key-s001")
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if store.ID != created.ID {
		t.Fatalf("store id want %d got %d", created.ID, store.ID)
	}
	if token == "" {
		t.Fatalf("token should not be empty")
	}
	if !expiresAt.After(time.Now().Add(time.Hour)) {
		t.Fatalf("expiry should honor configured hours, got %v", expiresAt)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.StoreID != created.ID || claims.StoreCode != "S001" {
		t.Fatalf("claims want %d/S001 got %d/%s", created.ID, claims.StoreID, claims.StoreCode)
	}
}

func TestStoreAuthIssueTokenRejectsBadCredentials(t *testing.T) {
	svc, db := setupStoreAuthServiceTest(t)
	createAuthTestStore(t, svc, db, "S001", "api-key-s001")

	if _, _, _, err := svc.IssueToken("S001", "wrong-key"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong key want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.IssueToken("S999", "api-key-s001"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown store want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.IssueToken("", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("blank credentials want ErrInvalidCredentials got %v", err)
	}
}

func TestStoreAuthParseRejectsForeignToken(t *testing.T) {
	svc, _ := setupStoreAuthServiceTest(t)

	other := &config.Config{}
	other.StoreAPI.JWTSecret = "another-secret"
	other.StoreAPI.ExpireHours = 1
	otherSvc := NewStoreAuthService(other, nil)
	token, _, err := otherSvc.GenerateJWT(&models.Store{ID: 3, Code: "S003"})
	if err != nil {
		t.Fatalf("generate jwt failed: %v", err)
	}

	if _, err := svc.ParseJWT(token); err == nil {
		t.Fatalf("token signed with another secret should fail to parse")
	}
}
