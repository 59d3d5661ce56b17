package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCreditLedgerTest(t *testing.T) (*CreditLedgerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:credit_ledger_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Store{},
		&models.Brand{},
		&models.BrandPartnership{},
		&models.CreditTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCreditLedgerService(repository.NewPartnershipRepository(db)), db
}

func createTestPartnership(t *testing.T, db *gorm.DB, balance decimal.Decimal) *models.BrandPartnership {
	t.Helper()
	store := models.Store{Name: "Downtown Wellness", Code: "S001", APIKeyHash: "hash"}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	brand := models.Brand{
		Name:                  "Glow Labs",
		CommerceDomain:        "glow-labs.mycommerce.example",
		WebhookSecret:         "secret",
		DefaultCommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		AttributionWindowDays: 30,
	}
	if err := db.Create(&brand).Error; err != nil {
		t.Fatalf("create brand failed: %v", err)
	}
	partnership := models.BrandPartnership{
		StoreID:       store.ID,
		BrandID:       brand.ID,
		CreditBalance: models.NewMoneyFromDecimal(balance),
	}
	if err := db.Create(&partnership).Error; err != nil {
		t.Fatalf("create partnership failed: %v", err)
	}
	return &partnership
}

func TestCreditLedgerEarn(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	partnership := createTestPartnership(t, db, decimal.Zero)

	result, err := svc.Earn(LedgerPostInput{
		PartnershipID: partnership.ID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(13.33)),
		Reason:        constants.CreditReasonCommission,
		Reference:     "conversion:1:commission",
	})
	if err != nil {
		t.Fatalf("earn failed: %v", err)
	}
	if !result.Applied.Equal(decimal.NewFromFloat(13.33)) {
		t.Fatalf("applied want 13.33 got %s", result.Applied)
	}
	if !result.Balance.Equal(decimal.NewFromFloat(13.33)) {
		t.Fatalf("balance want 13.33 got %s", result.Balance)
	}
	if result.Transaction == nil || result.Transaction.Type != constants.CreditTxnTypeEarned {
		t.Fatalf("expected earned transaction, got %+v", result.Transaction)
	}
	if !result.Transaction.BalanceAfter.Decimal.Equal(decimal.NewFromFloat(13.33)) {
		t.Fatalf("balance snapshot want 13.33 got %s", result.Transaction.BalanceAfter.Decimal)
	}

	var stored models.BrandPartnership
	if err := db.First(&stored, partnership.ID).Error; err != nil {
		t.Fatalf("reload partnership failed: %v", err)
	}
	if !stored.CreditBalance.Decimal.Equal(decimal.NewFromFloat(13.33)) {
		t.Fatalf("stored balance want 13.33 got %s", stored.CreditBalance.Decimal)
	}
}

func TestCreditLedgerEarnIdempotentReference(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	partnership := createTestPartnership(t, db, decimal.Zero)

	input := LedgerPostInput{
		PartnershipID: partnership.ID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		Reason:        constants.CreditReasonCommission,
		Reference:     "conversion:7:commission",
	}
	if _, err := svc.Earn(input); err != nil {
		t.Fatalf("first earn failed: %v", err)
	}
	second, err := svc.Earn(input)
	if err != nil {
		t.Fatalf("second earn failed: %v", err)
	}
	if !second.AlreadyPosted {
		t.Fatalf("duplicate reference should report already posted")
	}
	if !second.Balance.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("balance want 20 got %s", second.Balance)
	}

	var count int64
	if err := db.Model(&models.CreditTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("transaction count want 1 got %d", count)
	}
}

func TestCreditLedgerDeductClampsToBalance(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	partnership := createTestPartnership(t, db, decimal.NewFromInt(12))

	result, err := svc.Deduct(LedgerPostInput{
		PartnershipID: partnership.ID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		Reason:        constants.CreditReasonWholesaleCredit,
		Reference:     "wholesale:1:credit",
	})
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if !result.Applied.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("applied want 12 got %s", result.Applied)
	}
	if !result.Balance.Equal(decimal.Zero) {
		t.Fatalf("balance want 0 got %s", result.Balance)
	}
	if !result.Transaction.Amount.Decimal.Equal(decimal.NewFromInt(-12)) {
		t.Fatalf("signed amount want -12 got %s", result.Transaction.Amount.Decimal)
	}
}

func TestCreditLedgerDeductZeroBalanceSkipsTransaction(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	partnership := createTestPartnership(t, db, decimal.Zero)

	result, err := svc.Deduct(LedgerPostInput{
		PartnershipID: partnership.ID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Reason:        constants.CreditReasonWholesaleCredit,
		Reference:     "wholesale:2:credit",
	})
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if !result.Applied.Equal(decimal.Zero) {
		t.Fatalf("applied want 0 got %s", result.Applied)
	}
	if result.Transaction != nil {
		t.Fatalf("zero deduction should not write a transaction")
	}

	var count int64
	if err := db.Model(&models.CreditTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("transaction count want 0 got %d", count)
	}
}

func TestCreditLedgerDeductWithinBalance(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	partnership := createTestPartnership(t, db, decimal.NewFromInt(100))

	result, err := svc.Deduct(LedgerPostInput{
		PartnershipID: partnership.ID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
		Reason:        constants.CreditReasonWholesaleCredit,
		Reference:     "wholesale:3:credit",
	})
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if !result.Applied.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("applied want 40 got %s", result.Applied)
	}
	if !result.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("balance want 60 got %s", result.Balance)
	}
}

func TestCreditLedgerConservation(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	partnership := createTestPartnership(t, db, decimal.Zero)

	postings := []struct {
		deduct bool
		amount decimal.Decimal
		ref    string
	}{
		{false, decimal.NewFromInt(50), "conversion:11:commission"},
		{true, decimal.NewFromInt(20), "wholesale:11:credit"},
		{false, decimal.NewFromFloat(13.33), "conversion:12:commission"},
		{true, decimal.NewFromInt(60), "wholesale:12:credit"},
	}
	for _, p := range postings {
		input := LedgerPostInput{
			PartnershipID: partnership.ID,
			Amount:        models.NewMoneyFromDecimal(p.amount),
			Reason:        constants.CreditReasonAdjustment,
			Reference:     p.ref,
		}
		var err error
		if p.deduct {
			_, err = svc.Deduct(input)
		} else {
			_, err = svc.Earn(input)
		}
		if err != nil {
			t.Fatalf("post %s failed: %v", p.ref, err)
		}
	}

	balance, err := svc.GetBalance(partnership.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	sum, err := repository.NewPartnershipRepository(db).SumTransactionAmounts(partnership.ID)
	if err != nil {
		t.Fatalf("sum transactions failed: %v", err)
	}
	if !balance.Equal(sum) {
		t.Fatalf("balance %s diverged from transaction sum %s", balance, sum)
	}
	if !balance.Equal(decimal.Zero) {
		t.Fatalf("balance want 0 got %s", balance)
	}
}

func TestCreditLedgerParallelPostingsConserveBalances(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db failed: %v", err)
	}
	// 共享内存库限制为单连接，并发写入由连接池排队串行化
	sqlDB.SetMaxOpenConns(1)

	brand := models.Brand{
		Name:                  "Glow Labs",
		CommerceDomain:        "glow-labs.mycommerce.example",
		WebhookSecret:         "secret",
		DefaultCommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		AttributionWindowDays: 30,
	}
	if err := db.Create(&brand).Error; err != nil {
		t.Fatalf("create brand failed: %v", err)
	}
	partnerships := make([]*models.BrandPartnership, 0, 2)
	for _, code := range []string{"S101", "S102"} {
		store := models.Store{Name: "Store " + code, Code: code, APIKeyHash: "hash"}
		if err := db.Create(&store).Error; err != nil {
			t.Fatalf("create store failed: %v", err)
		}
		partnership := models.BrandPartnership{
			StoreID:       store.ID,
			BrandID:       brand.ID,
			CreditBalance: models.NewMoneyFromDecimal(decimal.Zero),
		}
		if err := db.Create(&partnership).Error; err != nil {
			t.Fatalf("create partnership failed: %v", err)
		}
		partnerships = append(partnerships, &partnership)
	}

	const rounds = 8
	var wg sync.WaitGroup
	errCh := make(chan error, len(partnerships)*rounds*2)
	for _, partnership := range partnerships {
		wg.Add(1)
		go func(p *models.BrandPartnership) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if _, err := svc.Earn(LedgerPostInput{
					PartnershipID: p.ID,
					Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
					Reason:        constants.CreditReasonCommission,
					Reference:     fmt.Sprintf("conversion:%d:%d:commission", p.ID, i),
				}); err != nil {
					errCh <- err
					return
				}
				if _, err := svc.Deduct(LedgerPostInput{
					PartnershipID: p.ID,
					Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(3)),
					Reason:        constants.CreditReasonWholesaleCredit,
					Reference:     fmt.Sprintf("wholesale:%d:%d:credit", p.ID, i),
				}); err != nil {
					errCh <- err
					return
				}
			}
		}(partnership)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("parallel posting failed: %v", err)
	}

	repo := repository.NewPartnershipRepository(db)
	want := decimal.NewFromInt(rounds * 7)
	for _, partnership := range partnerships {
		balance, err := svc.GetBalance(partnership.ID)
		if err != nil {
			t.Fatalf("get balance failed: %v", err)
		}
		sum, err := repo.SumTransactionAmounts(partnership.ID)
		if err != nil {
			t.Fatalf("sum transactions failed: %v", err)
		}
		if !balance.Equal(sum) {
			t.Fatalf("partnership %d balance %s diverged from transaction sum %s", partnership.ID, balance, sum)
		}
		if !balance.Equal(want) {
			t.Fatalf("partnership %d balance want %s got %s", partnership.ID, want, balance)
		}
	}
}

func TestCreditLedgerRejectsInvalidInput(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	partnership := createTestPartnership(t, db, decimal.NewFromInt(10))

	_, err := svc.Earn(LedgerPostInput{
		PartnershipID: partnership.ID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Reason:        constants.CreditReasonAdjustment,
		Reference:     "   ",
	})
	if !errors.Is(err, ErrLedgerReferenceEmpty) {
		t.Fatalf("blank reference want ErrLedgerReferenceEmpty got %v", err)
	}

	_, err = svc.Earn(LedgerPostInput{
		PartnershipID: partnership.ID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(-5)),
		Reason:        constants.CreditReasonAdjustment,
		Reference:     "adjust:1",
	})
	if !errors.Is(err, ErrLedgerInvalidAmount) {
		t.Fatalf("negative amount want ErrLedgerInvalidAmount got %v", err)
	}

	_, err = svc.Earn(LedgerPostInput{
		PartnershipID: partnership.ID + 100,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Reason:        constants.CreditReasonAdjustment,
		Reference:     "adjust:2",
	})
	if !errors.Is(err, ErrPartnershipNotFound) {
		t.Fatalf("unknown partnership want ErrPartnershipNotFound got %v", err)
	}
}

func TestCreditLedgerGetBalance(t *testing.T) {
	svc, db := setupCreditLedgerTest(t)
	partnership := createTestPartnership(t, db, decimal.NewFromFloat(88.5))

	balance, err := svc.GetBalance(partnership.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(88.5)) {
		t.Fatalf("balance want 88.5 got %s", balance)
	}

	if _, err := svc.GetBalance(partnership.ID + 100); !errors.Is(err, ErrPartnershipNotFound) {
		t.Fatalf("unknown partnership want ErrPartnershipNotFound got %v", err)
	}
}
