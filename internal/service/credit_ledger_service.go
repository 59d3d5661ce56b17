package service

import (
	"strings"
	"time"

	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditLedgerService 合作积分账本服务。
// 所有余额变更都在事务内对合作关系行加锁后进行，并逐笔落流水快照。
type CreditLedgerService struct {
	partnershipRepo repository.PartnershipRepository
}

// NewCreditLedgerService 创建积分账本服务
func NewCreditLedgerService(partnershipRepo repository.PartnershipRepository) *CreditLedgerService {
	return &CreditLedgerService{partnershipRepo: partnershipRepo}
}

// LedgerPostInput 记账输入
type LedgerPostInput struct {
	PartnershipID    uint
	Amount           models.Money // 正数金额；扣减方向由调用入口决定
	Reason           string
	Reference        string // 幂等参考号，全局唯一
	ConversionID     *uint
	WholesaleOrderID *uint
}

// LedgerPostResult 记账结果
type LedgerPostResult struct {
	Applied       decimal.Decimal           // 实际入账/扣减金额（扣减会按可用余额收敛）
	Balance       decimal.Decimal           // 记账后余额
	Transaction   *models.CreditTransaction // 本次写入的流水；重复投递时为既有流水
	AlreadyPosted bool                      // 幂等命中
}

// Earn 为合作关系入账积分
func (s *CreditLedgerService) Earn(input LedgerPostInput) (*LedgerPostResult, error) {
	return s.postWithRetry(input, constants.CreditTxnTypeEarned)
}

// Deduct 从合作关系扣减积分，超出可用余额时收敛到余额
func (s *CreditLedgerService) Deduct(input LedgerPostInput) (*LedgerPostResult, error) {
	return s.postWithRetry(input, constants.CreditTxnTypeDeducted)
}

// EarnTx 在既有事务内入账积分（转化归因路径专用）
func (s *CreditLedgerService) EarnTx(tx *gorm.DB, input LedgerPostInput) (*LedgerPostResult, error) {
	return s.postTx(tx, input, constants.CreditTxnTypeEarned)
}

// DeductTx 在既有事务内扣减积分（批发下单抵扣路径专用）
func (s *CreditLedgerService) DeductTx(tx *gorm.DB, input LedgerPostInput) (*LedgerPostResult, error) {
	return s.postTx(tx, input, constants.CreditTxnTypeDeducted)
}

// GetBalance 查询合作关系当前余额
func (s *CreditLedgerService) GetBalance(partnershipID uint) (decimal.Decimal, error) {
	partnership, err := s.partnershipRepo.GetByID(partnershipID)
	if err != nil {
		return decimal.Zero, err
	}
	if partnership == nil {
		return decimal.Zero, ErrPartnershipNotFound
	}
	return partnership.CreditBalance.Decimal.Round(2), nil
}

// ListTransactions 分页查询积分流水
func (s *CreditLedgerService) ListTransactions(filter repository.CreditTransactionListFilter) ([]models.CreditTransaction, int64, error) {
	return s.partnershipRepo.ListTransactions(filter)
}

// postWithRetry 独立事务记账；存储层并发冲突时重试一次
func (s *CreditLedgerService) postWithRetry(input LedgerPostInput, txnType string) (*LedgerPostResult, error) {
	result, err := s.postOnce(input, txnType)
	if err != nil && isStorageContention(err) {
		logger.Warnw("credit_ledger_post_retry",
			"partnership_id", input.PartnershipID,
			"reference", input.Reference,
			"error", err,
		)
		return s.postOnce(input, txnType)
	}
	return result, err
}

func (s *CreditLedgerService) postOnce(input LedgerPostInput, txnType string) (*LedgerPostResult, error) {
	var result *LedgerPostResult
	err := s.partnershipRepo.Transaction(func(tx *gorm.DB) error {
		posted, postErr := s.postTx(tx, input, txnType)
		if postErr != nil {
			return postErr
		}
		result = posted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// postTx 在事务内完成一次记账：锁行、校验幂等、改余额、落流水。
func (s *CreditLedgerService) postTx(tx *gorm.DB, input LedgerPostInput, txnType string) (*LedgerPostResult, error) {
	if tx == nil {
		return nil, ErrLedgerPostFailed
	}
	if input.PartnershipID == 0 {
		return nil, ErrPartnershipNotFound
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, ErrLedgerReferenceEmpty
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThan(decimal.Zero) {
		return nil, ErrLedgerInvalidAmount
	}

	repo := s.partnershipRepo.WithTx(tx)

	existing, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &LedgerPostResult{
			Applied:       existing.Amount.Decimal.Abs().Round(2),
			Balance:       existing.BalanceAfter.Decimal.Round(2),
			Transaction:   existing,
			AlreadyPosted: true,
		}, nil
	}

	partnership, err := repo.GetByIDForUpdate(input.PartnershipID)
	if err != nil {
		return nil, err
	}
	if partnership == nil {
		return nil, ErrPartnershipNotFound
	}

	now := time.Now()
	before := partnership.CreditBalance.Decimal.Round(2)
	applied := amount
	signed := amount
	if txnType == constants.CreditTxnTypeDeducted {
		if applied.GreaterThan(before) {
			applied = before
		}
		if applied.LessThanOrEqual(decimal.Zero) {
			return &LedgerPostResult{
				Applied: decimal.Zero,
				Balance: before,
			}, nil
		}
		signed = applied.Neg()
	}

	after := before.Add(signed).Round(2)
	partnership.CreditBalance = models.NewMoneyFromDecimal(after)
	partnership.UpdatedAt = now
	if err := repo.Update(partnership); err != nil {
		return nil, ErrPartnershipUpdateFailed
	}

	txn := &models.CreditTransaction{
		PartnershipID:    partnership.ID,
		Type:             txnType,
		Amount:           models.NewMoneyFromDecimal(signed),
		BalanceAfter:     models.NewMoneyFromDecimal(after),
		Reason:           input.Reason,
		Reference:        reference,
		ConversionID:     input.ConversionID,
		WholesaleOrderID: input.WholesaleOrderID,
		CreatedAt:        now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrLedgerTransactionFailed
	}

	return &LedgerPostResult{
		Applied:     applied,
		Balance:     after,
		Transaction: txn,
	}, nil
}

// isStorageContention 判断是否为可重试的存储层并发冲突
func isStorageContention(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "could not serialize")
}
