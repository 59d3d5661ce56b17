package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/queue"
	"github.com/sampleloop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WholesaleService 批发补货服务。
// 补货单生命周期：pending →（平台付款）submitted →（平台发货）delivered →
//（门店确认收货）verified；收货确认幂等，重复确认被拒绝。
type WholesaleService struct {
	wholesaleRepo   repository.WholesaleRepository
	partnershipRepo repository.PartnershipRepository
	ledgerSvc       *CreditLedgerService
	inventorySvc    *InventoryService
	notificationSvc *NotificationService
}

// NewWholesaleService 创建批发补货服务
func NewWholesaleService(
	wholesaleRepo repository.WholesaleRepository,
	partnershipRepo repository.PartnershipRepository,
	ledgerSvc *CreditLedgerService,
	inventorySvc *InventoryService,
	notificationSvc *NotificationService,
) *WholesaleService {
	return &WholesaleService{
		wholesaleRepo:   wholesaleRepo,
		partnershipRepo: partnershipRepo,
		ledgerSvc:       ledgerSvc,
		inventorySvc:    inventorySvc,
		notificationSvc: notificationSvc,
	}
}

// WholesaleItemInput 补货单行项目输入
type WholesaleItemInput struct {
	WholesaleSKU      string
	ExternalProductID string
	ExternalVariantID string
	Boxes             int
	UnitPrice         models.Money // 每箱单价
}

// WholesaleCreateInput 创建补货单输入
type WholesaleCreateInput struct {
	StoreID           uint
	BrandID           uint
	ExternalOrderID   string
	FulfillmentDomain string
	UseCredit         bool
	Notes             string
	Items             []WholesaleItemInput
}

// WholesaleVerifyItemInput 收货确认行项目输入
type WholesaleVerifyItemInput struct {
	ItemID        uint
	ReceivedUnits int
	Notes         string
}

// WholesaleVerifyInput 收货确认输入
type WholesaleVerifyInput struct {
	OrderID uint
	StoreID uint
	Items   []WholesaleVerifyItemInput
}

// Create 创建补货单：行项目解析为零售SKU映射、展开预期单件数、
// 按需以可用积分抵扣（超出余额自动收敛）。
func (s *WholesaleService) Create(input WholesaleCreateInput) (*models.WholesaleOrder, error) {
	if input.StoreID == 0 || input.BrandID == 0 {
		return nil, ErrWholesaleOrderNotFound
	}
	if len(input.Items) == 0 {
		return nil, ErrWholesaleOrderEmpty
	}

	partnership, err := s.partnershipRepo.GetByStoreAndBrand(input.StoreID, input.BrandID)
	if err != nil {
		return nil, err
	}
	if partnership == nil {
		return nil, ErrPartnershipNotFound
	}

	now := time.Now()
	subtotal := decimal.Zero
	items := make([]models.WholesaleOrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Boxes <= 0 {
			return nil, ErrWholesaleItemInvalid
		}
		mapping, err := s.inventorySvc.ResolveRetailSKU(input.BrandID, commerce.LineItem{
			ProductID: parseExternalID(item.ExternalProductID),
			VariantID: parseExternalID(item.ExternalVariantID),
			SKU:       strings.TrimSpace(item.WholesaleSKU),
		})
		if err != nil {
			return nil, err
		}
		if mapping == nil {
			return nil, ErrSKUMappingNotFound
		}

		unitPrice := item.UnitPrice.Decimal.Round(2)
		if unitPrice.LessThan(decimal.Zero) {
			return nil, ErrWholesaleItemInvalid
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Boxes))).Round(2)
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.WholesaleOrderItem{
			WholesaleSKU:      mapping.WholesaleSKU,
			RetailSKU:         mapping.SKU,
			ExternalProductID: mapping.WholesaleProductID,
			ExternalVariantID: mapping.WholesaleVariantID,
			Boxes:             item.Boxes,
			UnitsPerBox:       mapping.UnitsPerBox,
			ExpectedUnits:     item.Boxes * mapping.UnitsPerBox,
			UnitPrice:         models.NewMoneyFromDecimal(unitPrice),
			LineTotal:         models.NewMoneyFromDecimal(lineTotal),
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	subtotal = subtotal.Round(2)

	order := &models.WholesaleOrder{
		OrderNo:           generateWholesaleOrderNo(),
		StoreID:           input.StoreID,
		BrandID:           input.BrandID,
		PartnershipID:     partnership.ID,
		ExternalOrderID:   strings.TrimSpace(input.ExternalOrderID),
		FulfillmentDomain: strings.ToLower(strings.TrimSpace(input.FulfillmentDomain)),
		Status:            constants.WholesaleStatusPending,
		Subtotal:          models.NewMoneyFromDecimal(subtotal),
		AppliedCredit:     models.NewMoneyFromDecimal(decimal.Zero),
		Total:             models.NewMoneyFromDecimal(subtotal),
		Notes:             strings.TrimSpace(input.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
		Items:             items,
	}

	if err := s.wholesaleRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.wholesaleRepo.WithTx(tx)
		if err := repo.Create(order); err != nil {
			return err
		}
		if !input.UseCredit || subtotal.LessThanOrEqual(decimal.Zero) {
			return nil
		}

		orderID := order.ID
		posted, postErr := s.ledgerSvc.DeductTx(tx, LedgerPostInput{
			PartnershipID:    partnership.ID,
			Amount:           models.NewMoneyFromDecimal(subtotal),
			Reason:           constants.CreditReasonWholesaleCredit,
			Reference:        fmt.Sprintf("wholesale:%d:credit", order.ID),
			WholesaleOrderID: &orderID,
		})
		if postErr != nil {
			return postErr
		}
		applied := posted.Applied.Round(2)
		if applied.LessThanOrEqual(decimal.Zero) {
			return nil
		}
		order.AppliedCredit = models.NewMoneyFromDecimal(applied)
		order.Total = models.NewMoneyFromDecimal(subtotal.Sub(applied).Round(2))
		order.UpdatedAt = time.Now()
		return repo.Update(order)
	}); err != nil {
		return nil, err
	}

	logger.Infow("wholesale_order_created",
		"order_no", order.OrderNo,
		"store_id", order.StoreID,
		"brand_id", order.BrandID,
		"subtotal", order.Subtotal.String(),
		"applied_credit", order.AppliedCredit.String(),
	)
	return order, nil
}

// MarkSubmittedTx 平台确认付款后在事务内流转 pending → submitted 并暂存在途。
// 非 pending 状态视为重复投递，直接跳过。
func (s *WholesaleService) MarkSubmittedTx(tx *gorm.DB, order *models.WholesaleOrder, at time.Time) error {
	if order == nil {
		return ErrWholesaleOrderNotFound
	}
	if order.Status != constants.WholesaleStatusPending {
		return nil
	}
	if err := s.inventorySvc.StageWholesaleOrderedTx(tx, order); err != nil {
		return err
	}
	if err := s.wholesaleRepo.WithTx(tx).UpdateStatus(order.ID, constants.WholesaleStatusSubmitted, at); err != nil {
		return err
	}
	order.Status = constants.WholesaleStatusSubmitted
	return nil
}

// MarkDeliveredTx 平台发货后在事务内流转 submitted → delivered 并记到货流水。
// 非 submitted 状态视为重复投递，直接跳过。
func (s *WholesaleService) MarkDeliveredTx(tx *gorm.DB, order *models.WholesaleOrder, at time.Time) error {
	if order == nil {
		return ErrWholesaleOrderNotFound
	}
	if order.Status != constants.WholesaleStatusSubmitted {
		return nil
	}
	if err := s.inventorySvc.RecordWholesaleIncomingTx(tx, order); err != nil {
		return err
	}
	if err := s.wholesaleRepo.WithTx(tx).UpdateStatus(order.ID, constants.WholesaleStatusDelivered, at); err != nil {
		return err
	}
	order.Status = constants.WholesaleStatusDelivered
	return nil
}

// Verify 门店确认收货：逐行记录实收与差异，在途转在库，补货单标记 verified。
// 发货回调丢失的 submitted 单先补走 delivered，状态轨迹不跳档。
// 已确认的补货单拒绝再次确认。
func (s *WholesaleService) Verify(input WholesaleVerifyInput) (*models.WholesaleOrder, error) {
	if input.OrderID == 0 {
		return nil, ErrWholesaleOrderNotFound
	}

	var verified *models.WholesaleOrder
	if err := s.wholesaleRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.wholesaleRepo.WithTx(tx)
		order, err := repo.GetByIDForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if order == nil || (input.StoreID != 0 && order.StoreID != input.StoreID) {
			return ErrWholesaleOrderNotFound
		}
		if order.Status == constants.WholesaleStatusVerified {
			return ErrWholesaleAlreadyVerified
		}
		if order.Status != constants.WholesaleStatusSubmitted && order.Status != constants.WholesaleStatusDelivered {
			return ErrWholesaleStatusInvalid
		}

		now := time.Now()
		if order.Status == constants.WholesaleStatusSubmitted {
			if err := s.MarkDeliveredTx(tx, order, now); err != nil {
				return err
			}
		}

		received := make(map[uint]WholesaleVerifyItemInput, len(input.Items))
		for _, item := range input.Items {
			received[item.ItemID] = item
		}
		for i := range order.Items {
			item := &order.Items[i]
			confirm, ok := received[item.ID]
			if !ok || confirm.ReceivedUnits < 0 {
				return ErrWholesaleItemInvalid
			}

			units := confirm.ReceivedUnits
			item.ReceivedUnits = &units
			item.Discrepancy = item.ExpectedUnits - units
			item.Notes = strings.TrimSpace(confirm.Notes)
			item.UpdatedAt = now
			if err := repo.UpdateItem(item); err != nil {
				return err
			}
			if err := s.inventorySvc.ReceiveWholesaleItemTx(tx, order, item, units); err != nil {
				return err
			}
		}

		if err := repo.UpdateStatus(order.ID, constants.WholesaleStatusVerified, now); err != nil {
			return err
		}
		order.Status = constants.WholesaleStatusVerified
		order.VerifiedAt = &now
		verified = order
		return nil
	}); err != nil {
		return nil, err
	}

	s.notifyVerified(verified)
	return verified, nil
}

// GetForStore 查询门店自己的补货单
func (s *WholesaleService) GetForStore(orderID, storeID uint) (*models.WholesaleOrder, error) {
	order, err := s.wholesaleRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.StoreID != storeID {
		return nil, ErrWholesaleOrderNotFound
	}
	return order, nil
}

// GetByExternalOrderID 按平台订单ID匹配补货单（webhook 路径）
func (s *WholesaleService) GetByExternalOrderID(externalOrderID string) (*models.WholesaleOrder, error) {
	return s.wholesaleRepo.GetByExternalOrderID(externalOrderID)
}

// List 分页查询补货单
func (s *WholesaleService) List(filter repository.WholesaleOrderListFilter) ([]models.WholesaleOrder, int64, error) {
	return s.wholesaleRepo.List(filter)
}

// notifyVerified 收货确认后投递通知任务（尽力而为）
func (s *WholesaleService) notifyVerified(order *models.WholesaleOrder) {
	if s.notificationSvc == nil || order == nil {
		return
	}
	discrepancy := 0
	for _, item := range order.Items {
		discrepancy += item.Discrepancy
	}
	s.notificationSvc.NotifyWholesaleVerified(queue.WholesaleVerifiedNoticePayload{
		WholesaleOrderID: order.ID,
		OrderNo:          order.OrderNo,
		StoreID:          order.StoreID,
		BrandID:          order.BrandID,
		DiscrepancyUnits: discrepancy,
	})
}

func generateWholesaleOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("WS%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// parseExternalID 平台ID从字符串转数值，非法值按未提供处理
func parseExternalID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
