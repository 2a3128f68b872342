package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/queue"
	"github.com/hostdesk/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPaymentExpireMinutes = 30
	orderFieldMaxLength         = 64
)

var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// OrderService 订单服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	planRepo       repository.PlanRepository
	affiliateRepo  repository.AffiliateRepository
	invoiceService *InvoiceService
	settingService *SettingService
	queueClient    *queue.Client
	billing        config.BillingConfig
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	planRepo repository.PlanRepository,
	affiliateRepo repository.AffiliateRepository,
	invoiceService *InvoiceService,
	settingService *SettingService,
	queueClient *queue.Client,
	billing config.BillingConfig,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		planRepo:       planRepo,
		affiliateRepo:  affiliateRepo,
		invoiceService: invoiceService,
		settingService: settingService,
		queueClient:    queueClient,
		billing:        billing,
	}
}

// CreateServerOrderInput 服务器下单输入
type CreateServerOrderInput struct {
	PlanID       uint
	BillingCycle string
	Hostname     string
	Region       string
	OSImage      string
}

// OrderAmounts 订单金额拆分
type OrderAmounts struct {
	Original        decimal.Decimal
	DiscountPercent decimal.Decimal
	Discount        decimal.Decimal
	Subtotal        decimal.Decimal
	TaxPercent      decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
}

// CalculateOrderAmounts 折扣后计税：subtotal = original − discount，tax = subtotal × gst%，total = subtotal + tax
func CalculateOrderAmounts(original, discountPercent, taxPercent decimal.Decimal) OrderAmounts {
	original = original.Round(2)
	discount := original.Mul(discountPercent).Div(decimal.NewFromInt(100)).Round(2)
	subtotal := original.Sub(discount).Round(2)
	tax := subtotal.Mul(taxPercent).Div(decimal.NewFromInt(100)).Round(2)
	return OrderAmounts{
		Original:        original,
		DiscountPercent: discountPercent.Round(2),
		Discount:        discount,
		Subtotal:        subtotal,
		TaxPercent:      taxPercent.Round(2),
		Tax:             tax,
		Total:           subtotal.Add(tax).Round(2),
	}
}

// CreateServerOrder 创建服务器购买订单并开票
func (s *OrderService) CreateServerOrder(userID uint, input CreateServerOrderInput) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	plan, err := s.planRepo.GetByID(input.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNotFound
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}
	hostname := strings.ToLower(strings.TrimSpace(input.Hostname))
	if hostname == "" {
		return nil, ErrOrderHostnameNeeded
	}
	if len(hostname) > 253 || !hostnamePattern.MatchString(hostname) {
		return nil, fmt.Errorf("%w: hostname", ErrInvalidInput)
	}
	region := strings.TrimSpace(input.Region)
	osImage := strings.TrimSpace(input.OSImage)
	if len(region) > orderFieldMaxLength || len(osImage) > orderFieldMaxLength {
		return nil, fmt.Errorf("%w: region or os image too long", ErrInvalidInput)
	}
	quote, err := QuotePlan(plan, input.BillingCycle)
	if err != nil {
		return nil, err
	}

	amounts := CalculateOrderAmounts(quote.OriginalAmount, quote.DiscountPercent, s.gstPercent())
	planID := plan.ID
	order := &models.Order{
		UserID:       userID,
		OrderType:    constants.OrderTypeServerPurchase,
		PlanID:       &planID,
		BillingCycle: quote.BillingCycle,
		Hostname:     hostname,
		Region:       region,
		OSImage:      osImage,
	}
	return s.createOrder(order, amounts)
}

// CreateAffiliateOrder 创建推广加盟费订单；已有待支付加盟订单时直接返回
func (s *OrderService) CreateAffiliateOrder(userID uint) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	setting, err := s.settingService.GetAffiliateSetting()
	if err != nil {
		return nil, err
	}
	if !setting.Enabled {
		return nil, ErrAffiliateDisabled
	}
	fee := setting.JoiningFeeDecimal()
	if fee.LessThanOrEqual(decimal.Zero) {
		return nil, ErrJoiningFeeInvalid
	}
	sub, err := s.affiliateRepo.GetSubscriptionByUserID(userID)
	if err != nil {
		return nil, err
	}
	if sub != nil && sub.IsLifetime && sub.EarningActive(time.Now()) {
		return nil, ErrAffiliateAlreadyOn
	}

	pending, _, err := s.orderRepo.List(repository.OrderListFilter{
		Page:      1,
		PageSize:  1,
		UserID:    userID,
		OrderType: constants.OrderTypeAffiliateSubscription,
		Status:    constants.OrderStatusPending,
	})
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 && (pending[0].ExpiresAt == nil || pending[0].ExpiresAt.After(time.Now())) {
		return s.orderRepo.GetByID(pending[0].ID)
	}

	amounts := CalculateOrderAmounts(fee, decimal.Zero, s.gstPercent())
	order := &models.Order{
		UserID:    userID,
		OrderType: constants.OrderTypeAffiliateSubscription,
	}
	return s.createOrder(order, amounts)
}

func (s *OrderService) createOrder(order *models.Order, amounts OrderAmounts) (*models.Order, error) {
	if amounts.Total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrOrderAmountInvalid
	}
	now := time.Now()
	expireMinutes := s.billing.PaymentExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = defaultPaymentExpireMinutes
	}
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)

	order.OrderNo = generateOrderNo()
	order.OriginalAmount = models.NewMoneyFromDecimal(amounts.Original)
	order.DiscountPercent = models.NewMoneyFromDecimal(amounts.DiscountPercent)
	order.DiscountAmount = models.NewMoneyFromDecimal(amounts.Discount)
	order.Subtotal = models.NewMoneyFromDecimal(amounts.Subtotal)
	order.TaxPercent = models.NewMoneyFromDecimal(amounts.TaxPercent)
	order.TaxAmount = models.NewMoneyFromDecimal(amounts.Tax)
	order.TotalAmount = models.NewMoneyFromDecimal(amounts.Total)
	order.Currency = s.currency()
	order.Status = constants.OrderStatusPending
	order.ExpiresAt = &expiresAt
	order.CreatedAt = now
	order.UpdatedAt = now

	dueAt := &expiresAt
	if s.billing.InvoiceDueDays > 0 {
		t := now.AddDate(0, 0, s.billing.InvoiceDueDays)
		dueAt = &t
	}

	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}
		invoice, err := s.invoiceService.IssueTx(tx, order, dueAt, now)
		if err != nil {
			return err
		}
		order.Invoice = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"order_type", order.OrderType,
		"total", order.TotalAmount.String(),
	)

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{OrderID: order.ID}, time.Until(expiresAt)); err != nil {
			logger.Warnw("order_timeout_enqueue_failed", "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}

// CancelForUser 用户取消自己的待支付订单
func (s *OrderService) CancelForUser(userID, orderID uint) (*models.Order, error) {
	return s.cancel(orderID, func(order *models.Order) error {
		if order.UserID != userID {
			return ErrNotFound
		}
		return nil
	}, "user")
}

// CancelForAdmin 后台取消待支付订单
func (s *OrderService) CancelForAdmin(orderID uint) (*models.Order, error) {
	return s.cancel(orderID, nil, "admin")
}

// CancelExpiredOrder 超时任务回调：仅取消仍未支付且已过期的订单
func (s *OrderService) CancelExpiredOrder(orderID uint) (bool, error) {
	now := time.Now()
	_, err := s.cancel(orderID, func(order *models.Order) error {
		if order.Status != constants.OrderStatusPending || order.ExpiresAt == nil || order.ExpiresAt.After(now) {
			return errOrderNotExpired
		}
		return nil
	}, "timeout")
	if errors.Is(err, errOrderNotExpired) || errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CancelExpired 批量取消过期订单（队列未启用时由定时循环调用）
func (s *OrderService) CancelExpired(now time.Time, limit int) (int, error) {
	orders, err := s.orderRepo.ListExpiredPending(now, limit)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, order := range orders {
		ok, err := s.CancelExpiredOrder(order.ID)
		if err != nil {
			logger.Warnw("order_expire_cancel_failed", "order_id", order.ID, "error", err)
			continue
		}
		if ok {
			count++
		}
	}
	return count, nil
}

var errOrderNotExpired = errors.New("order not expired")

func (s *OrderService) cancel(orderID uint, check func(order *models.Order) error, source string) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrNotFound
	}
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.orderRepo.WithTx(tx)
		order, err := repoTx.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrNotFound
		}
		if check != nil {
			if err := check(order); err != nil {
				return err
			}
		}
		now := time.Now()
		if err := transitOrder(repoTx, order, constants.OrderStatusCancelled, now); err != nil {
			return err
		}
		if err := s.invoiceService.VoidTx(tx, order.ID, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_cancelled", "order_id", orderID, "source", source)
	return s.orderRepo.GetByID(orderID)
}

func (s *OrderService) gstPercent() decimal.Decimal {
	if s.billing.GSTPercent < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(s.billing.GSTPercent).Round(2)
}

func (s *OrderService) currency() string {
	currency := strings.ToUpper(strings.TrimSpace(s.billing.Currency))
	if currency == "" {
		return "INR"
	}
	return currency
}
