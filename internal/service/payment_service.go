package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/metrics"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/payment/razorpay"
	"github.com/hostdesk/internal/queue"
	"github.com/hostdesk/internal/repository"

	"go.uber.org/zap"
)

// PaymentService 支付服务
type PaymentService struct {
	orderRepo         repository.OrderRepository
	paymentRepo       repository.PaymentRepository
	invoiceService    *InvoiceService
	serverService     *ServerService
	affiliateService  *AffiliateService
	referralService   *ReferralService
	commissionService *CommissionService
	settingService    *SettingService
	queueClient       *queue.Client
	gateway           razorpay.Config
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	invoiceService *InvoiceService,
	serverService *ServerService,
	affiliateService *AffiliateService,
	referralService *ReferralService,
	commissionService *CommissionService,
	settingService *SettingService,
	queueClient *queue.Client,
	gateway razorpay.Config,
) *PaymentService {
	gateway.Normalize()
	return &PaymentService{
		orderRepo:         orderRepo,
		paymentRepo:       paymentRepo,
		invoiceService:    invoiceService,
		serverService:     serverService,
		affiliateService:  affiliateService,
		referralService:   referralService,
		commissionService: commissionService,
		settingService:    settingService,
		queueClient:       queueClient,
		gateway:           gateway,
	}
}

// RazorpayConfigFrom 由应用配置构建网关配置
func RazorpayConfigFrom(cfg config.RazorpayConfig) razorpay.Config {
	gateway := razorpay.Config{
		KeyID:         cfg.KeyID,
		KeySecret:     cfg.KeySecret,
		WebhookSecret: cfg.WebhookSecret,
		APIBaseURL:    cfg.BaseURL,
	}
	if cfg.TimeoutSeconds > 0 {
		gateway.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	gateway.Normalize()
	return gateway
}

// CreatePaymentInput 创建支付请求
type CreatePaymentInput struct {
	UserID  uint
	OrderID uint
	Context context.Context
}

// CreatePaymentResult 创建支付结果（供前端拉起 Checkout）
type CreatePaymentResult struct {
	Payment        *models.PaymentTransaction `json:"payment"`
	KeyID          string                     `json:"key_id"`
	GatewayOrderID string                     `json:"gateway_order_id"`
	AmountMinor    int64                      `json:"amount_minor"`
	Currency       string                     `json:"currency"`
	OrderNo        string                     `json:"order_no"`
	Reused         bool                       `json:"reused"`
}

// VerifyPaymentInput Checkout 回传参数
type VerifyPaymentInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// CreatePayment 为待支付订单创建 Razorpay 订单与支付流水
func (s *PaymentService) CreatePayment(input CreatePaymentInput) (*CreatePaymentResult, error) {
	log := paymentLogger("user_id", input.UserID, "order_id", input.OrderID)
	if input.OrderID == 0 || input.UserID == 0 {
		return nil, ErrNotFound
	}
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != input.UserID {
		return nil, ErrNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderStatusInvalid
	}
	if order.ExpiresAt != nil && !order.ExpiresAt.After(time.Now()) {
		return nil, ErrOrderExpired
	}
	if err := razorpay.ValidateConfig(&s.gateway); err != nil {
		log.Warnw("payment_gateway_config_invalid", "error", err)
		return nil, ErrPaymentGatewayNotConfigured
	}
	amountMinor, err := razorpay.ToMinorAmount(order.TotalAmount.String(), order.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderAmountInvalid, err)
	}

	existing, err := s.paymentRepo.GetLatestCreatedByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Amount.Decimal.Equal(order.TotalAmount.Decimal) && strings.EqualFold(existing.Currency, order.Currency) {
		log.Infow("payment_reuse_created", "payment_id", existing.ID, "gateway_order_id", existing.GatewayOrderID)
		return s.buildCreateResult(existing, order, amountMinor, true), nil
	}

	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}
	gatewayOrder, err := razorpay.CreateOrder(ctx, &s.gateway, razorpay.CreateOrderInput{
		Receipt:  order.OrderNo,
		Amount:   order.TotalAmount.String(),
		Currency: order.Currency,
		Notes: map[string]string{
			"order_no":   order.OrderNo,
			"order_type": order.OrderType,
		},
	})
	if err != nil {
		log.Errorw("payment_gateway_create_order_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayRequestFailed, err)
	}

	now := time.Now()
	payment := &models.PaymentTransaction{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Provider:       constants.PaymentProviderRazorpay,
		GatewayOrderID: gatewayOrder.ID,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		Status:         constants.PaymentStatusCreated,
		Payload:        models.JSON(gatewayOrder.Raw),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	metrics.IncPayment(constants.PaymentStatusCreated)
	log.Infow("payment_created", "payment_id", payment.ID, "gateway_order_id", payment.GatewayOrderID, "amount", payment.Amount.String())
	return s.buildCreateResult(payment, order, amountMinor, false), nil
}

func (s *PaymentService) buildCreateResult(payment *models.PaymentTransaction, order *models.Order, amountMinor int64, reused bool) *CreatePaymentResult {
	return &CreatePaymentResult{
		Payment:        payment,
		KeyID:          s.gateway.KeyID,
		GatewayOrderID: payment.GatewayOrderID,
		AmountMinor:    amountMinor,
		Currency:       payment.Currency,
		OrderNo:        order.OrderNo,
		Reused:         reused,
	}
}

// VerifyPayment 校验 Checkout 回传签名并确认支付
func (s *PaymentService) VerifyPayment(userID uint, input VerifyPaymentInput) (*models.PaymentTransaction, error) {
	gatewayOrderID := strings.TrimSpace(input.GatewayOrderID)
	log := paymentLogger("user_id", userID, "gateway_order_id", gatewayOrderID, "gateway_payment_id", input.GatewayPaymentID)
	payment, err := s.paymentRepo.GetByGatewayOrderID(gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	if err := razorpay.VerifyPaymentSignature(&s.gateway, gatewayOrderID, input.GatewayPaymentID, input.Signature); err != nil {
		metrics.IncSignatureFailure("checkout")
		log.Warnw("payment_signature_invalid", "error", err)
		if errors.Is(err, razorpay.ErrConfigInvalid) {
			return nil, ErrPaymentGatewayNotConfigured
		}
		return nil, ErrPaymentSignatureInvalid
	}
	return s.Finalize(FinalizePaymentInput{
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: strings.TrimSpace(input.GatewayPaymentID),
		Signature:        strings.TrimSpace(input.Signature),
		Source:           "checkout",
	})
}

// ListAdmin 后台支付流水列表
func (s *PaymentService) ListAdmin(filter repository.PaymentListFilter) ([]models.PaymentTransaction, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	return s.paymentRepo.List(filter)
}

// GetForAdmin 后台支付流水详情
func (s *PaymentService) GetForAdmin(paymentID uint) (*models.PaymentTransaction, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) enqueueNotification(event string, userID, refID uint, status string) {
	if s.queueClient == nil {
		return
	}
	payload := queue.NotificationEmailPayload{Event: event, UserID: userID, RefID: refID, Status: status}
	if err := s.queueClient.EnqueueNotificationEmail(payload); err != nil {
		logger.Warnw("payment_notification_enqueue_failed", "event", event, "ref_id", refID, "error", err)
	}
}
