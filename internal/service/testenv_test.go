package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/payment/razorpay"
	"github.com/hostdesk/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	testRazorpayKeyID         = "rzp_test_key"
	testRazorpayKeySecret     = "rzp_test_secret"
	testRazorpayWebhookSecret = "rzp_webhook_secret"
)

type mockSettingRepo struct {
	mu    sync.Mutex
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func testAffiliateConfig() config.AffiliateConfig {
	return config.AffiliateConfig{
		Enabled:                        true,
		JoiningFee:                     999,
		FreeActivationOnServerPurchase: true,
		FreeActivationDays:             30,
		HoldDays:                       0,
		MinPayoutAmount:                100,
		TDSPercent:                     10,
		GSTPercent:                     18,
		Rates: map[string][]float64{
			constants.OrderTypeServerPurchase:        {10, 5, 2},
			constants.OrderTypeAffiliateSubscription: {20, 10, 5},
		},
	}
}

func openServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

// newRazorpayTestServer 模拟 Orders API，按请求金额回显
func newRazorpayTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	seq := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			http.NotFound(w, r)
			return
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != testRazorpayKeyID || pass != testRazorpayKeySecret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		seq++
		id := fmt.Sprintf("order_test%04d", seq)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          id,
			"entity":      "order",
			"amount":      body["amount"],
			"amount_paid": 0,
			"currency":    body["currency"],
			"receipt":     body["receipt"],
			"status":      "created",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

type serviceTestEnv struct {
	db                *gorm.DB
	userRepo          *repository.GormUserRepository
	planRepo          *repository.GormPlanRepository
	orderRepo         *repository.GormOrderRepository
	paymentRepo       *repository.GormPaymentRepository
	affiliateRepo     *repository.GormAffiliateRepository
	supportRepo       *repository.GormSupportRepository
	settingService    *SettingService
	referralService   *ReferralService
	affiliateService  *AffiliateService
	commissionService *CommissionService
	payoutService     *PayoutService
	invoiceService    *InvoiceService
	serverService     *ServerService
	orderService      *OrderService
	paymentService    *PaymentService
	gatewayURL        string
}

func newServiceTestEnv(t *testing.T, name string) *serviceTestEnv {
	t.Helper()
	db := openServiceTestDB(t, name)
	gateway := newRazorpayTestServer(t)

	env := &serviceTestEnv{
		db:            db,
		userRepo:      repository.NewUserRepository(db),
		planRepo:      repository.NewPlanRepository(db),
		orderRepo:     repository.NewOrderRepository(db),
		paymentRepo:   repository.NewPaymentRepository(db),
		affiliateRepo: repository.NewAffiliateRepository(db),
		supportRepo:   repository.NewSupportRepository(db),
		gatewayURL:    gateway.URL,
	}
	invoiceRepo := repository.NewInvoiceRepository(db)
	serverRepo := repository.NewServerRepository(db)

	env.settingService = NewSettingService(newMockSettingRepo(), testAffiliateConfig())
	env.referralService = NewReferralService(env.affiliateRepo, env.userRepo)
	env.affiliateService = NewAffiliateService(env.affiliateRepo, env.userRepo, env.settingService, env.referralService)
	env.commissionService = NewCommissionService(env.affiliateRepo, env.userRepo, env.paymentRepo, env.settingService)
	env.payoutService = NewPayoutService(env.affiliateRepo, env.commissionService, env.settingService, nil)
	env.invoiceService = NewInvoiceService(invoiceRepo)
	env.serverService = NewServerService(serverRepo)
	env.orderService = NewOrderService(env.orderRepo, env.planRepo, env.affiliateRepo, env.invoiceService, env.settingService, nil, config.BillingConfig{
		Currency:             "INR",
		GSTPercent:           18,
		PaymentExpireMinutes: 30,
	})
	env.paymentService = NewPaymentService(
		env.orderRepo,
		env.paymentRepo,
		env.invoiceService,
		env.serverService,
		env.affiliateService,
		env.referralService,
		env.commissionService,
		env.settingService,
		nil,
		razorpay.Config{
			KeyID:         testRazorpayKeyID,
			KeySecret:     testRazorpayKeySecret,
			WebhookSecret: testRazorpayWebhookSecret,
			APIBaseURL:    gateway.URL,
		},
	)
	return env
}

func (e *serviceTestEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	if role == "" {
		role = constants.UserRoleCustomer
	}
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

// createAffiliate 创建已开通终身推广资格的用户
func (e *serviceTestEnv) createAffiliate(t *testing.T, email, code string) *models.User {
	t.Helper()
	user := e.createUser(t, email, "")
	e.createSubscription(t, user.ID, code, true, nil)
	return user
}

func (e *serviceTestEnv) createSubscription(t *testing.T, userID uint, code string, active bool, expiresAt *time.Time) *models.AffiliateSubscription {
	t.Helper()
	now := time.Now()
	sub := &models.AffiliateSubscription{
		UserID:           userID,
		ReferralCode:     code,
		IsActive:         active,
		IsLifetime:       expiresAt == nil,
		ActivationSource: constants.AffiliateSourceAdmin,
		ActivatedAt:      &now,
		ExpiresAt:        expiresAt,
	}
	if err := e.db.Create(sub).Error; err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}
	if !active {
		if err := e.db.Model(sub).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate subscription failed: %v", err)
		}
	}
	return sub
}

// registerReferred 创建用户并按推广码挂接推荐链
func (e *serviceTestEnv) registerReferred(t *testing.T, email, code string) *models.User {
	t.Helper()
	user := e.createUser(t, email, "")
	err := e.db.Transaction(func(tx *gorm.DB) error {
		return e.referralService.AttachReferrerTx(tx, user, code)
	})
	if err != nil {
		t.Fatalf("attach referrer failed: %v", err)
	}
	return user
}

func (e *serviceTestEnv) createPlan(t *testing.T, slug string, monthly string) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		Name:                     "Plan " + slug,
		Slug:                     slug,
		CPUCores:                 2,
		RAMMB:                    4096,
		DiskGB:                   80,
		MonthlyPrice:             models.NewMoneyFromDecimal(decimal.RequireFromString(monthly)),
		QuarterlyDiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		YearlyDiscountPercent:    models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
		IsActive:                 true,
	}
	if err := e.db.Create(plan).Error; err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	return plan
}

func (e *serviceTestEnv) updateAffiliateSetting(t *testing.T, mutate func(setting *AffiliateSetting)) {
	t.Helper()
	setting, err := e.settingService.GetAffiliateSetting()
	if err != nil {
		t.Fatalf("get affiliate setting failed: %v", err)
	}
	mutate(&setting)
	if _, err := e.settingService.UpdateAffiliateSetting(setting); err != nil {
		t.Fatalf("update affiliate setting failed: %v", err)
	}
}

// payOrder 走完整的 Checkout 流程：创建网关订单 → 回传签名 → 确认
func (e *serviceTestEnv) payOrder(t *testing.T, order *models.Order) *models.PaymentTransaction {
	t.Helper()
	created, err := e.paymentService.CreatePayment(CreatePaymentInput{UserID: order.UserID, OrderID: order.ID})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	paymentID := "pay_" + created.GatewayOrderID
	signature := razorpay.ComputeSignature(testRazorpayKeySecret, []byte(created.GatewayOrderID+"|"+paymentID))
	payment, err := e.paymentService.VerifyPayment(order.UserID, VerifyPaymentInput{
		GatewayOrderID:   created.GatewayOrderID,
		GatewayPaymentID: paymentID,
		Signature:        signature,
	})
	if err != nil {
		t.Fatalf("verify payment failed: %v", err)
	}
	return payment
}

func (e *serviceTestEnv) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	var user models.User
	if err := e.db.First(&user, id).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	return &user
}

func (e *serviceTestEnv) reloadOrder(t *testing.T, id uint) *models.Order {
	t.Helper()
	var order models.Order
	if err := e.db.First(&order, id).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return &order
}

func (e *serviceTestEnv) commissionsForOrder(t *testing.T, orderID uint) []models.Commission {
	t.Helper()
	var rows []models.Commission
	if err := e.db.Where("order_id = ?", orderID).Order("level asc").Find(&rows).Error; err != nil {
		t.Fatalf("load commissions failed: %v", err)
	}
	return rows
}

func mustDecimal(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %s failed: %v", raw, err)
	}
	return value
}

func assertMoney(t *testing.T, label string, got models.Money, want string) {
	t.Helper()
	if !got.Decimal.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: want %s, got %s", label, want, got.String())
	}
}
