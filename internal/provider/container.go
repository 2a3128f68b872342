package provider

import (
	"strings"

	"github.com/hostdesk/internal/authz"
	"github.com/hostdesk/internal/cache"
	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/queue"
	"github.com/hostdesk/internal/repository"
	"github.com/hostdesk/internal/security"
	"github.com/hostdesk/internal/service"
	"github.com/hostdesk/internal/storage"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo      repository.UserRepository
	PlanRepo      repository.PlanRepository
	ServerRepo    repository.ServerRepository
	OrderRepo     repository.OrderRepository
	InvoiceRepo   repository.InvoiceRepository
	PaymentRepo   repository.PaymentRepository
	AffiliateRepo repository.AffiliateRepository
	SettingRepo   repository.SettingRepository
	SupportRepo   repository.SupportRepository
	LoginLogRepo  repository.UserLoginLogRepository
	AuditLogRepo  repository.StaffAuditLogRepository

	// Services
	AuthzService        *authz.Service
	SettingService      *service.SettingService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
	ReferralService     *service.ReferralService
	UserAuthService     *service.UserAuthService
	UserService         *service.UserService
	PlanService         *service.PlanService
	ServerService       *service.ServerService
	InvoiceService      *service.InvoiceService
	AffiliateService    *service.AffiliateService
	CommissionService   *service.CommissionService
	PayoutService       *service.PayoutService
	OrderService        *service.OrderService
	PaymentService      *service.PaymentService
	UploadService       *service.UploadService
	SupportService      *service.SupportService
	NotificationService *service.NotificationService
	UserLoginLogService *service.UserLoginLogService
	StaffAuditService   *service.StaffAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端；未启用时为空实现
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.PlanRepo = repository.NewPlanRepository(db)
	c.ServerRepo = repository.NewServerRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.InvoiceRepo = repository.NewInvoiceRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.AffiliateRepo = repository.NewAffiliateRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.SupportRepo = repository.NewSupportRepository(db)
	c.LoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuditLogRepo = repository.NewStaffAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.UserLoginLogService = service.NewUserLoginLogService(c.LoginLogRepo)
	c.StaffAuditService = service.NewStaffAuditService(c.AuditLogRepo)
	c.SettingService = service.NewSettingService(c.SettingRepo, c.Config.Affiliate)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ReferralService = service.NewReferralService(c.AffiliateRepo, c.UserRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.ReferralService, c.CaptchaService)
	c.UserService = service.NewUserService(c.UserRepo)
	c.PlanService = service.NewPlanService(c.PlanRepo)
	c.ServerService = service.NewServerService(c.ServerRepo)
	c.InvoiceService = service.NewInvoiceService(c.InvoiceRepo)
	c.AffiliateService = service.NewAffiliateService(c.AffiliateRepo, c.UserRepo, c.SettingService, c.ReferralService)
	c.CommissionService = service.NewCommissionService(c.AffiliateRepo, c.UserRepo, c.PaymentRepo, c.SettingService)
	c.PayoutService = service.NewPayoutService(c.AffiliateRepo, c.CommissionService, c.SettingService, c.QueueClient)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.PlanRepo, c.AffiliateRepo, c.InvoiceService, c.SettingService, c.QueueClient, c.Config.Billing)
	c.PaymentService = service.NewPaymentService(
		c.OrderRepo,
		c.PaymentRepo,
		c.InvoiceService,
		c.ServerService,
		c.AffiliateService,
		c.ReferralService,
		c.CommissionService,
		c.SettingService,
		c.QueueClient,
		service.RazorpayConfigFrom(c.Config.Razorpay),
	)
	c.UploadService = service.NewUploadService(c.Config.Upload, c.initAttachmentStore())
	c.SupportService = service.NewSupportService(c.SupportRepo, c.UserRepo, c.UploadService, c.QueueClient)
	c.NotificationService = service.NewNotificationService(
		c.UserRepo,
		c.OrderRepo,
		c.AffiliateRepo,
		c.SupportRepo,
		c.EmailService,
		"",
		c.Config.Billing.Currency,
	)
}

// initAttachmentStore 未配置密钥时附件上传关闭，不阻断启动
func (c *Container) initAttachmentStore() *storage.Store {
	key := strings.TrimSpace(c.Config.Upload.EncryptionKey)
	if key == "" {
		logger.Warnw("provider_attachment_store_disabled", "reason", "upload.encryption_key empty")
		return nil
	}
	cipher, err := security.NewCipher([]byte(key))
	if err != nil {
		logger.Errorw("provider_init_attachment_cipher_failed", "error", err)
		return nil
	}
	store, err := storage.NewStore(c.Config.Upload.Dir, cipher)
	if err != nil {
		logger.Errorw("provider_init_attachment_store_failed", "dir", c.Config.Upload.Dir, "error", err)
		return nil
	}
	return store
}
