package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hostdesk/internal/authz"
	"github.com/hostdesk/internal/cache"
	"github.com/hostdesk/internal/config"
	adminhandlers "github.com/hostdesk/internal/http/handlers/admin"
	publichandlers "github.com/hostdesk/internal/http/handlers/public"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/metrics"
	"github.com/hostdesk/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "hd"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	registerRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:register", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware())
	}

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/plans", publicHandler.ListPlans)
			public.GET("/plans/:slug", publicHandler.GetPlan)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户认证接口（客户与员工共用）
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, registerRule, KeyByIP), publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 支付网关回调（签名校验在服务层完成）
		apiV1.POST("/payments/razorpay/webhook", publicHandler.RazorpayWebhook)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/users/me", publicHandler.GetCurrentUser)
			user.PUT("/users/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/users/me/password", publicHandler.ChangeUserPassword)
			user.GET("/users/me/login-logs", publicHandler.ListMyLoginLogs)

			// 服务器、订单与发票
			user.GET("/servers", publicHandler.ListServers)
			user.GET("/servers/:id", publicHandler.GetServer)
			user.POST("/orders/server", publicHandler.CreateServerOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			user.GET("/invoices", publicHandler.ListInvoices)
			user.GET("/invoices/:id", publicHandler.GetInvoice)
			user.POST("/payments", publicHandler.CreatePayment)
			user.POST("/payments/verify", publicHandler.VerifyPayment)

			// 推广中心
			user.GET("/referrals/dashboard", publicHandler.GetAffiliateDashboard)
			user.POST("/referrals/activate", publicHandler.ActivateAffiliate)
			user.GET("/referrals/tree", publicHandler.GetReferralTree)
			user.GET("/referrals/commissions", publicHandler.ListMyCommissions)
			user.GET("/referrals/payouts", publicHandler.ListMyPayouts)
			user.POST("/referrals/payouts", publicHandler.RequestPayout)

			// 工单
			user.POST("/support/tickets", publicHandler.OpenTicket)
			user.GET("/support/tickets", publicHandler.ListMyTickets)
			user.GET("/support/tickets/:id", publicHandler.GetMyTicket)
			user.POST("/support/tickets/:id/replies", publicHandler.ReplyMyTicket)
			user.POST("/support/tickets/:id/close", publicHandler.CloseMyTicket)
			user.POST("/support/tickets/:id/attachments", publicHandler.UploadMyTicketAttachment)
			user.GET("/support/attachments/:id", publicHandler.DownloadMyAttachment)
		}

		// 员工接口（管理员/客服，按 Casbin 策略授权）
		admin := apiV1.Group("/admin")
		admin.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), StaffRBACMiddleware(c.AuthzService))
		{
			// 用户管理
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PATCH("/users/:id", adminHandler.UpdateUser)
			admin.GET("/users/:id/referrals", adminHandler.GetUserReferrals)
			admin.GET("/login-logs", adminHandler.ListLoginLogs)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)

			// 套餐管理
			admin.GET("/plans", adminHandler.ListPlans)
			admin.POST("/plans", adminHandler.CreatePlan)
			admin.PUT("/plans/:id", adminHandler.UpdatePlan)
			admin.DELETE("/plans/:id", adminHandler.DeletePlan)

			// 服务器、订单、发票与支付
			admin.GET("/servers", adminHandler.ListServers)
			admin.GET("/servers/:id", adminHandler.GetServer)
			admin.PATCH("/servers/:id", adminHandler.UpdateServer)
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.POST("/orders/:id/cancel", adminHandler.CancelOrder)
			admin.GET("/invoices", adminHandler.ListInvoices)
			admin.GET("/invoices/:id", adminHandler.GetInvoice)
			admin.GET("/payments", adminHandler.ListPayments)
			admin.GET("/payments/:id", adminHandler.GetPayment)

			// 推广、佣金与提现
			admin.GET("/affiliates", adminHandler.ListAffiliates)
			admin.POST("/affiliates/:id/activate", adminHandler.ActivateAffiliate)
			admin.POST("/affiliates/:id/deactivate", adminHandler.DeactivateAffiliate)
			admin.GET("/commissions", adminHandler.ListCommissions)
			admin.POST("/commissions/:id/approve", adminHandler.ApproveCommission)
			admin.POST("/commissions/:id/cancel", adminHandler.CancelCommission)
			admin.GET("/payouts", adminHandler.ListPayouts)
			admin.GET("/payouts/:id", adminHandler.GetPayout)
			admin.POST("/payouts/:id/review", adminHandler.ReviewPayout)
			admin.GET("/settings/affiliate", adminHandler.GetAffiliateSetting)
			admin.PUT("/settings/affiliate", adminHandler.UpdateAffiliateSetting)

			// 工单
			admin.GET("/tickets", adminHandler.ListTickets)
			admin.GET("/tickets/:id", adminHandler.GetTicket)
			admin.PATCH("/tickets/:id", adminHandler.UpdateTicket)
			admin.POST("/tickets/:id/replies", adminHandler.ReplyTicket)
			admin.POST("/tickets/:id/assign", adminHandler.AssignTicket)
			admin.POST("/tickets/:id/attachments", adminHandler.UploadTicketAttachment)
			admin.GET("/attachments/:id", adminHandler.DownloadAttachment)

			// 权限管理
			admin.GET("/authz/me", adminHandler.GetAuthzMe)
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			admin.GET("/authz/users/:id/roles", adminHandler.GetAuthzUserRoles)
			admin.PUT("/authz/users/:id/roles", adminHandler.SetAuthzUserRoles)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
