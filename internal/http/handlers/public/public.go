package public

import (
	"strings"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicPlanView 套餐展示（附各周期报价）
type PublicPlanView struct {
	models.Plan
	Quotes []service.PlanQuote `json:"quotes"`
}

// GetConfig 获取前台公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	affiliate, err := h.SettingService.GetAffiliateSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"currency":         strings.ToUpper(h.Config.Billing.Currency),
		"gst_percent":      h.Config.Billing.GSTPercent,
		"razorpay_key_id":  h.Config.Razorpay.KeyID,
		"billing_cycles":   []string{constants.BillingCycleMonthly, constants.BillingCycleQuarterly, constants.BillingCycleYearly},
		"payment_expire":   h.Config.Billing.PaymentExpireMinutes,
		"upload_enabled":   h.UploadService.Enabled(),
		"upload_max_size":  h.Config.Upload.MaxSize,
		"captcha_login":    h.CaptchaService.SceneEnabled(constants.CaptchaSceneLogin),
		"captcha_register": h.CaptchaService.SceneEnabled(constants.CaptchaSceneRegister),
		"affiliate": gin.H{
			"enabled":              affiliate.Enabled,
			"joining_fee":          models.NewMoneyFromDecimal(affiliate.JoiningFeeDecimal()),
			"min_payout_amount":    models.NewMoneyFromDecimal(affiliate.MinPayoutDecimal()),
			"free_activation":      affiliate.FreeActivationOnServerPurchase,
			"free_activation_days": affiliate.FreeActivationDays,
			"rates":                affiliate.Rates,
		},
	})
}

// ListPlans 获取上架套餐列表
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.PlanService.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.plan_fetch_failed", err)
		return
	}
	items := make([]PublicPlanView, 0, len(plans))
	for i := range plans {
		items = append(items, buildPublicPlanView(&plans[i]))
	}
	response.Success(c, items)
}

// GetPlan 获取套餐详情（ID 或 slug）
func (h *Handler) GetPlan(c *gin.Context) {
	plan, err := h.PlanService.GetPublic(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.plan_fetch_failed")
		return
	}
	response.Success(c, buildPublicPlanView(plan))
}

// GetImageCaptcha 获取图片验证码
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.captcha_generate_failed")
		return
	}
	response.Success(c, challenge)
}

func buildPublicPlanView(plan *models.Plan) PublicPlanView {
	view := PublicPlanView{Plan: *plan}
	for _, cycle := range []string{constants.BillingCycleMonthly, constants.BillingCycleQuarterly, constants.BillingCycleYearly} {
		quote, err := service.QuotePlan(plan, cycle)
		if err != nil {
			continue
		}
		view.Quotes = append(view.Quotes, *quote)
	}
	return view
}
