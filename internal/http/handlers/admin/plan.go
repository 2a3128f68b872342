package admin

import (
	"github.com/hostdesk/internal/constants"
	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PlanRequest 套餐创建/更新请求
type PlanRequest struct {
	Name                     string          `json:"name" binding:"required"`
	Slug                     string          `json:"slug"`
	Description              string          `json:"description"`
	CPUCores                 int             `json:"cpu_cores"`
	RAMMB                    int             `json:"ram_mb"`
	DiskGB                   int             `json:"disk_gb"`
	BandwidthGB              int             `json:"bandwidth_gb"`
	MonthlyPrice             decimal.Decimal `json:"monthly_price"`
	QuarterlyDiscountPercent decimal.Decimal `json:"quarterly_discount_percent"`
	YearlyDiscountPercent    decimal.Decimal `json:"yearly_discount_percent"`
	IsActive                 *bool           `json:"is_active"`
	SortOrder                int             `json:"sort_order"`
}

func (r PlanRequest) toInput() service.PlanInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.PlanInput{
		Name:                     r.Name,
		Slug:                     r.Slug,
		Description:              r.Description,
		CPUCores:                 r.CPUCores,
		RAMMB:                    r.RAMMB,
		DiskGB:                   r.DiskGB,
		BandwidthGB:              r.BandwidthGB,
		MonthlyPrice:             r.MonthlyPrice,
		QuarterlyDiscountPercent: r.QuarterlyDiscountPercent,
		YearlyDiscountPercent:    r.YearlyDiscountPercent,
		IsActive:                 active,
		SortOrder:                r.SortOrder,
	}
}

// ListPlans 后台套餐列表（含下架）
func (h *Handler) ListPlans(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	plans, total, err := h.PlanService.ListAdmin(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.plan_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, plans, handlershared.BuildPagination(page, pageSize, total))
}

// CreatePlan 创建套餐
func (h *Handler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	plan, err := h.PlanService.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.plan_save_failed")
		return
	}
	h.recordAudit(c, constants.AuditActionPlanSaved, constants.AuditTargetPlan, plan.ID, models.JSON{"slug": plan.Slug, "created": true})
	response.Success(c, plan)
}

// UpdatePlan 更新套餐
func (h *Handler) UpdatePlan(c *gin.Context) {
	planID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.plan_id_invalid", nil)
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	plan, err := h.PlanService.Update(planID, req.toInput())
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.plan_save_failed")
		return
	}
	h.recordAudit(c, constants.AuditActionPlanSaved, constants.AuditTargetPlan, plan.ID, models.JSON{"slug": plan.Slug})
	response.Success(c, plan)
}

// DeletePlan 删除套餐
func (h *Handler) DeletePlan(c *gin.Context) {
	planID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.plan_id_invalid", nil)
		return
	}
	if err := h.PlanService.Delete(planID); err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.plan_delete_failed")
		return
	}
	h.recordAudit(c, constants.AuditActionPlanDeleted, constants.AuditTargetPlan, planID, nil)
	response.Success(c, nil)
}
