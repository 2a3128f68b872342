package cache

import (
	"context"
	"time"

	"github.com/hostdesk/internal/models"
)

const (
	publicPlansKey = "plans:public"
	publicPlansTTL = 5 * time.Minute
)

// GetPublicPlans 读取上架套餐缓存
func GetPublicPlans(ctx context.Context) ([]models.Plan, bool, error) {
	var plans []models.Plan
	hit, err := GetJSON(ctx, publicPlansKey, &plans)
	if err != nil || !hit {
		return nil, hit, err
	}
	return plans, true, nil
}

// SetPublicPlans 写入上架套餐缓存
func SetPublicPlans(ctx context.Context, plans []models.Plan) error {
	return SetJSON(ctx, publicPlansKey, plans, publicPlansTTL)
}

// InvalidatePublicPlans 套餐变更后清除缓存
func InvalidatePublicPlans(ctx context.Context) error {
	return Del(ctx, publicPlansKey)
}
