package service

import (
	"fmt"
	"math"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"

	"github.com/shopspring/decimal"
)

const (
	affiliateRateMin         = 0
	affiliateRateMax         = 100
	affiliateHoldDaysMax     = 3650
	affiliateFreeDaysMax     = 3650
	affiliateDeductionPctMax = 100
)

// AffiliateSetting 推广计划配置
type AffiliateSetting struct {
	Enabled                        bool                 `json:"enabled"`
	JoiningFee                     float64              `json:"joining_fee"`
	FreeActivationOnServerPurchase bool                 `json:"free_activation_on_server_purchase"`
	FreeActivationDays             int                  `json:"free_activation_days"`
	HoldDays                       int                  `json:"hold_days"`
	MinPayoutAmount                float64              `json:"min_payout_amount"`
	TDSPercent                     float64              `json:"tds_percent"`
	GSTPercent                     float64              `json:"gst_percent"`
	Rates                          map[string][]float64 `json:"rates"`
}

// affiliateRateOrderTypes 参与佣金分配的订单类型
var affiliateRateOrderTypes = []string{
	constants.OrderTypeServerPurchase,
	constants.OrderTypeAffiliateSubscription,
}

// AffiliateSettingFromConfig 以配置文件为默认值构建推广配置
func AffiliateSettingFromConfig(cfg config.AffiliateConfig) AffiliateSetting {
	rates := make(map[string][]float64, len(cfg.Rates))
	for key, levels := range cfg.Rates {
		rates[key] = append([]float64(nil), levels...)
	}
	return NormalizeAffiliateSetting(AffiliateSetting{
		Enabled:                        cfg.Enabled,
		JoiningFee:                     cfg.JoiningFee,
		FreeActivationOnServerPurchase: cfg.FreeActivationOnServerPurchase,
		FreeActivationDays:             cfg.FreeActivationDays,
		HoldDays:                       cfg.HoldDays,
		MinPayoutAmount:                cfg.MinPayoutAmount,
		TDSPercent:                     cfg.TDSPercent,
		GSTPercent:                     cfg.GSTPercent,
		Rates:                          rates,
	})
}

// NormalizeAffiliateSetting 归一化推广配置
func NormalizeAffiliateSetting(setting AffiliateSetting) AffiliateSetting {
	setting.JoiningFee = clampFloat(roundAffiliateDecimal(setting.JoiningFee), 0, math.MaxFloat64)
	setting.FreeActivationDays = clampInt(setting.FreeActivationDays, 0, affiliateFreeDaysMax)
	setting.HoldDays = clampInt(setting.HoldDays, 0, affiliateHoldDaysMax)
	setting.MinPayoutAmount = clampFloat(roundAffiliateDecimal(setting.MinPayoutAmount), 0, math.MaxFloat64)
	setting.TDSPercent = clampFloat(roundAffiliateDecimal(setting.TDSPercent), 0, affiliateDeductionPctMax)
	setting.GSTPercent = clampFloat(roundAffiliateDecimal(setting.GSTPercent), 0, affiliateDeductionPctMax)

	rates := make(map[string][]float64, len(affiliateRateOrderTypes))
	for _, orderType := range affiliateRateOrderTypes {
		levels := make([]float64, constants.ReferralMaxLevel)
		for i, value := range setting.Rates[orderType] {
			if i >= constants.ReferralMaxLevel {
				break
			}
			levels[i] = clampFloat(roundAffiliateDecimal(value), affiliateRateMin, affiliateRateMax)
		}
		rates[orderType] = levels
	}
	setting.Rates = rates
	return setting
}

// ValidateAffiliateSetting 校验推广配置（在归一化之前调用，拒绝越界值）
func ValidateAffiliateSetting(setting AffiliateSetting) error {
	if setting.JoiningFee < 0 {
		return fmt.Errorf("%w: joining fee must not be negative", ErrAffiliateConfigInvalid)
	}
	if setting.MinPayoutAmount < 0 {
		return fmt.Errorf("%w: min payout amount must not be negative", ErrAffiliateConfigInvalid)
	}
	if setting.HoldDays < 0 || setting.HoldDays > affiliateHoldDaysMax {
		return fmt.Errorf("%w: hold days must be within 0-%d", ErrAffiliateConfigInvalid, affiliateHoldDaysMax)
	}
	if setting.FreeActivationDays < 0 || setting.FreeActivationDays > affiliateFreeDaysMax {
		return fmt.Errorf("%w: free activation days must be within 0-%d", ErrAffiliateConfigInvalid, affiliateFreeDaysMax)
	}
	if setting.TDSPercent < 0 || setting.GSTPercent < 0 || setting.TDSPercent+setting.GSTPercent >= affiliateDeductionPctMax {
		return fmt.Errorf("%w: payout deductions must be non-negative and sum below 100", ErrAffiliateConfigInvalid)
	}
	for orderType, levels := range setting.Rates {
		if !isAffiliateRateOrderType(orderType) {
			return fmt.Errorf("%w: unknown order type %q", ErrAffiliateConfigInvalid, orderType)
		}
		if len(levels) > constants.ReferralMaxLevel {
			return fmt.Errorf("%w: at most %d levels", ErrAffiliateConfigInvalid, constants.ReferralMaxLevel)
		}
		for _, rate := range levels {
			if rate < affiliateRateMin || rate > affiliateRateMax {
				return fmt.Errorf("%w: rate must be within 0-100", ErrAffiliateConfigInvalid)
			}
		}
	}
	return nil
}

// RateFor 返回订单类型在指定层级（1..3）的佣金比例
func (s AffiliateSetting) RateFor(orderType string, level int) decimal.Decimal {
	levels := s.Rates[orderType]
	if level < 1 || level > len(levels) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(levels[level-1]).Round(2)
}

// JoiningFeeDecimal 加盟费
func (s AffiliateSetting) JoiningFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.JoiningFee).Round(2)
}

// MinPayoutDecimal 最低提现金额
func (s AffiliateSetting) MinPayoutDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.MinPayoutAmount).Round(2)
}

// AffiliateSettingToMap 将推广配置转换为 settings 存储结构
func AffiliateSettingToMap(setting AffiliateSetting) map[string]interface{} {
	normalized := NormalizeAffiliateSetting(setting)
	rates := make(map[string]interface{}, len(normalized.Rates))
	for key, levels := range normalized.Rates {
		items := make([]interface{}, 0, len(levels))
		for _, value := range levels {
			items = append(items, value)
		}
		rates[key] = items
	}
	return map[string]interface{}{
		"enabled":                            normalized.Enabled,
		"joining_fee":                        normalized.JoiningFee,
		"free_activation_on_server_purchase": normalized.FreeActivationOnServerPurchase,
		"free_activation_days":               normalized.FreeActivationDays,
		"hold_days":                          normalized.HoldDays,
		"min_payout_amount":                  normalized.MinPayoutAmount,
		"tds_percent":                        normalized.TDSPercent,
		"gst_percent":                        normalized.GSTPercent,
		"rates":                              rates,
	}
}

func affiliateSettingFromJSON(raw models.JSON, fallback AffiliateSetting) AffiliateSetting {
	result := fallback
	result.Rates = make(map[string][]float64, len(fallback.Rates))
	for key, levels := range fallback.Rates {
		result.Rates[key] = append([]float64(nil), levels...)
	}

	if value, ok := raw["enabled"]; ok {
		result.Enabled = parseSettingBool(value)
	}
	if value, ok := raw["free_activation_on_server_purchase"]; ok {
		result.FreeActivationOnServerPurchase = parseSettingBool(value)
	}
	floatFields := map[string]*float64{
		"joining_fee":       &result.JoiningFee,
		"min_payout_amount": &result.MinPayoutAmount,
		"tds_percent":       &result.TDSPercent,
		"gst_percent":       &result.GSTPercent,
	}
	for key, target := range floatFields {
		if value, ok := raw[key]; ok {
			if parsed, err := parseSettingFloat(value); err == nil {
				*target = parsed
			}
		}
	}
	intFields := map[string]*int{
		"free_activation_days": &result.FreeActivationDays,
		"hold_days":            &result.HoldDays,
	}
	for key, target := range intFields {
		if value, ok := raw[key]; ok {
			if parsed, err := parseSettingInt(value); err == nil {
				*target = parsed
			}
		}
	}
	if value, ok := raw["rates"].(map[string]interface{}); ok {
		for orderType, levelsRaw := range value {
			items, ok := levelsRaw.([]interface{})
			if !ok {
				continue
			}
			levels := make([]float64, 0, len(items))
			for _, item := range items {
				parsed, err := parseSettingFloat(item)
				if err != nil {
					parsed = 0
				}
				levels = append(levels, parsed)
			}
			result.Rates[orderType] = levels
		}
	}
	return NormalizeAffiliateSetting(result)
}

// GetAffiliateSetting 获取推广设置（优先 settings，空时回退配置默认值）
func (s *SettingService) GetAffiliateSetting() (AffiliateSetting, error) {
	if s == nil {
		return NormalizeAffiliateSetting(AffiliateSetting{}), nil
	}
	fallback := s.affiliateDefaults
	value, err := s.GetByKey(constants.SettingKeyAffiliateConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return affiliateSettingFromJSON(value, fallback), nil
}

// UpdateAffiliateSetting 更新推广设置
func (s *SettingService) UpdateAffiliateSetting(setting AffiliateSetting) (AffiliateSetting, error) {
	if err := ValidateAffiliateSetting(setting); err != nil {
		return s.affiliateDefaults, err
	}
	normalized := NormalizeAffiliateSetting(setting)
	if _, err := s.Update(constants.SettingKeyAffiliateConfig, AffiliateSettingToMap(normalized)); err != nil {
		return s.affiliateDefaults, err
	}
	return normalized, nil
}

func isAffiliateRateOrderType(orderType string) bool {
	for _, item := range affiliateRateOrderTypes {
		if item == orderType {
			return true
		}
	}
	return false
}

func roundAffiliateDecimal(value float64) float64 {
	return math.Round(value*100) / 100
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
