package main

import (
	"os"
	"strings"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type planSeed struct {
	Name        string
	Slug        string
	Description string
	CPU         int
	RAMMB       int
	DiskGB      int
	BandwidthGB int
	Monthly     string
	Quarterly   string
	Yearly      string
	SortOrder   int
}

type userSeed struct {
	Email       string
	DisplayName string
	Role        string
	Referrer    string // 推荐人邮箱
}

func main() {
	_ = godotenv.Load()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.Migrate(cfg.Database.Migration, cfg.Database.Driver, cfg.Database.DSN); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 套餐
	plans := []planSeed{
		{Name: "Starter VPS", Slug: "starter", Description: "1 vCPU / 1 GB", CPU: 1, RAMMB: 1024, DiskGB: 25, BandwidthGB: 1000, Monthly: "399", Quarterly: "5", Yearly: "15", SortOrder: 10},
		{Name: "Standard VPS", Slug: "standard", Description: "2 vCPU / 4 GB", CPU: 2, RAMMB: 4096, DiskGB: 80, BandwidthGB: 3000, Monthly: "999", Quarterly: "5", Yearly: "15", SortOrder: 20},
		{Name: "Performance VPS", Slug: "performance", Description: "4 vCPU / 8 GB", CPU: 4, RAMMB: 8192, DiskGB: 160, BandwidthGB: 0, Monthly: "1999", Quarterly: "8", Yearly: "20", SortOrder: 30},
	}
	for _, seed := range plans {
		var existing models.Plan
		if err := models.DB.Where("slug = ?", seed.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Plan already exists: %s", seed.Slug)
			continue
		}
		plan := models.Plan{
			Name:                     seed.Name,
			Slug:                     seed.Slug,
			Description:              seed.Description,
			CPUCores:                 seed.CPU,
			RAMMB:                    seed.RAMMB,
			DiskGB:                   seed.DiskGB,
			BandwidthGB:              seed.BandwidthGB,
			MonthlyPrice:             mustMoney(seed.Monthly),
			QuarterlyDiscountPercent: mustMoney(seed.Quarterly),
			YearlyDiscountPercent:    mustMoney(seed.Yearly),
			IsActive:                 true,
			SortOrder:                seed.SortOrder,
		}
		if err := models.DB.Create(&plan).Error; err != nil {
			stdLog.Printf("Failed to create plan %s: %v", seed.Slug, err)
			continue
		}
		stdLog.Printf("Created plan: %s", seed.Slug)
	}

	// 演示账号：一条三级推荐链 + 一名客服
	password := strings.TrimSpace(os.Getenv("HD_SEED_PASSWORD"))
	if password == "" {
		password = "Passw0rd!demo"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}
	users := []userSeed{
		{Email: "support@hostdesk.local", DisplayName: "Support", Role: constants.UserRoleSupport},
		{Email: "alice@hostdesk.local", DisplayName: "Alice", Role: constants.UserRoleCustomer},
		{Email: "bob@hostdesk.local", DisplayName: "Bob", Role: constants.UserRoleCustomer, Referrer: "alice@hostdesk.local"},
		{Email: "carol@hostdesk.local", DisplayName: "Carol", Role: constants.UserRoleCustomer, Referrer: "bob@hostdesk.local"},
		{Email: "dave@hostdesk.local", DisplayName: "Dave", Role: constants.UserRoleCustomer, Referrer: "carol@hostdesk.local"},
	}
	for _, seed := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", seed.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", seed.Email)
			continue
		}
		user := models.User{
			Email:        seed.Email,
			PasswordHash: string(hash),
			DisplayName:  seed.DisplayName,
			Role:         seed.Role,
			Status:       constants.UserStatusActive,
		}
		if seed.Referrer != "" {
			var referrer models.User
			if err := models.DB.Where("email = ?", seed.Referrer).First(&referrer).Error; err != nil {
				stdLog.Printf("Skip referrer for %s: %v", seed.Email, err)
			} else {
				ancestors := referrer.AncestorIDs()
				user.ReferredByID = uintPtr(referrer.ID)
				user.ReferrerL2ID = nonZero(ancestors[0])
				user.ReferrerL3ID = nonZero(ancestors[1])
			}
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", seed.Email, err)
			continue
		}
		for level, ancestorID := range user.AncestorIDs() {
			if ancestorID == 0 {
				continue
			}
			referral := models.Referral{
				ReferrerID: ancestorID,
				ReferredID: user.ID,
				Level:      level + 1,
			}
			if err := models.DB.Create(&referral).Error; err != nil {
				stdLog.Printf("Failed to create level %d referral for %s: %v", level+1, seed.Email, err)
			}
		}
		stdLog.Printf("Created user: %s (%s)", seed.Email, seed.Role)
	}

	stdLog.Printf("Seed completed")
}

func mustMoney(raw string) models.Money {
	money, err := models.NewMoneyFromString(raw)
	if err != nil {
		panic(err)
	}
	return money
}

func uintPtr(v uint) *uint {
	return &v
}

func nonZero(v uint) *uint {
	if v == 0 {
		return nil
	}
	return &v
}
