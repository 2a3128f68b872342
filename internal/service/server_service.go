package service

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"

	"gorm.io/gorm"
)

// ServerService 服务器开通记录服务
type ServerService struct {
	repo repository.ServerRepository
}

// NewServerService 创建服务器服务
func NewServerService(repo repository.ServerRepository) *ServerService {
	return &ServerService{repo: repo}
}

// AdminUpdateServerInput 后台更新服务器输入
type AdminUpdateServerInput struct {
	Status    *string
	IPAddress *string
	Hostname  *string
}

// serverTransitions 服务器状态机
var serverTransitions = map[string][]string{
	constants.ServerStatusProvisioning: {constants.ServerStatusActive, constants.ServerStatusTerminated},
	constants.ServerStatusActive:       {constants.ServerStatusSuspended, constants.ServerStatusTerminated},
	constants.ServerStatusSuspended:    {constants.ServerStatusActive, constants.ServerStatusTerminated},
}

// CreateFromOrderTx 服务器订单支付后创建开通记录（同一订单只创建一次）
func (s *ServerService) CreateFromOrderTx(tx *gorm.DB, order *models.Order, now time.Time) (*models.Server, error) {
	if order == nil || order.PlanID == nil {
		return nil, fmt.Errorf("%w: server order without plan", ErrOrderTypeInvalid)
	}
	repoTx := s.repo.WithTx(tx)
	existing, err := repoTx.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	months, err := BillingCycleMonths(order.BillingCycle)
	if err != nil {
		return nil, err
	}
	expiresAt := now.AddDate(0, months, 0)
	server := &models.Server{
		UserID:       order.UserID,
		OrderID:      order.ID,
		PlanID:       *order.PlanID,
		Hostname:     order.Hostname,
		Region:       order.Region,
		OSImage:      order.OSImage,
		Status:       constants.ServerStatusProvisioning,
		BillingCycle: order.BillingCycle,
		ExpiresAt:    &expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repoTx.Create(server); err != nil {
		return nil, err
	}
	logger.Infow("server_provisioning_created", "server_id", server.ID, "order_id", order.ID, "user_id", order.UserID)
	return server, nil
}

// ListForUser 用户服务器列表
func (s *ServerService) ListForUser(userID uint, status string, page, pageSize int) ([]models.Server, int64, error) {
	if userID == 0 {
		return []models.Server{}, 0, nil
	}
	return s.repo.List(repository.ServerListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.TrimSpace(status),
	})
}

// GetForUser 用户服务器详情
func (s *ServerService) GetForUser(userID, serverID uint) (*models.Server, error) {
	server, err := s.GetForAdmin(serverID)
	if err != nil {
		return nil, err
	}
	if server.UserID != userID {
		return nil, ErrNotFound
	}
	return server, nil
}

// ListAdmin 后台服务器列表
func (s *ServerService) ListAdmin(filter repository.ServerListFilter) ([]models.Server, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.repo.List(filter)
}

// GetForAdmin 后台服务器详情
func (s *ServerService) GetForAdmin(serverID uint) (*models.Server, error) {
	if serverID == 0 {
		return nil, ErrNotFound
	}
	server, err := s.repo.GetByID(serverID)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, ErrNotFound
	}
	return server, nil
}

// AdminUpdate 后台更新服务器状态、IP 与主机名
func (s *ServerService) AdminUpdate(serverID uint, input AdminUpdateServerInput) (*models.Server, error) {
	server, err := s.GetForAdmin(serverID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if input.Hostname != nil {
		hostname := strings.ToLower(strings.TrimSpace(*input.Hostname))
		if hostname == "" || len(hostname) > 253 || !hostnamePattern.MatchString(hostname) {
			return nil, fmt.Errorf("%w: hostname", ErrInvalidInput)
		}
		server.Hostname = hostname
	}
	if input.IPAddress != nil {
		ip := strings.TrimSpace(*input.IPAddress)
		if ip != "" && net.ParseIP(ip) == nil {
			return nil, fmt.Errorf("%w: ip address", ErrInvalidInput)
		}
		server.IPAddress = ip
	}
	if input.Status != nil {
		target := strings.ToLower(strings.TrimSpace(*input.Status))
		if target != server.Status {
			if !canTransitServer(server.Status, target) {
				return nil, ErrServerStatusInvalid
			}
			switch target {
			case constants.ServerStatusActive:
				if server.ActivatedAt == nil {
					server.ActivatedAt = &now
				}
			case constants.ServerStatusTerminated:
				server.TerminatedAt = &now
			}
			server.Status = target
		}
	}
	server.UpdatedAt = now
	if err := s.repo.Update(server); err != nil {
		return nil, err
	}
	logger.Infow("server_updated", "server_id", server.ID, "status", server.Status, "ip_address", server.IPAddress)
	return server, nil
}

func canTransitServer(from, to string) bool {
	for _, next := range serverTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
