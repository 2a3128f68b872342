package service

import (
	"context"
	"strings"
	"time"

	"github.com/hostdesk/internal/cache"
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"
)

// UserService 后台用户管理服务
type UserService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户管理服务
func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// AdminUpdateUserInput 后台更新用户输入
type AdminUpdateUserInput struct {
	Role   *string
	Status *string
}

// List 后台用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	filter.Role = strings.TrimSpace(filter.Role)
	filter.Status = strings.TrimSpace(filter.Status)
	return s.repo.List(filter)
}

// Get 后台用户详情
func (s *UserService) Get(userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Update 后台更新角色与状态；变更后旧 Token 失效
func (s *UserService) Update(operatorID, userID uint, input AdminUpdateUserInput) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	changed := false
	if input.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*input.Role))
		if !isValidUserRole(role) {
			return nil, ErrUserRoleInvalid
		}
		if role != user.Role {
			if operatorID == userID {
				return nil, ErrForbidden
			}
			user.Role = role
			changed = true
		}
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
			return nil, ErrUserStatusInvalid
		}
		if status != user.Status {
			if operatorID == userID {
				return nil, ErrForbidden
			}
			user.Status = status
			changed = true
		}
	}
	if !changed {
		return user, nil
	}
	user.TokenVersion++
	user.UpdatedAt = time.Now()
	if err := s.repo.UpdateFields(user.ID, map[string]interface{}{
		"role":          user.Role,
		"status":        user.Status,
		"token_version": user.TokenVersion,
		"updated_at":    user.UpdatedAt,
	}); err != nil {
		return nil, err
	}
	if err := cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("user_auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}
	logger.Infow("admin_user_updated", "operator_id", operatorID, "user_id", user.ID, "role", user.Role, "status", user.Status)
	return user, nil
}

func isValidUserRole(role string) bool {
	switch role {
	case constants.UserRoleCustomer, constants.UserRoleAdmin, constants.UserRoleSupport:
		return true
	default:
		return false
	}
}
