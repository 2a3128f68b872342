package authz

import (
	"errors"
	"fmt"
)

// ErrRoleImmutable 内置角色不可删除
var ErrRoleImmutable = errors.New("builtin role is immutable")

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵，角色名与账号角色一致
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "support",
			Policies: []Policy{
				{Object: "/admin/tickets", Action: "GET"},
				{Object: "/admin/tickets/:id", Action: "GET"},
				{Object: "/admin/tickets/:id", Action: "PATCH"},
				{Object: "/admin/tickets/:id/replies", Action: "POST"},
				{Object: "/admin/tickets/:id/assign", Action: "POST"},
				{Object: "/admin/tickets/:id/attachments", Action: "POST"},
				{Object: "/admin/attachments/:id", Action: "GET"},
				{Object: "/admin/users", Action: "GET"},
				{Object: "/admin/users/:id", Action: "GET"},
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "GET"},
				{Object: "/admin/invoices", Action: "GET"},
				{Object: "/admin/invoices/:id", Action: "GET"},
				{Object: "/admin/servers", Action: "GET"},
				{Object: "/admin/servers/:id", Action: "GET"},
				{Object: "/admin/payments", Action: "GET"},
				{Object: "/admin/payments/:id", Action: "GET"},
				{Object: "/admin/authz/me", Action: "GET"},
			},
		},
		{
			Role:     "admin",
			Inherits: []string{"support"},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// IsBuiltinRole 是否为预置角色
func IsBuiltinRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if seedRole, _ := NormalizeRole(seed.Role); seedRole == normalized {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略（幂等）
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
