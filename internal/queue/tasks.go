package queue

import (
	"encoding/json"

	"github.com/hostdesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationEmail 通知邮件任务
	TaskNotificationEmail = constants.TaskNotificationEmail
	// TaskOrderTimeoutCancel 超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
)

// NotificationEmailPayload 通知邮件任务载荷
type NotificationEmailPayload struct {
	Event  string `json:"event"`
	UserID uint   `json:"user_id"`
	RefID  uint   `json:"ref_id"` // 订单/提现/工单 ID，按事件解释
	Status string `json:"status,omitempty"`
}

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// NewNotificationEmailTask 创建通知邮件任务
func NewNotificationEmailTask(payload NotificationEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmail, body), nil
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}
