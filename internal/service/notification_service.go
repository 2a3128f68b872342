package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/queue"
	"github.com/hostdesk/internal/repository"
)

// NotificationService 通知邮件渲染与投递（由队列任务驱动）
type NotificationService struct {
	userRepo      repository.UserRepository
	orderRepo     repository.OrderRepository
	affiliateRepo repository.AffiliateRepository
	supportRepo   repository.SupportRepository
	sender        EmailSender
	siteName      string
	currency      string
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	affiliateRepo repository.AffiliateRepository,
	supportRepo repository.SupportRepository,
	sender EmailSender,
	siteName string,
	currency string,
) *NotificationService {
	siteName = strings.TrimSpace(siteName)
	if siteName == "" {
		siteName = "HostDesk"
	}
	return &NotificationService{
		userRepo:      userRepo,
		orderRepo:     orderRepo,
		affiliateRepo: affiliateRepo,
		supportRepo:   supportRepo,
		sender:        sender,
		siteName:      siteName,
		currency:      strings.ToUpper(strings.TrimSpace(currency)),
	}
}

// NotificationMessage 渲染后的邮件
type NotificationMessage struct {
	To      string
	Subject string
	Body    string
}

// Deliver 处理通知邮件任务；用户缺失/禁用或邮件未启用时跳过
func (s *NotificationService) Deliver(ctx context.Context, payload queue.NotificationEmailPayload) error {
	log := logger.SW("event", payload.Event, "user_id", payload.UserID, "ref_id", payload.RefID)
	msg, err := s.Render(payload)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warnw("notification_target_missing", "error", err)
			return nil
		}
		return err
	}
	if msg == nil {
		log.Debugw("notification_skipped")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sender.SendText(msg.To, msg.Subject, msg.Body); err != nil {
		if errors.Is(err, ErrEmailServiceDisabled) || errors.Is(err, ErrEmailServiceNotConfigured) {
			log.Debugw("notification_email_disabled")
			return nil
		}
		if errors.Is(err, ErrEmailRecipientInvalid) || errors.Is(err, ErrInvalidEmail) {
			log.Warnw("notification_recipient_rejected", "error", err)
			return nil
		}
		log.Errorw("notification_send_failed", "error", err)
		return err
	}
	log.Infow("notification_sent")
	return nil
}

// Render 按事件渲染邮件；返回 nil 表示无需发送
func (s *NotificationService) Render(payload queue.NotificationEmailPayload) (*NotificationMessage, error) {
	user, err := s.userRepo.GetByID(payload.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, payload.UserID)
	}
	if user.Status != constants.UserStatusActive {
		return nil, nil
	}
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		name = user.Email
	}

	var subject, body string
	switch payload.Event {
	case constants.NotifyEventOrderCompleted, constants.NotifyEventPaymentFailed:
		order, err := s.orderRepo.GetByID(payload.RefID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, payload.RefID)
		}
		if payload.Event == constants.NotifyEventOrderCompleted {
			subject = fmt.Sprintf("[%s] Order %s completed", s.siteName, order.OrderNo)
			body = fmt.Sprintf("Hi %s,\n\nWe received your payment of %s %s for order %s (%s). ", name, order.TotalAmount.String(), order.Currency, order.OrderNo, order.OrderType)
			if order.OrderType == constants.OrderTypeServerPurchase {
				body += fmt.Sprintf("Your server %s is being provisioned and will appear in your dashboard shortly.", order.Hostname)
			} else {
				body += "Your affiliate account is now active."
			}
		} else {
			subject = fmt.Sprintf("[%s] Payment for order %s failed", s.siteName, order.OrderNo)
			body = fmt.Sprintf("Hi %s,\n\nA payment attempt for order %s (%s %s) did not go through. You can retry from your orders page before the order expires.", name, order.OrderNo, order.TotalAmount.String(), order.Currency)
		}
	case constants.NotifyEventPayoutReviewed:
		payout, err := s.affiliateRepo.GetPayoutByID(payload.RefID)
		if err != nil {
			return nil, err
		}
		if payout == nil {
			return nil, fmt.Errorf("%w: payout %d", ErrNotFound, payload.RefID)
		}
		subject = fmt.Sprintf("[%s] Payout #%d %s", s.siteName, payout.ID, payout.Status)
		body = fmt.Sprintf("Hi %s,\n\nYour payout request #%d for %s %s is now %s.\nTDS: %s, GST: %s, net: %s.",
			name, payout.ID, payout.GrossAmount.String(), s.currency, payout.Status,
			payout.TDSAmount.String(), payout.GSTAmount.String(), payout.NetAmount.String())
		if payout.TransferReference != "" {
			body += fmt.Sprintf("\nTransfer reference: %s", payout.TransferReference)
		}
		if note := strings.TrimSpace(payout.AdminNote); note != "" {
			body += fmt.Sprintf("\nNote: %s", note)
		}
	case constants.NotifyEventTicketReplied:
		ticket, err := s.supportRepo.GetTicketByID(payload.RefID)
		if err != nil {
			return nil, err
		}
		if ticket == nil {
			return nil, fmt.Errorf("%w: ticket %d", ErrNotFound, payload.RefID)
		}
		subject = fmt.Sprintf("[%s] New reply on ticket %s", s.siteName, ticket.TicketNo)
		body = fmt.Sprintf("Hi %s,\n\nOur support team replied to your ticket %s \"%s\". Sign in to read the reply.", name, ticket.TicketNo, ticket.Subject)
	case constants.NotifyEventAffiliateActive:
		sub, err := s.affiliateRepo.GetSubscriptionByUserID(user.ID)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, fmt.Errorf("%w: subscription of user %d", ErrNotFound, user.ID)
		}
		subject = fmt.Sprintf("[%s] Your affiliate account is active", s.siteName)
		body = fmt.Sprintf("Hi %s,\n\nYour referral code is %s.", name, sub.ReferralCode)
		if sub.IsLifetime {
			body += " Your membership is lifetime."
		} else if sub.ExpiresAt != nil {
			body += fmt.Sprintf(" Your membership is valid until %s.", sub.ExpiresAt.Format("2006-01-02"))
		}
	default:
		return nil, fmt.Errorf("%w: notification event %s", ErrInvalidInput, payload.Event)
	}
	return &NotificationMessage{To: user.Email, Subject: subject, Body: body}, nil
}
