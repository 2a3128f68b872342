package service

import (
	"errors"
	"testing"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"
)

func TestUserLoginLogServiceRecordNormalizes(t *testing.T) {
	db := openServiceTestDB(t, "login_log_record")
	svc := NewUserLoginLogService(repository.NewUserLoginLogRepository(db))

	if err := svc.Record(RecordUserLoginInput{
		UserID:    7,
		Email:     "  Alice@Example.COM ",
		Status:    "SUCCESS",
		ClientIP:  "10.0.0.1",
		UserAgent: "test-agent",
		RequestID: "req-1",
	}); err != nil {
		t.Fatalf("record success failed: %v", err)
	}
	if err := svc.Record(RecordUserLoginInput{
		Email:  "alice@example.com",
		Status: "weird",
	}); err != nil {
		t.Fatalf("record failure failed: %v", err)
	}

	logs, total, err := svc.ListForAdmin(repository.UserLoginLogListFilter{Page: 1, PageSize: 10, Email: "ALICE@example.com"})
	if err != nil {
		t.Fatalf("list login logs failed: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("want 2 logs, got total=%d len=%d", total, len(logs))
	}
	// id desc
	failed, success := logs[0], logs[1]
	if success.Email != "alice@example.com" || success.Status != constants.LoginLogStatusSuccess || success.FailReason != "" {
		t.Fatalf("unexpected success log: %+v", success)
	}
	if failed.Status != constants.LoginLogStatusFailed || failed.FailReason != constants.LoginLogFailReasonInternalError {
		t.Fatalf("unknown status should be stored as failed/internal_error: %+v", failed)
	}

	mine, total, err := svc.ListByUser(7, 0, 0)
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 1 || len(mine) != 1 || mine[0].RequestID != "req-1" {
		t.Fatalf("unexpected user logs: total=%d %+v", total, mine)
	}
}

func TestLoginFailReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrInvalidCredentials, constants.LoginLogFailReasonInvalidCredentials},
		{ErrUserDisabled, constants.LoginLogFailReasonUserDisabled},
		{ErrCaptchaRequired, constants.LoginLogFailReasonCaptchaRequired},
		{ErrCaptchaInvalid, constants.LoginLogFailReasonCaptchaInvalid},
		{ErrInvalidEmail, constants.LoginLogFailReasonInvalidEmail},
		{errors.New("db down"), constants.LoginLogFailReasonInternalError},
	}
	for _, tc := range cases {
		if got := LoginFailReason(tc.err); got != tc.want {
			t.Fatalf("LoginFailReason(%v) want %q got %q", tc.err, tc.want, got)
		}
	}
}

func TestStaffAuditServiceRecordAndFilter(t *testing.T) {
	db := openServiceTestDB(t, "staff_audit")
	svc := NewStaffAuditService(repository.NewStaffAuditLogRepository(db))

	if err := svc.Record(StaffAuditRecordInput{
		OperatorID: 1,
		Action:     constants.AuditActionPayoutReviewed,
		TargetType: constants.AuditTargetPayout,
		TargetID:   42,
		RequestID:  "req-9",
		Detail:     models.JSON{"action": "approve"},
	}); err != nil {
		t.Fatalf("record payout review failed: %v", err)
	}
	if err := svc.Record(StaffAuditRecordInput{
		OperatorID: 2,
		Action:     constants.AuditActionPlanDeleted,
		TargetType: constants.AuditTargetPlan,
		TargetID:   3,
	}); err != nil {
		t.Fatalf("record plan delete failed: %v", err)
	}
	// 缺少操作人或动作时忽略
	if err := svc.Record(StaffAuditRecordInput{Action: constants.AuditActionPlanDeleted}); err != nil {
		t.Fatalf("record without operator should be ignored: %v", err)
	}
	if err := svc.Record(StaffAuditRecordInput{OperatorID: 1, Action: "  "}); err != nil {
		t.Fatalf("record without action should be ignored: %v", err)
	}

	all, total, err := svc.ListForAdmin(repository.StaffAuditLogListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("want 2 audit logs, got total=%d len=%d", total, len(all))
	}

	payouts, total, err := svc.ListForAdmin(repository.StaffAuditLogListFilter{
		Page:       1,
		PageSize:   10,
		TargetType: constants.AuditTargetPayout,
		TargetID:   42,
	})
	if err != nil {
		t.Fatalf("filter audit logs failed: %v", err)
	}
	if total != 1 || payouts[0].OperatorID != 1 || payouts[0].DetailJSON["action"] != "approve" {
		t.Fatalf("unexpected payout audit rows: total=%d %+v", total, payouts)
	}

	var nilSvc *StaffAuditService
	if err := nilSvc.Record(StaffAuditRecordInput{OperatorID: 1, Action: "x"}); err != nil {
		t.Fatalf("nil service should be a no-op: %v", err)
	}
}
