package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/security"
	"github.com/hostdesk/internal/storage"
)

func newSupportTestService(t *testing.T, env *serviceTestEnv, maxSize int64) *SupportService {
	t.Helper()
	cipher, err := security.NewCipher([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("new cipher failed: %v", err)
	}
	store, err := storage.NewStore(t.TempDir(), cipher)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	upload := NewUploadService(config.UploadConfig{MaxSize: maxSize}, store)
	return NewSupportService(env.supportRepo, env.userRepo, upload, nil)
}

func TestOpenTicketValidation(t *testing.T) {
	env := newServiceTestEnv(t, "support_open")
	svc := newSupportTestService(t, env, 0)
	customer := env.createUser(t, "customer@example.com", "")

	cases := []struct {
		input OpenTicketInput
		err   error
	}{
		{OpenTicketInput{Subject: " ", Body: "help"}, ErrTicketSubjectRequired},
		{OpenTicketInput{Subject: "Disk full", Body: "  "}, ErrTicketMessageRequired},
		{OpenTicketInput{Subject: "Disk full", Body: "help", Category: "sales"}, ErrInvalidInput},
		{OpenTicketInput{Subject: "Disk full", Body: "help", Priority: "critical"}, ErrTicketPriorityInvalid},
		{OpenTicketInput{Subject: strings.Repeat("x", 256), Body: "help"}, ErrInvalidInput},
	}
	for i, item := range cases {
		if _, err := svc.OpenTicket(customer.ID, item.input); !errors.Is(err, item.err) {
			t.Fatalf("case %d: expected %v, got %v", i, item.err, err)
		}
	}

	ticket, err := svc.OpenTicket(customer.ID, OpenTicketInput{Subject: " Disk full ", Body: "root volume at 100%"})
	if err != nil {
		t.Fatalf("open ticket failed: %v", err)
	}
	if ticket.Status != constants.TicketStatusOpen || ticket.Priority != constants.TicketPriorityNormal || ticket.Category != "general" {
		t.Fatalf("unexpected ticket defaults: %+v", ticket)
	}
	if ticket.Subject != "Disk full" || ticket.TicketNo == "" || len(ticket.Messages) != 1 {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
}

func TestTicketReplyStatusFlow(t *testing.T) {
	env := newServiceTestEnv(t, "support_reply")
	svc := newSupportTestService(t, env, 0)
	customer := env.createUser(t, "customer@example.com", "")
	agent := env.createUser(t, "agent@example.com", constants.UserRoleSupport)
	customerActor := SupportActor{UserID: customer.ID, Role: constants.UserRoleCustomer}
	agentActor := SupportActor{UserID: agent.ID, Role: constants.UserRoleSupport}

	ticket, err := svc.OpenTicket(customer.ID, OpenTicketInput{Subject: "Billing", Category: "billing", Body: "invoice question"})
	if err != nil {
		t.Fatalf("open ticket failed: %v", err)
	}

	if _, err := svc.Reply(customerActor, ticket.ID, "secret", true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected customer internal note forbidden, got %v", err)
	}
	if _, err := svc.Reply(agentActor, ticket.ID, "check refund ledger", true); err != nil {
		t.Fatalf("internal note failed: %v", err)
	}
	got, err := svc.GetTicket(agentActor, ticket.ID)
	if err != nil {
		t.Fatalf("get ticket failed: %v", err)
	}
	if got.Status != constants.TicketStatusOpen || len(got.Messages) != 2 {
		t.Fatalf("expected internal note without status change, got status=%s messages=%d", got.Status, len(got.Messages))
	}

	message, err := svc.Reply(agentActor, ticket.ID, "we issued a credit note", false)
	if err != nil {
		t.Fatalf("staff reply failed: %v", err)
	}
	if message.AuthorRole != constants.UserRoleSupport {
		t.Fatalf("unexpected author role: %s", message.AuthorRole)
	}
	got, _ = svc.GetTicket(customerActor, ticket.ID)
	if got.Status != constants.TicketStatusAwaitingCustomer {
		t.Fatalf("expected awaiting_customer, got %s", got.Status)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected customer view without internal note, got %d messages", len(got.Messages))
	}
	for _, msg := range got.Messages {
		if msg.Internal {
			t.Fatalf("internal note leaked to customer")
		}
	}

	if _, err := svc.Reply(customerActor, ticket.ID, "thanks, one more thing", false); err != nil {
		t.Fatalf("customer reply failed: %v", err)
	}
	got, _ = svc.GetTicket(customerActor, ticket.ID)
	if got.Status != constants.TicketStatusOpen {
		t.Fatalf("expected customer reply to reopen, got %s", got.Status)
	}

	stranger := env.createUser(t, "stranger@example.com", "")
	if _, err := svc.GetTicket(SupportActor{UserID: stranger.ID, Role: constants.UserRoleCustomer}, ticket.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign ticket, got %v", err)
	}

	closed, err := svc.CloseForUser(customer.ID, ticket.ID)
	if err != nil {
		t.Fatalf("close ticket failed: %v", err)
	}
	if closed.Status != constants.TicketStatusClosed || closed.ClosedAt == nil {
		t.Fatalf("unexpected closed ticket: %+v", closed)
	}
	if _, err := svc.Reply(agentActor, ticket.ID, "late reply", false); !errors.Is(err, ErrTicketClosed) {
		t.Fatalf("expected ErrTicketClosed, got %v", err)
	}

	reopened, err := svc.UpdateStatus(ticket.ID, constants.TicketStatusInProgress)
	if err != nil {
		t.Fatalf("reopen ticket failed: %v", err)
	}
	if reopened.ClosedAt != nil {
		t.Fatalf("expected closed_at cleared on reopen")
	}
	if _, err := svc.UpdateStatus(ticket.ID, "archived"); !errors.Is(err, ErrTicketStatusInvalid) {
		t.Fatalf("expected ErrTicketStatusInvalid, got %v", err)
	}
}

func TestNextTicketStatusOnReply(t *testing.T) {
	cases := []struct {
		current  string
		staff    bool
		internal bool
		want     string
	}{
		{constants.TicketStatusOpen, true, false, constants.TicketStatusAwaitingCustomer},
		{constants.TicketStatusInProgress, true, false, constants.TicketStatusAwaitingCustomer},
		{constants.TicketStatusResolved, true, false, constants.TicketStatusResolved},
		{constants.TicketStatusOpen, true, true, constants.TicketStatusOpen},
		{constants.TicketStatusResolved, false, false, constants.TicketStatusOpen},
		{constants.TicketStatusAwaitingCustomer, false, false, constants.TicketStatusOpen},
		{constants.TicketStatusInProgress, false, false, constants.TicketStatusInProgress},
	}
	for _, item := range cases {
		if got := nextTicketStatusOnReply(item.current, item.staff, item.internal); got != item.want {
			t.Fatalf("%s staff=%v internal=%v: want %s, got %s", item.current, item.staff, item.internal, item.want, got)
		}
	}
}

func TestTicketAssignAndPriority(t *testing.T) {
	env := newServiceTestEnv(t, "support_assign")
	svc := newSupportTestService(t, env, 0)
	customer := env.createUser(t, "customer@example.com", "")
	agent := env.createUser(t, "agent@example.com", constants.UserRoleSupport)
	ticket, err := svc.OpenTicket(customer.ID, OpenTicketInput{Subject: "Down", Priority: "high", Body: "server unreachable"})
	if err != nil {
		t.Fatalf("open ticket failed: %v", err)
	}

	if _, err := svc.Assign(ticket.ID, customer.ID); !errors.Is(err, ErrTicketAssigneeInvalid) {
		t.Fatalf("expected customer assignee rejected, got %v", err)
	}
	assigned, err := svc.Assign(ticket.ID, agent.ID)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if assigned.AssigneeID == nil || *assigned.AssigneeID != agent.ID {
		t.Fatalf("unexpected assignee: %v", assigned.AssigneeID)
	}
	unassigned, err := svc.Assign(ticket.ID, 0)
	if err != nil || unassigned.AssigneeID != nil {
		t.Fatalf("expected unassign, err=%v", err)
	}

	updated, err := svc.UpdatePriority(ticket.ID, " URGENT ")
	if err != nil || updated.Priority != constants.TicketPriorityUrgent {
		t.Fatalf("expected urgent priority, got %+v err=%v", updated, err)
	}
	if _, err := svc.UpdatePriority(ticket.ID, "p0"); !errors.Is(err, ErrTicketPriorityInvalid) {
		t.Fatalf("expected ErrTicketPriorityInvalid, got %v", err)
	}
}

func TestTicketAttachmentRoundTrip(t *testing.T) {
	env := newServiceTestEnv(t, "support_attachment")
	svc := newSupportTestService(t, env, 64)
	customer := env.createUser(t, "customer@example.com", "")
	actor := SupportActor{UserID: customer.ID, Role: constants.UserRoleCustomer}
	ticket, err := svc.OpenTicket(customer.ID, OpenTicketInput{Subject: "Logs", Body: "see attached"})
	if err != nil {
		t.Fatalf("open ticket failed: %v", err)
	}

	content := []byte("kernel: out of memory\n")
	attachment, err := svc.AddAttachment(actor, ticket.ID, AddAttachmentInput{Filename: "../../dmesg.log", Content: bytes.NewReader(content)})
	if err != nil {
		t.Fatalf("add attachment failed: %v", err)
	}
	if attachment.OriginalName != "dmesg.log" || attachment.Size != int64(len(content)) || attachment.Checksum == "" {
		t.Fatalf("unexpected attachment: %+v", attachment)
	}

	_, data, err := svc.DownloadAttachment(actor, attachment.ID)
	if err != nil {
		t.Fatalf("download attachment failed: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("unexpected attachment content: %q", data)
	}

	if _, err := svc.AddAttachment(actor, ticket.ID, AddAttachmentInput{Filename: "big.txt", Content: bytes.NewReader(bytes.Repeat([]byte("a"), 65))}); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Fatalf("expected ErrAttachmentTooLarge, got %v", err)
	}
	if _, err := svc.AddAttachment(actor, ticket.ID, AddAttachmentInput{Filename: "run.exe", Content: bytes.NewReader(content)}); !errors.Is(err, ErrAttachmentTypeInvalid) {
		t.Fatalf("expected ErrAttachmentTypeInvalid for extension, got %v", err)
	}
	if _, err := svc.AddAttachment(actor, ticket.ID, AddAttachmentInput{Filename: "empty.txt", Content: bytes.NewReader(nil)}); !errors.Is(err, ErrAttachmentEmpty) {
		t.Fatalf("expected ErrAttachmentEmpty, got %v", err)
	}

	stranger := env.createUser(t, "stranger@example.com", "")
	if _, _, err := svc.DownloadAttachment(SupportActor{UserID: stranger.ID, Role: constants.UserRoleCustomer}, attachment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign download, got %v", err)
	}

	if _, err := svc.CloseForUser(customer.ID, ticket.ID); err != nil {
		t.Fatalf("close ticket failed: %v", err)
	}
	if _, err := svc.AddAttachment(actor, ticket.ID, AddAttachmentInput{Filename: "late.txt", Content: bytes.NewReader(content)}); !errors.Is(err, ErrTicketClosed) {
		t.Fatalf("expected ErrTicketClosed, got %v", err)
	}
}

func TestInternalAttachmentsHiddenFromCustomer(t *testing.T) {
	env := newServiceTestEnv(t, "support_internal_attachment")
	svc := newSupportTestService(t, env, 1024)
	customer := env.createUser(t, "customer@example.com", "")
	agent := env.createUser(t, "agent@example.com", constants.UserRoleSupport)
	customerActor := SupportActor{UserID: customer.ID, Role: constants.UserRoleCustomer}
	agentActor := SupportActor{UserID: agent.ID, Role: constants.UserRoleSupport}
	ticket, err := svc.OpenTicket(customer.ID, OpenTicketInput{Subject: "Server down", Body: "cannot ssh"})
	if err != nil {
		t.Fatalf("open ticket failed: %v", err)
	}

	note, err := svc.Reply(agentActor, ticket.ID, "root password below", true)
	if err != nil {
		t.Fatalf("internal note failed: %v", err)
	}
	secret := []byte("root:hunter2\n")
	onNote, err := svc.AddAttachment(agentActor, ticket.ID, AddAttachmentInput{Filename: "creds.log", Content: bytes.NewReader(secret), MessageID: note.ID})
	if err != nil {
		t.Fatalf("attach to internal note failed: %v", err)
	}
	if !onNote.Internal || onNote.MessageID == nil || *onNote.MessageID != note.ID {
		t.Fatalf("expected attachment linked to internal note, got %+v", onNote)
	}
	flagged, err := svc.AddAttachment(agentActor, ticket.ID, AddAttachmentInput{Filename: "notes.log", Content: bytes.NewReader(secret), Internal: true})
	if err != nil {
		t.Fatalf("internal attachment failed: %v", err)
	}
	public, err := svc.AddAttachment(agentActor, ticket.ID, AddAttachmentInput{Filename: "guide.log", Content: bytes.NewReader([]byte("ssh -p 2222\n"))})
	if err != nil {
		t.Fatalf("public attachment failed: %v", err)
	}

	view, err := svc.GetTicket(customerActor, ticket.ID)
	if err != nil {
		t.Fatalf("customer get ticket failed: %v", err)
	}
	if len(view.Messages) != 1 {
		t.Fatalf("expected customer to see only the opening message, got %d", len(view.Messages))
	}
	if len(view.Attachments) != 1 || view.Attachments[0].ID != public.ID {
		t.Fatalf("expected customer to see only the public attachment, got %+v", view.Attachments)
	}
	for _, id := range []uint{onNote.ID, flagged.ID} {
		if _, _, err := svc.DownloadAttachment(customerActor, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for internal attachment %d, got %v", id, err)
		}
	}
	if _, data, err := svc.DownloadAttachment(customerActor, public.ID); err != nil || len(data) == 0 {
		t.Fatalf("expected customer to download public attachment, err=%v", err)
	}

	staffView, err := svc.GetTicket(agentActor, ticket.ID)
	if err != nil {
		t.Fatalf("staff get ticket failed: %v", err)
	}
	if len(staffView.Attachments) != 3 {
		t.Fatalf("expected staff to see all attachments, got %d", len(staffView.Attachments))
	}
	if _, data, err := svc.DownloadAttachment(agentActor, onNote.ID); err != nil || !bytes.Equal(data, secret) {
		t.Fatalf("expected staff download of internal attachment, err=%v", err)
	}

	if _, err := svc.AddAttachment(customerActor, ticket.ID, AddAttachmentInput{Filename: "a.log", Content: bytes.NewReader(secret), Internal: true}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for customer internal upload, got %v", err)
	}
	if _, err := svc.AddAttachment(customerActor, ticket.ID, AddAttachmentInput{Filename: "a.log", Content: bytes.NewReader(secret), MessageID: note.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for customer upload on internal note, got %v", err)
	}
	other, err := svc.OpenTicket(customer.ID, OpenTicketInput{Subject: "Other", Body: "second ticket"})
	if err != nil {
		t.Fatalf("open second ticket failed: %v", err)
	}
	if _, err := svc.AddAttachment(agentActor, other.ID, AddAttachmentInput{Filename: "a.log", Content: bytes.NewReader(secret), MessageID: note.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for message of another ticket, got %v", err)
	}
}

func TestAttachmentLongNameKeepsValidUTF8(t *testing.T) {
	env := newServiceTestEnv(t, "support_long_name")
	svc := newSupportTestService(t, env, 64)
	customer := env.createUser(t, "customer@example.com", "")
	actor := SupportActor{UserID: customer.ID, Role: constants.UserRoleCustomer}
	ticket, err := svc.OpenTicket(customer.ID, OpenTicketInput{Subject: "日志", Body: "附件"})
	if err != nil {
		t.Fatalf("open ticket failed: %v", err)
	}

	name := strings.Repeat("日志", 200) + ".log"
	attachment, err := svc.AddAttachment(actor, ticket.ID, AddAttachmentInput{Filename: name, Content: bytes.NewReader([]byte("boot ok\n"))})
	if err != nil {
		t.Fatalf("add attachment failed: %v", err)
	}
	if !utf8.ValidString(attachment.OriginalName) {
		t.Fatalf("expected valid utf-8 name, got %q", attachment.OriginalName)
	}
	if utf8.RuneCountInString(attachment.OriginalName) != 255 || !strings.HasSuffix(attachment.OriginalName, ".log") {
		t.Fatalf("unexpected truncated name: runes=%d name=%q", utf8.RuneCountInString(attachment.OriginalName), attachment.OriginalName)
	}
}

func TestAttachmentDisabledWithoutStore(t *testing.T) {
	upload := NewUploadService(config.UploadConfig{}, nil)
	if upload.Enabled() {
		t.Fatalf("expected upload disabled without store")
	}
	if _, err := upload.SaveAttachment("a.txt", strings.NewReader("x")); !errors.Is(err, ErrAttachmentStoreDisabled) {
		t.Fatalf("expected ErrAttachmentStoreDisabled, got %v", err)
	}
}
