package invite

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/louisbranch/assassin/internal/errors"
	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/store/memory"
)

func newTestFlow(t *testing.T) (*Flow, *memory.Store) {
	t.Helper()

	st := memory.New()
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	flow := New(st)
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	flow.clock = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	seq := 0
	flow.idGenerator = func() (string, error) {
		seq++
		return fmt.Sprintf("record-%04d", seq), nil
	}
	return flow, st
}

func TestInviteAppendsToMailbox(t *testing.T) {
	flow, _ := newTestFlow(t)
	ctx := context.Background()

	if err := flow.Invite(ctx, "manor", "bob", "alice"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := flow.Invite(ctx, "manor", "bob", "alice"); err != nil {
		t.Fatalf("re-invite: %v", err)
	}

	mailbox, err := flow.Mailbox(ctx, "bob")
	if err != nil {
		t.Fatalf("mailbox: %v", err)
	}
	if len(mailbox) != 2 {
		t.Fatalf("expected 2 mailbox records, got %d", len(mailbox))
	}
	for _, record := range mailbox {
		if record.Game != "manor" || record.From != "alice" {
			t.Fatalf("unexpected mailbox record: %+v", record)
		}
	}
	if !mailbox[0].SentAt.Before(mailbox[1].SentAt) {
		t.Fatal("expected mailbox ordered by send time")
	}
}

func TestInviteMarksInvitationOnce(t *testing.T) {
	flow, _ := newTestFlow(t)
	ctx := context.Background()

	if err := flow.Invite(ctx, "manor", "bob", "alice"); err != nil {
		t.Fatalf("invite: %v", err)
	}

	status, err := flow.InvitationStatus(ctx, "manor", "bob")
	if err != nil {
		t.Fatalf("invitation status: %v", err)
	}
	if status != domain.InvitationInvited {
		t.Fatalf("expected invited, got %v", status)
	}

	if err := flow.Respond(ctx, "manor", "bob", true); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if err := flow.Invite(ctx, "manor", "bob", "alice"); err != nil {
		t.Fatalf("re-invite: %v", err)
	}

	status, err = flow.InvitationStatus(ctx, "manor", "bob")
	if err != nil {
		t.Fatalf("invitation status: %v", err)
	}
	if status != domain.InvitationAccepted {
		t.Fatalf("expected accepted to survive re-invite, got %v", status)
	}
}

func TestInviteValidation(t *testing.T) {
	flow, _ := newTestFlow(t)
	ctx := context.Background()

	if err := flow.Invite(ctx, "", "bob", "alice"); !apperrors.IsCode(err, apperrors.CodeInviteGameEmpty) {
		t.Fatalf("expected invite game empty error, got %v", err)
	}
	if err := flow.Invite(ctx, "manor", "  ", "alice"); !apperrors.IsCode(err, apperrors.CodeInvitePlayerEmpty) {
		t.Fatalf("expected invite player empty error, got %v", err)
	}
}

func TestRespondRecordsStatus(t *testing.T) {
	flow, _ := newTestFlow(t)
	ctx := context.Background()

	if err := flow.Respond(ctx, "manor", "bob", false); err != nil {
		t.Fatalf("respond: %v", err)
	}

	status, err := flow.InvitationStatus(ctx, "manor", "bob")
	if err != nil {
		t.Fatalf("invitation status: %v", err)
	}
	if status != domain.InvitationDeclined {
		t.Fatalf("expected declined, got %v", status)
	}

	if err := flow.Respond(ctx, "manor", "bob", true); err != nil {
		t.Fatalf("respond again: %v", err)
	}

	status, err = flow.InvitationStatus(ctx, "manor", "bob")
	if err != nil {
		t.Fatalf("invitation status: %v", err)
	}
	if status != domain.InvitationAccepted {
		t.Fatalf("expected accepted, got %v", status)
	}
}

func TestRespondLastWriteWinsByTimestamp(t *testing.T) {
	flow, _ := newTestFlow(t)
	ctx := context.Background()

	later := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Minute)

	if err := flow.RespondAt(ctx, "manor", "bob", true, later); err != nil {
		t.Fatalf("respond at later: %v", err)
	}
	if err := flow.RespondAt(ctx, "manor", "bob", false, earlier); err != nil {
		t.Fatalf("respond at earlier: %v", err)
	}

	status, err := flow.InvitationStatus(ctx, "manor", "bob")
	if err != nil {
		t.Fatalf("invitation status: %v", err)
	}
	if status != domain.InvitationAccepted {
		t.Fatalf("expected later response to win, got %v", status)
	}
}

func TestAcceptedResponseJoinsRoster(t *testing.T) {
	flow, st := newTestFlow(t)
	ctx := context.Background()

	if err := flow.Invite(ctx, "manor", "bob", "alice"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := st.Get(ctx, domain.PlayerStatusPath("manor", "bob")); err == nil {
		t.Fatal("invite alone must not add the player to the roster")
	}

	if err := flow.Respond(ctx, "manor", "bob", true); err != nil {
		t.Fatalf("respond: %v", err)
	}

	raw, err := st.Get(ctx, domain.PlayerStatusPath("manor", "bob"))
	if err != nil {
		t.Fatalf("get player status: %v", err)
	}
	if domain.PlayerStatusFromLabel(raw) != domain.PlayerStatusAlive {
		t.Fatalf("expected alive roster entry, got %q", raw)
	}
}

func TestDeclinedResponseDoesNotJoinRoster(t *testing.T) {
	flow, st := newTestFlow(t)
	ctx := context.Background()

	if err := flow.Respond(ctx, "manor", "bob", false); err != nil {
		t.Fatalf("respond: %v", err)
	}

	if _, err := st.Get(ctx, domain.PlayerStatusPath("manor", "bob")); err == nil {
		t.Fatal("declined invitee must not join the roster")
	}
}

func TestStaleAcceptDoesNotJoinRoster(t *testing.T) {
	flow, st := newTestFlow(t)
	ctx := context.Background()

	later := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)
	if err := flow.RespondAt(ctx, "manor", "bob", false, later); err != nil {
		t.Fatalf("respond declined: %v", err)
	}
	if err := flow.RespondAt(ctx, "manor", "bob", true, later.Add(-time.Minute)); err != nil {
		t.Fatalf("respond stale accept: %v", err)
	}

	status, err := flow.InvitationStatus(ctx, "manor", "bob")
	if err != nil {
		t.Fatalf("invitation status: %v", err)
	}
	if status != domain.InvitationDeclined {
		t.Fatalf("expected declined to win, got %v", status)
	}
	if _, err := st.Get(ctx, domain.PlayerStatusPath("manor", "bob")); err == nil {
		t.Fatal("a superseded accept must not join the roster")
	}
}

func TestInvitationStatusUndefinedWithoutRecord(t *testing.T) {
	flow, _ := newTestFlow(t)

	status, err := flow.InvitationStatus(context.Background(), "manor", "nobody")
	if err != nil {
		t.Fatalf("invitation status: %v", err)
	}
	if status != domain.InvitationUndefined {
		t.Fatalf("expected undefined, got %v", status)
	}
}

func TestNotifyNotLoggedIn(t *testing.T) {
	flow, _ := newTestFlow(t)
	ctx := context.Background()

	if err := flow.NotifyNotLoggedIn(ctx, "bob", "alice"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	messages, err := flow.Messages(ctx, "alice")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].From != "bob" || messages[0].Text != "bob not logged in" {
		t.Fatalf("unexpected message: %+v", messages[0])
	}
}

func TestMailboxEmpty(t *testing.T) {
	flow, _ := newTestFlow(t)

	mailbox, err := flow.Mailbox(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("mailbox: %v", err)
	}
	if len(mailbox) != 0 {
		t.Fatalf("expected empty mailbox, got %d records", len(mailbox))
	}
}
