package notification

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
)

func TestRenderEventConfirmed(t *testing.T) {
	subject, body, err := Render(Message{
		To:   "a@example.com",
		Kind: KindEventConfirmed,
		Data: Data{RecipientName: "Kim", EventTitle: "Go Night", Fee: 10000, ParticipantCount: 3},
	}, "SPARK")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Event confirmed: Go Night" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Hello Kim", "10,000 KRW", "Current participants: 3", "Date: To be decided"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestRenderFreeFee(t *testing.T) {
	_, body, err := Render(Message{Kind: KindRegistrationConfirmed, Data: Data{EventTitle: "x"}}, "SPARK")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(body, "Fee: Free") {
		t.Fatalf("expected free fee, got:\n%s", body)
	}
}

func TestRenderAnnouncementUsesServiceName(t *testing.T) {
	subject, _, err := Render(Message{Kind: KindAnnouncement, Data: Data{EventTitle: "Meetup", Subject: "Room change"}}, "SPARK")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "[SPARK] Meetup - Room change" {
		t.Fatalf("unexpected subject %q", subject)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	if _, _, err := Render(Message{Kind: "nope"}, "SPARK"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSMTPDispatcherBuildsMessage(t *testing.T) {
	d := NewSMTPDispatcher(SMTPConfig{Host: "mail.local", Port: 2525, User: "bot@spark.app", Pass: "pw"})
	var gotAddr, gotFrom string
	var gotMsg []byte
	d.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotMsg = addr, from, msg
		return nil
	}
	err := d.Dispatch(context.Background(), Message{
		To:   "user@example.com",
		Kind: KindPasswordReset,
		Data: Data{ResetLink: "http://front/reset-password?token=abc"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if gotAddr != "mail.local:2525" || gotFrom != "bot@spark.app" {
		t.Fatalf("unexpected envelope addr=%q from=%q", gotAddr, gotFrom)
	}
	raw := string(gotMsg)
	if !strings.Contains(raw, "Subject: Password reset request\r\n") {
		t.Fatalf("missing subject header:\n%s", raw)
	}
	if !strings.Contains(raw, "token=abc") {
		t.Fatalf("missing reset link:\n%s", raw)
	}
}

func TestSMTPDispatcherRejectsHeaderInjection(t *testing.T) {
	d := NewSMTPDispatcher(SMTPConfig{Host: "mail.local", Port: 25})
	d.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}
	err := d.Dispatch(context.Background(), Message{To: "a@b.c\r\nBcc: x@y.z", Kind: KindPasswordChanged})
	if err == nil {
		t.Fatal("expected error")
	}
}
