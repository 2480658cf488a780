package email

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestDisabledSender_ReturnsReason(t *testing.T) {
	s := NewDisabledSender("not configured")
	err := s.SendPasswordChanged(context.Background(), "a@x.com", time.Now())
	if err == nil || err.Error() != "not configured" {
		t.Fatalf("expected reason error, got %v", err)
	}
}

func TestNewSMTPSender_RequiresHostAndFrom(t *testing.T) {
	if _, err := NewSMTPSender("", 0, "", "", "from@x.com", "", false); err == nil {
		t.Fatalf("expected error without host")
	}
	if _, err := NewSMTPSender("smtp.x.com", 0, "", "", "", "", false); err == nil {
		t.Fatalf("expected error without from")
	}
	s, err := NewSMTPSender("smtp.x.com", 0, "", "", "from@x.com", "", false)
	if err != nil {
		t.Fatalf("expected sender, got %v", err)
	}
	if s.port != 587 {
		t.Fatalf("expected default port 587, got %d", s.port)
	}
}

func TestBuildMessage_Headers(t *testing.T) {
	msg := buildMessage("from@x.com", "Watch Catalog", "a@x.com", "Your password was changed", "body")
	if !strings.Contains(msg, "From: Watch Catalog <from@x.com>\r\n") {
		t.Fatalf("expected named from header, got %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody") {
		t.Fatalf("expected body after blank line, got %q", msg)
	}
}
