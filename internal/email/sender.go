package email

import (
	"context"
	"errors"
	"time"
)

// Sender define la interfaz para avisos de seguridad de la cuenta.
type Sender interface {
	SendPasswordChanged(ctx context.Context, toEmail string, changedAt time.Time) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendPasswordChanged(_ context.Context, _ string, _ time.Time) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
