package service

import (
	"context"
	"sync"
	"time"
)

type mockNotifier struct {
	mu     sync.Mutex
	lastTo string
	calls  int
	err    error
}

func (m *mockNotifier) SendPasswordChanged(_ context.Context, toEmail string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.calls++
	return m.err
}
