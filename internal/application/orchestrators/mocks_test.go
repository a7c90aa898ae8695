package orchestrators

import (
	"context"
	"errors"
	"sync"

	"ordercal/internal/adapters/email"
	"ordercal/internal/adapters/orderservice"
	"ordercal/internal/domain/holiday"
	domainSynclog "ordercal/internal/domain/synclog"
)

// pushCall records one PushUpdate invocation in issue order.
type pushCall struct {
	UserID   string
	Date     string
	MenuID   string
	Quantity int
}

// mockService implements orderservice.Client for orchestrator tests.
type mockService struct {
	mu sync.Mutex

	loginErr    error
	displayName string

	holidays    []string
	holidaysErr error

	orders    map[string]map[string]int
	ordersErr error

	pushErr error
	pushes  []pushCall
}

func (m *mockService) Login(ctx context.Context, userID, password string) (orderservice.LoginResult, error) {
	if m.loginErr != nil {
		return orderservice.LoginResult{}, m.loginErr
	}
	return orderservice.LoginResult{DisplayName: m.displayName}, nil
}

func (m *mockService) FetchHolidays(ctx context.Context) (holiday.Set, error) {
	if m.holidaysErr != nil {
		return nil, m.holidaysErr
	}
	return holiday.NewSet(m.holidays), nil
}

func (m *mockService) FetchExistingOrders(ctx context.Context, userID string) (map[string]map[string]int, error) {
	if m.ordersErr != nil {
		return nil, m.ordersErr
	}
	return m.orders, nil
}

func (m *mockService) PushUpdate(ctx context.Context, userID, date, menuID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes = append(m.pushes, pushCall{UserID: userID, Date: date, MenuID: menuID, Quantity: quantity})
	return m.pushErr
}

func (m *mockService) pushCalls() []pushCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]pushCall, len(m.pushes))
	copy(out, m.pushes)
	return out
}

// mockJournal implements the synclog store interface in memory.
type mockJournal struct {
	mu      sync.Mutex
	entries []domainSynclog.Entry
	err     error
}

func (m *mockJournal) Append(ctx context.Context, entry domainSynclog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockJournal) ListRecent(ctx context.Context, limit int) ([]domainSynclog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]domainSynclog.Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *mockJournal) CountByStatus(ctx context.Context, status string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Status == status {
			n++
		}
	}
	return n, nil
}

// mockSender captures sent emails.
type mockSender struct {
	mu       sync.Mutex
	requests []email.SendRequest
	err      error
}

func (m *mockSender) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.requests = append(m.requests, req)
	return email.SendResult{MessageID: "m1"}, nil
}

var errBoom = errors.New("boom")
