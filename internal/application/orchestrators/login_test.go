package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"ordercal/internal/adapters/orderservice"
	"ordercal/internal/application/workspace"
	"ordercal/internal/domain/calendar"
	"ordercal/internal/domain/menu"
)

func testLoginDeps(t *testing.T, svc *mockService) LoginDeps {
	t.Helper()
	cat, err := menu.FromIDs([]string{"1stmenu A", "2ndmenu B", "Best"})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return LoginDeps{Service: svc, Catalog: cat, HorizonDays: 7, StartOffset: 1}
}

func fixedNow(t *testing.T) func() {
	t.Helper()
	orig := timeNow
	// Horizon becomes 2025-01-01 .. 2025-01-07.
	timeNow = func() time.Time { return time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC) }
	return func() { timeNow = orig }
}

// TestExecuteLogin_AuthRejected tests that bad credentials keep the session
// unauthenticated with a user-facing credential error.
func TestExecuteLogin_AuthRejected(t *testing.T) {
	defer fixedNow(t)()
	svc := &mockService{loginErr: orderservice.ErrAuthRejected}
	ws := workspace.New()

	_, err := ExecuteLogin(context.Background(), LoginInput{UserID: "user1", Password: "wrong"}, testLoginDeps(t, svc), ws)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if ws.State() != workspace.StateUnauthenticated {
		t.Fatalf("session should remain unauthenticated, got %s", ws.State())
	}
}

// TestExecuteLogin_TransportError tests the distinct communication failure.
func TestExecuteLogin_TransportError(t *testing.T) {
	defer fixedNow(t)()
	svc := &mockService{loginErr: errBoom}
	ws := workspace.New()

	_, err := ExecuteLogin(context.Background(), LoginInput{UserID: "user1", Password: "secret"}, testLoginDeps(t, svc), ws)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("transport failure must not read as a credential rejection")
	}
	if ws.State() != workspace.StateUnauthenticated {
		t.Fatalf("session should remain unauthenticated, got %s", ws.State())
	}
}

// TestExecuteLogin_EmptyInput tests that blank credentials never reach the service.
func TestExecuteLogin_EmptyInput(t *testing.T) {
	defer fixedNow(t)()
	ws := workspace.New()
	_, err := ExecuteLogin(context.Background(), LoginInput{}, testLoginDeps(t, &mockService{}), ws)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// TestExecuteLogin_Success tests the post-login merge scenario: a fetched
// holiday disables its day while a fetched order lands in its cell.
func TestExecuteLogin_Success(t *testing.T) {
	defer fixedNow(t)()
	svc := &mockService{
		displayName: "User One",
		holidays:    []string{"2025/01/01"},
		orders:      map[string]map[string]int{"2025-01-02": {"Best": 3}},
	}
	ws := workspace.New()

	res, err := ExecuteLogin(context.Background(), LoginInput{UserID: "user1", Password: "secret"}, testLoginDeps(t, svc), ws)
	if err != nil {
		t.Fatalf("ExecuteLogin: %v", err)
	}
	if res.DisplayName != "User One" {
		t.Fatalf("unexpected display name %q", res.DisplayName)
	}
	if ws.State() != workspace.StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", ws.State())
	}

	store, err := ws.Store()
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if calendar.IsOrderable("2025-01-01", store.Holidays()) {
		t.Fatal("2025-01-01 should be non-orderable after the holiday merge")
	}

	snap := store.Snapshot()
	if snap[0].Date != "2025-01-01" {
		t.Fatalf("horizon should start tomorrow, got %s", snap[0].Date)
	}
	day2 := snap[1]
	if day2.Quantities["Best"] != 3 {
		t.Fatalf("expected merged quantity 3, got %d", day2.Quantities["Best"])
	}
	if day2.Quantities["1stmenu A"] != 0 || day2.Quantities["2ndmenu B"] != 0 {
		t.Fatal("unordered menus should stay at zero")
	}
}

// TestExecuteLogin_FetchFailuresAreNonFatal tests that the session proceeds
// with default state when both post-login fetches fail.
func TestExecuteLogin_FetchFailuresAreNonFatal(t *testing.T) {
	defer fixedNow(t)()
	svc := &mockService{holidaysErr: errBoom, ordersErr: errBoom}
	ws := workspace.New()

	_, err := ExecuteLogin(context.Background(), LoginInput{UserID: "user1", Password: "secret"}, testLoginDeps(t, svc), ws)
	if err != nil {
		t.Fatalf("fetch failures must not fail login: %v", err)
	}
	store, err := ws.Store()
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if len(store.Holidays()) != 0 {
		t.Fatal("expected empty holiday set")
	}
	for _, d := range store.Snapshot() {
		for k, q := range d.Quantities {
			if q != 0 {
				t.Fatalf("day %s %q should be zero, got %d", d.Date, k, q)
			}
		}
	}
}

// TestExecuteLogin_DisplayNameFallback tests falling back to the user id.
func TestExecuteLogin_DisplayNameFallback(t *testing.T) {
	defer fixedNow(t)()
	ws := workspace.New()
	res, err := ExecuteLogin(context.Background(), LoginInput{UserID: "user1", Password: "secret"}, testLoginDeps(t, &mockService{}), ws)
	if err != nil {
		t.Fatalf("ExecuteLogin: %v", err)
	}
	if res.DisplayName != "user1" {
		t.Fatalf("expected fallback to user id, got %q", res.DisplayName)
	}
}
