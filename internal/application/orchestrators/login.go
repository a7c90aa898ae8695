package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ordercal/internal/adapters/orderservice"
	"ordercal/internal/application/orderstate"
	"ordercal/internal/application/workspace"
	"ordercal/internal/domain/menu"
	"ordercal/internal/domain/order"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// LoginInput carries credentials for the login orchestrator.
type LoginInput struct {
	UserID   string
	Password string
}

// LoginResult carries identity for session creation.
type LoginResult struct {
	UserID      string
	DisplayName string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Service     orderservice.Client
	Catalog     menu.Catalog
	HorizonDays int
	StartOffset int // days after today the horizon begins; 1 means tomorrow
}

var (
	ErrInvalidCredentials = errors.New("invalid user id or password")
	ErrServiceUnavailable = errors.New("order service is unreachable right now")
)

// ExecuteLogin authenticates against the order service, builds the session
// horizon, and loads server state. On success the workspace holds an
// authenticated store with holidays and existing orders merged in; either
// fetch failing leaves its default state (no holidays, zero quantities)
// without failing the login.
// PRE: ws is a fresh or previously failed-over workspace
// POST: ws is Authenticated on nil return, Unauthenticated otherwise
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps, ws *workspace.Workspace) (LoginResult, error) {
	if err := ws.BeginLogin(); err != nil {
		return LoginResult{}, err
	}

	if input.UserID == "" || input.Password == "" {
		_ = ws.FailLogin()
		return LoginResult{}, ErrInvalidCredentials
	}

	res, err := deps.Service.Login(ctx, input.UserID, input.Password)
	if err != nil {
		_ = ws.FailLogin()
		if errors.Is(err, orderservice.ErrAuthRejected) {
			slog.Info("auth_event", "event", "login_rejected", "user", input.UserID)
			return LoginResult{}, ErrInvalidCredentials
		}
		slog.Error("auth_event", "event", "login_transport_failed", "user", input.UserID, "error", err.Error())
		return LoginResult{}, ErrServiceUnavailable
	}

	displayName := res.DisplayName
	if displayName == "" {
		displayName = input.UserID
	}

	horizon := order.Generate(timeNow(), deps.StartOffset, deps.HorizonDays, deps.Catalog)
	store := orderstate.New(horizon, deps.Catalog)
	if err := ws.CompleteLogin(input.UserID, displayName, store); err != nil {
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "user", input.UserID, "horizon_days", deps.HorizonDays)

	// Both fetches are issued concurrently and merged independently; the
	// session renders with whatever arrived.
	ExecuteRefresh(ctx, RefreshDeps{Service: deps.Service, Store: store}, input.UserID)

	return LoginResult{UserID: input.UserID, DisplayName: displayName}, nil
}
