package orderservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ordercal/internal/domain/holiday"
)

const defaultTimeout = 10 * time.Second

// HTTPClient implements Client against the order service's REST boundary.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the service at baseURL.
// PRE: baseURL is a valid http(s) URL, with or without trailing slash
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type loginRequest struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

type loginResponse struct {
	Status      string `json:"status"`
	DisplayName string `json:"displayName"`
}

// Login posts credentials to /order/v1/login.
// POST: ErrAuthRejected iff the service answered with a non-ok status field
func (c *HTTPClient) Login(ctx context.Context, userID, password string) (LoginResult, error) {
	var resp loginResponse
	err := c.postJSON(ctx, "/order/v1/login", loginRequest{User: userID, Pass: password}, &resp)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if resp.Status != "ok" {
		slog.Info("sync_event", "event", "login_rejected", "user", userID)
		return LoginResult{}, ErrAuthRejected
	}
	return LoginResult{DisplayName: resp.DisplayName}, nil
}

type holidaysResponse struct {
	Holidays []string `json:"holidays"`
}

// FetchHolidays gets /order/v1/holidays and normalizes every date at the
// boundary, so nothing non-canonical crosses into the domain.
func (c *HTTPClient) FetchHolidays(ctx context.Context) (holiday.Set, error) {
	var resp holidaysResponse
	if err := c.getJSON(ctx, "/order/v1/holidays", &resp); err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}
	return holiday.NewSet(resp.Holidays), nil
}

type ordersResponse struct {
	Orders map[string]map[string]int `json:"orders"`
}

// FetchExistingOrders gets /order/v1/orders?user=<id>, normalizing date
// keys. Entries with unrecognizable dates are skipped.
func (c *HTTPClient) FetchExistingOrders(ctx context.Context, userID string) (map[string]map[string]int, error) {
	path := "/order/v1/orders?user=" + url.QueryEscape(userID)
	var resp ordersResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	out := make(map[string]map[string]int, len(resp.Orders))
	for date, q := range resp.Orders {
		canonical, err := holiday.NormalizeDate(date)
		if err != nil {
			slog.Warn("sync_event", "event", "order_date_skipped", "date", date)
			continue
		}
		out[canonical] = q
	}
	return out, nil
}

type updateRequest struct {
	User     string `json:"user"`
	Date     string `json:"date"`
	Menu     string `json:"menu"`
	Quantity int    `json:"quantity"`
}

// PushUpdate posts one changed cell to /order/v1/update. The ack body is
// opaque and discarded; only the status code matters.
func (c *HTTPClient) PushUpdate(ctx context.Context, userID, date, menuID string, quantity int) error {
	req := updateRequest{User: userID, Date: date, Menu: menuID, Quantity: quantity}
	if err := c.postJSON(ctx, "/order/v1/update", req, nil); err != nil {
		return fmt.Errorf("push update: %w", err)
	}
	return nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("request %s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
