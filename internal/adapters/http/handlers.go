package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"ordercal/internal/adapters/http/middleware"
	"ordercal/internal/application/orchestrators"
	"ordercal/internal/application/orderstate"
	"ordercal/internal/application/workspace"
	"ordercal/internal/domain/calendar"
	"ordercal/internal/domain/order"
	"ordercal/internal/domain/synclog"
)

// templatesDir is a variable so tests can point at the package-local dir.
var templatesDir = "internal/adapters/http/templates"

// pushTimeout bounds a fire-and-forget push; the response never waits on it.
const pushTimeout = 15 * time.Second

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in menu descriptions is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func requireAuth(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}

// currentWorkspace resolves the request's session to its workspace.
func currentWorkspace(r *http.Request) (middleware.Session, *workspace.Workspace, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return middleware.Session{}, nil, false
	}
	ws, ok := workspaces.Get(sess.Token)
	return sess, ws, ok
}

// currentStore resolves the request to an authenticated order store.
func currentStore(r *http.Request) (middleware.Session, *orderstate.Store, bool) {
	sess, ws, ok := currentWorkspace(r)
	if !ok {
		return sess, nil, false
	}
	store, err := ws.Store()
	if err != nil {
		return sess, nil, false
	}
	return sess, store, true
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	name := ""
	if ok {
		name = sess.DisplayName
	}

	funcMap := template.FuncMap{
		"currentUser": func() string { return name },
		"isLoggedIn":  func() bool { return ok },
		"csrfToken":   func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"quantityOptions": func() []int {
			opts := make([]int, 0, order.MaxQuantity+1)
			for q := order.MinQuantity; q <= order.MaxQuantity; q++ {
				opts = append(opts, q)
			}
			return opts
		},
		"weekdayShort": func(date string) string {
			t, err := time.Parse(order.DateFormat, date)
			if err != nil {
				return ""
			}
			return t.Format("Mon")
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
	}
}

// handleIndex redirects to the calendar or the login form.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/calendar", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/calendar", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		input := orchestrators.LoginInput{}
		if isJSONRequest(r) {
			var body struct {
				User string `json:"user"`
				Pass string `json:"pass"`
			}
			if err := strictDecode(r, &body); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.UserID = body.User
			input.Password = body.Pass
		} else {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.UserID = r.FormValue("UserID")
			input.Password = r.FormValue("Password")
		}

		loginDeps := orchestrators.LoginDeps{
			Service:     deps.Service,
			Catalog:     deps.Catalog,
			HorizonDays: deps.HorizonDays,
			StartOffset: deps.StartOffset,
		}
		ws := workspace.New()
		result, err := orchestrators.ExecuteLogin(r.Context(), input, loginDeps, ws)
		if err != nil {
			if isJSONRequest(r) {
				status := http.StatusUnauthorized
				if errors.Is(err, orchestrators.ErrServiceUnavailable) {
					status = http.StatusBadGateway
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": err.Error()})
				return
			}
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.Create(result.UserID, result.DisplayName)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}
		workspaces.Put(token, ws)
		middleware.SetSessionCookie(w, token)

		if isJSONRequest(r) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "ok", "displayName": result.DisplayName})
			return
		}
		http.Redirect(w, r, "/calendar", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie(middleware.SessionCookieName())
	if err == nil {
		workspaces.Delete(cookie.Value)
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// calendarWeek is the render-ready form of one week page.
type calendarWeek struct {
	Cells []calendar.Cell
}

// handleCalendar renders the week-aligned ordering grid.
func handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_, store, ok := currentStore(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	grid := store.Grid()
	weeks := make([]calendarWeek, 0)
	for _, cells := range grid.Weeks() {
		weeks = append(weeks, calendarWeek{Cells: cells})
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "calendar.html", map[string]any{
			"Weeks":   weeks,
			"Catalog": deps.Catalog,
		})
		return
	}
	writeSnapshot(w, store)
}

type updateCellRequest struct {
	Date     string `json:"date"`
	Menu     string `json:"menu"`
	Quantity int    `json:"quantity"`
}

// handleUpdateCell applies one optimistic cell edit and fires the push.
// The response reflects the local edit only; the push outcome is observed
// through the sync journal, never by this request.
func handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, store, ok := currentStore(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	var req updateCellRequest
	if isJSONRequest(r) {
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		qty, err := strconv.Atoi(r.FormValue("Quantity"))
		if err != nil {
			http.Error(w, "Quantity must be a number", http.StatusBadRequest)
			return
		}
		req = updateCellRequest{
			Date:     r.FormValue("Date"),
			Menu:     r.FormValue("Menu"),
			Quantity: qty,
		}
	}

	input := orchestrators.EditCellInput{
		UserID:   sess.UserID,
		Date:     req.Date,
		MenuID:   req.Menu,
		Quantity: req.Quantity,
	}
	if err := orchestrators.ExecuteEditCell(r.Context(), input, orchestrators.EditCellDeps{Store: store}); err != nil {
		switch {
		case errors.Is(err, order.ErrQuantityRange),
			errors.Is(err, order.ErrUnknownMenu),
			errors.Is(err, orderstate.ErrUnknownDate),
			errors.Is(err, orderstate.ErrDayNotOrderable):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			internalError(w, err)
		}
		return
	}

	// Fire-and-forget: the request does not wait and never learns the
	// outcome. Overlapping pushes are not ordered.
	pushDeps := orchestrators.PushCellDeps{Service: deps.Service, Journal: deps.Journal}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		orchestrators.ExecutePushCell(ctx, input, pushDeps)
	}()

	if isJSONRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

// snapshotDay is the JSON form of one day.
type snapshotDay struct {
	Date       string         `json:"date"`
	Quantities map[string]int `json:"quantities"`
	Orderable  bool           `json:"orderable"`
}

func writeSnapshot(w http.ResponseWriter, store *orderstate.Store) {
	holidays := store.Holidays()
	days := make([]snapshotDay, 0)
	for _, d := range store.Snapshot() {
		days = append(days, snapshotDay{
			Date:       d.Date,
			Quantities: d.Quantities,
			Orderable:  calendar.IsOrderable(d.Date, holidays),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"days": days})
}

// handleSnapshot returns the current horizon as JSON.
func handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_, store, ok := currentStore(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	writeSnapshot(w, store)
}

// summaryRow is one non-zero day on the summary page.
type summaryRow struct {
	Date       string
	Quantities []int // catalog order
}

// handleSummary renders the non-zero days of the snapshot.
func handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_, store, ok := currentStore(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	rows := make([]summaryRow, 0)
	for _, d := range store.Snapshot() {
		total := 0
		for _, q := range d.Quantities {
			total += q
		}
		if total == 0 {
			continue
		}
		row := summaryRow{Date: d.Date}
		for _, item := range deps.Catalog {
			row.Quantities = append(row.Quantities, d.Quantities[item.ID])
		}
		rows = append(rows, row)
	}

	renderTemplate(w, r, "summary.html", map[string]any{
		"Rows":    rows,
		"Catalog": deps.Catalog,
	})
}

// handleSummaryEmail mails the summary to the address from the form.
func handleSummaryEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, store, ok := currentStore(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.SummaryEmailInput{
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
		To:          r.FormValue("Email"),
	}
	emailDeps := orchestrators.SummaryEmailDeps{
		Sender:  deps.Sender,
		Store:   store,
		Catalog: deps.Catalog,
		From:    deps.EmailFrom,
		ReplyTo: deps.EmailReply,
	}
	if err := orchestrators.ExecuteSummaryEmail(r.Context(), input, emailDeps); err != nil {
		if errors.Is(err, orchestrators.ErrNoRecipient) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/summary", http.StatusSeeOther)
}

// handleSyncLog shows recent push attempts.
func handleSyncLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, _, ok := currentStore(r); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	entries, err := deps.Journal.ListRecent(r.Context(), 50)
	if err != nil {
		internalError(w, err)
		return
	}
	failed, err := deps.Journal.CountByStatus(r.Context(), synclog.StatusFailed)
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "synclog.html", map[string]any{
			"Entries":     entries,
			"FailedCount": failed,
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"entries": entries, "failedCount": failed})
}
