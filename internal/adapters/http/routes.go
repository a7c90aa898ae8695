package web

import "net/http"

// registerRoutes wires every handler onto the mux. Order-editing routes
// require an authenticated session; login and logout do not.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleIndex)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)

	mux.Handle("/calendar", requireAuth(handleCalendar))
	mux.Handle("/orders/update", requireAuth(handleUpdateCell))
	mux.Handle("/api/orders", requireAuth(handleSnapshot))
	mux.Handle("/summary", requireAuth(handleSummary))
	mux.Handle("/summary/email", requireAuth(handleSummaryEmail))
	mux.Handle("/synclog", requireAuth(handleSyncLog))
}
