package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"ordercal/internal/adapters/email"
	"ordercal/internal/adapters/http/middleware"
	"ordercal/internal/adapters/orderservice"
	synclogStore "ordercal/internal/adapters/storage/synclog"
	"ordercal/internal/application/workspace"
	"ordercal/internal/domain/menu"
)

// Deps holds everything the handlers need.
type Deps struct {
	Service     orderservice.Client
	Journal     synclogStore.Store
	Sender      email.Sender
	Catalog     menu.Catalog
	HorizonDays int
	StartOffset int
	EmailFrom   string
	EmailReply  string
}

// Global handler state (set by NewMux)
var (
	deps       *Deps
	sessions   *middleware.SessionStore
	workspaces *workspace.Registry
)

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// loadCSRFKey reads the CSRF secret from ORDERCAL_CSRF_KEY (hex-encoded,
// 32 bytes). In production the key MUST be set; in development a random
// key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("ORDERCAL_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("ORDERCAL_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("ORDERCAL_ENV") == "production" {
		log.Fatal("ORDERCAL_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set ORDERCAL_CSRF_KEY for production.")
	return key
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, d *Deps) http.Handler {
	deps = d
	sessions = middleware.NewSessionStore()
	workspaces = workspace.NewRegistry()
	middleware.SecureCookies = os.Getenv("ORDERCAL_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	csrfKey := loadCSRFKey()
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)
	trusted := []string{"localhost:8080", "127.0.0.1:8080"}
	if extra := os.Getenv("ORDERCAL_TRUSTED_ORIGIN"); extra != "" {
		trusted = append(trusted, extra)
	}
	trusted = append(trusted, middleware.ExtraTrustedOrigins...)

	// Apply middleware: SecurityHeaders -> CSRF -> Auth -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, trusted),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
	)
}
