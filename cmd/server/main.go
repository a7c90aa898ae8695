package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	emailPkg "ordercal/internal/adapters/email"
	web "ordercal/internal/adapters/http"
	"ordercal/internal/adapters/orderservice"
	"ordercal/internal/adapters/storage"
	synclogStore "ordercal/internal/adapters/storage/synclog"
	"ordercal/internal/domain/menu"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("ORDERCAL_DB", "ordercal.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	catalog, err := loadCatalog()
	if err != nil {
		log.Fatalf("failed to load menu catalog: %v", err)
	}

	horizonDays, err := strconv.Atoi(envOrDefault("ORDERCAL_HORIZON_DAYS", "28"))
	if err != nil || horizonDays < 1 {
		log.Fatalf("ORDERCAL_HORIZON_DAYS must be a positive integer")
	}

	apiBase := envOrDefault("ORDERCAL_API_BASE", "http://localhost:9000")
	service := orderservice.NewHTTPClient(apiBase)

	// Configure email sender
	resendKey := os.Getenv("ORDERCAL_RESEND_KEY")
	emailFrom := envOrDefault("ORDERCAL_RESEND_FROM", "Order Calendar <noreply@example.com>")
	emailReply := envOrDefault("ORDERCAL_REPLY_TO", "office@example.com")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("ORDERCAL_ENV") == "production" {
			log.Println("WARNING: ORDERCAL_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set ORDERCAL_RESEND_KEY for real delivery)")
		}
	}

	deps := &web.Deps{
		Service:     service,
		Journal:     synclogStore.NewSQLiteStore(db),
		Sender:      sender,
		Catalog:     catalog,
		HorizonDays: horizonDays,
		StartOffset: 1, // ordering opens tomorrow
		EmailFrom:   emailFrom,
		EmailReply:  emailReply,
	}
	mux := web.NewMux("static", deps)

	// Start server
	addr := envOrDefault("ORDERCAL_ADDR", ":8080")
	log.Printf("Ordercal %s starting on %s (env=%s, api=%s, horizon=%dd)",
		version, addr, envOrDefault("ORDERCAL_ENV", "development"), apiBase, horizonDays)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadCatalog builds the menu catalog from ORDERCAL_MENU_FILE (a JSON file
// with descriptions) or ORDERCAL_MENUS (comma-separated IDs), falling back
// to the built-in defaults.
func loadCatalog() (menu.Catalog, error) {
	if path := os.Getenv("ORDERCAL_MENU_FILE"); path != "" {
		return menu.LoadFile(path)
	}
	ids := envOrDefault("ORDERCAL_MENUS", "1stmenu A,2ndmenu B,Best menu")
	parts := strings.Split(ids, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return menu.FromIDs(parts)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
