// internal/infra/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-derived setting of the storefront process.
type Config struct {
	Port string

	// GCP / Firebase
	GCPProjectID             string
	FirestoreProjectID       string
	FirebaseProjectID        string
	GCPCreds                 string // GOOGLE_APPLICATION_CREDENTIALS
	FirestoreCredentialsFile string

	// Password sign-in uses the web API key (Identity Toolkit).
	// The key may come directly or from Secret Manager.
	FirebaseWebAPIKey       string
	FirebaseWebAPIKeySecret string

	// "firestore" (default) or "memory" (local development, no GCP)
	StoreBackend string
	// "firestore" (default) or "postgres"
	OrdersBackend string
	DatabaseURL   string

	// Device-local storage (pebble)
	LocalStoreDir string

	// Product images
	ProductImageBucket string
	ImageSignedURLs    bool
	ImageURLTTL        time.Duration

	// Mail
	SendGridAPIKey       string
	SendGridAPIKeySecret string
	SendGridFrom         string
	StorefrontBaseURL    string

	// Sync / flow tuning
	CartSyncDebounce   time.Duration
	RemoteWriteTimeout time.Duration
	CheckoutDelay      time.Duration
	SessionIdleTTL     time.Duration
	ReconcilePolicy    string

	CORSAllowOrigin string
}

// Load reads .env (if present) and then the environment.
func Load() *Config {
	// .env is optional; real env vars win over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] WARN: .env not loaded: %v", err)
	}

	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	return &Config{
		Port: getenvDefault("PORT", "8080"),

		GCPProjectID:             defaultProject,
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		FirebaseWebAPIKey:       os.Getenv("FIREBASE_WEB_API_KEY"),
		FirebaseWebAPIKeySecret: os.Getenv("FIREBASE_WEB_API_KEY_SECRET"),

		StoreBackend:  strings.ToLower(getenvDefault("STORE_BACKEND", "firestore")),
		OrdersBackend: strings.ToLower(getenvDefault("ORDERS_BACKEND", "firestore")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		LocalStoreDir: getenvDefault("LOCAL_STORE_DIR", "./data/local"),

		ProductImageBucket: os.Getenv("PRODUCT_IMAGE_BUCKET"),
		ImageSignedURLs:    getenvBool("IMAGE_SIGNED_URLS", false),
		ImageURLTTL:        getenvDuration("IMAGE_URL_TTL", 15*time.Minute),

		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		SendGridAPIKeySecret: os.Getenv("SENDGRID_API_KEY_SECRET"),
		SendGridFrom:         os.Getenv("SENDGRID_FROM"),
		StorefrontBaseURL:    strings.TrimRight(getenvDefault("STOREFRONT_BASE_URL", "http://localhost:3000"), "/"),

		CartSyncDebounce:   getenvMillis("CART_SYNC_DEBOUNCE_MS", 300*time.Millisecond),
		RemoteWriteTimeout: getenvDuration("REMOTE_WRITE_TIMEOUT", 10*time.Second),
		CheckoutDelay:      getenvMillis("CHECKOUT_DELAY_MS", 1500*time.Millisecond),
		SessionIdleTTL:     getenvDuration("SESSION_IDLE_TTL", 30*time.Minute),
		ReconcilePolicy:    getenvDefault("RECONCILE_POLICY", "prefer_remote"),

		CORSAllowOrigin: getenvDefault("CORS_ALLOW_ORIGIN", "*"),
	}
}

// UseMemoryStore reports whether remote ports run in-process.
func (c *Config) UseMemoryStore() bool { return c.StoreBackend == "memory" }

// UsePostgresOrders reports whether order history is read from Postgres.
func (c *Config) UsePostgresOrders() bool { return c.OrdersBackend == "postgres" }

// CredentialsFile is the explicit credentials file for GCP clients, if any.
func (c *Config) CredentialsFile() string {
	if v := strings.TrimSpace(c.FirestoreCredentialsFile); v != "" {
		return v
	}
	return strings.TrimSpace(c.GCPCreds)
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] WARN: %s=%q is not a bool, using %t", key, v, def)
		return def
	}
	return b
}

// getenvDuration accepts Go durations ("30s", "5m").
func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("[config] WARN: %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}

// getenvMillis accepts an integer number of milliseconds.
func getenvMillis(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[config] WARN: %s=%q is not a millisecond count, using %s", key, v, def)
		return def
	}
	return time.Duration(n) * time.Millisecond
}
