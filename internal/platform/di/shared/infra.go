// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "cosmetica/internal/infra/config"
	"cosmetica/internal/infra/database"
	fsinfra "cosmetica/internal/infra/firestore"
	"cosmetica/internal/infra/localstore"
	"cosmetica/internal/infra/metrics"
	"cosmetica/internal/infra/secrets"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
// - owns the device-local store and the metrics registry
//
// IMPORTANT:
// Infra must NOT depend on routers or handlers.
type Infra struct {
	Config    *appcfg.Config
	Settings  RuntimeSettings
	ProjectID string

	// Clients (owned; Close-managed). nil in memory mode.
	Firestore     *fsinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Secrets       *secrets.Provider
	OrdersDB      *database.DB

	// Always present
	Local   *localstore.Store
	Metrics *metrics.Registry
}

// NewInfra initializes shared infra.
// Local store and Firestore are strict (return error).
// Firebase/Auth, SecretManager and GCS are best-effort (warn + continue).
// With STORE_BACKEND=memory no GCP client is created.
func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	settings, warns, err := ResolveRuntimeSettings(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		log.Printf("[shared.infra] WARN: %s", w)
	}

	inf := &Infra{
		Config:    cfg,
		Settings:  settings,
		ProjectID: resolveProjectID(cfg),
		Metrics:   metrics.NewRegistry(),
	}

	// 1) Local store (strict)
	local, err := localstore.Open(cfg.LocalStoreDir)
	if err != nil {
		return nil, fmt.Errorf("shared.infra: %w", err)
	}
	inf.Local = local
	log.Printf("[shared.infra] local store opened dir=%s", cfg.LocalStoreDir)

	if cfg.UseMemoryStore() {
		log.Printf("[shared.infra] STORE_BACKEND=memory: skipping GCP clients")
		return inf, nil
	}

	if inf.ProjectID == "" {
		_ = inf.Close()
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	// Credentials file (optional; mainly for local dev)
	var clientOpts []option.ClientOption
	if credFile := cfg.CredentialsFile(); credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[shared.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Printf("[shared.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 2) Secret Manager (best-effort)
	if sm, err := secretmanager.NewClient(ctx, clientOpts...); err != nil {
		log.Printf("[shared.infra] WARN: secretmanager.NewClient failed: %v (secret lookups disabled)", err)
	} else {
		inf.SecretManager = sm
		inf.Secrets = secrets.NewProvider(sm, inf.ProjectID)
	}

	// 3) Firestore (strict)
	fsClient, err := fsinfra.NewClient(ctx, inf.ProjectID, clientOpts...)
	if err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("shared.infra: firestore.NewClient failed (project=%s): %w", inf.ProjectID, err)
	}
	inf.Firestore = fsClient

	// 4) GCS (best-effort; only signed image URLs need it)
	if gcsClient, err := storage.NewClient(ctx, clientOpts...); err != nil {
		log.Printf("[shared.infra] WARN: storage.NewClient failed: %v (images fall back to public URLs)", err)
	} else {
		inf.GCS = gcsClient
		log.Printf("[shared.infra] GCS storage client initialized")
	}

	// 5) Firebase App/Auth (best-effort)
	fbProject := strings.TrimSpace(cfg.FirebaseProjectID)
	if fbProject == "" {
		fbProject = inf.ProjectID
	}
	if fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: fbProject}, clientOpts...); err != nil {
		log.Printf("[shared.infra] WARN: firebase app init failed: %v", err)
	} else {
		inf.FirebaseApp = fbApp
		if authClient, err := fbApp.Auth(ctx); err != nil {
			log.Printf("[shared.infra] WARN: firebase auth init failed: %v", err)
		} else {
			inf.FirebaseAuth = authClient
			log.Printf("[shared.infra] Firebase Auth initialized project=%s", fbProject)
		}
	}

	// 6) Postgres order history (strict when selected)
	if cfg.UsePostgresOrders() {
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.OrdersDB = db
	}

	return inf, nil
}

// Ping checks the remote dependencies the storefront cannot run without.
func (i *Infra) Ping(ctx context.Context) error {
	if i == nil {
		return errors.New("shared.infra: nil")
	}
	if i.Firestore != nil {
		if err := i.Firestore.Ping(ctx); err != nil {
			return err
		}
	}
	if i.OrdersDB != nil {
		if err := i.OrdersDB.Client.PingContext(ctx); err != nil {
			return fmt.Errorf("shared.infra: postgres ping: %w", err)
		}
	}
	return nil
}

// Close releases every owned client. The local store is closed last so
// callers can flush sessions before calling Close.
func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.OrdersDB != nil {
		_ = i.OrdersDB.Close()
	}
	if i.Local != nil {
		return i.Local.Close()
	}
	return nil
}

func resolveProjectID(cfg *appcfg.Config) string {
	for _, v := range []string{cfg.FirestoreProjectID, cfg.GCPProjectID, cfg.FirebaseProjectID} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func redactPath(p string) string {
	// Do not log full path (keep only the last segment)
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}
