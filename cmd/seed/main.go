// Command seed loads provider keys from the environment into the encrypted
// settings store and provisions the initial admin account. Safe to re-run:
// existing settings are overwritten, the admin user is left alone.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/webNext25/zoom-smart-dialer/internal/config"
	"github.com/webNext25/zoom-smart-dialer/internal/settings"
	"github.com/webNext25/zoom-smart-dialer/internal/users"
	"github.com/webNext25/zoom-smart-dialer/pkg/logger"
	"github.com/webNext25/zoom-smart-dialer/pkg/utils"
)

type seedEntry struct {
	key      string
	env      string
	category string
	isPublic bool
}

// Only public keys may be marked is_public; everything else stays private and
// is served exclusively to the admin settings view.
var seedEntries = []seedEntry{
	{key: settings.KeyVapiPublicKey, env: "VAPI_PUBLIC_KEY", category: "vapi", isPublic: true},
	{key: "vapi.privateKey", env: "VAPI_PRIVATE_KEY", category: "vapi", isPublic: false},
	{key: "elevenlabs.apiKey", env: "ELEVENLABS_API_KEY", category: "elevenlabs", isPublic: false},
	{key: settings.KeyDefaultVoiceID, env: "DEFAULT_VOICE_ID", category: "elevenlabs", isPublic: true},
	{key: "zoom.clientId", env: "ZOOM_CLIENT_ID", category: "zoom", isPublic: false},
	{key: "zoom.clientSecret", env: "ZOOM_CLIENT_SECRET", category: "zoom", isPublic: false},
	{key: "uploadthing.secret", env: "UPLOADTHING_SECRET", category: "upload", isPublic: false},
	{key: "uploadthing.appId", env: "UPLOADTHING_APP_ID", category: "upload", isPublic: false},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	ctx := context.Background()
	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	settingsSvc, err := settings.NewService(settings.NewPostgresRepo(db), cfg.Settings.EncryptionKey, log)
	if err != nil {
		log.Error("settings init failed", "err", err)
		os.Exit(1)
	}

	seeded := 0
	for _, e := range seedEntries {
		value := strings.TrimSpace(os.Getenv(e.env))
		if value == "" {
			log.Warn("skipping setting with empty env", "key", e.key, "env", e.env)
			continue
		}
		if err := settingsSvc.Set(ctx, e.key, value, e.category, e.isPublic, "seed"); err != nil {
			log.Error("seed setting failed", "key", e.key, "err", err)
			os.Exit(1)
		}
		seeded++
	}
	log.Info("settings seeded", "count", seeded)

	userSvc := users.NewService(users.NewPostgresRepo(db))
	if err := seedAdmin(ctx, userSvc, log); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
}

// seedAdmin provisions the first admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. An already-registered email is not an error so the seeder
// stays re-runnable.
func seedAdmin(ctx context.Context, svc *users.Service, log *slog.Logger) error {
	email := strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Warn("skipping admin seed, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	u, err := svc.Create(ctx, users.CreateRequest{
		Name:     "Platform Admin",
		Email:    email,
		Password: password,
		Role:     "admin",
	})
	if errors.Is(err, users.ErrEmailTaken) {
		log.Info("admin account already exists", "email", email)
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("admin account created", "user_id", u.ID, "email", u.Email)
	return nil
}
