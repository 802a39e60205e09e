package config

import "testing"

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "production", Port: 8080},
		DB:       DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "dialer", SSLMode: ""},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Auth:     AuthConfig{JWTSecret: "secret", JWTIssuer: "iss", JWTAudience: "aud"},
		Settings: SettingsConfig{EncryptionKey: "k"},
		Vapi:     VapiConfig{WSURL: "wss://example.com/ws"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLModeAndEncryptionKey(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "dialer", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
		Vapi:  VapiConfig{WSURL: "wss://example.com/ws"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Settings.EncryptionKey == "" {
		t.Fatalf("expected dev encryption key default")
	}
	if c.Vapi.DefaultVoiceID == "" {
		t.Fatalf("expected default voice id")
	}
}

func TestValidate_ProductionRequiresEncryptionKey(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "production", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "dialer", SSLMode: "require"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret", JWTIssuer: "iss", JWTAudience: "aud"},
		Vapi:  VapiConfig{WSURL: "wss://example.com/ws"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without SETTINGS_ENCRYPTION_KEY")
	}
}
