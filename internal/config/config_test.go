package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.BackendURL != "http://localhost:8081" {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, "http://localhost:8081")
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Errorf("BackendTimeout = %v, want 10s", cfg.BackendTimeout)
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want 86400", cfg.SessionMaxAge)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should default to false")
	}
	if cfg.DB.DBName != "workshop_portal" {
		t.Errorf("DB.DBName = %q, want %q", cfg.DB.DBName, "workshop_portal")
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("PORT", "9000")
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("SESSION_MAX_AGE", "600")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9000")
	}
	if cfg.BackendURL != "https://api.example.com" {
		t.Errorf("BackendURL = %q, trailing slash should be trimmed", cfg.BackendURL)
	}
	if cfg.BackendTimeout != 3*time.Second {
		t.Errorf("BackendTimeout = %v, want 3s", cfg.BackendTimeout)
	}
	if cfg.SessionMaxAge != 600 {
		t.Errorf("SessionMaxAge = %d, want 600", cfg.SessionMaxAge)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should be true")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	os.Clearenv()
	t.Setenv("BACKEND_TIMEOUT", "soon")
	t.Setenv("SESSION_MAX_AGE", "forever")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Errorf("BackendTimeout = %v, want default 10s", cfg.BackendTimeout)
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want default", cfg.SessionMaxAge)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"backend url without scheme", "BACKEND_URL", "localhost:8081"},
		{"bad encryption key length", "SESSION_ENC_KEY", "short"},
		{"bad csrf key length", "CSRF_KEY", "short"},
		{"negative max age", "SESSION_MAX_AGE", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			t.Setenv(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}

	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	wantURL := "postgres://u:p@db:5432/n?sslmode=disable"
	if got := db.URL(); got != wantURL {
		t.Errorf("URL() = %q, want %q", got, wantURL)
	}
}
