package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/registry_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestAddr(t *testing.T) {
	cfg := ServerConfig{Host: "0.0.0.0", Port: 10000}
	if got := cfg.Addr(); got != "0.0.0.0:10000" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:10000")
	}

	cfg.Host = ""
	cfg.Port = 8080
	if got := cfg.Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want %q", got, ":8080")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 10000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 10000)
	}
	if cfg.Database.MaxConns != 20 {
		t.Errorf("Database.MaxConns = %d, want %d", cfg.Database.MaxConns, 20)
	}
	if cfg.Database.AcquireTimeout != 10*time.Second {
		t.Errorf("Database.AcquireTimeout = %v, want %v", cfg.Database.AcquireTimeout, 10*time.Second)
	}
	if cfg.Upload.MaxFileSize != 10485760 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 10485760)
	}
	if cfg.Upload.Dir != "uploads" {
		t.Errorf("Upload.Dir = %q, want %q", cfg.Upload.Dir, "uploads")
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want %v", cfg.Auth.TokenTTL, 12*time.Hour)
	}
	if cfg.Development() {
		t.Error("Development() = true, want false by default")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Database.MaxConns != 50 {
		t.Errorf("Database.MaxConns = %d, want %d", cfg.Database.MaxConns, 50)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if !cfg.Development() {
		t.Error("Development() = false, want true")
	}
}

func TestLoad_PortAlias(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8088")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("Server.Port = %d, want %d (from PORT alias)", cfg.Server.Port, 8088)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "x")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want missing DATABASE_URL error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error %q does not mention DATABASE_URL", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "port out of range",
			env:  map[string]string{"SERVER_PORT": "70000"},
			want: "SERVER_PORT",
		},
		{
			name: "max conns below min conns",
			env:  map[string]string{"DB_MAX_CONNS": "1", "DB_MIN_CONNS": "5"},
			want: "DB_MAX_CONNS",
		},
		{
			name: "bad log level",
			env:  map[string]string{"LOG_LEVEL": "verbose"},
			want: "LOG_LEVEL",
		},
		{
			name: "zero max file size",
			env:  map[string]string{"UPLOAD_MAX_FILE_SIZE": "0"},
			want: "UPLOAD_MAX_FILE_SIZE",
		},
		{
			name: "bootstrap user without password",
			env:  map[string]string{"ADMIN_USERNAME": "admin"},
			want: "ADMIN_PASSWORD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}
