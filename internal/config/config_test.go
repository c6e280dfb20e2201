package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notekeeper.yaml")
	content := `
server:
  address: "0.0.0.0:9000"
database:
  dsn: "postgres://file"
auth:
  jwt_secret: "file-secret"
  service_key: "svc"
trash:
  retention: 48h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("NOTEKEEPER_AUTH_JWT_SECRET", "env-secret")

	opts, err := Parse([]string{"-c", path, "-d", "postgres://flag"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opts.Address != "0.0.0.0:9000" {
		t.Errorf("Address = %q; want value from file", opts.Address)
	}
	if opts.JWTSecret != "env-secret" {
		t.Errorf("JWTSecret = %q; want env override", opts.JWTSecret)
	}
	if opts.DatabaseDSN != "postgres://flag" {
		t.Errorf("DatabaseDSN = %q; want flag override", opts.DatabaseDSN)
	}
	if opts.TrashRetention != 48*time.Hour {
		t.Errorf("TrashRetention = %v; want 48h", opts.TrashRetention)
	}
	if opts.TrashInterval != time.Hour {
		t.Errorf("TrashInterval = %v; want default 1h", opts.TrashInterval)
	}
	if opts.FunctionsBaseURL != opts.PublicBaseURL {
		t.Errorf("FunctionsBaseURL = %q; want fallback to %q", opts.FunctionsBaseURL, opts.PublicBaseURL)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			args:    []string{"--memory"},
			wantErr: "jwt_secret",
		},
		{
			name:    "missing dsn",
			env:     map[string]string{"NOTEKEEPER_AUTH_JWT_SECRET": "s", "NOTEKEEPER_AUTH_SERVICE_KEY": "k"},
			wantErr: "database.dsn",
		},
		{
			name: "in-memory needs no dsn",
			env:  map[string]string{"NOTEKEEPER_AUTH_JWT_SECRET": "s", "NOTEKEEPER_AUTH_SERVICE_KEY": "k"},
			args: []string{"--memory"},
		},
		{
			name:    "tls cert without key",
			env:     map[string]string{"NOTEKEEPER_AUTH_JWT_SECRET": "s", "NOTEKEEPER_AUTH_SERVICE_KEY": "k", "NOTEKEEPER_SERVER_TLS_CERT": "a.crt"},
			args:    []string{"--memory"},
			wantErr: "tls_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse(tt.args)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v; want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_LegacyServerAddress(t *testing.T) {
	t.Setenv("NOTEKEEPER_AUTH_JWT_SECRET", "s")
	t.Setenv("NOTEKEEPER_AUTH_SERVICE_KEY", "k")
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:7000")

	opts, err := Parse([]string{"--memory"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opts.Address != "127.0.0.1:7000" {
		t.Errorf("Address = %q; want SERVER_ADDRESS", opts.Address)
	}
}
