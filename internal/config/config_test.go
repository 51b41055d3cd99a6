package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 3487 {
		t.Errorf("Port = %d, want 3487", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.MatchWorkers != 4 || cfg.MatchQueueSize != 1024 {
		t.Errorf("match pool = %d/%d, want 4/1024", cfg.MatchWorkers, cfg.MatchQueueSize)
	}
	if cfg.NotifyWorkers != 4 || cfg.NotifyQueueSize != 4096 {
		t.Errorf("notify pool = %d/%d, want 4/4096", cfg.NotifyWorkers, cfg.NotifyQueueSize)
	}
	if cfg.WebhookTimeout != 5*time.Second {
		t.Errorf("WebhookTimeout = %v, want 5s", cfg.WebhookTimeout)
	}
	if cfg.SMSRate != 1 || cfg.SMSBurst != 5 {
		t.Errorf("SMS rate = %v burst %d, want 1 burst 5", cfg.SMSRate, cfg.SMSBurst)
	}
	if cfg.SMSEnabled() {
		t.Error("SMS should be disabled by default")
	}
	if cfg.SnapshotUploadURL != "" {
		t.Errorf("SnapshotUploadURL = %q, want empty", cfg.SnapshotUploadURL)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", cfg.IdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MATCH_WORKERS", "8")
	t.Setenv("MATCH_QUEUE_SIZE", "16")
	t.Setenv("NOTIFY_WORKERS", "2")
	t.Setenv("NOTIFY_QUEUE_SIZE", "32")
	t.Setenv("WEBHOOK_TIMEOUT", "3s")
	t.Setenv("SMS_GATEWAY_URL", "https://api.twilio.test")
	t.Setenv("SMS_ACCOUNT_SID", "AC1")
	t.Setenv("SMS_AUTH_TOKEN", "tok")
	t.Setenv("SMS_FROM", "+15550000000")
	t.Setenv("SMS_RATE", "0.5")
	t.Setenv("SMS_BURST", "2")
	t.Setenv("SNAPSHOT_UPLOAD_URL", "https://audit.test/processes")
	t.Setenv("SNAPSHOT_UPLOAD_AUTH", "dXNlcjpwYXNz")
	t.Setenv("SNAPSHOT_OWNER_NAME", "Exchange Ops")
	t.Setenv("SNAPSHOT_OWNER_EMAIL", "ops@exchange.test")
	t.Setenv("SNAPSHOT_SIGNER_NAME", "Compliance")
	t.Setenv("SNAPSHOT_SIGNER_EMAIL", "compliance@exchange.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.MatchWorkers != 8 || cfg.MatchQueueSize != 16 {
		t.Errorf("match pool = %d/%d, want 8/16", cfg.MatchWorkers, cfg.MatchQueueSize)
	}
	if cfg.NotifyWorkers != 2 || cfg.NotifyQueueSize != 32 {
		t.Errorf("notify pool = %d/%d, want 2/32", cfg.NotifyWorkers, cfg.NotifyQueueSize)
	}
	if cfg.WebhookTimeout != 3*time.Second {
		t.Errorf("WebhookTimeout = %v, want 3s", cfg.WebhookTimeout)
	}
	if !cfg.SMSEnabled() {
		t.Error("SMS should be enabled")
	}
	if cfg.SMSRate != 0.5 || cfg.SMSBurst != 2 {
		t.Errorf("SMS rate = %v burst %d, want 0.5 burst 2", cfg.SMSRate, cfg.SMSBurst)
	}
	if cfg.SnapshotUploadURL != "https://audit.test/processes" || cfg.SnapshotUploadAuth != "dXNlcjpwYXNz" {
		t.Errorf("snapshot upload = %q %q", cfg.SnapshotUploadURL, cfg.SnapshotUploadAuth)
	}
	if cfg.SnapshotOwnerName != "Exchange Ops" || cfg.SnapshotOwnerEmail != "ops@exchange.test" {
		t.Errorf("snapshot owner = %q <%s>", cfg.SnapshotOwnerName, cfg.SnapshotOwnerEmail)
	}
	if cfg.SnapshotSignerName != "Compliance" || cfg.SnapshotSignerEmail != "compliance@exchange.test" {
		t.Errorf("snapshot signer = %q <%s>", cfg.SnapshotSignerName, cfg.SnapshotSignerEmail)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}

func TestLoad_InvalidCounts(t *testing.T) {
	for _, key := range intEnvKeys {
		for _, val := range []string{"0", "-3", "many"} {
			t.Run(key+"="+val, func(t *testing.T) {
				clearEnv(t)
				t.Setenv(key, val)

				if _, err := Load(); err == nil {
					t.Fatalf("expected error for %s=%s", key, val)
				}
			})
		}
	}
}

func TestLoad_InvalidSMSRate(t *testing.T) {
	for _, val := range []string{"0", "-1", "fast"} {
		clearEnv(t)
		t.Setenv("SMS_RATE", val)

		_, err := Load()
		if err == nil {
			t.Errorf("expected error for SMS_RATE=%s", val)
			continue
		}
		if !strings.HasPrefix(err.Error(), "invalid SMS_RATE: ") {
			t.Errorf("SMS_RATE=%s: error %q lacks key prefix", val, err)
		}
	}
}

func TestLoad_InvalidSMSRate_WrapsParseError(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMS_RATE", "fast")

	_, err := Load()
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Fatalf("expected wrapped *strconv.NumError, got %v", err)
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("expected strconv.ErrSyntax in chain, got %v", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	for _, key := range durationEnvKeys {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "not-a-duration")

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for invalid %s", key)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=4000\nSMS_FROM=+15551112222\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// Already-set variables win over the file.
	t.Setenv("SMS_FROM", "+15559999999")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.SMSFrom != "+15559999999" {
		t.Errorf("SMSFrom = %q, want the pre-set value", cfg.SMSFrom)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}
