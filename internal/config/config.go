package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the exchange.
type Config struct {
	Port     int
	LogLevel string

	MatchWorkers    int
	MatchQueueSize  int
	NotifyWorkers   int
	NotifyQueueSize int
	WebhookTimeout  time.Duration

	SMSGatewayURL string
	SMSAccountSID string
	SMSAuthToken  string
	SMSFrom       string
	SMSRate       float64
	SMSBurst      int

	SnapshotUploadURL   string
	SnapshotUploadAuth  string
	SnapshotOwnerName   string
	SnapshotOwnerEmail  string
	SnapshotSignerName  string
	SnapshotSignerEmail string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SMSEnabled reports whether an SMS gateway is configured.
func (c *Config) SMSEnabled() bool {
	return c.SMSGatewayURL != "" && c.SMSAccountSID != ""
}

// LoadDotEnv loads variables from the given file into the environment
// without overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 3487)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	matchWorkers, err := getPositiveInt("MATCH_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_WORKERS: %w", err)
	}

	matchQueueSize, err := getPositiveInt("MATCH_QUEUE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_QUEUE_SIZE: %w", err)
	}

	notifyWorkers, err := getPositiveInt("NOTIFY_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_WORKERS: %w", err)
	}

	notifyQueueSize, err := getPositiveInt("NOTIFY_QUEUE_SIZE", 4096)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_QUEUE_SIZE: %w", err)
	}

	webhookTimeout, err := getDuration("WEBHOOK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}

	smsRate, err := getFloat("SMS_RATE", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid SMS_RATE: %w", err)
	}
	if smsRate <= 0 {
		return nil, fmt.Errorf("invalid SMS_RATE: must be positive, got %v", smsRate)
	}

	smsBurst, err := getPositiveInt("SMS_BURST", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid SMS_BURST: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:                port,
		LogLevel:            logLevel,
		MatchWorkers:        matchWorkers,
		MatchQueueSize:      matchQueueSize,
		NotifyWorkers:       notifyWorkers,
		NotifyQueueSize:     notifyQueueSize,
		WebhookTimeout:      webhookTimeout,
		SMSGatewayURL:       getStr("SMS_GATEWAY_URL", ""),
		SMSAccountSID:       getStr("SMS_ACCOUNT_SID", ""),
		SMSAuthToken:        getStr("SMS_AUTH_TOKEN", ""),
		SMSFrom:             getStr("SMS_FROM", ""),
		SMSRate:             smsRate,
		SMSBurst:            smsBurst,
		SnapshotUploadURL:   getStr("SNAPSHOT_UPLOAD_URL", ""),
		SnapshotUploadAuth:  getStr("SNAPSHOT_UPLOAD_AUTH", ""),
		SnapshotOwnerName:   getStr("SNAPSHOT_OWNER_NAME", ""),
		SnapshotOwnerEmail:  getStr("SNAPSHOT_OWNER_EMAIL", ""),
		SnapshotSignerName:  getStr("SNAPSHOT_SIGNER_NAME", ""),
		SnapshotSignerEmail: getStr("SNAPSHOT_SIGNER_EMAIL", ""),
		ReadTimeout:         readTimeout,
		WriteTimeout:        writeTimeout,
		IdleTimeout:         idleTimeout,
		ShutdownTimeout:     shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getPositiveInt(key string, defaultVal int) (int, error) {
	n, err := getInt(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
