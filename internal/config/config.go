package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sykell/herd-inventory/internal/db"
	"github.com/sykell/herd-inventory/internal/discovery"
)

// DefaultExcludedFolders are entry names never treated as projects
var DefaultExcludedFolders = []string{".git", ".svn", ".htaccess", ".idea", "__pycache__", ".venv", "assets"}

// Config holds application configuration
type Config struct {
	AppName       string
	ScanRoots     []discovery.ScanRoot
	Database      db.Credentials
	DomainSuffix  string
	PhpMyAdminURL string
	Server        ServerConfig
	Auth          AuthConfig
	Probe         ProbeConfig
}

// ProbeConfig holds the optional site probing settings
type ProbeConfig struct {
	Enabled bool
	Workers int
	Timeout time.Duration
}

// ServerConfig holds the dashboard HTTP server settings
type ServerConfig struct {
	ListenAddr      string
	AllowedOrigin   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds the optional dashboard login settings
type AuthConfig struct {
	Username      string
	PasswordHash  string
	JWTSecret     string
	TokenDuration time.Duration
}

// Enabled reports whether the dashboard requires a login
func (a AuthConfig) Enabled() bool {
	return a.PasswordHash != "" && a.JWTSecret != ""
}

// Load builds the configuration from defaults, the given dotenv files
// (".env" when none are given; missing files are ignored) and the process
// environment, which wins over dotenv values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	timeout, err := getDurationOrDefault("MYSQL_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	tokenDuration, err := getDurationOrDefault("JWT_DURATION", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	probeTimeout, err := getDurationOrDefault("PROBE_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	probeEnabled, err := strconv.ParseBool(getEnvOrDefault("PROBE_SITES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_SITES: %w", err)
	}
	probeWorkers, err := strconv.Atoi(getEnvOrDefault("PROBE_WORKERS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_WORKERS: %w", err)
	}

	cfg := &Config{
		AppName:       getEnvOrDefault("APP_NAME", "Laravel Herd Dashboard"),
		ScanRoots:     ParseScanRoots(getEnvOrDefault("SCAN_ROOTS", defaultScanRoot()), ParseList(getEnvOrDefault("EXCLUDED_FOLDERS", strings.Join(DefaultExcludedFolders, ",")))),
		DomainSuffix:  getEnvOrDefault("DOMAIN_SUFFIX", ".test"),
		PhpMyAdminURL: strings.TrimRight(getEnvOrDefault("PHPMYADMIN_URL", "https://phpmyadmin.test"), "/"),
		Database: db.Credentials{
			Host:     getEnvOrDefault("MYSQL_HOST", "localhost"),
			Port:     getEnvOrDefault("MYSQL_PORT", "3306"),
			User:     getEnvOrDefault("MYSQL_USER", "root"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Timeout:  timeout,
		},
		Server: ServerConfig{
			ListenAddr:      getEnvOrDefault("LISTEN_ADDR", "127.0.0.1:8080"),
			AllowedOrigin:   os.Getenv("CORS_ORIGIN"),
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Username:      getEnvOrDefault("DASHBOARD_USER", "admin"),
			PasswordHash:  os.Getenv("DASHBOARD_PASSWORD_HASH"),
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenDuration: tokenDuration,
		},
		Probe: ProbeConfig{
			Enabled: probeEnabled,
			Workers: probeWorkers,
			Timeout: probeTimeout,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can work with
func (c *Config) Validate() error {
	if len(c.ScanRoots) == 0 {
		return errors.New("at least one scan root is required")
	}
	if _, err := strconv.ParseUint(c.Database.Port, 10, 16); err != nil {
		return fmt.Errorf("invalid MySQL port %q", c.Database.Port)
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("MySQL timeout must be positive, got %s", c.Database.Timeout)
	}
	if c.Probe.Enabled && (c.Probe.Workers < 1 || c.Probe.Timeout <= 0) {
		return errors.New("site probing needs at least one worker and a positive timeout")
	}
	if c.Auth.PasswordHash != "" && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when DASHBOARD_PASSWORD_HASH is set")
	}
	return nil
}

// ParseScanRoots splits a path list and applies the same exclusions to every root
func ParseScanRoots(value string, exclude []string) []discovery.ScanRoot {
	var roots []discovery.ScanRoot
	for _, path := range filepath.SplitList(value) {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		roots = append(roots, discovery.ScanRoot{Path: path, Exclude: exclude})
	}
	return roots
}

// ParseList splits a comma-separated list, dropping empty items
func ParseList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func defaultScanRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Herd"
	}
	return filepath.Join(home, "Herd")
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
