package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every scheduler variable.
const EnvPrefix = "SCHEDULER"

// Config captures environment driven configuration values for the scheduler.
type Config struct {
	HTTPPort       int
	GatewayPort    int
	SQLitePath     string
	Site           string
	GatewayURL     string
	BackupDebounce time.Duration
	BackupTimeout  time.Duration
	ArchiveCron    string
	TimezoneName   string
	Location       *time.Location
	GitHubToken    string
	GistID         string
	GitHubAPIURL   string
}

// AutoBackup reports whether changes are pushed automatically.
func (c Config) AutoBackup() bool {
	return c.BackupDebounce > 0 && c.GatewayURL != ""
}

var defaults = map[string]any{
	"HTTP_PORT":       "8080",
	"GATEWAY_PORT":    "8888",
	"SQLITE_PATH":     "scheduler.db",
	"SITE":            "scheduler-app",
	"GATEWAY_URL":     "",
	"BACKUP_DEBOUNCE": "0s",
	"BACKUP_TIMEOUT":  "30s",
	"ARCHIVE_CRON":    "",
	"TIMEZONE":        "Local",
	"GITHUB_API_URL":  "",
}

// Load reads SCHEDULER_* variables from the current process environment and,
// when SCHEDULER_CONFIG_FILE names one, from a config file. Environment
// values win over the file. GITHUB_TOKEN and GIST_ID are also accepted
// without the prefix.
//
// Invalid values are reported together.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	_ = v.BindEnv("GITHUB_TOKEN", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("GIST_ID", EnvPrefix+"_GIST_ID", "GIST_ID")
	_ = v.BindEnv("CONFIG_FILE")

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		SQLitePath:   strings.TrimSpace(v.GetString("SQLITE_PATH")),
		Site:         strings.TrimSpace(v.GetString("SITE")),
		GatewayURL:   strings.TrimRight(strings.TrimSpace(v.GetString("GATEWAY_URL")), "/"),
		ArchiveCron:  strings.TrimSpace(v.GetString("ARCHIVE_CRON")),
		TimezoneName: strings.TrimSpace(v.GetString("TIMEZONE")),
		GitHubToken:  strings.TrimSpace(v.GetString("GITHUB_TOKEN")),
		GistID:       strings.TrimSpace(v.GetString("GIST_ID")),
		GitHubAPIURL: strings.TrimSpace(v.GetString("GITHUB_API_URL")),
	}

	invalid := make([]string, 0, 2)
	key := func(name string) string { return EnvPrefix + "_" + name }

	var err error
	if cfg.HTTPPort, err = port(v.GetString("HTTP_PORT")); err != nil {
		invalid = append(invalid, key("HTTP_PORT"))
	}
	if cfg.GatewayPort, err = port(v.GetString("GATEWAY_PORT")); err != nil {
		invalid = append(invalid, key("GATEWAY_PORT"))
	}
	if cfg.BackupDebounce, err = duration(v.GetString("BACKUP_DEBOUNCE"), true); err != nil {
		invalid = append(invalid, key("BACKUP_DEBOUNCE"))
	}
	if cfg.BackupTimeout, err = duration(v.GetString("BACKUP_TIMEOUT"), false); err != nil {
		invalid = append(invalid, key("BACKUP_TIMEOUT"))
	}
	if cfg.ArchiveCron != "" {
		if _, err := cron.ParseStandard(cfg.ArchiveCron); err != nil {
			invalid = append(invalid, key("ARCHIVE_CRON"))
		}
	}
	if cfg.TimezoneName == "" {
		cfg.TimezoneName = "Local"
	}
	if cfg.Location, err = time.LoadLocation(cfg.TimezoneName); err != nil {
		invalid = append(invalid, key("TIMEZONE"))
	}

	if cfg.SQLitePath == "" {
		return Config{}, fmt.Errorf("required configuration is missing: %s", key("SQLITE_PATH"))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	if cfg.Site == "" {
		cfg.Site = "scheduler-app"
	}
	return cfg, nil
}

func port(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 || n > 65535 {
		return 0, errors.New("invalid port")
	}
	return n, nil
}

func duration(value string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, errors.New("invalid duration")
	}
	return d, nil
}
