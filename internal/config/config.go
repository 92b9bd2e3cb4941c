package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ExitCodeConfig is the process exit status for a fatal configuration
// error, distinct from the watchdog-expiry status.
const ExitCodeConfig = 2

// Config is everything the daemon needs, resolved from the optional
// configs/config.yml plus environment overrides (GRIST_SERVER,
// ETHERSCAN_API_KEY, ...).
type Config struct {
	Port     string
	LogLevel string
	DBPath   string

	Grist struct {
		Server        string
		DocID         string
		APIKey        string
		WalletsTable  string
		SettingsTable string
		ChainsTable   string
	}

	Etherscan struct {
		APIKey string
	}

	Telegram struct {
		BotToken string
		ChatID   string
	}

	Watchdog struct {
		Ceiling       time.Duration
		DecayStep     time.Duration
		DecayInterval time.Duration
		WarnThreshold time.Duration
	}

	Checker struct {
		LookupTimeout time.Duration
		IdleSleep     time.Duration
	}
}

// Load reads the optional config file, applies environment overrides and
// defaults, and validates required keys. A missing required key is a
// fatal configuration error: the caller must exit with ExitCodeConfig
// before the loop ever runs.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath("configs") // configs/config.yml, optional
	v.SetConfigName("config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No file is fine; the environment carries the deployment config.
	}

	cfg := &Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log_level"),
		DBPath:   v.GetString("db.path"),
	}
	cfg.Grist.Server = v.GetString("grist.server")
	cfg.Grist.DocID = v.GetString("grist.doc_id")
	cfg.Grist.APIKey = v.GetString("grist.api_key")
	cfg.Grist.WalletsTable = v.GetString("grist.wallets_table")
	cfg.Grist.SettingsTable = v.GetString("grist.settings_table")
	cfg.Grist.ChainsTable = v.GetString("grist.chains_table")
	cfg.Etherscan.APIKey = v.GetString("etherscan.api_key")
	cfg.Telegram.BotToken = v.GetString("telegram.bot_token")
	cfg.Telegram.ChatID = v.GetString("telegram.chat_id")
	cfg.Watchdog.Ceiling = v.GetDuration("watchdog.ceiling")
	cfg.Watchdog.DecayStep = v.GetDuration("watchdog.decay_step")
	cfg.Watchdog.DecayInterval = v.GetDuration("watchdog.decay_interval")
	cfg.Watchdog.WarnThreshold = v.GetDuration("watchdog.warn_threshold")
	cfg.Checker.LookupTimeout = v.GetDuration("checker.lookup_timeout")
	cfg.Checker.IdleSleep = v.GetDuration("checker.idle_sleep")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("grist.wallets_table", "Wallets")
	v.SetDefault("grist.settings_table", "Settings")
	v.SetDefault("grist.chains_table", "Chains")
	v.SetDefault("watchdog.ceiling", 5*time.Minute)
	v.SetDefault("watchdog.decay_step", 10*time.Second)
	v.SetDefault("watchdog.decay_interval", 10*time.Second)
	v.SetDefault("watchdog.warn_threshold", time.Minute)
	v.SetDefault("checker.lookup_timeout", 30*time.Second)
	v.SetDefault("checker.idle_sleep", 10*time.Second)
}

// validate reports every missing required key at once, so a broken
// deployment is fixed in one pass.
func (c *Config) validate() error {
	var missing []string
	required := []struct {
		key   string
		value string
	}{
		{"GRIST_SERVER", c.Grist.Server},
		{"GRIST_DOC_ID", c.Grist.DocID},
		{"GRIST_API_KEY", c.Grist.APIKey},
		{"ETHERSCAN_API_KEY", c.Etherscan.APIKey},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
