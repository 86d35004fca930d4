package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"

	wderrors "github.com/iamwavecut/warden/internal/errors"
)

const envPrefix = "WD_"

type (
	Config struct {
		TelegramAPIToken string   `env:"TOKEN,required"`
		OwnerID          int64    `env:"OWNER_ID"`
		DefaultLanguage  string   `env:"LANG,default=en"`
		EnabledHandlers  []string `env:"HANDLERS,default=tracker,moderator"`
		LogLevel         int      `env:"LOG_LEVEL,default=4"`
		DotPath          string   `env:"DOT_PATH,default=~/.warden"`
		DBName           string   `env:"DB_NAME,default=bot.db"`
		Workers          int      `env:"WORKERS,default=32"`
		AntiSpam         AntiSpam
		Clear            Clear
		Telemetry        Telemetry
	}

	AntiSpam struct {
		MaxMessages   int           `env:"SPAM_MAX_MESSAGES,default=6"`
		Window        time.Duration `env:"SPAM_WINDOW,default=10s"`
		SweepInterval time.Duration `env:"SPAM_SWEEP_INTERVAL,default=30s"`
		AdminCacheTTL time.Duration `env:"ADMIN_CACHE_TTL,default=5m"`
	}

	Clear struct {
		MaxCount     int           `env:"CLEAR_MAX_COUNT,default=100"`
		DefaultCount int           `env:"CLEAR_DEFAULT_COUNT,default=10"`
		DeleteDelay  time.Duration `env:"CLEAR_DELETE_DELAY,default=50ms"`
		HistorySize  int           `env:"HISTORY_SIZE,default=3000"`
		StatusTTL    time.Duration `env:"CLEAR_STATUS_TTL,default=2s"`
	}

	Telemetry struct {
		MetricsAddr string `env:"METRICS_ADDR,default=:2112"`
		AuditLog    string `env:"AUDIT_LOG,default=audit.log"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

// Load reads the process environment once and caches the result.
func Load() (Config, error) {
	once.Do(func() {
		cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
		if err != nil {
			globalErr = err
			return
		}
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

// LoadWith resolves the configuration from lookuper, which is queried with WD_-prefixed keys.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	envcfg := envconfig.Config{
		Lookuper: envconfig.PrefixLookuper(envPrefix, lookuper),
		Target:   cfg,
	}
	if err := envconfig.ProcessWith(ctx, &envcfg); err != nil {
		return nil, fmt.Errorf("%w: process env config: %w", wderrors.ErrConfiguration, err)
	}
	dotPath, err := homedir.Expand(cfg.DotPath)
	if err != nil {
		return nil, fmt.Errorf("%w: expand dot path: %w", wderrors.ErrConfiguration, err)
	}
	cfg.DotPath = dotPath
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.AntiSpam.MaxMessages < 1:
		return fmt.Errorf("%w: SPAM_MAX_MESSAGES must be positive", wderrors.ErrConfiguration)
	case c.AntiSpam.Window <= 0:
		return fmt.Errorf("%w: SPAM_WINDOW must be positive", wderrors.ErrConfiguration)
	case c.AntiSpam.SweepInterval <= 0:
		return fmt.Errorf("%w: SPAM_SWEEP_INTERVAL must be positive", wderrors.ErrConfiguration)
	case c.Clear.MaxCount < 1 || c.Clear.DefaultCount < 1:
		return fmt.Errorf("%w: clear counts must be positive", wderrors.ErrConfiguration)
	case c.Clear.HistorySize < 1:
		return fmt.Errorf("%w: HISTORY_SIZE must be positive", wderrors.ErrConfiguration)
	case c.Workers < 1:
		return fmt.Errorf("%w: WORKERS must be positive", wderrors.ErrConfiguration)
	}
	return nil
}
