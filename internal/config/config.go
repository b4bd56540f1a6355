package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App      App      `env-prefix:"APP_"`
		Logger   Logger   `env-prefix:"LOGGER_"`
		Postgres Postgres `env-prefix:"DB_"`
		HTTP     HTTP     `env-prefix:"HTTP_"`
		Cache    Cache    `env-prefix:"CACHE_"`
		Notifier Notifier `env-prefix:"NOTIFIER_"`
		Outbox   Outbox   `env-prefix:"OUTBOX_"`
		Warranty Warranty `env-prefix:"WARRANTY_"`
		Tracking Tracking `env-prefix:"TRACKING_"`
		Admin    Admin    `env-prefix:"ADMIN_"`
		Metrics  Metrics  `env-prefix:"METRICS_"`
		Env      string   `                        env:"ENV" env-default:"local" validate:"oneof=local dev staging prod"`
	}

	App struct {
		Name    string `env:"NAME"    validate:"required"`
		Version string `env:"VERSION" validate:"required"`
	}

	Postgres struct {
		Host           string        `env:"HOST"             validate:"required"`
		Port           string        `env:"PORT"             validate:"required,gte=1,lte=65535"`
		Name           string        `env:"NAME"             validate:"required"`
		User           string        `env:"USER"             validate:"required"`
		Password       string        `env:"PASSWORD"         validate:"required"`
		SSLMode        string        `env:"SSL_MODE"         validate:"required"`
		PoolMax        int32         `env:"POOL_MAX"         validate:"min=1,max=100"                             env-default:"20"`
		ConnAttempts   int           `env:"CONN_ATTEMPTS"    validate:"min=1,max=10"                              env-default:"5"`
		BaseRetryDelay time.Duration `env:"BASE_RETRY_DELAY" validate:"gte=10ms,lte=10s"                          env-default:"100ms"`
		MaxRetryDelay  time.Duration `env:"MAX_RETRY_DELAY"  validate:"gte=100ms,lte=30s,gtefield=BaseRetryDelay" env-default:"5s"`
	}

	HTTP struct {
		Host              string        `env:"HOST"                validate:"required"                 env-default:"0.0.0.0"`
		Port              string        `env:"PORT"                validate:"required,gte=1,lte=65535" env-default:"8080"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"5s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       validate:"gte=10ms,lte=30s"         env-default:"5s"`
		IdleTimeout       time.Duration `env:"IDLE_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"60s"`
		ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"    validate:"gte=10ms,lte=30s"         env-default:"10s"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" validate:"gte=10ms,lte=30s"         env-default:"5s"`
	}

	Cache struct {
		Capacity        int           `env:"CAPACITY"         validate:"required,min=1,max=1000000"`
		TTL             time.Duration `env:"TTL"              validate:"required,gt=0s,lte=24h"     env-default:"5m"`
		CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" validate:"gt=0s,lte=24h"              env-default:"10s"`
	}

	Notifier struct {
		Brokers        []string `env:"BROKERS"         validate:"min=1,dive,hostname_port" env-separator:","`
		Topic          string   `env:"TOPIC"           validate:"required"`
		AdminBroadcast bool     `env:"ADMIN_BROADCAST" env-default:"false"`

		BatchSize    int           `env:"BATCH_SIZE"    validate:"required,min=1,max=1000"  env-default:"100"`
		BatchTimeout time.Duration `env:"BATCH_TIMEOUT" validate:"required,gte=1ms,lte=30s" env-default:"1s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" validate:"required,gte=1ms,lte=30s" env-default:"2s"`
	}

	Outbox struct {
		PollInterval   time.Duration `env:"POLL_INTERVAL"   validate:"required,gte=100ms,lte=1m" env-default:"1s"`
		BatchSize      int           `env:"BATCH_SIZE"      validate:"required,min=1,max=500"    env-default:"50"`
		MaxAttempts    int           `env:"MAX_ATTEMPTS"    validate:"min=1,max=20"              env-default:"5"`
		PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" validate:"gte=10ms,lte=30s"          env-default:"2s"`
	}

	// Warranty durations are policy configuration, never literals in
	// code. A zero per-channel value falls back to DefaultDays.
	Warranty struct {
		DefaultDays int `env:"DEFAULT_DAYS" validate:"min=1,max=3650"  env-default:"365"`
		ShopeeDays  int `env:"SHOPEE_DAYS"  validate:"min=0,max=3650"  env-default:"0"`
		LazadaDays  int `env:"LAZADA_DAYS"  validate:"min=0,max=3650"  env-default:"0"`
		TikTokDays  int `env:"TIKTOK_DAYS"  validate:"min=0,max=3650"  env-default:"0"`
		ManualDays  int `env:"MANUAL_DAYS"  validate:"min=0,max=3650"  env-default:"0"`
	}

	Tracking struct {
		Enabled bool          `env:"ENABLED"  env-default:"false"`
		BaseURL string        `env:"BASE_URL" validate:"omitempty,url"`
		Timeout time.Duration `env:"TIMEOUT"  validate:"gte=100ms,lte=30s" env-default:"3s"`
	}

	Admin struct {
		UserIDs []string `env:"USER_IDS" env-separator:","`
	}

	Metrics struct {
		Host              string        `env:"HOST"                validate:"required"                 env-default:"0.0.0.0"`
		Port              string        `env:"PORT"                validate:"required,gte=1,lte=65535" env-default:"9090"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"5s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       validate:"gte=10ms,lte=30s"         env-default:"5s"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" validate:"gte=10ms,lte=30s"         env-default:"5s"`
	}

	Logger struct {
		Level      string `env:"LEVEL"       env-default:"info"                       validate:"oneof=debug info warn error"`
		Filename   string `env:"FILENAME"    env-default:"./logs/warranty-server.log"`
		MaxSize    int    `env:"MAX_SIZE"    env-default:"100"                        validate:"min=1,max=1000"`
		MaxBackups int    `env:"MAX_BACKUPS" env-default:"3"                          validate:"min=0,max=20"`
		MaxAge     int    `env:"MAX_AGE"     env-default:"28"                         validate:"min=1,max=365"`
	}
)

// ChannelDays maps per-channel warranty durations, skipping channels
// left at the DefaultDays fallback.
func (w Warranty) ChannelDays() map[entity.Channel]int {
	days := make(map[entity.Channel]int, 4)
	for ch, d := range map[entity.Channel]int{
		entity.ChannelShopee: w.ShopeeDays,
		entity.ChannelLazada: w.LazadaDays,
		entity.ChannelTikTok: w.TikTokDays,
		entity.ChannelManual: w.ManualDays,
	} {
		if d > 0 {
			days[ch] = d
		}
	}
	return days
}

func Load() (*Config, error) {
	path := fetchConfigPath()
	if path == "" {
		return nil, entity.ErrConfigPathNotSet
	}
	return LoadPath(path)
}

func LoadPath(configPath string) (*Config, error) {
	const op = "config.LoadPath"

	validate := validator.New()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	} else if err != nil {
		return nil, fmt.Errorf("%s: checking config file: %w", op, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: read config: %w", op, err)
	}

	var validationErrors []string
	if err := validate.Struct(&cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, ve := range validationErrs {
				validationErrors = append(validationErrors,
					fmt.Sprintf("%s=%v must satisfy '%s'", ve.Field(), ve.Value(), ve.Tag()))
			}
			return nil, fmt.Errorf(
				"%s: config validation: %v", op,
				strings.Join(validationErrors, "; "),
			)
		}
		return nil, fmt.Errorf("%s: config validation: %w", op, err)
	}

	return &cfg, nil
}

func fetchConfigPath() string {
	var path string
	flag.StringVar(&path, "config", "", "Path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}
