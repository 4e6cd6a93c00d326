package config

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/talx-hub/gopher-cashback/internal/model"
)

type Config struct {
	RunAddr          string        `env:"RUN_ADDRESS"        envDefault:"localhost:8080"`
	DatabaseURI      string        `env:"DATABASE_URI"       envDefault:""`
	ERPBaseURL       string        `env:"ERP_BASE_URL"       envDefault:""`
	ERPUser          string        `env:"ERP_USER"           envDefault:""`
	ERPPassword      string        `env:"ERP_PASSWORD"       envDefault:""`
	SecretKey        string        `env:"SECRET_KEY"         envDefault:""`
	LogLevel         string        `env:"LOG_LEVEL"          envDefault:"info"`
	KafkaTopic       string        `env:"KAFKA_TOPIC"        envDefault:"wallet.balance-updated"`
	KafkaBrokers     []string      `env:"KAFKA_BROKERS"      envSeparator:","`
	ERPTimeout       time.Duration `env:"ERP_TIMEOUT"        envDefault:"10s"`
	OrderTimeout     time.Duration `env:"ORDER_TIMEOUT"      envDefault:"30s"`
	LockTimeout      time.Duration `env:"WALLET_LOCK_TIMEOUT" envDefault:"10s"`
	ERPMaxConcurrent uint64        `env:"ERP_MAX_CONCURRENT" envDefault:"16"`
	PartnerCacheSize int           `env:"PARTNER_CACHE_SIZE" envDefault:"1024"`
	NotifyWorkers    int           `env:"NOTIFY_WORKERS"     envDefault:"2"`
	NotifyQueue      int           `env:"NOTIFY_QUEUE"       envDefault:"128"`
}

type Builder struct {
	cfg *Config
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{
		cfg: &Config{
			ERPTimeout:       model.DefaultERPTimeout,
			OrderTimeout:     model.DefaultOrderTimeout,
			LockTimeout:      model.DefaultLockTimeout,
			PartnerCacheSize: model.DefaultPartnerCacheSize,
			NotifyWorkers:    model.DefaultNotifyWorkers,
			NotifyQueue:      model.DefaultNotifyQueue,
		},
		log: log,
	}
}

// FromDotEnv loads variables from an env file if it exists.
// Variables already set in the environment win.
func (b *Builder) FromDotEnv(path string) *Builder {
	if err := godotenv.Load(path); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelDebug, "no env file loaded",
			slog.String("path", path), slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse config", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromFlags() *Builder {
	fs := flag.CommandLine
	fs.StringVar(&b.cfg.RunAddr, "a", b.cfg.RunAddr, "Run address")
	fs.StringVar(&b.cfg.DatabaseURI, "d", b.cfg.DatabaseURI, "Database URI")
	fs.StringVar(&b.cfg.ERPBaseURL, "e", b.cfg.ERPBaseURL, "ERP sales order API base URL")
	fs.StringVar(&b.cfg.SecretKey, "k", b.cfg.SecretKey, "Admin token secret key")
	fs.StringVar(&b.cfg.LogLevel, "l", b.cfg.LogLevel, "Log level")
	fs.DurationVar(&b.cfg.OrderTimeout, "t", b.cfg.OrderTimeout, "Order creation timeout")

	flag.Parse()
	return b
}

func (b *Builder) GetConfig() *Config {
	return b.cfg
}

const minSecretEntropyBits = 60

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURI == "" {
		errs = append(errs, errors.New("database URI is empty"))
	}
	if c.ERPBaseURL == "" {
		errs = append(errs, errors.New("ERP base URL is empty"))
	}
	if err := passwordvalidator.Validate(c.SecretKey, minSecretEntropyBits); err != nil {
		errs = append(errs, errors.Join(errors.New("secret key is too weak"), err))
	}
	if c.ERPMaxConcurrent == 0 {
		errs = append(errs, errors.New("ERP max concurrent requests must be positive"))
	}
	if c.NotifyWorkers <= 0 || c.NotifyQueue <= 0 {
		errs = append(errs, errors.New("notification workers and queue must be positive"))
	}
	return errors.Join(errs...)
}
