package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Alerts       AlertsConfig
	Cron         CronConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIREDEPOT_APP_ENV" required:"true"`
	Port         string `envconfig:"TIREDEPOT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIREDEPOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIREDEPOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TIREDEPOT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TIREDEPOT_DB_DSN"`
	Driver string `envconfig:"TIREDEPOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TIREDEPOT_DB_HOST"`
	LegacyPort     int    `envconfig:"TIREDEPOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TIREDEPOT_DB_USER"`
	LegacyPassword string `envconfig:"TIREDEPOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"TIREDEPOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"TIREDEPOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIREDEPOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIREDEPOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIREDEPOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIREDEPOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIREDEPOT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TIREDEPOT_REDIS_ADDR"`
	Password     string        `envconfig:"TIREDEPOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIREDEPOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIREDEPOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIREDEPOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIREDEPOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIREDEPOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIREDEPOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TIREDEPOT_AUTO_MIGRATE" default:"false"`
}

// AlertsConfig tunes the notification trigger evaluator.
type AlertsConfig struct {
	UpcomingWindow    time.Duration `envconfig:"TIREDEPOT_ALERTS_UPCOMING_WINDOW" default:"48h"`
	OverdueGrace      time.Duration `envconfig:"TIREDEPOT_ALERTS_OVERDUE_GRACE" default:"336h"`
	RetentionDays     int           `envconfig:"TIREDEPOT_ALERTS_RETENTION_DAYS" default:"30"`
	DedupeWindowHours int           `envconfig:"TIREDEPOT_ALERTS_DEDUPE_WINDOW_HOURS" default:"24"`
}

// UpcomingLookahead returns the configured window, falling back to two days.
func (a AlertsConfig) UpcomingLookahead() time.Duration {
	if a.UpcomingWindow <= 0 {
		return 48 * time.Hour
	}
	return a.UpcomingWindow
}

// DedupeWindow returns how long an alert for one aggregate suppresses repeats.
func (a AlertsConfig) DedupeWindow() time.Duration {
	if a.DedupeWindowHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.DedupeWindowHours) * time.Hour
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TIREDEPOT_CRON_INTERVAL" default:"15m"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TIREDEPOT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TIREDEPOT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TIREDEPOT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TIREDEPOT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TIREDEPOT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TIREDEPOT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AlertsTopic string `envconfig:"TIREDEPOT_PUBSUB_ALERTS_TOPIC" default:"td-alert-events"`
	DomainTopic string `envconfig:"TIREDEPOT_PUBSUB_DOMAIN_TOPIC" default:"td-domain-events"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
