package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Risk     RiskConfig
	Capacity CapacityConfig
	Closeout CloseoutConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RiskConfig holds attendance risk thresholds and sweep cache tuning.
type RiskConfig struct {
	CriticalAbsences   int
	CriticalMissStreak int
	WarningAbsences    int
	SweepCacheTTL      time.Duration
	SweepCacheEnabled  bool
}

// CapacityConfig governs placement capacity accounting.
type CapacityConfig struct {
	DefaultMaxPerDay int
}

// CloseoutConfig holds internship completion requirements.
type CloseoutConfig struct {
	RequiredHours float64
}

// CronConfig authenticates the scheduled job runner.
type CronConfig struct {
	SharedSecret string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Risk = RiskConfig{
		CriticalAbsences:   v.GetInt("RISK_CRITICAL_ABSENCES"),
		CriticalMissStreak: v.GetInt("RISK_CRITICAL_MISS_STREAK"),
		WarningAbsences:    v.GetInt("RISK_WARNING_ABSENCES"),
		SweepCacheTTL:      parseDuration(v.GetString("RISK_SWEEP_CACHE_TTL"), 10*time.Minute),
		SweepCacheEnabled:  v.GetBool("RISK_SWEEP_CACHE_ENABLED"),
	}

	cfg.Capacity = CapacityConfig{
		DefaultMaxPerDay: v.GetInt("CAPACITY_DEFAULT_MAX_PER_DAY"),
	}

	cfg.Closeout = CloseoutConfig{
		RequiredHours: v.GetFloat64("CLOSEOUT_REQUIRED_HOURS"),
	}

	cfg.Cron = CronConfig{
		SharedSecret: v.GetString("CRON_SHARED_SECRET"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "paramedic_ops")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RISK_CRITICAL_ABSENCES", 3)
	v.SetDefault("RISK_CRITICAL_MISS_STREAK", 3)
	v.SetDefault("RISK_WARNING_ABSENCES", 2)
	v.SetDefault("RISK_SWEEP_CACHE_TTL", "10m")
	v.SetDefault("RISK_SWEEP_CACHE_ENABLED", true)

	v.SetDefault("CAPACITY_DEFAULT_MAX_PER_DAY", 2)
	v.SetDefault("CLOSEOUT_REQUIRED_HOURS", 480)

	v.SetDefault("CRON_SHARED_SECRET", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
