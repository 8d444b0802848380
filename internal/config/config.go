package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Shortener ShortenerConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	OTel      OTelConfig
}

type AppConfig struct {
	Name    string
	Version string
	Env     string
}

type ServerConfig struct {
	Port string
	Host string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	ClickTopic string
}

type ShortenerConfig struct {
	BaseURL        string
	CodeLength     int
	RedirectStatus int // 301 or 302
}

type SecurityConfig struct {
	APIKeys []string
}

// RateLimitConfig carries the two independent fixed-window budgets: public
// redirects bucketed per hashed IP, and the authenticated API bucketed per
// actor.
type RateLimitConfig struct {
	RedirectLimit  int
	RedirectWindow time.Duration
	APILimit       int
	APIWindow      time.Duration
}

type OTelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		App: AppConfig{
			Name:    GetEnv("APP_NAME", "shortloop"),
			Version: GetEnv("APP_VERSION", "0.1.0"),
			Env:     GetEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: GetEnv("APP_PORT", "8080"),
			Host: GetEnv("APP_HOST", "localhost"),
		},
		MongoDB: MongoDBConfig{
			URI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGODB_DATABASE", "shortloop"),
		},
		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_ADDR", "localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:    GetEnvBool("KAFKA_ENABLED", false),
			Brokers:    SplitCSV(GetEnv("KAFKA_BROKERS", "localhost:9092")),
			ClickTopic: GetEnv("KAFKA_CLICK_TOPIC", "url.events.link-clicked"),
		},
		Shortener: ShortenerConfig{
			BaseURL:        GetEnv("SHORTENER_BASE_URL", "http://localhost:8080"),
			CodeLength:     GetEnvInt("CODE_LENGTH", 7),
			RedirectStatus: GetEnvInt("REDIRECT_STATUS", 302),
		},
		Security: SecurityConfig{
			APIKeys: GetEnvSlice("API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RedirectLimit:  GetEnvInt("RATE_LIMIT_REDIRECT", 120),
			RedirectWindow: GetEnvDuration("RATE_LIMIT_REDIRECT_WINDOW", time.Minute),
			APILimit:       GetEnvInt("RATE_LIMIT_API", 60),
			APIWindow:      GetEnvDuration("RATE_LIMIT_API_WINDOW", time.Minute),
		},
		OTel: OTelConfig{
			Enabled:  GetEnvBool("OTEL_ENABLED", false),
			Endpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}

	if cfg.Shortener.RedirectStatus != 301 && cfg.Shortener.RedirectStatus != 302 {
		return nil, fmt.Errorf("REDIRECT_STATUS must be 301 or 302 (got %d)", cfg.Shortener.RedirectStatus)
	}
	if cfg.Shortener.CodeLength < 4 || cfg.Shortener.CodeLength > 32 {
		return nil, fmt.Errorf("CODE_LENGTH must be between 4 and 32 (got %d)", cfg.Shortener.CodeLength)
	}
	if cfg.RateLimit.RedirectLimit <= 0 || cfg.RateLimit.APILimit <= 0 {
		return nil, fmt.Errorf("rate limits must be > 0")
	}
	if cfg.RateLimit.RedirectWindow < time.Second || cfg.RateLimit.APIWindow < time.Second {
		return nil, fmt.Errorf("rate limit windows must be at least 1s")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker when Kafka is enabled")
	}

	return cfg, nil
}
