package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string         `mapstructure:"port"`
	Environment    string         `mapstructure:"environment"`
	AllowedOrigins []string       `mapstructure:"allowed_origins"`
	LogLevel       string         `mapstructure:"log_level"`
	Auth           AuthConfig     `mapstructure:"auth"`
	WS             WSConfig       `mapstructure:"ws"`
	Redis          RedisConfig    `mapstructure:"redis"`
	Presence       PresenceConfig `mapstructure:"presence"`
	Mongo          MongoConfig    `mapstructure:"mongo"`
	Media          MediaConfig    `mapstructure:"media"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	RequireWSToken bool          `mapstructure:"require_ws_token"`
}

type WSConfig struct {
	ReadLimit  int64         `mapstructure:"read_limit"`
	SendBuffer int           `mapstructure:"send_buffer"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PresenceConfig struct {
	OnlineTTL  time.Duration `mapstructure:"online_ttl"`
	OfflineTTL time.Duration `mapstructure:"offline_ttl"`
	Channel    string        `mapstructure:"channel"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type MediaConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
}

// legacyEnv keeps the flat variable names older deployments set.
var legacyEnv = map[string]string{
	"port":             "PORT",
	"environment":      "ENVIRONMENT",
	"allowed_origins":  "ALLOWED_ORIGINS",
	"auth.jwt_secret":  "JWT_SECRET",
	"redis.host":       "REDIS_HOST",
	"redis.port":       "REDIS_PORT",
	"redis.password":   "REDIS_PASSWORD",
	"mongo.uri":        "MONGODB_URI",
	"media.endpoint":   "MINIO_ENDPOINT",
	"media.access_key": "MINIO_ACCESS_KEY",
	"media.secret_key": "MINIO_SECRET_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("environment", "development")
	v.SetDefault("allowed_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("log_level", "info")

	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.require_ws_token", false)

	v.SetDefault("ws.read_limit", 65536)
	v.SetDefault("ws.send_buffer", 256)
	v.SetDefault("ws.ping_period", "54s")
	v.SetDefault("ws.pong_wait", "60s")
	v.SetDefault("ws.write_wait", "10s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("presence.online_ttl", "24h")
	v.SetDefault("presence.offline_ttl", "1m")
	v.SetDefault("presence.channel", "presence:events")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "socialmedia")

	v.SetDefault("media.endpoint", "localhost:9000")
	v.SetDefault("media.access_key", "minioadmin")
	v.SetDefault("media.secret_key", "minioadmin")
	v.SetDefault("media.bucket", "socio-media")
	v.SetDefault("media.use_ssl", false)
	v.SetDefault("media.public_url", "")
}

// Load reads config/config.<CONFIG_ENV>.yaml when present, then environment
// variables (SOCIO_AUTH_JWT_SECRET style, or the legacy flat names).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		log.Debug().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	v.SetEnvPrefix("SOCIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		if val := os.Getenv(name); val != "" {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.AllowedOrigins = splitOrigins(strings.Join(cfg.AllowedOrigins, ","))

	return &cfg, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
