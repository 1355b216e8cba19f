package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	LogLevel string

	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool
}

type ServerConfig struct {
	Port          string
	GinMode       string
	AllowedOrigin string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// KafkaConfig is optional; with no brokers user events are not published.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	envLoaded := godotenv.Load() == nil
	cfg, err := loadFrom(newViper())
	if err != nil {
		return nil, err
	}
	cfg.EnvFileLoaded = envLoaded
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("READ_TIMEOUT", "10s")
	v.SetDefault("WRITE_TIMEOUT", "15s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "usuarios")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION", defaultJWTExpiration.String())
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "user_events")
	v.SetDefault("LOG_LEVEL", "info")
	return v
}

func loadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetString("PORT"),
			GinMode:       v.GetString("GIN_MODE"),
			AllowedOrigin: v.GetString("CORS_ORIGIN"),
			ReadTimeout:   v.GetDuration("READ_TIMEOUT"),
			WriteTimeout:  v.GetDuration("WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:     []byte(v.GetString("JWT_SECRET")),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
		},
		Kafka: KafkaConfig{
			Brokers: CSV(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.JWT.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CSV splits a comma separated list, dropping blanks.
func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String masks the secrets so the config can be logged.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %s, DB: %s@%s:%s/%s, JWT: *** (masked) ***, Kafka: %v, CORS: %s}",
		c.Server.Port, c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name,
		c.Kafka.Brokers, c.Server.AllowedOrigin,
	)
}
