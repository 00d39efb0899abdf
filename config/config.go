package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Ollama   OllamaConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Operator OperatorConfig
	Data     DataConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	URL                string
	Model              string
	ChatTimeoutSec     int
	AnalysisTimeoutSec int
	Managed            bool
	Binary             string
}

func (o OllamaConfig) ChatTimeout() time.Duration {
	return time.Duration(o.ChatTimeoutSec) * time.Second
}

func (o OllamaConfig) AnalysisTimeout() time.Duration {
	return time.Duration(o.AnalysisTimeoutSec) * time.Second
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type CORSConfig struct {
	AllowedOrigins string
}

type OperatorConfig struct {
	Email    string
	Password string
}

type DataConfig struct {
	Dir         string
	NodesFile   string
	LinesFile   string
	TexasFile   string
	TrackerFile string
}

func (d DataConfig) NodesPath() string   { return filepath.Join(d.Dir, d.NodesFile) }
func (d DataConfig) LinesPath() string   { return filepath.Join(d.Dir, d.LinesFile) }
func (d DataConfig) TexasPath() string   { return filepath.Join(d.Dir, d.TexasFile) }
func (d DataConfig) TrackerPath() string { return filepath.Join(d.Dir, d.TrackerFile) }

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	chatTimeout, err := getIntEnv("OLLAMA_CHAT_TIMEOUT_SEC", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_CHAT_TIMEOUT_SEC: %w", err)
	}

	analysisTimeout, err := getIntEnv("OLLAMA_ANALYSIS_TIMEOUT_SEC", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_ANALYSIS_TIMEOUT_SEC: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtExpiry, err := getIntEnv("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Ollama: OllamaConfig{
			URL:                getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:              getEnv("OLLAMA_MODEL", "qwen2.5:1.5b"),
			ChatTimeoutSec:     chatTimeout,
			AnalysisTimeoutSec: analysisTimeout,
			Managed:            getBoolEnv("OLLAMA_MANAGED", false),
			Binary:             getEnv("OLLAMA_BINARY", "ollama"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "portrail_dev_secret"),
			ExpiryHours: jwtExpiry,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Operator: OperatorConfig{
			Email:    getEnv("OPERATOR_EMAIL", "operator@portrail.local"),
			Password: getEnv("OPERATOR_PASSWORD", "portrail_dev_password"),
		},
		Data: DataConfig{
			Dir:         getEnv("DATA_DIR", "data"),
			NodesFile:   getEnv("RAIL_NODES_FILE", "railroad-nodes.csv"),
			LinesFile:   getEnv("RAIL_LINES_FILE", "railroad-lines.csv"),
			TexasFile:   getEnv("TEXAS_RAIL_FILE", "texas_rail_data.csv"),
			TrackerFile: getEnv("SHIP_TRACKER_FILE", "ship_tracker.json"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
