package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type CropCareConfig struct {
	Port         string
	DataDir      string
	UploadDir    string
	LogDir       string
	EventWorkers int
	// CORSAllowedOrigins lists browser origins allowed to call the API. "*"
	// allows any origin.
	CORSAllowedOrigins []string
	ClassifierCfg      ClassifierConfig
	RedisCfg           RedisConfig
	MinioCfg           MinioConfig
	RabbitMQCfg        RabbitMQConfig
	PhoneCfg           PhoneConfig
}

type ClassifierConfig struct {
	Python  string
	Script  string
	Timeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	Enabled        bool
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
}

type RabbitMQConfig struct {
	Enabled  bool
	Username string
	Password string
	Host     string
	Port     string
}

type PhoneConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

func New() *CropCareConfig {
	return &CropCareConfig{
		Port:               getEnvOrDefault("PORT", "5000"),
		DataDir:            getEnvOrDefault("DATA_DIR", "data"),
		UploadDir:          getEnvOrDefault("UPLOAD_DIR", "uploads"),
		LogDir:             getEnvOrDefault("LOG_DIR", "/cropcare/log/cropcare_service"),
		EventWorkers:       getIntOrDefault("EVENT_WORKERS", 2),
		CORSAllowedOrigins: getListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ClassifierCfg: ClassifierConfig{
			Python:  getEnvOrDefault("CLASSIFIER_PYTHON", "python3"),
			Script:  getEnvOrDefault("CLASSIFIER_SCRIPT", "ml/predict_pytorch.py"),
			Timeout: getDurationOrDefault("CLASSIFIER_TIMEOUT", 60*time.Second),
		},
		RedisCfg: RedisConfig{
			Enabled:  getBoolOrDefault("REDIS_ENABLED", true),
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		MinioCfg: MinioConfig{
			Enabled:        getBoolOrDefault("MINIO_ENABLED", false),
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9000"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Enabled:  getBoolOrDefault("RABBITMQ_ENABLED", false),
			Username: getEnvOrDefault("RABBITMQ_USER", "guest"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "guest"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		PhoneCfg: PhoneConfig{
			Host:     getEnvOrDefault("PHONE_HOST", "http://localhost"),
			Port:     getEnvOrDefault("PHONE_PORT", "8080"),
			Username: getEnvOrDefault("PHONE_USERNAME", ""),
			Password: getEnvOrDefault("PHONE_PASSWORD", ""),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getListOrDefault splits a comma separated value, dropping blank entries.
func getListOrDefault(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getDurationOrDefault accepts Go durations ("90s") or a bare number of seconds.
func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
