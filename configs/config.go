package configs

import (
	"os"
	"strconv"
	"time"
)

// Config carries the backend endpoints and capture sources the CLI needs.
// Everything comes from the environment with local-dev fallbacks.
type Config struct {
	DatabaseDSN string

	RedisAddr string
	RedisPass string
	RedisDB   int

	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3UseSSL     bool
	S3PresignTTL time.Duration

	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	AuthURL   string
	JWTSecret string

	// Media sources for the file-backed capture device. An empty video
	// source means video is unavailable; an empty audio source means the
	// microphone is denied.
	AudioSource string
	VideoSource string

	MetricsAddr string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseDSN:  getEnv("QT_DB_DSN", "host=localhost user=postgres password=postgres dbname=quicktalk port=5432 sslmode=disable"),
		RedisAddr:    getEnv("QT_REDIS_ADDR", "localhost:6379"),
		RedisPass:    getEnv("QT_REDIS_PASSWORD", ""),
		RedisDB:      getEnvInt("QT_REDIS_DB", 0),
		S3Endpoint:   getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", "minio"),
		S3SecretKey:  getEnv("S3_SECRET_KEY", "minio123"),
		S3Bucket:     getEnv("S3_BUCKET_NAME", "quicktalk-clips"),
		S3UseSSL:     getEnvBool("S3_USE_SSL", false),
		S3PresignTTL: getEnvDuration("S3_PRESIGN_TTL", 24*time.Hour),
		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "quicktalk.posts"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "quicktalk-feed"),
		AuthURL:      getEnv("QT_AUTH_URL", "http://localhost:8081"),
		JWTSecret:    getEnv("JWT_SECRET", "replace-this-with-a-strong-secret"),
		AudioSource:  getEnv("QT_AUDIO_SOURCE", ""),
		VideoSource:  getEnv("QT_VIDEO_SOURCE", ""),
		MetricsAddr:  getEnv("QT_METRICS_ADDR", ":9091"),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := time.ParseDuration(s); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
