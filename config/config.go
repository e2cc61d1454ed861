package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Speech    SpeechConfig
	LLM       LLMConfig
	Storage   StorageConfig
	Kafka     KafkaConfig
	Recording RecordingConfig
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	AutoMigrate bool
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SpeechConfig points at the speech-to-text vendor. An empty APIKey disables
// transcription without failing startup.
type SpeechConfig struct {
	BaseURL         string
	APIKey          string
	LanguageCode    string
	PollInterval    time.Duration
	MaxPollAttempts int
	HTTPTimeout     time.Duration
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	HTTPTimeout time.Duration
}

type StorageConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	Prefix       string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RecordingConfig struct {
	Retention          time.Duration
	CleanupInterval    time.Duration
	ChunkInterval      time.Duration
	SessionIdleTimeout time.Duration
	MaxUploadBytes     int64
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// .env is optional in containers where everything comes from the environment
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	setDefaults()

	config := &Config{
		App: AppConfig{
			Port:        viper.GetString("APP_PORT"),
			Env:         viper.GetString("APP_ENV"),
			LogLevel:    viper.GetString("LOG_LEVEL"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Speech: SpeechConfig{
			BaseURL:         viper.GetString("SPEECH_BASE_URL"),
			APIKey:          viper.GetString("SPEECH_API_KEY"),
			LanguageCode:    viper.GetString("SPEECH_LANGUAGE_CODE"),
			PollInterval:    durationOr("SPEECH_POLL_INTERVAL", time.Second),
			MaxPollAttempts: viper.GetInt("SPEECH_MAX_POLL_ATTEMPTS"),
			HTTPTimeout:     durationOr("SPEECH_HTTP_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:     viper.GetString("LLM_BASE_URL"),
			APIKey:      viper.GetString("LLM_API_KEY"),
			Model:       viper.GetString("LLM_MODEL"),
			Temperature: viper.GetFloat64("LLM_TEMPERATURE"),
			HTTPTimeout: durationOr("LLM_HTTP_TIMEOUT", 120*time.Second),
		},
		Storage: StorageConfig{
			Bucket:       viper.GetString("S3_BUCKET"),
			Region:       viper.GetString("S3_REGION"),
			Endpoint:     viper.GetString("S3_ENDPOINT"),
			UsePathStyle: viper.GetBool("S3_USE_PATH_STYLE"),
			Prefix:       viper.GetString("S3_PREFIX"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Recording: RecordingConfig{
			Retention:          durationOr("RECORDING_RETENTION", 24*time.Hour),
			CleanupInterval:    durationOr("RECORDING_CLEANUP_INTERVAL", time.Hour),
			ChunkInterval:      durationOr("RECORDING_CHUNK_INTERVAL", time.Second),
			SessionIdleTimeout: durationOr("RECORDING_SESSION_IDLE_TIMEOUT", 30*time.Minute),
			MaxUploadBytes:     viper.GetInt64("RECORDING_MAX_UPLOAD_BYTES"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("SPEECH_BASE_URL", "https://api.assemblyai.com/v2")
	viper.SetDefault("SPEECH_LANGUAGE_CODE", "en")
	viper.SetDefault("SPEECH_MAX_POLL_ATTEMPTS", 60)
	viper.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("LLM_TEMPERATURE", 0.3)
	viper.SetDefault("S3_PREFIX", "recordings")
	viper.SetDefault("KAFKA_TOPIC", "consultation-events")
	viper.SetDefault("RECORDING_MAX_UPLOAD_BYTES", 50<<20)
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
