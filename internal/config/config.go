package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageBackendFile     = "file"
	StorageBackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Analysis AnalysisConfig

	// EnvFileLoaded is false when no .env file was found in the working directory.
	EnvFileLoaded bool
}

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

// Enabled reports whether job description retrieval through Qdrant is configured.
func (q QdrantConfig) Enabled() bool {
	return strings.TrimSpace(q.URL) != ""
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type StorageConfig struct {
	Backend     string
	DataDir     string
	MaxFileSize int64
}

type AnalysisConfig struct {
	RetryMaxAttempts int
	Temperature      float32
	Timeout          time.Duration
}

func Load() *Config {
	envErr := godotenv.Load()

	cfg := FromViper(newViper())
	cfg.EnvFileLoaded = envErr == nil
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("LOG_DEBUG", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "talent_screener")

	v.SetDefault("QDRANT_URL", "")
	v.SetDefault("QDRANT_API_KEY", "")
	v.SetDefault("QDRANT_COLLECTION", "job_requirements")
	v.SetDefault("QDRANT_VECTOR_SIZE", 768)

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_EMBED_MODEL", "text-embedding-004")

	v.SetDefault("STORAGE_BACKEND", StorageBackendFile)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("MAX_FILE_SIZE", 10485760)

	// One attempt means failed analyses are not retried.
	v.SetDefault("RETRY_MAX_ATTEMPTS", 1)
	v.SetDefault("ANALYSIS_TEMPERATURE", 0.2)
	v.SetDefault("ANALYSIS_TIMEOUT", "2m")

	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	attempts := v.GetInt("RETRY_MAX_ATTEMPTS")
	if attempts < 1 {
		attempts = 1
	}

	timeout := v.GetDuration("ANALYSIS_TIMEOUT")
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Log: LogConfig{
			JSON:  v.GetBool("LOG_JSON"),
			Debug: v.GetBool("LOG_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
			VectorSize: v.GetUint64("QDRANT_VECTOR_SIZE"),
		},
		Gemini: GeminiConfig{
			APIKey:     v.GetString("GEMINI_API_KEY"),
			Model:      v.GetString("GEMINI_MODEL"),
			EmbedModel: v.GetString("GEMINI_EMBED_MODEL"),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			DataDir:     v.GetString("DATA_DIR"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
		},
		Analysis: AnalysisConfig{
			RetryMaxAttempts: attempts,
			Temperature:      float32(v.GetFloat64("ANALYSIS_TEMPERATURE")),
			Timeout:          timeout,
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
