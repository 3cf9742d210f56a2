package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port         string
	DatabaseURL  string // Relational store: sqlite path or postgres:// URL
	Version      string
	LogLevel     string
	QdrantHost   string
	QdrantPort   int
	EmbeddingDim int // Vector size of the embedding model in use

	AIProvider     string // "ollama" or "openai"
	AIBaseURL      string
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string

	IMAPAddr     string // host:port, implicit TLS
	IMAPUsername string
	IMAPPassword string

	Folders            []string
	InitialWindowDays  int
	DeltaWindowDays    int
	SyncIntervalMinute int
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", "mailfacts.db"),
		Version:      getEnv("VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:   getEnvInt("QDRANT_PORT", 6334),
		EmbeddingDim: getEnvInt("EMBEDDING_DIM", 384), // all-minilm dimension

		AIProvider:     getEnv("AI_PROVIDER", "ollama"),
		AIBaseURL:      os.Getenv("AI_BASE_URL"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		ChatModel:      os.Getenv("CHAT_MODEL"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),

		IMAPAddr:     os.Getenv("IMAP_ADDR"),
		IMAPUsername: os.Getenv("IMAP_USERNAME"),
		IMAPPassword: os.Getenv("IMAP_PASSWORD"),

		Folders:            getEnvList("MAIL_FOLDERS", []string{"INBOX"}),
		InitialWindowDays:  getEnvInt("INITIAL_WINDOW_DAYS", 90),
		DeltaWindowDays:    getEnvInt("DELTA_WINDOW_DAYS", 1),
		SyncIntervalMinute: getEnvInt("SYNC_INTERVAL_MINUTES", 2),
	}

	return config
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable with a default fallback
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	// Configure zerolog to output JSON without newlines
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Create logger with JSON output to stdout
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "mailfacts").
		Str("version", c.Version).
		Logger()

	// Set log level based on configuration
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
