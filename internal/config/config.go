package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (consumed contract: a bearer token resolves to a user or fails)
	JWTSecret string

	// OpenRouter AI gateway
	OpenRouterAPIKey   string
	TranscriptionURL   string
	CompletionsURL     string
	TranscriptionModel string
	ReportModel        string
	SystemPromptPath   string
	AITimeout          time.Duration

	// Google Drive
	DriveFolderName string

	// Admin
	AdminToken string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "inforia_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		TranscriptionURL:   getEnv("OPENROUTER_TRANSCRIPTION_URL", "https://openrouter.ai/api/v1/audio/transcriptions"),
		CompletionsURL:     getEnv("OPENROUTER_COMPLETIONS_URL", "https://openrouter.ai/api/v1/chat/completions"),
		TranscriptionModel: getEnv("TRANSCRIPTION_MODEL", "openai/whisper-1"),
		ReportModel:        getEnv("REPORT_MODEL", "openai/gpt-4o-mini"),
		SystemPromptPath:   getEnv("SYSTEM_PROMPT_PATH", ""),
		AITimeout:          parseDuration(getEnv("AI_TIMEOUT", "60s")),

		DriveFolderName: getEnv("DRIVE_FOLDER_NAME", "iNFORiA_Reports"),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
