package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Image    ImageConfig
	Upload   UploadConfig
	Settings SettingsConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type AIConfig struct {
	Provider        string
	GeminiAPIKey    string
	GeminiBaseURL   string
	QwenAPIKey      string
	QwenBaseURL     string
	GradeModels     []string
	VisionModels    []string
	TextModels      []string
	ProviderTimeout time.Duration
	BatchLimit      int
}

type ImageConfig struct {
	MaxEdge      int
	EssayMaxEdge int
	Quality      int
}

type UploadConfig struct {
	MaxBodySize int64
	MaxImages   int
}

type SettingsConfig struct {
	Path string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		AI: AIConfig{
			Provider:        getEnv("AI_PROVIDER", "gemini"),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiBaseURL:   getEnv("GEMINI_BASE_URL", ""),
			QwenAPIKey:      getEnv("QWEN_API_KEY", ""),
			QwenBaseURL:     getEnv("QWEN_BASE_URL", ""),
			GradeModels:     getEnvAsList("GRADE_MODELS"),
			VisionModels:    getEnvAsList("VISION_MODELS"),
			TextModels:      getEnvAsList("TEXT_MODELS"),
			ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", "120s"),
			BatchLimit:      getEnvAsInt("OCR_BATCH_LIMIT", 0),
		},
		Image: ImageConfig{
			MaxEdge:      getEnvAsInt("IMAGE_MAX_EDGE", 1920),
			EssayMaxEdge: getEnvAsInt("ESSAY_IMAGE_MAX_EDGE", 1024),
			Quality:      getEnvAsInt("IMAGE_QUALITY", 85),
		},
		Upload: UploadConfig{
			MaxBodySize: getEnvAsInt64("MAX_UPLOAD_SIZE", 52428800),
			MaxImages:   getEnvAsInt("MAX_IMAGES", 10),
		},
		Settings: SettingsConfig{
			Path: getEnv("SETTINGS_PATH", "./data/settings.json"),
		},
	}
}

// APIKeyFor returns the environment credential of a provider.
func (c *Config) APIKeyFor(provider string) string {
	switch strings.ToLower(provider) {
	case "qwen":
		return c.AI.QwenAPIKey
	default:
		return c.AI.GeminiAPIKey
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
