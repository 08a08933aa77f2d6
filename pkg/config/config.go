package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GigaChat GigaChatConfig
	Analysis AnalysisConfig
	Rates    RatesConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

// AnalysisConfig holds the tunables of the statement analysis pipeline.
type AnalysisConfig struct {
	// ChunkSize is the maximum number of characters sent to the model per call.
	ChunkSize int
	// MaxTokens is the completion budget per chunk, sized generously so long
	// expense lists are not truncated.
	MaxTokens int
	// CurrencyThreshold: amounts below it without an explicit currency marker
	// are assumed to be USD, amounts at or above it UYU.
	CurrencyThreshold float64
	// FallbackConfidence is assigned to heuristic extraction results.
	FallbackConfidence float64
	// CatchAllCategory receives every expense no specific category fits.
	CatchAllCategory string
	HomeCurrency     string
}

type RatesConfig struct {
	TTL            time.Duration
	FallbackUSDUYU float64
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine: plain environment variables work for Docker/K8s.

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	chunkSize, _ := strconv.Atoi(getEnv("ANALYSIS_CHUNK_SIZE", "80000"))
	maxTokens, _ := strconv.Atoi(getEnv("ANALYSIS_MAX_TOKENS", "4096"))
	currencyThreshold, _ := strconv.ParseFloat(getEnv("ANALYSIS_CURRENCY_THRESHOLD", "500"), 64)
	fallbackConfidence, _ := strconv.ParseFloat(getEnv("ANALYSIS_FALLBACK_CONFIDENCE", "0.3"), 64)
	ratesTTL, _ := strconv.Atoi(getEnv("RATES_TTL_MINUTES", "60"))
	ratesFallback, _ := strconv.ParseFloat(getEnv("RATES_FALLBACK_USD_UYU", "40"), 64)
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "platita"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Analysis: AnalysisConfig{
			ChunkSize:          chunkSize,
			MaxTokens:          maxTokens,
			CurrencyThreshold:  currencyThreshold,
			FallbackConfidence: fallbackConfidence,
			CatchAllCategory:   getEnv("ANALYSIS_CATCHALL_CATEGORY", "Otros Gastos"),
			HomeCurrency:       getEnv("HOME_CURRENCY", "UYU"),
		},
		Rates: RatesConfig{
			TTL:            time.Duration(ratesTTL) * time.Minute,
			FallbackUSDUYU: ratesFallback,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
