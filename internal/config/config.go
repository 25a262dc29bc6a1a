package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	WhatsApp WhatsAppConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	DataDir            string // BadgerDB directory for conversation storage
}

type DatabaseConfig struct {
	// Connection is an optional Postgres DSN. When set, conversation
	// histories are stored in Postgres instead of the local BadgerDB.
	Connection string
}

type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	APIVersion    string
}

// ProviderConfig is one AI backend's startup configuration. A missing
// APIKey leaves that adapter permanently disabled.
type ProviderConfig struct {
	APIKey           string
	Model            string
	Instructions     string // literal system-instruction string
	InstructionsFile string // path to a system-prompt file; wins over Instructions
	KnowledgeDir     string // directory scanned once at startup
	BaseURL          string // DeepSeek only
}

type AIConfig struct {
	// Provider selects the active backend: "gemini" or "deepseek".
	Provider string
	// DocumentSupport gates the optional pdf/docx/xlsx knowledge-base
	// extractors; plain text is always supported.
	DocumentSupport bool
	Gemini          ProviderConfig
	DeepSeek        ProviderConfig
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/bridge.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			DataDir:            getEnv("DATA_DIR", "data/conversations"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			VerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
			APIVersion:    getEnv("WHATSAPP_API_VERSION", "v18.0"),
		},
		Ai: AIConfig{
			Provider:        getEnv("AI_PROVIDER", "gemini"),
			DocumentSupport: getEnv("KB_DOCUMENT_SUPPORT", "true") == "true",
			Gemini: ProviderConfig{
				APIKey:           getEnv("GEMINI_API_KEY", ""),
				Model:            getEnv("GEMINI_MODEL", "models/gemini-2.0-flash-lite"),
				Instructions:     getEnv("GEMINI_ASSISTANT_INSTRUCTIONS", ""),
				InstructionsFile: getEnv("GEMINI_SYSTEM_PROMPT_FILE_PATH", ""),
				KnowledgeDir:     getEnv("GEMINI_KNOWLEDGE_BASE_PATH", ""),
			},
			DeepSeek: ProviderConfig{
				APIKey:           getEnv("DEEPSEEK_API_KEY", ""),
				Model:            getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
				Instructions:     getEnv("DEEPSEEK_ASSISTANT_INSTRUCTIONS", ""),
				InstructionsFile: getEnv("DEEPSEEK_SYSTEM_PROMPT_FILE_PATH", ""),
				KnowledgeDir:     getEnv("DEEPSEEK_KNOWLEDGE_BASE_PATH", ""),
				BaseURL:          getEnv("DEEPSEEK_API_BASE_URL", ""),
			},
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
