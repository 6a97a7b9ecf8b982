package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string `mapstructure:"APP_ENV"`        // "development" or "production"

	// Logging Configuration
	LogLevel string `mapstructure:"LOG_LEVEL"` // debug, info, warn, error
	LogFile  string `mapstructure:"LOG_FILE"`  // optional rolling log file path

	// LLM Configuration
	LLMProvider   string `mapstructure:"LLM_PROVIDER"`    // "openai", "gemini" or "fake"
	OpenAIKey     string `mapstructure:"OPENAI_API_KEY"`  // single key, kept for compatibility
	OpenAIKeys    string `mapstructure:"OPENAI_API_KEYS"` // comma-separated keys rotated on retry
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"` // override for OpenAI-compatible endpoints
	GeminiKeys    string `mapstructure:"GEMINI_API_KEYS"`
	GeminiModel   string `mapstructure:"GEMINI_MODEL"`
	LLMRPS        int    `mapstructure:"LLM_RPS"`          // requests per second, 0 disables the limiter
	LLMBurst      int    `mapstructure:"LLM_BURST"`        // limiter burst size
	LLMAttempts   int    `mapstructure:"LLM_MAX_ATTEMPTS"` // total call budget per completion

	// Project Store Configuration
	StorePath string `mapstructure:"STORE_PATH"`   // JSON file path for the file backend
	StoreDSN  string `mapstructure:"STORE_PG_DSN"` // postgres DSN, takes precedence when set

	// Artifact Storage Configuration (any S3-compatible endpoint)
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`

	// Completion Webhook Configuration
	WebhookURL    string `mapstructure:"WEBHOOK_URL"`
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`
}

// OpenAIKeyList merges the single-key and multi-key settings into the
// rotation pool.
func (c Config) OpenAIKeyList() []string {
	keys := splitKeys(c.OpenAIKeys)
	if len(keys) == 0 && strings.TrimSpace(c.OpenAIKey) != "" {
		keys = []string{strings.TrimSpace(c.OpenAIKey)}
	}
	return keys
}

func (c Config) GeminiKeyList() []string {
	return splitKeys(c.GeminiKeys)
}

func splitKeys(raw string) []string {
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func setDefaults() {
	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("LLM_PROVIDER", "openai")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_API_KEYS", "")
	viper.SetDefault("OPENAI_MODEL", "")
	viper.SetDefault("OPENAI_BASE_URL", "")
	viper.SetDefault("GEMINI_API_KEYS", "")
	viper.SetDefault("GEMINI_MODEL", "")
	viper.SetDefault("LLM_RPS", 0)
	viper.SetDefault("LLM_BURST", 1)
	viper.SetDefault("LLM_MAX_ATTEMPTS", 3)
	viper.SetDefault("STORE_PATH", "data/projects.json")
	viper.SetDefault("STORE_PG_DSN", "")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_REGION", "")
	viper.SetDefault("S3_ACCESS_KEY", "")
	viper.SetDefault("S3_SECRET_KEY", "")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_USE_SSL", true)
	viper.SetDefault("WEBHOOK_URL", "")
	viper.SetDefault("WEBHOOK_SECRET", "")
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)     // Path to look for the config file in
	viper.SetConfigName("config") // Name of config file (without extension)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv() // Read environment variables that match keys
	setDefaults()

	// Attempt to read the config file
	err = viper.ReadInConfig()
	if err != nil {
		// Config file not found is fine: env vars and defaults cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file ('config.yaml') not found in specified path, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using configuration file: %s", viper.ConfigFileUsed())
	}

	// Unmarshal the configuration into the Config struct
	err = viper.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	switch strings.ToLower(config.LLMProvider) {
	case "openai":
		if len(config.OpenAIKeyList()) == 0 {
			log.Println("WARN: LLM_PROVIDER is openai but no OPENAI_API_KEYS are set.")
		}
	case "gemini":
		if len(config.GeminiKeyList()) == 0 {
			log.Println("WARN: LLM_PROVIDER is gemini but no GEMINI_API_KEYS are set.")
		}
	}

	return
}
