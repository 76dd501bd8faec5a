package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Agent identity defaults
const (
	TriageAgentName = "TicketTriageAgent"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerPort int
	ServerHost string

	// Agent configuration
	AgentName    string
	AgentVersion string
	AgentURL     string

	// Authentication
	AuthType  string // "jwt" or "apikey"
	JWTSecret string
	APIKey    string

	// Pipeline configuration
	EscalationLogPath string // CSV file escalated tickets are appended to
	CheckpointDBPath  string // SQLite file for session checkpoints; empty = in-memory
	CorpusPath        string // YAML knowledge corpus; empty = built-in buckets

	// Jira escalation mirror (optional; disabled when base URL is empty)
	JiraBaseURL    string
	JiraUsername   string
	JiraAPIToken   string
	JiraProjectKey string

	// LLM configuration
	LLMEnabled     bool
	LLMProvider    string // "openai", "azure"
	LLMModel       string
	LLMAPIKey      string
	LLMServiceURL  string
	LLMMaxTokens   int
	LLMTimeout     int // in seconds
	LLMTemperature float64
}

// init loads environment variables from .env file
func init() {
	err := godotenv.Load()
	if err != nil {
		err = godotenv.Load("../.env")
		if err != nil {
			err = godotenv.Load("../../.env")
			if err != nil {
				log.Println("No .env file found or error loading it. Using environment variables or defaults.")
			} else {
				log.Println("Loaded configuration from ../../.env file")
			}
		} else {
			log.Println("Loaded configuration from ../.env file")
		}
	}
}

// NewConfig creates a new configuration with values from environment variables
func NewConfig() *Config {
	port, _ := strconv.Atoi(getEnvOrDefault("SERVER_PORT", "8080"))

	llmMaxTokens, _ := strconv.Atoi(getEnvOrDefault("LLM_MAX_TOKENS", "4000"))
	llmTimeout, _ := strconv.Atoi(getEnvOrDefault("LLM_TIMEOUT", "30"))
	llmEnabled, _ := strconv.ParseBool(getEnvOrDefault("LLM_ENABLED", "false"))
	llmTemperature, _ := strconv.ParseFloat(getEnvOrDefault("LLM_TEMPERATURE", "0.0"), 64)

	return &Config{
		// Server configuration
		ServerPort: port,
		ServerHost: getEnvOrDefault("SERVER_HOST", "localhost"),

		// Agent configuration
		AgentName:    getEnvOrDefault("AGENT_NAME", TriageAgentName),
		AgentVersion: getEnvOrDefault("AGENT_VERSION", "1.0.0"),
		AgentURL:     getEnvOrDefault("AGENT_URL", "http://localhost:8080"),

		// Authentication
		AuthType:  getEnvOrDefault("AUTH_TYPE", "apikey"), // "jwt" or "apikey"
		JWTSecret: getEnvOrDefault("JWT_SECRET", "your-jwt-secret"),
		APIKey:    getEnvOrDefault("API_KEY", "your-api-key"),

		// Pipeline configuration
		EscalationLogPath: getEnvOrDefault("ESCALATION_LOG_PATH", "escalation_log.csv"),
		CheckpointDBPath:  getEnvOrDefault("CHECKPOINT_DB_PATH", ""),
		CorpusPath:        getEnvOrDefault("CORPUS_PATH", ""),

		// Jira escalation mirror
		JiraBaseURL:    getEnvOrDefault("JIRA_BASE_URL", ""),
		JiraUsername:   getEnvOrDefault("JIRA_USERNAME", ""),
		JiraAPIToken:   getEnvOrDefault("JIRA_API_TOKEN", ""),
		JiraProjectKey: getEnvOrDefault("JIRA_PROJECT_KEY", "SUP"),

		// LLM configuration
		LLMEnabled:     llmEnabled,
		LLMProvider:    getEnvOrDefault("LLM_PROVIDER", "openai"),
		LLMModel:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:      getEnvOrDefault("LLM_API_KEY", ""),
		LLMServiceURL:  getEnvOrDefault("LLM_SERVICE_URL", ""),
		LLMMaxTokens:   llmMaxTokens,
		LLMTimeout:     llmTimeout,
		LLMTemperature: llmTemperature,
	}
}

// getEnvOrDefault returns the value of the environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
