// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Meta WhatsApp Cloud API credentials.
	MetaToken     string
	PhoneNumberID string
	VerifyToken   string
	GraphBaseURL  string

	// Campaign settings.
	AdminPhone    string
	TemplateName  string
	TemplateLang  string
	ContactsFile  string
	MonitorWindow time.Duration
	SendDelayMin  time.Duration
	SendDelayMax  time.Duration
	SweepInterval time.Duration

	// Dialogue script overrides; empty values keep the defaults.
	ScriptIntroduction      string
	ScriptClarification     string
	ScriptAcceptance        string
	ScriptDetailsRequest    string
	ScriptDetailsRepeat     string
	ScriptDetailsThanks     string
	ScriptClosing           string
	ScriptAlreadyRegistered string
}

// Load builds a Config from the environment.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MetaToken:     getEnv("META_TOKEN", ""),
		PhoneNumberID: getEnv("PHONE_NUMBER_ID", ""),
		VerifyToken:   getEnv("VERIFY_TOKEN", ""),
		GraphBaseURL:  getEnv("GRAPH_BASE_URL", ""),

		AdminPhone:    getEnv("ADMIN_LOG_NUMBER", ""),
		TemplateName:  getEnv("TEMPLATE_NAME", "captacao_inicial"),
		TemplateLang:  getEnv("TEMPLATE_LANG", "pt_BR"),
		ContactsFile:  getEnv("CONTACTS_FILE", "./contacts.json"),
		MonitorWindow: time.Duration(getEnvAsInt("MONITOR_WINDOW_HOURS", 8)) * time.Hour,
		SendDelayMin:  getEnvAsDuration("SEND_DELAY_MIN", 20*time.Second),
		SendDelayMax:  getEnvAsDuration("SEND_DELAY_MAX", 40*time.Second),
		SweepInterval: getEnvAsDuration("SWEEP_INTERVAL", 30*time.Second),

		ScriptIntroduction:      getEnv("SCRIPT_INTRODUCTION", ""),
		ScriptClarification:     getEnv("SCRIPT_CLARIFICATION", ""),
		ScriptAcceptance:        getEnv("SCRIPT_ACCEPTANCE", ""),
		ScriptDetailsRequest:    getEnv("SCRIPT_DETAILS_REQUEST", ""),
		ScriptDetailsRepeat:     getEnv("SCRIPT_DETAILS_REPEAT", ""),
		ScriptDetailsThanks:     getEnv("SCRIPT_DETAILS_THANKS", ""),
		ScriptClosing:           getEnv("SCRIPT_CLOSING", ""),
		ScriptAlreadyRegistered: getEnv("SCRIPT_ALREADY_REGISTERED", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns
// a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
