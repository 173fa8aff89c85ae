// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Settings holds all application configuration.
type Settings struct {
	LLM          LLMConfig
	Agent        AgentConfig
	Conversation ConversationConfig
	Storage      StorageConfig
	Log          LogConfig
}

// LLMConfig holds vision AI provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	VisionModel string
}

// AgentConfig holds the adaptive engine bounds.
type AgentConfig struct {
	MaxIterations        int
	MaxPagesPerTask      int
	MaxTasksPerPlan      int
	MaxSummaryPages      int
	VisionDetail         string
	ClassifierFailClosed bool
}

// ConversationConfig holds conversation memory settings.
type ConversationConfig struct {
	MaxTurns         int
	TurnsToSummarize int
	TurnsToKeepFull  int
}

// StorageConfig holds document store settings.
type StorageConfig struct {
	DatabasePath string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Pretty bool
}

// providerInfo holds configuration for a specific vision AI provider.
type providerInfo struct {
	modelEnv           string
	defaultModel       string
	visionModelEnv     string
	defaultVisionModel string
	apiKeyEnv          string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":     {"OPENAI_MODEL", "gpt-4o", "OPENAI_VISION_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"openrouter": {"OPENROUTER_MODEL", "openai/gpt-4o", "OPENROUTER_VISION_MODEL", "google/gemini-2.5-flash", "OPENROUTER_API_KEY"},
	"anthropic":  {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_VISION_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"gemini":     {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_VISION_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// DefaultProvider is used when neither the flag nor the environment names
// one.
const DefaultProvider = "openrouter"

// New creates settings for the specified provider, loading values from
// environment variables. An empty provider falls back to
// DOCVISION_PROVIDER, then to DefaultProvider. Returns an error if the
// provider is unknown or environment variables contain invalid values.
func New(provider string) (Settings, error) {
	if provider == "" {
		provider = os.Getenv("DOCVISION_PROVIDER")
	}
	if provider == "" {
		provider = DefaultProvider
	}
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxIterations, err := getEnvInt("DOCVISION_MAX_AGENT_ITERATIONS", 5)
	if err != nil {
		return Settings{}, err
	}

	maxPagesPerTask, err := getEnvInt("DOCVISION_MAX_PAGES_PER_TASK", 6)
	if err != nil {
		return Settings{}, err
	}

	maxTasksPerPlan, err := getEnvInt("DOCVISION_MAX_TASKS_PER_PLAN", 4)
	if err != nil {
		return Settings{}, err
	}

	maxSummaryPages, err := getEnvInt("DOCVISION_MAX_SUMMARY_PAGES", 4)
	if err != nil {
		return Settings{}, err
	}

	failClosed, err := getEnvBool("DOCVISION_CLASSIFIER_FAIL_CLOSED", false)
	if err != nil {
		return Settings{}, err
	}

	maxTurns, err := getEnvInt("DOCVISION_MAX_CONVERSATION_TURNS", 8)
	if err != nil {
		return Settings{}, err
	}

	turnsToSummarize, err := getEnvInt("DOCVISION_TURNS_TO_SUMMARIZE", 5)
	if err != nil {
		return Settings{}, err
	}

	turnsToKeepFull, err := getEnvInt("DOCVISION_TURNS_TO_KEEP_FULL", 3)
	if err != nil {
		return Settings{}, err
	}

	pretty, err := getEnvBool("DOCVISION_LOG_PRETTY", false)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		LLM: LLMConfig{
			Provider:    provider,
			Model:       getEnvString(info.modelEnv, info.defaultModel),
			VisionModel: getEnvString(info.visionModelEnv, info.defaultVisionModel),
		},
		Agent: AgentConfig{
			MaxIterations:        maxIterations,
			MaxPagesPerTask:      maxPagesPerTask,
			MaxTasksPerPlan:      maxTasksPerPlan,
			MaxSummaryPages:      maxSummaryPages,
			VisionDetail:         getEnvString("DOCVISION_VISION_DETAIL", "high"),
			ClassifierFailClosed: failClosed,
		},
		Conversation: ConversationConfig{
			MaxTurns:         maxTurns,
			TurnsToSummarize: turnsToSummarize,
			TurnsToKeepFull:  turnsToKeepFull,
		},
		Storage: StorageConfig{
			DatabasePath: getEnvString("DOCVISION_DB_PATH", "./docvision_data/docvision.db"),
		},
		Log: LogConfig{
			Level:  getEnvString("DOCVISION_LOG_LEVEL", "info"),
			Pretty: pretty,
		},
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value for %s: %q", key, val)
	}
}
