package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

const (
	defaultChatServer    = "http://localhost:8000"
	defaultDataDirName   = ".tavern-chat"
	defaultHistoryLimit  = 10
	defaultSystemPrompt  = "You are a helpful assistant. Answer in Markdown and use fenced code blocks with a language tag for any code."
	defaultServerPort    = "8000"
	defaultArkBaseURL    = "https://ark.cn-beijing.volces.com/api/v3"
	defaultArkRegion     = "cn-beijing"
	defaultAllowedOrigin = "*"
)

// Config 聚合 ask 服务端的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
}

// Load 从环境变量加载服务端配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址与跨域白名单。
func loadServerConfig() (ServerConfig, error) {
	port := getEnvOrDefault("PORT", defaultServerPort)

	var addr string
	switch {
	case strings.Contains(port, ":"):
		// 允许用户直接传入 ":8000" 或 "127.0.0.1:8000"。
		addr = port
	case strings.Contains(port, " "):
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	default:
		addr = ":" + port
	}

	return ServerConfig{
		Addr:           addr,
		AllowedOrigins: parseListEnv("CHAT_CORS_ORIGINS", []string{defaultAllowedOrigin}),
	}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	SystemPrompt string
	HistoryLimit int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit := defaultHistoryLimit
	if override, err := parseOptionalIntEnv("AI_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 0 {
			historyLimit = 0
		} else {
			historyLimit = *override
		}
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("Model")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", defaultArkBaseURL),
		Region:       getEnvOrDefault("ARK_REGION", defaultArkRegion),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		SystemPrompt: getEnvOrDefault("AI_SYSTEM_PROMPT", defaultSystemPrompt),
		HistoryLimit: historyLimit,
	}, nil
}

// ClientConfig 描述聊天客户端（TUI 与问答脚本）的配置。
type ClientConfig struct {
	Server      string
	StoreDriver string
	DataDir     string
	AskTimeout  time.Duration
	Highlight   bool
}

// LoadClient 从环境变量加载客户端配置，命令行参数随后覆盖。
func LoadClient() (*ClientConfig, error) {
	timeout, err := parseOptionalIntEnv("CHAT_ASK_TIMEOUT")
	if err != nil {
		return nil, err
	}

	var askTimeout time.Duration
	if timeout != nil {
		if *timeout < 0 {
			return nil, fmt.Errorf("invalid CHAT_ASK_TIMEOUT value %d: must not be negative", *timeout)
		}
		askTimeout = time.Duration(*timeout) * time.Second
	}

	highlight, err := parseBoolEnv("CHAT_HIGHLIGHT", true)
	if err != nil {
		return nil, err
	}

	dataDir := getEnvOrDefault("CHAT_DATA_DIR", "")
	if dataDir == "" {
		dataDir = defaultDataDir()
	}

	return &ClientConfig{
		Server:      getEnvOrDefault("CHAT_SERVER", defaultChatServer),
		StoreDriver: strings.ToLower(getEnvOrDefault("CHAT_STORE_DRIVER", "file")),
		DataDir:     dataDir,
		AskTimeout:  askTimeout,
		Highlight:   highlight,
	}, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return defaultDataDirName
	}
	return filepath.Join(home, defaultDataDirName)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// parseListEnv 解析逗号分隔的列表，忽略空项。
func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
