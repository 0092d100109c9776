package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// ServiceName 服务标识,用于健康检查与日志。
const ServiceName = "chatbot-service-aura"

// Version 对外暴露的服务版本号。
const Version = "1.0.0"

// Config 聚合整个服务的配置项,启动时加载一次,之后不可变。
type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Clustering ClusteringConfig
	Triage     TriageConfig
}

// Load 从环境变量加载配置。缺失生成模型凭证视为致命的配置错误。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	clustering, err := loadClusteringConfig()
	if err != nil {
		return nil, err
	}

	triage, err := loadTriageConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Clustering: clustering, Triage: triage}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8002"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8002" 或 "127.0.0.1:8002"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述生成模型相关配置。Groq 暴露 OpenAI 兼容接口。
type AIConfig struct {
	APIKey              string
	Model               string
	BaseURL             string
	Temperature         *float64
	MaxTokens           *int
	SentimentLLMEnabled bool
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &openaimodel.ChatModelConfig{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return openaimodel.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	apiKey := strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	if apiKey == "" {
		return AIConfig{}, fmt.Errorf("GROQ_API_KEY is required but not set")
	}

	temperature, err := parseOptionalFloatEnv("GROQ_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("GROQ_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	sentimentLLM, err := parseBoolEnv("SENTIMENT_LLM_ENABLED", false)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:              apiKey,
		Model:               getEnvOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		BaseURL:             getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Temperature:         temperature,
		MaxTokens:           maxTokens,
		SentimentLLMEnabled: sentimentLLM,
	}, nil
}

// ClusteringConfig 描述可选的聚类画像服务配置。
type ClusteringConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Enabled 表示是否配置了聚类服务地址。
func (c ClusteringConfig) Enabled() bool {
	return c.BaseURL != ""
}

func loadClusteringConfig() (ClusteringConfig, error) {
	timeoutSeconds := 3
	if override, err := parseOptionalIntEnv("CLUSTERING_TIMEOUT_SECONDS"); err != nil {
		return ClusteringConfig{}, err
	} else if override != nil {
		if *override < 1 {
			timeoutSeconds = 1
		} else {
			timeoutSeconds = *override
		}
	}

	return ClusteringConfig{
		BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("CLUSTERING_SERVICE_URL")), "/"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// TriageConfig 描述风险评估使用的数值阈值,由领域专家调优。
type TriageConfig struct {
	SupportThreshold  float64
	HighThreshold     float64
	ModerateThreshold float64
}

func loadTriageConfig() (TriageConfig, error) {
	cfg := TriageConfig{
		SupportThreshold:  0.6,
		HighThreshold:     0.75,
		ModerateThreshold: 0.4,
	}

	if v, err := parseOptionalFloatEnv("TRIAGE_SUPPORT_THRESHOLD"); err != nil {
		return TriageConfig{}, err
	} else if v != nil {
		cfg.SupportThreshold = *v
	}
	if v, err := parseOptionalFloatEnv("TRIAGE_HIGH_THRESHOLD"); err != nil {
		return TriageConfig{}, err
	} else if v != nil {
		cfg.HighThreshold = *v
	}
	if v, err := parseOptionalFloatEnv("TRIAGE_MODERATE_THRESHOLD"); err != nil {
		return TriageConfig{}, err
	} else if v != nil {
		cfg.ModerateThreshold = *v
	}

	if cfg.ModerateThreshold > cfg.HighThreshold {
		return TriageConfig{}, fmt.Errorf("TRIAGE_MODERATE_THRESHOLD (%v) must not exceed TRIAGE_HIGH_THRESHOLD (%v)",
			cfg.ModerateThreshold, cfg.HighThreshold)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
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
