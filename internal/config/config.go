package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Config 描述代理守护进程在启动阶段需要加载的核心配置。
type Config struct {
	Server   ServerConfig   `json:"server"`
	LLM      LLMConfig      `json:"llm"`
	Agent    AgentConfig    `json:"agent"`
	History  HistoryConfig  `json:"history"`
	Cache    CacheConfig    `json:"cache"`
	Events   EventsConfig   `json:"events"`
	Networks NetworksConfig `json:"networks"`
	Tokens   TokensConfig   `json:"tokens"`
	Logging  LoggingConfig  `json:"logging"`
	Runtime  RuntimeConfig  `json:"runtime"`
}

// LoggingConfig 控制日志输出与审计日志。
type LoggingConfig struct {
	Level       string      `json:"level"`
	Format      string      `json:"format"`
	OutputPaths []string    `json:"output_paths"`
	Audit       AuditConfig `json:"audit"`
}

// AuditConfig 控制审计日志文件及其轮转策略。
type AuditConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// ServerConfig 控制 API 服务的监听地址等参数。
type ServerConfig struct {
	Address        string `json:"address"`
	MetricsAddress string `json:"metrics_address"`
}

// LLMConfig 用于配置大模型推理的调用方式。
type LLMConfig struct {
	DeepSeek DeepSeekConfig `json:"deepseek"`
}

// DeepSeekConfig 描述 DeepSeek 推理服务的接入参数。
// APIKey 为空时会从 APIKeyEnv 指定的环境变量读取。
type DeepSeekConfig struct {
	APIKey         string `json:"api_key"`
	APIKeyEnv      string `json:"api_key_env"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout 返回请求超时时间。
func (c DeepSeekConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AgentConfig 放置编排层的参数。
type AgentConfig struct {
	HistoryLimit int `json:"history_limit"`
}

// HistoryConfig 描述执行记录的存储后端。
type HistoryConfig struct {
	Driver                 string `json:"driver"`
	DSN                    string `json:"dsn"`
	MaxOpenConns           int    `json:"max_open_conns"`
	MaxIdleConns           int    `json:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `json:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int    `json:"conn_max_idle_time_seconds"`
}

// CacheConfig 描述行情与代币解析结果的缓存后端。
type CacheConfig struct {
	Driver string      `json:"driver"`
	Redis  RedisConfig `json:"redis"`
}

// RedisConfig 描述 Redis 连接参数。
type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// EventsConfig 描述执行事件的发布通道。
type EventsConfig struct {
	Driver   string         `json:"driver"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
}

// RabbitMQConfig 描述 RabbitMQ 事件队列的连接参数。
type RabbitMQConfig struct {
	URL        string `json:"url"`
	Queue      string `json:"queue"`
	Durable    bool   `json:"durable"`
	AutoDelete bool   `json:"auto_delete"`
}

// NetworksConfig 指向链网络定义文件及默认网络。
type NetworksConfig struct {
	Path   string `json:"path"`
	Active string `json:"active"`
}

// TokensConfig 指向内置代币表文件。
type TokensConfig struct {
	Path string `json:"path"`
}

// RuntimeConfig 用于放置运行时的通用参数。
type RuntimeConfig struct {
	DataDir string `json:"data_dir"`
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))

	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.LLM.DeepSeek.APIKeyEnv == "" {
		c.LLM.DeepSeek.APIKeyEnv = "DEEPSEEK_API_KEY"
	}

	if c.Agent.HistoryLimit <= 0 {
		c.Agent.HistoryLimit = 20
	}

	if c.History.Driver == "" {
		c.History.Driver = "memory"
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}

	if c.Events.Driver == "" {
		c.Events.Driver = "nop"
	}

	if c.Networks.Active == "" {
		c.Networks.Active = "mainnet"
	}
	if c.Networks.Path != "" && !filepath.IsAbs(c.Networks.Path) {
		c.Networks.Path = filepath.Join(baseDir, c.Networks.Path)
	}
	if c.Tokens.Path != "" && !filepath.IsAbs(c.Tokens.Path) {
		c.Tokens.Path = filepath.Join(baseDir, c.Tokens.Path)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Runtime.DataDir == "" {
		c.Runtime.DataDir = filepath.Join(baseDir, "data")
	} else if !filepath.IsAbs(c.Runtime.DataDir) {
		c.Runtime.DataDir = filepath.Join(baseDir, c.Runtime.DataDir)
	}
}
