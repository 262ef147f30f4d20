package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"Sonic-Agent/internal/agent"
	"Sonic-Agent/internal/api"
	"Sonic-Agent/internal/cache"
	"Sonic-Agent/internal/config"
	"Sonic-Agent/internal/connections/allora"
	"Sonic-Agent/internal/connections/dexscreener"
	"Sonic-Agent/internal/connections/market"
	"Sonic-Agent/internal/connections/paintswap"
	"Sonic-Agent/internal/connections/sonic"
	"Sonic-Agent/internal/dispatch"
	"Sonic-Agent/internal/events"
	"Sonic-Agent/internal/history"
	"Sonic-Agent/internal/intent"
	"Sonic-Agent/internal/llm/deepseek"
	"Sonic-Agent/internal/observability/metrics"
	"Sonic-Agent/internal/registry"
	"Sonic-Agent/internal/tokens"
	"Sonic-Agent/internal/txbuilder"
	"Sonic-Agent/pkg/logger"
)

// main 是代理守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("sonicagentd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	// .env 缺失不是错误，密钥也可以直接来自环境。
	_ = godotenv.Load()

	configPath := os.Getenv("SONIC_AGENT_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "agent.json")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.Audit.Enabled,
			Path:       cfg.Logging.Audit.Path,
			MaxSizeMB:  cfg.Logging.Audit.MaxSizeMB,
			MaxBackups: cfg.Logging.Audit.MaxBackups,
			MaxAgeDays: cfg.Logging.Audit.MaxAgeDays,
		},
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	mainLog := logger.Named("main")

	if err := os.MkdirAll(cfg.Runtime.DataDir, 0o755); err != nil {
		return err
	}

	// 文本生成客户端。
	apiKey := strings.TrimSpace(cfg.LLM.DeepSeek.APIKey)
	if apiKey == "" && cfg.LLM.DeepSeek.APIKeyEnv != "" {
		apiKey = strings.TrimSpace(os.Getenv(cfg.LLM.DeepSeek.APIKeyEnv))
	}
	if apiKey == "" {
		return errors.New("DeepSeek 需要配置 api_key 或通过 api_key_env 指定环境变量")
	}
	llmClient, err := deepseek.NewClient(deepseek.Config{
		APIKey:  apiKey,
		BaseURL: cfg.LLM.DeepSeek.BaseURL,
		Model:   cfg.LLM.DeepSeek.Model,
		Timeout: cfg.LLM.DeepSeek.Timeout(),
	})
	if err != nil {
		return err
	}

	// 链网络与链上客户端。
	networks, err := config.LoadNetworks(cfg.Networks.Path)
	if err != nil {
		return err
	}
	network, err := networks.SonicNetwork(cfg.Networks.Active)
	if err != nil {
		return err
	}
	sonicClient, err := sonic.NewClient(ctx, sonic.Config{Name: cfg.Networks.Active, RPCURL: network.RPCURL})
	if err != nil {
		return err
	}
	defer sonicClient.Close()

	// 缓存后端。
	actionCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	defer actionCache.Close()

	// 代币表与解析器。
	var tokenTable *tokens.Table
	if cfg.Tokens.Path != "" {
		tokenTable, err = tokens.LoadTable(cfg.Tokens.Path)
		if err != nil {
			return err
		}
	} else {
		tokenTable = tokens.NewTable(nil)
	}
	dexClient := dexscreener.NewClient(dexscreener.Config{})
	resolver := sonic.NewResolver(tokenTable, actionCache, dexClient, sonicClient, time.Hour)

	// 分发器及各连接的执行器。
	dispatcher := dispatch.New(resolver, txbuilder.NewBuilder())

	reg := registry.New()
	if err := reg.Register("sonic", sonic.Schemas(), registry.AsIntentSource()); err != nil {
		return err
	}
	if err := reg.Register("market", market.Schemas(), registry.AsIntentSource()); err != nil {
		return err
	}
	if err := reg.Register("allora", allora.Schemas(), registry.AsIntentSource()); err != nil {
		return err
	}
	if err := reg.Register("deepseek", deepseek.Schemas(llmClient.DefaultModel())); err != nil {
		return err
	}

	sonic.RegisterExecutors(dispatcher, "sonic", sonicClient, resolver)
	deepseek.RegisterExecutors(dispatcher, "deepseek", llmClient)

	paintClient := paintswap.NewClient(paintswap.Config{})
	market.NewExecutor(dexClient, paintClient, actionCache).Register(dispatcher, "market")

	alloraClient := allora.NewClient(allora.Config{APIKey: os.Getenv("ALLORA_API_KEY")})
	allora.NewExecutor(alloraClient, actionCache).Register(dispatcher, "allora")

	// 执行记录存储。
	store, err := buildHistoryStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 事件发布。
	publisher, err := buildPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	parser := intent.NewParser(llmClient, intent.WalletSystemPrompt)
	validator := intent.NewValidator(reg)

	ag := agent.New(reg, parser, validator, dispatcher,
		agent.WithHistoryStore(store),
		agent.WithEventPublisher(publisher),
		agent.WithLLMTimeout(cfg.LLM.DeepSeek.Timeout()),
	)

	if cfg.Server.MetricsAddress != "" {
		go func() {
			if err := metrics.StartServer(ctx, cfg.Server.MetricsAddress); err != nil && !errors.Is(err, context.Canceled) {
				mainLog.Warn("指标服务退出", "error", err)
			}
		}()
	}

	mainLog.Info("sonicagentd 启动",
		"address", cfg.Server.Address,
		"network", cfg.Networks.Active,
		"history_driver", cfg.History.Driver,
	)

	server := api.NewServer(cfg.Server.Address, ag, cfg.Agent.HistoryLimit)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case "", "memory":
		return cache.NewMemory(), nil
	case "redis":
		return cache.NewRedis(cache.RedisConfig{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("未知的缓存驱动: %s", cfg.Cache.Driver)
	}
}

func buildHistoryStore(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Driver {
	case "", "memory":
		return history.NewMemoryStore(cfg.Runtime.DataDir)
	case "mysql":
		return history.NewMySQLStore(ctx, history.MySQLConfig{
			DSN:             cfg.History.DSN,
			MaxOpenConns:    cfg.History.MaxOpenConns,
			MaxIdleConns:    cfg.History.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.History.ConnMaxLifetimeSeconds) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.History.ConnMaxIdleTimeSeconds) * time.Second,
		})
	default:
		return nil, fmt.Errorf("未知的记录存储驱动: %s", cfg.History.Driver)
	}
}

func buildPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.Events.Driver {
	case "", "nop":
		return events.NopPublisher{}, nil
	case "rabbitmq":
		return events.NewRabbitMQPublisher(events.RabbitMQConfig{
			URL:        cfg.Events.RabbitMQ.URL,
			Queue:      cfg.Events.RabbitMQ.Queue,
			Durable:    cfg.Events.RabbitMQ.Durable,
			AutoDelete: cfg.Events.RabbitMQ.AutoDelete,
		})
	default:
		return nil, fmt.Errorf("未知的事件驱动: %s", cfg.Events.Driver)
	}
}
