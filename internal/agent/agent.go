// Package agent 是系统的编排核心：接收指名的连接与动作，
// 经过意图解析、Schema 校验与分发，产出统一响应信封。
package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"Sonic-Agent/internal/dispatch"
	"Sonic-Agent/internal/envelope"
	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/events"
	"Sonic-Agent/internal/history"
	"Sonic-Agent/internal/intent"
	"Sonic-Agent/internal/observability/metrics"
	"Sonic-Agent/internal/registry"
	"Sonic-Agent/pkg/logger"
)

// Request 描述一次客户端动作调用，参数按 Schema 声明顺序排列。
type Request struct {
	Connection string   `json:"connection"`
	Action     string   `json:"action"`
	Params     []string `json:"params"`
}

// Agent 协调意图解析、校验与分发。
type Agent struct {
	registry   *registry.Registry
	parser     *intent.Parser
	validator  *intent.Validator
	dispatcher *dispatch.Dispatcher

	store      history.Store
	publisher  events.Publisher
	log        *slog.Logger
	llmTimeout time.Duration

	entryConnection string
	entryAction     string
}

// Option 定义可选的 Agent 配置。
type Option func(*Agent)

// WithHistoryStore 配置执行记录的持久化后端。
func WithHistoryStore(store history.Store) Option {
	return func(a *Agent) {
		a.store = store
	}
}

// WithEventPublisher 配置执行事件的发布通道。
func WithEventPublisher(publisher events.Publisher) Option {
	return func(a *Agent) {
		a.publisher = publisher
	}
}

// WithLLMTimeout 设置调用文本生成协作方的超时时间。
func WithLLMTimeout(timeout time.Duration) Option {
	return func(a *Agent) {
		if timeout <= 0 {
			a.llmTimeout = 0
			return
		}
		a.llmTimeout = timeout
	}
}

// WithEntryAction 指定触发意图解析的入口连接与动作。
func WithEntryAction(connection, action string) Option {
	return func(a *Agent) {
		a.entryConnection = connection
		a.entryAction = action
	}
}

// New 创建一个 Agent。
func New(reg *registry.Registry, parser *intent.Parser, validator *intent.Validator, dispatcher *dispatch.Dispatcher, opts ...Option) *Agent {
	ag := &Agent{
		registry:        reg,
		parser:          parser,
		validator:       validator,
		dispatcher:      dispatcher,
		publisher:       events.NopPublisher{},
		log:             logger.Named("agent"),
		entryConnection: "deepseek",
		entryAction:     "generate-text",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ag)
		}
	}
	return ag
}

// Execute 处理一次动作调用。错误以信封形态返回，本方法不上抛 error。
func (a *Agent) Execute(ctx context.Context, req Request) *envelope.Envelope {
	requestID := uuid.NewString()
	started := time.Now()

	env := a.execute(ctx, requestID, req)

	a.record(ctx, requestID, req, env)
	a.log.Info("动作执行完成",
		slog.String("request_id", requestID),
		slog.String("connection", req.Connection),
		slog.String("action", req.Action),
		slog.String("status", statusOf(env)),
		slog.Duration("elapsed", time.Since(started)),
	)
	metrics.ObserveAgentAction(req.Action, statusOf(env))
	return env
}

func (a *Agent) execute(ctx context.Context, requestID string, req Request) *envelope.Envelope {
	schema, err := a.registry.Lookup(req.Connection, req.Action)
	if err != nil {
		return envelope.Failure(err)
	}

	raw := bindParams(req.Action, schema, req.Params)

	// 入口动作先走意图解析：结构化意图继续向下分发，
	// 自然语言回答直接作为普通结果返回。
	if req.Connection == a.entryConnection && req.Action == a.entryAction {
		return a.executeEntry(ctx, requestID, schema, raw)
	}

	validated, err := intent.ValidateAgainst(req.Connection, schema, raw)
	if err != nil {
		return envelope.Failure(err)
	}
	return envelope.Format(a.dispatcher.Dispatch(ctx, validated))
}

func (a *Agent) executeEntry(ctx context.Context, requestID string, schema *intent.ActionSchema, raw intent.Raw) *envelope.Envelope {
	if a.parser == nil {
		return envelope.Failure(xerrors.New(xerrors.CodeInitializationFailure, "未配置意图解析器"))
	}

	entry, err := intent.ValidateAgainst(a.entryConnection, schema, raw)
	if err != nil {
		return envelope.Failure(err)
	}

	llmCtx := ctx
	if a.llmTimeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, a.llmTimeout)
		defer cancel()
	}

	outcome, err := a.parser.Parse(llmCtx, entry.Text("prompt"), entry.Text("system_prompt"), entry.Text("model"))
	if err != nil {
		return envelope.Failure(err)
	}

	if outcome.Kind == intent.OutcomeFreeform {
		return envelope.Success(outcome.Text)
	}

	a.log.Debug("解析出结构化意图",
		slog.String("request_id", requestID),
		slog.String("action", outcome.Intent.Action),
	)

	validated, err := a.validator.Validate(outcome.Intent)
	if err != nil {
		return envelope.Failure(err)
	}
	return envelope.Format(a.dispatcher.Dispatch(ctx, validated))
}

// bindParams 按 Schema 声明顺序把位置参数绑定为命名参数。
// 多余的位置参数忽略，缺失的交给校验阶段报告。
func bindParams(action string, schema *intent.ActionSchema, values []string) intent.Raw {
	specs := make([]string, 0, len(schema.Required)+len(schema.Optional))
	for _, spec := range schema.Required {
		specs = append(specs, spec.Name)
	}
	for _, opt := range schema.Optional {
		specs = append(specs, opt.Name)
	}

	params := make([]intent.Param, 0, len(values))
	for i, value := range values {
		if i >= len(specs) {
			break
		}
		params = append(params, intent.Param{Name: specs[i], Value: value})
	}
	return intent.Raw{Action: action, Params: params}
}

// record 落库并广播执行结果，两者失败都只记日志，不影响响应。
func (a *Agent) record(ctx context.Context, requestID string, req Request, env *envelope.Envelope) {
	status := statusOf(env)
	now := time.Now().Unix()

	if a.store != nil {
		record := history.Record{
			RequestID:   requestID,
			Connection:  req.Connection,
			Action:      req.Action,
			Instruction: strings.Join(req.Params, " "),
			Status:      status,
			ErrorKind:   env.Error,
			Reply:       replyOf(env),
			CreatedAt:   now,
		}
		if err := a.store.Save(ctx, record); err != nil {
			a.log.Warn("保存执行记录失败", slog.String("request_id", requestID), slog.Any("error", err))
		}
	}

	if a.publisher != nil {
		event := events.Event{
			RequestID:  requestID,
			Connection: req.Connection,
			Action:     req.Action,
			Status:     status,
			ErrorKind:  env.Error,
			Timestamp:  now,
		}
		if err := a.publisher.Publish(ctx, event); err != nil {
			a.log.Warn("发布执行事件失败", slog.String("request_id", requestID), slog.Any("error", err))
		}
	}

	if env.IsError() {
		logger.Audit().Warn("动作执行失败",
			slog.String("request_id", requestID),
			slog.String("connection", req.Connection),
			slog.String("action", req.Action),
			slog.String("error", env.Error),
			slog.String("detail", env.Detail),
		)
	}
}

// ListHistory 返回最近的执行记录。
func (a *Agent) ListHistory(ctx context.Context, limit int) ([]history.Record, error) {
	if a.store == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "未配置执行记录存储")
	}
	records, err := a.store.ListLatest(ctx, limit)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询执行记录失败")
	}
	return records, nil
}

// Connections 返回已注册的连接名。
func (a *Agent) Connections() []string {
	return a.registry.Connections()
}

// Actions 返回指定连接支持的动作名。
func (a *Agent) Actions(connection string) []string {
	return a.registry.Actions(connection)
}

func statusOf(env *envelope.Envelope) string {
	switch {
	case env.IsError():
		return "error"
	case env.IsPending():
		return "pending"
	default:
		return "success"
	}
}

func replyOf(env *envelope.Envelope) string {
	if env.IsPending() {
		return env.Message
	}
	if env.IsError() {
		return env.Detail
	}
	return env.Result
}
