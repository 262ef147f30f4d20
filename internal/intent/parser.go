package intent

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/llm"
)

// Parser 把原始指令文本交给文本生成协作方，并判别输出形态。
// 参数校验不在这里发生，那是 Validator 的职责。
type Parser struct {
	client       llm.Client
	systemPrompt string
}

// NewParser 创建意图解析器。systemPrompt 为空时使用钱包意图提示词。
func NewParser(client llm.Client, systemPrompt string) *Parser {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = WalletSystemPrompt
	}
	return &Parser{client: client, systemPrompt: systemPrompt}
}

// Parse 发送指令并解析协作方的回复。每次调用只会触发一次上游请求，
// 上游失败原样上抛为 UpstreamGenerationError，不在本层重试。
func (p *Parser) Parse(ctx context.Context, instruction, systemPrompt, model string) (Outcome, error) {
	if p == nil || p.client == nil {
		return Outcome{}, xerrors.New(xerrors.CodeInitializationFailure, "未配置文本生成客户端")
	}

	prompt := p.systemPrompt
	if strings.TrimSpace(systemPrompt) != "" {
		prompt = systemPrompt
	}

	resp, err := p.client.Generate(ctx, llm.Request{
		Prompt:       instruction,
		SystemPrompt: prompt,
		Model:        model,
	})
	if err != nil {
		return Outcome{}, xerrors.Wrap(xerrors.CodeUpstreamGenerationError, err, "调用文本生成协作方失败")
	}

	content := strings.TrimSpace(resp.Content)
	if raw, ok := decodeIntent(content); ok {
		return Outcome{Kind: OutcomeStructured, Intent: raw}, nil
	}
	return Outcome{Kind: OutcomeFreeform, Text: content}, nil
}

// decodeIntent 尝试把协作方输出解码为结构化意图。
// 无法解码或缺少 action 字段时按自然语言回答处理。
func decodeIntent(content string) (Raw, bool) {
	payload := stripFences(content)

	var decoded struct {
		Action     string                     `json:"action"`
		Parameters map[string]json.RawMessage `json:"parameters"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return Raw{}, false
	}
	action := strings.TrimSpace(decoded.Action)
	if action == "" {
		return Raw{}, false
	}

	// JSON 对象不保序，这里按键名排序保证解析结果确定。
	names := make([]string, 0, len(decoded.Parameters))
	for name := range decoded.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Param, 0, len(names))
	for _, name := range names {
		params = append(params, Param{Name: name, Value: scalarText(decoded.Parameters[name])})
	}
	return Raw{Action: action, Params: params}, true
}

// scalarText 把 JSON 标量统一成文本；字符串去掉引号，数字保留原文。
func scalarText(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return strings.TrimSpace(string(raw))
}

// stripFences 去掉模型偶尔仍会输出的 markdown 代码块包装。
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
