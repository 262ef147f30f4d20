package llm

import "context"

// Request 描述一次文本生成调用。
type Request struct {
	// Prompt 是用户的原始指令文本。
	Prompt string
	// SystemPrompt 约束模型输出格式，通常为钱包意图提示词。
	SystemPrompt string
	// Model 指定本次调用使用的模型，空值由客户端选择默认模型。
	Model string
}

// Response 是文本生成协作方的原始输出，内容可能是结构化意图 JSON，
// 也可能是自然语言回答，由上层的意图解析器判别。
type Response struct {
	Content string
}

// Client 定义了调用文本生成协作方的统一接口。
// 超时与取消由调用方通过 ctx 控制，本接口的实现不做自动重试。
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// ModelCatalog 是模型管理类动作依赖的能力，由支持模型列举的客户端实现。
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]string, error)
	CheckModel(ctx context.Context, model string) (bool, error)
}
