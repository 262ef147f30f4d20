package deepseek

import (
	"context"
	"fmt"
	"strings"

	"Sonic-Agent/internal/dispatch"
	"Sonic-Agent/internal/intent"
	"Sonic-Agent/internal/llm"
)

// Schemas 返回 deepseek 连接对外声明的动作集合。
// generate-text 是意图流水线的入口动作，由编排层特殊处理。
func Schemas(defaultModel string) []*intent.ActionSchema {
	return []*intent.ActionSchema{
		{
			Name:        "generate-text",
			Description: "Generate text using DeepSeek models",
			Required: []intent.ParamSpec{
				{Name: "prompt", Type: intent.TypeString, Description: "The input prompt for text generation"},
			},
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "system_prompt", Type: intent.TypeString, Description: "System prompt to guide the model"}},
				{ParamSpec: intent.ParamSpec{Name: "model", Type: intent.TypeString, Description: "Model to use for generation"}, Default: defaultModel},
			},
		},
		{
			Name:        "check-model",
			Description: "Check if a specific model is available",
			Required: []intent.ParamSpec{
				{Name: "model", Type: intent.TypeString, Description: "Model name to check availability"},
			},
		},
		{
			Name:        "list-models",
			Description: "List all available DeepSeek models",
		},
	}
}

// RegisterExecutors 把模型管理类动作挂到分发器上。
func RegisterExecutors(d *dispatch.Dispatcher, connection string, catalog llm.ModelCatalog) {
	d.RegisterExecutor(connection, "check-model", dispatch.ExecutorFunc(
		func(ctx context.Context, in *intent.Validated) (string, error) {
			model := in.Text("model")
			available, err := catalog.CheckModel(ctx, model)
			if err != nil {
				return "", err
			}
			if available {
				return fmt.Sprintf("Model %s is available", model), nil
			}
			return fmt.Sprintf("Model %s is not available", model), nil
		}))

	d.RegisterExecutor(connection, "list-models", dispatch.ExecutorFunc(
		func(ctx context.Context, in *intent.Validated) (string, error) {
			models, err := catalog.ListModels(ctx)
			if err != nil {
				return "", err
			}
			if len(models) == 0 {
				return "No models available", nil
			}
			return "Available models: " + strings.Join(models, ", "), nil
		}))
}
