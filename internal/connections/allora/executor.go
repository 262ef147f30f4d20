package allora

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Sonic-Agent/internal/cache"
	"Sonic-Agent/internal/dispatch"
	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/intent"
)

const cacheTTL = time.Hour

// Schemas 返回 Allora 连接的动作集合。
func Schemas() []*intent.ActionSchema {
	return []*intent.ActionSchema{
		{
			Name:        "list-topics",
			Description: "List all available Allora prediction topics",
		},
		{
			Name:        "get-inference",
			Description: "Get the latest network prediction for an Allora topic",
			Required: []intent.ParamSpec{
				{Name: "topic_id", Type: intent.TypeInt},
			},
		},
	}
}

// Executor 实现 Allora 预测主题的查询动作。
type Executor struct {
	client *Client
	cache  cache.Cache
}

// NewExecutor 创建 Allora 执行器。
func NewExecutor(client *Client, c cache.Cache) *Executor {
	return &Executor{client: client, cache: c}
}

// Register 把 Allora 动作挂到分发器上。
func (e *Executor) Register(d *dispatch.Dispatcher, connection string) {
	d.RegisterExecutor(connection, "list-topics", dispatch.ExecutorFunc(e.listTopics))
	d.RegisterExecutor(connection, "get-inference", dispatch.ExecutorFunc(e.getInference))
}

func (e *Executor) listTopics(ctx context.Context, _ *intent.Validated) (string, error) {
	const cacheKey = "allora:topics"
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	topics, err := e.client.Topics(ctx)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeExecutorError, err, "获取 Allora 主题失败")
	}
	if len(topics) == 0 {
		return "No Allora prediction topics are currently available.", nil
	}

	var b strings.Builder
	b.WriteString("Allora Prediction Topics\n\n")
	for _, topic := range topics {
		fmt.Fprintf(&b, "Topic ID %d: %s\n", topic.ID, topic.Name)
		if topic.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", topic.Description)
		}
		fmt.Fprintf(&b, "   Active: %s\n", yesNo(topic.IsActive))
		if topic.EpochLength > 0 {
			fmt.Fprintf(&b, "   Epoch Length: %d\n", topic.EpochLength)
		}
		b.WriteString("\n")
	}
	result := b.String()

	if e.cache != nil {
		e.cache.Set(ctx, cacheKey, result, cacheTTL)
	}
	return result, nil
}

func (e *Executor) getInference(ctx context.Context, in *intent.Validated) (string, error) {
	topicID := in.Params["topic_id"].Int()

	inference, err := e.client.TopicInference(ctx, topicID)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeExecutorError, err, "获取 Allora 预测失败")
	}

	value := inference.NetworkInferenceNormalized
	if value == "" {
		value = inference.NetworkInference
	}
	if value == "" {
		return "", xerrors.Newf(xerrors.CodeExecutorError, "topic %d 暂无预测数据", topicID)
	}
	return fmt.Sprintf("Allora topic %d network inference: %s", topicID, value), nil
}

func yesNo(flag bool) string {
	if flag {
		return "Yes"
	}
	return "No"
}
