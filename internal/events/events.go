// Package events 向外部系统广播动作执行事件，
// 供审计与下游消费方订阅。
package events

import "context"

// Event 描述一次动作执行的结果摘要。
type Event struct {
	RequestID  string `json:"request_id"`
	Connection string `json:"connection"`
	Action     string `json:"action"`
	Status     string `json:"status"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Publisher 抽象事件发布能力。发布失败不应阻断请求处理。
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher 丢弃所有事件，用于未配置消息队列的部署。
type NopPublisher struct{}

// Publish 实现 Publisher。
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close 实现 Publisher。
func (NopPublisher) Close() error { return nil }
