package registry

import (
	"sort"
	"strings"

	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/intent"
)

// Connection 描述一个已注册的连接及其支持的动作集合。
// 注册之后对其他组件只读。
type Connection struct {
	Name    string
	Schemas map[string]*intent.ActionSchema

	// intentSource 标记该连接的动作可以由钱包意图提示词解析得到。
	// 大模型连接自身的管理动作（如 list-models）不参与意图解析。
	intentSource bool
}

// Registry 维护连接名到动作 Schema 的静态映射。
// 注册只发生在启动阶段、服务请求之前，因此读路径无需加锁。
type Registry struct {
	order []string
	conns map[string]*Connection
}

// Option 配置一次注册行为。
type Option func(*Connection)

// AsIntentSource 标记连接参与意图解析，解析出的动作按注册顺序匹配。
func AsIntentSource() Option {
	return func(c *Connection) {
		c.intentSource = true
	}
}

// New 创建空的连接注册表。
func New() *Registry {
	return &Registry{conns: make(map[string]*Connection)}
}

// Register 注册一个连接及其动作集合。重名注册返回 DuplicateConnection。
func (r *Registry) Register(name string, schemas []*intent.ActionSchema, opts ...Option) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return xerrors.New(xerrors.CodeInvalidParameterType, "连接名不能为空")
	}
	if _, exists := r.conns[name]; exists {
		return xerrors.Newf(xerrors.CodeDuplicateConnection, "连接 %q 已注册", name)
	}

	conn := &Connection{
		Name:    name,
		Schemas: make(map[string]*intent.ActionSchema, len(schemas)),
	}
	for _, schema := range schemas {
		if schema == nil || strings.TrimSpace(schema.Name) == "" {
			continue
		}
		conn.Schemas[schema.Name] = schema
	}
	for _, opt := range opts {
		if opt != nil {
			opt(conn)
		}
	}

	r.conns[name] = conn
	r.order = append(r.order, name)
	return nil
}

// Lookup 返回指定连接下某动作的 Schema。
func (r *Registry) Lookup(connection, action string) (*intent.ActionSchema, error) {
	conn, ok := r.conns[connection]
	if !ok {
		return nil, xerrors.Newf(xerrors.CodeUnknownConnection, "连接 %q 未注册", connection)
	}
	schema, ok := conn.Schemas[action]
	if !ok {
		return nil, xerrors.Newf(xerrors.CodeUnsupportedAction, "连接 %q 不支持动作 %q", connection, action)
	}
	return schema, nil
}

// ResolveAction 在参与意图解析的连接中按注册顺序查找动作。
// 实现 intent.SchemaResolver。
func (r *Registry) ResolveAction(action string) (string, *intent.ActionSchema, bool) {
	for _, name := range r.order {
		conn := r.conns[name]
		if !conn.intentSource {
			continue
		}
		if schema, ok := conn.Schemas[action]; ok {
			return name, schema, true
		}
	}
	return "", nil, false
}

// Connections 返回所有已注册的连接名，按字典序排列。
func (r *Registry) Connections() []string {
	names := make([]string, 0, len(r.conns))
	for name := range r.conns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Actions 返回指定连接支持的动作名，按字典序排列。
func (r *Registry) Actions(connection string) []string {
	conn, ok := r.conns[connection]
	if !ok {
		return nil
	}
	actions := make([]string, 0, len(conn.Schemas))
	for name := range conn.Schemas {
		actions = append(actions, name)
	}
	sort.Strings(actions)
	return actions
}

var _ intent.SchemaResolver = (*Registry)(nil)
