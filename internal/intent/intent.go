package intent

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Param 是尚未校验的原始参数，名值均保持文本形式。
type Param struct {
	Name  string
	Value string
}

// Raw 是文本生成协作方解析出的原始意图，未经过任何校验。
type Raw struct {
	Action string
	Params []Param
}

// Get 按名称查找原始参数。空白值视为缺失。
func (r Raw) Get(name string) (string, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			value := strings.TrimSpace(p.Value)
			if value == "" {
				return "", false
			}
			return value, true
		}
	}
	return "", false
}

// OutcomeKind 区分解析结果的两种形态。
type OutcomeKind int

const (
	// OutcomeFreeform 表示指令没有命中任何动作，协作方返回了自然语言回答。
	OutcomeFreeform OutcomeKind = iota
	// OutcomeStructured 表示协作方给出了结构化的动作意图。
	OutcomeStructured
)

// Outcome 是解析阶段的带标签输出，避免用异常表达 prose 分支。
type Outcome struct {
	Kind   OutcomeKind
	Intent Raw
	Text   string
}

// Value 是完成类型转换后的参数值，Text 为规范化文本形式。
// 保持文本形式可以让校验输出逐字节可比较。
type Value struct {
	Type ParamType
	Text string
}

// Decimal 把数值参数解析为高精度小数。非 decimal 类型返回 nil。
func (v Value) Decimal() *big.Float {
	if v.Type != TypeDecimal {
		return nil
	}
	parsed, _, err := big.ParseFloat(v.Text, 10, 128, big.ToNearestEven)
	if err != nil {
		return nil
	}
	return parsed
}

// Int 把整型参数解析为 int64。
func (v Value) Int() int64 {
	parsed, _ := strconv.ParseInt(v.Text, 10, 64)
	return parsed
}

// Validated 是通过 Schema 校验后的意图。
// 不变量：所有必填参数均存在，未注册的动作不会到达这一阶段。
type Validated struct {
	Connection        string
	Action            string
	Params            map[string]Value
	RequiresSignature bool
	ResolvesToken     bool
}

// Get 返回指定参数。
func (v *Validated) Get(name string) (Value, bool) {
	value, ok := v.Params[name]
	return value, ok
}

// Text 返回参数的规范化文本，缺失时为空串。
func (v *Validated) Text(name string) string {
	return v.Params[name].Text
}

// WithParam 返回注入了额外参数的副本，原意图保持不变。
func (v *Validated) WithParam(name string, value Value) *Validated {
	clone := &Validated{
		Connection:        v.Connection,
		Action:            v.Action,
		Params:            make(map[string]Value, len(v.Params)+1),
		RequiresSignature: v.RequiresSignature,
		ResolvesToken:     v.ResolvesToken,
	}
	for k, val := range v.Params {
		clone.Params[k] = val
	}
	clone.Params[name] = value
	return clone
}

// Encode 输出确定性的文本表示，键名排序后拼接，用于等价性断言。
func (v *Validated) Encode() []byte {
	names := make([]string, 0, len(v.Params))
	for name := range v.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	builder.WriteString(v.Connection)
	builder.WriteByte('/')
	builder.WriteString(v.Action)
	if v.RequiresSignature {
		builder.WriteString("!sig")
	}
	for _, name := range names {
		value := v.Params[name]
		builder.WriteByte('\n')
		builder.WriteString(name)
		builder.WriteByte('=')
		builder.WriteString(string(value.Type))
		builder.WriteByte(':')
		builder.WriteString(value.Text)
	}
	return []byte(builder.String())
}
