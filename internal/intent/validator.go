package intent

import (
	"math/big"
	"strconv"
	"strings"

	xerrors "Sonic-Agent/internal/errors"
)

// SchemaResolver 按动作名查找其归属连接与参数形状。
// 由连接注册表实现，注册完成后只读。
type SchemaResolver interface {
	ResolveAction(action string) (connection string, schema *ActionSchema, ok bool)
}

// Validator 把原始意图对照 Schema 校验为可分发的意图。
// 给定相同输入，输出完全确定且幂等。
type Validator struct {
	schemas SchemaResolver
}

// NewValidator 创建校验器。
func NewValidator(schemas SchemaResolver) *Validator {
	return &Validator{schemas: schemas}
}

// Validate 执行校验流程：
//  1. 动作未注册 → UnsupportedAction；
//  2. 必填参数缺失 → MissingParameter；
//  3. 可选参数缺失时套用默认值（token_name 缺省为原生代币 "S"）；
//  4. 按声明类型转换参数，失败 → InvalidParameterType；
//  5. 按 Schema 标记设置 requires_signature。
//
// Schema 未声明的多余参数会被忽略，提示词允许模型输出一组超集字段。
func (v *Validator) Validate(raw Raw) (*Validated, error) {
	if v == nil || v.schemas == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "未配置动作 Schema 源")
	}

	action := strings.TrimSpace(raw.Action)
	connection, schema, ok := v.schemas.ResolveAction(action)
	if !ok {
		return nil, xerrors.Newf(xerrors.CodeUnsupportedAction, "动作 %q 未注册", action)
	}

	return ValidateAgainst(connection, schema, raw)
}

// ValidateAgainst 对照给定 Schema 校验原始意图。
// 连接与 Schema 已由调用方确定时（直接指名调用）走这条路径。
func ValidateAgainst(connection string, schema *ActionSchema, raw Raw) (*Validated, error) {
	if schema == nil {
		return nil, xerrors.Newf(xerrors.CodeUnsupportedAction, "动作 %q 未注册", raw.Action)
	}

	params := make(map[string]Value, len(schema.Required)+len(schema.Optional))

	for _, spec := range schema.Required {
		text, present := raw.Get(spec.Name)
		if !present {
			return nil, xerrors.Newf(xerrors.CodeMissingParameter, "缺少必填参数 %q", spec.Name)
		}
		value, err := coerce(spec, text)
		if err != nil {
			return nil, err
		}
		params[spec.Name] = value
	}

	for _, opt := range schema.Optional {
		text, present := raw.Get(opt.Name)
		if !present {
			if opt.Default == "" {
				continue
			}
			text = opt.Default
		}
		value, err := coerce(opt.ParamSpec, text)
		if err != nil {
			return nil, err
		}
		params[opt.Name] = value
	}

	return &Validated{
		Connection:        connection,
		Action:            schema.Name,
		Params:            params,
		RequiresSignature: schema.RequiresSignature,
		ResolvesToken:     schema.ResolvesToken,
	}, nil
}

// coerce 把文本值转换为声明类型的规范化形式。
func coerce(spec ParamSpec, text string) (Value, error) {
	text = strings.TrimSpace(text)
	switch spec.Type {
	case TypeString:
		return Value{Type: TypeString, Text: text}, nil
	case TypeAddress:
		if !IsAddress(text) {
			return Value{}, xerrors.Newf(xerrors.CodeInvalidParameterType,
				"参数 %q 期望 address 类型，收到 %q", spec.Name, text)
		}
		return Value{Type: TypeAddress, Text: text}, nil
	case TypeDecimal:
		parsed, _, err := big.ParseFloat(text, 10, 128, big.ToNearestEven)
		// ParseFloat 接受 "inf"，无穷量不是合法金额。
		if err != nil || parsed.IsInf() {
			return Value{}, xerrors.Newf(xerrors.CodeInvalidParameterType,
				"参数 %q 期望 decimal 类型，收到 %q", spec.Name, text)
		}
		return Value{Type: TypeDecimal, Text: parsed.Text('f', -1)}, nil
	case TypeInt:
		parsed, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, xerrors.Newf(xerrors.CodeInvalidParameterType,
				"参数 %q 期望 int 类型，收到 %q", spec.Name, text)
		}
		return Value{Type: TypeInt, Text: strconv.FormatInt(parsed, 10)}, nil
	default:
		return Value{Type: spec.Type, Text: text}, nil
	}
}

// IsAddress 只做语法检查：0x 前缀加十六进制字符。
// 余额与存在性检查不属于本系统，签名由外部钱包完成。
func IsAddress(text string) bool {
	if len(text) < 3 || !strings.HasPrefix(text, "0x") {
		return false
	}
	for _, r := range text[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
