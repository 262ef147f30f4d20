package intent

// NativeTicker 是 Sonic 链原生代币的符号，省略 token_name 时使用。
const NativeTicker = "S"

// ParamType 描述动作参数的类型，校验阶段据此做类型转换。
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeAddress ParamType = "address"
	TypeDecimal ParamType = "decimal"
	TypeInt     ParamType = "int"
)

// ParamSpec 描述动作的一个必填参数。
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
}

// OptionalParam 描述带默认值的可选参数。
type OptionalParam struct {
	ParamSpec
	Default string
}

// ActionSchema 声明一个动作的参数形状。注册到连接注册表之后不可变更。
type ActionSchema struct {
	Name        string
	Description string
	Required    []ParamSpec
	Optional    []OptionalParam

	// RequiresSignature 标记该动作会转移价值，必须交由外部钱包签名，
	// 而不能由服务端直接执行。
	RequiresSignature bool

	// ResolvesToken 标记该动作在执行前需要把代币符号解析为合约地址。
	ResolvesToken bool
}

// Param 在声明列表中查找参数定义。
func (s *ActionSchema) Param(name string) (ParamSpec, bool) {
	for _, spec := range s.Required {
		if spec.Name == name {
			return spec, true
		}
	}
	for _, opt := range s.Optional {
		if opt.Name == name {
			return opt.ParamSpec, true
		}
	}
	return ParamSpec{}, false
}
