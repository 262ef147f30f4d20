package dispatch

import (
	"context"

	"Sonic-Agent/internal/envelope"
	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/intent"
	"Sonic-Agent/internal/txbuilder"
)

// NativeTokenAddress 是原生代币在响应中使用的占位地址。
// 响应中的 token_address 永远是已解析地址，不会是代币符号。
const NativeTokenAddress = "0x0000000000000000000000000000000000000000"

// NativeTokenDecimals 是原生代币的精度。
const NativeTokenDecimals = 18

// Executor 是连接侧动作执行器的统一能力接口。
// 启动时注册，之后只读；执行器内部的网络调用自行管理超时。
type Executor interface {
	Execute(ctx context.Context, in *intent.Validated) (string, error)
}

// ExecutorFunc 便于用函数注册执行器。
type ExecutorFunc func(ctx context.Context, in *intent.Validated) (string, error)

// Execute 实现 Executor。
func (f ExecutorFunc) Execute(ctx context.Context, in *intent.Validated) (string, error) {
	return f(ctx, in)
}

// TokenResolver 负责把代币符号解析为链上合约地址。
type TokenResolver interface {
	// ResolveTicker 解析失败或符号未知时返回错误。
	ResolveTicker(ctx context.Context, ticker string) (string, error)
	// TokenDecimals 尽力查询代币精度，查不到时返回 18。
	TokenDecimals(ctx context.Context, tokenAddress string) int
}

type key struct {
	connection string
	action     string
}

// Dispatcher 把校验后的意图路由到正确的执行路径：
// 签名类动作交给交易构造器，其余动作同步调用对应执行器。
type Dispatcher struct {
	executors map[key]Executor
	resolver  TokenResolver
	builder   *txbuilder.Builder
}

// New 创建分发器。
func New(resolver TokenResolver, builder *txbuilder.Builder) *Dispatcher {
	return &Dispatcher{
		executors: make(map[key]Executor),
		resolver:  resolver,
		builder:   builder,
	}
}

// RegisterExecutor 注册 (连接, 动作) 对应的执行器，仅在启动阶段调用。
func (d *Dispatcher) RegisterExecutor(connection, action string, ex Executor) {
	if ex == nil {
		return
	}
	d.executors[key{connection: connection, action: action}] = ex
}

// Dispatch 路由一条校验后的意图并返回动作结果。
// 需要派生查询的动作（按符号解析合约地址）先完成子调用，
// 失败时整个请求失败，绝不部分返回。
func (d *Dispatcher) Dispatch(ctx context.Context, in *intent.Validated) envelope.Result {
	tokenName := in.Text("token_name")
	tokenAddress := in.Text("token_address")
	decimals := 0

	if in.ResolvesToken {
		resolved, dec, err := d.resolveToken(ctx, tokenName, tokenAddress)
		if err != nil {
			return envelope.Result{Err: err}
		}
		tokenAddress = resolved
		decimals = dec
		in = in.WithParam("token_address", intent.Value{Type: intent.TypeAddress, Text: tokenAddress})
	}

	// 签名类动作绝不在服务端执行，交由交易构造器产出待签描述。
	if in.RequiresSignature {
		if d.builder == nil {
			return envelope.Result{Err: xerrors.New(xerrors.CodeInitializationFailure, "未配置交易构造器")}
		}
		descriptor, message, err := d.builder.Build(in, tokenName, tokenAddress, decimals)
		if err != nil {
			return envelope.Result{Err: err}
		}
		return envelope.Result{Action: in.Action, Transaction: descriptor, Message: message}
	}

	ex, ok := d.executors[key{connection: in.Connection, action: in.Action}]
	if !ok {
		return envelope.Result{Err: xerrors.Newf(xerrors.CodeExecutorError,
			"连接 %q 的动作 %q 没有注册执行器", in.Connection, in.Action)}
	}

	value, err := ex.Execute(ctx, in)
	if err != nil {
		if _, coded := xerrors.From(err); coded {
			return envelope.Result{Err: err}
		}
		return envelope.Result{Err: xerrors.Wrap(xerrors.CodeExecutorError, err, "执行动作 "+in.Action+" 失败")}
	}
	return envelope.Result{Value: value}
}

// resolveToken 返回已解析的代币地址与精度。
func (d *Dispatcher) resolveToken(ctx context.Context, tokenName, tokenAddress string) (string, int, error) {
	if tokenName == "" || tokenName == intent.NativeTicker {
		return NativeTokenAddress, NativeTokenDecimals, nil
	}
	if tokenAddress != "" {
		decimals := NativeTokenDecimals
		if d.resolver != nil {
			decimals = d.resolver.TokenDecimals(ctx, tokenAddress)
		}
		return tokenAddress, decimals, nil
	}
	if d.resolver == nil {
		return "", 0, xerrors.New(xerrors.CodeInitializationFailure, "未配置代币解析器")
	}
	resolved, err := d.resolver.ResolveTicker(ctx, tokenName)
	if err != nil {
		if _, coded := xerrors.From(err); coded {
			return "", 0, err
		}
		return "", 0, xerrors.Wrap(xerrors.CodeTokenResolutionError, err, "解析代币 "+tokenName+" 失败")
	}
	if resolved == "" {
		return "", 0, xerrors.Newf(xerrors.CodeTokenResolutionError, "未找到代币 %q 的合约地址", tokenName)
	}
	return resolved, d.resolver.TokenDecimals(ctx, resolved), nil
}
