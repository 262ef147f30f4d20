package txbuilder

import (
	"encoding/json"
	"fmt"
	"math/big"

	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/intent"
)

// Descriptor 是等待外部钱包签名的未签名交易描述。
// 只在单次请求/响应周期内存在，服务端不保管任何钱包状态。
type Descriptor struct {
	From              string      `json:"from"`
	To                string      `json:"to"`
	Amount            json.Number `json:"amount"`
	TokenName         string      `json:"token_name"`
	TokenAddress      string      `json:"token_address"`
	Decimals          int         `json:"decimals"`
	RequiresSignature bool        `json:"requires_signature"`
}

// Builder 把签名类意图组装为交易描述。
// 它从不触碰链上状态，唯一的输出跨边界交给外部签名方。
type Builder struct{}

// NewBuilder 创建交易构造器。
func NewBuilder() *Builder {
	return &Builder{}
}

// Build 组装交易描述与确认文案。
// 保证：amount 严格为正；from/to 通过地址语法检查；
// tokenAddress 必须是已解析的合约地址而非代币符号。
func (b *Builder) Build(v *intent.Validated, tokenName, tokenAddress string, decimals int) (*Descriptor, string, error) {
	if v == nil || !v.RequiresSignature {
		return nil, "", xerrors.New(xerrors.CodeExecutorError, "仅签名类意图可构造交易")
	}

	from := v.Text("from_address")
	if !intent.IsAddress(from) {
		return nil, "", xerrors.Newf(xerrors.CodeInvalidParameterType, "发送方地址 %q 非法", from)
	}
	to := v.Text("to_address")
	if !intent.IsAddress(to) {
		return nil, "", xerrors.Newf(xerrors.CodeInvalidParameterType, "接收方地址 %q 非法", to)
	}

	amountValue, ok := v.Get("amount")
	if !ok {
		return nil, "", xerrors.New(xerrors.CodeMissingParameter, "缺少必填参数 \"amount\"")
	}
	amount := amountValue.Decimal()
	if amount == nil || amount.Cmp(big.NewFloat(0)) <= 0 {
		return nil, "", xerrors.Newf(xerrors.CodeInvalidParameterType, "转账金额必须为正数，收到 %q", amountValue.Text)
	}

	if decimals <= 0 {
		decimals = 18
	}

	descriptor := &Descriptor{
		From:              from,
		To:                to,
		Amount:            json.Number(amountValue.Text),
		TokenName:         tokenName,
		TokenAddress:      tokenAddress,
		Decimals:          decimals,
		RequiresSignature: true,
	}
	message := fmt.Sprintf("Please confirm transfer of %s %s from %s to %s",
		amountValue.Text, tokenName, from, to)
	return descriptor, message, nil
}
