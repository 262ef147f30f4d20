package envelope

import (
	"encoding/json"

	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/txbuilder"
)

// 响应状态的判别值。交易待签形态不携带 status，调用方以
// transaction_data 是否存在来分支。
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope 是对外的统一响应信封，三种形态每次只出现一种：
//
//	普通结果:  {"status":"success","result":...}
//	交易待签:  {"action":...,"transaction_data":{...},"message":...}
//	错误:      {"status":"error","error":...,"detail":...}
type Envelope struct {
	Status          string
	Result          string
	Action          string
	TransactionData *txbuilder.Descriptor
	Message         string
	Error           string
	Detail          string
}

// MarshalJSON 按信封形态输出对应的字段集合。
// result 即使为空串也始终出现在普通结果中。
func (e *Envelope) MarshalJSON() ([]byte, error) {
	switch {
	case e.IsError():
		return json.Marshal(struct {
			Status string `json:"status"`
			Error  string `json:"error"`
			Detail string `json:"detail,omitempty"`
		}{Status: e.Status, Error: e.Error, Detail: e.Detail})
	case e.IsPending():
		return json.Marshal(struct {
			Action          string                `json:"action"`
			TransactionData *txbuilder.Descriptor `json:"transaction_data"`
			Message         string                `json:"message,omitempty"`
		}{Action: e.Action, TransactionData: e.TransactionData, Message: e.Message})
	default:
		return json.Marshal(struct {
			Status string `json:"status"`
			Result string `json:"result"`
		}{Status: e.Status, Result: e.Result})
	}
}

// Result 是分发阶段产出的动作结果，Format 把它归一化为信封。
type Result struct {
	Value       string
	Action      string
	Transaction *txbuilder.Descriptor
	Message     string
	Err         error
}

// Format 把动作结果归一化为响应信封。
func Format(res Result) *Envelope {
	if res.Err != nil {
		return Failure(res.Err)
	}
	if res.Transaction != nil {
		return Pending(res.Action, res.Transaction, res.Message)
	}
	return Success(res.Value)
}

// Success 构造普通结果信封。
func Success(result string) *Envelope {
	return &Envelope{Status: StatusSuccess, Result: result}
}

// Pending 构造交易待签信封。
func Pending(action string, tx *txbuilder.Descriptor, message string) *Envelope {
	return &Envelope{Action: action, TransactionData: tx, Message: message}
}

// Failure 构造错误信封，error 字段为稳定的错误码字符串。
func Failure(err error) *Envelope {
	return &Envelope{
		Status: StatusError,
		Error:  string(xerrors.CodeOf(err)),
		Detail: xerrors.DetailOf(err),
	}
}

// IsError 判断信封是否为错误形态。
func (e *Envelope) IsError() bool {
	return e != nil && e.Status == StatusError
}

// IsPending 判断信封是否为交易待签形态。
func (e *Envelope) IsPending() bool {
	return e != nil && e.TransactionData != nil
}
