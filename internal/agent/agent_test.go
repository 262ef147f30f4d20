package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"Sonic-Agent/internal/dispatch"
	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/history"
	"Sonic-Agent/internal/intent"
	"Sonic-Agent/internal/llm"
	"Sonic-Agent/internal/registry"
	"Sonic-Agent/internal/txbuilder"
)

// scriptedLLM 按脚本返回固定输出，记录收到的请求。
type scriptedLLM struct {
	content string
	err     error
	lastReq llm.Request
}

func (s *scriptedLLM) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

type stubResolver struct {
	table map[string]string
}

func (s *stubResolver) ResolveTicker(_ context.Context, ticker string) (string, error) {
	address, ok := s.table[ticker]
	if !ok {
		return "", xerrors.Newf(xerrors.CodeTokenResolutionError, "未找到代币 %q 的合约地址", ticker)
	}
	return address, nil
}

func (s *stubResolver) TokenDecimals(_ context.Context, _ string) int { return 18 }

func newTestAgent(t *testing.T, llmClient llm.Client) *Agent {
	t.Helper()

	reg := registry.New()
	if err := reg.Register("sonic", []*intent.ActionSchema{
		{
			Name: "get-balance",
			Required: []intent.ParamSpec{
				{Name: "from_address", Type: intent.TypeAddress},
			},
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "token_name", Type: intent.TypeString}, Default: intent.NativeTicker},
				{ParamSpec: intent.ParamSpec{Name: "token_address", Type: intent.TypeAddress}},
			},
			ResolvesToken: true,
		},
		{
			Name: "transfer",
			Required: []intent.ParamSpec{
				{Name: "from_address", Type: intent.TypeAddress},
				{Name: "to_address", Type: intent.TypeAddress},
				{Name: "amount", Type: intent.TypeDecimal},
			},
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "token_name", Type: intent.TypeString}, Default: intent.NativeTicker},
			},
			RequiresSignature: true,
			ResolvesToken:     true,
		},
	}, registry.AsIntentSource()); err != nil {
		t.Fatalf("register sonic: %v", err)
	}
	if err := reg.Register("deepseek", []*intent.ActionSchema{
		{
			Name: "generate-text",
			Required: []intent.ParamSpec{
				{Name: "prompt", Type: intent.TypeString},
			},
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "system_prompt", Type: intent.TypeString}},
				{ParamSpec: intent.ParamSpec{Name: "model", Type: intent.TypeString}, Default: "deepseek/deepseek-v3"},
			},
		},
		{Name: "list-models"},
	}); err != nil {
		t.Fatalf("register deepseek: %v", err)
	}

	resolver := &stubResolver{table: map[string]string{
		"USDC": "0x29219dd400f2Bf60E5a23d13Be72B486D4038894",
	}}
	dispatcher := dispatch.New(resolver, txbuilder.NewBuilder())
	dispatcher.RegisterExecutor("sonic", "get-balance", dispatch.ExecutorFunc(
		func(_ context.Context, in *intent.Validated) (string, error) {
			return fmt.Sprintf("Wallet %s %s balance: 12.5", in.Text("from_address"), in.Text("token_name")), nil
		}))
	dispatcher.RegisterExecutor("deepseek", "list-models", dispatch.ExecutorFunc(
		func(_ context.Context, _ *intent.Validated) (string, error) {
			return "Available models: deepseek/deepseek-v3", nil
		}))

	store, err := history.NewMemoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("history store: %v", err)
	}

	parser := intent.NewParser(llmClient, "")
	validator := intent.NewValidator(reg)
	return New(reg, parser, validator, dispatcher, WithHistoryStore(store))
}

func TestExecuteEntryStructuredBalance(t *testing.T) {
	client := &scriptedLLM{content: `{"action":"get-balance","parameters":{"from_address":"0x123","token_name":"USDC"}}`}
	ag := newTestAgent(t, client)

	env := ag.Execute(context.Background(), Request{
		Connection: "deepseek",
		Action:     "generate-text",
		Params:     []string{"check my USDC balance on 0x123"},
	})
	if env.IsError() {
		t.Fatalf("unexpected error envelope: %+v", env)
	}
	if env.Status != "success" || env.Result == "" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if client.lastReq.Prompt != "check my USDC balance on 0x123" {
		t.Fatalf("prompt not forwarded: %q", client.lastReq.Prompt)
	}
}

func TestExecuteEntryTransferReturnsUnsignedTransaction(t *testing.T) {
	client := &scriptedLLM{content: `{"action":"transfer","parameters":{"from_address":"0x123","to_address":"0x456","amount":100}}`}
	ag := newTestAgent(t, client)

	env := ag.Execute(context.Background(), Request{
		Connection: "deepseek",
		Action:     "generate-text",
		Params:     []string{"send 100 S from 0x123 to 0x456"},
	})
	if !env.IsPending() {
		t.Fatalf("expected pending envelope, got %+v", env)
	}
	if env.Status != "" {
		t.Fatalf("pending envelope must not carry status")
	}
	tx := env.TransactionData
	if tx.Amount.String() != "100" || tx.TokenName != "S" {
		t.Fatalf("unexpected descriptor: %+v", tx)
	}
	if tx.TokenAddress != dispatch.NativeTokenAddress {
		t.Fatalf("native transfer must resolve to the zero address: %s", tx.TokenAddress)
	}
	if !tx.RequiresSignature {
		t.Fatalf("descriptor must be marked for signing")
	}
}

func TestExecuteEntryFreeform(t *testing.T) {
	client := &scriptedLLM{content: "Gm! Ask me about balances, transfers or market data."}
	ag := newTestAgent(t, client)

	env := ag.Execute(context.Background(), Request{
		Connection: "deepseek",
		Action:     "generate-text",
		Params:     []string{"gm"},
	})
	if env.Status != "success" {
		t.Fatalf("expected success envelope: %+v", env)
	}
	if env.Result != client.content {
		t.Fatalf("freeform reply altered: %q", env.Result)
	}
}

func TestExecuteUnknownConnection(t *testing.T) {
	ag := newTestAgent(t, &scriptedLLM{})

	env := ag.Execute(context.Background(), Request{Connection: "avalanche", Action: "get-balance"})
	if !env.IsError() || env.Error != "UnknownConnection" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExecuteUnsupportedAction(t *testing.T) {
	ag := newTestAgent(t, &scriptedLLM{})

	env := ag.Execute(context.Background(), Request{Connection: "sonic", Action: "stake"})
	if !env.IsError() || env.Error != "UnsupportedAction" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExecuteEntryUnsupportedIntent(t *testing.T) {
	client := &scriptedLLM{content: `{"action":"stake-tokens","parameters":{}}`}
	ag := newTestAgent(t, client)

	env := ag.Execute(context.Background(), Request{
		Connection: "deepseek",
		Action:     "generate-text",
		Params:     []string{"stake my tokens"},
	})
	if !env.IsError() || env.Error != "UnsupportedAction" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExecuteEntryMissingParameter(t *testing.T) {
	client := &scriptedLLM{content: `{"action":"transfer","parameters":{"from_address":"0x123","amount":"5"}}`}
	ag := newTestAgent(t, client)

	env := ag.Execute(context.Background(), Request{
		Connection: "deepseek",
		Action:     "generate-text",
		Params:     []string{"send 5 S from 0x123"},
	})
	if !env.IsError() || env.Error != "MissingParameter" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExecuteEntryTokenResolutionError(t *testing.T) {
	client := &scriptedLLM{content: `{"action":"get-balance","parameters":{"from_address":"0x123","token_name":"NOPE"}}`}
	ag := newTestAgent(t, client)

	env := ag.Execute(context.Background(), Request{
		Connection: "deepseek",
		Action:     "generate-text",
		Params:     []string{"check my NOPE balance"},
	})
	if !env.IsError() || env.Error != "TokenResolutionError" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExecuteEntryUpstreamFailure(t *testing.T) {
	client := &scriptedLLM{err: errors.New("connection reset")}
	ag := newTestAgent(t, client)

	env := ag.Execute(context.Background(), Request{
		Connection: "deepseek",
		Action:     "generate-text",
		Params:     []string{"check balance"},
	})
	if !env.IsError() || env.Error != "UpstreamGenerationError" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestExecuteDirectActionSkipsParser(t *testing.T) {
	client := &scriptedLLM{err: errors.New("must not be called")}
	ag := newTestAgent(t, client)

	env := ag.Execute(context.Background(), Request{Connection: "deepseek", Action: "list-models"})
	if env.Status != "success" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Result != "Available models: deepseek/deepseek-v3" {
		t.Fatalf("unexpected result: %q", env.Result)
	}
}

func TestExecutePositionalBinding(t *testing.T) {
	ag := newTestAgent(t, &scriptedLLM{})

	env := ag.Execute(context.Background(), Request{
		Connection: "sonic",
		Action:     "get-balance",
		Params:     []string{"0x123", "USDC"},
	})
	if env.Status != "success" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Result != "Wallet 0x123 USDC balance: 12.5" {
		t.Fatalf("unexpected result: %q", env.Result)
	}
}

func TestExecuteRecordsHistory(t *testing.T) {
	ag := newTestAgent(t, &scriptedLLM{content: "hello"})

	_ = ag.Execute(context.Background(), Request{
		Connection: "deepseek",
		Action:     "generate-text",
		Params:     []string{"gm"},
	})
	_ = ag.Execute(context.Background(), Request{Connection: "avalanche", Action: "x"})

	records, err := ag.ListHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// 最新的在前。
	if records[0].Status != "error" || records[0].ErrorKind != "UnknownConnection" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[1].Status != "success" || records[1].RequestID == "" {
		t.Fatalf("unexpected record: %+v", records[1])
	}
}
