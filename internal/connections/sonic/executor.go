package sonic

import (
	"context"
	"fmt"

	"Sonic-Agent/internal/dispatch"
	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/intent"
)

// Schemas returns the action set of the sonic connection.
func Schemas() []*intent.ActionSchema {
	return []*intent.ActionSchema{
		{
			Name:        "get-balance",
			Description: "Query native or ERC20 balance of a wallet",
			Required: []intent.ParamSpec{
				{Name: "from_address", Type: intent.TypeAddress, Description: "Wallet address to query"},
			},
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "token_name", Type: intent.TypeString}, Default: intent.NativeTicker},
				{ParamSpec: intent.ParamSpec{Name: "token_address", Type: intent.TypeAddress}},
			},
			ResolvesToken: true,
		},
		{
			Name:        "get-token-by-ticker",
			Description: "Resolve a token ticker to its contract address",
			Required: []intent.ParamSpec{
				{Name: "token_name", Type: intent.TypeString, Description: "Token ticker to resolve"},
			},
		},
		{
			Name:        "transfer",
			Description: "Transfer native or ERC20 tokens, completed by external wallet signing",
			Required: []intent.ParamSpec{
				{Name: "from_address", Type: intent.TypeAddress},
				{Name: "to_address", Type: intent.TypeAddress},
				{Name: "amount", Type: intent.TypeDecimal},
			},
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "token_name", Type: intent.TypeString}, Default: intent.NativeTicker},
				{ParamSpec: intent.ParamSpec{Name: "token_address", Type: intent.TypeAddress}},
			},
			RequiresSignature: true,
			ResolvesToken:     true,
		},
		{
			Name:        "check-token-security",
			Description: "Check risky capabilities of a token contract",
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "token_name", Type: intent.TypeString}},
				{ParamSpec: intent.ParamSpec{Name: "token_address", Type: intent.TypeAddress}},
			},
		},
	}
}

// RegisterExecutors wires the read-only sonic actions into the dispatcher.
// The transfer action is signature gated and never reaches an executor.
func RegisterExecutors(d *dispatch.Dispatcher, connection string, client *Client, resolver *Resolver) {
	d.RegisterExecutor(connection, "get-balance", dispatch.ExecutorFunc(
		func(ctx context.Context, in *intent.Validated) (string, error) {
			if client == nil {
				return "", xerrors.New(xerrors.CodeInitializationFailure, "sonic 链客户端未配置")
			}
			from := in.Text("from_address")
			tokenName := in.Text("token_name")
			tokenAddress := in.Text("token_address")

			var (
				balance string
				err     error
			)
			if tokenAddress == "" || tokenAddress == dispatch.NativeTokenAddress {
				balance, err = client.NativeBalance(ctx, from)
			} else {
				balance, err = client.TokenBalance(ctx, from, tokenAddress)
			}
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Wallet %s %s balance: %s", from, tokenName, balance), nil
		}))

	d.RegisterExecutor(connection, "get-token-by-ticker", dispatch.ExecutorFunc(
		func(ctx context.Context, in *intent.Validated) (string, error) {
			ticker := in.Text("token_name")
			address, err := resolver.ResolveTicker(ctx, ticker)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Token %s address: %s", ticker, address), nil
		}))

	d.RegisterExecutor(connection, "check-token-security", dispatch.ExecutorFunc(
		func(ctx context.Context, in *intent.Validated) (string, error) {
			if client == nil {
				return "", xerrors.New(xerrors.CodeInitializationFailure, "sonic 链客户端未配置")
			}
			tokenName := in.Text("token_name")
			tokenAddress := in.Text("token_address")
			if tokenAddress == "" && tokenName != "" {
				resolved, err := resolver.ResolveTicker(ctx, tokenName)
				if err != nil {
					return "", err
				}
				tokenAddress = resolved
			}
			if tokenAddress == "" {
				return "", xerrors.New(xerrors.CodeMissingParameter,
					"缺少必填参数 \"token_address\"（或提供 token_name）")
			}

			report, err := client.SecurityCheck(ctx, tokenAddress)
			if err != nil {
				return "", err
			}
			return report.Format(tokenName), nil
		}))
}
