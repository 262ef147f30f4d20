// Package sonic implements the Sonic chain connection: balance queries,
// ticker resolution and token security probes over an EVM RPC endpoint.
package sonic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	gethcore "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Config describes how to construct a Sonic chain client.
type Config struct {
	Name   string
	RPCURL string
}

// Backend mirrors the subset of ethclient methods the connection needs,
// so tests can substitute an in-memory implementation.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call gethcore.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client talks to a Sonic (EVM compatible) RPC endpoint.
type Client struct {
	name      string
	backend   Backend
	rpcClient *gethrpc.Client
	erc20     abi.ABI
	probes    abi.ABI
}

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"}
]`

// probeABIJSON lists the optional functions whose presence indicates risky
// capabilities in a token contract. A successful eth_call marks the flag.
const probeABIJSON = `[
	{"constant":true,"inputs":[],"name":"implementation","outputs":[{"name":"","type":"address"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"isBlacklisted","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"paused","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"mint","outputs":[],"type":"function"},
	{"constant":true,"inputs":[],"name":"maxTransferAmount","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"owner","outputs":[{"name":"","type":"address"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"taxRate","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"pair","type":"address"}],"name":"setLpPair","outputs":[],"type":"function"}
]`

// NewClient dials the configured RPC endpoint and returns a ready client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	rpcURL := strings.TrimSpace(cfg.RPCURL)
	if rpcURL == "" {
		return nil, errors.New("sonic RPC URL is empty")
	}

	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial sonic node: %w", err)
	}

	client, err := newClient(cfg.Name, ethclient.NewClient(rpcClient))
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	client.rpcClient = rpcClient
	return client, nil
}

// NewWithBackend wraps an existing backend, used by tests.
func NewWithBackend(name string, backend Backend) (*Client, error) {
	return newClient(name, backend)
}

func newClient(name string, backend Backend) (*Client, error) {
	erc20, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse ERC20 ABI: %w", err)
	}
	probes, err := abi.JSON(strings.NewReader(probeABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse probe ABI: %w", err)
	}
	return &Client{name: name, backend: backend, erc20: erc20, probes: probes}, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
		c.rpcClient = nil
	}
}

// NativeBalance returns the native token balance formatted in whole units.
func (c *Client) NativeBalance(ctx context.Context, address string) (string, error) {
	wei, err := c.backend.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return "", fmt.Errorf("query native balance: %w", err)
	}
	return formatUnits(wei, 18), nil
}

// TokenBalance returns an ERC20 balance formatted with the token decimals.
func (c *Client) TokenBalance(ctx context.Context, address, tokenAddress string) (string, error) {
	input, err := c.erc20.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return "", fmt.Errorf("pack balanceOf: %w", err)
	}
	output, err := c.call(ctx, tokenAddress, input)
	if err != nil {
		return "", fmt.Errorf("query token balance: %w", err)
	}
	results, err := c.erc20.Unpack("balanceOf", output)
	if err != nil || len(results) == 0 {
		return "", fmt.Errorf("decode balanceOf result: %w", err)
	}
	wei, ok := results[0].(*big.Int)
	if !ok {
		return "", errors.New("unexpected balanceOf result type")
	}

	decimals, err := c.TokenDecimals(ctx, tokenAddress)
	if err != nil {
		decimals = 18
	}
	return formatUnits(wei, decimals), nil
}

// TokenDecimals reads the decimals() value of an ERC20 contract.
func (c *Client) TokenDecimals(ctx context.Context, tokenAddress string) (int, error) {
	input, err := c.erc20.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals: %w", err)
	}
	output, err := c.call(ctx, tokenAddress, input)
	if err != nil {
		return 0, fmt.Errorf("query decimals: %w", err)
	}
	results, err := c.erc20.Unpack("decimals", output)
	if err != nil || len(results) == 0 {
		return 0, fmt.Errorf("decode decimals result: %w", err)
	}
	decimals, ok := results[0].(uint8)
	if !ok {
		return 0, errors.New("unexpected decimals result type")
	}
	return int(decimals), nil
}

func (c *Client) call(ctx context.Context, contract string, input []byte) ([]byte, error) {
	to := common.HexToAddress(contract)
	return c.backend.CallContract(ctx, gethcore.CallMsg{To: &to, Data: input}, nil)
}

// formatUnits renders a wei amount as an exact decimal string in whole
// token units, with trailing zeros trimmed.
func formatUnits(wei *big.Int, decimals int) string {
	if wei == nil {
		return "0"
	}
	if decimals <= 0 {
		return wei.String()
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(wei, scale, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := fmt.Sprintf("%0*s", decimals, rem.String())
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}
