package sonic

import (
	"context"
	"strings"
	"time"

	"Sonic-Agent/internal/cache"
	"Sonic-Agent/internal/connections/dexscreener"
	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/tokens"
)

const defaultResolveTTL = time.Hour

// Resolver maps token tickers to Sonic contract addresses. Lookup order:
// static table, cache, DexScreener. Implements dispatch.TokenResolver.
type Resolver struct {
	table  *tokens.Table
	cache  cache.Cache
	dex    *dexscreener.Client
	client *Client
	ttl    time.Duration
}

// NewResolver constructs a resolver. The chain client is optional and only
// used for on-chain decimals lookups.
func NewResolver(table *tokens.Table, c cache.Cache, dex *dexscreener.Client, client *Client, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = defaultResolveTTL
	}
	return &Resolver{table: table, cache: c, dex: dex, client: client, ttl: ttl}
}

// ResolveTicker resolves a token symbol to its contract address.
func (r *Resolver) ResolveTicker(ctx context.Context, ticker string) (string, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return "", xerrors.New(xerrors.CodeTokenResolutionError, "代币符号为空")
	}

	if entry, ok := r.table.Lookup(ticker); ok {
		return entry.Address, nil
	}

	cacheKey := "ticker:" + strings.ToUpper(ticker)
	if r.cache != nil {
		if address, ok := r.cache.Get(ctx, cacheKey); ok {
			return address, nil
		}
	}

	if r.dex == nil {
		return "", xerrors.Newf(xerrors.CodeTokenResolutionError, "未找到代币 %q 的合约地址", ticker)
	}
	address, err := r.dex.FindTokenByTicker(ctx, dexscreener.SonicChainID, ticker)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeTokenResolutionError, err, "解析代币 "+ticker+" 失败")
	}
	if address == "" {
		return "", xerrors.Newf(xerrors.CodeTokenResolutionError, "未找到代币 %q 的合约地址", ticker)
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKey, address, r.ttl)
	}
	return address, nil
}

// TokenDecimals returns the decimals of a token, falling back to 18.
func (r *Resolver) TokenDecimals(ctx context.Context, tokenAddress string) int {
	if entry, ok := r.table.LookupByAddress(tokenAddress); ok {
		return entry.Decimals
	}
	if r.client != nil {
		if decimals, err := r.client.TokenDecimals(ctx, tokenAddress); err == nil && decimals > 0 {
			return decimals
		}
	}
	return 18
}
