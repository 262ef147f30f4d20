// Package market 实现行情连接：热门代币、热门 NFT 集合与 NFT 详情查询，
// 数据来源为 DexScreener 与 PaintSwap，结果带一小时缓存。
package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"Sonic-Agent/internal/cache"
	"Sonic-Agent/internal/connections/dexscreener"
	"Sonic-Agent/internal/connections/paintswap"
	"Sonic-Agent/internal/dispatch"
	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/intent"
)

const cacheTTL = time.Hour

// Schemas 返回行情连接的动作集合。
func Schemas() []*intent.ActionSchema {
	return []*intent.ActionSchema{
		{
			Name:        "get-hot-tokens",
			Description: "List hot tokens on Sonic chain by 24h volume",
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "limit", Type: intent.TypeInt}, Default: "10"},
			},
		},
		{
			Name:        "get-hot-nfts",
			Description: "List hot NFT collections by 24h traded volume",
			Optional: []intent.OptionalParam{
				{ParamSpec: intent.ParamSpec{Name: "limit", Type: intent.TypeInt}, Default: "10"},
			},
		},
		{
			Name:        "get-nft-info",
			Description: "Get NFT collection information by contract address",
			Required: []intent.ParamSpec{
				{Name: "collection_address", Type: intent.TypeAddress},
			},
		},
	}
}

// Executor 聚合行情数据源并实现三个行情动作。
type Executor struct {
	dex   *dexscreener.Client
	paint *paintswap.Client
	cache cache.Cache
}

// NewExecutor 创建行情执行器。
func NewExecutor(dex *dexscreener.Client, paint *paintswap.Client, c cache.Cache) *Executor {
	return &Executor{dex: dex, paint: paint, cache: c}
}

// Register 把行情动作挂到分发器上。
func (e *Executor) Register(d *dispatch.Dispatcher, connection string) {
	d.RegisterExecutor(connection, "get-hot-tokens", dispatch.ExecutorFunc(e.hotTokens))
	d.RegisterExecutor(connection, "get-hot-nfts", dispatch.ExecutorFunc(e.hotNFTs))
	d.RegisterExecutor(connection, "get-nft-info", dispatch.ExecutorFunc(e.nftInfo))
}

// tokenRank 按地址聚合同一代币在多个交易对上的成交量。
type tokenRank struct {
	dexscreener.Token
	totalVolume24h  float64
	maxLiquidityUSD float64
	priceUSD        string
	priceNative     string
	marketCap       float64
	priceChange24h  float64
	url             string
}

func (e *Executor) hotTokens(ctx context.Context, in *intent.Validated) (string, error) {
	limit := int(in.Params["limit"].Int())
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("hot-tokens:%d", limit)
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	pairs, err := e.dex.SonicPairs(ctx)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeExecutorError, err, "获取热门代币失败")
	}

	ranks := make(map[string]*tokenRank)
	order := make([]string, 0)
	for _, pair := range pairs {
		address := pair.BaseToken.Address
		rank, ok := ranks[address]
		if !ok {
			rank = &tokenRank{
				Token:          pair.BaseToken,
				priceUSD:       pair.PriceUSD,
				priceNative:    pair.PriceNative,
				marketCap:      pair.MarketCap,
				priceChange24h: pair.PriceChange.H24,
				url:            pair.URL,
			}
			ranks[address] = rank
			order = append(order, address)
		}
		rank.totalVolume24h += pair.Volume.H24
		if pair.Liquidity.USD > rank.maxLiquidityUSD {
			rank.maxLiquidityUSD = pair.Liquidity.USD
		}
	}

	sorted := make([]*tokenRank, 0, len(order))
	for _, address := range order {
		sorted = append(sorted, ranks[address])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].totalVolume24h > sorted[j].totalVolume24h
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	var b strings.Builder
	b.WriteString("Hot Tokens on Sonic Chain\n\n")
	for i, rank := range sorted {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, rank.Symbol, rank.Name)
		fmt.Fprintf(&b, "   Contract Address: %s\n", rank.Address)
		fmt.Fprintf(&b, "   Total 24h Volume: $%.2f\n", rank.totalVolume24h)
		fmt.Fprintf(&b, "   Max Liquidity: $%.2f\n", rank.maxLiquidityUSD)
		if rank.marketCap > 0 {
			fmt.Fprintf(&b, "   Market Cap: $%.2f\n", rank.marketCap)
		}
		fmt.Fprintf(&b, "   Price Change (24h): %.2f%%\n", rank.priceChange24h)
		if rank.priceUSD != "" {
			fmt.Fprintf(&b, "   Price (USD): $%s\n", rank.priceUSD)
		}
		if rank.priceNative != "" {
			fmt.Fprintf(&b, "   Price (Native): %s\n", rank.priceNative)
		}
		if rank.url != "" {
			fmt.Fprintf(&b, "   URL: %s\n", rank.url)
		}
		b.WriteString("\n")
	}
	result := b.String()

	if e.cache != nil {
		e.cache.Set(ctx, cacheKey, result, cacheTTL)
	}
	return result, nil
}

func (e *Executor) hotNFTs(ctx context.Context, in *intent.Validated) (string, error) {
	limit := int(in.Params["limit"].Int())
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("hot-nfts:%d", limit)
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	collections, err := e.paint.HotCollections(ctx, limit)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeExecutorError, err, "获取热门 NFT 集合失败")
	}

	var b strings.Builder
	b.WriteString("Hot NFT Collections\n\n")
	for i, collection := range collections {
		writeCollection(&b, i+1, &collection)
	}
	result := b.String()

	if e.cache != nil {
		e.cache.Set(ctx, cacheKey, result, cacheTTL)
	}
	return result, nil
}

func (e *Executor) nftInfo(ctx context.Context, in *intent.Validated) (string, error) {
	address := in.Text("collection_address")

	cacheKey := "nft-info:" + strings.ToLower(address)
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	collection, err := e.paint.CollectionInfo(ctx, address)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeExecutorError, err, "获取 NFT 集合信息失败")
	}

	var b strings.Builder
	b.WriteString("NFT Collection Information\n\n")
	writeCollection(&b, 0, collection)
	result := b.String()

	if e.cache != nil {
		e.cache.Set(ctx, cacheKey, result, cacheTTL)
	}
	return result, nil
}

// writeCollection 渲染单个集合的文本。金额保持 wei 单位，与上游一致。
func writeCollection(b *strings.Builder, index int, c *paintswap.Collection) {
	name := c.Name
	if name == "" {
		name = "Unknown"
	}
	if index > 0 {
		fmt.Fprintf(b, "%d. %s\n", index, name)
	} else {
		fmt.Fprintf(b, "%s\n", name)
	}
	fmt.Fprintf(b, "   Address: %s\n", c.Address)
	if c.Owner != "" {
		fmt.Fprintf(b, "   Creator: %s\n", c.Owner)
	}
	if c.Stats.Symbol != "" {
		fmt.Fprintf(b, "   Symbol: %s\n", c.Stats.Symbol)
	}
	if c.Standard != "" {
		fmt.Fprintf(b, "   Standard: ERC-%s\n", c.Standard)
	}
	if c.ChainID != 0 {
		fmt.Fprintf(b, "   Chain ID: %d\n", c.ChainID)
	}
	fmt.Fprintf(b, "   Verified: %s\n", yesNo(c.Verified))
	if c.Description != "" {
		fmt.Fprintf(b, "   Description: %s\n", truncate(c.Description, 100))
	}
	fmt.Fprintf(b, "   Floor Price: %s wei\n", orZero(c.Stats.Floor))
	fmt.Fprintf(b, "   24h Volume: %s wei\n", orZero(c.Stats.VolumeLast24Hours))
	fmt.Fprintf(b, "   7d Volume: %s wei\n", orZero(c.Stats.VolumeLast7Days))
	fmt.Fprintf(b, "   Total Volume: %s wei\n", orZero(c.Stats.TotalVolumeTraded))
	if c.Stats.HighestSale != "" && c.Stats.HighestSale != "0" {
		fmt.Fprintf(b, "   Highest Sale: %s wei\n", c.Stats.HighestSale)
	}
	if c.Stats.TotalMinted != "" {
		fmt.Fprintf(b, "   Total Supply: %s\n", c.Stats.TotalMinted)
	}
	if c.Stats.NumOwners != "" {
		fmt.Fprintf(b, "   Unique Owners: %s\n", c.Stats.NumOwners)
	}
	if c.Stats.ActiveSales != "" {
		fmt.Fprintf(b, "   Active Sales: %s\n", c.Stats.ActiveSales)
	}
	if c.Stats.TotalTrades != "" {
		fmt.Fprintf(b, "   Total Trades: %s\n", c.Stats.TotalTrades)
	}
	b.WriteString("\n")
}

func yesNo(flag bool) string {
	if flag {
		return "Yes"
	}
	return "No"
}

func orZero(value string) string {
	if strings.TrimSpace(value) == "" {
		return "0"
	}
	return value
}

// truncate 按字符数截断描述，避免把多字节字符切成半个。
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
