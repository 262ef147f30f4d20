package tokens

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry 描述一个预置代币。
type Entry struct {
	Ticker   string `json:"ticker"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

// Table 提供代币符号到合约地址的静态检索，远程解析前先查本表。
// 启动时构建，之后只读。
type Table struct {
	entries map[string]Entry
}

// 内置的 Sonic 主网常见代币，配置文件可以覆盖或补充。
var builtin = []Entry{
	{Ticker: "wS", Address: "0x039e2fB66102314Ce7b64Ce5Ce3E5183bc94aD38", Decimals: 18},
	{Ticker: "USDC", Address: "0x29219dd400f2Bf60E5a23d13Be72B486D4038894", Decimals: 6},
	{Ticker: "USDT", Address: "0x6047828dc181963ba44974801FF68e538dA5eaF9", Decimals: 6},
	{Ticker: "WETH", Address: "0x50c42dEAcD8Fc9773493ED674b675bE577f2634b", Decimals: 18},
}

// NewTable 创建包含内置代币与额外条目的静态表。
func NewTable(extra []Entry) *Table {
	table := &Table{entries: make(map[string]Entry, len(builtin)+len(extra))}
	for _, entry := range builtin {
		table.put(entry)
	}
	for _, entry := range extra {
		table.put(entry)
	}
	return table
}

// LoadTable 从 JSON 文件加载额外代币条目。路径为空时仅用内置表。
func LoadTable(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return NewTable(nil), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("解析代币表路径失败: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("读取代币表文件失败: %w", err)
	}
	defer file.Close()

	var entries []Entry
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		return nil, fmt.Errorf("解析代币表文件失败: %w", err)
	}
	return NewTable(entries), nil
}

func (t *Table) put(entry Entry) {
	ticker := strings.ToUpper(strings.TrimSpace(entry.Ticker))
	if ticker == "" || strings.TrimSpace(entry.Address) == "" {
		return
	}
	if entry.Decimals <= 0 {
		entry.Decimals = 18
	}
	t.entries[ticker] = entry
}

// Lookup 按符号查找代币，大小写不敏感。
func (t *Table) Lookup(ticker string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	entry, ok := t.entries[strings.ToUpper(strings.TrimSpace(ticker))]
	return entry, ok
}

// LookupByAddress 按合约地址反查代币。
func (t *Table) LookupByAddress(address string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	for _, entry := range t.entries {
		if strings.EqualFold(entry.Address, address) {
			return entry, true
		}
	}
	return Entry{}, false
}
