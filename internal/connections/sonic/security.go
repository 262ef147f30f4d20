package sonic

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SecurityReport summarizes the risky capabilities detected in a token
// contract. Detection is heuristic: a probe call that succeeds means the
// function exists, not that it was ever used.
type SecurityReport struct {
	TokenAddress         string
	IsUpgradeable        bool
	HasBlacklist         bool
	CanPause             bool
	HiddenMint           bool
	TransferRestrictions bool
	SuspiciousOwner      bool
	HasTax               bool
	CanModifyLP          bool
}

// RiskLevel derives the overall rating from the number of flagged probes.
func (r *SecurityReport) RiskLevel() string {
	count := 0
	for _, flag := range []bool{
		r.IsUpgradeable, r.HasBlacklist, r.CanPause, r.HiddenMint,
		r.TransferRestrictions, r.SuspiciousOwner, r.HasTax, r.CanModifyLP,
	} {
		if flag {
			count++
		}
	}
	switch {
	case count == 0:
		return "low"
	case count <= 2:
		return "medium"
	default:
		return "high"
	}
}

// Format renders the report as user-facing text.
func (r *SecurityReport) Format(tokenName string) string {
	var b strings.Builder
	b.WriteString("Token Security Report\n\n")
	if tokenName != "" {
		fmt.Fprintf(&b, "Token Name: %s\n", tokenName)
	}
	fmt.Fprintf(&b, "Contract Address: %s\n", r.TokenAddress)
	fmt.Fprintf(&b, "Risk Level: %s\n\n", strings.ToUpper(r.RiskLevel()))

	b.WriteString("Detailed Check Results:\n")
	fmt.Fprintf(&b, "- Is contract upgradeable: %s\n", yesNo(r.IsUpgradeable))
	fmt.Fprintf(&b, "- Has blacklist function: %s\n", yesNo(r.HasBlacklist))
	fmt.Fprintf(&b, "- Can pause transactions: %s\n", yesNo(r.CanPause))
	fmt.Fprintf(&b, "- Has hidden mint function: %s\n", yesNo(r.HiddenMint))
	fmt.Fprintf(&b, "- Has suspicious transfer restrictions: %s\n", yesNo(r.TransferRestrictions))
	fmt.Fprintf(&b, "- Has suspicious permission settings: %s\n", yesNo(r.SuspiciousOwner))
	fmt.Fprintf(&b, "- Has tax: %s\n", yesNo(r.HasTax))
	fmt.Fprintf(&b, "- Can modify liquidity pool: %s\n\n", yesNo(r.CanModifyLP))

	switch r.RiskLevel() {
	case "high":
		b.WriteString("Warning: This token has high risk! Please proceed with caution!\n")
	case "medium":
		b.WriteString("Notice: This token has medium risk. Please evaluate carefully before proceeding.\n")
	default:
		b.WriteString("This token has low risk, but still needs to be treated with caution.\n")
	}
	return b.String()
}

func yesNo(flag bool) string {
	if flag {
		return "Yes"
	}
	return "No"
}

// SecurityCheck probes the token contract for risky capabilities.
func (c *Client) SecurityCheck(ctx context.Context, tokenAddress string) (*SecurityReport, error) {
	report := &SecurityReport{TokenAddress: tokenAddress}

	if output, ok := c.probe(ctx, tokenAddress, "implementation"); ok {
		if addr, err := c.unpackAddress("implementation", output); err == nil {
			report.IsUpgradeable = addr != (common.Address{})
		}
	}
	if _, ok := c.probe(ctx, tokenAddress, "isBlacklisted", common.Address{}); ok {
		report.HasBlacklist = true
	}
	if _, ok := c.probe(ctx, tokenAddress, "paused"); ok {
		report.CanPause = true
	}
	if _, ok := c.probe(ctx, tokenAddress, "mint", common.Address{}, big.NewInt(0)); ok {
		report.HiddenMint = true
	}
	if _, ok := c.probe(ctx, tokenAddress, "maxTransferAmount"); ok {
		report.TransferRestrictions = true
	}
	if output, ok := c.probe(ctx, tokenAddress, "owner"); ok {
		if addr, err := c.unpackAddress("owner", output); err == nil {
			report.SuspiciousOwner = addr != (common.Address{})
		}
	}
	if _, ok := c.probe(ctx, tokenAddress, "taxRate"); ok {
		report.HasTax = true
	}
	if _, ok := c.probe(ctx, tokenAddress, "setLpPair", common.Address{}); ok {
		report.CanModifyLP = true
	}

	return report, nil
}

// probe packs and eth_calls an optional function; failures only mean the
// function is absent.
func (c *Client) probe(ctx context.Context, contract, method string, args ...any) ([]byte, bool) {
	input, err := c.probes.Pack(method, args...)
	if err != nil {
		return nil, false
	}
	output, err := c.call(ctx, contract, input)
	if err != nil || len(output) == 0 {
		return nil, false
	}
	return output, true
}

func (c *Client) unpackAddress(method string, output []byte) (common.Address, error) {
	results, err := c.probes.Unpack(method, output)
	if err != nil || len(results) == 0 {
		return common.Address{}, fmt.Errorf("decode %s result: %w", method, err)
	}
	addr, ok := results[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected %s result type", method)
	}
	return addr, nil
}
