package telegram

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/ethconv"
)

// Gas-unit estimates for a swap, per cryptoneur.xyz/en/gas-fees-calculator,
// plus a 3% margin.
const (
	uniswapV2SwapGas = 152809
	uniswapV3SwapGas = 184523
	swapFeeMargin    = 1.03
)

func renderHelp() string {
	return strings.Join([]string{
		"These commands are supported:",
		"",
		"/watch <address...> - start monitoring ethereum wallets",
		"/autosnipe on|off - toggle alerts for freshly vetted tokens",
		"/hidezero on|off - hide empty wallets from /balance",
		"/balance - get watched wallets' ETH balance",
		"/tokens - get watched wallets' ERC-20 token balances",
		"/gas - get current eth gas",
		"/budget - show provider quota usage",
		"/help - list available commands",
	}, "\n")
}

func renderWatchList(addresses []string) string {
	var b strings.Builder
	b.WriteString("Currently watched wallets:\n")
	for i, addr := range addresses {
		fmt.Fprintf(&b, "\n%d. %s", i+1, addr)
	}
	return b.String()
}

func renderWalletActivity(address string, transfer domain.TokenTransfer) string {
	ts := time.Unix(int64(transfer.TimeStamp), 0).UTC().Format("2006-01-02 15:04:05")
	return fmt.Sprintf(
		"🚨🚨🚨 New transaction from watched wallet 🚨🚨🚨\n\n"+
			"🔎 Wallet: %s\n\n"+
			"⏰ Timestamp: %s\n"+
			"🔗 Transaction hash: %s\n"+
			"💎 Token symbol: %s\n"+
			"💎 Token name: %s\n"+
			"📄 Contract: %s",
		address, ts, transfer.Hash, transfer.TokenSymbol, transfer.TokenName, transfer.ContractAddress,
	)
}

func renderBuyCandidate(candidate domain.PairCandidate, meta *domain.TokenMeta) string {
	name, symbol := "?", "?"
	liquidity := "?"
	if meta != nil {
		if meta.Name != "" {
			name = meta.Name
		}
		if meta.Symbol != "" {
			symbol = meta.Symbol
		}
		liquidity = fmt.Sprintf("$%.0f", meta.LiquidityUSD)
	}
	return fmt.Sprintf(
		"🎯 New token passed all checks 🎯\n\n"+
			"💎 Token: %s (%s)\n"+
			"📄 Contract: %s\n"+
			"🔗 Pair: %s\n"+
			"👤 Creator: %s\n"+
			"💧 Liquidity: %s\n"+
			"✅ Renounced, liquidity locked, not a honeypot",
		name, symbol, candidate.ContractAddress, candidate.PairAddress, candidate.Creator, liquidity,
	)
}

func renderGas(gwei, ethPrice float64) string {
	v2 := gwei * 1e-9 * ethPrice * uniswapV2SwapGas * swapFeeMargin
	v3 := gwei * 1e-9 * ethPrice * uniswapV3SwapGas * swapFeeMargin
	return fmt.Sprintf(
		"Current eth gas is: %.0f gwei\n\nEstimated fees:\n🦄 Uniswap V2 swap: $%.2f\n🦄 Uniswap V3 swap: $%.2f",
		gwei, v2, v3,
	)
}

func renderEthBalance(address string, eth, ethPrice float64) string {
	usd := eth * ethPrice
	return fmt.Sprintf("%s\n%.4f ETH ($%.2f)", address, eth, usd)
}

func renderTokenBalances(address string, balances []domain.TokenBalance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ERC-20 Token balances for %s:\n", address)
	if len(balances) == 0 {
		b.WriteString("\nno token balances")
		return b.String()
	}
	for _, tb := range balances {
		amount := "?"
		if raw, err := ethconv.HexToBig(tb.Amount); err == nil {
			amount = formatRawAmount(raw)
		}
		fmt.Fprintf(&b, "\n📄 contract: %s\n💰 balance (raw): %s\n", tb.ContractAddress, amount)
	}
	return b.String()
}

func renderBudget(used, capacity uint64) string {
	pct := 0.0
	if capacity > 0 {
		pct = float64(used) / float64(capacity) * 100
	}
	return fmt.Sprintf("Provider quota: %d / %d units used (%.1f%%)", used, capacity, pct)
}

func formatRawAmount(v *big.Int) string {
	s := v.String()
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
