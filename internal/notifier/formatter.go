package notifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"OptionSentinel/internal/model"
	"OptionSentinel/internal/trader"
)

// maxReportRows caps the per-message detail list so the webhook limit holds.
const maxReportRows = 10

// FormatScanReport renders one variant's anomaly list for Discord.
func FormatScanReport(variant model.VariantName, rows []model.Classified, timeRange string) string {
	var sb strings.Builder

	title := "📊 持仓量异动"
	if variant == model.VariantVolume {
		title = "📈 成交量异动"
	}
	sb.WriteString(fmt.Sprintf("**%s** (%s)\n", title, timeRange))

	if len(rows) == 0 {
		sb.WriteString("本次扫描未发现异动合约\n")
		return sb.String()
	}

	tierCounts := make(map[model.Tier]int)
	for _, r := range rows {
		tierCounts[r.Tier]++
	}
	sb.WriteString(fmt.Sprintf("共 %d 个异动合约", len(rows)))
	for _, tier := range []model.Tier{model.TierOver50M, model.Tier10To50M, model.Tier5To10M, model.TierBelow5M} {
		if n := tierCounts[tier]; n > 0 {
			sb.WriteString(fmt.Sprintf(" | %s: %d", tier, n))
		}
	}
	sb.WriteString("\n\n")

	shown := rows
	if len(shown) > maxReportRows {
		shown = shown[:maxReportRows]
	}
	for i, r := range shown {
		delta := r.OIDelta
		deltaName := "OI"
		if variant == model.VariantVolume {
			delta = r.VolumeDelta
			deltaName = "Vol"
		}
		deltaStr := humanize.Comma(int64(delta))
		if delta > 0 {
			deltaStr = "+" + deltaStr
		}
		sb.WriteString(fmt.Sprintf("%d. `%s` %s\n", i+1, r.ContractSymbol, r.Signal.Label))
		sb.WriteString(fmt.Sprintf("   %s %s @ $%s | 金额 $%s [%s] | 正股 %+.2f%%\n",
			deltaName, deltaStr, humanize.CommafWithDigits(r.PriceNew, 2),
			humanize.Comma(int64(r.Notional)), r.Tier, r.StockPriceChange*100))
	}
	if len(rows) > maxReportRows {
		sb.WriteString(fmt.Sprintf("... 其余 %d 个合约见 CSV\n", len(rows)-maxReportRows))
	}
	return sb.String()
}

// FormatSymbolTally renders the per-symbol countable signal totals,
// strongest symbols first.
func FormatSymbolTally(counts map[string]model.SignalCount) string {
	if len(counts) == 0 {
		return ""
	}
	symbols := make([]string, 0, len(counts))
	for sym := range counts {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool {
		a, b := counts[symbols[i]], counts[symbols[j]]
		if a.Total() != b.Total() {
			return a.Total() > b.Total()
		}
		if a.Bullish != b.Bullish {
			return a.Bullish > b.Bullish
		}
		return symbols[i] < symbols[j]
	})

	var sb strings.Builder
	sb.WriteString("**🔍 按标的统计**\n")
	for _, sym := range symbols {
		c := counts[sym]
		sb.WriteString(fmt.Sprintf("`%s` 看涨 %d / 看跌 %d\n", sym, c.Bullish, c.Bearish))
	}
	return sb.String()
}

// FormatTradeReport renders one decision cycle's executed actions.
func FormatTradeReport(rep *trader.CycleReport) string {
	var sb strings.Builder
	sb.WriteString("**💼 模拟交易执行**\n")

	if len(rep.Sells) == 0 && len(rep.Buys) == 0 {
		sb.WriteString("本轮无交易动作\n")
	}
	for _, a := range rep.Sells {
		sb.WriteString(fmt.Sprintf("卖出 `%s` %d 股 @ $%.2f，盈亏 %+.2f%%（%s）\n",
			a.Symbol, a.Shares, a.Price, a.Gain*100, a.Reason))
	}
	for _, a := range rep.Buys {
		sb.WriteString(fmt.Sprintf("买入 `%s` %d 股 @ $%.2f，金额 $%s（%s）\n",
			a.Symbol, a.Shares, a.Price, humanize.CommafWithDigits(a.Amount, 2), a.Reason))
	}
	sb.WriteString(fmt.Sprintf("\n现金 $%s | 持仓市值 $%s | 总资产 $%s\n",
		humanize.CommafWithDigits(rep.Cash, 2),
		humanize.CommafWithDigits(rep.StockValue, 2),
		humanize.CommafWithDigits(rep.TotalValue, 2)))
	return sb.String()
}

// FormatAccountStatus renders the current holdings and account value.
func FormatAccountStatus(state *model.TradeState) string {
	var sb strings.Builder
	sb.WriteString("**📒 账户状态**\n")

	symbols := make([]string, 0, len(state.Positions))
	for sym, pos := range state.Positions {
		if pos.IsHold {
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)

	if len(symbols) == 0 {
		sb.WriteString("当前无持仓\n")
	}
	for _, sym := range symbols {
		pos := state.Positions[sym]
		sb.WriteString(fmt.Sprintf("`%s` %d 股，成本 $%.2f，现价 $%.2f，盈亏 %+.2f%%\n",
			sym, pos.Shares, pos.BuyPrice, pos.CurrentPrice, pos.Gain()*100))
	}
	sb.WriteString(fmt.Sprintf("\n现金 $%s | 总资产 $%s\n",
		humanize.CommafWithDigits(state.Cash, 2),
		humanize.CommafWithDigits(state.TotalValue(), 2)))
	return sb.String()
}
