package report

import (
	"fmt"
	"strings"
)

// promptTemplate asks for a fixed set of technical signals so the model
// cannot wander into price predictions. The excerpt markdown and its column
// list fill the two slots.
const promptTemplate = `Role: You are a technical analysis assistant specialized in stock chart patterns.
Task: Analyze the recent daily stock data table below. It contains the closing price and these indicator columns: %s.
Generate a concise analysis report focusing ONLY on the following technical signals, based SOLELY on the provided data:
1. SMA crossover: identify the most recent crossover between the short and long simple moving averages, if any. State whether it was bullish (short crossed above long) or bearish (short crossed below long) and the approximate date. If there is no recent crossover, state that.
2. RSI level: describe the RSI in the last row. Is it indicating overbought (>70), oversold (<30), or neutral conditions? Mention if it recently crossed these thresholds.
3. Price vs. SMAs: based on the last row, state whether the closing price is above or below each simple moving average.
4. Overall summary: provide a very brief (1-2 sentence) technical summary based only on the signals identified above. Do not give financial advice or predict future prices.

Strictly adhere to analyzing only the provided data table and the requested signals.

Recent data table (markdown format):
%s

Concise analysis report:`

// BuildPrompt fills the analysis prompt with a rendered excerpt.
func BuildPrompt(excerpt *Excerpt) string {
	return fmt.Sprintf(promptTemplate, strings.Join(excerpt.Columns, ", "), excerpt.Markdown)
}
