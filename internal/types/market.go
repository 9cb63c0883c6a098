package types

import "time"

// MarketData is a single OHLCV bar as downloaded from a market data
// provider. Downloads always carry full numeric values; missing markers
// only appear once raw files are ingested into a series table.
type MarketData struct {
	Id     string    `json:"id" csv:"id"`
	Symbol string    `json:"symbol" csv:"symbol"`
	Time   time.Time `json:"time" csv:"time"`
	Open   float64   `json:"open" csv:"open"`
	High   float64   `json:"high" csv:"high"`
	Low    float64   `json:"low" csv:"low"`
	Close  float64   `json:"close" csv:"close"`
	Volume float64   `json:"volume" csv:"volume"`
}
