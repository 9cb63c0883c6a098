package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/moznion/go-optional"
)

// DataGenerator generates realistic daily price history for testing and
// benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how price history is generated.
type GeneratorConfig struct {
	// StartDate is the date of the first row
	StartDate time.Time
	// Count is the number of daily rows to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.02 = 2% typical daily volatility)
	Volatility float64
	// Trend is the total drift across the series (-0.2 to 0.2 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per day
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// MissingRate is the probability that any one numeric cell is missing,
	// mimicking cells that failed coercion at ingestion
	MissingRate float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:          250, // roughly one trading year
		InitialPrice:   100.0,
		Volatility:     0.02,
		Trend:          0.0, // neutral
		VolumeBase:     1000000,
		VolumeVariance: 0.3,
		MissingRate:    0.0,
	}
}

// Generate creates a slice of PriceRecord based on the configuration. Rows
// carry consecutive calendar dates in ascending order, which is what the
// series table requires. Prices follow a geometric Brownian motion model
// for realistic movement.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.PriceRecord {
	records := make([]types.PriceRecord, config.Count)
	currentPrice := config.InitialPrice

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normally distributed step
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count) // Distribute trend across rows

		closePrice := open * (1 + priceChange + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99 // Prevent negative prices
		}

		// High and low extend beyond the open-close range
		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, closePrice) + highExtension

		low := math.Min(open, closePrice) - lowExtension
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance

		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		records[i] = types.PriceRecord{
			Date:     config.StartDate.AddDate(0, 0, i),
			Open:     g.maybeMissing(roundToDecimals(open, 4), config.MissingRate),
			High:     g.maybeMissing(roundToDecimals(high, 4), config.MissingRate),
			Low:      g.maybeMissing(roundToDecimals(low, 4), config.MissingRate),
			Close:    g.maybeMissing(roundToDecimals(closePrice, 4), config.MissingRate),
			AdjClose: g.maybeMissing(roundToDecimals(closePrice, 4), config.MissingRate),
			Volume:   g.maybeMissing(roundToDecimals(volume, 2), config.MissingRate),
		}

		currentPrice = closePrice
	}

	return records
}

// GenerateDailyYear is a convenience function that generates roughly one
// trading year of gap-free daily rows with a fixed seed.
func GenerateDailyYear() []types.PriceRecord {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility

	return gen.Generate(DefaultConfig())
}

// maybeMissing wraps value unless the missing rate fires.
func (g *DataGenerator) maybeMissing(value float64, rate float64) optional.Option[float64] {
	if rate > 0 && g.rng.Float64() < rate {
		return optional.None[float64]()
	}

	return optional.Some(value)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
