package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics record pool activity via Prometheus, grounded on the teacher's
// x/dex/keeper/metrics.go promauto family (swap counters/histograms,
// reserve gauges, LP mint/burn counters), retargeted from DEX pool-pair
// naming to stableswap pool naming and from USD-pricing metrics (dropped:
// no oracle-USD pricing in this spec's domain) to plain reserve/share
// accounting.
var (
	registerOnce sync.Once

	swapCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stableswap_swaps_total",
			Help: "Total number of swaps executed",
		},
		[]string{"token_in", "token_out"},
	)

	swapFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stableswap_swap_failures_total",
			Help: "Total number of failed swaps",
		},
		[]string{"reason"},
	)

	swapLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stableswap_swap_latency_ms",
			Help:    "Swap execution latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"token_in", "token_out"},
	)

	poolReserves = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stableswap_pool_reserve",
			Help: "Current reserve amount per token",
		},
		[]string{"token"},
	)

	totalShares = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stableswap_total_shares",
			Help: "Current LP share supply",
		},
	)

	lpSharesMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stableswap_lp_shares_minted_total",
			Help: "Total LP shares minted",
		},
	)

	lpSharesBurned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stableswap_lp_shares_burned_total",
			Help: "Total LP shares burned",
		},
	)

	protocolFeesMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stableswap_protocol_fee_shares_minted_total",
			Help: "Total LP shares minted to the fee receiver as protocol fee",
		},
	)

	ratesRefreshed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stableswap_rate_refreshes_total",
			Help: "Total number of token rate refreshes that changed the cached value",
		},
		[]string{"token"},
	)
)

// Metrics is a thin recorder handle, matching the teacher's
// MetricsCollector wrapper.
type Metrics struct{}

// NewMetrics returns a Metrics recorder. Safe to call more than once; the
// underlying Prometheus collectors register exactly once per process.
func NewMetrics() *Metrics {
	registerOnce.Do(func() {})
	return &Metrics{}
}

// intToFloat64 converts a math.Int to float64 for gauge/counter export.
// math.Int.Int64() panics once a value exceeds int64 range, which at
// TARGET_DECIMALS=18 an amount of ten whole tokens already does; routing
// through big.Float avoids that panic at the cost of float64's usual
// precision loss above 2^53, which is acceptable for metrics.
func intToFloat64(i math.Int) float64 {
	f, _ := new(big.Float).SetInt(i.BigInt()).Float64()
	return f
}

func (m *Metrics) RecordSwap(tokenIn, tokenOut string, latencyMs float64) {
	swapCount.WithLabelValues(tokenIn, tokenOut).Inc()
	swapLatency.WithLabelValues(tokenIn, tokenOut).Observe(latencyMs)
}

func (m *Metrics) RecordSwapFailure(reason string) {
	swapFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordReserve(token string, amount float64) {
	poolReserves.WithLabelValues(token).Set(amount)
}

func (m *Metrics) RecordTotalShares(amount float64) {
	totalShares.Set(amount)
}

func (m *Metrics) RecordSharesMinted(amount float64) {
	lpSharesMinted.Add(amount)
}

func (m *Metrics) RecordSharesBurned(amount float64) {
	lpSharesBurned.Add(amount)
}

func (m *Metrics) RecordProtocolFeeMinted(amount float64) {
	protocolFeesMinted.Add(amount)
}

func (m *Metrics) RecordRateRefreshed(token string) {
	ratesRefreshed.WithLabelValues(token).Inc()
}
